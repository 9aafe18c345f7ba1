package pods

// PageSize is the number of rows shown per page.
const PageSize = 9

// Page returns the 1-based pageIndex window of items. The result is empty
// when pageIndex is outside [1, PageCount].
func Page[T any](items []T, pageIndex, pageSize int) []T {
	if pageIndex < 1 || pageSize < 1 {
		return []T{}
	}

	start := (pageIndex - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := min(start+pageSize, len(items))

	return items[start:end]
}

// PageCount is ceil(length/pageSize), never less than 1 so an empty table
// still has a first page.
func PageCount(length, pageSize int) int {
	if pageSize < 1 || length <= 0 {
		return 1
	}
	return (length + pageSize - 1) / pageSize
}
