// Package pods holds the pure parts of the pod listing pipeline: namespace
// filtering, pagination and display formatting.
package pods

import "github.com/syrm/podboard/dto"

// AllNamespaces is the selector value that disables namespace filtering.
const AllNamespaces = "All"

// Filter returns the pods of the selected namespace in their original order.
// AllNamespaces returns pods as is.
func Filter(pods []dto.Pod, selector string) []dto.Pod {
	if selector == AllNamespaces {
		return pods
	}

	out := make([]dto.Pod, 0, len(pods))
	for _, p := range pods {
		if string(p.Namespace) == selector {
			out = append(out, p)
		}
	}

	return out
}

// Namespaces lists the selector choices: AllNamespaces first, then every
// namespace in the order it first appears in pods.
func Namespaces(pods []dto.Pod) []string {
	set := newOrderedSet(AllNamespaces)
	for _, p := range pods {
		set.add(string(p.Namespace))
	}

	return set.items
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet(initial ...string) *orderedSet {
	s := &orderedSet{seen: make(map[string]struct{})}
	for _, v := range initial {
		s.add(v)
	}
	return s
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}
