package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/syrm/podboard/dto"
	"github.com/syrm/podboard/pods"
)

// RenderPlain writes one page of the filtered pods as an aligned, uncolored
// table followed by a page footer. It is used when stdout is not a terminal.
func RenderPlain(w io.Writer, list []dto.Pod, selector string, pageIndex int, now time.Time) error {
	filtered := pods.Filter(list, selector)
	pageCount := pods.PageCount(len(filtered), pods.PageSize)
	pageIndex = max(1, min(pageIndex, pageCount))

	rows := pods.FormatRows(pods.Page(filtered, pageIndex, pods.PageSize), now)
	data := make([][]string, len(rows))
	for i, row := range rows {
		data[i] = row.Cells
	}

	cell := lipgloss.NewStyle().PaddingRight(2)
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		Headers(pods.Columns...).
		Rows(data...).
		StyleFunc(func(_, _ int) lipgloss.Style { return cell })

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return fmt.Errorf("write pods table: %w", err)
	}

	if _, err := fmt.Fprintf(w, "namespace %s, page %d of %d, %d pods\n", selector, pageIndex, pageCount, len(filtered)); err != nil {
		return fmt.Errorf("write pods footer: %w", err)
	}

	return nil
}
