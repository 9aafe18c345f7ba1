package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"golang.org/x/sync/errgroup"

	"github.com/syrm/podboard/dto"
)

const visibleStatsCount = 8

// ClusterSource provides the data of the dashboard widgets.
type ClusterSource interface {
	FetchStats(ctx context.Context) (dto.Stats, error)
	FetchNodes(ctx context.Context) ([]dto.Node, error)
}

type Dashboard struct {
	app        *tview.Application
	layout     *tview.Flex
	tableStats *tview.Table
	tableNodes *tview.Table
	source     ClusterSource
	colors     bool
	logger     *slog.Logger

	mu       sync.Mutex
	stats    dto.Stats
	statsErr error
	nodes    []dto.Node
	nodesErr error
	showAll  bool
}

func NewDashboard(source ClusterSource, colors bool, logger *slog.Logger) *Dashboard {
	tview.Borders.HorizontalFocus = tview.BoxDrawingsLightHorizontal
	tview.Borders.VerticalFocus = tview.BoxDrawingsLightVertical
	tview.Borders.TopLeftFocus = tview.BoxDrawingsLightDownAndRight
	tview.Borders.TopRightFocus = tview.BoxDrawingsLightDownAndLeft
	tview.Borders.BottomLeftFocus = tview.BoxDrawingsLightUpAndRight
	tview.Borders.BottomRightFocus = tview.BoxDrawingsLightUpAndLeft

	stats := tview.NewTable().SetSelectable(false, false)
	stats.SetBorder(true).SetTitle(" Cluster statistics ")

	nodes := tview.NewTable().SetSelectable(false, false)
	nodes.SetBorder(true).SetTitle(" Node OS distribution ")

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(stats, 0, 2, false).
		AddItem(nodes, 5, 0, false).
		AddItem(tview.NewTextView().SetText(" m: more/less   r: refresh   q: quit"), 1, 0, false)

	return &Dashboard{
		app:        tview.NewApplication(),
		layout:     layout,
		tableStats: stats,
		tableNodes: nodes,
		source:     source,
		colors:     colors,
		logger:     logger,
	}
}

// Load fetches stats and nodes concurrently. A failing widget is logged and
// marked unavailable, it never prevents the other one from loading.
func (d *Dashboard) Load(ctx context.Context) {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := d.source.FetchStats(ctx)
		if err != nil {
			d.logger.ErrorContext(ctx, "error fetching stats", slog.Any("error", err))
		}

		d.mu.Lock()
		d.stats, d.statsErr = stats, err
		d.mu.Unlock()

		return nil
	})

	g.Go(func() error {
		nodes, err := d.source.FetchNodes(ctx)
		if err != nil {
			d.logger.ErrorContext(ctx, "error fetching nodes", slog.Any("error", err))
		}

		d.mu.Lock()
		d.nodes, d.nodesErr = nodes, err
		d.mu.Unlock()

		return nil
	})

	_ = g.Wait()
}

func (d *Dashboard) ToggleAllStats() {
	d.mu.Lock()
	d.showAll = !d.showAll
	d.mu.Unlock()
}

func (d *Dashboard) color(hex string) string {
	if !d.colors {
		return ""
	}
	return "[" + hex + "]"
}

// Render redraws both widgets from the last loaded data.
func (d *Dashboard) Render() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.tableStats.Clear()
	if d.statsErr != nil {
		d.tableStats.SetCell(0, 0, tview.NewTableCell("unavailable").SetTextColor(tcell.GetColor(string(colorCritical))))
	} else {
		for index, entry := range VisibleStats(d.stats, d.showAll) {
			d.tableStats.SetCell(index, 0, tview.NewTableCell(d.color(string(colorMuted))+"[::b]"+strings.ToUpper(entry.Name)).SetExpansion(1))
			d.tableStats.SetCell(index, 1, tview.NewTableCell(d.color(string(colorSecondary))+entry.Value.String()).SetAlign(tview.AlignRight))
		}
	}

	d.tableNodes.Clear()
	if d.nodesErr != nil {
		d.tableNodes.SetCell(0, 0, tview.NewTableCell("unavailable").SetTextColor(tcell.GetColor(string(colorCritical))))
		return
	}

	windows, linux := OSDistribution(d.nodes)
	d.tableNodes.SetCell(0, 0, tview.NewTableCell("[::b]Windows").SetExpansion(1))
	d.tableNodes.SetCell(0, 1, tview.NewTableCell(fmt.Sprintf("%d", windows)).SetAlign(tview.AlignRight))
	d.tableNodes.SetCell(1, 0, tview.NewTableCell("[::b]Linux").SetExpansion(1))
	d.tableNodes.SetCell(1, 1, tview.NewTableCell(fmt.Sprintf("%d", linux)).SetAlign(tview.AlignRight))
}

func (d *Dashboard) refresh(ctx context.Context) {
	d.Load(ctx)
	d.app.QueueUpdateDraw(d.Render)
}

func (d *Dashboard) Run(ctx context.Context) error {
	d.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q':
			d.app.Stop()
			return nil
		case 'm':
			d.ToggleAllStats()
			d.Render()
			return nil
		case 'r':
			go d.refresh(ctx)
			return nil
		}
		return event
	})

	go d.refresh(ctx)

	go func() {
		<-ctx.Done()
		d.logger.DebugContext(ctx, "context is done")
		d.app.Stop()
	}()

	if err := d.app.SetRoot(d.layout, true).Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}

	return nil
}

// VisibleStats returns the first entries of stats unless all is set.
func VisibleStats(stats dto.Stats, all bool) dto.Stats {
	if all || len(stats) <= visibleStatsCount {
		return stats
	}
	return stats[:visibleStatsCount]
}

// OSDistribution counts nodes whose OS image mentions windows, every other
// node is counted as linux.
func OSDistribution(nodes []dto.Node) (windows, linux int) {
	for _, node := range nodes {
		if strings.Contains(strings.ToLower(node.OSImage.String()), "windows") {
			windows++
			continue
		}
		linux++
	}
	return windows, linux
}
