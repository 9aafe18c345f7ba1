package tui

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/syrm/podboard/dto"
	"github.com/syrm/podboard/pods"
)

const fetchFailedMessage = "Error fetching pods data."

// PodSource is anything able to list every pod of the cluster.
type PodSource interface {
	FetchPods(ctx context.Context) ([]dto.Pod, error)
}

type podsKeyMap struct {
	NextNamespace key.Binding
	PrevNamespace key.Binding
	NextPage      key.Binding
	PrevPage      key.Binding
	Refresh       key.Binding
	Quit          key.Binding
}

func (k podsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextNamespace, k.PrevPage, k.NextPage, k.Refresh, k.Quit}
}

func (k podsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextNamespace, k.PrevNamespace},
		{k.PrevPage, k.NextPage},
		{k.Refresh, k.Quit},
	}
}

var podsKeys = podsKeyMap{
	NextNamespace: key.NewBinding(
		key.WithKeys("tab", "n"),
		key.WithHelp("tab", "next namespace"),
	),
	PrevNamespace: key.NewBinding(
		key.WithKeys("shift+tab", "N"),
		key.WithHelp("shift+tab", "previous namespace"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("right", "l", "pgdown"),
		key.WithHelp("→", "next page"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("left", "h", "pgup"),
		key.WithHelp("←", "previous page"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

type PodsModel struct {
	ctx    context.Context
	source PodSource
	logger *slog.Logger
	now    func() time.Time
	theme  Theme

	allPods    []dto.Pod
	namespaces []string
	selector   string
	pageIndex  int
	loading    bool
	errMessage string

	spinner   spinner.Model
	paginator paginator.Model
	help      help.Model
	keys      podsKeyMap
	width     int
}

func NewPodsModel(ctx context.Context, source PodSource, theme Theme, logger *slog.Logger) *PodsModel {
	p := paginator.New(paginator.WithPerPage(pods.PageSize))
	p.Type = paginator.Arabic
	p.ArabicFormat = "page %d of %d"

	return &PodsModel{
		ctx:        ctx,
		source:     source,
		logger:     logger,
		now:        time.Now,
		theme:      theme,
		namespaces: []string{pods.AllNamespaces},
		selector:   pods.AllNamespaces,
		pageIndex:  1,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.Title.UnsetMarginBottom())),
		paginator:  p,
		help:       help.New(),
		keys:       podsKeys,
	}
}

func (pm *PodsModel) Init() tea.Cmd {
	return pm.fetch()
}

// fetch starts a pod listing unless one is already outstanding.
func (pm *PodsModel) fetch() tea.Cmd {
	if pm.loading {
		pm.logger.DebugContext(pm.ctx, "fetch ignored, another one is in flight")
		return nil
	}

	pm.loading = true

	return tea.Batch(pm.spinner.Tick, pm.load())
}

func (pm *PodsModel) load() tea.Cmd {
	ctx := pm.ctx
	source := pm.source

	return func() tea.Msg {
		list, err := source.FetchPods(ctx)
		return podsLoadedMsg{pods: list, err: err}
	}
}

func (pm *PodsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		pm.width = msg.Width
		pm.help.Width = msg.Width
		return pm, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, pm.keys.Quit):
			return pm, tea.Quit
		case key.Matches(msg, pm.keys.NextNamespace):
			pm.cycleNamespace(1)
		case key.Matches(msg, pm.keys.PrevNamespace):
			pm.cycleNamespace(-1)
		case key.Matches(msg, pm.keys.NextPage):
			pm.pageIndex = min(pm.pageCount(), pm.pageIndex+1)
		case key.Matches(msg, pm.keys.PrevPage):
			pm.pageIndex = max(1, pm.pageIndex-1)
		case key.Matches(msg, pm.keys.Refresh):
			return pm, pm.fetch()
		}
		return pm, nil
	case podsLoadedMsg:
		pm.applyResult(msg)
		return pm, nil
	case spinner.TickMsg:
		if !pm.loading {
			return pm, nil
		}
		var cmd tea.Cmd
		pm.spinner, cmd = pm.spinner.Update(msg)
		return pm, cmd
	}

	return pm, nil
}

func (pm *PodsModel) applyResult(msg podsLoadedMsg) {
	pm.loading = false

	if msg.err != nil {
		pm.logger.ErrorContext(pm.ctx, "error fetching pods", slog.Any("error", msg.err))
		pm.errMessage = fetchFailedMessage
		return
	}

	pm.logger.DebugContext(pm.ctx, "pods loaded", slog.Int("count", len(msg.pods)))

	pm.allPods = msg.pods
	pm.namespaces = pods.Namespaces(msg.pods)
	pm.errMessage = ""

	if !slices.Contains(pm.namespaces, pm.selector) {
		pm.selector = pods.AllNamespaces
		pm.pageIndex = 1
	}

	pm.pageIndex = min(pm.pageIndex, pm.pageCount())
}

// SelectNamespace switches the filter and always goes back to the first page.
func (pm *PodsModel) SelectNamespace(selector string) {
	pm.selector = selector
	pm.pageIndex = 1
}

func (pm *PodsModel) cycleNamespace(step int) {
	current := max(0, slices.Index(pm.namespaces, pm.selector))
	next := (current + step + len(pm.namespaces)) % len(pm.namespaces)
	pm.SelectNamespace(pm.namespaces[next])
}

func (pm *PodsModel) pageCount() int {
	return pods.PageCount(len(pods.Filter(pm.allPods, pm.selector)), pods.PageSize)
}

func (pm *PodsModel) View() string {
	var b strings.Builder

	b.WriteString(pm.theme.Title.Render("Pods"))
	b.WriteString("\n")
	b.WriteString(pm.namespaceBar())
	b.WriteString("\n\n")

	switch {
	case pm.errMessage != "":
		b.WriteString(pm.theme.Error.Render(pm.errMessage))
		b.WriteString("\n")
	case pm.loading && pm.allPods == nil:
		b.WriteString(pm.spinner.View())
		b.WriteString(" Loading pods...\n")
	default:
		filtered := pods.Filter(pm.allPods, pm.selector)
		visible := pods.Page(filtered, pm.pageIndex, pods.PageSize)

		b.WriteString(pm.table(pods.FormatRows(visible, pm.now())).Render())
		b.WriteString("\n")

		pm.paginator.Page = pm.pageIndex - 1
		pm.paginator.TotalPages = pods.PageCount(len(filtered), pods.PageSize)

		footer := pm.paginator.View()
		if pm.loading {
			footer += " " + pm.spinner.View()
		}
		b.WriteString(pm.theme.Muted.Render(footer))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(pm.help.View(pm.keys))

	return b.String()
}

func (pm *PodsModel) namespaceBar() string {
	tabs := make([]string, 0, len(pm.namespaces))
	for _, ns := range pm.namespaces {
		if ns == pm.selector {
			tabs = append(tabs, pm.theme.Selected.Render(ns))
			continue
		}
		tabs = append(tabs, pm.theme.Unselected.Render(ns))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (pm *PodsModel) table(rows []pods.Row) *table.Table {
	data := make([][]string, len(rows))
	for i, row := range rows {
		data[i] = row.Cells
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(pm.theme.Border).
		Headers(pods.Columns...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return pm.theme.Header
			}
			if row < 0 || row >= len(rows) {
				return pm.theme.Cell
			}

			switch col {
			case pods.CellStatus:
				return pm.theme.status(rows[row].Status)
			case pods.CellCPU:
				return pm.theme.usage(rows[row].CPU)
			case pods.CellMemory:
				return pm.theme.usage(rows[row].Memory)
			}

			return pm.theme.Cell
		})
}
