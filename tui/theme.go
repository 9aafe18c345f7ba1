package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/syrm/podboard/pods"
)

var (
	colorPrimary   = lipgloss.Color("#d32f2f")
	colorSecondary = lipgloss.Color("#1976d2")
	colorCritical  = lipgloss.Color("#d32f2f")
	colorNominal   = lipgloss.Color("#388e3c")
	colorMuted     = lipgloss.Color("#616161")
	colorBorder    = lipgloss.Color("240")
	colorChipText  = lipgloss.Color("#ffffff")
)

// Theme holds every style the views use. A colorless theme keeps layout
// (padding, bold) and drops colors.
type Theme struct {
	Title      lipgloss.Style
	Muted      lipgloss.Style
	Error      lipgloss.Style
	Header     lipgloss.Style
	Cell       lipgloss.Style
	Border     lipgloss.Style
	Selected   lipgloss.Style
	Unselected lipgloss.Style
	ChipOK     lipgloss.Style
	ChipAlert  lipgloss.Style
	UsageOK    lipgloss.Style
	UsageAlert lipgloss.Style
}

func NewTheme(colors bool) Theme {
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := Theme{
		Title:      lipgloss.NewStyle().Bold(true).MarginBottom(1),
		Muted:      lipgloss.NewStyle(),
		Error:      lipgloss.NewStyle().Bold(true),
		Header:     cell.Bold(true),
		Cell:       cell,
		Border:     lipgloss.NewStyle(),
		Selected:   lipgloss.NewStyle().Bold(true).Underline(true).Padding(0, 1),
		Unselected: lipgloss.NewStyle().Padding(0, 1),
		ChipOK:     cell.Bold(true),
		ChipAlert:  cell.Bold(true),
		UsageOK:    cell.Bold(true),
		UsageAlert: cell.Bold(true),
	}

	if !colors {
		return t
	}

	t.Title = t.Title.Foreground(colorPrimary)
	t.Muted = t.Muted.Foreground(colorMuted)
	t.Error = t.Error.Foreground(colorCritical)
	t.Border = t.Border.Foreground(colorBorder)
	t.Selected = t.Selected.Foreground(colorChipText).Background(colorSecondary).UnsetUnderline()
	t.ChipOK = t.ChipOK.Foreground(colorChipText).Background(colorNominal)
	t.ChipAlert = t.ChipAlert.Foreground(colorChipText).Background(colorCritical)
	t.UsageOK = t.UsageOK.Foreground(colorNominal)
	t.UsageAlert = t.UsageAlert.Foreground(colorCritical)

	return t
}

func (t Theme) status(tone pods.Tone) lipgloss.Style {
	if tone == pods.ToneOK {
		return t.ChipOK
	}
	return t.ChipAlert
}

func (t Theme) usage(s pods.Saturation) lipgloss.Style {
	if s == pods.Critical {
		return t.UsageAlert
	}
	return t.UsageOK
}
