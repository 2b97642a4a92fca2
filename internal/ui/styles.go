package ui

import "github.com/charmbracelet/lipgloss"

// Endfield amber on a neutral base. Each color has a darker variant for
// light terminal backgrounds.
var (
	amber    = lipgloss.AdaptiveColor{Light: "130", Dark: "214"}
	amberDim = lipgloss.AdaptiveColor{Light: "180", Dark: "136"}
	text     = lipgloss.AdaptiveColor{Light: "232", Dark: "255"}
	muted    = lipgloss.AdaptiveColor{Light: "242", Dark: "245"}
	faint    = lipgloss.AdaptiveColor{Light: "250", Dark: "238"}
	green    = lipgloss.AdaptiveColor{Light: "28", Dark: "78"}
	red      = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	yellow   = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
)

// Styles is shared by the console writer and the mod picker.
type Styles struct {
	Header, Success, Warning, Error lipgloss.Style
	Dim, Active, Label              lipgloss.Style

	Cursor, Checked, Broken lipgloss.Style

	Panel lipgloss.Style
}

func fg(c lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// DefaultStyles is the color theme.
func DefaultStyles() Styles {
	return Styles{
		Header:  fg(amber).Bold(true),
		Success: fg(green),
		Warning: fg(yellow),
		Error:   fg(red),
		Dim:     fg(faint),
		Active:  fg(amber).Bold(true),
		Label:   fg(muted),
		Cursor:  fg(amber).Bold(true),
		Checked: fg(text),
		Broken:  fg(red).Strikethrough(true),
		Panel:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(amberDim).Padding(0, 1),
	}
}

// NoColorStyles renders text unchanged.
func NoColorStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Header: plain, Success: plain, Warning: plain, Error: plain,
		Dim: plain, Active: plain, Label: plain,
		Cursor: plain, Checked: plain, Broken: plain,
		Panel: plain,
	}
}

// GetStyles picks NoColorStyles when noColor is set.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
