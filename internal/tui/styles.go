package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	frame, title             lipgloss.Style
	item, itemSel, cursorRow lipgloss.Style
	path, hint, empty        lipgloss.Style
}

func newStyles() styles {
	return styles{
		frame:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		title:     lipgloss.NewStyle().Bold(true),
		item:      lipgloss.NewStyle().Padding(0, 1),
		itemSel:   lipgloss.NewStyle().Padding(0, 1).Bold(true),
		cursorRow: lipgloss.NewStyle().Reverse(true),
		path:      lipgloss.NewStyle().Faint(true),
		hint:      lipgloss.NewStyle().Faint(true),
		empty:     lipgloss.NewStyle().Italic(true).Faint(true),
	}
}
