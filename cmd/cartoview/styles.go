package main

import "github.com/charmbracelet/lipgloss"

var (
	accentFg  = lipgloss.Color("#7C3AED")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}

	titleStyle   = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(baseDimFg)
	hiddenStyle  = lipgloss.NewStyle().Foreground(baseDimFg).Strikethrough(true)
	tooltipStyle = lipgloss.NewStyle().Foreground(accentFg)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626"))
)
