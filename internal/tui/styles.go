package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gongahkia/dueday/internal/dates"
	"github.com/gongahkia/dueday/internal/model"
)

// Color palette
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // violet
	ColorSecondary = lipgloss.Color("#06B6D4") // cyan
	ColorSuccess   = lipgloss.Color("#22C55E") // green
	ColorWarning   = lipgloss.Color("#EAB308") // yellow
	ColorError     = lipgloss.Color("#EF4444") // red
	ColorMuted     = lipgloss.Color("#6B7280") // gray
	ColorText      = lipgloss.Color("#F9FAFB") // near-white
)

// Shared styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			PaddingLeft(1).
			PaddingRight(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			PaddingLeft(1)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			PaddingLeft(1).
			PaddingTop(1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true).
			PaddingLeft(1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true).
			PaddingLeft(1)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			PaddingLeft(1)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(1, 2)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			PaddingLeft(1).
			PaddingTop(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Width(10)
)

// PriorityStyle colors a task priority.
func PriorityStyle(p model.Priority) lipgloss.Style {
	switch p {
	case model.PriorityHigh:
		return lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	case model.PriorityMedium:
		return lipgloss.NewStyle().Foreground(ColorWarning)
	case model.PriorityLow:
		return lipgloss.NewStyle().Foreground(ColorSuccess)
	}
	return MutedStyle
}

// ToneStyle colors a due label.
func ToneStyle(t dates.Tone) lipgloss.Style {
	switch t {
	case dates.ToneOverdue:
		return lipgloss.NewStyle().Foreground(ColorError)
	case dates.ToneToday:
		return lipgloss.NewStyle().Foreground(ColorWarning)
	case dates.ToneLater:
		return lipgloss.NewStyle().Foreground(ColorText)
	}
	return MutedStyle
}
