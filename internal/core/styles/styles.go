// Package styles provides shared lipgloss styles for CLI output.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette defines a minimal semantic palette.
type Palette struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// DefaultPalette is the tokyo-night palette.
var DefaultPalette = Palette{
	Primary: lipgloss.Color("#7aa2f7"),
	Muted:   lipgloss.Color("#565f89"),
	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),
}

var (
	TextPrimary = lipgloss.NewStyle().Foreground(DefaultPalette.Primary)
	TextMuted   = lipgloss.NewStyle().Foreground(DefaultPalette.Muted)
	TextSuccess = lipgloss.NewStyle().Foreground(DefaultPalette.Success)
	TextWarning = lipgloss.NewStyle().Foreground(DefaultPalette.Warning)
	TextError   = lipgloss.NewStyle().Foreground(DefaultPalette.Error)

	TextBold   = lipgloss.NewStyle().Bold(true)
	PromptText = lipgloss.NewStyle().Foreground(DefaultPalette.Primary).Bold(true)
)
