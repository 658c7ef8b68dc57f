// Package output renders status snapshots and the live monitor line
// for terminal display.
package output

import "github.com/charmbracelet/lipgloss"

// Color constants using ANSI 256-color palette.
// These provide a consistent color scheme across all renderers.
const (
	// ColorPrimary is used for primary elements like headers (bright blue).
	ColorPrimary = lipgloss.Color("39")

	// ColorSuccess is used for positive status indicators (green).
	ColorSuccess = lipgloss.Color("42")

	// ColorWarning is used for warning messages (orange/yellow).
	ColorWarning = lipgloss.Color("214")

	// ColorDanger is used for errors and critical information (red).
	ColorDanger = lipgloss.Color("196")

	// ColorMuted is used for less important or secondary text (gray).
	ColorMuted = lipgloss.Color("245")
)

// Box styles for containing grouped content.
var (
	// HeaderBox is the style for the status header section.
	HeaderBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1).
			MarginBottom(1)
)

// Text styles for various content types.
var (
	// LabelStyle is used for field labels.
	LabelStyle = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	// ValueStyle is used for field values.
	ValueStyle = lipgloss.NewStyle()

	// SuccessStyle is used for healthy indicators.
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)

	// WarningStyle is used for degraded indicators.
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)

	// DangerStyle is used for severe indicators.
	DangerStyle = lipgloss.NewStyle().Foreground(ColorDanger)

	// MutedStyle is used for secondary text.
	MutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)
