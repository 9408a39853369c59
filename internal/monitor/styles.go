package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Dashboard color palette
const (
	// Background colors
	ColorDarkBg    = lipgloss.Color("#0A0A0F") // Deep void
	ColorSurfaceBg = lipgloss.Color("#12121A") // Dark surface
	ColorBorder    = lipgloss.Color("#2A2A4A") // Glass border (purple tint)

	// Semantic colors
	ColorHealthy  = lipgloss.Color("#39FF14") // Neon green
	ColorWarning  = lipgloss.Color("#FFAA00") // Electric amber
	ColorCritical = lipgloss.Color("#FF0055") // Hot red-pink

	// Text colors
	ColorTextPrimary   = lipgloss.Color("#FFFFFF") // Pure white
	ColorTextSecondary = lipgloss.Color("#B4B4D0") // Lavender gray
	ColorTextMuted     = lipgloss.Color("#6B6B8D") // Purple-gray

	// Accent colors - neon pink primary, purple secondary
	ColorAccent    = lipgloss.Color("#FF2E97") // Neon pink
	ColorAccentDim = lipgloss.Color("#BF40FF") // Neon purple

	// Graph colors
	ColorGraph = lipgloss.Color("#00FFFF") // Neon cyan
)

// SeriesColors is cycled through for channels in display order.
var SeriesColors = []lipgloss.Color{
	ColorGraph,
	ColorAccent,
	ColorHealthy,
	ColorWarning,
	ColorAccentDim,
	lipgloss.Color("#4D9FFF"), // Electric blue
}

// SeriesColor returns the color for the i-th channel.
func SeriesColor(i int) lipgloss.Color {
	if i < 0 {
		i = -i
	}
	return SeriesColors[i%len(SeriesColors)]
}

// stateColors is the fixed state -> color table. The state picks the color,
// never the other way round.
var stateColors = map[State]lipgloss.Color{
	StateRest:      ColorHealthy,
	StateIndex:     ColorGraph,
	StateMiddle:    ColorAccentDim,
	StateMovement:  ColorWarning,
	StateUncertain: ColorTextMuted,
	StateNone:      ColorTextMuted,
}

// StateColor returns the presentation color for a state.
func StateColor(s State) lipgloss.Color {
	if c, ok := stateColors[s]; ok {
		return c
	}
	return ColorTextMuted
}

// StateStyle renders a state badge: bold on its color for real classes,
// plain muted text for UNCERTAIN and before the first classification.
func StateStyle(s State) lipgloss.Style {
	style := lipgloss.NewStyle().Foreground(StateColor(s)).Bold(true)
	if s == StateUncertain || s == StateNone {
		style = style.Bold(false)
	}
	return style
}

// Base styles for the dashboard
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	// Text styles
	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	// Link banners
	BannerErrorStyle = lipgloss.NewStyle().
				Foreground(ColorTextPrimary).
				Background(ColorCritical).
				Bold(true).
				Padding(0, 1)

	BannerInfoStyle = lipgloss.NewStyle().
			Foreground(ColorDarkBg).
			Background(ColorWarning).
			Padding(0, 1)

	ThresholdStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)
)

// Link indicator glyphs
const (
	LinkUpGlyph     = "◉"
	LinkDownGlyph   = "◌"
	LinkEndedGlyph  = "◎"
	FrozenGlyph     = "❚❚"
	ThresholdMarker = "◂"
)

// ConnectingSpinnerFrames animate the header while the link is opening.
var ConnectingSpinnerFrames = []string{"◐", "◓", "◑", "◒"}

// SectionHeader renders a section header with the title on the left and value on the right.
// Format: ╭─ Title ────────────────────────────────────── Value ╮
func SectionHeader(title, value string, width int, valueColor lipgloss.Color) string {
	if width < 10 {
		width = 10
	}

	// Left: "╭─ " + title + " "
	leftWidth := 3 + lipgloss.Width(title) + 1
	// Right: " " + value + " ╮"
	rightWidth := 1 + lipgloss.Width(value) + 2

	fillWidth := width - leftWidth - rightWidth
	if fillWidth < 1 {
		fillWidth = 1
	}
	middle := strings.Repeat("─", fillWidth)

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	titleStyle := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(valueColor).Bold(true)

	return borderStyle.Render("╭─ ") +
		titleStyle.Render(title) +
		borderStyle.Render(" "+middle+" ") +
		valueStyle.Render(value) +
		borderStyle.Render(" ╮")
}

// SectionFooter renders the bottom border of a section.
// Format: ╰────────────────────────────────────────────────────╯
func SectionFooter(width int) string {
	if width < 2 {
		width = 2
	}
	middle := strings.Repeat("─", width-2)
	return lipgloss.NewStyle().Foreground(ColorBorder).Render("╰" + middle + "╯")
}

// SectionContentLine renders a content line with left and right borders, properly padded to width.
// Format: │ content                                              │
func SectionContentLine(content string, width int) string {
	if width < 4 {
		width = 4
	}

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)

	// Inner width is total width minus "│ " on the left and " │" on the right
	innerWidth := width - 4
	padding := innerWidth - lipgloss.Width(content)
	if padding < 0 {
		padding = 0
	}

	return borderStyle.Render("│") + " " + content + strings.Repeat(" ", padding) + " " + borderStyle.Render("│")
}
