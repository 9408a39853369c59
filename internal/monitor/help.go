package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Help overlay styles
var (
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(1, 2)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			MarginBottom(1)
)

// renderHelpOverlay renders a centered help box with the key bindings and
// a short legend of the state colors.
func (m Model) renderHelpOverlay() string {
	var lines []string
	lines = append(lines, helpTitleStyle.Render("Keyboard Shortcuts"))
	lines = append(lines, m.help.FullHelpView(m.keys.FullHelp()))
	lines = append(lines, "")
	lines = append(lines, helpTitleStyle.Render("States"))
	for _, st := range States {
		lines = append(lines, StateStyle(st).Width(11).Render(string(st))+LabelStyle.Render(st.Description()))
	}
	if m.classifier.Enabled() {
		lines = append(lines, "")
		lines = append(lines, LabelStyle.Render("A state wins when its channel is above ")+
			ThresholdStyle.Render(formatThreshold(m.classifier.Threshold()))+
			LabelStyle.Render(", first rule first."))
	}
	lines = append(lines, "")
	lines = append(lines, MutedStyle.Render("Press ? to close"))

	box := helpBoxStyle.Render(strings.Join(lines, "\n"))
	if m.width == 0 || m.height == 0 {
		return box
	}

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
	)
}
