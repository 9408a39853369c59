package monitor

import (
	"fmt"
	"math"
	"strings"

	"github.com/basturkme/4IER-HMI/internal/errors"
	"github.com/charmbracelet/lipgloss"
)

// markerWidth is the space reserved right of a decision chart for " ◂ 0.60".
const markerWidth = 7

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if banner := m.renderBanner(); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
	}
	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")
	b.WriteString(m.renderChannels())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the title bar with link and counter summary.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("emgscope")

	parts := []string{""}
	if m.opts.Source != "" {
		parts = append(parts, m.opts.Source)
	}
	parts = append(parts,
		m.linkIndicator(),
		fmt.Sprintf("%d samples", m.snap.Seq),
		fmt.Sprintf("%d skipped", m.snap.Dropped),
	)
	if m.frozen {
		parts = append(parts, lipgloss.NewStyle().Foreground(ColorWarning).Render(FrozenGlyph+" frozen"))
	}

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(strings.Join(parts, " | "))

	return HeaderStyle.Render(title + stats)
}

func (m Model) linkIndicator() string {
	switch m.snap.Link {
	case LinkConnecting:
		return ConnectingSpinnerFrames[m.frame%len(ConnectingSpinnerFrames)] + " connecting"
	case LinkUp:
		return lipgloss.NewStyle().Foreground(ColorHealthy).Render(LinkUpGlyph + " live")
	case LinkEnded:
		return LinkEndedGlyph + " ended"
	default:
		return lipgloss.NewStyle().Foreground(ColorCritical).Render(LinkDownGlyph + " " + m.snap.Link.String())
	}
}

// renderBanner returns the connectivity warning, or "" while the link is fine.
func (m Model) renderBanner() string {
	switch m.snap.Link {
	case LinkFailed:
		return BannerErrorStyle.Render("✗ Link failed: " + errors.Summary(m.snap.LinkErr))
	case LinkLost:
		return BannerErrorStyle.Render("✗ Link lost: " + errors.Summary(m.snap.LinkErr) + " (showing last data)")
	case LinkEnded:
		return BannerInfoStyle.Render("End of stream, showing last data")
	}
	return ""
}

// renderStatus renders the classification annotation.
func (m Model) renderStatus() string {
	if !m.classifier.Enabled() {
		return LabelStyle.Render(" state ") + MutedStyle.Render("classification off")
	}
	st := m.snap.Status
	text := st.Text
	if text == "" {
		text = st.State.Description()
	}
	return LabelStyle.Render(" state ") +
		StateStyle(st.State).Render(st.State.String()) +
		LabelStyle.Render("  "+text)
}

// renderChannels renders one section per channel.
func (m Model) renderChannels() string {
	if len(m.snap.Series) == 0 {
		return LabelStyle.Render("No channels configured")
	}

	rows := m.graphRows()
	width := m.contentWidth()

	var sections []string
	for i, s := range m.snap.Series {
		if rows == 0 {
			sections = append(sections, m.renderCompactChannel(i, s, width))
		} else {
			sections = append(sections, m.renderChannel(i, s, width, rows))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderChannel draws a bordered braille chart for one channel.
func (m Model) renderChannel(i int, s Series, width, rows int) string {
	color := SeriesColor(i)
	value := "--"
	if s.HasLatest {
		value = formatValue(s.Latest)
	}

	inner := width - 4
	decides := m.classifier.Enabled() && m.classifier.Decides(s.Name)
	chartWidth := inner
	if decides {
		chartWidth -= markerWidth
	}
	if chartWidth < 1 {
		chartWidth = 1
	}

	lo, hi := SeriesRange(s.Values)
	chart := colorRows(RenderBrailleSeries(s.Values, chartWidth, rows, lo, hi), color)

	markRow := -1
	if decides {
		markRow = ThresholdRow(m.classifier.Threshold(), lo, hi, rows)
	}

	lines := []string{SectionHeader(m.label(s.Name), value, width, color)}
	for r, row := range chart {
		if decides {
			mark := strings.Repeat(" ", markerWidth)
			if r == markRow {
				mark = ThresholdStyle.Render(fmt.Sprintf(" %s %-4s", ThresholdMarker, formatThreshold(m.classifier.Threshold())))
			}
			row += mark
		}
		lines = append(lines, SectionContentLine(row, width))
	}
	lines = append(lines, SectionFooter(width))

	return strings.Join(lines, "\n")
}

// renderCompactChannel draws one line per channel for short terminals.
func (m Model) renderCompactChannel(i int, s Series, width int) string {
	const labelWidth = 12
	const valueWidth = 10

	value := "--"
	if s.HasLatest {
		value = formatValue(s.Latest)
	}

	sparkWidth := width - labelWidth - valueWidth - 2
	if sparkWidth < 1 {
		sparkWidth = 1
	}
	lo, hi := SeriesRange(s.Values)
	spark := lipgloss.NewStyle().Foreground(SeriesColor(i)).Render(RenderMiniSparkline(s.Values, sparkWidth, lo, hi))

	return LabelStyle.Width(labelWidth).Render(" "+m.label(s.Name)) +
		spark + " " +
		ValueStyle.Width(valueWidth).Align(lipgloss.Right).Render(value)
}

// renderFooter renders the keyboard help footer.
func (m Model) renderFooter() string {
	return FooterStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

// formatValue shows integers (class ids) without decimals and everything
// else with three.
func formatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e9 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.3f", v)
}

func formatThreshold(t float64) string {
	return fmt.Sprintf("%.2f", t)
}
