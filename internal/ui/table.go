package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a new Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	// Nothing is focused in printed tables, so the selected row looks like the rest.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string.
// Column widths grow to fit the widest cell.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	fitted := make([]TableColumn, len(columns))
	copy(fitted, columns)
	for _, row := range rows {
		for i, cell := range row {
			if i < len(fitted) && lipgloss.Width(cell)+1 > fitted[i].Width {
				fitted[i].Width = lipgloss.Width(cell) + 1
			}
		}
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	t := NewTable(fitted, tableRows)
	return t.View()
}

// PortRow is one line of the 'emgscope ports' listing.
type PortRow struct {
	Name       string
	Details    string
	Configured bool
}

// RenderPortTable lists serial ports, marking the one the config points at.
func RenderPortTable(rows []PortRow) string {
	if len(rows) == 0 {
		return "No serial ports found"
	}

	activeStyle := lipgloss.NewStyle().Foreground(ColorSuccess)

	var b strings.Builder
	for _, row := range rows {
		marker := mutedStyle.Render(SymbolPending)
		name := row.Name
		if row.Configured {
			marker = activeStyle.Render(SymbolActive)
			name = boldStyle.Render(name)
		}
		b.WriteString("  " + marker + " " + padRight(name, 22))
		if row.Details != "" {
			b.WriteString(mutedStyle.Render(row.Details))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// padRight pads a string to the specified width.
func padRight(s string, width int) string {
	// Account for ANSI codes when calculating visible length
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visibleLen)
}
