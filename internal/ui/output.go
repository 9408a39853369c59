package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	errorStyle   = lipgloss.NewStyle().Foreground(ColorError)
	warningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	mutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

// Success prints "✓ message".
func Success(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", successStyle.Render(SymbolSuccess), fmt.Sprintf(format, args...))
}

// Fail prints "✗ message".
func Fail(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", errorStyle.Render(SymbolFail), fmt.Sprintf(format, args...))
}

// Warn prints "! message".
func Warn(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", warningStyle.Render(SymbolWarning), fmt.Sprintf(format, args...))
}

// Hint prints an indented gray line, for next steps under a status line.
func Hint(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "  %s\n", mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Muted renders s in the muted color.
func Muted(s string) string {
	return mutedStyle.Render(s)
}

// Bold renders s in bold.
func Bold(s string) string {
	return boldStyle.Render(s)
}
