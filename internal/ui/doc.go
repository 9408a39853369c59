// Package ui holds the styled one-shot output used by emgscope's commands
// outside the live dashboard: status lines, symbols and tables.
//
// Colors are ANSI codes so the output follows the terminal theme:
//
//	ColorSuccess (green)  - finished steps
//	ColorError   (red)    - failures
//	ColorWarning (yellow) - things to look at
//	ColorMuted   (gray)   - hints and secondary text
//
// --no-color switches lipgloss to the Ascii profile, which strips all of it.
package ui
