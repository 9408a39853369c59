package monitor

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap holds the dashboard key bindings. It implements help.KeyMap.
type KeyMap struct {
	Quit   key.Binding
	Freeze key.Binding
	Help   key.Binding
	Close  key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Freeze: key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "freeze")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Close:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close help")),
	}
}

// ShortHelp is shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Freeze, k.Help}
}

// FullHelp is shown in the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Freeze, k.Help},
		{k.Close, k.Quit},
	}
}

// HandleKeyMsg processes keyboard input and updates the model.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return true, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return true, nil

	case m.showHelp && key.Matches(msg, m.keys.Close):
		m.showHelp = false
		return true, nil

	case key.Matches(msg, m.keys.Freeze):
		m.frozen = !m.frozen
		if !m.frozen {
			// Catch up immediately instead of waiting for the next tick.
			m.snap = m.store.Snapshot()
		}
		return true, nil
	}

	return false, nil
}
