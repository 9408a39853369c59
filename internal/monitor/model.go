package monitor

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultInterval is the render tick when none is configured.
const DefaultInterval = 50 * time.Millisecond

// Height breakpoints for layout adjustments
const (
	// Below this many rows per channel the braille charts become one-line sparklines.
	MinGraphRows = 2
	MaxGraphRows = 8
)

// ViewOptions describes what the dashboard shows besides the data.
type ViewOptions struct {
	Source   string            // link description for the header
	Interval time.Duration     // render tick
	Labels   map[string]string // channel name -> display label
}

// Model is the Bubble Tea model for the live dashboard.
type Model struct {
	store      *Store
	classifier *Classifier
	opts       ViewOptions
	keys       KeyMap
	help       help.Model

	snap     Snapshot
	frozen   bool
	showHelp bool
	quitting bool
	width    int
	height   int
	frame    int
}

// tickMsg signals a periodic redraw.
type tickMsg time.Time

// stopMsg asks the dashboard to quit, e.g. on SIGTERM.
type stopMsg struct{}

// Stop returns a message that makes the model quit. Send it with
// tea.Program.Send from outside the program.
func Stop() tea.Msg {
	return stopMsg{}
}

// NewModel creates the dashboard for store. classifier may be nil.
func NewModel(store *Store, classifier *Classifier, opts ViewOptions) Model {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	return Model{
		store:      store,
		classifier: classifier,
		opts:       opts,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		snap:       store.Snapshot(),
	}
}

// Init starts the render tick.
func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		m.frame++
		if !m.frozen {
			m.snap = m.store.Snapshot()
		}
		return m, m.tickCmd()

	case stopMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

// tickCmd returns a command that sends a tick after the render interval.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.opts.Interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Frozen reports whether the display is paused.
func (m Model) Frozen() bool {
	return m.frozen
}

// Snapshot returns the snapshot currently on screen.
func (m Model) Snapshot() Snapshot {
	return m.snap
}

// label returns the display label of a channel.
func (m Model) label(name string) string {
	if l, ok := m.opts.Labels[name]; ok && l != "" {
		return l
	}
	return name
}

// graphRows returns how many rows each channel's chart gets, 0 for the
// one-line layout.
func (m Model) graphRows() int {
	n := len(m.snap.Series)
	if n == 0 {
		return 0
	}
	if m.height == 0 {
		return 3
	}
	// header + status + banner + footer, and two border lines per channel
	avail := m.height - 6 - 2*n
	rows := avail / n
	if rows < MinGraphRows {
		return 0
	}
	if rows > MaxGraphRows {
		return MaxGraphRows
	}
	return rows
}

// contentWidth is the width of one channel section.
func (m Model) contentWidth() int {
	if m.width == 0 {
		return 80
	}
	return m.width
}
