package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/basturkme/4IER-HMI/internal/link"
	"github.com/basturkme/4IER-HMI/internal/protocol"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	// Force TrueColor output in tests so we can verify ANSI color codes
	lipgloss.SetColorProfile(termenv.TrueColor)
}

// labeledSpec is the Test/Rest/Index/Middle firmware format.
func labeledSpec() protocol.Spec {
	return protocol.Spec{
		Variant:   protocol.LabeledLoose,
		Separator: ",",
		Channels: []protocol.Channel{
			{Name: "test", Label: "Test:", Optional: true},
			{Name: "rest", Label: "Rest:"},
			{Name: "index", Label: "Index:"},
			{Name: "middle", Label: "Middle:"},
		},
	}
}

func fingerRules() []Rule {
	return []Rule{
		{Channel: "rest", State: StateRest},
		{Channel: "index", State: StateIndex},
		{Channel: "middle", State: StateMiddle},
	}
}

// fakeSource serves canned lines, then err. With a nil err it reports
// "no data yet" until cancelled.
type fakeSource struct {
	mu     sync.Mutex
	lines  []string
	err    error
	closed atomic.Int32
}

func newFakeSource(err error, lines ...string) *fakeSource {
	return &fakeSource{lines: lines, err: err}
}

func (f *fakeSource) Next(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if f.closed.Load() > 0 {
		return "", false, link.ErrClosed
	}

	f.mu.Lock()
	if len(f.lines) > 0 {
		line := f.lines[0]
		f.lines = f.lines[1:]
		f.mu.Unlock()
		return line, true, nil
	}
	err := f.err
	f.mu.Unlock()

	if err != nil {
		return "", false, err
	}
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case <-time.After(5 * time.Millisecond):
		return "", false, nil
	}
}

func (f *fakeSource) Close() error {
	f.closed.Add(1)
	return nil
}

func (f *fakeSource) String() string { return "fake" }

func (f *fakeSource) closeCount() int { return int(f.closed.Load()) }

// countingObserver records Observer calls.
type countingObserver struct {
	mu      sync.Mutex
	read    int
	decoded int
	dropped int
	links   []LinkState
	states  []State
}

func (o *countingObserver) LineRead() {
	o.mu.Lock()
	o.read++
	o.mu.Unlock()
}

func (o *countingObserver) LineDecoded([]protocol.Value) {
	o.mu.Lock()
	o.decoded++
	o.mu.Unlock()
}

func (o *countingObserver) LineDropped() {
	o.mu.Lock()
	o.dropped++
	o.mu.Unlock()
}

func (o *countingObserver) LinkChanged(s LinkState) {
	o.mu.Lock()
	o.links = append(o.links, s)
	o.mu.Unlock()
}

func (o *countingObserver) StateChanged(s State) {
	o.mu.Lock()
	o.states = append(o.states, s)
	o.mu.Unlock()
}

func lipglossWidth(s string) int { return lipgloss.Width(s) }
