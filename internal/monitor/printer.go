package monitor

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/basturkme/4IER-HMI/internal/errors"
)

// Printer is the headless render loop. On every tick it writes one line
// with the latest values and state, but only when new data arrived.
type Printer struct {
	store      *Store
	classifier *Classifier
	w          io.Writer
	interval   time.Duration
	labels     map[string]string

	lastSeq  uint64
	lastLink LinkState
}

// NewPrinter creates a printer for store writing to w. classifier may be nil.
func NewPrinter(store *Store, classifier *Classifier, w io.Writer, opts ViewOptions) *Printer {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	return &Printer{
		store:      store,
		classifier: classifier,
		w:          w,
		interval:   opts.Interval,
		labels:     opts.Labels,
	}
}

// Tick prints the current values if the sequence number advanced since the
// last printed line, and a notice the first time the link breaks or ends.
// It reports whether a data line was written.
func (p *Printer) Tick() bool {
	snap := p.store.Snapshot()

	printed := false
	if snap.Seq != p.lastSeq {
		p.lastSeq = snap.Seq
		fmt.Fprintln(p.w, p.formatLine(snap))
		printed = true
	}

	if snap.Link != p.lastLink {
		p.lastLink = snap.Link
		p.printLink(snap)
	}
	return printed
}

func (p *Printer) printLink(snap Snapshot) {
	switch snap.Link {
	case LinkFailed:
		fmt.Fprintf(p.w, "! link failed: %s\n", errors.Summary(snap.LinkErr))
	case LinkLost:
		fmt.Fprintf(p.w, "! link lost: %s\n", errors.Summary(snap.LinkErr))
	case LinkEnded:
		fmt.Fprintln(p.w, "# end of stream")
	}
}

// formatLine renders "rest=0.1 index=0.75 middle=0.05 | INDEX".
func (p *Printer) formatLine(snap Snapshot) string {
	fields := make([]string, 0, len(snap.Series))
	for _, s := range snap.Series {
		if !s.HasLatest {
			continue
		}
		name := s.Name
		if l, ok := p.labels[name]; ok && l != "" {
			name = l
		}
		fields = append(fields, name+"="+strconv.FormatFloat(s.Latest, 'f', -1, 64))
	}
	line := strings.Join(fields, " ")
	if p.classifier.Enabled() {
		line += " | " + snap.Status.State.String()
	}
	return line
}

// Run ticks until ctx is cancelled or done is closed. After done it prints
// whatever arrived last, so a finished replay is not cut short.
func (p *Printer) Run(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			p.Tick()
			return
		case <-ticker.C:
			p.Tick()
		}
	}
}
