package monitor

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/basturkme/4IER-HMI/internal/errors"
	"github.com/basturkme/4IER-HMI/internal/link"
	"github.com/basturkme/4IER-HMI/internal/logger"
	"github.com/basturkme/4IER-HMI/internal/protocol"
)

// Ingestor moves lines from a Source into a Store.
type Ingestor struct {
	Source     link.Source
	Matcher    *protocol.Matcher
	Store      *Store
	Classifier *Classifier // nil or without rules: status is left alone
	Observer   Observer    // optional
	Record     io.Writer   // optional; receives every raw line
	Log        logger.Logger
}

// Run reads until ctx is cancelled or the link fails, and always closes the
// Source. Cancellation and the end of a finite stream return nil; a fatal
// link error marks the Store LinkLost and is returned.
func (in *Ingestor) Run(ctx context.Context) error {
	defer in.Source.Close()

	log := in.Log
	if log == nil {
		log = logger.Noop()
	}
	obs := in.Observer
	if obs == nil {
		obs = nopObserver{}
	}

	in.Store.SetLink(LinkUp, nil)
	obs.LinkChanged(LinkUp)
	log.Info("reading %s", in.Source)

	record := in.Record
	for {
		if ctx.Err() != nil {
			return nil
		}

		line, ok, err := in.Source.Next(ctx)
		if err != nil {
			switch {
			case ctx.Err() != nil, stderrors.Is(err, link.ErrClosed):
				return nil
			case stderrors.Is(err, link.ErrEndOfStream):
				in.Store.SetLink(LinkEnded, nil)
				obs.LinkChanged(LinkEnded)
				log.Info("%s: end of stream after %d samples", in.Source, in.Store.Seq())
				return nil
			}
			in.Store.SetLink(LinkLost, err)
			obs.LinkChanged(LinkLost)
			log.Error("%s", errors.Summary(err))
			return err
		}
		if !ok {
			continue
		}

		obs.LineRead()
		if record != nil {
			if _, werr := io.WriteString(record, line+"\n"); werr != nil {
				log.Warn("recording stopped: %v", werr)
				record = nil
			}
		}
		in.handle(line, obs, log)
	}
}

func (in *Ingestor) handle(line string, obs Observer, log logger.Logger) {
	values, ok := in.Matcher.Match(line)
	if !ok {
		in.Store.Drop()
		obs.LineDropped()
		log.Debug("skipped: %q", line)
		return
	}

	in.Store.AppendAll(values)
	obs.LineDecoded(values)

	if !in.Classifier.Enabled() {
		return
	}
	prev := in.Store.Status().State
	status := in.Classifier.Classify(in.Store.Latest)
	status.Seq = in.Store.Seq()
	in.Store.SetStatus(status)
	if status.State != prev {
		obs.StateChanged(status.State)
		log.Debug("state %s -> %s", prev, status.State)
	}
}
