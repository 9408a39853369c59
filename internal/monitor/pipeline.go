package monitor

import (
	"context"
	"io"
	"sync"

	"github.com/basturkme/4IER-HMI/internal/errors"
	"github.com/basturkme/4IER-HMI/internal/link"
	"github.com/basturkme/4IER-HMI/internal/logger"
	"github.com/basturkme/4IER-HMI/internal/protocol"
)

// OpenFunc opens a link. link.Open in production.
type OpenFunc func(ctx context.Context, spec link.Spec) (link.Source, error)

// Options configures a Pipeline.
type Options struct {
	Link      link.Spec
	Protocol  protocol.Spec
	Capacity  int
	Rules     []Rule
	Threshold float64
	Fallback  State
	Observer  Observer
	Record    io.Writer
	Log       logger.Logger
	Open      OpenFunc // defaults to link.Open
}

// Pipeline owns the store, matcher and classifier for one session and runs
// ingestion in the background. Lifecycle: NewPipeline, Start, Stop, Wait.
type Pipeline struct {
	opts       Options
	matcher    *protocol.Matcher
	store      *Store
	classifier *Classifier

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

// NewPipeline validates the protocol and builds an idle pipeline.
func NewPipeline(opts Options) (*Pipeline, error) {
	matcher, err := protocol.New(opts.Protocol)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid protocol", "Check the protocol section of .emgscope.yaml")
	}
	if opts.Log == nil {
		opts.Log = logger.NewEnvLogger("[ingest]")
	}
	if opts.Open == nil {
		opts.Open = link.Open
	}
	if opts.Link.Log == nil {
		opts.Link.Log = opts.Log
	}

	return &Pipeline{
		opts:       opts,
		matcher:    matcher,
		store:      NewStore(matcher.Channels(), opts.Capacity),
		classifier: NewClassifier(opts.Rules, opts.Threshold, opts.Fallback),
		done:       make(chan struct{}),
	}, nil
}

// Store returns the shared store the render loop reads from.
func (p *Pipeline) Store() *Store {
	return p.store
}

// Classifier returns the pipeline's classifier.
func (p *Pipeline) Classifier() *Classifier {
	return p.classifier
}

// Start opens the link and runs ingestion on a new goroutine. An open
// failure is logged once, recorded as LinkFailed and not retried. Calling
// Start twice has no effect.
func (p *Pipeline) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	ctx, p.cancel = context.WithCancel(ctx)
	p.store.SetLink(LinkConnecting, nil)

	go func() {
		defer close(p.done)
		p.setErr(p.run(ctx))
	}()
}

func (p *Pipeline) run(ctx context.Context) error {
	obs := p.opts.Observer
	if obs == nil {
		obs = nopObserver{}
	}

	src, err := p.opts.Open(ctx, p.opts.Link)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		p.store.SetLink(LinkFailed, err)
		obs.LinkChanged(LinkFailed)
		p.opts.Log.Error("%s", errors.Summary(err))
		return err
	}

	in := &Ingestor{
		Source:     src,
		Matcher:    p.matcher,
		Store:      p.store,
		Classifier: p.classifier,
		Observer:   obs,
		Record:     p.opts.Record,
		Log:        p.opts.Log,
	}
	return in.Run(ctx)
}

func (p *Pipeline) setErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Stop cancels ingestion. It does not wait; call Wait for that.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

// Done is closed when ingestion has exited.
func (p *Pipeline) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until ingestion exits and returns its error: the open failure
// or the fatal read error, nil after Stop or the end of a replay. Wait on a
// pipeline that was never started returns nil at once.
func (p *Pipeline) Wait() error {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		return nil
	}
	<-p.done
	return p.Err()
}

// Err returns ingestion's error once it has exited, nil before that.
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
