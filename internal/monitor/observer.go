package monitor

import "github.com/basturkme/4IER-HMI/internal/protocol"

// Observer is told about ingestion as it happens. The metrics package
// implements it; every method must be cheap and must not block.
type Observer interface {
	LineRead()
	LineDecoded(values []protocol.Value)
	LineDropped()
	LinkChanged(state LinkState)
	StateChanged(state State)
}

type nopObserver struct{}

func (nopObserver) LineRead()                    {}
func (nopObserver) LineDecoded([]protocol.Value) {}
func (nopObserver) LineDropped()                 {}
func (nopObserver) LinkChanged(LinkState)        {}
func (nopObserver) StateChanged(State)           {}
