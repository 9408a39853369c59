package monitor

import (
	"sync"

	"github.com/basturkme/4IER-HMI/internal/protocol"
)

// DefaultCapacity is the number of samples kept per channel when none is given.
const DefaultCapacity = 200

// Store holds the recent history of every channel plus the classification
// and link state. It is the only state shared between ingestion and
// rendering; every accessor copies.
type Store struct {
	mu       sync.RWMutex
	capacity int
	names    []string
	series   map[string]*ringBuffer
	latest   map[string]float64 // only channels that have received a sample
	status   Status
	link     LinkState
	linkErr  error
	seq      uint64 // decoded lines appended
	dropped  uint64 // lines that were not data
}

// ringBuffer is a fixed-size circular buffer for float64 values.
// It starts full of zeros so its length is always its capacity.
type ringBuffer struct {
	data []float64
	head int // next write position, and the oldest value
}

// NewStore creates one ring buffer of the given capacity per channel, in
// the order given. A capacity below 1 uses DefaultCapacity. Duplicate
// channel names share one buffer.
func NewStore(channels []string, capacity int) *Store {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	s := &Store{
		capacity: capacity,
		series:   make(map[string]*ringBuffer, len(channels)),
		latest:   make(map[string]float64, len(channels)),
	}
	for _, name := range channels {
		if _, ok := s.series[name]; ok {
			continue
		}
		s.names = append(s.names, name)
		s.series[name] = newRingBuffer(capacity)
	}
	return s
}

// Capacity returns N, the length of every series.
func (s *Store) Capacity() int {
	return s.capacity
}

// Channels returns the channel names in display order.
func (s *Store) Channels() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Append pushes one sample, evicting the oldest. Unknown channels are
// ignored and reported with false.
func (s *Store) Append(channel string, value float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.push(channel, value) {
		return false
	}
	s.seq++
	return true
}

// AppendAll pushes every value of one decoded line under a single lock and
// advances the sequence number once. It returns how many values were kept.
func (s *Store) AppendAll(values []protocol.Value) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, v := range values {
		if s.push(v.Channel, v.Value) {
			n++
		}
	}
	if n > 0 {
		s.seq++
	}
	return n
}

// push must be called with s.mu held.
func (s *Store) push(channel string, value float64) bool {
	buf, ok := s.series[channel]
	if !ok {
		return false
	}
	buf.push(value)
	s.latest[channel] = value
	return true
}

// Drop counts a line that was not data.
func (s *Store) Drop() {
	s.mu.Lock()
	s.dropped++
	s.mu.Unlock()
}

// Latest returns the most recent sample of a channel. ok is false for an
// unknown channel or one that has not received a sample yet.
func (s *Store) Latest(channel string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.latest[channel]
	return v, ok
}

// Seq returns the number of decoded lines appended so far.
func (s *Store) Seq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// SetStatus replaces the classification status.
func (s *Store) SetStatus(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Status returns the current classification status.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// SetLink records the link health. err is the failure for LinkFailed and
// LinkLost and nil otherwise.
func (s *Store) SetLink(state LinkState, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.link = state
	s.linkErr = err
}

// Link returns the link health and the error that caused it, if any.
func (s *Store) Link() (LinkState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.link, s.linkErr
}

// Series is one channel's history inside a Snapshot.
type Series struct {
	Name   string
	Values []float64 // exactly Capacity values, oldest first
	Latest float64
	// HasLatest is false until the channel's first sample.
	HasLatest bool
}

// Snapshot is a copy of the Store taken under its read lock. Series from
// different channels may reflect different ingestion ticks.
type Snapshot struct {
	Series   []Series
	Status   Status
	Link     LinkState
	LinkErr  error
	Seq      uint64
	Dropped  uint64
	Capacity int
}

// Snapshot copies every buffer and the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Series:   make([]Series, len(s.names)),
		Status:   s.status,
		Link:     s.link,
		LinkErr:  s.linkErr,
		Seq:      s.seq,
		Dropped:  s.dropped,
		Capacity: s.capacity,
	}
	for i, name := range s.names {
		latest, ok := s.latest[name]
		snap.Series[i] = Series{
			Name:      name,
			Values:    s.series[name].values(),
			Latest:    latest,
			HasLatest: ok,
		}
	}
	return snap
}

// Find returns the series with the given name.
func (snap Snapshot) Find(name string) (Series, bool) {
	for _, s := range snap.Series {
		if s.Name == name {
			return s, true
		}
	}
	return Series{}, false
}

// newRingBuffer creates a zero-filled ring buffer with the specified capacity.
func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{data: make([]float64, size)}
}

// push overwrites the oldest value.
func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % len(r.data)
}

// values returns a copy of the buffer in chronological order (oldest first).
func (r *ringBuffer) values() []float64 {
	out := make([]float64, len(r.data))
	n := copy(out, r.data[r.head:])
	copy(out[n:], r.data[:r.head])
	return out
}
