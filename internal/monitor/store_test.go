package monitor

import (
	stderrors "errors"
	"sync"
	"testing"

	"github.com/basturkme/4IER-HMI/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		expected int
	}{
		{"default capacity", 0, DefaultCapacity},
		{"negative capacity", -1, DefaultCapacity},
		{"custom capacity", 300, 300},
		{"single sample", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore([]string{"rest", "index"}, tt.capacity)
			assert.Equal(t, tt.expected, s.Capacity())
			assert.Equal(t, []string{"rest", "index"}, s.Channels())
		})
	}
}

func TestStore_PrefilledWithZeros(t *testing.T) {
	s := NewStore([]string{"signal", "class", "confidence"}, 5)

	snap := s.Snapshot()
	require.Len(t, snap.Series, 3)
	for _, series := range snap.Series {
		assert.Equal(t, []float64{0, 0, 0, 0, 0}, series.Values, series.Name)
		assert.False(t, series.HasLatest)
	}
	assert.Equal(t, uint64(0), snap.Seq)
	assert.Equal(t, StateNone, snap.Status.State)
	assert.Equal(t, LinkConnecting, snap.Link)
}

func TestStore_DuplicateChannelNames(t *testing.T) {
	s := NewStore([]string{"rest", "rest", "index"}, 3)
	assert.Equal(t, []string{"rest", "index"}, s.Channels())
}

func TestStore_KeepsLastN(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7, 200} {
		for _, m := range []int{n, n + 1, 2*n + 3} {
			s := NewStore([]string{"x"}, n)
			for i := 1; i <= m; i++ {
				require.True(t, s.Append("x", float64(i)))
			}

			want := make([]float64, n)
			for i := range want {
				want[i] = float64(m - n + 1 + i)
			}

			got, ok := s.Snapshot().Find("x")
			require.True(t, ok)
			assert.Equal(t, want, got.Values, "N=%d M=%d", n, m)
			assert.Equal(t, float64(m), got.Latest)
		}
	}
}

func TestStore_PartialFillKeepsLength(t *testing.T) {
	s := NewStore([]string{"x"}, 4)
	s.Append("x", 1)
	s.Append("x", 2)

	got, _ := s.Snapshot().Find("x")
	assert.Equal(t, []float64{0, 0, 1, 2}, got.Values)
}

func TestStore_AppendUnknownChannel(t *testing.T) {
	s := NewStore([]string{"rest"}, 3)

	assert.False(t, s.Append("thumb", 0.9))
	assert.Equal(t, uint64(0), s.Seq())

	_, ok := s.Latest("thumb")
	assert.False(t, ok)
}

func TestStore_AppendAll(t *testing.T) {
	s := NewStore([]string{"rest", "index", "middle"}, 3)

	n := s.AppendAll([]protocol.Value{
		{Channel: "rest", Value: 0.1},
		{Channel: "index", Value: 0.75},
		{Channel: "middle", Value: 0.05},
		{Channel: "thumb", Value: 1},
	})
	assert.Equal(t, 3, n)
	assert.Equal(t, uint64(1), s.Seq(), "one decoded line advances the sequence once")

	v, ok := s.Latest("index")
	require.True(t, ok)
	assert.Equal(t, 0.75, v)

	assert.Equal(t, 0, s.AppendAll(nil))
	assert.Equal(t, uint64(1), s.Seq())
}

func TestStore_LatestWithOptionalChannel(t *testing.T) {
	s := NewStore([]string{"test", "rest"}, 3)
	s.AppendAll([]protocol.Value{{Channel: "test", Value: 0.9}, {Channel: "rest", Value: 0.1}})
	s.AppendAll([]protocol.Value{{Channel: "rest", Value: 0.2}})

	v, ok := s.Latest("test")
	require.True(t, ok)
	assert.Equal(t, 0.9, v, "a channel missing from a line keeps its last value")

	snap := s.Snapshot()
	test, _ := snap.Find("test")
	rest, _ := snap.Find("rest")
	assert.Equal(t, []float64{0, 0, 0.9}, test.Values)
	assert.Equal(t, []float64{0, 0.1, 0.2}, rest.Values)
}

func TestStore_StatusAndLink(t *testing.T) {
	s := NewStore([]string{"rest"}, 2)

	s.SetStatus(Status{State: StateRest, Text: "hand at rest", Seq: 4})
	assert.Equal(t, Status{State: StateRest, Text: "hand at rest", Seq: 4}, s.Status())

	cause := stderrors.New("device unplugged")
	s.SetLink(LinkLost, cause)
	state, err := s.Link()
	assert.Equal(t, LinkLost, state)
	assert.Equal(t, cause, err)

	snap := s.Snapshot()
	assert.Equal(t, LinkLost, snap.Link)
	assert.Equal(t, cause, snap.LinkErr)
	assert.Equal(t, StateRest, snap.Status.State)
}

func TestStore_Drop(t *testing.T) {
	s := NewStore([]string{"rest"}, 2)
	s.Drop()
	s.Drop()
	assert.Equal(t, uint64(2), s.Snapshot().Dropped)
	assert.Equal(t, uint64(0), s.Seq())
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := NewStore([]string{"x"}, 3)
	s.Append("x", 1)

	snap := s.Snapshot()
	snap.Series[0].Values[2] = 99

	s.Append("x", 2)
	got, _ := s.Snapshot().Find("x")
	assert.Equal(t, []float64{0, 1, 2}, got.Values)
	assert.Equal(t, 99.0, snap.Series[0].Values[2])
}

func TestStore_ConcurrentAppendAndSnapshot(t *testing.T) {
	const capacity = 50
	channels := []string{"rest", "index", "middle"}
	s := NewStore(channels, capacity)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 5000; i++ {
			// Every line writes the same value to all channels so a torn
			// write would show up as a buffer with foreign values.
			v := float64(i)
			s.AppendAll([]protocol.Value{
				{Channel: "rest", Value: v},
				{Channel: "index", Value: v},
				{Channel: "middle", Value: v},
			})
		}
		close(stop)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := s.Snapshot()
				for _, series := range snap.Series {
					if !assert.Len(t, series.Values, capacity) {
						return
					}
					// Values are strictly increasing once past the zero fill.
					for i := 1; i < len(series.Values); i++ {
						prev, cur := series.Values[i-1], series.Values[i]
						if prev != 0 && cur != prev+1 {
							t.Errorf("%s: torn buffer at %d: %v then %v", series.Name, i, prev, cur)
							return
						}
					}
				}
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, uint64(5000), s.Seq())
}
