package testvector

import (
	"fmt"
	"io"

	"github.com/basturkme/4IER-HMI/internal/errors"
)

// Scenario offsets. The second rest slice starts restGap rows into the rest
// samples; the second movement slice starts moveGap rows after the middle
// of the movement samples.
const (
	restGap = 200
	moveGap = 100
)

// RestLabel marks rows where the hand is at rest.
const RestLabel = 0

// Options controls how a dataset becomes a test vector.
type Options struct {
	Channels  int  // EMG columns to keep, from the left
	Movement  int  // movement class to contrast with rest
	Normalize bool // standard-score each channel over the whole recording
	Window    int  // moving RMS window in samples, 0 disables smoothing
	Segment   int  // rows per scenario slice
	Decimals  int  // digits after the decimal point in the header
	Labels    bool // also emit test_labels[]
}

// DefaultOptions matches the four-channel model the firmware runs.
func DefaultOptions() Options {
	return Options{
		Channels:  4,
		Movement:  17,
		Normalize: true,
		Segment:   50,
		Decimals:  4,
	}
}

// Vector is the generated scenario: rest, movement, rest, movement.
type Vector struct {
	Rows     [][]float64
	Labels   []int
	Channels int
}

// Len returns the number of rows.
func (v *Vector) Len() int {
	return len(v.Rows)
}

func (o Options) validate() error {
	switch {
	case o.Channels < 1:
		return errors.New(errors.ErrExport, "Channel count must be at least 1", "")
	case o.Segment < 1:
		return errors.New(errors.ErrExport, "Segment length must be at least 1", "")
	case o.Window < 0:
		return errors.New(errors.ErrExport, "RMS window can't be negative", "Use 0 to turn smoothing off")
	case o.Decimals < 0 || o.Decimals > 10:
		return errors.New(errors.ErrExport, "Decimals must be between 0 and 10", "")
	case o.Movement == RestLabel:
		return errors.New(errors.ErrExport,
			"Movement class can't be the rest class",
			fmt.Sprintf("Pick a class other than %d", RestLabel))
	}
	return nil
}

// Build selects the scenario from ds.
//
// Rows are picked by label: rest[0:L], move[mid:mid+L], rest[200:200+L],
// move[mid+100:mid+100+L], where L is the segment length and mid is half the
// number of movement rows. Normalisation runs over the whole recording
// before selection; smoothing runs over the joined scenario.
func Build(ds *Dataset, opts Options) (*Vector, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Channels > len(ds.Columns) {
		return nil, errors.New(errors.ErrExport,
			fmt.Sprintf("Dataset has %d EMG columns, %d requested", len(ds.Columns), opts.Channels),
			"Lower --channels")
	}

	var rest, move []int
	for i, l := range ds.Labels {
		switch l {
		case RestLabel:
			rest = append(rest, i)
		case opts.Movement:
			move = append(move, i)
		}
	}

	L := opts.Segment
	if len(move) == 0 {
		return nil, errors.New(errors.ErrExport,
			fmt.Sprintf("Movement class %d not found in dataset", opts.Movement),
			fmt.Sprintf("Pick a class that appears in the %s column", ds.LabelColumn))
	}
	mid := len(move) / 2
	if mid+moveGap+L > len(move) {
		return nil, errors.New(errors.ErrExport,
			fmt.Sprintf("Movement class %d has %d samples, need %d", opts.Movement, len(move), 2*(moveGap+L)),
			"Use a shorter --segment or a longer recording")
	}
	if restGap+L > len(rest) {
		return nil, errors.New(errors.ErrExport,
			fmt.Sprintf("Only %d rest samples, need %d", len(rest), restGap+L),
			"Use a shorter --segment or a longer recording")
	}

	data := make([][]float64, ds.Rows())
	for i, row := range ds.EMG {
		data[i] = row[:opts.Channels]
	}
	if opts.Normalize {
		data = standardize(data)
	}

	var picked []int
	picked = append(picked, rest[0:L]...)
	picked = append(picked, move[mid:mid+L]...)
	picked = append(picked, rest[restGap:restGap+L]...)
	picked = append(picked, move[mid+moveGap:mid+moveGap+L]...)

	v := &Vector{Channels: opts.Channels}
	for _, idx := range picked {
		v.Rows = append(v.Rows, append([]float64(nil), data[idx]...))
		v.Labels = append(v.Labels, ds.Labels[idx])
	}

	if opts.Window > 0 {
		if opts.Window > v.Len() {
			return nil, errors.New(errors.ErrExport,
				fmt.Sprintf("RMS window %d is longer than the %d-row scenario", opts.Window, v.Len()),
				"Use a smaller --window")
		}
		v.Rows = movingRMS(v.Rows, opts.Window)
	}
	return v, nil
}

// Generate reads a CSV dataset from r and writes the C header to w.
func Generate(r io.Reader, w io.Writer, labelColumn string, opts Options) (*Vector, error) {
	ds, err := ReadCSV(r, labelColumn)
	if err != nil {
		return nil, err
	}
	v, err := Build(ds, opts)
	if err != nil {
		return nil, err
	}
	if err := WriteHeader(w, v, opts); err != nil {
		return nil, err
	}
	return v, nil
}
