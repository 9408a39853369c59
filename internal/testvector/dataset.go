// Package testvector turns a recorded EMG dataset into a C header of test
// vectors for the firmware: a fixed rest/movement scenario, normalised and
// optionally smoothed, written as static arrays.
package testvector

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/basturkme/4IER-HMI/internal/errors"
)

// Label columns recognised when none is given explicitly, in order of
// preference. restimulus is the relabelled (refined) stimulus.
var labelColumns = []string{"restimulus", "stimulus"}

// Dataset is a recording loaded into memory: one row per sample, EMG
// columns in file order plus the movement label for each row.
type Dataset struct {
	Columns     []string
	LabelColumn string
	EMG         [][]float64
	Labels      []int
}

// Rows returns the number of samples.
func (d *Dataset) Rows() int {
	return len(d.EMG)
}

// Count returns how many rows carry label.
func (d *Dataset) Count(label int) int {
	n := 0
	for _, l := range d.Labels {
		if l == label {
			n++
		}
	}
	return n
}

// ReadCSV loads a dataset with a header row. Every column except the known
// label columns is treated as EMG. labelColumn picks the label column; empty
// means restimulus, falling back to stimulus.
func ReadCSV(r io.Reader, labelColumn string) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrExport,
			"Dataset is empty",
			"Export the recording as CSV with a header row")
	}
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrExport,
			"Couldn't read the dataset header",
			"Export the recording as CSV with a header row")
	}
	header = append([]string(nil), header...)

	labelIdx, err := findLabelColumn(header, labelColumn)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{LabelColumn: header[labelIdx]}
	var emgIdx []int
	for i, name := range header {
		if i == labelIdx || isLabelColumn(name) {
			continue
		}
		emgIdx = append(emgIdx, i)
		ds.Columns = append(ds.Columns, strings.TrimSpace(name))
	}
	if len(emgIdx) == 0 {
		return nil, errors.New(errors.ErrExport,
			"Dataset has no EMG columns",
			"Put the EMG channels before the label column")
	}

	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrExport,
				fmt.Sprintf("Couldn't read dataset line %d", line),
				"Check that every row has the same number of columns")
		}

		row := make([]float64, len(emgIdx))
		for j, idx := range emgIdx {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.New(errors.ErrExport,
					fmt.Sprintf("Line %d: column %q is not a number: %q", line, header[idx], record[idx]),
					"Remove or fix rows with missing samples")
			}
			row[j] = v
		}
		label, err := parseLabel(record[labelIdx])
		if err != nil {
			return nil, errors.New(errors.ErrExport,
				fmt.Sprintf("Line %d: label %q is not a movement class", line, record[labelIdx]),
				"Labels must be whole numbers (0 is rest)")
		}

		ds.EMG = append(ds.EMG, row)
		ds.Labels = append(ds.Labels, label)
	}

	if ds.Rows() == 0 {
		return nil, errors.New(errors.ErrExport,
			"Dataset has a header but no samples", "")
	}
	return ds, nil
}

func findLabelColumn(header []string, want string) (int, error) {
	if want != "" {
		for i, name := range header {
			if strings.EqualFold(strings.TrimSpace(name), want) {
				return i, nil
			}
		}
		return -1, errors.New(errors.ErrExport,
			fmt.Sprintf("Label column %q not found", want),
			"Columns in this file: "+strings.Join(header, ", "))
	}
	for _, candidate := range labelColumns {
		for i, name := range header {
			if strings.EqualFold(strings.TrimSpace(name), candidate) {
				return i, nil
			}
		}
	}
	return -1, errors.New(errors.ErrExport,
		"Dataset has no restimulus or stimulus column",
		"Name the label column with --label-column")
}

func isLabelColumn(name string) bool {
	for _, c := range labelColumns {
		if strings.EqualFold(strings.TrimSpace(name), c) {
			return true
		}
	}
	return false
}

// parseLabel accepts "17" and the "17.0" some exporters write.
func parseLabel(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}
