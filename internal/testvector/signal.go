package testvector

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// column copies column c out of row-major data.
func column(data [][]float64, c int) []float64 {
	col := make([]float64, len(data))
	for i, row := range data {
		col[i] = row[c]
	}
	return col
}

func newRows(n, cols int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	return out
}

// standardize rescales each column to zero mean and unit variance using
// the population standard deviation. Constant columns become all zeros.
func standardize(data [][]float64) [][]float64 {
	if len(data) == 0 {
		return [][]float64{}
	}
	cols := len(data[0])
	out := newRows(len(data), cols)

	for c := 0; c < cols; c++ {
		col := column(data, c)
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		floats.AddConst(-mean, col)
		floats.Scale(1/std, col)
		for i, v := range col {
			out[i][c] = v
		}
	}
	return out
}

// movingRMS smooths each column with a centred moving RMS: the square root
// of the squared signal convolved with a box of width window, keeping the
// input length. Alignment follows a 'same' convolution, so the window covers
// window/2 samples ahead and (window-1)/2 behind, zero padded at the edges.
func movingRMS(data [][]float64, window int) [][]float64 {
	out := make([][]float64, len(data))
	if len(data) == 0 || window <= 1 {
		for i, row := range data {
			out[i] = append([]float64(nil), row...)
		}
		return out
	}
	n := len(data)
	cols := len(data[0])
	offset := (window - 1) / 2
	w := float64(window)

	out = newRows(n, cols)
	for c := 0; c < cols; c++ {
		col := column(data, c)
		for i := 0; i < n; i++ {
			k := i + offset
			lo := max(k-window+1, 0)
			hi := min(k, n-1)
			seg := col[lo : hi+1]
			out[i][c] = math.Sqrt(floats.Dot(seg, seg) / w)
		}
	}
	return out
}
