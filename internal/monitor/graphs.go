package monitor

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille character rendering for high-resolution terminal graphs.
//
// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 (empty) and uses bit patterns:
// bit 0 = dot 1, bit 1 = dot 2, bit 2 = dot 3, bit 3 = dot 4,
// bit 4 = dot 5, bit 5 = dot 6, bit 6 = dot 7, bit 7 = dot 8

const brailleBase = '\u2800'

// sparklineBlocks are block characters for 8-level vertical resolution (lowest to highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// SeriesRange returns the vertical range to plot data in. Data that stays
// inside [0, 1] (probabilities, normalised EMG) gets the fixed range 0-1 so
// the threshold sits still; anything else is scaled to its own min and max.
func SeriesRange(data []float64) (lo, hi float64) {
	if len(data) == 0 {
		return 0, 1
	}

	lo, hi = data[0], data[0]
	for _, v := range data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	if lo >= 0 && hi <= 1 {
		return 0, 1
	}
	if lo == hi {
		return lo - 0.5, hi + 0.5
	}
	return lo, hi
}

// normalizeValue converts a value to 0-1 range given min/max bounds.
func normalizeValue(val, minVal, maxVal float64) float64 {
	if maxVal > minVal {
		return (val - minVal) / (maxVal - minVal)
	}
	return 0.5
}

// clampInt clamps an integer to a range [0, maxVal].
func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// brailleDots maps row/column to the bit offset for braille pattern
// [row][col] where row is 0-3 (top to bottom) and col is 0-1 (left to right)
var brailleDots = [4][2]uint8{
	{0, 3}, // Row 0: dots 1 and 4
	{1, 4}, // Row 1: dots 2 and 5
	{2, 5}, // Row 2: dots 3 and 6
	{6, 7}, // Row 3: dots 7 and 8
}

// RenderBrailleSeries plots data between lo and hi as a filled braille
// chart and returns one unstyled string per row, top row first.
// Each character represents 2 horizontal data points with 4 vertical levels,
// so the chart holds width*2 points; longer data is resampled, shorter data
// is right-aligned so the newest sample is always at the right edge.
func RenderBrailleSeries(data []float64, width, height int, lo, hi float64) []string {
	if width <= 0 || height <= 0 {
		return nil
	}

	totalDots := height * 4
	targetPoints := width * 2

	resampled := data
	if len(data) > targetPoints {
		resampled = resampleData(data, targetPoints)
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = brailleBase
		}
	}

	horizOffset := targetPoints - len(resampled)
	if horizOffset < 0 {
		horizOffset = 0
	}

	for i, val := range resampled {
		if math.IsNaN(val) {
			continue
		}
		normalized := normalizeValue(val, lo, hi)
		dotHeight := clampInt(int(math.Round(normalized*float64(totalDots))), totalDots)

		charCol := (i + horizOffset) / 2
		if charCol >= width {
			continue
		}
		subCol := (i + horizOffset) % 2

		// Fill dots from bottom up
		for dot := 0; dot < dotHeight; dot++ {
			row := height - 1 - (dot / 4)
			subRow := 3 - (dot % 4)
			grid[row][charCol] |= rune(1 << brailleDots[subRow][subCol])
		}
	}

	rows := make([]string, height)
	for i, row := range grid {
		rows[i] = string(row)
	}
	return rows
}

// ThresholdRow returns the chart row (0 = top) a threshold falls in, or -1
// when it lies outside [lo, hi].
func ThresholdRow(threshold, lo, hi float64, height int) int {
	if height <= 0 || hi <= lo || threshold < lo || threshold > hi {
		return -1
	}
	totalDots := height * 4
	dot := clampInt(int(math.Round(normalizeValue(threshold, lo, hi)*float64(totalDots))), totalDots)
	if dot == totalDots {
		return 0
	}
	return height - 1 - dot/4
}

// RenderMiniSparkline renders a single-row sparkline using block characters.
// This is more compact than braille and is used when the terminal is short.
func RenderMiniSparkline(data []float64, width int, lo, hi float64) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	resampled := resampleData(data, width)

	var result strings.Builder
	for _, val := range resampled {
		normalized := normalizeValue(val, lo, hi)
		idx := clampInt(int(normalized*float64(len(sparklineBlocks)-1)), len(sparklineBlocks)-1)
		result.WriteRune(sparklineBlocks[idx])
	}

	return result.String()
}

// colorRows applies a foreground color to every row.
func colorRows(rows []string, color lipgloss.Color) []string {
	style := lipgloss.NewStyle().Foreground(color)
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = style.Render(r)
	}
	return out
}

// resampleData resamples data to the target size.
// When downsampling (compressing), uses max-magnitude sampling to preserve
// EMG bursts in either direction. When upsampling, uses linear interpolation.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}

	if len(data) == targetSize {
		return data
	}

	result := make([]float64, targetSize)

	if len(data) == 1 {
		for i := range result {
			result[i] = data[0]
		}
		return result
	}

	if len(data) > targetSize {
		bucketSize := float64(len(data)) / float64(targetSize)
		for i := 0; i < targetSize; i++ {
			start := int(float64(i) * bucketSize)
			end := int(float64(i+1) * bucketSize)
			if end > len(data) {
				end = len(data)
			}
			if start >= end {
				start = end - 1
			}
			if start < 0 {
				start = 0
			}

			peak := data[start]
			for j := start + 1; j < end; j++ {
				if math.Abs(data[j]) > math.Abs(peak) {
					peak = data[j]
				}
			}
			result[i] = peak
		}
		return result
	}

	// Upsampling: linear interpolation
	scale := float64(len(data)-1) / float64(targetSize-1)
	for i := 0; i < targetSize; i++ {
		pos := float64(i) * scale
		idx := int(pos)
		frac := pos - float64(idx)

		if idx >= len(data)-1 {
			result[i] = data[len(data)-1]
		} else {
			result[i] = data[idx]*(1-frac) + data[idx+1]*frac
		}
	}

	return result
}
