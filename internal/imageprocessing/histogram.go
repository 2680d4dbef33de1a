package imageprocessing

import "errors"

// ErrEmptyHistogram is returned when a range analysis is requested for a
// histogram with zero total pixels. The pipeline never produces one (crop
// validation guarantees a non-empty raster), so hitting this means a caller
// bug, not a recoverable state.
var ErrEmptyHistogram = errors.New("histogram has no pixels")

// Analysis policy constants. These mirror the reference behavior exactly
// and are not tunable: the effective range is bounded by the first bins
// whose cumulative share reaches 1% from either end, and a range narrower
// than 200 levels counts as skewed.
const (
	percentileCut = 0.01
	skewRange     = 200
)

// Histogram is a 256-bin luminance frequency table. Bin i holds the number
// of pixels with value i; the bins of a histogram computed from a raster
// always sum to width*height.
type Histogram [256]int

// ComputeHistogram tallies every pixel of the raster.
func ComputeHistogram(r *Raster) Histogram {
	var h Histogram
	for _, v := range r.Pix {
		h[v]++
	}
	return h
}

// Total returns the number of pixels counted in the histogram.
func (h *Histogram) Total() int {
	total := 0
	for _, n := range h {
		total += n
	}
	return total
}

// Bins returns the histogram as a slice, for JSON serialization.
func (h *Histogram) Bins() []int {
	bins := make([]int, len(h))
	copy(bins, h[:])
	return bins
}

// RangeAnalysis describes the effective intensity range of a histogram.
type RangeAnalysis struct {
	Skewed bool  `json:"skewed"`
	MinVal uint8 `json:"min_val"`
	MaxVal uint8 `json:"max_val"`
	Range  int   `json:"range"`
}

// Analyse scans cumulative frequency from the low end until the cumulative
// share reaches percentileCut, recording that bin as MinVal, and
// symmetrically from the high end for MaxVal. The boundary comparison is
// >=, so the first bin at or crossing the 1% mark is selected from each
// side; for any histogram with total > 0 this guarantees MinVal <= MaxVal,
// since each scan stops at or before the bin holding the 1st/99th
// percentile pixel.
func (h *Histogram) Analyse() (RangeAnalysis, error) {
	total := h.Total()
	if total == 0 {
		return RangeAnalysis{}, ErrEmptyHistogram
	}

	minVal := 0
	cum := 0
	for i := 0; i < len(h); i++ {
		cum += h[i]
		if float64(cum)/float64(total) >= percentileCut {
			minVal = i
			break
		}
	}

	maxVal := 255
	cum = 0
	for i := len(h) - 1; i >= 0; i-- {
		cum += h[i]
		if float64(cum)/float64(total) >= percentileCut {
			maxVal = i
			break
		}
	}

	rng := maxVal - minVal
	return RangeAnalysis{
		Skewed: rng < skewRange,
		MinVal: uint8(minVal),
		MaxVal: uint8(maxVal),
		Range:  rng,
	}, nil
}
