package imageprocessing

import (
	"errors"
	"fmt"
)

var (
	// ErrBadCutoff is returned for threshold cutoffs outside [0, 255].
	// Out-of-range cutoffs are rejected rather than clamped; clamping would
	// change the semantics of the counts downstream.
	ErrBadCutoff = errors.New("threshold cutoff out of range")

	// ErrDimensionMismatch is returned when two rasters that must be
	// congruent (the two binarizations of one image) differ in size.
	ErrDimensionMismatch = errors.New("raster dimensions differ")
)

// Threshold binarizes a raster: values <= cutoff map to 0 (black), values
// above it map to 255 (white). Equality lands on black for every cutoff,
// which is the canonical tie-break for both threshold channels.
func Threshold(src *Raster, cutoff int) (*Raster, error) {
	if cutoff < 0 || cutoff > 255 {
		return nil, fmt.Errorf("%w: %d", ErrBadCutoff, cutoff)
	}
	c := uint8(cutoff)
	out := &Raster{Width: src.Width, Height: src.Height, Pix: make([]uint8, len(src.Pix))}
	for i, v := range src.Pix {
		if v > c {
			out.Pix[i] = 255
		}
	}
	return out, nil
}

// CountEqual returns the exact number of pixels whose value equals value.
func CountEqual(r *Raster, value uint8) int {
	count := 0
	for _, v := range r.Pix {
		if v == value {
			count++
		}
	}
	return count
}

// Diff returns a binary mask of the pixels that are white in binT1 but
// black in binT2 (the region between the two cutoffs). Both inputs are
// expected to be Threshold outputs of the same raster.
func Diff(binT1, binT2 *Raster) (*Raster, error) {
	if binT1.Width != binT2.Width || binT1.Height != binT2.Height {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch,
			binT1.Width, binT1.Height, binT2.Width, binT2.Height)
	}
	out := &Raster{Width: binT1.Width, Height: binT1.Height, Pix: make([]uint8, len(binT1.Pix))}
	for i := range binT1.Pix {
		if binT1.Pix[i] == 255 && binT2.Pix[i] == 0 {
			out.Pix[i] = 255
		}
	}
	return out, nil
}
