package imageprocessing

import (
	"errors"
	"fmt"
	"sort"
)

// ErrBadKernel is returned for kernel sizes the rank filter cannot honor:
// even, non-positive, or larger than the shorter raster side. These are
// caller contract violations and are rejected rather than clamped, since
// clamping would silently change results.
var ErrBadKernel = errors.New("median kernel size invalid")

// MedianFilter applies a kernelSize x kernelSize rank-order filter.
// Window coordinates outside the raster are clamped to the nearest border
// pixel (edge replication). Each output pixel is the element at index
// floor(n/2) of the sorted window, which for the odd kernel sizes accepted
// here is the exact middle value.
func MedianFilter(src *Raster, kernelSize int) (*Raster, error) {
	if kernelSize < 1 || kernelSize%2 == 0 {
		return nil, fmt.Errorf("%w: %d (must be a positive odd integer)", ErrBadKernel, kernelSize)
	}
	shorter := src.Width
	if src.Height < shorter {
		shorter = src.Height
	}
	if kernelSize > shorter {
		return nil, fmt.Errorf("%w: %d exceeds min(width, height) = %d", ErrBadKernel, kernelSize, shorter)
	}

	out, err := NewRaster(src.Width, src.Height)
	if err != nil {
		return nil, err
	}

	radius := kernelSize / 2
	window := make([]uint8, kernelSize*kernelSize)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			n := 0
			for dy := -radius; dy <= radius; dy++ {
				sy := clamp(y+dy, 0, src.Height-1)
				row := sy * src.Width
				for dx := -radius; dx <= radius; dx++ {
					sx := clamp(x+dx, 0, src.Width-1)
					window[n] = src.Pix[row+sx]
					n++
				}
			}
			sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
			out.Pix[y*src.Width+x] = window[len(window)/2]
		}
	}
	return out, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
