package imageprocessing

import (
	"errors"
	"math/rand"
	"sort"
	"testing"
)

// referenceMedian is the brute-force definition: collect the border-clamped
// window, sort it, take the element at floor(n/2).
func referenceMedian(src *Raster, kernelSize, x, y int) uint8 {
	radius := kernelSize / 2
	var window []uint8
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			sx := clamp(x+dx, 0, src.Width-1)
			sy := clamp(y+dy, 0, src.Height-1)
			window = append(window, src.At(sx, sy))
		}
	}
	sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
	return window[len(window)/2]
}

func TestMedianFilterMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	sizes := []struct{ w, h int }{
		{1, 1}, {3, 3}, {4, 4}, {5, 7}, {8, 8}, {8, 3},
	}
	for _, size := range sizes {
		src, err := NewRaster(size.w, size.h)
		if err != nil {
			t.Fatalf("NewRaster(%d, %d): %v", size.w, size.h, err)
		}
		for i := range src.Pix {
			src.Pix[i] = uint8(rng.Intn(256))
		}

		for _, kernel := range []int{1, 3, 5, 7} {
			shorter := size.w
			if size.h < shorter {
				shorter = size.h
			}
			if kernel > shorter {
				continue
			}

			out, err := MedianFilter(src, kernel)
			if err != nil {
				t.Fatalf("MedianFilter(%dx%d, k=%d): %v", size.w, size.h, kernel, err)
			}
			if out.Width != src.Width || out.Height != src.Height {
				t.Fatalf("MedianFilter(k=%d) changed dimensions: got %dx%d, want %dx%d",
					kernel, out.Width, out.Height, src.Width, src.Height)
			}
			for y := 0; y < size.h; y++ {
				for x := 0; x < size.w; x++ {
					want := referenceMedian(src, kernel, x, y)
					if got := out.At(x, y); got != want {
						t.Errorf("%dx%d k=%d pixel (%d,%d): got %d, want %d",
							size.w, size.h, kernel, x, y, got, want)
					}
				}
			}
		}
	}
}

func TestMedianFilterStripes(t *testing.T) {
	// 4x4 raster alternating rows of 10 and 200, kernel 3. Each row is
	// constant, so every window holds three samples of each clamped row;
	// rows 0 and 1 see two 10-rows vs one 200-row, rows 2 and 3 the
	// opposite.
	src := &Raster{Width: 4, Height: 4, Pix: []uint8{
		10, 10, 10, 10,
		200, 200, 200, 200,
		10, 10, 10, 10,
		200, 200, 200, 200,
	}}

	out, err := MedianFilter(src, 3)
	if err != nil {
		t.Fatalf("MedianFilter: %v", err)
	}

	want := []uint8{
		10, 10, 10, 10,
		10, 10, 10, 10,
		200, 200, 200, 200,
		200, 200, 200, 200,
	}
	for i, v := range out.Pix {
		if v != want[i] {
			t.Errorf("pixel %d: got %d, want %d", i, v, want[i])
		}
	}
}

func TestMedianFilterInputUntouched(t *testing.T) {
	src := &Raster{Width: 3, Height: 3, Pix: []uint8{
		9, 1, 8,
		2, 7, 3,
		6, 4, 5,
	}}
	orig := src.Clone()

	if _, err := MedianFilter(src, 3); err != nil {
		t.Fatalf("MedianFilter: %v", err)
	}
	for i := range src.Pix {
		if src.Pix[i] != orig.Pix[i] {
			t.Fatalf("input pixel %d mutated: got %d, want %d", i, src.Pix[i], orig.Pix[i])
		}
	}
}

func TestMedianFilterRejectsBadKernels(t *testing.T) {
	src := &Raster{Width: 4, Height: 4, Pix: make([]uint8, 16)}

	tests := []struct {
		name   string
		kernel int
	}{
		{"even", 2},
		{"zero", 0},
		{"negative", -3},
		{"larger than shorter side", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := MedianFilter(src, tt.kernel); !errors.Is(err, ErrBadKernel) {
				t.Errorf("MedianFilter(k=%d): got %v, want ErrBadKernel", tt.kernel, err)
			}
		})
	}

	// Kernel equal to the shorter side is still well-defined via clamping.
	src = &Raster{Width: 3, Height: 5, Pix: make([]uint8, 15)}
	if _, err := MedianFilter(src, 3); err != nil {
		t.Errorf("MedianFilter(k=3) on 3x5: unexpected error %v", err)
	}
}
