package imageprocessing

import (
	"errors"
	"math/rand"
	"testing"
)

func TestComputeHistogramSumsToPixelCount(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, size := range []struct{ w, h int }{{1, 1}, {3, 5}, {16, 16}, {100, 1}} {
		r, err := NewRaster(size.w, size.h)
		if err != nil {
			t.Fatalf("NewRaster: %v", err)
		}
		for i := range r.Pix {
			r.Pix[i] = uint8(rng.Intn(256))
		}
		h := ComputeHistogram(r)
		if got, want := h.Total(), size.w*size.h; got != want {
			t.Errorf("%dx%d: histogram total %d, want %d", size.w, size.h, got, want)
		}
	}
}

func TestAnalyseRangeBounds(t *testing.T) {
	tests := []struct {
		name    string
		fill    func(h *Histogram)
		wantMin uint8
		wantMax uint8
		skewed  bool
	}{
		{
			name:    "single value concentration",
			fill:    func(h *Histogram) { h[128] = 100 },
			wantMin: 128,
			wantMax: 128,
			skewed:  true,
		},
		{
			name: "full range uniform",
			fill: func(h *Histogram) {
				for i := range h {
					h[i] = 4
				}
			},
			// 1% of 1024 pixels is reached inside the third bin from
			// either end.
			wantMin: 2,
			wantMax: 253,
			skewed:  false,
		},
		{
			name: "two spikes",
			fill: func(h *Histogram) {
				h[10] = 8
				h[200] = 8
			},
			wantMin: 10,
			wantMax: 200,
			skewed:  true, // range 190 < 200
		},
		{
			name: "outliers below one percent ignored",
			fill: func(h *Histogram) {
				h[0] = 1
				h[255] = 1
				h[100] = 398
			},
			// Each outlier bin holds 0.25% of 400 pixels, under the 1%
			// cut, so the scan runs through to the spike.
			wantMin: 100,
			wantMax: 100,
			skewed:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h Histogram
			tt.fill(&h)
			a, err := h.Analyse()
			if err != nil {
				t.Fatalf("Analyse: %v", err)
			}
			if a.MinVal > a.MaxVal {
				t.Errorf("MinVal %d > MaxVal %d", a.MinVal, a.MaxVal)
			}
			if a.MinVal != tt.wantMin || a.MaxVal != tt.wantMax {
				t.Errorf("range [%d, %d], want [%d, %d]", a.MinVal, a.MaxVal, tt.wantMin, tt.wantMax)
			}
			if a.Range != int(tt.wantMax)-int(tt.wantMin) {
				t.Errorf("Range %d, want %d", a.Range, int(tt.wantMax)-int(tt.wantMin))
			}
			if a.Skewed != tt.skewed {
				t.Errorf("Skewed %v, want %v", a.Skewed, tt.skewed)
			}
		})
	}
}

func TestAnalyseMinNeverExceedsMaxRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for trial := 0; trial < 200; trial++ {
		var h Histogram
		// Sparse histograms stress the cumulative tie-break hardest.
		for n := rng.Intn(5) + 1; n > 0; n-- {
			h[rng.Intn(256)] += rng.Intn(1000) + 1
		}
		a, err := h.Analyse()
		if err != nil {
			t.Fatalf("trial %d: Analyse: %v", trial, err)
		}
		if a.MinVal > a.MaxVal {
			t.Fatalf("trial %d: MinVal %d > MaxVal %d for %+v", trial, a.MinVal, a.MaxVal, h)
		}
	}
}

func TestAnalyseEmptyHistogram(t *testing.T) {
	var h Histogram
	if _, err := h.Analyse(); !errors.Is(err, ErrEmptyHistogram) {
		t.Errorf("Analyse on empty histogram: got %v, want ErrEmptyHistogram", err)
	}
}
