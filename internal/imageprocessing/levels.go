package imageprocessing

import "math"

// AdjustLevels linearly rescales pixel values so the [minVal, maxVal]
// range maps onto the full [0, 255] range:
//
//	v' = round((v - minVal) / (maxVal - minVal) * 255)
//
// clamped to [0, 255]. When maxVal <= minVal the raster is a degenerate
// single-intensity image and is copied through unchanged to avoid a
// division by zero; that is defined behavior, not an error.
func AdjustLevels(src *Raster, minVal, maxVal uint8) *Raster {
	if maxVal <= minVal {
		return src.Clone()
	}

	span := float64(maxVal) - float64(minVal)
	var lut [256]uint8
	for v := 0; v < 256; v++ {
		scaled := math.Round((float64(v) - float64(minVal)) / span * 255)
		if scaled < 0 {
			scaled = 0
		} else if scaled > 255 {
			scaled = 255
		}
		lut[v] = uint8(scaled)
	}

	out := &Raster{Width: src.Width, Height: src.Height, Pix: make([]uint8, len(src.Pix))}
	for i, v := range src.Pix {
		out.Pix[i] = lut[v]
	}
	return out
}
