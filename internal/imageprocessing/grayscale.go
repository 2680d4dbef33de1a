package imageprocessing

import (
	"image"
	"math"
)

// FromImage collapses a decoded image to a luminance raster using
// Y = round(0.299*R + 0.587*G + 0.114*B) on 8-bit channels.
// Already-grayscale images are copied through untouched, so converting a
// raster's own gray image back is a no-op.
//
// The stdlib color.GrayModel is deliberately not used here: it works on
// 16-bit channels with truncating integer weights and does not match the
// rounded 8-bit formula bit for bit.
func FromImage(img image.Image) *Raster {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	out := &Raster{Width: width, Height: height, Pix: make([]uint8, width*height)}

	if gray, ok := img.(*image.Gray); ok {
		for y := 0; y < height; y++ {
			row := (bounds.Min.Y+y)*gray.Stride + bounds.Min.X
			copy(out.Pix[y*width:(y+1)*width], gray.Pix[row:row+width])
		}
		return out
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r16, g16, b16, _ := img.At(x, y).RGBA()
			out.Pix[i] = luminance(uint8(r16>>8), uint8(g16>>8), uint8(b16>>8))
			i++
		}
	}
	return out
}

// luminance applies the fixed weighted sum. Inputs are bounded so the
// rounded result never leaves [0,255].
func luminance(r, g, b uint8) uint8 {
	return uint8(math.Round(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)))
}
