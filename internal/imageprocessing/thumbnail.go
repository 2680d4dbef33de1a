package imageprocessing

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Thumbnail returns a copy of the raster scaled so that neither side
// exceeds maxDim, preserving aspect ratio. Rasters already within bounds
// are cloned unchanged. This is display glue only — pipeline stages never
// see a scaled raster.
func Thumbnail(r *Raster, maxDim int) *Raster {
	if maxDim <= 0 || (r.Width <= maxDim && r.Height <= maxDim) {
		return r.Clone()
	}

	scale := float64(maxDim) / float64(r.Width)
	if s := float64(maxDim) / float64(r.Height); s < scale {
		scale = s
	}
	newWidth := int(float64(r.Width) * scale)
	newHeight := int(float64(r.Height) * scale)
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewGray(image.Rect(0, 0, newWidth, newHeight))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), r.ToGrayImage(), image.Rect(0, 0, r.Width, r.Height), xdraw.Src, nil)

	return FromImage(dst)
}
