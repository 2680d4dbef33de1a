package imageprocessing

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrBadDimensions is returned when a raster would have a non-positive
	// width or height, or a pixel buffer that does not match width*height.
	ErrBadDimensions = errors.New("raster dimensions invalid")

	// ErrBadCrop is returned when a crop rectangle does not lie fully inside
	// the source raster.
	ErrBadCrop = errors.New("crop rectangle out of bounds")
)

// Raster is a single-channel 8-bit luminance image stored row-major.
// Pipeline stages treat rasters as immutable: every transform allocates a
// new Raster and never writes back into its input.
type Raster struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewRaster allocates a zeroed raster of the given dimensions.
func NewRaster(width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadDimensions, width, height)
	}
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}, nil
}

// At returns the luminance value at (x, y). Coordinates are not bounds
// checked; callers iterate within [0,Width)x[0,Height).
func (r *Raster) At(x, y int) uint8 {
	return r.Pix[y*r.Width+x]
}

// Clone returns a deep copy of the raster.
func (r *Raster) Clone() *Raster {
	pix := make([]uint8, len(r.Pix))
	copy(pix, r.Pix)
	return &Raster{Width: r.Width, Height: r.Height, Pix: pix}
}

// CropRect describes a crop region in raster coordinates.
type CropRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Crop returns a copy of the region described by rect. The rectangle must
// have positive extent and lie fully within the raster.
func (r *Raster) Crop(rect CropRect) (*Raster, error) {
	if rect.Width <= 0 || rect.Height <= 0 || rect.X < 0 || rect.Y < 0 ||
		rect.X+rect.Width > r.Width || rect.Y+rect.Height > r.Height {
		return nil, fmt.Errorf("%w: rect %dx%d+%d+%d in %dx%d",
			ErrBadCrop, rect.Width, rect.Height, rect.X, rect.Y, r.Width, r.Height)
	}
	out, err := NewRaster(rect.Width, rect.Height)
	if err != nil {
		return nil, err
	}
	for y := 0; y < rect.Height; y++ {
		srcRow := (rect.Y+y)*r.Width + rect.X
		copy(out.Pix[y*rect.Width:(y+1)*rect.Width], r.Pix[srcRow:srcRow+rect.Width])
	}
	return out, nil
}

// ToGrayImage wraps the raster in a stdlib image for encoding. The pixel
// buffer is copied so the raster stays immutable.
func (r *Raster) ToGrayImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+r.Width], r.Pix[y*r.Width:(y+1)*r.Width])
	}
	return img
}
