package imageprocessing

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
)

// EncodeGrayPNG encodes a raster as an 8-bit grayscale PNG (color type 0).
func EncodeGrayPNG(r *Raster) ([]byte, error) {
	return encodeGrayscale(r, 8)
}

// EncodeBinaryPNG encodes a binary raster (values 0/255) as a 1-bit
// grayscale PNG. Any value >= 128 is written as white, so it is only
// meaningful for Threshold and Diff outputs.
func EncodeBinaryPNG(r *Raster) ([]byte, error) {
	return encodeGrayscale(r, 1)
}

// encodeGrayscale writes the PNG container by hand so the bit depth is
// under our control; the stdlib encoder always widens paletted and 1-bit
// content to 8 bits.
func encodeGrayscale(r *Raster, bitDepth int) ([]byte, error) {
	if bitDepth != 1 && bitDepth != 8 {
		return nil, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}

	var buf bytes.Buffer
	buf.Write([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})

	writeChunk(&buf, "IHDR", func(data *bytes.Buffer) {
		binary.Write(data, binary.BigEndian, uint32(r.Width))
		binary.Write(data, binary.BigEndian, uint32(r.Height))
		data.WriteByte(uint8(bitDepth))
		data.WriteByte(0) // Color type: grayscale
		data.WriteByte(0) // Compression method
		data.WriteByte(0) // Filter method
		data.WriteByte(0) // Interlace method
	})

	compressed, err := zlibCompress(packScanlines(r, bitDepth))
	if err != nil {
		return nil, fmt.Errorf("failed to compress image data: %w", err)
	}
	writeChunk(&buf, "IDAT", func(data *bytes.Buffer) {
		data.Write(compressed)
	})
	writeChunk(&buf, "IEND", func(data *bytes.Buffer) {})

	return buf.Bytes(), nil
}

// packScanlines serializes raster rows with a leading filter-type byte per
// row. At bit depth 1, eight pixels share a byte, most significant bit
// first.
func packScanlines(r *Raster, bitDepth int) []byte {
	if bitDepth == 8 {
		data := make([]byte, r.Height*(r.Width+1))
		for y := 0; y < r.Height; y++ {
			rowStart := y * (r.Width + 1)
			data[rowStart] = 0 // Filter type: None
			copy(data[rowStart+1:rowStart+1+r.Width], r.Pix[y*r.Width:(y+1)*r.Width])
		}
		return data
	}

	bytesPerRow := (r.Width + 7) / 8
	data := make([]byte, r.Height*(bytesPerRow+1))
	for y := 0; y < r.Height; y++ {
		rowStart := y * (bytesPerRow + 1)
		data[rowStart] = 0
		for x := 0; x < r.Width; x++ {
			if r.Pix[y*r.Width+x] >= 128 {
				data[rowStart+1+x/8] |= 0x80 >> (x % 8)
			}
		}
	}
	return data
}

// Diff overlay palette, matching the reference rendering: the in-between
// region is blended 50% toward blue over the adjusted image.
const (
	diffOverlayR     = 41
	diffOverlayG     = 128
	diffOverlayB     = 185
	diffOverlayAlpha = 0.5
	diffBothBlack    = 40
)

// EncodeDiffPNG renders the difference between two binarizations as an
// RGBA overlay: pixels white in both stay white, pixels black in both are
// drawn dark gray, and pixels white at t1 but black at t2 are the adjusted
// value blended toward blue.
func EncodeDiffPNG(adjusted, binT1, binT2 *Raster) ([]byte, error) {
	if adjusted.Width != binT1.Width || adjusted.Height != binT1.Height {
		return nil, fmt.Errorf("%w: adjusted %dx%d vs binary %dx%d", ErrDimensionMismatch,
			adjusted.Width, adjusted.Height, binT1.Width, binT1.Height)
	}
	mask, err := Diff(binT1, binT2)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, adjusted.Width, adjusted.Height))
	for i, v := range adjusted.Pix {
		var r, g, b uint8
		switch {
		case mask.Pix[i] == 255:
			r = blend(v, diffOverlayR)
			g = blend(v, diffOverlayG)
			b = blend(v, diffOverlayB)
		case binT1.Pix[i] == 255 && binT2.Pix[i] == 255:
			r, g, b = 255, 255, 255
		case binT1.Pix[i] == 0 && binT2.Pix[i] == 0:
			r, g, b = diffBothBlack, diffBothBlack, diffBothBlack
		default:
			// Black at t1 but white at t2: keep the adjusted value.
			r, g, b = v, v, v
		}
		img.Pix[i*4+0] = r
		img.Pix[i*4+1] = g
		img.Pix[i*4+2] = b
		img.Pix[i*4+3] = 255
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode diff overlay: %w", err)
	}
	return buf.Bytes(), nil
}

func blend(base, overlay uint8) uint8 {
	return uint8(float64(base)*(1-diffOverlayAlpha) + float64(overlay)*diffOverlayAlpha)
}

// writeChunk writes a PNG chunk with proper CRC
func writeChunk(buf *bytes.Buffer, chunkType string, dataWriter func(*bytes.Buffer)) {
	var chunkData bytes.Buffer
	dataWriter(&chunkData)

	data := chunkData.Bytes()

	binary.Write(buf, binary.BigEndian, uint32(len(data)))
	buf.WriteString(chunkType)
	buf.Write(data)

	crc := crc32.NewIEEE()
	crc.Write([]byte(chunkType))
	crc.Write(data)
	binary.Write(buf, binary.BigEndian, crc.Sum32())
}

// zlibCompress compresses data using proper zlib compression
func zlibCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	writer, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("failed to create zlib writer: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zlib writer: %w", err)
	}
	return buf.Bytes(), nil
}
