// Package imaging converts image files into raw 8-bit channel rasters and back
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is the container an image was decoded from.
type Format string

const (
	FormatPNG  Format = "png"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// ErrUnsupportedModel is returned when the decoded image does not hold
// 8-bit RGB or RGBA pixels.
var ErrUnsupportedModel = errors.New("unsupported colour model")

// Raster is an interleaved 8-bit pixel grid with 3 (RGB8) or 4 (RGBA8)
// channels per pixel, stored in raster order without row padding.
type Raster struct {
	Width    int
	Height   int
	Channels int
	Format   Format
	Pix      []byte
}

// PixelCount returns the number of pixels in the raster.
func (r *Raster) PixelCount() int {
	return r.Width * r.Height
}

// Pixel returns the channel slice of the i-th pixel. The slice aliases Pix.
func (r *Raster) Pixel(i int) []byte {
	off := i * r.Channels
	return r.Pix[off : off+r.Channels : off+r.Channels]
}

// ColorModelName describes the colour model of img for error messages.
func ColorModelName(img image.Image) string {
	switch img.(type) {
	case *image.Alpha16:
		return "Alpha16"
	case *image.Alpha:
		return "Alpha"
	case *image.CMYK:
		return "CMYK"
	case *image.Gray16:
		return "Gray16"
	case *image.Gray:
		return "Gray"
	case *image.NRGBA64:
		return "NRGBA64"
	case *image.NRGBA:
		return "NRGBA"
	case *image.RGBA64:
		return "RGBA64"
	case *image.RGBA:
		return "RGBA"
	case *image.Paletted:
		return "Paletted"
	case *image.YCbCr:
		return "YCbCr"
	case *image.NYCbCrA:
		return "NYCbCrA"
	default:
		return fmt.Sprintf("%T", img)
	}
}

// Decode parses an image file and extracts its raster. Decoding failures
// are returned as-is; images whose pixels are not RGB8/RGBA8 yield an
// error wrapping ErrUnsupportedModel.
func Decode(data []byte) (*Raster, error) {
	img, name, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	format := Format(name)
	switch format {
	case FormatPNG, FormatBMP, FormatTIFF:
	default:
		return nil, fmt.Errorf("%w: %s images cannot be written back losslessly", ErrUnsupportedModel, name)
	}

	dims := img.Bounds()
	r := &Raster{Width: dims.Dx(), Height: dims.Dy(), Format: format}

	switch simg := img.(type) {
	case *image.NRGBA:
		if format == FormatBMP {
			// the BMP decoder discards alpha, so BMP rasters are always RGB8
			r.Channels = 3
			r.Pix = dropAlpha(simg.Pix, simg.Stride, r.Width, r.Height)
			break
		}
		r.Channels = 4
		r.Pix = copyRows(simg.Pix, simg.Stride, r.Width*4, r.Height)
	case *image.RGBA:
		// Premultiplied pixels only round-trip exactly when fully opaque,
		// which is how PNG and BMP decoders hand back RGB8 data.
		if !simg.Opaque() {
			return nil, fmt.Errorf("%w: premultiplied RGBA with transparency", ErrUnsupportedModel)
		}
		r.Channels = 3
		r.Pix = dropAlpha(simg.Pix, simg.Stride, r.Width, r.Height)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, ColorModelName(img))
	}
	return r, nil
}

// Encode writes the raster back in its source format.
func Encode(r *Raster) ([]byte, error) {
	rect := image.Rect(0, 0, r.Width, r.Height)
	var img image.Image
	switch r.Channels {
	case 4:
		simg := image.NewNRGBA(rect)
		copy(simg.Pix, r.Pix)
		img = simg
	case 3:
		simg := image.NewRGBA(rect)
		for i, j := 0, 0; i+2 < len(r.Pix); i, j = i+3, j+4 {
			simg.Pix[j] = r.Pix[i]
			simg.Pix[j+1] = r.Pix[i+1]
			simg.Pix[j+2] = r.Pix[i+2]
			simg.Pix[j+3] = 0xFF
		}
		img = simg
	default:
		return nil, fmt.Errorf("%w: %d channels per pixel", ErrUnsupportedModel, r.Channels)
	}

	var buf bytes.Buffer
	var err error
	switch r.Format {
	case FormatBMP:
		err = bmp.Encode(&buf, img)
	case FormatTIFF:
		err = tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		encoder := png.Encoder{CompressionLevel: png.BestCompression}
		err = encoder.Encode(&buf, img)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func copyRows(pix []byte, stride, rowLen, rows int) []byte {
	out := make([]byte, 0, rowLen*rows)
	for y := 0; y < rows; y++ {
		out = append(out, pix[y*stride:y*stride+rowLen]...)
	}
	return out
}

// dropAlpha packs the colour channels of 4-channel rows into RGB8.
func dropAlpha(pix []byte, stride, width, rows int) []byte {
	out := make([]byte, 0, width*rows*3)
	for y := 0; y < rows; y++ {
		row := pix[y*stride : y*stride+width*4]
		for x := 0; x < len(row); x += 4 {
			out = append(out, row[x], row[x+1], row[x+2])
		}
	}
	return out
}
