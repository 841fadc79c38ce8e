package stego

import (
	"errors"
	"runtime"

	"github.com/zedseven/binmani"
	"golang.org/x/sync/errgroup"

	"steganography-codecs/codec"
	"steganography-codecs/imaging"
)

const (
	bitsPerChannel = 3
	// pixels handled by one worker
	pixelBandSize = 1 << 14
)

// PixelLSB stores one payload byte in the three low bits of each colour
// channel of a pixel. The least-significant bit of the last channel flags
// the end of the payload. Original low bits are destroyed.
type PixelLSB struct{}

var (
	_ codec.Codec     = (*PixelLSB)(nil)
	_ codec.Capacitor = (*PixelLSB)(nil)
	_ codec.Signaler  = (*PixelLSB)(nil)
)

func NewPixelLSB() *PixelLSB {
	return &PixelLSB{}
}

func (p *PixelLSB) Encode(carrier, payload []byte) ([]byte, error) {
	raster, err := decodeRaster(carrier)
	if err != nil {
		return nil, err
	}
	if raster.PixelCount() < len(payload) {
		return nil, codec.Invalidf("payload of %d bytes does not fit in %d pixels", len(payload), raster.PixelCount())
	}

	err = forEachBand(raster.PixelCount(), func(from, to int) error {
		for i := from; i < to; i++ {
			if i < len(payload) {
				encodePixel(raster.Pixel(i), payload[i], false)
			} else {
				encodePixel(raster.Pixel(i), 0, true)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return encodeRaster(raster)
}

func (p *PixelLSB) Decode(encoded []byte) ([]byte, []byte, error) {
	raster, err := decodeRaster(encoded)
	if err != nil {
		return nil, nil, err
	}

	end, err := findEndMarker(raster)
	if err != nil {
		return nil, nil, err
	}
	payload := make([]byte, end)
	err = forEachBand(raster.PixelCount(), func(from, to int) error {
		for i := from; i < to; i++ {
			pixel := raster.Pixel(i)
			if i >= end {
				if !isMarkerPixel(pixel) {
					return codec.NotEncoded("pixel after the end of data is not an end marker")
				}
				continue
			}
			if len(pixel) == 4 && pixel[3]&0b111 != 0 {
				return codec.NotEncoded("alpha channel of a payload pixel has low bits set")
			}
			payload[i] = decodePixel(pixel)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	carrier, err := encodeRaster(raster)
	if err != nil {
		return nil, nil, err
	}
	return carrier, payload, nil
}

// Capacity returns the pixel count of carrier.
func (p *PixelLSB) Capacity(carrier []byte) (int, error) {
	raster, err := decodeRaster(carrier)
	if err != nil {
		return 0, err
	}
	return raster.PixelCount(), nil
}

// Signal returns the interleaved channel values of an image over 255.
func (p *PixelLSB) Signal(data []byte) ([]float64, error) {
	raster, err := decodeRaster(data)
	if err != nil {
		return nil, err
	}
	signal := make([]float64, len(raster.Pix))
	for i, v := range raster.Pix {
		signal[i] = float64(v) / 255
	}
	return signal, nil
}

func decodeRaster(data []byte) (*imaging.Raster, error) {
	raster, err := imaging.Decode(data)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedModel) {
			return nil, codec.Invalidf("%v", err)
		}
		return nil, codec.Dependency(err)
	}
	if raster.Channels != 3 && raster.Channels != 4 {
		return nil, codec.Invalidf("%d channels per pixel is unsupported", raster.Channels)
	}
	return raster, nil
}

func encodeRaster(raster *imaging.Raster) ([]byte, error) {
	out, err := imaging.Encode(raster)
	if err != nil {
		return nil, codec.Dependency(err)
	}
	return out, nil
}

// findEndMarker returns the index of the first pixel carrying the end of
// data marker, or the pixel count if there is none. Bands are scanned
// concurrently; the lowest marked band wins.
func findEndMarker(raster *imaging.Raster) (int, error) {
	count := raster.PixelCount()
	bands := (count + pixelBandSize - 1) / pixelBandSize
	firstMarker := make([]int, bands)
	err := forEachBand(count, func(from, to int) error {
		band := from / pixelBandSize
		firstMarker[band] = -1
		for i := from; i < to; i++ {
			if isEndMarker(raster.Pixel(i)) {
				firstMarker[band] = i
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, m := range firstMarker {
		if m >= 0 {
			return m, nil
		}
	}
	return count, nil
}

// forEachBand splits [0, n) into pixelBandSize bands and runs fn on them in
// parallel. It returns the first error reported by a band.
func forEachBand(n int, fn func(from, to int) error) error {
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for from := 0; from < n; from += pixelBandSize {
		to := min(from+pixelBandSize, n)
		g.Go(func() error {
			return fn(from, to)
		})
	}
	return g.Wait()
}

func isEndMarker(pixel []byte) bool {
	return binmani.ReadFrom(uint16(pixel[len(pixel)-1]), 0, 1) == 1
}

// isMarkerPixel reports whether pixel is exactly what encodePixel writes
// past the payload: zeroed low bits with the marker set.
func isMarkerPixel(pixel []byte) bool {
	last := len(pixel) - 1
	for c := 0; c < last; c++ {
		if binmani.ReadFrom(uint16(pixel[c]), 0, bitsPerChannel) != 0 {
			return false
		}
	}
	return binmani.ReadFrom(uint16(pixel[last]), 0, bitsPerChannel) == 1
}

// encodePixel spreads payloadByte over the channels three bits at a time,
// high bits first. With three channels the last one holds the two lowest
// bits shifted up by one, leaving its LSB for the end marker.
func encodePixel(pixel []byte, payloadByte byte, endOfData bool) {
	bitsRemaining := 8
	for c := range pixel {
		pixel[c] = byte(binmani.WriteTo(uint16(pixel[c]), 0, bitsPerChannel, 0))
		bitsRemaining -= bitsPerChannel
		if bitsRemaining <= -bitsPerChannel {
			break
		}

		var bits byte
		if bitsRemaining < 0 {
			bits = payloadByte << -bitsRemaining
		} else {
			bits = payloadByte >> bitsRemaining
		}
		pixel[c] |= bits & 0b111
	}

	if endOfData {
		last := len(pixel) - 1
		pixel[last] = byte(binmani.WriteTo(uint16(pixel[last]), 0, 1, 1))
	}
}

// decodePixel reverses encodePixel and clears the bits it read.
func decodePixel(pixel []byte) byte {
	bitsRemaining := 8
	var payloadByte byte
	for c := range pixel {
		bitsRemaining -= bitsPerChannel
		if bitsRemaining <= -bitsPerChannel {
			break
		}

		bits := byte(binmani.ReadFrom(uint16(pixel[c]), 0, bitsPerChannel))
		pixel[c] = byte(binmani.WriteTo(uint16(pixel[c]), 0, bitsPerChannel, 0))
		if bitsRemaining < 0 {
			payloadByte |= bits >> -bitsRemaining
		} else {
			payloadByte |= bits << bitsRemaining
		}
	}
	return payloadByte
}
