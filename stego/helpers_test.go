package stego

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"steganography-codecs/audio"
	"steganography-codecs/gltfparser"
)

func makePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// rgbPNG returns an opaque w×h PNG, which decodes as RGB8.
func rgbPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 37), G: uint8(y * 91), B: uint8(x*y + 7), A: 0xFF})
		}
	}
	return makePNG(t, img)
}

// rgbaPNG returns a translucent w×h PNG, which decodes as RGBA8.
func rgbaPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 13), G: uint8(y * 29), B: uint8(x + y), A: uint8(100 + x)})
		}
	}
	return makePNG(t, img)
}

// rgbaBMP returns a w×h 32-bit BMP built from translucent pixels.
func rgbaBMP(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 16), B: uint8(x + 26), A: uint8(90 + y)})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, img))
	return buf.Bytes()
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7)
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}))
	return buf.Bytes()
}

// testWAV builds a mono WAV holding n samples of a ramp in the given
// format.
func testWAV(t *testing.T, audioFormat, bitDepth, n int) []byte {
	t.Helper()
	width := (bitDepth + 7) / 8
	data := make([]byte, n*width)
	for i := 0; i < n; i++ {
		s := data[i*width : (i+1)*width]
		switch {
		case audioFormat == audio.FormatIEEEFloat:
			binary.LittleEndian.PutUint32(s, math.Float32bits(float32(math.Sin(float64(i)/10))))
		case bitDepth == 8:
			s[0] = uint8(128 + i%100)
		case bitDepth == 16:
			binary.LittleEndian.PutUint16(s, uint16(int16(i*311-20000)))
		case bitDepth == 32:
			binary.LittleEndian.PutUint32(s, uint32(int32(i*70001-1<<30)))
		}
	}
	pcm := &audio.PCM{AudioFormat: audioFormat, BitDepth: bitDepth, NumChans: 1, SampleRate: 8000, Data: data}
	out, err := audio.NewAudioDecoder().EncodeWAV(pcm)
	require.NoError(t, err)
	return out
}

// testExtensibleWAV wraps the samples of testWAV in a WAVE_FORMAT_EXTENSIBLE
// container whose SubFormat GUID names audioFormat.
func testExtensibleWAV(t *testing.T, audioFormat, bitDepth, n int) []byte {
	t.Helper()
	pcm, err := audio.NewAudioDecoder().DecodeWAV(testWAV(t, audioFormat, bitDepth, n))
	require.NoError(t, err)

	blockAlign := bitDepth / 8
	subFormat := []byte{0, 0, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}
	binary.LittleEndian.PutUint16(subFormat, uint16(audioFormat))

	var out bytes.Buffer
	for _, v := range []any{
		[]byte("RIFF"), uint32(4 + 8 + 40 + 8 + len(pcm.Data)), []byte("WAVE"),
		[]byte("fmt "), uint32(40),
		uint16(audio.FormatExtensible), uint16(1), uint32(8000), uint32(8000 * blockAlign), uint16(blockAlign), uint16(bitDepth),
		uint16(22), uint16(bitDepth), uint32(0x4), subFormat,
		[]byte("data"), uint32(len(pcm.Data)), pcm.Data,
	} {
		require.NoError(t, binary.Write(&out, binary.LittleEndian, v))
	}
	return out.Bytes()
}

func testGLB(t *testing.T, doc string) []byte {
	t.Helper()
	glb := &gltfparser.GLB{
		Version: 2,
		Chunks: []*gltfparser.Chunk{
			{Type: gltfparser.ChunkJSON},
			{Type: gltfparser.ChunkBIN, Data: []byte{1, 2, 3, 4}},
		},
	}
	glb.SetJSON([]byte(doc))
	out, err := gltfparser.WriteGLB(glb)
	require.NoError(t, err)
	return out
}

func patternPayload(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i*31 + 5)
	}
	return p
}
