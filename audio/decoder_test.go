package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeWAV(t *testing.T) {
	floatData := make([]byte, 16)
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint32(floatData[i*4:], math.Float32bits(float32(i)-1.5))
	}

	tests := []struct {
		name string
		pcm  *PCM
	}{
		{"8-bit mono", &PCM{AudioFormat: FormatPCM, BitDepth: 8, NumChans: 1, SampleRate: 8000, Data: []byte{0, 127, 128, 255}}},
		{"16-bit stereo", &PCM{AudioFormat: FormatPCM, BitDepth: 16, NumChans: 2, SampleRate: 44100, Data: []byte{0x01, 0x80, 0xFF, 0x7F, 0x00, 0x00, 0x34, 0x12}}},
		{"32-bit mono", &PCM{AudioFormat: FormatPCM, BitDepth: 32, NumChans: 1, SampleRate: 48000, Data: []byte{1, 2, 3, 0x80, 0xFF, 0xFF, 0xFF, 0x7F}}},
		{"float mono", &PCM{AudioFormat: FormatIEEEFloat, BitDepth: 32, NumChans: 1, SampleRate: 22050, Data: floatData}},
	}

	ad := NewAudioDecoder()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wavData, err := ad.EncodeWAV(tc.pcm)
			require.NoError(t, err)
			assert.Equal(t, "RIFF", string(wavData[:4]))

			got, err := ad.DecodeWAV(wavData)
			require.NoError(t, err)
			assert.Equal(t, tc.pcm, got)
		})
	}
}

func TestPCMCounts(t *testing.T) {
	pcm := &PCM{AudioFormat: FormatIEEEFloat, BitDepth: 32, NumChans: 2, Data: make([]byte, 24)}
	assert.Equal(t, 4, pcm.BytesPerSample())
	assert.Equal(t, 6, pcm.SampleCount())
	assert.True(t, pcm.IsFloat())

	assert.Zero(t, (&PCM{}).SampleCount())
}

func TestEncodeWAVUnsupportedDepth(t *testing.T) {
	_, err := NewAudioDecoder().EncodeWAV(&PCM{AudioFormat: FormatPCM, BitDepth: 24, NumChans: 1, SampleRate: 8000, Data: make([]byte, 6)})
	assert.ErrorIs(t, err, ErrUnsupportedDepth)
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	_, err := NewAudioDecoder().DecodeWAV([]byte("definitely not a wave file"))
	assert.Error(t, err)
}

// extensibleWAV hand-builds a mono WAVE_FORMAT_EXTENSIBLE file whose fmt
// chunk ends with ext.
func extensibleWAV(t *testing.T, bitDepth int, ext []byte, data []byte) []byte {
	t.Helper()
	blockAlign := bitDepth / 8
	var fmtChunk bytes.Buffer
	for _, v := range []any{
		uint16(FormatExtensible), uint16(1), uint32(8000), uint32(8000 * blockAlign), uint16(blockAlign), uint16(bitDepth), ext,
	} {
		require.NoError(t, binary.Write(&fmtChunk, binary.LittleEndian, v))
	}

	var out bytes.Buffer
	for _, v := range []any{
		[]byte("RIFF"), uint32(4 + 8 + fmtChunk.Len() + 8 + len(data)), []byte("WAVE"),
		[]byte("fmt "), uint32(fmtChunk.Len()), fmtChunk.Bytes(),
		[]byte("data"), uint32(len(data)), data,
	} {
		require.NoError(t, binary.Write(&out, binary.LittleEndian, v))
	}
	return out.Bytes()
}

// subFormatExtension returns the 24 extension bytes selecting tag as the
// SubFormat.
func subFormatExtension(bitDepth int, tag uint16) []byte {
	ext := make([]byte, 8, 24)
	binary.LittleEndian.PutUint16(ext, 22)
	binary.LittleEndian.PutUint16(ext[2:], uint16(bitDepth))
	binary.LittleEndian.PutUint32(ext[4:], 0x4)
	ext = binary.LittleEndian.AppendUint16(ext, tag)
	return append(ext, subFormatGUIDTail...)
}

func TestDecodeWAVExtensible(t *testing.T) {
	pcm16 := []byte{0x01, 0x80, 0xFF, 0x7F, 0x00, 0x00, 0x34, 0x12}
	float32s := make([]byte, 8)
	binary.LittleEndian.PutUint32(float32s, math.Float32bits(0.25))
	binary.LittleEndian.PutUint32(float32s[4:], math.Float32bits(-0.5))

	tests := []struct {
		name     string
		bitDepth int
		tag      uint16
		data     []byte
		want     int
	}{
		{"pcm 16-bit", 16, FormatPCM, pcm16, FormatPCM},
		{"pcm 32-bit", 32, FormatPCM, pcm16, FormatPCM},
		{"float 32-bit", 32, FormatIEEEFloat, float32s, FormatIEEEFloat},
	}

	ad := NewAudioDecoder()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ad.DecodeWAV(extensibleWAV(t, tc.bitDepth, subFormatExtension(tc.bitDepth, tc.tag), tc.data))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.AudioFormat)
			assert.Equal(t, tc.bitDepth, got.BitDepth)
			assert.Equal(t, 1, got.NumChans)
			assert.Equal(t, tc.data, got.Data)

			// written back with the plain format tag
			again, err := ad.EncodeWAV(got)
			require.NoError(t, err)
			assert.Equal(t, uint16(tc.want), binary.LittleEndian.Uint16(again[20:]))
			back, err := ad.DecodeWAV(again)
			require.NoError(t, err)
			assert.Equal(t, got, back)
		})
	}
}

func TestDecodeWAVExtensibleUnknownSubFormat(t *testing.T) {
	ext := subFormatExtension(16, FormatPCM)
	ext[len(ext)-1] ^= 0xFF
	got, err := NewAudioDecoder().DecodeWAV(extensibleWAV(t, 16, ext, make([]byte, 4)))
	require.NoError(t, err)
	assert.Equal(t, FormatExtensible, got.AudioFormat)
}

func TestDecodeWAVExtensibleWithoutSubFormat(t *testing.T) {
	// cbSize 0 and no extension fields
	_, err := NewAudioDecoder().DecodeWAV(extensibleWAV(t, 16, []byte{0, 0}, make([]byte, 4)))
	assert.ErrorIs(t, err, ErrShortExtension)
}

func TestPCMSamples(t *testing.T) {
	tests := []struct {
		name string
		pcm  *PCM
		want []float64
	}{
		{"8-bit", &PCM{AudioFormat: FormatPCM, BitDepth: 8, Data: []byte{0, 128, 192}}, []float64{-1, 0, 0.5}},
		{"16-bit", &PCM{AudioFormat: FormatPCM, BitDepth: 16, Data: []byte{0x00, 0x80, 0x00, 0x01, 0x00, 0x40}}, []float64{-1, 1.0 / 128, 0.5}},
		{"32-bit", &PCM{AudioFormat: FormatPCM, BitDepth: 32, Data: []byte{0, 0, 0, 0x80, 0, 1, 0, 0}}, []float64{-1, 1.0 / (1 << 23)}},
		{"float", &PCM{AudioFormat: FormatIEEEFloat, BitDepth: 32, Data: binary.LittleEndian.AppendUint32(nil, math.Float32bits(-0.75))}, []float64{-0.75}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.pcm.Samples())
		})
	}
}
