// Package audio reads and writes the PCM content of WAV containers
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/aler9/writerseeker"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/riff"
	"github.com/go-audio/wav"
)

// WAVE format tags found in the fmt chunk.
const (
	FormatPCM        = 1
	FormatIEEEFloat  = 3
	FormatExtensible = 0xFFFE
)

var (
	// ErrNoFormatChunk is returned when the RIFF stream has no fmt chunk.
	ErrNoFormatChunk = errors.New("wav: fmt chunk not found")
	// ErrUnsupportedDepth is returned by EncodeWAV for depths the writer
	// cannot reproduce bit-exactly.
	ErrUnsupportedDepth = errors.New("wav: unsupported bit depth")
	// ErrShortExtension is returned for an extensible fmt chunk too short
	// to carry a SubFormat GUID.
	ErrShortExtension = errors.New("wav: extensible fmt chunk without SubFormat")
)

// Offsets in a WAVE_FORMAT_EXTENSIBLE fmt chunk.
const (
	extensionSizeOffset = 16
	subFormatOffset     = 24
	extensibleFmtSize   = 40
	minExtensionSize    = 22
)

// subFormatGUIDTail follows the 2-byte format tag in every
// KSDATAFORMAT_SUBTYPE GUID derived from a plain WAVE format tag.
var subFormatGUIDTail = []byte{0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}

// PCM holds the raw little-endian sample bytes of a WAV file together with
// the fmt chunk fields needed to write it back.
type PCM struct {
	AudioFormat int
	BitDepth    int
	NumChans    int
	SampleRate  int
	Data        []byte
}

// BytesPerSample returns the width of one sample in Data.
func (p *PCM) BytesPerSample() int {
	return (p.BitDepth + 7) / 8
}

// SampleCount returns the number of samples (across all channels) in Data.
func (p *PCM) SampleCount() int {
	if p.BytesPerSample() == 0 {
		return 0
	}
	return len(p.Data) / p.BytesPerSample()
}

// IsFloat reports whether samples are IEEE floats.
func (p *PCM) IsFloat() bool {
	return p.AudioFormat == FormatIEEEFloat
}

// Samples decodes Data into values normalized to [-1.0, 1.0]. Unsigned
// 8-bit samples are centred on 128. Float samples are returned as stored.
func (p *PCM) Samples() []float64 {
	samples := make([]float64, p.SampleCount())
	for i := range samples {
		switch {
		case p.IsFloat() && p.BitDepth == 32:
			samples[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(p.Data[i*4:])))
		case p.BitDepth == 8:
			samples[i] = (float64(p.Data[i]) - 128) / 128
		case p.BitDepth == 16:
			samples[i] = float64(int16(binary.LittleEndian.Uint16(p.Data[i*2:]))) / (1 << 15)
		case p.BitDepth == 32:
			samples[i] = float64(int32(binary.LittleEndian.Uint32(p.Data[i*4:]))) / (1 << 31)
		}
	}
	return samples
}

type AudioDecoder struct{}

func NewAudioDecoder() *AudioDecoder {
	return &AudioDecoder{}
}

// DecodeWAV parses a WAV file and returns its PCM payload. Trailing bytes
// that do not form a complete frame are dropped.
func (ad *AudioDecoder) DecodeWAV(wavData []byte) (*PCM, error) {
	decoder := wav.NewDecoder(bytes.NewReader(wavData))
	decoder.ReadInfo()
	if err := decoder.Err(); err != nil {
		return nil, fmt.Errorf("failed to read WAV header: %w", err)
	}
	if decoder.NumChans == 0 {
		return nil, ErrNoFormatChunk
	}
	if err := decoder.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("failed to find PCM data: %w", err)
	}

	// the chunk reader is not bounded by the chunk size
	raw, err := io.ReadAll(io.LimitReader(decoder.PCMChunk, int64(decoder.PCMChunk.Size)))
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM data: %w", err)
	}

	pcm := &PCM{
		AudioFormat: int(decoder.WavAudioFormat),
		BitDepth:    int(decoder.BitDepth),
		NumChans:    int(decoder.NumChans),
		SampleRate:  int(decoder.SampleRate),
	}
	if pcm.AudioFormat == FormatExtensible {
		pcm.AudioFormat, err = extensibleSubFormat(wavData)
		if err != nil {
			return nil, fmt.Errorf("failed to read extensible format: %w", err)
		}
	}
	blockAlign := pcm.BytesPerSample() * pcm.NumChans
	if blockAlign == 0 {
		return nil, fmt.Errorf("invalid block alignment for %d-bit, %d channel audio", pcm.BitDepth, pcm.NumChans)
	}
	pcm.Data = raw[:len(raw)-len(raw)%blockAlign]

	return pcm, nil
}

// EncodeWAV writes pcm into a new WAV container through the wav encoder.
// Sample bit patterns are preserved exactly, including IEEE float samples.
func (ad *AudioDecoder) EncodeWAV(pcm *PCM) ([]byte, error) {
	samples := make([]int, pcm.SampleCount())
	switch pcm.BitDepth {
	case 8:
		for i := range samples {
			samples[i] = int(pcm.Data[i])
		}
	case 16:
		for i := range samples {
			samples[i] = int(int16(binary.LittleEndian.Uint16(pcm.Data[i*2:])))
		}
	case 32:
		for i := range samples {
			samples[i] = int(int32(binary.LittleEndian.Uint32(pcm.Data[i*4:])))
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDepth, pcm.BitDepth)
	}

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: pcm.NumChans,
			SampleRate:  pcm.SampleRate,
		},
		Data:           samples,
		SourceBitDepth: pcm.BitDepth,
	}

	ws := &writerseeker.WriterSeeker{}
	encoder := wav.NewEncoder(ws, pcm.SampleRate, pcm.BitDepth, pcm.NumChans, pcm.AudioFormat)

	if err := encoder.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to encode WAV: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to close WAV encoder: %w", err)
	}

	wavData, err := io.ReadAll(ws.Reader())
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV data: %w", err)
	}

	return wavData, nil
}

// extensibleSubFormat walks the RIFF chunks to the fmt chunk and returns the
// format tag its SubFormat GUID stands for. The wav decoder discards the fmt
// extension, so the chunk is read again here. GUIDs outside the
// KSDATAFORMAT_SUBTYPE family yield FormatExtensible.
func extensibleSubFormat(wavData []byte) (int, error) {
	parser := riff.New(bytes.NewReader(wavData))
	if err := parser.ParseHeaders(); err != nil {
		return 0, err
	}
	for {
		chunk, err := parser.NextChunk()
		if errors.Is(err, io.EOF) {
			return 0, ErrNoFormatChunk
		}
		if err != nil {
			return 0, err
		}
		if chunk.ID != riff.FmtID {
			chunk.Drain()
			continue
		}

		if chunk.Size < extensibleFmtSize {
			return 0, ErrShortExtension
		}
		fmtChunk := make([]byte, extensibleFmtSize)
		if _, err := io.ReadFull(chunk, fmtChunk); err != nil {
			return 0, err
		}
		if binary.LittleEndian.Uint16(fmtChunk[extensionSizeOffset:]) < minExtensionSize {
			return 0, ErrShortExtension
		}
		if !bytes.Equal(fmtChunk[subFormatOffset+2:], subFormatGUIDTail) {
			return FormatExtensible, nil
		}
		return int(binary.LittleEndian.Uint16(fmtChunk[subFormatOffset:])), nil
	}
}
