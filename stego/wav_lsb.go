package stego

import (
	"encoding/binary"
	"math"

	"github.com/zedseven/binmani"

	"steganography-codecs/audio"
	"steganography-codecs/codec"
)

const (
	lengthHeaderBytes = 4
	samplesPerByte    = 8
)

// WavLSB stores one payload bit per WAV sample. The payload is preceded by
// a 4-byte little-endian length that counts itself.
type WavLSB struct {
	audioDecoder *audio.AudioDecoder
}

var (
	_ codec.Codec     = (*WavLSB)(nil)
	_ codec.Capacitor = (*WavLSB)(nil)
	_ codec.Signaler  = (*WavLSB)(nil)
)

func NewWavLSB() *WavLSB {
	return &WavLSB{audioDecoder: audio.NewAudioDecoder()}
}

// sampleLayout describes where the payload bit lives inside one sample.
type sampleLayout struct {
	width   int // bytes per sample
	bitByte int // index of the byte whose bit 0 carries payload
}

// layoutFor dispatches on the (sample format, bit depth) pair. 8-bit PCM
// has a single byte, so its bit goes to byte 0; wider samples use byte 1.
func layoutFor(pcm *audio.PCM) (sampleLayout, error) {
	switch pcm.AudioFormat {
	case audio.FormatPCM:
		switch pcm.BitDepth {
		case 8:
			return sampleLayout{width: 1, bitByte: 0}, nil
		case 16:
			return sampleLayout{width: 2, bitByte: 1}, nil
		case 32:
			return sampleLayout{width: 4, bitByte: 1}, nil
		}
	case audio.FormatIEEEFloat:
		if pcm.BitDepth == 32 {
			return sampleLayout{width: 4, bitByte: 1}, nil
		}
	}
	return sampleLayout{}, codec.Invalidf("unsupported bit depth: %d-bit samples in WAVE format %d", pcm.BitDepth, pcm.AudioFormat)
}

func (w *WavLSB) decodePCM(data []byte) (*audio.PCM, sampleLayout, error) {
	pcm, err := w.audioDecoder.DecodeWAV(data)
	if err != nil {
		return nil, sampleLayout{}, codec.Dependency(err)
	}
	layout, err := layoutFor(pcm)
	if err != nil {
		return nil, sampleLayout{}, err
	}
	return pcm, layout, nil
}

func (w *WavLSB) Encode(carrier, payload []byte) ([]byte, error) {
	pcm, layout, err := w.decodePCM(carrier)
	if err != nil {
		return nil, err
	}

	if uint64(len(payload))+lengthHeaderBytes > math.MaxUint32 {
		return nil, codec.Invalidf("payload of %d bytes exceeds the 32-bit length field", len(payload))
	}
	stream := make([]byte, lengthHeaderBytes, lengthHeaderBytes+len(payload))
	binary.LittleEndian.PutUint32(stream, uint32(len(payload)+lengthHeaderBytes))
	stream = append(stream, payload...)

	sampleCount := pcm.SampleCount()
	if len(stream)*samplesPerByte > sampleCount {
		return nil, codec.Invalidf("payload of %d bytes needs %d samples, carrier has %d",
			len(payload), len(stream)*samplesPerByte, sampleCount)
	}

	stegoPCM := *pcm
	stegoPCM.Data = make([]byte, len(pcm.Data))
	copy(stegoPCM.Data, pcm.Data)

	for i, bit := range bytesToBits(stream) {
		pos := i*layout.width + layout.bitByte
		stegoPCM.Data[pos] = byte(binmani.WriteTo(uint16(stegoPCM.Data[pos]), 0, 1, uint16(bit)))
	}

	encoded, err := w.audioDecoder.EncodeWAV(&stegoPCM)
	if err != nil {
		return nil, codec.Dependency(err)
	}
	return encoded, nil
}

func (w *WavLSB) Decode(encoded []byte) ([]byte, []byte, error) {
	pcm, layout, err := w.decodePCM(encoded)
	if err != nil {
		return nil, nil, err
	}

	sampleCount := pcm.SampleCount()
	headerSamples := lengthHeaderBytes * samplesPerByte
	if sampleCount < headerSamples {
		return nil, nil, codec.NotEncoded("too few samples for a length header")
	}

	header := bitsToBytes(readSampleBits(pcm.Data, layout, 0, headerSamples))
	declared := binary.LittleEndian.Uint32(header)
	if declared < lengthHeaderBytes {
		return nil, nil, codec.NotEncoded("length header smaller than itself")
	}
	payloadLen := uint64(declared - lengthHeaderBytes)
	if payloadLen*samplesPerByte > uint64(sampleCount-headerSamples) {
		return nil, nil, codec.NotEncoded("declared payload exceeds the remaining samples")
	}

	bits := readSampleBits(pcm.Data, layout, headerSamples, int(payloadLen)*samplesPerByte)
	carrier := make([]byte, len(encoded))
	copy(carrier, encoded)
	return carrier, bitsToBytes(bits), nil
}

// Capacity returns how many payload bytes fit after the length header.
func (w *WavLSB) Capacity(carrier []byte) (int, error) {
	pcm, _, err := w.decodePCM(carrier)
	if err != nil {
		return 0, err
	}
	return max(pcm.SampleCount()/samplesPerByte-lengthHeaderBytes, 0), nil
}

// Signal returns the samples of a WAV file at full scale.
func (w *WavLSB) Signal(data []byte) ([]float64, error) {
	pcm, _, err := w.decodePCM(data)
	if err != nil {
		return nil, err
	}
	return pcm.Samples(), nil
}

func readSampleBits(data []byte, layout sampleLayout, first, n int) []byte {
	bits := make([]byte, n)
	for i := range bits {
		pos := (first+i)*layout.width + layout.bitByte
		bits[i] = byte(binmani.ReadFrom(uint16(data[pos]), 0, 1))
	}
	return bits
}
