package stego

import (
	"encoding/binary"
	"slices"

	"steganography-codecs/codec"
)

const trailerLengthBytes = 8

// ReverseAppendix writes the payload past the end of an opaque carrier.
// The trailer is the byte-reversed concatenation of an 8-byte
// little-endian trailer length (counting itself) and the payload, so the
// decoder finds the length in the last eight bytes of the file.
type ReverseAppendix struct{}

var (
	_ codec.Codec     = (*ReverseAppendix)(nil)
	_ codec.Capacitor = (*ReverseAppendix)(nil)
)

func NewReverseAppendix() *ReverseAppendix {
	return &ReverseAppendix{}
}

func (a *ReverseAppendix) Encode(carrier, payload []byte) ([]byte, error) {
	trailer := make([]byte, trailerLengthBytes, trailerLengthBytes+len(payload))
	binary.LittleEndian.PutUint64(trailer, uint64(len(payload))+trailerLengthBytes)
	trailer = append(trailer, payload...)
	slices.Reverse(trailer)

	encoded := make([]byte, 0, len(carrier)+len(trailer))
	encoded = append(encoded, carrier...)
	return append(encoded, trailer...), nil
}

func (a *ReverseAppendix) Decode(encoded []byte) ([]byte, []byte, error) {
	if len(encoded) < trailerLengthBytes {
		return nil, nil, codec.NotEncoded("shorter than the trailer length field")
	}

	var lengthField [trailerLengthBytes]byte
	for i := range lengthField {
		lengthField[i] = encoded[len(encoded)-1-i]
	}
	trailerLen := binary.LittleEndian.Uint64(lengthField[:])
	if trailerLen < trailerLengthBytes || trailerLen > uint64(len(encoded)) {
		return nil, nil, codec.NotEncoded("trailer length out of range")
	}

	carrierLen := len(encoded) - int(trailerLen)
	carrier := slices.Clone(encoded[:carrierLen])

	// the payload sits reversed just before the length field
	payload := slices.Clone(encoded[carrierLen : len(encoded)-trailerLengthBytes])
	slices.Reverse(payload)

	return carrier, payload, nil
}

// Capacity is unbounded.
func (a *ReverseAppendix) Capacity(carrier []byte) (int, error) {
	return codec.Unbounded, nil
}
