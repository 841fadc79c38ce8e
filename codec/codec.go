// Package codec defines the contract shared by every steganography codec
package codec

import "math"

// Codec conceals payload data inside the data of a carrier.
//
// Implementations hold no state between calls, so a single value may be
// used from several goroutines at once.
type Codec interface {
	// Encode embeds payload inside carrier and returns the result.
	Encode(carrier, payload []byte) ([]byte, error)

	// Decode extracts the payload from an encoded carrier. The returned
	// carrier is the original one for lossless schemes and the modified
	// artifact for LSB schemes.
	Decode(encoded []byte) (carrier, payload []byte, err error)
}

// Unbounded is the capacity reported for carriers that accept payloads of
// any size.
const Unbounded = math.MaxInt

// Capacitor is implemented by codecs that can report how many payload
// bytes a carrier is able to hold.
type Capacitor interface {
	Capacity(carrier []byte) (int, error)
}

// Signaler is implemented by lossy codecs. Signal returns the samples of a
// carrier (pixel channels, decoded PCM) scaled to a peak of 1.0 so
// distortion can be measured.
type Signaler interface {
	Signal(data []byte) ([]float64, error)
}
