package stego

import "steganography-codecs/codec"

// NewDefaultRegistry registers every codec of this package. jpegStartIndex
// configures the JPEG segment codec.
func NewDefaultRegistry(jpegStartIndex int) *codec.Registry {
	r := codec.NewRegistry()
	// kinds are all valid, registration cannot fail
	_ = r.Register(codec.KindPixelLSB, NewPixelLSB())
	_ = r.Register(codec.KindWavLSB, NewWavLSB())
	_ = r.Register(codec.KindJPEGSegment, NewJPEGSegment(jpegStartIndex))
	_ = r.Register(codec.KindAppendix, NewReverseAppendix())
	_ = r.Register(codec.KindGLTFExtras, NewGLTFExtras())
	return r
}

// New returns a codec of the given kind with default options.
func New(kind codec.Kind) (codec.Codec, error) {
	switch kind {
	case codec.KindPixelLSB:
		return NewPixelLSB(), nil
	case codec.KindWavLSB:
		return NewWavLSB(), nil
	case codec.KindJPEGSegment:
		return NewJPEGSegment(DefaultJPEGStartIndex), nil
	case codec.KindAppendix:
		return NewReverseAppendix(), nil
	case codec.KindGLTFExtras:
		return NewGLTFExtras(), nil
	default:
		return nil, codec.Invalidf("unknown codec kind %d", int(kind))
	}
}
