package codec

import (
	"fmt"
	"strings"
)

// Kind identifies one of the supported codecs.
type Kind int

const (
	KindUnknown     Kind = iota // An unknown codec.
	KindPixelLSB                // Image channel LSB embedding.
	KindWavLSB                  // WAV sample LSB embedding.
	KindJPEGSegment             // JPEG comment segment chunking.
	KindAppendix                // Reversed appendix past the end of a binary.
	KindGLTFExtras              // Base64 entry in a glTF scene's extras.
	maxKind         = iota - 1
)

var kindNames = map[Kind]string{
	KindPixelLSB:    "pixel-lsb",
	KindWavLSB:      "wav-lsb",
	KindJPEGSegment: "jpeg-segment",
	KindAppendix:    "appendix",
	KindGLTFExtras:  "gltf-extras",
}

// IsValid reports whether k names a known codec.
func (k Kind) IsValid() bool {
	return k > KindUnknown && k <= maxKind
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "<unknown>"
}

// Kinds returns every valid kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, maxKind)
	for k := KindUnknown + 1; k <= maxKind; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// ParseKind parses a codec name such as "wav-lsb".
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown codec %q", s)
}
