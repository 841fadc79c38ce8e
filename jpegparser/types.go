package jpegparser

// JPEG marker codes (the byte following 0xFF).
const (
	MarkerTEM  byte = 0x01
	MarkerRST0 byte = 0xD0
	MarkerRST7 byte = 0xD7
	MarkerSOI  byte = 0xD8
	MarkerEOI  byte = 0xD9
	MarkerSOS  byte = 0xDA
	MarkerCOM  byte = 0xFE
)

// MaxSegmentContents is the largest payload a marker segment can hold:
// the 16-bit length field counts its own two bytes.
const MaxSegmentContents = 0xFFFF - 2

// JPEGSegment represents one marker segment after SOI
type JPEGSegment struct {
	Marker   byte
	Fill     int    // 0xFF fill bytes before the marker
	Contents []byte // Bytes after the length field
	ScanData []byte // Entropy-coded data following an SOS header - NEVER MODIFY
}

// IsStandalone reports whether the marker carries no length field.
func (s *JPEGSegment) IsStandalone() bool {
	return isStandalone(s.Marker)
}

// JPEGFile represents the structure of a JPEG byte stream
type JPEGFile struct {
	Segments []*JPEGSegment
	HasEOI   bool
	EOIFill  int    // 0xFF fill bytes before EOI
	Trailer  []byte // Anything after EOI
}

func isStandalone(marker byte) bool {
	return marker == MarkerTEM || (marker >= MarkerRST0 && marker <= MarkerRST7)
}
