package stego

import (
	"encoding/binary"

	"steganography-codecs/codec"
	"steganography-codecs/jpegparser"
)

const (
	// DefaultJPEGStartIndex places comments after the first three segments
	// (typically APP0 and the quantisation tables).
	DefaultJPEGStartIndex = 3
	segmentCountBytes     = 8
)

// JPEGSegment stores the payload in consecutive COM segments inserted at
// StartIndex. The first segment begins with an 8-byte little-endian count
// of the segments used.
type JPEGSegment struct {
	StartIndex int
}

var (
	_ codec.Codec     = (*JPEGSegment)(nil)
	_ codec.Capacitor = (*JPEGSegment)(nil)
)

func NewJPEGSegment(startIndex int) *JPEGSegment {
	return &JPEGSegment{StartIndex: startIndex}
}

func (j *JPEGSegment) Encode(carrier, payload []byte) ([]byte, error) {
	jpegFile, err := jpegparser.ParseJPEGFile(carrier)
	if err != nil {
		return nil, codec.Dependency(err)
	}
	if j.StartIndex < 0 || j.StartIndex > len(jpegFile.Segments) {
		return nil, codec.Invalidf("start index %d outside the %d segments of the carrier", j.StartIndex, len(jpegFile.Segments))
	}

	total := len(payload) + segmentCountBytes
	segmentCount := (total + jpegparser.MaxSegmentContents - 1) / jpegparser.MaxSegmentContents

	framed := make([]byte, segmentCountBytes, total)
	binary.LittleEndian.PutUint64(framed, uint64(segmentCount))
	framed = append(framed, payload...)

	for i := 0; i < segmentCount; i++ {
		chunk := framed[i*jpegparser.MaxSegmentContents : min((i+1)*jpegparser.MaxSegmentContents, total)]
		seg := &jpegparser.JPEGSegment{Marker: jpegparser.MarkerCOM, Contents: chunk}
		if err := jpegFile.InsertSegment(j.StartIndex+i, seg); err != nil {
			return nil, codec.Dependency(err)
		}
	}

	encoded, err := jpegparser.WriteJPEGFile(jpegFile)
	if err != nil {
		return nil, codec.Dependency(err)
	}
	return encoded, nil
}

func (j *JPEGSegment) Decode(encoded []byte) ([]byte, []byte, error) {
	jpegFile, err := jpegparser.ParseJPEGFile(encoded)
	if err != nil {
		return nil, nil, codec.Dependency(err)
	}

	first, err := j.removeComment(jpegFile)
	if err != nil {
		return nil, nil, err
	}
	if len(first.Contents) < segmentCountBytes {
		return nil, nil, codec.NotEncoded("first comment segment is shorter than the segment count")
	}
	segmentCount := binary.LittleEndian.Uint64(first.Contents[:segmentCountBytes])
	if segmentCount == 0 || segmentCount-1 > uint64(len(jpegFile.Segments)-j.StartIndex) {
		return nil, nil, codec.NotEncoded("segment count does not match the carrier")
	}

	payload := make([]byte, 0, int(segmentCount)*jpegparser.MaxSegmentContents-segmentCountBytes)
	payload = append(payload, first.Contents[segmentCountBytes:]...)
	for i := uint64(1); i < segmentCount; i++ {
		seg, err := j.removeComment(jpegFile)
		if err != nil {
			return nil, nil, err
		}
		payload = append(payload, seg.Contents...)
	}

	carrier, err := jpegparser.WriteJPEGFile(jpegFile)
	if err != nil {
		return nil, nil, codec.Dependency(err)
	}
	return carrier, payload, nil
}

// Capacity is unbounded: any payload fits given enough segments.
func (j *JPEGSegment) Capacity(carrier []byte) (int, error) {
	if _, err := jpegparser.ParseJPEGFile(carrier); err != nil {
		return 0, codec.Dependency(err)
	}
	return codec.Unbounded, nil
}

// removeComment takes the COM segment at StartIndex out of jpegFile.
func (j *JPEGSegment) removeComment(jpegFile *jpegparser.JPEGFile) (*jpegparser.JPEGSegment, error) {
	if j.StartIndex < 0 || j.StartIndex >= len(jpegFile.Segments) {
		return nil, codec.NotEncoded("no segment at the start index")
	}
	if jpegFile.Segments[j.StartIndex].Marker != jpegparser.MarkerCOM {
		return nil, codec.NotEncoded("segment at the start index is not a comment")
	}
	return jpegFile.RemoveSegment(j.StartIndex)
}
