// Package jpegparser splits JPEG byte streams into marker segments and writes them back
package jpegparser

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"
)

var (
	ErrNotJPEG        = errors.New("jpeg: missing SOI marker")
	ErrIndexRange     = errors.New("jpeg: segment index out of range")
	ErrSegmentTooLong = errors.New("jpeg: segment contents exceed 65533 bytes")
)

// ReadSegment reads the marker segment starting at the current position of
// r. Once EOI has been consumed it returns an EOI segment together with
// io.EOF.
func ReadSegment(r *bytes.Reader) (*JPEGSegment, error) {
	b, err := r.ReadByte()
	if err != nil {
		return nil, io.ErrUnexpectedEOF
	}
	if b != 0xFF {
		return nil, fmt.Errorf("jpeg: expected marker, found 0x%02X at offset %d", b, int(r.Size())-r.Len()-1)
	}
	// fill bytes may precede a marker
	fill := -1
	marker := byte(0xFF)
	for marker == 0xFF {
		if marker, err = r.ReadByte(); err != nil {
			return nil, io.ErrUnexpectedEOF
		}
		fill++
	}

	switch {
	case marker == MarkerEOI:
		return &JPEGSegment{Marker: marker, Fill: fill}, io.EOF
	case marker == MarkerSOI || marker == 0x00:
		return nil, fmt.Errorf("jpeg: unexpected marker 0xFF%02X", marker)
	case isStandalone(marker):
		return &JPEGSegment{Marker: marker, Fill: fill}, nil
	}

	var length uint16
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, io.ErrUnexpectedEOF
	}
	if length < 2 {
		return nil, fmt.Errorf("jpeg: invalid length %d for marker 0xFF%02X", length, marker)
	}
	seg := &JPEGSegment{Marker: marker, Fill: fill, Contents: make([]byte, length-2)}
	if _, err := io.ReadFull(r, seg.Contents); err != nil {
		return nil, io.ErrUnexpectedEOF
	}

	if marker == MarkerSOS {
		seg.ScanData, err = readScanData(r)
		if err != nil {
			return nil, err
		}
	}
	return seg, nil
}

// readScanData consumes entropy-coded bytes up to (not including) the next
// marker that is neither a stuffed zero nor a restart marker. Fill bytes
// before that marker stay in the scan data.
func readScanData(r *bytes.Reader) ([]byte, error) {
	start := int(r.Size()) - r.Len()
	rest := make([]byte, r.Len())
	if _, err := io.ReadFull(r, rest); err != nil {
		return nil, err
	}

	end := len(rest)
	for i := 0; i < len(rest); i++ {
		if rest[i] != 0xFF {
			continue
		}
		j := i + 1
		for j < len(rest) && rest[j] == 0xFF {
			j++
		}
		if j == len(rest) {
			break
		}
		if rest[j] == 0x00 || (rest[j] >= MarkerRST0 && rest[j] <= MarkerRST7) {
			i = j
			continue
		}
		end = j - 1
		break
	}

	if _, err := r.Seek(int64(start+end), io.SeekStart); err != nil {
		return nil, err
	}
	return rest[:end], nil
}

// ParseJPEGFile parses an entire JPEG byte stream
func ParseJPEGFile(data []byte) (*JPEGFile, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != MarkerSOI {
		return nil, ErrNotJPEG
	}
	reader := bytes.NewReader(data[2:])

	jpegFile := &JPEGFile{}
	for reader.Len() > 0 {
		seg, err := ReadSegment(reader)
		if err == io.EOF {
			jpegFile.HasEOI = true
			jpegFile.EOIFill = seg.Fill
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read segment %d: %w", len(jpegFile.Segments), err)
		}
		jpegFile.Segments = append(jpegFile.Segments, seg)
	}

	if jpegFile.HasEOI && reader.Len() > 0 {
		jpegFile.Trailer = make([]byte, reader.Len())
		if _, err := io.ReadFull(reader, jpegFile.Trailer); err != nil {
			return nil, err
		}
	}

	return jpegFile, nil
}

// WriteJPEGFile serialises jpegFile. A file parsed by ParseJPEGFile is
// written back byte for byte.
func WriteJPEGFile(jpegFile *JPEGFile) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, MarkerSOI})

	for i, seg := range jpegFile.Segments {
		writeMarker(&buf, seg.Fill, seg.Marker)
		if seg.IsStandalone() {
			continue
		}
		if len(seg.Contents) > MaxSegmentContents {
			return nil, fmt.Errorf("segment %d: %w", i, ErrSegmentTooLong)
		}
		binary.Write(&buf, binary.BigEndian, uint16(len(seg.Contents)+2))
		buf.Write(seg.Contents)
		buf.Write(seg.ScanData)
	}

	if jpegFile.HasEOI {
		writeMarker(&buf, jpegFile.EOIFill, MarkerEOI)
		buf.Write(jpegFile.Trailer)
	}

	return buf.Bytes(), nil
}

func writeMarker(buf *bytes.Buffer, fill int, marker byte) {
	for range fill {
		buf.WriteByte(0xFF)
	}
	buf.Write([]byte{0xFF, marker})
}

// InsertSegment places seg at index, shifting later segments up.
func (f *JPEGFile) InsertSegment(index int, seg *JPEGSegment) error {
	if index < 0 || index > len(f.Segments) {
		return fmt.Errorf("%w: insert at %d of %d", ErrIndexRange, index, len(f.Segments))
	}
	if len(seg.Contents) > MaxSegmentContents {
		return ErrSegmentTooLong
	}
	f.Segments = slices.Insert(f.Segments, index, seg)
	return nil
}

// RemoveSegment removes and returns the segment at index.
func (f *JPEGFile) RemoveSegment(index int) (*JPEGSegment, error) {
	if index < 0 || index >= len(f.Segments) {
		return nil, fmt.Errorf("%w: remove at %d of %d", ErrIndexRange, index, len(f.Segments))
	}
	seg := f.Segments[index]
	f.Segments = slices.Delete(f.Segments, index, index+1)
	return seg, nil
}
