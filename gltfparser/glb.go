// Package gltfparser reads and writes binary glTF (GLB) containers
package gltfparser

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	Magic      uint32 = 0x46546C67 // "glTF"
	HeaderSize        = 12
	ChunkJSON  uint32 = 0x4E4F534A
	ChunkBIN   uint32 = 0x004E4942
)

var (
	ErrNotGLB       = errors.New("glb: bad magic")
	ErrNoJSONChunk  = errors.New("glb: first chunk is not JSON")
	ErrLengthHeader = errors.New("glb: header length does not match data")
)

// Chunk is one GLB chunk. Data excludes the 8-byte chunk header and keeps
// any alignment padding.
type Chunk struct {
	Type uint32
	Data []byte
}

// GLB represents a binary glTF file
type GLB struct {
	Version uint32
	Chunks  []*Chunk
}

// JSON returns the JSON chunk contents with trailing padding removed.
func (g *GLB) JSON() []byte {
	return bytes.TrimRight(g.Chunks[0].Data, " \x00")
}

// SetJSON replaces the JSON chunk contents, padding to 4 bytes with spaces.
func (g *GLB) SetJSON(doc []byte) {
	padded := make([]byte, align4(len(doc)))
	copy(padded, doc)
	for i := len(doc); i < len(padded); i++ {
		padded[i] = ' '
	}
	g.Chunks[0].Data = padded
}

// ParseGLB parses a GLB file. The first chunk must be JSON.
func ParseGLB(data []byte) (*GLB, error) {
	if len(data) < HeaderSize {
		return nil, io.ErrUnexpectedEOF
	}
	if binary.LittleEndian.Uint32(data[0:4]) != Magic {
		return nil, ErrNotGLB
	}
	glb := &GLB{Version: binary.LittleEndian.Uint32(data[4:8])}
	length := binary.LittleEndian.Uint32(data[8:12])
	if int(length) > len(data) || length < HeaderSize {
		return nil, fmt.Errorf("%w: header says %d, have %d", ErrLengthHeader, length, len(data))
	}

	rest := data[HeaderSize:length]
	for len(rest) > 0 {
		if len(rest) < 8 {
			return nil, io.ErrUnexpectedEOF
		}
		chunkLen := binary.LittleEndian.Uint32(rest[0:4])
		chunkType := binary.LittleEndian.Uint32(rest[4:8])
		if uint64(chunkLen) > uint64(len(rest)-8) {
			return nil, fmt.Errorf("glb: chunk %d length %d overruns file", len(glb.Chunks), chunkLen)
		}
		glb.Chunks = append(glb.Chunks, &Chunk{
			Type: chunkType,
			Data: append([]byte(nil), rest[8:8+chunkLen]...),
		})
		rest = rest[8+chunkLen:]
	}

	if len(glb.Chunks) == 0 || glb.Chunks[0].Type != ChunkJSON {
		return nil, ErrNoJSONChunk
	}
	return glb, nil
}

// WriteGLB serialises glb, recomputing chunk and header lengths.
func WriteGLB(glb *GLB) ([]byte, error) {
	total := HeaderSize
	for _, c := range glb.Chunks {
		if len(c.Data)%4 != 0 {
			return nil, fmt.Errorf("glb: chunk of type 0x%08X is not 4-byte aligned", c.Type)
		}
		total += 8 + len(c.Data)
	}

	buf := bytes.NewBuffer(make([]byte, 0, total))
	binary.Write(buf, binary.LittleEndian, Magic)
	binary.Write(buf, binary.LittleEndian, glb.Version)
	binary.Write(buf, binary.LittleEndian, uint32(total))
	for _, c := range glb.Chunks {
		binary.Write(buf, binary.LittleEndian, uint32(len(c.Data)))
		binary.Write(buf, binary.LittleEndian, c.Type)
		buf.Write(c.Data)
	}
	return buf.Bytes(), nil
}

func align4(n int) int {
	return (n + 3) &^ 3
}
