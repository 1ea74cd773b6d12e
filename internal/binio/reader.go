// Package binio provides the positioned little-endian cursor used to decode
// and encode chunked mesh files.
package binio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"meshopt/internal/ogre"
)

// ChunkHeaderSize is the size of a chunk id plus its 32-bit length.
const ChunkHeaderSize = 6

// Reader reads typed values from a file held fully in memory.
// Offsets are absolute from the start of the file.
type Reader struct {
	data       []byte
	off        int
	chunkStart int
}

// NewReader reads all of r and returns a cursor positioned at offset 0.
func NewReader(r io.Reader) (*Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("binio: read input: %w", err)
	}
	return FromBytes(data), nil
}

// FromBytes wraps data without copying it.
func FromBytes(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) need(n int) error {
	if n < 0 || r.off+n > len(r.data) {
		return fmt.Errorf("%w: short read of %d bytes at offset %d (size %d)", ogre.ErrFormat, n, r.off, len(r.data))
	}
	return nil
}

// U8 reads one byte.
func (r *Reader) U8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

// Bool reads one byte and reports whether it is non-zero.
func (r *Reader) Bool() (bool, error) {
	v, err := r.U8()
	return v != 0, err
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v, nil
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

// F32 reads a little-endian IEEE 754 float.
func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	return math.Float32frombits(v), err
}

// Line reads bytes up to a '\n' terminator and returns them without it.
func (r *Reader) Line() (string, error) {
	for i := r.off; i < len(r.data); i++ {
		if r.data[i] == '\n' {
			s := string(r.data[r.off:i])
			r.off = i + 1
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unterminated string at offset %d", ogre.ErrFormat, r.off)
}

// ChunkHeader reads a chunk id and its declared length and remembers where
// the chunk started.
func (r *Reader) ChunkHeader() (uint16, uint32, error) {
	r.chunkStart = r.off
	id, err := r.U16()
	if err != nil {
		return 0, 0, err
	}
	size, err := r.U32()
	if err != nil {
		return 0, 0, err
	}
	return id, size, nil
}

// ChunkStart is the offset of the last chunk header read.
func (r *Reader) ChunkStart() int {
	return r.chunkStart
}

// ConsumedChunkLen is how many bytes of the current chunk were read so far,
// header included.
func (r *Reader) ConsumedChunkLen() int {
	return r.off - r.chunkStart
}

// ConsumedBuf returns a copy of the bytes read since the current chunk started.
func (r *Reader) ConsumedBuf() []byte {
	return r.SubBuf(r.chunkStart, r.off)
}

// SubBuf returns a copy of data[start:end] without moving the cursor.
func (r *Reader) SubBuf(start, end int) []byte {
	buf := make([]byte, end-start)
	copy(buf, r.data[start:end])
	return buf
}

// EOF reports whether the whole file was consumed.
func (r *Reader) EOF() bool {
	return r.off >= len(r.data)
}

// Remaining is the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// Offset is the current absolute position.
func (r *Reader) Offset() int {
	return r.off
}

// Len is the total file size.
func (r *Reader) Len() int {
	return len(r.data)
}
