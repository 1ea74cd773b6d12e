package binio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"meshopt/internal/ogre"
)

// Writer mirrors Reader for output. The first write error sticks and is
// reported by Err; later writes are dropped.
type Writer struct {
	w       io.Writer
	err     error
	written int
	scratch [4]byte
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) write(b []byte) {
	if w.err != nil || len(b) == 0 {
		return
	}
	n, err := w.w.Write(b)
	w.written += n
	if err != nil {
		w.err = fmt.Errorf("binio: write: %w", err)
	}
}

// Raw writes b as is.
func (w *Writer) Raw(b []byte) {
	w.write(b)
}

// RawFrom writes b starting at byte offset. It is used to re-emit a chunk
// payload whose header was already written.
func (w *Writer) RawFrom(offset int, b []byte) {
	if offset > len(b) {
		if w.err == nil {
			w.err = fmt.Errorf("%w: write from offset %d of a %d byte buffer", ogre.ErrFormat, offset, len(b))
		}
		return
	}
	w.write(b[offset:])
}

// U8 writes one byte.
func (w *Writer) U8(v uint8) {
	w.scratch[0] = v
	w.write(w.scratch[:1])
}

// Bool writes 1 or 0.
func (w *Writer) Bool(v bool) {
	if v {
		w.U8(1)
	} else {
		w.U8(0)
	}
}

// U16 writes a little-endian uint16.
func (w *Writer) U16(v uint16) {
	binary.LittleEndian.PutUint16(w.scratch[:2], v)
	w.write(w.scratch[:2])
}

// U32 writes a little-endian uint32.
func (w *Writer) U32(v uint32) {
	binary.LittleEndian.PutUint32(w.scratch[:4], v)
	w.write(w.scratch[:4])
}

// F32 writes a little-endian IEEE 754 float.
func (w *Writer) F32(v float32) {
	w.U32(math.Float32bits(v))
}

// Line writes s followed by a '\n' terminator.
func (w *Writer) Line(s string) {
	w.write([]byte(s))
	w.U8('\n')
}

// ChunkHeader writes a chunk id and its total size.
func (w *Writer) ChunkHeader(id uint16, size uint32) {
	w.U16(id)
	w.U32(size)
}

// Written is the number of bytes accepted by the underlying writer.
func (w *Writer) Written() int {
	return w.written
}

// Err returns the first error encountered.
func (w *Writer) Err() error {
	return w.err
}
