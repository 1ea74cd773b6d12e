package binio

import (
	"bytes"
	"errors"
	"testing"

	"meshopt/internal/ogre"
)

func TestWriterReaderPrimitives(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.ChunkHeader(0x5110, 16)
	w.U8(7)
	w.Bool(true)
	w.U16(0xBEEF)
	w.U32(0xDEADBEEF)
	w.F32(-1.5)
	w.Line("material/stone")
	if err := w.Err(); err != nil {
		t.Fatalf("writer error: %v", err)
	}
	if w.Written() != buf.Len() {
		t.Errorf("written %d, want %d", w.Written(), buf.Len())
	}

	r := FromBytes(buf.Bytes())
	id, size, err := r.ChunkHeader()
	if err != nil {
		t.Fatal(err)
	}
	if id != 0x5110 || size != 16 {
		t.Errorf("header got (%#x, %d), want (0x5110, 16)", id, size)
	}
	if v, _ := r.U8(); v != 7 {
		t.Errorf("U8 got %d, want 7", v)
	}
	if v, _ := r.Bool(); !v {
		t.Error("Bool got false, want true")
	}
	if v, _ := r.U16(); v != 0xBEEF {
		t.Errorf("U16 got %#x, want 0xbeef", v)
	}
	if v, _ := r.U32(); v != 0xDEADBEEF {
		t.Errorf("U32 got %#x, want 0xdeadbeef", v)
	}
	if v, _ := r.F32(); v != -1.5 {
		t.Errorf("F32 got %v, want -1.5", v)
	}
	if s, _ := r.Line(); s != "material/stone" {
		t.Errorf("Line got %q, want material/stone", s)
	}
	if !r.EOF() {
		t.Errorf("expected EOF, %d bytes remain", r.Remaining())
	}
	if got := r.ConsumedChunkLen(); got != buf.Len() {
		t.Errorf("consumed %d, want %d", got, buf.Len())
	}
	if !bytes.Equal(r.ConsumedBuf(), buf.Bytes()) {
		t.Error("consumed buffer differs from input")
	}
}

func TestReaderShortRead(t *testing.T) {
	r := FromBytes([]byte{1, 2, 3})
	if _, err := r.U32(); !errors.Is(err, ogre.ErrFormat) {
		t.Errorf("got %v, want ErrFormat", err)
	}
	if r.Offset() != 0 {
		t.Errorf("failed read moved cursor to %d", r.Offset())
	}
	if _, err := r.Line(); !errors.Is(err, ogre.ErrFormat) {
		t.Errorf("unterminated line: got %v, want ErrFormat", err)
	}
}

func TestSubBufDoesNotMoveCursor(t *testing.T) {
	r := FromBytes([]byte{0, 1, 2, 3, 4, 5})
	r.U16()
	sub := r.SubBuf(1, 4)
	if !bytes.Equal(sub, []byte{1, 2, 3}) {
		t.Errorf("got %v, want [1 2 3]", sub)
	}
	if r.Offset() != 2 {
		t.Errorf("offset %d, want 2", r.Offset())
	}
	sub[0] = 9
	if v, _ := r.U8(); v != 2 {
		t.Errorf("SubBuf aliases input, read %d", v)
	}
}

func TestRawFrom(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.RawFrom(6, []byte{0, 0x10, 12, 0, 0, 0, 'a', 'b'})
	if got := buf.String(); got != "ab" {
		t.Errorf("got %q, want ab", got)
	}
	w.RawFrom(9, []byte{1, 2})
	if !errors.Is(w.Err(), ogre.ErrFormat) {
		t.Errorf("got %v, want ErrFormat", w.Err())
	}
}
