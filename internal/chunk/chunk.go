// Package chunk models the recursive chunk tree of a mesh file.
package chunk

import (
	"fmt"
	"io"
	"strings"

	"meshopt/internal/ogre"
)

// Chunk is one node of the tree. A parent owns its children; Parent is a
// back reference only.
type Chunk struct {
	ID uint16
	// DeclaredSize is the length read from the chunk header.
	DeclaredSize uint32
	// Size is the length the chunk occupies when written. After parsing it
	// is the number of bytes actually consumed, header included.
	Size uint32
	// Raw holds the header and the decoded fields of this chunk, not its
	// children.
	Raw    []byte
	Sub    []*Chunk
	Parent *Chunk

	consumed uint32
}

// New returns a detached chunk.
func New(id uint16, declared uint32) *Chunk {
	return &Chunk{ID: id, DeclaredSize: declared, Size: declared}
}

// Add appends c as the last child of p.
func (p *Chunk) Add(c *Chunk) {
	c.Parent = p
	p.Sub = append(p.Sub, c)
}

// Detach removes c and its subtree from its parent and subtracts its size
// from every ancestor. Detaching a chunk twice is a no-op.
func (c *Chunk) Detach() {
	p := c.Parent
	if p == nil {
		return
	}
	for i, s := range p.Sub {
		if s == c {
			p.Sub = append(p.Sub[:i:i], p.Sub[i+1:]...)
			break
		}
	}
	for a := p; a != nil; a = a.Parent {
		a.Size -= c.Size
	}
	c.Parent = nil
}

// Attached reports whether c still hangs off a tree.
func (c *Chunk) Attached() bool {
	return c.Parent != nil
}

// Walk visits c and its descendants depth first, parents before children.
func (c *Chunk) Walk(fn func(c *Chunk, depth int)) {
	c.walk(fn, 0)
}

func (c *Chunk) walk(fn func(c *Chunk, depth int), depth int) {
	fn(c, depth)
	for _, s := range c.Sub {
		s.walk(fn, depth+1)
	}
}

// Count returns the number of chunks with the given id under c, c included.
func (c *Chunk) Count(id uint16) int {
	n := 0
	c.Walk(func(s *Chunk, _ int) {
		if s.ID == id {
			n++
		}
	})
	return n
}

// Dump writes an indented listing of the tree rooted at c. Chunks whose
// declared size differs from their size are flagged.
func Dump(w io.Writer, c *Chunk, d ogre.Dialect) error {
	var err error
	c.Walk(func(s *Chunk, depth int) {
		if err != nil {
			return
		}
		line := fmt.Sprintf("%s%s(%x)  %d bytes", strings.Repeat("  ", depth), ogre.ChunkName(d, s.ID), s.ID, s.DeclaredSize)
		if s.DeclaredSize != s.Size {
			line += fmt.Sprintf("  (**WRONG, fixed to %d  diff=%d)", s.Size, int64(s.DeclaredSize)-int64(s.Size))
		}
		_, err = fmt.Fprintln(w, line)
	})
	return err
}
