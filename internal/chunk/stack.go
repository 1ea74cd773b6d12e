package chunk

import (
	"fmt"

	"go.uber.org/zap"

	"meshopt/internal/logger"
	"meshopt/internal/ogre"
)

// Stack tracks the chunks that are open while a file is decoded.
type Stack struct {
	grammar ogre.Grammar
	dialect ogre.Dialect
	open    []*Chunk
	root    *Chunk
}

// NewStack opens a root chunk of the given size.
func NewStack(d ogre.Dialect, rootSize uint32) *Stack {
	root := New(ogre.RootID, rootSize)
	return &Stack{
		grammar: ogre.GrammarFor(d),
		dialect: d,
		open:    []*Chunk{root},
		root:    root,
	}
}

// Root returns the root chunk.
func (s *Stack) Root() *Chunk {
	return s.root
}

// Top returns the innermost open chunk, or nil once the stack is empty.
func (s *Stack) Top() *Chunk {
	if len(s.open) == 0 {
		return nil
	}
	return s.open[len(s.open)-1]
}

// Push closes open chunks until one accepts id as a child, then opens a
// new chunk under it.
func (s *Stack) Push(id uint16, declared uint32) (*Chunk, error) {
	for len(s.open) > 0 && !s.grammar.Allows(s.Top().ID, id) {
		s.pop()
	}
	if len(s.open) == 0 {
		return nil, fmt.Errorf("%w: chunk %s(%#x) has no valid parent", ogre.ErrFormat, ogre.ChunkName(s.dialect, id), id)
	}
	c := New(id, declared)
	s.Top().Add(c)
	s.open = append(s.open, c)
	return c, nil
}

// Consume stores buf as the raw bytes of c and charges its length to every
// open chunk.
func (s *Stack) Consume(c *Chunk, buf []byte) {
	c.Raw = buf
	for _, o := range s.open {
		o.consumed += uint32(len(buf))
	}
}

// Finish closes every open chunk and returns the root.
func (s *Stack) Finish() *Chunk {
	for len(s.open) > 0 {
		s.pop()
	}
	return s.root
}

func (s *Stack) pop() {
	c := s.Top()
	s.open = s.open[:len(s.open)-1]
	c.Size = c.consumed
	if c.Size != c.DeclaredSize {
		logger.Log.Warn("chunk size mismatch",
			zap.String("chunk", ogre.ChunkName(s.dialect, c.ID)),
			zap.Uint32("declared", c.DeclaredSize),
			zap.Uint32("consumed", c.Size))
	}
}
