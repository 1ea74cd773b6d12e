package mesh

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"meshopt/internal/binio"
	"meshopt/internal/chunk"
	"meshopt/internal/ogre"
)

// Serialize writes the mesh to w. Chunks whose content depends on the
// geometry model are regenerated; every other chunk is written as read.
func (m *Mesh) Serialize(w io.Writer) error {
	data, err := m.Bytes()
	if err != nil {
		return err
	}
	bw := binio.NewWriter(w)
	bw.Raw(data)
	return bw.Err()
}

// Bytes encodes the whole file.
func (m *Mesh) Bytes() ([]byte, error) {
	body, err := m.encodeRoot()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(m.Header)+len(body))
	out = append(out, m.Header...)
	return append(out, body...), nil
}

// Resize recomputes the size of every chunk from its current content and
// returns the size of the encoded file.
func (m *Mesh) Resize() (int, error) {
	body, err := m.encodeRoot()
	if err != nil {
		return 0, err
	}
	return len(m.Header) + len(body), nil
}

func (m *Mesh) encodeRoot() ([]byte, error) {
	if m.Root == nil {
		return nil, fmt.Errorf("%w: mesh has no chunk tree", ogre.ErrFormat)
	}
	e := &encoder{m: m, bones: make(map[*chunk.Chunk]*BoneAssignment)}
	for _, ba := range m.BoneAssignments {
		e.bones[ba.Chunk] = ba
	}
	for _, s := range m.Subs {
		for _, ba := range s.BoneAssignments {
			e.bones[ba.Chunk] = ba
		}
	}
	var out []byte
	for _, c := range m.Root.Sub {
		b, err := e.encode(c)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	m.Root.Size = uint32(len(out))
	return out, nil
}

type encoder struct {
	m     *Mesh
	bones map[*chunk.Chunk]*BoneAssignment

	subIndex int
	sub      *SubMesh
	geom     *Geometry

	// cursor over the vertex elements of geom, bind by bind
	entryBind int
	entryPos  int
	entryOff  int

	nextBind int
	bind     int
}

// encode returns the full bytes of c, header and children included, and
// stores the resulting length in c.Size.
func (e *encoder) encode(c *chunk.Chunk) ([]byte, error) {
	var body bytes.Buffer
	w := binio.NewWriter(&body)
	if err := e.body(w, c); err != nil {
		return nil, fmt.Errorf("mesh: write %s: %w", ogre.ChunkName(e.m.Dialect, c.ID), err)
	}
	if err := w.Err(); err != nil {
		return nil, err
	}
	for _, s := range c.Sub {
		b, err := e.encode(s)
		if err != nil {
			return nil, err
		}
		body.Write(b)
	}
	if c.ID == ogre.MGeometry && e.m.Dialect == ogre.DialectMesh {
		if err := e.endGeometry(); err != nil {
			return nil, err
		}
	}
	size := binio.ChunkHeaderSize + body.Len()
	c.Size = uint32(size)
	out := make([]byte, binio.ChunkHeaderSize, size)
	binary.LittleEndian.PutUint16(out, c.ID)
	binary.LittleEndian.PutUint32(out[2:], c.Size)
	return append(out, body.Bytes()...), nil
}

func (e *encoder) body(w *binio.Writer, c *chunk.Chunk) error {
	if e.m.Dialect == ogre.DialectMesh {
		switch c.ID {
		case ogre.MSubmesh:
			return e.submesh(w)
		case ogre.MSubmeshBoneAssignment, ogre.MMeshBoneAssignment:
			ba, ok := e.bones[c]
			if !ok {
				return fmt.Errorf("%w: bone assignment chunk without assignment", ogre.ErrFormat)
			}
			w.U32(ba.Vertex)
			w.U16(ba.Bone)
			w.F32(ba.Weight)
			return nil
		case ogre.MGeometry:
			return e.geometry(w, c)
		case ogre.MGeometryVertexElement:
			return e.vertexElement(w)
		case ogre.MGeometryVertexBuffer:
			return e.vertexBuffer(w)
		case ogre.MGeometryVertexBufferData:
			return e.vertexData(w)
		}
	}
	w.RawFrom(binio.ChunkHeaderSize, c.Raw)
	return nil
}

func (e *encoder) submesh(w *binio.Writer) error {
	if e.subIndex >= len(e.m.Subs) {
		return fmt.Errorf("%w: more submesh chunks than submeshes", ogre.ErrFormat)
	}
	s := e.m.Subs[e.subIndex]
	e.subIndex++
	e.sub = s
	e.geom = nil

	w.Line(s.Material)
	w.Bool(s.SharedVertices)
	w.U32(uint32(len(s.Indices)))
	w.Bool(s.Use32)
	for _, idx := range s.Indices {
		if s.Use32 {
			w.U32(idx)
			continue
		}
		if idx > 0xFFFF {
			return fmt.Errorf("%w: index %d does not fit 16 bits", ogre.ErrFormat, idx)
		}
		w.U16(uint16(idx))
	}
	return nil
}

func (e *encoder) geometry(w *binio.Writer, c *chunk.Chunk) error {
	if c.Parent != nil && c.Parent.ID == ogre.MMesh {
		e.geom = e.m.Shared
	} else if e.sub != nil {
		e.geom = e.sub.Geometry
	} else {
		e.geom = nil
	}
	if e.geom == nil {
		return fmt.Errorf("%w: geometry chunk without geometry", ogre.ErrFormat)
	}
	e.entryBind, e.entryPos, e.entryOff = 0, 0, 0
	e.nextBind = 0
	e.bind = -1
	w.U32(uint32(len(e.geom.Vertices)))
	return nil
}

func (e *encoder) endGeometry() error {
	g := e.geom
	for e.entryBind < len(g.Binds) && e.entryPos == len(g.Binds[e.entryBind].Entries) {
		e.entryBind++
		e.entryPos, e.entryOff = 0, 0
	}
	if e.entryBind != len(g.Binds) {
		return fmt.Errorf("%w: vertex declaration lists fewer elements than the layout", ogre.ErrFormat)
	}
	if e.nextBind != len(g.Binds) {
		return fmt.Errorf("%w: %d vertex buffers written for %d binds", ogre.ErrFormat, e.nextBind, len(g.Binds))
	}
	return nil
}

func (e *encoder) vertexElement(w *binio.Writer) error {
	g := e.geom
	for e.entryBind < len(g.Binds) && e.entryPos == len(g.Binds[e.entryBind].Entries) {
		e.entryBind++
		e.entryPos, e.entryOff = 0, 0
	}
	if e.entryBind >= len(g.Binds) {
		return fmt.Errorf("%w: vertex declaration lists more elements than the layout", ogre.ErrFormat)
	}
	ve := g.Binds[e.entryBind].Entries[e.entryPos]
	if int(ve.Offset) != e.entryOff {
		return fmt.Errorf("%w: %s at offset %d, want %d", ogre.ErrFormat, ve.Semantic, ve.Offset, e.entryOff)
	}
	if int(ve.Source) != e.entryBind {
		return fmt.Errorf("%w: %s in source %d, want %d", ogre.ErrFormat, ve.Semantic, ve.Source, e.entryBind)
	}
	w.U16(ve.Source)
	w.U16(uint16(ve.Type))
	w.U16(uint16(ve.Semantic))
	w.U16(ve.Offset)
	w.U16(ve.Index)
	e.entryPos++
	e.entryOff += ve.Size()
	return nil
}

func (e *encoder) vertexBuffer(w *binio.Writer) error {
	g := e.geom
	if e.nextBind >= len(g.Binds) {
		return fmt.Errorf("%w: vertex buffer chunk without bind", ogre.ErrFormat)
	}
	e.bind = e.nextBind
	e.nextBind++
	w.U16(uint16(e.bind))
	w.U16(uint16(g.Binds[e.bind].Size))
	return nil
}

func (e *encoder) vertexData(w *binio.Writer) error {
	g := e.geom
	if e.bind < 0 {
		return fmt.Errorf("%w: vertex data outside a vertex buffer", ogre.ErrFormat)
	}
	stride := g.Binds[e.bind].Size
	for i := range g.Vertices {
		v := &g.Vertices[i]
		if e.bind >= len(v.SelfBufs) || len(v.SelfBufs[e.bind]) != stride {
			return fmt.Errorf("%w: vertex %d buffer %d does not match stride %d", ogre.ErrFormat, i, e.bind, stride)
		}
		w.Raw(v.SelfBufs[e.bind])
	}
	return nil
}
