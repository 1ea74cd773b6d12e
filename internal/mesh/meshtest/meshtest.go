// Package meshtest builds small mesh files in memory for tests of the
// packages layered on top of internal/mesh.
package meshtest

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"meshopt/internal/ogre"
)

// Node is one chunk of a file under construction.
type Node struct {
	ID   uint16
	Body []byte
	Kids []Node
}

// Bytes encodes the chunk with a size covering its body and children.
func (n Node) Bytes() []byte {
	var kids []byte
	for _, k := range n.Kids {
		kids = append(kids, k.Bytes()...)
	}
	out := make([]byte, 6, 6+len(n.Body)+len(kids))
	binary.LittleEndian.PutUint16(out, n.ID)
	binary.LittleEndian.PutUint32(out[2:], uint32(6+len(n.Body)+len(kids)))
	out = append(out, n.Body...)
	return append(out, kids...)
}

// Fields appends little-endian values to a chunk body.
type Fields struct{ buf bytes.Buffer }

func Body() *Fields { return &Fields{} }

func (f *Fields) U8(v uint8) *Fields { f.buf.WriteByte(v); return f }

func (f *Fields) Bool(v bool) *Fields {
	if v {
		return f.U8(1)
	}
	return f.U8(0)
}

func (f *Fields) U16(v uint16) *Fields {
	f.buf.Write(binary.LittleEndian.AppendUint16(nil, v))
	return f
}

func (f *Fields) U32(v uint32) *Fields {
	f.buf.Write(binary.LittleEndian.AppendUint32(nil, v))
	return f
}

func (f *Fields) F32(vs ...float32) *Fields {
	for _, v := range vs {
		f.U32(math.Float32bits(v))
	}
	return f
}

func (f *Fields) Str(s string) *Fields {
	f.buf.WriteString(s)
	return f.U8('\n')
}

func (f *Fields) Done() []byte { return f.buf.Bytes() }

// File returns a mesh file holding kids under the mesh chunk.
func File(kids ...Node) []byte {
	out := Body().U16(ogre.MHeader).Str("[MeshSerializer_v1.41]").Done()
	m := Node{ID: ogre.MMesh, Body: Body().Bool(false).Done(), Kids: kids}
	return append(out, m.Bytes()...)
}

// Elem declares one vertex attribute.
type Elem struct {
	Type     ogre.ElementType
	Semantic ogre.Semantic
	Index    uint16
}

var (
	Pos     = Elem{ogre.Float3, ogre.SemPosition, 0}
	Normal  = Elem{ogre.Float3, ogre.SemNormal, 0}
	Tangent = Elem{ogre.Float3, ogre.SemTangent, 0}
	Diffuse = Elem{ogre.ColourARGB, ogre.SemDiffuse, 0}
	Tex0    = Elem{ogre.Float2, ogre.SemTexCoord, 0}
	Tex1    = Elem{ogre.Float2, ogre.SemTexCoord, 1}
)

// Vertex holds the attribute values written for each Elem.
type Vertex struct {
	Pos, Normal, Tangent mgl32.Vec3
	Tex                  [2]mgl32.Vec2
	Diffuse              uint32
}

func (v Vertex) write(f *Fields, e Elem) {
	switch e.Semantic {
	case ogre.SemPosition:
		f.F32(v.Pos[:]...)
	case ogre.SemNormal:
		f.F32(v.Normal[:]...)
	case ogre.SemTangent:
		f.F32(v.Tangent[:]...)
	case ogre.SemTexCoord:
		f.F32(v.Tex[e.Index][:]...)
	case ogre.SemDiffuse:
		f.U32(v.Diffuse)
	}
}

// Geometry encodes verts with one vertex buffer per layout.
func Geometry(verts []Vertex, layouts ...[]Elem) Node {
	decl := Node{ID: ogre.MGeometryVertexDeclaration}
	var bufs []Node
	for src, layout := range layouts {
		off := 0
		for _, e := range layout {
			decl.Kids = append(decl.Kids, Node{
				ID:   ogre.MGeometryVertexElement,
				Body: Body().U16(uint16(src)).U16(uint16(e.Type)).U16(uint16(e.Semantic)).U16(uint16(off)).U16(e.Index).Done(),
			})
			n, _ := e.Type.Size()
			off += n
		}
		data := Body()
		for _, v := range verts {
			for _, e := range layout {
				v.write(data, e)
			}
		}
		bufs = append(bufs, Node{
			ID:   ogre.MGeometryVertexBuffer,
			Body: Body().U16(uint16(src)).U16(uint16(off)).Done(),
			Kids: []Node{{ID: ogre.MGeometryVertexBufferData, Body: data.Done()}},
		})
	}
	return Node{
		ID:   ogre.MGeometry,
		Body: Body().U32(uint32(len(verts))).Done(),
		Kids: append([]Node{decl}, bufs...),
	}
}

// Submesh encodes a submesh with 16-bit indices.
func Submesh(material string, shared bool, indices []uint32, kids ...Node) Node {
	f := Body().Str(material).Bool(shared).U32(uint32(len(indices))).Bool(false)
	for _, i := range indices {
		f.U16(uint16(i))
	}
	return Node{ID: ogre.MSubmesh, Body: f.Done(), Kids: kids}
}

// PlaneGrid returns an n by n grid of upward facing quads of the given size
// at height 0 in one submesh. Each quad is split along the diagonal from
// (x, z+1) to (x+1, z).
func PlaneGrid(n int, size float32, layout ...Elem) []byte {
	if len(layout) == 0 {
		layout = []Elem{Pos}
	}
	var verts []Vertex
	for z := 0; z <= n; z++ {
		for x := 0; x <= n; x++ {
			verts = append(verts, Vertex{
				Pos:     mgl32.Vec3{float32(x) * size, 0, float32(z) * size},
				Normal:  mgl32.Vec3{0, 1, 0},
				Tangent: mgl32.Vec3{1, 0, 0},
				Diffuse: 0xff808080,
			})
		}
	}
	at := func(x, z int) uint32 { return uint32(x + z*(n+1)) }
	var idx []uint32
	for z := 0; z < n; z++ {
		for x := 0; x < n; x++ {
			idx = append(idx, at(x, z+1), at(x+1, z+1), at(x+1, z))
			idx = append(idx, at(x, z+1), at(x+1, z), at(x, z))
		}
	}
	return File(Submesh("ground", false, idx, Geometry(verts, layout)))
}

// Fan returns triangles (0, i, i+1) over n vertices.
func Fan(n int) []uint32 {
	var idx []uint32
	for i := 1; i+1 < n; i++ {
		idx = append(idx, 0, uint32(i), uint32(i+1))
	}
	return idx
}
