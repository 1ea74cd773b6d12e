package mesh

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"meshopt/internal/ogre"
)

// node is a chunk to encode in a test file.
type node struct {
	id   uint16
	body []byte
	kids []node
}

func (n node) bytes() []byte {
	var kids []byte
	for _, k := range n.kids {
		kids = append(kids, k.bytes()...)
	}
	out := make([]byte, 6, 6+len(n.body)+len(kids))
	binary.LittleEndian.PutUint16(out, n.id)
	binary.LittleEndian.PutUint32(out[2:], uint32(6+len(n.body)+len(kids)))
	out = append(out, n.body...)
	return append(out, kids...)
}

// fields builds a chunk body.
type fields struct{ bytes.Buffer }

func body() *fields { return &fields{} }

func (f *fields) u8(v uint8) *fields { f.WriteByte(v); return f }

func (f *fields) boolean(v bool) *fields {
	if v {
		return f.u8(1)
	}
	return f.u8(0)
}

func (f *fields) u16(v uint16) *fields {
	f.Write(binary.LittleEndian.AppendUint16(nil, v))
	return f
}

func (f *fields) u32(v uint32) *fields {
	f.Write(binary.LittleEndian.AppendUint32(nil, v))
	return f
}

func (f *fields) f32(vs ...float32) *fields {
	for _, v := range vs {
		f.u32(math.Float32bits(v))
	}
	return f
}

func (f *fields) str(s string) *fields {
	f.WriteString(s)
	return f.u8('\n')
}

func (f *fields) done() []byte { return f.Bytes() }

func header(version string) []byte {
	return body().u16(ogre.MHeader).str(version).done()
}

func meshFile(kids ...node) []byte {
	out := header("[MeshSerializer_v1.41]")
	m := node{id: ogre.MMesh, body: body().boolean(false).done(), kids: kids}
	return append(out, m.bytes()...)
}

type elem struct {
	typ ogre.ElementType
	sem ogre.Semantic
	idx uint16
}

var (
	elemPos  = elem{ogre.Float3, ogre.SemPosition, 0}
	elemNor  = elem{ogre.Float3, ogre.SemNormal, 0}
	elemTan  = elem{ogre.Float3, ogre.SemTangent, 0}
	elemDif  = elem{ogre.ColourARGB, ogre.SemDiffuse, 0}
	elemTex0 = elem{ogre.Float2, ogre.SemTexCoord, 0}
	elemTex1 = elem{ogre.Float2, ogre.SemTexCoord, 1}
)

type vtx struct {
	pos, nor, tan mgl32.Vec3
	tex           [2]mgl32.Vec2
	dif           uint32
}

func (v vtx) write(f *fields, e elem) {
	switch e.sem {
	case ogre.SemPosition:
		f.f32(v.pos[:]...)
	case ogre.SemNormal:
		f.f32(v.nor[:]...)
	case ogre.SemTangent:
		f.f32(v.tan[:]...)
	case ogre.SemTexCoord:
		f.f32(v.tex[e.idx][:]...)
	case ogre.SemDiffuse:
		f.u32(v.dif)
	}
}

// geometry encodes verts with one vertex buffer per layout.
func geometry(verts []vtx, layouts ...[]elem) node {
	decl := node{id: ogre.MGeometryVertexDeclaration}
	var bufs []node
	for src, layout := range layouts {
		off := 0
		for _, e := range layout {
			decl.kids = append(decl.kids, node{
				id:   ogre.MGeometryVertexElement,
				body: body().u16(uint16(src)).u16(uint16(e.typ)).u16(uint16(e.sem)).u16(uint16(off)).u16(e.idx).done(),
			})
			n, _ := e.typ.Size()
			off += n
		}
		data := body()
		for _, v := range verts {
			for _, e := range layout {
				v.write(data, e)
			}
		}
		bufs = append(bufs, node{
			id:   ogre.MGeometryVertexBuffer,
			body: body().u16(uint16(src)).u16(uint16(off)).done(),
			kids: []node{{id: ogre.MGeometryVertexBufferData, body: data.done()}},
		})
	}
	return node{
		id:   ogre.MGeometry,
		body: body().u32(uint32(len(verts))).done(),
		kids: append([]node{decl}, bufs...),
	}
}

func submesh(material string, shared bool, indices []uint32, kids ...node) node {
	f := body().str(material).boolean(shared).u32(uint32(len(indices))).boolean(false)
	for _, i := range indices {
		f.u16(uint16(i))
	}
	return node{id: ogre.MSubmesh, body: f.done(), kids: kids}
}

func boneAssignment(id uint16, v uint32, bone uint16, w float32) node {
	return node{id: id, body: body().u32(v).u16(bone).f32(w).done()}
}

// gridVerts returns n vertices with distinct positions.
func gridVerts(n int) []vtx {
	vs := make([]vtx, n)
	for i := range vs {
		vs[i] = vtx{
			pos: mgl32.Vec3{float32(i), float32(i % 7), float32(i / 7)},
			nor: mgl32.Vec3{0, 1, 0},
			tex: [2]mgl32.Vec2{{float32(i) / 100, 0.5}},
		}
	}
	return vs
}

// fan returns triangles (0, i, i+1) over n vertices.
func fan(n int) []uint32 {
	var idx []uint32
	for i := 1; i+1 < n; i++ {
		idx = append(idx, 0, uint32(i), uint32(i+1))
	}
	return idx
}
