// Package mesh decodes chunked mesh files into an editable geometry model,
// applies size reducing passes to it and encodes it back.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"meshopt/internal/chunk"
	"meshopt/internal/ogre"
)

// DefaultEpsilon is the distance under which two tangents are merged.
const DefaultEpsilon = 0.2

// VtxEntry is one attribute declaration of a vertex buffer.
type VtxEntry struct {
	Source   uint16
	Offset   uint16
	Type     ogre.ElementType
	Semantic ogre.Semantic
	Index    uint16
	// Chunk is the declaration chunk, detached when the entry is removed.
	Chunk *chunk.Chunk
}

// Size is the byte size of the attribute.
func (e *VtxEntry) Size() int {
	n, _ := e.Type.Size()
	return n
}

// Flag is the mask bit of the attribute.
func (e *VtxEntry) Flag() ogre.VtxFlag {
	f, _ := ogre.FlagFromSemantic(e.Semantic, int(e.Index))
	return f
}

// VtxBind is one bound vertex buffer.
type VtxBind struct {
	Entries []*VtxEntry
	// Size is the per-vertex stride, the sum of the entry sizes.
	Size int
	// Chunk is the buffer chunk holding the data, nil until it is read.
	Chunk *chunk.Chunk
}

// Vertex is one decoded vertex. SelfBufs holds its raw bytes, one slice
// per bind, so attributes that are not touched are written back as read.
type Vertex struct {
	Pos      mgl32.Vec3
	Normal   mgl32.Vec3
	Tangent  mgl32.Vec3
	Binormal mgl32.Vec3
	Tex      [ogre.MaxTexCoords]mgl32.Vec2
	Diffuse  uint32

	// Orig is the index the vertex had in the file.
	Orig int
	// DupOf is the index of the canonical vertex this one duplicates, -1 if none.
	DupOf int
	Used  bool

	SelfBufs [][]byte
}

// BoneAssignment binds a vertex to a skeleton bone.
type BoneAssignment struct {
	Vertex uint32
	Bone   uint16
	Weight float32
	Chunk  *chunk.Chunk
}

// Geometry is a vertex set with its buffer layout. It is owned either by a
// submesh or by the mesh as shared geometry.
type Geometry struct {
	Shared   bool
	Binds    []*VtxBind
	Flags    ogre.VtxFlag
	Vertices []Vertex
	Chunk    *chunk.Chunk

	texCoords int
	lastBind  int
}

func newGeometry(c *chunk.Chunk, shared bool, count int) *Geometry {
	g := &Geometry{Shared: shared, Chunk: c, lastBind: -1}
	g.Vertices = make([]Vertex, count)
	for i := range g.Vertices {
		g.Vertices[i] = Vertex{Orig: i, DupOf: -1, Used: true}
	}
	return g
}

// Stride is the size of one vertex over all binds.
func (g *Geometry) Stride() int {
	n := 0
	for _, b := range g.Binds {
		n += b.Size
	}
	return n
}

// TexCoordCount is the number of texture coordinate channels.
func (g *Geometry) TexCoordCount() int {
	return g.texCoords
}

// find returns the bind and entry position of an attribute, or -1, -1.
func (g *Geometry) find(sem ogre.Semantic, index int) (int, int) {
	for bi, b := range g.Binds {
		for ei, e := range b.Entries {
			if e.Semantic == sem && int(e.Index) == index {
				return bi, ei
			}
		}
	}
	return -1, -1
}

// SubMesh is one independently indexed part of the mesh.
type SubMesh struct {
	Material       string
	SharedVertices bool
	Use32          bool
	Operation      uint16
	Indices        []uint32
	// Geometry is nil when the submesh uses the shared geometry.
	Geometry        *Geometry
	BoneAssignments []*BoneAssignment
	TextureAliases  map[string]string
	Chunk           *chunk.Chunk
}

// Bone is a skeleton bone.
type Bone struct {
	Name        string
	Handle      uint16
	Position    mgl32.Vec3
	Orientation mgl32.Quat
	Scale       mgl32.Vec3
	Parent      int
}

// Animation is a named animation of a mesh or skeleton.
type Animation struct {
	Name   string
	Length float32
}

// Mesh is the decoded file. It owns the chunk tree and the geometry model
// that regenerated chunks are written from.
type Mesh struct {
	Dialect ogre.Dialect
	Version int
	Header  []byte
	Root    *chunk.Chunk

	Subs   []*SubMesh
	Shared *Geometry
	// BoneAssignments are the mesh level assignments into the shared geometry.
	BoneAssignments []*BoneAssignment

	Materials    map[string]bool
	SkeletonLink string
	Bounds       [2]mgl32.Vec3
	Radius       float32
	SubmeshNames map[int]string
	Animations   []Animation
	Bones        []Bone

	HasEdges           bool
	HasVertexAnimation bool

	// Epsilon is used by MarkNearDuplicates when no distance is given.
	Epsilon float32
}

// GeometryOf returns the vertices indexed by s.
func (m *Mesh) GeometryOf(s *SubMesh) *Geometry {
	if s.SharedVertices {
		return m.Shared
	}
	return s.Geometry
}

// Geometries lists the shared geometry first, then every owned geometry.
func (m *Mesh) Geometries() []*Geometry {
	var gs []*Geometry
	if m.Shared != nil {
		gs = append(gs, m.Shared)
	}
	for _, s := range m.Subs {
		if s.Geometry != nil {
			gs = append(gs, s.Geometry)
		}
	}
	return gs
}

// CountVertices sums the vertices of every geometry.
func (m *Mesh) CountVertices() int {
	n := 0
	for _, g := range m.Geometries() {
		n += len(g.Vertices)
	}
	return n
}

// CountTriangles sums the triangles of every submesh.
func (m *Mesh) CountTriangles() int {
	n := 0
	for _, s := range m.Subs {
		n += len(s.Indices) / 3
	}
	return n
}

// GatheredEntries is the union of the attribute masks of every geometry.
func (m *Mesh) GatheredEntries() ogre.VtxFlag {
	var f ogre.VtxFlag
	for _, g := range m.Geometries() {
		f |= g.Flags
	}
	return f
}

// MaxTexCoords is the largest texture channel count of any geometry.
func (m *Mesh) MaxTexCoords() int {
	n := 0
	for _, g := range m.Geometries() {
		n = max(n, g.texCoords)
	}
	return n
}

// MaxBinds is the largest bind count of any geometry.
func (m *Mesh) MaxBinds() int {
	n := 0
	for _, g := range m.Geometries() {
		n = max(n, len(g.Binds))
	}
	return n
}

// BuffersNeedUnify reports whether any geometry spreads its vertices over
// more than one buffer.
func (m *Mesh) BuffersNeedUnify() bool {
	return m.MaxBinds() > 1
}

// ClearUsed marks every vertex as unused.
func (m *Mesh) ClearUsed() {
	for _, g := range m.Geometries() {
		for i := range g.Vertices {
			g.Vertices[i].Used = false
		}
	}
}

// MarkUsedVertices marks every vertex referenced by an index as used.
func (m *Mesh) MarkUsedVertices() {
	for _, s := range m.Subs {
		g := m.GeometryOf(s)
		if g == nil {
			continue
		}
		for _, idx := range s.Indices {
			if int(idx) < len(g.Vertices) {
				g.Vertices[idx].Used = true
			}
		}
	}
}

// ClearDupOf forgets every duplicate relation.
func (m *Mesh) ClearDupOf() {
	for _, g := range m.Geometries() {
		for i := range g.Vertices {
			g.Vertices[i].DupOf = -1
		}
	}
}
