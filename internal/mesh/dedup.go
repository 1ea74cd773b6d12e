package mesh

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"meshopt/internal/logger"
	"meshopt/internal/ogre"
)

// vertexKey concatenates the raw bits of every attribute selected by mask.
func vertexKey(v *Vertex, mask ogre.VtxFlag) string {
	buf := make([]byte, 0, 96)
	vec := func(f ogre.VtxFlag, vals ...float32) {
		if mask&f == 0 {
			return
		}
		for _, x := range vals {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(x))
		}
	}
	vec(ogre.VFPosition, v.Pos[:]...)
	vec(ogre.VFNormal, v.Normal[:]...)
	if mask&ogre.VFDiffuse != 0 {
		buf = binary.LittleEndian.AppendUint32(buf, v.Diffuse)
	}
	for i := 0; i < ogre.MaxTexCoords; i++ {
		vec(ogre.VFTexCoord0<<uint(i), v.Tex[i][:]...)
	}
	vec(ogre.VFTangent, v.Tangent[:]...)
	vec(ogre.VFBinormal, v.Binormal[:]...)
	return string(buf)
}

// MarkDuplicates marks every vertex whose attributes, except those in
// ignore, equal those of an earlier vertex of the same geometry. It returns
// the number of vertices marked.
func (m *Mesh) MarkDuplicates(ignore ogre.VtxFlag) int {
	total := 0
	for _, g := range m.Geometries() {
		mask := g.Flags &^ ignore
		first := make(map[string]int, len(g.Vertices))
		for i := range g.Vertices {
			v := &g.Vertices[i]
			if v.DupOf >= 0 {
				continue
			}
			k := vertexKey(v, mask)
			if c, ok := first[k]; ok {
				v.DupOf = c
				total++
				continue
			}
			first[k] = i
		}
	}
	return total
}

// MarkNearDuplicates marks vertices whose attributes in fields lie closer
// than eps to those of an earlier vertex, every other attribute being equal.
// Tangent is clustered before binormal. An eps of 0 selects m.Epsilon.
func (m *Mesh) MarkNearDuplicates(fields ogre.VtxFlag, eps float32) int {
	if eps <= 0 {
		eps = m.Epsilon
	}
	total := 0
	for _, g := range m.Geometries() {
		if g.Flags&fields == 0 {
			continue
		}
		mask := g.Flags &^ fields
		var order []string
		buckets := make(map[string][]int)
		for i := range g.Vertices {
			k := vertexKey(&g.Vertices[i], mask)
			if _, ok := buckets[k]; !ok {
				order = append(order, k)
			}
			buckets[k] = append(buckets[k], i)
		}
		for _, f := range []ogre.VtxFlag{ogre.VFTangent, ogre.VFBinormal} {
			if fields&f == 0 || !g.Flags.Has(f) {
				continue
			}
			for _, k := range order {
				total += clusterNear(g.Vertices, buckets[k], f, eps)
			}
		}
	}
	return total
}

func nearValue(v *Vertex, f ogre.VtxFlag) mgl32.Vec3 {
	if f == ogre.VFBinormal {
		return v.Binormal
	}
	return v.Tangent
}

// clusterNear groups the non-duplicate vertices of one bucket greedily. The
// first vertex of a cluster is its canonical vertex.
func clusterNear(vs []Vertex, bucket []int, f ogre.VtxFlag, eps float32) int {
	var clusters []int
	n := 0
	for _, i := range bucket {
		v := &vs[i]
		if v.DupOf >= 0 {
			continue
		}
		val := nearValue(v, f)
		found := false
		for _, c := range clusters {
			if distance(val, nearValue(&vs[c], f)) < float64(eps) {
				v.DupOf = c
				n++
				found = true
				break
			}
		}
		if !found {
			clusters = append(clusters, i)
		}
	}
	return n
}

func distance(a, b mgl32.Vec3) float64 {
	dx := float64(a[0]) - float64(b[0])
	dy := float64(a[1]) - float64(b[1])
	dz := float64(a[2]) - float64(b[2])
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Dedup compacts every geometry: duplicates are folded into their
// canonical vertex, unused vertices are dropped, and indices and bone
// assignments are remapped. Shared geometry is compacted once for all the
// submeshes that use it.
func (m *Mesh) Dedup() error {
	if m.HasEdges || m.HasVertexAnimation {
		return fmt.Errorf("%w: cannot remove vertices of a mesh with edge lists or vertex animation", ogre.ErrPrecondition)
	}
	before := m.CountVertices()
	if m.Shared != nil {
		remap := compact(m.Shared)
		for _, s := range m.Subs {
			if !s.SharedVertices {
				continue
			}
			if err := fixIndices(s.Indices, remap); err != nil {
				return err
			}
			s.BoneAssignments = fixBones(s.BoneAssignments, remap)
		}
		m.BoneAssignments = fixBones(m.BoneAssignments, remap)
	}
	for _, s := range m.Subs {
		if s.Geometry == nil {
			continue
		}
		remap := compact(s.Geometry)
		if err := fixIndices(s.Indices, remap); err != nil {
			return err
		}
		s.BoneAssignments = fixBones(s.BoneAssignments, remap)
	}
	logger.Log.Info("dedup", zap.Int("before", before), zap.Int("after", m.CountVertices()))
	return nil
}

// compact rebuilds the vertex list of g and returns the old to new index
// table. Removed vertices map to -1.
func compact(g *Geometry) []int {
	remap := make([]int, len(g.Vertices))
	for i := range remap {
		remap[i] = -1
	}
	kept := make([]Vertex, 0, len(g.Vertices))
	add := func(v Vertex) int {
		v.DupOf = -1
		v.Used = true
		kept = append(kept, v)
		return len(kept) - 1
	}
	for i := range g.Vertices {
		v := g.Vertices[i]
		if c := v.DupOf; c >= 0 {
			if remap[c] >= 0 {
				remap[i] = remap[c]
			} else if v.Used {
				// the canonical vertex is unused, this one takes its slot
				remap[c] = add(g.Vertices[c])
				remap[i] = remap[c]
			}
			continue
		}
		if v.Used {
			remap[i] = add(v)
		}
	}
	g.Vertices = kept
	return remap
}

func fixIndices(indices []uint32, remap []int) error {
	for i, idx := range indices {
		if int(idx) >= len(remap) || remap[idx] < 0 {
			return fmt.Errorf("%w: index %d references a removed vertex", ogre.ErrFormat, idx)
		}
		indices[i] = uint32(remap[idx])
	}
	return nil
}

// fixBones remaps assignments, dropping those of removed vertices and
// repeats of a (vertex, bone) pair. Dropped assignments lose their chunk.
func fixBones(bas []*BoneAssignment, remap []int) []*BoneAssignment {
	type pair struct {
		v uint32
		b uint16
	}
	seen := make(map[pair]bool, len(bas))
	kept := bas[:0]
	for _, ba := range bas {
		nv := -1
		if int(ba.Vertex) < len(remap) {
			nv = remap[ba.Vertex]
		}
		k := pair{uint32(nv), ba.Bone}
		if nv < 0 || seen[k] {
			if ba.Chunk != nil {
				ba.Chunk.Detach()
			}
			continue
		}
		seen[k] = true
		ba.Vertex = uint32(nv)
		kept = append(kept, ba)
	}
	return kept
}
