package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"meshopt/internal/logger"
)

// CullThreshold is the dot product above which a face looks away from an eye.
const CullThreshold = 0.1

// FaceNormal returns the unit normal of the triangle a, b, c.
func FaceNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	l := float32(math.Sqrt(float64(n.Dot(n))))
	return n.Mul(1 / l)
}

// Cull drops every triangle that faces away from all the given eye
// directions and marks the vertices of the kept triangles as used. It
// returns the number of triangles dropped.
func (m *Mesh) Cull(eyes []mgl32.Vec3) int {
	dirs := make([]mgl32.Vec3, len(eyes))
	for i, e := range eyes {
		dirs[i] = e.Normalize()
	}
	m.ClearUsed()
	culled, total := 0, 0
	for _, s := range m.Subs {
		g := m.GeometryOf(s)
		if g == nil {
			continue
		}
		kept := make([]uint32, 0, len(s.Indices))
		for i := 0; i+2 < len(s.Indices); i += 3 {
			ai, bi, ci := s.Indices[i], s.Indices[i+1], s.Indices[i+2]
			total++
			n := FaceNormal(g.Vertices[ai].Pos, g.Vertices[bi].Pos, g.Vertices[ci].Pos)
			if backFacing(n, dirs) {
				culled++
				continue
			}
			g.Vertices[ai].Used = true
			g.Vertices[bi].Used = true
			g.Vertices[ci].Used = true
			kept = append(kept, ai, bi, ci)
		}
		s.Indices = kept
	}
	logger.Log.Info("cull", zap.Int("culled", culled), zap.Int("triangles", total))
	return culled
}

func backFacing(n mgl32.Vec3, eyes []mgl32.Vec3) bool {
	if len(eyes) == 0 {
		return false
	}
	for _, e := range eyes {
		if !(n.Dot(e) > CullThreshold) {
			return false
		}
	}
	return true
}

// RemoveDuplicateTriangles drops triangles that repeat an earlier one over
// the same three vertices and returns how many were dropped.
func (m *Mesh) RemoveDuplicateTriangles() int {
	removed, total := 0, 0
	for _, s := range m.Subs {
		seen := make(map[[3]uint32]bool, len(s.Indices)/3)
		kept := make([]uint32, 0, len(s.Indices))
		for i := 0; i+2 < len(s.Indices); i += 3 {
			a, b, c := s.Indices[i], s.Indices[i+1], s.Indices[i+2]
			total++
			k := triangleKey(a, b, c)
			if seen[k] {
				removed++
				continue
			}
			seen[k] = true
			kept = append(kept, a, b, c)
		}
		s.Indices = kept
	}
	logger.Log.Info("duplicate triangles", zap.Int("removed", removed), zap.Int("triangles", total))
	return removed
}

func triangleKey(a, b, c uint32) [3]uint32 {
	lo := min(a, b, c)
	hi := max(a, b, c)
	var mid uint32
	switch {
	case a == lo && b == hi:
		mid = c
	case a == lo && c == hi:
		mid = b
	default:
		mid = a
	}
	return [3]uint32{lo, mid, hi}
}
