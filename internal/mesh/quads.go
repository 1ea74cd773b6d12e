package mesh

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"go.uber.org/zap"

	"meshopt/internal/logger"
	"meshopt/internal/ogre"
	"meshopt/internal/quadgrid"
)

const (
	// planeTolerance groups triangle heights into one plane.
	planeTolerance = 0.001
	// planeMinWidth is the x extent a flat triangle needs to count as a quad half.
	planeMinWidth = 10.0
	// planeMinTriangles is the count a height needs to be reported.
	planeMinTriangles = 20
)

// PlaneHeights returns the heights shared by more than planeMinTriangles
// large flat triangles, in the order they were first seen.
func (m *Mesh) PlaneHeights() []float32 {
	type plane struct {
		h float32
		n int
	}
	var planes []plane
	for _, s := range m.Subs {
		g := m.GeometryOf(s)
		if g == nil {
			continue
		}
		for i := 0; i+2 < len(s.Indices); i += 3 {
			a := g.Vertices[s.Indices[i]].Pos
			b := g.Vertices[s.Indices[i+1]].Pos
			c := g.Vertices[s.Indices[i+2]].Pos
			if a.Y() != b.Y() || b.Y() != c.Y() || math.Abs(float64(a.X()-b.X())) <= planeMinWidth {
				continue
			}
			found := false
			for j := range planes {
				if math.Abs(float64(planes[j].h-a.Y())) < planeTolerance {
					planes[j].n++
					found = true
					break
				}
			}
			if !found {
				planes = append(planes, plane{h: a.Y(), n: 1})
			}
		}
	}
	var res []float32
	for _, p := range planes {
		if p.n > planeMinTriangles {
			res = append(res, p.h)
		}
	}
	return res
}

func nearHeight(a, b float32) bool {
	return math.Abs(float64(a-b)) < planeTolerance
}

// ExtractQuads finds the pairs of triangles at the given height that form
// an axis aligned quad. Quads are returned ordered by their diagonal.
func (m *Mesh) ExtractQuads(height float32) ([]quadgrid.Quad, error) {
	if len(m.Subs) != 1 {
		return nil, fmt.Errorf("%w: quad extraction needs exactly one submesh, have %d", ogre.ErrPrecondition, len(m.Subs))
	}
	s := m.Subs[0]
	g := m.GeometryOf(s)
	if g == nil {
		return nil, nil
	}
	type diag struct{ d1, d2 int }
	found := make(map[diag]*quadgrid.Quad)
	for i := 0; i+2 < len(s.Indices); i += 3 {
		ai, bi, ci := int(s.Indices[i]), int(s.Indices[i+1]), int(s.Indices[i+2])
		a, b, c := g.Vertices[ai].Pos, g.Vertices[bi].Pos, g.Vertices[ci].Pos
		if !nearHeight(a.Y(), height) || !nearHeight(b.Y(), height) || !nearHeight(c.Y(), height) {
			continue
		}
		var d1, d2, dex int
		switch {
		case a.X() != b.X() && a.Z() != b.Z():
			if !((a.X() == c.X() && b.Z() == c.Z()) || (a.Z() == c.Z() && b.X() == c.X())) {
				continue
			}
			d1, d2, dex = ai, bi, ci
		case b.X() != c.X() && b.Z() != c.Z():
			if !((b.X() == a.X() && c.Z() == a.Z()) || (b.Z() == a.Z() && c.X() == a.X())) {
				continue
			}
			d1, d2, dex = bi, ci, ai
		case c.X() != a.X() && c.Z() != a.Z():
			if !((c.X() == b.X() && a.Z() == b.Z()) || (c.Z() == b.Z() && a.X() == b.X())) {
				continue
			}
			d1, d2, dex = ci, ai, bi
		default:
			continue
		}
		if g.Vertices[d1].Pos.X() > g.Vertices[d2].Pos.X() {
			d1, d2 = d2, d1
		}
		k := diag{d1, d2}
		q, ok := found[k]
		if !ok {
			found[k] = &quadgrid.Quad{D1: d1, D2: d2, Dex1: dex, Dex2: -1, T1: i, T2: -1}
			continue
		}
		if q.Dex2 != -1 {
			return nil, fmt.Errorf("%w: three triangles share diagonal %d-%d", ogre.ErrFormat, d1, d2)
		}
		q.Dex2 = dex
		q.T2 = i
	}

	keys := make([]diag, 0, len(found))
	for k := range found {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b diag) int {
		if c := cmp.Compare(a.d1, b.d1); c != 0 {
			return c
		}
		return cmp.Compare(a.d2, b.d2)
	})
	var quads []quadgrid.Quad
	for _, k := range keys {
		q := found[k]
		if q.Dex2 == -1 {
			continue
		}
		p1, p2 := g.Vertices[q.D1].Pos, g.Vertices[q.D2].Pos
		q.X1, q.Z1, q.X2, q.Z2 = p1.X(), p1.Z(), p2.X(), p2.Z()
		quads = append(quads, *q)
	}
	logger.Log.Debug("quads", zap.Float32("height", height), zap.Int("found", len(quads)))
	return quads, nil
}

// ReplaceQuads removes the triangles of every quad on the grid and emits two
// triangles per packed square instead.
func (m *Mesh) ReplaceQuads(grid *quadgrid.Grid) error {
	if len(m.Subs) != 1 {
		return fmt.Errorf("%w: quad replacement needs exactly one submesh, have %d", ogre.ErrPrecondition, len(m.Subs))
	}
	s := m.Subs[0]
	const removed = math.MaxUint32
	marked := 0
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			c, err := grid.Cell(x, y)
			if err != nil {
				return err
			}
			if !c.Init {
				continue
			}
			if c.Quad.T1 < 0 || c.Quad.T2 < 0 || c.Quad.T1 >= len(s.Indices) || c.Quad.T2 >= len(s.Indices) {
				return fmt.Errorf("%w: quad cell (%d, %d) has invalid triangles", ogre.ErrFormat, x, y)
			}
			s.Indices[c.Quad.T1] = removed
			s.Indices[c.Quad.T2] = removed
			marked += 2
		}
	}
	kept := make([]uint32, 0, len(s.Indices))
	for i := 0; i+2 < len(s.Indices); i += 3 {
		if s.Indices[i] == removed {
			continue
		}
		kept = append(kept, s.Indices[i], s.Indices[i+1], s.Indices[i+2])
	}
	for _, sq := range grid.Squares {
		dex2, err := grid.Cell(sq.X, sq.Y)
		if err != nil {
			return err
		}
		dex1, err := grid.Cell(sq.X+sq.Width-1, sq.Y+sq.Height-1)
		if err != nil {
			return err
		}
		d1, err := grid.Cell(sq.X, sq.Y+sq.Height-1)
		if err != nil {
			return err
		}
		d2, err := grid.Cell(sq.X+sq.Width-1, sq.Y)
		if err != nil {
			return err
		}
		tri := []int{
			d1.Quad.D1, dex1.Quad.Dex1, d2.Quad.D2,
			d1.Quad.D1, d2.Quad.D2, dex2.Quad.Dex2,
		}
		for _, idx := range tri {
			if idx < 0 {
				return fmt.Errorf("%w: square %+v has a corner without vertex", ogre.ErrFormat, sq)
			}
			kept = append(kept, uint32(idx))
		}
	}
	logger.Log.Debug("quads replaced",
		zap.Int("marked", marked),
		zap.Int("squares", len(grid.Squares)),
		zap.Int("triangles", len(kept)/3))
	s.Indices = kept
	return nil
}
