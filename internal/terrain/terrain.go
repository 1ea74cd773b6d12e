// Package terrain runs the terrain tile pipeline: back face culling, quad
// merging on flat planes and stripping of attributes terrain does not need.
package terrain

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"meshopt/internal/logger"
	"meshopt/internal/mesh"
	"meshopt/internal/ogre"
	"meshopt/internal/quadgrid"
)

// Action selects pipeline steps.
type Action uint8

const (
	CullBack Action = 1 << iota
	UnifyQuads
	RemoveDiffuse
	RemoveTangent
	RemoveDupTriangles

	All Action = 0xFF
)

var actionNames = []struct {
	name string
	a    Action
}{
	{"cull", CullBack},
	{"quads", UnifyQuads},
	{"diffuse", RemoveDiffuse},
	{"tangent", RemoveTangent},
	{"duptri", RemoveDupTriangles},
}

func (a Action) String() string {
	if a == All {
		return "all"
	}
	var parts []string
	for _, n := range actionNames {
		if a&n.a != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ",")
}

// ParseActions reads a comma separated list of action names (cull, quads,
// diffuse, tangent, duptri) or the single word all.
func ParseActions(s string) (Action, error) {
	var a Action
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == "all" {
			return All, nil
		}
		found := false
		for _, n := range actionNames {
			if n.name == part {
				a |= n.a
				found = true
			}
		}
		if !found {
			return 0, fmt.Errorf("terrain: unknown action %q", part)
		}
	}
	return a, nil
}

// DefaultEyes are the camera directions terrain is seen from: most zoomed
// out, normal and most zoomed in.
var DefaultEyes = []mgl32.Vec3{
	{-0.122788, -0.984808, -0.122788},
	{-0.40558, -0.819152, -0.40558},
	{-0.612372, -0.5, -0.612372},
}

// Result counts what one Process call changed.
type Result struct {
	TrianglesBefore int `json:"triangles_before"`
	TrianglesAfter  int `json:"triangles_after"`
	VerticesBefore  int `json:"vertices_before"`
	VerticesAfter   int `json:"vertices_after"`
	Culled          int `json:"culled"`
	DupTriangles    int `json:"dup_triangles"`
	Squares         int `json:"squares"`
}

// Process runs the selected steps on m. With no eyes given DefaultEyes are
// used for culling.
func Process(m *mesh.Mesh, actions Action, eyes []mgl32.Vec3) (Result, error) {
	if len(eyes) == 0 {
		eyes = DefaultEyes
	}
	res := Result{
		TrianglesBefore: m.CountTriangles(),
		VerticesBefore:  m.CountVertices(),
	}

	if actions&CullBack != 0 {
		res.Culled = m.Cull(eyes)
	}

	if actions&UnifyQuads != 0 {
		n, err := mergeQuads(m)
		if err != nil {
			return res, err
		}
		res.Squares = n
	}

	if actions&RemoveDupTriangles != 0 {
		res.DupTriangles = m.RemoveDuplicateTriangles()
	}

	if actions&(CullBack|UnifyQuads|RemoveDupTriangles) != 0 {
		m.ClearUsed()
		m.MarkUsedVertices()
		if err := m.Dedup(); err != nil {
			return res, fmt.Errorf("terrain: remove unused vertices: %w", err)
		}
	}

	stripped := false
	for _, f := range []struct {
		a    Action
		flag ogre.VtxFlag
	}{
		{RemoveDiffuse, ogre.VFDiffuse},
		{RemoveTangent, ogre.VFTangent},
	} {
		if actions&f.a == 0 || !m.GatheredEntries().Has(f.flag) {
			continue
		}
		if err := m.RemoveField(f.flag); err != nil {
			return res, err
		}
		stripped = true
	}
	if stripped {
		m.ClearDupOf()
		m.MarkDuplicates(0)
		if err := m.Dedup(); err != nil {
			return res, fmt.Errorf("terrain: unify vertices: %w", err)
		}
	}

	res.TrianglesAfter = m.CountTriangles()
	res.VerticesAfter = m.CountVertices()
	return res, nil
}

// mergeQuads packs the quads of every plane height and returns the number
// of squares emitted.
func mergeQuads(m *mesh.Mesh) (int, error) {
	if len(m.Subs) != 1 {
		logger.Log.Info("skipping quad merge", zap.Int("submeshes", len(m.Subs)))
		return 0, nil
	}
	squares := 0
	for _, h := range m.PlaneHeights() {
		quads, err := m.ExtractQuads(h)
		if err != nil {
			return squares, err
		}
		grid, ok := quadgrid.Build(quads, h)
		if !ok {
			continue
		}
		if err := grid.Solve(); err != nil {
			return squares, err
		}
		if err := m.ReplaceQuads(grid); err != nil {
			return squares, err
		}
		logger.Log.Info("quads merged",
			zap.Float32("height", h),
			zap.Int("quads", len(quads)),
			zap.Int("squares", len(grid.Squares)))
		squares += len(grid.Squares)
	}
	return squares, nil
}
