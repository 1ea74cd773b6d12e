package terrain

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"meshopt/internal/mesh"
	"meshopt/internal/mesh/meshtest"
	"meshopt/internal/ogre"
)

func TestProcessPlane(t *testing.T) {
	data := meshtest.PlaneGrid(4, 16, meshtest.Pos, meshtest.Normal, meshtest.Tangent, meshtest.Diffuse)
	m, err := mesh.ParseBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	res, err := Process(m, All, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := Result{
		TrianglesBefore: 32,
		TrianglesAfter:  2,
		VerticesBefore:  25,
		VerticesAfter:   4,
		Culled:          0,
		Squares:         1,
	}
	if res != want {
		t.Errorf("got %+v, want %+v", res, want)
	}
	f := m.GatheredEntries()
	if f.Has(ogre.VFDiffuse) || f.Has(ogre.VFTangent) {
		t.Errorf("fields left after stripping: %#x", uint32(f))
	}

	out, err := m.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	back, err := mesh.ParseBytes(out)
	if err != nil {
		t.Fatal(err)
	}
	if back.CountTriangles() != 2 || back.CountVertices() != 4 {
		t.Errorf("reparsed %d triangles %d vertices", back.CountTriangles(), back.CountVertices())
	}
}

func TestProcessCull(t *testing.T) {
	verts := []meshtest.Vertex{
		{Pos: mgl32.Vec3{0, 0, 1}}, {Pos: mgl32.Vec3{1, 0, 1}}, {Pos: mgl32.Vec3{1, 0, 0}},
		{Pos: mgl32.Vec3{0, 1, 1}}, {Pos: mgl32.Vec3{1, 1, 0}}, {Pos: mgl32.Vec3{1, 1, 1}},
	}
	data := meshtest.File(meshtest.Submesh("rock", false, []uint32{0, 1, 2, 3, 4, 5},
		meshtest.Geometry(verts, []meshtest.Elem{meshtest.Pos})))
	m, err := mesh.ParseBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	res, err := Process(m, CullBack|RemoveDiffuse, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Culled != 1 || res.TrianglesAfter != 1 || res.VerticesAfter != 3 {
		t.Errorf("got %+v", res)
	}
}

func TestProcessDuplicateTriangles(t *testing.T) {
	verts := make([]meshtest.Vertex, 7)
	for i := range verts {
		verts[i].Pos = mgl32.Vec3{float32(i), 0, float32(i * i)}
	}
	// the second triangle repeats the first, vertex 6 is never referenced
	idx := []uint32{0, 1, 2, 1, 2, 0, 3, 4, 5}
	data := meshtest.File(meshtest.Submesh("rock", false, idx,
		meshtest.Geometry(verts, []meshtest.Elem{meshtest.Pos})))
	m, err := mesh.ParseBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	res, err := Process(m, RemoveDupTriangles, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := Result{
		TrianglesBefore: 3,
		TrianglesAfter:  2,
		VerticesBefore:  7,
		VerticesAfter:   6,
		DupTriangles:    1,
	}
	if res != want {
		t.Errorf("got %+v, want %+v", res, want)
	}
}

func TestParseActions(t *testing.T) {
	tests := []struct {
		in   string
		want Action
		err  bool
	}{
		{"all", All, false},
		{"cull", CullBack, false},
		{"cull, quads", CullBack | UnifyQuads, false},
		{"diffuse,tangent", RemoveDiffuse | RemoveTangent, false},
		{"duptri,cull", RemoveDupTriangles | CullBack, false},
		{"", 0, false},
		{"cull,paint", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseActions(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("%q: err %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: got %v, want %v", tt.in, got, tt.want)
		}
	}
	if s := (CullBack | RemoveTangent).String(); s != "cull,tangent" {
		t.Errorf("String got %q", s)
	}
}
