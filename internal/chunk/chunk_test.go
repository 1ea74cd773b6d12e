package chunk

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"meshopt/internal/ogre"
)

func TestStackNesting(t *testing.T) {
	s := NewStack(ogre.DialectMesh, 40)

	mesh, err := s.Push(ogre.MMesh, 40)
	if err != nil {
		t.Fatal(err)
	}
	s.Consume(mesh, make([]byte, 7))

	geom, err := s.Push(ogre.MGeometry, 33)
	if err != nil {
		t.Fatal(err)
	}
	s.Consume(geom, make([]byte, 10))

	decl, err := s.Push(ogre.MGeometryVertexDeclaration, 6)
	if err != nil {
		t.Fatal(err)
	}
	s.Consume(decl, make([]byte, 6))

	// A vertex buffer closes the declaration and nests under the geometry.
	buf, err := s.Push(ogre.MGeometryVertexBuffer, 17)
	if err != nil {
		t.Fatal(err)
	}
	s.Consume(buf, make([]byte, 10))
	if buf.Parent != geom {
		t.Errorf("vertex buffer parent %#x, want geometry", buf.Parent.ID)
	}

	root := s.Finish()
	if len(root.Sub) != 1 || root.Sub[0] != mesh {
		t.Fatalf("root children %d, want the mesh only", len(root.Sub))
	}
	tests := []struct {
		name string
		c    *Chunk
		want uint32
	}{
		{"root", root, 33},
		{"mesh", mesh, 33},
		{"geometry", geom, 26},
		{"declaration", decl, 6},
		{"buffer", buf, 10},
	}
	for _, tt := range tests {
		if tt.c.Size != tt.want {
			t.Errorf("%s size got %d, want %d", tt.name, tt.c.Size, tt.want)
		}
	}
}

func TestStackRejectsOrphan(t *testing.T) {
	s := NewStack(ogre.DialectMesh, 10)
	if _, err := s.Push(ogre.MGeometryVertexElement, 16); !errors.Is(err, ogre.ErrFormat) {
		t.Errorf("got %v, want ErrFormat", err)
	}
}

func TestDetach(t *testing.T) {
	root := New(ogre.RootID, 30)
	mesh := New(ogre.MMesh, 30)
	a := New(ogre.MGeometryVertexBuffer, 10)
	b := New(ogre.MGeometryVertexBuffer, 13)
	root.Add(mesh)
	mesh.Add(a)
	mesh.Add(b)

	a.Detach()
	if len(mesh.Sub) != 1 || mesh.Sub[0] != b {
		t.Fatalf("children after detach: %d", len(mesh.Sub))
	}
	if mesh.Size != 20 || root.Size != 20 {
		t.Errorf("sizes got (%d, %d), want (20, 20)", mesh.Size, root.Size)
	}
	if a.Attached() {
		t.Error("detached chunk still reports a parent")
	}
	a.Detach()
	if mesh.Size != 20 {
		t.Errorf("second detach changed size to %d", mesh.Size)
	}
}

func TestDump(t *testing.T) {
	root := New(ogre.RootID, 12)
	mesh := New(ogre.MMesh, 14)
	mesh.Size = 12
	root.Add(mesh)

	var out bytes.Buffer
	if err := Dump(&out, root, ogre.DialectMesh); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[1], "  M_MESH(3000)  14 bytes") {
		t.Errorf("unexpected line %q", lines[1])
	}
	if !strings.Contains(lines[1], "fixed to 12  diff=2") {
		t.Errorf("missing size warning in %q", lines[1])
	}
}
