package preview

import (
	"bytes"
	"image"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/webp"

	"meshopt/internal/mesh"
	"meshopt/internal/mesh/meshtest"
)

func plane(t *testing.T) *mesh.Mesh {
	t.Helper()
	m, err := mesh.ParseBytes(meshtest.PlaneGrid(2, 1, meshtest.Pos, meshtest.Diffuse))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func opaque(img image.Image) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a > 0 {
				n++
			}
		}
	}
	return n
}

func TestRender(t *testing.T) {
	img := Render(plane(t), Options{Size: 32})
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
		t.Fatalf("got %v, want 32x32", b)
	}
	if n := opaque(img); n < 32*32/8 {
		t.Errorf("only %d opaque pixels", n)
	}
}

func TestRenderEmpty(t *testing.T) {
	m, err := mesh.ParseBytes(meshtest.File())
	if err != nil {
		t.Fatal(err)
	}
	if n := opaque(Render(m, Options{Size: 16})); n != 0 {
		t.Errorf("empty mesh drew %d pixels", n)
	}
}

func TestEncode(t *testing.T) {
	img := Render(plane(t), Options{Size: 24, Supersample: 1})
	tests := []struct {
		format string
		decode func(*bytes.Reader) (image.Image, error)
	}{
		{"webp", func(r *bytes.Reader) (image.Image, error) { return webp.Decode(r) }},
		{"tga", func(r *bytes.Reader) (image.Image, error) { return tga.Decode(r) }},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := Encode(&buf, img, tt.format); err != nil {
			t.Fatalf("%s: %v", tt.format, err)
		}
		back, err := tt.decode(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("%s decode: %v", tt.format, err)
		}
		if back.Bounds().Dx() != 24 || opaque(back) != opaque(img) {
			t.Errorf("%s: decoded %v with %d opaque pixels, want %d", tt.format, back.Bounds(), opaque(back), opaque(img))
		}
	}
	if err := Encode(&bytes.Buffer{}, img, "bmp"); err == nil {
		t.Error("unknown format accepted")
	}
	if Ext("TGA") != ".tga" || Ext("webp") != ".webp" {
		t.Error("wrong extensions")
	}
}
