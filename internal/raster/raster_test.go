package raster

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestRasterizeDepth(t *testing.T) {
	fb := NewFrameBuffer(16, 16)
	lc := DefaultLightConfig()
	up := mgl64.Vec3{0, 1, 0}
	red := color.NRGBA{255, 0, 0, 255}
	blue := color.NRGBA{0, 0, 255, 255}
	tri := func(z float64, c color.NRGBA) [3]Vertex {
		return [3]Vertex{{X: 0, Y: 0, Z: z, Color: c}, {X: 16, Y: 0, Z: z, Color: c}, {X: 0, Y: 16, Z: z, Color: c}}
	}

	RasterizeTriangle(fb, tri(1, red), up, nil, &lc)
	covered := fb.Covered()
	if covered < 16*16/3 {
		t.Fatalf("covered %d pixels", covered)
	}
	RasterizeTriangle(fb, tri(0, blue), up, nil, &lc)
	img := fb.Image()
	if c := img.NRGBAAt(2, 2); c.R <= c.B {
		t.Errorf("far triangle drew over near one: %v", c)
	}
	RasterizeTriangle(fb, tri(2, blue), up, nil, &lc)
	img = fb.Image()
	if c := img.NRGBAAt(2, 2); c.B <= c.R {
		t.Errorf("near triangle hidden: %v", c)
	}
	if fb.Covered() != covered {
		t.Errorf("coverage changed from %d to %d", covered, fb.Covered())
	}
}

func TestSampleTexture(t *testing.T) {
	tex := Checker(8, 2)
	a := SampleTexture(tex, 0.1, 0.1)
	b := SampleTexture(tex, 0.9, 0.1)
	if a == b {
		t.Errorf("checker cells sampled the same: %v", a)
	}
	if c := SampleTexture(tex, 1.1, 0.1); c != a {
		t.Errorf("wrapped sample got %v, want %v", c, a)
	}
}
