package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vertex is a projected triangle corner: X, Y in pixels, Z as depth with
// larger values closer to the viewer.
type Vertex struct {
	X, Y, Z float64
	U, V    float64
	Color   color.NRGBA
}

// RasterizeTriangle fills one flat-shaded triangle with z-buffering. The
// surface color is sampled from tex at the interpolated UV when tex is not
// nil, otherwise interpolated from the corner colors.
func RasterizeTriangle(fb *FrameBuffer, tri [3]Vertex, normal mgl64.Vec3, tex *image.NRGBA, lc *LightConfig) {
	a, b, c := tri[0], tri[1], tri[2]
	shade := lc.Shade(normal)

	minX := max(int(math.Floor(min(a.X, b.X, c.X))), 0)
	maxX := min(int(math.Ceil(max(a.X, b.X, c.X))), fb.Width-1)
	minY := max(int(math.Floor(min(a.Y, b.Y, c.Y))), 0)
	maxY := min(int(math.Ceil(max(a.Y, b.Y, c.Y))), fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det
	dy12 := b.Y - c.Y
	dx21 := c.X - b.X
	dy20 := c.Y - a.Y
	dx02 := a.X - c.X

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - c.Y
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - c.X
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*a.Z + w1*b.Z + w2*c.Z
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			var col color.NRGBA
			if tex != nil {
				col = SampleTexture(tex, w0*a.U+w1*b.U+w2*c.U, w0*a.V+w1*b.V+w2*c.V)
			} else {
				col = mix(a.Color, b.Color, c.Color, w0, w1, w2)
			}
			if col.A < 8 {
				continue
			}
			fb.ZBuf[zIdx] = z

			px := zIdx * 4
			fb.Color[px] = lc.light(col.R, shade)
			fb.Color[px+1] = lc.light(col.G, shade)
			fb.Color[px+2] = lc.light(col.B, shade)
			fb.Color[px+3] = col.A
		}
	}
}

func mix(a, b, c color.NRGBA, w0, w1, w2 float64) color.NRGBA {
	ch := func(x, y, z uint8) uint8 {
		return clamp255(float64(x)*w0 + float64(y)*w1 + float64(z)*w2)
	}
	return color.NRGBA{ch(a.R, b.R, c.R), ch(a.G, b.G, c.G), ch(a.B, b.B, c.B), ch(a.A, b.A, c.A)}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
