// Package preview renders a mesh to a small flat-shaded image so the effect
// of an optimization can be checked by eye.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"meshopt/internal/mesh"
	"meshopt/internal/ogre"
	"meshopt/internal/postprocess"
	"meshopt/internal/raster"
)

// Options controls the camera and output size.
type Options struct {
	Size        int
	Supersample int
	// Yaw and Pitch orient the camera in degrees.
	Yaw, Pitch float64
	// FillRatio is the share of the image the mesh spans.
	FillRatio float64
}

// DefaultOptions is an isometric view.
var DefaultOptions = Options{
	Size:        256,
	Supersample: 2,
	Yaw:         45,
	Pitch:       35.264,
	FillRatio:   0.9,
}

func (o Options) resolve() Options {
	if o.Size <= 0 {
		o.Size = DefaultOptions.Size
	}
	if o.Supersample <= 0 {
		o.Supersample = DefaultOptions.Supersample
	}
	if o.Yaw == 0 && o.Pitch == 0 {
		o.Yaw, o.Pitch = DefaultOptions.Yaw, DefaultOptions.Pitch
	}
	if o.FillRatio <= 0 || o.FillRatio > 1 {
		o.FillRatio = DefaultOptions.FillRatio
	}
	return o
}

var defaultColor = color.NRGBA{160, 160, 170, 255}

// Render draws every submesh of m.
func Render(m *mesh.Mesh, opts Options) *image.NRGBA {
	opts = opts.resolve()
	view := mgl64.Rotate3DX(mgl64.DegToRad(opts.Pitch)).Mul3(mgl64.Rotate3DY(mgl64.DegToRad(opts.Yaw)))

	renderSize := opts.Size * opts.Supersample
	lo := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, g := range m.Geometries() {
		for i := range g.Vertices {
			p := view.Mul3x1(vec64(g.Vertices[i].Pos))
			for k := 0; k < 3; k++ {
				lo[k] = math.Min(lo[k], p[k])
				hi[k] = math.Max(hi[k], p[k])
			}
		}
	}
	if lo[0] > hi[0] {
		return image.NewNRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	}
	fb := raster.NewFrameBuffer(renderSize, renderSize)
	center := lo.Add(hi).Mul(0.5)
	span := math.Max(math.Max(hi[0]-lo[0], hi[1]-lo[1]), 0.001)
	margin := 4 * opts.Supersample
	scale := float64(renderSize-2*margin) / span

	lc := raster.DefaultLightConfig()
	checker := raster.Checker(64, 8)
	projected := make(map[*mesh.Geometry][]raster.Vertex)
	for _, s := range m.Subs {
		g := m.GeometryOf(s)
		if g == nil {
			continue
		}
		pts, ok := projected[g]
		if !ok {
			pts = project(g, view, center, scale, renderSize)
			projected[g] = pts
		}
		var tex *image.NRGBA
		if !g.Flags.Has(ogre.VFDiffuse) && g.Flags.Has(ogre.VFTexCoord0) {
			tex = checker
		}
		for i := 0; i+2 < len(s.Indices); i += 3 {
			a, b, c := s.Indices[i], s.Indices[i+1], s.Indices[i+2]
			if int(max(a, b, c)) >= len(pts) {
				continue
			}
			n := mesh.FaceNormal(g.Vertices[a].Pos, g.Vertices[b].Pos, g.Vertices[c].Pos)
			if math.IsNaN(float64(n[0])) {
				continue
			}
			raster.RasterizeTriangle(fb, [3]raster.Vertex{pts[a], pts[b], pts[c]}, view.Mul3x1(vec64(n)), tex, &lc)
		}
	}

	img := fb.Image()
	if opts.Supersample > 1 {
		img = postprocess.Downsample(img, opts.Supersample)
	}
	return postprocess.CropAndCenter(img, opts.Size, opts.FillRatio)
}

func project(g *mesh.Geometry, view mgl64.Mat3, center mgl64.Vec3, scale float64, size int) []raster.Vertex {
	colorType := ogre.ColourARGB
	for _, b := range g.Binds {
		for _, e := range b.Entries {
			if e.Semantic == ogre.SemDiffuse {
				colorType = e.Type
			}
		}
	}
	half := float64(size) / 2
	pts := make([]raster.Vertex, len(g.Vertices))
	for i := range g.Vertices {
		v := &g.Vertices[i]
		p := view.Mul3x1(vec64(v.Pos)).Sub(center)
		rv := raster.Vertex{
			X:     half + p[0]*scale,
			Y:     half - p[1]*scale,
			Z:     p[2],
			U:     float64(v.Tex[0][0]),
			V:     float64(v.Tex[0][1]),
			Color: defaultColor,
		}
		if g.Flags.Has(ogre.VFDiffuse) {
			rv.Color = unpackColor(v.Diffuse, colorType)
		}
		pts[i] = rv
	}
	return pts
}

func vec64(v mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

// unpackColor decodes a packed vertex colour. Alpha is forced opaque so
// vertex alpha does not hide geometry in the preview.
func unpackColor(c uint32, t ogre.ElementType) color.NRGBA {
	r, g, b := uint8(c>>16), uint8(c>>8), uint8(c)
	if t == ogre.ColourABGR {
		r, b = b, r
	}
	return color.NRGBA{r, g, b, 255}
}

// Encode writes img as "webp" or "tga".
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case "webp", "":
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("preview: webp encode: %w", err)
		}
	case "tga":
		if err := tga.Encode(w, img); err != nil {
			return fmt.Errorf("preview: tga encode: %w", err)
		}
	default:
		return fmt.Errorf("preview: unknown format %q", format)
	}
	return nil
}

// Ext returns the file extension for format.
func Ext(format string) string {
	if strings.ToLower(format) == "tga" {
		return ".tga"
	}
	return ".webp"
}

// Save renders m and writes it to path.
func Save(path string, m *mesh.Mesh, opts Options, format string) error {
	img := Render(m, opts)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
