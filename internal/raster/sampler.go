package raster

import (
	"image"
	"image/color"
)

// SampleTexture performs bilinear filtering with UV wrapping.
func SampleTexture(tex *image.NRGBA, u, v float64) color.NRGBA {
	w := tex.Rect.Dx()
	h := tex.Rect.Dy()
	if w == 0 || h == 0 {
		return color.NRGBA{}
	}

	u = wrap(u)
	v = wrap(v)
	fx := u * float64(w-1)
	fy := v * float64(h-1)
	x0, y0 := int(fx), int(fy)
	x1, y1 := (x0+1)%w, (y0+1)%h
	dx, dy := fx-float64(x0), fy-float64(y0)

	i00 := tex.PixOffset(x0, y0)
	i10 := tex.PixOffset(x1, y0)
	i01 := tex.PixOffset(x0, y1)
	i11 := tex.PixOffset(x1, y1)
	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	var out [4]uint8
	for k := range out {
		p := tex.Pix
		out[k] = clamp255(float64(p[i00+k])*w00 + float64(p[i10+k])*w10 + float64(p[i01+k])*w01 + float64(p[i11+k])*w11)
	}
	return color.NRGBA{out[0], out[1], out[2], out[3]}
}

func wrap(t float64) float64 {
	t -= float64(int(t))
	if t < 0 {
		t += 1
	}
	return t
}

// Checker returns a size by size texture of cells alternating squares,
// used to show texture coordinates on meshes without materials.
func Checker(size, cells int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	light := color.NRGBA{210, 210, 200, 255}
	dark := color.NRGBA{90, 110, 140, 255}
	cell := max(size/max(cells, 1), 1)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := light
			if (x/cell+y/cell)%2 == 1 {
				c = dark
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
