// Package postprocess turns raw supersampled renders into preview images.
package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample shrinks a render taken at factor times the preview size.
// Filtering runs on premultiplied colour so edges against transparent
// pixels do not pick up dark halos. BiLinear weights are never negative,
// which keeps every channel at or below alpha.
func Downsample(img *image.NRGBA, factor int) *image.NRGBA {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	premul := image.NewRGBA(b)
	draw.Copy(premul, b.Min, img, b, draw.Src, nil)

	small := image.NewRGBA(image.Rect(0, 0, max(b.Dx()/factor, 1), max(b.Dy()/factor, 1)))
	draw.BiLinear.Scale(small, small.Bounds(), premul, b, draw.Src, nil)

	out := image.NewNRGBA(small.Bounds())
	draw.Copy(out, image.Point{}, small, small.Bounds(), draw.Src, nil)
	return out
}
