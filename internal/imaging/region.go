package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// Fractions of the image used by the watermark-corner patch. The target is
// the bottom-right corner; the sources are three areas that are usually
// free of overlays.
var (
	patchTarget  = [4]float64{0.75, 0.88, 1.0, 1.0}
	patchSources = [][4]float64{
		{0.4, 0.6, 0.6, 0.8},
		{0.6, 0.4, 0.8, 0.6},
		{0.3, 0.7, 0.5, 0.85},
	}
)

// BlendRegion returns a copy of img where every pixel of target is replaced
// by the rounded component-wise mean of the pixels found at the same offset,
// taken modulo each source's size, inside every source region. Regions are
// in img's coordinate space; parts outside the image are ignored, as are
// empty sources. Without usable sources the copy is returned unchanged.
func BlendRegion(img image.Image, target image.Rectangle, sources []image.Rectangle) *image.NRGBA {
	bounds := img.Bounds()
	src := imaging.Clone(img)
	dst := imaging.Clone(img)

	// Clone rebases to the origin; shift regions accordingly.
	offset := bounds.Min
	target = target.Intersect(bounds).Sub(offset)
	if target.Empty() {
		return dst
	}
	var regions []image.Rectangle
	for _, r := range sources {
		r = r.Intersect(bounds).Sub(offset)
		if !r.Empty() {
			regions = append(regions, r)
		}
	}
	if len(regions) == 0 {
		return dst
	}

	n := len(regions)
	for y := target.Min.Y; y < target.Max.Y; y++ {
		dy := y - target.Min.Y
		for x := target.Min.X; x < target.Max.X; x++ {
			dx := x - target.Min.X
			var sum [4]int
			for _, r := range regions {
				sy := r.Min.Y + dy%r.Dy()
				sx := r.Min.X + dx%r.Dx()
				i := src.PixOffset(sx, sy)
				for c := 0; c < 4; c++ {
					sum[c] += int(src.Pix[i+c])
				}
			}
			j := dst.PixOffset(x, y)
			for c := 0; c < 4; c++ {
				dst.Pix[j+c] = uint8((sum[c] + n/2) / n)
			}
		}
	}
	return dst
}

// FractionalRect maps fractions of b's width and height (x0, y0, x1, y1) to
// an absolute rectangle, truncating like an integer index would.
func FractionalRect(b image.Rectangle, x0, y0, x1, y1 float64) image.Rectangle {
	w, h := float64(b.Dx()), float64(b.Dy())
	return image.Rect(
		b.Min.X+int(w*x0), b.Min.Y+int(h*y0),
		b.Min.X+int(w*x1), b.Min.Y+int(h*y1),
	)
}

// PatchWatermarkRegion covers the bottom-right corner with a blend of three
// interior regions. It is a cosmetic patch; it does not detect anything.
func PatchWatermarkRegion(img image.Image) *image.NRGBA {
	b := img.Bounds()
	target := FractionalRect(b, patchTarget[0], patchTarget[1], patchTarget[2], patchTarget[3])
	sources := make([]image.Rectangle, 0, len(patchSources))
	for _, f := range patchSources {
		sources = append(sources, FractionalRect(b, f[0], f[1], f[2], f[3]))
	}
	return BlendRegion(img, target, sources)
}
