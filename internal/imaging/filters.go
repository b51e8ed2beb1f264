package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"
)

// ErrUnsharpUnavailable is returned by the unsharp stage when the pipeline
// was built without unsharp masking.
var ErrUnsharpUnavailable = errors.New("imaging: unsharp mask unavailable")

// Stage is one filter operation. Apply must not modify its input.
type Stage struct {
	Name  string
	Apply func(image.Image) (image.Image, error)
}

// Blur applies a gaussian blur with the given radius (sigma).
func Blur(radius float64) Stage {
	return Stage{
		Name: fmt.Sprintf("blur(%.2f)", radius),
		Apply: func(img image.Image) (image.Image, error) {
			if radius <= 0 {
				return nil, fmt.Errorf("blur radius must be positive, got %.2f", radius)
			}
			return imaging.Blur(img, radius), nil
		},
	}
}

// Contrast blends every pixel against a flat gray at the image's mean
// luminance. A factor of 1 is a no-op.
func Contrast(factor float64) Stage {
	return Stage{
		Name: fmt.Sprintf("contrast(%.2f)", factor),
		Apply: func(img image.Image) (image.Image, error) {
			mean := meanLuminance(img)
			return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
				return color.NRGBA{
					R: blend(mean, float64(c.R), factor),
					G: blend(mean, float64(c.G), factor),
					B: blend(mean, float64(c.B), factor),
					A: c.A,
				}
			}), nil
		},
	}
}

// Color scales saturation by blending each pixel against its own luminance.
func Color(factor float64) Stage {
	return Stage{
		Name: fmt.Sprintf("color(%.2f)", factor),
		Apply: func(img image.Image) (image.Image, error) {
			return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
				l := luminance(c.R, c.G, c.B)
				return color.NRGBA{
					R: blend(l, float64(c.R), factor),
					G: blend(l, float64(c.G), factor),
					B: blend(l, float64(c.B), factor),
					A: c.A,
				}
			}), nil
		},
	}
}

// Brightness blends against black, i.e. multiplies every channel.
func Brightness(factor float64) Stage {
	return Stage{
		Name: fmt.Sprintf("brightness(%.2f)", factor),
		Apply: func(img image.Image) (image.Image, error) {
			return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
				return color.NRGBA{
					R: blend(0, float64(c.R), factor),
					G: blend(0, float64(c.G), factor),
					B: blend(0, float64(c.B), factor),
					A: c.A,
				}
			}), nil
		},
	}
}

// UnsharpMask adds percent% of the difference between the image and its
// gaussian blur wherever that difference is at least threshold.
func UnsharpMask(radius float64, percent, threshold int) Stage {
	return Stage{
		Name: fmt.Sprintf("unsharp(%.2f,%d,%d)", radius, percent, threshold),
		Apply: func(img image.Image) (image.Image, error) {
			if radius <= 0 {
				return nil, fmt.Errorf("unsharp radius must be positive, got %.2f", radius)
			}
			src := imaging.Clone(img)
			blurred := imaging.Blur(src, radius)
			dst := image.NewNRGBA(src.Bounds())
			w, h := src.Bounds().Dx(), src.Bounds().Dy()
			parallel.Line(h, func(start, end int) {
				for y := start; y < end; y++ {
					row := y * src.Stride
					for x := 0; x < w; x++ {
						i := row + x*4
						for c := 0; c < 3; c++ {
							orig := int(src.Pix[i+c])
							diff := orig - int(blurred.Pix[i+c])
							if abs(diff) >= threshold {
								dst.Pix[i+c] = clamp8(float64(orig + diff*percent/100))
							} else {
								dst.Pix[i+c] = src.Pix[i+c]
							}
						}
						dst.Pix[i+3] = src.Pix[i+3]
					}
				}
			})
			return dst, nil
		},
	}
}

// Sharpen is a generic 3x3 sharpen kernel pass.
func Sharpen() Stage {
	return Stage{
		Name: "sharpen",
		Apply: func(img image.Image) (image.Image, error) {
			return effect.Sharpen(img), nil
		},
	}
}

func unavailable(name string, err error) Stage {
	return Stage{
		Name: name,
		Apply: func(image.Image) (image.Image, error) {
			return nil, err
		},
	}
}

// luminance uses the ITU-R 601-2 weights, in the 0-255 range.
func luminance(r, g, b uint8) float64 {
	return (float64(r)*299 + float64(g)*587 + float64(b)*114) / 1000
}

func meanLuminance(img image.Image) float64 {
	src := imaging.Clone(img)
	n := len(src.Pix) / 4
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < len(src.Pix); i += 4 {
		sum += math.Floor(luminance(src.Pix[i], src.Pix[i+1], src.Pix[i+2]))
	}
	return math.Floor(sum/float64(n) + 0.5)
}

func blend(degenerate, v, factor float64) uint8 {
	return clamp8(degenerate + factor*(v-degenerate))
}

func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(math.Round(v))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
