package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Fit scales img down so neither side exceeds maxSize, keeping the aspect
// ratio. Images that already fit, and a non-positive maxSize, return img
// unchanged.
//
// Scaling runs on premultiplied alpha so transparent edges do not pick up
// dark halos.
func Fit(img *image.NRGBA, maxSize int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return img
	}

	dw, dh := maxSize, maxSize
	if w > h {
		dh = max(1, h*maxSize/w)
	} else if h > w {
		dw = max(1, w*maxSize/h)
	}

	// Premultiply alpha
	premul := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			di := premul.PixOffset(x, y)
			a := float64(img.Pix[si+3]) / 255.0
			premul.Pix[di] = uint8(float64(img.Pix[si])*a + 0.5)
			premul.Pix[di+1] = uint8(float64(img.Pix[si+1])*a + 0.5)
			premul.Pix[di+2] = uint8(float64(img.Pix[si+2])*a + 0.5)
			premul.Pix[di+3] = img.Pix[si+3]
		}
	}

	// CatmullRom approximates Lanczos
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), premul, premul.Bounds(), draw.Src, nil)

	// Unpremultiply alpha
	result := image.NewNRGBA(dst.Bounds())
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			si := dst.PixOffset(x, y)
			di := result.PixOffset(x, y)
			a := float64(dst.Pix[si+3])
			if a > 1 {
				inv := 255.0 / a
				result.Pix[di] = clamp8(float64(dst.Pix[si]) * inv)
				result.Pix[di+1] = clamp8(float64(dst.Pix[si+1]) * inv)
				result.Pix[di+2] = clamp8(float64(dst.Pix[si+2]) * inv)
			}
			result.Pix[di+3] = dst.Pix[si+3]
		}
	}

	return result
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
