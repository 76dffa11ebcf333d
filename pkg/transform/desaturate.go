package transform

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"veil/pkg/pixbuf"
)

// Desaturate blends each color channel toward the pixel's brightness
// by factor in [0, 1]: 0 returns an unchanged copy, 1 a fully
// grayscaled image. The channel count and any alpha values are
// preserved, so the result stays a color buffer.
func Desaturate(src *pixbuf.Buffer, factor float64, method GrayMethod) (*pixbuf.Buffer, error) {
	if src.C != pixbuf.RGB && src.C != pixbuf.RGBA {
		return nil, fmt.Errorf("desaturate of %d-channel buffer: %w", src.C, pixbuf.ErrInvalidFormat)
	}
	if factor < 0 || factor > 1 {
		return nil, errors.Errorf("desaturate factor %v out of range [0, 1]", factor)
	}
	if factor == 0 {
		return src.Clone(), nil
	}

	out := src.Clone()
	n := src.W * src.H
	for i := 0; i < n; i++ {
		off := i * src.C
		r, g, b := src.Pix[off], src.Pix[off+1], src.Pix[off+2]
		y := float64(brightness(method, r, g, b))
		out.Pix[off] = clamp8(math.Round((1-factor)*float64(r) + factor*y))
		out.Pix[off+1] = clamp8(math.Round((1-factor)*float64(g) + factor*y))
		out.Pix[off+2] = clamp8(math.Round((1-factor)*float64(b) + factor*y))
	}

	return out, nil
}
