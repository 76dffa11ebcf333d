package transform

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"veil/pkg/pixbuf"
)

type GrayMethod int

const (
	// MethodLuminosity weights channels by perceived contribution
	// (Rec. 601: 0.299 R + 0.587 G + 0.114 B).
	MethodLuminosity GrayMethod = iota
	// MethodAverage takes the plain (R+G+B)/3 mean, which distorts
	// perceived brightness but keeps the arithmetic exact.
	MethodAverage
	// MethodLinear applies Rec. 709 weights in linear-light RGB and
	// converts the result back to sRGB.
	MethodLinear
)

func (m GrayMethod) String() string {
	switch m {
	case MethodAverage:
		return "average"
	case MethodLinear:
		return "linear"
	default:
		return "luminosity"
	}
}

// ParseGrayMethod maps a method name to its GrayMethod.
func ParseGrayMethod(s string) (GrayMethod, error) {
	switch s {
	case "luminosity", "":
		return MethodLuminosity, nil
	case "average":
		return MethodAverage, nil
	case "linear":
		return MethodLinear, nil
	}
	return 0, fmt.Errorf("unknown grayscale method %q", s)
}

func NewGrayscaler(opts ...GrayOption) *Grayscaler {
	g := &Grayscaler{
		method: MethodLuminosity,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Grayscaler reduces a color buffer to one brightness value per pixel.
type Grayscaler struct {
	method GrayMethod
}

// Apply converts a 3- or 4-channel buffer to a single-channel one with
// the same extents. Any alpha channel is discarded. The input is not
// modified.
func (g *Grayscaler) Apply(src *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	if src.C != pixbuf.RGB && src.C != pixbuf.RGBA {
		return nil, fmt.Errorf("grayscale of %d-channel buffer: %w", src.C, pixbuf.ErrInvalidFormat)
	}

	out, err := pixbuf.New(src.W, src.H, pixbuf.Gray)
	if err != nil {
		return nil, err
	}

	n := src.W * src.H
	for i := 0; i < n; i++ {
		off := i * src.C
		out.Pix[i] = brightness(g.method, src.Pix[off], src.Pix[off+1], src.Pix[off+2])
	}

	return out, nil
}

func brightness(method GrayMethod, r, g, b uint8) uint8 {
	var y float64
	switch method {
	case MethodAverage:
		y = (float64(r) + float64(g) + float64(b)) / 3.0
	case MethodLinear:
		c := colorful.Color{R: float64(r) / 255.0, G: float64(g) / 255.0, B: float64(b) / 255.0}
		lr, lg, lb := c.LinearRgb()
		l := 0.2126*lr + 0.7152*lg + 0.0722*lb
		y = colorful.LinearRgb(l, l, l).R * 255.0
	default:
		y = 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
	}
	return clamp8(math.Round(y))
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
