package transform

import (
	"fmt"

	"veil/pkg/pixbuf"
)

// Reference selects the brightness-to-alpha polarity.
type Reference int

const (
	// RefWhite makes brighter pixels more transparent:
	// alpha = previous alpha - brightness, clamped at 0. A buffer
	// without an alpha channel counts as fully opaque, so plain
	// grayscale input yields alpha = 255 - brightness.
	RefWhite Reference = iota
	// RefBlack makes brighter pixels more opaque:
	// alpha = previous alpha - (255 - brightness), clamped at 0.
	// Plain grayscale input yields alpha = brightness.
	RefBlack
)

func (r Reference) String() string {
	if r == RefBlack {
		return "black"
	}
	return "white"
}

func ParseReference(s string) (Reference, error) {
	switch s {
	case "white", "w", "":
		return RefWhite, nil
	case "black", "b":
		return RefBlack, nil
	}
	return 0, fmt.Errorf("unknown reference color %q", s)
}

// RGBFill selects what the color channels of the output carry.
type RGBFill int

const (
	// FillGray replicates the brightness value into R, G and B.
	FillGray RGBFill = iota
	// FillBlack zeroes the color channels.
	FillBlack
)

func NewAlphaMapper(opts ...AlphaOption) *AlphaMapper {
	m := &AlphaMapper{
		ref:  RefWhite,
		fill: FillGray,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// AlphaMapper derives an RGBA buffer from per-pixel brightness,
// writing a brightness-dependent alpha channel.
type AlphaMapper struct {
	ref       Reference
	fill      RGBFill
	keepAlpha bool
	source    *pixbuf.Buffer
}

// Apply maps a 1- or 2-channel brightness buffer to a 4-channel buffer
// with the same extents. The alpha of each pixel is a deterministic,
// monotonic function of its brightness per the configured Reference.
// The input is not modified.
func (m *AlphaMapper) Apply(gray *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	if gray.C != pixbuf.Gray && gray.C != pixbuf.GrayAlpha {
		return nil, fmt.Errorf("alpha map of %d-channel buffer: %w", gray.C, pixbuf.ErrInvalidFormat)
	}
	if m.source != nil {
		if m.source.C != pixbuf.RGB && m.source.C != pixbuf.RGBA {
			return nil, fmt.Errorf("source color with %d channels: %w", m.source.C, pixbuf.ErrInvalidFormat)
		}
		if !gray.SameSize(m.source) {
			return nil, fmt.Errorf("brightness %dx%d vs source %dx%d: %w",
				gray.W, gray.H, m.source.W, m.source.H, pixbuf.ErrDimensionMismatch)
		}
	}

	out, err := pixbuf.New(gray.W, gray.H, pixbuf.RGBA)
	if err != nil {
		return nil, err
	}

	n := gray.W * gray.H
	for i := 0; i < n; i++ {
		y := gray.Pix[i*gray.C]
		prev := uint8(255)
		if gray.C == pixbuf.GrayAlpha {
			prev = gray.Pix[i*gray.C+1]
		}

		dst := i * pixbuf.RGBA
		out.Pix[dst+3] = m.alpha(y, prev)

		switch {
		case m.source != nil:
			src := i * m.source.C
			out.Pix[dst] = m.source.Pix[src]
			out.Pix[dst+1] = m.source.Pix[src+1]
			out.Pix[dst+2] = m.source.Pix[src+2]
		case m.fill == FillGray:
			out.Pix[dst], out.Pix[dst+1], out.Pix[dst+2] = y, y, y
		}
	}

	return out, nil
}

func (m *AlphaMapper) alpha(y, prev uint8) uint8 {
	if m.keepAlpha && prev != 255 {
		return prev
	}

	var a int
	if m.ref == RefWhite {
		a = int(prev) - int(y)
	} else {
		a = int(prev) - 255 + int(y)
	}
	if a < 0 {
		a = 0
	}
	return uint8(a)
}
