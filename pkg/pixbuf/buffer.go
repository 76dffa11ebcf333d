package pixbuf

import (
	"fmt"
	"image"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidFormat reports an unsupported channel layout.
	ErrInvalidFormat = errors.New("invalid channel layout")
	// ErrDimensionMismatch reports that two cooperating buffers
	// do not share the same width and height.
	ErrDimensionMismatch = errors.New("buffer extents do not match")
)

// Channel counts accepted by New.
const (
	Gray      = 1
	GrayAlpha = 2
	RGB       = 3
	RGBA      = 4
)

// Buffer is an interleaved, row-major pixel buffer with 8 bits per
// channel. C is the channel count: 1 gray, 2 gray+alpha, 3 RGB,
// 4 RGBA (non-premultiplied). The shape is fixed at construction,
// len(Pix) == W*H*C always holds.
type Buffer struct {
	W, H, C int
	Pix     []uint8
}

func New(w, h, c int) (*Buffer, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("size %dx%d: %w", w, h, ErrInvalidFormat)
	}
	if c < Gray || c > RGBA {
		return nil, fmt.Errorf("%d channels: %w", c, ErrInvalidFormat)
	}
	return &Buffer{
		W:   w,
		H:   h,
		C:   c,
		Pix: make([]uint8, w*h*c),
	}, nil
}

// Offset returns the index of the first channel of pixel (x, y).
func (b *Buffer) Offset(x, y int) int {
	return (y*b.W + x) * b.C
}

func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.W, b.H)
}

// SameSize reports whether o covers the same width and height.
func (b *Buffer) SameSize(o *Buffer) bool {
	return o != nil && b.W == o.W && b.H == o.H
}

func (b *Buffer) Clone() *Buffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{W: b.W, H: b.H, C: b.C, Pix: pix}
}

// HasAlpha reports whether the layout carries an alpha channel.
func (b *Buffer) HasAlpha() bool {
	return b.C == GrayAlpha || b.C == RGBA
}

// Opaque reports whether every pixel is fully opaque. Layouts without
// an alpha channel are opaque by definition.
func (b *Buffer) Opaque() bool {
	if !b.HasAlpha() {
		return true
	}
	for i := b.C - 1; i < len(b.Pix); i += b.C {
		if b.Pix[i] != 255 {
			return false
		}
	}
	return true
}

// RGBA returns a 4-channel copy of the buffer. Gray values are
// replicated into R, G and B; a missing alpha channel becomes opaque.
func (b *Buffer) RGBA() *Buffer {
	if b.C == RGBA {
		return b.Clone()
	}
	out := &Buffer{W: b.W, H: b.H, C: RGBA, Pix: make([]uint8, b.W*b.H*RGBA)}
	n := b.W * b.H
	for i := 0; i < n; i++ {
		src := i * b.C
		dst := i * RGBA
		switch b.C {
		case Gray:
			v := b.Pix[src]
			out.Pix[dst], out.Pix[dst+1], out.Pix[dst+2], out.Pix[dst+3] = v, v, v, 255
		case GrayAlpha:
			v := b.Pix[src]
			out.Pix[dst], out.Pix[dst+1], out.Pix[dst+2], out.Pix[dst+3] = v, v, v, b.Pix[src+1]
		case RGB:
			out.Pix[dst], out.Pix[dst+1], out.Pix[dst+2], out.Pix[dst+3] =
				b.Pix[src], b.Pix[src+1], b.Pix[src+2], 255
		}
	}
	return out
}

// StripAlpha returns a copy without the alpha channel. Buffers that
// have none are cloned as-is. Transparency information is discarded.
func (b *Buffer) StripAlpha() *Buffer {
	if !b.HasAlpha() {
		return b.Clone()
	}
	oc := b.C - 1
	out := &Buffer{W: b.W, H: b.H, C: oc, Pix: make([]uint8, b.W*b.H*oc)}
	n := b.W * b.H
	for i := 0; i < n; i++ {
		copy(out.Pix[i*oc:i*oc+oc], b.Pix[i*b.C:i*b.C+oc])
	}
	return out
}
