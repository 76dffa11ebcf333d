package transform

import "veil/pkg/pixbuf"

type AlphaOption func(m *AlphaMapper)

func WithReference(r Reference) AlphaOption {
	return func(m *AlphaMapper) {
		m.ref = r
	}
}

func WithFill(f RGBFill) AlphaOption {
	return func(m *AlphaMapper) {
		m.fill = f
	}
}

// WithKeepAlpha leaves pixels that already carry a non-opaque alpha
// value untouched instead of re-deriving them.
func WithKeepAlpha() AlphaOption {
	return func(m *AlphaMapper) {
		m.keepAlpha = true
	}
}

// WithSourceColor copies the color channels of src into the output
// instead of filling them. src must match the brightness buffer's
// extents and have 3 or 4 channels.
func WithSourceColor(src *pixbuf.Buffer) AlphaOption {
	return func(m *AlphaMapper) {
		m.source = src
	}
}
