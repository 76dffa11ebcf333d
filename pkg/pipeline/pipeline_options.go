package pipeline

import (
	"veil/pkg/fetch"
	"veil/pkg/transform"
)

type Option func(p *Pipeline)

// WithFetcher enables http(s) inputs.
func WithFetcher(f *fetch.Fetcher) Option {
	return func(p *Pipeline) {
		p.fetcher = f
	}
}

func WithMethod(m transform.GrayMethod) Option {
	return func(p *Pipeline) {
		p.method = m
	}
}

// WithFactor sets the desaturation amount in [0, 1]; below 1 the
// source keeps part of its color before brightness is measured.
func WithFactor(f float64) Option {
	return func(p *Pipeline) {
		p.factor = f
	}
}

func WithReference(r transform.Reference) Option {
	return func(p *Pipeline) {
		p.ref = r
	}
}

func WithFill(f transform.RGBFill) Option {
	return func(p *Pipeline) {
		p.fill = f
	}
}

// WithKeepAlpha preserves already-transparent pixels of the source.
func WithKeepAlpha() Option {
	return func(p *Pipeline) {
		p.keepAlpha = true
	}
}

// WithKeepColor copies the source's color channels into the output
// instead of the grayscale fill.
func WithKeepColor() Option {
	return func(p *Pipeline) {
		p.keepColor = true
	}
}
