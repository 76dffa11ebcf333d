package store

import "github.com/spf13/afero"

type Option func(s *Store)

// WithFs replaces the backing filesystem, mainly for tests.
func WithFs(fs afero.Fs) Option {
	return func(s *Store) {
		s.fs = fs
	}
}

// WithMaxSize downscales decoded images so that neither side exceeds
// px pixels. Zero disables the limit.
func WithMaxSize(px int) Option {
	return func(s *Store) {
		s.maxSize = px
	}
}

// WithOverwrite replaces an existing destination instead of picking
// a numbered filename next to it.
func WithOverwrite() Option {
	return func(s *Store) {
		s.overwrite = true
	}
}

// WithAlphaStrip drops the alpha channel when the destination format
// cannot carry transparency, instead of switching the format to PNG.
func WithAlphaStrip() Option {
	return func(s *Store) {
		s.stripAlpha = true
	}
}
