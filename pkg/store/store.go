package store

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"veil/pkg/pixbuf"
)

func New(dir string, logger *zap.Logger, opts ...Option) (*Store, error) {
	s := &Store{
		log: logger,
	}

	if dir == "" {
		s.fs = afero.NewOsFs()
	} else if fs, err := newFs(dir); err != nil {
		return nil, fmt.Errorf("create store failed: %w", err)
	} else {
		s.fs = fs
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Store loads and saves image files for the transform pipeline.
// It owns every filesystem and codec concern so the transforms stay
// pure buffer-to-buffer functions.
type Store struct {
	fs         afero.Fs
	log        *zap.Logger
	maxSize    int
	overwrite  bool
	stripAlpha bool
}

// Load reads and decodes an image file into a 4-channel buffer.
func (s *Store) Load(file string) (*pixbuf.Buffer, error) {
	bs, err := afero.ReadFile(s.fs, file)
	if err != nil {
		return nil, fmt.Errorf("read image failed: %w", err)
	}

	buf, err := s.Decode(bs)
	if err != nil {
		return nil, fmt.Errorf("decode %s failed: %w", file, err)
	}
	return buf, nil
}

// Decode decodes raw image bytes into a 4-channel buffer, downscaling
// oversized inputs when a maximum size is configured.
func (s *Store) Decode(bs []byte) (*pixbuf.Buffer, error) {
	decoded, err := decodeBytes(bs)
	if err != nil {
		return nil, err
	}

	if s.maxSize > 0 {
		b := decoded.Bounds()
		if b.Dx() > s.maxSize || b.Dy() > s.maxSize {
			decoded = imaging.Fit(decoded, s.maxSize, s.maxSize, imaging.Lanczos)
		}
	}

	return pixbuf.FromImage(decoded), nil
}

// Save encodes the buffer per the destination's extension and writes
// it, returning the path actually written. Saving a transparent buffer
// to a format without an alpha channel either retargets to PNG or, if
// alpha stripping is enabled, drops the alpha channel. An existing
// destination gets a numbered suffix unless overwriting is enabled.
func (s *Store) Save(file string, buf *pixbuf.Buffer) (string, error) {
	ext := strings.ToLower(filepath.Ext(file))
	if ext == "" {
		ext = ".png"
		file += ext
	}
	if !formatKnown(ext) {
		return "", errors.Errorf("unsupported image format %q", ext)
	}

	if !buf.Opaque() && !formatHasAlpha(ext) {
		if s.stripAlpha {
			buf = buf.StripAlpha()
		} else {
			s.log.With(zap.String("format", ext)).Info("format cannot carry transparency, saving as png")
			file = strings.TrimSuffix(file, ext) + ".png"
			ext = ".png"
		}
	}

	var enc bytes.Buffer
	if err := encode(&enc, buf, ext); err != nil {
		return "", fmt.Errorf("encode image failed: %w", err)
	}

	if !s.overwrite {
		file = s.renamed(file, ext)
	}

	if dir := filepath.Dir(file); dir != "." && dir != string(filepath.Separator) {
		if exists, err := afero.DirExists(s.fs, dir); err != nil {
			return "", err
		} else if !exists {
			if err2 := s.fs.MkdirAll(dir, 0755); err2 != nil {
				return "", err2
			}
		}
	}

	// write under a throwaway name, then rename into place
	tmp := filepath.Join(filepath.Dir(file), xid.New().String()+".tmp")
	if err := afero.WriteFile(s.fs, tmp, enc.Bytes(), 0644); err != nil {
		return "", err
	}
	if err := s.fs.Rename(tmp, file); err != nil {
		_ = s.fs.Remove(tmp)
		return "", err
	}

	s.log.With(
		zap.String("file", file),
		zap.String("size", bytesize.New(float64(enc.Len())).String()),
	).Debug("image saved")

	return file, nil
}

// renamed appends _1, _2, ... to the basename until the name is free.
func (s *Store) renamed(file, ext string) string {
	if exists, err := afero.Exists(s.fs, file); err != nil || !exists {
		return file
	}

	base := strings.TrimSuffix(file, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", base, n, ext)
		if exists, err := afero.Exists(s.fs, candidate); err == nil && !exists {
			return candidate
		}
	}
}

func newFs(dir string) (afero.Fs, error) {
	fs := afero.NewOsFs()
	if exists, err := afero.DirExists(fs, dir); err != nil {
		return nil, err
	} else if !exists {
		return nil, errors.New("dir not exists")
	}
	return afero.NewBasePathFs(fs, dir), nil
}
