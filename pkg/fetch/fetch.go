package fetch

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"path"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func NewFetcher(dir string, logger *zap.Logger) (*Fetcher, error) {
	f := &Fetcher{
		cli: resty.New().SetDoNotParseResponse(true),
		log: logger,
	}

	if dir == "" {
		return f, nil
	}

	fs := afero.NewOsFs()
	if exists, err := afero.DirExists(fs, dir); err != nil {
		return nil, err
	} else if !exists {
		return nil, errors.New("cache dir not exists")
	}
	f.fs = afero.NewBasePathFs(fs, dir)

	return f, nil
}

// Fetcher downloads remote input images, optionally keeping a local
// cache so repeated URLs are served from disk.
type Fetcher struct {
	fs  afero.Fs
	cli *resty.Client
	log *zap.Logger
}

// cacheKey derives a cache filename from the whole url, not just its
// basename, so equally named files on different hosts or paths never
// collide. The url's extension is kept for readability.
func (f *Fetcher) cacheKey(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", errors.New("url has no usable filename")
	}
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:8]) + path.Ext(name), nil
}

// Get returns the raw bytes of the image at rawURL.
func (f *Fetcher) Get(rawURL string) ([]byte, error) {
	file, err := f.cacheKey(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url failed: %w", err)
	}

	if f.fs != nil {
		if exists, err := afero.Exists(f.fs, file); err != nil {
			return nil, err
		} else if exists {
			f.log.With(zap.String("url", rawURL)).Debug("serving from cache")
			return afero.ReadFile(f.fs, file)
		}
	}

	resp, err := f.cli.R().Get(rawURL)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = resp.RawBody().Close()
	}()

	if resp.StatusCode() != 200 {
		return nil, errors.Errorf("unexpected status %d for %s", resp.StatusCode(), rawURL)
	}

	bar := progressbar.DefaultBytes(resp.RawResponse.ContentLength, fmt.Sprintf("Downloading %s", rawURL))

	var buf bytes.Buffer
	if _, err := io.Copy(io.MultiWriter(&buf, bar), resp.RawBody()); err != nil {
		return nil, err
	}

	if f.fs != nil {
		if err := afero.WriteFile(f.fs, file, buf.Bytes(), 0644); err != nil {
			return nil, fmt.Errorf("cache write failed: %w", err)
		}
	}

	return buf.Bytes(), nil
}
