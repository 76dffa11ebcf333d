package pipeline

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"veil/pkg/fetch"
	"veil/pkg/pixbuf"
	"veil/pkg/store"
	"veil/pkg/transform"
)

func New(st *store.Store, logger *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:   st,
		log:     logger,
		history: NewHistory(),
		// defaults
		method: transform.MethodLuminosity,
		factor: 1.0,
		ref:    transform.RefWhite,
		fill:   transform.FillGray,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Pipeline sequences load, grayscale conversion, brightness-to-alpha
// mapping and save. The transforms themselves stay pure; the pipeline
// only holds the settings shared by the CLI, the RPC service and the
// bot front end.
type Pipeline struct {
	l sync.RWMutex

	store   *store.Store
	fetcher *fetch.Fetcher
	log     *zap.Logger
	history *History

	method    transform.GrayMethod
	factor    float64
	ref       transform.Reference
	fill      transform.RGBFill
	keepAlpha bool
	keepColor bool
}

func (p *Pipeline) History() *History {
	return p.history
}

func (p *Pipeline) SetMethod(m transform.GrayMethod) {
	p.l.Lock()
	defer p.l.Unlock()
	p.method = m
}

func (p *Pipeline) SetReference(r transform.Reference) {
	p.l.Lock()
	defer p.l.Unlock()
	p.ref = r
}

func (p *Pipeline) SetFactor(f float64) error {
	if f < 0 || f > 1 {
		return errors.Errorf("factor %v out of range [0, 1]", f)
	}
	p.l.Lock()
	defer p.l.Unlock()
	p.factor = f
	return nil
}

func (p *Pipeline) Describe() string {
	p.l.RLock()
	defer p.l.RUnlock()
	return fmt.Sprintf("method: %s, reference: %s, factor: %.2f", p.method, p.ref, p.factor)
}

// Convert runs the in-memory part of the pipeline: a color buffer in,
// an RGBA buffer with brightness-derived alpha out.
func (p *Pipeline) Convert(src *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	p.l.RLock()
	method, factor, ref, fill := p.method, p.factor, p.ref, p.fill
	keepAlpha, keepColor := p.keepAlpha, p.keepColor
	p.l.RUnlock()

	work := src
	if factor < 1 {
		blended, err := transform.Desaturate(src, factor, method)
		if err != nil {
			return nil, err
		}
		work = blended
	}

	gray, err := transform.NewGrayscaler(transform.WithMethod(method)).Apply(work)
	if err != nil {
		return nil, fmt.Errorf("grayscale failed: %w", err)
	}

	// Carry the source alpha along so the mapper can subtract from it
	// (and keep-alpha can preserve it) per pixel.
	brightness := gray
	if src.C == pixbuf.RGBA {
		ga, err := pixbuf.New(src.W, src.H, pixbuf.GrayAlpha)
		if err != nil {
			return nil, err
		}
		n := src.W * src.H
		for i := 0; i < n; i++ {
			ga.Pix[i*2] = gray.Pix[i]
			ga.Pix[i*2+1] = src.Pix[i*4+3]
		}
		brightness = ga
	}

	mopts := []transform.AlphaOption{
		transform.WithReference(ref),
		transform.WithFill(fill),
	}
	if keepAlpha {
		mopts = append(mopts, transform.WithKeepAlpha())
	}
	if keepColor {
		mopts = append(mopts, transform.WithSourceColor(src))
	}

	out, err := transform.NewAlphaMapper(mopts...).Apply(brightness)
	if err != nil {
		return nil, fmt.Errorf("alpha map failed: %w", err)
	}

	return out, nil
}

// Run converts a single image end to end. input is a local path or an
// http(s) URL; the returned path is where the result actually landed.
func (p *Pipeline) Run(input, output string) (string, error) {
	src, err := p.load(input)
	if err != nil {
		return "", err
	}

	out, err := p.Convert(src)
	if err != nil {
		return "", err
	}

	written, err := p.store.Save(output, out)
	if err != nil {
		return "", fmt.Errorf("save image failed: %w", err)
	}

	p.history.Add(input, written, out.W, out.H)
	p.log.With(
		zap.String("input", input),
		zap.String("output", written),
		zap.Int("width", out.W),
		zap.Int("height", out.H),
	).Info("converted")

	return written, nil
}

func (p *Pipeline) load(input string) (*pixbuf.Buffer, error) {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		if p.fetcher == nil {
			return nil, errors.New("remote inputs need a fetcher")
		}
		bs, err := p.fetcher.Get(input)
		if err != nil {
			return nil, fmt.Errorf("download image failed: %w", err)
		}
		return p.store.Decode(bs)
	}
	return p.store.Load(input)
}
