package remote

import (
	"bytes"
	"context"
	"image/png"
	"log"
	"net/http"
	"net/rpc"

	"go.uber.org/fx"

	"veil/pkg/pixbuf"
)

// Proxy registers the conversion service and ties the HTTP server to
// the fx lifecycle.
func Proxy(pipe Converter, srv *http.Server, lifecycle fx.Lifecycle) error {
	svc := &Service{pipe: pipe}
	if err := rpc.Register(svc); err != nil {
		return err
	}

	rpc.HandleHTTP()

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != http.ErrServerClosed {
					log.Fatal(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return nil
}

type Service struct {
	pipe Converter
}

func (s *Service) Convert(req *ConvertRequest, resp *ConvertResponse) error {
	img, err := png.Decode(bytes.NewBuffer(req.Image))
	if err != nil {
		return err
	}

	out, err := s.pipe.Convert(pixbuf.FromImage(img))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out.Image()); err != nil {
		return err
	}

	resp.Image = buf.Bytes()
	return nil
}
