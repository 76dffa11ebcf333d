package main

import (
	"context"
	"net/http"

	flag "github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"veil/pkg/bot"
	"veil/pkg/pipeline"
	"veil/pkg/remote"
	"veil/pkg/store"
)

var listen = flag.String("listen", ":9123", "listen addr")
var workDir = flag.String("work-dir", "", "base directory for saved images")
var tgToken = flag.String("tg-token", "", "telegram bot token")

func main() {
	flag.Parse()

	fx.New(
		fx.Provide(
			func() (*zap.Logger, *http.Server, error) {
				logger, err := zap.NewDevelopment()
				return logger, &http.Server{Addr: *listen}, err
			},
			func(logger *zap.Logger) (*store.Store, error) {
				return store.New(*workDir, logger)
			},
			func(st *store.Store, logger *zap.Logger) *pipeline.Pipeline {
				return pipeline.New(st, logger)
			},
			func(p *pipeline.Pipeline) remote.Converter {
				return p
			},
		),
		fx.Invoke(
			remote.Proxy,
			runBot,
		),
	).Run()
}

func runBot(p *pipeline.Pipeline, logger *zap.Logger, lifecycle fx.Lifecycle) error {
	if *tgToken == "" {
		return nil
	}

	b, err := bot.New(*tgToken, p, logger)
	if err != nil {
		return err
	}

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			b.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			b.Stop()
			return nil
		},
	})

	return nil
}
