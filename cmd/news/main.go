// Command news hands a headline to the Journalist, which fires it to every
// string observer.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/xraph/go-utils/log"
	"go.uber.org/multierr"

	"github.com/xraph/berth"
	"github.com/xraph/berth/internal/config"
	"github.com/xraph/berth/internal/telemetry"
	"github.com/xraph/berth/news"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "news:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}

	opts := []berth.InitOption{
		berth.WithLogger(logger),
		berth.WithMiddleware(berth.NewLoggingMiddleware(logger)),
		berth.WithModules(news.Module(cfg.News.Subscribe)),
	}

	var recorder *telemetry.Recorder
	if cfg.Metrics.Enabled {
		if recorder, err = telemetry.New(); err != nil {
			return err
		}
		opts = append(opts, berth.WithMiddleware(recorder.Middleware()))
	}

	err = berth.Run(ctx, berth.NewInitializer(opts...), func(ctx context.Context, c berth.Container) error {
		logger.Info("announcing",
			log.String("headline", cfg.News.Headline),
			log.Int("observers", len(berth.Observers[string](c))),
		)

		return news.Announce(ctx, c, cfg.News.Headline)
	})

	if recorder != nil {
		err = multierr.Append(err, recorder.Report(logger))
	}

	return err
}
