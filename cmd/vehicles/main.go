// Command vehicles looks up a Vehicle and a Car from the container and
// reports whether both lookups returned the same instance.
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
	"github.com/xraph/berth/vehicle"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "vehicles:", err)
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
		berth.WithModules(vehicle.Module(cfg.Vehicle.Scope)),
	}

	var recorder *telemetry.Recorder
	if cfg.Metrics.Enabled {
		if recorder, err = telemetry.New(); err != nil {
			return err
		}
		opts = append(opts, berth.WithMiddleware(recorder.Middleware()))
	}

	err = berth.Run(ctx, berth.NewInitializer(opts...), func(ctx context.Context, c berth.Container) error {
		result, err := vehicle.CompareLookups(c)
		if err != nil {
			return err
		}

		logger.Info("lookups compared",
			log.String("scope", cfg.Vehicle.Scope),
			log.String("vehicle", fmt.Sprint(result.Vehicle)),
			log.String("car", result.Car.String()),
		)
		fmt.Println("Is the same vehicle?", result.Same)

		return nil
	})

	if recorder != nil {
		err = multierr.Append(err, recorder.Report(logger))
	}

	return err
}
