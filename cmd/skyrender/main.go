// skyrender renders a single sky image to PNG or BMP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-sky/internal/config"
	"github.com/Faultbox/midgard-sky/internal/logger"
	"github.com/Faultbox/midgard-sky/internal/sky"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile, cfg.Logging.JSON); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Midgard Sky Render ===",
		zap.String("preset", cfg.Preset),
		zap.Float64("sun_azimuth", cfg.Sun.Azimuth),
		zap.Float64("sun_elevation", cfg.Sun.Elevation))
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	path, err := run(ctx, cfg)
	if err != nil {
		logger.Error("render failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("image written", zap.String("path", path))
}

func run(ctx context.Context, cfg *config.Config) (string, error) {
	scatter, err := sky.NewScatterer(cfg.Atmosphere, cfg.Sun.Azimuth, cfg.Sun.Elevation)
	if err != nil {
		return "", fmt.Errorf("building atmosphere: %w", err)
	}

	r, err := sky.NewRenderer(scatter, sky.OptionsFromConfig(cfg), logger.Named("render"))
	if err != nil {
		return "", err
	}

	img, _, err := r.Render(ctx)
	if err != nil {
		return "", err
	}

	return sky.NewOutput(cfg.Render.OutputDir, "sky").Save(img, cfg.Render.Output)
}
