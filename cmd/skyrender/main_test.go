package main

import (
	"context"
	"errors"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "golang.org/x/image/bmp"

	"github.com/Faultbox/midgard-sky/internal/config"
)

func smallConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Render.Width = 16
	cfg.Render.Height = 8
	cfg.Render.Workers = 2
	cfg.Render.OutputDir = t.TempDir()
	cfg.Atmosphere.PrimarySteps = 8
	cfg.Atmosphere.SecondarySteps = 4
	return cfg
}

func TestRun(t *testing.T) {
	tests := []struct {
		name   string
		output string
		format string
	}{
		{"png", "sky.png", "png"},
		{"bmp", "nested/sky.bmp", "bmp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig(t)
			cfg.Render.Output = filepath.Join(t.TempDir(), tt.output)

			path, err := run(context.Background(), cfg)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if path != cfg.Render.Output {
				t.Errorf("path = %s, want %s", path, cfg.Render.Output)
			}

			f, err := os.Open(path)
			if err != nil {
				t.Fatalf("opening output: %v", err)
			}
			defer f.Close()
			img, format, err := image.Decode(f)
			if err != nil {
				t.Fatalf("decoding output: %v", err)
			}
			if format != tt.format {
				t.Errorf("format = %s, want %s", format, tt.format)
			}
			if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 8 {
				t.Errorf("bounds = %v", img.Bounds())
			}
		})
	}
}

func TestRunTimestampedName(t *testing.T) {
	cfg := smallConfig(t)

	path, err := run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if filepath.Dir(path) != cfg.Render.OutputDir {
		t.Errorf("expected %s inside %s", path, cfg.Render.OutputDir)
	}
	if name := filepath.Base(path); !strings.HasPrefix(name, "sky_") || filepath.Ext(name) != ".png" {
		t.Errorf("unexpected file name %s", name)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestRunErrors(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		cfg := smallConfig(t)
		cfg.Render.Output = filepath.Join(t.TempDir(), "sky.png")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := run(ctx, cfg); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if _, err := os.Stat(cfg.Render.Output); !os.IsNotExist(err) {
			t.Error("cancelled render should not write a file")
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		cfg := smallConfig(t)
		cfg.Render.Output = filepath.Join(t.TempDir(), "sky.jpg")
		if _, err := run(context.Background(), cfg); err == nil {
			t.Error("expected an error for .jpg output")
		}
	})

	t.Run("bad projection", func(t *testing.T) {
		cfg := smallConfig(t)
		cfg.Render.Projection = "cube"
		if _, err := run(context.Background(), cfg); err == nil {
			t.Error("expected an error for an unknown projection")
		}
	})
}
