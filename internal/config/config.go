// Package config handles sky renderer configuration loading and management.
package config

import (
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/Faultbox/midgard-sky/pkg/atmosphere"
)

// Config holds all renderer settings.
type Config struct {
	Preset     string            `yaml:"preset"` // Base atmosphere profile, overlaid by Atmosphere
	Atmosphere atmosphere.Params `yaml:"atmosphere"`
	Sun        SunConfig         `yaml:"sun"`
	Render     RenderConfig      `yaml:"render"`
	Camera     CameraConfig      `yaml:"camera"`
	Server     ServerConfig      `yaml:"server"`
	Logging    LoggingConfig     `yaml:"logging"`
}

// SunConfig places the sun in the sky above the eye, in degrees.
type SunConfig struct {
	Azimuth   float64 `yaml:"azimuth"`
	Elevation float64 `yaml:"elevation"`
}

// RenderConfig holds image output settings.
type RenderConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Projection string  `yaml:"projection"` // fisheye, panorama or perspective
	Exposure   float64 `yaml:"exposure"`
	Gamma      float64 `yaml:"gamma"`
	Workers    int     `yaml:"workers"` // 0 = one per CPU
	SunDisk    bool    `yaml:"sun_disk"`
	Output     string  `yaml:"output"`     // Explicit file path, .png or .bmp
	OutputDir  string  `yaml:"output_dir"` // Used with a timestamped name when Output is empty
}

// CameraConfig aims the perspective projection, in degrees.
type CameraConfig struct {
	Yaw   float64 `yaml:"yaw"`
	Pitch float64 `yaml:"pitch"`
	FOV   float64 `yaml:"fov"`
}

// ServerConfig holds preview server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	MaxWidth     int           `yaml:"max_width"`
	MaxHeight    int           `yaml:"max_height"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Preset:     "earth",
		Atmosphere: atmosphere.DefaultParams(),
		Sun: SunConfig{
			Azimuth:   180,
			Elevation: 25,
		},
		Render: RenderConfig{
			Width:      512,
			Height:     512,
			Projection: "fisheye",
			Exposure:   1.0,
			Gamma:      2.2,
			Workers:    0,
			SunDisk:    true,
			Output:     "",
			OutputDir:  "renders",
		},
		Camera: CameraConfig{
			Yaw:   180,
			Pitch: 10,
			FOV:   75,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8088",
			MaxWidth:     1024,
			MaxHeight:    1024,
			WriteTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks every section and reports all problems together.
func (c *Config) Validate() error {
	var err error
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("render: size %dx%d must be positive", c.Render.Width, c.Render.Height))
	}
	switch c.Render.Projection {
	case "fisheye", "panorama", "perspective":
	default:
		err = multierr.Append(err, fmt.Errorf("render: unknown projection %q", c.Render.Projection))
	}
	if c.Render.Exposure <= 0 {
		err = multierr.Append(err, fmt.Errorf("render: exposure %v must be positive", c.Render.Exposure))
	}
	if c.Render.Workers < 0 {
		err = multierr.Append(err, fmt.Errorf("render: workers %d must not be negative", c.Render.Workers))
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		err = multierr.Append(err, fmt.Errorf("camera: fov %v must be within (0, 180)", c.Camera.FOV))
	}
	if c.Server.MaxWidth <= 0 || c.Server.MaxHeight <= 0 {
		err = multierr.Append(err, fmt.Errorf("server: max size %dx%d must be positive", c.Server.MaxWidth, c.Server.MaxHeight))
	}
	if c.Server.WriteTimeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("server: write_timeout %v must be positive", c.Server.WriteTimeout))
	}
	return multierr.Append(err, c.Atmosphere.Validate())
}
