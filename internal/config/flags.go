package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagPreset     = flag.String("preset", "", "Atmosphere preset (earth, earth-hazy, mars)")
	flagAzimuth    = flag.Float64("azimuth", -1, "Sun azimuth in degrees")
	flagElevation  = flag.Float64("elevation", -91, "Sun elevation in degrees")
	flagWidth      = flag.Int("width", 0, "Image width")
	flagHeight     = flag.Int("height", 0, "Image height")
	flagProjection = flag.String("projection", "", "Projection: fisheye, panorama or perspective")
	flagOutput     = flag.String("o", "", "Output image path (.png or .bmp)")
	flagWorkers    = flag.Int("workers", -1, "Render workers (0 = one per CPU)")
	flagAddr       = flag.String("addr", "", "Preview server listen address")
	flagShadow     = flag.Bool("planet-shadow", false, "Let the planet block sunlight on secondary rays")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// presetFlag returns the preset requested on the command line, if any.
func presetFlag() string {
	return *flagPreset
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagAzimuth >= 0 {
		cfg.Sun.Azimuth = *flagAzimuth
	}
	if *flagElevation >= -90 {
		cfg.Sun.Elevation = *flagElevation
	}
	if *flagWidth > 0 {
		cfg.Render.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Render.Height = *flagHeight
	}
	if *flagProjection != "" {
		cfg.Render.Projection = *flagProjection
	}
	if *flagOutput != "" {
		cfg.Render.Output = *flagOutput
	}
	if *flagWorkers >= 0 {
		cfg.Render.Workers = *flagWorkers
	}
	if *flagAddr != "" {
		cfg.Server.Addr = *flagAddr
	}
	if *flagShadow {
		cfg.Atmosphere.PlanetShadow = true
	}
}
