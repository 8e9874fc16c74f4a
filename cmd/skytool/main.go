// skytool is a CLI utility for inspecting atmosphere models.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Faultbox/midgard-sky/internal/config"
	"github.com/Faultbox/midgard-sky/internal/sky"
	"github.com/Faultbox/midgard-sky/pkg/atmosphere"
	"github.com/Faultbox/midgard-sky/pkg/math"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "sample", "s":
		cmdSample(args)
	case "presets", "ls":
		cmdPresets(args)
	case "init-config", "init":
		cmdInitConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`skytool - atmosphere model utility

Usage:
  skytool <command> [options]

Commands:
  sample [options] [az,el ...]     Print radiance for view directions (degrees)
  presets                          List atmosphere presets
  init-config [options] [path]     Write a default config file

Examples:
  skytool sample -elevation 5 0,90 180,10
  skytool sample -preset mars -shadow
  skytool presets
  skytool init-config -preset earth-hazy ./skyconfig.yaml`)
}

// view is a named local view direction.
type view struct {
	name string
	az   float64
	el   float64
}

var defaultViews = []view{
	{"zenith", 0, 90},
	{"north", 0, 0.5},
	{"east", 90, 0.5},
	{"south", 180, 0.5},
	{"west", 270, 0.5},
	{"nadir", 0, -90},
}

func cmdSample(args []string) {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	preset := fs.String("preset", "earth", "Atmosphere preset")
	azimuth := fs.Float64("azimuth", 180, "Sun azimuth in degrees")
	elevation := fs.Float64("elevation", 25, "Sun elevation in degrees")
	primary := fs.Int("primary", 0, "Primary steps (0 = preset value)")
	secondary := fs.Int("secondary", 0, "Secondary steps (0 = preset value)")
	shadow := fs.Bool("shadow", false, "Let the planet block sunlight")
	fs.Parse(args)

	params, err := atmosphere.Preset(*preset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *primary > 0 {
		params.PrimarySteps = *primary
	}
	if *secondary > 0 {
		params.SecondarySteps = *secondary
	}
	params.PlanetShadow = *shadow

	views := defaultViews
	if fs.NArg() > 0 {
		views = nil
		for _, arg := range fs.Args() {
			v, err := parseView(arg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			views = append(views, v)
		}
	} else {
		views = append(views, view{"sun", *azimuth, *elevation})
	}

	scatter, err := sky.NewScatterer(params, *azimuth, *elevation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	frame := atmosphere.FrameAt(params)

	fmt.Printf("Preset: %s  Sun: az %.1f el %.1f  Steps: %d/%d\n",
		*preset, *azimuth, *elevation, params.PrimarySteps, params.SecondarySteps)
	fmt.Println()
	fmt.Printf("  %-10s %7s %7s   %-30s %-24s %s\n", "view", "az", "el", "radiance (r g b)", "transmittance", "ground")
	for _, v := range views {
		dir := frame.ToWorld(atmosphere.SunDirection(v.az, v.el))
		rad := scatter.Radiance(dir)
		tr := scatter.Transmittance(dir)
		fmt.Printf("  %-10s %7.2f %7.2f   %-30s %-24s %v\n",
			v.name, v.az, v.el, formatVec(rad, 4), formatVec(tr, 3), scatter.HitsPlanet(dir))
	}
}

func parseView(s string) (view, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return view{}, fmt.Errorf("view %q must be az,el", s)
	}
	az, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return view{}, fmt.Errorf("view %q: bad azimuth", s)
	}
	el, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return view{}, fmt.Errorf("view %q: bad elevation", s)
	}
	return view{name: s, az: az, el: el}, nil
}

func formatVec(v math.Vec3, prec int) string {
	return fmt.Sprintf("%.*f %.*f %.*f", prec, v.X, prec, v.Y, prec, v.Z)
}

func cmdPresets(args []string) {
	fmt.Printf("  %-12s %10s %10s %9s %9s %6s\n", "name", "radius km", "shell km", "H_R km", "H_M km", "g")
	for _, name := range atmosphere.PresetNames() {
		p, _ := atmosphere.Preset(name)
		fmt.Printf("  %-12s %10.1f %10.1f %9.2f %9.2f %6.3f\n",
			name,
			p.PlanetRadius/1e3,
			(p.AtmosphereRadius-p.PlanetRadius)/1e3,
			p.RayleighScaleHeight/1e3,
			p.MieScaleHeight/1e3,
			p.MieG)
	}
}

func cmdInitConfig(args []string) {
	fs := flag.NewFlagSet("init-config", flag.ExitOnError)
	preset := fs.String("preset", "earth", "Atmosphere preset to start from")
	force := fs.Bool("force", false, "Overwrite an existing file")
	fs.Parse(args)

	path := filepath.Join(config.ConfigDir(), "config.yaml")
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	if _, err := os.Stat(path); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: %s already exists (use -force to overwrite)\n", path)
		os.Exit(1)
	}

	cfg := config.Default()
	params, err := atmosphere.Preset(*preset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg.Preset = strings.ToLower(*preset)
	cfg.Atmosphere = params

	if err := cfg.SaveTo(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", path)
}
