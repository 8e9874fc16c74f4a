package sky

import (
	"context"
	"fmt"
	"image"
	"image/color"
	gomath "math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-sky/internal/config"
	"github.com/Faultbox/midgard-sky/pkg/atmosphere"
	"github.com/Faultbox/midgard-sky/pkg/math"
)

// sunAngularRadius is the apparent radius of the solar disk, in radians.
const sunAngularRadius = 0.2666 * gomath.Pi / 180

// Options controls how a Renderer turns radiance into pixels.
type Options struct {
	Width      int
	Height     int
	Projection string
	Camera     Camera
	Exposure   float64
	Gamma      float64
	Workers    int
	SunDisk    bool
}

// OptionsFromConfig extracts render options from the loaded config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Width:      cfg.Render.Width,
		Height:     cfg.Render.Height,
		Projection: cfg.Render.Projection,
		Camera: Camera{
			Yaw:   cfg.Camera.Yaw,
			Pitch: cfg.Camera.Pitch,
			FOV:   cfg.Camera.FOV,
		},
		Exposure: cfg.Render.Exposure,
		Gamma:    cfg.Render.Gamma,
		Workers:  cfg.Render.Workers,
		SunDisk:  cfg.Render.SunDisk,
	}
}

// Stats summarizes a render.
type Stats struct {
	Pixels   int           `json:"pixels"`
	Outside  int           `json:"outside"` // Pixels the projection leaves empty
	Ground   int           `json:"ground"`  // Pixels whose view ray hits the planet
	Rows     int           `json:"rows"`
	Workers  int           `json:"workers"`
	Peak     float64       `json:"peak"` // Largest radiance channel before exposure
	Duration time.Duration `json:"duration"`
}

func (s *Stats) merge(o Stats) {
	s.Pixels += o.Pixels
	s.Outside += o.Outside
	s.Ground += o.Ground
	s.Rows += o.Rows
	s.Peak = gomath.Max(s.Peak, o.Peak)
}

// NewScatterer places the sun at azimuth/elevation degrees above the eye of
// p and builds the Scatterer for it.
func NewScatterer(p atmosphere.Params, azimuth, elevation float64) (*atmosphere.Scatterer, error) {
	sun := atmosphere.FrameAt(p).ToWorld(atmosphere.SunDirection(azimuth, elevation))
	return atmosphere.New(sun, p)
}

// Renderer shades images of the sky seen from the Scatterer's eye.
type Renderer struct {
	scatter *atmosphere.Scatterer
	frame   atmosphere.Frame
	proj    Projection
	opts    Options
	log     *zap.Logger
}

// NewRenderer validates opts and prepares a renderer. log may be nil.
func NewRenderer(s *atmosphere.Scatterer, opts Options, log *zap.Logger) (*Renderer, error) {
	if s == nil {
		return nil, fmt.Errorf("renderer needs a scatterer")
	}
	if opts.Exposure <= 0 {
		return nil, fmt.Errorf("invalid exposure %v", opts.Exposure)
	}
	proj, err := NewProjection(opts.Projection, opts.Width, opts.Height, opts.Camera)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Renderer{
		scatter: s,
		frame:   atmosphere.FrameAt(s.Params()),
		proj:    proj,
		opts:    opts,
		log:     log,
	}, nil
}

// Render shades every pixel. Cancelling ctx stops work between rows; the
// partial image is discarded and ctx's error returned.
func (r *Renderer) Render(ctx context.Context) (*image.NRGBA, Stats, error) {
	start := time.Now()
	img := image.NewNRGBA(image.Rect(0, 0, r.opts.Width, r.opts.Height))

	pool := NewWorkerPool(r.opts.Height, r.opts.Workers, func(y int) Stats {
		if ctx.Err() != nil {
			return Stats{}
		}
		return r.shadeRow(img, y)
	})
	pool.Start()
	for y := 0; y < r.opts.Height; y++ {
		pool.SubmitTask(RowTask{Y: y})
	}
	pool.Stop()

	stats := Stats{Workers: pool.NumWorkers()}
	for {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		stats.merge(result.Stats)
	}
	stats.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		r.log.Warn("render cancelled",
			zap.Int("rows_done", stats.Rows),
			zap.Int("rows", r.opts.Height),
			zap.Error(err))
		return nil, stats, err
	}

	r.log.Info("render complete",
		zap.String("projection", r.opts.Projection),
		zap.Int("width", r.opts.Width),
		zap.Int("height", r.opts.Height),
		zap.Int("workers", stats.Workers),
		zap.Int("ground_pixels", stats.Ground),
		zap.Float64("peak", stats.Peak),
		zap.Duration("elapsed", stats.Duration))
	return img, stats, nil
}

func (r *Renderer) shadeRow(img *image.NRGBA, y int) Stats {
	stats := Stats{Rows: 1}
	for x := 0; x < r.opts.Width; x++ {
		stats.Pixels++
		local, ok := r.proj.Direction(float64(x)+0.5, float64(y)+0.5)
		if !ok {
			stats.Outside++
			img.SetNRGBA(x, y, color.NRGBA{})
			continue
		}

		view := r.frame.ToWorld(local)
		if r.scatter.HitsPlanet(view) {
			stats.Ground++
		}
		radiance := r.Shade(view)
		stats.Peak = gomath.Max(stats.Peak, radiance.MaxComponent())
		img.SetNRGBA(x, y, r.toColor(radiance))
	}
	return stats
}

// Shade returns the radiance seen along a planet-space view direction,
// including the sun disk when enabled.
func (r *Renderer) Shade(view math.Vec3) math.Vec3 {
	radiance := r.scatter.Radiance(view)
	if r.opts.SunDisk && r.inSunDisk(view) {
		sun := r.scatter.Transmittance(view).Scale(r.scatter.Params().SunIntensity)
		radiance = radiance.Add(sun)
	}
	return radiance
}

func (r *Renderer) inSunDisk(view math.Vec3) bool {
	view = view.Normalize()
	if view.IsZero() || r.scatter.HitsPlanet(view) {
		return false
	}
	return view.Dot(r.scatter.Sun()) >= gomath.Cos(sunAngularRadius)
}

func (r *Renderer) toColor(radiance math.Vec3) color.NRGBA {
	c := atmosphere.EncodeGamma(atmosphere.Expose(radiance, r.opts.Exposure), r.opts.Gamma)
	return color.NRGBA{
		R: uint8(gomath.Round(c.X * 255)),
		G: uint8(gomath.Round(c.Y * 255)),
		B: uint8(gomath.Round(c.Z * 255)),
		A: 255,
	}
}
