package server

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/Faultbox/midgard-sky/internal/config"
	"github.com/Faultbox/midgard-sky/internal/sky"
	"github.com/Faultbox/midgard-sky/pkg/atmosphere"
)

// RenderRequest asks for one sky image. Zero or missing fields fall back to
// the server's config.
type RenderRequest struct {
	Preset       string   `json:"preset"`
	Azimuth      *float64 `json:"azimuth"`
	Elevation    *float64 `json:"elevation"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Projection   string   `json:"projection"`
	Exposure     float64  `json:"exposure"`
	Yaw          *float64 `json:"yaw"`
	Pitch        *float64 `json:"pitch"`
	FOV          float64  `json:"fov"`
	PlanetShadow *bool    `json:"planetShadow"`
}

// RenderResponse follows the binary image frame on the websocket.
type RenderResponse struct {
	Type      string    `json:"type"` // "render"
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Bytes     int       `json:"bytes"`
	Stats     sky.Stats `json:"stats"`
	ElapsedMs int64     `json:"elapsedMs"`
}

// ErrorResponse reports a rejected request.
type ErrorResponse struct {
	Type  string `json:"type"` // "error"
	Error string `json:"error"`
}

// job is a fully resolved render request.
type job struct {
	params    atmosphere.Params
	azimuth   float64
	elevation float64
	opts      sky.Options
}

// resolve merges req over cfg, clamping the image to the server limits.
func resolve(cfg *config.Config, req RenderRequest) (job, error) {
	j := job{
		params:    cfg.Atmosphere,
		azimuth:   cfg.Sun.Azimuth,
		elevation: cfg.Sun.Elevation,
		opts:      sky.OptionsFromConfig(cfg),
	}

	if req.Preset != "" {
		params, err := atmosphere.Preset(req.Preset)
		if err != nil {
			return job{}, err
		}
		params.PlanetShadow = j.params.PlanetShadow
		j.params = params
	}
	if req.PlanetShadow != nil {
		j.params.PlanetShadow = *req.PlanetShadow
	}
	if req.Azimuth != nil {
		j.azimuth = *req.Azimuth
	}
	if req.Elevation != nil {
		if *req.Elevation < -90 || *req.Elevation > 90 {
			return job{}, fmt.Errorf("elevation %v out of range [-90, 90]", *req.Elevation)
		}
		j.elevation = *req.Elevation
	}

	if req.Width < 0 || req.Height < 0 {
		return job{}, fmt.Errorf("negative image size %dx%d", req.Width, req.Height)
	}
	if req.Width > 0 {
		j.opts.Width = req.Width
	}
	if req.Height > 0 {
		j.opts.Height = req.Height
	}
	j.opts.Width = min(j.opts.Width, cfg.Server.MaxWidth)
	j.opts.Height = min(j.opts.Height, cfg.Server.MaxHeight)

	if req.Projection != "" {
		j.opts.Projection = req.Projection
	}
	if req.Exposure > 0 {
		j.opts.Exposure = req.Exposure
	}
	if req.Yaw != nil {
		j.opts.Camera.Yaw = *req.Yaw
	}
	if req.Pitch != nil {
		j.opts.Camera.Pitch = *req.Pitch
	}
	if req.FOV > 0 {
		j.opts.Camera.FOV = req.FOV
	}
	return j, nil
}

// parseQuery reads a RenderRequest from URL query parameters.
func parseQuery(q url.Values) (RenderRequest, error) {
	var req RenderRequest
	var err error

	req.Preset = q.Get("preset")
	req.Projection = q.Get("projection")
	if req.Azimuth, err = parseOptionalFloat(q, "azimuth"); err != nil {
		return req, err
	}
	if req.Elevation, err = parseOptionalFloat(q, "elevation"); err != nil {
		return req, err
	}
	if req.Yaw, err = parseOptionalFloat(q, "yaw"); err != nil {
		return req, err
	}
	if req.Pitch, err = parseOptionalFloat(q, "pitch"); err != nil {
		return req, err
	}
	if req.Width, err = parseIntParam(q, "width"); err != nil {
		return req, err
	}
	if req.Height, err = parseIntParam(q, "height"); err != nil {
		return req, err
	}
	if v, err := parseOptionalFloat(q, "exposure"); err != nil {
		return req, err
	} else if v != nil {
		req.Exposure = *v
	}
	if v, err := parseOptionalFloat(q, "fov"); err != nil {
		return req, err
	} else if v != nil {
		req.FOV = *v
	}
	if s := q.Get("shadow"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return req, fmt.Errorf("invalid shadow parameter: %s", s)
		}
		req.PlanetShadow = &b
	}
	return req, nil
}

func parseOptionalFloat(q url.Values, name string) (*float64, error) {
	s := q.Get(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s parameter: %s", name, s)
	}
	return &v, nil
}

func parseIntParam(q url.Values, name string) (int, error) {
	s := q.Get(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter: %s", name, s)
	}
	return v, nil
}
