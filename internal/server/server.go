// Package server serves sky renders over HTTP and websocket.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-sky/internal/config"
	"github.com/Faultbox/midgard-sky/internal/sky"
	"github.com/Faultbox/midgard-sky/pkg/atmosphere"
)

// Server renders skies on demand.
type Server struct {
	cfg      *config.Config
	log      *zap.Logger
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

// New creates a server using cfg for defaults and limits. log may be nil.
func New(cfg *config.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		cfg: cfg,
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Local preview tool
			},
		},
		mux: http.NewServeMux(),
	}

	s.mux.HandleFunc("/sky.png", s.handleImage)
	s.mux.HandleFunc("/ws", s.handleWebSocket)
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/presets", s.handlePresets)
	return s
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// renderResult is an encoded render.
type renderResult struct {
	png    []byte
	width  int
	height int
	stats  sky.Stats
}

// render resolves req and produces a PNG.
func (s *Server) render(ctx context.Context, req RenderRequest) (renderResult, error) {
	j, err := resolve(s.cfg, req)
	if err != nil {
		return renderResult{}, err
	}
	scatter, err := sky.NewScatterer(j.params, j.azimuth, j.elevation)
	if err != nil {
		return renderResult{}, err
	}
	r, err := sky.NewRenderer(scatter, j.opts, s.log)
	if err != nil {
		return renderResult{}, err
	}

	img, stats, err := r.Render(ctx)
	if err != nil {
		return renderResult{}, err
	}

	var buf bytes.Buffer
	if err := sky.Encode(&buf, img, sky.FormatPNG); err != nil {
		return renderResult{}, err
	}
	return renderResult{
		png:    buf.Bytes(),
		width:  j.opts.Width,
		height: j.opts.Height,
		stats:  stats,
	}, nil
}

// handleImage serves GET /sky.png?azimuth=&elevation=&width=&height=&projection=
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.render(r.Context(), req)
	if err != nil {
		s.log.Warn("render rejected", zap.String("query", r.URL.RawQuery), zap.Error(err))
		status := http.StatusBadRequest
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Render-Time", res.stats.Duration.String())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.png); err != nil {
		s.log.Debug("image write failed", zap.Error(err))
	}
}

// handleHealth provides a simple health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePresets lists the atmosphere presets a request may name.
func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"presets": atmosphere.PresetNames()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Type: "error", Error: msg})
}
