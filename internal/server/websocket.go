package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// maxMessageSize bounds a single incoming request frame.
const maxMessageSize = 64 << 10

// handleWebSocket answers each JSON RenderRequest with a binary PNG frame
// followed by a JSON RenderResponse, or a JSON ErrorResponse.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)
	// Requests may be minutes apart; drop the HTTP read deadline
	conn.SetReadDeadline(time.Time{})

	log := s.log.With(zap.String("remote", r.RemoteAddr))
	log.Debug("websocket connected")

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			if err := s.sendJSON(conn, ErrorResponse{Type: "error", Error: "expected a JSON text message"}); err != nil {
				return
			}
			continue
		}

		var req RenderRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if err := s.sendJSON(conn, ErrorResponse{Type: "error", Error: "invalid request: " + err.Error()}); err != nil {
				return
			}
			continue
		}

		start := time.Now()
		res, err := s.render(r.Context(), req)
		if err != nil {
			log.Debug("render rejected", zap.Error(err))
			if err := s.sendJSON(conn, ErrorResponse{Type: "error", Error: err.Error()}); err != nil {
				return
			}
			continue
		}

		conn.SetWriteDeadline(time.Now().Add(s.cfg.Server.WriteTimeout))
		if err := conn.WriteMessage(websocket.BinaryMessage, res.png); err != nil {
			log.Warn("websocket write error", zap.Error(err))
			return
		}
		resp := RenderResponse{
			Type:      "render",
			Width:     res.width,
			Height:    res.height,
			Bytes:     len(res.png),
			Stats:     res.stats,
			ElapsedMs: time.Since(start).Milliseconds(),
		}
		if err := s.sendJSON(conn, resp); err != nil {
			return
		}
	}
}

func (s *Server) sendJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(s.cfg.Server.WriteTimeout))
	if err := conn.WriteJSON(v); err != nil {
		s.log.Warn("websocket write error", zap.Error(err))
		return err
	}
	return nil
}
