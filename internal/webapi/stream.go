package webapi

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/kayz/codeloom/internal/logger"
	"github.com/kayz/codeloom/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The stream endpoint is same-origin in practice but the UI may be
	// served from a dev host, so origin checks stay permissive.
	CheckOrigin: func(*http.Request) bool { return true },
}

type streamEvent struct {
	Type      string `json:"type"` // "turn" | "result" | "error"
	Role      string `json:"role,omitempty"`
	Turn      int    `json:"turn,omitempty"`
	Budget    int    `json:"budget,omitempty"`
	Artifacts int    `json:"artifacts,omitempty"`
	Error     string `json:"error,omitempty"`

	Result *generateResponse `json:"result,omitempty"`
}

// handleGenerateStream runs one pipeline over a WebSocket, pushing a
// "turn" event after every completed turn and a final "result" event.
// Turns run sequentially, so events are written from a single goroutine.
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	var req generateRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(streamEvent{Type: "error", Error: "invalid request"})
		return
	}
	if err := normalizeGenerateRequest(&req); err != nil {
		_ = conn.WriteJSON(streamEvent{Type: "error", Error: err.Error()})
		return
	}

	observer := func(ev pipeline.TurnEvent) {
		err := conn.WriteJSON(streamEvent{
			Type:      "turn",
			Role:      ev.Role,
			Turn:      ev.Turn,
			Budget:    ev.Budget,
			Artifacts: ev.Artifacts,
		})
		if err != nil {
			logger.Debugf("stream write failed, client gone: %v", err)
		}
	}

	resp, err := s.executeRun(r.Context(), req, observer)
	if err != nil {
		_ = conn.WriteJSON(streamEvent{Type: "error", Error: err.Error()})
		return
	}
	_ = conn.WriteJSON(streamEvent{Type: "result", Result: &resp})
}
