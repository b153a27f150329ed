package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"research-summary/internal/research"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocket connection wrapper with mutex for thread-safe writes
type safeWSConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *safeWSConn) WriteJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

func (s *safeWSConn) ReadMessage() (int, []byte, error) {
	return s.conn.ReadMessage()
}

// closeNormal sends a close frame and then closes the connection.
func (s *safeWSConn) closeNormal(reason string) {
	s.mu.Lock()
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
		time.Now().Add(time.Second))
	s.mu.Unlock()
	_ = s.conn.Close()
}

// WSResearchRequest is the single message a client sends after connecting.
type WSResearchRequest struct {
	Query         string `json:"query"`
	CustomContent string `json:"customContent"`
}

// GET /ws/research
//
// The server answers with one research.State message per change and closes
// the connection after the final state.
func WSResearchHandler(svc *research.Service, pacing research.Pacing, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawConn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		conn := &safeWSConn{conn: rawConn}
		defer conn.closeNormal("done")

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req WSResearchRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			_ = conn.WriteJSON(gin.H{"error": "invalid initial payload"})
			return
		}

		var backend research.Backend = svc
		if svc == nil {
			backend = &research.Service{}
		}
		ctrl := research.NewController(backend, pacing)
		ctrl.OnChange(func(s research.State) {
			if err := conn.WriteJSON(s); err != nil {
				log.Debug("websocket write failed", zap.Error(err))
			}
		})

		err = ctrl.Submit(c.Request.Context(), req.Query, req.CustomContent)
		switch {
		case errors.Is(err, research.ErrNothingToSubmit):
			_ = conn.WriteJSON(gin.H{"error": "Query is required"})
		case err != nil:
			log.Error("research request failed", zap.String("query", req.Query), zap.Error(err))
		}
	}
}
