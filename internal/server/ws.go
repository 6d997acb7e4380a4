package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleProgressSocket streams a run's progress events as JSON frames.
// The subscription channel closes when the run reaches a terminal stage,
// which ends the stream with a normal close frame. Subscribing to a
// finished run yields its final event and closes immediately.
func (s *implServer) handleProgressSocket(c *gin.Context) {
	runID := c.Param("id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn(c.Request.Context(), "Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := s.deps.Tracker.Subscribe(runID)
	defer cancel()

	// Reads are drained so a client close is noticed even while the run
	// is quiet.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case e, ok := <-events:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"))
				return
			}
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		case <-clientGone:
			return
		}
	}
}
