package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory/apps/go-server/internal/game"
	"github.com/robalobadob/memory/apps/go-server/internal/table"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

// wsIn is a command from the render layer.
type wsIn struct {
	Type  string `json:"type"` // "click" | "reset"
	Index *int   `json:"index,omitempty"`
}

// wsOut is a frame pushed to the render layer.
type wsOut struct {
	Type string    `json:"type"` // always "view"
	View game.View `json:"view"`
}

// handleWS streams views of one table and accepts clicks/resets.
// The current view is sent on connect, then one frame per mutation,
// including the delayed mismatch completion.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	t := tableFrom(r)
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("table", t.ID).Msg("ws upgrade failed")
		return
	}

	views, unsubscribe := t.Subscribe()
	go writePump(conn, views)
	readPump(conn, t)
	unsubscribe()
}

//read
func readPump(conn *websocket.Conn, t *table.Table) {
	defer conn.Close()

	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("table", t.ID).Msg("ws read")
			}
			return
		}
		var in wsIn
		if err := json.Unmarshal(msg, &in); err != nil {
			log.Debug().Err(err).Str("table", t.ID).Msg("ws bad frame")
			continue
		}
		switch in.Type {
		case "click":
			if in.Index != nil {
				t.Click(*in.Index)
			}
		case "reset":
			t.Reset()
		default:
			log.Debug().Str("table", t.ID).Str("type", in.Type).Msg("ws unknown command")
		}
	}
}

//write
func writePump(conn *websocket.Conn, views <-chan game.View) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case v, ok := <-views:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "table closed"))
				return
			}
			if err := conn.WriteJSON(wsOut{Type: "view", View: v}); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
