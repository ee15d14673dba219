package chat

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins (configure appropriately for production)
	},
}

// Handler upgrades HTTP requests to websocket sessions against the hub.
func Handler(hub *Hub, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn().Err(err).Str("addr", r.RemoteAddr).Msg("websocket upgrade failed")
			return
		}

		client := NewClient(hub, conn, r.RemoteAddr, logger)
		hub.Register(client)

		go client.writePump()
		go client.readPump()
	}
}
