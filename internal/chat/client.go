package chat

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size in bytes.
	maxMessageSize = 4096

	// Outbound buffer per client. When it fills, further messages to that
	// client are dropped rather than blocking the publisher.
	sendBufferSize = 256
)

// Client is one live websocket session against the relay.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	addr string
	log  zerolog.Logger
}

// NewClient wraps a websocket connection. The caller must Register the
// client with the hub and start both pumps.
func NewClient(hub *Hub, conn *websocket.Conn, addr string, logger zerolog.Logger) *Client {
	id := uuid.New().String()
	return &Client{
		id:   id,
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		addr: addr,
		log:  logger.With().Str("conn", id).Logger(),
	}
}

// readPump consumes inbound events until the transport fails or closes,
// then unregisters the client. Malformed events are dropped silently; a bad
// payload from one client must never take the relay down.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debug().Err(err).Msg("unexpected close")
			}
			return
		}
		c.handleEvent(raw)
	}
}

func (c *Client) handleEvent(raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.log.Debug().Err(err).Msg("dropping malformed event")
		return
	}

	switch env.Event {
	case EventJoinRoom:
		room, ok := decodeRoomName(env.Data)
		if !ok {
			c.log.Debug().Msg("dropping join with no room name")
			return
		}
		c.hub.Join(c, room)

	case EventSendMessage:
		var msg Message
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			c.log.Debug().Err(err).Msg("dropping malformed message")
			return
		}
		c.hub.Publish(c, msg)

	default:
		c.log.Debug().Str("event", env.Event).Msg("dropping unknown event")
	}
}

// writePump drains the send channel to the transport and keeps the
// connection alive with periodic pings. It exits when the hub closes the
// send channel or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
