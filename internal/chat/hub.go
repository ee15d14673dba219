// Package chat implements the course discussion relay: websocket clients
// join named rooms and messages published to a room are forwarded to every
// other member. Nothing is persisted; rooms exist only while someone is in
// them.
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/Coder-vibhi/baua-lms/internal/metrics"
)

// Hub is the connection registry and room-membership map shared by all
// clients. A single RWMutex guards both maps; publishes iterate a room's
// member set under the read lock so joins and fan-out never race.
//
// Hubs are plain values created with NewHub and injected into handlers, so
// tests can run isolated registries side by side.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool
	log     zerolog.Logger
}

// NewHub creates an empty registry.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		rooms:   make(map[string]map[*Client]bool),
		log:     logger,
	}
}

// Register adds a freshly connected client. The client belongs to no room
// until it sends a join_room event.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.ChatConnectedClients.Inc()
	h.log.Debug().Str("conn", c.id).Str("addr", c.addr).Int("total", total).Msg("client connected")
}

// Unregister removes the client from the registry and from every room it
// joined. Rooms left empty are deleted; absence of an entry means empty.
// Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for name, members := range h.rooms {
		if members[c] {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, name)
				metrics.ChatActiveRooms.Dec()
			}
		}
	}
	total := len(h.clients)
	h.mu.Unlock()

	// Closed outside the lock; publishers that took the read lock after the
	// delete above can no longer see this client.
	close(c.send)

	metrics.ChatConnectedClients.Dec()
	h.log.Debug().Str("conn", c.id).Int("total", total).Msg("client disconnected")
}

// Join adds the client to the named room, creating the room on first join.
// Joining a room twice is a no-op. Any non-empty name is accepted; there is
// no capacity limit and no authorization.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]bool)
		h.rooms[room] = members
		metrics.ChatActiveRooms.Inc()
	}
	if members[c] {
		return
	}
	members[c] = true
	h.log.Debug().Str("conn", c.id).Str("room", room).Int("members", len(members)).Msg("joined room")
}

// Publish forwards msg to every member of msg.Room except the sender. The
// sender's own client echoes the message locally, so it is skipped here.
// Delivery is best effort: a recipient whose send buffer is full simply
// misses the message, and one stalled recipient never blocks the rest.
func (h *Hub) Publish(sender *Client, msg Message) {
	if !msg.Valid() {
		return
	}

	payload, err := encodeReceive(msg)
	if err != nil {
		h.log.Warn().Err(err).Str("room", msg.Room).Msg("dropping unencodable message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	members := h.rooms[msg.Room]
	for member := range members {
		if member == sender {
			continue
		}
		select {
		case member.send <- payload:
			metrics.ChatMessagesRelayed.Inc()
		default:
			// Recipient buffer full; drop for this member only. Its
			// membership is cleaned up when the transport disconnects.
			h.log.Debug().Str("conn", member.id).Str("room", msg.Room).Msg("send buffer full, message dropped")
		}
	}
}

// RoomCount reports how many rooms currently have members.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// ClientCount reports how many clients are connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
