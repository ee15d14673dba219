package chat

import (
	"encoding/json"
	"strings"
)

// Wire events exchanged with browser clients.
const (
	EventJoinRoom       = "join_room"
	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"
)

// Envelope is the framing for every websocket event. Data is decoded
// per-event: a bare room name for join_room, a Message for send_message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Message is a relayed chat line. The server forwards it verbatim and never
// stores it; Time is a client-supplied display string, not a server clock.
type Message struct {
	Room   string `json:"room"`
	Author string `json:"author"`
	Body   string `json:"message"`
	Time   string `json:"time"`
}

// Valid reports whether the message can be relayed at all. Messages missing
// a room or a body are dropped silently rather than fanned out.
func (m Message) Valid() bool {
	return strings.TrimSpace(m.Room) != "" && m.Body != ""
}

// encodeReceive wraps a message in a receive_message envelope for delivery.
func encodeReceive(msg Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: EventReceiveMessage, Data: data})
}

// decodeRoomName extracts the room name from a join_room payload. The web
// client emits the room as a bare JSON string.
func decodeRoomName(data json.RawMessage) (string, bool) {
	var room string
	if err := json.Unmarshal(data, &room); err != nil {
		return "", false
	}
	room = strings.TrimSpace(room)
	if room == "" {
		return "", false
	}
	return room, true
}
