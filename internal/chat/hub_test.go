package chat

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return NewHub(zerolog.Nop())
}

func newTestClient(t *testing.T, h *Hub) *Client {
	t.Helper()
	c := NewClient(h, nil, "test", zerolog.Nop())
	h.Register(c)
	return c
}

// tryRecv pulls one delivered message off the client's send channel without
// blocking. Publish is synchronous, so anything delivered is already there.
func tryRecv(t *testing.T, c *Client) (Message, bool) {
	t.Helper()
	select {
	case payload := <-c.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(payload, &env))
		require.Equal(t, EventReceiveMessage, env.Event)
		var msg Message
		require.NoError(t, json.Unmarshal(env.Data, &msg))
		return msg, true
	default:
		return Message{}, false
	}
}

func TestPublishReachesOtherRoomMembers(t *testing.T) {
	h := newTestHub()
	alice := newTestClient(t, h)
	bob := newTestClient(t, h)

	h.Join(alice, "course_5")
	h.Join(bob, "course_5")

	sent := Message{Room: "course_5", Author: "Alice", Body: "hi", Time: "10:00"}
	h.Publish(alice, sent)

	got, ok := tryRecv(t, bob)
	require.True(t, ok, "bob should receive the message")
	assert.Equal(t, sent, got, "payload must be forwarded verbatim")
}

func TestNoSelfEcho(t *testing.T) {
	h := newTestHub()
	alice := newTestClient(t, h)
	bob := newTestClient(t, h)

	h.Join(alice, "course_5")
	h.Join(bob, "course_5")

	h.Publish(alice, Message{Room: "course_5", Author: "Alice", Body: "hi", Time: "10:00"})

	_, ok := tryRecv(t, alice)
	assert.False(t, ok, "publisher must not receive its own message")
}

func TestRoomIsolation(t *testing.T) {
	h := newTestHub()
	alice := newTestClient(t, h)
	bob := newTestClient(t, h)
	carol := newTestClient(t, h)

	h.Join(alice, "course_5")
	h.Join(bob, "course_7")
	// carol never joins anything

	h.Publish(alice, Message{Room: "course_5", Author: "Alice", Body: "hi", Time: "10:00"})

	_, ok := tryRecv(t, bob)
	assert.False(t, ok, "member of another room must not receive")
	_, ok = tryRecv(t, carol)
	assert.False(t, ok, "unjoined client must not receive")
}

func TestFanOutDeliversExactlyOncePerMember(t *testing.T) {
	h := newTestHub()
	sender := newTestClient(t, h)
	members := []*Client{newTestClient(t, h), newTestClient(t, h), newTestClient(t, h)}

	h.Join(sender, "course_1")
	for _, m := range members {
		h.Join(m, "course_1")
	}

	h.Publish(sender, Message{Room: "course_1", Author: "A", Body: "x", Time: "1:00"})

	for i, m := range members {
		_, ok := tryRecv(t, m)
		assert.True(t, ok, "member %d should receive one copy", i)
		_, ok = tryRecv(t, m)
		assert.False(t, ok, "member %d should receive exactly one copy", i)
	}
}

func TestLateJoinerSeesNoHistory(t *testing.T) {
	h := newTestHub()
	alice := newTestClient(t, h)
	h.Join(alice, "course_5")

	h.Publish(alice, Message{Room: "course_5", Author: "Alice", Body: "early", Time: "9:00"})

	late := newTestClient(t, h)
	h.Join(late, "course_5")

	_, ok := tryRecv(t, late)
	assert.False(t, ok, "joining after a publish must not replay it")
}

func TestIdempotentJoinDeliversOnce(t *testing.T) {
	h := newTestHub()
	alice := newTestClient(t, h)
	bob := newTestClient(t, h)

	h.Join(alice, "course_5")
	h.Join(bob, "course_5")
	h.Join(bob, "course_5")

	h.Publish(alice, Message{Room: "course_5", Author: "Alice", Body: "hi", Time: "10:00"})

	_, ok := tryRecv(t, bob)
	require.True(t, ok)
	_, ok = tryRecv(t, bob)
	assert.False(t, ok, "duplicate join must not cause duplicate delivery")
}

func TestUnregisterRemovesAllMembership(t *testing.T) {
	h := newTestHub()
	alice := newTestClient(t, h)
	bob := newTestClient(t, h)

	h.Join(alice, "course_5")
	h.Join(alice, "course_7")
	h.Join(bob, "course_5")

	h.Unregister(alice)

	assert.Equal(t, 1, h.ClientCount())
	assert.Equal(t, 1, h.RoomCount(), "empty rooms are discarded")

	// Fan-out after disconnect must not panic or deliver to the gone client.
	h.Publish(bob, Message{Room: "course_5", Author: "Bob", Body: "bye", Time: "11:00"})
	h.Publish(bob, Message{Room: "course_7", Author: "Bob", Body: "bye", Time: "11:00"})
}

func TestUnregisterTwiceIsSafe(t *testing.T) {
	h := newTestHub()
	alice := newTestClient(t, h)
	h.Join(alice, "course_5")

	h.Unregister(alice)
	h.Unregister(alice)

	assert.Equal(t, 0, h.ClientCount())
	assert.Equal(t, 0, h.RoomCount())
}

func TestPublishToEmptyOrUnknownRoomIsNoop(t *testing.T) {
	h := newTestHub()
	alice := newTestClient(t, h)
	h.Join(alice, "course_5")

	// No other members, and a room nobody ever joined.
	h.Publish(alice, Message{Room: "course_5", Author: "A", Body: "x", Time: "1:00"})
	h.Publish(alice, Message{Room: "ghost", Author: "A", Body: "x", Time: "1:00"})

	_, ok := tryRecv(t, alice)
	assert.False(t, ok)
}

func TestInvalidMessagesAreDropped(t *testing.T) {
	h := newTestHub()
	alice := newTestClient(t, h)
	bob := newTestClient(t, h)
	h.Join(alice, "course_5")
	h.Join(bob, "course_5")

	h.Publish(alice, Message{Room: "", Author: "A", Body: "x", Time: "1:00"})
	h.Publish(alice, Message{Room: "   ", Author: "A", Body: "x", Time: "1:00"})
	h.Publish(alice, Message{Room: "course_5", Author: "A", Body: "", Time: "1:00"})

	_, ok := tryRecv(t, bob)
	assert.False(t, ok, "messages missing room or body must not fan out")
}

func TestFullRecipientBufferDoesNotBlockFanOut(t *testing.T) {
	h := newTestHub()
	sender := newTestClient(t, h)
	stalled := newTestClient(t, h)
	healthy := newTestClient(t, h)

	h.Join(sender, "course_5")
	h.Join(stalled, "course_5")
	h.Join(healthy, "course_5")

	// Fill the stalled client's buffer so further sends to it must drop.
	for i := 0; i < sendBufferSize; i++ {
		h.Publish(sender, Message{Room: "course_5", Author: "A", Body: "fill", Time: "1:00"})
		tryRecv(t, healthy)
	}

	h.Publish(sender, Message{Room: "course_5", Author: "A", Body: "after", Time: "1:01"})

	got, ok := tryRecv(t, healthy)
	require.True(t, ok, "healthy member must still receive")
	assert.Equal(t, "after", got.Body)
}

func TestHandleEventRouting(t *testing.T) {
	h := newTestHub()
	alice := newTestClient(t, h)
	bob := newTestClient(t, h)

	join := func(c *Client, room string) []byte {
		data, _ := json.Marshal(room)
		raw, _ := json.Marshal(Envelope{Event: EventJoinRoom, Data: data})
		return raw
	}

	alice.handleEvent(join(alice, "course_5"))
	bob.handleEvent(join(bob, "course_5"))

	msg := Message{Room: "course_5", Author: "Alice", Body: "hi", Time: "10:00"}
	data, _ := json.Marshal(msg)
	raw, _ := json.Marshal(Envelope{Event: EventSendMessage, Data: data})
	alice.handleEvent(raw)

	got, ok := tryRecv(t, bob)
	require.True(t, ok)
	assert.Equal(t, msg, got)

	// Garbage and unknown events must be ignored without effect.
	alice.handleEvent([]byte(`not json`))
	alice.handleEvent([]byte(`{"event":"presence","data":{}}`))
	alice.handleEvent([]byte(`{"event":"join_room","data":""}`))
	alice.handleEvent([]byte(`{"event":"send_message","data":{"room":""}}`))

	_, ok = tryRecv(t, bob)
	assert.False(t, ok)
}
