package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRoomName(t *testing.T) {
	cases := []struct {
		name string
		data string
		want string
		ok   bool
	}{
		{"plain string", `"course_5"`, "course_5", true},
		{"whitespace trimmed", `"  course_5 "`, "course_5", true},
		{"empty string", `""`, "", false},
		{"whitespace only", `"   "`, "", false},
		{"not a string", `{"room":"course_5"}`, "", false},
		{"number", `5`, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := decodeRoomName(json.RawMessage(tc.data))
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEncodeReceiveRoundTrip(t *testing.T) {
	msg := Message{Room: "course_5", Author: "Alice", Body: "hi there", Time: "10:00"}

	payload, err := encodeReceive(msg)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(payload, &env))
	assert.Equal(t, EventReceiveMessage, env.Event)

	var got Message
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, msg, got)
}

func TestMessageValid(t *testing.T) {
	assert.True(t, Message{Room: "r", Body: "b"}.Valid())
	assert.False(t, Message{Room: "", Body: "b"}.Valid())
	assert.False(t, Message{Room: " ", Body: "b"}.Valid())
	assert.False(t, Message{Room: "r", Body: ""}.Valid())
}
