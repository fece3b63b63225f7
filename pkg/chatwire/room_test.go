package chatwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomID_SortsParticipants(t *testing.T) {
	assert.Equal(t, "room:3:7", RoomID(7, 3))
	assert.Equal(t, "room:3:7", RoomID(3, 7))
	assert.Equal(t, RoomID(12, 99), RoomID(99, 12))
}

func TestParseRoomID(t *testing.T) {
	lo, hi, err := ParseRoomID("room:3:7")
	require.NoError(t, err)
	assert.Equal(t, uint(3), lo)
	assert.Equal(t, uint(7), hi)

	for _, bad := range []string{
		"",
		"room:3",
		"room:3:7:9",
		"chat:3:7",
		"room:x:7",
		"room:3:y",
		"room:7:3",
	} {
		_, _, err := ParseRoomID(bad)
		assert.ErrorIs(t, err, ErrInvalidRoomID, "input %q", bad)
	}
}

func TestIsRoomMember(t *testing.T) {
	roomID := RoomID(5, 9)

	assert.True(t, IsRoomMember(roomID, 5))
	assert.True(t, IsRoomMember(roomID, 9))
	assert.False(t, IsRoomMember(roomID, 6))
	assert.False(t, IsRoomMember("garbage", 5))
}
