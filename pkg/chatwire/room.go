package chatwire

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidRoomID = errors.New("invalid room id")

// RoomID derives the conversation id for a pair of users. The pair is
// sorted so both ends compute the same id regardless of who dials.
func RoomID(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("room:%d:%d", a, b)
}

// ParseRoomID returns the two participant ids encoded in a room id.
func ParseRoomID(roomID string) (uint, uint, error) {
	parts := strings.Split(roomID, ":")
	if len(parts) != 3 || parts[0] != "room" {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRoomID, roomID)
	}

	lo, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRoomID, roomID)
	}
	hi, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRoomID, roomID)
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRoomID, roomID)
	}

	return uint(lo), uint(hi), nil
}

// IsRoomMember reports whether userID is one of the two participants a
// room id was derived from.
func IsRoomMember(roomID string, userID uint) bool {
	lo, hi, err := ParseRoomID(roomID)
	if err != nil {
		return false
	}
	return userID == lo || userID == hi
}
