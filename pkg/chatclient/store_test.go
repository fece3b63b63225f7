package chatclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wedlockhq/wedlock-api/pkg/chatwire"
)

const testRoom = "room:1:2"

func newTestStore() *MessageStore {
	s := NewMessageStore(5 * time.Second)
	s.Reset(testRoom)
	return s
}

func TestMessageStore_EchoReplacesPendingByClientID(t *testing.T) {
	store := newTestStore()

	local := chatwire.Message{
		ClientID:  "c-1",
		RoomID:    testRoom,
		SenderID:  1,
		Type:      chatwire.TypeText,
		Content:   "Hello",
		CreatedAt: time.Now(),
	}
	store.AppendLocal(local)

	echo := local
	echo.ID = 42
	store.Apply(echo)

	entries := store.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, EntryConfirmed, entries[0].State)
	assert.Equal(t, uint(42), entries[0].ID)
	assert.Equal(t, "Hello", entries[0].Content)
}

func TestMessageStore_RedeliveredEchoIsDropped(t *testing.T) {
	store := newTestStore()

	msg := chatwire.Message{
		ID:        7,
		ClientID:  "c-7",
		RoomID:    testRoom,
		SenderID:  2,
		Type:      chatwire.TypeText,
		Content:   "hi",
		CreatedAt: time.Now(),
	}
	store.Apply(msg)
	store.Apply(msg)

	assert.Equal(t, 1, store.Len())
}

func TestMessageStore_FallbackMatchWithinWindow(t *testing.T) {
	store := newTestStore()

	now := time.Now()
	store.AppendLocal(chatwire.Message{
		RoomID:    testRoom,
		SenderID:  1,
		Type:      chatwire.TypeText,
		Content:   "see you there",
		CreatedAt: now,
	})

	// Echo lost its correlation id but lands within the window.
	store.Apply(chatwire.Message{
		ID:        10,
		RoomID:    testRoom,
		SenderID:  1,
		Type:      chatwire.TypeText,
		Content:   "see you there",
		CreatedAt: now.Add(2 * time.Second),
	})

	entries := store.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, EntryConfirmed, entries[0].State)
	assert.Equal(t, uint(10), entries[0].ID)
}

func TestMessageStore_FallbackMissAppendsInsteadOfDropping(t *testing.T) {
	store := newTestStore()

	now := time.Now()
	store.AppendLocal(chatwire.Message{
		RoomID:    testRoom,
		SenderID:  1,
		Type:      chatwire.TypeText,
		Content:   "see you there",
		CreatedAt: now,
	})

	// Outside the window: no match, so the echo is appended and the
	// local copy stays pending.
	store.Apply(chatwire.Message{
		ID:        11,
		RoomID:    testRoom,
		SenderID:  1,
		Type:      chatwire.TypeText,
		Content:   "see you there",
		CreatedAt: now.Add(30 * time.Second),
	})

	entries := store.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, EntryPending, entries[0].State)
	assert.Equal(t, EntryConfirmed, entries[1].State)
}

func TestMessageStore_UnconfirmedSendStaysPending(t *testing.T) {
	store := newTestStore()

	store.AppendLocal(chatwire.Message{
		ClientID:  "c-lost",
		RoomID:    testRoom,
		SenderID:  1,
		Type:      chatwire.TypeText,
		Content:   "did this arrive?",
		CreatedAt: time.Now(),
	})

	// A different message from the peer arrives; the pending entry is
	// untouched and stays visible.
	store.Apply(chatwire.Message{
		ID:        12,
		ClientID:  "c-other",
		RoomID:    testRoom,
		SenderID:  2,
		Type:      chatwire.TypeText,
		Content:   "hello",
		CreatedAt: time.Now(),
	})

	entries := store.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, EntryPending, entries[0].State)
	assert.Equal(t, "c-lost", entries[0].ClientID)
}

func TestMessageStore_IgnoresOtherRooms(t *testing.T) {
	store := newTestStore()

	store.AppendLocal(chatwire.Message{RoomID: "room:3:4", SenderID: 3, Content: "wrong room"})
	store.Apply(chatwire.Message{ID: 9, RoomID: "room:3:4", SenderID: 3, Content: "wrong room"})

	assert.Equal(t, 0, store.Len())
}

func TestMessageStore_ResetClearsLogAndRescopes(t *testing.T) {
	store := newTestStore()

	store.Apply(chatwire.Message{ID: 1, RoomID: testRoom, SenderID: 2, Content: "old"})
	require.Equal(t, 1, store.Len())

	store.Reset("room:1:3")
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, "room:1:3", store.RoomID())

	store.Apply(chatwire.Message{ID: 2, RoomID: "room:1:3", SenderID: 3, Content: "new"})
	assert.Equal(t, 1, store.Len())
}

func TestMessageStore_BookingResponseMutatesInPlace(t *testing.T) {
	store := newTestStore()

	store.Apply(chatwire.Message{
		ID:       5,
		RoomID:   testRoom,
		SenderID: 2,
		Type:     chatwire.TypeProposal,
		Proposal: &chatwire.BookingProposal{
			EventID:  1,
			CoupleID: 1,
			Status:   chatwire.StatusPending,
		},
	})

	store.ApplyBookingResponse(chatwire.BookingResponsePayload{
		RoomID:    testRoom,
		MessageID: 5,
		Status:    chatwire.StatusAccepted,
	})

	entries := store.Entries()
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Proposal)
	assert.Equal(t, chatwire.StatusAccepted, entries[0].Proposal.Status)

	// A response for another room or an unknown message changes nothing.
	store.ApplyBookingResponse(chatwire.BookingResponsePayload{
		RoomID:    "room:3:4",
		MessageID: 5,
		Status:    chatwire.StatusDeclined,
	})
	store.ApplyBookingResponse(chatwire.BookingResponsePayload{
		RoomID:    testRoom,
		MessageID: 99,
		Status:    chatwire.StatusDeclined,
	})
	assert.Equal(t, chatwire.StatusAccepted, store.Entries()[0].Proposal.Status)
}

func TestMessageStore_SnapshotProposalIsIsolatedFromLaterResponses(t *testing.T) {
	store := newTestStore()

	store.Apply(chatwire.Message{
		ID:       5,
		RoomID:   testRoom,
		SenderID: 2,
		Type:     chatwire.TypeProposal,
		Proposal: &chatwire.BookingProposal{
			EventID:  1,
			CoupleID: 1,
			Status:   chatwire.StatusPending,
		},
	})

	snapshot := store.Entries()
	require.Len(t, snapshot, 1)
	require.NotNil(t, snapshot[0].Proposal)

	store.ApplyBookingResponse(chatwire.BookingResponsePayload{
		RoomID:    testRoom,
		MessageID: 5,
		Status:    chatwire.StatusAccepted,
	})

	// The response mutates the store's entry, never a snapshot handed
	// out earlier.
	assert.Equal(t, chatwire.StatusPending, snapshot[0].Proposal.Status)
	assert.Equal(t, chatwire.StatusAccepted, store.Entries()[0].Proposal.Status)
}

func TestMessageStore_RemoveLocalRollsBackOnlyThePendingEntry(t *testing.T) {
	store := newTestStore()

	store.Apply(chatwire.Message{ID: 1, RoomID: testRoom, SenderID: 2, Content: "kept", CreatedAt: time.Now()})
	store.AppendLocal(chatwire.Message{
		ClientID:  "c-1",
		RoomID:    testRoom,
		SenderID:  1,
		Type:      chatwire.TypeText,
		Content:   "failed send",
		CreatedAt: time.Now(),
	})

	store.removeLocal("c-1")

	entries := store.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Content)

	// Unknown ids are harmless.
	store.removeLocal("c-2")
	assert.Equal(t, 1, store.Len())
}

func TestMessageStore_OrderIsInsertionOrder(t *testing.T) {
	store := newTestStore()

	now := time.Now()
	// Confirmed peer messages can arrive with older timestamps; display
	// order must not re-sort.
	store.Apply(chatwire.Message{ID: 1, RoomID: testRoom, SenderID: 2, Content: "first", CreatedAt: now})
	store.Apply(chatwire.Message{ID: 2, RoomID: testRoom, SenderID: 2, Content: "second", CreatedAt: now.Add(-time.Hour)})

	entries := store.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Content)
	assert.Equal(t, "second", entries[1].Content)
}
