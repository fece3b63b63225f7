package chatclient

import (
	"sync"
	"time"

	"github.com/wedlockhq/wedlock-api/pkg/chatwire"
)

type EntryState string

const (
	// EntryPending is a locally-sent message awaiting its server echo.
	EntryPending EntryState = "pending"
	// EntryConfirmed is a message the server has accepted.
	EntryConfirmed EntryState = "confirmed"
)

// Entry is one visible line of the conversation.
type Entry struct {
	chatwire.Message
	State EntryState
}

// MessageStore is the ordered local log for the active room. Sends are
// appended optimistically as pending; the server's echo replaces the
// pending entry in place instead of appending a duplicate. Display
// order is insertion order; the store never re-sorts by timestamp.
type MessageStore struct {
	mu      sync.Mutex
	roomID  string
	window  time.Duration
	entries []Entry
}

const defaultReconcileWindow = 5 * time.Second

func NewMessageStore(window time.Duration) *MessageStore {
	if window <= 0 {
		window = defaultReconcileWindow
	}

	return &MessageStore{
		window: window,
	}
}

// Reset clears the log and scopes the store to a new room.
func (s *MessageStore) Reset(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomID = roomID
	s.entries = nil
}

func (s *MessageStore) RoomID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID
}

// AppendLocal records a message the local user just sent. It stays
// pending until Apply sees the matching echo; if the echo never
// arrives it stays pending and visible rather than silently vanishing.
func (s *MessageStore) AppendLocal(message chatwire.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if message.RoomID != s.roomID {
		return
	}

	s.entries = append(s.entries, Entry{Message: message, State: EntryPending})
}

// removeLocal drops a pending entry by its correlation id, used to
// roll back the optimistic append when the transport write fails.
func (s *MessageStore) removeLocal(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].State == EntryPending && s.entries[i].ClientID == clientID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// Apply feeds a server-delivered message into the log. Reconciliation
// matches the correlation id first, then falls back to sender +
// content + time proximity. An unmatched message is appended: losing a
// message is worse than showing an occasional duplicate.
func (s *MessageStore) Apply(message chatwire.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if message.RoomID != s.roomID {
		return
	}

	// Re-delivery of an already-confirmed message is dropped.
	if message.ID != 0 {
		for i := range s.entries {
			if s.entries[i].State == EntryConfirmed && s.entries[i].ID == message.ID {
				return
			}
		}
	}

	if i, ok := s.matchPending(message); ok {
		s.entries[i] = Entry{Message: message, State: EntryConfirmed}
		return
	}

	s.entries = append(s.entries, Entry{Message: message, State: EntryConfirmed})
}

func (s *MessageStore) matchPending(message chatwire.Message) (int, bool) {
	if message.ClientID != "" {
		for i := range s.entries {
			if s.entries[i].State == EntryPending && s.entries[i].ClientID == message.ClientID {
				return i, true
			}
		}
		return 0, false
	}

	for i := range s.entries {
		e := &s.entries[i]
		if e.State != EntryPending || e.SenderID != message.SenderID || e.Content != message.Content {
			continue
		}
		delta := message.CreatedAt.Sub(e.CreatedAt)
		if delta < 0 {
			delta = -delta
		}
		if delta <= s.window {
			return i, true
		}
	}

	return 0, false
}

// ApplyBookingResponse mutates the referenced proposal's status in
// place; a response never appends a new entry.
func (s *MessageStore) ApplyBookingResponse(resp chatwire.BookingResponsePayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if resp.RoomID != s.roomID {
		return
	}

	for i := range s.entries {
		if s.entries[i].ID == resp.MessageID && s.entries[i].Proposal != nil {
			s.entries[i].Proposal.Status = resp.Status
			return
		}
	}
}

// Entries returns a snapshot of the visible log. Proposals are copied
// too, so a later booking response cannot mutate a snapshot the caller
// is still reading.
func (s *MessageStore) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	for i := range out {
		if out[i].Proposal != nil {
			proposal := *out[i].Proposal
			out[i].Proposal = &proposal
		}
	}

	return out
}

func (s *MessageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
