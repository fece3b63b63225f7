package chatclient

import (
	"sync"

	"github.com/wedlockhq/wedlock-api/pkg/chatwire"
)

// Disposer removes a handler registration. Callers register on mount
// and dispose on unmount or room change so handlers never leak across
// room switches.
type Disposer func()

type subscriptions struct {
	mu               sync.Mutex
	nextID           int
	onMessage        map[int]func(chatwire.Message)
	onTyping         map[int]func(chatwire.TypingPayload)
	onPresence       map[int]func([]uint)
	onRoom           map[int]func(chatwire.EventType, chatwire.RoomPayload)
	onBookingResponse map[int]func(chatwire.BookingResponsePayload)
	onError          map[int]func(chatwire.ErrorPayload)
}

// OnMessage registers a handler for messages delivered to the active
// room, including echoes of the local user's own sends.
func (s *Session) OnMessage(fn func(chatwire.Message)) Disposer {
	s.subs.mu.Lock()
	defer s.subs.mu.Unlock()
	if s.subs.onMessage == nil {
		s.subs.onMessage = make(map[int]func(chatwire.Message))
	}
	id := s.subs.nextID
	s.subs.nextID++
	s.subs.onMessage[id] = fn

	return func() {
		s.subs.mu.Lock()
		defer s.subs.mu.Unlock()
		delete(s.subs.onMessage, id)
	}
}

func (s *Session) OnTyping(fn func(chatwire.TypingPayload)) Disposer {
	s.subs.mu.Lock()
	defer s.subs.mu.Unlock()
	if s.subs.onTyping == nil {
		s.subs.onTyping = make(map[int]func(chatwire.TypingPayload))
	}
	id := s.subs.nextID
	s.subs.nextID++
	s.subs.onTyping[id] = fn

	return func() {
		s.subs.mu.Lock()
		defer s.subs.mu.Unlock()
		delete(s.subs.onTyping, id)
	}
}

// OnPresence registers a handler invoked with the full online set
// whenever it changes.
func (s *Session) OnPresence(fn func(online []uint)) Disposer {
	s.subs.mu.Lock()
	defer s.subs.mu.Unlock()
	if s.subs.onPresence == nil {
		s.subs.onPresence = make(map[int]func([]uint))
	}
	id := s.subs.nextID
	s.subs.nextID++
	s.subs.onPresence[id] = fn

	return func() {
		s.subs.mu.Lock()
		defer s.subs.mu.Unlock()
		delete(s.subs.onPresence, id)
	}
}

func (s *Session) OnRoomEvent(fn func(chatwire.EventType, chatwire.RoomPayload)) Disposer {
	s.subs.mu.Lock()
	defer s.subs.mu.Unlock()
	if s.subs.onRoom == nil {
		s.subs.onRoom = make(map[int]func(chatwire.EventType, chatwire.RoomPayload))
	}
	id := s.subs.nextID
	s.subs.nextID++
	s.subs.onRoom[id] = fn

	return func() {
		s.subs.mu.Lock()
		defer s.subs.mu.Unlock()
		delete(s.subs.onRoom, id)
	}
}

func (s *Session) OnBookingResponse(fn func(chatwire.BookingResponsePayload)) Disposer {
	s.subs.mu.Lock()
	defer s.subs.mu.Unlock()
	if s.subs.onBookingResponse == nil {
		s.subs.onBookingResponse = make(map[int]func(chatwire.BookingResponsePayload))
	}
	id := s.subs.nextID
	s.subs.nextID++
	s.subs.onBookingResponse[id] = fn

	return func() {
		s.subs.mu.Lock()
		defer s.subs.mu.Unlock()
		delete(s.subs.onBookingResponse, id)
	}
}

func (s *Session) OnError(fn func(chatwire.ErrorPayload)) Disposer {
	s.subs.mu.Lock()
	defer s.subs.mu.Unlock()
	if s.subs.onError == nil {
		s.subs.onError = make(map[int]func(chatwire.ErrorPayload))
	}
	id := s.subs.nextID
	s.subs.nextID++
	s.subs.onError[id] = fn

	return func() {
		s.subs.mu.Lock()
		defer s.subs.mu.Unlock()
		delete(s.subs.onError, id)
	}
}

func (s *subscriptions) notifyMessage(message chatwire.Message) {
	s.mu.Lock()
	fns := make([]func(chatwire.Message), 0, len(s.onMessage))
	for _, fn := range s.onMessage {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(message)
	}
}

func (s *subscriptions) notifyTyping(payload chatwire.TypingPayload) {
	s.mu.Lock()
	fns := make([]func(chatwire.TypingPayload), 0, len(s.onTyping))
	for _, fn := range s.onTyping {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(payload)
	}
}

func (s *subscriptions) notifyPresence(online []uint) {
	s.mu.Lock()
	fns := make([]func([]uint), 0, len(s.onPresence))
	for _, fn := range s.onPresence {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(online)
	}
}

func (s *subscriptions) notifyRoom(t chatwire.EventType, payload chatwire.RoomPayload) {
	s.mu.Lock()
	fns := make([]func(chatwire.EventType, chatwire.RoomPayload), 0, len(s.onRoom))
	for _, fn := range s.onRoom {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(t, payload)
	}
}

func (s *subscriptions) notifyBookingResponse(payload chatwire.BookingResponsePayload) {
	s.mu.Lock()
	fns := make([]func(chatwire.BookingResponsePayload), 0, len(s.onBookingResponse))
	for _, fn := range s.onBookingResponse {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(payload)
	}
}

func (s *subscriptions) notifyError(payload chatwire.ErrorPayload) {
	s.mu.Lock()
	fns := make([]func(chatwire.ErrorPayload), 0, len(s.onError))
	for _, fn := range s.onError {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(payload)
	}
}
