// Package chatclient is the client side of the messaging layer: one
// websocket session per authenticated user, the optimistic message
// store for the active room, and the push-driven presence tracker.
// Integration tests and non-browser clients (bots, CLIs) use it to
// speak the same protocol as the web app.
package chatclient

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wedlockhq/wedlock-api/pkg/chatwire"
)

var (
	ErrNotConnected = errors.New("chat session is not connected")
	ErrNoActiveRoom = errors.New("no active room")
	ErrSessionClosed = errors.New("chat session is closed")
)

type Config struct {
	// URL is the websocket endpoint, e.g. ws://host/api/v1/ws.
	URL   string
	Token string

	// UserID and UserName identify the local sender on optimistic
	// entries; the server stamps its own copy from the JWT.
	UserID   uint
	UserName string

	// MaxRetries bounds both the initial dial and each reconnect
	// attempt; RetryDelay is the fixed pause between attempts.
	MaxRetries int
	RetryDelay time.Duration

	ReconcileWindow time.Duration

	Logger *zap.Logger
}

// Session owns the connection for the lifetime of the chat view. It is
// created on mount and closed on unmount; tests substitute a local
// server rather than reaching into a package-level socket.
type Session struct {
	cfg    Config
	logger *zap.Logger

	store    *MessageStore
	presence *PresenceTracker

	mu          sync.Mutex // guards conn, writes, room and lifecycle state
	conn        *websocket.Conn
	connected   bool
	closed      bool
	lastErr     error
	currentRoom string

	subs subscriptions
}

func NewSession(cfg Config) *Session {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Session{
		cfg:      cfg,
		logger:   cfg.Logger,
		store:    NewMessageStore(cfg.ReconcileWindow),
		presence: NewPresenceTracker(),
	}
}

func (s *Session) Store() *MessageStore {
	return s.store
}

func (s *Session) Presence() *PresenceTracker {
	return s.presence
}

// Connected reports whether the transport is currently usable. UIs
// drive the send control and the "disconnected" banner off this flag.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// LastError returns the most recent connection error, if any.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Connect dials the server, retrying up to MaxRetries with a fixed
// delay. On success the read loop starts and Connected flips to true.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.connected {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	conn, err := s.dial(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.lastErr = nil
	s.mu.Unlock()

	go s.readLoop(conn)

	return nil
}

// Close tears the session down. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.connected = false
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}

	return nil
}

// SwitchRoom leaves the previous room (if any) before joining the new
// one, in that order, and clears the store so cross-room events cannot
// land in the new log. Switching to the current room is a no-op.
func (s *Session) SwitchRoom(roomID string) error {
	s.mu.Lock()
	if s.currentRoom == roomID {
		s.mu.Unlock()
		return nil
	}
	previous := s.currentRoom
	s.mu.Unlock()

	if previous != "" {
		if err := s.send(chatwire.EventLeaveRoom, chatwire.RoomPayload{RoomID: previous}); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.currentRoom = roomID
	s.mu.Unlock()
	s.store.Reset(roomID)

	if roomID == "" {
		return nil
	}

	return s.send(chatwire.EventJoinRoom, chatwire.RoomPayload{RoomID: roomID})
}

// LeaveRoom leaves the active room, e.g. on view unmount.
func (s *Session) LeaveRoom() error {
	return s.SwitchRoom("")
}

func (s *Session) CurrentRoom() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentRoom
}

// SendText sends a plain-text message to the active room. The message
// is appended to the store as pending before transmission; it is never
// queued or retried when disconnected.
func (s *Session) SendText(content string) (chatwire.Message, error) {
	return s.sendMessage(chatwire.Message{
		Type:    chatwire.TypeText,
		Content: content,
	})
}

// SendAttachment sends an image/file/link message whose content is the
// URL returned by the attachment upload. The upload must have
// succeeded first; no message referencing a failed upload exists.
func (s *Session) SendAttachment(messageType, url string) (chatwire.Message, error) {
	return s.sendMessage(chatwire.Message{
		Type:    messageType,
		Content: url,
	})
}

// SendProposal sends a booking proposal referencing an existing wedding
// event. Only officiant accounts are accepted by the server.
func (s *Session) SendProposal(eventID uint, price float64) (chatwire.Message, error) {
	return s.sendMessage(chatwire.Message{
		Type: chatwire.TypeProposal,
		Proposal: &chatwire.BookingProposal{
			EventID: eventID,
			Price:   price,
		},
	})
}

func (s *Session) sendMessage(message chatwire.Message) (chatwire.Message, error) {
	s.mu.Lock()
	room := s.currentRoom
	s.mu.Unlock()
	if room == "" {
		return chatwire.Message{}, ErrNoActiveRoom
	}

	message.ClientID = uuid.New().String()
	message.RoomID = room
	message.SenderID = s.cfg.UserID
	message.SenderName = s.cfg.UserName
	message.CreatedAt = time.Now()

	// The pending entry must exist before the frame leaves, or the echo
	// could arrive first and append a duplicate instead of confirming.
	s.store.AppendLocal(message)

	if err := s.send(chatwire.EventMessage, message); err != nil {
		s.store.removeLocal(message.ClientID)
		return chatwire.Message{}, err
	}

	return message, nil
}

// SendTyping relays a typing indicator for the active room.
func (s *Session) SendTyping(isTyping bool) error {
	s.mu.Lock()
	room := s.currentRoom
	s.mu.Unlock()
	if room == "" {
		return ErrNoActiveRoom
	}

	return s.send(chatwire.EventTyping, chatwire.TypingPayload{
		RoomID:   room,
		UserID:   s.cfg.UserID,
		IsTyping: isTyping,
	})
}

// RespondToProposal accepts or declines a pending booking proposal by
// its server message id. The resulting status arrives back as a
// booking_response event and is applied to the existing store entry.
func (s *Session) RespondToProposal(messageID uint, accept bool) error {
	s.mu.Lock()
	room := s.currentRoom
	s.mu.Unlock()
	if room == "" {
		return ErrNoActiveRoom
	}

	status := chatwire.StatusDeclined
	if accept {
		status = chatwire.StatusAccepted
	}

	return s.send(chatwire.EventBookingResponse, chatwire.BookingResponsePayload{
		RoomID:      room,
		MessageID:   messageID,
		ResponderID: s.cfg.UserID,
		Status:      status,
	})
}

func (s *Session) send(t chatwire.EventType, payload any) error {
	data, err := chatwire.Encode(t, payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if !s.connected || s.conn == nil {
		s.logger.Warn("dropping send while disconnected", zap.String("event", string(t)))
		return ErrNotConnected
	}

	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Session) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if s.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	var lastErr error
	for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.cfg.RetryDelay):
			}
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.cfg.URL, header)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		s.logger.Warn("chat dial failed", zap.Int("attempt", attempt+1), zap.Error(err))
	}

	s.mu.Lock()
	s.lastErr = lastErr
	s.mu.Unlock()

	return nil, lastErr
}

func (s *Session) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.handleDisconnect(conn, err)
			return
		}

		env, err := chatwire.Decode(data)
		if err != nil {
			s.logger.Warn("dropping malformed frame", zap.Error(err))
			continue
		}

		s.dispatch(env)
	}
}

// handleDisconnect flips Connected off, then tries to re-establish the
// transport within the retry budget. Nothing is replayed on success;
// unsent messages stay pending in the store and the current room is
// re-joined so server-side membership matches the view again.
func (s *Session) handleDisconnect(conn *websocket.Conn, cause error) {
	conn.Close()

	s.mu.Lock()
	if s.conn != conn {
		// A newer connection already took over.
		s.mu.Unlock()
		return
	}
	s.conn = nil
	s.connected = false
	s.lastErr = cause
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return
	}

	s.logger.Warn("chat connection lost", zap.Error(cause))

	next, err := s.dial(context.Background())
	if err != nil {
		s.logger.Error("chat reconnect failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		next.Close()
		return
	}
	s.conn = next
	s.connected = true
	s.lastErr = nil
	room := s.currentRoom
	s.mu.Unlock()

	go s.readLoop(next)

	if room != "" {
		if err := s.send(chatwire.EventJoinRoom, chatwire.RoomPayload{RoomID: room}); err != nil {
			s.logger.Warn("failed to re-join room after reconnect", zap.Error(err))
		}
	}
}

// dispatch runs on the single reader goroutine, so handlers and store
// updates interleave cooperatively, never concurrently with each other.
func (s *Session) dispatch(env chatwire.Envelope) {
	s.mu.Lock()
	room := s.currentRoom
	s.mu.Unlock()

	switch env.Type {
	case chatwire.EventMessage:
		message, err := chatwire.DecodePayload[chatwire.Message](env)
		if err != nil {
			s.logger.Warn("malformed message payload", zap.Error(err))
			return
		}
		// Late events for a just-left room are ignored.
		if message.RoomID != room {
			return
		}
		s.store.Apply(message)
		s.subs.notifyMessage(message)

	case chatwire.EventTyping:
		payload, err := chatwire.DecodePayload[chatwire.TypingPayload](env)
		if err != nil || payload.RoomID != room {
			return
		}
		s.subs.notifyTyping(payload)

	case chatwire.EventPresenceState:
		payload, err := chatwire.DecodePayload[chatwire.PresenceStatePayload](env)
		if err != nil {
			return
		}
		s.presence.SetOnline(payload.Online)
		s.subs.notifyPresence(s.presence.Online())

	case chatwire.EventPresenceJoined:
		payload, err := chatwire.DecodePayload[chatwire.PresencePayload](env)
		if err != nil {
			return
		}
		s.presence.Joined(payload.UserID)
		s.subs.notifyPresence(s.presence.Online())

	case chatwire.EventPresenceLeft:
		payload, err := chatwire.DecodePayload[chatwire.PresencePayload](env)
		if err != nil {
			return
		}
		s.presence.Left(payload.UserID)
		s.subs.notifyPresence(s.presence.Online())

	case chatwire.EventRoomJoined, chatwire.EventRoomLeft:
		payload, err := chatwire.DecodePayload[chatwire.RoomPayload](env)
		if err != nil {
			return
		}
		s.subs.notifyRoom(env.Type, payload)

	case chatwire.EventBookingResponse:
		payload, err := chatwire.DecodePayload[chatwire.BookingResponsePayload](env)
		if err != nil || payload.RoomID != room {
			return
		}
		s.store.ApplyBookingResponse(payload)
		s.subs.notifyBookingResponse(payload)

	case chatwire.EventError:
		payload, err := chatwire.DecodePayload[chatwire.ErrorPayload](env)
		if err != nil {
			return
		}
		s.logger.Warn("server rejected a chat action", zap.String("message", payload.Message))
		s.subs.notifyError(payload)
	}
}
