package chat

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wedlockhq/wedlock-api/internal/domain"
	"github.com/wedlockhq/wedlock-api/internal/service"
	"github.com/wedlockhq/wedlock-api/pkg/chatwire"
)

// fakeChatService stores messages in memory and mirrors the service's
// proposal rules closely enough to drive the hub end to end.
type fakeChatService struct {
	mu       sync.Mutex
	nextID   uint
	messages map[uint]domain.Message
}

func newFakeChatService() *fakeChatService {
	return &fakeChatService{messages: make(map[uint]domain.Message)}
}

func (f *fakeChatService) SaveMessage(_ context.Context, message domain.Message, sender domain.User) (domain.Message, error) {
	if !domain.ValidMessageType(message.Type) {
		return domain.Message{}, service.ErrInvalidMessageType
	}
	if !chatwire.IsRoomMember(message.RoomID, sender.ID) {
		return domain.Message{}, service.ErrNotRoomMember
	}

	message.SenderID = sender.ID
	message.SenderName = sender.Name
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	if message.Type == domain.MessageTypeProposal {
		if sender.Role != domain.RoleOfficiant {
			return domain.Message{}, service.ErrProposalNotAllowed
		}
		lo, hi, err := chatwire.ParseRoomID(message.RoomID)
		if err != nil {
			return domain.Message{}, err
		}
		coupleID := lo
		if coupleID == sender.ID {
			coupleID = hi
		}
		message.Proposal = &domain.BookingProposal{
			EventID:     message.Proposal.EventID,
			Price:       message.Proposal.Price,
			OfficiantID: sender.ID,
			CoupleID:    coupleID,
			Status:      domain.ProposalStatusPending,
		}
	} else {
		message.Proposal = nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	message.ID = f.nextID
	f.messages[message.ID] = message

	return message, nil
}

func (f *fakeChatService) RespondToProposal(_ context.Context, messageID uint, responder domain.User, accept bool) (domain.Message, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	message, ok := f.messages[messageID]
	if !ok {
		return domain.Message{}, false, service.ErrMessageNotFound
	}
	if message.Type != domain.MessageTypeProposal || message.Proposal == nil {
		return domain.Message{}, false, service.ErrNotProposal
	}
	if message.Proposal.CoupleID != responder.ID {
		return domain.Message{}, false, service.ErrNotProposalRecipient
	}
	if message.Proposal.Status != domain.ProposalStatusPending {
		return message, false, nil
	}

	status := domain.ProposalStatusDeclined
	if accept {
		status = domain.ProposalStatusAccepted
	}
	message.Proposal.Status = status
	f.messages[messageID] = message

	return message, true, nil
}

// hubFixture runs a hub behind a bare websocket endpoint that trusts a
// user id query param, standing in for the JWT middleware.
type hubFixture struct {
	t   *testing.T
	hub *Hub
	srv *httptest.Server
	svc *fakeChatService
}

func newHubFixture(t *testing.T) *hubFixture {
	svc := newFakeChatService()
	hub := NewHub(svc, 16)
	go hub.Run()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(r.URL.Query().Get("uid"), 10, 32)
		if err != nil {
			http.Error(w, "bad uid", http.StatusBadRequest)
			return
		}
		user := domain.User{
			ID:   uint(id),
			Name: r.URL.Query().Get("name"),
			Role: r.URL.Query().Get("role"),
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewClient(hub, conn, user).Start()
	}))
	t.Cleanup(srv.Close)

	return &hubFixture{t: t, hub: hub, srv: srv, svc: svc}
}

func (f *hubFixture) dial(user domain.User) *websocket.Conn {
	f.t.Helper()

	url := fmt.Sprintf("ws%s?uid=%d&name=%s&role=%s",
		strings.TrimPrefix(f.srv.URL, "http"), user.ID, user.Name, user.Role)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(f.t, err)
	f.t.Cleanup(func() { conn.Close() })

	return conn
}

func writeEnvelope(t *testing.T, conn *websocket.Conn, eventType chatwire.EventType, payload any) {
	t.Helper()
	data, err := chatwire.Encode(eventType, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

// waitForEnvelope reads frames until one of the wanted type arrives.
func waitForEnvelope(t *testing.T, conn *websocket.Conn, eventType chatwire.EventType, timeout time.Duration) (chatwire.Envelope, bool) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(timeout))
	defer conn.SetReadDeadline(time.Time{})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return chatwire.Envelope{}, false
		}
		env, err := chatwire.Decode(data)
		if err != nil {
			continue
		}
		if env.Type == eventType {
			return env, true
		}
	}
}

func joinRoom(t *testing.T, conn *websocket.Conn, roomID string) {
	t.Helper()
	writeEnvelope(t, conn, chatwire.EventJoinRoom, chatwire.RoomPayload{RoomID: roomID})
	_, ok := waitForEnvelope(t, conn, chatwire.EventRoomJoined, 2*time.Second)
	require.True(t, ok, "expected room_joined ack")
}

var (
	couple    = domain.User{ID: 1, Name: "Avery", Role: domain.RoleCouple}
	officiant = domain.User{ID: 2, Name: "Jordan", Role: domain.RoleOfficiant}
)

func TestHub_MessageEchoReachesBothParticipants(t *testing.T) {
	f := newHubFixture(t)
	roomID := chatwire.RoomID(couple.ID, officiant.ID)

	coupleConn := f.dial(couple)
	officiantConn := f.dial(officiant)
	joinRoom(t, coupleConn, roomID)
	joinRoom(t, officiantConn, roomID)

	writeEnvelope(t, coupleConn, chatwire.EventMessage, chatwire.Message{
		ClientID: "c-1",
		RoomID:   roomID,
		// Spoofed identity is discarded in favor of the connection's.
		SenderID: 999,
		Type:     chatwire.TypeText,
		Content:  "Hello",
	})

	for _, conn := range []*websocket.Conn{coupleConn, officiantConn} {
		env, ok := waitForEnvelope(t, conn, chatwire.EventMessage, 2*time.Second)
		require.True(t, ok)

		message, err := chatwire.DecodePayload[chatwire.Message](env)
		require.NoError(t, err)
		assert.NotZero(t, message.ID)
		assert.Equal(t, "c-1", message.ClientID, "correlation id must survive the round trip")
		assert.Equal(t, couple.ID, message.SenderID)
		assert.Equal(t, couple.Name, message.SenderName)
		assert.Equal(t, "Hello", message.Content)
	}
}

func TestHub_MessagesStayInsideTheirRoom(t *testing.T) {
	f := newHubFixture(t)
	outsider := domain.User{ID: 3, Name: "Sam", Role: domain.RoleCouple}
	roomID := chatwire.RoomID(couple.ID, officiant.ID)

	coupleConn := f.dial(couple)
	officiantConn := f.dial(officiant)
	outsiderConn := f.dial(outsider)
	joinRoom(t, coupleConn, roomID)
	joinRoom(t, officiantConn, roomID)
	joinRoom(t, outsiderConn, chatwire.RoomID(outsider.ID, officiant.ID))

	writeEnvelope(t, coupleConn, chatwire.EventMessage, chatwire.Message{
		RoomID:  roomID,
		Type:    chatwire.TypeText,
		Content: "private",
	})

	_, ok := waitForEnvelope(t, officiantConn, chatwire.EventMessage, 2*time.Second)
	require.True(t, ok)

	_, leaked := waitForEnvelope(t, outsiderConn, chatwire.EventMessage, 500*time.Millisecond)
	assert.False(t, leaked, "outsider must not receive another room's message")
}

func TestHub_JoinRejectsNonMembers(t *testing.T) {
	f := newHubFixture(t)

	conn := f.dial(couple)
	writeEnvelope(t, conn, chatwire.EventJoinRoom, chatwire.RoomPayload{RoomID: chatwire.RoomID(5, 6)})

	env, ok := waitForEnvelope(t, conn, chatwire.EventError, 2*time.Second)
	require.True(t, ok)
	payload, err := chatwire.DecodePayload[chatwire.ErrorPayload](env)
	require.NoError(t, err)
	assert.Contains(t, payload.Message, "not a member")
}

func TestHub_TypingGoesToOthersOnly(t *testing.T) {
	f := newHubFixture(t)
	roomID := chatwire.RoomID(couple.ID, officiant.ID)

	coupleConn := f.dial(couple)
	officiantConn := f.dial(officiant)
	joinRoom(t, coupleConn, roomID)
	joinRoom(t, officiantConn, roomID)

	writeEnvelope(t, coupleConn, chatwire.EventTyping, chatwire.TypingPayload{
		RoomID:   roomID,
		UserID:   999, // ignored
		IsTyping: true,
	})

	env, ok := waitForEnvelope(t, officiantConn, chatwire.EventTyping, 2*time.Second)
	require.True(t, ok)
	payload, err := chatwire.DecodePayload[chatwire.TypingPayload](env)
	require.NoError(t, err)
	assert.Equal(t, couple.ID, payload.UserID)
	assert.True(t, payload.IsTyping)

	_, echoed := waitForEnvelope(t, coupleConn, chatwire.EventTyping, 500*time.Millisecond)
	assert.False(t, echoed, "typing must not echo back to its sender")
}

func TestHub_ProposalAcceptConvergesForLateResponders(t *testing.T) {
	f := newHubFixture(t)
	roomID := chatwire.RoomID(couple.ID, officiant.ID)

	coupleConn := f.dial(couple)
	officiantConn := f.dial(officiant)
	joinRoom(t, coupleConn, roomID)
	joinRoom(t, officiantConn, roomID)

	writeEnvelope(t, officiantConn, chatwire.EventMessage, chatwire.Message{
		RoomID:   roomID,
		Type:     chatwire.TypeProposal,
		Proposal: &chatwire.BookingProposal{EventID: 1, Price: 1200},
	})

	env, ok := waitForEnvelope(t, coupleConn, chatwire.EventMessage, 2*time.Second)
	require.True(t, ok)
	proposal, err := chatwire.DecodePayload[chatwire.Message](env)
	require.NoError(t, err)
	require.NotNil(t, proposal.Proposal)
	assert.Equal(t, domain.ProposalStatusPending, proposal.Proposal.Status)
	assert.Equal(t, couple.ID, proposal.Proposal.CoupleID)

	writeEnvelope(t, coupleConn, chatwire.EventBookingResponse, chatwire.BookingResponsePayload{
		RoomID:    roomID,
		MessageID: proposal.ID,
		Status:    domain.ProposalStatusAccepted,
	})

	for _, conn := range []*websocket.Conn{coupleConn, officiantConn} {
		env, ok := waitForEnvelope(t, conn, chatwire.EventBookingResponse, 2*time.Second)
		require.True(t, ok)
		resp, err := chatwire.DecodePayload[chatwire.BookingResponsePayload](env)
		require.NoError(t, err)
		assert.Equal(t, proposal.ID, resp.MessageID)
		assert.Equal(t, domain.ProposalStatusAccepted, resp.Status)
	}

	// A duplicate decline arrives late; the stored status wins and is
	// re-broadcast so every view converges.
	writeEnvelope(t, coupleConn, chatwire.EventBookingResponse, chatwire.BookingResponsePayload{
		RoomID:    roomID,
		MessageID: proposal.ID,
		Status:    domain.ProposalStatusDeclined,
	})

	env, ok = waitForEnvelope(t, coupleConn, chatwire.EventBookingResponse, 2*time.Second)
	require.True(t, ok)
	resp, err := chatwire.DecodePayload[chatwire.BookingResponsePayload](env)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusAccepted, resp.Status)
}

func TestHub_ProposalFromCoupleIsRejected(t *testing.T) {
	f := newHubFixture(t)
	roomID := chatwire.RoomID(couple.ID, officiant.ID)

	coupleConn := f.dial(couple)
	joinRoom(t, coupleConn, roomID)

	writeEnvelope(t, coupleConn, chatwire.EventMessage, chatwire.Message{
		RoomID:   roomID,
		Type:     chatwire.TypeProposal,
		Proposal: &chatwire.BookingProposal{EventID: 1, Price: 500},
	})

	env, ok := waitForEnvelope(t, coupleConn, chatwire.EventError, 2*time.Second)
	require.True(t, ok)
	payload, err := chatwire.DecodePayload[chatwire.ErrorPayload](env)
	require.NoError(t, err)
	assert.Contains(t, payload.Message, "officiants")
}

func TestHub_PresenceEvents(t *testing.T) {
	f := newHubFixture(t)

	coupleConn := f.dial(couple)
	env, ok := waitForEnvelope(t, coupleConn, chatwire.EventPresenceState, 2*time.Second)
	require.True(t, ok)
	state, err := chatwire.DecodePayload[chatwire.PresenceStatePayload](env)
	require.NoError(t, err)
	assert.Contains(t, state.Online, couple.ID)

	officiantConn := f.dial(officiant)
	env, ok = waitForEnvelope(t, coupleConn, chatwire.EventPresenceJoined, 2*time.Second)
	require.True(t, ok)
	joined, err := chatwire.DecodePayload[chatwire.PresencePayload](env)
	require.NoError(t, err)
	assert.Equal(t, officiant.ID, joined.UserID)

	env, ok = waitForEnvelope(t, officiantConn, chatwire.EventPresenceState, 2*time.Second)
	require.True(t, ok)
	state, err = chatwire.DecodePayload[chatwire.PresenceStatePayload](env)
	require.NoError(t, err)
	assert.Contains(t, state.Online, couple.ID)
	assert.Contains(t, state.Online, officiant.ID)

	officiantConn.Close()
	env, ok = waitForEnvelope(t, coupleConn, chatwire.EventPresenceLeft, 2*time.Second)
	require.True(t, ok)
	left, err := chatwire.DecodePayload[chatwire.PresencePayload](env)
	require.NoError(t, err)
	assert.Equal(t, officiant.ID, left.UserID)
}

func TestHub_ReplacedConnectionKeepsUserOnline(t *testing.T) {
	f := newHubFixture(t)

	first := f.dial(couple)
	second := f.dial(couple)

	_, ok := waitForEnvelope(t, second, chatwire.EventPresenceState, 2*time.Second)
	require.True(t, ok)

	// The second dial replaced the first connection; its teardown and
	// unregister must not take the still-connected user offline.
	first.Close()
	time.Sleep(300 * time.Millisecond)
	assert.True(t, f.hub.Presence().IsOnline(couple.ID), "user with a live connection must stay online")

	// Closing the live connection is what takes the user offline.
	second.Close()
	assert.Eventually(t, func() bool {
		return !f.hub.Presence().IsOnline(couple.ID)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_JoinFromReplacedConnectionIsIgnored(t *testing.T) {
	f := newHubFixture(t)
	roomID := chatwire.RoomID(couple.ID, officiant.ID)

	stale := NewClient(f.hub, nil, couple)
	f.hub.Register <- stale
	replacement := NewClient(f.hub, nil, couple)
	f.hub.Register <- replacement

	require.Eventually(t, func() bool {
		f.hub.mu.RLock()
		defer f.hub.mu.RUnlock()
		return f.hub.clients[couple.ID] == replacement
	}, 2*time.Second, 10*time.Millisecond)

	// The replaced connection's read pump may still have a join in
	// flight; it must neither write to the closed send channel nor
	// re-enter the room map.
	f.hub.JoinRoom(stale, roomID)

	assert.False(t, f.hub.inRoom(stale, roomID))
	assert.True(t, f.hub.Presence().IsOnline(couple.ID))
}

func TestHub_MalformedFramesAreDropped(t *testing.T) {
	f := newHubFixture(t)
	roomID := chatwire.RoomID(couple.ID, officiant.ID)

	conn := f.dial(couple)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"bogus"}`)))

	// The connection survives and keeps working.
	joinRoom(t, conn, roomID)
}
