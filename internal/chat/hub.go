// Package chat is the server side of the real-time messaging layer: a
// hub of authenticated websocket clients, two-party rooms, and the
// push-driven presence set.
package chat

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wedlockhq/wedlock-api/internal/domain"
	"github.com/wedlockhq/wedlock-api/pkg/chatwire"
)

type ChatService interface {
	SaveMessage(ctx context.Context, message domain.Message, sender domain.User) (domain.Message, error)
	RespondToProposal(ctx context.Context, messageID uint, responder domain.User, accept bool) (domain.Message, bool, error)
}

type Hub struct {
	svc ChatService

	// clients: one connection per user, the newest wins.
	clients map[uint]*Client
	// rooms: roomID -> userID -> client, only currently-joined members.
	rooms map[string]map[uint]*Client

	presence *PresenceSet

	Register   chan *Client
	Unregister chan *Client

	sendBuffer int

	mu sync.RWMutex
}

func NewHub(svc ChatService, sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = 256
	}

	return &Hub{
		svc:        svc,
		clients:    make(map[uint]*Client),
		rooms:      make(map[string]map[uint]*Client),
		presence:   NewPresenceSet(),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		sendBuffer: sendBuffer,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if old, ok := h.clients[client.user.ID]; ok {
				h.removeFromRoomsLocked(old)
				h.closeLocked(old)
			}
			h.clients[client.user.ID] = client
			h.mu.Unlock()

			h.presence.Add(client.user.ID)
			h.broadcastAll(chatwire.EventPresenceJoined, chatwire.PresencePayload{UserID: client.user.ID})
			h.sendTo(client, chatwire.EventPresenceState, chatwire.PresenceStatePayload{Online: h.presence.Online()})

			zap.L().Info("chat client registered", zap.Uint("user_id", client.user.ID))

		case client := <-h.Unregister:
			h.mu.Lock()
			wasCurrent := false
			if current, ok := h.clients[client.user.ID]; ok && current == client {
				delete(h.clients, client.user.ID)
				wasCurrent = true
			}
			h.removeFromRoomsLocked(client)
			h.closeLocked(client)
			h.mu.Unlock()

			// A connection that was already replaced by a newer one for
			// the same user must not mark the user offline on its way out.
			if !wasCurrent {
				continue
			}

			h.presence.Remove(client.user.ID)
			h.broadcastAll(chatwire.EventPresenceLeft, chatwire.PresencePayload{UserID: client.user.ID})

			zap.L().Info("chat client unregistered", zap.Uint("user_id", client.user.ID))
		}
	}
}

// closeLocked marks client dead and closes its send channel exactly
// once. Expects h.mu to be held; trySend checks the flag under the
// same lock, so no frame can race the close.
func (h *Hub) closeLocked(client *Client) {
	if !client.closed {
		client.closed = true
		close(client.send)
	}
}

// removeFromRoomsLocked expects h.mu to be held.
func (h *Hub) removeFromRoomsLocked(client *Client) {
	for roomID, members := range h.rooms {
		if members[client.user.ID] == client {
			delete(members, client.user.ID)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
}

func (h *Hub) Presence() *PresenceSet {
	return h.presence
}

// JoinRoom subscribes client to roomID. Joining a room the client is
// already in is harmless.
func (h *Hub) JoinRoom(client *Client, roomID string) {
	if !chatwire.IsRoomMember(roomID, client.user.ID) {
		h.sendTo(client, chatwire.EventError, chatwire.ErrorPayload{Message: "not a member of room " + roomID})
		return
	}

	h.mu.Lock()
	if client.closed {
		// A replaced connection with a join still in flight; it must not
		// re-enter the room map.
		h.mu.Unlock()
		return
	}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[uint]*Client)
	}
	h.rooms[roomID][client.user.ID] = client
	h.mu.Unlock()

	h.sendTo(client, chatwire.EventRoomJoined, chatwire.RoomPayload{RoomID: roomID})
	h.sendTo(client, chatwire.EventPresenceState, chatwire.PresenceStatePayload{Online: h.presence.Online()})
}

func (h *Hub) LeaveRoom(client *Client, roomID string) {
	h.mu.Lock()
	if members, ok := h.rooms[roomID]; ok {
		if members[client.user.ID] == client {
			delete(members, client.user.ID)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	h.mu.Unlock()

	h.sendTo(client, chatwire.EventRoomLeft, chatwire.RoomPayload{RoomID: roomID})
}

func (h *Hub) inRoom(client *Client, roomID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members, ok := h.rooms[roomID]
	return ok && members[client.user.ID] == client
}

// BroadcastToRoom pushes an event to every joined member of roomID,
// including the sender. The sender's own echo is what confirms its
// optimistic copy.
func (h *Hub) BroadcastToRoom(roomID string, t chatwire.EventType, payload any) {
	data, err := chatwire.Encode(t, payload)
	if err != nil {
		zap.L().Error("failed to encode room event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.rooms[roomID] {
		h.trySend(client, data)
	}
}

func (h *Hub) broadcastToRoomExcept(roomID string, exceptUserID uint, t chatwire.EventType, payload any) {
	data, err := chatwire.Encode(t, payload)
	if err != nil {
		zap.L().Error("failed to encode room event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for userID, client := range h.rooms[roomID] {
		if userID == exceptUserID {
			continue
		}
		h.trySend(client, data)
	}
}

func (h *Hub) broadcastAll(t chatwire.EventType, payload any) {
	data, err := chatwire.Encode(t, payload)
	if err != nil {
		zap.L().Error("failed to encode broadcast event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		h.trySend(client, data)
	}
}

func (h *Hub) sendTo(client *Client, t chatwire.EventType, payload any) {
	data, err := chatwire.Encode(t, payload)
	if err != nil {
		zap.L().Error("failed to encode event", zap.Error(err))
		return
	}

	h.mu.RLock()
	h.trySend(client, data)
	h.mu.RUnlock()
}

// trySend expects h.mu to be held; the closed check under the lock is
// what keeps a replaced client's closed channel from being written to.
// It never blocks the hub on a slow consumer; the frame is dropped and
// the read pump will eventually tear the connection down.
func (h *Hub) trySend(client *Client, data []byte) {
	if client.closed {
		return
	}

	select {
	case client.send <- data:
	default:
		zap.L().Warn("dropping frame for slow chat client", zap.Uint("user_id", client.user.ID))
	}
}
