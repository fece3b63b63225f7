package chat

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wedlockhq/wedlock-api/internal/domain"
	"github.com/wedlockhq/wedlock-api/internal/service"
	"github.com/wedlockhq/wedlock-api/pkg/chatwire"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is one authenticated websocket connection. Its identity comes
// from the JWT on the upgrade request; payload-supplied sender ids are
// ignored.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	user domain.User

	// closed is set when the hub retires this client, either on
	// unregister or when a newer connection for the same user replaces
	// it. Guarded by hub.mu.
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, user domain.User) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, hub.sendBuffer),
		user: user,
	}
}

// Start registers the client and spawns its pumps.
func (c *Client) Start() {
	c.hub.Register <- c
	go c.writePump()
	go c.readPump()
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				zap.L().Warn("unexpected websocket close", zap.Uint("user_id", c.user.ID), zap.Error(err))
			}
			break
		}

		env, err := chatwire.Decode(data)
		if err != nil {
			zap.L().Warn("dropping malformed chat frame", zap.Uint("user_id", c.user.ID), zap.Error(err))
			continue
		}

		c.handleEvent(env)
	}
}

func (c *Client) handleEvent(env chatwire.Envelope) {
	switch env.Type {
	case chatwire.EventJoinRoom:
		payload, err := chatwire.DecodePayload[chatwire.RoomPayload](env)
		if err != nil {
			c.sendError("malformed join_room payload")
			return
		}
		c.hub.JoinRoom(c, payload.RoomID)

	case chatwire.EventLeaveRoom:
		payload, err := chatwire.DecodePayload[chatwire.RoomPayload](env)
		if err != nil {
			c.sendError("malformed leave_room payload")
			return
		}
		c.hub.LeaveRoom(c, payload.RoomID)

	case chatwire.EventMessage:
		c.handleMessage(env)

	case chatwire.EventTyping:
		payload, err := chatwire.DecodePayload[chatwire.TypingPayload](env)
		if err != nil {
			c.sendError("malformed typing payload")
			return
		}
		if !c.hub.inRoom(c, payload.RoomID) {
			return
		}
		payload.UserID = c.user.ID
		c.hub.broadcastToRoomExcept(payload.RoomID, c.user.ID, chatwire.EventTyping, payload)

	case chatwire.EventBookingResponse:
		c.handleBookingResponse(env)

	default:
		// Server-originated kinds arriving inbound are ignored.
	}
}

func (c *Client) handleMessage(env chatwire.Envelope) {
	payload, err := chatwire.DecodePayload[chatwire.Message](env)
	if err != nil {
		c.sendError("malformed message payload")
		return
	}

	message := domain.Message{
		ClientID: payload.ClientID,
		RoomID:   payload.RoomID,
		Type:     payload.Type,
		Content:  payload.Content,
	}
	if payload.Proposal != nil {
		message.Proposal = &domain.BookingProposal{
			EventID: payload.Proposal.EventID,
			Price:   payload.Proposal.Price,
		}
	}

	saved, err := c.hub.svc.SaveMessage(context.Background(), message, c.user)
	if err != nil {
		zap.L().Warn("rejecting chat message", zap.Uint("user_id", c.user.ID), zap.Error(err))
		c.sendError(serviceErrorMessage(err))
		return
	}

	c.hub.BroadcastToRoom(saved.RoomID, chatwire.EventMessage, domainToWire(saved))
}

func (c *Client) handleBookingResponse(env chatwire.Envelope) {
	payload, err := chatwire.DecodePayload[chatwire.BookingResponsePayload](env)
	if err != nil {
		c.sendError("malformed booking_response payload")
		return
	}
	if payload.Status != domain.ProposalStatusAccepted && payload.Status != domain.ProposalStatusDeclined {
		c.sendError("booking response status must be accepted or declined")
		return
	}

	accept := payload.Status == domain.ProposalStatusAccepted
	message, _, err := c.hub.svc.RespondToProposal(context.Background(), payload.MessageID, c.user, accept)
	if err != nil {
		zap.L().Warn("rejecting booking response", zap.Uint("user_id", c.user.ID), zap.Error(err))
		c.sendError(serviceErrorMessage(err))
		return
	}

	// Broadcast the stored status even when nothing changed so late or
	// duplicate responders converge instead of erroring.
	c.hub.BroadcastToRoom(message.RoomID, chatwire.EventBookingResponse, chatwire.BookingResponsePayload{
		RoomID:      message.RoomID,
		MessageID:   message.ID,
		ResponderID: c.user.ID,
		Status:      message.Proposal.Status,
	})
}

func (c *Client) sendError(msg string) {
	c.hub.sendTo(c, chatwire.EventError, chatwire.ErrorPayload{Message: msg})
}

func serviceErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidMessageType),
		errors.Is(err, service.ErrNotRoomMember),
		errors.Is(err, service.ErrNotProposal),
		errors.Is(err, service.ErrNotProposalRecipient),
		errors.Is(err, service.ErrProposalNotAllowed),
		errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrMessageNotFound):
		return err.Error()
	}
	return "internal error"
}

func domainToWire(m domain.Message) chatwire.Message {
	wire := chatwire.Message{
		ID:         m.ID,
		ClientID:   m.ClientID,
		RoomID:     m.RoomID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		Type:       m.Type,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
	if m.Proposal != nil {
		wire.Proposal = &chatwire.BookingProposal{
			EventID:       m.Proposal.EventID,
			EventName:     m.Proposal.EventName,
			Price:         m.Proposal.Price,
			OfficiantID:   m.Proposal.OfficiantID,
			OfficiantName: m.Proposal.OfficiantName,
			CoupleID:      m.Proposal.CoupleID,
			CoupleName:    m.Proposal.CoupleName,
			Status:        m.Proposal.Status,
		}
	}

	return wire
}
