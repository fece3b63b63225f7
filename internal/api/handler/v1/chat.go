package v1

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wedlockhq/wedlock-api/internal/api/handler/v1/response"
	"github.com/wedlockhq/wedlock-api/internal/chat"
	"github.com/wedlockhq/wedlock-api/internal/domain"
	"github.com/wedlockhq/wedlock-api/pkg/chatwire"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust this for production!
	},
}

type ChatHistoryService interface {
	GetRoomMessages(ctx context.Context, roomID string, limit, offset int) ([]domain.Message, error)
}

type ChatHandler struct {
	hub  *chat.Hub
	svc  ChatHistoryService
	uSvc UserService
}

func NewChatHandler(hub *chat.Hub, svc ChatHistoryService, uSvc UserService) *ChatHandler {
	return &ChatHandler{
		hub:  hub,
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleWebSocket godoc
// @Summary Establish the chat websocket connection
// @Description One connection per authenticated user; rooms are joined and left over the socket itself
// @Tags chat
// @Produce json
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} response.Err
// @Failure 500 {object} response.Err
// @Router /ws [get]
// @Security BearerAuth
func (h *ChatHandler) HandleWebSocket(c *gin.Context) {
	user, respErr := getUserFromContext(c, h.uSvc)
	if respErr != nil {
		response.RenderErr(c, respErr)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Warn("failed to upgrade websocket", zap.Error(err))
		return
	}

	chat.NewClient(h.hub, conn, user).Start()
}

// HandleGetRoomMessages godoc
// @Summary Get the message history for a conversation
// @Description Returns the messages of the room between the authenticated user and the partner, in insertion order
// @Tags chat
// @Produce json
// @Param partnerID path int true "conversation partner's user ID"
// @Param limit query int false "number of messages to retrieve (default 50)"
// @Param offset query int false "offset for pagination (default 0)"
// @Success 200 {array} domain.Message
// @Failure 400 {object} response.Err
// @Failure 401 {object} response.Err
// @Failure 500 {object} response.Err
// @Router /rooms/{partnerID}/messages [get]
// @Security BearerAuth
func (h *ChatHandler) HandleGetRoomMessages(c *gin.Context) {
	user, respErr := getUserFromContext(c, h.uSvc)
	if respErr != nil {
		response.RenderErr(c, respErr)
		return
	}

	partnerID, err := strconv.ParseUint(c.Param("partnerID"), 10, 32)
	if err != nil {
		response.RenderErr(c, response.ErrBadRequest(fmt.Errorf("invalid partner ID: %w", err)))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	roomID := chatwire.RoomID(user.ID, uint(partnerID))
	messages, err := h.svc.GetRoomMessages(c.Request.Context(), roomID, limit, offset)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetRoomMessages -> h.svc.GetRoomMessages -> %w", err)
		response.RenderErr(c, response.ErrInternalServerError(err))
		return
	}

	c.JSON(http.StatusOK, messages)
}
