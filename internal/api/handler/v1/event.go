package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wedlockhq/wedlock-api/internal/api/handler/v1/request"
	"github.com/wedlockhq/wedlock-api/internal/api/handler/v1/response"
	"github.com/wedlockhq/wedlock-api/internal/domain"
	"github.com/wedlockhq/wedlock-api/internal/service"
)

type EventService interface {
	CreateEvent(ctx context.Context, event domain.WeddingEvent) (domain.WeddingEvent, error)
	GetEvent(ctx context.Context, id uint) (domain.WeddingEvent, error)
	GetEventsByCouple(ctx context.Context, coupleID uint) ([]domain.WeddingEvent, error)
}

type EventHandler struct {
	svc  EventService
	uSvc UserService
}

func NewEventHandler(svc EventService, uSvc UserService) *EventHandler {
	return &EventHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleCreateEvent godoc
// @Summary      Create a wedding event
// @Tags         events
// @Produce      json
// @Param        request  body       request.CreateEventRequest true "request body"
// @Success      201      {object}   domain.WeddingEvent
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events [post]
// @Security BearerAuth
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if user.Role != domain.RoleCouple {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v is not a couple", user.ID)))
		return
	}

	var req request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid date format: %v", err)))
		return
	}

	event, err := h.svc.CreateEvent(ctx.Request.Context(), domain.WeddingEvent{
		CoupleID:    user.ID,
		Name:        req.Name,
		Date:        date,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateEvent -> h.svc.CreateEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, event)
}

// HandleGetEvents godoc
// @Summary      List the authenticated couple's events
// @Tags         events
// @Produce      json
// @Success      200      {array}    domain.WeddingEvent
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events [get]
// @Security BearerAuth
func (h *EventHandler) HandleGetEvents(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	coupleID := user.ID
	if partner := ctx.Query("couple_id"); partner != "" && user.Role == domain.RoleOfficiant {
		// Officiants may list a couple's events to compose proposals.
		id, err := strconv.ParseUint(partner, 10, 32)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid couple_id: %w", err)))
			return
		}
		coupleID = uint(id)
	}

	events, err := h.svc.GetEventsByCouple(ctx.Request.Context(), coupleID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetEvents -> h.svc.GetEventsByCouple -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleGetEvent godoc
// @Summary      Get a wedding event by id
// @Tags         events
// @Produce      json
// @Param        eventID  path       int  true "event ID"
// @Success      200      {object}   domain.WeddingEvent
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events/{eventID} [get]
// @Security BearerAuth
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	eventID, err := strconv.ParseUint(ctx.Param("eventID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid event ID: %w", err)))
		return
	}

	event, err := h.svc.GetEvent(ctx.Request.Context(), uint(eventID))
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("v1.HandleGetEvent -> h.svc.GetEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, event)
}
