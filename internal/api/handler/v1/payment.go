package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wedlockhq/wedlock-api/internal/api/handler/v1/response"
	"github.com/wedlockhq/wedlock-api/internal/domain"
	"github.com/wedlockhq/wedlock-api/internal/service"
)

type PaymentService interface {
	CreateProposalCheckout(ctx context.Context, messageID uint, payer domain.User) (string, error)
}

type PaymentHandler struct {
	svc  PaymentService
	uSvc UserService
}

func NewPaymentHandler(svc PaymentService, uSvc UserService) *PaymentHandler {
	return &PaymentHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleProposalCheckout godoc
// @Summary      Create a Stripe Checkout session for an accepted booking proposal
// @Tags         payments
// @Produce      json
// @Param        messageID  path  int  true "booking proposal message ID"
// @Success      201      {object}   map[string]string
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /proposals/{messageID}/checkout [post]
// @Security BearerAuth
func (h *PaymentHandler) HandleProposalCheckout(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	messageID, err := strconv.ParseUint(ctx.Param("messageID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid message ID: %w", err)))
		return
	}

	url, err := h.svc.CreateProposalCheckout(ctx.Request.Context(), uint(messageID), user)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			response.RenderErr(ctx, response.ErrNotFound("proposal", "messageID", messageID))
		case errors.Is(err, service.ErrNotProposal), errors.Is(err, service.ErrProposalNotAccepted):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrNotProposalPayer):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("v1.HandleProposalCheckout -> h.svc.CreateProposalCheckout -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"checkout_url": url})
}
