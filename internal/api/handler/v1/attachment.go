package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wedlockhq/wedlock-api/internal/api/handler/v1/response"
	"github.com/wedlockhq/wedlock-api/internal/domain"
	"github.com/wedlockhq/wedlock-api/internal/service"
)

type AttachmentService interface {
	Store(ctx context.Context, uploaderID uint, fileName, mimeType string, size int64, r io.Reader) (domain.Attachment, error)
}

type AttachmentHandler struct {
	svc  AttachmentService
	uSvc UserService
}

func NewAttachmentHandler(svc AttachmentService, uSvc UserService) *AttachmentHandler {
	return &AttachmentHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleUpload godoc
// @Summary      Upload an attachment
// @Description  Stores a file and returns its public URL plus size/mime metadata; the chat message referencing it is sent afterwards
// @Tags         attachments
// @Accept       mpfd
// @Produce      json
// @Param        file  formData   file  true "file to upload"
// @Success      201      {object}   domain.Attachment
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /attachments [post]
// @Security BearerAuth
func (h *AttachmentHandler) HandleUpload(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("missing file: %w", err)))
		return
	}

	f, err := header.Open()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("unreadable file: %w", err)))
		return
	}
	defer f.Close()

	attachment, err := h.svc.Store(
		ctx.Request.Context(),
		user.ID,
		header.Filename,
		header.Header.Get("Content-Type"),
		header.Size,
		f,
	)
	if err != nil {
		if errors.Is(err, service.ErrAttachmentTooLarge) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("v1.HandleUpload -> h.svc.Store -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, attachment)
}
