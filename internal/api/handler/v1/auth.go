package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wedlockhq/wedlock-api/internal/api/handler/v1/request"
	"github.com/wedlockhq/wedlock-api/internal/api/handler/v1/response"
	"github.com/wedlockhq/wedlock-api/internal/config"
	"github.com/wedlockhq/wedlock-api/internal/domain"
	"github.com/wedlockhq/wedlock-api/internal/pkg/jwthelper"
	"github.com/wedlockhq/wedlock-api/internal/service"
)

const tokenTTL = 24 * time.Hour

type AuthService interface {
	SignupCouple(ctx context.Context, couple domain.Couple) (domain.User, error)
	SignupOfficiant(ctx context.Context, officiant domain.Officiant) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, error)
}

type AuthHandler struct {
	conf *config.APIConfig
	svc  AuthService
}

func NewAuthHandler(conf *config.APIConfig, svc AuthService) *AuthHandler {
	return &AuthHandler{
		conf: conf,
		svc:  svc,
	}
}

// HandleSignup godoc
// @Summary      Signup a new couple or officiant
// @Tags         auth
// @Produce      json
// @Param        request   body      request.SignupRequest true "request body"
// @Success      201      {object}   domain.User
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/signup [post]
func (h *AuthHandler) HandleSignup(ctx *gin.Context) {
	var req request.SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var user domain.User
	var err error

	switch req.Role {
	case domain.RoleCouple:
		weddingDate := time.Time{}
		if req.WeddingDate != "" {
			weddingDate, err = time.Parse(time.RFC3339, req.WeddingDate)
			if err != nil {
				response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid wedding_date format: %v", err)))
				return
			}
		}

		user, err = h.svc.SignupCouple(ctx.Request.Context(), domain.Couple{
			User: domain.User{
				Email:    req.Email,
				Password: req.Password,
				Name:     req.Name,
				Role:     domain.RoleCouple,
			},
			PartnerName: req.PartnerName,
			WeddingDate: weddingDate,
		})

	case domain.RoleOfficiant:
		user, err = h.svc.SignupOfficiant(ctx.Request.Context(), domain.Officiant{
			User: domain.User{
				Email:    req.Email,
				Password: req.Password,
				Name:     req.Name,
				Role:     domain.RoleOfficiant,
			},
			Bio:       req.Bio,
			BasePrice: req.BasePrice,
		})

	default:
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid role")))
		return
	}

	if err != nil {
		if errors.Is(err, service.ErrUserEmailExists) {
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrUserEmailExists))
			return
		}

		err = fmt.Errorf("v1.HandleSignup -> h.svc.Signup -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

// HandleLogin godoc
// @Summary      Login a user
// @Tags         auth
// @Produce      json
// @Param        request   body      request.LoginRequest true "request body"
// @Success      200      {object}   response.LoginResponse
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/login [post]
func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	req := request.LoginRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	user, err := h.svc.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrWrongPassword) {
			response.RenderErr(ctx, response.ErrWrongCredentials(err))

			return
		}

		err = fmt.Errorf("v1.HandleLogin -> h.svc.Login -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	token, err := jwthelper.GenerateToken(h.conf.JWTSigningKey, user.ID, tokenTTL)
	if err != nil {
		err = fmt.Errorf("v1.HandleLogin -> jwthelper.GenerateToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.LoginResponse{
		Token: token,
		User:  user,
	})
}
