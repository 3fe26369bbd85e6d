// Package registeradmin serves POST /auth/register-admin.
package registeradmin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/dipaca/autolavado/internal/http/request"
	"github.com/dipaca/autolavado/internal/http/response"
	"github.com/dipaca/autolavado/internal/models"
)

// Handler creates admin logins.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service is the admin registration use case.
type Service interface {
	RegisterAdmin(ctx context.Context, req models.RegisterAdminRequest) (*models.User, error)
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: request.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Register an admin
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.RegisterAdminRequest true "Admin credentials"
// @Success 201 {object} response.Response{data=models.User}
// @Failure 400 {object} response.ErrorResponse "User already exists"
// @Failure 403 {object} response.ErrorResponse
// @Router /auth/register-admin [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.registeradmin"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.RegisterAdminRequest
	if err := request.Decode(r, h.validate, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}

	user, err := h.service.RegisterAdmin(r.Context(), req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("admin registered", slog.Int64("user_id", user.ID))
	response.JSON(w, r, http.StatusCreated, user)
}
