// Package register serves POST /auth/register-cliente.
package register

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

// Handler creates a cliente together with its login.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service is the cliente registration use case.
type Service interface {
	RegisterCliente(ctx context.Context, req models.RegisterClienteRequest) (*models.RegisterClienteResult, error)
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
// @Summary Register a cliente
// @Description Creates the cliente record and its login in one transaction.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RegisterClienteRequest true "Cliente and credentials"
// @Success 201 {object} response.Response{data=models.RegisterClienteResult}
// @Failure 400 {object} response.ErrorResponse "Email already exists / CI already exists"
// @Router /auth/register-cliente [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.RegisterClienteRequest
	if err := request.Decode(r, h.validate, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info("request body decoded", slog.String("email", req.Email), slog.String("ci", req.CI))

	res, err := h.service.RegisterCliente(r.Context(), req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("cliente registered", slog.Int64("cliente_id", res.Cliente.ID))
	response.JSON(w, r, http.StatusCreated, res)
}
