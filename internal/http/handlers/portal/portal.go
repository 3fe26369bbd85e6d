// Package portal serves /client, the self-service routes of a cliente.
// Every route is scoped to the cliente id carried by the token.
package portal

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/dipaca/autolavado/internal/access"
	"github.com/dipaca/autolavado/internal/http/middlewarectx"
	"github.com/dipaca/autolavado/internal/http/request"
	"github.com/dipaca/autolavado/internal/http/response"
	"github.com/dipaca/autolavado/internal/lib/apperr"
	"github.com/dipaca/autolavado/internal/models"
)

// Service is the client portal use case.
type Service interface {
	Dashboard(ctx context.Context, clienteID int64) (*models.ClienteDashboard, error)
	ActiveServices(ctx context.Context, clienteID int64, turno string, limit int) ([]models.ServicioView, error)
	Info(ctx context.Context, clienteID int64) (*models.Cliente, error)
	Services(ctx context.Context, clienteID int64, status models.Status, limit int) ([]models.ServicioView, error)
	Vehicles(ctx context.Context, clienteID int64) ([]models.Vehiculo, error)
	UpdateProfile(ctx context.Context, clienteID int64, in models.ProfileUpdate) (*models.Cliente, error)
}

// Handler serves the portal routes.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: request.NewValidator(),
	}
}

// prepare returns the request logger and the caller's cliente id.
func (h *Handler) prepare(r *http.Request, op string) (*slog.Logger, int64, error) {
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	who, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		return log, 0, apperr.Unauthenticated("No token provided")
	}
	if who.ClienteID == nil {
		return log, 0, access.ErrNoCliente
	}
	return log, *who.ClienteID, nil
}

func rows[T any](w http.ResponseWriter, r *http.Request, log *slog.Logger, out []T, err error) {
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if out == nil {
		out = []T{}
	}
	render.JSON(w, r, response.OKWithData(out))
}

// Dashboard godoc
// @Summary Cliente overview
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.ClienteDashboard}
// @Failure 403 {object} response.ErrorResponse "User is not associated with a cliente"
// @Router /client/dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	log, clienteID, err := h.prepare(r, "handlers.portal.Dashboard")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	out, err := h.service.Dashboard(r.Context(), clienteID)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if out.Vehiculos == nil {
		out.Vehiculos = []models.Vehiculo{}
	}
	if out.Servicios == nil {
		out.Servicios = []models.ServicioView{}
	}
	render.JSON(w, r, response.OKWithData(out))
}

// ActiveServices godoc
// @Summary Unfinished servicios of the cliente
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Param turno query string false "Today, Tomorrow or This Week"
// @Param limit query int false "Max rows" default(50)
// @Success 200 {object} response.Response{data=[]models.ServicioView}
// @Router /client/active-services [get]
func (h *Handler) ActiveServices(w http.ResponseWriter, r *http.Request) {
	log, clienteID, err := h.prepare(r, "handlers.portal.ActiveServices")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	limit, err := request.Limit(r)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	out, err := h.service.ActiveServices(r.Context(), clienteID, r.URL.Query().Get("turno"), limit)
	rows(w, r, log, out, err)
}

// Info godoc
// @Summary Cliente record
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.Cliente}
// @Router /client/info [get]
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	log, clienteID, err := h.prepare(r, "handlers.portal.Info")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	c, err := h.service.Info(r.Context(), clienteID)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(c))
}

// Services godoc
// @Summary Servicio history of the cliente
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status"
// @Param limit query int false "Max rows" default(50)
// @Success 200 {object} response.Response{data=[]models.ServicioView}
// @Router /client/services [get]
func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	log, clienteID, err := h.prepare(r, "handlers.portal.Services")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	limit, err := request.Limit(r)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	status := models.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		response.Fail(w, r, log, apperr.Validation("Invalid status"))
		return
	}
	out, err := h.service.Services(r.Context(), clienteID, status, limit)
	rows(w, r, log, out, err)
}

// Vehicles godoc
// @Summary Vehicles of the cliente
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.Vehiculo}
// @Router /client/vehicles [get]
func (h *Handler) Vehicles(w http.ResponseWriter, r *http.Request) {
	log, clienteID, err := h.prepare(r, "handlers.portal.Vehicles")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	out, err := h.service.Vehicles(r.Context(), clienteID)
	rows(w, r, log, out, err)
}

// UpdateProfile godoc
// @Summary Update phone and email of the cliente
// @Tags Client
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ProfileUpdate true "Contact data"
// @Success 200 {object} response.Response{data=models.Cliente}
// @Router /client/profile [put]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	log, clienteID, err := h.prepare(r, "handlers.portal.UpdateProfile")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	var in models.ProfileUpdate
	if err := request.Decode(r, h.validate, &in); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	c, err := h.service.UpdateProfile(r.Context(), clienteID, in)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info("profile updated", slog.Int64("cliente_id", clienteID))
	render.JSON(w, r, response.OKWithData(c))
}
