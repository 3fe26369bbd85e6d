// Package servicios serves /servicios: order composition, the workflow
// status and the admin listings.
package servicios

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/dipaca/autolavado/internal/http/request"
	"github.com/dipaca/autolavado/internal/http/response"
	"github.com/dipaca/autolavado/internal/models"
)

// Service is the servicio use case.
type Service interface {
	List(ctx context.Context, f models.ServicioFilter) ([]models.ServicioView, error)
	Active(ctx context.Context) ([]models.ServicioView, error)
	Completed(ctx context.Context) ([]models.ServicioView, error)
	Get(ctx context.Context, id int64) (*models.ServicioDetail, error)
	Create(ctx context.Context, in models.ServicioInput) (*models.Servicio, error)
	Update(ctx context.Context, id int64, in models.ServicioUpdate) (*models.Servicio, error)
	UpdateStatus(ctx context.Context, id int64, status models.Status) (*models.Servicio, error)
	Delete(ctx context.Context, id int64) (*models.Servicio, error)
	Entradas(ctx context.Context) (*models.Entradas, error)
}

// Handler serves the servicio routes.
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

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func list(w http.ResponseWriter, r *http.Request, rows []models.ServicioView) {
	if rows == nil {
		rows = []models.ServicioView{}
	}
	render.JSON(w, r, response.OKWithData(rows))
}

// List godoc
// @Summary List servicios
// @Tags Servicios
// @Produce json
// @Security BearerAuth
// @Param search query string false "Placa, cliente or tipo de servicio"
// @Param status query string false "Status"
// @Param fecha query string false "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Response{data=[]models.ServicioView}
// @Router /servicios [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.servicios.List")
	q := r.URL.Query()
	rows, err := h.service.List(r.Context(), models.ServicioFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Status: models.Status(q.Get("status")),
		Fecha:  q.Get("fecha"),
	})
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	list(w, r, rows)
}

// Active godoc
// @Summary List unfinished servicios
// @Tags Servicios
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.ServicioView}
// @Router /servicios/active [get]
func (h *Handler) Active(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.servicios.Active")
	rows, err := h.service.Active(r.Context())
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	list(w, r, rows)
}

// Completed godoc
// @Summary List the latest finished servicios
// @Tags Servicios
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.ServicioView}
// @Router /servicios/completed [get]
func (h *Handler) Completed(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.servicios.Completed")
	rows, err := h.service.Completed(r.Context())
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	list(w, r, rows)
}

// Stats godoc
// @Summary Count today's servicios
// @Tags Servicios
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.Entradas}
// @Router /servicios/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.servicios.Stats")
	out, err := h.service.Entradas(r.Context())
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(out))
}

// Get godoc
// @Summary Servicio detail
// @Tags Servicios
// @Produce json
// @Security BearerAuth
// @Param id path int true "Servicio id"
// @Success 200 {object} response.Response{data=models.ServicioDetail}
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /servicios/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.servicios.Get")
	id, err := request.ID(r, "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(d))
}

// Create godoc
// @Summary Create a servicio with its workers and todos
// @Tags Servicios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ServicioInput true "Servicio"
// @Success 201 {object} response.Response{data=models.Servicio}
// @Failure 400 {object} response.ErrorResponse
// @Router /servicios [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.servicios.Create")
	var in models.ServicioInput
	if err := request.Decode(r, h.validate, &in); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	sv, err := h.service.Create(r.Context(), in)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, sv)
}

// Update godoc
// @Summary Update a servicio
// @Tags Servicios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Servicio id"
// @Param request body models.ServicioUpdate true "Servicio"
// @Success 200 {object} response.Response{data=models.Servicio}
// @Router /servicios/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.servicios.Update")
	id, err := request.ID(r, "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	var in models.ServicioUpdate
	if err := request.Decode(r, h.validate, &in); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	sv, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(sv))
}

// UpdateStatus godoc
// @Summary Move a servicio to another status
// @Tags Servicios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Servicio id"
// @Param request body models.StatusInput true "Status"
// @Success 200 {object} response.Response{data=models.Servicio}
// @Router /servicios/{id}/status [patch]
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.servicios.UpdateStatus")
	id, err := request.ID(r, "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	var in models.StatusInput
	if err := request.Decode(r, h.validate, &in); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	sv, err := h.service.UpdateStatus(r.Context(), id, in.Status)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info("status changed", slog.Int64("id", id), slog.String("status", string(sv.Status)))
	render.JSON(w, r, response.OKWithData(sv))
}

// Delete godoc
// @Summary Delete a servicio
// @Tags Servicios
// @Produce json
// @Security BearerAuth
// @Param id path int true "Servicio id"
// @Success 200 {object} response.Response
// @Router /servicios/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.servicios.Delete")
	id, err := request.ID(r, "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	sv, err := h.service.Delete(r.Context(), id)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message":  "Servicio deleted successfully",
		"servicio": sv,
	}))
}
