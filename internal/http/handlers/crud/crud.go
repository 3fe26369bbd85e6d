// Package crud serves the uniform list, read, create, update, delete and
// stats routes of the plain resources (clientes, trabajadores, vehiculos).
package crud

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/dipaca/autolavado/internal/http/request"
	"github.com/dipaca/autolavado/internal/http/response"
	"github.com/dipaca/autolavado/internal/models"
)

// Resource binds one entity type to its store operations.
// Name is the singular display name, Key the JSON key of a deleted row.
type Resource[T, In any] struct {
	Name   string
	Key    string
	List   func(ctx context.Context, f models.ListFilter) ([]T, error)
	Get    func(ctx context.Context, id int64) (*T, error)
	Create func(ctx context.Context, in In) (*T, error)
	Update func(ctx context.Context, id int64, in In) (*T, error)
	Delete func(ctx context.Context, id int64) (*T, error)
	Count  func(ctx context.Context) (int64, error)
}

// Handler serves one Resource.
type Handler[T, In any] struct {
	log      *slog.Logger
	res      Resource[T, In]
	validate *validator.Validate
}

// New creates a Handler.
func New[T, In any](log *slog.Logger, res Resource[T, In]) *Handler[T, In] {
	return &Handler[T, In]{
		log:      log,
		res:      res,
		validate: request.NewValidator(),
	}
}

func (h *Handler[T, In]) logger(r *http.Request, action string) *slog.Logger {
	return h.log.With(
		slog.String("op", "handlers.crud."+h.res.Key+"."+action),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// List answers GET / with optional search and cliente_id filters.
func (h *Handler[T, In]) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "list")

	q := r.URL.Query()
	f := models.ListFilter{Search: strings.TrimSpace(q.Get("search"))}
	if raw := q.Get("cliente_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Fail(w, r, log, request.InvalidParam("cliente_id"))
			return
		}
		f.ClienteID = &id
	}

	rows, err := h.res.List(r.Context(), f)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if rows == nil {
		rows = []T{}
	}
	render.JSON(w, r, response.OKWithData(rows))
}

// Get answers GET /{id}.
func (h *Handler[T, In]) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "get")
	id, err := request.ID(r, "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	row, err := h.res.Get(r.Context(), id)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(row))
}

// Create answers POST /.
func (h *Handler[T, In]) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "create")
	var in In
	if err := request.Decode(r, h.validate, &in); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	row, err := h.res.Create(r.Context(), in)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info(h.res.Name + " created")
	response.JSON(w, r, http.StatusCreated, row)
}

// Update answers PUT /{id}.
func (h *Handler[T, In]) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "update")
	id, err := request.ID(r, "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	var in In
	if err := request.Decode(r, h.validate, &in); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	row, err := h.res.Update(r.Context(), id, in)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info(h.res.Name+" updated", slog.Int64("id", id))
	render.JSON(w, r, response.OKWithData(row))
}

// Delete answers DELETE /{id} with the removed row.
func (h *Handler[T, In]) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "delete")
	id, err := request.ID(r, "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	row, err := h.res.Delete(r.Context(), id)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info(h.res.Name+" deleted", slog.Int64("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": h.res.Name + " deleted successfully",
		h.res.Key: row,
	}))
}

// Stats answers GET /stats with the row count.
func (h *Handler[T, In]) Stats(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "stats")
	n, err := h.res.Count(r.Context())
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(models.Total{Total: n}))
}
