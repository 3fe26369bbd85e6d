// Package todos serves the checklist of a servicio. Ownership is enforced
// by the router before these handlers run.
package todos

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/dipaca/autolavado/internal/http/request"
	"github.com/dipaca/autolavado/internal/http/response"
	"github.com/dipaca/autolavado/internal/models"
)

// Store is the todo persistence used here.
type Store interface {
	ListTodos(ctx context.Context, servicioID int64) ([]models.Todo, error)
	CreateTodo(ctx context.Context, servicioID int64, in models.TodoInput) (*models.Todo, error)
	UpdateTodo(ctx context.Context, id int64, in models.TodoInput) (*models.Todo, error)
	ToggleTodo(ctx context.Context, id int64) (*models.Todo, error)
	DeleteTodo(ctx context.Context, id int64) (*models.Todo, error)
}

// Handler serves the todo routes.
type Handler struct {
	log      *slog.Logger
	store    Store
	validate *validator.Validate
}

// New creates a Handler.
func New(log *slog.Logger, store Store) *Handler {
	return &Handler{
		log:      log,
		store:    store,
		validate: request.NewValidator(),
	}
}

func (h *Handler) prepare(r *http.Request, op, param string) (*slog.Logger, int64, error) {
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	id, err := request.ID(r, param)
	return log, id, err
}

// List godoc
// @Summary List the todos of a servicio
// @Tags Todos
// @Produce json
// @Security BearerAuth
// @Param servicio_id path int true "Servicio id"
// @Success 200 {object} response.Response{data=[]models.Todo}
// @Router /todos/servicio/todos/{servicio_id} [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log, id, err := h.prepare(r, "handlers.todos.List", "servicio_id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	rows, err := h.store.ListTodos(r.Context(), id)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if rows == nil {
		rows = []models.Todo{}
	}
	render.JSON(w, r, response.OKWithData(rows))
}

// Create godoc
// @Summary Add a todo to a servicio
// @Tags Todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param servicio_id path int true "Servicio id"
// @Param request body models.TodoInput true "Todo"
// @Success 201 {object} response.Response{data=models.Todo}
// @Router /todos/servicio/todos/{servicio_id} [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log, id, err := h.prepare(r, "handlers.todos.Create", "servicio_id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	var in models.TodoInput
	if err := request.Decode(r, h.validate, &in); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	todo, err := h.store.CreateTodo(r.Context(), id, in)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, todo)
}

// Update godoc
// @Summary Replace the text and state of a todo
// @Tags Todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Todo id"
// @Param request body models.TodoInput true "Todo"
// @Success 200 {object} response.Response{data=models.Todo}
// @Router /todos/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log, id, err := h.prepare(r, "handlers.todos.Update", "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	var in models.TodoInput
	if err := request.Decode(r, h.validate, &in); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	todo, err := h.store.UpdateTodo(r.Context(), id, in)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(todo))
}

// Toggle godoc
// @Summary Flip the done flag of a todo
// @Tags Todos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Todo id"
// @Success 200 {object} response.Response{data=models.Todo}
// @Router /todos/{id}/toggle [patch]
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	log, id, err := h.prepare(r, "handlers.todos.Toggle", "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	todo, err := h.store.ToggleTodo(r.Context(), id)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(todo))
}

// Delete godoc
// @Summary Delete a todo
// @Tags Todos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Todo id"
// @Success 200 {object} response.Response
// @Router /todos/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log, id, err := h.prepare(r, "handlers.todos.Delete", "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	todo, err := h.store.DeleteTodo(r.Context(), id)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "Todo deleted successfully",
		"todo":    todo,
	}))
}
