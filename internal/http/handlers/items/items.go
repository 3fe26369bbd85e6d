// Package items serves /servicio-items: the priced lines of a servicio,
// discounts, payment and the product catalog.
package items

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/dipaca/autolavado/internal/http/middlewarectx"
	"github.com/dipaca/autolavado/internal/http/request"
	"github.com/dipaca/autolavado/internal/http/response"
	"github.com/dipaca/autolavado/internal/lib/apperr"
	"github.com/dipaca/autolavado/internal/lib/jwt"
	"github.com/dipaca/autolavado/internal/models"
)

// Service is the ledger use case. Every call is checked against who.
type Service interface {
	Items(ctx context.Context, who jwt.Identity, servicioID int64) ([]models.ServicioItem, error)
	AddItem(ctx context.Context, who jwt.Identity, servicioID int64, in models.ItemInput) (*models.ServicioItem, error)
	RemoveItem(ctx context.Context, who jwt.Identity, itemID int64) (*models.ServicioItem, error)
	ApplyDiscount(ctx context.Context, who jwt.Identity, servicioID int64, in models.DiscountInput) (*models.Servicio, error)
	ProcessPayment(ctx context.Context, who jwt.Identity, servicioID int64, in models.PaymentInput) (*models.Servicio, error)
	Catalogo(ctx context.Context) ([]models.ProductoCatalogo, error)
}

// Handler serves the ledger routes.
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

var errNoIdentity = apperr.Unauthenticated("No token provided")

// prepare builds the request logger, the caller identity and the id in param.
func (h *Handler) prepare(r *http.Request, op, param string) (*slog.Logger, jwt.Identity, int64, error) {
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	who, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		return log, who, 0, errNoIdentity
	}
	id, err := request.ID(r, param)
	return log, who, id, err
}

// List godoc
// @Summary List the items of a servicio
// @Tags Items
// @Produce json
// @Security BearerAuth
// @Param servicio_id path int true "Servicio id"
// @Success 200 {object} response.Response{data=[]models.ServicioItem}
// @Router /servicio-items/{servicio_id}/items [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log, who, id, err := h.prepare(r, "handlers.items.List", "servicio_id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	rows, err := h.service.Items(r.Context(), who, id)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if rows == nil {
		rows = []models.ServicioItem{}
	}
	render.JSON(w, r, response.OKWithData(rows))
}

// Add godoc
// @Summary Add an item and raise the servicio total
// @Tags Items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param servicio_id path int true "Servicio id"
// @Param request body models.ItemInput true "Item"
// @Success 201 {object} response.Response{data=models.ServicioItem}
// @Router /servicio-items/{servicio_id}/items [post]
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	log, who, id, err := h.prepare(r, "handlers.items.Add", "servicio_id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	var in models.ItemInput
	if err := request.Decode(r, h.validate, &in); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	item, err := h.service.AddItem(r.Context(), who, id, in)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info("item added", slog.Int64("servicio_id", id), slog.String("precio", item.Precio.String()))
	response.JSON(w, r, http.StatusCreated, item)
}

// Remove godoc
// @Summary Remove an item and lower the servicio total
// @Tags Items
// @Produce json
// @Security BearerAuth
// @Param item_id path int true "Item id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Item not found"
// @Router /servicio-items/items/{item_id} [delete]
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	log, who, id, err := h.prepare(r, "handlers.items.Remove", "item_id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	item, err := h.service.RemoveItem(r.Context(), who, id)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "Item deleted successfully",
		"item":    item,
	}))
}

// Discount godoc
// @Summary Set the discount and redeemed points of a servicio
// @Tags Items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param servicio_id path int true "Servicio id"
// @Param request body models.DiscountInput true "Discount"
// @Success 200 {object} response.Response
// @Router /servicio-items/{servicio_id}/discount [post]
func (h *Handler) Discount(w http.ResponseWriter, r *http.Request) {
	log, who, id, err := h.prepare(r, "handlers.items.Discount", "servicio_id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	var in models.DiscountInput
	if err := request.Decode(r, h.validate, &in); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	sv, err := h.service.ApplyDiscount(r.Context(), who, id, in)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message":  "Discount applied successfully",
		"servicio": sv,
	}))
}

// Payment godoc
// @Summary Pay and finish a servicio
// @Tags Items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param servicio_id path int true "Servicio id"
// @Param request body models.PaymentInput true "Payment"
// @Success 200 {object} response.Response
// @Router /servicio-items/{servicio_id}/payment [post]
func (h *Handler) Payment(w http.ResponseWriter, r *http.Request) {
	log, who, id, err := h.prepare(r, "handlers.items.Payment", "servicio_id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	var in models.PaymentInput
	if err := request.Decode(r, h.validate, &in); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	sv, err := h.service.ProcessPayment(r.Context(), who, id, in)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info("payment processed", slog.Int64("servicio_id", id), slog.String("metodo_pago", in.MetodoPago))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message":  "Payment processed successfully",
		"servicio": sv,
	}))
}

// Catalogo godoc
// @Summary List the active catalog products
// @Tags Items
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.ProductoCatalogo}
// @Router /servicio-items/catalogo [get]
func (h *Handler) Catalogo(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(
		slog.String("op", "handlers.items.Catalogo"),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	rows, err := h.service.Catalogo(r.Context())
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if rows == nil {
		rows = []models.ProductoCatalogo{}
	}
	render.JSON(w, r, response.OKWithData(rows))
}
