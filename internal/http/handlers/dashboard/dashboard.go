// Package dashboard serves the admin analytics under /dashboard.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/dipaca/autolavado/internal/http/request"
	"github.com/dipaca/autolavado/internal/http/response"
	"github.com/dipaca/autolavado/internal/models"
)

// Service is the analytics use case. Period values are passed through raw.
type Service interface {
	Stats(ctx context.Context, period string) (*models.DashboardStats, error)
	MonthlyIncome(ctx context.Context) ([]models.NamedValue, error)
	WorkerRanking(ctx context.Context, period string, limit int) ([]models.WorkerRank, error)
	IncomeByService(ctx context.Context, period string) ([]models.NamedValue, error)
	IncomeByPayment(ctx context.Context, period string) ([]models.NamedValue, error)
}

// Handler serves the analytics routes.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func respond[T any](w http.ResponseWriter, r *http.Request, log *slog.Logger, rows []T, err error) {
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if rows == nil {
		rows = []T{}
	}
	render.JSON(w, r, response.OKWithData(rows))
}

// Stats godoc
// @Summary Income and servicio totals
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param period query string false "week, month or year" default(week)
// @Success 200 {object} response.Response{data=models.DashboardStats}
// @Router /dashboard/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.dashboard.Stats")
	out, err := h.service.Stats(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(out))
}

// MonthlyIncome godoc
// @Summary Income of the trailing six months
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.NamedValue}
// @Router /dashboard/monthly-income [get]
func (h *Handler) MonthlyIncome(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.MonthlyIncome(r.Context())
	respond(w, r, h.logger(r, "handlers.dashboard.MonthlyIncome"), rows, err)
}

// WorkerRanking godoc
// @Summary Workers by finished servicios
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param period query string false "week, month or year" default(month)
// @Param limit query int false "Max rows" default(10)
// @Success 200 {object} response.Response{data=[]models.WorkerRank}
// @Router /dashboard/worker-ranking [get]
func (h *Handler) WorkerRanking(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.dashboard.WorkerRanking")
	limit, err := request.Limit(r)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	rows, err := h.service.WorkerRanking(r.Context(), r.URL.Query().Get("period"), limit)
	respond(w, r, log, rows, err)
}

// IncomeByService godoc
// @Summary Income per tipo de servicio
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param period query string false "week, month or year" default(month)
// @Success 200 {object} response.Response{data=[]models.NamedValue}
// @Router /dashboard/income-by-service [get]
func (h *Handler) IncomeByService(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.IncomeByService(r.Context(), r.URL.Query().Get("period"))
	respond(w, r, h.logger(r, "handlers.dashboard.IncomeByService"), rows, err)
}

// IncomeByPayment godoc
// @Summary Income per payment method
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param period query string false "week, month or year" default(month)
// @Success 200 {object} response.Response{data=[]models.NamedValue}
// @Router /dashboard/income-by-payment [get]
func (h *Handler) IncomeByPayment(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.IncomeByPayment(r.Context(), r.URL.Query().Get("period"))
	respond(w, r, h.logger(r, "handlers.dashboard.IncomeByPayment"), rows, err)
}
