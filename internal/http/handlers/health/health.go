// Package health serves the liveness and database probes.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/dipaca/autolavado/internal/http/response"
	"github.com/dipaca/autolavado/internal/lib/sl"
	"github.com/dipaca/autolavado/internal/storage"
)

// Prober reports the database time and name.
type Prober interface {
	Probe(ctx context.Context) (*storage.DBInfo, error)
}

// Handler serves /health and /test-db.
type Handler struct {
	log    *slog.Logger
	prober Prober
}

// New creates a Handler.
func New(log *slog.Logger, prober Prober) *Handler {
	return &Handler{
		log:    log,
		prober: prober,
	}
}

// Health godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"status":  response.StatusOK,
		"message": "Server is running",
	})
}

// TestDB godoc
// @Summary Database probe
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response{data=storage.DBInfo}
// @Failure 500 {object} response.ErrorResponse "Database connection failed"
// @Router /test-db [get]
func (h *Handler) TestDB(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health.TestDB"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	info, err := h.prober.Probe(r.Context())
	if err != nil {
		log.Error("database probe failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Database connection failed"))
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message":  "Database connection successful",
		"time":     info.Time,
		"database": info.Database,
	}))
}
