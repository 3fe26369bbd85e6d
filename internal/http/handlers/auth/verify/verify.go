// Package verify serves GET /auth/verify.
package verify

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/dipaca/autolavado/internal/http/response"
	"github.com/dipaca/autolavado/internal/models"
)

// Handler resolves a bearer token to the current user profile.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the token verification use case.
type Service interface {
	Verify(ctx context.Context, token string) (*models.Profile, error)
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Verify a token
// @Description Returns the fresh profile of the token's user.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "No token provided / Invalid token"
// @Router /auth/verify [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verify"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("No token provided"))
		return
	}

	profile, err := h.service.Verify(r.Context(), strings.TrimSpace(token))
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{"user": profile}))
}
