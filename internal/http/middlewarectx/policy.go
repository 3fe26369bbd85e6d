package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/dipaca/autolavado/internal/http/request"
	"github.com/dipaca/autolavado/internal/http/response"
	"github.com/dipaca/autolavado/internal/lib/jwt"
	"github.com/dipaca/autolavado/internal/models"
)

// RequireAdmin lets only admins through.
func RequireAdmin(log *slog.Logger) func(http.Handler) http.Handler {
	return requireRole(log, "Access denied. Admin only.", models.RoleAdmin)
}

// RequireCliente lets only clientes through.
func RequireCliente(log *slog.Logger) func(http.Handler) http.Handler {
	return requireRole(log, "Access denied. Client only.", models.RoleCliente)
}

// RequireAdminOrCliente lets admins and clientes through.
func RequireAdminOrCliente(log *slog.Logger) func(http.Handler) http.Handler {
	return requireRole(log, "Access denied", models.RoleAdmin, models.RoleCliente)
}

func requireRole(log *slog.Logger, deny string, roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			who, ok := IdentityFrom(r.Context())
			if !ok {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(msgNoToken))
				return
			}
			if !slices.Contains(roles, models.Role(who.Rol)) {
				log.Info("role rejected",
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("rol", who.Rol),
					slog.Int64("user_id", who.UserID),
				)
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error(deny))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Checker decides whether who may access the row id.
type Checker interface {
	Check(ctx context.Context, who jwt.Identity, id int64) error
}

// RequireOwnerOrAdmin checks the row named by the URL parameter param
// against the caller. The owner always comes from a store lookup.
func RequireOwnerOrAdmin(log *slog.Logger, checker Checker, param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireOwnerOrAdmin"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			who, ok := IdentityFrom(r.Context())
			if !ok {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(msgNoToken))
				return
			}
			id, err := request.ID(r, param)
			if err != nil {
				response.Fail(w, r, log, err)
				return
			}
			if err := checker.Check(r.Context(), who, id); err != nil {
				response.Fail(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
