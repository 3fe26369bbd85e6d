// Package middlewarectx holds the HTTP middleware of the API: bearer token
// authentication, role and ownership policies, rate limiting and metrics.
//
// Authenticate stores the token identity in the request context. The policy
// middleware read it back with IdentityFrom and fail closed when it is absent.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/dipaca/autolavado/internal/http/response"
	"github.com/dipaca/autolavado/internal/lib/jwt"
	"github.com/dipaca/autolavado/internal/lib/sl"
)

// Key is the type of the request context keys set here.
type Key string

// IdentityKey holds the jwt.Identity of the caller.
const IdentityKey Key = "identity"

const (
	msgNoToken      = "No token provided"
	msgInvalidToken = "Invalid or expired token"
)

// TokenParser validates a bearer token.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.CustomClaims, error)
}

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id jwt.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// IdentityFrom returns the identity stored by Authenticate.
func IdentityFrom(ctx context.Context) (jwt.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(jwt.Identity)
	return id, ok
}

// Authenticate requires "Authorization: Bearer <jwt>" and stores its claims.
func Authenticate(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Authenticate"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			tokenStr, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || strings.TrimSpace(tokenStr) == "" {
				log.Info("missing bearer token")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(msgNoToken))
				return
			}

			claims, err := parser.ParseToken(strings.TrimSpace(tokenStr))
			if err != nil {
				log.Info("token rejected", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(msgInvalidToken))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.Identity)))
		})
	}
}
