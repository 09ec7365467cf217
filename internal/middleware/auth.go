// Package middleware provides HTTP middlewares for authentication, logging
// and metrics.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/credkeeper/internal/models"
	"github.com/atinyakov/credkeeper/internal/service"
)

type ctxKey string

const userKey ctxKey = "user"

// Authenticator resolves a bearer token to the user that owns it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.User, error)
}

// BearerAuth is a middleware that requires an "Authorization: Bearer
// <token>" header naming a live session.
//
// On success the resolved user is stored in the request context and can
// be read downstream with UserFromContext. Unknown or expired tokens get
// 401 with the usual {"error": ...} body; lookup failures get 500.
func BearerAuth(auth Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeError(w, http.StatusUnauthorized, service.MsgUnauthorized)
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if errors.Is(err, service.ErrUnauthorized) {
				writeError(w, http.StatusUnauthorized, service.MsgUnauthorized)
				return
			}
			if err != nil {
				logger.Error("authenticate request", zap.String("path", r.URL.Path), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "Internal server error.")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user stored by BearerAuth.
func UserFromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}

// WithUser returns a copy of ctx carrying u. Handlers' tests use it to skip
// the middleware.
func WithUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: msg})
}
