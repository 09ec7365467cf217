// Package http provides the JSON handlers and router of the credential
// manager backend.
package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/credkeeper/internal/models"
	"github.com/atinyakov/credkeeper/internal/service"
)

// AuthService defines the authentication operations required by the
// HTTP handlers.
type AuthService interface {
	// Register creates a user and returns the confirmation message.
	Register(ctx context.Context, username, password string) (string, error)
	// Login verifies the password and returns a bearer token.
	Login(ctx context.Context, username, password string) (string, error)
	// Authenticate resolves a bearer token to its user.
	Authenticate(ctx context.Context, token string) (models.User, error)
}

// AuthHandler handles HTTP requests for user registration and login.
type AuthHandler struct {
	AuthService AuthService
	Logger      *zap.Logger
}

// Register handles POST /register. It expects {"username","password"}
// and replies {"message"} on success.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decode(w, r, &req, service.MsgMissingFields) {
		return
	}

	msg, err := h.AuthService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeFailure(w, r, nopIfNil(h.Logger), err)
		return
	}
	writeMessage(w, msg)
}

// Login handles POST /login. It expects {"username","password"} and
// replies {"token"} on success.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decode(w, r, &req, service.MsgBadLogin) {
		return
	}

	token, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeFailure(w, r, nopIfNil(h.Logger), err)
		return
	}
	writeJSON(w, http.StatusOK, models.TokenResponse{Token: token})
}
