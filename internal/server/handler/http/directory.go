package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/credkeeper/internal/models"
	"github.com/atinyakov/credkeeper/internal/service"
)

// DirectoryService defines the profile, directory and membership
// operations required by DirectoryHandler.
type DirectoryService interface {
	Profile(ctx context.Context, actor models.User) (models.UserProfile, error)
	Users(ctx context.Context, actor models.User) ([]models.UserProfile, error)
	ChangeRole(ctx context.Context, actor models.User, req models.ChangeRoleRequest) (string, error)
	Assign(ctx context.Context, actor models.User, req models.DivisionRequest) (string, error)
	Unassign(ctx context.Context, actor models.User, req models.DivisionRequest) (string, error)
}

// DirectoryHandler serves the caller's profile and the user directory.
type DirectoryHandler struct {
	DirectoryService DirectoryService
	Logger           *zap.Logger
}

// Profile handles POST /orgs-and-divisions.
func (h *DirectoryHandler) Profile(w http.ResponseWriter, r *http.Request) {
	u, ok := actor(w, r)
	if !ok {
		return
	}
	p, err := h.DirectoryService.Profile(r.Context(), u)
	if err != nil {
		writeFailure(w, r, nopIfNil(h.Logger), err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Users handles POST /all-users.
func (h *DirectoryHandler) Users(w http.ResponseWriter, r *http.Request) {
	u, ok := actor(w, r)
	if !ok {
		return
	}
	users, err := h.DirectoryService.Users(r.Context(), u)
	if err != nil {
		writeFailure(w, r, nopIfNil(h.Logger), err)
		return
	}
	if users == nil {
		users = []models.UserProfile{}
	}
	writeJSON(w, http.StatusOK, users)
}

// ChangeRole handles PUT /update-role.
func (h *DirectoryHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var req models.ChangeRoleRequest
	mutate(w, r, nopIfNil(h.Logger), &req, func(ctx context.Context, u models.User) (string, error) {
		return h.DirectoryService.ChangeRole(ctx, u, req)
	})
}

// Assign handles POST /assign-division.
func (h *DirectoryHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req models.DivisionRequest
	mutate(w, r, nopIfNil(h.Logger), &req, func(ctx context.Context, u models.User) (string, error) {
		return h.DirectoryService.Assign(ctx, u, req)
	})
}

// Unassign handles DELETE /unassign-division.
func (h *DirectoryHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	var req models.DivisionRequest
	mutate(w, r, nopIfNil(h.Logger), &req, func(ctx context.Context, u models.User) (string, error) {
		return h.DirectoryService.Unassign(ctx, u, req)
	})
}

// mutate runs the shared shape of every mutating endpoint: resolve the
// caller, decode the body into req, call and reply {"message"}.
func mutate(w http.ResponseWriter, r *http.Request, logger *zap.Logger, req any, call func(context.Context, models.User) (string, error)) {
	u, ok := actor(w, r)
	if !ok {
		return
	}
	if !decode(w, r, req, service.MsgInvalidRequest) {
		return
	}
	msg, err := call(r.Context(), u)
	if err != nil {
		writeFailure(w, r, logger, err)
		return
	}
	writeMessage(w, msg)
}
