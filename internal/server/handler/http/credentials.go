package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/credkeeper/internal/models"
)

// CredentialService defines the credential tree operations required by
// CredentialHandler.
type CredentialService interface {
	Tree(ctx context.Context, actor models.User) (models.CredentialTree, error)
	Add(ctx context.Context, actor models.User, req models.AddCredentialRequest) (string, error)
	Update(ctx context.Context, actor models.User, req models.UpdateCredentialRequest) (string, error)
}

// CredentialHandler serves and edits the credential tree.
type CredentialHandler struct {
	CredentialService CredentialService
	Logger            *zap.Logger
}

// View handles POST /view-credentials.
func (h *CredentialHandler) View(w http.ResponseWriter, r *http.Request) {
	u, ok := actor(w, r)
	if !ok {
		return
	}
	tree, err := h.CredentialService.Tree(r.Context(), u)
	if err != nil {
		writeFailure(w, r, nopIfNil(h.Logger), err)
		return
	}
	if tree == nil {
		tree = models.CredentialTree{}
	}
	writeJSON(w, http.StatusOK, tree)
}

// Add handles POST /add-credential.
func (h *CredentialHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req models.AddCredentialRequest
	mutate(w, r, nopIfNil(h.Logger), &req, func(ctx context.Context, u models.User) (string, error) {
		return h.CredentialService.Add(ctx, u, req)
	})
}

// Update handles PUT /update-credential.
func (h *CredentialHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateCredentialRequest
	mutate(w, r, nopIfNil(h.Logger), &req, func(ctx context.Context, u models.User) (string, error) {
		return h.CredentialService.Update(ctx, u, req)
	})
}
