// Package gateway is the client's only channel to the credential manager
// backend. It exposes one method per endpoint and classifies every answer
// as success, business error (*BusinessError) or fault (ErrFault).
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/credkeeper/internal/models"
)

const (
	pathLogin            = "/login"
	pathRegister         = "/register"
	pathProfile          = "/orgs-and-divisions"
	pathCredentials      = "/view-credentials"
	pathUsers            = "/all-users"
	pathAddCredential    = "/add-credential"
	pathUpdateCredential = "/update-credential"
	pathUpdateRole       = "/update-role"
	pathAssignDivision   = "/assign-division"
	pathUnassignDivision = "/unassign-division"
)

// Gateway talks JSON over HTTP to the backend rooted at baseURL.
type Gateway struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// New returns a Gateway. A nil client means http.DefaultClient and a nil
// logger disables logging.
func New(baseURL string, client *http.Client, log *zap.Logger) *Gateway {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		log:     log,
	}
}

// Login authenticates and returns the issued bearer token.
func (g *Gateway) Login(ctx context.Context, username, password string) (string, error) {
	raw, err := g.call(ctx, http.MethodPost, pathLogin, "", models.LoginRequest{Username: username, Password: password})
	if err != nil {
		return "", err
	}
	return stringField(raw, "token", pathLogin)
}

// Register creates a new account and returns the backend's message.
func (g *Gateway) Register(ctx context.Context, username, password string) (string, error) {
	return g.mutate(ctx, http.MethodPost, pathRegister, "", models.RegisterRequest{Username: username, Password: password})
}

// Profile returns the caller's own authorization profile.
func (g *Gateway) Profile(ctx context.Context, token string) (models.UserProfile, error) {
	var p models.UserProfile
	err := g.fetch(ctx, pathProfile, token, &p)
	return p, err
}

// Credentials returns the credential tree visible to the caller.
func (g *Gateway) Credentials(ctx context.Context, token string) (models.CredentialTree, error) {
	var tree models.CredentialTree
	err := g.fetch(ctx, pathCredentials, token, &tree)
	return tree, err
}

// Users returns every registered user.
func (g *Gateway) Users(ctx context.Context, token string) ([]models.UserProfile, error) {
	var users []models.UserProfile
	err := g.fetch(ctx, pathUsers, token, &users)
	return users, err
}

// AddCredential stores a new account under an organisational unit and division.
func (g *Gateway) AddCredential(ctx context.Context, token string, req models.AddCredentialRequest) (string, error) {
	return g.mutate(ctx, http.MethodPost, pathAddCredential, token, req)
}

// UpdateCredential rewrites the account identified by the request's old triple.
func (g *Gateway) UpdateCredential(ctx context.Context, token string, req models.UpdateCredentialRequest) (string, error) {
	return g.mutate(ctx, http.MethodPut, pathUpdateCredential, token, req)
}

// ChangeRole sets another user's role.
func (g *Gateway) ChangeRole(ctx context.Context, token string, req models.ChangeRoleRequest) (string, error) {
	return g.mutate(ctx, http.MethodPut, pathUpdateRole, token, req)
}

// AssignDivision adds a division membership to a user.
func (g *Gateway) AssignDivision(ctx context.Context, token string, req models.DivisionRequest) (string, error) {
	return g.mutate(ctx, http.MethodPost, pathAssignDivision, token, req)
}

// UnassignDivision removes a division membership from a user.
func (g *Gateway) UnassignDivision(ctx context.Context, token string, req models.DivisionRequest) (string, error) {
	return g.mutate(ctx, http.MethodDelete, pathUnassignDivision, token, req)
}

func (g *Gateway) mutate(ctx context.Context, method, path, token string, body any) (string, error) {
	raw, err := g.call(ctx, method, path, token, body)
	if err != nil {
		return "", err
	}
	return stringField(raw, "message", path)
}

func (g *Gateway) fetch(ctx context.Context, path, token string, out any) error {
	raw, err := g.call(ctx, http.MethodPost, path, token, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fault(path, fmt.Errorf("decode payload: %w", err))
	}
	return nil
}

// call performs one request and returns the raw JSON payload, or a
// *BusinessError when the payload is an object with an "error" key.
// The HTTP status code is deliberately not consulted.
func (g *Gateway) call(ctx context.Context, method, path, token string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fault(path, fmt.Errorf("encode body: %w", err))
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, fault(path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fault(path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fault(path, fmt.Errorf("read body: %w", err))
	}
	g.log.Debug("gateway call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
	)

	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return nil, fault(path, errors.New("response is not JSON"))
	}

	if len(data) > 0 && data[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, fault(path, err)
		}
		if rawErr, ok := obj["error"]; ok {
			return nil, &BusinessError{Reason: textOf(rawErr)}
		}
	}
	return data, nil
}

// stringField extracts a required string key from an object payload.
func stringField(raw json.RawMessage, key, path string) (string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", fault(path, fmt.Errorf("decode payload: %w", err))
	}
	v, ok := obj[key]
	if !ok {
		return "", fault(path, fmt.Errorf("response has no %q key", key))
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", fault(path, fmt.Errorf("decode %q: %w", key, err))
	}
	return s, nil
}

// textOf renders an "error" value as text; non-string values are kept verbatim.
func textOf(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
