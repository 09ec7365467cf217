package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atinyakov/credkeeper/internal/models"
	"github.com/atinyakov/credkeeper/internal/service"
)

// fakeAuthService implements AuthService for testing.
type fakeAuthService struct {
	registerMsg string
	registerErr error
	token       string
	loginErr    error
	users       map[string]models.User
}

func (f *fakeAuthService) Register(_ context.Context, _, _ string) (string, error) {
	return f.registerMsg, f.registerErr
}

func (f *fakeAuthService) Login(_ context.Context, _, _ string) (string, error) {
	return f.token, f.loginErr
}

func (f *fakeAuthService) Authenticate(_ context.Context, token string) (models.User, error) {
	u, ok := f.users[token]
	if !ok {
		return models.User{}, &service.Error{Kind: service.ErrUnauthorized, Message: service.MsgUnauthorized}
	}
	return u, nil
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		service        *fakeAuthService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "invalid JSON",
			body:           `not a json`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: service.MsgMissingFields,
		},
		{
			name:           "empty password",
			body:           `{"username":"alice","password":""}`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: service.MsgMissingFields,
		},
		{
			name:           "username taken",
			body:           `{"username":"bob","password":"pw"}`,
			service:        &fakeAuthService{registerErr: &service.Error{Kind: service.ErrConflict, Message: service.MsgUsernameTaken}},
			expectedCode:   http.StatusConflict,
			expectedSubstr: `{"error":"Username already exists."}`,
		},
		{
			name:           "storage failure",
			body:           `{"username":"carol","password":"pw"}`,
			service:        &fakeAuthService{registerErr: errors.New("db error")},
			expectedCode:   http.StatusInternalServerError,
			expectedSubstr: msgInternal,
		},
		{
			name:           "registered",
			body:           `{"username":"dave","password":"pw"}`,
			service:        &fakeAuthService{registerMsg: service.MsgRegistered},
			expectedCode:   http.StatusOK,
			expectedSubstr: `{"message":"Registration successful! You may now login."}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(tt.body))
			h := &AuthHandler{AuthService: tt.service}
			h.Register(rec, req)
			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, res.StatusCode)
			}

			buf := new(bytes.Buffer)
			if _, err := buf.ReadFrom(res.Body); err != nil {
				t.Fatalf("failed to read body: %v", err)
			}
			if !bytes.Contains(buf.Bytes(), []byte(tt.expectedSubstr)) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedSubstr, buf.String())
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		service      *fakeAuthService
		expectedCode int
		expectedJSON map[string]string
	}{
		{
			name:         "malformed body",
			body:         `{`,
			service:      &fakeAuthService{},
			expectedCode: http.StatusBadRequest,
			expectedJSON: map[string]string{"error": service.MsgBadLogin},
		},
		{
			name:         "bad password",
			body:         `{"username":"erin","password":"nope"}`,
			service:      &fakeAuthService{loginErr: &service.Error{Kind: service.ErrUnauthorized, Message: service.MsgBadLogin}},
			expectedCode: http.StatusUnauthorized,
			expectedJSON: map[string]string{"error": service.MsgBadLogin},
		},
		{
			name:         "storage failure",
			body:         `{"username":"erin","password":"pw"}`,
			service:      &fakeAuthService{loginErr: errors.New("db fail")},
			expectedCode: http.StatusInternalServerError,
			expectedJSON: map[string]string{"error": msgInternal},
		},
		{
			name:         "successful login",
			body:         `{"username":"frank","password":"pw"}`,
			service:      &fakeAuthService{token: "tok-1"},
			expectedCode: http.StatusOK,
			expectedJSON: map[string]string{"token": "tok-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(tt.body))

			h := &AuthHandler{AuthService: tt.service}
			h.Login(rec, req)
			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.expectedCode {
				t.Fatalf("%s: expected status %d, got %d", tt.name, tt.expectedCode, res.StatusCode)
			}

			var payload map[string]string
			if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
				t.Fatalf("failed to decode JSON: %v", err)
			}
			for k, v := range tt.expectedJSON {
				if payload[k] != v {
					t.Errorf("expected %s=%q, got %q", k, v, payload[k])
				}
			}
		})
	}
}
