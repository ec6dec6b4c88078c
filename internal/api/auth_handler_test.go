package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/avelinov/parley/internal/auth"
	"github.com/avelinov/parley/internal/models"
	"github.com/avelinov/parley/internal/service"
)

func newTestAuthHandler(t *testing.T, users *mockUserRepo) *AuthHandler {
	t.Helper()
	tokens := auth.NewTokenService("test-secret", 0, 0)
	svc := service.NewAuthService(users, tokens, newTestCacheClient(t), testSnowflake())
	return NewAuthHandler(svc)
}

func TestRegister_Success(t *testing.T) {
	h := newTestAuthHandler(t, &mockUserRepo{})

	body := strings.NewReader(`{"username":"testuser","password":"password123"}`)
	c, rec := newTestContext(http.MethodPost, "/api/v1/auth/register", body)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("expected a full token pair")
	}
	if resp.User.Username != "testuser" {
		t.Errorf("expected username 'testuser', got %q", resp.User.Username)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	users := &mockUserRepo{
		GetByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			if username == "taken" {
				return &models.User{ID: 1, Username: "taken"}, nil
			}
			return nil, nil
		},
	}
	h := newTestAuthHandler(t, users)

	body := strings.NewReader(`{"username":"taken","password":"password123"}`)
	c, rec := newTestContext(http.MethodPost, "/api/v1/auth/register", body)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d: %s", http.StatusConflict, rec.Code, rec.Body.String())
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if errResp.Error.Code != "USERNAME_TAKEN" {
		t.Errorf("expected error code 'USERNAME_TAKEN', got %q", errResp.Error.Code)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, err := auth.HashPassword("right password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	users := &mockUserRepo{
		GetByUsernameFn: func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 1, Username: "testuser", PasswordHash: hash}, nil
		},
	}
	h := newTestAuthHandler(t, users)

	body := strings.NewReader(`{"username":"testuser","password":"wrong password"}`)
	c, rec := newTestContext(http.MethodPost, "/api/v1/auth/login", body)

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d: %s", http.StatusUnauthorized, rec.Code, rec.Body.String())
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	var stored *models.User
	users := &mockUserRepo{
		CreateFn: func(_ context.Context, u *models.User) error {
			stored = u
			return nil
		},
		GetByIDFn: func(_ context.Context, id int64) (*models.User, error) {
			if stored != nil && stored.ID == id {
				return stored, nil
			}
			return nil, nil
		},
	}
	h := newTestAuthHandler(t, users)

	body := strings.NewReader(`{"username":"testuser","password":"password123"}`)
	c, rec := newTestContext(http.MethodPost, "/api/v1/auth/register", body)
	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var reg authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &reg); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	refreshBody := strings.NewReader(`{"refresh_token":"` + reg.RefreshToken + `"}`)
	c, rec = newTestContext(http.MethodPost, "/api/v1/auth/refresh", refreshBody)
	if err := h.Refresh(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var refreshed authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &refreshed); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if refreshed.RefreshToken == reg.RefreshToken {
		t.Error("refresh token was not rotated")
	}

	// The old token is single-use.
	replayBody := strings.NewReader(`{"refresh_token":"` + reg.RefreshToken + `"}`)
	c, rec = newTestContext(http.MethodPost, "/api/v1/auth/refresh", replayBody)
	if err := h.Refresh(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d on replay, got %d", http.StatusUnauthorized, rec.Code)
	}
}
