package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iniyan007/Power-loom-production-monitoring-app/config"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/dto"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/model"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/repository"
	"github.com/iniyan007/Power-loom-production-monitoring-app/pkg/jwt"
)

// ── test helpers ──

func setupTestAuthService() (AuthService, *mockUserRepo) {
	users := newMockUserRepo()
	repo := &repository.Repository{
		User:    users,
		Loom:    newMockLoomRepo(),
		Shift:   newMockShiftRepo(),
		Reading: newMockReadingRepo(),
		Summary: newMockSummaryRepo(),
	}
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret-key-for-unit-testing"
	cfg.Auth.AccessTokenTTL = 15 * time.Minute
	cfg.Auth.RefreshTokenTTL = 7 * 24 * time.Hour
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := NewAuthService(cfg, repo, jwtMgr, nil, zap.NewNop())
	return svc, users
}

// ── Signup ──

func TestAuthService_Signup_DefaultsToWeaver(t *testing.T) {
	svc, users := setupTestAuthService()

	resp, err := svc.Signup(context.Background(), &dto.SignupRequest{
		Name:     "Anitha",
		Email:    "anitha@example.com",
		Password: "secret-pass",
	})
	if err != nil {
		t.Fatalf("Signup should succeed: %v", err)
	}
	if resp.Role != model.RoleWeaver {
		t.Errorf("expected default role weaver, got %s", resp.Role)
	}

	stored := users.users[resp.ID]
	if stored == nil {
		t.Fatal("user not persisted")
	}
	if stored.PasswordHash == "secret-pass" {
		t.Error("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret-pass")); err != nil {
		t.Errorf("stored hash should verify the password: %v", err)
	}
}

func TestAuthService_Signup_EmailTaken(t *testing.T) {
	svc, _ := setupTestAuthService()

	req := &dto.SignupRequest{Name: "Anitha", Email: "anitha@example.com", Password: "secret-pass"}
	if _, err := svc.Signup(context.Background(), req); err != nil {
		t.Fatalf("first signup should succeed: %v", err)
	}

	_, err := svc.Signup(context.Background(), req)
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got: %v", err)
	}
}

// ── Login ──

func TestAuthService_Login_Success(t *testing.T) {
	svc, _ := setupTestAuthService()

	_, err := svc.Signup(context.Background(), &dto.SignupRequest{
		Name: "Anitha", Email: "anitha@example.com", Password: "secret-pass",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	tokens, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "anitha@example.com", Password: "secret-pass",
	})
	if err != nil {
		t.Fatalf("Login should succeed: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Error("expected both tokens")
	}
	if tokens.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Errorf("expected expires_in 900, got %d", tokens.ExpiresIn)
	}
	if tokens.User.Email != "anitha@example.com" {
		t.Errorf("expected user payload, got %+v", tokens.User)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _ := setupTestAuthService()

	_, _ = svc.Signup(context.Background(), &dto.SignupRequest{
		Name: "Anitha", Email: "anitha@example.com", Password: "secret-pass",
	})

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "anitha@example.com", Password: "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _ := setupTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "nobody@example.com", Password: "whatever",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email must not be distinguishable, got: %v", err)
	}
}

// ── Logout / CurrentUser ──

func TestAuthService_Logout_WithoutRedis(t *testing.T) {
	svc, _ := setupTestAuthService()

	// degraded mode: logout succeeds, the token just ages out
	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Errorf("logout without redis should be a no-op: %v", err)
	}
}

func TestAuthService_CurrentUser_NotFound(t *testing.T) {
	svc, _ := setupTestAuthService()

	_, err := svc.CurrentUser(context.Background(), "missing")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got: %v", err)
	}
}
