package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/classcast/classcast-backend/internal/config"
	"github.com/classcast/classcast-backend/internal/model"
	"github.com/classcast/classcast-backend/internal/repository/memory"
	"github.com/classcast/classcast-backend/internal/service"
)

func newAuthService() (*service.AuthService, *memory.UserStore) {
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	}
	users := memory.NewUserStore()
	return service.NewAuthService(cfg, users), users
}

func seedAccount(t *testing.T, auth *service.AuthService, users *memory.UserStore, role model.Role) *model.User {
	t.Helper()
	hash, err := auth.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &model.User{Name: "pat", Email: "pat@example.com", PasswordHash: hash, Role: role}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestLoginIssuesValidToken(t *testing.T) {
	auth, users := newAuthService()
	user := seedAccount(t, auth, users, model.RoleTeacher)

	resp, err := auth.Login(context.Background(), model.LoginRequest{Email: "pat@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.User.ID != user.ID {
		t.Fatalf("user = %s, want %s", resp.User.ID, user.ID)
	}

	claims, err := auth.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != model.RoleTeacher || claims.Name != "pat" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	auth, users := newAuthService()
	seedAccount(t, auth, users, model.RoleStudent)

	_, err := auth.Login(context.Background(), model.LoginRequest{Email: "pat@example.com", Password: "wrong-pass"})
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	auth, _ := newAuthService()

	_, err := auth.Login(context.Background(), model.LoginRequest{Email: "ghost@example.com", Password: "whatever1"})
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("unknown emails must look like wrong passwords, got %v", err)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	auth, users := newAuthService()
	user := seedAccount(t, auth, users, model.RoleTeacher)

	token, err := auth.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := service.NewAuthService(&config.Config{JWTSecret: "different-secret", JWTExpiry: time.Hour, BcryptCost: 4}, users)
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("token signed with another secret must not validate")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	auth, _ := newAuthService()
	if _, err := auth.ValidateToken("not.a.token"); err == nil {
		t.Fatal("expected parse failure")
	}
}
