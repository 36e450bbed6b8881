package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"dompet/internal/records/memory"
)

func newTestService() *Service {
	return NewService(memory.New(), NewJWTManager("0123456789abcdef", time.Hour))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	session, err := svc.Register(ctx, "budi", "budi@example.com", "supersecret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if session.Token == "" || session.UserID == "" {
		t.Fatalf("incomplete session: %+v", session)
	}
	if session.TokenType != "Bearer" {
		t.Fatalf("token type = %q, want Bearer", session.TokenType)
	}
	if session.ExpiresIn != 3600 {
		t.Fatalf("expires in = %d, want 3600", session.ExpiresIn)
	}

	login, err := svc.Login(ctx, "budi@example.com", "supersecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.UserID != session.UserID {
		t.Fatalf("login user id = %q, want %q", login.UserID, session.UserID)
	}

	userID, err := svc.Identify(login.Token)
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if userID != session.UserID {
		t.Fatalf("identify = %q, want %q", userID, session.UserID)
	}
}

func TestRegisterRejects(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "budi", "budi@example.com", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("weak password error = %v", err)
	}
	if _, err := svc.Register(ctx, "budi", "not-an-email", "supersecret"); err == nil {
		t.Fatal("expected invalid email error")
	}
	if _, err := svc.Register(ctx, "", "budi@example.com", "supersecret"); err == nil {
		t.Fatal("expected invalid username error")
	}

	if _, err := svc.Register(ctx, "budi", "budi@example.com", "supersecret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "other", "budi@example.com", "supersecret"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("duplicate email error = %v, want ErrUserExists", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "budi", "budi@example.com", "supersecret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, "budi@example.com", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	// Unknown email yields the same error as a wrong password.
	if _, err := svc.Login(ctx, "nobody@example.com", "supersecret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email error = %v, want ErrInvalidCredentials", err)
	}
}

func TestJWTManagerRejectsTamperedAndExpired(t *testing.T) {
	m := NewJWTManager("0123456789abcdef", time.Hour)

	token, err := m.GenerateToken("u1", "budi", "budi@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "budi@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	// Wrong secret.
	other := NewJWTManager("another-secret-value", time.Hour)
	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret error = %v, want ErrInvalidToken", err)
	}

	// Tampered payload.
	if _, err := m.ValidateToken(token + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("tampered token error = %v, want ErrInvalidToken", err)
	}

	// Expired token: validate with a clock past the expiry.
	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := m.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token error = %v, want ErrInvalidToken", err)
	}
}
