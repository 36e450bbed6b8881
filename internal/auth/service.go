package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"dompet/internal/core"
	"dompet/internal/records"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// Session is the result of a successful register or login.
type Session struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

// Service registers accounts and exchanges credentials for session tokens.
type Service struct {
	users  records.UserStore
	tokens *JWTManager
}

func NewService(users records.UserStore, tokens *JWTManager) *Service {
	return &Service{users: users, tokens: tokens}
}

// Register creates an account and returns a ready session. The email is the
// unique login identifier; lookups are case insensitive.
func (s *Service) Register(ctx context.Context, username, email, password string) (Session, error) {
	if len(password) < 8 {
		return Session{}, ErrWeakPassword
	}

	user := core.User{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
	}
	if err := user.Validate(); err != nil {
		return Session{}, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash

	stored, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, records.ErrUserExists) {
			return Session{}, ErrUserExists
		}
		return Session{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "user_id", stored.ID)
	return s.session(stored)
}

// Login verifies the credentials and returns a session. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return Session{}, ErrInvalidCredentials
	}

	if !CheckPasswordHash(password, user.PasswordHash) {
		return Session{}, ErrInvalidCredentials
	}

	return s.session(user)
}

// Identify resolves a bearer token to the user id it was issued for.
func (s *Service) Identify(tokenString string) (string, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (s *Service) session(user core.User) (Session, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Username, user.Email)
	if err != nil {
		return Session{}, fmt.Errorf("generate token: %w", err)
	}

	return Session{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.tokens.TokenTTL().Seconds()),
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
	}, nil
}
