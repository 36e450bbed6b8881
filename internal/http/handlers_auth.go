package http

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"dompet/internal/auth"
	"dompet/internal/core"
	"dompet/internal/log"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.auth.Register(r.Context(), sanitizeInput(req.Username), sanitizeInput(req.Email), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			writeError(w, http.StatusConflict, "email already registered")
		case errors.Is(err, auth.ErrWeakPassword),
			errors.Is(err, core.ErrInvalidEmail),
			errors.Is(err, core.ErrInvalidUsername):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			s.logger.ErrorContext(r.Context(), "Registration failed", log.FieldError, err)
			writeError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.auth.Login(r.Context(), sanitizeInput(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.logger.ErrorContext(r.Context(), "Login failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// requireUser resolves the bearer token to a user id and stores it in the
// request context.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			atomic.AddInt64(&s.metrics.unauthorizedHits, 1)
			writeError(w, http.StatusUnauthorized, "authorization token required")
			return
		}

		userID, err := s.auth.Identify(token)
		if err != nil {
			atomic.AddInt64(&s.metrics.unauthorizedHits, 1)
			s.logger.WarnContext(r.Context(), "Rejected invalid token", log.FieldError, err)
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next(w, r.WithContext(ctx))
	}
}

// userID returns the authenticated user for the request. Handlers behind
// requireUser can rely on it being set.
func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
