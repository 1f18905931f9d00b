// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/ballot-box/auth"
	"github.com/danielhkuo/ballot-box/middleware"
	"github.com/danielhkuo/ballot-box/models"
)

type SessionHandler struct {
	sessions *auth.Service
}

func NewSessionHandler(sessions *auth.Service) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// SignIn handles POST /session
func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.Fail(w, models.CodeInvalidData, "Invalid JSON")
		return
	}

	if req.Email == "" || req.Password == "" {
		middleware.Fail(w, models.CodeInvalidData, "email and password are required")
		return
	}

	token, sess, err := h.sessions.SignIn(req.Email, req.Password, middleware.GetClientIP(r))
	if err != nil {
		// Failed and throttled attempts are normal traffic, not server
		// trouble; log them below error level.
		slog.Info("sign-in rejected", "error", err)
		middleware.FailErr(w, err)
		return
	}

	slog.Info("admin signed in", "email", sess.Email)

	middleware.Success(w, http.StatusCreated, models.SessionResponse{
		Token:     token,
		Email:     sess.Email,
		ExpiresAt: sess.ExpiresAt,
	})
}

// GetSession handles GET /session
// Lets the dashboard check whether its stored token is still good.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		middleware.Fail(w, models.CodeUnauthorized, "missing bearer token")
		return
	}

	sess, err := h.sessions.Get(token)
	if err != nil {
		middleware.FailErr(w, err)
		return
	}

	middleware.Success(w, http.StatusOK, models.SessionResponse{
		Email:     sess.Email,
		ExpiresAt: sess.ExpiresAt,
	})
}

// SignOut handles DELETE /session
func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		middleware.Fail(w, models.CodeUnauthorized, "missing bearer token")
		return
	}

	if err := h.sessions.SignOut(token); err != nil {
		middleware.FailErr(w, err)
		return
	}

	slog.Info("admin signed out")

	middleware.Success(w, http.StatusOK, nil)
}
