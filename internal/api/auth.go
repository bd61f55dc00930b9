package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/arsenal/internal/audit"
	"github.com/erazemk/arsenal/internal/auth"
	"github.com/erazemk/arsenal/internal/model"
	"github.com/erazemk/arsenal/internal/session"
	"github.com/erazemk/arsenal/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	Store    *store.Store
	Audit    *audit.Log
	Sessions session.Store
	Secret   string
	TTL      time.Duration
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type meResponse struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	Unit      string `json:"unit"`
}

func newMeResponse(u *model.User) meResponse {
	return meResponse{ID: u.ID, Login: u.Login, FirstName: u.FirstName, LastName: u.LastName, Role: u.Role, Unit: u.Unit}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "login and password required")
		return
	}

	user, err := h.Store.GetUserByLogin(r.Context(), req.Login)
	if err != nil {
		slog.Error("failed to load user", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil || !auth.CheckPassword(user.Password, req.Password) {
		slog.Warn("login failed", "login", req.Login, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	sess := session.New(user.ID, user.Login, user.Role, h.TTL)
	if err := h.Sessions.Save(r.Context(), sess); err != nil {
		slog.Error("failed to save session", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	token, err := auth.GenerateToken(h.Secret, sess.ID, user.ID, user.Login, user.Role, sess.ExpiresAt)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("user logged in", "user", user.Login, "role", user.Role, "via", "api")
	_ = h.Audit.Append(r.Context(), model.ActionLogin, user.Login, "Zalogowano (API)")
	jsonResponse(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: sess.ExpiresAt})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if err := h.Sessions.Delete(r.Context(), claims.SessionID()); err != nil {
		slog.Error("failed to delete session", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	_ = h.Audit.Append(r.Context(), model.ActionLogin, claims.Login, "Wylogowano (API)")
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	user, err := h.Store.GetUser(r.Context(), claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "user no longer exists")
		return
	}
	jsonResponse(w, http.StatusOK, newMeResponse(user))
}
