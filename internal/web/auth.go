package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/arsenal/internal/auth"
	"github.com/erazemk/arsenal/internal/model"
	"github.com/erazemk/arsenal/internal/session"
)

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &PageData{Title: "Logowanie"})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	login := strings.TrimSpace(r.FormValue("login"))
	password := r.FormValue("haslo")

	if login == "" || password == "" {
		s.Templates.RenderStatus(w, http.StatusBadRequest, "login.html", &PageData{
			Title: "Logowanie",
			Error: "Podaj login i hasło.",
		})
		return
	}

	user, err := s.Store.GetUserByLogin(r.Context(), login)
	if err != nil {
		s.fail(w, r, "failed to load user", err)
		return
	}
	if user == nil || !auth.CheckPassword(user.Password, password) {
		slog.Warn("failed login", "login", login, "remote", r.RemoteAddr)
		s.Templates.RenderStatus(w, http.StatusUnauthorized, "login.html", &PageData{
			Title: "Logowanie",
			Error: "Nieprawidłowy login lub hasło!",
		})
		return
	}

	if s.Options.HashPasswords && !auth.IsHash(user.Password) {
		s.upgradePassword(r, user, password)
	}

	sess := session.New(user.ID, user.Login, user.Role, s.Options.SessionTTL)
	if err := s.Sessions.Save(r.Context(), sess); err != nil {
		s.fail(w, r, "failed to save session", err)
		return
	}

	token, err := auth.GenerateToken(s.Secret, sess.ID, user.ID, user.Login, user.Role, sess.ExpiresAt)
	if err != nil {
		s.fail(w, r, "failed to sign session token", err)
		return
	}
	s.setAuthCookie(w, token)

	slog.Info("user logged in", "login", user.Login)
	s.record(r.Context(), model.ActionLogin, user.Login, "Zalogowano: "+user.FullName())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// upgradePassword replaces a plain stored password with its hash after a
// successful login.
func (s *Server) upgradePassword(r *http.Request, user *model.User, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		slog.Error("failed to hash password", "login", user.Login, "error", err)
		return
	}
	if err := s.Store.UpdateUserPassword(r.Context(), user.ID, hash); err != nil {
		slog.Error("failed to upgrade stored password", "login", user.Login, "error", err)
		return
	}
	slog.Info("stored password upgraded to hash", "login", user.Login)
}

// Logout handles POST /logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		if claims, err := auth.ValidateToken(s.Secret, cookie.Value); err == nil {
			if err := s.Sessions.Delete(r.Context(), claims.SessionID()); err != nil {
				slog.Error("failed to delete session", "error", err)
			}
			s.record(r.Context(), model.ActionLogin, claims.Login, "Wylogowano")
		}
	}
	clearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
