package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/arsenal/internal/auth"
	"github.com/erazemk/arsenal/internal/model"
	"github.com/erazemk/arsenal/internal/session"
	"github.com/erazemk/arsenal/internal/store"
)

type webContextKey string

const (
	webSessionKey webContextKey = "session"
	webUserKey    webContextKey = "user"
)

// CookieName is the name of the session cookie.
const CookieName = "token"

// CookieAuthMiddleware validates the session token from the cookie, loads the
// session and the current user record, and adds both to the context. The user
// is re-read on every request so role changes and deletions apply at once.
func CookieAuthMiddleware(secret string, sessions session.Store, st *store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			claims, err := auth.ValidateToken(secret, cookie.Value)
			if err != nil {
				clearAuthCookie(w)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			sess, err := sessions.Get(r.Context(), claims.SessionID())
			if err != nil {
				if !errors.Is(err, session.ErrNotFound) {
					slog.Error("failed to load session", "error", err)
				}
				clearAuthCookie(w)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			user, err := st.GetUser(r.Context(), sess.UserID)
			if err != nil {
				slog.Error("failed to load session user", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if user == nil {
				_ = sessions.Delete(r.Context(), sess.ID)
				clearAuthCookie(w)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), webSessionKey, sess)
			ctx = context.WithValue(ctx, webUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects users without the administrator role with a plain 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		if user == nil || !model.RoleAtLeast(user.Role, model.RoleAdmin) {
			http.Error(w, "Brak uprawnień: wymagana rola Administrator.", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Options.CookieSecure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(s.Options.SessionTTL.Seconds()),
	})
}

// clearAuthCookie clears the authentication cookie with consistent attributes.
func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// CurrentUser returns the signed-in user stored in the context.
func CurrentUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(webUserKey).(*model.User)
	return user
}

// CurrentSession returns the session stored in the context.
func CurrentSession(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(webSessionKey).(*session.Session)
	return sess
}
