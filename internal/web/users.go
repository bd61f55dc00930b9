package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/arsenal/internal/auth"
	"github.com/erazemk/arsenal/internal/model"
	"github.com/erazemk/arsenal/internal/store"
)

// UsersPage handles GET /uzytkownicy (admin only).
func (s *Server) UsersPage(w http.ResponseWriter, r *http.Request) {
	s.renderUsers(w, r, http.StatusOK, "", "")
}

func (s *Server) renderUsers(w http.ResponseWriter, r *http.Request, status int, errMsg, success string) {
	users, err := s.Store.ListUsers(r.Context())
	if err != nil {
		s.fail(w, r, "failed to list users", err)
		return
	}

	data := &struct {
		PageData
		Users []model.User
		Roles []string
	}{
		PageData: s.page(r, "Użytkownicy", "uzytkownicy"),
		Users:    users,
		Roles:    model.Roles,
	}
	data.Error = errMsg
	data.Success = success
	s.Templates.RenderStatus(w, status, "uzytkownicy.html", data)
}

// userError maps a rejected user change to a status and message.
func userError(err error) (int, string, bool) {
	switch {
	case errors.Is(err, store.ErrDuplicateLogin):
		return http.StatusConflict, "Login jest już zajęty.", true
	case errors.Is(err, store.ErrInvalidRole):
		return http.StatusBadRequest, "Nieprawidłowa rola.", true
	case errors.Is(err, store.ErrLastAdmin):
		return http.StatusConflict, "Nie można odebrać uprawnień ostatniemu administratorowi.", true
	case errors.Is(err, store.ErrSelfDelete):
		return http.StatusBadRequest, "Nie możesz usunąć własnego konta.", true
	}
	return 0, "", false
}

// UserCreateSubmit handles POST /uzytkownicy/dodaj (admin only).
func (s *Server) UserCreateSubmit(w http.ResponseWriter, r *http.Request) {
	login := strings.TrimSpace(r.FormValue("login"))
	password := r.FormValue("haslo")
	role := r.FormValue("rola")
	if role == "" {
		role = model.RoleUser
	}

	if login == "" {
		s.renderUsers(w, r, http.StatusBadRequest, "Podaj login.", "")
		return
	}
	if err := model.ValidatePassword(password); err != nil {
		s.renderUsers(w, r, http.StatusBadRequest,
			fmt.Sprintf("Hasło musi mieć co najmniej %d znaków.", model.MinPasswordLength), "")
		return
	}

	stored, err := auth.PreparePassword(password, s.Options.HashPasswords)
	if err != nil {
		s.fail(w, r, "failed to hash password", err)
		return
	}

	user, err := s.Store.CreateUser(r.Context(), model.User{
		Login:     login,
		Password:  stored,
		FirstName: strings.TrimSpace(r.FormValue("imie")),
		LastName:  strings.TrimSpace(r.FormValue("nazwisko")),
		Role:      role,
		Unit:      strings.TrimSpace(r.FormValue("jednostka")),
	})
	if status, msg, ok := userError(err); ok {
		s.renderUsers(w, r, status, msg, "")
		return
	}
	if err != nil {
		s.fail(w, r, "failed to create user", err)
		return
	}

	slog.Info("user created", "user", actor(r), "login", user.Login, "role", user.Role)
	s.record(r.Context(), model.ActionAdmin, actor(r),
		fmt.Sprintf("Dodano użytkownika: %s (%s)", user.Login, user.Role))
	http.Redirect(w, r, "/uzytkownicy", http.StatusSeeOther)
}

// UserUpdateSubmit handles POST /uzytkownicy/edytuj (admin only).
func (s *Server) UserUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderUsers(w, r, http.StatusBadRequest, "Nieprawidłowy formularz.", "")
		return
	}
	id, ok := formID(r, "id")
	if !ok {
		http.Redirect(w, r, "/uzytkownicy", http.StatusSeeOther)
		return
	}

	patch := store.UserPatch{
		Login:     formString(r, "login"),
		FirstName: formString(r, "imie"),
		LastName:  formString(r, "nazwisko"),
		Role:      formString(r, "rola"),
		Unit:      formString(r, "jednostka"),
	}
	if patch.Login != nil && *patch.Login == "" {
		patch.Login = nil
	}

	user, err := s.Store.UpdateUser(r.Context(), id, patch)
	if status, msg, ok := userError(err); ok {
		s.renderUsers(w, r, status, msg, "")
		return
	}
	if err != nil {
		s.fail(w, r, "failed to update user", err)
		return
	}
	if user != nil {
		slog.Info("user updated", "user", actor(r), "login", user.Login)
		s.record(r.Context(), model.ActionAdmin, actor(r),
			fmt.Sprintf("Zaktualizowano użytkownika: %s (%s)", user.Login, user.Role))
	}
	http.Redirect(w, r, "/uzytkownicy", http.StatusSeeOther)
}

// UserDeleteSubmit handles POST /uzytkownicy/usun/{id} (admin only). Admins
// cannot delete their own account.
func (s *Server) UserDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, "/uzytkownicy", http.StatusSeeOther)
		return
	}

	removed, err := s.Store.DeleteUser(r.Context(), id, CurrentUser(r.Context()).ID)
	if status, msg, ok := userError(err); ok {
		s.renderUsers(w, r, status, msg, "")
		return
	}
	if err != nil {
		s.fail(w, r, "failed to delete user", err)
		return
	}
	if removed != nil {
		if err := s.Sessions.DeleteUser(r.Context(), removed.ID); err != nil {
			slog.Error("failed to end sessions of deleted user", "login", removed.Login, "error", err)
		}
		slog.Info("user deleted", "user", actor(r), "login", removed.Login)
		s.record(r.Context(), model.ActionAdmin, actor(r), "Usunięto użytkownika: "+removed.Login)
	}
	http.Redirect(w, r, "/uzytkownicy", http.StatusSeeOther)
}

// UserResetPasswordSubmit handles POST /uzytkownicy/haslo/{id} (admin only).
// The user's other sessions end.
func (s *Server) UserResetPasswordSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, "/uzytkownicy", http.StatusSeeOther)
		return
	}

	password := r.FormValue("haslo")
	if err := model.ValidatePassword(password); err != nil {
		s.renderUsers(w, r, http.StatusBadRequest,
			fmt.Sprintf("Hasło musi mieć co najmniej %d znaków.", model.MinPasswordLength), "")
		return
	}

	user, err := s.Store.GetUser(r.Context(), id)
	if err != nil {
		s.fail(w, r, "failed to get user", err)
		return
	}
	if user == nil {
		http.Redirect(w, r, "/uzytkownicy", http.StatusSeeOther)
		return
	}

	if err := s.setPassword(r, user.ID, password); err != nil {
		s.fail(w, r, "failed to reset password", err)
		return
	}

	slog.Info("password reset", "user", actor(r), "login", user.Login)
	s.record(r.Context(), model.ActionAdmin, actor(r), "Zresetowano hasło użytkownika: "+user.Login)
	s.renderUsers(w, r, http.StatusOK, "", "Hasło użytkownika "+user.Login+" zostało zmienione.")
}

// setPassword stores a new password and ends the user's sessions other than
// the current one.
func (s *Server) setPassword(r *http.Request, userID int64, password string) error {
	stored, err := auth.PreparePassword(password, s.Options.HashPasswords)
	if err != nil {
		return err
	}
	if err := s.Store.UpdateUserPassword(r.Context(), userID, stored); err != nil {
		return err
	}

	current := CurrentSession(r.Context())
	if err := s.Sessions.DeleteUser(r.Context(), userID); err != nil {
		slog.Error("failed to end sessions", "user_id", userID, "error", err)
		return nil
	}
	if current != nil && current.UserID == userID {
		if err := s.Sessions.Save(r.Context(), current); err != nil {
			slog.Error("failed to restore current session", "error", err)
		}
	}
	return nil
}

// SettingsPage handles GET /ustawienia.
func (s *Server) SettingsPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "ustawienia.html", ptr(s.page(r, "Ustawienia", "ustawienia")))
}

// SettingsSubmit handles POST /ustawienia (change own password).
func (s *Server) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	data := s.page(r, "Ustawienia", "ustawienia")

	current := r.FormValue("obecneHaslo")
	next := r.FormValue("noweHaslo")
	confirm := r.FormValue("powtorzHaslo")

	switch {
	case current == "" || next == "":
		data.Error = "Podaj obecne i nowe hasło."
	case !auth.CheckPassword(user.Password, current):
		data.Error = "Obecne hasło jest nieprawidłowe."
	case next != confirm:
		data.Error = "Hasła nie są zgodne."
	case model.ValidatePassword(next) != nil:
		data.Error = fmt.Sprintf("Hasło musi mieć co najmniej %d znaków.", model.MinPasswordLength)
	}
	if data.Error != "" {
		s.Templates.RenderStatus(w, http.StatusBadRequest, "ustawienia.html", &data)
		return
	}

	if err := s.setPassword(r, user.ID, next); err != nil {
		s.fail(w, r, "failed to change password", err)
		return
	}

	slog.Info("password changed", "user", user.Login)
	s.record(r.Context(), model.ActionAdmin, user.Login, "Zmieniono własne hasło")
	data.Success = "Hasło zostało zmienione."
	s.Templates.Render(w, "ustawienia.html", &data)
}

func ptr[T any](v T) *T {
	return &v
}
