package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/arsenal/internal/store"
)

// UsersHandler serves the user list.
type UsersHandler struct {
	Store *store.Store
}

// List handles GET /api/users (admin only). Passwords are never returned.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]meResponse, 0, len(users))
	for i := range users {
		out = append(out, newMeResponse(&users[i]))
	}
	jsonResponse(w, http.StatusOK, out)
}
