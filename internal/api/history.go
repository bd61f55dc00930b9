package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/arsenal/internal/audit"
)

// HistoryHandler serves the audit log.
type HistoryHandler struct {
	Audit *audit.Log
}

// List handles GET /api/history?kind=&actor=&limit=. Entries are newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Audit.ReadAll(r.Context())
	if err != nil {
		slog.Error("failed to read audit log", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	q := r.URL.Query()
	entries = audit.Filter(entries, q.Get("kind"), q.Get("actor"))
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit >= 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	jsonResponse(w, http.StatusOK, entries)
}
