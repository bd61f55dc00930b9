package web

import (
	"net/http"

	"github.com/erazemk/arsenal/internal/model"
)

// StatsPage handles GET /statystyki.
func (s *Server) StatsPage(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Store.Stats(r.Context())
	if err != nil {
		s.fail(w, r, "failed to compute statistics", err)
		return
	}

	s.Templates.Render(w, "statystyki.html", &struct {
		PageData
		Stats model.Stats
	}{
		PageData: s.page(r, "Statystyki", "statystyki"),
		Stats:    stats,
	})
}
