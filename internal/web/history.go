package web

import (
	"net/http"
	"sort"

	"github.com/erazemk/arsenal/internal/audit"
	"github.com/erazemk/arsenal/internal/model"
)

// HistoryPage handles GET /historia. Entries are newest first and can be
// narrowed by kind (rodzaj) and actor (uzytkownik).
func (s *Server) HistoryPage(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Audit.ReadAll(r.Context())
	if err != nil {
		s.fail(w, r, "failed to read audit log", err)
		return
	}

	kind := r.URL.Query().Get("rodzaj")
	actorFilter := r.URL.Query().Get("uzytkownik")

	seen := make(map[string]bool)
	var actors []string
	for _, e := range entries {
		if !seen[e.Actor] {
			seen[e.Actor] = true
			actors = append(actors, e.Actor)
		}
	}
	sort.Strings(actors)

	s.Templates.Render(w, "historia.html", &struct {
		PageData
		Entries []model.LogEntry
		Kinds   []string
		Actors  []string
		Kind    string
		Actor   string
	}{
		PageData: s.page(r, "Historia operacji", "historia"),
		Entries:  audit.Filter(entries, kind, actorFilter),
		Kinds:    model.ActionKinds,
		Actors:   actors,
		Kind:     kind,
		Actor:    actorFilter,
	})
}
