package web

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/erazemk/arsenal/internal/model"
)

// BackupSubmit handles POST /admin/backup (admin only). Success is recorded as
// a BACKUP entry and failure as an ERROR entry.
func (s *Server) BackupSubmit(w http.ResponseWriter, r *http.Request) {
	dir, err := s.Store.Backup(r.Context(), s.Options.BackupsDir, s.Audit)
	if err != nil {
		slog.Error("backup failed", "user", actor(r), "error", err)
		s.record(r.Context(), model.ActionError, actor(r), "Błąd kopii zapasowej: "+err.Error())
		s.renderUsers(w, r, http.StatusInternalServerError, "Nie udało się utworzyć kopii zapasowej.", "")
		return
	}

	slog.Info("backup created", "user", actor(r), "dir", dir)
	s.record(r.Context(), model.ActionBackup, actor(r), "Utworzono kopię zapasową: "+filepath.Base(dir))
	s.renderUsers(w, r, http.StatusOK, "", "Kopia zapasowa zapisana: "+filepath.Base(dir))
}
