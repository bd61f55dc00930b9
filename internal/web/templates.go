package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/erazemk/arsenal/internal/model"
	webembed "github.com/erazemk/arsenal/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

var kindNames = map[string]string{
	model.ActionLogin:      "Logowanie",
	model.ActionDelivery:   "Dostawa",
	model.ActionEdit:       "Edycja",
	model.ActionRemoval:    "Usunięcie",
	model.ActionAdjustment: "Korekta",
	model.ActionIssue:      "Wydanie",
	model.ActionAdmin:      "Administracja",
	model.ActionBackup:     "Kopia zapasowa",
	model.ActionError:      "Błąd",
}

var statusNames = map[string]string{
	model.OrderStatusSent:      "Wysłane",
	model.OrderStatusReceived:  "Przyjęte",
	model.OrderStatusCancelled: "Anulowane",
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"roleAtLeast": model.RoleAtLeast,
		"kindName": func(kind string) string {
			if n, ok := kindNames[kind]; ok {
				return n
			}
			return kind
		},
		"statusName": func(status string) string {
			if n, ok := statusNames[status]; ok {
				return n
			}
			return status
		},
		"money": func(v float64) string {
			return strings.Replace(fmt.Sprintf("%.2f zł", v), ".", ",", 1)
		},
		"datetime": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Local().Format("2006-01-02 15:04:05")
		},
		"sortedKeys": func(m map[string]int) []string {
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			return keys
		},
	}
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	pages := []string{
		"login.html",
		"index.html",
		"historia.html",
		"uzytkownicy.html",
		"zamowienia.html",
		"statystyki.html",
		"ustawienia.html",
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a page with status 200.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	ts.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus renders a page with the given status. The page is rendered
// into a buffer first so a template error still produces a clean 500.
func (ts *Templates) RenderStatus(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write page", "template", name, "error", err)
	}
}
