package web

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/arsenal/internal/audit"
	"github.com/erazemk/arsenal/internal/imaging"
	"github.com/erazemk/arsenal/internal/model"
	"github.com/erazemk/arsenal/internal/session"
	"github.com/erazemk/arsenal/internal/store"
)

// Options tune the page handlers.
type Options struct {
	HashPasswords bool
	SessionTTL    time.Duration
	CookieSecure  bool
	BackupsDir    string
}

// Server holds all dependencies for page handlers.
type Server struct {
	Store     *store.Store
	Audit     *audit.Log
	Sessions  session.Store
	Uploads   *imaging.Uploads
	Templates *Templates
	Secret    string
	Options   Options
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title   string
	Active  string
	User    *model.User
	Error   string
	Success string
}

func (s *Server) page(r *http.Request, title, active string) PageData {
	return PageData{Title: title, Active: active, User: CurrentUser(r.Context())}
}

// record appends an audit entry. Failures are already reported by the audit
// log and must not fail the request whose change is already saved.
func (s *Server) record(ctx context.Context, kind, actor, description string) {
	_ = s.Audit.Append(ctx, kind, actor, description)
}

// fail answers a request whose store operation failed unexpectedly.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var pe *store.ParseError
	if errors.As(err, &pe) {
		slog.ErrorContext(r.Context(), msg, "file", pe.Path, "error", err)
	} else {
		slog.ErrorContext(r.Context(), msg, "error", err)
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// actor returns the login of the signed-in user.
func actor(r *http.Request) string {
	if u := CurrentUser(r.Context()); u != nil {
		return u.Login
	}
	return model.SystemActor
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

func formID(r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.FormValue(key)), 10, 64)
	return id, err == nil
}

// formInt parses an integer field; missing or malformed values give 0.
func formInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(r.FormValue(key)))
	return n
}

// formPrice parses a price with either a dot or a comma as decimal separator;
// missing, malformed or out-of-range values give 0.
func formPrice(r *http.Request, key string) float64 {
	v := strings.ReplaceAll(strings.TrimSpace(r.FormValue(key)), ",", ".")
	d, err := decimal.NewFromString(v)
	if err != nil {
		return 0
	}
	f := d.Round(2).InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

// formString returns the trimmed value of a submitted field, or nil when the
// field was not submitted at all.
func formString(r *http.Request, key string) *string {
	if _, ok := r.Form[key]; !ok {
		return nil
	}
	v := strings.TrimSpace(r.Form.Get(key))
	return &v
}

func formIntPtr(r *http.Request, key string) *int {
	if _, ok := r.Form[key]; !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(r.Form.Get(key)))
	if err != nil {
		return nil
	}
	return &n
}

func formPricePtr(r *http.Request, key string) *float64 {
	if _, ok := r.Form[key]; !ok {
		return nil
	}
	p := formPrice(r, key)
	return &p
}
