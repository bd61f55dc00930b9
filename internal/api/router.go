package api

import (
	"net/http"
	"time"

	"github.com/erazemk/arsenal/internal/audit"
	"github.com/erazemk/arsenal/internal/model"
	"github.com/erazemk/arsenal/internal/session"
	"github.com/erazemk/arsenal/internal/store"
)

// Deps are the API handlers' dependencies.
type Deps struct {
	Store      *store.Store
	Audit      *audit.Log
	Sessions   session.Store
	Secret     string
	SessionTTL time.Duration
}

// NewRouter creates the API router with all endpoints registered. The API is
// read-only apart from signing in and out.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{Store: d.Store, Audit: d.Audit, Sessions: d.Sessions, Secret: d.Secret, TTL: d.SessionTTL}
	itemsHandler := &ItemsHandler{Store: d.Store}
	usersHandler := &UsersHandler{Store: d.Store}
	historyHandler := &HistoryHandler{Audit: d.Audit}

	authMW := AuthMiddleware(d.Secret, d.Sessions, d.Store)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireStorekeeper := RequireRole(model.RoleStorekeeper)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/auth/me", authMW(http.HandlerFunc(authHandler.Me)))

	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("GET /api/stats", authMW(http.HandlerFunc(itemsHandler.Stats)))
	mux.Handle("GET /api/orders", authMW(requireStorekeeper(http.HandlerFunc(itemsHandler.Orders))))

	mux.Handle("GET /api/history", authMW(requireStorekeeper(http.HandlerFunc(historyHandler.List))))

	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))

	return mux
}
