package web

import (
	"net/http"

	webembed "github.com/erazemk/arsenal/web"
)

// NewRouter registers every page route on a new mux. Templates are loaded
// from the embedded file system unless the server already has them.
func NewRouter(s *Server) (http.Handler, error) {
	if s.Templates == nil {
		templates, err := LoadTemplates()
		if err != nil {
			return nil, err
		}
		s.Templates = templates
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(s.Secret, s.Sessions, s.Store)
	admin := func(h http.HandlerFunc) http.Handler {
		return cookieAuth(RequireAdmin(h))
	}
	authed := func(h http.HandlerFunc) http.Handler {
		return cookieAuth(h)
	}

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Items.
	mux.Handle("GET /{$}", authed(s.IndexPage))
	mux.Handle("POST /dodaj", authed(s.ItemCreateSubmit))
	mux.Handle("POST /edytuj", authed(s.ItemUpdateSubmit))
	mux.Handle("POST /usun/{id}", authed(s.ItemDeleteSubmit))
	mux.Handle("POST /zmien/{id}/{akcja}", authed(s.ItemAdjustSubmit))
	mux.Handle("POST /wydaj", authed(s.ItemIssueSubmit))
	mux.Handle("GET /eksport", authed(s.InventoryExport))
	mux.Handle("GET /uploads/", cookieAuth(s.Uploads.Handler()))

	mux.Handle("GET /historia", authed(s.HistoryPage))
	mux.Handle("GET /statystyki", authed(s.StatsPage))

	// Suppliers and orders.
	mux.Handle("GET /zamowienia", authed(s.OrdersPage))
	mux.Handle("POST /dostawcy/dodaj", authed(s.SupplierCreateSubmit))
	mux.Handle("POST /dostawcy/usun/{id}", authed(s.SupplierDeleteSubmit))
	mux.Handle("POST /zamowienia/nowe", authed(s.OrderCreateSubmit))
	mux.Handle("POST /zamowienia/{id}/status", authed(s.OrderStatusSubmit))
	mux.Handle("GET /zamowienia/{id}/eksport", authed(s.OrderExport))

	// Own account.
	mux.Handle("GET /ustawienia", authed(s.SettingsPage))
	mux.Handle("POST /ustawienia", authed(s.SettingsSubmit))

	// Administration.
	mux.Handle("GET /uzytkownicy", admin(s.UsersPage))
	mux.Handle("POST /uzytkownicy/dodaj", admin(s.UserCreateSubmit))
	mux.Handle("POST /uzytkownicy/edytuj", admin(s.UserUpdateSubmit))
	mux.Handle("POST /uzytkownicy/usun/{id}", admin(s.UserDeleteSubmit))
	mux.Handle("POST /uzytkownicy/haslo/{id}", admin(s.UserResetPasswordSubmit))
	mux.Handle("POST /admin/backup", admin(s.BackupSubmit))

	return mux, nil
}
