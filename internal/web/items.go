package web

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/arsenal/internal/export"
	"github.com/erazemk/arsenal/internal/imaging"
	"github.com/erazemk/arsenal/internal/model"
	"github.com/erazemk/arsenal/internal/store"
)

type indexData struct {
	PageData
	Items      []model.Item
	Categories []string
	Query      string
	Category   string
	Stats      model.Stats
	Defaults   model.ItemDefaults
}

// IndexPage handles GET /.
func (s *Server) IndexPage(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, r, http.StatusOK, "")
}

// renderIndex shows the item list, optionally with an error message.
func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	items, err := s.Store.ListItems(r.Context())
	if err != nil {
		s.fail(w, r, "failed to list items", err)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	category := r.URL.Query().Get("kategoria")

	data := &indexData{
		PageData:   s.page(r, "Arsenał", "index"),
		Items:      store.FilterItems(items, query, category),
		Categories: store.Categories(items),
		Query:      query,
		Category:   category,
		Stats:      store.ComputeStats(items),
		Defaults:   s.Store.Defaults(),
	}
	data.Error = errMsg
	s.Templates.RenderStatus(w, status, "index.html", data)
}

// parseItemForm parses both urlencoded and multipart item forms.
func parseItemForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+1<<20)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(imaging.MaxUploadSize)
	}
	return r.ParseForm()
}

// saveUpload stores the image submitted as "zdjecie", if any, and returns its
// public path.
func (s *Server) saveUpload(r *http.Request) (string, error) {
	file, header, err := r.FormFile("zdjecie")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	return s.Uploads.Save(file, header.Filename)
}

func (s *Server) removeUpload(path string) {
	if path == "" {
		return
	}
	if err := s.Uploads.Remove(path); err != nil {
		slog.Error("failed to remove image", "path", path, "error", err)
	}
}

// ItemCreateSubmit handles POST /dodaj.
func (s *Server) ItemCreateSubmit(w http.ResponseWriter, r *http.Request) {
	if err := parseItemForm(w, r); err != nil {
		s.renderIndex(w, r, http.StatusBadRequest, "Nieprawidłowy formularz lub zbyt duży plik.")
		return
	}

	name := strings.TrimSpace(r.FormValue("nazwa"))
	if name == "" {
		s.renderIndex(w, r, http.StatusBadRequest, "Podaj nazwę sprzętu.")
		return
	}

	imagePath, err := s.saveUpload(r)
	if err != nil {
		slog.Warn("rejected item image", "error", err)
		s.renderIndex(w, r, http.StatusBadRequest, "Nieprawidłowe zdjęcie: "+err.Error())
		return
	}

	item, err := s.Store.CreateItem(r.Context(), model.Item{
		Name:        name,
		Category:    strings.TrimSpace(r.FormValue("kategoria")),
		Warehouse:   strings.TrimSpace(r.FormValue("magazyn")),
		Code:        strings.TrimSpace(r.FormValue("kod")),
		MinQuantity: formInt(r, "stanMinimalny"),
		UnitPrice:   formPrice(r, "cena"),
		Description: strings.TrimSpace(r.FormValue("opis")),
		Quantity:    formInt(r, "ilosc"),
		ImagePath:   imagePath,
	})
	if err != nil {
		s.removeUpload(imagePath)
		s.fail(w, r, "failed to create item", err)
		return
	}

	slog.Info("item created", "user", actor(r), "item", item.Name, "quantity", item.Quantity)
	s.record(r.Context(), model.ActionDelivery, actor(r),
		fmt.Sprintf("Dodano: %s [%s] (%d szt.)", item.Name, item.Category, item.Quantity))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ItemUpdateSubmit handles POST /edytuj. Only submitted fields change; an
// unknown id is ignored.
func (s *Server) ItemUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	if err := parseItemForm(w, r); err != nil {
		s.renderIndex(w, r, http.StatusBadRequest, "Nieprawidłowy formularz lub zbyt duży plik.")
		return
	}

	id, ok := formID(r, "id")
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	previous, err := s.Store.GetItem(r.Context(), id)
	if err != nil {
		s.fail(w, r, "failed to get item", err)
		return
	}
	if previous == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	patch := store.ItemPatch{
		Name:        formString(r, "nazwa"),
		Category:    formString(r, "kategoria"),
		Warehouse:   formString(r, "magazyn"),
		Code:        formString(r, "kod"),
		MinQuantity: formIntPtr(r, "stanMinimalny"),
		UnitPrice:   formPricePtr(r, "cena"),
		Description: formString(r, "opis"),
		Quantity:    formIntPtr(r, "ilosc"),
	}
	if patch.Name != nil && *patch.Name == "" {
		patch.Name = nil
	}

	imagePath, err := s.saveUpload(r)
	if err != nil {
		slog.Warn("rejected item image", "error", err)
		s.renderIndex(w, r, http.StatusBadRequest, "Nieprawidłowe zdjęcie: "+err.Error())
		return
	}
	if imagePath != "" {
		patch.ImagePath = &imagePath
	}

	item, err := s.Store.UpdateItem(r.Context(), id, patch)
	if err != nil {
		s.removeUpload(imagePath)
		s.fail(w, r, "failed to update item", err)
		return
	}
	if item == nil {
		s.removeUpload(imagePath)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if imagePath != "" && previous.ImagePath != imagePath {
		s.removeUpload(previous.ImagePath)
	}

	slog.Info("item updated", "user", actor(r), "item", item.Name)
	s.record(r.Context(), model.ActionEdit, actor(r), "Zaktualizowano: "+item.Name)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ItemDeleteSubmit handles POST /usun/{id}. A missing item changes nothing
// and is not logged.
func (s *Server) ItemDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	removed, err := s.Store.DeleteItem(r.Context(), id)
	if err != nil {
		s.fail(w, r, "failed to delete item", err)
		return
	}
	if removed != nil {
		s.removeUpload(removed.ImagePath)
		slog.Info("item deleted", "user", actor(r), "item", removed.Name)
		s.record(r.Context(), model.ActionRemoval, actor(r), "Usunięto: "+removed.Name)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ItemAdjustSubmit handles POST /zmien/{id}/{akcja}, where akcja is "plus" or
// "minus". Decreasing an empty stock is a no-op.
func (s *Server) ItemAdjustSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	var delta int
	var verb string
	switch r.PathValue("akcja") {
	case "plus":
		delta, verb = 1, "Zwiększono"
	case "minus":
		delta, verb = -1, "Zmniejszono"
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	item, err := s.Store.AdjustItemQuantity(r.Context(), id, delta)
	if errors.Is(err, store.ErrInsufficientStock) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		s.fail(w, r, "failed to adjust quantity", err)
		return
	}
	if item != nil {
		s.record(r.Context(), model.ActionAdjustment, actor(r),
			fmt.Sprintf("%s stan: %s (%d szt.)", verb, item.Name, item.Quantity))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ItemIssueSubmit handles POST /wydaj. The issue applies in full or not at
// all; a shortfall is shown to the user.
func (s *Server) ItemIssueSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := formID(r, "id")
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	amount := formInt(r, "ilosc")
	recipient := strings.TrimSpace(r.FormValue("odbiorca"))
	purpose := strings.TrimSpace(r.FormValue("cel"))

	item, err := s.Store.IssueItem(r.Context(), id, amount)
	switch {
	case errors.Is(err, store.ErrInvalidQuantity):
		s.renderIndex(w, r, http.StatusBadRequest, "Ilość do wydania musi być większa od zera.")
		return
	case errors.Is(err, store.ErrInsufficientStock):
		msg := "Brak wystarczającej ilości na stanie!"
		if current, _ := s.Store.GetItem(r.Context(), id); current != nil {
			msg = fmt.Sprintf("Brak wystarczającej ilości na stanie: %s (dostępne %d szt., żądane %d szt.).",
				current.Name, current.Quantity, amount)
		}
		slog.Warn("issue rejected", "user", actor(r), "item_id", id, "amount", amount)
		s.renderIndex(w, r, http.StatusConflict, msg)
		return
	case err != nil:
		s.fail(w, r, "failed to issue item", err)
		return
	}
	if item == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	slog.Info("item issued", "user", actor(r), "item", item.Name, "amount", amount, "recipient", recipient)
	s.record(r.Context(), model.ActionIssue, actor(r),
		fmt.Sprintf("Wydano: %dszt. %s | Odbiorca: %s | Cel: %s", amount, item.Name, recipient, purpose))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// InventoryExport handles GET /eksport.
func (s *Server) InventoryExport(w http.ResponseWriter, r *http.Request) {
	items, err := s.Store.ListItems(r.Context())
	if err != nil {
		s.fail(w, r, "failed to list items", err)
		return
	}

	var buf bytes.Buffer
	if err := export.Inventory(&buf, items); err != nil {
		s.fail(w, r, "failed to export inventory", err)
		return
	}
	writeDownload(w, export.InventoryFileName(time.Now()), buf.Bytes())
}

func writeDownload(w http.ResponseWriter, name string, data []byte) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write download", "file", name, "error", err)
	}
}
