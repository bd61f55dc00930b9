package web

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/arsenal/internal/export"
	"github.com/erazemk/arsenal/internal/model"
	"github.com/erazemk/arsenal/internal/store"
)

type ordersData struct {
	PageData
	Suppliers []model.Supplier
	Orders    []model.Order
	Items     []model.Item
	Statuses  []string
}

// OrdersPage handles GET /zamowienia.
func (s *Server) OrdersPage(w http.ResponseWriter, r *http.Request) {
	s.renderOrders(w, r, http.StatusOK, "", "")
}

func (s *Server) renderOrders(w http.ResponseWriter, r *http.Request, status int, errMsg, success string) {
	suppliers, err := s.Store.ListSuppliers(r.Context())
	if err != nil {
		s.fail(w, r, "failed to list suppliers", err)
		return
	}
	orders, err := s.Store.ListOrders(r.Context())
	if err != nil {
		s.fail(w, r, "failed to list orders", err)
		return
	}
	items, err := s.Store.ListItems(r.Context())
	if err != nil {
		s.fail(w, r, "failed to list items", err)
		return
	}

	data := &ordersData{
		PageData:  s.page(r, "Dostawcy i zamówienia", "zamowienia"),
		Suppliers: suppliers,
		Orders:    orders,
		Items:     items,
		Statuses:  []string{model.OrderStatusSent, model.OrderStatusReceived, model.OrderStatusCancelled},
	}
	data.Error = errMsg
	data.Success = success
	s.Templates.RenderStatus(w, status, "zamowienia.html", data)
}

// SupplierCreateSubmit handles POST /dostawcy/dodaj. Every submitted field is
// kept; fields other than the known ones are stored as extra attributes.
func (s *Server) SupplierCreateSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderOrders(w, r, http.StatusBadRequest, "Nieprawidłowy formularz.", "")
		return
	}

	var supplier model.Supplier
	for key, values := range r.PostForm {
		key = strings.TrimSpace(key)
		if key == "" || len(values) == 0 {
			continue
		}
		if v := strings.TrimSpace(values[0]); v != "" {
			supplier.Set(key, v)
		}
	}
	if supplier.Name == "" {
		s.renderOrders(w, r, http.StatusBadRequest, "Podaj nazwę dostawcy.", "")
		return
	}

	created, err := s.Store.CreateSupplier(r.Context(), supplier)
	if err != nil {
		s.fail(w, r, "failed to create supplier", err)
		return
	}

	slog.Info("supplier created", "user", actor(r), "supplier", created.Name)
	s.record(r.Context(), model.ActionAdmin, actor(r), "Dodano dostawcę: "+created.Name)
	http.Redirect(w, r, "/zamowienia", http.StatusSeeOther)
}

// SupplierDeleteSubmit handles POST /dostawcy/usun/{id}.
func (s *Server) SupplierDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, "/zamowienia", http.StatusSeeOther)
		return
	}

	removed, err := s.Store.DeleteSupplier(r.Context(), id)
	if err != nil {
		s.fail(w, r, "failed to delete supplier", err)
		return
	}
	if removed != nil {
		slog.Info("supplier deleted", "user", actor(r), "supplier", removed.Name)
		s.record(r.Context(), model.ActionAdmin, actor(r), "Usunięto dostawcę: "+removed.Name)
	}
	http.Redirect(w, r, "/zamowienia", http.StatusSeeOther)
}

// OrderCreateSubmit handles POST /zamowienia/nowe. Lines are submitted as
// parallel "towar" (item id) and "ilosc" (quantity) fields.
func (s *Server) OrderCreateSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderOrders(w, r, http.StatusBadRequest, "Nieprawidłowy formularz.", "")
		return
	}

	supplierID, ok := formID(r, "dostawca")
	if !ok {
		s.renderOrders(w, r, http.StatusBadRequest, "Wybierz dostawcę.", "")
		return
	}

	itemIDs := r.PostForm["towar"]
	quantities := r.PostForm["ilosc"]
	req := store.OrderRequest{SupplierID: supplierID, IssuedBy: actor(r)}
	for i := 0; i < len(itemIDs) && i < len(quantities); i++ {
		itemID, err := strconv.ParseInt(strings.TrimSpace(itemIDs[i]), 10, 64)
		if err != nil {
			continue
		}
		qty, _ := strconv.Atoi(strings.TrimSpace(quantities[i]))
		req.Lines = append(req.Lines, store.OrderLineRequest{ItemID: itemID, Quantity: qty})
	}

	order, err := s.Store.CreateOrder(r.Context(), req)
	switch {
	case errors.Is(err, store.ErrSupplierNotFound):
		s.renderOrders(w, r, http.StatusBadRequest, "Wybrany dostawca nie istnieje.", "")
		return
	case errors.Is(err, store.ErrEmptyOrder):
		s.renderOrders(w, r, http.StatusBadRequest, "Zamówienie nie zawiera żadnej poprawnej pozycji.", "")
		return
	case err != nil:
		s.fail(w, r, "failed to create order", err)
		return
	}

	slog.Info("order created", "user", actor(r), "order", order.ID, "total", order.Total)
	s.record(r.Context(), model.ActionAdmin, actor(r),
		fmt.Sprintf("Utworzono zamówienie %s: %s, %d poz., %.2f zł",
			order.ID, order.Supplier.Name, len(order.LineItems), order.Total))
	s.renderOrders(w, r, http.StatusOK, "", "Utworzono zamówienie "+order.ID+".")
}

// OrderStatusSubmit handles POST /zamowienia/{id}/status. Receiving an order
// adds its quantities to stock.
func (s *Server) OrderStatusSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	status := r.FormValue("status")

	order, err := s.Store.SetOrderStatus(r.Context(), id, status)
	switch {
	case errors.Is(err, store.ErrOrderNotFound):
		s.renderOrders(w, r, http.StatusNotFound, "Nie znaleziono zamówienia "+id+".", "")
		return
	case errors.Is(err, store.ErrInvalidStatus):
		s.renderOrders(w, r, http.StatusConflict, "Nie można zmienić statusu zamówienia "+id+".", "")
		return
	case err != nil:
		s.fail(w, r, "failed to change order status", err)
		return
	}

	slog.Info("order status changed", "user", actor(r), "order", order.ID, "status", order.Status)
	if order.Status == model.OrderStatusReceived {
		s.record(r.Context(), model.ActionDelivery, actor(r), "Przyjęto zamówienie: "+order.ID)
	} else {
		s.record(r.Context(), model.ActionAdmin, actor(r),
			fmt.Sprintf("Zmieniono status zamówienia %s na %s", order.ID, order.Status))
	}
	http.Redirect(w, r, "/zamowienia", http.StatusSeeOther)
}

// OrderExport handles GET /zamowienia/{id}/eksport.
func (s *Server) OrderExport(w http.ResponseWriter, r *http.Request) {
	order, err := s.Store.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, "failed to get order", err)
		return
	}
	if order == nil {
		http.NotFound(w, r)
		return
	}

	var buf bytes.Buffer
	if err := export.Order(&buf, order); err != nil {
		s.fail(w, r, "failed to export order", err)
		return
	}
	writeDownload(w, export.OrderFileName(order), buf.Bytes())
}
