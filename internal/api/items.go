package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/arsenal/internal/store"
)

// ItemsHandler serves items, statistics and orders.
type ItemsHandler struct {
	Store *store.Store
}

// List handles GET /api/items?q=&category=.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListItems(r.Context())
	if err != nil {
		slog.Error("failed to list items", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	q := r.URL.Query()
	jsonResponse(w, http.StatusOK, store.FilterItems(items, q.Get("q"), q.Get("category")))
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}

	item, err := h.Store.GetItem(r.Context(), id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

type statsResponse struct {
	TotalValue       float64        `json:"totalValue"`
	TotalUnits       int            `json:"totalUnits"`
	ItemCount        int            `json:"itemCount"`
	UnitsByCategory  map[string]int `json:"unitsByCategory"`
	UnitsByWarehouse map[string]int `json:"unitsByWarehouse"`
	Alerts           int            `json:"alerts"`
	LowStock         []int64        `json:"lowStock"`
}

// Stats handles GET /api/stats.
func (h *ItemsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Store.Stats(r.Context())
	if err != nil {
		slog.Error("failed to compute stats", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := statsResponse{
		TotalValue:       st.TotalValue,
		TotalUnits:       st.TotalUnits,
		ItemCount:        st.ItemCount,
		UnitsByCategory:  st.UnitsByCategory,
		UnitsByWarehouse: st.UnitsByWarehouse,
		Alerts:           st.Alerts,
		LowStock:         make([]int64, 0, len(st.LowStock)),
	}
	for _, it := range st.LowStock {
		resp.LowStock = append(resp.LowStock, it.ID)
	}
	jsonResponse(w, http.StatusOK, resp)
}

// Orders handles GET /api/orders.
func (h *ItemsHandler) Orders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Store.ListOrders(r.Context())
	if err != nil {
		slog.Error("failed to list orders", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	jsonResponse(w, http.StatusOK, orders)
}
