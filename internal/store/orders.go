package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/arsenal/internal/model"
)

// OrderRequest is a submitted purchase order before items are resolved.
type OrderRequest struct {
	SupplierID int64
	Lines      []OrderLineRequest
	IssuedBy   string
}

// OrderLineRequest asks for quantity units of an item.
type OrderLineRequest struct {
	ItemID   int64
	Quantity int
}

// BuildOrderLines resolves requested lines against items. Unknown item IDs
// and non-positive quantities are skipped. Prices are taken from the items.
func BuildOrderLines(items []model.Item, req []OrderLineRequest) ([]model.OrderLine, float64) {
	var lines []model.OrderLine
	total := decimal.Zero
	for _, r := range req {
		if r.Quantity <= 0 {
			continue
		}
		i := indexItem(items, r.ItemID)
		if i < 0 {
			continue
		}
		it := items[i]
		lineTotal := decimal.NewFromFloat(it.UnitPrice).Mul(decimal.NewFromInt(int64(r.Quantity)))
		total = total.Add(lineTotal)
		lines = append(lines, model.OrderLine{
			ItemID:           it.ID,
			Name:             it.Name,
			Code:             it.Code,
			Quantity:         r.Quantity,
			UnitPriceAtOrder: it.UnitPrice,
			LineTotal:        lineTotal.Round(2).InexactFloat64(),
		})
	}
	return lines, total.Round(2).InexactFloat64()
}

// CreateOrder resolves the request against the current items and supplier and
// stores a new SENT order. Nothing is stored when no line resolves.
func (s *Store) CreateOrder(ctx context.Context, req OrderRequest) (*model.Order, error) {
	supplier, err := s.GetSupplier(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, ErrSupplierNotFound
	}

	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	lines, total := BuildOrderLines(items, req.Lines)
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	order := model.Order{
		Supplier:  *supplier,
		LineItems: lines,
		Total:     total,
		Status:    model.OrderStatusSent,
		IssuedBy:  req.IssuedBy,
	}

	err = s.orders.update(ctx, "create_order", func(orders []model.Order) ([]model.Order, bool, error) {
		now := s.now()
		order.Date = now
		order.ID = newOrderID(now, orders)
		return append(orders, order), true, nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// newOrderID builds "ZM-<yyMMdd>-<nnnn>" from the clock, stepping the suffix
// past numbers already taken.
func newOrderID(now time.Time, orders []model.Order) string {
	taken := make(map[string]bool, len(orders))
	for _, o := range orders {
		taken[o.ID] = true
	}
	suffix := now.UnixMilli() % 10000
	for n := 0; n < 10000; n++ {
		id := fmt.Sprintf("%s%s-%04d", model.OrderIDPrefix, now.Format("060102"), (suffix+int64(n))%10000)
		if !taken[id] {
			return id
		}
	}
	return fmt.Sprintf("%s%d", model.OrderIDPrefix, now.UnixNano())
}

// ListOrders returns orders newest first.
func (s *Store) ListOrders(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orders.read(ctx, "list_orders")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Date.After(orders[j].Date)
	})
	return orders, nil
}

// GetOrder returns an order by ID, or nil if there is none.
func (s *Store) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	orders, err := s.orders.read(ctx, "get_order")
	if err != nil {
		return nil, err
	}
	if i := indexOrder(orders, id); i >= 0 {
		return &orders[i], nil
	}
	return nil, nil
}

// SetOrderStatus changes an order's status. Moving an order to RECEIVED goes
// through ReceiveOrder so stock is booked.
func (s *Store) SetOrderStatus(ctx context.Context, id, status string) (*model.Order, error) {
	if !model.ValidOrderStatus(status) {
		return nil, ErrInvalidStatus
	}
	if status == model.OrderStatusReceived {
		return s.ReceiveOrder(ctx, id)
	}

	var updated *model.Order
	err := s.orders.update(ctx, "set_order_status", func(orders []model.Order) ([]model.Order, bool, error) {
		i := indexOrder(orders, id)
		if i < 0 {
			return orders, false, ErrOrderNotFound
		}
		if orders[i].Status == model.OrderStatusReceived {
			return orders, false, ErrInvalidStatus
		}
		orders[i].Status = status
		o := orders[i]
		updated = &o
		return orders, true, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ReceiveOrder marks a SENT order as RECEIVED and adds each line's quantity to
// the matching item. Lines whose item no longer exists are skipped.
func (s *Store) ReceiveOrder(ctx context.Context, id string) (*model.Order, error) {
	_, span := s.orders.startSpan(ctx, "receive_order")
	defer span.End()

	// Lock order: items before orders, as in Backup.
	s.items.mu.Lock()
	defer s.items.mu.Unlock()
	s.orders.mu.Lock()
	defer s.orders.mu.Unlock()

	order, err := s.receiveLocked(id)
	s.orders.finish(span, "receive_order", err)
	return order, err
}

func (s *Store) receiveLocked(id string) (*model.Order, error) {
	orders, err := s.orders.load()
	if err != nil {
		return nil, err
	}
	i := indexOrder(orders, id)
	if i < 0 {
		return nil, ErrOrderNotFound
	}
	if orders[i].Status != model.OrderStatusSent {
		return nil, ErrInvalidStatus
	}

	items, err := s.items.load()
	if err != nil {
		return nil, err
	}
	previous := slices.Clone(items)

	changed := false
	for _, line := range orders[i].LineItems {
		if j := indexItem(items, line.ItemID); j >= 0 && line.Quantity > 0 {
			items[j].Quantity += line.Quantity
			changed = true
		}
	}
	if changed {
		if err := s.items.save(items); err != nil {
			return nil, err
		}
	}

	// Stock and status change together: undo the stock when the order cannot be saved.
	orders[i].Status = model.OrderStatusReceived
	if err := s.orders.save(orders); err != nil {
		if changed {
			if rerr := s.items.save(previous); rerr != nil {
				return nil, fmt.Errorf("%w (restoring items: %v)", err, rerr)
			}
		}
		return nil, err
	}
	o := orders[i]
	return &o, nil
}

func indexOrder(orders []model.Order, id string) int {
	for i := range orders {
		if orders[i].ID == id {
			return i
		}
	}
	return -1
}
