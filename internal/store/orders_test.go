package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erazemk/arsenal/internal/model"
)

func TestCreateOrderSkipsUnresolvableLines(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, _ := s.CreateItem(ctx, model.Item{Name: "Latarka", Code: "L-1", UnitPrice: 10})
	b, _ := s.CreateItem(ctx, model.Item{Name: "Baterie", Code: "B-2", UnitPrice: 5})
	sup, _ := s.CreateSupplier(ctx, model.Supplier{Name: "Hurtownia"})

	order, err := s.CreateOrder(ctx, OrderRequest{
		SupplierID: sup.ID,
		IssuedBy:   "admin",
		Lines: []OrderLineRequest{
			{ItemID: a.ID, Quantity: 3},
			{ItemID: b.ID, Quantity: 2},
			{ItemID: 999, Quantity: 4},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if len(order.LineItems) != 2 {
		t.Errorf("expected 2 line items, got %d", len(order.LineItems))
	}
	if order.Total != 40 {
		t.Errorf("expected total 40, got %v", order.Total)
	}
	if order.Status != model.OrderStatusSent {
		t.Errorf("expected status SENT, got %q", order.Status)
	}
	if !strings.HasPrefix(order.ID, model.OrderIDPrefix) {
		t.Errorf("expected id with prefix %q, got %q", model.OrderIDPrefix, order.ID)
	}
	if order.Supplier.Name != "Hurtownia" || order.IssuedBy != "admin" {
		t.Errorf("unexpected order header: %+v", order)
	}
	if order.LineItems[0].LineTotal != 30 || order.LineItems[1].LineTotal != 10 {
		t.Errorf("unexpected line totals: %+v", order.LineItems)
	}
}

func TestEmptyOrderIsNotSaved(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sup, _ := s.CreateSupplier(ctx, model.Supplier{Name: "Hurtownia"})

	_, err := s.CreateOrder(ctx, OrderRequest{
		SupplierID: sup.ID,
		Lines:      []OrderLineRequest{{ItemID: 1, Quantity: 1}},
	})
	if !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("expected ErrEmptyOrder, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), OrdersFile)); !os.IsNotExist(err) {
		t.Error("expected no orders file to be written")
	}

	_, err = s.CreateOrder(ctx, OrderRequest{SupplierID: 12345})
	if !errors.Is(err, ErrSupplierNotFound) {
		t.Errorf("expected ErrSupplierNotFound, got %v", err)
	}
}

func TestReceiveOrderBooksStock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item, _ := s.CreateItem(ctx, model.Item{Name: "Opatrunek", Quantity: 1, UnitPrice: 2})
	sup, _ := s.CreateSupplier(ctx, model.Supplier{Name: "Medyk"})
	order, _ := s.CreateOrder(ctx, OrderRequest{
		SupplierID: sup.ID,
		Lines:      []OrderLineRequest{{ItemID: item.ID, Quantity: 9}},
	})

	received, err := s.SetOrderStatus(ctx, order.ID, model.OrderStatusReceived)
	if err != nil {
		t.Fatalf("SetOrderStatus: %v", err)
	}
	if received.Status != model.OrderStatusReceived {
		t.Errorf("expected RECEIVED, got %q", received.Status)
	}

	got, _ := s.GetItem(ctx, item.ID)
	if got.Quantity != 10 {
		t.Errorf("expected quantity 10, got %d", got.Quantity)
	}

	if _, err := s.ReceiveOrder(ctx, order.ID); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus on second receive, got %v", err)
	}
	if _, err := s.SetOrderStatus(ctx, order.ID, model.OrderStatusCancelled); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus cancelling a received order, got %v", err)
	}
	if _, err := s.SetOrderStatus(ctx, "ZM-missing", model.OrderStatusCancelled); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestReceiveOrderRestoresStockWhenOrderSaveFails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item, _ := s.CreateItem(ctx, model.Item{Name: "Opatrunek", Quantity: 1})
	sup, _ := s.CreateSupplier(ctx, model.Supplier{Name: "Medyk"})
	order, _ := s.CreateOrder(ctx, OrderRequest{
		SupplierID: sup.ID,
		Lines:      []OrderLineRequest{{ItemID: item.ID, Quantity: 9}},
	})

	itemsPath := filepath.Join(s.Dir(), ItemsFile)
	before, err := os.ReadFile(itemsPath)
	if err != nil {
		t.Fatal(err)
	}

	s.orders.rename = func(oldpath, _ string) error {
		os.Remove(oldpath)
		return errors.New("disk full")
	}
	if _, err := s.ReceiveOrder(ctx, order.ID); err == nil {
		t.Fatal("expected error when the order cannot be saved")
	}

	after, _ := os.ReadFile(itemsPath)
	if string(before) != string(after) {
		t.Errorf("expected items file to be restored, got %s", after)
	}
	stored, _ := s.GetOrder(ctx, order.ID)
	if stored.Status != model.OrderStatusSent {
		t.Errorf("expected status SENT, got %q", stored.Status)
	}

	// Retrying once the write succeeds books the stock exactly once.
	s.orders.rename = nil
	if _, err := s.ReceiveOrder(ctx, order.ID); err != nil {
		t.Fatalf("ReceiveOrder: %v", err)
	}
	got, _ := s.GetItem(ctx, item.ID)
	if got.Quantity != 10 {
		t.Errorf("expected quantity 10, got %d", got.Quantity)
	}
}

func TestNewOrderIDSkipsTakenNumbers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	item, _ := s.CreateItem(ctx, model.Item{Name: "x", UnitPrice: 1})
	sup, _ := s.CreateSupplier(ctx, model.Supplier{Name: "y"})

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		o, err := s.CreateOrder(ctx, OrderRequest{
			SupplierID: sup.ID,
			Lines:      []OrderLineRequest{{ItemID: item.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}
		if seen[o.ID] {
			t.Errorf("duplicate order id %q", o.ID)
		}
		seen[o.ID] = true
	}

	orders, _ := s.ListOrders(ctx)
	if len(orders) != 3 {
		t.Errorf("expected 3 orders, got %d", len(orders))
	}
}
