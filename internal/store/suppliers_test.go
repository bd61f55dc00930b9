package store

import (
	"context"
	"testing"

	"github.com/erazemk/arsenal/internal/model"
)

func TestSupplierLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := model.Supplier{Name: "Zbrojownia"}
	in.Set("regon", "123")
	sup, err := s.CreateSupplier(ctx, in)
	if err != nil {
		t.Fatalf("CreateSupplier: %v", err)
	}

	got, _ := s.GetSupplier(ctx, sup.ID)
	if got == nil || got.Extra["regon"] != "123" {
		t.Fatalf("expected supplier with extra field, got %+v", got)
	}

	removed, err := s.DeleteSupplier(ctx, sup.ID)
	if err != nil {
		t.Fatalf("DeleteSupplier: %v", err)
	}
	if removed == nil || removed.Name != "Zbrojownia" {
		t.Errorf("expected removed supplier, got %+v", removed)
	}

	list, _ := s.ListSuppliers(ctx)
	if len(list) != 0 {
		t.Errorf("expected 0 suppliers, got %d", len(list))
	}
}
