package store

import (
	"context"

	"github.com/erazemk/arsenal/internal/model"
)

// ListSuppliers returns every supplier in stored order.
func (s *Store) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	return s.suppliers.read(ctx, "list_suppliers")
}

// GetSupplier returns a supplier by ID, or nil if there is none.
func (s *Store) GetSupplier(ctx context.Context, id int64) (*model.Supplier, error) {
	suppliers, err := s.suppliers.read(ctx, "get_supplier")
	if err != nil {
		return nil, err
	}
	if i := indexSupplier(suppliers, id); i >= 0 {
		return &suppliers[i], nil
	}
	return nil, nil
}

// CreateSupplier appends a supplier with a fresh ID.
func (s *Store) CreateSupplier(ctx context.Context, supplier model.Supplier) (*model.Supplier, error) {
	err := s.suppliers.update(ctx, "create_supplier", func(suppliers []model.Supplier) ([]model.Supplier, bool, error) {
		ids := make([]int64, len(suppliers))
		for i, sp := range suppliers {
			ids[i] = sp.ID
		}
		supplier.ID = nextID(s.now(), ids)
		return append(suppliers, supplier), true, nil
	})
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

// DeleteSupplier removes a supplier and returns it, or nil if there was none.
// Orders keep their own snapshot of the supplier.
func (s *Store) DeleteSupplier(ctx context.Context, id int64) (*model.Supplier, error) {
	var removed *model.Supplier
	err := s.suppliers.update(ctx, "delete_supplier", func(suppliers []model.Supplier) ([]model.Supplier, bool, error) {
		i := indexSupplier(suppliers, id)
		if i < 0 {
			return suppliers, false, nil
		}
		sp := suppliers[i]
		removed = &sp
		return append(suppliers[:i], suppliers[i+1:]...), true, nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func indexSupplier(suppliers []model.Supplier, id int64) int {
	for i := range suppliers {
		if suppliers[i].ID == id {
			return i
		}
	}
	return -1
}
