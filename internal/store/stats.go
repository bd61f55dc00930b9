package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/erazemk/arsenal/internal/model"
)

// ComputeStats derives inventory totals and low-stock alerts from items.
func ComputeStats(items []model.Item) model.Stats {
	st := model.Stats{
		ItemCount:        len(items),
		UnitsByCategory:  make(map[string]int),
		UnitsByWarehouse: make(map[string]int),
	}

	value := decimal.Zero
	for _, it := range items {
		value = value.Add(decimal.NewFromFloat(it.UnitPrice).Mul(decimal.NewFromInt(int64(it.Quantity))))
		st.TotalUnits += it.Quantity
		st.UnitsByCategory[it.Category] += it.Quantity
		st.UnitsByWarehouse[it.Warehouse] += it.Quantity
		if it.LowStock() {
			st.Alerts++
			st.LowStock = append(st.LowStock, it)
		}
	}
	st.TotalValue = value.Round(2).InexactFloat64()
	return st
}

// Stats loads the items and computes their statistics.
func (s *Store) Stats(ctx context.Context) (model.Stats, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return model.Stats{}, err
	}
	return ComputeStats(items), nil
}
