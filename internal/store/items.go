package store

import (
	"context"
	"strings"

	"github.com/erazemk/arsenal/internal/model"
)

// ItemPatch lists the item fields to change. Nil fields are left as they are.
type ItemPatch struct {
	Name        *string
	Category    *string
	Warehouse   *string
	Code        *string
	MinQuantity *int
	UnitPrice   *float64
	Description *string
	Quantity    *int
	ImagePath   *string
}

func (p ItemPatch) apply(item *model.Item) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Warehouse != nil {
		item.Warehouse = *p.Warehouse
	}
	if p.Code != nil {
		item.Code = *p.Code
	}
	if p.MinQuantity != nil {
		item.MinQuantity = *p.MinQuantity
	}
	if p.UnitPrice != nil {
		item.UnitPrice = *p.UnitPrice
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.ImagePath != nil {
		item.ImagePath = *p.ImagePath
	}
}

// ListItems returns every item in stored order.
func (s *Store) ListItems(ctx context.Context) ([]model.Item, error) {
	return s.items.read(ctx, "list_items")
}

// FilterItems returns items whose name, code or description contains query
// (case-insensitive) and, when category is set, belong to that category.
func FilterItems(items []model.Item, query, category string) []model.Item {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if category != "" && it.Category != category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(it.Name), query) &&
			!strings.Contains(strings.ToLower(it.Code), query) &&
			!strings.Contains(strings.ToLower(it.Description), query) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// GetItem returns an item by ID, or nil if there is none.
func (s *Store) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	items, err := s.items.read(ctx, "get_item")
	if err != nil {
		return nil, err
	}
	if i := indexItem(items, id); i >= 0 {
		return &items[i], nil
	}
	return nil, nil
}

// CreateItem applies the defaults, assigns a fresh ID and appends the item.
func (s *Store) CreateItem(ctx context.Context, item model.Item) (*model.Item, error) {
	s.defaults.Apply(&item)

	err := s.items.update(ctx, "create_item", func(items []model.Item) ([]model.Item, bool, error) {
		ids := make([]int64, len(items))
		for i, it := range items {
			ids[i] = it.ID
		}
		item.ID = nextID(s.now(), ids)
		return append(items, item), true, nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem merges patch into the item with the given ID. An unknown ID is
// ignored and reported as a nil item.
func (s *Store) UpdateItem(ctx context.Context, id int64, patch ItemPatch) (*model.Item, error) {
	var updated *model.Item
	err := s.items.update(ctx, "update_item", func(items []model.Item) ([]model.Item, bool, error) {
		i := indexItem(items, id)
		if i < 0 {
			return items, false, nil
		}
		patch.apply(&items[i])
		s.defaults.Apply(&items[i])
		it := items[i]
		updated = &it
		return items, true, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteItem removes the item with the given ID and returns it. The file is
// left untouched when no item matches.
func (s *Store) DeleteItem(ctx context.Context, id int64) (*model.Item, error) {
	var removed *model.Item
	err := s.items.update(ctx, "delete_item", func(items []model.Item) ([]model.Item, bool, error) {
		i := indexItem(items, id)
		if i < 0 {
			return items, false, nil
		}
		it := items[i]
		removed = &it
		return append(items[:i], items[i+1:]...), true, nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// AdjustItemQuantity adds delta to the item's quantity. A decrease that would
// take the quantity below zero is rejected with ErrInsufficientStock and
// nothing is written. Returns nil if the item does not exist.
func (s *Store) AdjustItemQuantity(ctx context.Context, id int64, delta int) (*model.Item, error) {
	var updated *model.Item
	err := s.items.update(ctx, "adjust_item", func(items []model.Item) ([]model.Item, bool, error) {
		i := indexItem(items, id)
		if i < 0 {
			return items, false, nil
		}
		if items[i].Quantity+delta < 0 {
			return items, false, ErrInsufficientStock
		}
		items[i].Quantity += delta
		it := items[i]
		updated = &it
		return items, delta != 0, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// IssueItem hands amount units out of stock. It applies in full only when the
// item holds at least amount units; otherwise ErrInsufficientStock is returned
// and the stored quantity is unchanged. Returns nil if the item does not exist.
func (s *Store) IssueItem(ctx context.Context, id int64, amount int) (*model.Item, error) {
	if amount <= 0 {
		return nil, ErrInvalidQuantity
	}

	var updated *model.Item
	err := s.items.update(ctx, "issue_item", func(items []model.Item) ([]model.Item, bool, error) {
		i := indexItem(items, id)
		if i < 0 {
			return items, false, nil
		}
		if items[i].Quantity < amount {
			return items, false, ErrInsufficientStock
		}
		items[i].Quantity -= amount
		it := items[i]
		updated = &it
		return items, true, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Categories returns the distinct item categories in first-seen order.
func Categories(items []model.Item) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		if !seen[it.Category] {
			seen[it.Category] = true
			out = append(out, it.Category)
		}
	}
	return out
}

func indexItem(items []model.Item, id int64) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
