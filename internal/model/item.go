package model

import "strings"

// Item is a single arsenal entry tracked by quantity.
type Item struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Warehouse   string  `json:"warehouse"`
	Code        string  `json:"code"`
	MinQuantity int     `json:"minQuantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	ImagePath   string  `json:"imagePath,omitempty"`
}

// LowStock reports whether the item is below its configured minimum.
// Items without a minimum never raise an alert.
func (i Item) LowStock() bool {
	return i.MinQuantity > 0 && i.Quantity < i.MinQuantity
}

// ItemDefaults holds the values substituted for missing or malformed item fields.
type ItemDefaults struct {
	Category    string  `mapstructure:"default_category"`
	Warehouse   string  `mapstructure:"default_warehouse"`
	Code        string  `mapstructure:"default_code"`
	MinQuantity int     `mapstructure:"default_min_quantity"`
	UnitPrice   float64 `mapstructure:"default_unit_price"`
}

// DefaultItemDefaults returns the built-in item defaults.
func DefaultItemDefaults() ItemDefaults {
	return ItemDefaults{
		Category:    "Other",
		Warehouse:   "Main",
		Code:        "NONE",
		MinQuantity: 0,
		UnitPrice:   0,
	}
}

// Apply fills blank fields and clamps negative numbers.
func (d ItemDefaults) Apply(item *Item) {
	item.Name = strings.TrimSpace(item.Name)
	if strings.TrimSpace(item.Category) == "" {
		item.Category = d.Category
	}
	if strings.TrimSpace(item.Warehouse) == "" {
		item.Warehouse = d.Warehouse
	}
	if strings.TrimSpace(item.Code) == "" {
		item.Code = d.Code
	}
	if item.MinQuantity < 0 {
		item.MinQuantity = d.MinQuantity
	}
	if item.UnitPrice < 0 {
		item.UnitPrice = d.UnitPrice
	}
	if item.Quantity < 0 {
		item.Quantity = 0
	}
}
