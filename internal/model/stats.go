package model

// Stats is a read-only projection over the item store.
type Stats struct {
	TotalValue       float64
	TotalUnits       int
	ItemCount        int
	UnitsByCategory  map[string]int
	UnitsByWarehouse map[string]int
	Alerts           int
	LowStock         []Item
}
