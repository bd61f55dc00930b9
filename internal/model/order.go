package model

import "time"

// Order is a purchase order sent to a supplier.
type Order struct {
	ID        string      `json:"id"`
	Date      time.Time   `json:"date"`
	Supplier  Supplier    `json:"supplier"`
	LineItems []OrderLine `json:"lineItems"`
	Total     float64     `json:"total"`
	Status    string      `json:"status"`
	IssuedBy  string      `json:"issuedBy"`
}

// OrderLine is one resolved item of an order, priced at order time.
type OrderLine struct {
	ItemID           int64   `json:"itemId,omitempty"`
	Name             string  `json:"name"`
	Code             string  `json:"code"`
	Quantity         int     `json:"quantity"`
	UnitPriceAtOrder float64 `json:"unitPriceAtOrder"`
	LineTotal        float64 `json:"lineTotal"`
}

// Order statuses.
const (
	OrderStatusSent      = "SENT"
	OrderStatusReceived  = "RECEIVED"
	OrderStatusCancelled = "CANCELLED"
)

// ValidOrderStatus reports whether status is a known order status.
func ValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusSent, OrderStatusReceived, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderIDPrefix starts every order number.
const OrderIDPrefix = "ZM-"
