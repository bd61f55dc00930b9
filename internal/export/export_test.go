package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/erazemk/arsenal/internal/model"
)

func TestInventory(t *testing.T) {
	items := []model.Item{
		{ID: 1, Name: "Hełm", Category: "Ochrona", Warehouse: "Main", Code: "H-1", Quantity: 5, MinQuantity: 10, UnitPrice: 100},
		{ID: 2, Name: "Latarka", Category: "Other", Warehouse: "Main", Code: "NONE", Quantity: 3, UnitPrice: 2.5},
	}

	var buf bytes.Buffer
	if err := Inventory(&buf, items); err != nil {
		t.Fatalf("Inventory: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Stan")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][1] != "Hełm" {
		t.Errorf("expected first item name, got %q", rows[1][1])
	}
	if rows[1][8] != "500" {
		t.Errorf("expected value 500, got %q", rows[1][8])
	}
}

func TestOrder(t *testing.T) {
	o := &model.Order{
		ID:       "ZM-261018-1234",
		Date:     time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC),
		Supplier: model.Supplier{Name: "Dostawca"},
		LineItems: []model.OrderLine{
			{Name: "A", Quantity: 3, UnitPriceAtOrder: 10, LineTotal: 30},
			{Name: "B", Quantity: 2, UnitPriceAtOrder: 5, LineTotal: 10},
		},
		Total:  40,
		Status: model.OrderStatusSent,
	}

	var buf bytes.Buffer
	if err := Order(&buf, o); err != nil {
		t.Fatalf("Order: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	total, err := f.GetCellValue("Zamówienie", "E11")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if total != "40" {
		t.Errorf("expected total 40 in E11, got %q", total)
	}
	id, _ := f.GetCellValue("Zamówienie", "B1")
	if id != o.ID {
		t.Errorf("expected order id %q, got %q", o.ID, id)
	}
	if OrderFileName(o) != "zamowienie_ZM-261018-1234.xlsx" {
		t.Errorf("unexpected file name %q", OrderFileName(o))
	}
}
