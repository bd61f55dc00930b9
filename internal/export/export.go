// Package export writes inventory and purchase orders as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/erazemk/arsenal/internal/model"
)

// ContentType is the MIME type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InventoryFileName names an inventory export taken at t.
func InventoryFileName(t time.Time) string {
	return fmt.Sprintf("arsenal_%s.xlsx", t.Format("20060102_150405"))
}

// OrderFileName names an order export.
func OrderFileName(o *model.Order) string {
	return fmt.Sprintf("zamowienie_%s.xlsx", o.ID)
}

// Inventory writes one row per item.
func Inventory(w io.Writer, items []model.Item) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "Stan"
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := []interface{}{
		"ID", "Nazwa", "Kategoria", "Magazyn", "Kod", "Ilość", "Stan minimalny", "Cena jedn.", "Wartość", "Opis",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, it := range items {
		row := []interface{}{
			it.ID,
			it.Name,
			it.Category,
			it.Warehouse,
			it.Code,
			it.Quantity,
			it.MinQuantity,
			it.UnitPrice,
			it.UnitPrice * float64(it.Quantity),
			it.Description,
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	return write(f, w)
}

// Order writes an order header followed by its line items and total.
func Order(w io.Writer, o *model.Order) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "Zamówienie"
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	head := [][]interface{}{
		{"Zamówienie", o.ID},
		{"Data", o.Date.Format("2006-01-02 15:04")},
		{"Dostawca", o.Supplier.Name},
		{"NIP", o.Supplier.TaxID},
		{"Status", o.Status},
		{"Wystawił", o.IssuedBy},
		{},
		{"Nazwa", "Kod", "Ilość", "Cena jedn.", "Wartość"},
	}
	row := 1
	for _, r := range head {
		if err := setRow(f, sheet, row, r); err != nil {
			return err
		}
		row++
	}

	for _, l := range o.LineItems {
		if err := setRow(f, sheet, row, []interface{}{l.Name, l.Code, l.Quantity, l.UnitPriceAtOrder, l.LineTotal}); err != nil {
			return err
		}
		row++
	}

	if err := setRow(f, sheet, row, []interface{}{"Razem", "", "", "", o.Total}); err != nil {
		return err
	}

	return write(f, w)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing row %d: %w", row, err)
	}
	return nil
}

func write(f *excelize.File, w io.Writer) error {
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
