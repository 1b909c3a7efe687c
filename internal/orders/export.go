package orders

import (
	"fmt"
	"io"
	"strings"

	"github.com/cloudclutches/storefront/internal/money"
	"github.com/tealeg/xlsx"
)

var exportHeaders = []string{
	"ID", "Created", "Customer", "Mobile", "Address", "Total",
	"UPI Transaction", "Screenshot", "Status", "Items",
}

// WriteXLSX renders orders as a single-sheet workbook for manual UPI reconciliation.
func WriteXLSX(w io.Writer, list []OrderResponse) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetString(h)
	}

	for _, o := range list {
		row := sheet.AddRow()
		row.AddCell().SetInt64(o.ID)
		row.AddCell().SetString(o.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(o.CustomerName)
		row.AddCell().SetString(o.MobileNumber)
		row.AddCell().SetString(o.Address)
		setAmount(row.AddCell(), o.TotalAmount)
		row.AddCell().SetString(o.UPITransactionID)
		screenshot := ""
		if o.ScreenshotURL != nil {
			screenshot = *o.ScreenshotURL
		}
		row.AddCell().SetString(screenshot)
		row.AddCell().SetString(string(o.Status))
		row.AddCell().SetString(itemSummary(o.Items))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func setAmount(c *xlsx.Cell, a money.Amount) {
	c.SetFloatWithFormat(a.Decimal().InexactFloat64(), "0.00")
}

func itemSummary(items []ItemWithProduct) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		name := fmt.Sprintf("#%d (deleted)", it.ProductID)
		if it.Product != nil {
			name = it.Product.Name
		}
		parts = append(parts, fmt.Sprintf("%s x%d @ %s", name, it.Quantity, it.Price))
	}
	return strings.Join(parts, "; ")
}
