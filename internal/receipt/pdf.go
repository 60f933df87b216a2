// Package receipt renders an order summary as a printable PDF.
package receipt

import (
	"fmt"
	"io"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/pricing"
	"github.com/phpdave11/gofpdf"
)

// WritePDF writes a one-page A4 order summary to w.
func WritePDF(w io.Writer, order domain.OrderRecord) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Order "+order.OrderID, false)
	pdf.SetAuthor("WoofCrafts", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, "WoofCrafts")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, "Order Confirmation")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Order #%s", order.OrderID)))
	pdf.Ln(6)
	pdf.Cell(0, 7, order.PlacedAt.Format("Jan 2, 2006 15:04"))
	pdf.Ln(6)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Customer: %s <%s>", order.CustomerName, order.CustomerEmail)))
	pdf.Ln(6)
	if order.CustomerPhone != "" {
		pdf.Cell(0, 7, tr("Phone: "+order.CustomerPhone))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(212, 165, 116)
	pdf.CellFormat(95, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, "Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Subtotal", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, item := range order.Items {
		pdf.CellFormat(95, 8, tr(item.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprint(item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, pricing.Money(item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, pricing.Money(item.Subtotal), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	summary := [][2]string{{"Subtotal", pricing.Money(order.Subtotal)}}
	if order.DiscountAmount.IsPositive() {
		summary = append(summary, [2]string{fmt.Sprintf("Discount (%d%%)", order.DiscountPercent), "-" + pricing.Money(order.DiscountAmount)})
	}
	summary = append(summary, [2]string{"Total", pricing.Money(order.Total)})

	for i, row := range summary {
		if i == len(summary)-1 {
			pdf.SetFont("Arial", "B", 12)
		}
		pdf.CellFormat(150, 8, row[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, row[1], "", 1, "R", false, 0, "")
	}

	if order.CustomerComment != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "I", 11)
		pdf.MultiCell(0, 6, tr("Note: "+order.CustomerComment), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render receipt pdf: %w", err)
	}
	return nil
}
