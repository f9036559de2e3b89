package invoice

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"apivro/internal/config"
	"apivro/internal/domain/model"
	"apivro/internal/domain/ports/adapter"
)

var _ adapter.InvoiceRenderer = (*PDFRenderer)(nil)

// PDFRenderer lays out a single-page A4 invoice.
type PDFRenderer struct {
	company config.InvoiceConfig
}

func NewPDFRenderer(cfg config.InvoiceConfig) *PDFRenderer {
	return &PDFRenderer{company: cfg}
}

func (r *PDFRenderer) Render(inv adapter.InvoiceData) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+inv.Number, true)
	pdf.SetAuthor(r.company.CompanyName, true)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 12, "INVOICE", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, tr(r.company.CompanyName+" - WhatsApp API Service"), "", 1, "C", false, 0, "")
	if r.company.CompanyAddress != "" {
		pdf.CellFormat(0, 5, tr(r.company.CompanyAddress), "", 1, "C", false, 0, "")
	}
	if r.company.CompanyEmail != "" {
		pdf.CellFormat(0, 5, r.company.CompanyEmail, "", 1, "C", false, 0, "")
	}
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	row := func(label, value string) {
		pdf.CellFormat(45, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, tr(value), "", 1, "L", false, 0, "")
	}
	row("Invoice Number:", inv.Number)
	row("Payment Date:", inv.IssuedAt.Format("02 January 2006 15:04"))
	row("Reference:", inv.Reference)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Bill To:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, tr(inv.CustomerName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, inv.CustomerEmail, "", 1, "L", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(243, 244, 246)
	pdf.CellFormat(120, 8, "Description", "B", 0, "L", true, 0, "")
	pdf.CellFormat(0, 8, "Amount", "B", 1, "R", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(120, 8, tr(fmt.Sprintf("%s - 1 Month Subscription", inv.PlanName)), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, model.FormatRupiah(inv.Amount), "", 1, "R", false, 0, "")
	pdf.CellFormat(120, 8, tr(fmt.Sprintf("Payment Fee (%s)", inv.PaymentMethod)), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, model.FormatRupiah(inv.Fee), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(120, 10, "Total Amount", "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 10, model.FormatRupiah(inv.Total), "T", 1, "R", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(16, 185, 129)
	pdf.CellFormat(0, 10, "PAID", "", 1, "C", false, 0, "")
	pdf.SetTextColor(107, 114, 128)
	pdf.SetFont("Helvetica", "", 8)
	pdf.Ln(10)
	pdf.MultiCell(0, 4, "This is a computer-generated invoice and does not require a signature.", "", "C", false)
	if r.company.CompanyEmail != "" {
		pdf.MultiCell(0, 4, "For any questions, please contact "+r.company.CompanyEmail, "", "C", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", inv.Number, err)
	}
	return buf.Bytes(), nil
}
