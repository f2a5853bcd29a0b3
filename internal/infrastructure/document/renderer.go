package document

import (
	"bytes"
	"fmt"
	"time"

	"github.com/garage/backend/internal/domain/finance"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
)

const receivablesSheet = "receivables"

// Renderer implements the document renderers used by the finance services
type Renderer struct {
	shopName string
	fmt      formatter
}

// NewRenderer creates a Renderer printing dates in loc
func NewRenderer(shopName string, loc *time.Location) *Renderer {
	return &Renderer{
		shopName: shopName,
		fmt:      newFormatter(language.BrazilianPortuguese, loc),
	}
}

// ClosingReceiptPDF renders the receipt of a financially closed work order
func (r *Renderer) ClosingReceiptPDF(s *finance.ClosingSnapshot) ([]byte, error) {
	if s == nil || s.Closing == nil {
		return nil, fmt.Errorf("closing snapshot is incomplete")
	}
	f := r.fmt

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Work order "+s.WorkOrder.Number), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, tr(r.shopName))
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Work order: %s", s.WorkOrder.Number)))
	pdf.Ln(5)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Vehicle: %s", s.WorkOrder.VehiclePlate)))
	pdf.Ln(5)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Status: %s", f.label(string(s.WorkOrder.Status)))))
	pdf.Ln(5)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Closed at: %s", f.dateTime(s.Closing.ClosedAt))))
	pdf.Ln(5)
	if s.Closing.ClosedBy != "" {
		pdf.Cell(0, 6, tr(fmt.Sprintf("Closed by: %s", s.Closing.ClosedBy)))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	table := func(title string, widths []float64, header []string, rows [][]string) {
		if len(rows) == 0 {
			return
		}
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 7, tr(title))
		pdf.Ln(7)
		pdf.SetFont("Arial", "B", 9)
		for i, h := range header {
			pdf.CellFormat(widths[i], 6, tr(h), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		for _, row := range rows {
			for i, cell := range row {
				align := "R"
				if i == 0 {
					align = "L"
				}
				pdf.CellFormat(widths[i], 6, tr(cell), "1", 0, align, false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	items := make([][]string, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, []string{it.Description, it.Quantity.String(), f.money(it.UnitPrice), f.money(it.Subtotal())})
	}
	table("Parts", []float64{90, 25, 35, 40}, []string{"Description", "Qty", "Unit price", "Subtotal"}, items)

	labors := make([][]string, 0, len(s.Labors))
	for _, l := range s.Labors {
		labors = append(labors, []string{l.Description, l.Hours.String(), f.money(l.HourlyRate), f.money(l.Subtotal())})
	}
	table("Labor", []float64{90, 25, 35, 40}, []string{"Description", "Hours", "Rate", "Subtotal"}, labors)

	payments := make([][]string, 0, len(s.Payments))
	for _, p := range s.Payments {
		payments = append(payments, []string{f.label(p.Method.String()), fmt.Sprintf("%dx", p.Installments), f.money(p.GrossValue)})
	}
	table("Payments", []float64{90, 40, 60}, []string{"Method", "Installments", "Value"}, payments)

	receivables := make([][]string, 0, len(s.Receivables))
	for _, rc := range s.Receivables {
		receivables = append(receivables, []string{
			fmt.Sprintf("%d/%d", rc.Installment, rc.TotalInstallments),
			f.date(rc.ExpectedDate),
			f.money(rc.GrossAmount),
			f.money(rc.FeeAmount),
			f.money(rc.NetAmount),
			f.label(rc.Status.String()),
		})
	}
	table("Card settlements", []float64{25, 30, 35, 30, 35, 35},
		[]string{"Installment", "Due", "Gross", "Fee", "Net", "Status"}, receivables)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, tr("Totals"))
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
	for _, line := range [][2]string{
		{"Parts", f.money(s.WorkOrder.PartsTotal)},
		{"Labor", f.money(s.WorkOrder.LaborTotal)},
		{"Work order total", f.money(s.WorkOrder.Total)},
		{"Paid", f.money(s.PaidTotal())},
		{"Card fees", f.money(s.FeeTotal())},
		{"Revenue", f.money(s.Closing.TotalRevenue)},
		{"Parts cost", f.money(s.Closing.RealPartsCost)},
		{"Gross margin", f.money(s.Closing.GrossMargin())},
	} {
		pdf.CellFormat(60, 6, tr(line[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, tr(line[1]), "", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// ReceivablesXLSX renders receivables as a spreadsheet with a totals row
func (r *Renderer) ReceivablesXLSX(rows []finance.Receivable) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", receivablesSheet); err != nil {
		return nil, err
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	header := []any{"Work order", "Payment", "Installment", "Due date", "Gross", "Fee", "Net", "Status", "Confirmed by", "Confirmed at"}
	if err := f.SetSheetRow(receivablesSheet, "A1", &header); err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(receivablesSheet, "A1", "J1", boldStyle)

	for i, rc := range rows {
		row := i + 2
		confirmedAt := ""
		if rc.ConfirmedAt != nil {
			confirmedAt = r.fmt.dateTime(*rc.ConfirmedAt)
		}
		values := []any{
			rc.WorkOrderID.String(),
			rc.PaymentID.String(),
			fmt.Sprintf("%d/%d", rc.Installment, rc.TotalInstallments),
			r.fmt.date(rc.ExpectedDate),
			rc.GrossAmount.InexactFloat64(),
			rc.FeeAmount.InexactFloat64(),
			rc.NetAmount.InexactFloat64(),
			r.fmt.label(rc.Status.String()),
			rc.ConfirmedBy,
			confirmedAt,
		}
		if err := f.SetSheetRow(receivablesSheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return nil, err
		}
	}

	totalRow := len(rows) + 2
	_ = f.SetCellValue(receivablesSheet, fmt.Sprintf("A%d", totalRow), "Total")
	for _, col := range []string{"E", "F", "G"} {
		ref := fmt.Sprintf("%s%d", col, totalRow)
		if len(rows) == 0 {
			_ = f.SetCellValue(receivablesSheet, ref, 0)
			continue
		}
		if err := f.SetCellFormula(receivablesSheet, ref, fmt.Sprintf("SUM(%s2:%s%d)", col, col, totalRow-1)); err != nil {
			return nil, err
		}
	}
	_ = f.SetCellStyle(receivablesSheet, "E2", fmt.Sprintf("G%d", totalRow), moneyStyle)
	_ = f.SetCellStyle(receivablesSheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("A%d", totalRow), boldStyle)
	_ = f.SetColWidth(receivablesSheet, "A", "B", 38)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
