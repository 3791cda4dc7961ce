package export

import (
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"

	"budgettracker/internal/money"
)

// ContentTypePDF is the MIME type of WritePDF output.
const ContentTypePDF = "application/pdf"

// CategoryLine is one entry of the statement's expense breakdown.
type CategoryLine struct {
	Category string
	Total    int64
}

// Statement is the content of a monthly PDF statement. Amounts are cents.
type Statement struct {
	Owner       string
	Period      string
	Income      int64
	Expense     int64
	Balance     int64
	Budget      int64
	Remaining   *int64
	ProgressPct *int
	Categories  []CategoryLine
	Rows        []Row
}

// WritePDF renders s as an A4 statement.
func WritePDF(w io.Writer, s Statement) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Budget statement "+s.Period, false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Personal Budget Tracker")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Period: %s", s.Period)))
	pdf.Ln(6)
	if s.Owner != "" {
		pdf.Cell(0, 8, tr(fmt.Sprintf("Account: %s", s.Owner)))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	summaryLine(pdf, "Income", money.Format(s.Income))
	summaryLine(pdf, "Expense", money.Format(s.Expense))
	summaryLine(pdf, "Balance", money.Format(s.Balance))
	if s.Budget > 0 {
		summaryLine(pdf, "Budget", money.Format(s.Budget))
		if s.Remaining != nil {
			summaryLine(pdf, "Remaining", money.Format(*s.Remaining))
		}
		if s.ProgressPct != nil {
			summaryLine(pdf, "Budget used", fmt.Sprintf("%d%%", *s.ProgressPct))
		}
	}
	pdf.Ln(4)

	if len(s.Categories) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, "Expenses by category")
		pdf.Ln(8)

		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(90, 7, "Category", "B", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, "Amount", "B", 0, "R", false, 0, "")
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 11)
		for _, c := range s.Categories {
			pdf.CellFormat(90, 7, tr(c.Category), "", 0, "L", false, 0, "")
			pdf.CellFormat(40, 7, money.Format(c.Total), "", 0, "R", false, 0, "")
			pdf.Ln(7)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Transactions")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 10)
	widths := []float64{25, 20, 40, 25, 80}
	for i, h := range Header {
		align := "L"
		if i == 3 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, h, "B", 0, align, false, 0, "")
	}
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 10)
	if len(s.Rows) == 0 {
		pdf.Cell(0, 7, "No transactions in this period.")
		pdf.Ln(7)
	}
	for _, r := range s.Rows {
		pdf.CellFormat(widths[0], 6, r.Date, "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, r.Kind, "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, tr(truncate(r.Category, 22)), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, money.Format(r.Amount), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, tr(truncate(r.Note, 45)), "", 0, "L", false, 0, "")
		pdf.Ln(6)
	}

	return pdf.Output(w)
}

func summaryLine(pdf *gofpdf.Fpdf, label, value string) {
	pdf.CellFormat(50, 7, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, value, "", 0, "R", false, 0, "")
	pdf.Ln(7)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}
