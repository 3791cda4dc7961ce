package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"budgettracker/internal/money"
)

// ContentTypeXLSX is the MIME type of WriteXLSX output.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteXLSX writes a workbook with a single sheet named sheet. Amounts are
// numeric cells so that spreadsheet formulas work on them.
func WriteXLSX(w io.Writer, sheet string, rows []Row) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	// NewFile starts with "Sheet1"; rename it rather than adding a second one.
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range rows {
		row := i + 2
		cells := []interface{}{r.Date, r.Kind, r.Category, money.Float(r.Amount), r.Note}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &cells); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 12)
	_ = f.SetColWidth(sheet, "B", "B", 10)
	_ = f.SetColWidth(sheet, "C", "C", 18)
	_ = f.SetColWidth(sheet, "D", "D", 12)
	_ = f.SetColWidth(sheet, "E", "E", 30)

	return f.Write(w)
}
