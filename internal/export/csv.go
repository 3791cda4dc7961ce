package export

import (
	"encoding/csv"
	"io"

	"budgettracker/internal/money"
)

// ContentTypeCSV is the MIME type of WriteCSV output.
const ContentTypeCSV = "text/csv; charset=utf-8"

// WriteCSV writes the header and one record per row, amounts with two
// decimals.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{r.Date, r.Kind, r.Category, money.Format(r.Amount), r.Note}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
