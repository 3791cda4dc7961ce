// Package export serializes a filtered transaction listing to downloadable
// files. Every format receives the same rows in the same order.
package export

import (
	"fmt"

	"budgettracker/internal/models"
)

// Header is the column order shared by the CSV and XLSX exports.
var Header = []string{"tx_date", "kind", "category", "amount", "note"}

// Row is one exported transaction. Amount is in cents.
type Row struct {
	Date     string
	Kind     string
	Category string
	Amount   int64
	Note     string
}

// RowsFromTransactions converts transactions in their listed order.
func RowsFromTransactions(txs []models.Transaction) []Row {
	rows := make([]Row, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, Row{
			Date:     t.TxDate,
			Kind:     string(t.Kind),
			Category: t.Category,
			Amount:   t.Amount,
			Note:     t.Note,
		})
	}
	return rows
}

// Filename returns the download name for a month label such as "2024-03".
func Filename(label, ext string) string {
	return fmt.Sprintf("transactions_%s.%s", label, ext)
}
