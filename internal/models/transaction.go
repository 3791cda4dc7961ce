package models

import "time"

// TransactionKind discriminates income from expense.
type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

// Valid reports whether k is one of the supported kinds.
func (k TransactionKind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// DefaultCategory is stored when a transaction is saved without a category.
const DefaultCategory = "General"

// DateLayout is the ISO calendar-day format used for tx_date.
const DateLayout = "2006-01-02"

// Transaction is a single income or expense entry. TxDate is stored as an
// ISO date string so that range filters compare lexicographically.
type Transaction struct {
	Base
	UserID   uint            `gorm:"not null;index:idx_transactions_user_date,priority:1" json:"user_id"`
	TxDate   string          `gorm:"column:tx_date;not null;index:idx_transactions_user_date,priority:2" json:"tx_date"`
	Kind     TransactionKind `gorm:"not null;check:chk_transactions_kind,kind IN ('income','expense')" json:"kind"`
	Category string          `gorm:"not null" json:"category"`
	Amount   int64           `gorm:"type:bigint;not null;check:chk_transactions_amount,amount >= 0" json:"amount"`
	Note     string          `json:"note"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Date parses TxDate. Rows are validated on write, so a parse failure means
// the row was inserted by something other than this application.
func (t *Transaction) Date() (time.Time, error) {
	return time.Parse(DateLayout, t.TxDate)
}

// YearMonth returns the calendar month the transaction falls in, or ok=false
// when TxDate is malformed.
func (t *Transaction) YearMonth() (year, month int, ok bool) {
	d, err := t.Date()
	if err != nil {
		return 0, 0, false
	}
	return d.Year(), int(d.Month()), true
}
