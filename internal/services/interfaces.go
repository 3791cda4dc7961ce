package services

import (
	"budgettracker/internal/models"
	"budgettracker/internal/pagination"
)

// UserServicer defines the contract for account registration and login.
type UserServicer interface {
	CreateUser(email, password string) (*models.User, error)
	Authenticate(email, password string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	DeleteUser(id uint) error
}

// SessionServicer issues and validates signed session tokens backed by
// revocable rows.
type SessionServicer interface {
	Create(userID uint) (token string, session *models.Session, err error)
	Validate(token string) (*models.Session, error)
	Revoke(token string) error
}

// TransactionInput carries raw form values. Fields are strings so that
// "omitted" and "invalid" can be told apart by the service.
type TransactionInput struct {
	Date     string `form:"tx_date" json:"tx_date" binding:"iso_date"`
	Kind     string `form:"kind" json:"kind" binding:"tx_kind"`
	Category string `form:"category" json:"category"`
	Amount   string `form:"amount" json:"amount"`
	Note     string `form:"note" json:"note"`
}

// SortOrder selects how transaction lists are ordered.
type SortOrder int

const (
	// Newest orders by tx_date DESC, id DESC (the listing view).
	Newest SortOrder = iota
	// Oldest orders by tx_date ASC, id ASC (exports).
	Oldest
)

// TransactionServicer defines the contract for transaction CRUD.
type TransactionServicer interface {
	CreateTransaction(userID uint, in TransactionInput) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID uint, in TransactionInput) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) (*models.Transaction, error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	ListTransactions(userID uint, f Filter, order SortOrder) ([]models.Transaction, error)
	GetUserTransactions(userID uint, page pagination.PageRequest, f Filter) (*pagination.PageResponse[models.Transaction], error)
}

// BudgetServicer defines the contract for monthly budgets.
type BudgetServicer interface {
	SetBudget(userID uint, year, month int, amount string) (*models.Budget, error)
	GetBudget(userID uint, year, month int) (int64, error)
}

// CategoryTotal is one row of the expense breakdown, in cents.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
}

// Report is the monthly summary shown on the dashboard. Amounts are cents.
// Remaining and ProgressPct are nil when no budget is set for the month.
type Report struct {
	Filter          Filter               `json:"filter"`
	Income          int64                `json:"income"`
	Expense         int64                `json:"expense"`
	Balance         int64                `json:"balance"`
	Budget          int64                `json:"budget"`
	Remaining       *int64               `json:"remaining"`
	ProgressPct     *int                 `json:"progress_pct"`
	Categories      []CategoryTotal      `json:"categories"`
	CategoryOptions []string             `json:"category_options"`
	Transactions    []models.Transaction `json:"transactions,omitempty"`
}

// ReportServicer computes the aggregates for a resolved filter.
type ReportServicer interface {
	MonthlyReport(userID uint, f Filter) (*Report, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}
