package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/logger"
	"budgettracker/internal/models"
)

// reportService computes the dashboard aggregates.
type reportService struct {
	db      *gorm.DB
	budgets BudgetServicer
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB) ReportServicer {
	return &reportService{db: db, budgets: NewBudgetService(db)}
}

// MonthlyReport computes totals, budget progress, the expense breakdown,
// the category options and the transaction listing for f.
func (s *reportService) MonthlyReport(userID uint, f Filter) (*Report, error) {
	r := &Report{Filter: f}

	income, expense, err := s.totals(userID, f)
	if err != nil {
		return nil, err
	}
	r.Income, r.Expense = income, expense
	r.Balance = income - expense

	budget, err := s.budgets.GetBudget(userID, f.Year, f.Month)
	if err != nil {
		return nil, err
	}
	r.Budget = budget
	r.Remaining, r.ProgressPct = budgetProgress(budget, expense)

	if r.Categories, err = s.categoryTotals(userID, f); err != nil {
		return nil, err
	}
	if r.CategoryOptions, err = s.categoryOptions(userID, f); err != nil {
		return nil, err
	}
	if r.Transactions, err = listTransactions(s.db, userID, f, Newest); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *reportService) totals(userID uint, f Filter) (income, expense int64, err error) {
	var sums struct {
		Income  int64
		Expense int64
	}
	err = s.db.Model(&models.Transaction{}).
		Scopes(f.Scope(userID)).
		Select("COALESCE(SUM(CASE WHEN kind = ? THEN amount END), 0) AS income, "+
			"COALESCE(SUM(CASE WHEN kind = ? THEN amount END), 0) AS expense",
			models.KindIncome, models.KindExpense).
		Scan(&sums).Error
	if err != nil {
		logger.Get().Errorw("failed to sum transactions", "error", err, "user_id", userID)
		return 0, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return sums.Income, sums.Expense, nil
}

// categoryTotals returns expense sums per category, largest first. Ties are
// broken by name so the order is stable.
func (s *reportService) categoryTotals(userID uint, f Filter) ([]CategoryTotal, error) {
	totals := []CategoryTotal{}
	err := s.db.Model(&models.Transaction{}).
		Scopes(f.Scope(userID)).
		Where("kind = ?", models.KindExpense).
		Select("category, SUM(amount) AS total").
		Group("category").
		Having("SUM(amount) > 0").
		Order("total DESC, category ASC").
		Scan(&totals).Error
	if err != nil {
		logger.Get().Errorw("failed to compute category totals", "error", err, "user_id", userID)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return totals, nil
}

// categoryOptions lists every category used in the date range, ignoring the
// category filter itself so the dropdown keeps its other choices.
func (s *reportService) categoryOptions(userID uint, f Filter) ([]string, error) {
	options := []string{}
	err := s.db.Model(&models.Transaction{}).
		Scopes(f.RangeScope(userID)).
		Group("category").
		Order("LOWER(category) ASC, category ASC").
		Pluck("category", &options).Error
	if err != nil {
		logger.Get().Errorw("failed to list categories", "error", err, "user_id", userID)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return options, nil
}

// budgetProgress returns nil values when no budget is set. The percentage is
// rounded half up and capped at 100.
func budgetProgress(budget, expense int64) (*int64, *int) {
	if budget <= 0 {
		return nil, nil
	}
	remaining := budget - expense
	pct := int(decimal.NewFromInt(expense).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(budget), 0).
		IntPart())
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return &remaining, &pct
}
