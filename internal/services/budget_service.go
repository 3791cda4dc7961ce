package services

import (
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/logger"
	"budgettracker/internal/models"
	"budgettracker/internal/money"
)

// budgetService handles monthly budget storage.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// SetBudget stores the budget for (user, year, month), replacing any
// existing amount. An empty amount stores 0.
func (s *budgetService) SetBudget(userID uint, year, month int, amount string) (*models.Budget, error) {
	if month < 1 || month > 12 || year < 1 || year > 9999 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid budget month.")
	}

	var cents int64
	if strings.TrimSpace(amount) != "" {
		var err error
		cents, err = money.ParseCents(amount)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidBudget, err)
		}
	}

	budget := &models.Budget{
		UserID:    userID,
		Year:      year,
		Month:     month,
		Amount:    cents,
		UpdatedAt: time.Now().UTC(),
	}

	// The composite primary key makes this a single atomic upsert.
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "year"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(budget).Error
	if err != nil {
		logger.Get().Errorw("failed to save budget", "error", err, "user_id", userID, "year", year, "month", month)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

// GetBudget returns the budget in cents for the month, or 0 when none is set.
func (s *budgetService) GetBudget(userID uint, year, month int) (int64, error) {
	var budget models.Budget
	result := s.db.Where("user_id = ? AND year = ? AND month = ?", userID, year, month).
		Limit(1).Find(&budget)
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, nil
	}
	return budget.Amount, nil
}
