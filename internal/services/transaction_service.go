package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/logger"
	"budgettracker/internal/models"
	"budgettracker/internal/money"
	"budgettracker/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db, now: time.Now}
}

// CreateTransaction validates the form values and stores a new transaction.
// Nothing is written when validation fails.
func (s *transactionService) CreateTransaction(userID uint, in TransactionInput) (*models.Transaction, error) {
	if strings.TrimSpace(in.Date) == "" {
		in.Date = s.now().Format(models.DateLayout)
	}

	transaction := &models.Transaction{UserID: userID}
	if err := applyInput(transaction, in); err != nil {
		return nil, err
	}

	if err := s.db.Create(transaction).Error; err != nil {
		logger.Get().Errorw("failed to create transaction", "error", err, "user_id", userID)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// UpdateTransaction edits a transaction owned by userID. Empty fields keep
// their stored value.
func (s *transactionService) UpdateTransaction(userID, transactionID uint, in TransactionInput) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Date) == "" {
		in.Date = transaction.TxDate
	}
	if strings.TrimSpace(in.Kind) == "" {
		in.Kind = string(transaction.Kind)
	}
	if strings.TrimSpace(in.Category) == "" {
		in.Category = transaction.Category
	}
	if strings.TrimSpace(in.Amount) == "" {
		in.Amount = money.Format(transaction.Amount)
	}
	if strings.TrimSpace(in.Note) == "" {
		in.Note = transaction.Note
	}

	if err := applyInput(transaction, in); err != nil {
		return nil, err
	}

	result := s.db.Model(&models.Transaction{}).
		Where("id = ? AND user_id = ?", transactionID, userID).
		Updates(map[string]interface{}{
			"tx_date":    transaction.TxDate,
			"kind":       transaction.Kind,
			"category":   transaction.Category,
			"amount":     transaction.Amount,
			"note":       transaction.Note,
			"updated_at": s.now().UTC(),
		})
	if result.Error != nil {
		logger.Get().Errorw("failed to update transaction", "error", result.Error, "user_id", userID, "transaction_id", transactionID)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		// Deleted between the read and the write.
		return nil, apperrors.ErrTransactionNotFound
	}
	return transaction, nil
}

// DeleteTransaction removes a transaction owned by userID and returns the
// removed row.
func (s *transactionService) DeleteTransaction(userID, transactionID uint) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	result := s.db.Where("id = ? AND user_id = ?", transactionID, userID).Delete(&models.Transaction{})
	if result.Error != nil {
		logger.Get().Errorw("failed to delete transaction", "error", result.Error, "user_id", userID, "transaction_id", transactionID)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrTransactionNotFound
	}
	return transaction, nil
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// ListTransactions returns every transaction matching f.
func (s *transactionService) ListTransactions(userID uint, f Filter, order SortOrder) ([]models.Transaction, error) {
	return listTransactions(s.db, userID, f, order)
}

// GetUserTransactions returns one page of the listing for f, newest first.
func (s *transactionService) GetUserTransactions(userID uint, page pagination.PageRequest, f Filter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Transaction{}).Scopes(f.Scope(userID)).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := s.db.Scopes(f.Scope(userID), orderScope(Newest), pagination.Paginate(page)).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func listTransactions(db *gorm.DB, userID uint, f Filter, order SortOrder) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	if err := db.Scopes(f.Scope(userID), orderScope(order)).Find(&transactions).Error; err != nil {
		logger.Get().Errorw("failed to list transactions", "error", err, "user_id", userID)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

func orderScope(order SortOrder) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if order == Oldest {
			return db.Order("tx_date ASC, id ASC")
		}
		return db.Order("tx_date DESC, id DESC")
	}
}

// applyInput validates in and copies it onto t. Amount is checked before
// kind, and t is left untouched on error.
func applyInput(t *models.Transaction, in TransactionInput) error {
	cents, err := money.ParseCents(in.Amount)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidAmount, err)
	}

	kind := models.TransactionKind(strings.TrimSpace(in.Kind))
	if !kind.Valid() {
		return apperrors.ErrInvalidKind
	}

	date := strings.TrimSpace(in.Date)
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidDate, err)
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = models.DefaultCategory
	}

	t.TxDate = date
	t.Kind = kind
	t.Category = category
	t.Amount = cents
	t.Note = strings.TrimSpace(in.Note)
	return nil
}
