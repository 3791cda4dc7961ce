package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/pagination"
	"budgettracker/internal/services"
)

// APIHandler serves the read-only JSON endpoints. Amounts are integer cents.
type APIHandler struct {
	reportService      services.ReportServicer
	transactionService services.TransactionServicer
	now                func() time.Time
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(reportService services.ReportServicer, transactionService services.TransactionServicer) *APIHandler {
	return &APIHandler{
		reportService:      reportService,
		transactionService: transactionService,
		now:                time.Now,
	}
}

// Summary returns the report for the filter without the transaction list.
func (h *APIHandler) Summary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.reportService.MonthlyReport(userID, bindFilter(c, h.now()))
	if err != nil {
		respondWithError(c, err)
		return
	}
	report.Transactions = nil
	c.JSON(http.StatusOK, report)
}

// Transactions returns one page of the filtered transactions, newest first.
func (h *APIHandler) Transactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid pagination parameters."))
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, bindFilter(c, h.now()))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Health reports that the process is serving requests.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
