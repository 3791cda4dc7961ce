package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"budgettracker/internal/models"
	"budgettracker/internal/money"
	"budgettracker/internal/services"
)

// TransactionHandler handles the add, edit and delete forms.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		auditService:       auditService,
	}
}

// editView is the data handed to edit.html.
type editView struct {
	Title       string
	Flashes     []Flash
	Transaction *models.Transaction
	Amount      string
	Kinds       []models.TransactionKind
	LoggedIn    bool
}

// Add creates a transaction and redirects to the month it belongs to.
func (h *TransactionHandler) Add(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		failPage(c, err, "/")
		return
	}

	in, err := bindTransactionInput(c)
	if err != nil {
		failPage(c, err, "/")
		return
	}

	tx, err := h.transactionService.CreateTransaction(userID, in)
	if err != nil {
		failPage(c, err, "/")
		return
	}
	h.auditService.Log(userID, services.AuditCreateTransaction, "transaction", tx.ID, c.ClientIP(), map[string]interface{}{
		"tx_date":  tx.TxDate,
		"kind":     tx.Kind,
		"category": tx.Category,
		"amount":   tx.Amount,
	})

	addFlash(c, flashSuccess, "Transaction added!")
	redirectToTransactionMonth(c, tx)
}

// ShowEdit renders the edit form for one of the user's transactions.
func (h *TransactionHandler) ShowEdit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		failPage(c, err, "/")
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		failPage(c, err, "/")
		return
	}

	tx, err := h.transactionService.GetTransactionByID(userID, id)
	if err != nil {
		failPage(c, err, "/")
		return
	}

	c.HTML(http.StatusOK, "edit.html", editView{
		Title:       "Edit transaction",
		Flashes:     consumeFlashes(c),
		Transaction: tx,
		Amount:      money.Format(tx.Amount),
		Kinds:       []models.TransactionKind{models.KindExpense, models.KindIncome},
		LoggedIn:    true,
	})
}

// Edit applies the submitted fields. Empty fields keep their stored values.
func (h *TransactionHandler) Edit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		failPage(c, err, "/")
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		failPage(c, err, "/")
		return
	}
	back := fmt.Sprintf("/edit/%d", id)

	in, err := bindTransactionInput(c)
	if err != nil {
		failPage(c, err, back)
		return
	}

	tx, err := h.transactionService.UpdateTransaction(userID, id, in)
	if err != nil {
		failPage(c, err, back)
		return
	}
	h.auditService.Log(userID, services.AuditUpdateTransaction, "transaction", tx.ID, c.ClientIP(), map[string]interface{}{
		"tx_date":  tx.TxDate,
		"kind":     tx.Kind,
		"category": tx.Category,
		"amount":   tx.Amount,
	})

	addFlash(c, flashSuccess, "Transaction updated.")
	redirectToTransactionMonth(c, tx)
}

// Delete removes one of the user's transactions.
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		failPage(c, err, "/")
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		failPage(c, err, "/")
		return
	}

	tx, err := h.transactionService.DeleteTransaction(userID, id)
	if err != nil {
		failPage(c, err, "/")
		return
	}
	h.auditService.Log(userID, services.AuditDeleteTransaction, "transaction", tx.ID, c.ClientIP(), nil)

	addFlash(c, flashInfo, "Transaction removed.")
	redirectToTransactionMonth(c, tx)
}

// redirectToTransactionMonth sends the browser to the dashboard month that
// contains tx, or to the current month when its date is unreadable.
func redirectToTransactionMonth(c *gin.Context, tx *models.Transaction) {
	year, month, ok := tx.YearMonth()
	if !ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.Redirect(http.StatusFound, monthURL(year, month))
}
