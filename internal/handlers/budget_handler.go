package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/services"
)

// BudgetHandler handles the monthly budget form.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
	now           func() time.Time
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService, now: time.Now}
}

// BudgetForm is the set-budget form payload.
type BudgetForm struct {
	Year   string `form:"year"`
	Month  string `form:"month"`
	Amount string `form:"budget_amount"`
}

// SetBudget saves the budget for a month and returns to that month.
func (h *BudgetHandler) SetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		failPage(c, err, "/")
		return
	}

	var form BudgetForm
	_ = c.ShouldBind(&form)

	now := h.now()
	year, yerr := intOrDefault(form.Year, now.Year())
	month, merr := intOrDefault(form.Month, int(now.Month()))
	if yerr != nil || merr != nil {
		failPage(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid budget month."), "/")
		return
	}

	budget, err := h.budgetService.SetBudget(userID, year, month, form.Amount)
	if err != nil {
		failPage(c, err, monthURL(year, month))
		return
	}
	h.auditService.Log(userID, services.AuditSetBudget, "budget", 0, c.ClientIP(), map[string]interface{}{
		"year":   budget.Year,
		"month":  budget.Month,
		"amount": budget.Amount,
	})

	addFlash(c, flashSuccess, "Budget saved.")
	c.Redirect(http.StatusFound, monthURL(year, month))
}

func intOrDefault(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
