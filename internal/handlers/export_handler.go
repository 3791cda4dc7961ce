package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"budgettracker/internal/charts"
	"budgettracker/internal/export"
	"budgettracker/internal/services"
)

// ExportHandler streams the filtered transactions as CSV, XLSX or PDF and
// renders the category chart.
type ExportHandler struct {
	transactionService services.TransactionServicer
	reportService      services.ReportServicer
	userService        services.UserServicer
	auditService       services.AuditServicer
	now                func() time.Time
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(transactionService services.TransactionServicer, reportService services.ReportServicer, userService services.UserServicer, auditService services.AuditServicer) *ExportHandler {
	return &ExportHandler{
		transactionService: transactionService,
		reportService:      reportService,
		userService:        userService,
		auditService:       auditService,
		now:                time.Now,
	}
}

// CSV exports the filtered transactions, oldest first.
func (h *ExportHandler) CSV(c *gin.Context) {
	h.exportRows(c, "csv", export.ContentTypeCSV, func(_ services.Filter, w io.Writer, rows []export.Row) error {
		return export.WriteCSV(w, rows)
	})
}

// XLSX exports the filtered transactions as a single sheet named after the
// requested month.
func (h *ExportHandler) XLSX(c *gin.Context) {
	h.exportRows(c, "xlsx", export.ContentTypeXLSX, func(f services.Filter, w io.Writer, rows []export.Row) error {
		return export.WriteXLSX(w, f.Label(), rows)
	})
}

// PDF renders a statement with the report totals and the filtered rows.
func (h *ExportHandler) PDF(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		failPage(c, err, "/")
		return
	}
	f := bindFilter(c, h.now())

	report, err := h.reportService.MonthlyReport(userID, f)
	if err != nil {
		failPage(c, err, filterURL(f))
		return
	}
	txs, err := h.transactionService.ListTransactions(userID, f, services.Oldest)
	if err != nil {
		failPage(c, err, filterURL(f))
		return
	}
	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		failPage(c, err, filterURL(f))
		return
	}

	stmt := export.Statement{
		Owner:       user.Email,
		Period:      periodLabel(f),
		Income:      report.Income,
		Expense:     report.Expense,
		Balance:     report.Balance,
		Budget:      report.Budget,
		Remaining:   report.Remaining,
		ProgressPct: report.ProgressPct,
		Rows:        export.RowsFromTransactions(txs),
	}
	for _, ct := range report.Categories {
		stmt.Categories = append(stmt.Categories, export.CategoryLine{Category: ct.Category, Total: ct.Total})
	}

	var buf bytes.Buffer
	if err := export.WritePDF(&buf, stmt); err != nil {
		failPage(c, err, filterURL(f))
		return
	}
	h.auditService.Log(userID, services.AuditExport, "transaction", 0, c.ClientIP(), map[string]interface{}{
		"format": "pdf", "from": f.From, "to": f.To,
	})
	sendAttachment(c, export.ContentTypePDF, export.Filename(f.Label(), "pdf"), buf.Bytes())
}

// CategoryChart renders the expense breakdown as a PNG pie chart, or 204
// when there is nothing to draw.
func (h *ExportHandler) CategoryChart(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		failPage(c, err, "/")
		return
	}
	f := bindFilter(c, h.now())

	report, err := h.reportService.MonthlyReport(userID, f)
	if err != nil {
		failPage(c, err, "/")
		return
	}

	slices := make([]charts.Slice, 0, len(report.Categories))
	for _, ct := range report.Categories {
		slices = append(slices, charts.Slice{Category: ct.Category, Total: ct.Total})
	}
	png, err := charts.CategoryPie("Expenses "+periodLabel(f), slices)
	if err != nil {
		failPage(c, err, "/")
		return
	}
	if png == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

func (h *ExportHandler) exportRows(c *gin.Context, ext, contentType string, write func(services.Filter, io.Writer, []export.Row) error) {
	userID, err := getUserID(c)
	if err != nil {
		failPage(c, err, "/")
		return
	}
	f := bindFilter(c, h.now())

	txs, err := h.transactionService.ListTransactions(userID, f, services.Oldest)
	if err != nil {
		failPage(c, err, filterURL(f))
		return
	}

	var buf bytes.Buffer
	if err := write(f, &buf, export.RowsFromTransactions(txs)); err != nil {
		failPage(c, err, filterURL(f))
		return
	}
	h.auditService.Log(userID, services.AuditExport, "transaction", 0, c.ClientIP(), map[string]interface{}{
		"format": ext, "from": f.From, "to": f.To, "rows": len(txs),
	})
	sendAttachment(c, contentType, export.Filename(f.Label(), ext), buf.Bytes())
}

func sendAttachment(c *gin.Context, contentType, filename string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, body)
}

// periodLabel describes the filter range for titles.
func periodLabel(f services.Filter) string {
	label := f.Label()
	if f.CustomRange {
		label = f.From + " to " + f.To
	}
	if f.Category != "" {
		label += " (" + f.Category + ")"
	}
	return label
}
