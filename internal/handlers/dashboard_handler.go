package handlers

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"budgettracker/internal/models"
	"budgettracker/internal/services"
)

// DashboardHandler renders the monthly report page.
type DashboardHandler struct {
	reportService services.ReportServicer
	now           func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(reportService services.ReportServicer) *DashboardHandler {
	return &DashboardHandler{reportService: reportService, now: time.Now}
}

// DashboardLinks are the prebuilt URLs of the page. They carry the current
// filter so that exports and the chart match what is on screen.
type DashboardLinks struct {
	Prev  template.URL
	Next  template.URL
	Today template.URL
	CSV   template.URL
	XLSX  template.URL
	PDF   template.URL
	Chart template.URL
}

// dashboardView is the data handed to index.html.
type dashboardView struct {
	Title    string
	Flashes  []Flash
	Report   *services.Report
	Filter   services.Filter
	Links    DashboardLinks
	Today    string
	Kinds    []models.TransactionKind
	LoggedIn bool
}

// Index shows totals, budget progress, the category breakdown and the
// transaction list for the requested filter.
func (h *DashboardHandler) Index(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		failPage(c, err, "/")
		return
	}

	now := h.now()
	f := bindFilter(c, now)
	report, err := h.reportService.MonthlyReport(userID, f)
	if err != nil {
		failPage(c, err, "/")
		return
	}

	prevY, prevM := f.Prev()
	nextY, nextM := f.Next()
	query := "?" + f.Query().Encode()
	c.HTML(http.StatusOK, "index.html", dashboardView{
		Title:   "Budget " + f.Label(),
		Flashes: consumeFlashes(c),
		Report:  report,
		Filter:  f,
		Links: DashboardLinks{
			Prev:  template.URL(monthURL(prevY, prevM)),
			Next:  template.URL(monthURL(nextY, nextM)),
			Today: template.URL(monthURL(now.Year(), int(now.Month()))),
			CSV:   template.URL("/export.csv" + query),
			XLSX:  template.URL("/export.xlsx" + query),
			PDF:   template.URL("/export.pdf" + query),
			Chart: template.URL("/chart/categories.png" + query),
		},
		Today:    now.Format(models.DateLayout),
		Kinds:    []models.TransactionKind{models.KindExpense, models.KindIncome},
		LoggedIn: true,
	})
}
