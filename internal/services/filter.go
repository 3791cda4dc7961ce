package services

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"budgettracker/internal/models"
)

// FilterParams are the raw query parameters shared by the dashboard, the
// exports, the chart and the JSON API.
type FilterParams struct {
	Year     string `form:"year"`
	Month    string `form:"month"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	Category string `form:"category"`
}

// Filter is a resolved date range plus optional category. Every query that
// feeds a page or an export goes through Scope or RangeScope of one Filter
// value, so totals, listing and breakdown always agree.
type Filter struct {
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	From        string `json:"date_from"`
	To          string `json:"date_to"`
	Category    string `json:"category,omitempty"`
	CustomRange bool   `json:"custom_range"`
}

// ResolveFilter turns request parameters into a Filter. Missing or
// unparsable year/month fall back to now. An explicit range is used only
// when both ends are given; otherwise the range is the requested month.
func ResolveFilter(p FilterParams, now time.Time) Filter {
	year, errY := strconv.Atoi(strings.TrimSpace(p.Year))
	month, errM := strconv.Atoi(strings.TrimSpace(p.Month))
	if strings.TrimSpace(p.Year) == "" {
		year, errY = now.Year(), nil
	}
	if strings.TrimSpace(p.Month) == "" {
		month, errM = int(now.Month()), nil
	}
	if errY != nil || errM != nil || month < 1 || month > 12 || year < 1 || year > 9999 {
		year, month = now.Year(), int(now.Month())
	}

	f := Filter{
		Year:     year,
		Month:    month,
		Category: strings.TrimSpace(p.Category),
	}

	from, to := strings.TrimSpace(p.DateFrom), strings.TrimSpace(p.DateTo)
	if from != "" && to != "" {
		f.From, f.To, f.CustomRange = from, to, true
	} else {
		f.From, f.To = MonthBounds(year, month)
	}
	return f
}

// MonthBounds returns the first and last calendar day of the month as
// YYYY-MM-DD strings.
func MonthBounds(year, month int) (string, string) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
	return first.Format(models.DateLayout), last.Format(models.DateLayout)
}

// RangeScope restricts a query to the owner's rows inside the date range.
func (f Filter) RangeScope(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ? AND tx_date BETWEEN ? AND ?", userID, f.From, f.To)
	}
}

// Scope is RangeScope plus the category constraint, if any.
func (f Filter) Scope(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = f.RangeScope(userID)(db)
		if f.Category != "" {
			db = db.Where("category = ?", f.Category)
		}
		return db
	}
}

// Label returns the requested month as YYYY-MM.
func (f Filter) Label() string {
	return fmt.Sprintf("%04d-%02d", f.Year, f.Month)
}

// Prev returns the previous calendar month.
func (f Filter) Prev() (year, month int) {
	if f.Month == 1 {
		return f.Year - 1, 12
	}
	return f.Year, f.Month - 1
}

// Next returns the following calendar month.
func (f Filter) Next() (year, month int) {
	if f.Month == 12 {
		return f.Year + 1, 1
	}
	return f.Year, f.Month + 1
}

// Query encodes the filter back into URL parameters, for links that must
// reproduce the same view (exports, chart, pagination).
func (f Filter) Query() url.Values {
	v := url.Values{}
	v.Set("year", strconv.Itoa(f.Year))
	v.Set("month", strconv.Itoa(f.Month))
	if f.CustomRange {
		v.Set("date_from", f.From)
		v.Set("date_to", f.To)
	}
	if f.Category != "" {
		v.Set("category", f.Category)
	}
	return v
}
