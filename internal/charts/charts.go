// Package charts renders report data as PNG images.
package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"budgettracker/internal/money"
)

// Slice is one category of the expense pie. Total is in cents.
type Slice struct {
	Category string
	Total    int64
}

// CategoryPie renders the expense breakdown as a pie chart. It returns nil
// when there is nothing to draw.
func CategoryPie(title string, slices []Slice) ([]byte, error) {
	var total int64
	for _, s := range slices {
		total += s.Total
	}
	if total <= 0 {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(slices))
	for _, s := range slices {
		if s.Total <= 0 {
			continue
		}
		pct := float64(s.Total) * 100 / float64(total)
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s (%.1f%%)", s.Category, money.Format(s.Total), pct),
			Value: money.Float(s.Total),
			Style: chart.Style{
				FontSize:  11,
				FontColor: chart.ColorBlack,
			},
		})
	}

	pie := chart.PieChart{
		Title:  title,
		Width:  800,
		Height: 800,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render category pie chart: %w", err)
	}
	return buffer.Bytes(), nil
}
