package renderer

import (
	"errors"
	"fmt"
	"io"

	"github.com/etnz/wealth"
	"github.com/wcharczuk/go-chart/v2"
)

// ErrEmptyChart is returned when a snapshot has nothing to chart.
var ErrEmptyChart = errors.New("nothing to chart, the portfolio is empty")

// AllocationChart renders the allocation of s as a PNG pie chart: one
// slice per category and per fixed asset.
func AllocationChart(w io.Writer, s *wealth.Snapshot) error {
	var values []chart.Value
	for _, c := range s.Categories {
		if c.Allocation > 0 {
			values = append(values, chart.Value{Label: label(CategoryTitle(c.Category), c.Allocation), Value: float64(c.Allocation)})
		}
	}
	for _, f := range s.FixedAssets {
		if f.Allocation > 0 {
			values = append(values, chart.Value{Label: label(f.Name, f.Allocation), Value: float64(f.Allocation)})
		}
	}
	if len(values) == 0 {
		return ErrEmptyChart
	}
	pie := chart.PieChart{
		Title:  "Allocation",
		Width:  640,
		Height: 640,
		Values: values,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("chart render failed: %w", err)
	}
	return nil
}

func label(name string, p wealth.Percent) string {
	return fmt.Sprintf("%s %.1f%%", name, float64(p))
}
