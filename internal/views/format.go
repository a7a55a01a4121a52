// Package views renders the explorer pages as templ components.
package views

import (
	"fmt"
	"strings"

	"github.com/mauv0809/financial-explorer/internal/models"
	"github.com/shopspring/decimal"
)

// FormatAmount renders a whole amount with thousands separators, e.g. -1,234,567.
func FormatAmount(d decimal.Decimal) string {
	s := d.Round(0).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

func ratio(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// chart box, matching the svg in LineChart
const (
	chartWidth  = 400
	chartHeight = 120
)

// ChartPoints scales values into the chart box as an SVG points list.
// The lowest value sits on the bottom edge, the highest on the top edge.
func ChartPoints(values []float64) string {
	if len(values) < 2 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	points := make([]string, len(values))
	step := float64(chartWidth) / float64(len(values)-1)
	for i, v := range values {
		x := float64(i) * step
		y := chartHeight - (v-lo)/span*chartHeight
		points[i] = fmt.Sprintf("%.1f,%.1f", x, y)
	}
	return strings.Join(points, " ")
}

func percentValues(points []models.YearPercent) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Percent
	}
	return values
}

func amountValues(points []models.YearAmount) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Amount.InexactFloat64()
	}
	return values
}
