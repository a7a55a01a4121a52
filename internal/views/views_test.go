package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/mauv0809/financial-explorer/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, r models.QueryResult) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Results(r).Render(context.Background(), &buf))
	return buf.String()
}

func TestFormatAmount(t *testing.T) {
	tests := map[string]string{
		"0":            "0",
		"999":          "999",
		"1000":         "1,000",
		"383285000000": "383,285,000,000",
		"-1234567":     "-1,234,567",
		"1234.6":       "1,235",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatAmount(decimal.RequireFromString(in)), in)
	}
}

func TestChartPoints(t *testing.T) {
	assert.Empty(t, ChartPoints([]float64{1}))
	assert.Equal(t, "0.0,120.0 400.0,0.0", ChartPoints([]float64{0, 10}))
	assert.Equal(t, "0.0,120.0 200.0,60.0 400.0,0.0", ChartPoints([]float64{-5, 0, 5}))
	// flat series stays inside the box
	assert.Equal(t, "0.0,120.0 400.0,120.0", ChartPoints([]float64{5, 5}))
}

func TestLineChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, LineChart([]float64{1}).Render(context.Background(), &buf))
	assert.Empty(t, buf.String())

	buf.Reset()
	require.NoError(t, LineChart([]float64{0, 10}).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), `<svg class="chart"`)
	assert.Contains(t, buf.String(), `points="0.0,120.0 400.0,0.0"`)
}

func TestSearchError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SearchError("bad ticker!", "Enter a valid ticker.").Render(context.Background(), &buf))

	html := buf.String()
	assert.Contains(t, html, `value="bad ticker!"`)
	assert.Contains(t, html, `<div class="error">Enter a valid ticker.</div>`)
	assert.Contains(t, html, "<title>Financial Explorer</title>")
}

func TestResultsLoading(t *testing.T) {
	html := render(t, models.QueryResult{Ticker: "AAPL", State: models.StateLoading})
	assert.Contains(t, html, `<div class="loading">Loading...</div>`)
	assert.NotContains(t, html, `class="error"`)
}

func TestResultsSuccess(t *testing.T) {
	cagr := 12.3456
	html := render(t, models.QueryResult{
		Ticker: "AAPL",
		State:  models.StateSuccess,
		Financials: []models.AnnualFinancials{
			{Date: "2023-09-30", Revenue: decimal.NewFromInt(383285000000)},
		},
		Growth: models.GrowthSummary{CAGR: &cagr},
		Leverage: models.LeverageSnapshot{
			DebtToEBITDA: models.Ratio{Status: models.RatioUnavailable, Reason: "EBITDA is zero"},
		},
	})

	assert.Contains(t, html, "<strong>CAGR:</strong> 12.35%")
	assert.NotContains(t, html, "Avg. YoY Growth")
	assert.NotContains(t, html, "Current Ratio")
	assert.Contains(t, html, "EBITDA is zero")
	assert.Contains(t, html, "383,285,000,000")
	assert.Contains(t, html, "<title>AAPL | Financial Explorer</title>")
}

func TestResultsSeriesAndCharts(t *testing.T) {
	ratioValue := 1.5
	html := render(t, models.QueryResult{
		Ticker: "MSFT",
		State:  models.StateSuccess,
		Margins: models.MarginSeries{
			GrossMarginByYear: []models.YearPercent{{Year: "2022", Percent: 40}, {Year: "2023", Percent: 42.5}},
			NetIncomeByYear:   []models.YearAmount{{Year: "2022", Amount: decimal.NewFromInt(1000)}, {Year: "2023", Amount: decimal.NewFromInt(2000)}},
		},
		Leverage: models.LeverageSnapshot{
			CurrentRatio: &ratioValue,
			DebtToEBITDA: models.Ratio{Status: models.RatioAvailable, Value: 2.25},
		},
	})

	assert.Contains(t, html, "<h3>Gross Margin (%)</h3>")
	assert.Contains(t, html, "<td>2023</td><td>42.50%</td>")
	assert.Contains(t, html, "<td>2023</td><td>2,000</td>")
	assert.Contains(t, html, "<strong>Current Ratio:</strong> 1.50")
	assert.Contains(t, html, "<strong>Debt/EBITDA:</strong> 2.25")
	// one chart each for gross margin and net income, the empty series draw none
	assert.Equal(t, 2, strings.Count(html, "<svg"))
}

func TestResultsFailureShowsBannerOnly(t *testing.T) {
	html := render(t, models.QueryResult{
		Ticker:  "ZZZZ",
		State:   models.StateNoData,
		Message: "No data found for this ticker.",
	})
	assert.Contains(t, html, `<div class="error">No data found for this ticker.</div>`)
	assert.NotContains(t, html, "revenue-table")
}

func TestResultsEscapesInput(t *testing.T) {
	html := render(t, models.QueryResult{
		Ticker:  `<script>`,
		State:   models.StateFailed,
		Message: "Failed to fetch data.",
	})
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}
