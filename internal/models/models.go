package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnnualFinancials is the canonical income-statement record for one fiscal year.
// Amounts are in reporting currency and default to zero when the source omits them.
type AnnualFinancials struct {
	Date            string          `json:"date"`
	Revenue         decimal.Decimal `json:"revenue"`
	OperatingIncome decimal.Decimal `json:"operating_income"`
	NetIncome       decimal.Decimal `json:"net_income"`
	GrossProfit     decimal.Decimal `json:"gross_profit"`
}

// Year returns the fiscal year, taken from the date prefix.
func (a AnnualFinancials) Year() string {
	if len(a.Date) < 4 {
		return a.Date
	}
	return a.Date[:4]
}

// YearPercent is one point of a percentage series.
type YearPercent struct {
	Year    string  `json:"year"`
	Percent float64 `json:"percent"`
}

// YearAmount is one point of an amount series.
type YearAmount struct {
	Year   string          `json:"year"`
	Amount decimal.Decimal `json:"amount"`
}

// MarginSeries holds the per-year derived series, aligned 1:1 with the normalized financials.
type MarginSeries struct {
	GrossMarginByYear     []YearPercent `json:"gross_margin_by_year"`
	NetMarginByYear       []YearPercent `json:"net_margin_by_year"`
	OperatingIncomeByYear []YearAmount  `json:"operating_income_by_year"`
	NetIncomeByYear       []YearAmount  `json:"net_income_by_year"`
}

// GrowthSummary holds revenue growth figures in percent. A nil field is undefined, not zero.
type GrowthSummary struct {
	CAGR         *float64 `json:"cagr,omitempty"`
	AvgYoYGrowth *float64 `json:"avg_yoy_growth,omitempty"`
}

// MetricBag is the typed view of the leverage source's metric bag.
// A nil field was missing or not numeric upstream.
type MetricBag struct {
	CurrentRatioQuarterly *float64 `json:"current_ratio_quarterly,omitempty"`
	TotalDebtQuarterly    *float64 `json:"total_debt_quarterly,omitempty"`
	EBITDAQuarterly       *float64 `json:"ebitda_quarterly,omitempty"`
}

// RatioStatus tells whether a ratio has been computed and whether it could be.
type RatioStatus string

const (
	RatioPending     RatioStatus = ""
	RatioAvailable   RatioStatus = "available"
	RatioUnavailable RatioStatus = "unavailable"
)

// Ratio is a computed ratio that explains itself when it cannot be produced.
type Ratio struct {
	Status RatioStatus `json:"status"`
	Value  float64     `json:"value,omitempty"`
	Reason string      `json:"reason,omitempty"`
}

// Available reports whether the ratio holds a value.
func (r Ratio) Available() bool {
	return r.Status == RatioAvailable
}

// LeverageSnapshot is the latest-quarter leverage picture.
// CurrentRatio is silently absent when missing; DebtToEBITDA always explains a missing value.
type LeverageSnapshot struct {
	CurrentRatio *float64 `json:"current_ratio,omitempty"`
	DebtToEBITDA Ratio    `json:"debt_to_ebitda"`
}

// QueryState is the outcome of one ticker submission.
type QueryState string

const (
	StateLoading QueryState = "loading"
	StateSuccess QueryState = "success"
	StateNoData  QueryState = "no_data"
	StateFailed  QueryState = "failed"
)

// QueryResult is the full result of one submission. It is built once and never mutated
// after it has been handed to a Tracker.
type QueryResult struct {
	Seq         uint64             `json:"seq"`
	Ticker      string             `json:"ticker"`
	State       QueryState         `json:"state"`
	Message     string             `json:"message,omitempty"`
	Financials  []AnnualFinancials `json:"financials,omitempty"`
	Growth      GrowthSummary      `json:"growth"`
	Margins     MarginSeries       `json:"margins"`
	Leverage    LeverageSnapshot   `json:"leverage"`
	LeverageErr string             `json:"leverage_error,omitempty"`
	FetchedAt   time.Time          `json:"fetched_at"`
}
