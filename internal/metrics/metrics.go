// Package metrics derives growth, margin and leverage figures from normalized financials.
package metrics

import (
	"math"

	"github.com/mauv0809/financial-explorer/internal/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeGrowth returns revenue CAGR and average year-over-year growth, in percent.
// The series must be ordered oldest first. Fields stay nil when they cannot be defined.
func ComputeGrowth(series []models.AnnualFinancials) models.GrowthSummary {
	var summary models.GrowthSummary
	if len(series) < 2 {
		return summary
	}

	// CAGR only looks at the endpoints.
	first := series[0].Revenue
	last := series[len(series)-1].Revenue
	years := float64(len(series) - 1)
	if first.IsPositive() && last.IsPositive() {
		ratio := last.Div(first).InexactFloat64()
		cagr := (math.Pow(ratio, 1/years) - 1) * 100
		if !math.IsNaN(cagr) && !math.IsInf(cagr, 0) {
			summary.CAGR = &cagr
		}
	}

	var total float64
	var pairs int
	for i := 1; i < len(series); i++ {
		prev := series[i-1].Revenue
		if !prev.IsPositive() {
			continue
		}
		total += series[i].Revenue.Sub(prev).Div(prev).Mul(hundred).InexactFloat64()
		pairs++
	}
	if pairs > 0 {
		avg := total / float64(pairs)
		summary.AvgYoYGrowth = &avg
	}

	return summary
}

// ComputeMarginSeries returns the per-year margin and income series.
// A year with zero revenue reports a 0% margin.
func ComputeMarginSeries(series []models.AnnualFinancials) models.MarginSeries {
	out := models.MarginSeries{
		GrossMarginByYear:     make([]models.YearPercent, 0, len(series)),
		NetMarginByYear:       make([]models.YearPercent, 0, len(series)),
		OperatingIncomeByYear: make([]models.YearAmount, 0, len(series)),
		NetIncomeByYear:       make([]models.YearAmount, 0, len(series)),
	}

	for _, af := range series {
		year := af.Year()
		out.GrossMarginByYear = append(out.GrossMarginByYear, models.YearPercent{
			Year:    year,
			Percent: marginPercent(af.GrossProfit, af.Revenue),
		})
		out.NetMarginByYear = append(out.NetMarginByYear, models.YearPercent{
			Year:    year,
			Percent: marginPercent(af.NetIncome, af.Revenue),
		})
		out.OperatingIncomeByYear = append(out.OperatingIncomeByYear, models.YearAmount{
			Year:   year,
			Amount: af.OperatingIncome,
		})
		out.NetIncomeByYear = append(out.NetIncomeByYear, models.YearAmount{
			Year:   year,
			Amount: af.NetIncome,
		})
	}

	return out
}

func marginPercent(value, revenue decimal.Decimal) float64 {
	if revenue.IsZero() {
		return 0
	}
	return value.Div(revenue).Mul(hundred).InexactFloat64()
}

// ComputeLeverageSnapshot derives the current ratio and debt/EBITDA from the metric bag.
//
// A missing current ratio is silently absent, while an uncomputable debt/EBITDA carries a
// reason. The two policies differ on purpose and callers rely on both.
func ComputeLeverageSnapshot(bag models.MetricBag) models.LeverageSnapshot {
	var snap models.LeverageSnapshot

	if bag.CurrentRatioQuarterly != nil {
		cr := *bag.CurrentRatioQuarterly
		snap.CurrentRatio = &cr
	}

	snap.DebtToEBITDA = debtToEBITDA(bag.TotalDebtQuarterly, bag.EBITDAQuarterly)
	return snap
}

func debtToEBITDA(debt, ebitda *float64) models.Ratio {
	switch {
	case debt == nil:
		return Unavailable("total debt not reported")
	case *debt == 0:
		return Unavailable("total debt is zero")
	case ebitda == nil:
		return Unavailable("EBITDA not reported")
	case *ebitda == 0:
		return Unavailable("EBITDA is zero")
	}

	v := *debt / *ebitda
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Unavailable("debt/EBITDA is not a finite number")
	}
	return models.Ratio{Status: models.RatioAvailable, Value: v}
}

// Unavailable builds a ratio that could not be computed, with the reason shown to the user.
func Unavailable(reason string) models.Ratio {
	return models.Ratio{Status: models.RatioUnavailable, Reason: reason}
}
