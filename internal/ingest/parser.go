package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/mauv0809/financial-explorer/internal/models"
	"github.com/phuslu/log"
	"github.com/shopspring/decimal"
)

// Alias tables: for each concept, the known field names in the order they are tried.
// The statement API has shipped several response shapes over time.
var (
	dateAliases            = []string{"date", "fiscalDateEnding", "calendarDate"}
	revenueAliases         = []string{"revenue", "revenueUSD", "totalRevenue"}
	operatingIncomeAliases = []string{"operatingIncome", "operatingIncomeUSD", "operatingIncomeLoss"}
	netIncomeAliases       = []string{"netIncome", "netIncomeUSD", "netIncomeLoss"}
	grossProfitAliases     = []string{"grossProfit", "grossProfitUSD", "totalGrossProfit"}
)

// resolveDecimal returns the first alias that is present, non-null and numeric.
func resolveDecimal(rec RawStatementRecord, aliases []string) (decimal.Decimal, bool) {
	for _, key := range aliases {
		v, ok := rec[key]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case json.Number:
			if d, err := decimal.NewFromString(n.String()); err == nil {
				return d, true
			}
		case float64:
			if !math.IsNaN(n) && !math.IsInf(n, 0) {
				return decimal.NewFromFloat(n), true
			}
		case int64:
			return decimal.NewFromInt(n), true
		case int:
			return decimal.NewFromInt(int64(n)), true
		case string:
			if d, err := decimal.NewFromString(strings.TrimSpace(n)); err == nil {
				return d, true
			}
		}
	}
	return decimal.Zero, false
}

// resolveAmount is resolveDecimal with the zero default applied.
func resolveAmount(rec RawStatementRecord, aliases []string) decimal.Decimal {
	d, _ := resolveDecimal(rec, aliases)
	return d
}

// resolveDate returns the first alias holding a non-empty string.
func resolveDate(rec RawStatementRecord) string {
	for _, key := range dateAliases {
		if s, ok := rec[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// ParseStatements decodes a statement API payload. Anything but a non-empty array of
// objects is reported as ErrNoData.
func ParseStatements(body []byte) ([]RawStatementRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing statements: %w", err)
	}

	items, ok := doc.([]any)
	if !ok {
		return nil, ErrNoData
	}

	records := make([]RawStatementRecord, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			log.Warn().Int("index", i).Msg("skipping non-object statement record")
			continue
		}
		records = append(records, RawStatementRecord(obj))
	}

	if len(records) == 0 {
		return nil, ErrNoData
	}
	return records, nil
}

// Normalize converts raw statement records, given newest-first, into canonical records
// ordered oldest-first. Records repeating an already-seen date are dropped.
func Normalize(records []RawStatementRecord) ([]models.AnnualFinancials, error) {
	if len(records) == 0 {
		return nil, ErrNoData
	}

	out := make([]models.AnnualFinancials, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		af := models.AnnualFinancials{
			Date:            resolveDate(rec),
			Revenue:         resolveAmount(rec, revenueAliases),
			OperatingIncome: resolveAmount(rec, operatingIncomeAliases),
			NetIncome:       resolveAmount(rec, netIncomeAliases),
			GrossProfit:     resolveAmount(rec, grossProfitAliases),
		}
		if af.Date != "" {
			if seen[af.Date] {
				log.Warn().Str("date", af.Date).Msg("dropping duplicate statement period")
				continue
			}
			seen[af.Date] = true
		}
		out = append(out, af)
	}

	slices.Reverse(out)

	// Upstream is normally newest-first already; sort only guards against stray ordering.
	if allDated(out) {
		slices.SortStableFunc(out, func(a, b models.AnnualFinancials) int {
			return strings.Compare(a.Date, b.Date)
		})
	}

	return out, nil
}

func allDated(series []models.AnnualFinancials) bool {
	for _, af := range series {
		if af.Date == "" {
			return false
		}
	}
	return true
}

// ParseMetricBag decodes a leverage payload and extracts the tracked quarterly values.
func ParseMetricBag(body []byte) (models.MetricBag, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return models.MetricBag{}, fmt.Errorf("%w: %v", ErrMalformedMetrics, err)
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return models.MetricBag{}, ErrMalformedMetrics
	}
	if _, ok := obj["metric"].(map[string]any); !ok {
		return models.MetricBag{}, ErrMalformedMetrics
	}

	return models.MetricBag{
		CurrentRatioQuarterly: lookupFloat(doc, metricPaths.CurrentRatio),
		TotalDebtQuarterly:    lookupFloat(doc, metricPaths.TotalDebt),
		EBITDAQuarterly:       lookupFloat(doc, metricPaths.EBITDA),
	}, nil
}

// lookupFloat returns the number at path, or nil when it is missing or not a number.
func lookupFloat(doc any, path string) *float64 {
	jval, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil
	}
	// jsonpath may wrap a single answer in a list
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	v, ok := jval.(float64)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
