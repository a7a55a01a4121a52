// Package explorer runs one ticker submission end to end and keeps the latest
// result per viewer.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mauv0809/financial-explorer/internal/ingest"
	"github.com/mauv0809/financial-explorer/internal/metrics"
	"github.com/mauv0809/financial-explorer/internal/models"
	"github.com/phuslu/log"
)

// User-facing messages.
const (
	MsgNoData           = "No data found for this ticker."
	MsgFetchFailed      = "Failed to fetch data."
	MsgStatementKey     = "Statement API key is not configured."
	MsgMetricsKey       = "Leverage data unavailable: metrics API key is not configured."
	MsgMetricsMalformed = "Leverage data unavailable: unexpected response from the metrics source."
	MsgMetricsFailed    = "Leverage data unavailable: failed to fetch metrics."

	MsgMetricsRateLimited = "Leverage data unavailable: the metrics source is rate limiting requests."
)

// StatementSource provides raw annual income statements, newest first.
type StatementSource interface {
	FetchIncomeStatements(ctx context.Context, ticker string) ([]ingest.RawStatementRecord, error)
}

// MetricSource provides the latest-quarter metric bag.
type MetricSource interface {
	FetchMetricBag(ctx context.Context, ticker string) (models.MetricBag, error)
}

// Explorer turns a ticker into a QueryResult.
type Explorer struct {
	statements StatementSource
	metrics    MetricSource
	tracker    *Tracker
	now        func() time.Time
}

// New creates an Explorer with its own Tracker.
func New(statements StatementSource, metricSource MetricSource) *Explorer {
	return &Explorer{
		statements: statements,
		metrics:    metricSource,
		tracker:    NewTracker(),
		now:        time.Now,
	}
}

// Tracker exposes the per-session result store.
func (e *Explorer) Tracker() *Tracker {
	return e.tracker
}

// Submit begins a submission for session, runs it, and records the result.
// If a newer submission for the same session began in the meantime, the finished
// result is discarded and the session's current result is returned with false.
func (e *Explorer) Submit(ctx context.Context, session, ticker string) (models.QueryResult, bool) {
	symbol := ingest.NormalizeTicker(ticker)
	pending := e.tracker.Begin(session, symbol)

	result := e.Run(ctx, pending.Seq, symbol)
	if !e.tracker.Complete(session, result) {
		log.Info().Str("ticker", symbol).Uint64("seq", result.Seq).Msg("discarding superseded result")
		cur, _ := e.tracker.Current(session)
		return cur, false
	}
	return result, true
}

// Run fetches and derives everything for ticker. The leverage source is only queried
// once the statement side succeeded, and its failure never hides statement results.
func (e *Explorer) Run(ctx context.Context, seq uint64, ticker string) models.QueryResult {
	symbol := ingest.NormalizeTicker(ticker)
	result := models.QueryResult{
		Seq:       seq,
		Ticker:    symbol,
		FetchedAt: e.now(),
	}

	raw, err := e.statements.FetchIncomeStatements(ctx, symbol)
	if err == nil {
		result.Financials, err = ingest.Normalize(raw)
	}
	if err != nil {
		return failStatement(result, err)
	}

	result.State = models.StateSuccess
	result.Growth = metrics.ComputeGrowth(result.Financials)
	result.Margins = metrics.ComputeMarginSeries(result.Financials)

	bag, err := e.metrics.FetchMetricBag(ctx, symbol)
	if err != nil {
		result.LeverageErr = leverageMessage(err)
		result.Leverage.DebtToEBITDA = metrics.Unavailable(result.LeverageErr)
		log.Warn().Err(err).Str("ticker", symbol).Msg("leverage snapshot unavailable")
		return result
	}
	result.Leverage = metrics.ComputeLeverageSnapshot(bag)

	log.Info().
		Str("ticker", symbol).
		Uint64("seq", seq).
		Int("years", len(result.Financials)).
		Msg("query complete")

	return result
}

func failStatement(result models.QueryResult, err error) models.QueryResult {
	switch {
	case errors.Is(err, ingest.ErrNoData):
		result.State = models.StateNoData
		result.Message = MsgNoData
	case errors.Is(err, ingest.ErrMissingCredential):
		result.State = models.StateFailed
		result.Message = MsgStatementKey
	default:
		result.State = models.StateFailed
		result.Message = MsgFetchFailed
	}
	result.Financials = nil
	log.Warn().Err(err).Str("ticker", result.Ticker).Str("state", string(result.State)).Msg("statement fetch failed")
	return result
}

func leverageMessage(err error) string {
	var apiErr *ingest.APIError
	switch {
	case errors.Is(err, ingest.ErrMissingCredential):
		return MsgMetricsKey
	case errors.Is(err, ingest.ErrMalformedMetrics):
		return MsgMetricsMalformed
	case errors.As(err, &apiErr) && apiErr.StatusCode == 429:
		return MsgMetricsRateLimited
	case errors.As(err, &apiErr):
		return fmt.Sprintf("Leverage data unavailable: the metrics source answered with status %d.", apiErr.StatusCode)
	default:
		return MsgMetricsFailed
	}
}
