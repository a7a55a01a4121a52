package ingest

import (
	"errors"
	"fmt"
)

// RawStatementRecord is one fiscal period as returned by the statement API.
// Field names for the same concept vary between API versions; numbers are json.Number.
type RawStatementRecord map[string]any

var (
	// ErrNoData is returned when the statement source has nothing usable for a ticker.
	ErrNoData = errors.New("no data found for this ticker")

	// ErrMissingCredential is returned when a source has no API key configured.
	ErrMissingCredential = errors.New("missing API credential")

	// ErrMalformedMetrics is returned when the leverage payload has no metric bag.
	ErrMalformedMetrics = errors.New("malformed metrics response")
)

// APIError is a non-200 answer from an upstream API.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 429 {
		return fmt.Sprintf("%s: rate limited by upstream (429)", e.Endpoint)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// metricPaths locates each tracked value inside the leverage payload.
var metricPaths = struct {
	CurrentRatio string
	TotalDebt    string
	EBITDA       string
}{
	CurrentRatio: "$.metric.currentRatioQuarterly",
	TotalDebt:    "$.metric.totalDebtQuarterly",
	EBITDA:       "$.metric.ebitdaQuarterly",
}
