package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mauv0809/financial-explorer/internal/models"
	"github.com/phuslu/log"
)

const (
	DefaultStatementBaseURL = "https://financialmodelingprep.com/api/v3"
	DefaultMetricsBaseURL   = "https://finnhub.io/api/v1"
	DefaultStatementLimit   = 10
	defaultTimeout          = 30 * time.Second
)

// transport is the HTTP plumbing shared by both sources.
type transport struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ClientOption configures a source client.
type ClientOption func(*transport)

// WithBaseURL points the client at a different host, e.g. a test server.
func WithBaseURL(baseURL string) ClientOption {
	return func(t *transport) {
		t.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(t *transport) {
		t.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(t *transport) {
		if timeout > 0 {
			t.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

func newTransport(baseURL, apiKey string, opts []ClientOption) transport {
	t := transport{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// get performs a single GET and returns the body of a 200 response. There are no retries.
func (t transport) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u, err := url.Parse(t.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", path, err)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	log.Debug().Str("host", u.Host).Str("path", u.Path).Msg("upstream request")

	httpResp, err := t.httpClient.Do(req)
	if err != nil {
		// url.Error repeats the full URL, credentials included
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("executing request to %s%s: %w", u.Host, u.Path, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: httpResp.StatusCode,
			Endpoint:   u.Path,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	return body, nil
}

// NormalizeTicker trims and uppercases a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// StatementClient reads annual income statements.
type StatementClient struct {
	transport
	limit int
}

// NewStatementClient creates a client for the income-statement endpoint.
func NewStatementClient(apiKey string, limit int, opts ...ClientOption) *StatementClient {
	if limit <= 0 {
		limit = DefaultStatementLimit
	}
	return &StatementClient{
		transport: newTransport(DefaultStatementBaseURL, apiKey, opts),
		limit:     limit,
	}
}

// FetchIncomeStatements returns the raw annual records for ticker, newest first.
func (c *StatementClient) FetchIncomeStatements(ctx context.Context, ticker string) ([]RawStatementRecord, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("statement source: %w", ErrMissingCredential)
	}
	symbol := NormalizeTicker(ticker)
	if symbol == "" {
		return nil, ErrNoData
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(c.limit))
	params.Set("apikey", c.apiKey)

	body, err := c.get(ctx, "/income-statement/"+url.PathEscape(symbol), params)
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		// the status is not trusted: a JSON error body is read like any other payload
		records, perr := ParseStatements([]byte(apiErr.Message))
		if perr == nil {
			return records, nil
		}
		if errors.Is(perr, ErrNoData) {
			log.Warn().Str("ticker", symbol).Int("status", apiErr.StatusCode).Msg("statement source answered with an error object")
			return nil, fmt.Errorf("fetching income statements for %s: %w: %w", symbol, ErrNoData, apiErr)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("fetching income statements for %s: %w", symbol, err)
	}

	records, err := ParseStatements(body)
	if err != nil {
		return nil, err
	}

	log.Info().Str("ticker", symbol).Int("periods", len(records)).Msg("fetched income statements")
	return records, nil
}

// MetricsClient reads the latest-quarter metric bag used for leverage ratios.
type MetricsClient struct {
	transport
}

// NewMetricsClient creates a client for the metric endpoint.
func NewMetricsClient(apiKey string, opts ...ClientOption) *MetricsClient {
	return &MetricsClient{
		transport: newTransport(DefaultMetricsBaseURL, apiKey, opts),
	}
}

// FetchMetricBag returns the quarterly values needed for the leverage snapshot.
func (c *MetricsClient) FetchMetricBag(ctx context.Context, ticker string) (models.MetricBag, error) {
	if c.apiKey == "" {
		return models.MetricBag{}, fmt.Errorf("metrics source: %w", ErrMissingCredential)
	}
	symbol := NormalizeTicker(ticker)

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("metric", "all")
	params.Set("token", c.apiKey)

	body, err := c.get(ctx, "/stock/metric", params)
	if err != nil {
		return models.MetricBag{}, fmt.Errorf("fetching metrics for %s: %w", symbol, err)
	}

	return ParseMetricBag(body)
}
