package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/mauv0809/financial-explorer/internal/explorer"
	"github.com/mauv0809/financial-explorer/internal/ingest"
	"github.com/mauv0809/financial-explorer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStatements struct {
	body string
	err  error
}

func (s stubStatements) FetchIncomeStatements(ctx context.Context, ticker string) ([]ingest.RawStatementRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return ingest.ParseStatements([]byte(s.body))
}

type stubMetrics struct {
	err error
}

func (s stubMetrics) FetchMetricBag(ctx context.Context, ticker string) (models.MetricBag, error) {
	return models.MetricBag{}, s.err
}

const twoYearsBody = `[
	{"date": "2021-12-31", "revenue": 200, "grossProfit": 100},
	{"date": "2020-12-31", "revenue": 100, "grossProfit": 40}
]`

func newServer(st explorer.StatementSource, mt explorer.MetricSource) *echo.Echo {
	e := echo.New()
	e.Validator = NewRequestValidator()

	h := New()
	eh := NewExplorerHandler(explorer.New(st, mt))
	e.GET("/health", h.Health)
	e.GET("/", h.Index)
	e.GET("/explore", eh.Explore)
	e.GET("/api/financials/:ticker", eh.Financials)
	e.GET("/api/query", eh.CurrentQuery)
	return e
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	e := newServer(stubStatements{body: twoYearsBody}, stubMetrics{})
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestIndex(t *testing.T) {
	e := newServer(stubStatements{body: twoYearsBody}, stubMetrics{})
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="ticker"`)
}

func TestFinancialsSuccess(t *testing.T) {
	e := newServer(stubStatements{body: twoYearsBody}, stubMetrics{err: ingest.ErrMissingCredential})
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/financials/aapl", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.QueryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "AAPL", got.Ticker)
	assert.Equal(t, models.StateSuccess, got.State)
	assert.Len(t, got.Financials, 2)
	require.NotNil(t, got.Growth.CAGR)
	assert.InDelta(t, 100.0, *got.Growth.CAGR, 1e-9)
	assert.Equal(t, explorer.MsgMetricsKey, got.LeverageErr)
	assert.Equal(t, models.RatioUnavailable, got.Leverage.DebtToEBITDA.Status)

	var session *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionCookie {
			session = ck
		}
	}
	require.NotNil(t, session)
	assert.NotEmpty(t, session.Value)
}

func TestFinancialsStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		st   stubStatements
		code int
	}{
		{"no data", stubStatements{body: `[]`}, http.StatusNotFound},
		{"error payload", stubStatements{body: `{"Error Message": "Invalid API KEY."}`}, http.StatusNotFound},
		{"missing key", stubStatements{err: ingest.ErrMissingCredential}, http.StatusBadGateway},
		{"upstream down", stubStatements{err: &ingest.APIError{StatusCode: 503}}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newServer(tt.st, stubMetrics{})
			rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/financials/AAPL", nil))
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestFinancialsRejectsBadTicker(t *testing.T) {
	e := newServer(stubStatements{body: twoYearsBody}, stubMetrics{})
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/financials/AAPL$$", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestExploreRendersResults(t *testing.T) {
	e := newServer(stubStatements{body: twoYearsBody}, stubMetrics{})
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/explore?ticker=msft", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h2>MSFT</h2>")
	assert.Contains(t, body, "<strong>CAGR:</strong> 100.00%")
}

func TestExploreNoData(t *testing.T) {
	e := newServer(stubStatements{body: `[]`}, stubMetrics{})
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/explore?ticker=ZZZZ", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), explorer.MsgNoData)
}

func TestExploreMissingTicker(t *testing.T) {
	e := newServer(stubStatements{body: twoYearsBody}, stubMetrics{})
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/explore?ticker=", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="error"`)
}

func TestCurrentQueryFollowsSession(t *testing.T) {
	e := newServer(stubStatements{body: twoYearsBody}, stubMetrics{})

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/query", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	first := serve(e, httptest.NewRequest(http.MethodGet, "/api/financials/IBM", nil))
	require.Equal(t, http.StatusOK, first.Code)
	cookies := first.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/api/query", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec = serve(e, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.QueryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "IBM", got.Ticker)
	assert.Equal(t, models.StateSuccess, got.State)
}
