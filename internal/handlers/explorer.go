package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/mauv0809/financial-explorer/internal/explorer"
	"github.com/mauv0809/financial-explorer/internal/models"
	"github.com/mauv0809/financial-explorer/internal/views"
	"github.com/phuslu/log"
)

const sessionCookie = "fx_session"

// ExplorerHandler serves ticker submissions as HTML and JSON.
type ExplorerHandler struct {
	explorer *explorer.Explorer
}

// NewExplorerHandler creates a new explorer handler.
func NewExplorerHandler(e *explorer.Explorer) *ExplorerHandler {
	return &ExplorerHandler{explorer: e}
}

// APIResponse is the JSON body for rejected requests.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TickerRequest is a single ticker submission.
type TickerRequest struct {
	Ticker string `query:"ticker" param:"ticker" validate:"required,ticker"`
}

const msgInvalidTicker = "Enter a ticker of up to 12 letters, digits, dots or dashes."

func (h *ExplorerHandler) bindTicker(c echo.Context) (string, bool) {
	var req TickerRequest
	if err := c.Bind(&req); err != nil {
		return "", false
	}
	req.Ticker = strings.TrimSpace(req.Ticker)
	if err := c.Validate(&req); err != nil {
		log.Debug().Err(err).Str("ticker", req.Ticker).Msg("rejected ticker")
		return req.Ticker, false
	}
	return req.Ticker, true
}

// Explore handles GET /explore?ticker=
// Runs one submission and renders the results page.
func (h *ExplorerHandler) Explore(c echo.Context) error {
	ticker, ok := h.bindTicker(c)
	if !ok {
		return Render(c, http.StatusBadRequest, views.SearchError(ticker, msgInvalidTicker))
	}

	result, _ := h.explorer.Submit(c.Request().Context(), session(c), ticker)
	return Render(c, statusFor(result.State), views.Results(result))
}

// Financials handles GET /api/financials/:ticker
// Runs one submission and returns the QueryResult as JSON.
func (h *ExplorerHandler) Financials(c echo.Context) error {
	ticker, ok := h.bindTicker(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: msgInvalidTicker,
		})
	}

	start := time.Now()
	result, current := h.explorer.Submit(c.Request().Context(), session(c), ticker)
	log.Info().
		Str("ticker", result.Ticker).
		Str("state", string(result.State)).
		Bool("current", current).
		Dur("elapsed", time.Since(start)).
		Msg("financials served")

	return c.JSON(statusFor(result.State), result)
}

// CurrentQuery handles GET /api/query
// Returns the latest result for the caller's session.
func (h *ExplorerHandler) CurrentQuery(c echo.Context) error {
	result, ok := h.explorer.Tracker().Current(session(c))
	if !ok {
		return c.JSON(http.StatusNotFound, APIResponse{
			Success: false,
			Message: "No query submitted yet.",
		})
	}
	return c.JSON(statusFor(result.State), result)
}

func statusFor(state models.QueryState) int {
	switch state {
	case models.StateSuccess:
		return http.StatusOK
	case models.StateLoading:
		return http.StatusAccepted
	case models.StateNoData:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// session returns the viewer's session id, issuing a cookie on first contact.
func session(c echo.Context) string {
	if ck, err := c.Cookie(sessionCookie); err == nil {
		if _, err := uuid.Parse(ck.Value); err == nil {
			return ck.Value
		}
	}

	id := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	// later reads in the same request see the new id
	c.Request().AddCookie(&http.Cookie{Name: sessionCookie, Value: id})
	return id
}
