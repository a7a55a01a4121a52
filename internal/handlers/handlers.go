package handlers

import (
	"bytes"
	"net/http"
	"regexp"

	"github.com/a-h/templ"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/mauv0809/financial-explorer/internal/views"
)

// Handler serves the static pages.
type Handler struct{}

// New creates a Handler.
func New() *Handler {
	return &Handler{}
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Index handles GET /
// Renders the empty search page.
func (h *Handler) Index(c echo.Context) error {
	return Render(c, http.StatusOK, views.Index())
}

// Render writes a templ component as the HTML response.
func Render(c echo.Context, statusCode int, t templ.Component) error {
	var buf bytes.Buffer
	if err := t.Render(c.Request().Context(), &buf); err != nil {
		return err
	}
	return c.HTMLBlob(statusCode, buf.Bytes())
}

var tickerPattern = regexp.MustCompile(`^[A-Za-z0-9.\-]{1,12}$`)

// RequestValidator plugs go-playground/validator into echo.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates the validator with the "ticker" rule registered.
func NewRequestValidator() *RequestValidator {
	v := validator.New()
	_ = v.RegisterValidation("ticker", func(fl validator.FieldLevel) bool {
		return tickerPattern.MatchString(fl.Field().String())
	})
	return &RequestValidator{validate: v}
}

// Validate implements echo.Validator.
func (rv *RequestValidator) Validate(i any) error {
	return rv.validate.Struct(i)
}
