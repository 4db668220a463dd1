package handler

import (
	"html"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/leisure-tvshows/internal/logger"
)

// ErrorFormatter produces every 500 body the show handlers send.  The
// underlying error is always logged together with the request id; clients
// only see it when Redact is false, and then escaped for the body's format.
type ErrorFormatter struct {
	Redact bool
	Log    *slog.Logger
}

// NewErrorFormatter returns a formatter that hides error details when
// redact is true.
func NewErrorFormatter(redact bool, log *slog.Logger) *ErrorFormatter {
	if log == nil {
		log = logger.Discard()
	}
	return &ErrorFormatter{Redact: redact, Log: log}
}

// JSON answers 500 with {"error", "message", "request_id"}.  encoding/json
// escapes <, > and & so the message is safe to embed.
func (f *ErrorFormatter) JSON(c echo.Context, err error) error {
	id := f.record(c, err)
	body := echo.Map{
		"error":   "internal_error",
		"message": f.message(err),
	}
	if id != "" {
		body["request_id"] = id
	}
	return c.JSON(http.StatusInternalServerError, body)
}

// HTML answers 500 with a small escaped fragment headed by <h2>Error</h2>.
func (f *ErrorFormatter) HTML(c echo.Context, err error) error {
	id := f.record(c, err)

	var b strings.Builder
	b.WriteString("<h2>Error</h2><p>")
	b.WriteString(html.EscapeString(f.message(err)))
	b.WriteString("</p>")
	if id != "" {
		b.WriteString("<p>Request ID: ")
		b.WriteString(html.EscapeString(id))
		b.WriteString("</p>")
	}
	return c.HTML(http.StatusInternalServerError, b.String())
}

func (f *ErrorFormatter) message(err error) string {
	if f.Redact || err == nil {
		return http.StatusText(http.StatusInternalServerError)
	}
	return err.Error()
}

func (f *ErrorFormatter) record(c echo.Context, err error) string {
	id := requestID(c)
	f.Log.Error("request failed",
		"request_id", id,
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
		"err", err,
	)
	return id
}

// requestID prefers the id echo's RequestID middleware put on the response.
func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
