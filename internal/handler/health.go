package handler // declare the package name; contains HTTP handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/leisure-tvshows/internal/database"
)

// HealthHandler answers load balancer and monitoring probes.
type HealthHandler struct {
	Pool database.Pool
}

// Health returns "ok" with 200 when the database answers a ping within two
// seconds, and 503 otherwise.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.Pool.Ping(ctx); err != nil {
		return c.String(http.StatusServiceUnavailable, "database unavailable")
	}
	return c.String(http.StatusOK, "ok") // String writes plain text
}
