package router // package router defines how HTTP routes are registered

import (
	"log/slog"
	"path"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/leisure-tvshows/internal/handler"
)

// Mount describes where one group of show routes lives.
//
//	Prefix        path the list page is served at ("" means the site root)
//	DetailPrefix  path under Prefix that detail pages hang off ("/show" gives
//	              {Prefix}/show/:tvid; "" gives {Prefix}/:tvid)
//	Search        whether {Prefix}/search is registered
type Mount struct {
	Prefix       string
	DetailPrefix string
	Search       bool
}

// DefaultMounts serves the same handlers twice: at the root ("/",
// "/search", "/show/:tvid") and under "/tvshows" ("/tvshows",
// "/tvshows/:tvid").
func DefaultMounts() []Mount {
	return []Mount{
		{Prefix: "", DetailPrefix: "/show", Search: true},
		{Prefix: "/tvshows", DetailPrefix: ""},
	}
}

// Root is the effective mount root handed to the list view.
func (m Mount) Root() string {
	if m.Prefix == "" {
		return "/"
	}
	return m.Prefix
}

// DetailBase is the path that "/<tvid>" is appended to for detail links.
func (m Mount) DetailBase() string {
	return path.Join("/", m.Prefix, m.DetailPrefix)
}

// Configure installs the middleware every route shares: trailing slash
// removal (so "/tvshows/" reaches "/tvshows"), request ids, panic recovery
// and request logging through slog.
func Configure(e *echo.Echo, log *slog.Logger) {
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				log.Error("request", append(attrs, "err", v.Error)...)
				return nil
			}
			log.Info("request", attrs...)
			return nil
		},
	}))
}

// RegisterRoutes registers routes that are not tied to a show mount.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, health *handler.HealthHandler) {
	e.GET("/healthz", health.Health)
}

// RegisterShows mounts the list, optional search and detail routes for m.
// base supplies the pool, error formatting and timeout; the copy registered
// here differs only in its mount paths.  mws run for every route in the
// group (cache, rate limit).
func RegisterShows(e *echo.Echo, base *handler.ShowHandler, m Mount, mws ...echo.MiddlewareFunc) {
	h := base.At(m.Root(), m.DetailBase())
	g := e.Group(m.Prefix, mws...)

	// list: "/" at the site root, the bare prefix otherwise
	if m.Prefix == "" {
		g.GET("/", h.List)
	} else {
		g.GET("", h.List)
	}
	if m.Search {
		g.GET("/search", h.Search)
	}
	g.GET(path.Join("/", m.DetailPrefix, ":tvid"), h.Detail)
}
