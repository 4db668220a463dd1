package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/leisure-tvshows/internal/database/databasetest"
	"github.com/iliyamo/leisure-tvshows/internal/handler"
	"github.com/iliyamo/leisure-tvshows/internal/logger"
	"github.com/iliyamo/leisure-tvshows/internal/model"
	"github.com/iliyamo/leisure-tvshows/internal/view"
)

func newApp(t *testing.T, pool *databasetest.Pool) *echo.Echo {
	t.Helper()
	r, err := view.New()
	require.NoError(t, err)

	e := echo.New()
	e.Renderer = r
	Configure(e, logger.Discard())
	RegisterRoutes(e, &handler.HealthHandler{Pool: pool})

	base := handler.NewShowHandler(pool, nil, nil, 0)
	for _, m := range DefaultMounts() {
		RegisterShows(e, base, m)
	}
	return e
}

func TestMount_Paths(t *testing.T) {
	mounts := DefaultMounts()

	assert.Equal(t, "/", mounts[0].Root())
	assert.Equal(t, "/show", mounts[0].DetailBase())
	assert.Equal(t, "/tvshows", mounts[1].Root())
	assert.Equal(t, "/tvshows", mounts[1].DetailBase())
}

func TestRoutes(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		accept   string
		status   int
		contains string
	}{
		{name: "root list", target: "/", status: http.StatusOK, contains: `href="/show/123"`},
		{name: "mounted list", target: "/tvshows", status: http.StatusOK, contains: `href="/tvshows/123"`},
		{name: "mounted list trailing slash", target: "/tvshows/", status: http.StatusOK, contains: `href="/tvshows/123"`},
		{name: "search", target: "/search?q=Twin", status: http.StatusOK, contains: "Twin Peaks"},
		{name: "root detail", target: "/show/123", accept: "text/html", status: http.StatusOK, contains: "<h1>Twin Peaks</h1>"},
		{name: "mounted detail", target: "/tvshows/123", accept: "application/json", status: http.StatusOK, contains: `"name":"Twin Peaks"`},
		{name: "detail not found", target: "/show/does-not-exist", status: http.StatusNotFound, contains: "Not found: does-not-exist"},
		{name: "mounted detail not found", target: "/tvshows/42", status: http.StatusNotFound, contains: "Not found: 42"},
		{name: "health", target: "/healthz", status: http.StatusOK, contains: "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := databasetest.NewPool(
				model.Show{"tvid": int64(123), "name": "Twin Peaks"},
				model.Show{"tvid": int64(7), "name": "Dark"},
			)
			e := newApp(t, pool)

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.accept != "" {
				req.Header.Set(echo.HeaderAccept, tt.accept)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
			assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)
			assert.Equal(t, pool.Acquired(), pool.Released())
		})
	}
}

func TestRoutes_SearchOnlyAtRoot(t *testing.T) {
	pool := databasetest.NewPool(model.Show{"tvid": int64(1), "name": "Alpha"})
	e := newApp(t, pool)

	// under /tvshows "search" is just an unknown tvid
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tvshows/search", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found: search", rec.Body.String())
}

func TestRoutes_QueryErrorReleasesConnection(t *testing.T) {
	pool := databasetest.NewPool()
	pool.QueryErr = assert.AnError
	e := newApp(t, pool)

	for _, target := range []string{"/", "/tvshows", "/search?q=a", "/show/1", "/tvshows/1"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code, target)
	}
	assert.Equal(t, 5, pool.Acquired())
	assert.Equal(t, 5, pool.Released())
}
