// Package handler exposes the HTTP handlers.  This file holds the show
// handlers: list, search and detail.  All three follow the same lifecycle:
// acquire a pooled connection, run one query, shape the rows, render, and
// release the connection on every exit path.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/leisure-tvshows/internal/database"
	"github.com/iliyamo/leisure-tvshows/internal/logger"
	"github.com/iliyamo/leisure-tvshows/internal/model"
	"github.com/iliyamo/leisure-tvshows/internal/repository"
	"github.com/iliyamo/leisure-tvshows/internal/view"
)

// detailOffers are the representations the detail handler can produce, in
// order of preference when the client has none.
var detailOffers = []string{echo.MIMETextHTML, echo.MIMEApplicationJSON}

// ShowHandler serves one mounted group of show routes.  Root and DetailBase
// are the only things that differ between mounts; use At to derive a
// handler for another mount.
type ShowHandler struct {
	Pool         database.Pool   // shared connection pool
	Errors       *ErrorFormatter // formats every 500 body
	Log          *slog.Logger
	QueryTimeout time.Duration // deadline for acquire+query; zero means none
	Root         string        // effective mount root, handed to the list view
	DetailBase   string        // path that detail links are built on
}

// NewShowHandler builds a handler mounted at the site root.
func NewShowHandler(pool database.Pool, errs *ErrorFormatter, log *slog.Logger, timeout time.Duration) *ShowHandler {
	if log == nil {
		log = logger.Discard()
	}
	if errs == nil {
		errs = NewErrorFormatter(false, log)
	}
	return &ShowHandler{Pool: pool, Errors: errs, Log: log, QueryTimeout: timeout, Root: "/", DetailBase: "/show"}
}

// At returns a copy of h for a different mount.
func (h *ShowHandler) At(root, detailBase string) *ShowHandler {
	cp := *h
	cp.Root = root
	cp.DetailBase = detailBase
	return &cp
}

// List renders the index page: at most 20 shows, reduced to name and tvid,
// sorted by name in descending order.
func (h *ShowHandler) List(c echo.Context) error {
	ctx, conn, release, err := h.acquire(c)
	if err != nil {
		return h.Errors.JSON(c, err)
	}
	defer release()

	rows, err := repository.ListAll(ctx, conn)
	if err != nil {
		return h.Errors.JSON(c, err)
	}

	shows := model.Summaries(rows)
	model.SortDesc(shows)

	return c.Render(http.StatusOK, view.PageIndex, echo.Map{
		"shows":      shows,
		"root":       h.Root,
		"detailBase": h.DetailBase,
	})
}

// Search renders the results page for ?q=.  A missing q searches for the
// empty string, which matches every show.  Search never answers 404; an
// empty result is a 200 with hasResult=false.
func (h *ShowHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")

	ctx, conn, release, err := h.acquire(c)
	if err != nil {
		return h.Errors.HTML(c, err)
	}
	defer release()

	rows, err := repository.FindByName(ctx, conn, q)
	if err != nil {
		return h.Errors.HTML(c, err)
	}

	return c.Render(http.StatusOK, view.PageResults, echo.Map{
		"result":     rows,
		"hasResult":  len(rows) > 0,
		"q":          q,
		"detailBase": h.DetailBase,
	})
}

// Detail serves a single show.  The tvid path segment is passed to the
// query as-is.  No row means 404 with a plain "Not found: <tvid>" body.
// Otherwise the first row is rendered as HTML, JSON, or, for any other
// Accept value, as a JSON string with a text/plain content type.
func (h *ShowHandler) Detail(c echo.Context) error {
	tvid := c.Param("tvid")

	ctx, conn, release, err := h.acquire(c)
	if err != nil {
		return h.Errors.JSON(c, err)
	}
	defer release()

	show, err := repository.GetByID(ctx, conn, tvid)
	if errors.Is(err, repository.ErrNotFound) {
		return c.String(http.StatusNotFound, "Not found: "+tvid)
	}
	if err != nil {
		return h.Errors.JSON(c, err)
	}

	c.Response().Header().Add(echo.HeaderVary, echo.HeaderAccept)
	switch preferredType(c.Request().Header.Get(echo.HeaderAccept), detailOffers) {
	case echo.MIMETextHTML:
		return c.Render(http.StatusOK, view.PageShow, echo.Map{"show": show})
	case echo.MIMEApplicationJSON:
		return c.JSON(http.StatusOK, show)
	default:
		b, err := json.Marshal(show)
		if err != nil {
			return h.Errors.JSON(c, err)
		}
		return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, b)
	}
}

// acquire checks out a connection under the query deadline.  The returned
// release func must be deferred; it returns the connection and cancels the
// deadline.  The deadline context is detached from the request, so a client
// that goes away does not abort a running query.
func (h *ShowHandler) acquire(c echo.Context) (context.Context, database.Conn, func(), error) {
	ctx := context.WithoutCancel(c.Request().Context())
	cancel := context.CancelFunc(func() {})
	if h.QueryTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, h.QueryTimeout)
	}

	conn, err := h.Pool.Acquire(ctx)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}

	release := func() {
		if err := conn.Release(); err != nil {
			h.Log.Warn("release connection", "path", c.Request().URL.Path, "err", err)
		}
		cancel()
	}
	return ctx, conn, release, nil
}
