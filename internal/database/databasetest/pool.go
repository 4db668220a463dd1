// Package databasetest provides an in-memory database.Pool for tests.  It
// serves the tv_shows statements from a slice of rows and counts every
// acquire and release so tests can assert that connections never leak.
package databasetest

import (
	"context"
	"strings"
	"sync"

	"github.com/iliyamo/leisure-tvshows/internal/database"
	"github.com/iliyamo/leisure-tvshows/internal/model"
)

// Call records one statement run through a fake connection.
type Call struct {
	Query string
	Args  []any
}

// Pool is a fake database.Pool backed by Table.
type Pool struct {
	Table      []model.Show
	AcquireErr error // returned by Acquire when set
	QueryErr   error // returned by every Query when set
	PingErr    error

	mu       sync.Mutex
	acquired int
	released int
	calls    []Call
}

var _ database.Pool = (*Pool)(nil)

// NewPool returns a pool serving rows.
func NewPool(rows ...model.Show) *Pool {
	return &Pool{Table: rows}
}

func (p *Pool) Acquire(ctx context.Context) (database.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.AcquireErr != nil {
		return nil, p.AcquireErr
	}
	p.mu.Lock()
	p.acquired++
	p.mu.Unlock()
	return &conn{pool: p}, nil
}

func (p *Pool) Ping(context.Context) error { return p.PingErr }
func (p *Pool) Close() error               { return nil }

// Acquired is the number of successful Acquire calls.
func (p *Pool) Acquired() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquired
}

// Released is the number of connections handed back.
func (p *Pool) Released() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}

// Calls returns the statements run so far.
func (p *Pool) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}

type conn struct {
	pool     *Pool
	released bool
}

func (c *conn) Query(_ context.Context, query string, args ...any) ([]model.Show, error) {
	if c.released {
		return nil, database.ErrReleased
	}
	p := c.pool
	p.mu.Lock()
	p.calls = append(p.calls, Call{Query: query, Args: args})
	p.mu.Unlock()
	if p.QueryErr != nil {
		return nil, p.QueryErr
	}
	return p.run(query, args), nil
}

func (c *conn) Ping(context.Context) error { return c.pool.PingErr }

func (c *conn) Release() error {
	if c.released {
		return nil
	}
	c.released = true
	c.pool.mu.Lock()
	c.pool.released++
	c.pool.mu.Unlock()
	return nil
}

// run understands just enough of the catalog statements: an equality on
// tvid, a %term% LIKE on name, and LIMIT 20.
func (p *Pool) run(query string, args []any) []model.Show {
	out := []model.Show{}
	for _, row := range p.Table {
		switch {
		case strings.Contains(query, "tvid = ?"):
			if row.TVID() != arg(args) {
				continue
			}
		case strings.Contains(query, "name LIKE ?"):
			term := strings.TrimSuffix(strings.TrimPrefix(arg(args), "%"), "%")
			if !strings.Contains(row.Name(), term) {
				continue
			}
		}
		out = append(out, row)
	}
	if strings.Contains(query, "LIMIT 20") && len(out) > 20 {
		out = out[:20]
	}
	return out
}

func arg(args []any) string {
	if len(args) == 0 {
		return ""
	}
	s, _ := args[0].(string)
	return s
}
