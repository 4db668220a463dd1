package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/leisure-tvshows/internal/config"
	"github.com/iliyamo/leisure-tvshows/internal/model"
)

// ErrReleased is returned by Query on a connection that was already handed
// back to the pool.
var ErrReleased = errors.New("connection already released")

// Conn is a single connection checked out of a Pool.  Release must be called
// exactly once when the caller is done; further calls are no-ops.
type Conn interface {
	Query(ctx context.Context, query string, args ...any) ([]model.Show, error)
	Ping(ctx context.Context) error
	Release() error
}

// Pool hands out and reclaims connections.
type Pool interface {
	Acquire(ctx context.Context) (Conn, error)
	Ping(ctx context.Context) error
	Close() error
}

// SQLPool implements Pool on top of database/sql's built-in pooling.
type SQLPool struct {
	db *sql.DB
}

// MySQLConfig translates cfg into a driver config.  parseTime=true turns
// DATETIME columns into time.Time, interpreted in cfg.Location.
func MySQLConfig(cfg config.DBConfig) *mysql.Config {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	mc.DBName = cfg.Name
	mc.ParseTime = true
	if cfg.Location != nil {
		mc.Loc = cfg.Location
	}
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc
}

// Open creates the MySQL pool.  It does not talk to the server; use Verify
// for the startup connectivity check.  The connector is built from the
// config struct directly because a fixed offset zone has no DSN spelling.
func Open(cfg config.DBConfig) (*SQLPool, error) {
	connector, err := mysql.NewConnector(MySQLConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)

	// Pool settings
	limit := cfg.ConnectionLimit
	if limit < 1 {
		limit = 4
	}
	db.SetMaxOpenConns(limit)
	db.SetMaxIdleConns(limit)
	db.SetConnMaxLifetime(30 * time.Minute)

	return NewSQLPool(db), nil
}

// NewSQLPool wraps an already opened handle.
func NewSQLPool(db *sql.DB) *SQLPool {
	return &SQLPool{db: db}
}

// DB exposes the underlying handle.
func (p *SQLPool) DB() *sql.DB { return p.db }

// Acquire checks a dedicated connection out of the pool.  It blocks while
// the pool is at its limit, until ctx expires.
func (p *SQLPool) Acquire(ctx context.Context) (Conn, error) {
	c, err := p.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &sqlConn{conn: c}, nil
}

func (p *SQLPool) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *SQLPool) Close() error {
	return p.db.Close()
}

type sqlConn struct {
	conn *sql.Conn

	once     sync.Once
	released bool
	err      error
}

func (c *sqlConn) Query(ctx context.Context, query string, args ...any) ([]model.Show, error) {
	if c.released {
		return nil, ErrReleased
	}
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanShows(rows)
}

func (c *sqlConn) Ping(ctx context.Context) error {
	if c.released {
		return ErrReleased
	}
	return c.conn.PingContext(ctx)
}

// Release returns the connection to the pool.
func (c *sqlConn) Release() error {
	c.once.Do(func() {
		c.released = true
		c.err = c.conn.Close()
	})
	return c.err
}

// scanShows reads every row into a column->value map.  Text columns come
// back from the driver as []byte and are stored as strings.
func scanShows(rows *sql.Rows) ([]model.Show, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	out := []model.Show{}
	for rows.Next() {
		vals := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		row := make(model.Show, len(columns))
		for i, col := range columns {
			switch v := vals[i].(type) {
			case []byte:
				row[col] = string(v)
			default:
				row[col] = v
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Verify is the startup gate: acquire one connection, ping it and release it.
func Verify(ctx context.Context, p Pool) error {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}
