// Package repository holds the fixed, parameterized statements run against
// the tv_shows table.  Every statement runs on a connection the caller has
// already acquired; the caller also owns releasing it.
package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/leisure-tvshows/internal/database"
	"github.com/iliyamo/leisure-tvshows/internal/model"
)

const (
	sqlFindByName = "SELECT * FROM tv_shows WHERE name LIKE ? LIMIT 20"
	sqlListAll    = "SELECT * FROM tv_shows LIMIT 20"
	sqlFindByID   = "SELECT * FROM tv_shows WHERE tvid = ?"
)

// LikePattern wraps term for a substring match.  An empty term yields "%%",
// which matches every row.
func LikePattern(term string) string {
	return "%" + term + "%"
}

// FindByName returns up to 20 shows whose name contains term.
func FindByName(ctx context.Context, conn database.Conn, term string) ([]model.Show, error) {
	rows, err := conn.Query(ctx, sqlFindByName, LikePattern(term))
	if err != nil {
		return nil, fmt.Errorf("find shows by name: %w", err)
	}
	return rows, nil
}

// ListAll returns up to 20 shows in whatever order the store yields.
func ListAll(ctx context.Context, conn database.Conn) ([]model.Show, error) {
	rows, err := conn.Query(ctx, sqlListAll)
	if err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}
	return rows, nil
}

// FindByID returns the rows matching tvid; normally zero or one.
func FindByID(ctx context.Context, conn database.Conn, tvid string) ([]model.Show, error) {
	rows, err := conn.Query(ctx, sqlFindByID, tvid)
	if err != nil {
		return nil, fmt.Errorf("find show %q: %w", tvid, err)
	}
	return rows, nil
}

// GetByID returns the first row matching tvid, or ErrNotFound.
func GetByID(ctx context.Context, conn database.Conn, tvid string) (model.Show, error) {
	rows, err := FindByID(ctx, conn, tvid)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}
