package repository

import "errors"

// ErrNotFound is returned by GetByID when no row carries the requested
// tvid.  Handlers translate it into a 404.
var ErrNotFound = errors.New("not found")
