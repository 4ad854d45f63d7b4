package database

import "errors"

// ErrUnavailable indicates the database could not be reached or no connection was provided.
var ErrUnavailable = errors.New("database unavailable")
