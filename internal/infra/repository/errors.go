package repository

import "errors"

var (
	ErrDatabaseConnection  = errors.New("database connection error")
	ErrInvalidInstanceData = errors.New("invalid instance data")
	ErrInvalidWindowData   = errors.New("invalid window data")
)
