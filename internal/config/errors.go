package config

import "errors"

var (
	ErrRedisAddrMissing      = errors.New("REDIS_ADDR is required")
	ErrInvalidRedisDB        = errors.New("REDIS_DB must be a valid integer")
	ErrDatabaseConfigMissing = errors.New("DATABASE_DSN or DATABASE_USER and DATABASE_NAME are required")
)
