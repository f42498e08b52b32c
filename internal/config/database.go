package config

import (
	"fmt"
	"os"
)

const (
	databaseDSNEnv      = "DATABASE_DSN"
	databaseHostEnv     = "DATABASE_HOST"
	databasePortEnv     = "DATABASE_PORT"
	databaseUserEnv     = "DATABASE_USER"
	databasePasswordEnv = "DATABASE_PASSWORD"
	databaseNameEnv     = "DATABASE_NAME"
	databaseSSLModeEnv  = "DATABASE_SSLMODE"

	defaultDatabaseHost    = "localhost"
	defaultDatabasePort    = "5432"
	defaultDatabaseSSLMode = "disable"
)

type DatabaseConfig struct {
	DSN string
}

// LoadDatabaseConfig prefers a full DATABASE_DSN and otherwise assembles one
// from the discrete DATABASE_* variables.
func LoadDatabaseConfig() (*DatabaseConfig, error) {
	if dsn := os.Getenv(databaseDSNEnv); dsn != "" {
		return &DatabaseConfig{DSN: dsn}, nil
	}

	user := os.Getenv(databaseUserEnv)
	name := os.Getenv(databaseNameEnv)
	if user == "" || name == "" {
		return nil, ErrDatabaseConfigMissing
	}

	host := os.Getenv(databaseHostEnv)
	if host == "" {
		host = defaultDatabaseHost
	}
	port := os.Getenv(databasePortEnv)
	if port == "" {
		port = defaultDatabasePort
	}
	sslMode := os.Getenv(databaseSSLModeEnv)
	if sslMode == "" {
		sslMode = defaultDatabaseSSLMode
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
		host, port, user, name, sslMode)
	if password := os.Getenv(databasePasswordEnv); password != "" {
		dsn += " password=" + password
	}

	return &DatabaseConfig{DSN: dsn}, nil
}

func (c *DatabaseConfig) Validate() error {
	if c == nil || c.DSN == "" {
		return ErrDatabaseConfigMissing
	}
	return nil
}
