// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// EnsureSchema applies the necessary DDL to create the audit tables if
// they don't exist. Amounts are stored as NUMERIC(78, 0), wide enough for
// any 256-bit integer.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS deposit_events (
			event_id SERIAL PRIMARY KEY,
			pool_id BIGINT NOT NULL,
			caller VARCHAR(255) NOT NULL,
			owner_account VARCHAR(255) NOT NULL,
			assets NUMERIC(78, 0) NOT NULL,
			shares NUMERIC(78, 0) NOT NULL,
			event_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_deposit_events_pool ON deposit_events(pool_id, event_timestamp DESC);

		CREATE TABLE IF NOT EXISTS withdraw_events (
			event_id SERIAL PRIMARY KEY,
			pool_id BIGINT NOT NULL,
			caller VARCHAR(255) NOT NULL,
			receiver VARCHAR(255) NOT NULL,
			owner_account VARCHAR(255) NOT NULL,
			assets NUMERIC(78, 0) NOT NULL,
			shares NUMERIC(78, 0) NOT NULL,
			event_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_withdraw_events_pool ON withdraw_events(pool_id, event_timestamp DESC);

		CREATE TABLE IF NOT EXISTS transfer_records (
			record_id SERIAL PRIMARY KEY,
			pool_id BIGINT NOT NULL,
			from_account VARCHAR(255) NOT NULL,
			to_account VARCHAR(255) NOT NULL,
			shares NUMERIC(78, 0) NOT NULL,
			event_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_transfer_records_pool ON transfer_records(pool_id, event_timestamp DESC);
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured (deposit_events, withdraw_events, transfer_records).")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
