package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Config holds database configuration
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// Postgres represents a PostgreSQL connection
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a new PostgreSQL connection
func NewPostgres(cfg Config) (*Postgres, error) {
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Postgres{db: db}, nil
}

// DB exposes the underlying connection pool.
func (p *Postgres) DB() *sql.DB {
	return p.db
}

// Close closes the database connection
func (p *Postgres) Close() error {
	return p.db.Close()
}

// Ping verifies the database connection
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// CreateTables creates the necessary database tables
func (p *Postgres) CreateTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS organization_patterns (
			id UUID PRIMARY KEY,
			owner_id VARCHAR(255) NOT NULL,
			kind VARCHAR(64) NOT NULL,
			trigger_key TEXT NOT NULL,
			mime_type VARCHAR(255),
			extension VARCHAR(64),
			name_regexp TEXT,
			source_folder_id VARCHAR(255),
			project_label VARCHAR(255),
			hour_of_day SMALLINT NOT NULL DEFAULT -1,
			day_of_week SMALLINT NOT NULL DEFAULT -1,
			destination_folder_id VARCHAR(255) NOT NULL,
			destination_folder_name VARCHAR(255) NOT NULL DEFAULT '',
			confidence DOUBLE PRECISION NOT NULL CHECK (confidence >= 0 AND confidence <= 1),
			occurrences INTEGER NOT NULL CHECK (occurrences >= 1),
			first_seen TIMESTAMPTZ NOT NULL,
			last_occurrence TIMESTAMPTZ NOT NULL,
			preceding_action VARCHAR(255),
			minutes_since_upload INTEGER NOT NULL DEFAULT 0,
			size_band VARCHAR(32),
			ai_explanation TEXT,
			accepted_count INTEGER NOT NULL DEFAULT 0,
			rejected_count INTEGER NOT NULL DEFAULT 0,
			ignored_count INTEGER NOT NULL DEFAULT 0,
			recent_feedback JSONB NOT NULL DEFAULT '[]',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			version BIGINT NOT NULL DEFAULT 1,
			CHECK (last_occurrence >= first_seen)
		)`,
		// Reinforcement upserts target this partial index: one active
		// pattern per owner per (kind, trigger, destination).
		`CREATE UNIQUE INDEX IF NOT EXISTS organization_patterns_active_key
			ON organization_patterns (owner_id, trigger_key)
			WHERE is_active`,
		`CREATE INDEX IF NOT EXISTS organization_patterns_owner_active
			ON organization_patterns (owner_id, last_occurrence DESC)
			WHERE is_active`,
	}

	for _, query := range queries {
		if _, err := p.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	return nil
}
