package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/stemcomputerscienceclub/STEMuiz/config"
)

type PostgresClient struct {
	db     *sql.DB
	config *config.DBConfig
}

func NewPostgresClient(cfg *config.DBConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{
		db:     db,
		config: cfg,
	}, nil
}

func (c *PostgresClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *PostgresClient) GetDB() *sql.DB {
	return c.db
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *PostgresClient) InitSchema(ctx context.Context) error {
	createGameSessionsTable := `
		CREATE TABLE IF NOT EXISTS game_sessions (
			id VARCHAR(64) PRIMARY KEY,
			quiz_id VARCHAR(255) NOT NULL,
			host_id VARCHAR(255) NOT NULL,
			pin CHAR(6) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'waiting',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			started_at TIMESTAMPTZ,
			ended_at TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_game_sessions_pin ON game_sessions(pin);
		CREATE INDEX IF NOT EXISTS idx_game_sessions_host_id ON game_sessions(host_id);
		CREATE INDEX IF NOT EXISTS idx_game_sessions_status ON game_sessions(status);
	`

	if _, err := c.db.ExecContext(ctx, createGameSessionsTable); err != nil {
		return fmt.Errorf("failed to create game_sessions table: %w", err)
	}

	return nil
}
