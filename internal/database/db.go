// internal/database/db.go
package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect builds a pgx pool from the POSTGRES_* environment variables
// and verifies connectivity.
func Connect(ctx context.Context) (*pgxpool.Pool, error) {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("PG_HOST"),
		os.Getenv("PG_PORT"),
		os.Getenv("PG_DATABASE"),
	)

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id UUID PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL,
	current_total INT NOT NULL DEFAULT 0,
	current_player_id UUID,
	round_number INT NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS players (
	id UUID PRIMARY KEY,
	game_id UUID NOT NULL REFERENCES games(id),
	name TEXT NOT NULL,
	eliminated BOOLEAN NOT NULL DEFAULT FALSE,
	hand JSONB NOT NULL DEFAULT '[]'::jsonb,
	join_order INT NOT NULL,
	UNIQUE (game_id, join_order)
);

CREATE TABLE IF NOT EXISTS play_log (
	id BIGSERIAL PRIMARY KEY,
	game_id UUID NOT NULL REFERENCES games(id),
	player_id UUID NOT NULL,
	card JSONB NOT NULL,
	total_after INT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
