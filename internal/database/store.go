// internal/database/store.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fortyone/internal/models"
)

// ErrGameNotFound is returned when no game matches the given id or code.
var ErrGameNotFound = errors.New("game not found")

// Store is the persistence collaborator. Each write method commits a
// whole operation's effects in one transaction, so a partially applied
// play is never visible to other requests.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps a connected pgx pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateGame inserts a fresh game row and its host player atomically.
func (s *Store) CreateGame(ctx context.Context, g *models.Game, host *models.Player) error {
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if err := insertGame(ctx, tx, g); err != nil {
			return err
		}
		return upsertPlayer(ctx, tx, host)
	})
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}
	return nil
}

// GameIDByCode resolves a normalized join code to a game id.
func (s *Store) GameIDByCode(ctx context.Context, code string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `SELECT id FROM games WHERE code = $1`, code).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrGameNotFound
		}
		return uuid.Nil, fmt.Errorf("looking up game code: %w", err)
	}
	return id, nil
}

// LoadGame fetches a game row plus its players ordered by join order.
func (s *Store) LoadGame(ctx context.Context, id uuid.UUID) (*models.Game, []*models.Player, error) {
	g := &models.Game{}
	var currentPlayer *uuid.UUID
	err := s.pool.QueryRow(ctx, `
		SELECT id, code, status, current_total, current_player_id, round_number
		FROM games WHERE id = $1
	`, id).Scan(&g.ID, &g.Code, &g.Status, &g.CurrentTotal, &currentPlayer, &g.RoundNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrGameNotFound
		}
		return nil, nil, fmt.Errorf("loading game: %w", err)
	}
	if currentPlayer != nil {
		g.CurrentPlayerID = *currentPlayer
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, game_id, name, eliminated, hand, join_order
		FROM players WHERE game_id = $1 ORDER BY join_order
	`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("loading players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		p := &models.Player{}
		var hand []byte
		if err := rows.Scan(&p.ID, &p.GameID, &p.Name, &p.Eliminated, &hand, &p.JoinOrder); err != nil {
			return nil, nil, fmt.Errorf("scanning player: %w", err)
		}
		if err := json.Unmarshal(hand, &p.Hand); err != nil {
			return nil, nil, fmt.Errorf("decoding hand for player %s: %w", p.ID, err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating players: %w", err)
	}
	return g, players, nil
}

// SavePlayer upserts a single player row, typically after a join.
func (s *Store) SavePlayer(ctx context.Context, p *models.Player) error {
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return upsertPlayer(ctx, tx, p)
	})
	if err != nil {
		return fmt.Errorf("saving player: %w", err)
	}
	return nil
}

// SaveSnapshot commits a complete post-operation state: the game row,
// every player row, and any play-log entries appended by the
// operation. All or nothing.
func (s *Store) SaveSnapshot(ctx context.Context, g *models.Game, players []*models.Player, entries []*models.PlayLogEntry) error {
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if err := updateGame(ctx, tx, g); err != nil {
			return err
		}
		for _, p := range players {
			if err := upsertPlayer(ctx, tx, p); err != nil {
				return err
			}
		}
		for _, e := range entries {
			if err := appendLogEntry(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// CountPlayers returns the number of seated players in a game.
func (s *Store) CountPlayers(ctx context.Context, gameID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM players WHERE game_id = $1`, gameID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting players: %w", err)
	}
	return count, nil
}

func insertGame(ctx context.Context, tx pgx.Tx, g *models.Game) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO games (id, code, status, current_total, current_player_id, round_number)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, g.ID, g.Code, g.Status, g.CurrentTotal, nullableID(g.CurrentPlayerID), g.RoundNumber)
	return err
}

func updateGame(ctx context.Context, tx pgx.Tx, g *models.Game) error {
	_, err := tx.Exec(ctx, `
		UPDATE games
		SET status = $2, current_total = $3, current_player_id = $4, round_number = $5
		WHERE id = $1
	`, g.ID, g.Status, g.CurrentTotal, nullableID(g.CurrentPlayerID), g.RoundNumber)
	return err
}

func upsertPlayer(ctx context.Context, tx pgx.Tx, p *models.Player) error {
	hand, err := json.Marshal(p.Hand)
	if err != nil {
		return fmt.Errorf("encoding hand: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO players (id, game_id, name, eliminated, hand, join_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET eliminated = $4, hand = $5
	`, p.ID, p.GameID, p.Name, p.Eliminated, hand, p.JoinOrder)
	return err
}

func appendLogEntry(ctx context.Context, tx pgx.Tx, e *models.PlayLogEntry) error {
	card, err := json.Marshal(e.Card)
	if err != nil {
		return fmt.Errorf("encoding card: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO play_log (game_id, player_id, card, total_after, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, e.GameID, e.PlayerID, card, e.TotalAfter, e.Timestamp)
	return err
}

func nullableID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
