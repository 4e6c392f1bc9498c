package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS match_history (
	id UUID PRIMARY KEY,
	played_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	difficulty TEXT NOT NULL,
	player1_name TEXT NOT NULL,
	player2_name TEXT NOT NULL,
	player1_score INT NOT NULL,
	player2_score INT NOT NULL,
	winner_seat SMALLINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_match_history_played_at ON match_history(played_at DESC);
`

// MatchRecord is one finished game in the history table.
// WinnerSeat is 1, 2, or 0 for a tie.
type MatchRecord struct {
	ID           string    `json:"id"`
	PlayedAt     time.Time `json:"playedAt"`
	Difficulty   string    `json:"difficulty"`
	Player1Name  string    `json:"player1Name"`
	Player2Name  string    `json:"player2Name"`
	Player1Score int       `json:"player1Score"`
	Player2Score int       `json:"player2Score"`
	WinnerSeat   int       `json:"winnerSeat"`
}

// Store persists match history to Postgres via a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the database, ensures the schema exists and returns the store.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	slog.Info("match history store ready", "tag", "storage")
	return &Store{pool: pool}, nil
}

// InsertMatchResult records one finished game.
func (s *Store) InsertMatchResult(ctx context.Context, matchID, difficulty, player1Name, player2Name string, player1Score, player2Score, winnerSeat int) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO match_history (id, difficulty, player1_name, player2_name, player1_score, player2_score, winner_seat)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		matchID, difficulty, player1Name, player2Name, player1Score, player2Score, winnerSeat)
	if err != nil {
		return fmt.Errorf("inserting match result: %w", err)
	}
	return nil
}

// ListRecent returns the most recent finished games, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]MatchRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, played_at, difficulty, player1_name, player2_name, player1_score, player2_score, winner_seat
		FROM match_history
		ORDER BY played_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying match history: %w", err)
	}
	defer rows.Close()

	var records []MatchRecord
	for rows.Next() {
		var r MatchRecord
		if err := rows.Scan(&r.ID, &r.PlayedAt, &r.Difficulty, &r.Player1Name, &r.Player2Name, &r.Player1Score, &r.Player2Score, &r.WinnerSeat); err != nil {
			return nil, fmt.Errorf("scanning match record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
