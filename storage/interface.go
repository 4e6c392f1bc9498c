package storage

import "context"

// HistoryStore abstracts persistence for finished-match history.
// Implementations can be swapped for testing (mocks) or different backends.
type HistoryStore interface {
	InsertMatchResult(ctx context.Context, matchID, difficulty, player1Name, player2Name string, player1Score, player2Score, winnerSeat int) error
	ListRecent(ctx context.Context, limit int) ([]MatchRecord, error)
	Close()
}

// Ensure *Store implements HistoryStore at compile time.
var _ HistoryStore = (*Store)(nil)
