// Package ledger implements the Redis-backed score ledger: per-user counters,
// an append-only history, and a global ranked leaderboard. Every mutation is
// a single atomic store primitive; there is no client-side read-modify-write.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Record is one signed score adjustment.
type Record struct {
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// Entry is one leaderboard row.
type Entry struct {
	Username string
	Score    int64
	Rank     int
}

// Store is the minimal atomic surface the ledger needs from its backing
// key-value store. RedisStore is the production implementation; MemoryStore
// backs tests and store-less development runs.
type Store interface {
	// IncrScore atomically adds amount to the user's score and returns the
	// new value.
	IncrScore(ctx context.Context, user string, amount int64) (int64, error)
	// Score returns the user's current score, zero when absent.
	Score(ctx context.Context, user string) (int64, error)
	// PushHistory atomically prepends a record to the user's history.
	PushHistory(ctx context.Context, user string, rec Record) error
	// History returns up to limit records, most recent first.
	History(ctx context.Context, user string, limit int) ([]Record, error)
	// IncrLeaderboard atomically adds amount to the user's leaderboard score.
	IncrLeaderboard(ctx context.Context, user string, amount int64) error
	// Leaderboard returns up to limit users by score, descending.
	Leaderboard(ctx context.Context, limit int) ([]Entry, error)
}

// NormalizeUser folds a handle into its ledger key form: trimmed,
// lower-cased, leading @ stripped. Handle variants collide to one entry.
func NormalizeUser(user string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(user), "@"))
}

// Service exposes the ledger operations used by the score tools.
type Service struct {
	store Store
}

// NewService creates a ledger service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetScore returns the user's current score, zero when the user has none.
func (s *Service) GetScore(ctx context.Context, user string) (int64, error) {
	return s.store.Score(ctx, NormalizeUser(user))
}

// AdjustScore applies a signed adjustment with a mandatory reason. The score
// increment, the history append, and the leaderboard upsert are each a single
// atomic store operation; they are not one cross-store transaction.
func (s *Service) AdjustScore(ctx context.Context, user string, amount int64, reason string) (int64, error) {
	if strings.TrimSpace(reason) == "" {
		return 0, fmt.Errorf("a reason is required for score adjustments")
	}
	key := NormalizeUser(user)
	if key == "" {
		return 0, fmt.Errorf("a username is required")
	}

	score, err := s.store.IncrScore(ctx, key, amount)
	if err != nil {
		return 0, fmt.Errorf("adjust score: %w", err)
	}
	rec := Record{Amount: amount, Reason: reason, Timestamp: time.Now().UTC()}
	if err := s.store.PushHistory(ctx, key, rec); err != nil {
		return score, fmt.Errorf("append history: %w", err)
	}
	if err := s.store.IncrLeaderboard(ctx, key, amount); err != nil {
		return score, fmt.Errorf("update leaderboard: %w", err)
	}
	return score, nil
}

// GetHistory returns the user's most recent adjustments, newest first.
func (s *Service) GetHistory(ctx context.Context, user string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.store.History(ctx, NormalizeUser(user), limit)
}

// GetLeaderboard returns the top users by score, descending, with rank.
func (s *Service) GetLeaderboard(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.store.Leaderboard(ctx, limit)
}
