package ledger

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store used by tests and development runs
// without a Redis server. Every operation takes the store lock, so the
// atomicity contract matches the Redis implementation.
type MemoryStore struct {
	mu      sync.Mutex
	scores  map[string]int64
	history map[string][]Record
	board   map[string]int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		scores:  make(map[string]int64),
		history: make(map[string][]Record),
		board:   make(map[string]int64),
	}
}

func (s *MemoryStore) IncrScore(_ context.Context, user string, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[user] += amount
	return s.scores[user], nil
}

func (s *MemoryStore) Score(_ context.Context, user string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scores[user], nil
}

func (s *MemoryStore) PushHistory(_ context.Context, user string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[user] = append([]Record{rec}, s.history[user]...)
	return nil
}

func (s *MemoryStore) History(_ context.Context, user string, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.history[user]
	if len(records) > limit {
		records = records[:limit]
	}
	out := make([]Record, len(records))
	copy(out, records)
	return out, nil
}

func (s *MemoryStore) IncrLeaderboard(_ context.Context, user string, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board[user] += amount
	return nil
}

func (s *MemoryStore) Leaderboard(_ context.Context, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]Entry, 0, len(s.board))
	for user, score := range s.board {
		entries = append(entries, Entry{Username: user, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Username < entries[j].Username
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
