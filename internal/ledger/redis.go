package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis primitives: INCRBY for scores, LPUSH
// and LRANGE for history, ZINCRBY and ZREVRANGE for the leaderboard.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore connects a store to the given Redis server. All keys carry
// the configured prefix so several bots can share one server.
func NewRedisStore(addr, password string, db int, prefix string) *RedisStore {
	return &RedisStore{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		prefix: prefix,
	}
}

// Ping verifies the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close releases the client's connections.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) scoreKey(user string) string   { return s.prefix + "score:" + user }
func (s *RedisStore) historyKey(user string) string { return s.prefix + "history:" + user }
func (s *RedisStore) leaderboardKey() string        { return s.prefix + "leaderboard" }

// IncrScore atomically adds amount and returns the new score.
func (s *RedisStore) IncrScore(ctx context.Context, user string, amount int64) (int64, error) {
	return s.rdb.IncrBy(ctx, s.scoreKey(user), amount).Result()
}

// Score returns the current score, zero when absent.
func (s *RedisStore) Score(ctx context.Context, user string) (int64, error) {
	val, err := s.rdb.Get(ctx, s.scoreKey(user)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return val, err
}

// PushHistory prepends one JSON-encoded record.
func (s *RedisStore) PushHistory(ctx context.Context, user string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return s.rdb.LPush(ctx, s.historyKey(user), data).Err()
}

// History returns up to limit records, newest first.
func (s *RedisStore) History(ctx context.Context, user string, limit int) ([]Record, error) {
	items, err := s.rdb.LRange(ctx, s.historyKey(user), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(items))
	for _, item := range items {
		var rec Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			// Skip records written by other/older tooling rather than
			// failing the whole read.
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// IncrLeaderboard adds amount to the user's leaderboard entry. ZINCRBY keeps
// the upsert a single atomic primitive and converges to the same value as
// the score counter under concurrent adjustments.
func (s *RedisStore) IncrLeaderboard(ctx context.Context, user string, amount int64) error {
	return s.rdb.ZIncrBy(ctx, s.leaderboardKey(), float64(amount), user).Err()
}

// Leaderboard returns the top users by score, descending, ranked from 1.
func (s *RedisStore) Leaderboard(ctx context.Context, limit int) ([]Entry, error) {
	members, err := s.rdb.ZRevRangeWithScores(ctx, s.leaderboardKey(), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(members))
	for i, m := range members {
		user, _ := m.Member.(string)
		entries = append(entries, Entry{
			Username: user,
			Score:    int64(m.Score),
			Rank:     i + 1,
		})
	}
	return entries, nil
}
