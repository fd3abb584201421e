package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hyperjump/rentassist/internal/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "rentassist:session:"

// RedisStore keeps each session as a Redis list of JSON turns.
type RedisStore struct {
	rdb      redis.UniversalClient
	ttl      time.Duration
	maxTurns int
}

// NewRedisStore creates a store on rdb. Sessions expire ttl after their last
// append (0 = never) and keep at most maxTurns turns (0 = unbounded).
func NewRedisStore(rdb redis.UniversalClient, ttl time.Duration, maxTurns int) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, maxTurns: maxTurns}
}

// DialRedis connects to addr and checks the connection.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func sessionKey(id string) string {
	return keyPrefix + id + ":turns"
}

// Append pushes turns, trims the list and refreshes the expiry in one
// transaction.
func (r *RedisStore) Append(ctx context.Context, sessionID string, turns ...models.ConversationTurn) error {
	if len(turns) == 0 {
		return nil
	}
	values := make([]any, 0, len(turns))
	for _, t := range turns {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encode turn: %w", err)
		}
		values = append(values, data)
	}
	key := sessionKey(sessionID)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		if r.maxTurns > 0 {
			pipe.LTrim(ctx, key, int64(-r.maxTurns), -1)
		}
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append turns: %w", err)
	}
	return nil
}

// Recent returns the last n turns (all when n <= 0), oldest first.
func (r *RedisStore) Recent(ctx context.Context, sessionID string, n int) ([]models.ConversationTurn, error) {
	start := int64(0)
	if n > 0 {
		start = int64(-n)
	}
	raw, err := r.rdb.LRange(ctx, sessionKey(sessionID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read turns: %w", err)
	}
	turns := make([]models.ConversationTurn, 0, len(raw))
	for _, s := range raw {
		var t models.ConversationTurn
		if err := json.Unmarshal([]byte(s), &t); err != nil {
			return nil, fmt.Errorf("decode turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

// Clear deletes the session.
func (r *RedisStore) Clear(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, sessionKey(sessionID)).Err()
}
