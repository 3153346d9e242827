package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fentz26/tasklist/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisSink mirrors journal entries into Redis as expiring keys.
type RedisSink struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// Journal writes run on the caller's goroutine, so an unreachable server
// must fail fast instead of stalling every mutation.
const (
	redisTimeout    = 250 * time.Millisecond
	redisMaxRetries = -1
)

// NewRedisSink connects lazily to the Redis server at addr.
func NewRedisSink(addr, password string, db int, ttl time.Duration, prefix string) *RedisSink {
	return NewRedisSinkWithClient(redis.NewClient(redisOptions(addr, password, db)), ttl, prefix)
}

func redisOptions(addr, password string, db int) *redis.Options {
	return &redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  redisTimeout,
		ReadTimeout:  redisTimeout,
		WriteTimeout: redisTimeout,
		MaxRetries:   redisMaxRetries,
	}
}

// NewRedisSinkWithClient wraps an existing client.
func NewRedisSinkWithClient(client *redis.Client, ttl time.Duration, prefix string) *RedisSink {
	if prefix == "" {
		prefix = "tasklist"
	}
	return &RedisSink{client: client, ttl: ttl, prefix: prefix}
}

// Key returns the Redis key used for entry.
func (r *RedisSink) Key(entry models.JournalEntry) string {
	return fmt.Sprintf("%s:%s:%d:%d", r.prefix, entry.Action, entry.TaskID, entry.Timestamp.UnixNano())
}

// WriteJournal stores entry as JSON under its key.
func (r *RedisSink) WriteJournal(ctx context.Context, entry models.JournalEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	return r.client.Set(ctx, r.Key(entry), raw, r.ttl).Err()
}

// Close releases the client connection pool.
func (r *RedisSink) Close() error {
	return r.client.Close()
}
