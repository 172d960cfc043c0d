package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// interruptTTL bounds how long a recorded interrupt survives without being
// cleared, so a crashed clearer doesn't wedge a target forever.
const interruptTTL = 24 * time.Hour

// RedisInterruptStore is a Redis-backed Interrupt/Interrupted/ClearInterrupt
// implementation, grounded on the teacher's
// internal/orchestrator/dedupe.go RedisDedupeStore (Get/Set over a plain
// client, TTL'd keys for idempotency) adapted from string values to
// JSON-encoded Interruption values.
type RedisInterruptStore struct {
	client *redis.Client
}

// NewRedisInterruptStore connects to addr (e.g. "localhost:6379") and pings
// it to validate the connection before returning.
func NewRedisInterruptStore(addr, password string, db int) (*RedisInterruptStore, error) {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("eventbus: redis ping failed: %w", err)
	}
	return &RedisInterruptStore{client: c}, nil
}

func interruptKey(target string) string { return "cogmem:interrupt:" + target }

func (s *RedisInterruptStore) Set(ctx context.Context, target string, i Interruption) error {
	data, err := json.Marshal(i)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, interruptKey(target), data, interruptTTL).Err()
}

func (s *RedisInterruptStore) Get(ctx context.Context, target string) (Interruption, bool) {
	val, err := s.client.Get(ctx, interruptKey(target)).Result()
	if err == redis.Nil || err != nil || val == "" {
		return Interruption{}, false
	}
	var i Interruption
	if err := json.Unmarshal([]byte(val), &i); err != nil {
		return Interruption{}, false
	}
	return i, true
}

func (s *RedisInterruptStore) Clear(ctx context.Context, target string) error {
	return s.client.Del(ctx, interruptKey(target)).Err()
}

func (s *RedisInterruptStore) Close() error {
	return s.client.Close()
}
