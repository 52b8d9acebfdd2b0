// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"fortyone/internal/models"
)

// DefaultQueueName is the Redis list (queue) name for play-log records.
const DefaultQueueName = "fortyone_plays"

// Connect initializes a Redis client with environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func Connect(ctx context.Context) (*redis.Client, error) {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return client, nil
}

// PlayQueue pushes accepted plays onto a Redis list for an
// out-of-process historian. Write-only from the game's perspective.
type PlayQueue struct {
	client *redis.Client
	name   string
}

// NewPlayQueue builds a queue over an existing client. The list name
// is taken from HISTORIAN_QUEUE_NAME when set.
func NewPlayQueue(client *redis.Client) *PlayQueue {
	return &PlayQueue{
		client: client,
		name:   getEnv("HISTORIAN_QUEUE_NAME", DefaultQueueName),
	}
}

// PublishPlay serializes the entry to JSON and RPushes it. Does not
// block beyond the network send.
func (q *PlayQueue) PublishPlay(ctx context.Context, entry *models.PlayLogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal PlayLogEntry: %w", err)
	}
	if err := q.client.RPush(ctx, q.name, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", q.name, err)
	}
	return nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
