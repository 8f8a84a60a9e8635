package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// snapshotClient is the subset of *redis.Client the snapshot sink uses.
type snapshotClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// RedisSnapshot keeps the most recent artifacts in Redis so dashboards can
// read them without access to the output folder.
//
// Keys:
//
//	<prefix>:latest   content of the last artifact written
//	<prefix>:<name>   content of artifact name
type RedisSnapshot struct {
	client snapshotClient
	prefix string
	header string
	ttl    time.Duration
}

// NewRedisSnapshot connects to addr and checks the connection.
func NewRedisSnapshot(ctx context.Context, addr, password string, db int, prefix, header string, ttl time.Duration) (*RedisSnapshot, error) {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return newRedisSnapshot(c, prefix, header, ttl), nil
}

func newRedisSnapshot(c snapshotClient, prefix, header string, ttl time.Duration) *RedisSnapshot {
	return &RedisSnapshot{client: c, prefix: prefix, header: header, ttl: ttl}
}

// Dump implements Sink.
func (r *RedisSnapshot) Dump(ctx context.Context, name string, lines []string) error {
	var b strings.Builder
	b.WriteString(r.header)
	for _, l := range lines {
		b.WriteByte('\n')
		b.WriteString(l)
	}
	content := b.String()

	if err := r.client.Set(ctx, r.key(name), content, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", name, err)
	}
	if err := r.client.Set(ctx, r.key("latest"), content, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set latest: %w", err)
	}
	return nil
}

// Close releases the client connection pool.
func (r *RedisSnapshot) Close() error {
	return r.client.Close()
}

func (r *RedisSnapshot) key(suffix string) string {
	return r.prefix + ":" + suffix
}
