package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	values map[string]interface{}
	ttls   map[string]time.Duration
	err    error
	closed bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]interface{}{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.values[key] = value
	f.ttls[key] = expiration
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisSnapshot_Dump(t *testing.T) {
	c := newFakeRedis()
	r := newRedisSnapshot(c, "powerposition", testHeader, time.Hour)

	require.NoError(t, r.Dump(context.Background(), "20240101_0905.csv", []string{"23:00;150", "00:00;80"}))

	want := "LocalTime;Volume\n23:00;150\n00:00;80"
	assert.Equal(t, want, c.values["powerposition:20240101_0905.csv"])
	assert.Equal(t, want, c.values["powerposition:latest"])
	assert.Equal(t, time.Hour, c.ttls["powerposition:latest"])

	require.NoError(t, r.Dump(context.Background(), "20240101_0910.csv", nil))
	assert.Equal(t, "LocalTime;Volume", c.values["powerposition:latest"])
	assert.Len(t, c.values, 3)

	require.NoError(t, r.Close())
	assert.True(t, c.closed)
}

func TestRedisSnapshot_Error(t *testing.T) {
	c := newFakeRedis()
	c.err = errors.New("connection reset")
	r := newRedisSnapshot(c, "p", testHeader, 0)

	err := r.Dump(context.Background(), "x.csv", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, c.err)
}

func TestNewRedisSnapshot_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewRedisSnapshot(ctx, "127.0.0.1:1", "", 0, "p", testHeader, time.Minute)
	assert.Error(t, err)
}
