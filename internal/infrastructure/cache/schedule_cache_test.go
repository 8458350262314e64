package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/dentalbill-api/internal/config"
	"github.com/sangkips/dentalbill-api/internal/domain/entity"
)

func TestNewRedisClient_DisabledWithoutURL(t *testing.T) {
	client, err := NewRedisClient(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), config.RedisConfig{URL: "http://not-redis"})
	assert.Error(t, err)
}

func TestNoopScheduleCache(t *testing.T) {
	c := NewScheduleCache(nil, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &entity.FeeSchedule{Currency: "RM"}))
	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Invalidate(ctx))
}

func TestRedisScheduleCache_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewScheduleCache(client, time.Minute)
	_, err := c.Get(context.Background())
	assert.Error(t, err, "connection errors surface so the caller can fall back to the database")
}
