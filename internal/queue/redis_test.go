package queue

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisURL() string {
	if url := os.Getenv("REDIS_URL"); url != "" {
		return url
	}
	return "redis://localhost:6379"
}

func requireRedis(t *testing.T) {
	t.Helper()
	opts, err := redis.ParseURL(redisURL())
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if client.Ping(ctx).Err() != nil {
		t.Skip("Redis not available, skipping test")
	}
}

func TestRedisQueue_PublishSubscribe(t *testing.T) {
	requireRedis(t)

	prefix := "test-pricecast-" + uuid.New().String()
	q, err := newRedisQueue(RedisConfig{URL: redisURL(), Stream: prefix, Group: "g1"})
	require.NoError(t, err)
	defer func() {
		q.client.Del(context.Background(), q.streamName(SubjectModelTrained))
		_ = q.Close()
	}()

	got := make(chan []byte, 1)
	require.NoError(t, q.Subscribe(SubjectModelTrained, collect(got)))
	require.NoError(t, q.Publish(context.Background(), SubjectModelTrained, []byte("evt")))

	assert.Equal(t, "evt", string(waitFor(t, got)))
}

func TestRedisQueue_Defaults(t *testing.T) {
	requireRedis(t)

	q, err := newRedisQueue(RedisConfig{URL: redisURL()})
	require.NoError(t, err)
	defer func() { _ = q.Close() }()

	assert.Equal(t, "pricecast", q.config.Stream)
	assert.Equal(t, "pricecast-group", q.config.Group)
	assert.NotEmpty(t, q.config.Consumer)
	assert.Equal(t, "pricecast:pricecast.model.trained", q.streamName(SubjectModelTrained))
}
