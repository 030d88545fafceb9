package cache

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"setlist-api/core/logger"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerSerialisesSameKey(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "project:1", time.Second)
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, l.locks)
}

func TestLocalLockerTimeout(t *testing.T) {
	l := NewLocalLocker()

	unlock, err := l.Lock(context.Background(), "k", time.Second)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = l.Lock(ctx, "k", time.Second)
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestLocalLockerDifferentKeys(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	u1, err := l.Lock(ctx, "a", time.Second)
	require.NoError(t, err)
	u2, err := l.Lock(ctx, "b", time.Second)
	require.NoError(t, err)

	u1()
	u1()
	u2()
	assert.Empty(t, l.locks)
}

func TestRedisLockerLogsFailedRelease(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter("debug", "json", &buf)
	t.Cleanup(func() { logger.Init("info", "json") })

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	NewRedisLocker(client).release("invitation:lock:project", "owner")

	assert.Contains(t, buf.String(), "RedisLocker:Unlock:Error")
	assert.Contains(t, buf.String(), "invitation:lock:project")
}
