//go:build integration

package xdlock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/omeyang/xshop/pkg/storage/xkv"
)

func setupRedisContainer(t *testing.T) redis.UniversalClient {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7.2-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestIntegration_MutualExclusion(t *testing.T) {
	client := setupRedisContainer(t)
	store, err := xkv.NewRedis(client)
	require.NoError(t, err)
	storeFactory, err := NewStoreFactory(store)
	require.NoError(t, err)
	redisFactory, err := NewRedisFactory(client)
	require.NoError(t, err)

	for name, f := range map[string]Factory{"store": storeFactory, "redsync": redisFactory} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var acquired atomic.Int32
			var wg sync.WaitGroup
			start := make(chan struct{})
			handles := make(chan LockHandle, 50)
			for range 50 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					h, err := f.TryLock(ctx, "it:"+name)
					assert.NoError(t, err)
					if h != nil {
						acquired.Add(1)
						handles <- h
					}
				}()
			}
			close(start)
			wg.Wait()
			close(handles)

			assert.Equal(t, int32(1), acquired.Load())
			for h := range handles {
				require.NoError(t, h.Unlock(ctx))
			}
		})
	}
}
