package kvutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	svtest "github.com/ryo-makiyama/sessionview/testing"
)

func TestEnsureKVBucketWithRetry(t *testing.T) {
	_, nc := svtest.StartEmbeddedNATS(t)

	ctx := context.Background()
	js, err := jetstream.New(nc)
	require.NoError(t, err)

	t.Run("creates bucket on first try", func(t *testing.T) {
		cfg := jetstream.KeyValueConfig{
			Bucket:  "schedule-create",
			History: 1,
			TTL:     5 * time.Second,
		}

		kv, err := EnsureKVBucketWithRetry(ctx, js, cfg, 3)
		require.NoError(t, err)
		require.NotNil(t, kv)
	})

	t.Run("opens existing bucket", func(t *testing.T) {
		cfg := jetstream.KeyValueConfig{
			Bucket:  "schedule-existing",
			History: 1,
			TTL:     5 * time.Second,
		}

		kv1, err := js.CreateKeyValue(ctx, cfg)
		require.NoError(t, err)
		require.NotNil(t, kv1)

		// Second create must fall back to opening the existing bucket.
		kv2, err := EnsureKVBucketWithRetry(ctx, js, cfg, 3)
		require.NoError(t, err)
		require.NotNil(t, kv2)
	})

	t.Run("concurrent creates all succeed", func(t *testing.T) {
		const numWorkers = 10

		cfg := jetstream.KeyValueConfig{
			Bucket:  "schedule-concurrent",
			History: 1,
			TTL:     5 * time.Second,
		}

		var wg sync.WaitGroup
		errCh := make(chan error, numWorkers)
		kvs := make([]jetstream.KeyValue, numWorkers)

		for i := 0; i < numWorkers; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()

				kv, err := EnsureKVBucketWithRetry(ctx, js, cfg, 5)
				if err != nil {
					errCh <- err
					return
				}
				kvs[idx] = kv
			}(i)
		}

		wg.Wait()
		close(errCh)

		for err := range errCh {
			require.NoError(t, err)
		}
		for i, kv := range kvs {
			require.NotNil(t, kv, "worker %d should have a valid KV instance", i)
		}
	})

	t.Run("context timeout fails gracefully", func(t *testing.T) {
		shortCtx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()

		time.Sleep(time.Millisecond)

		cfg := jetstream.KeyValueConfig{
			Bucket:  "schedule-timeout",
			History: 1,
		}

		_, err := EnsureKVBucketWithRetry(shortCtx, js, cfg, 3)
		require.Error(t, err)
	})
}
