package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_PreservesOrderPerKey(t *testing.T) {
	d := NewDispatcher(4, 8, zerolog.Nop(), nil)
	d.Start(context.Background())

	var mu sync.Mutex
	seen := map[string][]int{}

	for i := 0; i < 50; i++ {
		for _, key := range []string{"1", "2", "3"} {
			n := i
			k := key
			require.NoError(t, d.Submit(context.Background(), k, func(ctx context.Context) {
				mu.Lock()
				seen[k] = append(seen[k], n)
				mu.Unlock()
			}))
		}
	}

	d.Stop()

	for _, key := range []string{"1", "2", "3"} {
		assert.Len(t, seen[key], 50)
		for i, n := range seen[key] {
			assert.Equal(t, i, n, "key %s out of order", key)
		}
	}
}

func TestDispatcher_SameKeySameWorker(t *testing.T) {
	d := NewDispatcher(8, 1, zerolog.Nop(), nil)

	for i := 0; i < 20; i++ {
		key := fmt.Sprintf("user-%d", i)
		assert.Equal(t, d.shardIndex(key), d.shardIndex(key))
		assert.Less(t, d.shardIndex(key), d.Workers())
	}
}

func TestDispatcher_DefaultsOnNonPositiveSizes(t *testing.T) {
	d := NewDispatcher(0, -1, zerolog.Nop(), nil)

	assert.Equal(t, defaultWorkers, d.Workers())
	assert.Equal(t, defaultQueue, cap(d.workers[0]))
}

func TestDispatcher_StopDrainsAndRejects(t *testing.T) {
	g := NewWithT(t)
	d := NewDispatcher(2, 16, zerolog.Nop(), nil)
	d.Start(context.Background())

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		g.Expect(d.Submit(context.Background(), "k", func(ctx context.Context) {
			ran.Add(1)
		})).To(Succeed())
	}

	d.Stop()
	d.Stop()

	g.Expect(ran.Load()).To(Equal(int32(10)))
	g.Expect(d.Submit(context.Background(), "k", func(ctx context.Context) {})).To(MatchError(ErrStopped))
}

func TestDispatcher_ContextCancelStops(t *testing.T) {
	g := NewWithT(t)
	ctx, cancel := context.WithCancel(context.Background())

	d := NewDispatcher(1, 1, zerolog.Nop(), nil)
	d.Start(ctx)
	cancel()

	g.Eventually(func() error {
		return d.Submit(context.Background(), "k", func(ctx context.Context) {})
	}, time.Second, 10*time.Millisecond).Should(MatchError(ErrStopped))
}

func TestDispatcher_PanicDoesNotKillWorker(t *testing.T) {
	d := NewDispatcher(1, 4, zerolog.Nop(), nil)
	d.Start(context.Background())

	done := make(chan struct{})
	require.NoError(t, d.Submit(context.Background(), "k", func(ctx context.Context) {
		panic("boom")
	}))
	require.NoError(t, d.Submit(context.Background(), "k", func(ctx context.Context) {
		close(done)
	}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not survive panic")
	}

	d.Stop()
}

func TestDispatcher_SubmitHonoursCallerContext(t *testing.T) {
	d := NewDispatcher(1, 1, zerolog.Nop(), nil)

	// not started, so the single slot fills and the next submit must block
	require.NoError(t, d.Submit(context.Background(), "k", func(ctx context.Context) {}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := d.Submit(ctx, "k", func(ctx context.Context) {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	d.Start(context.Background())
	d.Stop()
}
