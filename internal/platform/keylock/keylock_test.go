package keylock

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "registrar/pkg/domain-errors"
)

func TestLock_SerializesSameKey(t *testing.T) {
	table := New(16)
	ctx := context.Background()

	var inside atomic.Int32
	var maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := table.Lock(ctx, "CS101")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			n := inside.Add(1)
			for {
				cur := maxInside.Load()
				if n <= cur || maxInside.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
}

func TestLock_DistinctShardsDoNotBlock(t *testing.T) {
	table := New(DefaultShards)
	ctx := context.Background()

	first := "CS101"
	second := ""
	for i := 0; second == ""; i++ {
		candidate := "MATH" + strconv.Itoa(i)
		if table.index(candidate) != table.index(first) {
			second = candidate
		}
	}

	unlockFirst, err := table.Lock(ctx, first)
	require.NoError(t, err)
	defer unlockFirst()

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlockSecond, err := table.Lock(waitCtx, second)
	require.NoError(t, err)
	unlockSecond()
}

func TestLock_ContextCancellation(t *testing.T) {
	table := New(4)

	t.Run("already cancelled context fails fast", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := table.Lock(ctx, "CS101")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	})

	t.Run("waiting caller gives up at deadline", func(t *testing.T) {
		unlock, err := table.Lock(context.Background(), "CS101")
		require.NoError(t, err)
		defer unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err = table.Lock(ctx, "CS101")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	})
}

func TestLock_ReleaseIsIdempotent(t *testing.T) {
	table := New(1)
	ctx := context.Background()

	unlock, err := table.Lock(ctx, "a")
	require.NoError(t, err)
	unlock()
	unlock()

	// A double release must not free a lock held by someone else.
	unlock2, err := table.Lock(ctx, "b")
	require.NoError(t, err)
	defer unlock2()

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = table.Lock(waitCtx, "c")
	require.Error(t, err)
}
