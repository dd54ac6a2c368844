package tx

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockRunner(t *testing.T) {
	t.Run("nested calls reuse the held lock", func(t *testing.T) {
		var r LockRunner
		calls := 0
		err := r.RunInTx(context.Background(), func(ctx context.Context) error {
			return r.RunInTx(ctx, func(context.Context) error {
				calls++
				return nil
			})
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("errors are returned unchanged", func(t *testing.T) {
		var r LockRunner
		boom := errors.New("boom")
		assert.ErrorIs(t, r.RunInTx(context.Background(), func(context.Context) error { return boom }), boom)
	})

	t.Run("units of work do not overlap", func(t *testing.T) {
		var (
			r       LockRunner
			active  atomic.Int32
			overlap atomic.Bool
			wg      sync.WaitGroup
		)
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = r.RunInTx(context.Background(), func(context.Context) error {
					if active.Add(1) > 1 {
						overlap.Store(true)
					}
					active.Add(-1)
					return nil
				})
			}()
		}
		wg.Wait()
		assert.False(t, overlap.Load())
	})
}

func TestWithTxIgnoresNil(t *testing.T) {
	_, ok := From(context.Background())
	assert.False(t, ok)
	assert.Equal(t, context.Background(), WithTx(context.Background(), nil))
}
