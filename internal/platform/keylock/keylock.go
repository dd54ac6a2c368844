// Package keylock provides per-key critical sections.
//
// Keys are distributed across a fixed number of shards with FNV-1a, so the
// memory footprint is constant and unrelated keys rarely contend. Two keys in
// the same shard serialize against each other, which is safe but slower; a
// caller must therefore never hold two locks from the same Table at once.
package keylock

import (
	"context"
	"sync"

	dErrors "registrar/pkg/domain-errors"
)

// DefaultShards is used when New is given a non-positive shard count.
const DefaultShards = 128

// Table is a set of sharded exclusive locks addressed by string keys.
type Table struct {
	shards []chan struct{}
}

// New creates a Table with n shards.
func New(n int) *Table {
	if n <= 0 {
		n = DefaultShards
	}
	shards := make([]chan struct{}, n)
	for i := range shards {
		shards[i] = make(chan struct{}, 1)
	}
	return &Table{shards: shards}
}

// Lock blocks until the shard owning key is free or ctx is done. The returned
// release function is safe to call more than once.
func (t *Table) Lock(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "lock aborted: context cancelled")
	}

	shard := t.shards[t.index(key)]
	select {
	case shard <- struct{}{}:
	case <-ctx.Done():
		return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "timed out waiting for lock")
	}

	// The select may pick the send even when ctx finished concurrently.
	if err := ctx.Err(); err != nil {
		<-shard
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "lock aborted: context cancelled")
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-shard })
	}, nil
}

func (t *Table) index(key string) int {
	return int(hashString(key) % uint32(len(t.shards)))
}

// hashString is FNV-1a.
func hashString(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
