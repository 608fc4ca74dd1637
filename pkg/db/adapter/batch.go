package adapter

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/eigerco/lmdbdown/pkg/db"
)

// ChainedBatch buffers operations and applies them atomically on Write.
type ChainedBatch struct {
	store *Store
	mu    sync.Mutex
	ops   []db.Op
	done  atomic.Bool
}

func (b *ChainedBatch) Put(key []byte, value db.Value) error {
	return b.push(db.Put(slices.Clone(key), value))
}

func (b *ChainedBatch) Delete(key []byte) error {
	return b.push(db.Del(slices.Clone(key)))
}

func (b *ChainedBatch) push(op db.Op) error {
	if b.done.Load() {
		return db.ErrBatchDone
	}
	if err := validateKey(op.Key); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = append(b.ops, op)
	return nil
}

// Clear drops every buffered operation.
func (b *ChainedBatch) Clear() error {
	if b.done.Load() {
		return db.ErrBatchDone
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = nil
	return nil
}

func (b *ChainedBatch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ops)
}

// Ops returns a copy of the buffered operations.
func (b *ChainedBatch) Ops() []db.Op {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.ops)
}

// Write commits a snapshot of the buffered operations. The batch can only be
// written once, whether or not the commit succeeds.
func (b *ChainedBatch) Write() error {
	if !b.done.CompareAndSwap(false, true) {
		return db.ErrBatchDone
	}
	ops := b.Ops()
	b.mu.Lock()
	b.ops = nil
	b.mu.Unlock()
	return b.store.Batch(ops)
}

// Close discards the batch without writing it.
func (b *ChainedBatch) Close() error {
	if !b.done.CompareAndSwap(false, true) {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = nil
	return nil
}
