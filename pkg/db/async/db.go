package async

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/eigerco/lmdbdown/pkg/db"
	"github.com/eigerco/lmdbdown/pkg/db/adapter"
	"github.com/eigerco/lmdbdown/pkg/log"
)

const queueSize = 64

// DB runs every store operation on one worker goroutine, in submission order,
// and reports completion through futures. No two transactions of the store
// are begun concurrently through a DB.
type DB struct {
	store *adapter.Store
	group errgroup.Group

	mu     sync.RWMutex
	tasks  chan func()
	closed bool
}

// New starts the worker for store.
func New(store *adapter.Store) *DB {
	d := &DB{
		store: store,
		tasks: make(chan func(), queueSize),
	}
	d.group.Go(d.run)
	return d
}

// run keeps the worker on one OS thread, which LMDB write transactions require.
func (d *DB) run() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for task := range d.tasks {
		task()
	}
	return nil
}

func submit[T any](d *DB, fn func() (T, error)) *Future[T] {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		var zero T
		return resolved(zero, db.ErrClosed)
	}
	f := newFuture[T]()
	d.tasks <- func() {
		v, err := fn()
		f.resolve(v, err)
	}
	return f
}

func exec(d *DB, fn func() error) *Future[struct{}] {
	return submit(d, func() (struct{}, error) {
		return struct{}{}, fn()
	})
}

func (d *DB) Open(opts db.Options) *Future[struct{}] {
	return exec(d, func() error { return d.store.Open(opts) })
}

// Close closes the store and stops the worker once queued operations have run.
// The DB rejects every later call with db.ErrClosed; closing again is a no-op.
func (d *DB) Close() *Future[struct{}] {
	d.mu.RLock()
	closed := d.closed
	d.mu.RUnlock()
	if closed {
		return resolved(struct{}{}, nil)
	}
	f := exec(d, d.store.Close)
	d.stop()
	return f
}

// Wait blocks until the worker has exited.
func (d *DB) Wait() error {
	return d.group.Wait()
}

func (d *DB) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.tasks)
	log.Store.Debug().Str("location", d.store.Location()).Msg("async worker stopping")
}

func (d *DB) Get(key []byte, opts db.ReadOptions) *Future[db.Value] {
	return submit(d, func() (db.Value, error) { return d.store.Get(key, opts) })
}

func (d *DB) Put(key []byte, value db.Value) *Future[struct{}] {
	return exec(d, func() error { return d.store.Put(key, value) })
}

func (d *DB) Delete(key []byte) *Future[struct{}] {
	return exec(d, func() error { return d.store.Delete(key) })
}

func (d *DB) Batch(ops []db.Op) *Future[struct{}] {
	return exec(d, func() error { return d.store.Batch(ops) })
}

// Iterator schedules construction of a range iterator. Construction errors,
// including conflicting bounds, surface from the first Next or End.
func (d *DB) Iterator(opts db.IteratorOptions) *Iterator {
	return &Iterator{
		d: d,
		ready: submit(d, func() (db.Iterator, error) {
			return d.store.NewIterator(opts)
		}),
	}
}

// ChainedBatch returns a buffer whose Write runs on the worker.
func (d *DB) ChainedBatch() *ChainedBatch {
	return &ChainedBatch{d: d, b: d.store.NewChainedBatch()}
}
