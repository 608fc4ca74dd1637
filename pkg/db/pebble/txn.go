package pebble

import (
	"errors"

	"github.com/cockroachdb/pebble"

	"github.com/eigerco/lmdbdown/pkg/db"
)

// Txn is an indexed pebble batch scoped to one namespace.
type Txn struct {
	batch    *pebble.Batch
	prefix   []byte
	readOnly bool
	done     bool
	// gen counts mutations so cursors know when their view is stale.
	gen uint64
}

func (t *Txn) Get(key []byte) ([]byte, error) {
	if t.done {
		return nil, ErrTxnDone
	}
	v, closer, err := t.batch.Get(t.key(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	result := make([]byte, len(v))
	copy(result, v)
	return result, nil
}

func (t *Txn) Put(key, value []byte) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.gen++
	return t.batch.Set(t.key(key), value, nil)
}

func (t *Txn) Delete(key []byte) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, err := t.Get(key); err != nil {
		return err
	}
	t.gen++
	return t.batch.Delete(t.key(key), nil)
}

func (t *Txn) OpenCursor() (db.Cursor, error) {
	if t.done {
		return nil, ErrTxnDone
	}
	c := &Cursor{txn: t, opts: &pebble.IterOptions{
		LowerBound: t.prefix,
		UpperBound: upperBound(t.prefix),
	}}
	if err := c.open(); err != nil {
		return nil, err
	}
	return c, nil
}

// Commit applies the batch without syncing; Env.Sync provides durability.
func (t *Txn) Commit() error {
	if t.done {
		return ErrTxnDone
	}
	t.done = true
	if t.readOnly || t.batch.Empty() {
		return t.batch.Close()
	}
	if err := t.batch.Commit(pebble.NoSync); err != nil {
		t.batch.Close() //nolint:errcheck
		return err
	}
	return t.batch.Close()
}

// Abort discards every write made in the transaction.
func (t *Txn) Abort() {
	if t.done {
		return
	}
	t.done = true
	t.batch.Close() //nolint:errcheck
}

func (t *Txn) ReadOnly() bool { return t.readOnly }

func (t *Txn) writable() error {
	if t.done {
		return ErrTxnDone
	}
	if t.readOnly {
		return db.ValidationError("pebble: write in read-only transaction")
	}
	return nil
}

func (t *Txn) key(k []byte) []byte {
	if len(t.prefix) == 0 {
		return k
	}
	out := make([]byte, 0, len(t.prefix)+len(k))
	out = append(out, t.prefix...)
	return append(out, k...)
}
