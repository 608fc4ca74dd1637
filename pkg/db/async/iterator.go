package async

import (
	"github.com/eigerco/lmdbdown/pkg/db"
)

// Iterator is the deferred-completion view of a range iterator. Every step runs on the worker.
type Iterator struct {
	d     *DB
	ready *Future[db.Iterator]
}

// Next resolves to the next entry, or to nil at the end of the range.
func (it *Iterator) Next() *Future[*db.Entry] {
	return submit(it.d, func() (*db.Entry, error) {
		inner, err := it.ready.Result()
		if err != nil {
			return nil, err
		}
		if !inner.Next() {
			return nil, inner.Err()
		}
		e := inner.Entry()
		return &e, nil
	})
}

// End releases the iterator's transaction.
func (it *Iterator) End() *Future[struct{}] {
	return exec(it.d, func() error {
		inner, err := it.ready.Result()
		if err != nil {
			return err
		}
		return inner.Close()
	})
}

// All drains the iterator and ends it, collecting every entry.
func (it *Iterator) All() *Future[[]db.Entry] {
	return submit(it.d, func() ([]db.Entry, error) {
		inner, err := it.ready.Result()
		if err != nil {
			return nil, err
		}
		defer inner.Close() //nolint:errcheck

		var out []db.Entry
		for inner.Next() {
			out = append(out, inner.Entry())
		}
		return out, inner.Err()
	})
}
