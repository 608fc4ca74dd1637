package lmdb

import (
	"runtime"

	"github.com/bmatsuo/lmdb-go/lmdb"

	"github.com/eigerco/lmdbdown/pkg/db"
)

// Txn is an LMDB transaction bound to one sub-database.
type Txn struct {
	txn      *lmdb.Txn
	dbi      lmdb.DBI
	readOnly bool
	done     bool
}

func (t *Txn) Get(key []byte) ([]byte, error) {
	v, err := t.txn.Get(t.dbi, key)
	if lmdb.IsNotFound(err) {
		return nil, db.ErrNotFound
	}
	return v, err
}

func (t *Txn) Put(key, value []byte) error {
	return t.txn.Put(t.dbi, key, value, 0)
}

func (t *Txn) Delete(key []byte) error {
	err := t.txn.Del(t.dbi, key, nil)
	if lmdb.IsNotFound(err) {
		return db.ErrNotFound
	}
	return err
}

func (t *Txn) OpenCursor() (db.Cursor, error) {
	cur, err := t.txn.OpenCursor(t.dbi)
	if err != nil {
		return nil, err
	}
	return &Cursor{cur: cur}, nil
}

func (t *Txn) Commit() error {
	if t.done {
		return nil
	}
	defer t.release()
	return t.txn.Commit()
}

func (t *Txn) Abort() {
	if t.done {
		return
	}
	defer t.release()
	t.txn.Abort()
}

func (t *Txn) ReadOnly() bool { return t.readOnly }

func (t *Txn) release() {
	t.done = true
	if !t.readOnly {
		runtime.UnlockOSThread()
	}
}
