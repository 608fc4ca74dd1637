package lmdb

import (
	"github.com/bmatsuo/lmdb-go/lmdb"
)

// Cursor wraps an LMDB cursor. It also implements db.RangeSeeker through MDB_SET_RANGE.
type Cursor struct {
	cur *lmdb.Cursor
}

func (c *Cursor) GoToKey(key []byte) (bool, error) {
	return c.move(key, lmdb.SetKey)
}

func (c *Cursor) GoToRange(key []byte) (bool, error) {
	return c.move(key, lmdb.SetRange)
}

func (c *Cursor) GoToFirst() (bool, error) { return c.move(nil, lmdb.First) }
func (c *Cursor) GoToLast() (bool, error) { return c.move(nil, lmdb.Last) }
func (c *Cursor) GoToNext() (bool, error) { return c.move(nil, lmdb.Next) }
func (c *Cursor) GoToPrev() (bool, error) { return c.move(nil, lmdb.Prev) }

// Current returns the pair under the cursor. The transaction is not in raw
// read mode, so both slices are Go-owned copies.
func (c *Cursor) Current() ([]byte, []byte, error) {
	return c.cur.Get(nil, nil, lmdb.GetCurrent)
}

func (c *Cursor) Close() {
	c.cur.Close()
}

func (c *Cursor) move(key []byte, op uint) (bool, error) {
	_, _, err := c.cur.Get(key, nil, op)
	if lmdb.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
