package pebble

import (
	"bytes"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// Cursor walks a transaction's namespace. A pebble iterator only observes the
// batch as it was when the iterator was created, so the cursor reopens its
// iterator after the transaction writes and restores its position.
type Cursor struct {
	txn  *Txn
	opts *pebble.IterOptions
	iter *pebble.Iterator
	gen  uint64
}

func (c *Cursor) open() error {
	iter, err := c.txn.batch.NewIter(c.opts)
	if err != nil {
		return fmt.Errorf(ErrInIteratorCreation, err)
	}
	c.iter = iter
	c.gen = c.txn.gen
	return nil
}

// refresh reopens a stale iterator and returns the key it was positioned on, if any.
func (c *Cursor) refresh() ([]byte, error) {
	if c.gen == c.txn.gen {
		return nil, nil
	}
	var last []byte
	if c.iter.Valid() {
		last = append([]byte(nil), c.iter.Key()...)
	}
	if err := c.iter.Close(); err != nil {
		return nil, err
	}
	return last, c.open()
}

func (c *Cursor) GoToKey(key []byte) (bool, error) {
	if _, err := c.refresh(); err != nil {
		return false, err
	}
	k := c.txn.key(key)
	if !c.iter.SeekGE(k) {
		return false, c.iter.Error()
	}
	return bytes.Equal(c.iter.Key(), k), nil
}

func (c *Cursor) GoToRange(key []byte) (bool, error) {
	if _, err := c.refresh(); err != nil {
		return false, err
	}
	return c.result(c.iter.SeekGE(c.txn.key(key)))
}

func (c *Cursor) GoToFirst() (bool, error) {
	if _, err := c.refresh(); err != nil {
		return false, err
	}
	return c.result(c.iter.First())
}

func (c *Cursor) GoToLast() (bool, error) {
	if _, err := c.refresh(); err != nil {
		return false, err
	}
	return c.result(c.iter.Last())
}

func (c *Cursor) GoToNext() (bool, error) {
	last, err := c.refresh()
	if err != nil {
		return false, err
	}
	if last != nil {
		if !c.iter.SeekGE(last) {
			return c.result(false)
		}
		if !bytes.Equal(c.iter.Key(), last) {
			// the old position was deleted; its successor is already under the cursor
			return true, nil
		}
	}
	return c.result(c.iter.Next())
}

func (c *Cursor) GoToPrev() (bool, error) {
	last, err := c.refresh()
	if err != nil {
		return false, err
	}
	if last != nil {
		return c.result(c.iter.SeekLT(last))
	}
	return c.result(c.iter.Prev())
}

func (c *Cursor) Current() ([]byte, []byte, error) {
	if !c.iter.Valid() {
		if err := c.iter.Error(); err != nil {
			return nil, nil, fmt.Errorf(ErrIteratorValue, err)
		}
		return nil, nil, ErrIteratorInvalid
	}
	k := c.iter.Key()[len(c.txn.prefix):]
	key := make([]byte, len(k))
	copy(key, k)

	val, err := c.iter.ValueAndErr()
	if err != nil {
		return nil, nil, fmt.Errorf(ErrIteratorValue, err)
	}
	value := make([]byte, len(val))
	copy(value, val)
	return key, value, nil
}

func (c *Cursor) Close() {
	if c.iter == nil {
		return
	}
	c.iter.Close() //nolint:errcheck
	c.iter = nil
}

func (c *Cursor) result(ok bool) (bool, error) {
	if !ok {
		return false, c.iter.Error()
	}
	return true, nil
}
