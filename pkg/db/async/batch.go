package async

import (
	"github.com/eigerco/lmdbdown/pkg/db"
)

// ChainedBatch buffers operations on the caller's goroutine and writes them on the worker.
type ChainedBatch struct {
	d *DB
	b db.ChainedBatch
}

func (c *ChainedBatch) Put(key []byte, value db.Value) error {
	return c.b.Put(key, value)
}

func (c *ChainedBatch) Delete(key []byte) error {
	return c.b.Delete(key)
}

func (c *ChainedBatch) Clear() error {
	return c.b.Clear()
}

func (c *ChainedBatch) Len() int {
	return c.b.Len()
}

func (c *ChainedBatch) Write() *Future[struct{}] {
	return exec(c.d, c.b.Write)
}
