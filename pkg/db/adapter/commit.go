package adapter

import (
	"errors"
	"fmt"

	"github.com/eigerco/lmdbdown/pkg/db"
	"github.com/eigerco/lmdbdown/pkg/log"
	"github.com/eigerco/lmdbdown/pkg/serialization/codec"
)

// committer applies ordered operations inside one write transaction.
type committer struct {
	env     db.Env
	dbi     db.DBI
	codec   codec.Codec
	metrics *metrics
}

// Commit applies ops atomically, then flushes. A flush failure is reported
// even though the transaction is already committed; such an error matches
// db.ErrFlush and means the write may be applied.
func (c *committer) Commit(ops []db.Op) error {
	if err := validateOps(ops); err != nil {
		return err
	}

	txn, err := c.env.BeginTxn(c.dbi, false)
	if err != nil {
		c.metrics.commits.WithLabelValues(resultError).Inc()
		return db.EngineError("begin write transaction", err)
	}

	if err := c.apply(txn, ops); err != nil {
		c.abort(txn, err)
		c.metrics.commits.WithLabelValues(resultError).Inc()
		return err
	}

	if err := txn.Commit(); err != nil {
		c.abort(txn, err)
		c.metrics.commits.WithLabelValues(resultError).Inc()
		return db.EngineError("commit", err)
	}

	if err := c.env.Sync(); err != nil {
		log.Store.Warn().Err(err).Int("ops", len(ops)).Msg("flush failed after commit")
		c.metrics.commits.WithLabelValues(resultFlushError).Inc()
		return fmt.Errorf("%w: %w", db.ErrFlush, db.EngineError("sync", err))
	}

	c.metrics.commits.WithLabelValues(resultOK).Inc()
	return nil
}

func (c *committer) apply(txn db.Txn, ops []db.Op) error {
	for i, op := range ops {
		switch op.Type {
		case db.OpPut:
			value, err := op.Value.Encode(c.codec)
			if err != nil {
				return fmt.Errorf("%w: op %d: encode %s value: %w", db.ErrValidation, i, op.Value.Kind(), err)
			}
			if err := txn.Put(op.Key, value); err != nil {
				return db.EngineError(fmt.Sprintf("op %d: put", i), err)
			}
		case db.OpDelete:
			if _, err := txn.Get(op.Key); err != nil {
				if errors.Is(err, db.ErrNotFound) {
					continue
				}
				return db.EngineError(fmt.Sprintf("op %d: lookup before delete", i), err)
			}
			if err := txn.Delete(op.Key); err != nil {
				return db.EngineError(fmt.Sprintf("op %d: delete", i), err)
			}
		}
		c.metrics.ops.WithLabelValues(op.Type.String()).Inc()
	}
	return nil
}

// abort ends txn after a failure. Abort reports nothing, so the original cause is what surfaces.
func (c *committer) abort(txn db.Txn, cause error) {
	txn.Abort()
	c.metrics.aborts.Inc()
	log.Store.Debug().Err(cause).Msg("write transaction aborted")
}

func validateOps(ops []db.Op) error {
	for i, op := range ops {
		if err := validateKey(op.Key); err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
		if op.Type != db.OpPut && op.Type != db.OpDelete {
			return db.ValidationError("op %d: unknown operation type %d", i, op.Type)
		}
	}
	return nil
}

func validateKey(key []byte) error {
	if len(key) == 0 {
		return db.ValidationError("key cannot be empty")
	}
	return nil
}
