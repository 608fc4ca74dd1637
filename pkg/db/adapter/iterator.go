package adapter

import (
	"bytes"
	"sync"

	"github.com/google/uuid"

	"github.com/eigerco/lmdbdown/pkg/db"
	"github.com/eigerco/lmdbdown/pkg/log"
)

// Iterator walks a bounded, optionally reversed and limited range. It holds a
// transaction from construction until Close and cannot be restarted.
type Iterator struct {
	id    uuid.UUID
	store *Store
	opts  db.IteratorOptions

	mu     sync.Mutex
	txn    db.Txn
	cursor db.Cursor
	// positioned is false once the cursor ran off the keyspace or a pair failed the bounds.
	positioned bool
	count      int
	entry      db.Entry
	err        error
	closed     bool
}

// newIterator validates opts, begins the iterator's transaction and moves to the initial position.
func newIterator(s *Store, env db.Env, dbi db.DBI, opts db.IteratorOptions) (*Iterator, error) {
	opts = opts.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	readOnly := s.opts.Sentinel != db.SentinelScoped
	txn, err := env.BeginTxn(dbi, readOnly)
	if err != nil {
		return nil, db.EngineError("begin iterator transaction", err)
	}
	cursor, err := txn.OpenCursor()
	if err != nil {
		txn.Abort()
		return nil, db.EngineError("open cursor", err)
	}

	it := &Iterator{
		id:     uuid.New(),
		store:  s,
		opts:   opts,
		txn:    txn,
		cursor: cursor,
	}
	seeker := &boundSeeker{
		txn:        txn,
		cursor:     cursor,
		mode:       s.opts.Sentinel,
		onSentinel: s.metrics.sentinels.Inc,
	}
	it.positioned, err = it.initialPosition(seeker)
	if err != nil {
		cursor.Close()
		txn.Abort()
		return nil, db.EngineError("position iterator", err)
	}
	log.Store.Debug().Stringer("iterator", it.id).Bool("reverse", opts.Reverse).
		Bool("positioned", it.positioned).Msg("iterator opened")
	return it, nil
}

// initialPosition picks the starting record. A reversed scan starts from the
// upper bound, a forward scan from the lower bound.
func (it *Iterator) initialPosition(seeker *boundSeeker) (bool, error) {
	o := it.opts
	if o.Reverse {
		switch {
		case len(o.Lt) > 0:
			return seeker.Seek(o.Lt, LessThan)
		case len(o.Lte) > 0:
			return seeker.Seek(o.Lte, LessOrEqual)
		default:
			return it.cursor.GoToLast()
		}
	}
	switch {
	case len(o.Gt) > 0:
		return seeker.Seek(o.Gt, GreaterThan)
	case len(o.Gte) > 0:
		return seeker.Seek(o.Gte, GreaterOrEqual)
	default:
		return it.cursor.GoToFirst()
	}
}

// ID identifies the iterator in logs.
func (it *Iterator) ID() uuid.UUID { return it.id }

// Next advances to the next pair, returning false at the end of the range or on error.
func (it *Iterator) Next() bool {
	entry, ok, err := it.NextEntry()
	it.mu.Lock()
	defer it.mu.Unlock()
	it.entry, it.err = entry, err
	return ok
}

// Entry returns the pair loaded by the last successful Next.
func (it *Iterator) Entry() db.Entry {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.entry
}

func (it *Iterator) Err() error {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.err
}

// NextEntry reads the record under the cursor, moves the cursor, and emits the
// record only if the limit and every bound still allow it. Otherwise the
// iterator is exhausted and stays so.
func (it *Iterator) NextEntry() (db.Entry, bool, error) {
	it.mu.Lock()
	defer it.mu.Unlock()

	if it.closed {
		return db.Entry{}, false, db.ErrIteratorClosed
	}
	if !it.positioned {
		return db.Entry{}, false, nil
	}

	key, value, err := it.cursor.Current()
	if err != nil {
		it.positioned = false
		return db.Entry{}, false, db.EngineError("read cursor", err)
	}

	if it.opts.Reverse {
		it.positioned, err = it.cursor.GoToPrev()
	} else {
		it.positioned, err = it.cursor.GoToNext()
	}
	if err != nil {
		it.positioned = false
		return db.Entry{}, false, db.EngineError("step cursor", err)
	}

	if !it.admits(key) {
		it.positioned = false
		return db.Entry{}, false, nil
	}
	it.count++
	return it.decode(key, value), true, nil
}

// admits checks the limit and the bounds against a key about to be emitted.
func (it *Iterator) admits(key []byte) bool {
	o := it.opts
	if o.HasLimit() && it.count >= o.Limit {
		return false
	}
	if len(o.Gt) > 0 && bytes.Compare(key, o.Gt) <= 0 {
		return false
	}
	if len(o.Gte) > 0 && bytes.Compare(key, o.Gte) < 0 {
		return false
	}
	if len(o.Lt) > 0 && bytes.Compare(key, o.Lt) >= 0 {
		return false
	}
	if len(o.Lte) > 0 && bytes.Compare(key, o.Lte) > 0 {
		return false
	}
	return true
}

// decode converts a raw pair. Values that are not text (numbers, booleans)
// cannot always be decoded as such and are emitted raw.
func (it *Iterator) decode(key, value []byte) db.Entry {
	var e db.Entry
	if it.opts.KeyAsBuffer {
		e.Key = db.Bytes(key)
	} else {
		e.Key = db.Text(string(key))
	}

	kind := db.KindText
	if it.opts.ValueAsBuffer {
		kind = db.KindBytes
	}
	v, err := db.DecodeValue(value, kind, it.store.codec)
	if err != nil {
		log.Store.Debug().Err(err).Stringer("iterator", it.id).Msg("value is not text, emitting raw bytes")
		v = db.Bytes(value)
	}
	e.Value = v
	return e
}

// Close releases the cursor and aborts the transaction. Closing twice is a no-op.
func (it *Iterator) Close() error {
	it.mu.Lock()
	if it.closed {
		it.mu.Unlock()
		return nil
	}
	it.closed = true
	it.positioned = false
	it.cursor.Close()
	it.txn.Abort()
	emitted := it.count
	it.mu.Unlock()

	it.store.forget(it)
	log.Store.Debug().Stringer("iterator", it.id).Int("emitted", emitted).Msg("iterator closed")
	return nil
}
