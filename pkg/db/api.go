package db

// Env is an embedded engine environment: one storage directory holding named sub-databases.
type Env interface {
	// OpenDBI opens the named sub-database, creating it when create is set.
	OpenDBI(name string, create bool) (DBI, error)
	// BeginTxn starts a transaction on dbi. Only one write transaction runs at a time.
	BeginTxn(dbi DBI, readOnly bool) (Txn, error)
	// Sync flushes committed transactions to stable storage.
	Sync() error
	// PrivateWrites reports whether writes made in a transaction stay invisible
	// to everyone else until commit, even while other write transactions run.
	PrivateWrites() bool
	Close() error
}

// DBI is a handle to a sub-database owned by an Env.
type DBI interface {
	Name() string
	Close() error
}

// Txn is a single-threaded unit of atomicity. It must end with exactly one Commit or Abort.
type Txn interface {
	// Get returns ErrNotFound when the key is absent.
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	// Delete returns ErrNotFound when the key is absent.
	Delete(key []byte) error
	OpenCursor() (Cursor, error)
	Commit() error
	Abort()
	ReadOnly() bool
}

// Cursor is a position inside one transaction's view of a sub-database.
// Every positioning method reports false once the cursor has left the keyspace.
type Cursor interface {
	// GoToKey positions at key only if it exists.
	GoToKey(key []byte) (bool, error)
	GoToFirst() (bool, error)
	GoToLast() (bool, error)
	GoToNext() (bool, error)
	GoToPrev() (bool, error)
	// Current returns copies of the key and value under the cursor.
	Current() (key, value []byte, err error)
	Close()
}

// RangeSeeker is implemented by cursors that can seek to the nearest key instead of an exact one.
type RangeSeeker interface {
	// GoToRange positions at the first key greater than or equal to key.
	GoToRange(key []byte) (bool, error)
}

// KVStore is the storage interface exposed to callers.
type KVStore interface {
	Writer
	Get(key []byte, opts ReadOptions) (Value, error)
	Delete(key []byte) error
	Batch(ops []Op) error
	NewIterator(opts IteratorOptions) (Iterator, error)
	NewChainedBatch() ChainedBatch
	Close() error
}

type Writer interface {
	Put(key []byte, value Value) error
}

// ChainedBatch buffers operations until Write applies them atomically.
type ChainedBatch interface {
	Writer
	Delete(key []byte) error
	Clear() error
	Write() error
	Close() error
	Len() int
}

// Iterator provides sequential access over a range of key-value pairs.
// Iterators pin a transaction and must be closed after use.
type Iterator interface {
	Next() bool
	Entry() Entry
	Err() error
	Close() error
}

// Entry is one decoded pair produced by an Iterator.
type Entry struct {
	Key   Value
	Value Value
}

// Engine opens environments of one embedded engine.
type Engine interface {
	Name() string
	OpenEnv(path string, cfg EnvConfig) (Env, error)
}

// EnvConfig carries the settings an engine needs to open an environment.
type EnvConfig struct {
	MapSize int64
	MaxDBs  int
}
