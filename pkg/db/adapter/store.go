package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/eigerco/lmdbdown/pkg/db"
	"github.com/eigerco/lmdbdown/pkg/log"
	"github.com/eigerco/lmdbdown/pkg/serialization/codec"
)

const openBackoff = 50 * time.Millisecond

var _ db.KVStore = (*Store)(nil)

// Store adapts an embedded engine to db.KVStore. Every call runs its own
// transaction; iterators keep theirs until closed.
type Store struct {
	location string
	engine   db.Engine
	codec    codec.Codec

	mu        sync.RWMutex
	opts      db.Options
	env       db.Env
	dbi       db.DBI
	ownsEnv   bool
	ownsDBI   bool
	committer *committer
	metrics   *metrics

	itersMu sync.Mutex
	iters   map[uuid.UUID]*Iterator
}

// Option customizes a Store.
type Option func(*Store)

// WithCodec replaces the text codec.
func WithCodec(c codec.Codec) Option {
	return func(s *Store) { s.codec = c }
}

// New returns a closed store for location backed by engine.
func New(location string, engine db.Engine, opts ...Option) *Store {
	s := &Store{
		location: location,
		engine:   engine,
		codec:    codec.UTF16Codec{},
		iters:    make(map[uuid.UUID]*Iterator),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Location() string { return s.location }

// Open prepares the location, opens the environment and the sub-database.
func (s *Store) Open(opts db.Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.env != nil {
		return db.ValidationError("store %s is already open", s.location)
	}
	if opts.DBI != nil && opts.Env == nil {
		return db.ValidationError("env must be supplied with dbi")
	}
	if err := s.prepareLocation(opts); err != nil {
		return err
	}

	env, ownsEnv := opts.Env, false
	if env == nil {
		var err error
		if env, err = s.openEnv(opts); err != nil {
			return db.EngineError("open environment", err)
		}
		ownsEnv = true
	}

	dbi, ownsDBI := opts.DBI, false
	if dbi == nil {
		var err error
		if dbi, err = env.OpenDBI(opts.DBIName, opts.ShouldCreate()); err != nil {
			if ownsEnv {
				env.Close() //nolint:errcheck
			}
			return db.EngineError("open sub-database", err)
		}
		ownsDBI = true
	}

	if opts.Sentinel == db.SentinelScoped && !env.PrivateWrites() {
		if ownsDBI {
			dbi.Close() //nolint:errcheck
		}
		if ownsEnv {
			env.Close() //nolint:errcheck
		}
		return db.ValidationError("%s sentinels need an engine with private transaction writes, %s has none", opts.Sentinel, s.engine.Name())
	}

	s.opts = opts
	s.env, s.dbi = env, dbi
	s.ownsEnv, s.ownsDBI = ownsEnv, ownsDBI
	s.metrics = newMetrics(opts.Registerer)
	s.committer = &committer{env: env, dbi: dbi, codec: s.codec, metrics: s.metrics}

	log.Store.Info().Str("location", s.location).Str("engine", s.engine.Name()).
		Str("dbi", opts.DBIName).Int64("mapSize", opts.EffectiveMapSize()).
		Stringer("sentinel", opts.Sentinel).Msg("store opened")
	return nil
}

func (s *Store) prepareLocation(opts db.Options) error {
	_, statErr := os.Stat(s.location)
	exists := statErr == nil

	if opts.ErrorIfExists && exists {
		return db.PathError(s.location, "already exists")
	}
	if opts.ShouldCreate() {
		if err := os.MkdirAll(s.location, 0o755); err != nil {
			return fmt.Errorf("%w: %w", db.PathError(s.location, "create"), err)
		}
		return nil
	}
	if !exists {
		return db.PathError(s.location, "does not exist")
	}
	return nil
}

// openEnv retries engine open on lock contention, up to opts.OpenRetries times.
func (s *Store) openEnv(opts db.Options) (db.Env, error) {
	cfg := db.EnvConfig{MapSize: opts.EffectiveMapSize(), MaxDBs: 1}
	backoff := retry.WithMaxRetries(opts.OpenRetries, retry.NewExponential(openBackoff))

	var env db.Env
	err := retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		e, err := s.engine.OpenEnv(s.location, cfg)
		if err != nil {
			if busy(err) {
				log.Store.Warn().Err(err).Str("location", s.location).Msg("environment busy, retrying")
				return retry.RetryableError(err)
			}
			return err
		}
		env = e
		return nil
	})
	return env, err
}

func busy(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EBUSY)
}

// Close closes open iterators, then the handles the store opened itself.
// Closing a closed store is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.env == nil {
		return nil
	}

	for _, it := range s.openIterators() {
		log.Store.Warn().Stringer("iterator", it.ID()).Msg("closing iterator left open at store close")
		it.Close() //nolint:errcheck
	}

	var errs []error
	if s.ownsDBI {
		errs = append(errs, s.dbi.Close())
	}
	if s.ownsEnv {
		errs = append(errs, s.env.Close())
	}
	s.env, s.dbi, s.committer = nil, nil, nil

	log.Store.Info().Str("location", s.location).Msg("store closed")
	return db.EngineError("close", errors.Join(errs...))
}

// Get reads key in its own read-only transaction.
func (s *Store) Get(key []byte, opts db.ReadOptions) (db.Value, error) {
	if err := validateKey(key); err != nil {
		return db.Value{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.env == nil {
		return db.Value{}, db.ErrClosed
	}

	txn, err := s.env.BeginTxn(s.dbi, true)
	if err != nil {
		return db.Value{}, db.EngineError("begin read transaction", err)
	}
	defer txn.Abort()

	raw, err := txn.Get(key)
	if errors.Is(err, db.ErrNotFound) {
		return db.Value{}, db.ErrNotFound
	}
	if err != nil {
		return db.Value{}, db.EngineError("get", err)
	}

	kind := opts.Kind(s.opts.AsBuffer)
	v, err := db.DecodeValue(raw, kind, s.codec)
	if err != nil {
		return db.Value{}, fmt.Errorf("%w: read %s value: %w", db.ErrValidation, kind, err)
	}
	return v, nil
}

func (s *Store) Put(key []byte, value db.Value) error {
	return s.Batch([]db.Op{db.Put(key, value)})
}

// Delete removes key. Deleting an absent key succeeds.
func (s *Store) Delete(key []byte) error {
	return s.Batch([]db.Op{db.Del(key)})
}

// Batch applies ops in order, atomically.
func (s *Store) Batch(ops []db.Op) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.env == nil {
		return db.ErrClosed
	}
	return s.committer.Commit(ops)
}

// NewIterator opens a range iterator. Conflicting bounds fail before any record is read.
func (s *Store) NewIterator(opts db.IteratorOptions) (db.Iterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.env == nil {
		return nil, db.ErrClosed
	}

	it, err := newIterator(s, s.env, s.dbi, opts)
	if err != nil {
		return nil, err
	}
	s.itersMu.Lock()
	s.iters[it.id] = it
	s.itersMu.Unlock()
	s.metrics.iterators.Inc()
	return it, nil
}

// NewChainedBatch returns an empty operation buffer.
func (s *Store) NewChainedBatch() db.ChainedBatch {
	return &ChainedBatch{store: s}
}

func (s *Store) forget(it *Iterator) {
	s.itersMu.Lock()
	defer s.itersMu.Unlock()
	if _, ok := s.iters[it.id]; ok {
		delete(s.iters, it.id)
		s.metrics.iterators.Dec()
	}
}

func (s *Store) openIterators() []*Iterator {
	s.itersMu.Lock()
	defer s.itersMu.Unlock()
	out := make([]*Iterator, 0, len(s.iters))
	for _, it := range s.iters {
		out = append(out, it)
	}
	return out
}
