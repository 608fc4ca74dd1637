package pebble

import (
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/rs/zerolog"

	"github.com/eigerco/lmdbdown/pkg/db"
	"github.com/eigerco/lmdbdown/pkg/log"
)

// Engine opens pebble databases as environments. Pebble has no map size, so
// EnvConfig.MapSize is ignored.
type Engine struct {
	// Options are passed to pebble.Open; nil selects defaults.
	Options *pebble.Options
}

func (Engine) Name() string { return "pebble" }

func (e Engine) OpenEnv(path string, _ db.EnvConfig) (db.Env, error) {
	opts := &pebble.Options{}
	if e.Options != nil {
		opts = e.Options.Clone()
	}
	if opts.Logger == nil {
		opts.Logger = zerologAdapter{l: log.Engine}
	}
	p, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf(ErrEnvOpen, path, err)
	}
	return &Env{db: p}, nil
}

// Env is a pebble database. Sub-databases are key prefixes inside it.
type Env struct {
	db *pebble.DB
}

// Wrap adopts a database opened by the caller.
func Wrap(p *pebble.DB) *Env {
	return &Env{db: p}
}

// OpenDBI returns the namespace for name. Namespaces exist implicitly, so create has no effect.
func (e *Env) OpenDBI(name string, _ bool) (db.DBI, error) {
	return &DBI{name: name, prefix: namespace(name)}, nil
}

// BeginTxn starts an indexed batch: reads see the batch's own writes layered
// over the database, and nothing becomes visible elsewhere before Commit.
func (e *Env) BeginTxn(dbi db.DBI, readOnly bool) (db.Txn, error) {
	d, ok := dbi.(*DBI)
	if !ok {
		return nil, db.ValidationError("pebble: foreign sub-database handle %T", dbi)
	}
	return &Txn{
		batch:    e.db.NewIndexedBatch(),
		prefix:   d.prefix,
		readOnly: readOnly,
	}, nil
}

// Sync makes every committed batch durable by syncing the WAL.
func (e *Env) Sync() error {
	return e.db.LogData(nil, pebble.Sync)
}

func (e *Env) PrivateWrites() bool {
	return true
}

func (e *Env) Close() error {
	return e.db.Close()
}

// DBI is a key prefix namespace.
type DBI struct {
	name   string
	prefix []byte
}

func (d *DBI) Name() string { return d.name }
func (d *DBI) Close() error { return nil }

// namespace is name followed by a zero byte; the unnamed database has no prefix.
func namespace(name string) []byte {
	if name == "" {
		return nil
	}
	p := make([]byte, 0, len(name)+1)
	p = append(p, name...)
	return append(p, 0)
}

// upperBound returns the smallest key greater than every key carrying prefix.
func upperBound(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

type zerologAdapter struct {
	l zerolog.Logger
}

func (a zerologAdapter) Infof(format string, args ...interface{}) {
	a.l.Debug().Msgf(format, args...)
}

func (a zerologAdapter) Errorf(format string, args ...interface{}) {
	a.l.Error().Msgf(format, args...)
}

func (a zerologAdapter) Fatalf(format string, args ...interface{}) {
	a.l.Fatal().Msgf(format, args...)
}
