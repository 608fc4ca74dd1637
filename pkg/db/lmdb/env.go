package lmdb

import (
	"fmt"
	"os"
	"runtime"

	"github.com/bmatsuo/lmdb-go/lmdb"

	"github.com/eigerco/lmdbdown/pkg/db"
)

const (
	ErrEnvCreate = "lmdb: create environment: %w"
	ErrEnvOpen   = "lmdb: open environment %s: %w"
	ErrDBIOpen   = "lmdb: open sub-database %q: %w"
)

// Engine opens LMDB environments.
type Engine struct {
	// Flags are added to the environment flags.
	Flags uint
	Mode  os.FileMode
}

func (Engine) Name() string { return "lmdb" }

// OpenEnv opens the environment at path. Commits are not synced by LMDB
// itself; durability comes from Env.Sync.
func (e Engine) OpenEnv(path string, cfg db.EnvConfig) (db.Env, error) {
	env, err := lmdb.NewEnv()
	if err != nil {
		return nil, fmt.Errorf(ErrEnvCreate, err)
	}
	maxDBs := cfg.MaxDBs
	if maxDBs <= 0 {
		maxDBs = 1
	}
	if err := env.SetMaxDBs(maxDBs); err != nil {
		env.Close() //nolint:errcheck
		return nil, fmt.Errorf(ErrEnvOpen, path, err)
	}
	if err := env.SetMapSize(cfg.MapSize); err != nil {
		env.Close() //nolint:errcheck
		return nil, fmt.Errorf(ErrEnvOpen, path, err)
	}
	mode := e.Mode
	if mode == 0 {
		mode = 0o644
	}
	// NoTLS lets read-only transactions of long-lived iterators move between OS threads.
	flags := lmdb.NoTLS | lmdb.NoSync | lmdb.NoMetaSync | e.Flags
	if err := env.Open(path, flags, mode); err != nil {
		env.Close() //nolint:errcheck
		return nil, fmt.Errorf(ErrEnvOpen, path, err)
	}
	return &Env{env: env}, nil
}

// Env is an LMDB environment.
type Env struct {
	env *lmdb.Env
}

// Wrap adopts an environment opened by the caller.
func Wrap(env *lmdb.Env) *Env {
	return &Env{env: env}
}

func (e *Env) OpenDBI(name string, create bool) (db.DBI, error) {
	var flags uint
	if create {
		flags = lmdb.Create
	}
	var handle lmdb.DBI
	err := e.env.Update(func(txn *lmdb.Txn) (err error) {
		if name == "" {
			handle, err = txn.OpenRoot(flags)
			return err
		}
		handle, err = txn.OpenDBI(name, flags)
		return err
	})
	if err != nil {
		if lmdb.IsNotFound(err) {
			return nil, fmt.Errorf(ErrDBIOpen, name, db.ErrNotFound)
		}
		return nil, fmt.Errorf(ErrDBIOpen, name, err)
	}
	return &DBI{env: e.env, handle: handle, name: name}, nil
}

// BeginTxn starts a transaction on dbi. Write transactions keep the calling
// goroutine on its OS thread until they end, as LMDB requires.
func (e *Env) BeginTxn(dbi db.DBI, readOnly bool) (db.Txn, error) {
	d, ok := dbi.(*DBI)
	if !ok {
		return nil, db.ValidationError("lmdb: foreign sub-database handle %T", dbi)
	}
	var flags uint
	if readOnly {
		flags = lmdb.Readonly
	} else {
		runtime.LockOSThread()
	}
	txn, err := e.env.BeginTxn(nil, flags)
	if err != nil {
		if !readOnly {
			runtime.UnlockOSThread()
		}
		return nil, err
	}
	return &Txn{txn: txn, dbi: d.handle, readOnly: readOnly}, nil
}

func (e *Env) Sync() error {
	return e.env.Sync(true)
}

func (e *Env) PrivateWrites() bool {
	return false
}

func (e *Env) Close() error {
	return e.env.Close()
}

// DBI is an LMDB sub-database handle.
type DBI struct {
	env    *lmdb.Env
	handle lmdb.DBI
	name   string
}

func (d *DBI) Name() string { return d.name }

func (d *DBI) Close() error {
	d.env.CloseDBI(d.handle)
	return nil
}
