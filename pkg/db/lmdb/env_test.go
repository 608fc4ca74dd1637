package lmdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/lmdbdown/pkg/db"
)

func newEnv(t *testing.T) db.Env {
	t.Helper()
	env, err := Engine{}.OpenEnv(t.TempDir(), db.EnvConfig{MapSize: 1 << 24, MaxDBs: 2})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, env.Close())
	})
	return env
}

func commit(t *testing.T, env db.Env, dbi db.DBI, pairs ...string) {
	t.Helper()
	txn, err := env.BeginTxn(dbi, false)
	require.NoError(t, err)
	for i := 0; i < len(pairs); i += 2 {
		require.NoError(t, txn.Put([]byte(pairs[i]), []byte(pairs[i+1])))
	}
	require.NoError(t, txn.Commit())
	require.NoError(t, env.Sync())
}

func TestEnv_OpenDBI(t *testing.T) {
	env := newEnv(t)
	assert.False(t, env.PrivateWrites())

	_, err := env.OpenDBI("missing", false)
	assert.ErrorIs(t, err, db.ErrNotFound)

	dbi, err := env.OpenDBI("data", true)
	require.NoError(t, err)
	assert.Equal(t, "data", dbi.Name())

	_, err = env.BeginTxn(foreignDBI{}, true)
	assert.ErrorIs(t, err, db.ErrValidation)
}

func TestTxn(t *testing.T) {
	env := newEnv(t)
	dbi, err := env.OpenDBI("data", true)
	require.NoError(t, err)

	commit(t, env, dbi, "a", "1", "c", "3", "e", "5")

	t.Run("get", func(t *testing.T) {
		txn, err := env.BeginTxn(dbi, true)
		require.NoError(t, err)
		defer txn.Abort()

		v, err := txn.Get([]byte("c"))
		require.NoError(t, err)
		assert.Equal(t, []byte("3"), v)

		_, err = txn.Get([]byte("b"))
		assert.ErrorIs(t, err, db.ErrNotFound)
	})

	t.Run("abort discards writes", func(t *testing.T) {
		txn, err := env.BeginTxn(dbi, false)
		require.NoError(t, err)
		require.NoError(t, txn.Put([]byte("x"), []byte("y")))
		assert.ErrorIs(t, txn.Delete([]byte("missing")), db.ErrNotFound)
		txn.Abort()
		txn.Abort()

		reader, err := env.BeginTxn(dbi, true)
		require.NoError(t, err)
		defer reader.Abort()
		_, err = reader.Get([]byte("x"))
		assert.ErrorIs(t, err, db.ErrNotFound)
	})

	t.Run("snapshot isolation", func(t *testing.T) {
		reader, err := env.BeginTxn(dbi, true)
		require.NoError(t, err)
		defer reader.Abort()

		commit(t, env, dbi, "b", "2")
		_, err = reader.Get([]byte("b"))
		assert.ErrorIs(t, err, db.ErrNotFound)
	})

	t.Run("cursor", func(t *testing.T) {
		txn, err := env.BeginTxn(dbi, true)
		require.NoError(t, err)
		defer txn.Abort()
		c, err := txn.OpenCursor()
		require.NoError(t, err)
		defer c.Close()

		found, err := c.GoToKey([]byte("d"))
		require.NoError(t, err)
		assert.False(t, found)

		found, err = c.(db.RangeSeeker).GoToRange([]byte("d"))
		require.NoError(t, err)
		require.True(t, found)
		k, v, err := c.Current()
		require.NoError(t, err)
		assert.Equal(t, "e", string(k))
		assert.Equal(t, "5", string(v))

		ok, err := c.GoToNext()
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = c.GoToFirst()
		require.NoError(t, err)
		require.True(t, ok)
		k, _, err = c.Current()
		require.NoError(t, err)
		assert.Equal(t, "a", string(k))

		ok, err = c.GoToPrev()
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = c.GoToLast()
		require.NoError(t, err)
		require.True(t, ok)
		k, _, err = c.Current()
		require.NoError(t, err)
		assert.Equal(t, "e", string(k))
	})
}

type foreignDBI struct{}

func (foreignDBI) Name() string { return "foreign" }
func (foreignDBI) Close() error { return nil }
