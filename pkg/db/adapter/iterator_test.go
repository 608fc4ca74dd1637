package adapter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/lmdbdown/internal/testutils"
	"github.com/eigerco/lmdbdown/pkg/db"
)

type variant struct {
	engine db.Engine
	opts   db.Options
}

// variants covers every engine plus scoped sentinels where the engine supports them.
func variants() map[string]variant {
	out := make(map[string]variant)
	for name, engine := range testutils.Engines() {
		out[name] = variant{engine: engine}
	}
	out["pebble-scoped"] = variant{engine: testutils.Engines()["pebble"], opts: db.Options{Sentinel: db.SentinelScoped}}
	return out
}

func TestIterator_Ranges(t *testing.T) {
	abcd := []string{"a", "b", "c", "d"}
	ace := []string{"a", "c", "e"}

	tests := []struct {
		name     string
		keys     []string
		opts     db.IteratorOptions
		expected []string
	}{
		{"everything", abcd, db.IteratorOptions{}, []string{"a=va", "b=vb", "c=vc", "d=vd"}},
		{"everything reversed", abcd, db.IteratorOptions{Reverse: true}, []string{"d=vd", "c=vc", "b=vb", "a=va"}},
		{"gte lte", abcd, db.IteratorOptions{Gte: []byte("b"), Lte: []byte("c")}, []string{"b=vb", "c=vc"}},
		{"gte lte reversed", abcd, db.IteratorOptions{Gte: []byte("b"), Lte: []byte("c"), Reverse: true}, []string{"c=vc", "b=vb"}},
		{"gt lt", abcd, db.IteratorOptions{Gt: []byte("a"), Lt: []byte("d")}, []string{"b=vb", "c=vc"}},
		{"gt lt reversed", abcd, db.IteratorOptions{Gt: []byte("a"), Lt: []byte("d"), Reverse: true}, []string{"c=vc", "b=vb"}},
		{"limit", abcd, db.IteratorOptions{Limit: 1}, []string{"a=va"}},
		{"limit reversed", abcd, db.IteratorOptions{Limit: 2, Reverse: true}, []string{"d=vd", "c=vc"}},
		{"negative limit", abcd, db.IteratorOptions{Limit: -1, Gte: []byte("c")}, []string{"c=vc", "d=vd"}},
		{"start end", abcd, db.IteratorOptions{Start: []byte("b"), End: []byte("c")}, []string{"b=vb", "c=vc"}},
		{"start end reversed", abcd, db.IteratorOptions{Start: []byte("c"), End: []byte("b"), Reverse: true}, []string{"c=vc", "b=vb"}},
		{"explicit bound wins over start", abcd, db.IteratorOptions{Start: []byte("a"), Gte: []byte("c")}, []string{"c=vc", "d=vd"}},
		{"empty store", nil, db.IteratorOptions{Gte: []byte("a")}, nil},

		{"absent gt", ace, db.IteratorOptions{Gt: []byte("b")}, []string{"c=vc", "e=ve"}},
		{"absent gte", ace, db.IteratorOptions{Gte: []byte("b")}, []string{"c=vc", "e=ve"}},
		{"absent gte before first", ace, db.IteratorOptions{Gte: []byte("0")}, []string{"a=va", "c=vc", "e=ve"}},
		{"absent gt after last", ace, db.IteratorOptions{Gt: []byte("f")}, nil},
		{"absent lt reversed", ace, db.IteratorOptions{Lt: []byte("d"), Reverse: true}, []string{"c=vc", "a=va"}},
		{"absent lte reversed", ace, db.IteratorOptions{Lte: []byte("d"), Reverse: true}, []string{"c=vc", "a=va"}},
		{"absent lte after last reversed", ace, db.IteratorOptions{Lte: []byte("z"), Reverse: true}, []string{"e=ve", "c=vc", "a=va"}},
		{"absent lt before first reversed", ace, db.IteratorOptions{Lt: []byte("0"), Reverse: true}, nil},
		{"absent upper forward", ace, db.IteratorOptions{Lt: []byte("d")}, []string{"a=va", "c=vc"}},
		{"absent both reversed", ace, db.IteratorOptions{Gt: []byte("b"), Lt: []byte("f"), Reverse: true}, []string{"e=ve", "c=vc"}},
		{"empty range", ace, db.IteratorOptions{Gt: []byte("c"), Lt: []byte("d")}, nil},
	}
	for name, v := range variants() {
		for _, tc := range tests {
			t.Run(name+"/"+tc.name, func(t *testing.T) {
				s := openStore(t, v.engine, v.opts)
				seed(t, s, tc.keys...)

				it, err := s.NewIterator(tc.opts)
				require.NoError(t, err)
				testutils.RequireKeyspace(t, tc.expected, testutils.Dump(t, it))

				// synthesized bounds never leave anything behind
				var all []string
				for _, k := range tc.keys {
					all = append(all, k+"=v"+k)
				}
				testutils.RequireKeyspace(t, all, keyspace(t, s))
			})
		}
	}
}

func TestIterator_ConflictingBounds(t *testing.T) {
	for name, v := range variants() {
		t.Run(name, func(t *testing.T) {
			s := openStore(t, v.engine, v.opts)
			seed(t, s, "a")

			_, err := s.NewIterator(db.IteratorOptions{Gt: []byte("a"), Gte: []byte("a")})
			assert.ErrorIs(t, err, db.ErrValidation)
			assert.EqualError(t, err, "db: invalid argument: gt can not be provided with gte")

			_, err = s.NewIterator(db.IteratorOptions{Lt: []byte("a"), Lte: []byte("a")})
			assert.ErrorIs(t, err, db.ErrValidation)
		})
	}
}

func TestIterator_Lifecycle(t *testing.T) {
	for name, v := range variants() {
		t.Run(name, func(t *testing.T) {
			t.Run("close mid scan then read", func(t *testing.T) {
				s := openStore(t, v.engine, v.opts)
				seed(t, s, "a", "b", "c")

				it, err := s.NewIterator(db.IteratorOptions{})
				require.NoError(t, err)
				require.True(t, it.Next())
				assert.Equal(t, "a", it.Entry().Key.Text())
				require.NoError(t, it.Close())

				got, err := s.Get([]byte("b"), db.ReadOptions{})
				require.NoError(t, err)
				assert.Equal(t, "vb", got.Text())

				assert.False(t, it.Next())
				assert.ErrorIs(t, it.Err(), db.ErrIteratorClosed)
				assert.NoError(t, it.Close())
			})

			t.Run("exhausted stays exhausted", func(t *testing.T) {
				s := openStore(t, v.engine, v.opts)
				seed(t, s, "a")

				it, err := s.NewIterator(db.IteratorOptions{})
				require.NoError(t, err)
				defer it.Close() //nolint:errcheck

				require.True(t, it.Next())
				for range 3 {
					assert.False(t, it.Next())
					assert.NoError(t, it.Err())
				}
			})

			t.Run("writes during a scan are not observed", func(t *testing.T) {
				s := openStore(t, v.engine, v.opts)
				seed(t, s, "a", "c")

				it, err := s.NewIterator(db.IteratorOptions{Gte: []byte("b")})
				require.NoError(t, err)
				seed(t, s, "b", "d")

				testutils.RequireKeyspace(t, []string{"c=vc"}, testutils.Dump(t, it))
				testutils.RequireKeyspace(t, []string{"a=va", "b=vb", "c=vc", "d=vd"}, keyspace(t, s))
			})

			t.Run("store close closes open iterators", func(t *testing.T) {
				s := openStore(t, v.engine, v.opts)
				seed(t, s, "a", "b")

				it, err := s.NewIterator(db.IteratorOptions{})
				require.NoError(t, err)
				require.True(t, it.Next())

				require.NoError(t, s.Close())
				assert.False(t, it.Next())
				assert.ErrorIs(t, it.Err(), db.ErrIteratorClosed)
			})

			t.Run("buffers", func(t *testing.T) {
				s := openStore(t, v.engine, v.opts)
				require.NoError(t, s.Put([]byte("k"), db.Text("v")))
				require.NoError(t, s.Put([]byte("z"), db.Boolean(true)))

				it, err := s.NewIterator(db.IteratorOptions{KeyAsBuffer: true, ValueAsBuffer: true})
				require.NoError(t, err)
				defer it.Close() //nolint:errcheck

				require.True(t, it.Next())
				e := it.Entry()
				assert.Equal(t, db.KindBytes, e.Key.Kind())
				assert.Equal(t, []byte("k"), e.Key.Bytes())
				assert.Equal(t, []byte("v"), e.Value.Bytes())

				// a boolean is one byte and cannot be read as text
				require.True(t, it.Next())
				assert.Equal(t, []byte{1}, it.Entry().Value.Bytes())
				assert.False(t, it.Next())
			})
		})
	}
}
