package testutils

import (
	"crypto/rand"
	"fmt"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/lmdbdown/pkg/db"
	"github.com/eigerco/lmdbdown/pkg/db/lmdb"
	"github.com/eigerco/lmdbdown/pkg/db/pebble"
)

// Engines lists every engine binding, keyed by name, for tests that must hold on all of them.
func Engines() map[string]db.Engine {
	return map[string]db.Engine{
		"lmdb":   lmdb.Engine{},
		"pebble": pebble.Engine{},
	}
}

// StoreDir returns a fresh directory path under t's temp dir that does not exist yet.
func StoreDir(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("%s/store-%s", t.TempDir(), RandomName(t))
}

func RandomName(t *testing.T) string {
	b := make([]byte, 6)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return fmt.Sprintf("%x", b)
}

// Dump drains it into "key=value" lines and closes it.
func Dump(t *testing.T, it db.Iterator) []string {
	t.Helper()
	defer it.Close() //nolint:errcheck

	var lines []string
	for it.Next() {
		e := it.Entry()
		lines = append(lines, e.Key.Text()+"="+e.Value.Text())
	}
	require.NoError(t, it.Err())
	return lines
}

// RequireKeyspace fails with a unified diff when the dumped keyspace differs from expected.
func RequireKeyspace(t *testing.T, expected, actual []string) {
	t.Helper()
	want := strings.Join(expected, "\n") + "\n"
	got := strings.Join(actual, "\n") + "\n"
	if want == got {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "Expected",
		ToFile:   "Actual",
		Context:  1,
	})
	t.Fatalf("keyspace mismatch:\n%s", diff)
}
