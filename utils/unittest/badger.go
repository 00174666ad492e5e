package unittest

import (
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/require"
)

// RunWithBadgerDB runs the test function against a badger instance in a
// temporary directory, cleaned up with the test.
func RunWithBadgerDB(t *testing.T, f func(*badger.DB)) {
	opts := badger.
		LSMOnlyOptions(t.TempDir()).
		WithKeepL0InMemory(true).
		WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, db.Close())
	}()
	f(db)
}
