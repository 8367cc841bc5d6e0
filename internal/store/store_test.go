package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/habitloop/habitloop-server/internal/store"
)

// newTestStore opens a store on a temp directory and closes it when the test ends.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "store-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath, nil, store.NewNoopEmitter())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}
