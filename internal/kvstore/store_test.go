// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kvstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "progress.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"sqlite": func(t *testing.T) Store { return openTemp(t) },
		"memory": func(*testing.T) Store { return NewMemory() },
	}
	for name, mk := range stores {
		t.Run(name, func(t *testing.T) {
			s := mk(t)

			_, ok, err := s.Get("workflowProgress")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set("workflowProgress", "[1,3]"))
			require.NoError(t, s.Set("workflowProgress", "[1,3,2]"))
			v, ok, err := s.Get("workflowProgress")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "[1,3,2]", v)

			require.NoError(t, s.Delete("workflowProgress"))
			require.NoError(t, s.Delete("workflowProgress"))
			_, ok, err = s.Get("workflowProgress")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("workflowProgress", "[5]"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Get("workflowProgress")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[5]", v)
}
