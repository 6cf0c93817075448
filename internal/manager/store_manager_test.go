package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStore_CreatesAndCaches(t *testing.T) {
	sm := NewStoreManager(t.TempDir(), MemoryProfileDefault, false)
	defer sm.CloseAll()

	first, err := sm.GetStore("social", true)
	require.NoError(t, err)

	second, err := sm.GetStore("social", false)
	require.NoError(t, err)
	assert.Same(t, first, second, "repeat lookups must reuse the open store")
}

func TestGetStore_MissingKeyspace(t *testing.T) {
	sm := NewStoreManager(t.TempDir(), MemoryProfileDefault, false)
	defer sm.CloseAll()

	_, err := sm.GetStore("absent", false)
	assert.Error(t, err)
}

func TestListKeyspaces(t *testing.T) {
	sm := NewStoreManager(t.TempDir(), MemoryProfileLow, false)
	defer sm.CloseAll()

	_, err := sm.GetStore("alpha", true)
	require.NoError(t, err)
	_, err = sm.GetStore("beta", true)
	require.NoError(t, err)

	keyspaces, err := sm.ListKeyspaces()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, keyspaces)
}

func TestCloseAll_ReleasesLocks(t *testing.T) {
	dir := t.TempDir()

	sm := NewStoreManager(dir, MemoryProfileDefault, false)
	_, err := sm.GetStore("social", true)
	require.NoError(t, err)
	sm.CloseAll()

	// A second manager can open the same keyspace once the first let go.
	sm2 := NewStoreManager(dir, MemoryProfileDefault, false)
	defer sm2.CloseAll()
	_, err = sm2.GetStore("social", false)
	require.NoError(t, err)
}
