package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesseradb/tessera/pkg/graph"
)

func testStore(t *testing.T) *GraphStore {
	t.Helper()
	s, err := Open("", &Config{
		InMemory:       true,
		BlockCacheSize: 64 << 20,
		IndexCacheSize: 32 << 20,
		LabelCacheSize: 128,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig(t.TempDir()).Validate())

	bad := DefaultConfig("")
	bad.DataDir = ""
	assert.Error(t, bad.Validate())

	bad = DefaultConfig(t.TempDir())
	bad.LabelCacheSize = 0
	assert.Error(t, bad.Validate())
}

func TestDefineAndResolveType(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	person, err := s.DefineType(ctx, "person", graph.KindEntity)
	require.NoError(t, err)
	assert.True(t, person.Type)
	assert.Equal(t, graph.KindEntity, person.Kind)
	assert.Equal(t, "person", person.Label)

	resolved, err := s.ResolveType(ctx, "person")
	require.NoError(t, err)
	assert.Equal(t, person, resolved)
}

func TestDefineType_Idempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first, err := s.DefineType(ctx, "person", graph.KindEntity)
	require.NoError(t, err)
	second, err := s.DefineType(ctx, "person", graph.KindEntity)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = s.DefineType(ctx, "person", graph.KindRelation)
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestDefineType_Invalid(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.DefineType(ctx, "", graph.KindEntity)
	assert.Error(t, err)

	_, err = s.DefineType(ctx, "thing", graph.Kind("ghost"))
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestResolveType_UnknownWithSuggestions(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.DefineType(ctx, "person", graph.KindEntity)
	require.NoError(t, err)
	_, err = s.DefineType(ctx, "parent", graph.KindRelation)
	require.NoError(t, err)

	_, err = s.ResolveType(ctx, "persno")
	require.ErrorIs(t, err, ErrUnknownType)

	var uerr *UnknownTypeError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "persno", uerr.Label)
	assert.Contains(t, uerr.Suggestions, "person")
	assert.NotContains(t, uerr.Suggestions, "parent") // edit distance 4
}

func TestCreateInstances(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	person, err := s.DefineType(ctx, "person", graph.KindEntity)
	require.NoError(t, err)
	marriage, err := s.DefineType(ctx, "marriage", graph.KindRelation)
	require.NoError(t, err)

	e, err := s.CreateEntity(ctx, person)
	require.NoError(t, err)
	assert.Equal(t, graph.KindEntity, e.Kind)
	assert.Equal(t, "person", e.Label)
	assert.False(t, e.Type)

	r, err := s.CreateRelation(ctx, marriage)
	require.NoError(t, err)
	assert.Equal(t, graph.KindRelation, r.Kind)

	// Type/kind mismatches fail before any write.
	_, err = s.CreateEntity(ctx, marriage)
	assert.ErrorIs(t, err, ErrKindMismatch)
	_, err = s.CreateRelation(ctx, e) // instance, not a type
	assert.ErrorIs(t, err, ErrNotAType)

	loaded, err := s.Concept(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, loaded)
}

func TestCreateAttribute_DedupByValue(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	name, err := s.DefineType(ctx, "name", graph.KindAttribute)
	require.NoError(t, err)

	alice1, err := s.CreateAttribute(ctx, name, "Alice")
	require.NoError(t, err)
	alice2, err := s.CreateAttribute(ctx, name, "Alice")
	require.NoError(t, err)
	assert.Equal(t, alice1.ID, alice2.ID, "equal values must resolve to one attribute")

	bob, err := s.CreateAttribute(ctx, name, "Bob")
	require.NoError(t, err)
	assert.NotEqual(t, alice1.ID, bob.ID)

	_, err = s.CreateAttribute(ctx, name, nil)
	assert.Error(t, err)
}

func TestCreateAttribute_NumericWidthsShareIdentity(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	age, err := s.DefineType(ctx, "age", graph.KindAttribute)
	require.NoError(t, err)

	// The same logical value arrives at different widths depending on the
	// caller (yaml gives int, API callers may pass int64).
	first, err := s.CreateAttribute(ctx, age, int(42))
	require.NoError(t, err)
	second, err := s.CreateAttribute(ctx, age, int64(42))
	require.NoError(t, err)
	third, err := s.CreateAttribute(ctx, age, uint32(42))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "int and int64 must resolve to one attribute")
	assert.Equal(t, first.ID, third.ID, "unsigned widths must resolve to one attribute")
	assert.Equal(t, int64(42), first.Value)

	wide, err := s.CreateAttribute(ctx, age, float32(1.5))
	require.NoError(t, err)
	wide64, err := s.CreateAttribute(ctx, age, float64(1.5))
	require.NoError(t, err)
	assert.Equal(t, wide.ID, wide64.ID, "float32 and float64 must resolve to one attribute")

	other, err := s.CreateAttribute(ctx, age, int64(43))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestRolePlayers(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	person, err := s.DefineType(ctx, "person", graph.KindEntity)
	require.NoError(t, err)
	marriage, err := s.DefineType(ctx, "marriage", graph.KindRelation)
	require.NoError(t, err)

	alice, err := s.CreateEntity(ctx, person)
	require.NoError(t, err)
	bob, err := s.CreateEntity(ctx, person)
	require.NoError(t, err)
	m, err := s.CreateRelation(ctx, marriage)
	require.NoError(t, err)

	require.NoError(t, s.AttachRolePlayer(ctx, m, "spouse", alice))
	require.NoError(t, s.AttachRolePlayer(ctx, m, "spouse", bob))

	players, err := s.RolePlayers(ctx, m)
	require.NoError(t, err)
	require.Len(t, players, 2)
	ids := []string{players[0].Player.ID, players[1].Player.ID}
	assert.Contains(t, ids, alice.ID)
	assert.Contains(t, ids, bob.ID)
	assert.Equal(t, "spouse", players[0].Role)

	// Entities cannot carry role players.
	err = s.AttachRolePlayer(ctx, alice, "spouse", bob)
	assert.ErrorIs(t, err, ErrKindMismatch)
	// Empty role names are rejected.
	err = s.AttachRolePlayer(ctx, m, "", alice)
	assert.Error(t, err)
}

func TestAttributes(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	person, err := s.DefineType(ctx, "person", graph.KindEntity)
	require.NoError(t, err)
	name, err := s.DefineType(ctx, "name", graph.KindAttribute)
	require.NoError(t, err)

	alice, err := s.CreateEntity(ctx, person)
	require.NoError(t, err)
	n, err := s.CreateAttribute(ctx, name, "Alice")
	require.NoError(t, err)

	require.NoError(t, s.AttachAttribute(ctx, alice, n))

	attrs, err := s.Attributes(ctx, alice)
	require.NoError(t, err)
	require.Len(t, attrs, 1)
	assert.Equal(t, n.ID, attrs[0].ID)
	assert.Equal(t, "Alice", attrs[0].Value)

	// Only attribute instances attach as attributes.
	err = s.AttachAttribute(ctx, alice, person)
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir, nil)
	require.NoError(t, err)
	person, err := s.DefineType(ctx, "person", graph.KindEntity)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(dir, nil)
	require.NoError(t, err)
	defer s.Close()

	resolved, err := s.ResolveType(ctx, "person")
	require.NoError(t, err)
	assert.Equal(t, person.ID, resolved.ID)
}
