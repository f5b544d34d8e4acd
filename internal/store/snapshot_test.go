package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flowir/internal/ir"
	"github.com/roach88/flowir/internal/storage"
	"github.com/roach88/flowir/internal/types"
)

var textType = types.Primitive{Name: "Text"}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// buildGraph registers core.id and a composite core.twice calling it twice.
// A non-empty suffix renames core.twice so graphs differ in content.
func buildGraph(suffix string) *ir.Context {
	ctx := ir.NewContext(ir.WithStorageIDs(storage.NewSequentialGenerator(uuid.Nil)))
	id := ctx.RegisterOperator(ctx.NewOperatorBuilder("core.id").
		AddInput("input", textType).
		AddOutput("output", textType).
		Build())
	ctx.RegisterOperator(ctx.NewOperatorBuilder("core.twice"+suffix).
		AddInput("in", textType).
		AddOutput("out", textType).
		AddImplementation(func(b *ir.OperatorBuilder, self ir.Signature) {
			first := b.AddOperation(id, map[string]ir.Value{"input": self.Argument("in")})
			second := b.AddOperation(id, map[string]ir.Value{
				"input": ir.OperationResult{Operation: first, Name: "output"},
			})
			b.AddResult("out", ir.OperationResult{Operation: second, Name: "output"})
		}).
		Build())
	return ctx
}

func TestSaveSnapshotRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	graph := buildGraph("")

	id, inserted, err := s.SaveSnapshot(ctx, "first", graph)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, ir.MustSnapshotHash(graph), id)

	snap, err := s.ReadSnapshot(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, snap.ID)
	assert.Equal(t, "first", snap.Name)
	assert.Equal(t, ir.IRVersion, snap.IRVersion)
	assert.Equal(t, int64(1), snap.Seq)

	body, err := ir.MarshalCanonical(ir.Snapshot(graph))
	require.NoError(t, err)
	assert.Equal(t, string(body), snap.Body)
}

func TestSaveSnapshotIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id1, inserted, err := s.SaveSnapshot(ctx, "first", buildGraph(""))
	require.NoError(t, err)
	require.True(t, inserted)

	// Identical content under a different name keeps the original row.
	id2, inserted, err := s.SaveSnapshot(ctx, "again", buildGraph(""))
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, id1, id2)

	list, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "first", list[0].Name)

	ops, err := s.FindOperators(ctx, "core.id")
	require.NoError(t, err)
	assert.Len(t, ops, 1)
}

func TestListSnapshotsInSaveOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	empty, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	var ids []string
	for i, suffix := range []string{"", "_b", "_c"} {
		id, _, err := s.SaveSnapshot(ctx, "graph"+suffix, buildGraph(suffix))
		require.NoError(t, err, "save %d", i)
		ids = append(ids, id)
	}

	list, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, snap := range list {
		assert.Equal(t, ids[i], snap.ID)
		assert.Equal(t, int64(i+1), snap.Seq)
		assert.Empty(t, snap.Body, "list omits bodies")
	}
}

func TestReadSnapshotNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.ReadSnapshot(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFindOperatorsAcrossSnapshots(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	g1 := buildGraph("")
	g2 := buildGraph("_b")
	id1, _, err := s.SaveSnapshot(ctx, "one", g1)
	require.NoError(t, err)
	id2, _, err := s.SaveSnapshot(ctx, "two", g2)
	require.NoError(t, err)

	ops, err := s.FindOperators(ctx, "core.id")
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, id1, ops[0].SnapshotID)
	assert.Equal(t, "one", ops[0].SnapshotName)
	assert.Equal(t, id2, ops[1].SnapshotID)
	assert.True(t, ops[0].Primitive)
	assert.Equal(t, uint32(1), ops[0].OperatorID)

	// core.id has the same structure in both graphs.
	assert.Equal(t, ops[0].Fingerprint, ops[1].Fingerprint)
	assert.Equal(t, ir.MustFingerprint(g1, 1), ops[0].Fingerprint)

	twice, err := s.FindOperators(ctx, "core.twice")
	require.NoError(t, err)
	require.Len(t, twice, 1)
	assert.False(t, twice[0].Primitive)

	none, err := s.FindOperators(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, none)
}
