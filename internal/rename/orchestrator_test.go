package rename

import (
	"context"
	"fmt"
	"testing"

	"relabel/internal/checkpoint"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRenamer returns deterministic proposals for offline testing.
// Names without a mapping are returned unchanged; names in failOn make
// the oracle raise, and every call is counted.
type fakeRenamer struct {
	proposals map[string]string
	failOn    map[string]bool
	calls     map[string]int
}

func newFakeRenamer(proposals map[string]string) *fakeRenamer {
	return &fakeRenamer{
		proposals: proposals,
		failOn:    make(map[string]bool),
		calls:     make(map[string]int),
	}
}

func (f *fakeRenamer) ProposeName(_ context.Context, identifier, _ string) (string, error) {
	f.calls[identifier]++
	if f.failOn[identifier] {
		return "", fmt.Errorf("simulated oracle outage for %s", identifier)
	}
	if proposed, ok := f.proposals[identifier]; ok {
		return proposed, nil
	}
	return identifier, nil
}

const addSource = "function f(a,b){return a+b;}"

func TestOrchestrator_RenamesWholeFile(t *testing.T) {
	store := checkpoint.New(t.TempDir())
	fake := newFakeRenamer(map[string]string{"a": "addend1", "b": "addend2"})

	var fractions []float64
	orch := NewOrchestrator(fake, store, 4096, 2, func(fr float64) { fractions = append(fractions, fr) })

	st := NewState()
	out, err := orch.RenameSource(context.Background(), addSource, "add.js", st)
	require.NoError(t, err)

	assert.Equal(t, "function f(addend1,addend2){return addend1+addend2;}", out)
	assert.Equal(t, map[string]string{"a": "addend1", "b": "addend2"}, st.Renames)
	assert.True(t, st.Processed["a"])
	assert.True(t, st.Processed["b"])
	assert.True(t, st.Processed["f"], "unchanged names still count as visited")

	require.NotEmpty(t, fractions)
	assert.Equal(t, float64(1), fractions[len(fractions)-1])

	// One shard per visited binding, rename or not.
	shards := store.LoadAllShards()
	assert.Len(t, shards, 3)
}

func TestOrchestrator_NoDuplicateRenameTargets(t *testing.T) {
	store := checkpoint.New(t.TempDir())
	// Both parameters get the same proposal; the second must be
	// disambiguated with the minimal underscore prefix.
	fake := newFakeRenamer(map[string]string{"a": "sum", "b": "sum"})
	orch := NewOrchestrator(fake, store, 4096, 2, nil)

	st := NewState()
	out, err := orch.RenameSource(context.Background(), addSource, "add.js", st)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"a": "sum", "b": "_sum"}, st.Renames)
	assert.Contains(t, out, "function f(sum,_sum)")
}

func TestOrchestrator_CollisionWithExistingBinding(t *testing.T) {
	store := checkpoint.New(t.TempDir())
	// Proposal collides with the enclosing function's own name.
	fake := newFakeRenamer(map[string]string{"a": "f"})
	orch := NewOrchestrator(fake, store, 4096, 2, nil)

	st := NewState()
	_, err := orch.RenameSource(context.Background(), addSource, "add.js", st)
	require.NoError(t, err)

	assert.Equal(t, "_f", st.Renames["a"])
}

func TestOrchestrator_InvalidProposalSanitized(t *testing.T) {
	store := checkpoint.New(t.TempDir())
	fake := newFakeRenamer(map[string]string{"a": "first addend!"})
	orch := NewOrchestrator(fake, store, 4096, 2, nil)

	st := NewState()
	out, err := orch.RenameSource(context.Background(), addSource, "add.js", st)
	require.NoError(t, err)

	assert.Equal(t, "firstAddend", st.Renames["a"])
	assert.Contains(t, out, "firstAddend")
}

func TestOrchestrator_OracleFailureCheckpointsAndHalts(t *testing.T) {
	dir := t.TempDir()
	store := checkpoint.New(dir)
	fake := newFakeRenamer(map[string]string{"a": "addend1", "b": "addend2"})
	fake.failOn["b"] = true

	orch := NewOrchestrator(fake, store, 4096, 100, nil)
	st := NewState()
	st.FileIndex = 0

	_, err := orch.RenameSource(context.Background(), addSource, "add.js", st)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "naming oracle failed for b")

	// The synchronous checkpoint reflects progress up to, but not
	// including, the failing binding. Visitation order is f, a, b so
	// the identifier cursor points at index 2.
	rec, ok := store.Load()
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"f", "a"}, rec.ProcessedIdentifiers)
	assert.Equal(t, [][2]string{{"a", "addend1"}}, rec.Renames)
	assert.Equal(t, 0, rec.CurrentFileIndex)
	assert.Equal(t, 2, rec.CurrentIdentifierIndex)
}

func TestOrchestrator_ResumeSkipsProcessedNames(t *testing.T) {
	dir := t.TempDir()
	store := checkpoint.New(dir)

	// First run dies on b.
	failing := newFakeRenamer(map[string]string{"a": "addend1", "b": "addend2"})
	failing.failOn["b"] = true
	orch := NewOrchestrator(failing, store, 4096, 100, nil)
	_, err := orch.RenameSource(context.Background(), addSource, "add.js", NewState())
	require.Error(t, err)
	require.Equal(t, 1, failing.calls["a"])

	// Second run resumes from the record against freshly "parsed"
	// original source, as a new process would.
	rec, ok := store.Load()
	require.True(t, ok)
	st := StateFromRecord(rec)
	st.FileIndex = rec.CurrentFileIndex
	st.IdentIndex = rec.CurrentIdentifierIndex

	healthy := newFakeRenamer(map[string]string{"a": "addend1", "b": "addend2"})
	orch = NewOrchestrator(healthy, store, 4096, 100, nil)
	out, err := orch.RenameSource(context.Background(), addSource, "add.js", st)
	require.NoError(t, err)

	assert.Equal(t, "function f(addend1,addend2){return addend1+addend2;}", out)
	assert.Zero(t, healthy.calls["a"], "processed names are never re-presented to the oracle")
	assert.Zero(t, healthy.calls["f"])
	assert.Equal(t, 1, healthy.calls["b"])

	// The final map is a superset of the pre-interruption map.
	for _, pair := range rec.Renames {
		assert.Equal(t, pair[1], st.Renames[pair[0]])
	}
	assert.Equal(t, "addend2", st.Renames["b"])
}

func TestOrchestrator_PeriodicCheckpoint(t *testing.T) {
	store := checkpoint.New(t.TempDir())
	fake := newFakeRenamer(map[string]string{"a": "addend1", "b": "addend2"})

	// Interval 1: a record lands after every processed binding.
	orch := NewOrchestrator(fake, store, 4096, 1, nil)
	_, err := orch.RenameSource(context.Background(), addSource, "add.js", NewState())
	require.NoError(t, err)

	rec, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, 3, rec.CurrentIdentifierIndex)
	assert.Len(t, rec.ProcessedIdentifiers, 3)
}

func TestOrchestrator_UnparseableSourceFails(t *testing.T) {
	store := checkpoint.New(t.TempDir())
	orch := NewOrchestrator(newFakeRenamer(nil), store, 4096, 2, nil)

	_, err := orch.RenameSource(context.Background(), "function ((( {", "broken.js", NewState())
	require.Error(t, err)
}

func TestStateRecordRoundtrip(t *testing.T) {
	st := NewState()
	st.Processed["a"] = true
	st.Processed["f"] = true
	st.Renames["a"] = "addend1"

	rec := st.Record(2, 5)
	assert.Equal(t, []string{"a", "f"}, rec.ProcessedIdentifiers, "sorted for stable records")
	assert.Equal(t, [][2]string{{"a", "addend1"}}, rec.Renames)
	assert.Equal(t, 2, rec.CurrentFileIndex)
	assert.Equal(t, 5, rec.CurrentIdentifierIndex)
	assert.NotZero(t, rec.Timestamp)

	restored := StateFromRecord(rec)
	assert.True(t, restored.Resuming)
	assert.Equal(t, st.Processed, restored.Processed)
	assert.Equal(t, st.Renames, restored.Renames)
	assert.Equal(t, 2, restored.FileIndex)
	assert.Equal(t, 5, restored.IdentIndex)
}
