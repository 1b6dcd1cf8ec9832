package rename

import (
	"sort"
	"time"

	"relabel/internal/checkpoint"
)

// State is the in-memory orchestration progress shared by the pipeline
// driver and the orchestrator across files within one run. It is the
// live counterpart of a checkpoint.Record.
type State struct {
	// Processed holds every original name already visited (renamed or
	// left unchanged). It only grows during a run.
	Processed map[string]bool
	// Renames maps original names to their accepted replacements.
	Renames map[string]string
	// FileIndex and IdentIndex locate the next unit of work.
	FileIndex  int
	IdentIndex int
	// Resuming is set when the state was restored from a checkpoint, in
	// which case prior renames must be re-applied to freshly parsed
	// source before new work starts.
	Resuming bool
	// CurrentFile labels shards with the file being processed. Not
	// persisted.
	CurrentFile string
}

// NewState returns an empty progress state for a fresh run.
func NewState() *State {
	return &State{
		Processed: make(map[string]bool),
		Renames:   make(map[string]string),
	}
}

// StateFromRecord restores progress from a persisted checkpoint record.
func StateFromRecord(rec checkpoint.Record) *State {
	st := NewState()
	for _, name := range rec.ProcessedIdentifiers {
		st.Processed[name] = true
	}
	for _, pair := range rec.Renames {
		st.Renames[pair[0]] = pair[1]
	}
	st.FileIndex = rec.CurrentFileIndex
	st.IdentIndex = rec.CurrentIdentifierIndex
	st.Resuming = true
	return st
}

// Record snapshots the state into the persisted wire shape. Set keys are
// sorted so records are byte-stable for identical progress.
func (st *State) Record(fileIndex, identIndex int) checkpoint.Record {
	processed := make([]string, 0, len(st.Processed))
	for name := range st.Processed {
		processed = append(processed, name)
	}
	sort.Strings(processed)

	renames := make([][2]string, 0, len(st.Renames))
	for orig, final := range st.Renames {
		renames = append(renames, [2]string{orig, final})
	}
	sort.Slice(renames, func(i, j int) bool { return renames[i][0] < renames[j][0] })

	return checkpoint.Record{
		ProcessedIdentifiers:   processed,
		Renames:                renames,
		CurrentFileIndex:       fileIndex,
		CurrentIdentifierIndex: identIndex,
		Timestamp:              time.Now().UnixMilli(),
	}
}
