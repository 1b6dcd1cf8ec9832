package rename

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"relabel/internal/checkpoint"
	"relabel/internal/jsast"
	"relabel/internal/oracle"
)

const (
	// DefaultContextWindow bounds the source context handed to the
	// oracle per binding, in bytes.
	DefaultContextWindow = 2048

	shardLabel = "rename"
)

// Orchestrator drives one file's bindings through the naming oracle, one
// at a time, applying collision-safe renames and persisting durable
// progress. Execution is strictly sequential: each rename mutates the
// source text, which invalidates every span the next binding depends on,
// so there is never more than one oracle call in flight.
type Orchestrator struct {
	renamer  oracle.Renamer
	store    *checkpoint.Store
	window   int
	interval int
	progress func(float64)
}

// NewOrchestrator wires an orchestrator. window bounds the oracle
// context in bytes; interval is the number of processed bindings between
// full checkpoint saves (small for rate-limited remote oracles, larger
// for local inference). progress may be nil.
func NewOrchestrator(renamer oracle.Renamer, store *checkpoint.Store, window, interval int, progress func(float64)) *Orchestrator {
	if window <= 0 {
		window = DefaultContextWindow
	}
	if interval <= 0 {
		interval = 2
	}
	return &Orchestrator{
		renamer:  renamer,
		store:    store,
		window:   window,
		interval: interval,
		progress: progress,
	}
}

// RenameSource visits every binding of the source in scope-size order,
// renaming each through the oracle, and returns the rewritten text. st
// carries progress across files and runs: already-processed names are
// never re-presented to the oracle, and on a resumed run previously
// accepted renames are first re-applied to the fresh parse. On oracle or
// apply failure a checkpoint reflecting progress up to (not including)
// the failing binding is saved synchronously before the error is
// returned; the run halts and a re-invocation resumes from that record.
func (o *Orchestrator) RenameSource(ctx context.Context, source, fileLabel string, st *State) (string, error) {
	src := []byte(source)
	p, err := jsast.Parse(ctx, src)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", fileLabel, err)
	}

	fileTargets := make(map[string]bool)

	if st.Resuming {
		st.Resuming = false
		src, p, err = o.reapply(ctx, src, p, st, fileTargets)
		if err != nil {
			return "", fmt.Errorf("reapply checkpointed renames to %s: %w", fileLabel, err)
		}
	}

	// The visitation order is fixed against this parse; renames shift
	// spans, so each binding is re-located by name against a fresh
	// parse when its turn comes.
	order := p.Bindings()
	total := len(order)
	resume := st.IdentIndex
	st.IdentIndex = 0

	sinceSave := 0
	for i := resume; i < total; i++ {
		name := order[i].Name
		if st.Processed[name] {
			o.reportProgress(i+1, total)
			continue
		}

		bindings := p.Bindings()
		b, ok := jsast.FindBinding(bindings, name)
		if !ok {
			// The binding vanished under an earlier, wider rename.
			st.Processed[name] = true
			o.reportProgress(i+1, total)
			continue
		}

		proposed, err := o.renamer.ProposeName(ctx, name, p.ContextWindow(b, o.window))
		if err != nil {
			o.store.Save(st.Record(st.FileIndex, i))
			return "", fmt.Errorf("naming oracle failed for %s in %s: %w", name, fileLabel, err)
		}

		finalName := name
		if candidate := jsast.ToIdentifier(proposed); candidate != name {
			for fileTargets[candidate] || jsast.BoundInScope(bindings, candidate, b.Scope) {
				candidate = "_" + candidate
			}
			finalName = candidate

			src = p.Rename(b, finalName)
			next, err := jsast.Parse(ctx, src)
			if err != nil {
				o.store.Save(st.Record(st.FileIndex, i))
				return "", fmt.Errorf("rename %s -> %s in %s broke the source: %w", name, finalName, fileLabel, err)
			}
			p = next

			st.Renames[name] = finalName
			fileTargets[finalName] = true
		}

		o.store.SaveShard(shardLabel, checkpoint.Shard{
			OriginalName: name,
			NewName:      finalName,
			File:         fileLabel,
		})

		st.Processed[name] = true
		sinceSave++
		o.reportProgress(i+1, total)

		if sinceSave >= o.interval {
			o.store.Save(st.Record(st.FileIndex, i+1))
			sinceSave = 0
		}
	}

	if o.progress != nil {
		o.progress(1)
	}
	return string(src), nil
}

// reapply replays checkpointed renames against a freshly parsed program.
// Each run reparses input from scratch, so the mutations of the
// interrupted run must be reconstructed before new work starts. Entries
// whose original name no longer binds are skipped silently; only names
// are persisted, so this assumes the input did not change between runs.
func (o *Orchestrator) reapply(ctx context.Context, src []byte, p *jsast.Program, st *State, fileTargets map[string]bool) ([]byte, *jsast.Program, error) {
	originals := make([]string, 0, len(st.Renames))
	for orig := range st.Renames {
		originals = append(originals, orig)
	}
	sort.Strings(originals)

	for _, orig := range originals {
		finalName := st.Renames[orig]
		out, ok := p.RenameByName(orig, finalName)
		if !ok {
			slog.Debug("checkpointed rename no longer binds, skipping", "original", orig, "new", finalName)
			continue
		}
		next, err := jsast.Parse(ctx, out)
		if err != nil {
			return nil, nil, err
		}
		src, p = out, next
		fileTargets[finalName] = true
	}
	return src, p, nil
}

func (o *Orchestrator) reportProgress(done, total int) {
	if o.progress == nil || total == 0 {
		return
	}
	o.progress(float64(done) / float64(total))
}
