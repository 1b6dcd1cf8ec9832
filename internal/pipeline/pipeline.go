// Package pipeline sequences extracted source files through an ordered
// list of transformation stages, persisting per-file checkpoints so an
// interrupted run resumes at the file (and identifier) where it stopped.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"relabel/internal/checkpoint"
	"relabel/internal/rename"
)

// MappingArtifact is the filename of the consolidated rename mapping
// written to the output directory on successful completion.
const MappingArtifact = "rename-map.json"

// Stage transforms one file's source text. Stages compose by threading
// text through in fixed order; a failing stage has already persisted
// whatever checkpoint it needs, so the driver only surfaces the error.
type Stage interface {
	Name() string
	Apply(ctx context.Context, source string) (string, error)
}

// Driver runs every input file through the stage list, writes the
// transformed text to the output directory, and advances the file-level
// checkpoint after each file. When all files complete it clears the
// checkpoint, merges all result shards, and persists the consolidated
// mapping artifact. On failure the checkpoint is retained and the error
// tells the operator to re-run and resume.
type Driver struct {
	store  *checkpoint.Store
	stages []Stage
	outDir string
}

// NewDriver wires a driver. Stages run in the given order for each file.
func NewDriver(store *checkpoint.Store, outDir string, stages ...Stage) *Driver {
	return &Driver{store: store, stages: stages, outDir: outDir}
}

// Run processes files in order, starting at the state's file index.
// Files whose trimmed content is empty are copied through without
// running stages; that is not an error.
func (d *Driver) Run(ctx context.Context, files []string, st *rename.State) error {
	if err := os.MkdirAll(d.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", d.outDir, err)
	}

	for i := st.FileIndex; i < len(files); i++ {
		st.FileIndex = i
		if err := d.processFile(ctx, files[i], st); err != nil {
			return fmt.Errorf("file %s: %w (re-run the same command to resume from the last checkpoint)", files[i], err)
		}
		// Advance to the next file with the identifier cursor reset; an
		// interruption from here resumes at file i+1.
		d.store.Save(st.Record(i+1, 0))
	}

	d.store.Clear()

	shards := d.store.LoadAllShards()
	pairs := rename.MergePairs(shards)
	if len(pairs) > 0 {
		if err := d.writeMapping(pairs); err != nil {
			return err
		}
	}
	d.store.ClearShards()
	return nil
}

func (d *Driver) processFile(ctx context.Context, path string, st *rename.State) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	text := string(content)
	if strings.TrimSpace(text) == "" {
		slog.Info("skipping empty file", "file", path)
		return d.writeOutput(path, text)
	}

	label := filepath.Base(path)
	st.CurrentFile = label
	for _, stage := range d.stages {
		text, err = stage.Apply(ctx, text)
		if err != nil {
			return fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
	}

	return d.writeOutput(path, text)
}

// writeOutput emits the transformed text into the output directory. The
// emitted file doubles as the file-level snapshot, keeping identifier
// checkpoints free of source text.
func (d *Driver) writeOutput(path, text string) error {
	out := filepath.Join(d.outDir, filepath.Base(path))
	if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// WriteMappingFromShards folds the given shards into the mapping
// artifact without running stages. Exposed for the standalone merge
// recovery command.
func (d *Driver) WriteMappingFromShards(shards []checkpoint.Shard) error {
	if err := os.MkdirAll(d.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", d.outDir, err)
	}
	pairs := rename.MergePairs(shards)
	if len(pairs) == 0 {
		return nil
	}
	return d.writeMapping(pairs)
}

func (d *Driver) writeMapping(pairs [][2]string) error {
	data, err := json.MarshalIndent(pairs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode rename mapping: %w", err)
	}
	out := filepath.Join(d.outDir, MappingArtifact)
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write rename mapping: %w", err)
	}
	return nil
}
