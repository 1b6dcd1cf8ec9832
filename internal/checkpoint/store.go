package checkpoint

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

const (
	recordFile = "checkpoint.json"
	shardDir   = "shards"
)

// Record is the identifier-granularity progress snapshot. It
// deliberately excludes source text so frequent saves stay cheap; the
// per-file snapshot lives as the emitted output file instead.
type Record struct {
	ProcessedIdentifiers   []string    `json:"processedIdentifiers"`
	Renames                [][2]string `json:"renames"`
	CurrentFileIndex       int         `json:"currentFileIndex"`
	CurrentIdentifierIndex int         `json:"currentIdentifierIndex"`
	Timestamp              int64       `json:"timestamp"`
}

// Shard is one immutable record of a completed rename (or no-op)
// decision, persisted right after the oracle call so a crash loses at
// most the in-flight binding.
type Shard struct {
	OriginalName string `json:"originalName"`
	NewName      string `json:"newName"`
	Timestamp    int64  `json:"timestamp"`
	File         string `json:"file,omitempty"`
}

// Store persists progress records and result shards as JSON files under
// a single output directory. The canonical record is overwritten
// wholesale on each save; shards are append-only. Persistence is
// best-effort: write failures are logged, never raised, so a flaky disk
// degrades durability instead of killing the run. A store is a
// single-writer resource; concurrent runs against one directory are
// unsupported.
type Store struct {
	dir string
	seq atomic.Uint64
}

// New creates a store rooted at dir. The directory is created lazily on
// first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) recordPath() string { return filepath.Join(s.dir, recordFile) }
func (s *Store) shardPath() string  { return filepath.Join(s.dir, shardDir) }

// Save overwrites the canonical checkpoint record. Failures are logged
// and swallowed.
func (s *Store) Save(rec Record) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		slog.Warn("checkpoint save skipped: cannot create directory", "dir", s.dir, "error", err)
		return
	}
	data, err := json.Marshal(rec)
	if err != nil {
		slog.Warn("checkpoint save skipped: cannot encode record", "error", err)
		return
	}
	// Write-then-rename keeps a torn write from clobbering the last
	// good record.
	tmp := s.recordPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		slog.Warn("checkpoint save failed", "path", tmp, "error", err)
		return
	}
	if err := os.Rename(tmp, s.recordPath()); err != nil {
		slog.Warn("checkpoint save failed", "path", s.recordPath(), "error", err)
	}
}

// Load returns the checkpoint record. A missing or unparseable record is
// reported as absent, never as an error.
func (s *Store) Load() (Record, bool) {
	data, err := os.ReadFile(s.recordPath())
	if err != nil {
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		slog.Warn("checkpoint record unreadable, treating as absent", "path", s.recordPath(), "error", err)
		return Record{}, false
	}
	return rec, true
}

// Exists probes for a checkpoint record.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.recordPath())
	return err == nil
}

// Clear removes the checkpoint record. Errors are logged, not raised.
func (s *Store) Clear() {
	if err := os.Remove(s.recordPath()); err != nil && !os.IsNotExist(err) {
		slog.Warn("checkpoint clear failed", "path", s.recordPath(), "error", err)
	}
}

// SaveShard writes an independent, uniquely named shard record. The name
// derives from the label, a nanosecond timestamp, and a per-store
// sequence number, so shards are never overwritten and lexical filename
// order is creation order.
func (s *Store) SaveShard(label string, sh Shard) {
	if sh.Timestamp == 0 {
		sh.Timestamp = time.Now().UnixMilli()
	}
	if err := os.MkdirAll(s.shardPath(), 0o755); err != nil {
		slog.Warn("shard save skipped: cannot create directory", "dir", s.shardPath(), "error", err)
		return
	}
	data, err := json.Marshal(sh)
	if err != nil {
		slog.Warn("shard save skipped: cannot encode shard", "error", err)
		return
	}
	name := fmt.Sprintf("%s-%019d-%06d.json", sanitizeLabel(label), time.Now().UnixNano(), s.seq.Add(1))
	path := filepath.Join(s.shardPath(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		slog.Warn("shard save failed", "path", path, "error", err)
	}
}

// LoadAllShards enumerates and parses every shard in creation order. A
// missing shard area yields an empty list; enumeration or parse errors
// are treated the same way.
func (s *Store) LoadAllShards() []Shard {
	entries, err := os.ReadDir(s.shardPath())
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	shards := make([]Shard, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.shardPath(), name))
		if err != nil {
			return nil
		}
		var sh Shard
		if err := json.Unmarshal(data, &sh); err != nil {
			return nil
		}
		shards = append(shards, sh)
	}
	return shards
}

// ShardCount reports how many shards are currently persisted.
func (s *Store) ShardCount() int {
	entries, err := os.ReadDir(s.shardPath())
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			n++
		}
	}
	return n
}

// ClearShards removes the shard area after a successful merge. Errors
// are logged, not raised.
func (s *Store) ClearShards() {
	if err := os.RemoveAll(s.shardPath()); err != nil {
		slog.Warn("shard clear failed", "path", s.shardPath(), "error", err)
	}
}

func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "shard"
	}
	var sb strings.Builder
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
