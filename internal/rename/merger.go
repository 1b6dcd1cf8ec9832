package rename

import "relabel/internal/checkpoint"

// Merge folds shards into one consolidated original->new mapping. Shards
// are processed in their given (creation-time) order, so on duplicate
// original names the later-written shard wins. Merging is pure and
// idempotent: the same shard set always yields the same mapping.
func Merge(shards []checkpoint.Shard) map[string]string {
	out := make(map[string]string, len(shards))
	for _, sh := range shards {
		out[sh.OriginalName] = sh.NewName
	}
	return out
}

// MergePairs is Merge with a deterministic pair layout for the persisted
// mapping artifact: keys appear in first-encounter order, each carrying
// its winning (latest) value.
func MergePairs(shards []checkpoint.Shard) [][2]string {
	merged := Merge(shards)
	seen := make(map[string]bool, len(merged))
	pairs := make([][2]string, 0, len(merged))
	for _, sh := range shards {
		if seen[sh.OriginalName] {
			continue
		}
		seen[sh.OriginalName] = true
		pairs = append(pairs, [2]string{sh.OriginalName, merged[sh.OriginalName]})
	}
	return pairs
}
