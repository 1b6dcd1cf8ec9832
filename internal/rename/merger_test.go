package rename

import (
	"testing"

	"relabel/internal/checkpoint"

	"github.com/stretchr/testify/assert"
)

func TestMerge_DisjointShards(t *testing.T) {
	shards := []checkpoint.Shard{
		{OriginalName: "x", NewName: "array", File: "a.js"},
		{OriginalName: "y", NewName: "buffer", File: "b.js"},
	}

	got := Merge(shards)
	assert.Equal(t, map[string]string{"x": "array", "y": "buffer"}, got)
}

func TestMerge_LaterShardWinsOnCollision(t *testing.T) {
	shards := []checkpoint.Shard{
		{OriginalName: "z", NewName: "first", Timestamp: 1},
		{OriginalName: "z", NewName: "second", Timestamp: 2},
	}

	got := Merge(shards)
	assert.Equal(t, map[string]string{"z": "second"}, got)
}

func TestMerge_Idempotent(t *testing.T) {
	shards := []checkpoint.Shard{
		{OriginalName: "x", NewName: "array"},
		{OriginalName: "z", NewName: "first"},
		{OriginalName: "z", NewName: "second"},
	}

	first := Merge(shards)
	second := Merge(shards)
	assert.Equal(t, first, second)
}

func TestMerge_Empty(t *testing.T) {
	assert.Empty(t, Merge(nil))
	assert.Empty(t, MergePairs(nil))
}

func TestMergePairs_FirstEncounterOrderLatestValue(t *testing.T) {
	shards := []checkpoint.Shard{
		{OriginalName: "x", NewName: "array"},
		{OriginalName: "z", NewName: "first"},
		{OriginalName: "y", NewName: "buffer"},
		{OriginalName: "z", NewName: "second"},
	}

	got := MergePairs(shards)
	assert.Equal(t, [][2]string{{"x", "array"}, {"z", "second"}, {"y", "buffer"}}, got)
}
