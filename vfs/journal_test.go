package vfs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalTailOrdering(t *testing.T) {
	j := &journal{}
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		j.append(Operation{Time: base.Add(time.Duration(i) * time.Second), Kind: OpCreate, Path: "/x", Success: true})
	}
	require.Equal(t, 5, j.size())

	tail := j.tail(3)
	require.Len(t, tail, 3)
	assert.True(t, tail[0].Time.After(tail[1].Time))
	assert.True(t, tail[1].Time.After(tail[2].Time))
	assert.Equal(t, base.Add(4*time.Second), tail[0].Time)
}

func TestJournalTailBounds(t *testing.T) {
	j := &journal{}
	j.append(Operation{Kind: OpRead, Path: "/a"})
	j.append(Operation{Kind: OpWrite, Path: "/b"})

	assert.Len(t, j.tail(0), 2)
	assert.Len(t, j.tail(-1), 2)
	assert.Len(t, j.tail(10), 2)
	assert.Len(t, j.tail(1), 1)
}

func TestJournalTailIsACopy(t *testing.T) {
	j := &journal{}
	j.append(Operation{Kind: OpRead, Path: "/a", Success: true})

	tail := j.tail(1)
	tail[0].Path = "/mutated"
	assert.Equal(t, "/a", j.tail(1)[0].Path)
}

func TestStatisticsHitRate(t *testing.T) {
	assert.Zero(t, Statistics{}.HitRate())
	assert.InDelta(t, 0.75, Statistics{CacheHits: 3, CacheMisses: 1}.HitRate(), 1e-9)
	assert.InDelta(t, 1.0, Statistics{CacheHits: 2}.HitRate(), 1e-9)
}
