package blister

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogOrdersByDateAdded(t *testing.T) {
	base := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)

	newest := NewKeyBeatmap(3)
	newest.DateAdded = base.Add(48 * time.Hour)
	oldest := NewKeyBeatmap(1)
	oldest.DateAdded = base
	middle := NewLevelIDBeatmap("level ID")
	middle.DateAdded = base.Add(24 * time.Hour)

	p := New("ordering", "me")
	p.Maps = append(p.Maps, newest, oldest, middle)

	c := NewCatalog()
	require.Equal(t, 3, c.Add(p))
	require.Equal(t, 3, c.Len())

	var keys []uint32
	c.AscendAdded(func(bm *Beatmap, source string) bool {
		assert.Equal(t, "ordering", source)
		if bm.Key != nil {
			keys = append(keys, *bm.Key)
		}
		return true
	})
	assert.Equal(t, []uint32{1, 3}, keys)

	var order []int64
	c.AscendAdded(func(bm *Beatmap, _ string) bool {
		order = append(order, bm.DateAdded.Unix())
		return true
	})
	assert.Equal(t, []int64{base.Unix(), base.Add(24 * time.Hour).Unix(), base.Add(48 * time.Hour).Unix()}, order)
}

func TestCatalogSkipsDuplicates(t *testing.T) {
	p := New("first", "me")
	p.Maps = append(p.Maps, NewKeyBeatmap(2112), NewHashBeatmap(testSha1(4)))

	c := NewCatalog()
	assert.Equal(t, 2, c.Add(p))

	// the same identities arriving from another playlist are skipped,
	// even with different timestamps
	other := New("second", "me")
	dup := NewKeyBeatmap(2112)
	dup.DateAdded = dup.DateAdded.Add(-time.Hour)
	other.Maps = append(other.Maps, dup, NewKeyBeatmap(7))

	assert.Equal(t, 1, c.Add(other))
	assert.Equal(t, 3, c.Len())

	probe := NewKeyBeatmap(2112)
	assert.True(t, c.Contains(&probe))
	missing := NewKeyBeatmap(404)
	assert.False(t, c.Contains(&missing))
}

func TestCatalogEarlyStop(t *testing.T) {
	p := New("walk", "me")
	p.Maps = append(p.Maps, NewKeyBeatmap(1), NewKeyBeatmap(2), NewKeyBeatmap(3))

	c := NewCatalog()
	c.Add(p)

	var visited int
	c.AscendAdded(func(*Beatmap, string) bool {
		visited++
		return visited < 2
	})
	assert.Equal(t, 2, visited)
}
