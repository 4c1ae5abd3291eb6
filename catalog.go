package blister

import (
	btr "github.com/tidwall/btree"
)

// Catalog is an in-memory index over the beatmaps of one or more
// playlists, ordered by the time they were added. Duplicate maps
// (same identity fingerprint) are ingested once. Single-owner,
// synchronous use; no locking.
type Catalog struct {
	btr  *btr.BTree
	seen map[uint64]struct{}
	seq  int
}

type catalogItem struct {
	addedAt int64
	seq     int
	bm      *Beatmap
	source  string
}

func byDateAdded(a, b interface{}) bool {
	ia, ib := a.(*catalogItem), b.(*catalogItem)
	if ia.addedAt != ib.addedAt {
		return ia.addedAt < ib.addedAt
	}
	return ia.seq < ib.seq
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		btr:  btr.New(byDateAdded),
		seen: make(map[uint64]struct{}),
	}
}

// Add ingests every beatmap of p, skipping the ones whose identity is
// already present. It returns the number of newly indexed entries.
func (c *Catalog) Add(p *Playlist) int {
	var added int
	for i := range p.Maps {
		bm := &p.Maps[i]

		fp := bm.Fingerprint()
		if _, dup := c.seen[fp]; dup {
			continue
		}
		c.seen[fp] = struct{}{}

		c.seq++
		c.btr.Set(&catalogItem{
			addedAt: bm.DateAdded.Unix(),
			seq:     c.seq,
			bm:      bm,
			source:  p.Title,
		})
		added++
	}

	return added
}

// Len returns the number of distinct beatmaps indexed.
func (c *Catalog) Len() int {
	return c.btr.Len()
}

// Contains reports whether a beatmap with the same identity
// fingerprint has been ingested.
func (c *Catalog) Contains(bm *Beatmap) bool {
	_, ok := c.seen[bm.Fingerprint()]
	return ok
}

// AscendAdded walks the indexed beatmaps from the oldest DateAdded
// upwards, together with the title of the playlist each came from.
// Returning false from fn stops the walk.
func (c *Catalog) AscendAdded(fn func(bm *Beatmap, source string) bool) {
	c.btr.Ascend(nil, func(i interface{}) bool {
		item := i.(*catalogItem)
		return fn(item.bm, item.source)
	})
}
