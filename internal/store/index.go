/*
PURPOSE:
  Keyed view over the record list used by the sweep cache.

REQUIREMENTS:
  Implementation-discovered:
  - Lookups happen once per combination; a map avoids rescanning the list.
  - Must return the same record Find would (first occurrence).

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go

ERROR HANDLING:
  - None.

IMPLEMENTATION RULES:
  - Records() keeps insertion order so the saved document stays stable.

USAGE:
  idx := store.NewIndex(records)
  rec, ok := idx.Lookup(key)

RELATED FILES:
  - internal/store/store.go (Find)
*/

package store

import "github.com/daryltucker/codec-bench/internal/model"

// Index is a working copy of the record list with constant-time lookup by key.
// Lookup returns the same record Find would for the key's exact filter.
type Index struct {
	records []model.Record
	byKey   map[model.Key]int
}

// NewIndex builds an index over a copy of records.
func NewIndex(records []model.Record) *Index {
	idx := &Index{
		records: make([]model.Record, 0, len(records)),
		byKey:   make(map[model.Key]int, len(records)),
	}
	for _, r := range records {
		idx.records = append(idx.records, r)
		if _, seen := idx.byKey[r.Key()]; !seen {
			idx.byKey[r.Key()] = len(idx.records) - 1
		}
	}
	return idx
}

// Lookup returns the first record stored under key.
func (i *Index) Lookup(key model.Key) (model.Record, bool) {
	pos, ok := i.byKey[key]
	if !ok {
		return model.Record{}, false
	}
	return i.records[pos], true
}

// Put appends r, or replaces the first record with the same key.
func (i *Index) Put(r model.Record) {
	if pos, ok := i.byKey[r.Key()]; ok {
		i.records[pos] = r
		return
	}
	i.records = append(i.records, r)
	i.byKey[r.Key()] = len(i.records) - 1
}

// Records returns the working list in insertion order.
func (i *Index) Records() []model.Record {
	return i.records
}

// Len returns the number of records held.
func (i *Index) Len() int {
	return len(i.records)
}
