// package insights provides data structures for insights powered by the
// gitstats pipeline: the commit record and the ordered, immutable table of
// records every report reads from.
package insights

import (
	"sort"
	"time"
)

// CommitRecord is the main internal data structure that represents a single
// git commit.
type CommitRecord struct {
	Hash        string
	AuthorName  string
	AuthorEmail string
	CommitTime  time.Time
	Message     string
	Insertions  int
	Deletions   int
}

// CommitTable is an ordered sequence of CommitRecord sorted ascending by
// commit time. It is never mutated once built.
type CommitTable struct {
	records []CommitRecord
}

// NewCommitTable copies records, sorts the copy by commit time and returns it
// as a table. Records sharing a timestamp keep their relative order.
func NewCommitTable(records []CommitRecord) *CommitTable {
	sorted := make([]CommitRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CommitTime.Before(sorted[j].CommitTime)
	})
	return &CommitTable{records: sorted}
}

// Len returns the number of records.
func (t *CommitTable) Len() int {
	return len(t.records)
}

// At returns the record at index i.
func (t *CommitTable) At(i int) CommitRecord {
	return t.records[i]
}

// Records returns a copy of the records in table order.
func (t *CommitTable) Records() []CommitRecord {
	out := make([]CommitRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Span returns the commit times of the first and last records. ok is false
// for an empty table.
func (t *CommitTable) Span() (first, last time.Time, ok bool) {
	if len(t.records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t.records[0].CommitTime, t.records[len(t.records)-1].CommitTime, true
}
