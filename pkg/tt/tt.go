// Package tt implements the shared transposition table: a fixed-size,
// bucketed hash table mapping a 64-bit Zobrist position hash to a
// cached leaf evaluation, with replacement keyed on a generation
// counter and a logarithmic visit count.
package tt

import (
	"sync"
	"sync/atomic"

	"github.com/chewxy/math32"
)

const bucketWidth = 4

type entry struct {
	hashUpper uint32
	value     float32
	generation uint8
	log2Visits uint8
	occupied   bool
}

func (e entry) insertionValue() uint16 {
	return uint16(e.generation) + uint16(e.log2Visits)
}

type bucket struct {
	mu      sync.Mutex
	entries [bucketWidth]entry
}

// Table is a fixed-size transposition table. It may be constructed
// once and reused across searches; call NextGeneration at the start
// of every new search so stale entries age out. A zero-size Table
// (Size() == 0) disables caching entirely: Get always misses and
// Insert is a no-op, matching Settings.TTSizeBuckets == 0.
type Table struct {
	buckets    []bucket
	generation atomic.Uint32 // read as uint8, so it wraps like one
}

// New constructs a Table with the given number of buckets (4 entries
// each). buckets == 0 disables the table.
func New(buckets int) *Table {
	if buckets < 0 {
		buckets = 0
	}
	return &Table{buckets: make([]bucket, buckets)}
}

// Size returns the number of buckets.
func (t *Table) Size() int {
	return len(t.buckets)
}

// NextGeneration increments the generation counter, to be called once
// at the start of every new search sharing this table.
func (t *Table) NextGeneration() {
	t.generation.Add(1)
}

// Generation returns the table's current generation.
func (t *Table) Generation() uint8 {
	return uint8(t.generation.Load())
}

func (t *Table) bucketFor(hash uint64) *bucket {
	return &t.buckets[hash%uint64(len(t.buckets))]
}

// Get returns the cached value for hash, if present.
func (t *Table) Get(hash uint64) (float32, bool) {
	if len(t.buckets) == 0 {
		return 0, false
	}
	b := t.bucketFor(hash)
	upper := uint32(hash >> 32)

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.entries {
		e := &b.entries[i]
		if e.occupied && e.hashUpper == upper {
			return e.value, true
		}
	}
	return 0, false
}

// log2Visits computes floor(log2(max(1, visits))) as the spec's
// replacement priority term.
func log2Visits(visits uint32) uint8 {
	if visits < 1 {
		visits = 1
	}
	return uint8(math32.Log2(float32(visits)))
}

// Insert caches value for hash at the current generation, weighted by
// visits. If the bucket already holds an entry for this exact hash, it
// is the one considered for replacement, so a later insert for the
// same hash can never leave a stale duplicate in another slot.
// Otherwise the bucket's lowest-priority slot (by generation+log2
// visits, or any empty slot) is the candidate. Either way the existing
// entry is overwritten iff the new entry's priority is strictly
// greater.
func (t *Table) Insert(hash uint64, value float32, visits uint32) {
	if len(t.buckets) == 0 {
		return
	}
	b := t.bucketFor(hash)
	upper := uint32(hash >> 32)
	newEntry := entry{
		hashUpper:  upper,
		value:      value,
		generation: t.Generation(),
		log2Visits: log2Visits(visits),
		occupied:   true,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.entries {
		if b.entries[i].occupied && b.entries[i].hashUpper == upper {
			if b.entries[i].insertionValue() < newEntry.insertionValue() {
				b.entries[i] = newEntry
			}
			return
		}
	}

	lowest := 0
	for i := 1; i < len(b.entries); i++ {
		if priorityLess(b.entries[i], b.entries[lowest]) {
			lowest = i
		}
	}

	if !b.entries[lowest].occupied || b.entries[lowest].insertionValue() < newEntry.insertionValue() {
		b.entries[lowest] = newEntry
	}
}

// priorityLess reports whether a has strictly lower replacement
// priority than b, treating an empty slot as priority zero.
func priorityLess(a, b entry) bool {
	av, bv := uint16(0), uint16(0)
	if a.occupied {
		av = a.insertionValue()
	}
	if b.occupied {
		bv = b.insertionValue()
	}
	if !a.occupied && b.occupied {
		return true
	}
	if a.occupied && !b.occupied {
		return false
	}
	return av < bv
}
