// Package arena implements the slab allocator backing a single MCTS
// search tree: one contiguous buffer, bump-allocated, never freed,
// addressed by 32-bit indices instead of native pointers.
package arena

import (
	"sync/atomic"
	"unsafe"
)

// Index references a single value of type T stored in an Arena.
// The zero value is the "none" sentinel; it is never a valid handle.
type Index[T any] struct {
	slot uint32
}

// IsNone reports whether idx is the null handle.
func (idx Index[T]) IsNone() bool {
	return idx.slot == 0
}

// SliceIndex references a contiguous run of values of type T.
type SliceIndex[T any] struct {
	start uint32 // byte offset into Arena.data
	len   uint32 // element count
}

// IsNone reports whether s references no elements.
func (s SliceIndex[T]) IsNone() bool {
	return s.len == 0
}

// Len returns the number of elements referenced by s.
func (s SliceIndex[T]) Len() int {
	return int(s.len)
}

// Arena is a fixed-capacity bump allocator subdivided into slots of
// slotSize bytes. Index handles (single values) are slot-granular;
// SliceIndex handles (child arrays) pack tightly at their own
// alignment, since slices are the dominant per-search allocation and
// slot-rounding every edge would waste the bulk of the budget.
//
// There is no interior-mutability borrow tracking here: Get/GetMut
// return plain Go pointers/slices. The recommended traversal pattern
// (see design notes) is to record the selection path as a stack of
// indices while descending read-only, then replay the stack to apply
// updates with ordinary exclusive access on the way back up — no
// aliasing ever needs to be caught at runtime.
type Arena struct {
	data         []byte
	slotSize     uint32
	capacityByte uint32
	cursor       uint32 // next free byte offset
	paddingBytes atomic.Uint32
}

// ArenaStats reports allocator utilisation for budget polling and
// diagnostics.
type ArenaStats struct {
	UsedSlots    uint32
	PaddingBytes uint32
	Capacity     uint32 // in slots
}

// New preallocates capacity slots of slotSize bytes each and zeroes
// the backing store. Slot 0 is reserved as the null sentinel, so the
// bump cursor starts at byte offset slotSize.
func New(capacity int, slotSize uint32) *Arena {
	if capacity <= 0 {
		capacity = 1
	}
	if slotSize == 0 {
		slotSize = 1
	}
	totalBytes := uint32(capacity) * slotSize
	// Back the slab with a uint64 slice so the start of data is at
	// least 8-byte aligned, then reinterpret as bytes.
	words := (totalBytes + 7) / 8
	backing := make([]uint64, words)
	data := unsafe.Slice((*byte)(unsafe.Pointer(&backing[0])), int(words)*8)

	a := &Arena{
		data:         data,
		slotSize:     slotSize,
		capacityByte: totalBytes,
		cursor:       slotSize, // slot 0 is the null sentinel
	}
	return a
}

// SlotSize returns the configured maximum single-value payload size.
func (a *Arena) SlotSize() uint32 {
	return a.slotSize
}

// Supports reports whether T can be stored with Add: its size and
// alignment must both fit within one slot.
func Supports[T any](a *Arena) bool {
	var zero T
	size := uint32(unsafe.Sizeof(zero))
	align := uint32(unsafe.Alignof(zero))
	return size <= a.slotSize && align <= a.slotSize
}

func alignUp(v, align uint32) uint32 {
	if align <= 1 {
		return v
	}
	rem := v % align
	if rem == 0 {
		return v
	}
	return v + (align - rem)
}

// Add stores value in the next free slot and returns its Index. It
// panics if T does not satisfy Supports (a programming error, not a
// runtime data condition). A full arena returns the zero Index and
// false.
func Add[T any](a *Arena, value T) (Index[T], bool) {
	if !Supports[T](a) {
		panic("arena: type does not fit within one slot")
	}

	slotStart := alignUp(a.cursor, a.slotSize)
	if slotStart != a.cursor {
		a.paddingBytes.Add(slotStart - a.cursor)
	}
	if slotStart+a.slotSize > a.capacityByte {
		return Index[T]{}, false
	}

	ptr := (*T)(unsafe.Pointer(&a.data[slotStart]))
	*ptr = value
	a.cursor = slotStart + a.slotSize

	return Index[T]{slot: slotStart / a.slotSize}, true
}

// Get returns a pointer to the value referenced by idx, or nil for
// the null handle.
func Get[T any](a *Arena, idx Index[T]) *T {
	if idx.IsNone() {
		return nil
	}
	offset := idx.slot * a.slotSize
	return (*T)(unsafe.Pointer(&a.data[offset]))
}

// AddSlice copies values into a tightly packed, contiguously aligned
// run and returns a SliceIndex. Pre-alignment padding (if the cursor
// isn't already a multiple of T's alignment) is counted toward
// PaddingBytes. An allocation that would overflow the arena returns
// the zero SliceIndex and false; nothing is written in that case.
func AddSlice[T any](a *Arena, values []T) (SliceIndex[T], bool) {
	if len(values) == 0 {
		return SliceIndex[T]{}, true
	}

	var zero T
	elemSize := uint32(unsafe.Sizeof(zero))
	elemAlign := uint32(unsafe.Alignof(zero))

	aligned := alignUp(a.cursor, elemAlign)
	if aligned != a.cursor {
		a.paddingBytes.Add(aligned - a.cursor)
	}

	need := elemSize * uint32(len(values))
	if aligned+need > a.capacityByte {
		return SliceIndex[T]{}, false
	}

	dst := unsafe.Slice((*T)(unsafe.Pointer(&a.data[aligned])), len(values))
	copy(dst, values)
	a.cursor = aligned + need

	return SliceIndex[T]{start: aligned, len: uint32(len(values))}, true
}

// GetSlice returns the slice referenced by s. Mutations through the
// returned slice are visible to every other holder of s, same as any
// ordinary Go slice.
func GetSlice[T any](a *Arena, s SliceIndex[T]) []T {
	if s.IsNone() {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&a.data[s.start])), int(s.len))
}

// Stats reports current allocator utilisation.
func (a *Arena) Stats() ArenaStats {
	return ArenaStats{
		UsedSlots:    (a.cursor + a.slotSize - 1) / a.slotSize,
		PaddingBytes: a.paddingBytes.Load(),
		Capacity:     a.capacityByte / a.slotSize,
	}
}

// Utilization returns the fraction (0..1) of the arena's slot capacity
// that has been consumed, for the search loop's high-water-mark poll.
func (a *Arena) Utilization() float64 {
	stats := a.Stats()
	if stats.Capacity == 0 {
		return 1
	}
	return float64(stats.UsedSlots) / float64(stats.Capacity)
}
