// Package ids implements the generation-tagged identities named in
// spec.md §9 "Generational identities": widget ids, ValueRefs, and
// state ids all carry a generation counter so a stale id can never
// alias a re-used slot index after the slot is freed and reassigned.
package ids

import (
	"fmt"

	"github.com/google/uuid"
)

// Gen identifies one allocation generation of a slot index.
type Gen uint32

// processSalt distinguishes one process's ids from another's in
// persisted devtool traces spanning a restart (spec.md §9's
// generational identities guarantee uniqueness only within one
// process's lifetime; the salt extends that to traces that outlive
// it). Grounded on the teacher's uuid-based component ids
// (pkg/bubbly/component.go), mixed in here rather than replacing the
// index+generation pair outright so identity comparisons within a
// process stay allocation-free.
var processSalt = uuid.NewString()[:8]

// ID is a generational identity: an index into some slab plus the
// generation it was allocated under. Equality requires both fields to
// match; String additionally tags the owning process via processSalt
// for cross-restart trace disambiguation.
type ID struct {
	Index int
	Gen   Gen
}

func (id ID) String() string { return fmt.Sprintf("%s:%d#%d", processSalt, id.Index, id.Gen) }

// Zero is the never-valid identity; Allocator never returns it.
var Zero = ID{}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool { return id == Zero }

// Allocator hands out generational ids over a free list of slot
// indices, so released slots are recycled but never alias a live id
// that still references the old generation.
type Allocator struct {
	generations []Gen
	free        []int
}

// NewAllocator returns an empty allocator.
func NewAllocator() *Allocator { return &Allocator{} }

// Alloc returns a fresh ID, reusing a freed slot index when available.
func (a *Allocator) Alloc() ID {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		return ID{Index: idx, Gen: a.generations[idx]}
	}
	idx := len(a.generations)
	a.generations = append(a.generations, 1)
	return ID{Index: idx, Gen: 1}
}

// Free releases id's slot and bumps its generation so any copy of id
// still held elsewhere compares unequal to whatever Alloc returns next
// for that slot.
func (a *Allocator) Free(id ID) {
	if id.Index < 0 || id.Index >= len(a.generations) {
		return
	}
	if a.generations[id.Index] != id.Gen {
		return // already freed/reused; stale release, ignore
	}
	a.generations[id.Index]++
	a.free = append(a.free, id.Index)
}

// Live reports whether id's generation is still current, i.e. it has
// not been Free'd (and possibly reallocated) since it was issued.
func (a *Allocator) Live(id ID) bool {
	if id.Index < 0 || id.Index >= len(a.generations) {
		return false
	}
	return a.generations[id.Index] == id.Gen
}
