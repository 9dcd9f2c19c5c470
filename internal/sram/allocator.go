package sram

import (
	"errors"
	"fmt"
)

// ErrNotAllocated is returned by Free when the given (userID, offset) pair
// does not name a currently-live allocation. This is fatal per the error
// taxonomy in SPEC_FULL.md §7 — callers should treat it as a programmer
// error, not something to retry around.
var ErrNotAllocated = errors.New("sram: free of an offset that is not currently allocated")

// ErrOutOfSpace is returned by Allocate when growing either end would
// make the two ends overlap.
var ErrOutOfSpace = errors.New("sram: allocation would overlap the opposite end")

// Preference selects which end of the per-bank SRAM space an allocation
// grows from.
type Preference int

const (
	Start Preference = iota
	End
)

type record struct {
	userID string
	tag    string
	offset uint32
	size   uint32
	freed  bool
}

// SramAllocator models one per-bank SRAM space of size perBankBytes as two
// independent bump regions growing toward each other: successive Start
// allocations grow upward from 0, successive End allocations grow downward
// from perBankBytes. It fails once the two would overlap.
//
// Frees are tracked per allocation rather than only at the top of the
// stack, but space is only actually reclaimed (the bump pointer moved
// back) once the run of most-recently-allocated, still-live records at
// that end has been fully freed — exactly the behavior a real bump
// allocator gives you, and the only behavior invariant 8.2's "freeing the
// last allocation leaves the allocator bit-identical to one that never
// made it" needs.
type SramAllocator struct {
	perBankBytes uint32
	startOffset  uint32 // one past the last byte used by the Start region
	endOffset    uint32 // first byte used by the End region
	startStack   []*record
	endStack     []*record
}

// New creates an allocator over a per-bank SRAM space of size
// perBankBytes.
func New(perBankBytes uint32) *SramAllocator {
	return &SramAllocator{
		perBankBytes: perBankBytes,
		startOffset:  0,
		endOffset:    perBankBytes,
	}
}

// PerBankBytes returns the total per-bank space this allocator addresses.
func (a *SramAllocator) PerBankBytes() uint32 { return a.perBankBytes }

// Allocate reserves size bytes at the given end for userID/tag, returning
// the chosen offset. ok is false (offset meaningless) if the allocation
// would overlap the opposite end.
func (a *SramAllocator) Allocate(size uint32, pref Preference, userID, tag string) (ok bool, offset uint32) {
	if size == 0 {
		return false, 0
	}
	switch pref {
	case Start:
		newStart := a.startOffset + size
		if newStart > a.endOffset {
			return false, 0
		}
		offset = a.startOffset
		a.startOffset = newStart
		a.startStack = append(a.startStack, &record{userID: userID, tag: tag, offset: offset, size: size})
		return true, offset
	case End:
		if size > a.endOffset-a.startOffset {
			return false, 0
		}
		newEnd := a.endOffset - size
		offset = newEnd
		a.endOffset = newEnd
		a.endStack = append(a.endStack, &record{userID: userID, tag: tag, offset: offset, size: size})
		return true, offset
	default:
		return false, 0
	}
}

// Free releases the allocation at offset previously made for userID. It is
// fatal (ErrNotAllocated) to free an offset that is not currently live.
func (a *SramAllocator) Free(userID string, offset uint32) error {
	if rec := findLive(a.startStack, userID, offset); rec != nil {
		rec.freed = true
		reclaimStart(a)
		return nil
	}
	if rec := findLive(a.endStack, userID, offset); rec != nil {
		rec.freed = true
		reclaimEnd(a)
		return nil
	}
	return fmt.Errorf("%w: user=%s offset=%d", ErrNotAllocated, userID, offset)
}

func findLive(stack []*record, userID string, offset uint32) *record {
	for _, r := range stack {
		if !r.freed && r.userID == userID && r.offset == offset {
			return r
		}
	}
	return nil
}

func reclaimStart(a *SramAllocator) {
	for len(a.startStack) > 0 {
		top := a.startStack[len(a.startStack)-1]
		if !top.freed {
			break
		}
		a.startOffset -= top.size
		a.startStack = a.startStack[:len(a.startStack)-1]
	}
}

func reclaimEnd(a *SramAllocator) {
	for len(a.endStack) > 0 {
		top := a.endStack[len(a.endStack)-1]
		if !top.freed {
			break
		}
		a.endOffset += top.size
		a.endStack = a.endStack[:len(a.endStack)-1]
	}
}

// Clone returns an independent copy, used by speculative "try this
// allocation, adopt on success" attempts in strategy selection (see
// SPEC_FULL.md §5).
func (a *SramAllocator) Clone() *SramAllocator {
	clone := &SramAllocator{
		perBankBytes: a.perBankBytes,
		startOffset:  a.startOffset,
		endOffset:    a.endOffset,
		startStack:   make([]*record, len(a.startStack)),
		endStack:     make([]*record, len(a.endStack)),
	}
	for i, r := range a.startStack {
		cp := *r
		clone.startStack[i] = &cp
	}
	for i, r := range a.endStack {
		cp := *r
		clone.endStack[i] = &cp
	}
	return clone
}

// FreeBytes returns the space currently available between the two ends.
func (a *SramAllocator) FreeBytes() uint32 {
	if a.endOffset < a.startOffset {
		return 0
	}
	return a.endOffset - a.startOffset
}
