// Package ixheap implements the indexed minimum-priority heap from
// spec.md §4.2: a binary min-heap over a slice of (priority, element) pairs,
// paired with a side-index (pkg/cht by default) mapping each element to its
// current slot so membership, priority lookup, and arbitrary-direction
// priority update ("decrease-key"/"increase-key") are all addressable by
// element value rather than an external handle.
//
// E must satisfy the same fixed-layout constraint pkg/cht documents for its
// key type, since the side-index hashes E's byte pattern: integers,
// pointers, arrays, or structs of such, with no string/slice/map/interface
// indirection. Pushing two elements whose E values are == is undefined.
package ixheap

import (
	"github.com/pkg/errors"

	"github.com/go-ixheap/ixheap/internal/ixlog"
)

// Sentinel errors, checked with errors.Is. ErrCapacityExceeded and
// ErrNotFound poison the heap: afterwards Push and Update return ErrPoisoned
// and Pop and Search report ok == false, all without touching state; Free
// and Len still work.
var (
	// ErrPoisoned is returned by Push and Update after the heap has surfaced
	// a fatal error.
	ErrPoisoned = errors.New("ixheap: heap is poisoned")

	// ErrCapacityExceeded is returned (and poisons the heap) when Push
	// would grow the array beyond Config.CountMax.
	ErrCapacityExceeded = errors.New("ixheap: count exceeds CountMax")

	// ErrNotFound is returned (and poisons the heap) by Update when the
	// element is not present — per spec.md §7, update of an absent
	// element is a fatal condition, not a soft miss.
	ErrNotFound = errors.New("ixheap: element not present")
)

type pair[P any, E comparable] struct {
	Pty P
	Elt E
}

// Heap is an indexed binary min-heap over priority type P and element type
// E. The zero value is not usable; construct with New.
type Heap[P any, E comparable] struct {
	cfg      Config[P, E]
	pairs    []pair[P, E]
	numElts  int
	count    int
	side     SideIndex[E]
	poisoned bool
}

// New constructs a Heap per cfg, calling cfg.NewSideIndex (or the default
// factory) exactly once. It returns ErrInvalidConfig if cfg fails
// validation — a malformed Config is a programmer error, not a condition
// that poisons a heap that was never usably constructed.
func New[P any, E comparable](cfg Config[P, E]) (*Heap[P, E], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	return &Heap[P, E]{
		cfg:   cfg,
		pairs: make([]pair[P, E], cfg.InitCount),
		count: cfg.InitCount,
		side:  cfg.NewSideIndex(),
	}, nil
}

// Len reports the number of elements currently resident.
func (h *Heap[P, E]) Len() int {
	return h.numElts
}

// Push inserts (p, e) and restores heap order. It grows the backing array
// (doubling, clamped to Config.CountMax) if the array is full. Pushing
// beyond CountMax poisons the heap and returns ErrCapacityExceeded.
func (h *Heap[P, E]) Push(p P, e E) error {
	if h.poisoned {
		return ErrPoisoned
	}
	if err := h.ensureCapacity(); err != nil {
		return h.poison(errors.Wrap(err, "push: grow"))
	}

	idx := h.numElts
	h.pairs[idx] = pair[P, E]{Pty: p, Elt: e}
	if err := h.side.Insert(e, idx); err != nil {
		return h.poison(errors.Wrap(err, "push: side-index insert"))
	}
	h.numElts++
	h.siftUp(idx)

	metricPushesTotal.Inc()
	metricSize.Set(float64(h.numElts))
	return nil
}

// Search returns a pointer to e's current priority, or (nil, false) if e is
// absent. The pointer aliases the heap's backing array: it is valid only
// until the next mutating call, since Push's growth can reallocate that
// array and any sift can relocate e to a different slot — the Go rendition
// of spec.md §3's search-pointer aliasing invariant.
func (h *Heap[P, E]) Search(e E) (*P, bool) {
	if h.poisoned {
		return nil, false
	}
	idx, ok := h.side.Search(e)
	if !ok {
		return nil, false
	}
	return &h.pairs[idx].Pty, true
}

// Update sets e's priority to p and restores heap order. It always runs
// both sift-up and sift-down from e's slot, even when p compares equal to
// e's prior priority — a documented invariant (spec.md §9 Open Question 1),
// not a caller-visible optimization opportunity. Updating an absent element
// poisons the heap and returns ErrNotFound.
func (h *Heap[P, E]) Update(p P, e E) error {
	if h.poisoned {
		return ErrPoisoned
	}
	idx, ok := h.side.Search(e)
	if !ok {
		return h.poison(errors.Wrap(ErrNotFound, "update"))
	}
	h.pairs[idx].Pty = p
	idx = h.siftUp(idx)
	h.siftDown(idx)
	return nil
}

// Pop removes and returns the minimum-priority (p, e) pair. ok is false on
// an empty (or poisoned) heap; p and e are then zero values. Pop swaps the
// root with the last slot (republishing both slots to the side-index), then
// removes the old root from the side-index and sifts the new root down, so
// the array and side-index agree at every step (spec.md §9 Open Question 2).
func (h *Heap[P, E]) Pop() (p P, e E, ok bool) {
	if h.poisoned || h.numElts == 0 {
		return p, e, false
	}

	top := h.pairs[0]
	last := h.numElts - 1
	h.swap(0, last)
	h.side.Remove(top.Elt)
	h.pairs[last] = pair[P, E]{}
	h.numElts--

	if h.numElts > 0 {
		h.siftDown(0)
	}

	metricPopsTotal.Inc()
	metricSize.Set(float64(h.numElts))
	return top.Pty, top.Elt, true
}

// Free invokes cfg.FreeElt (if any) on every resident element, releases the
// side-index, and empties the heap. It runs even on a poisoned heap, since
// releasing resources is exactly what a poisoned heap still needs.
func (h *Heap[P, E]) Free() {
	if h.cfg.FreeElt != nil {
		for i := 0; i < h.numElts; i++ {
			h.cfg.FreeElt(h.pairs[i].Elt)
		}
	}
	h.side.Free()
	h.pairs = nil
	h.numElts = 0
	h.count = 0
}

// ensureCapacity grows the backing array when it is full, doubling and
// clamping to CountMax per spec.md §4.2. It reports ErrCapacityExceeded
// when the array is already at CountMax.
func (h *Heap[P, E]) ensureCapacity() error {
	if h.numElts < h.count {
		return nil
	}
	if h.count >= h.cfg.CountMax {
		return ErrCapacityExceeded
	}
	newCount := h.count * 2
	if newCount <= h.count || newCount > h.cfg.CountMax {
		newCount = h.cfg.CountMax
	}
	ixlog.Debug("ixheap: grew", "old_count", h.count, "new_count", newCount)
	newPairs := make([]pair[P, E], newCount)
	copy(newPairs, h.pairs)
	h.pairs = newPairs
	h.count = newCount
	return nil
}

// siftUp moves the element at i toward the root while it compares less than
// its parent, keeping the side-index in sync at every swap. It returns the
// element's final slot.
func (h *Heap[P, E]) siftUp(i int) int {
	for i > 0 && !h.poisoned {
		parent := (i - 1) / 2
		if h.cfg.CmpPty(h.pairs[i].Pty, h.pairs[parent].Pty) >= 0 {
			break
		}
		h.swap(i, parent)
		i = parent
	}
	return i
}

// siftDown moves the element at i toward the leaves while either child
// compares less than it. Ties between children are broken in the left
// child's favor: right only displaces the current smallest on a strict
// less-than.
func (h *Heap[P, E]) siftDown(i int) {
	for !h.poisoned {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < h.numElts && h.cfg.CmpPty(h.pairs[left].Pty, h.pairs[smallest].Pty) < 0 {
			smallest = left
		}
		if right < h.numElts && h.cfg.CmpPty(h.pairs[right].Pty, h.pairs[smallest].Pty) < 0 {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.swap(i, smallest)
		i = smallest
	}
}

// swap exchanges the pairs at i and j and republishes both elements' new
// slots to the side-index. A side-index write failure (capacity-arithmetic
// overflow in the underlying table) poisons the heap immediately, since the
// array and side-index would otherwise disagree.
func (h *Heap[P, E]) swap(i, j int) {
	h.pairs[i], h.pairs[j] = h.pairs[j], h.pairs[i]
	if err := h.side.Insert(h.pairs[i].Elt, i); err != nil {
		h.poison(errors.Wrap(err, "swap: side-index insert"))
		return
	}
	if err := h.side.Insert(h.pairs[j].Elt, j); err != nil {
		h.poison(errors.Wrap(err, "swap: side-index insert"))
	}
}

func (h *Heap[P, E]) poison(err error) error {
	h.poisoned = true
	ixlog.Fatal("ixheap: heap poisoned", "error", err)
	return err
}
