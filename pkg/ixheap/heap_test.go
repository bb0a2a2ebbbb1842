package ixheap

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cmpInt(a, b int) int { return a - b }

// Element identities below are plain ints, not strings: E must be a
// fixed-layout type per this package's doc comment, since the side-index
// hashes E's byte pattern. A string element would only happen to work here
// because each is a single Go string value copied by reference through the
// heap, never independently reconstructed — exactly the trap DESIGN.md notes
// cht_test.go sidesteps with an [8]byte key.
func newIntHeap(t *testing.T, cfg Config[int, int]) *Heap[int, int] {
	t.Helper()
	if cfg.CmpPty == nil {
		cfg.CmpPty = cmpInt
	}
	h, err := New(cfg)
	require.NoError(t, err)
	return h
}

// element name → int identity, used to keep the S1–S3 scenarios readable.
const (
	elA = iota + 1
	elB
	elC
	elD
	elE
	elF
	elG
)

// S1 — sorted extraction.
func TestSortedExtraction(t *testing.T) {
	h := newIntHeap(t, Config[int, int]{})

	priorities := []int{5, 3, 8, 1, 9, 2, 7}
	elements := []int{elA, elB, elC, elD, elE, elF, elG}
	for i := range priorities {
		require.NoError(t, h.Push(priorities[i], elements[i]))
	}

	wantP := []int{1, 2, 3, 5, 7, 8, 9}
	wantE := []int{elD, elF, elB, elA, elG, elC, elE}
	for i := 0; i < 7; i++ {
		p, e, ok := h.Pop()
		require.True(t, ok)
		assert.Equal(t, wantP[i], p, "pop %d priority", i)
		assert.Equal(t, wantE[i], e, "pop %d element", i)
	}
	assert.Equal(t, 0, h.Len())
	_, _, ok := h.Pop()
	assert.False(t, ok)
}

// S2 — decrease-key.
func TestDecreaseKey(t *testing.T) {
	h := newIntHeap(t, Config[int, int]{})
	require.NoError(t, h.Push(10, elA))
	require.NoError(t, h.Push(20, elB))
	require.NoError(t, h.Push(30, elC))

	require.NoError(t, h.Update(5, elC))

	p, e, ok := h.Pop()
	require.True(t, ok)
	assert.Equal(t, 5, p)
	assert.Equal(t, elC, e)

	p, e, ok = h.Pop()
	require.True(t, ok)
	assert.Equal(t, 10, p)
	assert.Equal(t, elA, e)

	p, e, ok = h.Pop()
	require.True(t, ok)
	assert.Equal(t, 20, p)
	assert.Equal(t, elB, e)
}

// S3 — increase-key.
func TestIncreaseKey(t *testing.T) {
	h := newIntHeap(t, Config[int, int]{})
	require.NoError(t, h.Push(1, elA))
	require.NoError(t, h.Push(2, elB))
	require.NoError(t, h.Push(3, elC))

	require.NoError(t, h.Update(100, elA))

	p, e, ok := h.Pop()
	require.True(t, ok)
	assert.Equal(t, 2, p)
	assert.Equal(t, elB, e)

	p, e, ok = h.Pop()
	require.True(t, ok)
	assert.Equal(t, 3, p)
	assert.Equal(t, elC, e)

	p, e, ok = h.Pop()
	require.True(t, ok)
	assert.Equal(t, 100, p)
	assert.Equal(t, elA, e)
}

// S4 — search-pointer lifetime. The pointer returned by Search is only
// guaranteed valid until the next mutating call; this test documents that a
// subsequent Push must not crash, not that *p retains any particular value.
func TestSearchPointerLifetimeDocumented(t *testing.T) {
	h := newIntHeap(t, Config[int, int]{})
	require.NoError(t, h.Push(7, elA))

	p, ok := h.Search(elA)
	require.True(t, ok)
	assert.Equal(t, 7, *p)

	require.NoError(t, h.Push(1, elB))
	_ = p // no longer guaranteed to read 7; must not panic to dereference is not attempted post-mutation
}

// S5 — growth + rehash stress: push 10,000 distinct elements with random
// priorities from a tiny initial capacity, asserting invariants 1–3 after
// every push, then pop all and assert the priority sequence is
// non-decreasing.
func TestGrowthStressMaintainsInvariants(t *testing.T) {
	h := newIntHeap(t, Config[int, int]{InitCount: 1})

	rng := rand.New(rand.NewSource(1))
	const n = 10_000
	for i := 0; i < n; i++ {
		p := rng.Intn(1_000_000)
		require.NoError(t, h.Push(p, i))
		assertHeapInvariants(t, h)
	}
	require.Equal(t, n, h.Len())

	var last int
	havePrev := false
	for {
		p, _, ok := h.Pop()
		if !ok {
			break
		}
		if havePrev {
			assert.LessOrEqual(t, last, p)
		}
		last = p
		havePrev = true
	}
}

// assertHeapInvariants checks spec.md §8 invariants 1–3: heap order, the
// array/side-index bijection, and num_elts == |side_index| (checked
// indirectly: every slot's element must be Search-able back to that slot).
func assertHeapInvariants[P any, E comparable](t *testing.T, h *Heap[P, E]) {
	t.Helper()
	for i := 1; i < h.numElts; i++ {
		parent := (i - 1) / 2
		assert.GreaterOrEqual(t, h.cfg.CmpPty(h.pairs[i].Pty, h.pairs[parent].Pty), 0,
			"heap order violated at slot %d", i)
	}
	for i := 0; i < h.numElts; i++ {
		idx, ok := h.side.Search(h.pairs[i].Elt)
		require.True(t, ok, "slot %d's element missing from side-index", i)
		assert.Equal(t, i, idx, "side-index disagrees with array for slot %d", i)
	}
}

// S6 — heap-free with owned elements: Free must invoke FreeElt exactly once
// per resident element, in whatever order, before releasing the side-index.
func TestFreeInvokesFreeEltForEveryOwnedElement(t *testing.T) {
	type block struct{ zeroed bool }
	blocks := make([]*block, 100)
	for i := range blocks {
		blocks[i] = &block{}
	}

	h, err := New(Config[int, *block]{
		CmpPty:  func(a, b int) int { return a - b },
		FreeElt: func(b *block) { b.zeroed = true },
	})
	require.NoError(t, err)

	for i, b := range blocks {
		require.NoError(t, h.Push(i, b))
	}

	h.Free()

	destroyed := 0
	for _, b := range blocks {
		if b.zeroed {
			destroyed++
		}
	}
	assert.Equal(t, 100, destroyed)
	assert.Equal(t, 0, h.Len())
}

func TestPushBeyondCountMaxPoisons(t *testing.T) {
	h := newIntHeap(t, Config[int, int]{InitCount: 1, CountMax: 2})
	require.NoError(t, h.Push(1, elA))
	require.NoError(t, h.Push(2, elB))

	err := h.Push(3, elC)
	require.ErrorIs(t, err, ErrCapacityExceeded)

	// the heap is now poisoned: every subsequent call rejects immediately
	err = h.Push(4, elD)
	assert.ErrorIs(t, err, ErrPoisoned)

	err = h.Update(1, elA)
	assert.ErrorIs(t, err, ErrPoisoned)

	_, _, ok := h.Pop()
	assert.False(t, ok)
}

func TestUpdateOfAbsentElementPoisons(t *testing.T) {
	h := newIntHeap(t, Config[int, int]{})
	require.NoError(t, h.Push(1, elA))

	const elMissing = 999
	err := h.Update(5, elMissing)
	require.ErrorIs(t, err, ErrNotFound)

	err = h.Update(1, elA)
	assert.ErrorIs(t, err, ErrPoisoned)
}

func TestUpdateToEqualPriorityIsNoOpOrdering(t *testing.T) {
	h := newIntHeap(t, Config[int, int]{})
	require.NoError(t, h.Push(1, elA))
	require.NoError(t, h.Push(2, elB))
	require.NoError(t, h.Push(3, elC))

	require.NoError(t, h.Update(2, elB))

	p, e, ok := h.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, p)
	assert.Equal(t, elA, e)
}

func TestNewRejectsMissingCmpPty(t *testing.T) {
	_, err := New(Config[int, int]{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestPopOnEmptyHeapIsNoOp(t *testing.T) {
	h := newIntHeap(t, Config[int, int]{})
	_, _, ok := h.Pop()
	assert.False(t, ok)
}
