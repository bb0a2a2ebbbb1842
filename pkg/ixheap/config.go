package ixheap

import (
	"math"

	"github.com/pkg/errors"

	"github.com/go-ixheap/ixheap/pkg/cht"
)

// MaxCount is the default CountMax: the platform-portable cap spec.md §3
// uses throughout for a 32-bit-safe slot index.
const MaxCount = math.MaxInt32

// ErrInvalidConfig is returned by New when a Config violates one of its
// documented constraints.
var ErrInvalidConfig = errors.New("ixheap: invalid config")

// SideIndex is the capability bundle ixheap.Heap consults on every mutation
// that moves an element, per spec.md §6. *cht.Table[K, int] (via
// cht.SideIndex) satisfies this interface structurally; Heap never requires
// that specific type.
type SideIndex[K comparable] interface {
	Insert(key K, value int) error
	Search(key K) (value int, ok bool)
	Remove(key K) (value int, ok bool)
	Free()
}

// SideIndexFactory builds a fresh SideIndex. New calls it exactly once, at
// construction time.
type SideIndexFactory[K comparable] func() SideIndex[K]

// DefaultSideIndexFactory returns the factory New uses when Config.NewSideIndex
// is left nil: a *cht.Table[K, int] with no value destructor, since slot
// indices need none.
func DefaultSideIndexFactory[K comparable]() SideIndexFactory[K] {
	return func() SideIndex[K] {
		return cht.NewSideIndex[K]()
	}
}

// Config carries a Heap's tuning knobs and collaborators.
type Config[P any, E comparable] struct {
	// InitCount is the heap's initial array capacity. Zero defaults to 8,
	// or to CountMax when that is smaller.
	InitCount int

	// CountMax bounds how large the array may grow. Zero defaults to
	// MaxCount.
	CountMax int

	// CmpPty orders two priorities: negative if a sorts before b (i.e. a is
	// higher priority / closer to the heap's root), zero if equal, positive
	// otherwise. Required — a nil CmpPty is a Config error.
	CmpPty func(a, b P) int

	// FreeElt, if non-nil, is invoked on every resident element by Free.
	FreeElt func(E)

	// NewSideIndex builds the side-index. Defaults to
	// DefaultSideIndexFactory[E]() when left nil.
	NewSideIndex SideIndexFactory[E]
}

func (c Config[P, E]) validate() error {
	if c.CmpPty == nil {
		return errors.Wrap(ErrInvalidConfig, "CmpPty is required")
	}
	if c.CountMax < 0 {
		return errors.Wrap(ErrInvalidConfig, "CountMax must not be negative")
	}
	if c.CountMax != 0 && c.InitCount > c.CountMax {
		return errors.Wrap(ErrInvalidConfig, "InitCount exceeds CountMax")
	}
	return nil
}

func (c Config[P, E]) withDefaults() Config[P, E] {
	if c.InitCount == 0 {
		c.InitCount = 8
	}
	if c.CountMax == 0 {
		c.CountMax = MaxCount
	}
	if c.InitCount > c.CountMax {
		c.InitCount = c.CountMax
	}
	if c.NewSideIndex == nil {
		c.NewSideIndex = DefaultSideIndexFactory[E]()
	}
	return c
}
