package cht

import (
	"github.com/pkg/errors"

	"github.com/go-ixheap/ixheap/pkg/primeseq"
)

// ErrInvalidConfig is returned by New when a Config violates one of its
// documented constraints.
var ErrInvalidConfig = errors.New("cht: invalid config")

// Config carries a Table's tuning knobs. Per spec.md §4.1, key size and
// value size are implicit in K and V; everything else is enumerated here.
type Config[K comparable, V any] struct {
	// MinNum is an expected steady-state key count: the table is pre-sized
	// so that no rehash occurs before this many keys are present. Zero
	// means "no particular expectation", i.e. start minimally sized.
	MinNum uint64

	// AlphaNum / 2^LogAlphaDen bounds the load factor. AlphaNum defaults
	// to 3 when left zero; LogAlphaDen is used as given, so leaving both
	// zero gives α = 3.
	AlphaNum    uint64
	LogAlphaDen uint

	// FreeValue, if non-nil, is invoked on a value by Delete and by Free.
	FreeValue func(V)

	// PrimalityTest, left nil, means every rehash grows through primeseq's
	// precomputed, residue-diverse grouped sequence (itself built from
	// primeseq.IsPrime) — the table spec.md §4.1 "Table sizing" describes.
	// Setting it switches rehash to a linear scan that accepts the first
	// candidate the supplied tester approves, bypassing that table
	// entirely; per spec.md §1 this is an external collaborator of the
	// core, not part of its specified behavior, so use a non-nil value
	// only when a cheaper probabilistic tester on a hot growth path is
	// worth trading away the grouped sequence's clustering avoidance.
	PrimalityTest primeseq.PrimalityTest
}

const maxLogAlphaDen = 63 // bits_in_index for a 64-bit bucket count

func (c Config[K, V]) validate() error {
	if c.LogAlphaDen > maxLogAlphaDen {
		return errors.Wrapf(ErrInvalidConfig, "log_alpha_den %d exceeds %d bits of index width", c.LogAlphaDen, maxLogAlphaDen)
	}
	return nil
}

// withDefaults fills in zero-valued tuning knobs but deliberately leaves
// PrimalityTest untouched: it must stay nil unless the caller set it, since
// rehash (cht.go) treats nil and non-nil differently (grouped sequence vs.
// linear scan) and a defaulted function value would make every rehash take
// the linear-scan branch.
func (c Config[K, V]) withDefaults() Config[K, V] {
	if c.AlphaNum == 0 {
		c.AlphaNum = 3
	}
	return c
}
