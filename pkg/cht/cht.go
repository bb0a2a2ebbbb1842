// Package cht implements the chained hash table from spec.md §4.1: division
// hashing modulo a prime table size, per-slot chains built from pkg/dlist,
// and load-factor-driven rehashing into the next prime from pkg/primeseq.
//
// It is the side-index ixheap.Heap consults on every mutation; see
// SideIndex and NewSideIndex for the adapter that lets a *Table satisfy
// ixheap's capability-bundle interface without either package importing the
// other.
//
// K must be a fixed-layout comparable type: an integer, pointer, array, or
// struct built from such, with no string, slice, map, interface, or func
// anywhere in its representation. Keys are hashed via internal/byteview,
// which views K's raw bytes — a string's header, say, hashes its pointer and
// length, not its characters, so two == equal strings backed by different
// arrays would land in different buckets. Using an indirection-carrying K is
// undefined, the same way spec.md §9 leaves a duplicate byte pattern
// undefined.
package cht

import (
	"math/bits"

	"github.com/pkg/errors"

	"github.com/go-ixheap/ixheap/internal/ixlog"
	"github.com/go-ixheap/ixheap/pkg/dlist"
	"github.com/go-ixheap/ixheap/pkg/primeseq"
)

// ErrOverflow is returned (and poisons the table) when capacity arithmetic
// cannot be evaluated safely, per spec.md §4.1/§7.
var ErrOverflow = errors.New("cht: capacity arithmetic overflow")

// Table is a chained hash table mapping K to V. The zero value is not
// usable; construct with New.
type Table[K comparable, V any] struct {
	cfg      Config[K, V]
	buckets  []dlist.List[K, V]
	prime    uint64
	numElts  uint64
	poisoned error
}

// New constructs a Table per cfg. It panics if cfg fails validation (a
// malformed Config is a programmer error, not a runtime condition — there is
// no table yet to poison).
func New[K comparable, V any](cfg Config[K, V]) *Table[K, V] {
	if err := cfg.validate(); err != nil {
		panic(err)
	}
	cfg = cfg.withDefaults()

	t := &Table[K, V]{cfg: cfg}
	needed := minBucketsFor(cfg)
	initial, ok := primeseq.Next(needed-1, primeseq.MaxPrime(), nil)
	if !ok {
		initial = primeseq.MaxPrime()
	}
	t.prime = initial
	t.buckets = make([]dlist.List[K, V], initial)
	metricTables.Inc()
	return t
}

// minBucketsFor returns the smallest bucket count under which cfg.MinNum
// keys fit without exceeding the configured load factor. The division is
// ceilinged: floor division would undersize the table by one bucket
// whenever AlphaNum doesn't divide MinNum·2^LogAlphaDen evenly, tripping a rehash one key
// short of MinNum.
func minBucketsFor[K comparable, V any](cfg Config[K, V]) uint64 {
	if cfg.MinNum == 0 {
		return 1
	}
	need := ((cfg.MinNum << cfg.LogAlphaDen) + cfg.AlphaNum - 1) / cfg.AlphaNum
	if need < 1 {
		need = 1
	}
	return need
}

// Len reports the number of keys currently stored.
func (t *Table[K, V]) Len() uint64 {
	return t.numElts
}

func (t *Table[K, V]) bucket(key K) *dlist.List[K, V] {
	idx := hashKey(key, t.prime)
	return &t.buckets[idx]
}

// Insert upserts key → value: if key is present, its value is overwritten
// in place with no chain change; otherwise a new chain node is prepended.
// Insert may trigger a rehash and, on an unrecoverable capacity-arithmetic
// overflow, poisons the table and returns ErrOverflow.
func (t *Table[K, V]) Insert(key K, value V) error {
	if t.poisoned != nil {
		return t.poisoned
	}

	b := t.bucket(key)
	if n := b.Find(key); n != nil {
		n.Value = value
		return nil
	}

	b.PushFront(key, value)
	t.numElts++
	metricLoadFactor.Set(float64(t.numElts) / float64(t.prime))

	exceeds, err := exceedsLoadFactor(t.numElts, t.prime, t.cfg.AlphaNum, t.cfg.LogAlphaDen)
	if err != nil {
		t.poison(errors.Wrap(err, "insert: load factor check"))
		return t.poisoned
	}
	if exceeds {
		if err := t.rehash(); err != nil {
			t.poison(errors.Wrap(err, "insert: rehash"))
			return t.poisoned
		}
	}
	return nil
}

// Search returns a pointer to key's stored value, or (nil, false) if absent.
// The pointer is valid only until the next mutating call on t, since a
// rehash relinks (and a growing bucket array replaces) the chain it lives
// in — mirroring spec.md §3's aliasing invariant for the original's raw
// pointers.
func (t *Table[K, V]) Search(key K) (*V, bool) {
	if t.poisoned != nil {
		return nil, false
	}
	n := t.bucket(key).Find(key)
	if n == nil {
		return nil, false
	}
	return &n.Value, true
}

// Remove extracts key's value into the return, unlinking its node. Removing
// an absent key is not an error: ok is simply false.
func (t *Table[K, V]) Remove(key K) (value V, ok bool) {
	if t.poisoned != nil {
		return value, false
	}
	b := t.bucket(key)
	n := b.Find(key)
	if n == nil {
		return value, false
	}
	value = n.Value
	b.Remove(n)
	t.numElts--
	return value, true
}

// Delete behaves like Remove but invokes cfg.FreeValue on the removed value
// in place instead of returning it.
func (t *Table[K, V]) Delete(key K) bool {
	if t.poisoned != nil {
		return false
	}
	b := t.bucket(key)
	n := b.Find(key)
	if n == nil {
		return false
	}
	b.RemoveFunc(n, t.cfg.FreeValue)
	t.numElts--
	return true
}

// Free invokes cfg.FreeValue (if any) on every remaining value and releases
// the bucket array.
func (t *Table[K, V]) Free() {
	for i := range t.buckets {
		t.buckets[i].FreeAll(t.cfg.FreeValue)
	}
	t.buckets = nil
	t.numElts = 0
}

// rehash grows to the next prime in the sequence and relinks every existing
// node into its new bucket, per spec.md §4.1 ("nodes are moved, not
// reallocated"). If the table is already at the largest representable
// prime, the load-factor overrun is tolerated silently (spec.md §4.1).
func (t *Table[K, V]) rehash() error {
	next, ok := primeseq.Next(t.prime, primeseq.MaxPrime(), t.cfg.PrimalityTest)
	if !ok {
		ixlog.Debug("cht: rehash skipped, at max prime", "prime", t.prime)
		return nil
	}

	newBuckets := make([]dlist.List[K, V], next)
	for i := range t.buckets {
		old := &t.buckets[i]
		for old.Len() > 0 {
			n := old.Front()
			newIdx := hashKey(n.Key, next)
			newBuckets[newIdx].MoveFront(n)
		}
	}

	ixlog.Debug("cht: rehashed", "old_prime", t.prime, "new_prime", next, "num_elts", t.numElts)
	t.buckets = newBuckets
	t.prime = next
	metricRehashesTotal.Inc()
	metricLoadFactor.Set(float64(t.numElts) / float64(t.prime))
	return nil
}

func (t *Table[K, V]) poison(err error) {
	t.poisoned = err
	ixlog.Fatal("cht: table poisoned", "error", err)
}

// exceedsLoadFactor evaluates (numElts)*2^logAlphaDen > count*alphaNum using
// the full 128-bit product of each side (via bits.Mul64) so the comparison
// itself never overflows; spec.md §4.1's "overflow-safe widening". err is
// non-nil only for the pathological case of numElts already being
// ^uint64(0), which would overflow incrementing further.
func exceedsLoadFactor(numElts, count, alphaNum uint64, logAlphaDen uint) (exceeds bool, err error) {
	if numElts == ^uint64(0) {
		return false, ErrOverflow
	}
	lhsHi, lhsLo := bits.Mul64(numElts, uint64(1)<<logAlphaDen)
	rhsHi, rhsLo := bits.Mul64(count, alphaNum)
	if lhsHi != rhsHi {
		return lhsHi > rhsHi, nil
	}
	return lhsLo > rhsLo, nil
}
