// Package primeseq supplies the prime-based growth sequence used by cht to
// size its bucket array, and the is-prime predicate that sequence is built
// from. Per spec.md §1, the predicate (and any randomness behind it) is an
// external collaborator of the core, specified only at this interface: a
// func(uint64) bool. The default supplied here is deterministic, so no
// randomness is actually needed for any input that fits in a uint64.
package primeseq

import "math/bits"

// PrimalityTest decides whether n is prime. IsPrime satisfies it.
type PrimalityTest func(n uint64) bool

// IsPrime is a deterministic Miller-Rabin test. The witness set
// {2,3,5,7,11,13,17,19,23,29,31,37} is a proof (not merely a high-probability
// test) for every n < 318,665,857,834,031,151,167,461 — i.e. for the whole
// uint64 range — so callers never need to supply their own randomness.
func IsPrime(n uint64) bool {
	switch {
	case n < 2:
		return false
	case n < 4:
		return true
	case n%2 == 0:
		return false
	}

	// n - 1 = d * 2^r, d odd.
	d := n - 1
	r := 0
	for d%2 == 0 {
		d /= 2
		r++
	}

	witnesses := [...]uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37}
	for _, a := range witnesses {
		if a%n == 0 {
			continue
		}
		if !mrWitness(a, d, r, n) {
			return false
		}
	}
	return true
}

// mrWitness reports whether a fails to witness n's compositeness, i.e.
// whether the Miller-Rabin round for base a is consistent with n being
// prime.
func mrWitness(a, d uint64, r int, n uint64) bool {
	x := powmod(a, d, n)
	if x == 1 || x == n-1 {
		return true
	}
	for i := 0; i < r-1; i++ {
		x = mulmod(x, x, n)
		if x == n-1 {
			return true
		}
	}
	return false
}

// mulmod computes a*b mod n without overflowing uint64, via the same
// overflow-safe widening cht's key hash uses for its slow path.
func mulmod(a, b, n uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	_, rem := bits.Div64(hi, lo, n)
	return rem
}

func powmod(base, exp, n uint64) uint64 {
	result := uint64(1)
	base %= n
	for exp > 0 {
		if exp&1 == 1 {
			result = mulmod(result, base, n)
		}
		base = mulmod(base, base, n)
		exp >>= 1
	}
	return result
}

// group is a contiguous band of primes of increasing bit width. Each group's
// primes are spread across residues mod 3, mod 5, and mod 7 so that
// sequential growth steps disturb any clustering the previous table size
// induced, per spec.md §4.1.
type group struct {
	primes []uint64
}

// groups is the precomputed sequence, narrowest first. The final entry's
// last prime is the largest size cht will ever grow to; once reached, load
// factor overrun is tolerated silently (Next reports Exhausted).
var groups = buildGroups()

func buildGroups() []group {
	bounds := []uint64{
		1 << 8, 1 << 16, 1 << 24, 1 << 32, 1 << 40, 1 << 48, 1 << 56, 1<<63 - 1,
	}
	out := make([]group, 0, len(bounds))
	lo := uint64(5)
	for _, hi := range bounds {
		g := group{}
		for _, residueMod := range [...]uint64{3, 5, 7} {
			for off := uint64(1); off < residueMod; off++ {
				if p, ok := nextPrimeCongruent(lo, hi, residueMod, off); ok {
					g.primes = append(g.primes, p)
				}
			}
		}
		g.primes = append(g.primes, nextPrimeAtLeast(lo))
		g.primes = dedupSort(g.primes)
		out = append(out, g)
		lo = hi
	}
	return out
}

// nextPrimeCongruent finds the first prime p in [lo, hi) with p % mod ==
// residue, if any.
func nextPrimeCongruent(lo, hi, mod, residue uint64) (uint64, bool) {
	start := lo - lo%mod + residue
	if start < lo {
		start += mod
	}
	for p := start; p < hi; p += mod {
		if IsPrime(p) {
			return p, true
		}
	}
	return 0, false
}

func nextPrimeAtLeast(lo uint64) uint64 {
	for p := lo; ; p++ {
		if IsPrime(p) {
			return p
		}
	}
}

func dedupSort(xs []uint64) []uint64 {
	// insertion sort: groups hold at most ~10 entries.
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
	out := xs[:0]
	var prev uint64
	for i, x := range xs {
		if i == 0 || x != prev {
			out = append(out, x)
		}
		prev = x
	}
	return out
}

// Exhausted is returned by Next as ok == false when count has already
// reached the largest representable prime; the caller should keep its
// current size and tolerate the load factor overrun, per spec.md §4.1.
const Exhausted = false

// Next returns the next size strictly greater than count that does not
// exceed countMax. With a nil test that is the smallest prime of the
// precomputed grouped sequence above count (not necessarily the smallest
// prime above count), advancing through the groups as needed. ok is
// Exhausted when no such prime exists (count is already at or past the final
// representable prime, or countMax forecloses any larger size).
//
// test is the pluggable external collaborator from spec.md §1. A nil test
// uses the precomputed default sequence (IsPrime, grouped by residue, §4.1).
// A non-nil test bypasses that precomputed structure entirely and scans
// forward one integer at a time — a caller who supplies its own primality
// test takes on that linear-scan cost itself.
func Next(count, countMax uint64, test PrimalityTest) (prime uint64, ok bool) {
	if test == nil {
		return nextDefault(count, countMax)
	}
	for p := count + 1; p <= countMax; p++ {
		if test(p) {
			return p, true
		}
	}
	return 0, Exhausted
}

func nextDefault(count, countMax uint64) (prime uint64, ok bool) {
	for _, g := range groups {
		for _, p := range g.primes {
			if p > count && p <= countMax {
				return p, true
			}
		}
	}
	return 0, Exhausted
}

// MaxPrime is the largest size cht will ever grow its bucket array to.
func MaxPrime() uint64 {
	last := groups[len(groups)-1]
	return last.primes[len(last.primes)-1]
}
