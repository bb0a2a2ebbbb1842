package cht

import (
	"encoding/binary"
	"math/bits"

	"github.com/go-ixheap/ixheap/internal/byteview"
)

// fastByteLimit bounds p so that acc*256+b (with acc < p) cannot overflow a
// uint64 accumulator, per spec.md §4.1's "faster path" for byte-at-a-time
// hashing. Above this, hashSpan falls back to overflow-safe mulmod/addmod.
const fastByteLimit = (^uint64(0) - 255) / 256

// hashKey computes the modular byte-span hash of key modulo p, treating
// key's in-memory byte pattern as the input span — the identity a Table's
// key type carries per spec.md §3/§9.
func hashKey[K comparable](key K, p uint64) uint64 {
	return hashSpan(byteview.Of(&key), p)
}

// hashSpan consumes b as a big-integer digit string base R, computing
// ((...((d0*R + d1)*R + d2)...)*R + dn) mod p via Horner's rule. It consumes
// 8 bytes at a time (R = 2^64, word-at-a-time) while a full word remains,
// then falls back to one byte at a time (R = 2^8) for the remainder.
func hashSpan(b []byte, p uint64) uint64 {
	if p <= 1 {
		return 0
	}

	var acc uint64
	i := 0

	// Word-at-a-time: R = 2^64 always requires the overflow-safe path,
	// since no uint64 accumulator can hold acc*2^64 directly.
	if len(b) >= 8 {
		rWord := wordBase(p)
		for ; i+8 <= len(b); i += 8 {
			word := binary.BigEndian.Uint64(b[i : i+8])
			acc = addmod(mulmod(acc, rWord, p), word%p, p)
		}
	}

	// Byte-at-a-time for the trailing remainder (R = 2^8).
	fast := p <= fastByteLimit
	for ; i < len(b); i++ {
		d := uint64(b[i])
		if fast {
			acc = (acc*256 + d) % p
		} else {
			acc = addmod(mulmod(acc, 256, p), d, p)
		}
	}
	return acc
}

// wordBase returns 2^64 mod p, computed as ((2^32 mod p)^2) mod p since 2^64
// itself does not fit in a uint64.
func wordBase(p uint64) uint64 {
	r32 := (uint64(1) << 32) % p
	return mulmod(r32, r32, p)
}

// mulmod and addmod are the "explicit modular multiply-add" slow path
// spec.md §4.1 calls for when p is too large for native arithmetic to stay
// overflow-free.
func mulmod(a, b, p uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	_, rem := bits.Div64(hi, lo, p)
	return rem
}

func addmod(a, b, p uint64) uint64 {
	a %= p
	b %= p
	if a >= p-b {
		return a - (p - b)
	}
	return a + b
}
