// Package byteview gives the side-index a way to treat an arbitrary
// fixed-size Go value as the raw bytes that define its identity, without
// asking every caller for a hand-written key encoder.
package byteview

import "unsafe"

// Of returns a read-only view of v's in-memory representation. The returned
// slice aliases v; it must not be mutated, and it is only valid for as long
// as v is. It exists to feed a value's bit pattern into a hash function, not
// to copy or compare values — use == for that.
//
// T must be a fixed-layout value type — integers, pointers, arrays, or
// structs composed of such — whose representation contains no indirection
// the runtime follows on ==. For a string, slice, interface, or map value,
// Go's == compares referenced content while Of would only see the header
// (pointer + length), so hash(a) could differ from hash(b) even when a == b.
// Using such a T as a hash key is the Go-idiomatic analogue of spec.md §9's
// byte-identity contract, not an extension of it: it is undefined, the same
// way the original forbids two distinct byte patterns from being "the same"
// element.
func Of[T any](v *T) []byte {
	var zero T
	size := unsafe.Sizeof(zero)
	if size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), size)
}
