// Package conv provides checked numeric conversions.
//
// These helpers are used wherever caller-supplied numbers cross into a
// fixed-width representation: geometry indices handed to a rendering backend,
// reflected numeric values read by the vector normalizer, and counts decoded
// from persisted array blobs.
//
// For conversions that are provably safe by construction (loop indices,
// bounded counters), use direct type casts instead.
package conv
