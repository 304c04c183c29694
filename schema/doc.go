// Package schema defines the per-type object tables and the formatting of
// producer parameters into stored rows.
//
// Producers hand loosely typed Params to FormatCreate or FormatUpdate. The
// result is a Patch that only carries the fields that were provided, already
// normalized to their stored kinds. A Table persists patches through a
// store.Store and keeps an immutable Snapshot of the merged object state;
// every Update yields a new Snapshot.
//
// Omitted fields and fields explicitly provided as empty stay distinct all
// the way through: an omitted field is absent from the Patch, an empty one is
// present with an empty value.
package schema
