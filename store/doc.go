// Package store defines the Object Store contract used by the schema
// registry and the replay player.
//
// A Store keeps one table per visual object (named "<Type>_<id>") plus the
// shared "Visual" style table. Every table holds rows with a fixed, ordered
// field list. Besides the tables, a Store keeps a journal: an append-only,
// sequence-numbered history of every table creation, row append, latest-row
// merge and frame marker. The tables answer "what is the current state"; the
// journal answers "in which order did it happen" and drives replay.
//
// # Implementations
//
//   - memstore: in-memory, used for live sessions and tests
//   - sqlite: durable, file-backed recordings (modernc.org/sqlite)
//
// # Ordering
//
// Stores are single-writer: access to a table is serialized by the caller.
// Journal sequence numbers are strictly increasing in write order.
package store
