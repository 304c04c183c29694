// Package actor materializes objects into render backend renderables.
//
// An Actor is created once per object with the variant for its type. Create
// builds the geometry and material from the first snapshot, Update applies
// later snapshots in place and ApplyColormap recolors elements from a scalar
// field. Changes are accumulated and pushed to the backend by Flush.
//
// Topology is fixed when an actor is created. Updates that carry new cells
// or indices only move the existing vertices; the new topology is ignored.
package actor
