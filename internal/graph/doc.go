// Package graph implements the node forest and the mutation tracer.
//
// A Forest owns every node in an arena indexed by id. Nodes are exposed as
// Node values (forest + handle); there are no pointers between nodes, so the
// single-parent invariant is enforced in one place.
//
// A Forest is also the notification producer of everything it contains.
// Every mutation method validates first, then changes the arena, then emits
// at most one notification per structural step through the embedded
// bus.Broadcaster before returning. Only changes to attached nodes (nodes
// whose root is a registered partition) are notified; building a detached
// subtree is silent and the whole subtree is reported by the notification
// that attaches it.
//
// The primitive methods (SetProperty, InsertChild, DeleteChild,
// ReplaceChild, the annotation and reference equivalents, AddPartition and
// DeletePartition) map one-to-one onto notification variants. The Set family
// accepts a whole requested value and drives the primitives with the edit
// script computed by listdiff.
package graph
