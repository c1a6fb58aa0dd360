// Package domain defines the value types shared by the model repository.
//
// Nothing in this package knows about forests, buses or replication; it only
// describes data that crosses those boundaries.
//
// # Core Types
//
// Target is one entry of a reference link: the id of the node it points to
// and an optional resolve-info hint. A Target whose node cannot be found is
// simply unresolved, which is legitimate for forward references.
//
// Subtree is an immutable snapshot of a node and everything it contains. It
// travels inside notifications whenever a node enters a forest, and is the
// only clone data a replica ever gets.
//
// # Errors
//
// Error carries a Kind (structural violation, replication divergence,
// pipeline misuse, unresolved reference) and a short Code so callers can
// branch with IsKind or IsCode without parsing messages.
//
// # Design Principles
//
// - Immutable value objects
// - No dependencies on other internal packages
// - Property values are normalized to string, int64 or bool
package domain
