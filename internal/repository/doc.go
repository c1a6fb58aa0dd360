// Package repository defines the notification journal.
//
// A journal is an append-only log of notifications as they passed one point
// of a pipeline. Each entry keeps the notification's id, kind, a one-line
// summary, the ids of the nodes it mentions and the encoded notification
// itself, so a journal can be inspected by node or kind and replayed into a
// fresh replica.
//
// # SQLite Implementation
//
// The sqlite subpackage stores entries in two tables: one row per
// notification and one row per mentioned node. The schema is migrated on
// open. Tests run against in-memory databases.
package repository
