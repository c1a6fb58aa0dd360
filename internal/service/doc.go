// Package service wires forests, pipes and replicators into the topologies
// modelsync runs.
//
// # Topologies
//
// Mirror keeps a replica forest in step with a source forest. With
// composition enabled, source transactions reach the replica as Composite
// notifications and are replayed inside a compositor frame carrying the
// same id.
//
// Pair connects two forests in both directions. Each direction ends in a
// replicator whose reciprocal inbound EchoFilter is told which ids it
// applied, so a change never bounces back to where it came from.
//
// # Taps
//
// JournalSink appends every notification it receives to a
// repository.Journal, and Rebuild replays a journal stream into a forest.
// EventBus fans notifications out to channel subscribers as Events.
//
// # Scripts
//
// Runner applies scenario steps (see codec.Scenario) to a forest.
package service
