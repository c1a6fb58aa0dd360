package replicate

import (
	"sort"

	"modelsync/internal/graph"
)

// SharedNodeMap is the identity table of one replication relationship: node
// id to the replica's node. Entries are added on first sight and never
// removed, so a node that leaves and re-enters the forest keeps its entry.
type SharedNodeMap struct {
	nodes map[string]graph.Node
}

// NewSharedNodeMap creates an empty map
func NewSharedNodeMap() *SharedNodeMap {
	return &SharedNodeMap{nodes: make(map[string]graph.Node)}
}

// Register records n under id
func (m *SharedNodeMap) Register(id string, n graph.Node) {
	m.nodes[id] = n
}

// Lookup returns the node registered under id
func (m *SharedNodeMap) Lookup(id string) (graph.Node, bool) {
	n, ok := m.nodes[id]
	return n, ok
}

// Len is the number of registered nodes
func (m *SharedNodeMap) Len() int {
	return len(m.nodes)
}

// IDs returns the registered ids, sorted
func (m *SharedNodeMap) IDs() []string {
	out := make([]string, 0, len(m.nodes))
	for id := range m.nodes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
