package domain

// Subtree is a snapshot of a node and its containment closure.
// Treat it as read-only once built.
type Subtree struct {
	ID           string                `json:"id" yaml:"id"`
	Classifier   string                `json:"classifier" yaml:"classifier"`
	Properties   map[string]any        `json:"properties,omitempty" yaml:"properties,omitempty"`
	Containments map[string][]*Subtree `json:"containments,omitempty" yaml:"containments,omitempty"`
	References   map[string][]Target   `json:"references,omitempty" yaml:"references,omitempty"`
	Annotations  []*Subtree            `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// IDs returns the ids of the snapshot in depth-first pre-order:
// the node, then every containment (in feature order as given by keys) and
// finally the annotations.
func (s *Subtree) IDs(featureOrder []string) []string {
	var out []string
	s.walk(featureOrder, func(n *Subtree) { out = append(out, n.ID) })
	return out
}

// Walk visits every node of the snapshot in pre-order
func (s *Subtree) Walk(fn func(*Subtree)) {
	s.walk(nil, fn)
}

func (s *Subtree) walk(featureOrder []string, fn func(*Subtree)) {
	if s == nil {
		return
	}
	fn(s)
	visited := make(map[string]bool, len(s.Containments))
	for _, key := range featureOrder {
		if children, ok := s.Containments[key]; ok {
			visited[key] = true
			for _, c := range children {
				c.walk(featureOrder, fn)
			}
		}
	}
	for _, key := range sortedKeys(s.Containments) {
		if visited[key] {
			continue
		}
		for _, c := range s.Containments[key] {
			c.walk(featureOrder, fn)
		}
	}
	for _, a := range s.Annotations {
		a.walk(featureOrder, fn)
	}
}

// Size counts the nodes in the snapshot
func (s *Subtree) Size() int {
	n := 0
	s.Walk(func(*Subtree) { n++ })
	return n
}
