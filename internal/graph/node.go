package graph

import (
	"modelsync/internal/domain"
	"modelsync/internal/schema"
)

// Node is a read view of one node in a Forest. The zero Node is invalid.
type Node struct {
	f *Forest
	h handle
}

// Valid reports whether n refers to a node
func (n Node) Valid() bool {
	return n.f != nil
}

func (n Node) data() *node {
	return n.f.n(n.h)
}

func (n Node) ID() string {
	return n.data().id
}

func (n Node) Classifier() *schema.Classifier {
	return n.data().classifier
}

// Forest returns the forest owning the node
func (n Node) Forest() *Forest {
	return n.f
}

// Parent returns the containing node; ok is false for roots and detached nodes
func (n Node) Parent() (Node, bool) {
	p := n.data().parent
	if p == noHandle {
		return Node{}, false
	}
	return Node{f: n.f, h: p}, true
}

// Containment returns the link holding the node and its index there. An
// annotation reports an empty feature.
func (n Node) Containment() (feature string, index int, ok bool) {
	s, i, ok := n.f.location(n.h)
	if !ok {
		return "", 0, false
	}
	return s.feature, i, true
}

// IsAnnotation reports whether the node sits in its parent's annotations
func (n Node) IsAnnotation() bool {
	d := n.data()
	return d.parent != noHandle && d.feature == ""
}

// Attached reports whether the node belongs to a registered partition
func (n Node) Attached() bool {
	return n.f.attached(n.h)
}

// IsPartition reports whether the node is a registered partition root
func (n Node) IsPartition() bool {
	return n.f.isPartition(n.h)
}

// Property returns a property value, nil when unset
func (n Node) Property(key string) any {
	return n.data().props[key]
}

// Children returns the ids held by a containment
func (n Node) Children(key string) []string {
	return n.f.handleIDs(n.data().children[key])
}

// Child returns the single child of a containment
func (n Node) Child(key string) (string, bool) {
	c := n.data().children[key]
	if len(c) == 0 {
		return "", false
	}
	return n.f.n(c[0]).id, true
}

// References returns a copy of the entries of a reference link
func (n Node) References(key string) []domain.Target {
	refs := n.data().refs[key]
	if len(refs) == 0 {
		return nil
	}
	return append([]domain.Target(nil), refs...)
}

// Annotations returns the ids of the annotation instances on the node
func (n Node) Annotations() []string {
	return n.f.handleIDs(n.data().annotations)
}

// Get returns the value of a feature in the shape Set accepts: the property
// value, a child id or id slice, a *domain.Target or target slice.
func (n Node) Get(key string) (any, error) {
	ft, ok := n.Classifier().Feature(key)
	if !ok {
		return nil, domain.Violation(domain.CodeUnknownFeature, n.ID(), key, "classifier %s has no feature %s", n.Classifier().Key, key)
	}
	switch ft.Kind {
	case schema.KindProperty:
		return n.Property(key), nil
	case schema.KindContainment:
		if ft.Multiple {
			return n.Children(key), nil
		}
		id, _ := n.Child(key)
		return id, nil
	default:
		refs := n.References(key)
		if ft.Multiple {
			return refs, nil
		}
		if len(refs) == 0 {
			return (*domain.Target)(nil), nil
		}
		return &refs[0], nil
	}
}

// CollectAllSetFeatures returns the features currently holding a value, in
// declaration order
func (n Node) CollectAllSetFeatures() []*schema.Feature {
	d := n.data()
	var out []*schema.Feature
	for _, ft := range d.classifier.AllFeatures() {
		var set bool
		switch ft.Kind {
		case schema.KindProperty:
			set = d.props[ft.Key] != nil
		case schema.KindContainment:
			set = len(d.children[ft.Key]) > 0
		case schema.KindReference:
			set = len(d.refs[ft.Key]) > 0
		}
		if set {
			out = append(out, ft)
		}
	}
	return out
}

func (n Node) String() string {
	if !n.Valid() {
		return "<invalid>"
	}
	return n.Classifier().Key + ":" + n.ID()
}
