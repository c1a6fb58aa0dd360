package graph

import (
	"modelsync/internal/domain"
	"modelsync/internal/schema"
)

// Snapshot copies the node and its containment closure
func (f *Forest) Snapshot(id string) (*domain.Subtree, error) {
	h, err := f.lookup(id)
	if err != nil {
		return nil, err
	}
	return f.snapshot(h), nil
}

func (f *Forest) snapshot(h handle) *domain.Subtree {
	n := f.n(h)
	s := &domain.Subtree{ID: n.id, Classifier: n.classifier.Key}
	if len(n.props) > 0 {
		s.Properties = make(map[string]any, len(n.props))
		for k, v := range n.props {
			s.Properties[k] = v
		}
	}
	if len(n.children) > 0 {
		s.Containments = make(map[string][]*domain.Subtree, len(n.children))
		for k, hs := range n.children {
			kids := make([]*domain.Subtree, len(hs))
			for i, c := range hs {
				kids[i] = f.snapshot(c)
			}
			s.Containments[k] = kids
		}
	}
	if len(n.refs) > 0 {
		s.References = make(map[string][]domain.Target, len(n.refs))
		for k, ts := range n.refs {
			s.References[k] = append([]domain.Target(nil), ts...)
		}
	}
	for _, a := range n.annotations {
		s.Annotations = append(s.Annotations, f.snapshot(a))
	}
	return s
}

// Closure lists the node and everything it contains or annotates in
// depth-first pre-order: containments in feature declaration order, then
// annotations.
func (f *Forest) Closure(id string) ([]string, error) {
	h, err := f.lookup(id)
	if err != nil {
		return nil, err
	}
	return f.closure(h), nil
}

func (f *Forest) closure(h handle) []string {
	var out []string
	var walk func(handle)
	walk = func(h handle) {
		n := f.n(h)
		out = append(out, n.id)
		for _, ft := range n.classifier.AllFeatures() {
			if ft.Kind != schema.KindContainment {
				continue
			}
			for _, c := range n.children[ft.Key] {
				walk(c)
			}
		}
		for _, a := range n.annotations {
			walk(a)
		}
	}
	walk(h)
	return out
}

// Materialize builds the detached subtree described by s. Nodes whose ids
// already exist are reused and overwritten, which requires them to be
// detached; the others are created. register, when not nil, sees every node
// before any structural link is made. Nothing is notified.
func (f *Forest) Materialize(s *domain.Subtree, register func(id string, n Node)) (Node, error) {
	if err := f.checkSnapshot(s); err != nil {
		return Node{}, err
	}
	var err error
	s.Walk(func(x *domain.Subtree) {
		if err != nil {
			return
		}
		if _, ok := f.index[x.ID]; !ok {
			_, err = f.NewNode(x.Classifier, x.ID)
		}
		if err == nil && register != nil {
			register(x.ID, Node{f: f, h: f.index[x.ID]})
		}
	})
	if err != nil {
		return Node{}, err
	}
	s.Walk(func(x *domain.Subtree) {
		h := f.index[x.ID]
		n := f.n(h)
		if x.ID == s.ID {
			f.detach(h)
		}
		for _, c := range n.annotations {
			f.n(c).parent = noHandle
		}
		for _, hs := range n.children {
			for _, c := range hs {
				f.n(c).parent = noHandle
				f.n(c).feature = ""
			}
		}
		n.props = make(map[string]any, len(x.Properties))
		n.children = make(map[string][]handle, len(x.Containments))
		n.refs = make(map[string][]domain.Target, len(x.References))
		n.annotations = nil
		for k, v := range x.Properties {
			ft, _ := n.classifier.Feature(k)
			if v, _ = domain.NormalizeValue(ft.Type, v); v != nil {
				n.props[k] = v
			}
		}
		for k, ts := range x.References {
			if len(ts) > 0 {
				n.refs[k] = append([]domain.Target(nil), ts...)
			}
		}
	})
	// children of a reused node may have been moved elsewhere in s
	s.Walk(func(x *domain.Subtree) {
		h := f.index[x.ID]
		for k, kids := range x.Containments {
			for _, c := range kids {
				ch := f.index[c.ID]
				f.detach(ch)
				f.attach(ch, slot{parent: h, feature: k}, len(f.n(h).children[k]))
			}
		}
		for _, a := range x.Annotations {
			ah := f.index[a.ID]
			f.detach(ah)
			f.attach(ah, slot{parent: h}, len(f.n(h).annotations))
		}
	})
	return Node{f: f, h: f.index[s.ID]}, nil
}

// checkSnapshot validates s against the language and the current forest
func (f *Forest) checkSnapshot(s *domain.Subtree) error {
	if s == nil {
		return domain.Violation(domain.CodeInvalidValue, "", "", "empty snapshot")
	}
	seen := make(map[string]bool)
	var err error
	s.Walk(func(x *domain.Subtree) {
		if err != nil {
			return
		}
		err = f.checkSnapshotNode(x, seen)
	})
	return err
}

func (f *Forest) checkSnapshotNode(x *domain.Subtree, seen map[string]bool) error {
	if x.ID == "" {
		return domain.Violation(domain.CodeInvalidValue, "", "", "snapshot node without id")
	}
	if seen[x.ID] {
		return domain.Violation(domain.CodeDuplicateID, x.ID, "", "node appears twice in snapshot")
	}
	seen[x.ID] = true
	c, ok := f.lang.Classifier(x.Classifier)
	if !ok {
		return domain.Violation(domain.CodeUnknownClassifier, x.ID, "", "unknown classifier %s", x.Classifier)
	}
	if h, ok := f.index[x.ID]; ok {
		if f.n(h).classifier != c {
			return domain.Violation(domain.CodeTypeMismatch, x.ID, "", "existing node is a %s, snapshot says %s", f.n(h).classifier.Key, x.Classifier)
		}
		if f.attached(h) {
			return domain.Violation(domain.CodeDuplicateID, x.ID, "", "node is attached")
		}
	}
	for k, v := range x.Properties {
		ft, ok := c.Feature(k)
		if !ok || ft.Kind != schema.KindProperty {
			return domain.Violation(domain.CodeUnknownFeature, x.ID, k, "%s has no property %s", c.Key, k)
		}
		if _, err := domain.NormalizeValue(ft.Type, v); err != nil {
			return &domain.Error{Kind: domain.KindStructuralViolation, Code: domain.CodeInvalidValue, Node: x.ID, Feature: k, Err: err}
		}
	}
	for k, kids := range x.Containments {
		ft, ok := c.Feature(k)
		if !ok || ft.Kind != schema.KindContainment {
			return domain.Violation(domain.CodeUnknownFeature, x.ID, k, "%s has no containment %s", c.Key, k)
		}
		if !ft.Multiple && len(kids) > 1 {
			return domain.Violation(domain.CodeMultiplicity, x.ID, k, "%d children in a single-valued containment", len(kids))
		}
		for _, kid := range kids {
			if kid == nil || !f.lang.IsA(kid.Classifier, ft.Type) {
				return domain.Violation(domain.CodeTypeMismatch, x.ID, k, "child is not a %s", ft.Type)
			}
		}
	}
	for k, ts := range x.References {
		ft, ok := c.Feature(k)
		if !ok || ft.Kind != schema.KindReference {
			return domain.Violation(domain.CodeUnknownFeature, x.ID, k, "%s has no reference %s", c.Key, k)
		}
		if !ft.Multiple && len(ts) > 1 {
			return domain.Violation(domain.CodeMultiplicity, x.ID, k, "%d entries in a single-valued reference", len(ts))
		}
	}
	for _, a := range x.Annotations {
		if a == nil {
			return domain.Violation(domain.CodeInvalidValue, x.ID, "", "empty annotation")
		}
		if ac, ok := f.lang.Classifier(a.Classifier); ok && !ac.Annotation {
			return domain.Violation(domain.CodeTypeMismatch, x.ID, "", "%s is not an annotation", a.Classifier)
		}
	}
	return nil
}
