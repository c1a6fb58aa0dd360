package graph

import (
	"modelsync/internal/domain"
	"modelsync/internal/schema"
)

// feature resolves key on the node at h and checks its kind
func (f *Forest) feature(h handle, key string, kind schema.FeatureKind) (*schema.Feature, error) {
	n := f.n(h)
	ft, ok := n.classifier.Feature(key)
	if !ok {
		return nil, domain.Violation(domain.CodeUnknownFeature, n.id, key, "classifier %s has no feature %s", n.classifier.Key, key)
	}
	if ft.Kind != kind {
		return nil, domain.Violation(domain.CodeWrongFeatureKind, n.id, key, "is a %s, not a %s", ft.Kind, kind)
	}
	return ft, nil
}

func (f *Forest) containment(parentID, key string) (slot, *schema.Feature, error) {
	h, err := f.lookup(parentID)
	if err != nil {
		return slot{}, nil, err
	}
	ft, err := f.feature(h, key, schema.KindContainment)
	if err != nil {
		return slot{}, nil, err
	}
	return slot{parent: h, feature: key}, ft, nil
}

func (f *Forest) annotations(parentID string) (slot, error) {
	h, err := f.lookup(parentID)
	if err != nil {
		return slot{}, err
	}
	return slot{parent: h}, nil
}

// checkIncoming validates placing c into s
func (f *Forest) checkIncoming(s slot, ft *schema.Feature, c handle) error {
	parent, child := f.n(s.parent), f.n(c)
	if f.isPartition(c) {
		return domain.Violation(domain.CodePartitionChild, parent.id, s.feature, "partition %s cannot become a child", child.id)
	}
	if s.isAnnotation() {
		if !child.classifier.Annotation {
			return domain.Violation(domain.CodeTypeMismatch, parent.id, "", "%s is not an annotation", child.classifier.Key)
		}
	} else {
		if child.classifier.Annotation {
			return domain.Violation(domain.CodeTypeMismatch, parent.id, s.feature, "annotation %s cannot be contained", child.classifier.Key)
		}
		if !f.lang.IsA(child.classifier.Key, ft.Type) {
			return domain.Violation(domain.CodeTypeMismatch, parent.id, s.feature, "%s is not a %s", child.classifier.Key, ft.Type)
		}
	}
	if f.isAncestorOrSelf(c, s.parent) {
		return domain.Violation(domain.CodeCycle, parent.id, s.feature, "%s contains %s", child.id, parent.id)
	}
	return nil
}

func checkIndex(node, feature string, index, limit int) error {
	if index < 0 || index > limit {
		return domain.Violation(domain.CodeIndexOutOfRange, node, feature, "index %d outside [0, %d]", index, limit)
	}
	return nil
}

// checkTarget validates a reference entry; unresolved targets are allowed
func (f *Forest) checkTarget(owner handle, ft *schema.Feature, t domain.Target) error {
	if t.Empty() {
		return domain.Violation(domain.CodeInvalidValue, f.n(owner).id, ft.Key, "reference entry needs a target id or resolve info")
	}
	if h, ok := f.index[t.TargetID]; ok && !f.lang.IsA(f.n(h).classifier.Key, ft.Type) {
		return domain.Violation(domain.CodeTypeMismatch, f.n(owner).id, ft.Key, "%s is not a %s", f.n(h).classifier.Key, ft.Type)
	}
	return nil
}
