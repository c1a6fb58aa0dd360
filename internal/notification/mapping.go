package notification

import (
	"fmt"
	"sort"

	"modelsync/internal/domain"
)

// MapNodes returns a copy of n in which every node id, including ids inside
// subtree snapshots, deleted-node lists and reference targets, went through
// fn. The id of the notification is kept.
func MapNodes(n Notification, fn func(string) string) Notification {
	ids := func(in []string) []string {
		if in == nil {
			return nil
		}
		out := make([]string, len(in))
		for i, id := range in {
			out[i] = fn(id)
		}
		return out
	}
	tgt := func(t Target) Target {
		if t.TargetID != "" {
			t.TargetID = fn(t.TargetID)
		}
		return t
	}
	tree := func(s *domain.Subtree) *domain.Subtree {
		return mapSubtree(s, fn)
	}

	switch v := n.(type) {
	case PropertyAdded:
		v.Node = fn(v.Node)
		return v
	case PropertyDeleted:
		v.Node = fn(v.Node)
		return v
	case PropertyChanged:
		v.Node = fn(v.Node)
		return v

	case ChildAdded:
		v.Parent, v.NewChild = fn(v.Parent), tree(v.NewChild)
		return v
	case ChildDeleted:
		v.Parent, v.DeletedChild, v.DeletedNodes = fn(v.Parent), fn(v.DeletedChild), ids(v.DeletedNodes)
		return v
	case ChildReplaced:
		v.Parent, v.NewChild = fn(v.Parent), tree(v.NewChild)
		v.ReplacedChild, v.DeletedNodes = fn(v.ReplacedChild), ids(v.DeletedNodes)
		return v
	case ChildMovedFromOtherContainment:
		v.NewParent, v.OldParent, v.MovedChild = fn(v.NewParent), fn(v.OldParent), fn(v.MovedChild)
		return v
	case ChildMovedFromOtherContainmentInSameParent:
		v.Parent, v.MovedChild = fn(v.Parent), fn(v.MovedChild)
		return v
	case ChildMovedInSameContainment:
		v.Parent, v.MovedChild = fn(v.Parent), fn(v.MovedChild)
		return v
	case ChildMovedAndReplacedFromOtherContainment:
		v.NewParent, v.OldParent, v.MovedChild = fn(v.NewParent), fn(v.OldParent), fn(v.MovedChild)
		v.ReplacedChild, v.DeletedNodes = fn(v.ReplacedChild), ids(v.DeletedNodes)
		return v
	case ChildMovedAndReplacedFromOtherContainmentInSameParent:
		v.Parent, v.MovedChild = fn(v.Parent), fn(v.MovedChild)
		v.ReplacedChild, v.DeletedNodes = fn(v.ReplacedChild), ids(v.DeletedNodes)
		return v
	case ChildMovedAndReplacedInSameContainment:
		v.Parent, v.MovedChild = fn(v.Parent), fn(v.MovedChild)
		v.ReplacedChild, v.DeletedNodes = fn(v.ReplacedChild), ids(v.DeletedNodes)
		return v

	case AnnotationAdded:
		v.Parent, v.NewAnnotation = fn(v.Parent), tree(v.NewAnnotation)
		return v
	case AnnotationDeleted:
		v.Parent, v.DeletedAnnotation, v.DeletedNodes = fn(v.Parent), fn(v.DeletedAnnotation), ids(v.DeletedNodes)
		return v
	case AnnotationReplaced:
		v.Parent, v.NewAnnotation = fn(v.Parent), tree(v.NewAnnotation)
		v.ReplacedAnnotation, v.DeletedNodes = fn(v.ReplacedAnnotation), ids(v.DeletedNodes)
		return v
	case AnnotationMovedFromOtherParent:
		v.NewParent, v.OldParent, v.MovedAnnotation = fn(v.NewParent), fn(v.OldParent), fn(v.MovedAnnotation)
		return v
	case AnnotationMovedInSameParent:
		v.Parent, v.MovedAnnotation = fn(v.Parent), fn(v.MovedAnnotation)
		return v
	case AnnotationMovedAndReplacedFromOtherParent:
		v.NewParent, v.OldParent, v.MovedAnnotation = fn(v.NewParent), fn(v.OldParent), fn(v.MovedAnnotation)
		v.ReplacedAnnotation, v.DeletedNodes = fn(v.ReplacedAnnotation), ids(v.DeletedNodes)
		return v
	case AnnotationMovedAndReplacedInSameParent:
		v.Parent, v.MovedAnnotation = fn(v.Parent), fn(v.MovedAnnotation)
		v.ReplacedAnnotation, v.DeletedNodes = fn(v.ReplacedAnnotation), ids(v.DeletedNodes)
		return v

	case ReferenceAdded:
		v.Parent, v.NewTarget = fn(v.Parent), tgt(v.NewTarget)
		return v
	case ReferenceDeleted:
		v.Parent, v.DeletedTarget = fn(v.Parent), tgt(v.DeletedTarget)
		return v
	case ReferenceChanged:
		v.Parent, v.NewTarget, v.OldTarget = fn(v.Parent), tgt(v.NewTarget), tgt(v.OldTarget)
		return v
	case ReferenceTargetAdded:
		v.Parent, v.NewTarget, v.OldTarget = fn(v.Parent), tgt(v.NewTarget), tgt(v.OldTarget)
		return v
	case ReferenceTargetDeleted:
		v.Parent, v.NewTarget, v.OldTarget = fn(v.Parent), tgt(v.NewTarget), tgt(v.OldTarget)
		return v
	case ReferenceTargetChanged:
		v.Parent, v.NewTarget, v.OldTarget = fn(v.Parent), tgt(v.NewTarget), tgt(v.OldTarget)
		return v
	case ReferenceResolveInfoAdded:
		v.Parent, v.NewTarget, v.OldTarget = fn(v.Parent), tgt(v.NewTarget), tgt(v.OldTarget)
		return v
	case ReferenceResolveInfoDeleted:
		v.Parent, v.NewTarget, v.OldTarget = fn(v.Parent), tgt(v.NewTarget), tgt(v.OldTarget)
		return v
	case ReferenceResolveInfoChanged:
		v.Parent, v.NewTarget, v.OldTarget = fn(v.Parent), tgt(v.NewTarget), tgt(v.OldTarget)
		return v

	case PartitionAdded:
		v.NewPartition = tree(v.NewPartition)
		return v
	case PartitionDeleted:
		v.DeletedPartition, v.DeletedNodes = fn(v.DeletedPartition), ids(v.DeletedNodes)
		return v

	case Composite:
		parts := make([]Notification, len(v.Parts))
		for i, p := range v.Parts {
			parts[i] = MapNodes(p, fn)
		}
		v.Parts = parts
		return v
	}
	panic(fmt.Sprintf("notification: unhandled variant %T", n))
}

// Nodes lists every node id n mentions, in field order, without duplicates
func Nodes(n Notification) []string {
	var out []string
	seen := make(map[string]bool)
	MapNodes(n, func(id string) string {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
		return id
	})
	return out
}

// Retag returns a copy of n carrying id
func Retag(n Notification, id ID) Notification {
	m := Meta{ID: id}
	switch v := n.(type) {
	case PropertyAdded:
		v.Meta = m
		return v
	case PropertyDeleted:
		v.Meta = m
		return v
	case PropertyChanged:
		v.Meta = m
		return v
	case ChildAdded:
		v.Meta = m
		return v
	case ChildDeleted:
		v.Meta = m
		return v
	case ChildReplaced:
		v.Meta = m
		return v
	case ChildMovedFromOtherContainment:
		v.Meta = m
		return v
	case ChildMovedFromOtherContainmentInSameParent:
		v.Meta = m
		return v
	case ChildMovedInSameContainment:
		v.Meta = m
		return v
	case ChildMovedAndReplacedFromOtherContainment:
		v.Meta = m
		return v
	case ChildMovedAndReplacedFromOtherContainmentInSameParent:
		v.Meta = m
		return v
	case ChildMovedAndReplacedInSameContainment:
		v.Meta = m
		return v
	case AnnotationAdded:
		v.Meta = m
		return v
	case AnnotationDeleted:
		v.Meta = m
		return v
	case AnnotationReplaced:
		v.Meta = m
		return v
	case AnnotationMovedFromOtherParent:
		v.Meta = m
		return v
	case AnnotationMovedInSameParent:
		v.Meta = m
		return v
	case AnnotationMovedAndReplacedFromOtherParent:
		v.Meta = m
		return v
	case AnnotationMovedAndReplacedInSameParent:
		v.Meta = m
		return v
	case ReferenceAdded:
		v.Meta = m
		return v
	case ReferenceDeleted:
		v.Meta = m
		return v
	case ReferenceChanged:
		v.Meta = m
		return v
	case ReferenceTargetAdded:
		v.Meta = m
		return v
	case ReferenceTargetDeleted:
		v.Meta = m
		return v
	case ReferenceTargetChanged:
		v.Meta = m
		return v
	case ReferenceResolveInfoAdded:
		v.Meta = m
		return v
	case ReferenceResolveInfoDeleted:
		v.Meta = m
		return v
	case ReferenceResolveInfoChanged:
		v.Meta = m
		return v
	case PartitionAdded:
		v.Meta = m
		return v
	case PartitionDeleted:
		v.Meta = m
		return v
	case Composite:
		v.Meta = m
		return v
	}
	panic(fmt.Sprintf("notification: unhandled variant %T", n))
}

func mapSubtree(s *domain.Subtree, fn func(string) string) *domain.Subtree {
	if s == nil {
		return nil
	}
	out := &domain.Subtree{
		ID:         fn(s.ID),
		Classifier: s.Classifier,
	}
	if s.Properties != nil {
		out.Properties = make(map[string]any, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = v
		}
	}
	if s.Containments != nil {
		out.Containments = make(map[string][]*domain.Subtree, len(s.Containments))
		for _, k := range sortedKeys(s.Containments) {
			children := s.Containments[k]
			mapped := make([]*domain.Subtree, len(children))
			for i, c := range children {
				mapped[i] = mapSubtree(c, fn)
			}
			out.Containments[k] = mapped
		}
	}
	if s.References != nil {
		out.References = make(map[string][]Target, len(s.References))
		for _, k := range sortedKeys(s.References) {
			targets := s.References[k]
			mapped := make([]Target, len(targets))
			for i, t := range targets {
				if t.TargetID != "" {
					t.TargetID = fn(t.TargetID)
				}
				mapped[i] = t
			}
			out.References[k] = mapped
		}
	}
	for _, a := range s.Annotations {
		out.Annotations = append(out.Annotations, mapSubtree(a, fn))
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
