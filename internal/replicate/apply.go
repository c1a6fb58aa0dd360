package replicate

import (
	"fmt"

	"modelsync/internal/domain"
	"modelsync/internal/graph"
	"modelsync/internal/notification"
)

// apply dispatches one non-composite notification to its primitive
func (r *Replicator) apply(n notification.Notification) error {
	f := r.target
	switch v := n.(type) {
	case notification.PropertyAdded:
		if err := r.expectValue(v.Node, v.Property, nil); err != nil {
			return err
		}
		return r.check(f.SetProperty(v.Node, v.Property, v.NewValue))
	case notification.PropertyDeleted:
		if err := r.expectValue(v.Node, v.Property, v.OldValue); err != nil {
			return err
		}
		return r.check(f.SetProperty(v.Node, v.Property, nil))
	case notification.PropertyChanged:
		if err := r.expectValue(v.Node, v.Property, v.OldValue); err != nil {
			return err
		}
		return r.check(f.SetProperty(v.Node, v.Property, v.NewValue))

	case notification.ChildAdded:
		if err := r.expectRoom(v.Parent, v.Containment, v.Index); err != nil {
			return err
		}
		id, err := r.materialize(v.NewChild)
		if err != nil {
			return err
		}
		return r.check(f.InsertChild(v.Parent, v.Containment, v.Index, id))
	case notification.ChildDeleted:
		if err := r.expectChild(v.Parent, v.Containment, v.Index, v.DeletedChild, domain.CodeUnknownParent); err != nil {
			return err
		}
		return r.check(f.DeleteChild(v.Parent, v.Containment, v.Index))
	case notification.ChildReplaced:
		if err := r.expectChild(v.Parent, v.Containment, v.Index, v.ReplacedChild, domain.CodeUnknownParent); err != nil {
			return err
		}
		id, err := r.materialize(v.NewChild)
		if err != nil {
			return err
		}
		return r.check(f.ReplaceChild(v.Parent, v.Containment, v.Index, id))
	case notification.ChildMovedFromOtherContainment:
		if err := r.expectMove(v.NewParent, v.OldParent, v.OldContainment, v.OldIndex, v.MovedChild); err != nil {
			return err
		}
		return r.check(f.InsertChild(v.NewParent, v.NewContainment, v.NewIndex, v.MovedChild))
	case notification.ChildMovedFromOtherContainmentInSameParent:
		if err := r.expectMove(v.Parent, v.Parent, v.OldContainment, v.OldIndex, v.MovedChild); err != nil {
			return err
		}
		return r.check(f.InsertChild(v.Parent, v.NewContainment, v.NewIndex, v.MovedChild))
	case notification.ChildMovedInSameContainment:
		if err := r.expectMove(v.Parent, v.Parent, v.Containment, v.OldIndex, v.MovedChild); err != nil {
			return err
		}
		return r.check(f.InsertChild(v.Parent, v.Containment, v.NewIndex, v.MovedChild))
	case notification.ChildMovedAndReplacedFromOtherContainment:
		if err := r.expectMove(v.NewParent, v.OldParent, v.OldContainment, v.OldIndex, v.MovedChild); err != nil {
			return err
		}
		if err := r.expectChild(v.NewParent, v.NewContainment, v.NewIndex, v.ReplacedChild, domain.CodeUnknownParent); err != nil {
			return err
		}
		return r.check(f.ReplaceChild(v.NewParent, v.NewContainment, v.NewIndex, v.MovedChild))
	case notification.ChildMovedAndReplacedFromOtherContainmentInSameParent:
		if err := r.expectMove(v.Parent, v.Parent, v.OldContainment, v.OldIndex, v.MovedChild); err != nil {
			return err
		}
		if err := r.expectChild(v.Parent, v.NewContainment, v.NewIndex, v.ReplacedChild, domain.CodeUnknownParent); err != nil {
			return err
		}
		return r.check(f.ReplaceChild(v.Parent, v.NewContainment, v.NewIndex, v.MovedChild))
	case notification.ChildMovedAndReplacedInSameContainment:
		at := replacedIndex(v.OldIndex, v.NewIndex)
		if err := r.expectMove(v.Parent, v.Parent, v.Containment, v.OldIndex, v.MovedChild); err != nil {
			return err
		}
		if err := r.expectChild(v.Parent, v.Containment, at, v.ReplacedChild, domain.CodeUnknownParent); err != nil {
			return err
		}
		return r.check(f.ReplaceChild(v.Parent, v.Containment, at, v.MovedChild))

	case notification.AnnotationAdded:
		if err := r.expectRoom(v.Parent, "", v.Index); err != nil {
			return err
		}
		id, err := r.materialize(v.NewAnnotation)
		if err != nil {
			return err
		}
		return r.check(f.InsertAnnotation(v.Parent, v.Index, id))
	case notification.AnnotationDeleted:
		if err := r.expectChild(v.Parent, "", v.Index, v.DeletedAnnotation, domain.CodeUnknownParent); err != nil {
			return err
		}
		return r.check(f.DeleteAnnotation(v.Parent, v.Index))
	case notification.AnnotationReplaced:
		if err := r.expectChild(v.Parent, "", v.Index, v.ReplacedAnnotation, domain.CodeUnknownParent); err != nil {
			return err
		}
		id, err := r.materialize(v.NewAnnotation)
		if err != nil {
			return err
		}
		return r.check(f.ReplaceAnnotation(v.Parent, v.Index, id))
	case notification.AnnotationMovedFromOtherParent:
		if err := r.expectMove(v.NewParent, v.OldParent, "", v.OldIndex, v.MovedAnnotation); err != nil {
			return err
		}
		return r.check(f.InsertAnnotation(v.NewParent, v.NewIndex, v.MovedAnnotation))
	case notification.AnnotationMovedInSameParent:
		if err := r.expectMove(v.Parent, v.Parent, "", v.OldIndex, v.MovedAnnotation); err != nil {
			return err
		}
		return r.check(f.InsertAnnotation(v.Parent, v.NewIndex, v.MovedAnnotation))
	case notification.AnnotationMovedAndReplacedFromOtherParent:
		if err := r.expectMove(v.NewParent, v.OldParent, "", v.OldIndex, v.MovedAnnotation); err != nil {
			return err
		}
		if err := r.expectChild(v.NewParent, "", v.NewIndex, v.ReplacedAnnotation, domain.CodeUnknownParent); err != nil {
			return err
		}
		return r.check(f.ReplaceAnnotation(v.NewParent, v.NewIndex, v.MovedAnnotation))
	case notification.AnnotationMovedAndReplacedInSameParent:
		at := replacedIndex(v.OldIndex, v.NewIndex)
		if err := r.expectMove(v.Parent, v.Parent, "", v.OldIndex, v.MovedAnnotation); err != nil {
			return err
		}
		if err := r.expectChild(v.Parent, "", at, v.ReplacedAnnotation, domain.CodeUnknownParent); err != nil {
			return err
		}
		return r.check(f.ReplaceAnnotation(v.Parent, at, v.MovedAnnotation))

	case notification.ReferenceAdded:
		owner, err := r.node(v.Parent, domain.CodeUnknownNode)
		if err != nil {
			return err
		}
		if v.Index > len(owner.References(v.Reference)) {
			return mismatch(v.Parent, "reference %s has no index %d", v.Reference, v.Index)
		}
		return r.check(f.InsertReference(v.Parent, v.Reference, v.Index, v.NewTarget))
	case notification.ReferenceDeleted:
		if err := r.expectEntry(v.Parent, v.Reference, v.Index, v.DeletedTarget); err != nil {
			return err
		}
		return r.check(f.DeleteReference(v.Parent, v.Reference, v.Index))
	case notification.ReferenceChanged:
		return r.changeEntry(v.Parent, v.Reference, v.Index, v.OldTarget, v.NewTarget)
	case notification.ReferenceTargetAdded:
		return r.changeEntry(v.Parent, v.Reference, v.Index, v.OldTarget, v.NewTarget)
	case notification.ReferenceTargetDeleted:
		return r.changeEntry(v.Parent, v.Reference, v.Index, v.OldTarget, v.NewTarget)
	case notification.ReferenceTargetChanged:
		return r.changeEntry(v.Parent, v.Reference, v.Index, v.OldTarget, v.NewTarget)
	case notification.ReferenceResolveInfoAdded:
		return r.changeEntry(v.Parent, v.Reference, v.Index, v.OldTarget, v.NewTarget)
	case notification.ReferenceResolveInfoDeleted:
		return r.changeEntry(v.Parent, v.Reference, v.Index, v.OldTarget, v.NewTarget)
	case notification.ReferenceResolveInfoChanged:
		return r.changeEntry(v.Parent, v.Reference, v.Index, v.OldTarget, v.NewTarget)

	case notification.PartitionAdded:
		id, err := r.materialize(v.NewPartition)
		if err != nil {
			return err
		}
		return r.check(f.AddPartition(id))
	case notification.PartitionDeleted:
		p, err := r.node(v.DeletedPartition, domain.CodeUnknownNode)
		if err != nil {
			return err
		}
		if !p.IsPartition() {
			return mismatch(v.DeletedPartition, "not a partition of the replica")
		}
		return r.check(f.DeletePartition(v.DeletedPartition))

	case notification.Composite:
		return fmt.Errorf("composite %s reached apply", v.ID)
	default:
		panic(fmt.Sprintf("replicate: unhandled notification %T", n))
	}
}

// replacedIndex turns the final index of a child that replaced a sibling
// into the index the sibling had before the move
func replacedIndex(oldIndex, newIndex int) int {
	if oldIndex <= newIndex {
		return newIndex + 1
	}
	return newIndex
}

func mismatch(node, format string, args ...any) error {
	return domain.Divergence(domain.CodeStateMismatch, node, format, args...)
}

// node resolves id through the map, then the target forest
func (r *Replicator) node(id string, code domain.Code) (graph.Node, error) {
	if n, ok := r.nodes.Lookup(id); ok {
		return n, nil
	}
	if n, ok := r.target.Node(id); ok {
		r.nodes.Register(id, n)
		return n, nil
	}
	return graph.Node{}, domain.Divergence(code, id, "node unknown to replica %s", r.label)
}

// materialize brings a snapshot into the target, registering every node
// before it is linked
func (r *Replicator) materialize(s *domain.Subtree) (string, error) {
	if s == nil {
		return "", mismatch("", "notification without subtree")
	}
	n, err := r.target.Materialize(s, r.nodes.Register)
	switch {
	case err == nil:
		return n.ID(), nil
	case domain.IsCode(err, domain.CodeUnknownClassifier):
		return "", &domain.Error{Kind: domain.KindReplicationDivergence, Code: domain.CodeUnknownClassifier, Node: s.ID, Err: err}
	default:
		return "", &domain.Error{Kind: domain.KindReplicationDivergence, Code: domain.CodeStateMismatch, Node: s.ID, Err: err}
	}
}

// check reports a primitive the replica rejected as a divergence. Errors
// raised further downstream pass through untouched.
func (r *Replicator) check(err error) error {
	if v, ok := err.(*domain.Error); ok && v.Kind == domain.KindStructuralViolation {
		return &domain.Error{Kind: domain.KindReplicationDivergence, Code: domain.CodeStateMismatch, Node: v.Node, Feature: v.Feature, Msg: "replica rejected the change", Err: v}
	}
	return err
}

func (r *Replicator) expectValue(id, key string, old any) error {
	n, err := r.node(id, domain.CodeUnknownNode)
	if err != nil {
		return err
	}
	ft, ok := n.Classifier().Feature(key)
	if !ok {
		return mismatch(id, "no property %s", key)
	}
	want, err := domain.NormalizeValue(ft.Type, old)
	if err != nil {
		return mismatch(id, "%s: %v", key, err)
	}
	if cur := n.Property(key); !domain.ValuesEqual(cur, want) {
		return mismatch(id, "%s is %s, expected %s", key, domain.FormatValue(cur), domain.FormatValue(want))
	}
	return nil
}

// slotOf lists a containment, or the annotations when key is empty
func slotOf(n graph.Node, key string) []string {
	if key == "" {
		return n.Annotations()
	}
	return n.Children(key)
}

func (r *Replicator) expectRoom(parentID, key string, index int) error {
	parent, err := r.node(parentID, domain.CodeUnknownParent)
	if err != nil {
		return err
	}
	if l := slotOf(parent, key); index < 0 || index > len(l) {
		return mismatch(parentID, "%s has %d entries, cannot insert at %d", key, len(l), index)
	}
	return nil
}

func (r *Replicator) expectChild(parentID, key string, index int, child string, code domain.Code) error {
	parent, err := r.node(parentID, code)
	if err != nil {
		return err
	}
	l := slotOf(parent, key)
	if index < 0 || index >= len(l) || l[index] != child {
		return mismatch(parentID, "expected %s at %s[%d], have %v", child, key, index, l)
	}
	return nil
}

// expectMove checks the destination parent is known and the moved node sits
// at its announced origin
func (r *Replicator) expectMove(newParent, oldParent, oldKey string, oldIndex int, moved string) error {
	if _, err := r.node(newParent, domain.CodeUnknownParent); err != nil {
		return err
	}
	if _, err := r.node(moved, domain.CodeUnknownNode); err != nil {
		return err
	}
	return r.expectChild(oldParent, oldKey, oldIndex, moved, domain.CodeUnknownMoveOrigin)
}

func (r *Replicator) expectEntry(ownerID, key string, index int, want domain.Target) error {
	owner, err := r.node(ownerID, domain.CodeUnknownNode)
	if err != nil {
		return err
	}
	refs := owner.References(key)
	if index < 0 || index >= len(refs) || refs[index] != want {
		return mismatch(ownerID, "expected %s at %s[%d], have %v", want, key, index, refs)
	}
	return nil
}

func (r *Replicator) changeEntry(ownerID, key string, index int, old, next domain.Target) error {
	if err := r.expectEntry(ownerID, key, index, old); err != nil {
		return err
	}
	return r.check(r.target.SetReferenceEntry(ownerID, key, index, next))
}
