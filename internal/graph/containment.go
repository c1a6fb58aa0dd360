package graph

import (
	"modelsync/internal/domain"
	"modelsync/internal/notification"
	"modelsync/internal/schema"
)

// origin is where an incoming node sat before a move
type origin struct {
	slot     slot
	index    int
	had      bool
	attached bool
}

func (f *Forest) originOf(h handle) origin {
	s, i, ok := f.location(h)
	return origin{slot: s, index: i, had: ok, attached: ok && f.attached(h)}
}

// InsertChild places childID into a containment at index. A child already in
// that containment is moved; index then counts positions after its removal.
func (f *Forest) InsertChild(parentID, key string, index int, childID string) error {
	s, ft, err := f.containment(parentID, key)
	if err != nil {
		return err
	}
	c, err := f.lookup(childID)
	if err != nil {
		return err
	}
	if err := f.checkIncoming(s, ft, c); err != nil {
		return err
	}
	return f.insert(s, ft, index, c)
}

// DeleteChild removes the child at index; it stays in the forest detached
func (f *Forest) DeleteChild(parentID, key string, index int) error {
	s, _, err := f.containment(parentID, key)
	if err != nil {
		return err
	}
	cur := f.list(s)
	if err := checkIndex(parentID, key, index, len(cur)-1); err != nil {
		return err
	}
	if f.emptiesRequired(s, 1) {
		return domain.Violation(domain.CodeRequired, parentID, key, "cannot remove the last child")
	}
	return f.remove(s, index)
}

// ReplaceChild puts childID in place of the child at index
func (f *Forest) ReplaceChild(parentID, key string, index int, childID string) error {
	s, ft, err := f.containment(parentID, key)
	if err != nil {
		return err
	}
	c, err := f.lookup(childID)
	if err != nil {
		return err
	}
	return f.checkedReplace(s, ft, index, c)
}

// InsertAnnotation places annID on parentID at index
func (f *Forest) InsertAnnotation(parentID string, index int, annID string) error {
	s, err := f.annotations(parentID)
	if err != nil {
		return err
	}
	c, err := f.lookup(annID)
	if err != nil {
		return err
	}
	if err := f.checkIncoming(s, nil, c); err != nil {
		return err
	}
	return f.insert(s, nil, index, c)
}

// DeleteAnnotation removes the annotation at index
func (f *Forest) DeleteAnnotation(parentID string, index int) error {
	s, err := f.annotations(parentID)
	if err != nil {
		return err
	}
	if err := checkIndex(parentID, "", index, len(f.list(s))-1); err != nil {
		return err
	}
	return f.remove(s, index)
}

// ReplaceAnnotation puts annID in place of the annotation at index
func (f *Forest) ReplaceAnnotation(parentID string, index int, annID string) error {
	s, err := f.annotations(parentID)
	if err != nil {
		return err
	}
	c, err := f.lookup(annID)
	if err != nil {
		return err
	}
	return f.checkedReplace(s, nil, index, c)
}

// RemoveChild detaches id from wherever it is contained or annotated
func (f *Forest) RemoveChild(id string) error {
	h, err := f.lookup(id)
	if err != nil {
		return err
	}
	s, i, ok := f.location(h)
	if !ok {
		return nil
	}
	if f.emptiesRequired(s, 1) {
		return domain.Violation(domain.CodeRequired, f.n(s.parent).id, s.feature, "cannot remove the last child")
	}
	return f.remove(s, i)
}

func (f *Forest) checkedReplace(s slot, ft *schema.Feature, index int, c handle) error {
	pid := f.n(s.parent).id
	cur := f.list(s)
	if err := checkIndex(pid, s.feature, index, len(cur)-1); err != nil {
		return err
	}
	if cur[index] == c {
		return domain.Violation(domain.CodeSelfMove, pid, s.feature, "%s would replace itself", f.n(c).id)
	}
	if err := f.checkIncoming(s, ft, c); err != nil {
		return err
	}
	if o := f.originOf(c); o.had && o.slot != s && f.emptiesRequired(o.slot, 1) {
		return domain.Violation(domain.CodeRequired, f.n(o.slot.parent).id, o.slot.feature, "cannot move the last child away")
	}
	return f.replace(s, index, c)
}

// insert moves an already validated c into s at index
func (f *Forest) insert(s slot, ft *schema.Feature, index int, c handle) error {
	pid := f.n(s.parent).id
	cur := f.list(s)
	o := f.originOf(c)
	same := o.had && o.slot == s
	limit := len(cur)
	if same {
		limit--
	}
	if err := checkIndex(pid, s.feature, index, limit); err != nil {
		return err
	}
	if ft != nil && !ft.Multiple && !same && len(cur) > 0 {
		return domain.Violation(domain.CodeMultiplicity, pid, s.feature, "single-valued containment is occupied")
	}
	if same && o.index == index {
		return nil
	}
	if o.had && !same && f.emptiesRequired(o.slot, 1) {
		return domain.Violation(domain.CodeRequired, f.n(o.slot.parent).id, o.slot.feature, "cannot move the last child away")
	}
	f.detach(c)
	f.attach(c, s, index)

	switch {
	case f.attached(s.parent) && o.attached:
		return f.emitMoved(s, index, c, o)
	case f.attached(s.parent):
		return f.emitAdded(s, index, c)
	case o.attached:
		return f.emitRemoved(o.slot, o.index, c, f.closure(c))
	}
	return nil
}

// remove detaches the node at index of s
func (f *Forest) remove(s slot, index int) error {
	c := f.list(s)[index]
	if !f.attached(s.parent) {
		f.detach(c)
		return nil
	}
	deleted := f.closure(c)
	f.detach(c)
	return f.emitRemoved(s, index, c, deleted)
}

// replace puts an already validated c in place of the node at index of s
func (f *Forest) replace(s slot, index int, c handle) error {
	replaced := f.list(s)[index]
	o := f.originOf(c)
	f.detach(c)
	at := f.indexIn(s, replaced)
	attached := f.attached(s.parent)
	var deleted []string
	if attached {
		deleted = f.closure(replaced)
	}
	f.detach(replaced)
	f.attach(c, s, at)

	switch {
	case attached && o.attached:
		return f.emitMovedAndReplaced(s, at, c, o, replaced, deleted)
	case attached:
		return f.emitReplaced(s, at, c, replaced, deleted)
	case o.attached:
		return f.emitRemoved(o.slot, o.index, c, f.closure(c))
	}
	return nil
}

func (f *Forest) emitAdded(s slot, index int, c handle) error {
	pid, snap := f.n(s.parent).id, f.snapshot(c)
	return f.emit(func(m notification.Meta) notification.Notification {
		if s.isAnnotation() {
			return notification.AnnotationAdded{Meta: m, Parent: pid, Index: index, NewAnnotation: snap}
		}
		return notification.ChildAdded{Meta: m, Parent: pid, Containment: s.feature, Index: index, NewChild: snap}
	})
}

func (f *Forest) emitRemoved(s slot, index int, c handle, deleted []string) error {
	pid, cid := f.n(s.parent).id, f.n(c).id
	return f.emit(func(m notification.Meta) notification.Notification {
		if s.isAnnotation() {
			return notification.AnnotationDeleted{Meta: m, Parent: pid, Index: index, DeletedAnnotation: cid, DeletedNodes: deleted}
		}
		return notification.ChildDeleted{Meta: m, Parent: pid, Containment: s.feature, Index: index, DeletedChild: cid, DeletedNodes: deleted}
	})
}

func (f *Forest) emitReplaced(s slot, index int, c, replaced handle, deleted []string) error {
	pid, rid, snap := f.n(s.parent).id, f.n(replaced).id, f.snapshot(c)
	return f.emit(func(m notification.Meta) notification.Notification {
		if s.isAnnotation() {
			return notification.AnnotationReplaced{Meta: m, Parent: pid, Index: index, NewAnnotation: snap, ReplacedAnnotation: rid, DeletedNodes: deleted}
		}
		return notification.ChildReplaced{Meta: m, Parent: pid, Containment: s.feature, Index: index, NewChild: snap, ReplacedChild: rid, DeletedNodes: deleted}
	})
}

func (f *Forest) emitMoved(s slot, index int, c handle, o origin) error {
	pid, oid, cid := f.n(s.parent).id, f.n(o.slot.parent).id, f.n(c).id
	return f.emit(func(m notification.Meta) notification.Notification {
		switch {
		case s.isAnnotation() && o.slot.parent == s.parent:
			return notification.AnnotationMovedInSameParent{Meta: m, Parent: pid, NewIndex: index, MovedAnnotation: cid, OldIndex: o.index}
		case s.isAnnotation():
			return notification.AnnotationMovedFromOtherParent{Meta: m, NewParent: pid, NewIndex: index, MovedAnnotation: cid, OldParent: oid, OldIndex: o.index}
		case o.slot == s:
			return notification.ChildMovedInSameContainment{Meta: m, Parent: pid, Containment: s.feature, NewIndex: index, MovedChild: cid, OldIndex: o.index}
		case o.slot.parent == s.parent:
			return notification.ChildMovedFromOtherContainmentInSameParent{Meta: m, Parent: pid, NewContainment: s.feature, NewIndex: index, MovedChild: cid, OldContainment: o.slot.feature, OldIndex: o.index}
		default:
			return notification.ChildMovedFromOtherContainment{Meta: m, NewParent: pid, NewContainment: s.feature, NewIndex: index, MovedChild: cid, OldParent: oid, OldContainment: o.slot.feature, OldIndex: o.index}
		}
	})
}

func (f *Forest) emitMovedAndReplaced(s slot, index int, c handle, o origin, replaced handle, deleted []string) error {
	pid, oid, cid, rid := f.n(s.parent).id, f.n(o.slot.parent).id, f.n(c).id, f.n(replaced).id
	return f.emit(func(m notification.Meta) notification.Notification {
		switch {
		case s.isAnnotation() && o.slot.parent == s.parent:
			return notification.AnnotationMovedAndReplacedInSameParent{Meta: m, Parent: pid, NewIndex: index, MovedAnnotation: cid, OldIndex: o.index, ReplacedAnnotation: rid, DeletedNodes: deleted}
		case s.isAnnotation():
			return notification.AnnotationMovedAndReplacedFromOtherParent{Meta: m, NewParent: pid, NewIndex: index, MovedAnnotation: cid, OldParent: oid, OldIndex: o.index, ReplacedAnnotation: rid, DeletedNodes: deleted}
		case o.slot == s:
			return notification.ChildMovedAndReplacedInSameContainment{Meta: m, Parent: pid, Containment: s.feature, NewIndex: index, MovedChild: cid, OldIndex: o.index, ReplacedChild: rid, DeletedNodes: deleted}
		case o.slot.parent == s.parent:
			return notification.ChildMovedAndReplacedFromOtherContainmentInSameParent{Meta: m, Parent: pid, NewContainment: s.feature, NewIndex: index, MovedChild: cid, OldContainment: o.slot.feature, OldIndex: o.index, ReplacedChild: rid, DeletedNodes: deleted}
		default:
			return notification.ChildMovedAndReplacedFromOtherContainment{Meta: m, NewParent: pid, NewContainment: s.feature, NewIndex: index, MovedChild: cid, OldParent: oid, OldContainment: o.slot.feature, OldIndex: o.index, ReplacedChild: rid, DeletedNodes: deleted}
		}
	})
}
