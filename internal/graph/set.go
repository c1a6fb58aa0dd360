package graph

import (
	"errors"
	"fmt"

	"modelsync/internal/domain"
	"modelsync/internal/listdiff"
	"modelsync/internal/schema"
)

// Set assigns the whole value of a feature and emits the notifications for
// the difference. Accepted values per feature kind:
//
//	property                 string, int, int64, bool or nil
//	single containment       child id, Node or nil
//	multiple containment     []string, []Node or nil
//	single reference         domain.Target, *domain.Target, target id, Node or nil
//	multiple reference       []domain.Target, []string or nil
func (f *Forest) Set(id, key string, value any) error {
	h, err := f.lookup(id)
	if err != nil {
		return err
	}
	n := f.n(h)
	ft, ok := n.classifier.Feature(key)
	if !ok {
		return domain.Violation(domain.CodeUnknownFeature, id, key, "classifier %s has no feature %s", n.classifier.Key, key)
	}
	bad := func() error {
		return domain.Violation(domain.CodeInvalidValue, id, key, "%T is not a value for %s %s", value, ft.Kind, key)
	}
	switch ft.Kind {
	case schema.KindProperty:
		return f.SetProperty(id, key, value)
	case schema.KindContainment:
		if ft.Multiple {
			ids, ok := asIDs(value)
			if !ok {
				return bad()
			}
			return f.SetChildren(id, key, ids)
		}
		child, ok := asID(value)
		if !ok {
			return bad()
		}
		return f.SetChild(id, key, child)
	default:
		if ft.Multiple {
			ts, ok := asTargets(value)
			if !ok {
				return bad()
			}
			return f.SetReferences(id, key, ts)
		}
		t, ok := asTarget(value)
		if !ok {
			return bad()
		}
		return f.SetReference(id, key, t)
	}
}

// SetChild assigns a single-valued containment; an empty childID clears it
func (f *Forest) SetChild(parentID, key, childID string) error {
	s, ft, err := f.containment(parentID, key)
	if err != nil {
		return err
	}
	if ft.Multiple {
		return domain.Violation(domain.CodeMultiplicity, parentID, key, "multi-valued containment, use SetChildren")
	}
	var cur handle = noHandle
	if l := f.list(s); len(l) > 0 {
		cur = l[0]
	}
	if childID == "" {
		if cur == noHandle {
			return nil
		}
		if f.required(ft) {
			return domain.Violation(domain.CodeRequired, parentID, key, "required containment cannot be cleared")
		}
		return f.remove(s, 0)
	}
	c, err := f.lookup(childID)
	if err != nil {
		return err
	}
	if c == cur {
		return nil
	}
	if err := f.checkIncoming(s, ft, c); err != nil {
		return err
	}
	if cur == noHandle {
		return f.insert(s, ft, 0, c)
	}
	return f.checkedReplace(s, ft, 0, c)
}

// SetChildren assigns a multi-valued containment
func (f *Forest) SetChildren(parentID, key string, ids []string) error {
	s, ft, err := f.containment(parentID, key)
	if err != nil {
		return err
	}
	if !ft.Multiple {
		switch len(ids) {
		case 0:
			return f.SetChild(parentID, key, "")
		case 1:
			return f.SetChild(parentID, key, ids[0])
		}
		return domain.Violation(domain.CodeMultiplicity, parentID, key, "%d children for a single-valued containment", len(ids))
	}
	cur := f.handleIDs(f.list(s))
	if f.required(ft) && len(ids) == 0 && len(cur) > 0 {
		return domain.Violation(domain.CodeRequired, parentID, key, "required containment cannot be emptied")
	}
	return f.setSlot(s, ft, cur, ids)
}

// AddChild appends childID to a containment, moving it to the end when it
// is already there. On a single-valued containment it behaves like SetChild.
func (f *Forest) AddChild(parentID, key, childID string) error {
	s, ft, err := f.containment(parentID, key)
	if err != nil {
		return err
	}
	if !ft.Multiple {
		return f.SetChild(parentID, key, childID)
	}
	return f.SetChildren(parentID, key, appendMoved(f.handleIDs(f.list(s)), childID))
}

// SetAnnotations assigns the annotation instances of a node
func (f *Forest) SetAnnotations(parentID string, ids []string) error {
	s, err := f.annotations(parentID)
	if err != nil {
		return err
	}
	return f.setSlot(s, nil, f.handleIDs(f.list(s)), ids)
}

// AddAnnotation appends annID to the annotations of a node
func (f *Forest) AddAnnotation(parentID, annID string) error {
	s, err := f.annotations(parentID)
	if err != nil {
		return err
	}
	return f.SetAnnotations(parentID, appendMoved(f.handleIDs(f.list(s)), annID))
}

// setSlot drives the primitives with the edit script from cur to ids
func (f *Forest) setSlot(s slot, ft *schema.Feature, cur, ids []string) error {
	pid := f.n(s.parent).id
	leaving := make(map[slot]int)
	for _, id := range ids {
		c, err := f.lookup(id)
		if err != nil {
			return err
		}
		if err := f.checkIncoming(s, ft, c); err != nil {
			return err
		}
		if o := f.originOf(c); o.had && o.slot != s {
			leaving[o.slot]++
		}
	}
	for from, n := range leaving {
		if f.emptiesRequired(from, n) {
			return domain.Violation(domain.CodeRequired, f.n(from.parent).id, from.feature, "cannot move every child away")
		}
	}
	ops, err := listdiff.Diff(cur, ids)
	if err != nil {
		var dup *listdiff.DuplicateError
		if errors.As(err, &dup) {
			return domain.Violation(domain.CodeDuplicateID, pid, s.feature, "%s listed twice", dup.Elem)
		}
		return err
	}
	// A deleted element holding an incoming node stays until that node has
	// been moved out, so the node travels as a move.
	deferred := f.holders(s, cur, ids)
	for _, op := range ops {
		if op.Kind != listdiff.OpDeleted || deferred[op.Elem] {
			continue
		}
		if err := f.remove(s, op.OldIndex); err != nil {
			return err
		}
	}
	for _, op := range ops {
		switch op.Kind {
		case listdiff.OpDeleted:
			continue
		case listdiff.OpAdded, listdiff.OpMoved:
			c := f.index[op.Elem]
			pred := ""
			if op.NewIndex > 0 {
				pred = ids[op.NewIndex-1]
			}
			err = f.insert(s, ft, f.after(s, c, pred), c)
		default:
			err = fmt.Errorf("unexpected edit %s", op)
		}
		if err != nil {
			return err
		}
	}
	for _, id := range cur {
		if !deferred[id] {
			continue
		}
		if err := f.remove(s, f.indexIn(s, f.index[id])); err != nil {
			return err
		}
	}
	return nil
}

// holders returns the elements of cur that leave s while one of their
// descendants is among the incoming ids
func (f *Forest) holders(s slot, cur, ids []string) map[string]bool {
	kept := make(map[string]bool, len(ids))
	for _, id := range ids {
		kept[id] = true
	}
	leaving := make(map[handle]string)
	for _, id := range cur {
		if !kept[id] {
			leaving[f.index[id]] = id
		}
	}
	out := make(map[string]bool)
	if len(leaving) == 0 {
		return out
	}
	for _, id := range ids {
		n := f.n(f.index[id])
		if n.parent == s.parent && n.feature == s.feature {
			continue
		}
		for h := n.parent; h != noHandle; h = f.n(h).parent {
			if holder, ok := leaving[h]; ok {
				out[holder] = true
			}
		}
	}
	return out
}

// after is the index c takes in s when placed right behind pred, counted
// without c itself; an empty pred means the front
func (f *Forest) after(s slot, c handle, pred string) int {
	if pred == "" {
		return 0
	}
	i := 0
	for _, h := range f.list(s) {
		if h == c {
			continue
		}
		i++
		if f.n(h).id == pred {
			return i
		}
	}
	return i
}

func appendMoved(ids []string, id string) []string {
	out := make([]string, 0, len(ids)+1)
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return append(out, id)
}

func asID(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", true
	case string:
		return x, true
	case Node:
		if !x.Valid() {
			return "", true
		}
		return x.ID(), true
	}
	return "", false
}

func asIDs(v any) ([]string, bool) {
	switch x := v.(type) {
	case nil:
		return nil, true
	case []string:
		return x, true
	case []Node:
		out := make([]string, len(x))
		for i, n := range x {
			out[i] = n.ID()
		}
		return out, true
	}
	return nil, false
}

func asTarget(v any) (*domain.Target, bool) {
	switch x := v.(type) {
	case nil:
		return nil, true
	case *domain.Target:
		return x, true
	case domain.Target:
		return &x, true
	case string:
		if x == "" {
			return nil, true
		}
		t := domain.Ref(x)
		return &t, true
	case Node:
		if !x.Valid() {
			return nil, true
		}
		t := domain.Ref(x.ID())
		return &t, true
	}
	return nil, false
}

func asTargets(v any) ([]domain.Target, bool) {
	switch x := v.(type) {
	case nil:
		return nil, true
	case []domain.Target:
		return x, true
	case []string:
		out := make([]domain.Target, len(x))
		for i, id := range x {
			out[i] = domain.Ref(id)
		}
		return out, true
	}
	return nil, false
}
