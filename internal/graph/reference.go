package graph

import (
	"modelsync/internal/domain"
	"modelsync/internal/notification"
	"modelsync/internal/schema"
)

func (f *Forest) reference(ownerID, key string) (handle, *schema.Feature, error) {
	h, err := f.lookup(ownerID)
	if err != nil {
		return noHandle, nil, err
	}
	ft, err := f.feature(h, key, schema.KindReference)
	if err != nil {
		return noHandle, nil, err
	}
	return h, ft, nil
}

// InsertReference adds an entry to a reference link at index
func (f *Forest) InsertReference(ownerID, key string, index int, t domain.Target) error {
	h, ft, err := f.reference(ownerID, key)
	if err != nil {
		return err
	}
	if err := f.checkTarget(h, ft, t); err != nil {
		return err
	}
	cur := f.n(h).refs[key]
	if !ft.Multiple && len(cur) > 0 {
		return domain.Violation(domain.CodeMultiplicity, ownerID, key, "single-valued reference is set")
	}
	if err := checkIndex(ownerID, key, index, len(cur)); err != nil {
		return err
	}
	return f.insertRef(h, key, index, t)
}

// DeleteReference removes the entry at index
func (f *Forest) DeleteReference(ownerID, key string, index int) error {
	h, ft, err := f.reference(ownerID, key)
	if err != nil {
		return err
	}
	cur := f.n(h).refs[key]
	if err := checkIndex(ownerID, key, index, len(cur)-1); err != nil {
		return err
	}
	if f.required(ft) && len(cur) == 1 {
		return domain.Violation(domain.CodeRequired, ownerID, key, "cannot remove the last entry")
	}
	return f.deleteRef(h, key, index)
}

// SetReferenceEntry overwrites the entry at index
func (f *Forest) SetReferenceEntry(ownerID, key string, index int, t domain.Target) error {
	h, ft, err := f.reference(ownerID, key)
	if err != nil {
		return err
	}
	if err := f.checkTarget(h, ft, t); err != nil {
		return err
	}
	if err := checkIndex(ownerID, key, index, len(f.n(h).refs[key])-1); err != nil {
		return err
	}
	return f.setRefEntry(h, key, index, t)
}

// SetReference assigns a single-valued reference; nil clears it
func (f *Forest) SetReference(ownerID, key string, t *domain.Target) error {
	h, ft, err := f.reference(ownerID, key)
	if err != nil {
		return err
	}
	if ft.Multiple {
		return domain.Violation(domain.CodeMultiplicity, ownerID, key, "multi-valued reference, use SetReferences")
	}
	cur := f.n(h).refs[key]
	switch {
	case t == nil && len(cur) == 0:
		return nil
	case t == nil:
		if f.required(ft) {
			return domain.Violation(domain.CodeRequired, ownerID, key, "required reference cannot be cleared")
		}
		return f.deleteRef(h, key, 0)
	}
	if err := f.checkTarget(h, ft, *t); err != nil {
		return err
	}
	if len(cur) == 0 {
		return f.insertRef(h, key, 0, *t)
	}
	return f.setRefEntry(h, key, 0, *t)
}

// SetReferences replaces the entries of a reference link. Entries equal at
// the same position after trimming the common prefix and suffix are kept,
// the rest are changed in place, appended or deleted.
func (f *Forest) SetReferences(ownerID, key string, targets []domain.Target) error {
	h, ft, err := f.reference(ownerID, key)
	if err != nil {
		return err
	}
	if !ft.Multiple {
		switch len(targets) {
		case 0:
			return f.SetReference(ownerID, key, nil)
		case 1:
			return f.SetReference(ownerID, key, &targets[0])
		}
		return domain.Violation(domain.CodeMultiplicity, ownerID, key, "%d entries for a single-valued reference", len(targets))
	}
	for _, t := range targets {
		if err := f.checkTarget(h, ft, t); err != nil {
			return err
		}
	}
	old := append([]domain.Target(nil), f.n(h).refs[key]...)
	if f.required(ft) && len(targets) == 0 && len(old) > 0 {
		return domain.Violation(domain.CodeRequired, ownerID, key, "required reference cannot be emptied")
	}

	p := 0
	for p < len(old) && p < len(targets) && old[p] == targets[p] {
		p++
	}
	s := 0
	for s < len(old)-p && s < len(targets)-p && old[len(old)-1-s] == targets[len(targets)-1-s] {
		s++
	}
	om, nm := old[p:len(old)-s], targets[p:len(targets)-s]
	common := min(len(om), len(nm))
	for i := 0; i < common; i++ {
		if err := f.setRefEntry(h, key, p+i, nm[i]); err != nil {
			return err
		}
	}
	for i := common; i < len(nm); i++ {
		if err := f.insertRef(h, key, p+i, nm[i]); err != nil {
			return err
		}
	}
	for i := len(om) - 1; i >= common; i-- {
		if err := f.deleteRef(h, key, p+i); err != nil {
			return err
		}
	}
	return nil
}

func (f *Forest) insertRef(h handle, key string, index int, t domain.Target) error {
	n := f.n(h)
	old := n.refs[key]
	l := make([]domain.Target, 0, len(old)+1)
	l = append(l, old[:index]...)
	l = append(l, t)
	l = append(l, old[index:]...)
	n.refs[key] = l
	if !f.attached(h) {
		return nil
	}
	return f.emit(func(m notification.Meta) notification.Notification {
		return notification.ReferenceAdded{Meta: m, Parent: n.id, Reference: key, Index: index, NewTarget: t}
	})
}

func (f *Forest) deleteRef(h handle, key string, index int) error {
	n := f.n(h)
	old := n.refs[key]
	gone := old[index]
	l := make([]domain.Target, 0, len(old)-1)
	l = append(l, old[:index]...)
	l = append(l, old[index+1:]...)
	if len(l) == 0 {
		delete(n.refs, key)
	} else {
		n.refs[key] = l
	}
	if !f.attached(h) {
		return nil
	}
	id := n.id
	return f.emit(func(m notification.Meta) notification.Notification {
		return notification.ReferenceDeleted{Meta: m, Parent: id, Reference: key, Index: index, DeletedTarget: gone}
	})
}

func (f *Forest) setRefEntry(h handle, key string, index int, t domain.Target) error {
	n := f.n(h)
	old := n.refs[key][index]
	if old == t {
		return nil
	}
	l := append([]domain.Target(nil), n.refs[key]...)
	l[index] = t
	n.refs[key] = l
	if !f.attached(h) {
		return nil
	}
	id := f.nextID()
	built, _ := notification.EntryChange(id, n.id, key, index, old, t)
	return f.deliver(built)
}
