package graph

import (
	"modelsync/internal/domain"
	"modelsync/internal/notification"
	"modelsync/internal/schema"
)

// SetProperty assigns a property value; nil unsets it
func (f *Forest) SetProperty(id, key string, value any) error {
	h, err := f.lookup(id)
	if err != nil {
		return err
	}
	ft, err := f.feature(h, key, schema.KindProperty)
	if err != nil {
		return err
	}
	v, err := domain.NormalizeValue(ft.Type, value)
	if err != nil {
		return &domain.Error{Kind: domain.KindStructuralViolation, Code: domain.CodeInvalidValue, Node: id, Feature: key, Err: err}
	}
	n := f.n(h)
	old := n.props[key]
	if domain.ValuesEqual(old, v) {
		return nil
	}
	if v == nil && f.required(ft) {
		return domain.Violation(domain.CodeRequired, id, key, "required property cannot be unset")
	}
	if v == nil {
		delete(n.props, key)
	} else {
		n.props[key] = v
	}
	if !f.attached(h) {
		return nil
	}
	return f.emit(func(m notification.Meta) notification.Notification {
		switch {
		case old == nil:
			return notification.PropertyAdded{Meta: m, Node: id, Property: key, NewValue: v}
		case v == nil:
			return notification.PropertyDeleted{Meta: m, Node: id, Property: key, OldValue: old}
		default:
			return notification.PropertyChanged{Meta: m, Node: id, Property: key, NewValue: v, OldValue: old}
		}
	})
}
