package notification

// ReferenceAdded: a reference entry was inserted
type ReferenceAdded struct {
	Meta
	Parent    string `json:"parent"`
	Reference string `json:"reference"`
	Index     int    `json:"index"`
	NewTarget Target `json:"new_target"`
}

// ReferenceDeleted: a reference entry was removed
type ReferenceDeleted struct {
	Meta
	Parent        string `json:"parent"`
	Reference     string `json:"reference"`
	Index         int    `json:"index"`
	DeletedTarget Target `json:"deleted_target"`
}

// ReferenceChanged: both the target id and the resolve info of an entry changed
type ReferenceChanged struct {
	Meta
	Parent    string `json:"parent"`
	Reference string `json:"reference"`
	Index     int    `json:"index"`
	NewTarget Target `json:"new_target"`
	OldTarget Target `json:"old_target"`
}

// ReferenceTargetAdded: an entry that only had resolve info gained a target id
type ReferenceTargetAdded struct {
	Meta
	Parent    string `json:"parent"`
	Reference string `json:"reference"`
	Index     int    `json:"index"`
	NewTarget Target `json:"new_target"`
	OldTarget Target `json:"old_target"`
}

// ReferenceTargetDeleted: an entry lost its target id but kept its resolve info
type ReferenceTargetDeleted struct {
	Meta
	Parent    string `json:"parent"`
	Reference string `json:"reference"`
	Index     int    `json:"index"`
	NewTarget Target `json:"new_target"`
	OldTarget Target `json:"old_target"`
}

// ReferenceTargetChanged: an entry points at another node with the same resolve info
type ReferenceTargetChanged struct {
	Meta
	Parent    string `json:"parent"`
	Reference string `json:"reference"`
	Index     int    `json:"index"`
	NewTarget Target `json:"new_target"`
	OldTarget Target `json:"old_target"`
}

// ReferenceResolveInfoAdded: an entry gained resolve info
type ReferenceResolveInfoAdded struct {
	Meta
	Parent    string `json:"parent"`
	Reference string `json:"reference"`
	Index     int    `json:"index"`
	NewTarget Target `json:"new_target"`
	OldTarget Target `json:"old_target"`
}

// ReferenceResolveInfoDeleted: an entry lost its resolve info
type ReferenceResolveInfoDeleted struct {
	Meta
	Parent    string `json:"parent"`
	Reference string `json:"reference"`
	Index     int    `json:"index"`
	NewTarget Target `json:"new_target"`
	OldTarget Target `json:"old_target"`
}

// ReferenceResolveInfoChanged: an entry's resolve info changed, target id kept
type ReferenceResolveInfoChanged struct {
	Meta
	Parent    string `json:"parent"`
	Reference string `json:"reference"`
	Index     int    `json:"index"`
	NewTarget Target `json:"new_target"`
	OldTarget Target `json:"old_target"`
}

func (ReferenceAdded) Kind() Kind              { return KindReferenceAdded }
func (ReferenceDeleted) Kind() Kind            { return KindReferenceDeleted }
func (ReferenceChanged) Kind() Kind            { return KindReferenceChanged }
func (ReferenceTargetAdded) Kind() Kind        { return KindReferenceTargetAdded }
func (ReferenceTargetDeleted) Kind() Kind      { return KindReferenceTargetDeleted }
func (ReferenceTargetChanged) Kind() Kind      { return KindReferenceTargetChanged }
func (ReferenceResolveInfoAdded) Kind() Kind   { return KindReferenceResolveInfoAdded }
func (ReferenceResolveInfoDeleted) Kind() Kind { return KindReferenceResolveInfoDeleted }
func (ReferenceResolveInfoChanged) Kind() Kind { return KindReferenceResolveInfoChanged }

// EntryChange builds the notification for a changed reference entry at
// index, picking the variant from which half of the entry changed. ok is
// false when old and new are equal.
func EntryChange(id ID, parent, reference string, index int, old, new Target) (n Notification, ok bool) {
	if old == new {
		return nil, false
	}
	m := Meta{ID: id}
	switch {
	case old.TargetID == new.TargetID:
		switch {
		case old.ResolveInfo == "":
			return ReferenceResolveInfoAdded{m, parent, reference, index, new, old}, true
		case new.ResolveInfo == "":
			return ReferenceResolveInfoDeleted{m, parent, reference, index, new, old}, true
		default:
			return ReferenceResolveInfoChanged{m, parent, reference, index, new, old}, true
		}
	case old.ResolveInfo == new.ResolveInfo:
		switch {
		case old.TargetID == "":
			return ReferenceTargetAdded{m, parent, reference, index, new, old}, true
		case new.TargetID == "":
			return ReferenceTargetDeleted{m, parent, reference, index, new, old}, true
		default:
			return ReferenceTargetChanged{m, parent, reference, index, new, old}, true
		}
	default:
		return ReferenceChanged{m, parent, reference, index, new, old}, true
	}
}
