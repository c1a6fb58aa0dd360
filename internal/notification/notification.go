// Package notification defines the closed set of change notifications.
//
// Every variant is an immutable value type implementing Notification. The set
// is closed: the unexported marker method keeps other packages from adding
// variants, and MapNodes and Retag switch over every variant exhaustively.
// Node references are ids, never pointers into a graph.
package notification

import "modelsync/internal/domain"

// Kind names a notification variant
type Kind string

const (
	KindPropertyAdded   Kind = "PropertyAdded"
	KindPropertyDeleted Kind = "PropertyDeleted"
	KindPropertyChanged Kind = "PropertyChanged"

	KindChildAdded                                            Kind = "ChildAdded"
	KindChildDeleted                                          Kind = "ChildDeleted"
	KindChildReplaced                                         Kind = "ChildReplaced"
	KindChildMovedFromOtherContainment                        Kind = "ChildMovedFromOtherContainment"
	KindChildMovedFromOtherContainmentInSameParent            Kind = "ChildMovedFromOtherContainmentInSameParent"
	KindChildMovedInSameContainment                           Kind = "ChildMovedInSameContainment"
	KindChildMovedAndReplacedFromOtherContainment             Kind = "ChildMovedAndReplacedFromOtherContainment"
	KindChildMovedAndReplacedFromOtherContainmentInSameParent Kind = "ChildMovedAndReplacedFromOtherContainmentInSameParent"
	KindChildMovedAndReplacedInSameContainment                Kind = "ChildMovedAndReplacedInSameContainment"

	KindAnnotationAdded                           Kind = "AnnotationAdded"
	KindAnnotationDeleted                         Kind = "AnnotationDeleted"
	KindAnnotationReplaced                        Kind = "AnnotationReplaced"
	KindAnnotationMovedFromOtherParent            Kind = "AnnotationMovedFromOtherParent"
	KindAnnotationMovedInSameParent               Kind = "AnnotationMovedInSameParent"
	KindAnnotationMovedAndReplacedFromOtherParent Kind = "AnnotationMovedAndReplacedFromOtherParent"
	KindAnnotationMovedAndReplacedInSameParent    Kind = "AnnotationMovedAndReplacedInSameParent"

	KindReferenceAdded              Kind = "ReferenceAdded"
	KindReferenceDeleted            Kind = "ReferenceDeleted"
	KindReferenceChanged            Kind = "ReferenceChanged"
	KindReferenceTargetAdded        Kind = "ReferenceTargetAdded"
	KindReferenceTargetDeleted      Kind = "ReferenceTargetDeleted"
	KindReferenceTargetChanged      Kind = "ReferenceTargetChanged"
	KindReferenceResolveInfoAdded   Kind = "ReferenceResolveInfoAdded"
	KindReferenceResolveInfoDeleted Kind = "ReferenceResolveInfoDeleted"
	KindReferenceResolveInfoChanged Kind = "ReferenceResolveInfoChanged"

	KindPartitionAdded   Kind = "PartitionAdded"
	KindPartitionDeleted Kind = "PartitionDeleted"

	KindComposite Kind = "Composite"
)

// Notification describes one semantic change of a forest
type Notification interface {
	NotificationID() ID
	Kind() Kind
	notification()
}

// Meta is embedded by every variant
type Meta struct {
	ID ID `json:"id"`
}

// NotificationID returns the id
func (m Meta) NotificationID() ID {
	return m.ID
}

func (Meta) notification() {}

// Target is re-exported for convenience
type Target = domain.Target
