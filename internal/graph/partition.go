package graph

import (
	"modelsync/internal/domain"
	"modelsync/internal/notification"
)

// AddPartition registers a detached root as a partition. Registering an
// existing partition again changes nothing.
func (f *Forest) AddPartition(id string) error {
	h, err := f.lookup(id)
	if err != nil {
		return err
	}
	n := f.n(h)
	if !n.classifier.Partition {
		return domain.Violation(domain.CodeNotPartition, id, "", "classifier %s is not a partition", n.classifier.Key)
	}
	if f.isPartition(h) {
		return nil
	}
	if n.parent != noHandle {
		return domain.Violation(domain.CodeNotPartition, id, "", "node is contained by %s", f.n(n.parent).id)
	}
	f.partitions = append(f.partitions, h)
	snap := f.snapshot(h)
	return f.emit(func(m notification.Meta) notification.Notification {
		return notification.PartitionAdded{Meta: m, NewPartition: snap}
	})
}

// DeletePartition unregisters a partition. Its nodes stay in the forest,
// detached.
func (f *Forest) DeletePartition(id string) error {
	h, err := f.lookup(id)
	if err != nil {
		return err
	}
	at := -1
	for i, p := range f.partitions {
		if p == h {
			at = i
		}
	}
	if at < 0 {
		return domain.Violation(domain.CodeNotPartition, id, "", "not a registered partition")
	}
	deleted := f.closure(h)
	f.partitions = append(f.partitions[:at:at], f.partitions[at+1:]...)
	return f.emit(func(m notification.Meta) notification.Notification {
		return notification.PartitionDeleted{Meta: m, DeletedPartition: id, DeletedNodes: deleted}
	})
}
