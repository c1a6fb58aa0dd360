package notification

import "modelsync/internal/domain"

// PartitionAdded: a root node was registered as a partition
type PartitionAdded struct {
	Meta
	NewPartition *domain.Subtree `json:"new_partition"`
}

// PartitionDeleted: a partition and its closure left the forest
type PartitionDeleted struct {
	Meta
	DeletedPartition string   `json:"deleted_partition"`
	DeletedNodes     []string `json:"deleted_nodes"`
}

func (PartitionAdded) Kind() Kind   { return KindPartitionAdded }
func (PartitionDeleted) Kind() Kind { return KindPartitionDeleted }
