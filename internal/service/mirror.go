package service

import (
	"fmt"

	"github.com/golang/glog"

	"modelsync/internal/bus"
	"modelsync/internal/domain"
	"modelsync/internal/graph"
	"modelsync/internal/notification"
	"modelsync/internal/replicate"
)

// MirrorOptions configure NewMirror
type MirrorOptions struct {
	// Label is the producer label of the replica forest
	Label string
	// Compose routes source notifications through a compositor so
	// transactions reach the replica as composites
	Compose bool
	// Taps are connected to the source output after the replicator
	Taps []bus.Receiver
}

// Mirror keeps a replica forest in step with a source forest
type Mirror struct {
	source     *graph.Forest
	replica    *graph.Forest
	sourceTx   *bus.Compositor
	replicaTx  *bus.Compositor
	replicator *replicate.Replicator
}

// NewMirror creates a replica of source. The replica starts with a copy of
// every partition source has registered.
func NewMirror(source *graph.Forest, opts MirrorOptions) (*Mirror, error) {
	m := &Mirror{
		source:  source,
		replica: graph.NewForest(source.Language(), opts.Label),
	}
	nodes := replicate.NewSharedNodeMap()
	if err := seed(source, m.replica, nodes); err != nil {
		return nil, err
	}

	var out bus.Sender = source
	var ropts []replicate.Option
	if opts.Compose {
		m.sourceTx = bus.NewCompositor(source.Label() + "-tx")
		m.replicaTx = bus.NewCompositor(m.replica.Label() + "-tx")
		if err := source.ConnectTo(m.sourceTx); err != nil {
			return nil, err
		}
		if err := m.replica.ConnectTo(m.replicaTx); err != nil {
			return nil, err
		}
		out = m.sourceTx
		ropts = append(ropts, replicate.WithCompositor(m.replicaTx))
	}
	m.replicator = replicate.New(m.replica, nodes, m.replica.Label(), ropts...)
	if err := out.ConnectTo(m.replicator); err != nil {
		return nil, err
	}
	for _, tap := range opts.Taps {
		if err := out.ConnectTo(tap); err != nil {
			return nil, fmt.Errorf("connect tap: %w", err)
		}
	}
	glog.V(2).Infof("[mirror] %s -> %s compose=%t taps=%d", source.Label(), m.replica.Label(), opts.Compose, len(opts.Taps))
	return m, nil
}

// seed copies the registered partitions of from into an empty forest
func seed(from, to *graph.Forest, nodes *replicate.SharedNodeMap) error {
	for _, p := range from.Partitions() {
		s, err := from.Snapshot(p.ID())
		if err != nil {
			return err
		}
		if _, err := to.Materialize(s, nodes.Register); err != nil {
			return fmt.Errorf("seed partition %s: %w", p.ID(), err)
		}
		if err := to.AddPartition(p.ID()); err != nil {
			return fmt.Errorf("seed partition %s: %w", p.ID(), err)
		}
	}
	return nil
}

// Source returns the forest edits are made on
func (m *Mirror) Source() *graph.Forest {
	return m.source
}

// Replica returns the mirrored forest
func (m *Mirror) Replica() *graph.Forest {
	return m.replica
}

// ReplicaOutput is where replayed notifications leave the replica: its
// compositor when composing, the replica forest otherwise
func (m *Mirror) ReplicaOutput() bus.Sender {
	if m.replicaTx != nil {
		return m.replicaTx
	}
	return m.replica
}

// Replicator returns the replicator feeding the replica
func (m *Mirror) Replicator() *replicate.Replicator {
	return m.replicator
}

// Transactions returns the source compositor, nil unless composing
func (m *Mirror) Transactions() *bus.Compositor {
	return m.sourceTx
}

// Begin opens a source transaction
func (m *Mirror) Begin() (notification.ID, error) {
	if m.sourceTx == nil {
		return notification.ID{}, domain.Misuse(domain.CodeBadWiring, "mirror was created without composition")
	}
	return m.sourceTx.Push(), nil
}

// Commit closes the innermost source transaction and forwards it
func (m *Mirror) Commit() error {
	if m.sourceTx == nil {
		return domain.Misuse(domain.CodeBadWiring, "mirror was created without composition")
	}
	_, err := m.sourceTx.Pop(true)
	return err
}

// Verify compares source and replica
func (m *Mirror) Verify() error {
	return graph.Equal(m.source, m.replica)
}
