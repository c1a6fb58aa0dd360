package replicate

import (
	"github.com/golang/glog"

	"modelsync/internal/bus"
	"modelsync/internal/domain"
	"modelsync/internal/graph"
	"modelsync/internal/notification"
)

// Option configures a Replicator
type Option func(*Replicator)

// WithEchoFilter registers every id the replicator makes the target emit
// with f, the filter guarding the reverse direction of a bidirectional pair
func WithEchoFilter(f *bus.EchoFilter) Option {
	return func(r *Replicator) { r.echo = f }
}

// WithCompositor makes the replicator rebuild incoming composites on c,
// which must sit directly downstream of the target forest
func WithCompositor(c *bus.Compositor) Option {
	return func(r *Replicator) { r.compositor = c }
}

// Replicator mirrors notifications onto a target forest
type Replicator struct {
	target     *graph.Forest
	nodes      *SharedNodeMap
	label      string
	echo       *bus.EchoFilter
	compositor *bus.Compositor
	applied    int
}

// New creates a replicator writing into target. A nil nodes gets a fresh map.
func New(target *graph.Forest, nodes *SharedNodeMap, label string, opts ...Option) *Replicator {
	if nodes == nil {
		nodes = NewSharedNodeMap()
	}
	r := &Replicator{target: target, nodes: nodes, label: label}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Target is the forest the replicator writes into
func (r *Replicator) Target() *graph.Forest {
	return r.target
}

// Nodes is the identity table of the replicator
func (r *Replicator) Nodes() *SharedNodeMap {
	return r.nodes
}

// Applied counts the notifications applied so far, composites excluded
func (r *Replicator) Applied() int {
	return r.applied
}

// Receive applies n to the target forest
func (r *Replicator) Receive(_ bus.Sender, n notification.Notification) error {
	err := r.replay(n)
	if err != nil && domain.IsKind(err, domain.KindReplicationDivergence) {
		glog.Warningf("[replicator %s] %s: %v", r.label, notification.Describe(n), err)
	}
	return err
}

func (r *Replicator) replay(n notification.Notification) error {
	c, isComposite := n.(notification.Composite)
	switch {
	case !isComposite:
		return r.replayOne(n)
	case r.compositor == nil:
		for _, part := range c.Parts {
			if err := r.replay(part); err != nil {
				return err
			}
		}
		return nil
	}

	top := r.compositor.Depth() == 0
	if top {
		r.expect(c.ID)
	}
	r.compositor.PushID(c.ID)
	for _, part := range c.Parts {
		if err := r.replay(part); err != nil {
			if _, popErr := r.compositor.Pop(false); popErr != nil {
				glog.Errorf("[replicator %s] unbalanced compositor: %v", r.label, popErr)
			}
			if top {
				r.forget(c.ID)
			}
			return err
		}
	}
	_, err := r.compositor.Pop(true)
	return err
}

func (r *Replicator) replayOne(n notification.Notification) error {
	id := n.NotificationID()
	standalone := r.compositor == nil || r.compositor.Depth() == 0
	if standalone {
		r.expect(id)
	}
	if err := r.target.Tagged(id, func() error { return r.apply(n) }); err != nil {
		if standalone {
			r.forget(id)
		}
		return err
	}
	r.applied++
	if glog.V(3) {
		glog.Infof("[replicator %s] applied %s", r.label, notification.Describe(n))
	}
	return nil
}

func (r *Replicator) expect(id notification.ID) {
	if r.echo != nil {
		r.echo.Expect(id)
	}
}

func (r *Replicator) forget(id notification.ID) {
	if r.echo != nil {
		r.echo.Forget(id)
	}
}
