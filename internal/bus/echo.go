package bus

import (
	"github.com/golang/glog"

	"modelsync/internal/notification"
)

// EchoFilter sits on the inbound edge of a replicator and drops
// notifications that the reciprocal replicator produced itself. Each
// expected id is suppressed once and then forgotten.
type EchoFilter struct {
	Broadcaster
	pending map[notification.ID]struct{}
}

// NewEchoFilter creates an empty echo filter
func NewEchoFilter() *EchoFilter {
	f := &EchoFilter{pending: make(map[notification.ID]struct{})}
	f.Bind(f)
	return f
}

// Expect records id as self-produced
func (f *EchoFilter) Expect(id notification.ID) {
	f.pending[id] = struct{}{}
}

// Forget drops id from the bookkeeping without waiting for its echo
func (f *EchoFilter) Forget(id notification.ID) {
	delete(f.pending, id)
}

// Pending is the number of echoes still expected
func (f *EchoFilter) Pending() int {
	return len(f.pending)
}

// Receive drops an expected echo, forwards anything else
func (f *EchoFilter) Receive(_ Sender, n notification.Notification) error {
	id := n.NotificationID()
	if _, ok := f.pending[id]; ok {
		delete(f.pending, id)
		glog.V(2).Infof("[echo] suppressed %s %s", id, n.Kind())
		return nil
	}
	return f.Send(n)
}
