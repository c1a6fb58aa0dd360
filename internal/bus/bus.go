package bus

import (
	"errors"

	"github.com/golang/glog"

	"modelsync/internal/domain"
	"modelsync/internal/notification"
)

// Receiver consumes notifications
type Receiver interface {
	Receive(from Sender, n notification.Notification) error
}

// Sender delivers notifications to connected receivers
type Sender interface {
	ConnectTo(r Receiver) error
	Disconnect(r Receiver) bool
	Receivers() []Receiver
}

// Broadcaster is the Sender implementation shared by every producer and pipe.
// Embed it and call Bind with the embedding value so receivers see the right
// sender.
type Broadcaster struct {
	owner     Sender
	receivers []Receiver
}

// Bind sets the Sender reported to receivers
func (b *Broadcaster) Bind(owner Sender) {
	b.owner = owner
}

func (b *Broadcaster) self() Sender {
	if b.owner != nil {
		return b.owner
	}
	return b
}

// ConnectTo appends r to the delivery list
func (b *Broadcaster) ConnectTo(r Receiver) error {
	if r == nil || isNilReceiver(r) {
		return domain.Misuse(domain.CodeNilParticipant, "cannot connect a nil receiver")
	}
	self := b.self()
	if s, ok := r.(Sender); ok && s == self {
		return domain.Misuse(domain.CodeBadWiring, "sender cannot receive from itself")
	}
	for _, existing := range b.receivers {
		if existing == r {
			return domain.Misuse(domain.CodeAlreadyWired, "receiver %T already connected", r)
		}
	}
	if s, ok := r.(Sender); ok && reaches(s, self, make(map[Sender]bool)) {
		return domain.Misuse(domain.CodeWiringCycle, "connecting %T would create a delivery cycle", r)
	}
	b.receivers = append(b.receivers, r)
	glog.V(2).Infof("[bus] %T -> %T (%d receivers)", self, r, len(b.receivers))
	return nil
}

// Disconnect removes r. It reports whether r was connected.
func (b *Broadcaster) Disconnect(r Receiver) bool {
	for i, existing := range b.receivers {
		if existing == r {
			b.receivers = append(b.receivers[:i:i], b.receivers[i+1:]...)
			return true
		}
	}
	return false
}

// Receivers returns a copy of the delivery list
func (b *Broadcaster) Receivers() []Receiver {
	return append([]Receiver(nil), b.receivers...)
}

// Send delivers n to every receiver in connection order. A failing receiver
// does not stop delivery to the others; all errors are joined.
func (b *Broadcaster) Send(n notification.Notification) error {
	if len(b.receivers) == 0 {
		return nil
	}
	from := b.self()
	var errs []error
	// Receivers connected during delivery only see later notifications.
	for _, r := range b.Receivers() {
		if err := r.Receive(from, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// reaches reports whether target is downstream of s
func reaches(s Sender, target Sender, seen map[Sender]bool) bool {
	if seen[s] {
		return false
	}
	seen[s] = true
	for _, r := range s.Receivers() {
		next, ok := r.(Sender)
		if !ok {
			continue
		}
		if next == target || reaches(next, target, seen) {
			return true
		}
	}
	return false
}
