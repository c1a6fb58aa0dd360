package bus

import (
	"github.com/golang/glog"

	"modelsync/internal/notification"
)

// Counter tallies what it receives. It is terminal.
type Counter struct {
	total      int
	byKind     map[notification.Kind]int
	deliveries map[notification.ID]int
}

// NewCounter creates an empty counter
func NewCounter() *Counter {
	return &Counter{
		byKind:     make(map[notification.Kind]int),
		deliveries: make(map[notification.ID]int),
	}
}

// Receive counts n
func (c *Counter) Receive(_ Sender, n notification.Notification) error {
	c.total++
	c.byKind[n.Kind()]++
	c.deliveries[n.NotificationID()]++
	return nil
}

// Total is the number of notifications received
func (c *Counter) Total() int {
	return c.total
}

// Count is the number of notifications of kind received
func (c *Counter) Count(kind notification.Kind) int {
	return c.byKind[kind]
}

// Deliveries is the number of times id was received
func (c *Counter) Deliveries(id notification.ID) int {
	return c.deliveries[id]
}

// Duplicates lists ids received more than once
func (c *Counter) Duplicates() []notification.ID {
	var out []notification.ID
	for id, n := range c.deliveries {
		if n > 1 {
			out = append(out, id)
		}
	}
	return out
}

// Recorder keeps every notification it receives, in order. It is terminal.
type Recorder struct {
	received []notification.Notification
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Receive records n
func (r *Recorder) Receive(_ Sender, n notification.Notification) error {
	r.received = append(r.received, n)
	return nil
}

// Notifications returns what was recorded so far
func (r *Recorder) Notifications() []notification.Notification {
	return append([]notification.Notification(nil), r.received...)
}

// Kinds returns the kinds recorded so far
func (r *Recorder) Kinds() []notification.Kind {
	out := make([]notification.Kind, len(r.received))
	for i, n := range r.received {
		out[i] = n.Kind()
	}
	return out
}

// Last returns the most recent notification, or nil
func (r *Recorder) Last() notification.Notification {
	if len(r.received) == 0 {
		return nil
	}
	return r.received[len(r.received)-1]
}

// Reset forgets everything recorded
func (r *Recorder) Reset() {
	r.received = nil
}

// LogPipe traces every notification through glog and forwards it
type LogPipe struct {
	Broadcaster
	tag   string
	level glog.Level
}

// NewLogPipe creates a log pipe writing at verbosity level
func NewLogPipe(tag string, level glog.Level) *LogPipe {
	p := &LogPipe{tag: tag, level: level}
	p.Bind(p)
	return p
}

// Receive logs n and forwards it
func (p *LogPipe) Receive(_ Sender, n notification.Notification) error {
	if glog.V(p.level) {
		glog.Infof("[%s] %s", p.tag, notification.Describe(n))
	}
	return p.Send(n)
}
