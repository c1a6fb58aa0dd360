package bus

import (
	"reflect"

	"modelsync/internal/notification"
)

// Pipe forwards every notification unchanged
type Pipe struct {
	Broadcaster
}

// NewPipe creates an identity pipe
func NewPipe() *Pipe {
	p := &Pipe{}
	p.Bind(p)
	return p
}

// Receive forwards n
func (p *Pipe) Receive(_ Sender, n notification.Notification) error {
	return p.Send(n)
}

// Filter forwards the notifications its predicate accepts
type Filter struct {
	Broadcaster
	accept func(notification.Notification) bool
}

// NewFilter creates a filter pipe
func NewFilter(accept func(notification.Notification) bool) *Filter {
	f := &Filter{accept: accept}
	f.Bind(f)
	return f
}

// NewKindFilter creates a filter that only forwards the given kinds
func NewKindFilter(kinds ...notification.Kind) *Filter {
	allowed := make(map[notification.Kind]bool, len(kinds))
	for _, k := range kinds {
		allowed[k] = true
	}
	return NewFilter(func(n notification.Notification) bool {
		return allowed[n.Kind()]
	})
}

// Receive forwards n if it is accepted
func (f *Filter) Receive(_ Sender, n notification.Notification) error {
	if !f.accept(n) {
		return nil
	}
	return f.Send(n)
}

func isNilReceiver(r Receiver) bool {
	v := reflect.ValueOf(r)
	switch v.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Map, reflect.Interface:
		return v.IsNil()
	}
	return false
}
