package bus

import (
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"

	"modelsync/internal/domain"
	"modelsync/internal/notification"
)

func prop(src *notification.IDSource, node string) notification.Notification {
	return notification.PropertyAdded{Meta: notification.Meta{ID: src.Next()}, Node: node, Property: "name", NewValue: node}
}

type orderProbe struct {
	name string
	log  *[]string
}

func (p *orderProbe) Receive(_ Sender, n notification.Notification) error {
	*p.log = append(*p.log, p.name+":"+n.(notification.PropertyAdded).Node)
	return nil
}

type failing struct{ err error }

func (f *failing) Receive(Sender, notification.Notification) error { return f.err }

func TestBroadcasterDeliveryOrder(t *testing.T) {
	src := notification.NewIDSource("t")
	var log []string
	pipe := NewPipe()
	first := &orderProbe{name: "first", log: &log}
	second := &orderProbe{name: "second", log: &log}

	assert.Equal(t, pipe.ConnectTo(first), nil)
	assert.Equal(t, pipe.ConnectTo(second), nil)

	assert.Equal(t, pipe.Send(prop(src, "a")), nil)
	assert.Equal(t, pipe.Send(prop(src, "b")), nil)
	assert.Equal(t, log, []string{"first:a", "second:a", "first:b", "second:b"})

	assert.Equal(t, pipe.Disconnect(first), true)
	assert.Equal(t, pipe.Disconnect(first), false)
	assert.Equal(t, pipe.Send(prop(src, "c")), nil)
	assert.Equal(t, log[len(log)-1], "second:c")
	assert.Equal(t, len(log), 5)
}

func TestBroadcasterWiringMisuse(t *testing.T) {
	a, b, c := NewPipe(), NewPipe(), NewPipe()

	var nilCounter *Counter
	err := a.ConnectTo(nilCounter)
	assert.Equal(t, domain.IsCode(err, domain.CodeNilParticipant), true)

	err = a.ConnectTo(a)
	assert.Equal(t, domain.IsCode(err, domain.CodeBadWiring), true)

	assert.Equal(t, a.ConnectTo(b), nil)
	err = a.ConnectTo(b)
	assert.Equal(t, domain.IsCode(err, domain.CodeAlreadyWired), true)

	assert.Equal(t, b.ConnectTo(c), nil)
	err = c.ConnectTo(a)
	assert.Equal(t, domain.IsCode(err, domain.CodeWiringCycle), true)
	assert.Equal(t, domain.IsKind(err, domain.KindPipelineMisuse), true)
}

func TestBroadcasterJoinsErrors(t *testing.T) {
	src := notification.NewIDSource("t")
	boom := errors.New("boom")
	pipe := NewPipe()
	counter := NewCounter()

	assert.Equal(t, pipe.ConnectTo(&failing{err: boom}), nil)
	assert.Equal(t, pipe.ConnectTo(counter), nil)

	err := pipe.Send(prop(src, "a"))
	assert.Equal(t, errors.Is(err, boom), true)
	// delivery continues past the failing receiver
	assert.Equal(t, counter.Total(), 1)
}

func TestFilter(t *testing.T) {
	src := notification.NewIDSource("t")
	filter := NewKindFilter(notification.KindPropertyDeleted)
	counter := NewCounter()
	assert.Equal(t, filter.ConnectTo(counter), nil)

	assert.Equal(t, filter.Receive(nil, prop(src, "a")), nil)
	assert.Equal(t, filter.Receive(nil, notification.PropertyDeleted{Meta: notification.Meta{ID: src.Next()}, Node: "a"}), nil)

	assert.Equal(t, counter.Total(), 1)
	assert.Equal(t, counter.Count(notification.KindPropertyDeleted), 1)
}

func TestCompositor(t *testing.T) {
	src := notification.NewIDSource("t")

	t.Run("forwards unchanged while idle", func(t *testing.T) {
		comp := NewCompositor("c")
		rec := NewRecorder()
		assert.Equal(t, comp.ConnectTo(rec), nil)

		assert.Equal(t, comp.Receive(nil, prop(src, "a")), nil)
		assert.Equal(t, rec.Kinds(), []notification.Kind{notification.KindPropertyAdded})
	})

	t.Run("pop forward delivers one composite with every part", func(t *testing.T) {
		comp := NewCompositor("c")
		rec := NewRecorder()
		assert.Equal(t, comp.ConnectTo(rec), nil)

		id := comp.Push()
		for _, node := range []string{"a", "b", "c"} {
			assert.Equal(t, comp.Receive(nil, prop(src, node)), nil)
		}
		assert.Equal(t, len(rec.Notifications()), 0)

		composite, err := comp.Pop(true)
		assert.Equal(t, err, nil)
		assert.Equal(t, composite.NotificationID(), id)
		assert.Equal(t, len(rec.Notifications()), 1)

		got := rec.Last().(notification.Composite)
		assert.Equal(t, len(got.Parts), 3)
		assert.Equal(t, got.Parts[0].(notification.PropertyAdded).Node, "a")
		assert.Equal(t, got.Parts[2].(notification.PropertyAdded).Node, "c")
		assert.Equal(t, comp.Depth(), 0)
	})

	t.Run("pop discard delivers nothing", func(t *testing.T) {
		comp := NewCompositor("c")
		counter := NewCounter()
		assert.Equal(t, comp.ConnectTo(counter), nil)

		comp.Push()
		assert.Equal(t, comp.Receive(nil, prop(src, "a")), nil)
		composite, err := comp.Pop(false)
		assert.Equal(t, err, nil)
		assert.Equal(t, len(composite.Parts), 1)
		assert.Equal(t, counter.Total(), 0)
	})

	t.Run("nested frames fold into the outer frame", func(t *testing.T) {
		comp := NewCompositor("c")
		rec := NewRecorder()
		assert.Equal(t, comp.ConnectTo(rec), nil)

		comp.Push()
		assert.Equal(t, comp.Receive(nil, prop(src, "a")), nil)
		comp.Push()
		assert.Equal(t, comp.Receive(nil, prop(src, "b")), nil)
		_, err := comp.Pop(true)
		assert.Equal(t, err, nil)
		comp.Push()
		assert.Equal(t, comp.Receive(nil, prop(src, "dropped")), nil)
		_, err = comp.Pop(false)
		assert.Equal(t, err, nil)
		assert.Equal(t, len(rec.Notifications()), 0)

		_, err = comp.Pop(true)
		assert.Equal(t, err, nil)

		outer := rec.Last().(notification.Composite)
		assert.Equal(t, len(outer.Parts), 2)
		assert.Equal(t, outer.Parts[1].Kind(), notification.KindComposite)
		assert.Equal(t, len(notification.Flatten(outer)), 2)
	})

	t.Run("pop without frame is misuse", func(t *testing.T) {
		comp := NewCompositor("c")
		_, err := comp.Pop(true)
		assert.Equal(t, domain.IsCode(err, domain.CodeNoOpenFrame), true)
	})
}

func TestEchoFilter(t *testing.T) {
	src := notification.NewIDSource("t")
	echo := NewEchoFilter()
	counter := NewCounter()
	assert.Equal(t, echo.ConnectTo(counter), nil)

	n := prop(src, "a")
	echo.Expect(n.NotificationID())
	assert.Equal(t, echo.Pending(), 1)

	assert.Equal(t, echo.Receive(nil, n), nil)
	assert.Equal(t, counter.Total(), 0)
	assert.Equal(t, echo.Pending(), 0)

	// suppression is single-shot
	assert.Equal(t, echo.Receive(nil, n), nil)
	assert.Equal(t, counter.Total(), 1)

	other := prop(src, "b")
	echo.Expect(other.NotificationID())
	echo.Forget(other.NotificationID())
	assert.Equal(t, echo.Pending(), 0)
}

func TestLogPipeForwards(t *testing.T) {
	src := notification.NewIDSource("t")
	logPipe := NewLogPipe("test", 0)
	counter := NewCounter()
	assert.Equal(t, logPipe.ConnectTo(counter), nil)

	n := prop(src, "a")
	assert.Equal(t, logPipe.Receive(nil, n), nil)
	assert.Equal(t, counter.Deliveries(n.NotificationID()), 1)
	assert.Equal(t, len(counter.Duplicates()), 0)
}
