package bus

import (
	"github.com/golang/glog"

	"modelsync/internal/domain"
	"modelsync/internal/notification"
)

type frame struct {
	id    notification.ID
	parts []notification.Notification
}

// Compositor is a pipe that turns runs of notifications into Composite
// transactions. While no frame is open it forwards unchanged. Frames nest:
// closing an inner frame with forward=true appends its Composite to the
// enclosing frame, closing the outermost one sends it downstream.
//
// Discarding a frame only drops notifications; the mutations that produced
// them stay applied.
type Compositor struct {
	Broadcaster
	ids    *notification.IDSource
	frames []*frame
}

// NewCompositor creates a compositor whose composites carry ids from label
func NewCompositor(label string) *Compositor {
	c := &Compositor{ids: notification.NewIDSource(label)}
	c.Bind(c)
	return c
}

// Push opens a frame with a fresh id
func (c *Compositor) Push() notification.ID {
	id := c.ids.Next()
	c.PushID(id)
	return id
}

// PushID opens a frame whose composite will carry id
func (c *Compositor) PushID(id notification.ID) {
	c.frames = append(c.frames, &frame{id: id})
	glog.V(2).Infof("[compositor] push %s depth=%d", id, len(c.frames))
}

// Depth is the number of open frames
func (c *Compositor) Depth() int {
	return len(c.frames)
}

// Pop closes the innermost frame. With forward the composite goes to the
// enclosing frame or downstream; without it the frame is discarded. Pop
// without an open frame is a PipelineMisuse error.
func (c *Compositor) Pop(forward bool) (notification.Composite, error) {
	if len(c.frames) == 0 {
		return notification.Composite{}, domain.Misuse(domain.CodeNoOpenFrame, "pop without an open frame")
	}
	top := c.frames[len(c.frames)-1]
	c.frames = c.frames[:len(c.frames)-1]
	composite := notification.Composite{
		Meta:  notification.Meta{ID: top.id},
		Parts: top.parts,
	}
	glog.V(2).Infof("[compositor] pop %s parts=%d forward=%t", top.id, len(top.parts), forward)
	if !forward {
		return composite, nil
	}
	if len(c.frames) > 0 {
		outer := c.frames[len(c.frames)-1]
		outer.parts = append(outer.parts, composite)
		return composite, nil
	}
	return composite, c.Send(composite)
}

// Receive buffers n into the innermost frame, or forwards it when idle
func (c *Compositor) Receive(_ Sender, n notification.Notification) error {
	if len(c.frames) == 0 {
		return c.Send(n)
	}
	top := c.frames[len(c.frames)-1]
	top.parts = append(top.parts, n)
	return nil
}
