package service

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"modelsync/internal/bus"
	"modelsync/internal/codec"
	"modelsync/internal/graph"
	"modelsync/internal/notification"
	"modelsync/internal/replicate"
	"modelsync/internal/repository"
)

// JournalSink is a terminal receiver appending what it receives to a
// journal stream
type JournalSink struct {
	ctx      context.Context
	journal  repository.Journal
	stream   string
	appended int
}

// NewJournalSink creates a sink writing to stream. ctx bounds every append.
func NewJournalSink(ctx context.Context, j repository.Journal, stream string) *JournalSink {
	return &JournalSink{ctx: ctx, journal: j, stream: stream}
}

// Receive journals n. A Composite is stored as one entry.
func (s *JournalSink) Receive(_ bus.Sender, n notification.Notification) error {
	body, err := codec.MarshalNotification(n)
	if err != nil {
		return fmt.Errorf("journal %s: %w", n.NotificationID(), err)
	}
	e := &repository.Entry{
		Stream:  s.stream,
		ID:      n.NotificationID(),
		Kind:    n.Kind(),
		Summary: notification.Describe(n),
		Nodes:   notification.Nodes(n),
		Body:    body,
	}
	if err := s.journal.Append(s.ctx, e); err != nil {
		return fmt.Errorf("journal %s: %w", n.NotificationID(), err)
	}
	s.appended++
	glog.V(3).Infof("[journal] %s #%d %s", s.stream, e.Seq, e.Summary)
	return nil
}

// Appended is the number of entries written by this sink
func (s *JournalSink) Appended() int {
	return s.appended
}

// Rebuild replays a journal stream into target and returns the number of
// entries applied. The stream must start from the state target is in.
func Rebuild(ctx context.Context, j repository.Journal, stream string, target *graph.Forest) (int, error) {
	entries, err := j.List(ctx, repository.Query{Stream: stream})
	if err != nil {
		return 0, err
	}
	r := replicate.New(target, nil, target.Label())
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		n, err := codec.UnmarshalNotification(e.Body)
		if err != nil {
			return i, fmt.Errorf("entry %d: %w", e.Seq, err)
		}
		if err := r.Receive(nil, n); err != nil {
			return i, fmt.Errorf("replay entry %d (%s): %w", e.Seq, e.ID, err)
		}
	}
	return len(entries), nil
}
