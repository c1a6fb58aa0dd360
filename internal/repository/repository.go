package repository

import (
	"context"
	"time"

	"modelsync/internal/notification"
)

// Entry is one journaled notification
type Entry struct {
	Seq        int64 // assigned by the journal, increasing
	Stream     string
	ID         notification.ID
	Kind       notification.Kind
	Summary    string
	Nodes      []string
	Body       []byte
	RecordedAt time.Time
}

// Query filters journal reads. Zero fields match everything.
type Query struct {
	Stream   string
	Kind     notification.Kind
	Node     string
	Producer string
	AfterSeq int64
	Limit    int
}

// StreamStats summarizes one stream of a journal
type StreamStats struct {
	Stream   string
	Entries  int
	FirstSeq int64
	LastSeq  int64
}

// Journal persists notifications in the order they are appended
type Journal interface {
	// Append stores e and sets e.Seq
	Append(ctx context.Context, e *Entry) error
	// List returns matching entries ordered by Seq
	List(ctx context.Context, q Query) ([]Entry, error)
	Streams(ctx context.Context) ([]StreamStats, error)

	// Close releases resources
	Close() error
}
