package notification

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// ID identifies one notification. Ids from different producers never
// compare equal; ids from one producer are equal iff their sequence numbers
// are.
type ID struct {
	Producer string `json:"producer"`
	Seq      uint64 `json:"seq"`
}

// IsZero reports whether the id was never assigned
func (id ID) IsZero() bool {
	return id.Producer == "" && id.Seq == 0
}

func (id ID) String() string {
	return fmt.Sprintf("%s#%d", id.Producer, id.Seq)
}

// IDSource hands out ids for one producer
type IDSource struct {
	label string
	seq   uint64
}

// NewIDSource creates a source labelled label. An empty label gets a fresh
// ULID so independently created producers never collide.
func NewIDSource(label string) *IDSource {
	if label == "" {
		label = ulid.Make().String()
	}
	return &IDSource{label: label}
}

// Label returns the producer label
func (s *IDSource) Label() string {
	return s.label
}

// Next returns the next id. Sequence numbers start at 1.
func (s *IDSource) Next() ID {
	s.seq++
	return ID{Producer: s.label, Seq: s.seq}
}
