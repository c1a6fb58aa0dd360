package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the error family
type Kind string

const (
	// KindStructuralViolation rejects a mutation before anything changed.
	KindStructuralViolation Kind = "structural-violation"
	// KindUnresolvedReference describes a reference target that cannot be found.
	// Mutations never return it; it only appears in diagnostics.
	KindUnresolvedReference Kind = "unresolved-reference"
	// KindReplicationDivergence means a replica could not apply a notification
	// consistently. The two graphs must be considered desynchronized.
	KindReplicationDivergence Kind = "replication-divergence"
	// KindPipelineMisuse is a wiring or compositor programming error.
	KindPipelineMisuse Kind = "pipeline-misuse"
)

// Code narrows an error within its Kind
type Code string

const (
	CodeUnknownNode       Code = "unknown-node"
	CodeUnknownFeature    Code = "unknown-feature"
	CodeWrongFeatureKind  Code = "wrong-feature-kind"
	CodeTypeMismatch      Code = "type-mismatch"
	CodeMultiplicity      Code = "multiplicity"
	CodeRequired          Code = "required"
	CodeIndexOutOfRange   Code = "index-out-of-range"
	CodeDuplicateID       Code = "duplicate-id"
	CodeCycle             Code = "cycle"
	CodeSelfMove          Code = "self-move"
	CodeNotPartition      Code = "not-partition"
	CodeInvalidValue      Code = "invalid-value"
	CodeUnknownClassifier Code = "unknown-classifier"
	CodePartitionChild    Code = "partition-as-child"

	// Replication divergence codes
	CodeUnknownMoveOrigin Code = "unknown-move-origin"
	CodeUnknownParent     Code = "unknown-parent"
	CodeStateMismatch     Code = "state-mismatch"

	// Pipeline misuse codes
	CodeNoOpenFrame    Code = "no-open-frame"
	CodeBadWiring      Code = "bad-wiring"
	CodeAlreadyWired   Code = "already-wired"
	CodeWiringCycle    Code = "wiring-cycle"
	CodeNilParticipant Code = "nil-participant"
)

// Error is the error type returned by every package of the repository
type Error struct {
	Kind    Kind
	Code    Code
	Node    string
	Feature string
	Msg     string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Code != "" {
		b.WriteString(" [")
		b.WriteString(string(e.Code))
		b.WriteString("]")
	}
	if e.Node != "" {
		b.WriteString(" node ")
		b.WriteString(e.Node)
		if e.Feature != "" {
			b.WriteString(".")
			b.WriteString(e.Feature)
		}
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Violation builds a structural violation
func Violation(code Code, node, feature, format string, args ...any) *Error {
	return &Error{Kind: KindStructuralViolation, Code: code, Node: node, Feature: feature, Msg: fmt.Sprintf(format, args...)}
}

// Divergence builds a replication divergence
func Divergence(code Code, node, format string, args ...any) *Error {
	return &Error{Kind: KindReplicationDivergence, Code: code, Node: node, Msg: fmt.Sprintf(format, args...)}
}

// Misuse builds a pipeline misuse error
func Misuse(code Code, format string, args ...any) *Error {
	return &Error{Kind: KindPipelineMisuse, Code: code, Msg: fmt.Sprintf(format, args...)}
}

// IsKind reports whether any error in err's chain is an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	if e.Kind == kind {
		return true
	}
	return e.Err != nil && IsKind(e.Err, kind)
}

// IsCode reports whether any error in err's chain is an *Error with the given code
func IsCode(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	if e.Code == code {
		return true
	}
	return e.Err != nil && IsCode(e.Err, code)
}
