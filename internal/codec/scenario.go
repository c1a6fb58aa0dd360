package codec

import (
	"fmt"
	"io"
)

// Scenario operations
const (
	OpNew             = "new"              // create a detached node
	OpSet             = "set"              // assign a feature through Forest.Set
	OpInsert          = "insert"           // insert a child at index
	OpDelete          = "delete"           // delete the child at index, or the annotation without feature
	OpReplace         = "replace"          // replace the child at index
	OpRemove          = "remove"           // detach a node from its parent
	OpAnnotate        = "annotate"         // insert an annotation, appending without index
	OpResolve         = "resolve"          // rewrite one reference entry
	OpAddPartition    = "add-partition"    // register a partition
	OpDeletePartition = "delete-partition" // unregister a partition
	OpBegin           = "begin"            // open a compositor frame
	OpCommit          = "commit"           // close the frame, forwarding it
	OpRollback        = "rollback"         // close the frame, discarding it
)

// Scenario is a scripted editing session: a language, the initial
// partitions and the steps applied to them
type Scenario struct {
	Language *LanguageFile `yaml:"language"`
	Initial  *Document     `yaml:"initial,omitempty"`
	Steps    []Step        `yaml:"steps"`
}

// Step is one scenario operation. Which fields matter depends on Op.
type Step struct {
	Op          string `yaml:"op"`
	Node        string `yaml:"node,omitempty"`
	Classifier  string `yaml:"classifier,omitempty"`
	Feature     string `yaml:"feature,omitempty"`
	Index       *int   `yaml:"index,omitempty"`
	Child       string `yaml:"child,omitempty"`
	Value       any    `yaml:"value,omitempty"`
	Target      string `yaml:"target,omitempty"`
	ResolveInfo string `yaml:"resolve_info,omitempty"`
}

func (s Step) String() string {
	out := s.Op
	if s.Node != "" {
		out += " " + s.Node
	}
	if s.Feature != "" {
		out += "." + s.Feature
	}
	if s.Index != nil {
		out += fmt.Sprintf("[%d]", *s.Index)
	}
	return out
}

// ParseScenario reads a YAML scenario and checks every step carries the
// fields its operation needs
func ParseScenario(r io.Reader) (*Scenario, error) {
	var sc Scenario
	if err := decodeYAML(r, &sc); err != nil {
		return nil, err
	}
	if sc.Language == nil {
		return nil, fmt.Errorf("scenario: language required")
	}
	for i, st := range sc.Steps {
		if err := st.check(); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, st.Op, err)
		}
	}
	return &sc, nil
}

func (s Step) check() error {
	need := func(field, v string) error {
		if v == "" {
			return fmt.Errorf("%s required", field)
		}
		return nil
	}
	needIndex := func() error {
		if s.Index == nil {
			return fmt.Errorf("index required")
		}
		return nil
	}
	var errs []error
	switch s.Op {
	case OpNew:
		errs = append(errs, need("classifier", s.Classifier))
	case OpSet:
		errs = append(errs, need("node", s.Node), need("feature", s.Feature))
	case OpInsert, OpReplace:
		errs = append(errs, need("node", s.Node), need("feature", s.Feature), need("child", s.Child), needIndex())
	case OpDelete:
		errs = append(errs, need("node", s.Node), needIndex())
	case OpRemove, OpAddPartition, OpDeletePartition:
		errs = append(errs, need("node", s.Node))
	case OpAnnotate:
		errs = append(errs, need("node", s.Node), need("child", s.Child))
	case OpResolve:
		errs = append(errs, need("node", s.Node), need("feature", s.Feature), needIndex())
	case OpBegin, OpCommit, OpRollback:
	default:
		return fmt.Errorf("unknown operation")
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
