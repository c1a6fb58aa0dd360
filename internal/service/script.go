package service

import (
	"fmt"

	"github.com/golang/glog"

	"modelsync/internal/bus"
	"modelsync/internal/codec"
	"modelsync/internal/domain"
	"modelsync/internal/graph"
)

// Runner applies scenario steps to a forest. Transaction steps need a
// compositor downstream of the forest.
type Runner struct {
	forest *graph.Forest
	tx     *bus.Compositor
}

// NewRunner creates a runner; tx may be nil
func NewRunner(f *graph.Forest, tx *bus.Compositor) *Runner {
	return &Runner{forest: f, tx: tx}
}

// Run applies steps in order and stops at the first failure. It returns
// the number of steps applied.
func (r *Runner) Run(steps []codec.Step) (int, error) {
	for i, st := range steps {
		if err := r.Apply(st); err != nil {
			return i, fmt.Errorf("step %d (%s): %w", i+1, st, err)
		}
		glog.V(2).Infof("[runner] step %d %s", i+1, st)
	}
	return len(steps), nil
}

// Apply performs one step
func (r *Runner) Apply(st codec.Step) error {
	f := r.forest
	index := func() int {
		if st.Index == nil {
			return -1
		}
		return *st.Index
	}
	switch st.Op {
	case codec.OpNew:
		_, err := f.NewNode(st.Classifier, st.Node)
		return err
	case codec.OpSet:
		return f.Set(st.Node, st.Feature, stepValue(st.Value))
	case codec.OpInsert:
		return f.InsertChild(st.Node, st.Feature, index(), st.Child)
	case codec.OpDelete:
		if st.Feature == "" {
			return f.DeleteAnnotation(st.Node, index())
		}
		return f.DeleteChild(st.Node, st.Feature, index())
	case codec.OpReplace:
		return f.ReplaceChild(st.Node, st.Feature, index(), st.Child)
	case codec.OpRemove:
		return f.RemoveChild(st.Node)
	case codec.OpAnnotate:
		if st.Index == nil {
			return f.AddAnnotation(st.Node, st.Child)
		}
		return f.InsertAnnotation(st.Node, index(), st.Child)
	case codec.OpResolve:
		return f.SetReferenceEntry(st.Node, st.Feature, index(), domain.Target{TargetID: st.Target, ResolveInfo: st.ResolveInfo})
	case codec.OpAddPartition:
		return f.AddPartition(st.Node)
	case codec.OpDeletePartition:
		return f.DeletePartition(st.Node)
	case codec.OpBegin, codec.OpCommit, codec.OpRollback:
		return r.transaction(st.Op)
	}
	return fmt.Errorf("unknown operation %q", st.Op)
}

func (r *Runner) transaction(op string) error {
	if r.tx == nil {
		return domain.Misuse(domain.CodeBadWiring, "%s needs a compositor", op)
	}
	switch op {
	case codec.OpBegin:
		r.tx.Push()
		return nil
	case codec.OpCommit:
		_, err := r.tx.Pop(true)
		return err
	default:
		_, err := r.tx.Pop(false)
		return err
	}
}

// stepValue converts decoded YAML into what Forest.Set accepts: lists of
// strings become id lists, maps become reference targets
func stepValue(v any) any {
	switch val := v.(type) {
	case []any:
		ids := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return targetsOf(val)
			}
			ids = append(ids, s)
		}
		return ids
	case map[string]any:
		return targetOf(val)
	}
	return v
}

func targetsOf(items []any) []domain.Target {
	out := make([]domain.Target, 0, len(items))
	for _, item := range items {
		switch it := item.(type) {
		case string:
			out = append(out, domain.Ref(it))
		case map[string]any:
			out = append(out, targetOf(it))
		default:
			out = append(out, domain.Target{ResolveInfo: fmt.Sprint(it)})
		}
	}
	return out
}

func targetOf(m map[string]any) domain.Target {
	var t domain.Target
	if id, ok := m["target"].(string); ok {
		t.TargetID = id
	}
	if info, ok := m["resolve_info"].(string); ok {
		t.ResolveInfo = info
	}
	return t
}
