// Package listdiff computes the edit script between two ordered lists of
// unique ids.
//
// The script keeps a longest common subsequence untouched, moves every other
// element both lists share, adds what only the new list has and deletes what
// only the old list has. Ops are meant to be applied in order; every index is
// valid for the list as it stands when that op is applied.
package listdiff

import "fmt"

// OpKind tags an Op
type OpKind string

const (
	OpAdded   OpKind = "added"
	OpMoved   OpKind = "moved"
	OpDeleted OpKind = "deleted"
)

// Op is one step of an edit script.
//
// Added inserts Elem at NewIndex. Deleted removes Elem from OldIndex.
// Moved removes Elem from OldIndex and then inserts it at NewIndex.
type Op struct {
	Kind     OpKind
	Elem     string
	OldIndex int
	NewIndex int
}

func (o Op) String() string {
	switch o.Kind {
	case OpAdded:
		return fmt.Sprintf("+%s@%d", o.Elem, o.NewIndex)
	case OpDeleted:
		return fmt.Sprintf("-%s@%d", o.Elem, o.OldIndex)
	default:
		return fmt.Sprintf("~%s@%d->%d", o.Elem, o.OldIndex, o.NewIndex)
	}
}

// DuplicateError reports an id listed twice in one input
type DuplicateError struct {
	Elem string
	List string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate id %s in %s list", e.Elem, e.List)
}

// Diff returns the ops turning old into new. Both inputs must hold unique ids.
func Diff(old, new []string) ([]Op, error) {
	if dup, ok := firstDuplicate(old); ok {
		return nil, &DuplicateError{Elem: dup, List: "old"}
	}
	if dup, ok := firstDuplicate(new); ok {
		return nil, &DuplicateError{Elem: dup, List: "new"}
	}

	inNew := make(map[string]bool, len(new))
	for _, e := range new {
		inNew[e] = true
	}
	inOld := make(map[string]bool, len(old))
	for _, e := range old {
		inOld[e] = true
	}
	kept := lcs(old, new)

	var ops []Op
	work := append([]string(nil), old...)

	// Deletions, highest index first, so OldIndex is also the original index.
	for i := len(old) - 1; i >= 0; i-- {
		if !inNew[old[i]] {
			ops = append(ops, Op{Kind: OpDeleted, Elem: old[i], OldIndex: i})
			work = removeAt(work, i)
		}
	}

	// Left to right over new: place every element that is not part of the kept
	// run directly after its predecessor in new.
	for j, e := range new {
		if kept[e] {
			continue
		}
		at := 0
		if j > 0 {
			at = indexOf(work, new[j-1]) + 1
		}
		if !inOld[e] {
			ops = append(ops, Op{Kind: OpAdded, Elem: e, NewIndex: at})
			work = insertAt(work, at, e)
			continue
		}
		from := indexOf(work, e)
		work = removeAt(work, from)
		if from < at {
			at--
		}
		ops = append(ops, Op{Kind: OpMoved, Elem: e, OldIndex: from, NewIndex: at})
		work = insertAt(work, at, e)
	}
	return ops, nil
}

// Apply runs ops against a copy of list
func Apply(list []string, ops []Op) ([]string, error) {
	work := append([]string(nil), list...)
	for _, op := range ops {
		switch op.Kind {
		case OpAdded:
			if op.NewIndex < 0 || op.NewIndex > len(work) {
				return nil, fmt.Errorf("%s: index out of range", op)
			}
			work = insertAt(work, op.NewIndex, op.Elem)
		case OpDeleted:
			if op.OldIndex < 0 || op.OldIndex >= len(work) || work[op.OldIndex] != op.Elem {
				return nil, fmt.Errorf("%s: element not at index", op)
			}
			work = removeAt(work, op.OldIndex)
		case OpMoved:
			if op.OldIndex < 0 || op.OldIndex >= len(work) || work[op.OldIndex] != op.Elem {
				return nil, fmt.Errorf("%s: element not at index", op)
			}
			work = removeAt(work, op.OldIndex)
			if op.NewIndex < 0 || op.NewIndex > len(work) {
				return nil, fmt.Errorf("%s: index out of range", op)
			}
			work = insertAt(work, op.NewIndex, op.Elem)
		default:
			return nil, fmt.Errorf("unknown op kind %q", op.Kind)
		}
	}
	return work, nil
}

// Count tallies the ops of a script by kind
func Count(ops []Op) (added, moved, deleted int) {
	for _, op := range ops {
		switch op.Kind {
		case OpAdded:
			added++
		case OpMoved:
			moved++
		case OpDeleted:
			deleted++
		}
	}
	return
}

// lcs returns the members of one longest common subsequence. When two
// choices keep the same length the earlier old element is dropped, so an
// element moved to a later position is the one reported as moved.
func lcs(old, new []string) map[string]bool {
	n, m := len(old), len(new)
	// table[i][j] = LCS length of old[i:] and new[j:]
	table := make([][]int, n+1)
	for i := range table {
		table[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if old[i] == new[j] {
				table[i][j] = table[i+1][j+1] + 1
			} else {
				table[i][j] = max(table[i+1][j], table[i][j+1])
			}
		}
	}
	kept := make(map[string]bool, table[0][0])
	for i, j := 0, 0; i < n && j < m; {
		switch {
		case old[i] == new[j]:
			kept[old[i]] = true
			i++
			j++
		case table[i+1][j] >= table[i][j+1]:
			i++
		default:
			j++
		}
	}
	return kept
}

// LCSLength is the length of the longest common subsequence of a and b
func LCSLength(a, b []string) int {
	return len(lcs(a, b))
}

func firstDuplicate(list []string) (string, bool) {
	seen := make(map[string]bool, len(list))
	for _, e := range list {
		if seen[e] {
			return e, true
		}
		seen[e] = true
	}
	return "", false
}

func indexOf(list []string, e string) int {
	for i, x := range list {
		if x == e {
			return i
		}
	}
	return -1
}

func insertAt(list []string, i int, e string) []string {
	list = append(list, "")
	copy(list[i+1:], list[i:])
	list[i] = e
	return list
}

func removeAt(list []string, i int) []string {
	return append(list[:i], list[i+1:]...)
}
