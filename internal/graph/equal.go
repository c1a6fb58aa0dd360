package graph

import (
	"fmt"
	"slices"

	"modelsync/internal/domain"
)

// Equal compares two forests structurally by node identity: the same
// partitions in the same order, and for every node the same classifier,
// property values, child ids, reference entries and annotations. The first
// difference found is returned as an error; nil means equal.
func Equal(a, b *Forest) error {
	pa, pb := a.handleIDs(a.partitions), b.handleIDs(b.partitions)
	if !slices.Equal(pa, pb) {
		return fmt.Errorf("partitions differ: %v vs %v", pa, pb)
	}
	for i := range a.partitions {
		if err := equalSubtree(a.snapshot(a.partitions[i]), b.snapshot(b.partitions[i])); err != nil {
			return err
		}
	}
	return nil
}

func equalSubtree(x, y *domain.Subtree) error {
	if x.ID != y.ID {
		return fmt.Errorf("node %s vs %s", x.ID, y.ID)
	}
	if x.Classifier != y.Classifier {
		return fmt.Errorf("node %s: classifier %s vs %s", x.ID, x.Classifier, y.Classifier)
	}
	for _, k := range unionKeys(x.Properties, y.Properties) {
		if !domain.ValuesEqual(x.Properties[k], y.Properties[k]) {
			return fmt.Errorf("node %s.%s: %s vs %s", x.ID, k, domain.FormatValue(x.Properties[k]), domain.FormatValue(y.Properties[k]))
		}
	}
	for _, k := range unionKeys(x.References, y.References) {
		if !slices.Equal(x.References[k], y.References[k]) {
			return fmt.Errorf("node %s.%s: references %v vs %v", x.ID, k, x.References[k], y.References[k])
		}
	}
	for _, k := range unionKeys(x.Containments, y.Containments) {
		if err := equalList(x.ID, k, x.Containments[k], y.Containments[k]); err != nil {
			return err
		}
	}
	return equalList(x.ID, "annotations", x.Annotations, y.Annotations)
}

func equalList(id, key string, xs, ys []*domain.Subtree) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("node %s.%s: %d vs %d children", id, key, len(xs), len(ys))
	}
	for i := range xs {
		if err := equalSubtree(xs[i], ys[i]); err != nil {
			return err
		}
	}
	return nil
}

func unionKeys[V any](a, b map[string]V) []string {
	var out []string
	for k := range a {
		out = append(out, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}
