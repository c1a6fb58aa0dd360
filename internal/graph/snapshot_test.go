package graph_test

import (
	"strings"
	"testing"

	"modelsync/internal/domain"
	"modelsync/internal/graph"
	"modelsync/internal/graph/graphtest"
)

func TestMaterializeCopiesForest(t *testing.T) {
	src, _ := fixture(t)
	ok(t, src.SetProperty("a", "size", 3))
	ok(t, src.SetReferences("geo", "links", []domain.Target{domain.Ref("c"), {ResolveInfo: "elsewhere"}}))
	snap, err := src.Snapshot("geo")
	ok(t, err)

	dst := graph.NewForest(graphtest.Language(), "dst")
	var registered []string
	root, err := dst.Materialize(snap, func(id string, _ graph.Node) { registered = append(registered, id) })
	ok(t, err)
	same(t, root.ID(), "geo")
	same(t, len(registered), 6)
	ok(t, dst.AddPartition("geo"))

	if err := graph.Equal(src, dst); err != nil {
		t.Fatalf("copies differ: %v", err)
	}

	ok(t, dst.SetProperty("a", "size", 4))
	err = graph.Equal(src, dst)
	if err == nil || !strings.Contains(err.Error(), "a.size") {
		t.Errorf("got %v, want a difference on a.size", err)
	}
}

func TestMaterializeReusesDetachedNodes(t *testing.T) {
	f := graph.NewForest(graphtest.Language(), "f")
	graphtest.Nodes(f, "Shape", "a", "z")
	ok(t, f.AddChild("a", "parts", "z"))

	_, err := f.Materialize(&domain.Subtree{
		ID: "a", Classifier: "Shape",
		Properties:   map[string]any{"name": "A"},
		Containments: map[string][]*domain.Subtree{"parts": {{ID: "b", Classifier: "Shape"}}},
	}, nil)
	ok(t, err)

	a, _ := f.Node("a")
	same(t, a.Children("parts"), []string{"b"})
	same(t, a.Property("name"), "A")
	z, _ := f.Node("z")
	if _, hasParent := z.Parent(); hasParent {
		t.Errorf("z still contained")
	}
}

func TestMaterializeRejects(t *testing.T) {
	tests := []struct {
		name string
		snap *domain.Subtree
		code domain.Code
	}{
		{"attached node", &domain.Subtree{ID: "a", Classifier: "Shape"}, domain.CodeDuplicateID},
		{"unknown classifier", &domain.Subtree{ID: "n", Classifier: "Hexagon"}, domain.CodeUnknownClassifier},
		{"classifier change", &domain.Subtree{ID: "b", Classifier: "Circle"}, domain.CodeTypeMismatch},
		{"unknown feature", &domain.Subtree{ID: "n", Classifier: "Shape", Properties: map[string]any{"color": "red"}}, domain.CodeUnknownFeature},
		{"repeated id", &domain.Subtree{ID: "n", Classifier: "Shape", Containments: map[string][]*domain.Subtree{
			"parts": {{ID: "m", Classifier: "Shape"}, {ID: "m", Classifier: "Shape"}},
		}}, domain.CodeDuplicateID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := fixture(t)
			before := f.Len()
			_, err := f.Materialize(tt.snap, nil)
			if !domain.IsCode(err, tt.code) {
				t.Fatalf("got %v, want %s", err, tt.code)
			}
			same(t, f.Len(), before)
		})
	}
}

func TestEqualPartitions(t *testing.T) {
	a := graphtest.NewForest("a")
	b := graphtest.NewForest("b")
	ok(t, graph.Equal(a, b))

	graphtest.Nodes(b, "Geometry", "geo2")
	ok(t, b.AddPartition("geo2"))
	if err := graph.Equal(a, b); err == nil {
		t.Error("extra partition not detected")
	}
}
