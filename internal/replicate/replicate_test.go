package replicate_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/go-playground/assert/v2"

	"modelsync/internal/bus"
	"modelsync/internal/domain"
	"modelsync/internal/graph"
	"modelsync/internal/graph/graphtest"
	"modelsync/internal/notification"
	"modelsync/internal/replicate"
	"modelsync/internal/schema"
)

func mirror(t *testing.T) (src, dst *graph.Forest, r *replicate.Replicator, counter *bus.Counter) {
	t.Helper()
	src = graphtest.NewForest("src")
	dst = graphtest.NewForest("dst")
	r = replicate.New(dst, nil, "dst")
	counter = bus.NewCounter()
	assert.Equal(t, src.ConnectTo(r), nil)
	assert.Equal(t, src.ConnectTo(counter), nil)
	return
}

func TestScriptedRoundTrip(t *testing.T) {
	src, dst, r, counter := mirror(t)
	graphtest.Nodes(src, "Shape", "a", "b", "x")
	graphtest.Nodes(src, "Circle", "c")
	graphtest.Nodes(src, "Coord", "p1", "p2")
	graphtest.Nodes(src, "Polygon", "pg")
	graphtest.Nodes(src, "Documentation", "doc")
	graphtest.Nodes(src, "BillOfMaterials", "ann")
	graphtest.Nodes(src, "MaterialGroup", "mg0", "mg1")
	graphtest.Nodes(src, "Line", "line")
	graphtest.Nodes(src, "Geometry", "geo2")

	steps := []func() error{
		func() error { return src.SetChild("c", "center", "p1") },
		func() error { return src.SetChildren("pg", "points", []string{"p2"}) },
		func() error { return src.SetChildren("geo", "shapes", []string{"a", "c", "pg"}) },
		func() error { return src.SetProperty("a", "name", "A") },
		func() error { return src.Set("a", "size", 3) },
		func() error { return src.SetProperty("a", "size", 4) },
		func() error { return src.AddChild("a", "parts", "b") },
		func() error { return src.InsertChild("c", "parts", 0, "b") },
		func() error { return src.Set("geo", "archive", []string{"a"}) },
		func() error { return src.AddChild("geo", "shapes", "b") },
		func() error { return src.ReplaceChild("geo", "shapes", 0, "x") },
		func() error { return src.ReplaceChild("geo", "shapes", 0, "b") },
		func() error { return src.SetChild("mg1", "defaultShape", "line") },
		func() error { return src.SetChildren("ann", "altGroups", []string{"mg0", "mg1"}) },
		func() error { return src.SetReferences("ann", "materials", []domain.Target{domain.Ref("c")}) },
		func() error { return src.AddAnnotation("geo", "ann") },
		func() error { return src.AddAnnotation("a", "doc") },
		func() error { return src.AddAnnotation("geo", "doc") },
		func() error { return src.SetAnnotations("geo", []string{"doc", "ann"}) },
		func() error { return src.SetChild("mg0", "defaultShape", "line") },
		func() error {
			return src.SetReferences("geo", "links", []domain.Target{domain.Ref("a"), domain.Ref("b")})
		},
		func() error { return src.Set("geo", "favorite", "b") },
		func() error {
			return src.SetReferenceEntry("geo", "favorite", 0, domain.Target{TargetID: "b", ResolveInfo: "B"})
		},
		func() error { return src.Set("geo", "links", []string{"b"}) },
		func() error { return src.AddChild("geo2", "shapes", "x") },
		func() error { return src.AddPartition("geo2") },
		func() error { return src.SetProperty("x", "size", 9) },
		func() error { return src.DeletePartition("geo2") },
		func() error { return src.DeleteAnnotation("geo", 1) },
		func() error { return src.SetProperty("a", "size", nil) },
		func() error { return src.RemoveChild("b") },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if err := graph.Equal(src, dst); err != nil {
			t.Fatalf("after step %d: %v", i, err)
		}
	}
	assert.Equal(t, r.Applied(), counter.Total())
	assert.Equal(t, len(counter.Duplicates()), 0)
}

func TestRandomRoundTrip(t *testing.T) {
	src, dst, _, _ := mirror(t)
	shapes := []string{"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7"}
	docs := []string{"d0", "d1", "d2"}
	graphtest.Nodes(src, "Shape", shapes...)
	graphtest.Nodes(src, "Documentation", docs...)
	graphtest.Nodes(src, "Geometry", "geo2")

	rng := rand.New(rand.NewSource(42))
	pick := func(from []string) string { return from[rng.Intn(len(from))] }
	subset := func(from []string) []string {
		perm := rng.Perm(len(from))[:rng.Intn(4)]
		out := make([]string, len(perm))
		for i, j := range perm {
			out[i] = from[j]
		}
		return out
	}
	slot := func() (string, string) {
		switch rng.Intn(4) {
		case 0:
			return "geo", "shapes"
		case 1:
			return "geo", "archive"
		case 2:
			return "geo2", "shapes"
		}
		return pick(shapes), "parts"
	}
	ops := []func() error{
		func() error { p, k := slot(); return src.AddChild(p, k, pick(shapes)) },
		func() error { p, k := slot(); return src.InsertChild(p, k, rng.Intn(3), pick(shapes)) },
		func() error { p, k := slot(); return src.ReplaceChild(p, k, rng.Intn(3), pick(shapes)) },
		func() error { p, k := slot(); return src.SetChildren(p, k, subset(shapes)) },
		func() error { return src.RemoveChild(pick(shapes)) },
		func() error {
			if rng.Intn(3) == 0 {
				return src.SetProperty(pick(shapes), "size", nil)
			}
			return src.SetProperty(pick(shapes), "size", rng.Intn(5))
		},
		func() error { return src.SetProperty(pick(shapes), "name", fmt.Sprintf("n%d", rng.Intn(3))) },
		func() error { return src.AddAnnotation(pick(append([]string{"geo"}, shapes...)), pick(docs)) },
		func() error { return src.SetAnnotations(pick(shapes), subset(docs)) },
		func() error {
			var targets []domain.Target
			for _, id := range subset(shapes) {
				targets = append(targets, domain.Target{TargetID: id, ResolveInfo: fmt.Sprint(rng.Intn(2))})
			}
			return src.SetReferences("geo", "links", targets)
		},
		func() error {
			if rng.Intn(4) == 0 {
				return src.SetReference("geo", "favorite", nil)
			}
			return src.Set("geo", "favorite", pick(shapes))
		},
		func() error {
			if rng.Intn(2) == 0 {
				return src.AddPartition("geo2")
			}
			return src.DeletePartition("geo2")
		},
	}

	for i := 0; i < 600; i++ {
		err := ops[rng.Intn(len(ops))]()
		switch {
		case err == nil:
		case domain.IsKind(err, domain.KindReplicationDivergence):
			t.Fatalf("step %d diverged: %v", i, err)
		case domain.IsKind(err, domain.KindStructuralViolation):
			// rejected before anything changed
		default:
			t.Fatalf("step %d: %v", i, err)
		}
		if err := graph.Equal(src, dst); err != nil {
			t.Fatalf("after step %d: %v", i, err)
		}
	}
}

func TestDivergence(t *testing.T) {
	t.Run("unknown destination parent", func(t *testing.T) {
		src := graphtest.NewForest("src")
		graphtest.Nodes(src, "Shape", "p", "q", "x")
		graphtest.Must(src.AddChild("p", "parts", "x"))
		graphtest.Must(src.SetChildren("geo", "shapes", []string{"p", "q"}))

		dst := graphtest.NewForest("dst")
		graphtest.Nodes(dst, "Shape", "p", "x")
		graphtest.Must(dst.AddChild("p", "parts", "x"))
		graphtest.Must(dst.AddChild("geo", "shapes", "p"))
		assert.Equal(t, src.ConnectTo(replicate.New(dst, nil, "dst")), nil)

		err := src.InsertChild("q", "parts", 0, "x")
		assert.Equal(t, domain.IsKind(err, domain.KindReplicationDivergence), true)
		assert.Equal(t, domain.IsCode(err, domain.CodeUnknownParent), true)

		p, _ := dst.Node("p")
		assert.Equal(t, p.Children("parts"), []string{"x"})
	})

	t.Run("unknown move origin", func(t *testing.T) {
		src := graphtest.NewForest("src")
		graphtest.Nodes(src, "Shape", "p", "q", "x")
		graphtest.Must(src.AddChild("p", "parts", "x"))
		graphtest.Must(src.SetChildren("geo", "shapes", []string{"p", "q"}))

		dst := graphtest.NewForest("dst")
		graphtest.Nodes(dst, "Shape", "q", "x")
		graphtest.Must(dst.AddChild("geo", "shapes", "q"))
		assert.Equal(t, src.ConnectTo(replicate.New(dst, nil, "dst")), nil)

		err := src.InsertChild("q", "parts", 0, "x")
		assert.Equal(t, domain.IsCode(err, domain.CodeUnknownMoveOrigin), true)
	})

	t.Run("unknown node", func(t *testing.T) {
		src := graphtest.NewForest("src")
		graphtest.Nodes(src, "Shape", "a")
		graphtest.Must(src.AddChild("geo", "shapes", "a"))
		dst := graphtest.NewForest("dst")
		assert.Equal(t, src.ConnectTo(replicate.New(dst, nil, "dst")), nil)

		err := src.SetProperty("a", "size", 1)
		assert.Equal(t, domain.IsCode(err, domain.CodeUnknownNode), true)
	})

	t.Run("unknown classifier", func(t *testing.T) {
		narrow := schema.MustLanguage("geometry", "1",
			&schema.Classifier{Key: "Geometry", Partition: true, Features: []*schema.Feature{
				{Key: "shapes", Kind: schema.KindContainment, Type: "Shape", Multiple: true, Optional: true},
			}},
			&schema.Classifier{Key: "Shape"},
		)
		dst := graph.NewForest(narrow, "dst")
		dst.MustNode("Geometry", "geo")
		graphtest.Must(dst.AddPartition("geo"))

		src := graphtest.NewForest("src")
		graphtest.Nodes(src, "Circle", "c")
		assert.Equal(t, src.ConnectTo(replicate.New(dst, nil, "dst")), nil)

		err := src.AddChild("geo", "shapes", "c")
		assert.Equal(t, domain.IsCode(err, domain.CodeUnknownClassifier), true)
		assert.Equal(t, dst.Has("c"), false)
	})

	t.Run("state mismatch", func(t *testing.T) {
		src := graphtest.NewForest("src")
		dst := graphtest.NewForest("dst")
		for name, f := range map[string]*graph.Forest{"A": src, "other": dst} {
			graphtest.Nodes(f, "Shape", "a")
			graphtest.Must(f.AddChild("geo", "shapes", "a"))
			graphtest.Must(f.SetProperty("a", "name", name))
		}
		assert.Equal(t, src.ConnectTo(replicate.New(dst, nil, "dst")), nil)

		err := src.SetProperty("a", "name", "B")
		assert.Equal(t, domain.IsCode(err, domain.CodeStateMismatch), true)
		a, _ := dst.Node("a")
		assert.Equal(t, a.Property("name"), "other")
	})
}

func TestSharedNodeMapRegistersOnSight(t *testing.T) {
	src, dst, r, _ := mirror(t)
	graphtest.Nodes(src, "Shape", "a", "b")
	graphtest.Must(src.AddChild("a", "parts", "b"))
	graphtest.Must(src.AddChild("geo", "shapes", "a"))

	assert.Equal(t, r.Nodes().IDs(), []string{"a", "b", "geo"})
	graphtest.Must(src.RemoveChild("a"))
	assert.Equal(t, r.Nodes().Len(), 3)

	a, found := r.Nodes().Lookup("a")
	assert.Equal(t, found, true)
	assert.Equal(t, a.Forest() == dst, true)
	assert.Equal(t, a.Attached(), false)
}

func TestCompositeReplay(t *testing.T) {
	src := graphtest.NewForest("src")
	dst := graphtest.NewForest("dst")
	srcTx := bus.NewCompositor("src-tx")
	dstTx := bus.NewCompositor("dst-tx")
	rec := bus.NewRecorder()
	r := replicate.New(dst, nil, "dst", replicate.WithCompositor(dstTx))
	assert.Equal(t, src.ConnectTo(srcTx), nil)
	assert.Equal(t, srcTx.ConnectTo(r), nil)
	assert.Equal(t, dst.ConnectTo(dstTx), nil)
	assert.Equal(t, dstTx.ConnectTo(rec), nil)

	graphtest.Nodes(src, "Shape", "a", "b")
	outer := srcTx.Push()
	graphtest.Must(src.AddChild("geo", "shapes", "a"))
	srcTx.Push()
	graphtest.Must(src.AddChild("geo", "shapes", "b"))
	graphtest.Must(src.SetProperty("a", "name", "A"))
	_, err := srcTx.Pop(true)
	assert.Equal(t, err, nil)
	sent, err := srcTx.Pop(true)
	assert.Equal(t, err, nil)

	assert.Equal(t, graph.Equal(src, dst), nil)
	assert.Equal(t, r.Applied(), 3)
	assert.Equal(t, dstTx.Depth(), 0)

	got := rec.Notifications()
	assert.Equal(t, len(got), 1)
	composite, isComposite := got[0].(notification.Composite)
	assert.Equal(t, isComposite, true)
	assert.Equal(t, composite.NotificationID(), outer)
	assert.Equal(t, ids(composite), ids(sent))
	assert.Equal(t, len(notification.Flatten(composite)), 3)
}

func ids(c notification.Composite) []notification.ID {
	var out []notification.ID
	for _, n := range c.Parts {
		out = append(out, n.NotificationID())
		if inner, ok := n.(notification.Composite); ok {
			out = append(out, ids(inner)...)
		}
	}
	return out
}
