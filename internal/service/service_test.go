package service_test

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"modelsync/internal/bus"
	"modelsync/internal/codec"
	"modelsync/internal/domain"
	"modelsync/internal/graph"
	"modelsync/internal/graph/graphtest"
	"modelsync/internal/notification"
	"modelsync/internal/repository/sqlite"
	"modelsync/internal/service"
)

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func verify(t *testing.T, what string, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: forests differ: %v", what, err)
	}
}

func TestMirrorSeedsAndFollows(t *testing.T) {
	src := graphtest.NewForest("src")
	graphtest.Nodes(src, "Shape", "a", "b")
	must(t, src.SetProperty("a", "name", "A"))
	must(t, src.AddChild("geo", "shapes", "a"))

	m, err := service.NewMirror(src, service.MirrorOptions{Label: "replica"})
	must(t, err)
	verify(t, "after seeding", m.Verify())
	if m.Replica().Label() != "replica" {
		t.Errorf("replica label = %s", m.Replica().Label())
	}

	must(t, src.AddChild("a", "parts", "b"))
	must(t, src.SetProperty("a", "size", 4))
	must(t, src.AddChild("geo", "archive", "b"))
	verify(t, "after edits", m.Verify())

	if got := m.Replicator().Applied(); got != 3 {
		t.Errorf("Applied() = %d, want 3", got)
	}
	if _, err := m.Begin(); !domain.IsKind(err, domain.KindPipelineMisuse) {
		t.Errorf("Begin() without composition = %v, want pipeline misuse", err)
	}
}

func TestMirrorComposes(t *testing.T) {
	src := graphtest.NewForest("src")
	m, err := service.NewMirror(src, service.MirrorOptions{Label: "replica", Compose: true})
	must(t, err)
	rec := bus.NewRecorder()
	must(t, m.ReplicaOutput().ConnectTo(rec))

	graphtest.Nodes(src, "Shape", "a", "b")
	id, err := m.Begin()
	must(t, err)
	must(t, src.AddChild("geo", "shapes", "a"))
	must(t, src.AddChild("geo", "shapes", "b"))
	must(t, src.SetProperty("b", "name", "B"))
	if len(rec.Notifications()) != 0 {
		t.Fatal("replica should not see an open transaction")
	}
	must(t, m.Commit())
	verify(t, "after commit", m.Verify())

	got := rec.Notifications()
	if len(got) != 1 {
		t.Fatalf("replica emitted %d notifications, want 1 composite", len(got))
	}
	c, ok := got[0].(notification.Composite)
	if !ok || c.NotificationID() != id || len(c.Parts) != 3 {
		t.Errorf("replica emitted %s, want composite %s with 3 parts", notification.Describe(got[0]), id)
	}
}

func TestPairEchoSuppression(t *testing.T) {
	for _, compose := range []bool{false, true} {
		t.Run(fmt.Sprintf("compose=%t", compose), func(t *testing.T) {
			left := graphtest.NewForest("left")
			right := graphtest.NewForest("right")
			leftSeen, rightSeen := bus.NewCounter(), bus.NewCounter()
			must(t, left.ConnectTo(leftSeen))
			must(t, right.ConnectTo(rightSeen))

			p, err := service.NewPair(left, right, compose)
			must(t, err)

			const rounds = 10
			for i := 0; i < rounds; i++ {
				id := fmt.Sprintf("s%d", i)
				graphtest.Nodes(left, "Shape", id)
				must(t, left.AddChild("geo", "shapes", id))
				must(t, right.SetProperty(id, "size", i))
				if p.Pending() != 0 {
					t.Fatalf("round %d: %d echoes still pending", i, p.Pending())
				}
			}
			verify(t, "after alternating writes", p.Verify())

			l, r := p.Applied()
			if l != rounds || r != rounds {
				t.Errorf("Applied() = %d, %d, want %d each", l, r, rounds)
			}
			for name, c := range map[string]*bus.Counter{"left": leftSeen, "right": rightSeen} {
				if d := c.Duplicates(); len(d) != 0 {
					t.Errorf("%s emitted %v more than once", name, d)
				}
				if c.Total() != 2*rounds {
					t.Errorf("%s emitted %d notifications, want %d", name, c.Total(), 2*rounds)
				}
			}
		})
	}
}

func TestPairTransaction(t *testing.T) {
	left := graphtest.NewForest("left")
	right := graphtest.NewForest("right")
	p, err := service.NewPair(left, right, true)
	must(t, err)
	rec := bus.NewRecorder()
	must(t, p.RightTx().ConnectTo(rec))

	graphtest.Nodes(left, "Shape", "a", "b")
	id := p.LeftTx().Push()
	must(t, left.AddChild("geo", "shapes", "a"))
	must(t, left.AddChild("a", "parts", "b"))
	_, err = p.LeftTx().Pop(true)
	must(t, err)

	verify(t, "after transaction", p.Verify())
	if p.Pending() != 0 {
		t.Errorf("Pending() = %d after transaction", p.Pending())
	}
	kinds := rec.Kinds()
	if len(kinds) != 1 || kinds[0] != notification.KindComposite || rec.Last().NotificationID() != id {
		t.Errorf("right emitted %v, want one composite %s", kinds, id)
	}

	// and back
	must(t, right.SetProperty("b", "name", "B"))
	verify(t, "after reply", p.Verify())
	if p.Pending() != 0 {
		t.Errorf("Pending() = %d after reply", p.Pending())
	}
}

func TestNewPairRejects(t *testing.T) {
	t.Run("same label", func(t *testing.T) {
		if _, err := service.NewPair(graphtest.NewForest("x"), graphtest.NewForest("x"), false); err == nil {
			t.Fatal("expected an error for equal labels")
		}
	})
	t.Run("different content", func(t *testing.T) {
		right := graphtest.NewForest("right")
		must(t, right.SetProperty("geo", "title", "other"))
		if _, err := service.NewPair(graphtest.NewForest("left"), right, false); err == nil {
			t.Fatal("expected an error for differing forests")
		}
	})
}

func TestJournalRebuild(t *testing.T) {
	ctx := context.Background()
	j, err := sqlite.New(":memory:", time.Second)
	must(t, err)
	defer j.Close()

	src := graph.NewForest(graphtest.Language(), "src")
	sink := service.NewJournalSink(ctx, j, "source")
	must(t, src.ConnectTo(sink))

	src.MustNode("Geometry", "geo")
	must(t, src.AddPartition("geo"))
	graphtest.Nodes(src, "Shape", "a", "b")
	graphtest.Nodes(src, "Documentation", "doc")
	must(t, src.SetChildren("geo", "shapes", []string{"a", "b"}))
	must(t, src.SetProperty("a", "size", 3))
	must(t, src.SetProperty("a", "size", 8))
	must(t, src.AddAnnotation("b", "doc"))
	must(t, src.SetChildren("geo", "shapes", []string{"b", "a"}))
	must(t, src.Set("geo", "links", []string{"a", "b"}))

	dst := graph.NewForest(graphtest.Language(), "dst")
	n, err := service.Rebuild(ctx, j, "source", dst)
	must(t, err)
	if n != sink.Appended() {
		t.Errorf("Rebuild applied %d entries, sink wrote %d", n, sink.Appended())
	}
	verify(t, "after rebuild", graph.Equal(src, dst))

	if n, err := service.Rebuild(ctx, j, "other", graph.NewForest(graphtest.Language(), "x")); err != nil || n != 0 {
		t.Errorf("Rebuild of an empty stream = %d, %v", n, err)
	}
}

const scenario = `
language:
  key: tiny
  version: "1"
  classifiers:
    - key: Root
      partition: true
      features:
        - {key: items, kind: containment, type: Item, multiple: true, optional: true}
        - {key: pinned, kind: reference, type: Item, multiple: true, optional: true}
    - key: Item
      features:
        - {key: label, kind: property, type: string, optional: true}
    - key: Note
      annotation: true
initial:
  partitions:
    - id: root
      classifier: Root
steps:
  - {op: new, classifier: Item, node: i1}
  - {op: new, classifier: Item, node: i2}
  - {op: new, classifier: Note, node: n1}
  - {op: set, node: root, feature: items, value: [i1, i2]}
  - {op: set, node: i1, feature: label, value: first}
  - {op: begin}
  - {op: annotate, node: i2, child: n1}
  - {op: set, node: root, feature: pinned, value: [i2, {resolve_info: later}]}
  - {op: commit}
  - {op: resolve, node: root, feature: pinned, index: 1, target: i1, resolve_info: later}
  - {op: delete, node: root, feature: items, index: 0}
`

func TestRunnerReplaysScenario(t *testing.T) {
	sc, err := codec.ParseScenario(strings.NewReader(scenario))
	must(t, err)
	lang, err := sc.Language.Build()
	must(t, err)

	src := graph.NewForest(lang, "src")
	must(t, codec.Load(src, sc.Initial))
	m, err := service.NewMirror(src, service.MirrorOptions{Label: "replica", Compose: true})
	must(t, err)
	rec := bus.NewRecorder()
	must(t, m.Transactions().ConnectTo(rec))

	n, err := service.NewRunner(src, m.Transactions()).Run(sc.Steps)
	must(t, err)
	if n != len(sc.Steps) {
		t.Errorf("Run() applied %d steps, want %d", n, len(sc.Steps))
	}
	verify(t, "after scenario", m.Verify())

	want := []notification.Kind{
		notification.KindChildAdded,
		notification.KindChildAdded,
		notification.KindPropertyAdded,
		notification.KindComposite,
		notification.KindReferenceTargetAdded,
		notification.KindChildDeleted,
	}
	got := rec.Kinds()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("kinds = %v, want %v", got, want)
	}

	root, _ := m.Replica().Node("root")
	if items := root.Children("items"); len(items) != 1 || items[0] != "i2" {
		t.Errorf("replica items = %v, want [i2]", items)
	}
	if refs := root.References("pinned"); len(refs) != 2 || refs[1].TargetID != "i1" {
		t.Errorf("replica pinned = %v", refs)
	}
}

func TestRunnerErrors(t *testing.T) {
	f := graphtest.NewForest("src")
	r := service.NewRunner(f, nil)

	if err := r.Apply(codec.Step{Op: codec.OpBegin}); !domain.IsKind(err, domain.KindPipelineMisuse) {
		t.Errorf("begin without compositor = %v, want pipeline misuse", err)
	}
	_, err := r.Run([]codec.Step{
		{Op: codec.OpNew, Classifier: "Shape", Node: "a"},
		{Op: codec.OpRemove, Node: "ghost"},
	})
	if err == nil || !strings.Contains(err.Error(), "step 2") || !domain.IsCode(err, domain.CodeUnknownNode) {
		t.Errorf("Run() = %v, want unknown-node at step 2", err)
	}
}

func TestEventBus(t *testing.T) {
	f := graphtest.NewForest("src")
	events := service.NewEventBus()
	must(t, f.ConnectTo(events))
	ch := make(chan service.Event, 1)
	events.Subscribe(ch)
	var handled []notification.Kind
	events.Handle(func(ev service.Event) { handled = append(handled, ev.Type) })

	graphtest.Nodes(f, "Shape", "a")
	must(t, f.AddChild("geo", "shapes", "a"))
	must(t, f.SetProperty("a", "size", 1))

	ev := <-ch
	if ev.Type != notification.KindChildAdded || ev.ID.Producer != "src" {
		t.Errorf("event = %+v", ev)
	}
	if len(ev.Nodes) == 0 || !strings.Contains(ev.Summary, "geo.shapes[0]") {
		t.Errorf("event = %+v", ev)
	}
	if events.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", events.Dropped())
	}
	if !reflect.DeepEqual(handled, []notification.Kind{notification.KindChildAdded, notification.KindPropertyAdded}) {
		t.Errorf("handled %v, want both events", handled)
	}
}
