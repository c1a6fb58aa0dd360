package notification

import (
	"reflect"
	"strings"
	"testing"

	"modelsync/internal/domain"
)

func TestIDSource(t *testing.T) {
	t.Run("same producer ids equal iff same sequence", func(t *testing.T) {
		src := NewIDSource("left")
		a, b := src.Next(), src.Next()
		if a == b {
			t.Errorf("expected distinct ids, got %v twice", a)
		}
		if a != (ID{Producer: "left", Seq: 1}) {
			t.Errorf("expected left#1, got %v", a)
		}
	})

	t.Run("different producers never collide", func(t *testing.T) {
		x, y := NewIDSource(""), NewIDSource("")
		if x.Label() == y.Label() {
			t.Fatalf("expected generated labels to differ, both %s", x.Label())
		}
		if x.Next() == y.Next() {
			t.Error("expected ids of different producers to differ")
		}
	})

	t.Run("zero id", func(t *testing.T) {
		if !(ID{}).IsZero() {
			t.Error("expected zero id")
		}
		if NewIDSource("p").Next().IsZero() {
			t.Error("expected assigned id to be non-zero")
		}
	})
}

func TestEntryChange(t *testing.T) {
	id := ID{Producer: "p", Seq: 1}
	tests := []struct {
		name string
		old  Target
		new  Target
		want Kind
	}{
		{"resolve info added", Target{TargetID: "a"}, Target{TargetID: "a", ResolveInfo: "A"}, KindReferenceResolveInfoAdded},
		{"resolve info deleted", Target{TargetID: "a", ResolveInfo: "A"}, Target{TargetID: "a"}, KindReferenceResolveInfoDeleted},
		{"resolve info changed", Target{TargetID: "a", ResolveInfo: "A"}, Target{TargetID: "a", ResolveInfo: "B"}, KindReferenceResolveInfoChanged},
		{"target added", Target{ResolveInfo: "A"}, Target{TargetID: "a", ResolveInfo: "A"}, KindReferenceTargetAdded},
		{"target deleted", Target{TargetID: "a", ResolveInfo: "A"}, Target{ResolveInfo: "A"}, KindReferenceTargetDeleted},
		{"target changed", Target{TargetID: "a"}, Target{TargetID: "b"}, KindReferenceTargetChanged},
		{"both changed", Target{TargetID: "a", ResolveInfo: "A"}, Target{TargetID: "b", ResolveInfo: "B"}, KindReferenceChanged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := EntryChange(id, "owner", "refs", 0, tt.old, tt.new)
			if !ok {
				t.Fatal("expected a change")
			}
			if n.Kind() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, n.Kind())
			}
			if n.NotificationID() != id {
				t.Errorf("expected id %v, got %v", id, n.NotificationID())
			}
		})
	}

	t.Run("equal entries", func(t *testing.T) {
		if _, ok := EntryChange(id, "owner", "refs", 0, domain.Ref("a"), domain.Ref("a")); ok {
			t.Error("expected no change")
		}
	})
}

func TestMapNodes(t *testing.T) {
	upper := func(s string) string { return strings.ToUpper(s) }

	t.Run("rewrites subtree and reference targets", func(t *testing.T) {
		n := ChildAdded{
			Meta:        Meta{ID: ID{Producer: "p", Seq: 3}},
			Parent:      "root",
			Containment: "shapes",
			NewChild: &domain.Subtree{
				ID:         "a",
				Classifier: "Circle",
				Containments: map[string][]*domain.Subtree{
					"parts": {{ID: "b", Classifier: "Line"}},
				},
				References: map[string][]domain.Target{"peer": {domain.Ref("c"), {ResolveInfo: "hint"}}},
			},
		}
		got := MapNodes(n, upper).(ChildAdded)
		if got.Parent != "ROOT" || got.NewChild.ID != "A" || got.NewChild.Containments["parts"][0].ID != "B" {
			t.Errorf("unexpected mapping: %+v", got)
		}
		if got.NewChild.References["peer"][0].TargetID != "C" || got.NewChild.References["peer"][1].TargetID != "" {
			t.Errorf("unexpected reference mapping: %+v", got.NewChild.References)
		}
		if n.NewChild.ID != "a" {
			t.Error("expected original notification untouched")
		}
		if got.NotificationID() != n.NotificationID() {
			t.Error("expected id to be kept")
		}
	})

	t.Run("recurses into composites", func(t *testing.T) {
		c := Composite{Parts: []Notification{
			PropertyAdded{Node: "x", Property: "name", NewValue: "X"},
			ChildDeleted{Parent: "p", DeletedChild: "y", DeletedNodes: []string{"y", "z"}},
		}}
		got := MapNodes(c, upper).(Composite)
		if got.Parts[0].(PropertyAdded).Node != "X" {
			t.Errorf("expected X, got %+v", got.Parts[0])
		}
		if !reflect.DeepEqual(got.Parts[1].(ChildDeleted).DeletedNodes, []string{"Y", "Z"}) {
			t.Errorf("unexpected deleted nodes %+v", got.Parts[1])
		}
	})
}

func TestNodes(t *testing.T) {
	n := ChildMovedFromOtherContainment{
		NewParent: "b", NewContainment: "kids", MovedChild: "c",
		OldParent: "a", OldContainment: "kids",
	}
	want := []string{"b", "a", "c"}
	if got := Nodes(n); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestRetag(t *testing.T) {
	orig := ReferenceAdded{Meta: Meta{ID: ID{Producer: "a", Seq: 1}}, Parent: "x", Reference: "r", NewTarget: domain.Ref("y")}
	id := ID{Producer: "b", Seq: 9}
	got := Retag(orig, id)
	if got.NotificationID() != id {
		t.Errorf("expected %v, got %v", id, got.NotificationID())
	}
	if got.(ReferenceAdded).Parent != "x" {
		t.Error("expected payload to be kept")
	}
	if orig.NotificationID().Producer != "a" {
		t.Error("expected original to be untouched")
	}
}

func TestFlattenAndDescribe(t *testing.T) {
	inner := Composite{Parts: []Notification{PropertyAdded{Node: "a", Property: "p", NewValue: int64(1)}}}
	outer := Composite{Meta: Meta{ID: ID{Producer: "c", Seq: 1}}, Parts: []Notification{
		inner,
		PropertyDeleted{Node: "a", Property: "p", OldValue: int64(1)},
	}}
	if got := len(Flatten(outer)); got != 2 {
		t.Errorf("expected 2 leaves, got %d", got)
	}
	if d := Describe(outer); !strings.Contains(d, "2 parts") || !strings.Contains(d, "c#1") {
		t.Errorf("unexpected description %q", d)
	}
}
