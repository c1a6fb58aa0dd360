package graph

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"modelsync/internal/bus"
	"modelsync/internal/domain"
	"modelsync/internal/notification"
	"modelsync/internal/schema"
)

type handle int32

const noHandle handle = -1

type node struct {
	id         string
	classifier *schema.Classifier
	parent     handle
	// feature is the containment key holding this node; empty with a parent
	// means the node sits in the parent's annotations.
	feature     string
	props       map[string]any
	children    map[string][]handle
	refs        map[string][]domain.Target
	annotations []handle
}

// slot is one ordered list of owned nodes: a containment, or the
// annotations of parent when feature is empty.
type slot struct {
	parent  handle
	feature string
}

func (s slot) isAnnotation() bool {
	return s.feature == ""
}

// Forest is a set of partitions plus the detached nodes created in it
type Forest struct {
	bus.Broadcaster

	lang       *schema.Language
	ids        *notification.IDSource
	nodes      []node
	index      map[string]handle
	partitions []handle
	tag        *notification.ID
	// replaying relaxes required-slot checks inside Tagged
	replaying bool
}

// NewForest creates an empty forest for lang. label names the forest as a
// notification producer; empty gets a generated label.
func NewForest(lang *schema.Language, label string) *Forest {
	f := &Forest{
		lang:  lang,
		ids:   notification.NewIDSource(label),
		index: make(map[string]handle),
	}
	f.Bind(f)
	return f
}

// NewID generates a node id
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Label is the producer label stamped on notification ids
func (f *Forest) Label() string {
	return f.ids.Label()
}

// Language returns the schema the forest validates against
func (f *Forest) Language() *schema.Language {
	return f.lang
}

// NewNode creates a detached node. An empty id is generated.
func (f *Forest) NewNode(classifier, id string) (Node, error) {
	c, ok := f.lang.Classifier(classifier)
	if !ok {
		return Node{}, domain.Violation(domain.CodeUnknownClassifier, id, "", "unknown classifier %s", classifier)
	}
	if id == "" {
		id = NewID()
	}
	if _, dup := f.index[id]; dup {
		return Node{}, domain.Violation(domain.CodeDuplicateID, id, "", "node already exists")
	}
	h := handle(len(f.nodes))
	f.nodes = append(f.nodes, node{
		id:         id,
		classifier: c,
		parent:     noHandle,
		props:      make(map[string]any),
		children:   make(map[string][]handle),
		refs:       make(map[string][]domain.Target),
	})
	f.index[id] = h
	return Node{f: f, h: h}, nil
}

// MustNode is NewNode for tests and fixtures
func (f *Forest) MustNode(classifier, id string) Node {
	n, err := f.NewNode(classifier, id)
	if err != nil {
		panic(err)
	}
	return n
}

// Node looks up a node by id
func (f *Forest) Node(id string) (Node, bool) {
	h, ok := f.index[id]
	if !ok {
		return Node{}, false
	}
	return Node{f: f, h: h}, true
}

// Has reports whether the forest knows id
func (f *Forest) Has(id string) bool {
	_, ok := f.index[id]
	return ok
}

// Len is the number of nodes ever created in the forest
func (f *Forest) Len() int {
	return len(f.nodes)
}

// Partitions returns the partition roots in registration order
func (f *Forest) Partitions() []Node {
	out := make([]Node, len(f.partitions))
	for i, h := range f.partitions {
		out[i] = Node{f: f, h: h}
	}
	return out
}

// ContainmentOf returns where child currently lives. feature is empty for
// annotations. ok is false for roots and detached nodes.
func (f *Forest) ContainmentOf(child string) (parent, feature string, index int, ok bool) {
	h, known := f.index[child]
	if !known {
		return "", "", 0, false
	}
	n := f.n(h)
	if n.parent == noHandle {
		return "", "", 0, false
	}
	s := slot{parent: n.parent, feature: n.feature}
	return f.n(n.parent).id, n.feature, f.indexIn(s, h), true
}

// Resolve looks up the node a reference entry points at
func (f *Forest) Resolve(t domain.Target) (Node, bool) {
	if t.TargetID == "" {
		return Node{}, false
	}
	return f.Node(t.TargetID)
}

// Tagged runs fn so that the next notification the forest emits carries id
// instead of a fresh one. Replicators use it to keep the originating id.
//
// Required-slot checks are skipped inside fn: a replayed step may be an
// intermediate state of a mutation that was validated as a whole.
func (f *Forest) Tagged(id notification.ID, fn func() error) error {
	prevTag, prevReplay := f.tag, f.replaying
	f.tag, f.replaying = &id, true
	defer func() { f.tag, f.replaying = prevTag, prevReplay }()
	return fn()
}

// emptiesRequired reports whether taking n nodes out of s leaves a required
// containment empty
func (f *Forest) emptiesRequired(s slot, n int) bool {
	if f.replaying || s.isAnnotation() {
		return false
	}
	ft, _ := f.n(s.parent).classifier.Feature(s.feature)
	return ft.Required() && len(f.list(s)) <= n
}

func (f *Forest) required(ft *schema.Feature) bool {
	return !f.replaying && ft.Required()
}

func (f *Forest) nextID() notification.ID {
	if f.tag != nil {
		id := *f.tag
		f.tag = nil
		return id
	}
	return f.ids.Next()
}

// emit stamps and delivers one notification
func (f *Forest) emit(build func(m notification.Meta) notification.Notification) error {
	return f.deliver(build(notification.Meta{ID: f.nextID()}))
}

func (f *Forest) deliver(n notification.Notification) error {
	if glog.V(3) {
		glog.Infof("[forest %s] %s", f.Label(), notification.Describe(n))
	}
	if err := f.Send(n); err != nil {
		return fmt.Errorf("deliver %s: %w", n.Kind(), err)
	}
	return nil
}

func (f *Forest) n(h handle) *node {
	return &f.nodes[h]
}

func (f *Forest) lookup(id string) (handle, error) {
	h, ok := f.index[id]
	if !ok {
		return noHandle, domain.Violation(domain.CodeUnknownNode, id, "", "no such node")
	}
	return h, nil
}

func (f *Forest) isPartition(h handle) bool {
	for _, p := range f.partitions {
		if p == h {
			return true
		}
	}
	return false
}

func (f *Forest) root(h handle) handle {
	for f.n(h).parent != noHandle {
		h = f.n(h).parent
	}
	return h
}

// attached reports whether h belongs to a registered partition
func (f *Forest) attached(h handle) bool {
	if h == noHandle {
		return false
	}
	return f.isPartition(f.root(h))
}

// isAncestorOrSelf reports whether a is h or one of h's ancestors
func (f *Forest) isAncestorOrSelf(a, h handle) bool {
	for cur := h; cur != noHandle; cur = f.n(cur).parent {
		if cur == a {
			return true
		}
	}
	return false
}

func (f *Forest) list(s slot) []handle {
	if s.isAnnotation() {
		return f.n(s.parent).annotations
	}
	return f.n(s.parent).children[s.feature]
}

func (f *Forest) setList(s slot, l []handle) {
	p := f.n(s.parent)
	if s.isAnnotation() {
		p.annotations = l
		return
	}
	if len(l) == 0 {
		delete(p.children, s.feature)
		return
	}
	p.children[s.feature] = l
}

func (f *Forest) indexIn(s slot, h handle) int {
	for i, x := range f.list(s) {
		if x == h {
			return i
		}
	}
	return -1
}

// location returns the slot and index h currently occupies
func (f *Forest) location(h handle) (slot, int, bool) {
	n := f.n(h)
	if n.parent == noHandle {
		return slot{}, -1, false
	}
	s := slot{parent: n.parent, feature: n.feature}
	return s, f.indexIn(s, h), true
}

// detach removes h from its slot, if any
func (f *Forest) detach(h handle) {
	s, i, ok := f.location(h)
	if !ok {
		return
	}
	old := f.list(s)
	l := make([]handle, 0, len(old)-1)
	l = append(l, old[:i]...)
	l = append(l, old[i+1:]...)
	f.setList(s, l)
	n := f.n(h)
	n.parent = noHandle
	n.feature = ""
}

// attach inserts a detached h into s at index
func (f *Forest) attach(h handle, s slot, index int) {
	old := f.list(s)
	l := make([]handle, 0, len(old)+1)
	l = append(l, old[:index]...)
	l = append(l, h)
	l = append(l, old[index:]...)
	f.setList(s, l)
	n := f.n(h)
	n.parent = s.parent
	n.feature = s.feature
}

func (f *Forest) handleIDs(hs []handle) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = f.n(h).id
	}
	return out
}
