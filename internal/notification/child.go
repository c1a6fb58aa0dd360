package notification

import "modelsync/internal/domain"

// ChildAdded: a node entered the forest as a child
type ChildAdded struct {
	Meta
	Parent      string          `json:"parent"`
	Containment string          `json:"containment"`
	Index       int             `json:"index"`
	NewChild    *domain.Subtree `json:"new_child"`
}

// ChildDeleted: a child and its closure left the forest
type ChildDeleted struct {
	Meta
	Parent       string   `json:"parent"`
	Containment  string   `json:"containment"`
	Index        int      `json:"index"`
	DeletedChild string   `json:"deleted_child"`
	DeletedNodes []string `json:"deleted_nodes"`
}

// ChildReplaced: a new node took the place of an existing child
type ChildReplaced struct {
	Meta
	Parent        string          `json:"parent"`
	Containment   string          `json:"containment"`
	Index         int             `json:"index"`
	NewChild      *domain.Subtree `json:"new_child"`
	ReplacedChild string          `json:"replaced_child"`
	DeletedNodes  []string        `json:"deleted_nodes"`
}

// ChildMovedFromOtherContainment: a child moved to a different parent
type ChildMovedFromOtherContainment struct {
	Meta
	NewParent      string `json:"new_parent"`
	NewContainment string `json:"new_containment"`
	NewIndex       int    `json:"new_index"`
	MovedChild     string `json:"moved_child"`
	OldParent      string `json:"old_parent"`
	OldContainment string `json:"old_containment"`
	OldIndex       int    `json:"old_index"`
}

// ChildMovedFromOtherContainmentInSameParent: a child moved between two
// containments of the same parent
type ChildMovedFromOtherContainmentInSameParent struct {
	Meta
	Parent         string `json:"parent"`
	NewContainment string `json:"new_containment"`
	NewIndex       int    `json:"new_index"`
	MovedChild     string `json:"moved_child"`
	OldContainment string `json:"old_containment"`
	OldIndex       int    `json:"old_index"`
}

// ChildMovedInSameContainment: a child changed position within its
// containment. NewIndex is counted after removal from OldIndex.
type ChildMovedInSameContainment struct {
	Meta
	Parent      string `json:"parent"`
	Containment string `json:"containment"`
	NewIndex    int    `json:"new_index"`
	MovedChild  string `json:"moved_child"`
	OldIndex    int    `json:"old_index"`
}

// ChildMovedAndReplacedFromOtherContainment: a child from a different parent
// took the place of an existing child
type ChildMovedAndReplacedFromOtherContainment struct {
	Meta
	NewParent      string   `json:"new_parent"`
	NewContainment string   `json:"new_containment"`
	NewIndex       int      `json:"new_index"`
	MovedChild     string   `json:"moved_child"`
	OldParent      string   `json:"old_parent"`
	OldContainment string   `json:"old_containment"`
	OldIndex       int      `json:"old_index"`
	ReplacedChild  string   `json:"replaced_child"`
	DeletedNodes   []string `json:"deleted_nodes"`
}

// ChildMovedAndReplacedFromOtherContainmentInSameParent: a child from another
// containment of the same parent took the place of an existing child
type ChildMovedAndReplacedFromOtherContainmentInSameParent struct {
	Meta
	Parent         string   `json:"parent"`
	NewContainment string   `json:"new_containment"`
	NewIndex       int      `json:"new_index"`
	MovedChild     string   `json:"moved_child"`
	OldContainment string   `json:"old_containment"`
	OldIndex       int      `json:"old_index"`
	ReplacedChild  string   `json:"replaced_child"`
	DeletedNodes   []string `json:"deleted_nodes"`
}

// ChildMovedAndReplacedInSameContainment: a sibling took the place of an
// existing child. NewIndex is the final position of the moved child.
type ChildMovedAndReplacedInSameContainment struct {
	Meta
	Parent        string   `json:"parent"`
	Containment   string   `json:"containment"`
	NewIndex      int      `json:"new_index"`
	MovedChild    string   `json:"moved_child"`
	OldIndex      int      `json:"old_index"`
	ReplacedChild string   `json:"replaced_child"`
	DeletedNodes  []string `json:"deleted_nodes"`
}

func (ChildAdded) Kind() Kind    { return KindChildAdded }
func (ChildDeleted) Kind() Kind  { return KindChildDeleted }
func (ChildReplaced) Kind() Kind { return KindChildReplaced }
func (ChildMovedFromOtherContainment) Kind() Kind {
	return KindChildMovedFromOtherContainment
}
func (ChildMovedFromOtherContainmentInSameParent) Kind() Kind {
	return KindChildMovedFromOtherContainmentInSameParent
}
func (ChildMovedInSameContainment) Kind() Kind { return KindChildMovedInSameContainment }
func (ChildMovedAndReplacedFromOtherContainment) Kind() Kind {
	return KindChildMovedAndReplacedFromOtherContainment
}
func (ChildMovedAndReplacedFromOtherContainmentInSameParent) Kind() Kind {
	return KindChildMovedAndReplacedFromOtherContainmentInSameParent
}
func (ChildMovedAndReplacedInSameContainment) Kind() Kind {
	return KindChildMovedAndReplacedInSameContainment
}
