package notification

import "modelsync/internal/domain"

// AnnotationAdded: an annotation instance entered the forest
type AnnotationAdded struct {
	Meta
	Parent        string          `json:"parent"`
	Index         int             `json:"index"`
	NewAnnotation *domain.Subtree `json:"new_annotation"`
}

// AnnotationDeleted: an annotation and its closure left the forest
type AnnotationDeleted struct {
	Meta
	Parent            string   `json:"parent"`
	Index             int      `json:"index"`
	DeletedAnnotation string   `json:"deleted_annotation"`
	DeletedNodes      []string `json:"deleted_nodes"`
}

// AnnotationReplaced: a new annotation took the place of an existing one
type AnnotationReplaced struct {
	Meta
	Parent             string          `json:"parent"`
	Index              int             `json:"index"`
	NewAnnotation      *domain.Subtree `json:"new_annotation"`
	ReplacedAnnotation string          `json:"replaced_annotation"`
	DeletedNodes       []string        `json:"deleted_nodes"`
}

// AnnotationMovedFromOtherParent: an annotation moved to another node
type AnnotationMovedFromOtherParent struct {
	Meta
	NewParent       string `json:"new_parent"`
	NewIndex        int    `json:"new_index"`
	MovedAnnotation string `json:"moved_annotation"`
	OldParent       string `json:"old_parent"`
	OldIndex        int    `json:"old_index"`
}

// AnnotationMovedInSameParent: an annotation changed position on its node
type AnnotationMovedInSameParent struct {
	Meta
	Parent          string `json:"parent"`
	NewIndex        int    `json:"new_index"`
	MovedAnnotation string `json:"moved_annotation"`
	OldIndex        int    `json:"old_index"`
}

// AnnotationMovedAndReplacedFromOtherParent: an annotation from another node
// took the place of an existing annotation
type AnnotationMovedAndReplacedFromOtherParent struct {
	Meta
	NewParent          string   `json:"new_parent"`
	NewIndex           int      `json:"new_index"`
	MovedAnnotation    string   `json:"moved_annotation"`
	OldParent          string   `json:"old_parent"`
	OldIndex           int      `json:"old_index"`
	ReplacedAnnotation string   `json:"replaced_annotation"`
	DeletedNodes       []string `json:"deleted_nodes"`
}

// AnnotationMovedAndReplacedInSameParent: a sibling annotation took the place
// of an existing one
type AnnotationMovedAndReplacedInSameParent struct {
	Meta
	Parent             string   `json:"parent"`
	NewIndex           int      `json:"new_index"`
	MovedAnnotation    string   `json:"moved_annotation"`
	OldIndex           int      `json:"old_index"`
	ReplacedAnnotation string   `json:"replaced_annotation"`
	DeletedNodes       []string `json:"deleted_nodes"`
}

func (AnnotationAdded) Kind() Kind    { return KindAnnotationAdded }
func (AnnotationDeleted) Kind() Kind  { return KindAnnotationDeleted }
func (AnnotationReplaced) Kind() Kind { return KindAnnotationReplaced }
func (AnnotationMovedFromOtherParent) Kind() Kind {
	return KindAnnotationMovedFromOtherParent
}
func (AnnotationMovedInSameParent) Kind() Kind { return KindAnnotationMovedInSameParent }
func (AnnotationMovedAndReplacedFromOtherParent) Kind() Kind {
	return KindAnnotationMovedAndReplacedFromOtherParent
}
func (AnnotationMovedAndReplacedInSameParent) Kind() Kind {
	return KindAnnotationMovedAndReplacedInSameParent
}
