package notification

import (
	"fmt"
	"strings"

	"modelsync/internal/domain"
)

// Describe renders n on one line for logs and journal rows
func Describe(n Notification) string {
	var detail string
	switch v := n.(type) {
	case PropertyAdded:
		detail = fmt.Sprintf("%s.%s = %s", v.Node, v.Property, domain.FormatValue(v.NewValue))
	case PropertyDeleted:
		detail = fmt.Sprintf("%s.%s unset (was %s)", v.Node, v.Property, domain.FormatValue(v.OldValue))
	case PropertyChanged:
		detail = fmt.Sprintf("%s.%s = %s (was %s)", v.Node, v.Property,
			domain.FormatValue(v.NewValue), domain.FormatValue(v.OldValue))
	case ChildAdded:
		detail = fmt.Sprintf("%s.%s[%d] += %s", v.Parent, v.Containment, v.Index, subtreeID(v.NewChild))
	case ChildDeleted:
		detail = fmt.Sprintf("%s.%s[%d] -= %s (%d nodes)", v.Parent, v.Containment, v.Index, v.DeletedChild, len(v.DeletedNodes))
	case ChildReplaced:
		detail = fmt.Sprintf("%s.%s[%d] %s -> %s", v.Parent, v.Containment, v.Index, v.ReplacedChild, subtreeID(v.NewChild))
	case ChildMovedFromOtherContainment:
		detail = fmt.Sprintf("%s: %s.%s[%d] -> %s.%s[%d]", v.MovedChild,
			v.OldParent, v.OldContainment, v.OldIndex, v.NewParent, v.NewContainment, v.NewIndex)
	case ChildMovedFromOtherContainmentInSameParent:
		detail = fmt.Sprintf("%s: %s.%s[%d] -> %s[%d]", v.MovedChild,
			v.Parent, v.OldContainment, v.OldIndex, v.NewContainment, v.NewIndex)
	case ChildMovedInSameContainment:
		detail = fmt.Sprintf("%s: %s.%s[%d -> %d]", v.MovedChild, v.Parent, v.Containment, v.OldIndex, v.NewIndex)
	case AnnotationMovedFromOtherParent:
		detail = fmt.Sprintf("%s: %s@[%d] -> %s@[%d]", v.MovedAnnotation, v.OldParent, v.OldIndex, v.NewParent, v.NewIndex)
	case AnnotationMovedInSameParent:
		detail = fmt.Sprintf("%s: %s@[%d -> %d]", v.MovedAnnotation, v.Parent, v.OldIndex, v.NewIndex)
	case ReferenceAdded:
		detail = fmt.Sprintf("%s.%s[%d] += %s", v.Parent, v.Reference, v.Index, v.NewTarget)
	case ReferenceDeleted:
		detail = fmt.Sprintf("%s.%s[%d] -= %s", v.Parent, v.Reference, v.Index, v.DeletedTarget)
	case PartitionAdded:
		detail = subtreeID(v.NewPartition)
	case PartitionDeleted:
		detail = fmt.Sprintf("%s (%d nodes)", v.DeletedPartition, len(v.DeletedNodes))
	case Composite:
		kinds := make([]string, len(v.Parts))
		for i, p := range v.Parts {
			kinds[i] = string(p.Kind())
		}
		detail = fmt.Sprintf("%d parts [%s]", len(v.Parts), strings.Join(kinds, " "))
	default:
		detail = strings.Join(Nodes(n), " ")
	}
	return fmt.Sprintf("%s %s %s", n.NotificationID(), n.Kind(), detail)
}

func subtreeID(s *domain.Subtree) string {
	if s == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s:%s", s.ID, s.Classifier)
}
