package domain

// Target is one entry of a reference link
type Target struct {
	TargetID    string `json:"target,omitempty" yaml:"target,omitempty"`
	ResolveInfo string `json:"resolve_info,omitempty" yaml:"resolve_info,omitempty"`
}

// Empty reports whether the entry carries neither an id nor a hint
func (t Target) Empty() bool {
	return t.TargetID == "" && t.ResolveInfo == ""
}

func (t Target) String() string {
	switch {
	case t.TargetID == "":
		return "?" + t.ResolveInfo
	case t.ResolveInfo == "":
		return t.TargetID
	default:
		return t.TargetID + "(" + t.ResolveInfo + ")"
	}
}

// Ref is shorthand for a Target pointing at id
func Ref(id string) Target {
	return Target{TargetID: id}
}
