package notification

// Composite bundles notifications that form one transaction
type Composite struct {
	Meta
	Parts []Notification `json:"parts"`
}

func (Composite) Kind() Kind { return KindComposite }

// Flatten returns the leaf notifications of n in delivery order
func Flatten(n Notification) []Notification {
	c, ok := n.(Composite)
	if !ok {
		return []Notification{n}
	}
	var out []Notification
	for _, p := range c.Parts {
		out = append(out, Flatten(p)...)
	}
	return out
}
