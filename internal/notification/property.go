package notification

// PropertyAdded: an unset property received a value
type PropertyAdded struct {
	Meta
	Node     string `json:"node"`
	Property string `json:"property"`
	NewValue any    `json:"new_value"`
}

// PropertyDeleted: a property was unset
type PropertyDeleted struct {
	Meta
	Node     string `json:"node"`
	Property string `json:"property"`
	OldValue any    `json:"old_value"`
}

// PropertyChanged: a set property received a different value
type PropertyChanged struct {
	Meta
	Node     string `json:"node"`
	Property string `json:"property"`
	NewValue any    `json:"new_value"`
	OldValue any    `json:"old_value"`
}

func (PropertyAdded) Kind() Kind   { return KindPropertyAdded }
func (PropertyDeleted) Kind() Kind { return KindPropertyDeleted }
func (PropertyChanged) Kind() Kind { return KindPropertyChanged }
