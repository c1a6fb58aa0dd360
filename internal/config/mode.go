package config

// Mode selects the replication topology
type Mode string

const (
	ModeMirror Mode = "mirror" // one-way: source to replica
	ModePair   Mode = "pair"   // bidirectional with echo suppression
)

// ParseMode converts a string to Mode, defaulting to ModeMirror
func ParseMode(s string) Mode {
	switch s {
	case "mirror":
		return ModeMirror
	case "pair":
		return ModePair
	default:
		return ModeMirror
	}
}

// Bidirectional reports whether edits flow both ways
func (m Mode) Bidirectional() bool {
	return m == ModePair
}

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	return m == ModeMirror || m == ModePair
}
