package valueobjects

// Kind identifies what a memory node remembers.
// Anything outside the well-known kinds is stored as a generic memory.
type Kind string

const (
	KindEmail   Kind = "email"
	KindContact Kind = "contact"
	KindTask    Kind = "task"
)

// IsWellKnown reports whether the kind has a dedicated memory shape
func (k Kind) IsWellKnown() bool {
	switch k {
	case KindEmail, KindContact, KindTask:
		return true
	}
	return false
}

// String returns the string representation of the kind
func (k Kind) String() string {
	return string(k)
}
