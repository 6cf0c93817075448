package graph

import "fmt"

// Kind classifies a concept in the graph. For schema types, Kind is the kind
// of the type's instances ("person" has KindEntity because its instances are
// entities).
type Kind string

const (
	KindEntity    Kind = "entity"
	KindRelation  Kind = "relation"
	KindAttribute Kind = "attribute"
)

// IsValid reports whether k is one of the known kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindEntity, KindRelation, KindAttribute:
		return true
	}
	return false
}

// Concept is an opaque handle to a graph element returned by the storage
// backend. Once returned it is immutable for the remainder of the operation.
type Concept struct {
	ID    string // backend-assigned identifier
	Kind  Kind   // kind of the concept, or of its instances if it is a type
	Type  bool   // true for schema types, false for instances
	Label string // type label; set on types and carried on instances
	Value any    // scalar value; set on attribute instances
}

// IsZero reports whether the concept is the zero handle.
func (c Concept) IsZero() bool {
	return c.ID == ""
}

// RolePlayer pairs a role name with the concept playing it in a relation.
type RolePlayer struct {
	Role   string
	Player Concept
}

// String returns a short human-readable form used in diagnostics.
func (c Concept) String() string {
	switch {
	case c.Type:
		return fmt.Sprintf("type(%s)", c.Label)
	case c.Kind == KindAttribute:
		return fmt.Sprintf("%s:%s=%v", c.Kind, c.Label, c.Value)
	default:
		return fmt.Sprintf("%s:%s(%s)", c.Kind, c.Label, c.ID)
	}
}
