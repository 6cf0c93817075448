package graph

import "context"

// Backend is the storage capability consumed by the insert engine. All calls
// are synchronous; implementations may perform I/O. Errors are propagated to
// the caller unchanged, the engine does not retry or reinterpret them.
//
// Implementations are not required to be safe for concurrent use; the engine
// runs one insert operation at a time against a backend and callers must
// serialize operations sharing one backend.
type Backend interface {
	// ResolveType resolves a schema type by label.
	ResolveType(ctx context.Context, label string) (Concept, error)

	// CreateEntity creates a new entity instance of the given type.
	CreateEntity(ctx context.Context, typ Concept) (Concept, error)

	// CreateRelation creates a new relation instance of the given type.
	CreateRelation(ctx context.Context, typ Concept) (Concept, error)

	// CreateAttribute returns the attribute instance of the given type with
	// the given value, creating it if it does not exist. Attribute instances
	// are unique per (type, value).
	CreateAttribute(ctx context.Context, typ Concept, value any) (Concept, error)

	// AttachRolePlayer adds a role player to a relation instance.
	AttachRolePlayer(ctx context.Context, relation Concept, role string, player Concept) error

	// AttachAttribute attaches an attribute instance to an owner concept.
	AttachAttribute(ctx context.Context, owner, attribute Concept) error
}
