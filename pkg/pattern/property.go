package pattern

import (
	"context"

	"github.com/tesseradb/tessera/pkg/graph"
)

// Property is one atomic declarative assertion about a var. Implementations
// must be comparable value types over scalar fields: statements are used as
// map keys and equal content across two vars is what proves equivalence for
// uniquely-identifying properties.
type Property interface {
	// RequiredVars lists vars whose concepts must be resolvable before this
	// property executes on subject.
	RequiredVars(subject Var) []Var

	// ProducedVars lists vars this property helps establish.
	ProducedVars(subject Var) []Var

	// UniquelyIdentifying reports whether equal content of this property on
	// two distinct vars proves the vars denote one concept.
	UniquelyIdentifying() bool

	// Execute applies the property, contributing constraints to builders or
	// attaching to already-built concepts via the executor.
	Execute(ctx context.Context, subject Var, ex Executor) error

	// String returns the Graql-like fragment of the property, without the
	// subject var (e.g. `isa $t`, `type "person"`).
	String() string
}

// Builder accumulates construction constraints for a var whose concept has
// not been materialized yet. Deferred var references (type vars, role
// players) are resolved through the executor when the builder is forced.
type Builder interface {
	// Isa sets the already-resolved type of the concept.
	Isa(typ graph.Concept)

	// Label marks the concept as the schema type with the given label,
	// resolved against the backend at build time.
	Label(label string)

	// Value sets the scalar value for an attribute concept.
	Value(v any)

	// RolePlayer records a role player to attach once the relation exists.
	// The player var is resolved at build time.
	RolePlayer(role string, player Var)
}

// Executor is the engine-side surface properties execute against. The insert
// package provides the implementation; properties only ever see this
// interface.
type Executor interface {
	// Get returns the concept for a var, forcing a pending builder on demand.
	Get(ctx context.Context, v Var) (graph.Concept, error)

	// Builder returns the builder for a var, failing if the var has already
	// been materialized.
	Builder(v Var) (Builder, error)

	// TryBuilder is Builder, except it reports false instead of failing when
	// the var is already materialized.
	TryBuilder(v Var) (Builder, bool)

	// Backend exposes the storage backend for attach operations on concepts
	// that are already built.
	Backend() graph.Backend
}
