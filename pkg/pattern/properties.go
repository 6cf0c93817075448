package pattern

import (
	"context"
	"fmt"
)

// TypeProperty asserts that the subject is the schema type with the given
// label, e.g. `$t type "person"`. Two vars carrying the same label provably
// denote the same type, so the property is uniquely identifying.
type TypeProperty struct {
	TypeLabel string
}

func (p TypeProperty) RequiredVars(Var) []Var         { return nil }
func (p TypeProperty) ProducedVars(subject Var) []Var { return []Var{subject} }
func (p TypeProperty) UniquelyIdentifying() bool      { return true }

func (p TypeProperty) Execute(ctx context.Context, subject Var, ex Executor) error {
	b, err := ex.Builder(subject)
	if err != nil {
		return err
	}
	b.Label(p.TypeLabel)
	return nil
}

func (p TypeProperty) String() string {
	return fmt.Sprintf("type %q", p.TypeLabel)
}

// IsaProperty asserts the subject is an instance of the type denoted by
// another var, e.g. `$x isa $t`.
type IsaProperty struct {
	Type Var
}

func (p IsaProperty) RequiredVars(Var) []Var         { return []Var{p.Type} }
func (p IsaProperty) ProducedVars(subject Var) []Var { return []Var{subject} }
func (p IsaProperty) UniquelyIdentifying() bool      { return false }

func (p IsaProperty) Execute(ctx context.Context, subject Var, ex Executor) error {
	typ, err := ex.Get(ctx, p.Type)
	if err != nil {
		return err
	}
	b, err := ex.Builder(subject)
	if err != nil {
		return err
	}
	b.Isa(typ)
	return nil
}

func (p IsaProperty) String() string {
	return "isa " + p.Type.String()
}

// ValueProperty asserts the scalar value of an attribute var, e.g.
// `$n == "Alice"`. Attribute instances are unique per (type, value), so equal
// values on two vars identify one concept.
//
// Value must be a scalar (string, bool, integer or float): properties are
// map keys and rely on comparability.
type ValueProperty struct {
	Value any
}

func (p ValueProperty) RequiredVars(Var) []Var         { return nil }
func (p ValueProperty) ProducedVars(subject Var) []Var { return []Var{subject} }
func (p ValueProperty) UniquelyIdentifying() bool      { return true }

func (p ValueProperty) Execute(ctx context.Context, subject Var, ex Executor) error {
	b, err := ex.Builder(subject)
	if err != nil {
		return err
	}
	b.Value(p.Value)
	return nil
}

func (p ValueProperty) String() string {
	return fmt.Sprintf("== %v", p.Value)
}

// RolePlayerProperty asserts that another var plays a role in the subject
// relation, e.g. `$r (spouse: $x)`.
type RolePlayerProperty struct {
	Role   string
	Player Var
}

func (p RolePlayerProperty) RequiredVars(Var) []Var         { return []Var{p.Player} }
func (p RolePlayerProperty) ProducedVars(subject Var) []Var { return []Var{subject} }
func (p RolePlayerProperty) UniquelyIdentifying() bool      { return false }

func (p RolePlayerProperty) Execute(ctx context.Context, subject Var, ex Executor) error {
	if b, ok := ex.TryBuilder(subject); ok {
		// Relation not built yet: accumulate, resolved when forced.
		b.RolePlayer(p.Role, p.Player)
		return nil
	}
	// Relation already materialized: attach directly.
	rel, err := ex.Get(ctx, subject)
	if err != nil {
		return err
	}
	player, err := ex.Get(ctx, p.Player)
	if err != nil {
		return err
	}
	return ex.Backend().AttachRolePlayer(ctx, rel, p.Role, player)
}

func (p RolePlayerProperty) String() string {
	return fmt.Sprintf("(%s: %s)", p.Role, p.Player)
}

// HasProperty asserts ownership of an attribute var by the subject, e.g.
// `$x has $n`. It produces nothing: both concepts must exist before the
// ownership edge can be written.
type HasProperty struct {
	Attribute Var
}

func (p HasProperty) RequiredVars(subject Var) []Var {
	return []Var{subject, p.Attribute}
}
func (p HasProperty) ProducedVars(Var) []Var    { return nil }
func (p HasProperty) UniquelyIdentifying() bool { return false }

func (p HasProperty) Execute(ctx context.Context, subject Var, ex Executor) error {
	owner, err := ex.Get(ctx, subject)
	if err != nil {
		return err
	}
	attr, err := ex.Get(ctx, p.Attribute)
	if err != nil {
		return err
	}
	return ex.Backend().AttachAttribute(ctx, owner, attr)
}

func (p HasProperty) String() string {
	return "has " + p.Attribute.String()
}
