// Package pattern models the declarative input of an insert operation: vars
// (placeholders for concepts under construction), properties (atomic
// assertions about a var) and patterns (a var with its properties).
//
// Patterns flatten into statements, the scheduling granule of the insert
// engine. A statement pairs one var with one property and carries structural
// equality, so identical assertions about the same var deduplicate and
// identical uniquely-identifying assertions across different vars can be
// detected.
package pattern

import (
	"context"
	"strings"
)

// Statement is one (var, property) unit. Statements are immutable values and
// valid map keys.
type Statement struct {
	Var  Var
	Prop Property
}

// RequiredVars lists vars that must resolve before the statement executes.
func (s Statement) RequiredVars() []Var {
	return s.Prop.RequiredVars(s.Var)
}

// ProducedVars lists vars this statement helps establish.
func (s Statement) ProducedVars() []Var {
	return s.Prop.ProducedVars(s.Var)
}

// UniquelyIdentifying reports whether the statement's property content
// identifies the concept on its own.
func (s Statement) UniquelyIdentifying() bool {
	return s.Prop.UniquelyIdentifying()
}

// Execute runs the statement against the executor.
func (s Statement) Execute(ctx context.Context, ex Executor) error {
	return s.Prop.Execute(ctx, s.Var, ex)
}

func (s Statement) String() string {
	return s.Var.String() + " " + s.Prop.String()
}

// VarPattern is one input pattern: a subject var and the properties asserted
// about it.
type VarPattern struct {
	Var   Var
	Props []Property
}

// New starts a pattern for the given var.
func New(v Var) *VarPattern {
	return &VarPattern{Var: v}
}

// Type asserts the subject is the schema type with the given label.
func (p *VarPattern) Type(label string) *VarPattern {
	p.Props = append(p.Props, TypeProperty{TypeLabel: label})
	return p
}

// Isa asserts the subject is an instance of the type var.
func (p *VarPattern) Isa(t Var) *VarPattern {
	p.Props = append(p.Props, IsaProperty{Type: t})
	return p
}

// Val asserts the subject attribute's value.
func (p *VarPattern) Val(v any) *VarPattern {
	p.Props = append(p.Props, ValueProperty{Value: v})
	return p
}

// Rel asserts a role player of the subject relation.
func (p *VarPattern) Rel(role string, player Var) *VarPattern {
	p.Props = append(p.Props, RolePlayerProperty{Role: role, Player: player})
	return p
}

// Has asserts the subject owns the attribute var.
func (p *VarPattern) Has(a Var) *VarPattern {
	p.Props = append(p.Props, HasProperty{Attribute: a})
	return p
}

// Statements flattens the pattern into atomic statement units.
func (p *VarPattern) Statements() []Statement {
	out := make([]Statement, 0, len(p.Props))
	for _, prop := range p.Props {
		out = append(out, Statement{Var: p.Var, Prop: prop})
	}
	return out
}

func (p *VarPattern) String() string {
	if len(p.Props) == 0 {
		return p.Var.String()
	}
	frags := make([]string, 0, len(p.Props))
	for _, prop := range p.Props {
		frags = append(frags, prop.String())
	}
	return p.Var.String() + " " + strings.Join(frags, ", ")
}

// Flatten decomposes a collection of patterns into the full statement set,
// preserving input order and dropping duplicate units.
func Flatten(patterns []*VarPattern) []Statement {
	seen := make(map[Statement]struct{})
	var out []Statement
	for _, p := range patterns {
		for _, s := range p.Statements() {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
