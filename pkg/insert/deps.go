package insert

import (
	"sort"
	"strings"

	"github.com/tesseradb/tessera/pkg/pattern"
)

// plan holds everything the executor needs to order one insert operation:
// the flattened statement set, the equivalence partition over vars, and the
// statement-to-statement dependency relation. deps[a] containing b means b
// must execute before a.
type plan struct {
	statements []pattern.Statement
	equivalent *partition
	deps       multimap[pattern.Statement, pattern.Statement]
}

// newPlan computes the equivalence partition and the dependency relation for
// the given statements.
//
// Two intermediate many-to-many relations are composed into one:
//
//	propDeps[stmt] = vars the statement requires
//	varDeps[var]   = statements producing the var
//	deps           = propDeps ∘ varDeps
//
// The partition is computed first and both intermediate relations are keyed
// by canonical vars, so composed edges reflect merged requirement sets: a
// statement requiring any var of a class depends on every producer of the
// whole class. A var with multiple producers makes its consumers depend on
// all of them; the sorter tolerates the redundant edges.
func newPlan(statements []pattern.Statement) *plan {
	equivalent := newPartition()

	// Uniquely-identifying statements with equal property content on
	// distinct vars prove those vars denote one concept. Merge order does
	// not matter; union is commutative and associative.
	identifying := make(map[pattern.Property][]pattern.Var)
	for _, s := range statements {
		if s.UniquelyIdentifying() {
			identifying[s.Prop] = append(identifying[s.Prop], s.Var)
		}
	}
	for _, vars := range identifying {
		for _, v := range vars[1:] {
			equivalent.merge(vars[0], v)
		}
	}

	propDeps := make(multimap[pattern.Statement, pattern.Var])
	varDeps := make(multimap[pattern.Var, pattern.Statement])
	for _, s := range statements {
		for _, v := range s.RequiredVars() {
			propDeps.put(s, equivalent.canonical(v))
		}
		for _, v := range s.ProducedVars() {
			varDeps.put(equivalent.canonical(v), s)
		}
	}

	return &plan{
		statements: statements,
		equivalent: equivalent,
		deps:       compose(propDeps, varDeps),
	}
}

// printable reconstructs the pattern fragment of a var for error messages:
// the var together with every property asserted about it. Only used on
// failure paths, so the linear scan is fine.
func (p *plan) printable(v pattern.Var) string {
	var frags []string
	for _, s := range p.statements {
		if s.Var == v {
			frags = append(frags, s.Prop.String())
		}
	}
	if len(frags) == 0 {
		return v.String()
	}
	sort.Strings(frags)
	return v.String() + " " + strings.Join(frags, ", ")
}
