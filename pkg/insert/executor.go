// Package insert implements the insertion-ordering engine of the data
// manipulation layer: it decides a valid execution order for a set of
// declarative statements, detects vars that provably denote the same
// concept, and drives incremental construction of the corresponding graph
// elements against a storage backend.
//
// One Executor serves one insert operation. All state is operation-scoped
// and discarded when InsertAll returns; callers must serialize operations
// sharing a backend.
package insert

import (
	"context"
	"log/slog"
	"sort"

	"github.com/tesseradb/tessera/pkg/graph"
	"github.com/tesseradb/tessera/pkg/pattern"
)

// Executor orders and executes the statements of one insert operation. It is
// the concrete implementation of pattern.Executor that properties run
// against.
type Executor struct {
	backend graph.Backend
	plan    *plan

	// concepts memoizes materialized concepts by canonical var.
	concepts map[pattern.Var]graph.Concept

	// builders holds pending construction state by canonical var. A builder
	// is discarded the moment it is forced.
	builders map[pattern.Var]*conceptBuilder

	// building marks canonical vars whose builder is currently being forced,
	// to fail self-referential construction instead of recursing forever.
	building map[pattern.Var]struct{}
}

// InsertAll executes the patterns against the backend and returns the
// mapping from every user-named var to its concept. bindings optionally
// pre-seeds vars with concepts from a prior read step; pre-seeded vars skip
// the builder lifecycle entirely.
//
// Any error aborts the whole operation with nothing further applied at this
// layer; rollback is the enclosing transaction's concern.
func InsertAll(ctx context.Context, backend graph.Backend, patterns []*pattern.VarPattern, bindings map[pattern.Var]graph.Concept) (map[pattern.Var]graph.Concept, error) {
	statements := pattern.Flatten(patterns)
	ex := &Executor{
		backend:  backend,
		plan:     newPlan(statements),
		concepts: make(map[pattern.Var]graph.Concept, len(bindings)),
		builders: make(map[pattern.Var]*conceptBuilder),
		building: make(map[pattern.Var]struct{}),
	}
	for v, c := range bindings {
		ex.concepts[ex.plan.equivalent.canonical(v)] = c
	}
	return ex.insertAll(ctx, bindings)
}

func (ex *Executor) insertAll(ctx context.Context, bindings map[pattern.Var]graph.Concept) (map[pattern.Var]graph.Concept, error) {
	sorted, err := ex.plan.sortStatements()
	if err != nil {
		return nil, err
	}
	slog.Debug("sorted insert statements", "statements", len(sorted), "bindings", len(bindings))

	for _, s := range sorted {
		if err := s.Execute(ctx, ex); err != nil {
			return nil, err
		}
	}

	// Builders nothing consumed still owe a concept: orphaned vars were
	// defined but never referenced by a later statement.
	if err := ex.buildRemaining(ctx); err != nil {
		return nil, err
	}

	// Expand every var of the operation, merged or not, to its canonical
	// concept; engine-generated vars are scaffolding and stay internal.
	result := make(map[pattern.Var]graph.Concept)
	for v := range ex.allVars(bindings) {
		if !v.UserDefined() {
			continue
		}
		c, ok := ex.concepts[ex.plan.equivalent.canonical(v)]
		if !ok {
			return nil, &UndefinedVarError{Pattern: ex.printable(v)}
		}
		result[v] = c
	}
	return result, nil
}

func (ex *Executor) buildRemaining(ctx context.Context) error {
	remaining := make([]pattern.Var, 0, len(ex.builders))
	for v := range ex.builders {
		remaining = append(remaining, v)
	}
	sort.Slice(remaining, func(i, j int) bool { return remaining[i].Name < remaining[j].Name })
	for _, v := range remaining {
		// A builder may have been forced while building an earlier one.
		if _, ok := ex.builders[v]; !ok {
			continue
		}
		if _, err := ex.Get(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

func (ex *Executor) allVars(bindings map[pattern.Var]graph.Concept) map[pattern.Var]struct{} {
	vars := make(map[pattern.Var]struct{})
	for _, s := range ex.plan.statements {
		vars[s.Var] = struct{}{}
		for _, v := range s.RequiredVars() {
			vars[v] = struct{}{}
		}
		for _, v := range s.ProducedVars() {
			vars[v] = struct{}{}
		}
	}
	for v := range bindings {
		vars[v] = struct{}{}
	}
	return vars
}

// Get returns the concept for a var, materializing it on demand: a pending
// builder is forced with its accumulated constraints and the result is
// memoized. Forcing is recursive through deferred var references, so a
// statement may pull in a concept the scheduler has not visited yet.
func (ex *Executor) Get(ctx context.Context, v pattern.Var) (graph.Concept, error) {
	cv := ex.plan.equivalent.canonical(v)

	if c, ok := ex.concepts[cv]; ok {
		return c, nil
	}

	// The builder is removed from the map while forcing, so an in-progress
	// var must be recognized here or a self-referential chain would be
	// misreported as undefined.
	if _, busy := ex.building[cv]; busy {
		return graph.Concept{}, &SelfReferenceError{Pattern: ex.printable(v)}
	}

	b, ok := ex.builders[cv]
	if !ok {
		return graph.Concept{}, &UndefinedVarError{Pattern: ex.printable(v)}
	}

	ex.building[cv] = struct{}{}
	delete(ex.builders, cv)
	c, err := b.build(ctx, ex)
	delete(ex.building, cv)
	if err != nil {
		return graph.Concept{}, err
	}
	ex.concepts[cv] = c
	return c, nil
}

// Builder returns the builder accumulating constraints for a var. If the
// var's concept has already been materialized the statement is contradictory
// or duplicated, and the error carries the existing concept.
func (ex *Executor) Builder(v pattern.Var) (pattern.Builder, error) {
	b, ok := ex.TryBuilder(v)
	if !ok {
		return nil, &DuplicateDefinitionError{
			Pattern:  ex.printable(v),
			Existing: ex.concepts[ex.plan.equivalent.canonical(v)],
		}
	}
	return b, nil
}

// TryBuilder is Builder, except it reports false instead of failing when the
// var is already materialized. Statements use it to contribute supplementary
// constraints only while construction has not finalized.
func (ex *Executor) TryBuilder(v pattern.Var) (pattern.Builder, bool) {
	cv := ex.plan.equivalent.canonical(v)

	if _, ok := ex.concepts[cv]; ok {
		return nil, false
	}
	if b, ok := ex.builders[cv]; ok {
		return b, true
	}
	b := newConceptBuilder(cv)
	ex.builders[cv] = b
	return b, true
}

// Backend exposes the storage backend for attach operations on concepts that
// already exist.
func (ex *Executor) Backend() graph.Backend { return ex.backend }

func (ex *Executor) printable(v pattern.Var) string {
	return ex.plan.printable(v)
}
