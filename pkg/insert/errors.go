package insert

import (
	"fmt"

	"github.com/tesseradb/tessera/pkg/graph"
)

// Sentinel errors for the insert engine. Typed wrappers below carry the
// reconstructed pattern of the offending var so callers can locate the
// fragment; match with errors.Is against the sentinels.
var (
	ErrCyclicInsert    = fmt.Errorf("cyclic dependency between inserted concepts")
	ErrUndefinedVar    = fmt.Errorf("var has no defining statement or binding")
	ErrConceptExists   = fmt.Errorf("concept already exists")
	ErrSelfReferential = fmt.Errorf("self-referential construction")
)

// CycleError reports that no valid insert order exists. Pattern names one
// var drawn from the remaining edges.
type CycleError struct {
	Pattern string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCyclicInsert, e.Pattern)
}

func (e *CycleError) Unwrap() error { return ErrCyclicInsert }

// UndefinedVarError reports a var with no path to a constructed concept.
type UndefinedVarError struct {
	Pattern string
}

func (e *UndefinedVarError) Error() string {
	return fmt.Sprintf("%v: %s", ErrUndefinedVar, e.Pattern)
}

func (e *UndefinedVarError) Unwrap() error { return ErrUndefinedVar }

// DuplicateDefinitionError reports a builder request for a var already
// resolved to a concept. Existing carries the conflicting concept.
type DuplicateDefinitionError struct {
	Pattern  string
	Existing graph.Concept
}

func (e *DuplicateDefinitionError) Error() string {
	return fmt.Sprintf("%v: %s already resolves to %s", ErrConceptExists, e.Pattern, e.Existing)
}

func (e *DuplicateDefinitionError) Unwrap() error { return ErrConceptExists }

// SelfReferenceError reports that forcing a var's builder transitively
// required the var itself.
type SelfReferenceError struct {
	Pattern string
}

func (e *SelfReferenceError) Error() string {
	return fmt.Sprintf("%v: %s", ErrSelfReferential, e.Pattern)
}

func (e *SelfReferenceError) Unwrap() error { return ErrSelfReferential }
