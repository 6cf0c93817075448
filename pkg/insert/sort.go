package insert

import "github.com/tesseradb/tessera/pkg/pattern"

// sortStatements produces a valid linear order of the plan's statements
// using Kahn's algorithm: repeatedly emit a statement with no remaining
// dependencies and drop its outgoing edges. The dependency relation and its
// exact inverse are mutated together so they stay symmetric.
//
// Selection among simultaneously-ready statements is FIFO over flattening
// order; any ready choice would be valid. If edges remain once the queue
// drains, the statements left form at least one cycle and the operation
// cannot succeed.
func (p *plan) sortStatements() ([]pattern.Statement, error) {
	deps := p.deps.clone()
	inverse := invert(deps)

	var ready []pattern.Statement
	for _, s := range p.statements {
		if len(deps[s]) == 0 {
			ready = append(ready, s)
		}
	}

	sorted := make([]pattern.Statement, 0, len(p.statements))
	for len(ready) > 0 {
		s := ready[0]
		ready = ready[1:]
		sorted = append(sorted, s)

		// Copy: removal mutates the set under iteration otherwise.
		dependents := make([]pattern.Statement, 0, len(inverse[s]))
		for d := range inverse[s] {
			dependents = append(dependents, d)
		}
		for _, d := range dependents {
			deps.remove(d, s)
			inverse.remove(s, d)
			if len(deps[d]) == 0 {
				ready = append(ready, d)
			}
		}
	}

	if len(deps) > 0 {
		return nil, &CycleError{Pattern: p.printable(cycleWitness(deps))}
	}
	return sorted, nil
}

// cycleWitness picks one var from the remaining edges for diagnostics. The
// choice is arbitrary but deterministic: the lexicographically least name.
func cycleWitness(deps multimap[pattern.Statement, pattern.Statement]) pattern.Var {
	var witness pattern.Var
	first := true
	for s := range deps {
		if first || s.Var.Name < witness.Name {
			witness = s.Var
			first = false
		}
	}
	return witness
}
