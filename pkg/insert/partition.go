package insert

import "github.com/tesseradb/tessera/pkg/pattern"

// partition is a union-find structure over vars. Vars merged into one class
// provably denote the same concept; canonical returns the class
// representative, which is stable within one insert operation.
type partition struct {
	parent map[pattern.Var]pattern.Var
	rank   map[pattern.Var]int
}

func newPartition() *partition {
	return &partition{
		parent: make(map[pattern.Var]pattern.Var),
		rank:   make(map[pattern.Var]int),
	}
}

// canonical returns the representative of v's class, adding v as a singleton
// if unseen. Performs path compression.
func (p *partition) canonical(v pattern.Var) pattern.Var {
	root, ok := p.parent[v]
	if !ok {
		p.parent[v] = v
		return v
	}
	if root == v {
		return v
	}
	root = p.canonical(root)
	p.parent[v] = root
	return root
}

// merge unions the classes of a and b, by rank.
func (p *partition) merge(a, b pattern.Var) {
	ra, rb := p.canonical(a), p.canonical(b)
	if ra == rb {
		return
	}
	if p.rank[ra] < p.rank[rb] {
		ra, rb = rb, ra
	}
	p.parent[rb] = ra
	if p.rank[ra] == p.rank[rb] {
		p.rank[ra]++
	}
}
