package insert

// multimap is a many-to-many relation: a mapping from key to a set of
// values. The insert planner composes two of these into the statement
// dependency relation, and the sorter maintains one together with its exact
// inverse.
type multimap[K, V comparable] map[K]map[V]struct{}

func (m multimap[K, V]) put(k K, v V) {
	set, ok := m[k]
	if !ok {
		set = make(map[V]struct{})
		m[k] = set
	}
	set[v] = struct{}{}
}

// remove deletes one (k, v) entry, dropping the key once its set drains.
func (m multimap[K, V]) remove(k K, v V) {
	set, ok := m[k]
	if !ok {
		return
	}
	delete(set, v)
	if len(set) == 0 {
		delete(m, k)
	}
}

func (m multimap[K, V]) clone() multimap[K, V] {
	out := make(multimap[K, V], len(m))
	for k, set := range m {
		cp := make(map[V]struct{}, len(set))
		for v := range set {
			cp[v] = struct{}{}
		}
		out[k] = cp
	}
	return out
}

// invert returns the exact inverse relation: (v, k) for every (k, v).
func invert[K, V comparable](m multimap[K, V]) multimap[V, K] {
	out := make(multimap[V, K])
	for k, set := range m {
		for v := range set {
			out.put(v, k)
		}
	}
	return out
}

// compose treats the two multimaps as many-to-many relations and composes
// them: (k, v) is in the result iff some t has (k, t) in a and (t, v) in b.
func compose[K, T, V comparable](a multimap[K, T], b multimap[T, V]) multimap[K, V] {
	out := make(multimap[K, V])
	for k, mids := range a {
		for t := range mids {
			for v := range b[t] {
				out.put(k, v)
			}
		}
	}
	return out
}
