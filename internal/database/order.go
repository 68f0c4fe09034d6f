package database

import "sort"

// dependencyOrder sorts tables so that every table appears after the
// tables it references via a foreign key (parents before children). Ties
// break by name so the order is deterministic. Tables caught in a
// reference cycle cannot be ordered; they are appended at the end in name
// order rather than failing the run, since the destination carries no
// constraints anyway.
func dependencyOrder(tables []Table) []Table {
	byName := make(map[string]Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}

	// children[p] lists tables with a foreign key to p.
	children := make(map[string][]string)
	indegree := make(map[string]int, len(tables))
	for _, t := range tables {
		indegree[t.Name] = 0
	}
	for _, t := range tables {
		seen := make(map[string]bool)
		for _, fk := range t.ForeignKeys {
			// Self-references and references to tables outside the
			// reflected set do not constrain the order.
			if fk.RefTable == t.Name || seen[fk.RefTable] {
				continue
			}
			if _, ok := byName[fk.RefTable]; !ok {
				continue
			}
			seen[fk.RefTable] = true
			children[fk.RefTable] = append(children[fk.RefTable], t.Name)
			indegree[t.Name]++
		}
	}

	var ready []string
	for name, deg := range indegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	ordered := make([]Table, 0, len(tables))
	emitted := make(map[string]bool, len(tables))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		ordered = append(ordered, byName[name])
		emitted[name] = true

		for _, child := range children[name] {
			indegree[child]--
			if indegree[child] == 0 {
				ready = append(ready, child)
			}
		}
		sort.Strings(ready)
	}

	if len(ordered) < len(tables) {
		var rest []string
		for _, t := range tables {
			if !emitted[t.Name] {
				rest = append(rest, t.Name)
			}
		}
		sort.Strings(rest)
		for _, name := range rest {
			ordered = append(ordered, byName[name])
		}
	}

	return ordered
}

// reverseTables returns a reversed copy. The orchestrator walks tables in
// reverse dependency order to match the reference behavior; because
// destination tables carry no foreign keys, the direction has no
// correctness consequence today, but it is kept as an explicit, named
// choice rather than an accident.
func reverseTables(tables []Table) []Table {
	out := make([]Table, len(tables))
	for i, t := range tables {
		out[len(tables)-1-i] = t
	}
	return out
}
