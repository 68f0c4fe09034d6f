package database

import "testing"

func tableNamesOf(tables []Table) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return names
}

func assertOrder(t *testing.T, got []Table, want ...string) {
	t.Helper()
	names := tableNamesOf(got)
	if len(names) != len(want) {
		t.Fatalf("order = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("order = %v, want %v", names, want)
		}
	}
}

func TestDependencyOrderParentsFirst(t *testing.T) {
	tables := []Table{
		{Name: "orders", ForeignKeys: []ForeignKey{{Column: "user_id", RefTable: "users"}}},
		{Name: "order_items", ForeignKeys: []ForeignKey{{Column: "order_id", RefTable: "orders"}}},
		{Name: "users"},
	}

	assertOrder(t, dependencyOrder(tables), "users", "orders", "order_items")
}

func TestDependencyOrderIndependentTablesByName(t *testing.T) {
	tables := []Table{{Name: "zebra"}, {Name: "apple"}, {Name: "mango"}}
	assertOrder(t, dependencyOrder(tables), "apple", "mango", "zebra")
}

func TestDependencyOrderIgnoresSelfAndUnknownReferences(t *testing.T) {
	tables := []Table{
		{Name: "nodes", ForeignKeys: []ForeignKey{
			{Column: "parent_id", RefTable: "nodes"},
			{Column: "ext_id", RefTable: "not_reflected"},
		}},
		{Name: "edges", ForeignKeys: []ForeignKey{{Column: "node_id", RefTable: "nodes"}}},
	}

	assertOrder(t, dependencyOrder(tables), "nodes", "edges")
}

func TestDependencyOrderToleratesCycles(t *testing.T) {
	tables := []Table{
		{Name: "standalone"},
		{Name: "chicken", ForeignKeys: []ForeignKey{{Column: "egg_id", RefTable: "egg"}}},
		{Name: "egg", ForeignKeys: []ForeignKey{{Column: "chicken_id", RefTable: "chicken"}}},
	}

	// The cycle cannot be ordered; its members come last, by name.
	assertOrder(t, dependencyOrder(tables), "standalone", "chicken", "egg")
}

func TestDependencyOrderDeterministic(t *testing.T) {
	tables := []Table{
		{Name: "b", ForeignKeys: []ForeignKey{{RefTable: "d"}}},
		{Name: "a", ForeignKeys: []ForeignKey{{RefTable: "d"}}},
		{Name: "d"},
		{Name: "c"},
	}

	first := tableNamesOf(dependencyOrder(tables))
	for i := 0; i < 10; i++ {
		again := tableNamesOf(dependencyOrder(tables))
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("order not deterministic: %v vs %v", first, again)
			}
		}
	}
}

func TestReverseTables(t *testing.T) {
	tables := []Table{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	assertOrder(t, reverseTables(tables), "c", "b", "a")
	// Input untouched.
	assertOrder(t, tables, "a", "b", "c")
}
