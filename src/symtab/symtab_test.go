package symtab

import "testing"

func TestNewGlobal(t *testing.T) {
	tabs := New()
	if tabs.Global() != 0 {
		t.Fatalf("Global() = %d, want 0", tabs.Global())
	}
	if tabs.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tabs.Len())
	}
	if len(tabs.Table(0).Symbols) != 0 {
		t.Fatalf("fresh global table is not empty")
	}
}

func TestNewChildParent(t *testing.T) {
	tabs := New()
	child := tabs.NewChild(tabs.Global())
	if child == tabs.Global() {
		t.Fatalf("child table reused global index")
	}
	parent := tabs.Table(child).Parent
	if parent == nil || *parent != tabs.Global() {
		t.Fatalf("child table parent = %v, want &0", parent)
	}
	if tabs.Table(tabs.Global()).Parent != nil {
		t.Fatalf("global table must have no parent")
	}
}

func TestIterFromNearestScopeFirst(t *testing.T) {
	tabs := New()
	g := tabs.Global()
	tabs.Append(g, Symbol{Id: "x", Address: 0, Kind: Scalar{Scope: Global}})
	tabs.Append(g, Symbol{Id: "y", Address: 4, Kind: Scalar{Scope: Global}})

	fn := tabs.NewChild(g)
	tabs.Append(fn, Symbol{Id: "a", Address: 0, Kind: Scalar{Scope: Argument}})
	tabs.Append(fn, Symbol{Id: "x", Address: 0, Kind: Scalar{Scope: Local}})

	var order []string
	tabs.IterFrom(fn, func(_ int, s Symbol) bool {
		order = append(order, s.Id)
		return true
	})

	want := []string{"x", "a", "y", "x"}
	if len(order) != len(want) {
		t.Fatalf("IterFrom order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("IterFrom order = %v, want %v", order, want)
		}
	}
}

func TestLookupResolvesNearestShadow(t *testing.T) {
	tabs := New()
	g := tabs.Global()
	tabs.Append(g, Symbol{Id: "x", Address: 0, Kind: Scalar{Scope: Global}})

	fn := tabs.NewChild(g)
	tabs.Append(fn, Symbol{Id: "x", Address: 0, Kind: Scalar{Scope: Local}})

	sym, table, ok := tabs.Lookup(fn, "x")
	if !ok {
		t.Fatalf("Lookup did not find shadowing local x")
	}
	if table != fn {
		t.Fatalf("Lookup resolved to table %d, want local table %d", table, fn)
	}
	if sc, isScalar := sym.Kind.(Scalar); !isScalar || sc.Scope != Local {
		t.Fatalf("Lookup resolved to wrong symbol: %+v", sym)
	}
}

func TestLookupFallsThroughToGlobal(t *testing.T) {
	tabs := New()
	g := tabs.Global()
	tabs.Append(g, Symbol{Id: "count", Address: 0, Kind: Scalar{Scope: Global}})

	fn := tabs.NewChild(g)
	_, table, ok := tabs.Lookup(fn, "count")
	if !ok || table != g {
		t.Fatalf("Lookup(count) = (table %d, ok %v), want (table %d, ok true)", table, ok, g)
	}
}

func TestLookupMiss(t *testing.T) {
	tabs := New()
	fn := tabs.NewChild(tabs.Global())
	if _, _, ok := tabs.Lookup(fn, "nope"); ok {
		t.Fatalf("Lookup found a symbol that was never declared")
	}
}

func TestScopeString(t *testing.T) {
	cases := map[Scope]string{Global: "GLOBALE", Argument: "ARGUMENT", Local: "LOCALE"}
	for scope, want := range cases {
		if got := scope.String(); got != want {
			t.Errorf("Scope(%d).String() = %q, want %q", scope, got, want)
		}
	}
}
