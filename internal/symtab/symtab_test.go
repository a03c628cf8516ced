package symtab

import "testing"

func TestInternReturnsSameSymbolForRepeatedName(t *testing.T) {
	tab := New()
	a := tab.Intern("foo")
	b := tab.Intern("foo")
	if a != b {
		t.Errorf("Intern(foo) = %v then %v, want equal", a, b)
	}
	c := tab.Intern("bar")
	if c == a {
		t.Errorf("distinct names got the same symbol %v", a)
	}
}

func TestLookupFindsInternedName(t *testing.T) {
	tab := New()
	want := tab.Intern("x")
	got, ok := tab.Lookup("x")
	if !ok || got != want {
		t.Errorf("Lookup(x) = (%v, %v), want (%v, true)", got, ok, want)
	}
	if _, ok := tab.Lookup("never-interned"); ok {
		t.Error("Lookup found a name that was never interned")
	}
}

func TestResolveRoundTrips(t *testing.T) {
	tab := New()
	sym := tab.Intern("hello")
	if got := tab.Resolve(sym); got != "hello" {
		t.Errorf("Resolve(%v) = %q, want %q", sym, got, "hello")
	}
}

func TestLenCountsDistinctNames(t *testing.T) {
	tab := New()
	tab.Intern("a")
	tab.Intern("b")
	tab.Intern("a")
	if got := tab.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}
