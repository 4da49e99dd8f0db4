package symbols

import (
	"errors"
	"testing"

	"github.com/funvibe/cpptrans/internal/ast"
	"github.com/funvibe/cpptrans/internal/diagnostics"
)

func TestDefineRejectsDuplicateInSameScope(t *testing.T) {
	s := NewScopes("unit")
	s.Enter("A", ScopeClass)
	if err := s.Define(&Symbol{Name: "x", Kind: VariableSymbol, Type: "int"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := s.Define(&Symbol{Name: "x", Kind: VariableSymbol, Type: "String"})
	if !errors.Is(err, &diagnostics.DiagnosticError{Code: diagnostics.ErrS001}) {
		t.Fatalf("expected S001, got %v", err)
	}
}

func TestShadowingAcrossScopes(t *testing.T) {
	s := NewScopes("unit")
	s.Enter("A", ScopeClass)
	mustDefine(t, s, &Symbol{Name: "x", Kind: VariableSymbol, Type: "int"})
	s.Enter("m_f", ScopeMethod)
	mustDefine(t, s, &Symbol{Name: "x", Kind: ParameterSymbol, Type: "String"})

	sym, ok := s.Lookup("x")
	if !ok || sym.Type != "String" {
		t.Fatalf("inner binding should win, got %+v", sym)
	}
	s.Exit()
	sym, _ = s.Lookup("x")
	if sym.Type != "int" {
		t.Errorf("outer binding after exit = %q, want int", sym.Type)
	}
}

func TestLookupLocalAndVariable(t *testing.T) {
	s := NewScopes("unit")
	mustDefine(t, s, &Symbol{Name: "A", Kind: ClassSymbol})
	s.Enter("A", ScopeClass)
	mustDefine(t, s, &Symbol{Name: "field", Kind: VariableSymbol, Type: "int"})
	s.Enter("m_f", ScopeMethod)
	mustDefine(t, s, &Symbol{Name: "p", Kind: ParameterSymbol, Type: "int"})
	s.Enter("block", ScopeBlock)

	if _, ok := s.LookupLocal("p"); ok {
		t.Error("LookupLocal must not search outer scopes")
	}
	if _, ok := s.LookupVariable("p"); !ok {
		t.Error("parameter should be visible as a variable")
	}
	if _, ok := s.LookupVariable("field"); ok {
		t.Error("fields must not be reported as variables")
	}
	if sym, ok := s.Lookup("A"); !ok || sym.Kind != ClassSymbol {
		t.Error("class symbol should be visible from nested scopes")
	}
	if s.Current().EnclosingClass().Name() != "A" {
		t.Error("enclosing class scope not found")
	}
}

func TestMarkAndReenter(t *testing.T) {
	s := NewScopes("unit")
	node := ast.New("MethodDeclaration")
	s.Enter("m_f", ScopeMethod)
	mustDefine(t, s, &Symbol{Name: "k", Kind: ParameterSymbol, Type: "int"})
	s.Mark(node)
	s.Exit()

	cursor := s.Fork()
	if _, ok := cursor.Lookup("k"); ok {
		t.Fatal("k should not be visible at the root")
	}
	if !cursor.Reenter(node) {
		t.Fatal("expected a mark on node")
	}
	if sym, ok := cursor.Lookup("k"); !ok || sym.Type != "int" {
		t.Errorf("re-entered scope lost k: %+v", sym)
	}
	cursor.Exit()
	if cursor.Current() != cursor.Root() {
		t.Error("exit should return to the root")
	}
	if cursor.Reenter(ast.New("Block")) {
		t.Error("unmarked node must not re-enter")
	}
}

func TestFreshNameAvoidsVisibleNames(t *testing.T) {
	s := NewScopes("unit")
	mustDefine(t, s, &Symbol{Name: "tmp1", Kind: VariableSymbol})
	first := s.FreshName("tmp")
	if first == "tmp1" {
		t.Errorf("fresh name collides with existing symbol")
	}
	if second := s.FreshName("tmp"); second == first {
		t.Errorf("fresh names repeat: %s", second)
	}
}

func TestAllKeepsDefinitionOrder(t *testing.T) {
	st := NewSymbolTable("unit")
	for _, n := range []string{"c", "a", "b"} {
		if err := st.Define(&Symbol{Name: n}); err != nil {
			t.Fatal(err)
		}
	}
	var got []string
	for _, sym := range st.All() {
		got = append(got, sym.Name)
	}
	if len(got) != 3 || got[0] != "c" || got[1] != "a" || got[2] != "b" {
		t.Errorf("order = %v", got)
	}
}

func mustDefine(t *testing.T, s *Scopes, sym *Symbol) {
	t.Helper()
	if err := s.Define(sym); err != nil {
		t.Fatalf("define %s: %v", sym.Name, err)
	}
}
