package symbols

import (
	"fmt"
	"slices"

	"github.com/funvibe/cpptrans/internal/diagnostics"
	"github.com/funvibe/cpptrans/internal/token"
)

type SymbolKind int

type ScopeType int

const (
	ScopeUnit   ScopeType = iota // Compilation unit: class names
	ScopeClass                   // Fields, methods, superclass
	ScopeMethod                  // Parameters and receiver
	ScopeBlock                   // Locals
)

const (
	FunctionSymbol SymbolKind = iota
	ParameterSymbol
	VariableSymbol
	SuperclassSymbol
	ClassSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case FunctionSymbol:
		return "function"
	case ParameterSymbol:
		return "parameter"
	case VariableSymbol:
		return "variable"
	case SuperclassSymbol:
		return "superclass"
	case ClassSymbol:
		return "class"
	}
	return fmt.Sprintf("SymbolKind(%d)", int(k))
}

// Symbol is a named entity. Type is the declared source type name; for a
// function it is the space-joined parameter type list, and "" stands for
// no type.
type Symbol struct {
	Name      string
	Kind      SymbolKind
	Type      string
	Modifiers []string
	Pos       token.Position
}

func (s *Symbol) HasModifier(m string) bool {
	return slices.Contains(s.Modifiers, m)
}

func (s *Symbol) IsStatic() bool {
	return s.HasModifier("static")
}

// SymbolTable is one lexical scope linked to its enclosing scope.
type SymbolTable struct {
	name      string
	scopeType ScopeType
	outer     *SymbolTable
	store     map[string]*Symbol
	order     []string
}

// NewSymbolTable creates the root scope of a compilation unit.
func NewSymbolTable(name string) *SymbolTable {
	return &SymbolTable{name: name, scopeType: ScopeUnit, store: make(map[string]*Symbol)}
}

func NewEnclosedSymbolTable(outer *SymbolTable, name string, scopeType ScopeType) *SymbolTable {
	st := NewSymbolTable(name)
	st.outer = outer
	st.scopeType = scopeType
	return st
}

func (s *SymbolTable) Name() string         { return s.name }
func (s *SymbolTable) ScopeType() ScopeType { return s.scopeType }
func (s *SymbolTable) Outer() *SymbolTable  { return s.outer }
func (s *SymbolTable) IsClassScope() bool   { return s.scopeType == ScopeClass }
func (s *SymbolTable) IsDefinedLocally(name string) bool {
	_, ok := s.store[name]
	return ok
}

// Define adds a symbol to this scope. Redefining a name already bound in
// this same scope is an S001 error; shadowing an outer binding is fine.
func (s *SymbolTable) Define(sym *Symbol) error {
	if prev, ok := s.store[sym.Name]; ok {
		msg := fmt.Sprintf("%s %q already defined in %s", sym.Kind, sym.Name, s.name)
		if prev.Pos.IsValid() {
			msg += " at " + prev.Pos.String()
		}
		return diagnostics.NewError(diagnostics.ErrS001, sym.Pos, msg)
	}
	s.store[sym.Name] = sym
	s.order = append(s.order, sym.Name)
	return nil
}

// FindWithScope returns the symbol and the scope where it was defined.
func (s *SymbolTable) FindWithScope(name string) (*Symbol, *SymbolTable, bool) {
	for st := s; st != nil; st = st.outer {
		if sym, ok := st.store[name]; ok {
			return sym, st, true
		}
	}
	return nil, nil, false
}

func (s *SymbolTable) Find(name string) (*Symbol, bool) {
	sym, _, ok := s.FindWithScope(name)
	return sym, ok
}

// FindLocal searches this scope only.
func (s *SymbolTable) FindLocal(name string) (*Symbol, bool) {
	sym, ok := s.store[name]
	return sym, ok
}

// FindVariable searches method and block scopes outward, stopping before
// the enclosing class scope. Fields are therefore never returned.
func (s *SymbolTable) FindVariable(name string) (*Symbol, bool) {
	for st := s; st != nil && st.scopeType >= ScopeMethod; st = st.outer {
		if sym, ok := st.store[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// All returns the symbols of this scope in definition order.
func (s *SymbolTable) All() []*Symbol {
	out := make([]*Symbol, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.store[name])
	}
	return out
}

// EnclosingClass returns the nearest class scope, or nil.
func (s *SymbolTable) EnclosingClass() *SymbolTable {
	for st := s; st != nil; st = st.outer {
		if st.scopeType == ScopeClass {
			return st
		}
	}
	return nil
}
