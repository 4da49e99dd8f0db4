package symbols

import (
	"strconv"

	"github.com/funvibe/cpptrans/internal/ast"
)

// Scopes tracks the current position in a tree of SymbolTables.
//
// Lowering enters fresh scopes and marks the nodes it builds with them;
// emission later re-enters those same scopes by node. Marks are written
// only while lowering, so Forks may be read from several goroutines.
type Scopes struct {
	root  *SymbolTable
	stack []*SymbolTable
	marks map[*ast.Node]*SymbolTable
	fresh int
}

func NewScopes(unit string) *Scopes {
	root := NewSymbolTable(unit)
	return &Scopes{root: root, stack: []*SymbolTable{root}, marks: make(map[*ast.Node]*SymbolTable)}
}

// Fork returns a cursor positioned at the root sharing scopes and marks.
func (s *Scopes) Fork() *Scopes {
	return &Scopes{root: s.root, stack: []*SymbolTable{s.root}, marks: s.marks}
}

func (s *Scopes) Root() *SymbolTable    { return s.root }
func (s *Scopes) Current() *SymbolTable { return s.stack[len(s.stack)-1] }

// Enter opens a new scope nested in the current one.
func (s *Scopes) Enter(name string, scopeType ScopeType) *SymbolTable {
	st := NewEnclosedSymbolTable(s.Current(), name, scopeType)
	s.stack = append(s.stack, st)
	return st
}

// Exit returns to the scope that was current before the matching Enter or
// Reenter. The root is never popped.
func (s *Scopes) Exit() {
	if len(s.stack) > 1 {
		s.stack = s.stack[:len(s.stack)-1]
	}
}

func (s *Scopes) Define(sym *Symbol) error {
	return s.Current().Define(sym)
}

func (s *Scopes) Lookup(name string) (*Symbol, bool) {
	return s.Current().Find(name)
}

func (s *Scopes) LookupLocal(name string) (*Symbol, bool) {
	return s.Current().FindLocal(name)
}

func (s *Scopes) LookupVariable(name string) (*Symbol, bool) {
	return s.Current().FindVariable(name)
}

// Mark binds node to the current scope.
func (s *Scopes) Mark(node *ast.Node) {
	s.marks[node] = s.Current()
}

// MarkWith binds node to an explicit scope.
func (s *Scopes) MarkWith(node *ast.Node, st *SymbolTable) {
	s.marks[node] = st
}

// Marked returns the scope bound to node.
func (s *Scopes) Marked(node *ast.Node) (*SymbolTable, bool) {
	st, ok := s.marks[node]
	return st, ok
}

// Reenter makes the scope marked on node current. It reports false and
// leaves the cursor unchanged when node carries no mark.
func (s *Scopes) Reenter(node *ast.Node) bool {
	st, ok := s.marks[node]
	if !ok {
		return false
	}
	s.stack = append(s.stack, st)
	return true
}

// FreshName returns prefix followed by a counter, skipping names already
// visible from the current scope.
func (s *Scopes) FreshName(prefix string) string {
	for {
		s.fresh++
		name := prefix + strconv.Itoa(s.fresh)
		if _, taken := s.Lookup(name); !taken {
			return name
		}
	}
}
