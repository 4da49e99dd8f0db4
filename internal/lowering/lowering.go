// Package lowering rewrites a source class tree into the explicit form the
// emitter prints: mangled method names, an explicit receiver parameter,
// initializer methods paired with every constructor, field references made
// explicit and console output turned into stream segments.
//
// Lowering never modifies its input. Every rewritten node is a fresh node;
// unchanged subtrees are shared.
package lowering

import (
	"fmt"

	"github.com/funvibe/cpptrans/internal/ast"
	"github.com/funvibe/cpptrans/internal/classes"
	"github.com/funvibe/cpptrans/internal/config"
	"github.com/funvibe/cpptrans/internal/diagnostics"
	"github.com/funvibe/cpptrans/internal/overload"
	"github.com/funvibe/cpptrans/internal/symbols"
)

// Lowerer carries the state of one lowering run.
type Lowerer struct {
	scopes   *symbols.Scopes
	registry *classes.Registry
	typer    *overload.Resolver

	// per class
	profile *classes.ClassProfile
	// per method: LocalTypes key of the body being lowered
	method string
	// lowering a class-level field initializer
	fieldInit bool
}

func New(scopes *symbols.Scopes, registry *classes.Registry) *Lowerer {
	return &Lowerer{scopes: scopes, registry: registry, typer: overload.NewResolver(registry)}
}

// Unit is the result of lowering one compilation unit.
type Unit struct {
	// Classes holds the lowered class declarations that succeeded, in
	// translation order: every class after its superclass.
	Classes []*ast.Node
	// Order lists every class name found, in translation order.
	Order []string
	// Errors holds one entry per failed class.
	Errors []*diagnostics.DiagnosticError
}

// LowerUnit lowers every class declaration of a CompilationUnit. A failure
// aborts only the class it occurs in; its subclasses then fail with C001
// because the class never becomes registered.
func (l *Lowerer) LowerUnit(unit *ast.Node) *Unit {
	out := &Unit{}
	var decls []*ast.Node
	for _, n := range unit.Nodes() {
		if !n.Is("ClassDeclaration") {
			continue
		}
		err := l.scopes.Define(&symbols.Symbol{Name: n.Leaf(1), Kind: symbols.ClassSymbol, Pos: n.Pos})
		if err != nil {
			out.Order = append(out.Order, n.Leaf(1))
			out.Errors = append(out.Errors, asDiagnostic(err, n).InClass(n.Leaf(1)))
			continue
		}
		decls = append(decls, n)
	}

	for _, decl := range Order(decls) {
		name := decl.Leaf(1)
		out.Order = append(out.Order, name)
		lowered, err := l.LowerClass(decl)
		if err != nil {
			out.Errors = append(out.Errors, asDiagnostic(err, decl).InClass(name))
			continue
		}
		out.Classes = append(out.Classes, lowered)
	}
	return out
}

// Order sorts class declarations so that each class follows its declared
// superclass, keeping source order otherwise. A superclass that is not
// declared in the unit does not hold a class back; lowering reports C001
// unless it is a built-in. Classes on an inheritance cycle are appended
// last in source order and fail the same way.
func Order(decls []*ast.Node) []*ast.Node {
	declared := make(map[string]bool, len(decls))
	for _, d := range decls {
		declared[d.Leaf(1)] = true
	}

	placed := make(map[string]bool, len(decls))
	ordered := make([]*ast.Node, 0, len(decls))
	remaining := decls
	for progress := true; progress && len(remaining) > 0; {
		progress = false
		var next []*ast.Node
		for _, d := range remaining {
			super := SuperclassName(d)
			if super == "" || !declared[super] || placed[super] {
				ordered = append(ordered, d)
				placed[d.Leaf(1)] = true
				progress = true
				continue
			}
			next = append(next, d)
		}
		remaining = next
	}
	return append(ordered, remaining...)
}

// SuperclassName returns the declared superclass of a ClassDeclaration,
// or "" when it extends the root class.
func SuperclassName(decl *ast.Node) string {
	ext := decl.Node(3)
	if ext == nil {
		return ""
	}
	name := ast.TypeName(ext.Node(0))
	if name == config.RootClassName {
		return ""
	}
	return name
}

func asDiagnostic(err error, at *ast.Node) *diagnostics.DiagnosticError {
	if de, ok := err.(*diagnostics.DiagnosticError); ok {
		if !de.Pos.IsValid() {
			de.Pos = at.Pos
		}
		return de
	}
	return diagnostics.Wrap(diagnostics.ErrE001, at.Pos, err)
}

func unsupported(n *ast.Node, what string) error {
	return diagnostics.NewError(diagnostics.ErrE001, n.Pos, fmt.Sprintf("%s %s is not supported", what, n.Name))
}
