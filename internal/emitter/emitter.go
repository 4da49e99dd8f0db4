// Package emitter prints lowered classes as target declarations and
// definitions, inserting the runtime safety checks the source language
// performs implicitly: null checks before dereferences, negative array size
// guards and covariant array store checks.
//
// Emission only reads the class registry and the scopes marked during
// lowering, so classes may be emitted concurrently, each with its own
// scope cursor.
package emitter

import (
	"fmt"
	"slices"

	"github.com/funvibe/cpptrans/internal/ast"
	"github.com/funvibe/cpptrans/internal/classes"
	"github.com/funvibe/cpptrans/internal/config"
	"github.com/funvibe/cpptrans/internal/diagnostics"
	"github.com/funvibe/cpptrans/internal/naming"
	"github.com/funvibe/cpptrans/internal/overload"
	"github.com/funvibe/cpptrans/internal/symbols"
	"github.com/funvibe/cpptrans/internal/vtable"
)

// Options control the text the emitter produces.
type Options struct {
	Namespace     string
	RuntimeHeader string
	RuntimeSource string
	Compiler      string
	// AllowUnresolvedCalls degrades a call no overload matches to its
	// unwidened mangled name with a warning instead of failing the class.
	AllowUnresolvedCalls bool
}

// OptionsFrom reads emitter options from a loaded configuration.
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		Namespace:            cfg.Namespace,
		RuntimeHeader:        cfg.Runtime.Header,
		RuntimeSource:        cfg.Runtime.Source,
		Compiler:             cfg.Compiler,
		AllowUnresolvedCalls: cfg.AllowUnresolvedCalls,
	}
}

// DefaultOptions match config.Default.
func DefaultOptions() Options {
	return OptionsFrom(config.Default())
}

// Emitter turns lowered classes into target text. It is safe for
// concurrent use once lowering has finished.
type Emitter struct {
	opts     Options
	registry *classes.Registry
	resolver *overload.Resolver
	order    []string
	decls    map[string]*ast.Node
}

// New prepares an emitter for the lowered classes of one unit, given in
// translation order.
func New(registry *classes.Registry, lowered []*ast.Node, opts Options) *Emitter {
	e := &Emitter{
		opts:     opts,
		registry: registry,
		resolver: overload.NewResolver(registry),
		decls:    make(map[string]*ast.Node, len(lowered)),
	}
	for _, d := range lowered {
		e.order = append(e.order, d.Leaf(1))
		e.decls[d.Leaf(1)] = d
	}
	return e
}

// ClassOutput is the text produced for one class.
type ClassOutput struct {
	Class  string
	Header string
	Source string
	// Entry holds the statements of the class's main method, indented for
	// the entry point body. HasMain is false when the class has none.
	Entry    string
	HasMain  bool
	Warnings []*diagnostics.DiagnosticError
}

// classEmitter carries the state of emitting one class.
type classEmitter struct {
	*Emitter
	scopes  *symbols.Scopes
	decl    *ast.Node
	profile *classes.ClassProfile
	layout  *vtable.Layout
	p       *CodePrinter

	method    string // LocalTypes key of the body being emitted
	inMain    bool
	fieldInit bool

	// checked holds references already null-checked for the current loop.
	// lazy counts the conditionally evaluated operands being rendered;
	// dereferences inside them are checked inline.
	checked  map[string]bool
	lazy     int
	literals map[string]*symbols.Symbol // literal text to first holder

	warnings []*diagnostics.DiagnosticError
	err      *diagnostics.DiagnosticError
}

// EmitClass renders one lowered class. scopes must be a cursor of its own,
// see symbols.Scopes.Fork.
func (e *Emitter) EmitClass(scopes *symbols.Scopes, decl *ast.Node) (*ClassOutput, error) {
	name := decl.Leaf(1)
	profile, err := e.registry.MustGet(name)
	if err != nil {
		return nil, err
	}
	layout, err := vtable.Synthesize(e.registry, name)
	if err != nil {
		return nil, err
	}
	c := &classEmitter{
		Emitter:  e,
		scopes:   scopes,
		decl:     decl,
		profile:  profile,
		layout:   layout,
		checked:  make(map[string]bool),
		literals: make(map[string]*symbols.Symbol),
	}

	out := &ClassOutput{Class: name}
	out.Header = c.header()
	out.Source = c.source()
	if m := c.mainMethod(); m != nil {
		out.HasMain = true
		out.Entry = c.entryBody(m)
	}
	if c.err != nil {
		return nil, c.err
	}
	out.Warnings = c.warnings
	return out, nil
}

// fail records the first emission error; emission carries on with a
// placeholder so that the rest of the class is still checked.
func (c *classEmitter) fail(n *ast.Node, format string, args ...any) string {
	if c.err == nil {
		c.err = diagnostics.NewError(diagnostics.ErrE001, n.Pos, fmt.Sprintf(format, args...))
	}
	return "/* unsupported */"
}

func (c *classEmitter) failWith(err *diagnostics.DiagnosticError) {
	if c.err == nil {
		c.err = err
	}
}

func (c *classEmitter) env() overload.Env {
	return overload.Env{Scopes: c.scopes, Class: c.profile.Name}
}

func (c *classEmitter) typeOf(n *ast.Node) string {
	return c.resolver.TypeOf(c.env(), n)
}

// structName names the data struct of class in emitted code.
func (c *classEmitter) structName(class string) string {
	return vtable.StructName(c.registry, class)
}

// members returns the lowered members of the class body with tag.
func members(decl *ast.Node, tag string) []*ast.Node {
	var out []*ast.Node
	for _, m := range decl.Node(5).Nodes() {
		if m.Is(tag) {
			out = append(out, m)
		}
	}
	return out
}

func (c *classEmitter) mainMethod() *ast.Node {
	for _, m := range members(c.decl, "MethodDeclaration") {
		if m.Leaf(3) == config.MainName && slices.Contains(ast.ModifierWords(m.Node(0)), "static") {
			return m
		}
	}
	return nil
}

// methodKey is the LocalTypes key of a lowered method.
func methodKey(m *ast.Node) string {
	if m.Leaf(3) != config.InitName {
		return m.Leaf(3)
	}
	var types []string
	for _, p := range m.Node(4).Nodes() {
		if p.Leaf(3) == config.ThisName {
			continue
		}
		types = append(types, naming.ArrayOf(ast.TypeName(p.Node(1)), p.Node(4).Size()))
	}
	return classes.InitKey(types)
}

// typeString spells a lowered Type node with extra declarator dimensions.
func typeString(n *ast.Node, extraDims int) string {
	return naming.TargetType(naming.ArrayOf(ast.TypeName(n), extraDims))
}

// params renders a lowered parameter list.
func params(list *ast.Node) string {
	out := ""
	for i, p := range list.Nodes() {
		if i > 0 {
			out += ", "
		}
		out += typeString(p.Node(1), p.Node(4).Size()) + " " + p.Leaf(3)
	}
	return out
}

// withClassScope runs fn with the scope of a lowered class declaration
// current, and with class-level initializer semantics.
func (c *classEmitter) withClassScope(decl *ast.Node, fn func()) {
	if decl != nil && c.scopes.Reenter(decl) {
		defer c.scopes.Exit()
	}
	c.fieldInit = true
	defer func() { c.fieldInit = false }()
	fn()
}
