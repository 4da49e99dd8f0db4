package emitter

import (
	"slices"

	"github.com/funvibe/cpptrans/internal/ast"
	"github.com/funvibe/cpptrans/internal/config"
	"github.com/funvibe/cpptrans/internal/naming"
)

// source renders the definition surface: constructor, method bodies,
// static field definitions, the class object, the dispatch table instance
// and the array class literals.
func (c *classEmitter) source() string {
	p := NewCodePrinter()
	c.p = p
	name := c.profile.Name
	st := "__" + name

	p.line(`#include "` + name + config.HeaderExt + `"`)
	for _, other := range c.order {
		if other != name {
			p.line(`#include "` + other + config.HeaderExt + `"`)
		}
	}
	p.line("")
	p.open("namespace " + c.opts.Namespace)
	p.line("")

	for _, ctor := range members(c.decl, "ConstructorDeclaration") {
		c.constructor(ctor)
		p.line("")
	}
	for _, m := range members(c.decl, "MethodDeclaration") {
		if m.Leaf(3) == config.MainName && slices.Contains(ast.ModifierWords(m.Node(0)), "static") {
			continue
		}
		c.methodDefinition(m)
		p.line("")
	}
	if c.staticFields() {
		p.line("")
	}

	p.open(config.ClassClassName + " " + st + "::" + config.ClassFuncName + "()")
	p.line("static " + config.ClassClassName + " k =")
	p.line(`  new java::lang::__Class(__rt::literal("` + name + `"), ` +
		c.structName(c.profile.SuperName()) + "::" + config.ClassFuncName + "());")
	p.line("return k;")
	p.close("")
	p.line("")
	p.line(st + "_VT " + st + "::" + config.VTableName + ";")
	p.line("")
	p.close("")
	p.line("")

	c.arrayClassLiterals()
	return p.String()
}

// constructor prints the target constructor, which only binds the
// dispatch table.
func (c *classEmitter) constructor(ctor *ast.Node) {
	st := "__" + c.profile.Name
	text := st + "::" + st + "()"
	for i, in := range ctor.Node(5).Nodes() {
		if i == 0 {
			text += " : "
		} else {
			text += ", "
		}
		text += in.Leaf(0) + "(" + in.Leaf(1) + ")"
	}
	c.p.line(text + " {}")
}

// methodDefinition prints one method body within the scopes lowering
// marked on it.
func (c *classEmitter) methodDefinition(m *ast.Node) {
	if c.scopes.Reenter(m) {
		defer c.scopes.Exit()
	}
	c.method = methodKey(m)
	c.checked = make(map[string]bool)
	defer func() { c.method = "" }()

	sig := typeString(m.Node(2), 0) + " __" + c.profile.Name + "::" + m.Leaf(3) + "(" + params(m.Node(4)) + ")"
	body := m.Node(7)
	if body == nil {
		c.fail(m, "method %s has no body", m.Leaf(3))
		return
	}
	c.p.open(sig)
	c.statements(body)
	c.p.close("")
}

// staticFields defines the class's static fields with their initializers.
func (c *classEmitter) staticFields() bool {
	printed := false
	for _, f := range c.profile.Fields {
		if !f.Static {
			continue
		}
		text := naming.TargetType(f.Type) + " __" + c.profile.Name + "::" + f.Name
		if init := fieldInitializer(c.decl, f.Name); init != nil {
			c.withClassScope(c.decl, func() {
				text += " = " + c.expr(init, precAssign, true)
			})
		}
		c.p.line(text + ";")
		printed = true
	}
	return printed
}

// arrayClassLiterals specializes the runtime array templates' class
// objects for arrays of this class.
func (c *classEmitter) arrayClassLiterals() {
	name := c.profile.Name
	qualified := c.opts.Namespace + "::" + name
	p := c.p
	p.open("namespace __rt")
	for _, arr := range []struct{ template, prefix string }{
		{"Array", "[L"},
		{"Array2D", "[[L"},
	} {
		p.line("template<>")
		p.open("java::lang::Class " + arr.template + "<" + qualified + ">::__class()")
		p.line("static java::lang::Class k =")
		p.line(`  new java::lang::__Class(literal("` + arr.prefix + name + `;"), ` +
			arr.template + "<java::lang::Object>::__class(), " +
			c.opts.Namespace + "::__" + name + "::__class());")
		p.line("return k;")
		p.close("")
	}
	p.close("")
}

// entryBody prints the statements of main for the shared entry point.
func (c *classEmitter) entryBody(m *ast.Node) string {
	p := NewCodePrinter()
	p.indent = 1
	c.p = p
	if c.scopes.Reenter(m) {
		defer c.scopes.Exit()
	}
	c.method = methodKey(m)
	c.checked = make(map[string]bool)
	c.inMain = true
	defer func() { c.method, c.inMain = "", false }()

	if body := m.Node(7); body != nil {
		c.statements(body)
	}
	return p.String()
}
