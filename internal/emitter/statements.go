package emitter

import (
	"maps"
	"strings"

	"github.com/funvibe/cpptrans/internal/ast"
	"github.com/funvibe/cpptrans/internal/config"
	"github.com/funvibe/cpptrans/internal/naming"
	"github.com/funvibe/cpptrans/internal/symbols"
)

// statements prints the children of a block inside the block's scope.
func (c *classEmitter) statements(block *ast.Node) {
	if c.scopes.Reenter(block) {
		defer c.scopes.Exit()
	}
	for _, s := range block.Nodes() {
		c.stmt(s)
	}
}

// body prints the body of a compound statement as a brace block.
func (c *classEmitter) body(n *ast.Node) {
	if n.Is("Block") {
		c.statements(n)
		return
	}
	c.stmt(n)
}

func (c *classEmitter) stmt(n *ast.Node) {
	switch n.Name {
	case "Block":
		c.p.line("{")
		c.p.indent++
		c.statements(n)
		c.p.close("")
	case "FieldDeclaration":
		c.local(n)
	case "ExpressionStatement":
		c.expressionStatement(n)
	case "ReturnStatement":
		if e := n.Node(0); e != nil {
			c.guards(e)
			c.p.line("return " + c.expr(e, 0, false) + ";")
		} else {
			c.p.line("return;")
		}
	case "ConditionalStatement":
		c.conditional(n)
	case "WhileStatement":
		restore := c.guardLoop(n.Node(0))
		c.p.open("while (" + c.expr(n.Node(0), 0, false) + ")")
		c.loopBody(n, n.Node(1))
		c.p.close("")
		restore()
	case "DoWhileStatement":
		restore := c.guardLoop(n.Node(1))
		c.p.open("do")
		c.loopBody(n, n.Node(0))
		c.p.close(" while (" + c.expr(n.Node(1), 0, false) + ");")
		restore()
	case "ForStatement":
		c.forStatement(n)
	case "BreakStatement":
		c.p.line("break;")
	case "ContinueStatement":
		c.p.line("continue;")
	case "EmptyStatement":
		c.p.line(";")
	default:
		c.p.line(c.fail(n, "statement %s is not supported", n.Name))
	}
}

func (c *classEmitter) conditional(n *ast.Node) {
	c.guards(n.Node(0))
	c.p.open("if (" + c.expr(n.Node(0), 0, false) + ")")
	c.body(n.Node(1))
	if els := n.Node(2); els != nil {
		c.p.indent--
		c.p.line("} else {")
		c.p.indent++
		c.body(els)
	}
	c.p.close("")
}

// loopBody prints a loop body inside the scope lowering gave the loop.
func (c *classEmitter) loopBody(loop, body *ast.Node) {
	if c.scopes.Reenter(loop) {
		defer c.scopes.Exit()
	}
	c.body(body)
}

// guardLoop checks the references a loop header dereferences once, ahead
// of the loop, and exempts them from checks inside the body. The returned
// func ends the exemption.
func (c *classEmitter) guardLoop(header ...*ast.Node) func() {
	saved := maps.Clone(c.checked)
	for _, name := range c.guards(header...) {
		c.checked[name] = true
	}
	return func() { c.checked = saved }
}

// forStatement checks the init part like a plain statement. Condition
// dereferences of variables the init part does not assign are checked once
// ahead of the loop; every other header dereference is checked where it
// runs. Header checks happen before the loop scope is entered, so only
// variables from outside the loop are hoisted.
func (c *classEmitter) forStatement(n *ast.Node) {
	control := n.Node(0)

	var inits []*ast.Node
	assigned := make(map[string]bool)
	if control.Node(1) != nil {
		for _, d := range control.Node(2).Nodes() {
			inits = append(inits, d.Node(2))
		}
	} else {
		for _, e := range control.Node(2).Nodes() {
			inits = append(inits, e)
			if e.Is("Expression") && e.Node(0).Is("PrimaryIdentifier") {
				assigned[c.identifier(e.Node(0).Leaf(0))] = true
			}
		}
	}
	c.guards(inits...)

	saved := maps.Clone(c.checked)
	defer func() { c.checked = saved }()
	for _, name := range c.guardsExcept(assigned, control.Node(3)) {
		c.checked[name] = true
	}

	if c.scopes.Reenter(n) {
		defer c.scopes.Exit()
	}
	var init string
	if typ := control.Node(1); typ != nil {
		var parts []string
		for _, d := range control.Node(2).Nodes() {
			parts = append(parts, c.declarator(d))
		}
		init = typeString(typ, 0) + " " + strings.Join(parts, ", ")
	} else if list := control.Node(2); list != nil {
		init = c.exprList(list)
	}
	c.lazy++
	cond := ""
	if control.Node(3) != nil {
		cond = c.expr(control.Node(3), 0, false)
	}
	update := ""
	if control.Node(4) != nil {
		update = c.exprList(control.Node(4))
	}
	c.lazy--
	c.p.open("for (" + init + "; " + cond + "; " + update + ")")
	c.body(n.Node(1))
	c.p.close("")
}

func (c *classEmitter) exprList(list *ast.Node) string {
	var parts []string
	for _, e := range list.Nodes() {
		parts = append(parts, c.expr(e, 0, false))
	}
	return strings.Join(parts, ", ")
}

// local prints a local variable declaration, one statement per
// declarator.
func (c *classEmitter) local(n *ast.Node) {
	typ := n.Node(1)
	for _, d := range n.Node(2).Nodes() {
		if init := d.Node(2); init != nil {
			c.guards(init)
		}
		text := c.declarator(d)
		c.p.line(typeString(typ, d.Node(1).Size()) + " " + text + ";")
		c.noteLiteral(d.Leaf(0), d.Node(2))
	}
}

// declarator renders "name" or "name = init".
func (c *classEmitter) declarator(d *ast.Node) string {
	if init := d.Node(2); init != nil {
		return d.Leaf(0) + " = " + c.expr(init, precAssign, true)
	}
	return d.Leaf(0)
}

const precAssign = 1

func (c *classEmitter) expressionStatement(n *ast.Node) {
	e := n.Node(0)
	c.guards(e)
	if e.Is("Expression") && e.Leaf(1) == "=" {
		if e.Node(0).Is("SubscriptExpression") {
			c.arrayStore(e)
			return
		}
		if id := e.Node(0); id.Is("PrimaryIdentifier") {
			c.forgetHolder(id.Leaf(0))
			c.p.line(c.expr(e, 0, false) + ";")
			c.noteLiteral(id.Leaf(0), e.Node(2))
			return
		}
	}
	c.p.line(c.expr(e, 0, false) + ";")
}

// arrayStore prints a store into an array element. Stores of references
// are checked against the array's runtime element type first; a string
// literal another visible variable already holds is stored through that
// variable.
func (c *classEmitter) arrayStore(e *ast.Node) {
	target, value := e.Node(0), e.Node(2)
	base := target.Node(0)
	elem, dims := naming.ElementType(c.staticType(base))
	if dims == 0 || (dims == 1 && !naming.IsReference(elem)) || value.Is("NullLiteral") {
		c.p.line(c.expr(e, 0, false) + ";")
		return
	}

	arr := c.expr(base, precUnary, false)
	lhs := c.expr(target, precAssign, false)
	var val string
	switch {
	case value.Is("StringLiteral") && c.holder(value.Leaf(0)) != "":
		val = c.holder(value.Leaf(0))
	case value.Is("PrimaryIdentifier"), value.Is("LocalClassFieldReference"), value.Is("ThisExpression"), value.Is("StringLiteral"):
		val = c.expr(value, precAssign, true)
	default:
		tmp := c.scopes.FreshName("__tmp")
		c.p.line(naming.TargetType(c.typeOf(value)) + " " + tmp + " = " + c.expr(value, precAssign, true) + ";")
		val = tmp
	}
	c.p.line("__rt::checkStore(" + arr + ", " + val + ");")
	c.p.line(lhs + " " + e.Leaf(1) + " " + val + ";")
}

// staticType is the declared type of an array base: the recorded static
// type of a local or field, or the inferred type otherwise.
func (c *classEmitter) staticType(base *ast.Node) string {
	if base.Is("PrimaryIdentifier") || base.Is("LocalClassFieldReference") {
		if ft, ok := c.profile.DeclaredType(c.method, base.Leaf(0)); ok && ft.Static != "" {
			return ft.Static
		}
	}
	return c.typeOf(base)
}

// noteLiteral remembers the first visible variable a string literal is
// stored into.
func (c *classEmitter) noteLiteral(name string, value *ast.Node) {
	if !value.Is("StringLiteral") {
		return
	}
	if c.holder(value.Leaf(0)) != "" {
		return
	}
	if sym, ok := c.scopes.LookupVariable(name); ok {
		c.literals[value.Leaf(0)] = sym
	}
}

// holder returns the visible variable first assigned literal, or "".
func (c *classEmitter) holder(literal string) string {
	sym, ok := c.literals[literal]
	if !ok {
		return ""
	}
	if cur, visible := c.scopes.LookupVariable(sym.Name); !visible || cur != sym {
		return ""
	}
	return c.identifier(sym.Name)
}

// forgetHolder drops literals held by a variable that is being reassigned.
func (c *classEmitter) forgetHolder(name string) {
	sym, ok := c.scopes.LookupVariable(name)
	if !ok {
		return
	}
	maps.DeleteFunc(c.literals, func(_ string, s *symbols.Symbol) bool { return s == sym })
}

// guards prints the checks a statement needs before it runs: a null check
// for every reference it dereferences and a size guard for every literal
// negative array dimension. Operands that may not run (the right side of
// && and ||, the branches of ?:) are left to inline checks. It returns the
// checked references.
func (c *classEmitter) guards(exprs ...*ast.Node) []string {
	return c.guardsExcept(nil, exprs...)
}

// guardsExcept is guards without hoisting checks of the references in skip.
func (c *classEmitter) guardsExcept(skip map[string]bool, exprs ...*ast.Node) []string {
	var names []string
	seen := make(map[string]bool)
	check := func(n *ast.Node) {
		ref, ok := c.nullable(n)
		if !ok || seen[ref] || skip[ref] || c.checked[ref] {
			return
		}
		seen[ref] = true
		names = append(names, ref)
		c.p.line("__rt::checkNotNull(" + ref + ");")
	}
	var visit func(e *ast.Node)
	visit = func(e *ast.Node) {
		ast.Walk(e, func(n *ast.Node) bool {
			switch n.Name {
			case "LogicalAndExpression", "LogicalOrExpression", "ConditionalExpression":
				visit(n.Node(0))
				return false
			case "SubscriptExpression", "SelectionExpression":
				check(n.Node(0))
			case "CallExpression":
				if recv := n.Node(0); recv != nil && !c.isClassName(recv) {
					check(recv)
				}
			case "NewArrayExpression":
				for _, d := range n.Node(1).Nodes() {
					if lit, ok := negativeLiteral(d); ok {
						c.p.line("if (" + lit + " < 0) throw java::lang::NegativeArraySizeException();")
					}
				}
			}
			return true
		})
	}
	for _, e := range exprs {
		visit(e)
	}
	return names
}

// nullable returns the spelling of a reference-typed variable or field that
// a dereference of n must check first.
func (c *classEmitter) nullable(n *ast.Node) (string, bool) {
	switch {
	case n.Is("PrimaryIdentifier"):
		name := n.Leaf(0)
		if name == config.ThisName {
			return "", false
		}
		sym, ok := c.scopes.LookupVariable(name)
		if !ok || !naming.IsReference(sym.Type) {
			return "", false
		}
		return c.identifier(name), true
	case n.Is("LocalClassFieldReference"):
		return c.nullableField(n, n.Leaf(0))
	case n.Is("SelectionExpression") && n.Node(0).Is("ThisExpression"):
		return c.nullableField(n, n.Leaf(1))
	}
	return "", false
}

func (c *classEmitter) nullableField(n *ast.Node, name string) (string, bool) {
	f, _, err := c.registry.FindField(c.profile.Name, name)
	if err != nil || f == nil || !naming.IsReference(f.Type) {
		return "", false
	}
	if !f.Static && !c.fieldInit {
		if _, ok := c.scopes.LookupVariable(config.ThisName); !ok {
			return "", false
		}
	}
	return c.fieldReference(n, name), true
}

// deref renders the base of a dereference. Inside an operand that may not
// run, the base is checked inline.
func (c *classEmitter) deref(n *ast.Node, prec int) string {
	if c.lazy > 0 {
		if ref, ok := c.nullable(n); ok && !c.checked[ref] {
			return "(__rt::checkNotNull(" + ref + "), " + ref + ")"
		}
	}
	return c.expr(n, prec, false)
}

// negativeLiteral matches a literal negative dimension: -N or a literal
// carrying its own sign.
func negativeLiteral(n *ast.Node) (string, bool) {
	switch {
	case n.Is("UnaryExpression") && n.Leaf(0) == "-" && n.Node(1).Is("IntegerLiteral"):
		return "-" + n.Node(1).Leaf(0), true
	case n.Is("IntegerLiteral") && strings.HasPrefix(n.Leaf(0), "-"):
		return n.Leaf(0), true
	}
	return "", false
}
