package emitter

import (
	"errors"
	"strings"

	"github.com/funvibe/cpptrans/internal/ast"
	"github.com/funvibe/cpptrans/internal/config"
	"github.com/funvibe/cpptrans/internal/diagnostics"
	"github.com/funvibe/cpptrans/internal/naming"
)

// expr renders an expression as an operand of a parent with parentPrec.
// isRight is set for the right operand of a binary parent.
func (c *classEmitter) expr(n *ast.Node, parentPrec int, isRight bool) string {
	if n == nil {
		return ""
	}
	switch n.Name {
	case "Expression":
		return c.assignment(n, parentPrec, isRight)
	case "ConditionalExpression":
		s := c.expr(n.Node(0), getPrecedence("?:"), false) + " ? "
		c.lazy++
		s += c.expr(n.Node(1), getPrecedence("?:"), false) + " : " +
			c.expr(n.Node(2), getPrecedence("?:"), true)
		c.lazy--
		return paren(s, needParens("?:", getPrecedence("?:"), parentPrec, isRight))
	case "LogicalOrExpression":
		return c.shortCircuit("||", n, parentPrec, isRight)
	case "LogicalAndExpression":
		return c.shortCircuit("&&", n, parentPrec, isRight)
	case "AdditiveExpression":
		if n.Leaf(1) == "+" && c.typeOf(n) == config.StringClassName {
			return "__rt::concat(" + c.expr(n.Node(0), 0, false) + ", " + c.expr(n.Node(2), 0, false) + ")"
		}
		return c.binary(n.Leaf(1), n.Node(0), n.Node(2), parentPrec, isRight)
	case "MultiplicativeExpression", "RelationalExpression", "EqualityExpression":
		return c.binary(n.Leaf(1), n.Node(0), n.Node(2), parentPrec, isRight)
	case "UnaryExpression":
		operand := c.expr(n.Node(1), precUnary, false)
		if strings.HasPrefix(operand, "-") || strings.HasPrefix(operand, "+") {
			operand = "(" + operand + ")"
		}
		return paren(n.Leaf(0)+operand, precUnary < parentPrec)
	case "LogicalNegationExpression":
		return paren("!"+c.expr(n.Node(0), precUnary, false), precUnary < parentPrec)
	case "PostfixExpression":
		return paren(c.expr(n.Node(0), precPostfix, false)+n.Leaf(1), precPostfix < parentPrec)
	case "CastExpression":
		return c.cast(n, parentPrec)
	case "StringLiteral":
		return "__rt::literal(" + n.Leaf(0) + ")"
	case "IntegerLiteral", "CharacterLiteral", "BooleanLiteral":
		return n.Leaf(0)
	case "FloatingPointLiteral":
		return strings.TrimRight(n.Leaf(0), "dD")
	case "NullLiteral":
		return "__rt::null()"
	case "ThisExpression":
		return config.ThisName
	case "PrimaryIdentifier":
		return c.primaryIdentifier(n)
	case "LocalClassFieldReference":
		return c.fieldReference(n, n.Leaf(0))
	case "SelectionExpression":
		return c.selection(n)
	case "SubscriptExpression":
		return "(*" + c.deref(n.Node(0), precUnary) + ")[" + c.expr(n.Node(1), 0, false) + "]"
	case "NewClassExpression":
		class := ast.TypeName(n.Node(2))
		st := c.structName(class)
		args := []string{"new " + st + "()"}
		for _, a := range n.Node(3).Nodes() {
			args = append(args, c.expr(a, precAssign, false))
		}
		return st + "::" + config.InitName + "(" + strings.Join(args, ", ") + ")"
	case "NewArrayExpression":
		return c.newArray(n)
	case "CallExpression":
		return c.call(n)
	case "InitCall":
		return c.structName(n.Leaf(0)) + "::" + config.InitName + "(" + c.arguments(n.Node(1)) + ")"
	case "PrintOutput":
		return c.print(n)
	}
	return c.fail(n, "expression %s is not supported", n.Name)
}

func paren(s string, need bool) string {
	if need {
		return "(" + s + ")"
	}
	return s
}

func (c *classEmitter) binary(op string, l, r *ast.Node, parentPrec int, isRight bool) string {
	prec := getPrecedence(op)
	s := c.expr(l, prec, false) + " " + op + " " + c.expr(r, prec, true)
	return paren(s, needParens(op, prec, parentPrec, isRight))
}

// shortCircuit renders && and ||. The right operand may not run.
func (c *classEmitter) shortCircuit(op string, n *ast.Node, parentPrec int, isRight bool) string {
	prec := getPrecedence(op)
	s := c.expr(n.Node(0), prec, false) + " " + op + " "
	c.lazy++
	s += c.expr(n.Node(1), prec, true)
	c.lazy--
	return paren(s, needParens(op, prec, parentPrec, isRight))
}

// assignment renders simple and compound assignment. Compound
// concatenation onto a String becomes a plain assignment of the
// concatenation.
func (c *classEmitter) assignment(n *ast.Node, parentPrec int, isRight bool) string {
	op := n.Leaf(1)
	prec := getPrecedence(op)
	lhs := c.expr(n.Node(0), prec, false)
	var s string
	if op == "+=" && c.typeOf(n.Node(0)) == config.StringClassName {
		s = lhs + " = __rt::concat(" + lhs + ", " + c.expr(n.Node(2), 0, false) + ")"
	} else {
		s = lhs + " " + op + " " + c.expr(n.Node(2), prec, true)
	}
	return paren(s, needParens(op, prec, parentPrec, isRight))
}

// cast converts primitives with a value cast and references with the
// runtime's checked cast.
func (c *classEmitter) cast(n *ast.Node, parentPrec int) string {
	t := ast.TypeName(n.Node(0))
	operand := c.expr(n.Node(1), 0, false)
	if naming.IsReference(t) {
		return "__rt::java_cast<" + naming.TargetType(t) + ">(" + operand + ")"
	}
	return paren("("+naming.TargetType(t)+")("+operand+")", precUnary < parentPrec)
}

func (c *classEmitter) primaryIdentifier(n *ast.Node) string {
	name := n.Leaf(0)
	if _, ok := c.scopes.LookupVariable(name); ok || name == config.ArgcName {
		return c.identifier(name)
	}
	if f, owner, err := c.registry.FindField(c.profile.Name, name); err == nil && f != nil {
		return c.fieldAccess(n, f.Name, owner, f.Static)
	}
	if c.registry.IsClass(name) {
		return c.structName(name)
	}
	return name
}

// identifier spells a visible variable. The entry point's argument vector
// is reached through its wrapped form.
func (c *classEmitter) identifier(name string) string {
	if name == config.ArgvName && c.inMain {
		return config.ArgvPtrName
	}
	return name
}

func (c *classEmitter) fieldReference(n *ast.Node, name string) string {
	f, owner, err := c.registry.FindField(c.profile.Name, name)
	if err != nil || f == nil {
		return c.fail(n, "field %s of %s is not declared", name, c.profile.Name)
	}
	return c.fieldAccess(n, name, owner, f.Static)
}

// fieldAccess reaches a field of this class or an ancestor: statics through
// their owning struct, instance fields through the receiver.
func (c *classEmitter) fieldAccess(n *ast.Node, name, owner string, static bool) string {
	switch {
	case static:
		return c.structName(owner) + "::" + name
	case c.fieldInit:
		return name
	}
	if _, ok := c.scopes.LookupVariable(config.ThisName); !ok {
		return c.fail(n, "instance field %s used without a receiver", name)
	}
	return config.ThisName + "->" + name
}

// isClassName reports whether n names a class rather than a value.
func (c *classEmitter) isClassName(n *ast.Node) bool {
	if !n.Is("PrimaryIdentifier") {
		return false
	}
	name := n.Leaf(0)
	if _, ok := c.scopes.LookupVariable(name); ok {
		return false
	}
	if f, _, err := c.registry.FindField(c.profile.Name, name); err == nil && f != nil {
		return false
	}
	return c.registry.IsClass(name)
}

func (c *classEmitter) selection(n *ast.Node) string {
	base, name := n.Node(0), n.Leaf(1)
	if c.isClassName(base) {
		f, owner, err := c.registry.FindField(base.Leaf(0), name)
		if err != nil || f == nil || !f.Static {
			return c.fail(n, "%s has no static field %s", base.Leaf(0), name)
		}
		return c.structName(owner) + "::" + name
	}
	if base.Is("ThisExpression") {
		return c.fieldReference(n, name)
	}
	owner := c.typeOf(base)
	if _, dims := naming.ElementType(owner); dims > 0 && name == config.LengthName {
		return c.deref(base, precPostfix) + "->" + name
	}
	if f, declaring, err := c.registry.FindField(owner, name); err == nil && f != nil && f.Static {
		return c.structName(declaring) + "::" + name
	}
	return c.deref(base, precPostfix) + "->" + name
}

// newArray allocates a managed array of the expression's element type. Only
// sized dimensions are passed to the runtime template.
func (c *classEmitter) newArray(n *ast.Node) string {
	if n.Node(3) != nil {
		return c.fail(n, "array initializers are not supported")
	}
	elem := naming.TargetType(ast.TypeName(n.Node(0)))
	sized := n.Node(1).Nodes()
	dims := len(sized) + n.Node(2).Size()
	var sizes []string
	negative := false
	for _, d := range sized {
		sizes = append(sizes, c.expr(d, 0, false))
		if _, ok := negativeLiteral(d); ok {
			negative = true
		}
	}
	alloc := "new " + naming.ArrayTemplate(elem, dims) + "(" + strings.Join(sizes, ", ") + ")"
	// Statement-level guards cannot cover an operand that may not run.
	if negative && c.lazy > 0 {
		return "(throw java::lang::NegativeArraySizeException(), " + alloc + ")"
	}
	return alloc
}

func (c *classEmitter) arguments(args *ast.Node) string {
	var out []string
	for _, a := range args.Nodes() {
		out = append(out, c.expr(a, precAssign, false))
	}
	return strings.Join(out, ", ")
}

// call renders a method call. Static methods and superclass calls are
// direct; every other call goes through the receiver's dispatch table with
// the receiver passed last.
func (c *classEmitter) call(n *ast.Node) string {
	recv, name, args := n.Node(0), n.Leaf(2), n.Node(3)

	class := c.profile.Name
	direct := false
	switch {
	case recv == nil:
	case recv.Is("PrimaryIdentifier") && recv.Leaf(0) == config.SuperCallName:
		class, direct = c.profile.SuperName(), true
	case c.isClassName(recv):
		class, direct = recv.Leaf(0), true
	default:
		class = c.typeOf(recv)
		if _, dims := naming.ElementType(class); dims > 0 || naming.IsPrimitive(class) {
			class = config.RootClassName
		}
	}

	res, err := c.resolver.Resolve(class, name, c.resolver.ArgTypes(c.env(), args), n.Pos)
	if err != nil {
		var de *diagnostics.DiagnosticError
		if !errors.As(err, &de) {
			de = diagnostics.Wrap(diagnostics.ErrE001, n.Pos, err)
		}
		if de.Code != diagnostics.ErrR001 || !c.opts.AllowUnresolvedCalls {
			c.failWith(de)
			return "/* unresolved */"
		}
		c.warnings = append(c.warnings, diagnostics.NewWarning(de.Code, de.Pos, de.Message))
	}

	argList := c.arguments(args)
	_, hasThis := c.scopes.LookupVariable(config.ThisName)
	super := direct && recv.Leaf(0) == config.SuperCallName
	static := res.Method != nil && res.Method.Static
	if res.Method == nil {
		// An unresolved call is assumed static where no receiver exists.
		static = recv == nil && !hasThis || direct && !super
	}
	if static {
		return c.structName(res.Owner) + "::" + res.Mangled + "(" + argList + ")"
	}

	var receiver, dispatch string
	switch {
	case recv == nil || recv.Is("ThisExpression") || super:
		if !hasThis {
			return c.fail(n, "instance method %s called without a receiver", name)
		}
		receiver = config.ThisName
	case direct:
		return c.fail(n, "instance method %s called on class %s", name, recv.Leaf(0))
	default:
		receiver = c.expr(recv, precPostfix, false)
		dispatch = c.deref(recv, precPostfix)
	}
	if argList != "" {
		argList += ", "
	}
	argList += receiver

	if direct {
		target := res.Mangled
		if owner, ok := c.registry.Get(res.Owner); ok && owner.Builtin {
			if rm, root := naming.LookupRoot(res.Mangled); root {
				target = rm.Runtime
			}
		}
		return c.structName(res.Owner) + "::" + target + "(" + argList + ")"
	}
	if dispatch == "" {
		dispatch = receiver
	}
	return dispatch + "->" + config.VPtrName + "->" + res.Mangled + "(" + argList + ")"
}

// print renders console output as one stream expression. Objects print
// through their toString slot, booleans as words. A null variable or field
// prints as "null".
func (c *classEmitter) print(n *ast.Node) string {
	var parts []string
	for _, seg := range n.Nodes() {
		if seg.Is("PrintBound") {
			parts = append(parts, seg.Leaf(0))
			continue
		}
		t := c.typeOf(seg)
		switch {
		case t == "boolean":
			parts = append(parts, "("+c.expr(seg, getPrecedence("?:"), false)+` ? "true" : "false")`)
		case naming.IsReference(t) && !seg.Is("NullLiteral"):
			text := c.expr(seg, precPostfix, false)
			if t != config.StringClassName {
				text += "->" + config.VPtrName + "->m_toString(" + c.expr(seg, precPostfix, false) + ")"
			}
			if ref, ok := c.nullable(seg); ok {
				text = "(" + ref + " == __rt::null() ? __rt::literal(\"null\") : " + text + ")"
			}
			parts = append(parts, text)
		default:
			parts = append(parts, c.expr(seg, getPrecedence("<<"), true))
		}
	}
	return strings.Join(parts, " << ")
}
