// Package asttest builds source trees in the shape the front end hands
// over, for use in tests.
package asttest

import (
	"strings"

	"github.com/funvibe/cpptrans/internal/ast"
)

// Unit builds a CompilationUnit.
func Unit(classes ...*ast.Node) *ast.Node {
	return ast.New("CompilationUnit", nodes(classes)...)
}

// Class builds a ClassDeclaration; super may be "".
func Class(name, super string, members ...*ast.Node) *ast.Node {
	var ext any
	if super != "" {
		ext = ast.New("Extension", Type(super))
	}
	return ast.New("ClassDeclaration", Mods("public"), name, nil, ext, nil, ast.New("ClassBody", nodes(members)...))
}

// Mods builds a Modifiers node.
func Mods(words ...string) *ast.Node {
	var ms []any
	for _, w := range words {
		ms = append(ms, ast.New("Modifier", w))
	}
	return ast.New("Modifiers", ms...)
}

// Type builds a Type node from a source spelling such as "int" or "List[]".
func Type(spelling string) *ast.Node {
	base := strings.TrimRight(spelling, "[]")
	dims := strings.Count(spelling[len(base):], "[]")
	var elem *ast.Node
	switch base {
	case "byte", "short", "char", "int", "long", "float", "double", "boolean":
		elem = ast.New("PrimitiveType", base)
	default:
		elem = ast.New("QualifiedIdentifier", base)
	}
	var d any
	if dims > 0 {
		var bs []any
		for i := 0; i < dims; i++ {
			bs = append(bs, "[")
		}
		d = ast.New("Dimensions", bs...)
	}
	return ast.New("Type", elem, d)
}

// Result builds a method result type; "void" gives VoidType.
func Result(spelling string) *ast.Node {
	if spelling == "void" {
		return ast.New("VoidType")
	}
	return Type(spelling)
}

// Field builds a FieldDeclaration with one declarator. init may be nil.
func Field(mods *ast.Node, typ, name string, init *ast.Node) *ast.Node {
	return ast.New("FieldDeclaration", mods, Type(typ),
		ast.New("Declarators", ast.New("Declarator", name, nil, init)))
}

// Local is a FieldDeclaration without modifiers, as used for locals.
func Local(typ, name string, init *ast.Node) *ast.Node {
	return Field(Mods(), typ, name, init)
}

// Param builds a FormalParameter.
func Param(typ, name string) *ast.Node {
	return ast.New("FormalParameter", Mods(), Type(typ), nil, name, nil)
}

// Params builds FormalParameters.
func Params(ps ...*ast.Node) *ast.Node {
	return ast.New("FormalParameters", nodes(ps)...)
}

// Method builds a MethodDeclaration with a body.
func Method(mods *ast.Node, result, name string, params *ast.Node, body ...*ast.Node) *ast.Node {
	return ast.New("MethodDeclaration", mods, nil, Result(result), name, params, nil, nil, Block(body...))
}

// Ctor builds a ConstructorDeclaration.
func Ctor(name string, params *ast.Node, body ...*ast.Node) *ast.Node {
	return ast.New("ConstructorDeclaration", Mods("public"), nil, name, params, nil, Block(body...))
}

// Main builds public static void main(String[] args).
func Main(body ...*ast.Node) *ast.Node {
	return Method(Mods("public", "static"), "void", "main", Params(Param("String[]", "args")), body...)
}

func Block(stmts ...*ast.Node) *ast.Node {
	return ast.New("Block", nodes(stmts)...)
}

func Expr(e *ast.Node) *ast.Node {
	return ast.New("ExpressionStatement", e)
}

func Return(e *ast.Node) *ast.Node {
	if e == nil {
		return ast.New("ReturnStatement", nil)
	}
	return ast.New("ReturnStatement", e)
}

func If(cond, then, els *ast.Node) *ast.Node {
	if els == nil {
		return ast.New("ConditionalStatement", cond, then)
	}
	return ast.New("ConditionalStatement", cond, then, els)
}

func While(cond, body *ast.Node) *ast.Node {
	return ast.New("WhileStatement", cond, body)
}

// For builds for (typ name = init; cond; update) body.
func For(typ, name string, init, cond, update, body *ast.Node) *ast.Node {
	control := ast.New("BasicForControl", Mods(), Type(typ),
		ast.New("Declarators", ast.New("Declarator", name, nil, init)),
		cond, ast.New("ExpressionList", update))
	return ast.New("ForStatement", control, body)
}

func Id(name string) *ast.Node {
	return ast.New("PrimaryIdentifier", name)
}

func Int(v string) *ast.Node {
	return ast.New("IntegerLiteral", v)
}

// Str builds a string literal; the quotes are added.
func Str(v string) *ast.Node {
	return ast.New("StringLiteral", `"`+v+`"`)
}

func Null() *ast.Node {
	return ast.New("NullLiteral")
}

func This() *ast.Node {
	return ast.New("ThisExpression", nil)
}

func Assign(lhs *ast.Node, rhs *ast.Node) *ast.Node {
	return ast.New("Expression", lhs, "=", rhs)
}

func Select(e *ast.Node, name string) *ast.Node {
	return ast.New("SelectionExpression", e, name)
}

func Index(e, i *ast.Node) *ast.Node {
	return ast.New("SubscriptExpression", e, i)
}

func Binary(tag string, l *ast.Node, op string, r *ast.Node) *ast.Node {
	return ast.New(tag, l, op, r)
}

func Add(l, r *ast.Node) *ast.Node {
	return Binary("AdditiveExpression", l, "+", r)
}

func Less(l, r *ast.Node) *ast.Node {
	return Binary("RelationalExpression", l, "<", r)
}

func PostInc(e *ast.Node) *ast.Node {
	return ast.New("PostfixExpression", e, "++")
}

// Call builds recv.name(args...); recv may be nil.
func Call(recv *ast.Node, name string, args ...*ast.Node) *ast.Node {
	return ast.New("CallExpression", recv, nil, name, ast.New("Arguments", nodes(args)...))
}

// Println builds System.out.println(args...).
func Println(args ...*ast.Node) *ast.Node {
	return Expr(Call(Select(Id("System"), "out"), "println", args...))
}

// NewObj builds new name(args...).
func NewObj(name string, args ...*ast.Node) *ast.Node {
	return ast.New("NewClassExpression", nil, nil, ast.New("QualifiedIdentifier", name), ast.New("Arguments", nodes(args)...), nil)
}

// NewArray builds new elem[size].
func NewArray(elem string, size *ast.Node) *ast.Node {
	return ast.New("NewArrayExpression", Type(elem).Node(0), ast.New("ConcreteDimensions", size), nil, nil)
}

// Super builds the explicit super(args...) statement.
func Super(args ...*ast.Node) *ast.Node {
	return Expr(Call(nil, "super", args...))
}

func nodes(ns []*ast.Node) []any {
	out := make([]any, 0, len(ns))
	for _, n := range ns {
		out = append(out, n)
	}
	return out
}
