package overload

import (
	"strings"

	"github.com/funvibe/cpptrans/internal/ast"
	"github.com/funvibe/cpptrans/internal/config"
	"github.com/funvibe/cpptrans/internal/naming"
	"github.com/funvibe/cpptrans/internal/symbols"
)

// Env is the context an expression is typed in.
type Env struct {
	Scopes *symbols.Scopes
	Class  string // enclosing class
}

// TypeOf infers the source type of an expression in a lowered or source
// tree. Unknown expressions type as the root class.
func (r *Resolver) TypeOf(env Env, e *ast.Node) string {
	if e == nil {
		return config.RootClassName
	}
	switch e.Name {
	case "StringLiteral":
		return config.StringClassName
	case "IntegerLiteral":
		if strings.HasSuffix(strings.ToLower(e.Leaf(0)), "l") {
			return "long"
		}
		return "int"
	case "FloatingPointLiteral":
		if strings.HasSuffix(strings.ToLower(e.Leaf(0)), "f") {
			return "float"
		}
		return "double"
	case "CharacterLiteral":
		return "char"
	case "BooleanLiteral":
		return "boolean"
	case "NullLiteral":
		return config.RootClassName
	case "ThisExpression":
		return env.Class
	case "PrimaryIdentifier":
		return r.identifierType(env, e.Leaf(0))
	case "LocalClassFieldReference":
		if f, _, err := r.registry.FindField(env.Class, e.Leaf(0)); err == nil && f != nil {
			return f.Type
		}
	case "SelectionExpression":
		return r.selectionType(env, e)
	case "SubscriptExpression":
		base, dims := naming.ElementType(r.TypeOf(env, e.Node(0)))
		if dims > 0 {
			return naming.ArrayOf(base, dims-1)
		}
	case "NewClassExpression":
		return ast.TypeName(e.Node(2))
	case "NewArrayExpression":
		dims := e.Node(1).Size() + e.Node(2).Size()
		return naming.ArrayOf(ast.TypeName(e.Node(0)), dims)
	case "CastExpression":
		return ast.TypeName(e.Node(0))
	case "CallExpression":
		return r.callType(env, e)
	case "InitCall":
		return e.Leaf(0)
	case "Expression":
		return r.TypeOf(env, e.Node(0))
	case "ConditionalExpression":
		return r.TypeOf(env, e.Node(1))
	case "AdditiveExpression", "MultiplicativeExpression":
		return r.arithmeticType(env, e)
	case "UnaryExpression":
		return r.TypeOf(env, e.Node(1))
	case "PostfixExpression":
		return r.TypeOf(env, e.Node(0))
	case "RelationalExpression", "EqualityExpression", "LogicalAndExpression",
		"LogicalOrExpression", "LogicalNegationExpression":
		return "boolean"
	}
	return config.RootClassName
}

func (r *Resolver) identifierType(env Env, name string) string {
	switch name {
	case config.ArgcName:
		return "int"
	case config.ArgvName, config.ArgvPtrName:
		if sym, ok := env.Scopes.Lookup(name); ok && sym.Type != "" {
			return sym.Type
		}
		return config.StringClassName + "[]"
	}
	sym, ok := env.Scopes.Lookup(name)
	if !ok {
		if r.registry.IsClass(name) {
			return name
		}
		return config.RootClassName
	}
	if sym.Kind == symbols.ClassSymbol {
		return sym.Name
	}
	if sym.Type == "" {
		return config.RootClassName
	}
	return sym.Type
}

func (r *Resolver) selectionType(env Env, e *ast.Node) string {
	owner := r.TypeOf(env, e.Node(0))
	if _, dims := naming.ElementType(owner); dims > 0 && e.Leaf(1) == config.LengthName {
		return "int"
	}
	if f, _, err := r.registry.FindField(owner, e.Leaf(1)); err == nil && f != nil {
		return f.Type
	}
	return config.RootClassName
}

// callType is the declared return type of the method a call resolves to.
func (r *Resolver) callType(env Env, e *ast.Node) string {
	class := env.Class
	if recv := e.Node(0); recv != nil {
		class = r.TypeOf(env, recv)
	}
	if !r.registry.IsClass(class) {
		return config.RootClassName
	}
	res, err := r.Resolve(class, e.Leaf(2), r.ArgTypes(env, e.Node(3)), e.Pos)
	if err != nil || res.Method == nil {
		return config.RootClassName
	}
	return res.Method.Return
}

func (r *Resolver) arithmeticType(env Env, e *ast.Node) string {
	left, right := r.TypeOf(env, e.Node(0)), r.TypeOf(env, e.Node(2))
	switch {
	case e.Name == "AdditiveExpression" && e.Leaf(1) == "+" &&
		(left == config.StringClassName || right == config.StringClassName):
		return config.StringClassName
	case left == "double" || right == "double":
		return "double"
	case left == "float" || right == "float":
		return "float"
	case left == "long" || right == "long":
		return "long"
	}
	return "int"
}

// ArgTypes types each child of an Arguments node.
func (r *Resolver) ArgTypes(env Env, args *ast.Node) []string {
	out := make([]string, 0, args.Size())
	for _, a := range args.Nodes() {
		out = append(out, r.TypeOf(env, a))
	}
	return out
}
