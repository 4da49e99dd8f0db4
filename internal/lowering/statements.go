package lowering

import (
	"github.com/funvibe/cpptrans/internal/ast"
	"github.com/funvibe/cpptrans/internal/classes"
	"github.com/funvibe/cpptrans/internal/config"
	"github.com/funvibe/cpptrans/internal/naming"
	"github.com/funvibe/cpptrans/internal/overload"
	"github.com/funvibe/cpptrans/internal/symbols"
)

// lower rewrites one node. Tags without a rule are rebuilt with their
// children lowered.
func (l *Lowerer) lower(n *ast.Node) (*ast.Node, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Name {
	case "Block":
		return l.lowerBlock(n)
	case "FieldDeclaration":
		return l.lowerLocal(n)
	case "ForStatement":
		return l.lowerFor(n)
	case "PrimitiveType":
		return ast.New("PrimitiveType", naming.LowerPrimitive(n.Leaf(0))).At(n.Pos), nil
	case "PrimaryIdentifier":
		return l.lowerIdentifier(n), nil
	case "SelectionExpression":
		if id := n.Node(0); id.Is("PrimaryIdentifier") && id.Leaf(0) == config.ArgsName && n.Leaf(1) == config.LengthName {
			return ast.New("AdditiveExpression",
				ast.New("PrimaryIdentifier", config.ArgcName), "-", ast.New("IntegerLiteral", "1")).At(n.Pos), nil
		}
	case "CallExpression":
		if isConsoleOutput(n) {
			return l.lowerPrint(n)
		}
	case "ClassDeclaration", "ClassBody":
		return nil, unsupported(n, "nested")
	}
	return l.rebuild(n)
}

func (l *Lowerer) lowerOptional(n *ast.Node) (*ast.Node, error) {
	if n == nil {
		return nil, nil
	}
	return l.lower(n)
}

// rebuild copies n with every node child lowered.
func (l *Lowerer) rebuild(n *ast.Node) (*ast.Node, error) {
	out := &ast.Node{Name: n.Name, Pos: n.Pos, Children: make([]any, len(n.Children))}
	for i, c := range n.Children {
		cn, ok := c.(*ast.Node)
		if !ok {
			out.Children[i] = c
			continue
		}
		lc, err := l.lower(cn)
		if err != nil {
			return nil, err
		}
		if lc == nil {
			out.Children[i] = nil
		} else {
			out.Children[i] = lc
		}
	}
	return out, nil
}

func (l *Lowerer) lowerBlock(n *ast.Node) (*ast.Node, error) {
	l.scopes.Enter("block", symbols.ScopeBlock)
	defer l.scopes.Exit()

	out, err := l.rebuild(n)
	if err != nil {
		return nil, err
	}
	l.scopes.Mark(out)
	return out, nil
}

// lowerLocal handles a local variable declaration: initializers are
// lowered before the names come into scope.
func (l *Lowerer) lowerLocal(n *ast.Node) (*ast.Node, error) {
	decls, err := l.lowerDeclarators(n.Node(0), n.Node(1), n.Node(2))
	if err != nil {
		return nil, err
	}
	typ, err := l.lower(n.Node(1))
	if err != nil {
		return nil, err
	}
	return ast.New("FieldDeclaration", n.Get(0), typ, decls).At(n.Pos), nil
}

func (l *Lowerer) lowerDeclarators(mods, typ, decls *ast.Node) (*ast.Node, error) {
	words := ast.ModifierWords(mods)
	base := ast.TypeName(typ)
	out := ast.New("Declarators").At(decls.Pos)
	for _, d := range decls.Nodes() {
		init, err := l.lowerOptional(d.Node(2))
		if err != nil {
			return nil, err
		}
		name := renameArgs(d.Leaf(0))
		declared := naming.ArrayOf(base, d.Node(1).Size())
		sym := &symbols.Symbol{Name: name, Kind: symbols.VariableSymbol, Type: declared, Modifiers: words, Pos: d.Pos}
		if err := l.scopes.Define(sym); err != nil {
			return nil, err
		}
		l.profile.RecordLocal(l.method, name, classes.FieldType{Static: declared, Dynamic: l.dynamicType(d.Node(2))})
		out.Children = append(out.Children, ast.New("Declarator", name, d.Get(1), init).At(d.Pos))
	}
	return out, nil
}

// lowerFor scopes the loop header's declarations to the loop.
func (l *Lowerer) lowerFor(n *ast.Node) (*ast.Node, error) {
	l.scopes.Enter("for", symbols.ScopeBlock)
	defer l.scopes.Exit()

	if !n.Node(0).Is("BasicForControl") {
		return nil, unsupported(n.Node(0), "loop control")
	}
	control, err := l.lowerForControl(n.Node(0))
	if err != nil {
		return nil, err
	}
	body, err := l.lower(n.Node(1))
	if err != nil {
		return nil, err
	}
	out := ast.New("ForStatement", control, body).At(n.Pos)
	l.scopes.Mark(out)
	return out, nil
}

func (l *Lowerer) lowerForControl(c *ast.Node) (*ast.Node, error) {
	out := c.Clone()
	if c.Node(1) != nil {
		decls, err := l.lowerDeclarators(c.Node(0), c.Node(1), c.Node(2))
		if err != nil {
			return nil, err
		}
		typ, err := l.lower(c.Node(1))
		if err != nil {
			return nil, err
		}
		out.Children[1], out.Children[2] = typ, decls
	} else if init := c.Node(2); init != nil {
		li, err := l.lower(init)
		if err != nil {
			return nil, err
		}
		out.Children[2] = li
	}
	for _, i := range []int{3, 4} {
		part, err := l.lowerOptional(c.Node(i))
		if err != nil {
			return nil, err
		}
		if part == nil {
			out.Children[i] = nil
		} else {
			out.Children[i] = part
		}
	}
	return out, nil
}

// lowerIdentifier renames the entry-point argument vector and turns bare
// references to fields of this class or an ancestor into explicit field
// references.
func (l *Lowerer) lowerIdentifier(n *ast.Node) *ast.Node {
	name := n.Leaf(0)
	if name == config.ArgsName {
		return ast.New("PrimaryIdentifier", config.ArgvName).At(n.Pos)
	}
	if _, ok := l.scopes.LookupVariable(name); ok {
		return n
	}
	if l.fieldInit {
		return n
	}
	if f := l.profile.Field(name); f != nil {
		return ast.New("LocalClassFieldReference", name).At(n.Pos)
	}
	if f, _, err := l.registry.FindField(l.profile.SuperName(), name); err == nil && f != nil {
		return ast.New("LocalClassFieldReference", name).At(n.Pos)
	}
	return n
}

// dynamicType is the most specific type an initializer reveals: the class
// of a new expression, or the static type of an existing reference.
func (l *Lowerer) dynamicType(init *ast.Node) string {
	switch {
	case init.Is("NewClassExpression"), init.Is("NewArrayExpression"):
		return l.typer.TypeOf(l.env(), init)
	case init.Is("PrimaryIdentifier"):
		if sym, ok := l.scopes.Lookup(init.Leaf(0)); ok && sym.Kind != symbols.ClassSymbol {
			return sym.Type
		}
	}
	return ""
}

func (l *Lowerer) env() overload.Env {
	return overload.Env{Scopes: l.scopes, Class: l.profile.Name}
}
