package lowering

import (
	"fmt"
	"slices"
	"strings"

	"github.com/funvibe/cpptrans/internal/ast"
	"github.com/funvibe/cpptrans/internal/classes"
	"github.com/funvibe/cpptrans/internal/config"
	"github.com/funvibe/cpptrans/internal/diagnostics"
	"github.com/funvibe/cpptrans/internal/naming"
	"github.com/funvibe/cpptrans/internal/symbols"
)

// LowerClass lowers one ClassDeclaration and registers its profile. The
// superclass, when declared, must already be registered.
func (l *Lowerer) LowerClass(decl *ast.Node) (*ast.Node, error) {
	name := decl.Leaf(1)
	super := SuperclassName(decl)
	if super != "" {
		if _, err := l.registry.MustGet(super); err != nil {
			return nil, diagnostics.NewError(diagnostics.ErrC001, decl.Pos,
				fmt.Sprintf("superclass %q of %q is not registered", super, name))
		}
	}

	profile := classes.NewProfile(name, super)
	profile.Pos = decl.Pos
	l.profile = profile
	defer func() { l.profile = nil }()

	l.scopes.Enter(name, symbols.ScopeClass)
	defer l.scopes.Exit()

	superSym := &symbols.Symbol{Name: config.SuperCallName, Kind: symbols.SuperclassSymbol, Type: profile.SuperName()}
	if err := l.scopes.Define(superSym); err != nil {
		return nil, err
	}

	body := decl.Node(5)
	if err := l.collectMembers(body); err != nil {
		return nil, err
	}
	if err := l.registry.Register(profile); err != nil {
		return nil, err
	}

	loweredBody, err := l.lowerMembers(body)
	if err != nil {
		l.registry.Remove(name)
		return nil, err
	}

	out := decl.With(5, loweredBody)
	out = out.With(2, nil)
	out = out.With(4, nil)
	l.scopes.Mark(out)
	return out, nil
}

// collectMembers records fields and method signatures before any body is
// lowered, so that bodies may refer to members declared further down.
func (l *Lowerer) collectMembers(body *ast.Node) error {
	ctors := 0
	for _, m := range body.Nodes() {
		switch m.Name {
		case "FieldDeclaration":
			if err := l.collectField(m); err != nil {
				return err
			}
		case "MethodDeclaration":
			sig := methodSig(m)
			sym := &symbols.Symbol{Name: sig.Mangled, Kind: symbols.FunctionSymbol,
				Type: joinTypes(sig.Params), Modifiers: ast.ModifierWords(m.Node(0)), Pos: m.Pos}
			if err := l.scopes.Define(sym); err != nil {
				return err
			}
			if !isMain(m) {
				l.profile.AddMethod(sig)
			}
		case "ConstructorDeclaration":
			ctors++
			params := paramTypes(m.Node(3))
			sym := &symbols.Symbol{Name: classes.InitKey(params), Kind: symbols.FunctionSymbol,
				Type: joinTypes(params), Modifiers: ast.ModifierWords(m.Node(0)), Pos: m.Pos}
			if err := l.scopes.Define(sym); err != nil {
				return err
			}
			l.profile.AddMethod(l.initSig(params, paramNames(m.Node(3))))
		}
	}
	if ctors == 0 {
		if err := l.scopes.Define(&symbols.Symbol{Name: classes.InitKey(nil), Kind: symbols.FunctionSymbol}); err != nil {
			return err
		}
		l.profile.AddMethod(l.initSig(nil, nil))
	}
	return nil
}

func (l *Lowerer) collectField(m *ast.Node) error {
	mods := ast.ModifierWords(m.Node(0))
	base := ast.TypeName(m.Node(1))
	for _, d := range m.Node(2).Nodes() {
		name := d.Leaf(0)
		declared := naming.ArrayOf(base, d.Node(1).Size())
		sym := &symbols.Symbol{Name: name, Kind: symbols.VariableSymbol, Type: declared, Modifiers: mods, Pos: d.Pos}
		if err := l.scopes.Define(sym); err != nil {
			return err
		}
		l.profile.AddField(&classes.Field{
			Name:    name,
			Type:    declared,
			Static:  slices.Contains(mods, "static"),
			Private: slices.Contains(mods, "private"),
			Pos:     d.Pos,
		})
		l.profile.FieldTypes[name] = classes.FieldType{Static: declared, Dynamic: l.dynamicType(d.Node(2))}
	}
	return nil
}

func (l *Lowerer) initSig(params, names []string) *classes.MethodSig {
	return &classes.MethodSig{
		Name:       config.InitName,
		Mangled:    config.InitName,
		Return:     l.profile.Name,
		Params:     params,
		ParamNames: names,
		Init:       true,
	}
}

func (l *Lowerer) lowerMembers(body *ast.Node) (*ast.Node, error) {
	var members, inits []any
	ctors := 0
	for _, m := range body.Nodes() {
		switch m.Name {
		case "FieldDeclaration":
			f, err := l.lowerFieldMember(m)
			if err != nil {
				return nil, err
			}
			members = append(members, f)
		case "MethodDeclaration":
			md, err := l.lowerMethod(m)
			if err != nil {
				return nil, err
			}
			members = append(members, md)
		case "ConstructorDeclaration":
			ctors++
			ctor, init, err := l.lowerConstructor(m)
			if err != nil {
				return nil, err
			}
			members = append(members, ctor)
			inits = append(inits, init)
		case "EmptyDeclaration":
		default:
			return nil, unsupported(m, "class member")
		}
	}
	if ctors == 0 {
		ctor, init, err := l.lowerConstructor(l.defaultConstructor(body))
		if err != nil {
			return nil, err
		}
		members = append(members, ctor)
		inits = append(inits, init)
	}
	out := ast.New("ClassBody", append(members, inits...)...)
	out.Pos = body.Pos
	return out, nil
}

// defaultConstructor builds the public zero-argument constructor with an
// empty body that a class without constructors implicitly has.
func (l *Lowerer) defaultConstructor(body *ast.Node) *ast.Node {
	return ast.New("ConstructorDeclaration",
		ast.New("Modifiers", ast.New("Modifier", "public")),
		nil,
		l.profile.Name,
		ast.New("FormalParameters"),
		nil,
		ast.New("Block"),
	).At(body.Pos)
}

func (l *Lowerer) lowerFieldMember(m *ast.Node) (*ast.Node, error) {
	l.fieldInit = true
	defer func() { l.fieldInit = false }()

	var decls []any
	for _, d := range m.Node(2).Nodes() {
		init, err := l.lowerOptional(d.Node(2))
		if err != nil {
			return nil, err
		}
		decls = append(decls, ast.New("Declarator", d.Leaf(0), d.Get(1), init).At(d.Pos))
	}
	typ, err := l.lower(m.Node(1))
	if err != nil {
		return nil, err
	}
	return ast.New("FieldDeclaration", m.Get(0), typ, ast.New("Declarators", decls...)).At(m.Pos), nil
}

func (l *Lowerer) lowerMethod(m *ast.Node) (*ast.Node, error) {
	sig := methodSig(m)
	static := slices.Contains(ast.ModifierWords(m.Node(0)), "static")
	l.method = sig.Mangled
	defer func() { l.method = "" }()

	l.scopes.Enter(sig.Mangled, symbols.ScopeMethod)
	defer l.scopes.Exit()

	params, err := l.lowerParams(m.Node(4))
	if err != nil {
		return nil, err
	}
	if !static {
		this, err := l.defineThis(m)
		if err != nil {
			return nil, err
		}
		params = append(params, this)
	}

	result, err := l.lower(m.Node(2))
	if err != nil {
		return nil, err
	}

	var body *ast.Node
	if src := m.Node(7); src != nil {
		body, err = l.lowerBlock(src)
		if err != nil {
			return nil, err
		}
		if isMain(m) {
			bodyScope, _ := l.scopes.Marked(body)
			body = body.Append(ast.New("ReturnStatement", ast.New("IntegerLiteral", "0")))
			l.scopes.MarkWith(body, bodyScope)
		}
	}

	out := ast.New("MethodDeclaration",
		m.Get(0), nil, result, sig.Mangled,
		ast.New("FormalParameters", params...), nil, nil, body,
	).At(m.Pos)
	l.scopes.Mark(out)
	return out, nil
}

// lowerConstructor returns the zero-argument target constructor, which only
// binds the dispatch table, and the paired initializer method that carries
// the parameters, the superclass initialization and the original body.
func (l *Lowerer) lowerConstructor(m *ast.Node) (*ast.Node, *ast.Node, error) {
	types := paramTypes(m.Node(3))
	l.method = classes.InitKey(types)
	defer func() { l.method = "" }()

	l.scopes.Enter(l.method, symbols.ScopeMethod)
	defer l.scopes.Exit()

	params, err := l.lowerParams(m.Node(3))
	if err != nil {
		return nil, nil, err
	}
	this, err := l.defineThis(m)
	if err != nil {
		return nil, nil, err
	}

	src := m.Node(5)
	stmts := slices.Clone(src.Children)
	superArgs := []any{ast.New("PrimaryIdentifier", config.ThisName)}
	if len(stmts) > 0 {
		if args := superCallArgs(stmts[0]); args != nil {
			for _, a := range args.Nodes() {
				la, err := l.lower(a)
				if err != nil {
					return nil, nil, err
				}
				superArgs = append(superArgs, la)
			}
			stmts = stmts[1:]
		}
	}

	rest := ast.New("Block", stmts...)
	rest.Pos = src.Pos
	block, err := l.lowerBlock(rest)
	if err != nil {
		return nil, nil, err
	}
	blockScope, _ := l.scopes.Marked(block)

	initCall := ast.New("ExpressionStatement",
		ast.New("InitCall", l.profile.SuperName(), ast.New("Arguments", superArgs...)))
	initBody := ast.New("Block", initCall).Append(block.Children...).
		Append(ast.New("ReturnStatement", ast.New("PrimaryIdentifier", config.ThisName)))
	initBody.Pos = src.Pos
	l.scopes.MarkWith(initBody, blockScope)

	init := ast.New("MethodDeclaration",
		ast.New("Modifiers", ast.New("Modifier", "public")),
		nil,
		classType(l.profile.Name),
		config.InitName,
		ast.New("FormalParameters", append([]any{this}, params...)...),
		nil, nil, initBody,
	).At(m.Pos)
	l.scopes.Mark(init)

	ctor := ast.New("ConstructorDeclaration",
		m.Get(0), nil, l.profile.Name,
		ast.New("FormalParameters"),
		nil,
		ast.New("InitList", ast.New("ConstructorInit", config.VPtrName, "&"+config.VTableName)),
		ast.New("Block"),
	).At(m.Pos)
	l.scopes.Mark(ctor)
	return ctor, init, nil
}

// superCallArgs returns the Arguments of an explicit super(...) statement.
func superCallArgs(stmt any) *ast.Node {
	s, ok := stmt.(*ast.Node)
	if !ok || !s.Is("ExpressionStatement") {
		return nil
	}
	call := s.Node(0)
	if !call.Is("CallExpression") || call.Get(0) != nil {
		return nil
	}
	if name := call.Leaf(2); name != config.SuperCallName && name != config.SuperCallMangle {
		return nil
	}
	if args := call.Node(3); args != nil {
		return args
	}
	return ast.New("Arguments")
}

func (l *Lowerer) defineThis(at *ast.Node) (*ast.Node, error) {
	sym := &symbols.Symbol{Name: config.ThisName, Kind: symbols.ParameterSymbol, Type: l.profile.Name, Pos: at.Pos}
	if err := l.scopes.Define(sym); err != nil {
		return nil, err
	}
	return ast.New("FormalParameter", ast.New("Modifiers"), classType(l.profile.Name), nil, config.ThisName, nil), nil
}

func (l *Lowerer) lowerParams(params *ast.Node) ([]any, error) {
	var out []any
	for _, p := range params.Nodes() {
		name := renameArgs(p.Leaf(3))
		declared := naming.ArrayOf(ast.TypeName(p.Node(1)), p.Node(4).Size())
		sym := &symbols.Symbol{Name: name, Kind: symbols.ParameterSymbol, Type: declared,
			Modifiers: ast.ModifierWords(p.Node(0)), Pos: p.Pos}
		if err := l.scopes.Define(sym); err != nil {
			return nil, err
		}
		typ, err := l.lower(p.Node(1))
		if err != nil {
			return nil, err
		}
		out = append(out, ast.New("FormalParameter", p.Get(0), typ, p.Get(2), name, p.Get(4)).At(p.Pos))
	}
	return out, nil
}

func methodSig(m *ast.Node) *classes.MethodSig {
	mods := ast.ModifierWords(m.Node(0))
	name := m.Leaf(3)
	params := paramTypes(m.Node(4))
	mangled := naming.Method(name, params)
	if isMain(m) {
		mangled = config.MainName
	}
	return &classes.MethodSig{
		Name:       name,
		Mangled:    mangled,
		Return:     ast.TypeName(m.Node(2)),
		Params:     params,
		ParamNames: paramNames(m.Node(4)),
		Static:     slices.Contains(mods, "static"),
		Private:    slices.Contains(mods, "private"),
		Pos:        m.Pos,
	}
}

func isMain(m *ast.Node) bool {
	return m.Is("MethodDeclaration") && m.Leaf(3) == config.MainName &&
		slices.Contains(ast.ModifierWords(m.Node(0)), "static")
}

func paramTypes(params *ast.Node) []string {
	var out []string
	for _, p := range params.Nodes() {
		out = append(out, naming.ArrayOf(ast.TypeName(p.Node(1)), p.Node(4).Size()))
	}
	return out
}

func paramNames(params *ast.Node) []string {
	var out []string
	for _, p := range params.Nodes() {
		out = append(out, renameArgs(p.Leaf(3)))
	}
	return out
}

func joinTypes(types []string) string {
	return strings.Join(types, " ")
}

func classType(name string) *ast.Node {
	return ast.New("Type", ast.New("QualifiedIdentifier", name), nil)
}

func renameArgs(name string) string {
	if name == config.ArgsName {
		return config.ArgvName
	}
	return name
}
