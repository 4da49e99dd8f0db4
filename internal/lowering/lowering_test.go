package lowering

import (
	"errors"
	"testing"

	"github.com/funvibe/cpptrans/internal/ast"
	src "github.com/funvibe/cpptrans/internal/ast/asttest"
	"github.com/funvibe/cpptrans/internal/classes"
	"github.com/funvibe/cpptrans/internal/diagnostics"
	"github.com/funvibe/cpptrans/internal/symbols"
)

func lowerUnit(t *testing.T, unit *ast.Node) (*Unit, *classes.Registry) {
	t.Helper()
	if err := ast.Validate(unit); err != nil {
		t.Fatalf("test tree is malformed: %v", err)
	}
	reg := classes.NewRegistry()
	out := New(symbols.NewScopes("test"), reg).LowerUnit(unit)
	return out, reg
}

func mustLower(t *testing.T, unit *ast.Node) (*Unit, *classes.Registry) {
	t.Helper()
	out, reg := lowerUnit(t, unit)
	for _, err := range out.Errors {
		t.Errorf("unexpected error: %v", err)
	}
	if t.Failed() {
		t.FailNow()
	}
	return out, reg
}

// member returns the lowered member of class with tag and name.
func member(t *testing.T, cls *ast.Node, tag, name string) *ast.Node {
	t.Helper()
	for _, m := range cls.Node(5).Nodes() {
		if !m.Is(tag) {
			continue
		}
		switch tag {
		case "MethodDeclaration":
			if m.Leaf(3) == name {
				return m
			}
		default:
			return m
		}
	}
	t.Fatalf("%s %s not found in %s", tag, name, cls.Leaf(1))
	return nil
}

func paramNamesOf(m *ast.Node) []string {
	var out []string
	for _, p := range m.Node(4).Nodes() {
		out = append(out, p.Leaf(3))
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func listClass() *ast.Node {
	return src.Class("List", "",
		src.Field(src.Mods(), "int", "item", nil),
		src.Field(src.Mods(), "List", "next", nil),
		src.Ctor("List", src.Params(src.Param("int", "item"), src.Param("List", "next")),
			src.Expr(src.Assign(src.Select(src.This(), "item"), src.Id("item"))),
			src.Expr(src.Assign(src.Select(src.This(), "next"), src.Id("next"))),
		),
	)
}

func TestConstructorBecomesInitializer(t *testing.T) {
	out, reg := mustLower(t, src.Unit(listClass()))
	cls := out.Classes[0]

	ctor := member(t, cls, "ConstructorDeclaration", "")
	if ctor.Size() != 7 {
		t.Fatalf("constructor has %d children, want 7", ctor.Size())
	}
	if ctor.Node(3).Size() != 0 {
		t.Errorf("target constructor should take no parameters, got %d", ctor.Node(3).Size())
	}
	bind := ast.Find(ctor, "ConstructorInit")
	if bind == nil || bind.Leaf(0) != "__vptr" || bind.Leaf(1) != "&__vtable" {
		t.Errorf("constructor does not bind the dispatch table: %v", bind)
	}

	init := member(t, cls, "MethodDeclaration", "init")
	if got := paramNamesOf(init); !equalStrings(got, []string{"__this", "item", "next"}) {
		t.Errorf("init parameters = %v", got)
	}
	if ast.TypeName(init.Node(2)) != "List" {
		t.Errorf("init returns %q, want List", ast.TypeName(init.Node(2)))
	}

	body := init.Node(7).Nodes()
	if len(body) != 4 {
		t.Fatalf("init body has %d statements, want 4", len(body))
	}
	call := body[0].Node(0)
	if !call.Is("InitCall") || call.Leaf(0) != "Object" {
		t.Fatalf("first statement = %v, want superclass InitCall", body[0])
	}
	if args := call.Node(1).Nodes(); len(args) != 1 || args[0].Leaf(0) != "__this" {
		t.Errorf("superclass init arguments = %v", call.Node(1))
	}
	ret := body[3]
	if !ret.Is("ReturnStatement") || ret.Node(0).Leaf(0) != "__this" {
		t.Errorf("last statement = %v, want return __this", ret)
	}

	p, _ := reg.Get("List")
	inits := p.Inits()
	if len(inits) != 1 || !equalStrings(inits[0].Params, []string{"int", "List"}) {
		t.Errorf("profile inits = %+v", inits)
	}
}

func TestExplicitSuperCallIsConsumed(t *testing.T) {
	base := src.Class("A", "",
		src.Field(src.Mods(), "int", "x", nil),
		src.Ctor("A", src.Params(src.Param("int", "x")), src.Expr(src.Assign(src.Select(src.This(), "x"), src.Id("x")))),
	)
	derived := src.Class("B", "A",
		src.Ctor("B", src.Params(src.Param("int", "y")),
			src.Super(src.Id("y")),
			src.Expr(src.Assign(src.Id("x"), src.Add(src.Id("y"), src.Int("1")))),
		),
	)
	out, _ := mustLower(t, src.Unit(base, derived))
	init := member(t, out.Classes[1], "MethodDeclaration", "init")
	body := init.Node(7).Nodes()
	if len(body) != 3 {
		t.Fatalf("init body has %d statements, want 3", len(body))
	}
	call := body[0].Node(0)
	if call.Leaf(0) != "A" {
		t.Errorf("InitCall targets %q, want A", call.Leaf(0))
	}
	args := call.Node(1).Nodes()
	if len(args) != 2 || args[1].Leaf(0) != "y" {
		t.Errorf("superclass init arguments = %v", call.Node(1))
	}
	if ast.Find(init, "CallExpression") != nil {
		t.Error("explicit super call survived lowering")
	}
	// x is inherited, so the assignment goes through the receiver.
	if ref := ast.Find(body[1], "LocalClassFieldReference"); ref == nil || ref.Leaf(0) != "x" {
		t.Errorf("inherited field not made explicit: %v", body[1])
	}
}

func TestDefaultConstructorIsSynthesized(t *testing.T) {
	out, reg := mustLower(t, src.Unit(src.Class("Empty", "")))
	cls := out.Classes[0]
	member(t, cls, "ConstructorDeclaration", "")
	init := member(t, cls, "MethodDeclaration", "init")
	if got := paramNamesOf(init); !equalStrings(got, []string{"__this"}) {
		t.Errorf("default init parameters = %v", got)
	}
	p, _ := reg.Get("Empty")
	if len(p.Inits()) != 1 {
		t.Errorf("want one init signature, got %d", len(p.Inits()))
	}
}

func TestMethodManglingAndReceiver(t *testing.T) {
	cls := src.Class("Calc", "",
		src.Method(src.Mods("public"), "int", "twice", src.Params(src.Param("int", "x")),
			src.Return(src.Add(src.Id("x"), src.Id("x")))),
		src.Method(src.Mods("public", "static"), "int", "square", src.Params(src.Param("int", "x"), src.Param("int[]", "unused")),
			src.Return(src.Binary("MultiplicativeExpression", src.Id("x"), "*", src.Id("x")))),
		src.Main(src.Println(src.Call(nil, "square", src.Int("3"), src.Null()))),
	)
	out, reg := mustLower(t, src.Unit(cls))
	lowered := out.Classes[0]

	twice := member(t, lowered, "MethodDeclaration", "m_twice_int")
	if got := paramNamesOf(twice); !equalStrings(got, []string{"x", "__this"}) {
		t.Errorf("instance method parameters = %v", got)
	}
	if pt := ast.Find(twice.Node(4), "PrimitiveType"); pt.Leaf(0) != "int32_t" {
		t.Errorf("parameter type = %q, want int32_t", pt.Leaf(0))
	}

	square := member(t, lowered, "MethodDeclaration", "m_square_int_intArray")
	if got := paramNamesOf(square); !equalStrings(got, []string{"x", "unused"}) {
		t.Errorf("static method parameters = %v", got)
	}

	main := member(t, lowered, "MethodDeclaration", "main")
	if got := paramNamesOf(main); !equalStrings(got, []string{"argv"}) {
		t.Errorf("main parameters = %v", got)
	}
	stmts := main.Node(7).Nodes()
	last := stmts[len(stmts)-1]
	if !last.Is("ReturnStatement") || last.Node(0).Leaf(0) != "0" {
		t.Errorf("main should end with return 0, got %v", last)
	}

	p, _ := reg.Get("Calc")
	if p.Method("main") != nil {
		t.Error("main must not be a profile method")
	}
	if m := p.Method("m_twice_int"); m == nil || !m.Dispatched() {
		t.Error("m_twice_int should be a dispatched method")
	}
	if m := p.Method("m_square_int_intArray"); m == nil || m.Dispatched() {
		t.Error("static method should not be dispatched")
	}
}

func TestEntryArgumentsAreRenamed(t *testing.T) {
	cls := src.Class("Echo", "",
		src.Main(
			src.Local("int", "n", src.Select(src.Id("args"), "length")),
			src.Println(src.Index(src.Id("args"), src.Int("0"))),
		),
	)
	out, _ := mustLower(t, src.Unit(cls))
	main := member(t, out.Classes[0], "MethodDeclaration", "main")

	count := ast.Find(main, "Declarator").Node(2)
	if !count.Is("AdditiveExpression") || count.Node(0).Leaf(0) != "argc" || count.Leaf(1) != "-" {
		t.Errorf("args.length lowered to %s", ast.Dump(count))
	}
	for _, id := range ast.FindAll(main, "PrimaryIdentifier") {
		if id.Leaf(0) == "args" {
			t.Error("args survived lowering")
		}
	}
	if sub := ast.Find(main, "SubscriptExpression"); sub.Node(0).Leaf(0) != "argv" {
		t.Errorf("subscript base = %v", sub.Node(0))
	}
}

func TestPrintSegments(t *testing.T) {
	tests := []struct {
		name string
		arg  *ast.Node
		want []string // tags of the streamed segments
	}{
		{"string first", src.Add(src.Add(src.Str("a"), src.Int("1")), src.Int("2")),
			[]string{"StringLiteral", "IntegerLiteral", "IntegerLiteral"}},
		{"arithmetic prefix", src.Add(src.Add(src.Int("1"), src.Int("2")), src.Str("a")),
			[]string{"AdditiveExpression", "StringLiteral"}},
		{"single non-string prefix", src.Add(src.Int("1"), src.Str("a")),
			[]string{"IntegerLiteral", "StringLiteral"}},
		{"pure arithmetic", src.Add(src.Int("1"), src.Int("2")),
			[]string{"AdditiveExpression"}},
		{"plain value", src.Id("n"),
			[]string{"PrimaryIdentifier"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := src.Class("P", "", src.Main(src.Local("int", "n", src.Int("4")), src.Println(tt.arg)))
			out, _ := mustLower(t, src.Unit(cls))
			po := ast.Find(out.Classes[0], "PrintOutput")
			if po == nil {
				t.Fatal("no PrintOutput produced")
			}
			kids := po.Nodes()
			if kids[0].Leaf(0) != "std::cout" || kids[len(kids)-1].Leaf(0) != "std::endl" {
				t.Errorf("stream bounds wrong: %s", ast.Dump(po))
			}
			var got []string
			for _, k := range kids[1 : len(kids)-1] {
				got = append(got, k.Name)
			}
			if !equalStrings(got, tt.want) {
				t.Errorf("segments = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrintWithoutNewline(t *testing.T) {
	cls := src.Class("P", "", src.Main(src.Expr(src.Call(src.Select(src.Id("System"), "out"), "print", src.Str("x")))))
	out, _ := mustLower(t, src.Unit(cls))
	po := ast.Find(out.Classes[0], "PrintOutput")
	for _, k := range po.Nodes() {
		if k.Is("PrintBound") && k.Leaf(0) == "std::endl" {
			t.Error("print must not end the line")
		}
	}
}

func TestFieldReferencesAndShadowing(t *testing.T) {
	cls := src.Class("Counter", "",
		src.Field(src.Mods("private"), "int", "count", src.Int("0")),
		src.Field(src.Mods(), "int", "copy", src.Id("count")),
		src.Method(src.Mods(), "void", "inc", src.Params(),
			src.Expr(src.Assign(src.Id("count"), src.Add(src.Id("count"), src.Int("1"))))),
		src.Method(src.Mods(), "int", "shadow", src.Params(),
			src.Local("int", "count", src.Int("5")),
			src.Return(src.Id("count"))),
	)
	out, reg := mustLower(t, src.Unit(cls))
	lowered := out.Classes[0]

	inc := member(t, lowered, "MethodDeclaration", "m_inc")
	if refs := ast.FindAll(inc, "LocalClassFieldReference"); len(refs) != 2 {
		t.Errorf("want 2 field references in inc, got %d", len(refs))
	}
	shadow := member(t, lowered, "MethodDeclaration", "m_shadow")
	if ast.Find(shadow, "LocalClassFieldReference") != nil {
		t.Error("local variable was turned into a field reference")
	}
	// Class-level initializers keep bare names.
	var fields []*ast.Node
	for _, m := range lowered.Node(5).Nodes() {
		if m.Is("FieldDeclaration") {
			fields = append(fields, m)
		}
	}
	if ast.Find(fields[1], "LocalClassFieldReference") != nil {
		t.Error("field initializer should keep bare names")
	}

	p, _ := reg.Get("Counter")
	if f := p.Field("count"); f == nil || !f.Private {
		t.Errorf("count should be a private field: %+v", f)
	}
	if ft, ok := p.DeclaredType("m_shadow", "count"); !ok || ft.Static != "int" {
		t.Errorf("local type not recorded: %+v", ft)
	}
}

func TestLocalTypesRecordDynamicClass(t *testing.T) {
	base := src.Class("Shape", "")
	derived := src.Class("Square", "Shape")
	user := src.Class("Use", "",
		src.Method(src.Mods(), "void", "run", src.Params(),
			src.Local("Shape", "s", src.NewObj("Square")),
			src.Local("Shape", "t", src.Id("s")),
			src.Local("int[]", "xs", src.NewArray("int", src.Int("3"))),
		),
	)
	_, reg := mustLower(t, src.Unit(base, derived, user))
	p, _ := reg.Get("Use")

	tests := []struct {
		name, static, dynamic string
	}{
		{"s", "Shape", "Square"},
		{"t", "Shape", "Shape"},
		{"xs", "int[]", "int[]"},
	}
	for _, tt := range tests {
		ft, ok := p.DeclaredType("m_run", tt.name)
		if !ok {
			t.Errorf("%s not recorded", tt.name)
			continue
		}
		if ft.Static != tt.static || ft.Dynamic != tt.dynamic {
			t.Errorf("%s: got %+v, want {%s %s}", tt.name, ft, tt.static, tt.dynamic)
		}
	}
}

func TestForLoopScope(t *testing.T) {
	cls := src.Class("Loop", "",
		src.Main(
			src.For("int", "i", src.Int("0"), src.Less(src.Id("i"), src.Int("3")), src.PostInc(src.Id("i")),
				src.Block(src.Println(src.Id("i")))),
			src.For("int", "i", src.Int("0"), src.Less(src.Id("i"), src.Int("2")), src.PostInc(src.Id("i")),
				src.Block()),
		),
	)
	out, _ := mustLower(t, src.Unit(cls))
	loops := ast.FindAll(out.Classes[0], "ForStatement")
	if len(loops) != 2 {
		t.Fatalf("want 2 loops, got %d", len(loops))
	}
	if pt := ast.Find(loops[0].Node(0), "PrimitiveType"); pt.Leaf(0) != "int32_t" {
		t.Errorf("loop variable type = %q", pt.Leaf(0))
	}
}

func TestUnsupportedLoopControl(t *testing.T) {
	loop := ast.New("ForStatement", ast.New("EnhancedForControl", src.Mods(), src.Type("int"), "x", src.Id("xs")), src.Block())
	cls := src.Class("L", "", src.Main(loop))
	out, _ := lowerUnit(t, src.Unit(cls))
	if len(out.Errors) != 1 || !errors.Is(out.Errors[0], &diagnostics.DiagnosticError{Code: diagnostics.ErrE001}) {
		t.Fatalf("want one E001, got %v", out.Errors)
	}
	if out.Errors[0].Class != "L" {
		t.Errorf("error class = %q", out.Errors[0].Class)
	}
}

func TestOrderPlacesSuperclassFirst(t *testing.T) {
	decls := []*ast.Node{
		src.Class("C", "B"),
		src.Class("B", "A"),
		src.Class("A", ""),
		src.Class("S", "String"),
	}
	var got []string
	for _, d := range Order(decls) {
		got = append(got, d.Leaf(1))
	}
	if !equalStrings(got, []string{"A", "S", "B", "C"}) {
		t.Errorf("order = %v", got)
	}
}

func TestFailureIsolation(t *testing.T) {
	broken := src.Class("A", "",
		src.Method(src.Mods(), "void", "bad", src.Params(), src.Class("Inner", "")),
	)
	child := src.Class("B", "A")
	sibling := src.Class("C", "")
	out, reg := lowerUnit(t, src.Unit(child, broken, sibling))

	if len(out.Classes) != 1 || out.Classes[0].Leaf(1) != "C" {
		t.Fatalf("only C should lower, got %d classes", len(out.Classes))
	}
	codes := map[string]diagnostics.ErrorCode{}
	for _, err := range out.Errors {
		codes[err.Class] = err.Code
	}
	if codes["A"] != diagnostics.ErrE001 {
		t.Errorf("A: got %q, want E001", codes["A"])
	}
	if codes["B"] != diagnostics.ErrC001 {
		t.Errorf("B: got %q, want C001", codes["B"])
	}
	if reg.IsClass("A") {
		t.Error("failed class stayed registered")
	}
	if !equalStrings(out.Order, []string{"A", "C", "B"}) {
		t.Errorf("order = %v", out.Order)
	}
}

func TestDuplicateSymbols(t *testing.T) {
	tests := []struct {
		name  string
		unit  *ast.Node
		class string
	}{
		{"duplicate class", src.Unit(src.Class("A", ""), src.Class("A", "")), "A"},
		{"duplicate field", src.Unit(src.Class("F", "",
			src.Field(src.Mods(), "int", "x", nil),
			src.Field(src.Mods(), "boolean", "x", nil))), "F"},
		{"duplicate method", src.Unit(src.Class("M", "",
			src.Method(src.Mods(), "void", "f", src.Params(src.Param("int", "a"))),
			src.Method(src.Mods(), "void", "f", src.Params(src.Param("int", "b"))))), "M"},
		{"duplicate local", src.Unit(src.Class("V", "",
			src.Method(src.Mods(), "void", "f", src.Params(),
				src.Local("int", "a", nil),
				src.Local("boolean", "a", nil)))), "V"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := lowerUnit(t, tt.unit)
			if len(out.Errors) != 1 {
				t.Fatalf("want one error, got %v", out.Errors)
			}
			err := out.Errors[0]
			if err.Code != diagnostics.ErrS001 || err.Class != tt.class {
				t.Errorf("got %v in %q, want S001 in %q", err, err.Class, tt.class)
			}
		})
	}
}

func TestOverloadsAreDistinct(t *testing.T) {
	cls := src.Class("O", "",
		src.Method(src.Mods(), "void", "f", src.Params(src.Param("int", "a"))),
		src.Method(src.Mods(), "void", "f", src.Params(src.Param("double", "a"))),
		src.Method(src.Mods(), "void", "f", src.Params(src.Param("O", "a"))),
	)
	out, _ := mustLower(t, src.Unit(cls))
	for _, name := range []string{"m_f_int", "m_f_double", "m_f_O"} {
		member(t, out.Classes[0], "MethodDeclaration", name)
	}
}

func TestLoweringLeavesInputUntouched(t *testing.T) {
	unit := src.Unit(listClass())
	before := ast.Dump(unit)
	mustLower(t, unit)
	if ast.Dump(unit) != before {
		t.Error("lowering modified its input")
	}
}

func TestLoweredNodesCarryScopes(t *testing.T) {
	scopes := symbols.NewScopes("test")
	out := New(scopes, classes.NewRegistry()).LowerUnit(src.Unit(listClass()))
	init := member(t, out.Classes[0], "MethodDeclaration", "init")
	if !scopes.Reenter(init) {
		t.Fatal("init method carries no scope")
	}
	defer scopes.Exit()
	if sym, ok := scopes.LookupVariable("item"); !ok || sym.Type != "int" {
		t.Errorf("item not visible in init scope: %+v", sym)
	}
	if sym, ok := scopes.LookupVariable("__this"); !ok || sym.Type != "List" {
		t.Errorf("__this not visible in init scope: %+v", sym)
	}
}
