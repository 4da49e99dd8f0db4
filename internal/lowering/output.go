package lowering

import (
	"github.com/funvibe/cpptrans/internal/ast"
	"github.com/funvibe/cpptrans/internal/config"
)

// isConsoleOutput matches System.out.print(...) and System.out.println(...).
func isConsoleOutput(call *ast.Node) bool {
	recv := call.Node(0)
	if !recv.Is("SelectionExpression") || recv.Leaf(1) != config.ConsoleField {
		return false
	}
	if id := recv.Node(0); !id.Is("PrimaryIdentifier") || id.Leaf(0) != config.ConsoleClass {
		return false
	}
	name := call.Leaf(2)
	return name == config.PrintName || name == config.PrintlnName
}

// lowerPrint turns console output into a PrintOutput node: the stream
// bound, one segment per printed value, and the line terminator for
// println.
func (l *Lowerer) lowerPrint(call *ast.Node) (*ast.Node, error) {
	out := ast.New("PrintOutput", ast.New("PrintBound", config.StreamName)).At(call.Pos)
	for _, arg := range call.Node(3).Nodes() {
		la, err := l.lower(arg)
		if err != nil {
			return nil, err
		}
		for _, seg := range l.segments(la) {
			out.Children = append(out.Children, seg)
		}
	}
	if call.Leaf(2) == config.PrintlnName {
		out.Children = append(out.Children, ast.New("PrintBound", config.EndLineName))
	}
	return out, nil
}

// segments splits a string concatenation into separately streamed
// operands. Operands before the chain first becomes string-typed stay one
// arithmetic segment, matching left-to-right evaluation.
func (l *Lowerer) segments(e *ast.Node) []any {
	var operands []*ast.Node
	cur := e
	for cur.Is("AdditiveExpression") && cur.Leaf(1) == "+" {
		operands = append([]*ast.Node{cur.Node(2)}, operands...)
		cur = cur.Node(0)
	}
	operands = append([]*ast.Node{cur}, operands...)

	first := -1
	for i, op := range operands {
		if l.typer.TypeOf(l.env(), op) == config.StringClassName {
			first = i
			break
		}
	}
	if first < 0 || len(operands) == 1 {
		return []any{e}
	}

	var out []any
	start := 0
	if first >= 2 {
		acc := operands[0]
		for _, op := range operands[1:first] {
			acc = ast.New("AdditiveExpression", acc, "+", op).At(op.Pos)
		}
		out = append(out, acc)
		start = first
	}
	for _, op := range operands[start:] {
		out = append(out, op)
	}
	return out
}
