package ast

import (
	"fmt"

	"github.com/funvibe/cpptrans/internal/diagnostics"
)

// Variadic marks tags that take any number of children.
const Variadic = -1

// Arity lists the permitted child counts per tag. Tags not listed are
// passed through unchecked.
var Arity = map[string][]int{
	// declarations
	"CompilationUnit":        {Variadic},
	"ClassDeclaration":       {6},
	"ClassBody":              {Variadic},
	"Extension":              {1},
	"Implementation":         {Variadic},
	"FieldDeclaration":       {3},
	"Declarators":            {Variadic},
	"Declarator":             {3},
	"MethodDeclaration":      {8},
	"ConstructorDeclaration": {6, 7},
	"FormalParameters":       {Variadic},
	"FormalParameter":        {5},
	"Modifiers":              {Variadic},
	"Modifier":               {1},
	"Type":                   {2},
	"PrimitiveType":          {1},
	"QualifiedIdentifier":    {Variadic},
	"Dimensions":             {Variadic},
	"VoidType":               {0},

	// statements
	"Block":                {Variadic},
	"ExpressionStatement":  {1},
	"ReturnStatement":      {0, 1},
	"ConditionalStatement": {2, 3},
	"WhileStatement":       {2},
	"DoWhileStatement":     {2},
	"ForStatement":         {2},
	"BasicForControl":      {5},
	"ExpressionList":       {Variadic},
	"BreakStatement":       {0, 1},
	"ContinueStatement":    {0, 1},
	"EmptyStatement":       {0},

	// expressions
	"Expression":                {3},
	"CallExpression":            {4},
	"Arguments":                 {Variadic},
	"PrimaryIdentifier":         {1},
	"SelectionExpression":       {2},
	"SubscriptExpression":       {2},
	"ThisExpression":            {0, 1},
	"NewClassExpression":        {5},
	"NewArrayExpression":        {4},
	"ConcreteDimensions":        {Variadic},
	"CastExpression":            {2},
	"AdditiveExpression":        {3},
	"MultiplicativeExpression":  {3},
	"RelationalExpression":      {3},
	"EqualityExpression":        {3},
	"LogicalAndExpression":      {2},
	"LogicalOrExpression":       {2},
	"UnaryExpression":           {2},
	"PostfixExpression":         {2},
	"LogicalNegationExpression": {1},
	"ConditionalExpression":     {3},
	"StringLiteral":             {1},
	"IntegerLiteral":            {1},
	"FloatingPointLiteral":      {1},
	"CharacterLiteral":          {1},
	"BooleanLiteral":            {1},
	"NullLiteral":               {0},

	// lowering output
	"LocalClassFieldReference": {1},
	"PrintOutput":              {Variadic},
	"PrintBound":               {1},
	"InitList":                 {Variadic},
	"ConstructorInit":          {2},
	"InitCall":                 {2},
}

// CheckShape verifies the arity of a single node.
func CheckShape(n *Node) error {
	allowed, ok := Arity[n.Name]
	if !ok {
		return nil
	}
	for _, a := range allowed {
		if a == Variadic || a == len(n.Children) {
			return nil
		}
	}
	return fmt.Errorf("%s has %d children, want %v", n.Name, len(n.Children), allowed)
}

// Validate checks every node of the tree against Arity.
func Validate(root *Node) *diagnostics.DiagnosticError {
	var bad *diagnostics.DiagnosticError
	Walk(root, func(n *Node) bool {
		if bad != nil {
			return false
		}
		if err := CheckShape(n); err != nil {
			bad = diagnostics.NewError(diagnostics.ErrL001, n.Pos, err.Error())
			return false
		}
		return true
	})
	return bad
}
