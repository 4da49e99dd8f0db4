package ast

import (
	"github.com/funvibe/cpptrans/internal/naming"
)

// TypeName spells a Type, PrimitiveType, QualifiedIdentifier or VoidType
// node as a source type name such as "int", "List" or "String[]".
// Lowered primitive spellings are mapped back to their source names.
func TypeName(n *Node) string {
	if n == nil {
		return ""
	}
	switch n.Name {
	case "Type":
		return naming.ArrayOf(TypeName(n.Node(0)), n.Node(1).Size())
	case "PrimitiveType":
		return naming.SourcePrimitive(n.Leaf(0))
	case "QualifiedIdentifier":
		return n.Leaf(n.Size() - 1)
	case "VoidType":
		return "void"
	}
	return ""
}

// ModifierWords returns the words of a Modifiers node.
func ModifierWords(n *Node) []string {
	var out []string
	for _, m := range n.Nodes() {
		if m.Is("Modifier") {
			out = append(out, m.Leaf(0))
		}
	}
	return out
}
