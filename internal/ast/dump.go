package ast

import (
	"strconv"
	"strings"
)

// Dump renders a tree one node per line, children indented by two spaces.
// Leaves are quoted and absent parts print as null.
func Dump(n *Node) string {
	var sb strings.Builder
	dump(&sb, n, 0)
	return sb.String()
}

func dump(sb *strings.Builder, c any, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	switch v := c.(type) {
	case nil:
		sb.WriteString("null\n")
	case string:
		sb.WriteString(strconv.Quote(v))
		sb.WriteByte('\n')
	case *Node:
		if v == nil {
			sb.WriteString("null\n")
			return
		}
		sb.WriteString(v.Name)
		if len(v.Children) == 0 {
			sb.WriteString("()\n")
			return
		}
		sb.WriteByte('\n')
		for _, child := range v.Children {
			dump(sb, child, depth+1)
		}
	}
}
