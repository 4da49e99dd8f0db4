// Package ast models source and target trees as generic tagged nodes.
//
// A Node carries a tag Name and an ordered list of children. Each child is
// nil (an absent optional part), a string (a leaf token) or a *Node. The
// child arity and the role of each position are fixed by the tag, see
// Arity. Nodes are treated as immutable once built: With and Append return
// modified copies so that lowering builds a fresh tree and never writes
// into the tree it reads.
package ast

import (
	"fmt"

	"github.com/funvibe/cpptrans/internal/token"
)

type Node struct {
	Name     string
	Children []any
	Pos      token.Position
}

// New builds a node. Children must be nil, string or *Node.
func New(name string, children ...any) *Node {
	for i, c := range children {
		children[i] = normalizeChild(c)
	}
	return &Node{Name: name, Children: children}
}

func normalizeChild(c any) any {
	switch v := c.(type) {
	case nil, string:
		return v
	case *Node:
		if v == nil {
			return nil
		}
		return v
	default:
		panic(fmt.Sprintf("ast: invalid child type %T", c))
	}
}

// At sets the position and returns n, for use in builder chains.
func (n *Node) At(pos token.Position) *Node {
	n.Pos = pos
	return n
}

// Size returns the number of children; zero for a nil node.
func (n *Node) Size() int {
	if n == nil {
		return 0
	}
	return len(n.Children)
}

// Get returns child i, or nil when out of range.
func (n *Node) Get(i int) any {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Node returns child i when it is a node.
func (n *Node) Node(i int) *Node {
	c, _ := n.Get(i).(*Node)
	return c
}

// Leaf returns child i when it is a leaf token.
func (n *Node) Leaf(i int) string {
	s, _ := n.Get(i).(string)
	return s
}

// Is reports whether n is non-nil and carries the tag name.
func (n *Node) Is(name string) bool {
	return n != nil && n.Name == name
}

// Nodes returns the node children, skipping leaves and absent parts.
func (n *Node) Nodes() []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if cn, ok := c.(*Node); ok {
			out = append(out, cn)
		}
	}
	return out
}

// With returns a copy of n whose child i is replaced by v.
func (n *Node) With(i int, v any) *Node {
	cp := n.Clone()
	cp.Children[i] = normalizeChild(v)
	return cp
}

// Append returns a copy of n with extra children.
func (n *Node) Append(vs ...any) *Node {
	cp := n.Clone()
	for _, v := range vs {
		cp.Children = append(cp.Children, normalizeChild(v))
	}
	return cp
}

// Insert returns a copy of n with v placed before child i.
func (n *Node) Insert(i int, v any) *Node {
	cp := &Node{Name: n.Name, Pos: n.Pos, Children: make([]any, 0, len(n.Children)+1)}
	cp.Children = append(cp.Children, n.Children[:i]...)
	cp.Children = append(cp.Children, normalizeChild(v))
	cp.Children = append(cp.Children, n.Children[i:]...)
	return cp
}

// Clone copies n shallowly: the child slice is new, the children are shared.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	children := make([]any, len(n.Children))
	copy(children, n.Children)
	return &Node{Name: n.Name, Children: children, Pos: n.Pos}
}

// Equal compares two trees structurally, ignoring positions.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		switch ca := a.Children[i].(type) {
		case nil:
			if b.Children[i] != nil {
				return false
			}
		case string:
			if cb, ok := b.Children[i].(string); !ok || cb != ca {
				return false
			}
		case *Node:
			cb, ok := b.Children[i].(*Node)
			if !ok || !Equal(ca, cb) {
				return false
			}
		}
	}
	return true
}
