package ast

// Walk visits n and its descendants depth-first in child order. When fn
// returns false the children of that node are skipped.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		if cn, ok := c.(*Node); ok {
			Walk(cn, fn)
		}
	}
}

// Find returns the first node in depth-first order with the given tag.
func Find(n *Node, name string) *Node {
	var found *Node
	Walk(n, func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.Name == name {
			found = c
			return false
		}
		return true
	})
	return found
}

// FindAll returns every node with the given tag in depth-first order.
func FindAll(n *Node, name string) []*Node {
	var out []*Node
	Walk(n, func(c *Node) bool {
		if c.Name == name {
			out = append(out, c)
		}
		return true
	})
	return out
}
