package ast

import (
	"fmt"

	"github.com/funvibe/cpptrans/internal/token"
	"gopkg.in/yaml.v3"
)

// Decode reads a serialized tree. A node is either a mapping
//
//	{tag: Name, loc: "File.java:3:5", children: [...]}
//
// or the compact sequence [Name, child, ...]. Children are null, scalars
// (leaf tokens) or nodes. file names the tree file in fallback positions.
func Decode(data []byte, file string) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", file, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("decoding %s: empty document", file)
	}
	d := decoder{file: file}
	v, err := d.child(doc.Content[0])
	if err != nil {
		return nil, err
	}
	root, ok := v.(*Node)
	if !ok {
		return nil, fmt.Errorf("decoding %s: root is not a node", file)
	}
	return root, nil
}

type decoder struct {
	file string
}

func (d decoder) fail(y *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%s:%d:%d: %s", d.file, y.Line, y.Column, fmt.Sprintf(format, args...))
}

func (d decoder) child(y *yaml.Node) (any, error) {
	switch y.Kind {
	case yaml.AliasNode:
		return d.child(y.Alias)
	case yaml.ScalarNode:
		if y.ShortTag() == "!!null" {
			return nil, nil
		}
		return y.Value, nil
	case yaml.SequenceNode:
		return d.sequence(y)
	case yaml.MappingNode:
		return d.mapping(y)
	default:
		return nil, d.fail(y, "unexpected yaml node kind %d", y.Kind)
	}
}

func (d decoder) sequence(y *yaml.Node) (*Node, error) {
	if len(y.Content) == 0 || y.Content[0].Kind != yaml.ScalarNode {
		return nil, d.fail(y, "sequence node must start with its tag name")
	}
	n := &Node{Name: y.Content[0].Value, Pos: d.fallback(y)}
	for _, c := range y.Content[1:] {
		v, err := d.child(c)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, v)
	}
	return n, nil
}

func (d decoder) mapping(y *yaml.Node) (*Node, error) {
	n := &Node{Pos: d.fallback(y)}
	for i := 0; i+1 < len(y.Content); i += 2 {
		key, val := y.Content[i], y.Content[i+1]
		switch key.Value {
		case "tag":
			n.Name = val.Value
		case "loc":
			pos, err := token.ParsePosition(val.Value)
			if err != nil {
				return nil, d.fail(val, "%v", err)
			}
			n.Pos = pos
		case "children":
			if val.Kind != yaml.SequenceNode {
				return nil, d.fail(val, "children must be a sequence")
			}
			for _, c := range val.Content {
				v, err := d.child(c)
				if err != nil {
					return nil, err
				}
				n.Children = append(n.Children, v)
			}
		default:
			return nil, d.fail(key, "unknown node key %q", key.Value)
		}
	}
	if n.Name == "" {
		return nil, d.fail(y, "node without tag")
	}
	return n, nil
}

func (d decoder) fallback(y *yaml.Node) token.Position {
	return token.Position{File: d.file, Line: y.Line, Column: y.Column}
}

// Encode serializes a tree in the mapping form accepted by Decode.
func Encode(n *Node) ([]byte, error) {
	return yaml.Marshal(encodeNode(n))
}

func encodeNode(n *Node) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode}
	m.Content = append(m.Content, scalar("tag"), scalar(n.Name))
	if n.Pos.IsValid() {
		m.Content = append(m.Content, scalar("loc"), scalar(n.Pos.String()))
	}
	if len(n.Children) > 0 {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, c := range n.Children {
			switch v := c.(type) {
			case nil:
				seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"})
			case string:
				s := scalar(v)
				s.Style = yaml.DoubleQuotedStyle
				seq.Content = append(seq.Content, s)
			case *Node:
				seq.Content = append(seq.Content, encodeNode(v))
			}
		}
		m.Content = append(m.Content, scalar("children"), seq)
	}
	return m
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
