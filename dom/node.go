package dom

import (
	"fmt"
	"maps"
)

type Kind int

const (
	ElementKind Kind = iota
	TextKind
)

func (k Kind) String() string {
	switch k {
	case ElementKind:
		return "Element"
	case TextKind:
		return "Text"
	}
	return "<unknown kind>"
}

// NodeID identifies an element consistently across the old and new
// snapshots of one document. Text nodes carry no identity.
type NodeID int64

// Node is a tagged union over elements and text runs, discriminated by
// Kind. Element fields are zero for text nodes and vice versa.
type Node struct {
	Kind   Kind
	ID     NodeID
	Parent *Node

	Tag     string
	Attrs   map[string]string
	Kids    []*Node
	AttrSig uint64
	KidSig  uint64
	TreeSig uint64

	Text    string
	TextSig uint64
}

func FromElement(id NodeID, tag string, attrs map[string]string, kids ...*Node) *Node {
	n := &Node{
		Kind:  ElementKind,
		ID:    id,
		Tag:   tag,
		Attrs: attrs,
		Kids:  kids,
	}
	for _, kid := range kids {
		kid.Parent = n
	}
	return n
}

func FromText(s string) *Node {
	return &Node{
		Kind: TextKind,
		Text: s,
	}
}

func (n *Node) Clone() *Node {
	res := &Node{}
	return n.CloneTo(res)
}

func (n *Node) CloneTo(dst *Node) *Node {
	dst.Kind = n.Kind
	dst.ID = n.ID
	dst.Parent = n.Parent
	dst.Tag = n.Tag
	if n.Attrs != nil {
		dst.Attrs = maps.Clone(n.Attrs)
	}
	dst.AttrSig = n.AttrSig
	dst.KidSig = n.KidSig
	dst.TreeSig = n.TreeSig
	dst.Text = n.Text
	dst.TextSig = n.TextSig
	dst.Kids = make([]*Node, len(n.Kids))
	for i, kid := range n.Kids {
		dstKid := &Node{}
		kid.CloneTo(dstKid)
		dstKid.Parent = dst
		dst.Kids[i] = dstKid
	}
	return dst
}

func (n *Node) Root() *Node {
	res := n
	for res.Parent != nil {
		res = res.Parent
	}
	return res
}

// KidIndex returns the position of kid in n.Kids, or -1.
func (n *Node) KidIndex(kid *Node) int {
	for i, k := range n.Kids {
		if k == kid {
			return i
		}
	}
	return -1
}

func (n *Node) Visit(f func(n *Node, isPost bool) (bool, error)) error {
	dive, err := f(n, false)
	if err != nil {
		return err
	}
	if dive {
		for _, kid := range n.Kids {
			if err := kid.Visit(f); err != nil {
				return err
			}
		}
	}
	if _, err := f(n, true); err != nil {
		return err
	}
	return nil
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.Kind == TextKind {
		return fmt.Sprintf("text %q", n.Text)
	}
	return fmt.Sprintf("<%s #%d>", n.Tag, n.ID)
}
