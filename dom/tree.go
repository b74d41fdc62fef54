package dom

// Tree is one immutable snapshot of a document: a root node plus an
// index of every element by identity. The diff engine reads two Trees
// and never writes either.
type Tree struct {
	Root *Node
	ByID map[NodeID]*Node
}

// Build indexes root's elements, wires parent pointers and computes
// all signatures bottom-up. It takes ownership of root.
func Build(root *Node) *Tree {
	t := &Tree{
		Root: root,
		ByID: map[NodeID]*Node{},
	}
	if root == nil {
		return t
	}
	root.Visit(func(n *Node, isPost bool) (bool, error) {
		if isPost {
			return false, nil
		}
		if n.Kind == ElementKind {
			t.ByID[n.ID] = n
			for _, kid := range n.Kids {
				kid.Parent = n
			}
		}
		return true, nil
	})
	Fingerprint(root)
	return t
}

// Lookup is nil-safe on t: a nil or empty tree matches nothing.
func (t *Tree) Lookup(id NodeID) *Node {
	if t == nil {
		return nil
	}
	return t.ByID[id]
}

func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	if t.Root == nil {
		return &Tree{ByID: map[NodeID]*Node{}}
	}
	return Build(t.Root.Clone())
}
