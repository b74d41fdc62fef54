// Package apply is a reference edit applier: it replays a script onto
// a mutable tree the way a real mirror (e.g. a browser DOM) would, in
// script order. It exists for round-trip verification and offline
// tooling; the diff engine does not depend on it.
package apply

import (
	"fmt"

	"github.com/treewire/treewire/debug"
	"github.com/treewire/treewire/dom"
	"github.com/treewire/treewire/edit"
)

// Apply mutates t in place. t must own its nodes (use Tree.Clone when
// the original snapshot is still needed). Errors indicate a script
// that does not fit the tree; the tree may be partially modified.
func Apply(t *dom.Tree, script edit.Script) error {
	ap := &applier{
		t:    t,
		held: map[dom.NodeID]*dom.Node{},
	}
	for i, e := range script {
		if debug.Apply() {
			debug.Logf("apply %d: %s\n", i, e.Op())
		}
		if err := ap.apply(e); err != nil {
			return fmt.Errorf("edit %d (%s): %w", i, e.Op(), err)
		}
	}
	return nil
}

type applier struct {
	t *dom.Tree
	// held keeps nodes detached by RememberNodes alive until their
	// move lands.
	held map[dom.NodeID]*dom.Node
}

func (ap *applier) apply(e edit.Edit) error {
	switch x := e.(type) {
	case *edit.RememberNodes:
		return ap.remember(x)
	case *edit.ElementInsert:
		return ap.insertElement(x)
	case *edit.ElementDelete:
		return ap.deleteElement(x)
	case *edit.ElementMove:
		return ap.moveElement(x)
	case *edit.TextInsert:
		return ap.insertText(x)
	case *edit.TextDelete:
		return ap.deleteText(x)
	case *edit.TextReplace:
		return ap.replaceText(x)
	case *edit.AttrAdd:
		return ap.setAttr(x.TagID, x.Attr, x.Value)
	case *edit.AttrChange:
		return ap.setAttr(x.TagID, x.Attr, x.Value)
	case *edit.AttrDelete:
		return ap.deleteAttr(x.TagID, x.Attr)
	}
	return fmt.Errorf("unrecognized edit %T", e)
}

// remember detaches every listed node up front so no structural edit
// can discard one that a pending move still needs.
func (ap *applier) remember(x *edit.RememberNodes) error {
	for _, id := range x.TagIDs {
		n := ap.t.Lookup(id)
		if n == nil {
			return fmt.Errorf("no node #%d to remember", id)
		}
		detach(n)
		ap.held[id] = n
	}
	return nil
}

func (ap *applier) insertElement(x *edit.ElementInsert) error {
	n := &dom.Node{
		Kind:  dom.ElementKind,
		ID:    x.TagID,
		Tag:   x.Tag,
		Attrs: x.Attrs,
	}
	if x.ParentID == nil {
		// New root; whatever was there is gone wholesale.
		ap.t.Root = n
		ap.t.ByID = map[dom.NodeID]*dom.Node{n.ID: n}
		return nil
	}
	parent := ap.t.Lookup(*x.ParentID)
	if parent == nil {
		return fmt.Errorf("no parent #%d", *x.ParentID)
	}
	i, err := elementPos(parent, x.BeforeID, x.BeforeText, x.FirstChild, x.LastChild)
	if err != nil {
		return err
	}
	insertAt(parent, i, n)
	ap.t.ByID[n.ID] = n
	return nil
}

func (ap *applier) deleteElement(x *edit.ElementDelete) error {
	n := ap.t.Lookup(x.TagID)
	if n == nil {
		return fmt.Errorf("no node #%d to delete", x.TagID)
	}
	// A bare text replace may already have cleared the parent's
	// children; deleting an already-detached node only unindexes it.
	detach(n)
	n.Visit(func(k *dom.Node, isPost bool) (bool, error) {
		if !isPost && k.Kind == dom.ElementKind {
			delete(ap.t.ByID, k.ID)
		}
		return true, nil
	})
	return nil
}

func (ap *applier) moveElement(x *edit.ElementMove) error {
	n := ap.held[x.TagID]
	if n == nil {
		n = ap.t.Lookup(x.TagID)
		if n == nil {
			return fmt.Errorf("no node #%d to move", x.TagID)
		}
		detach(n)
	}
	delete(ap.held, x.TagID)
	parent := ap.t.Lookup(x.ParentID)
	if parent == nil {
		return fmt.Errorf("no parent #%d", x.ParentID)
	}
	i, err := elementPos(parent, x.BeforeID, false, x.FirstChild, x.LastChild)
	if err != nil {
		return err
	}
	insertAt(parent, i, n)
	return nil
}

func (ap *applier) insertText(x *edit.TextInsert) error {
	parent := ap.t.Lookup(x.ParentID)
	if parent == nil {
		return fmt.Errorf("no parent #%d", x.ParentID)
	}
	n := dom.FromText(x.Content)
	switch {
	case x.LastChild:
		insertAt(parent, len(parent.Kids), n)
	case x.AfterID != nil:
		i := elementIndex(parent, *x.AfterID)
		if i < 0 {
			return fmt.Errorf("no sibling #%d under #%d", *x.AfterID, x.ParentID)
		}
		insertAt(parent, i+1, n)
	default:
		insertAt(parent, 0, n)
	}
	return nil
}

func (ap *applier) deleteText(x *edit.TextDelete) error {
	parent := ap.t.Lookup(x.ParentID)
	if parent == nil {
		return fmt.Errorf("no parent #%d", x.ParentID)
	}
	if x.AfterID == nil && !x.FirstChild {
		clearText(parent)
		return nil
	}
	i, err := runStart(parent, x.AfterID)
	if err != nil {
		return err
	}
	removeRun(parent, i)
	return nil
}

func (ap *applier) replaceText(x *edit.TextReplace) error {
	parent := ap.t.Lookup(x.ParentID)
	if parent == nil {
		return fmt.Errorf("no parent #%d", x.ParentID)
	}
	if x.AfterID == nil && !x.FirstChild {
		// Sole-child form: the parent's whole content becomes one
		// text run.
		clearText(parent)
		insertAt(parent, 0, dom.FromText(x.Content))
		return nil
	}
	i, err := runStart(parent, x.AfterID)
	if err != nil {
		return err
	}
	removeRun(parent, i)
	insertAt(parent, i, dom.FromText(x.Content))
	return nil
}

func (ap *applier) setAttr(id dom.NodeID, attr, value string) error {
	n := ap.t.Lookup(id)
	if n == nil {
		return fmt.Errorf("no node #%d", id)
	}
	if n.Attrs == nil {
		n.Attrs = map[string]string{}
	}
	n.Attrs[attr] = value
	return nil
}

func (ap *applier) deleteAttr(id dom.NodeID, attr string) error {
	n := ap.t.Lookup(id)
	if n == nil {
		return fmt.Errorf("no node #%d", id)
	}
	delete(n.Attrs, attr)
	return nil
}

// elementPos resolves the insertion index for an element edit.
func elementPos(parent *dom.Node, beforeID *dom.NodeID, beforeText, firstChild, lastChild bool) (int, error) {
	switch {
	case beforeID != nil:
		i := elementIndex(parent, *beforeID)
		if i < 0 {
			return 0, fmt.Errorf("no sibling #%d under #%d", *beforeID, parent.ID)
		}
		return i, nil
	case beforeText:
		for i, kid := range parent.Kids {
			if kid.Kind == dom.TextKind {
				return i, nil
			}
		}
		return len(parent.Kids), nil
	case firstChild:
		return 0, nil
	case lastChild:
		return len(parent.Kids), nil
	}
	return len(parent.Kids), nil
}

func elementIndex(parent *dom.Node, id dom.NodeID) int {
	for i, kid := range parent.Kids {
		if kid.Kind == dom.ElementKind && kid.ID == id {
			return i
		}
	}
	return -1
}

// runStart finds the first index of the text run after the anchor
// element, or of the leading run when afterID is nil.
func runStart(parent *dom.Node, afterID *dom.NodeID) (int, error) {
	if afterID == nil {
		return 0, nil
	}
	i := elementIndex(parent, *afterID)
	if i < 0 {
		return 0, fmt.Errorf("no sibling #%d under #%d", *afterID, parent.ID)
	}
	return i + 1, nil
}

// removeRun removes the contiguous text nodes starting at i.
func removeRun(parent *dom.Node, i int) {
	j := i
	for j < len(parent.Kids) && parent.Kids[j].Kind == dom.TextKind {
		parent.Kids[j].Parent = nil
		j++
	}
	parent.Kids = append(parent.Kids[:i], parent.Kids[j:]...)
}

func clearText(parent *dom.Node) {
	kept := parent.Kids[:0]
	for _, kid := range parent.Kids {
		if kid.Kind == dom.TextKind {
			kid.Parent = nil
			continue
		}
		kept = append(kept, kid)
	}
	parent.Kids = kept
}

func insertAt(parent *dom.Node, i int, n *dom.Node) {
	n.Parent = parent
	parent.Kids = append(parent.Kids, nil)
	copy(parent.Kids[i+1:], parent.Kids[i:])
	parent.Kids[i] = n
}

func detach(n *dom.Node) {
	p := n.Parent
	if p == nil {
		return
	}
	i := p.KidIndex(n)
	if i >= 0 {
		p.Kids = append(p.Kids[:i], p.Kids[i+1:]...)
	}
	n.Parent = nil
}
