package treewire

import (
	"github.com/treewire/treewire/debug"
	"github.com/treewire/treewire/dom"
	"github.com/treewire/treewire/edit"
)

// align reconciles the ordered child lists of a matched parent pair.
// oldParent nil means a pure insert cascade (every new child is new).
func (d *differ) align(parent, oldParent *dom.Node) {
	a := &aligner{
		d:       d,
		parent:  parent,
		newKids: parent.Kids,
	}
	if oldParent != nil {
		a.oldKids = oldParent.Kids
	}
	a.run()
}

// aligner is the state of one child-list alignment: the two cursors,
// the buffer of edits still waiting for a positional anchor, and the
// merge state of the current text run. All of it is local to one
// parent pair; nothing outlives the align call but the emitted edits.
type aligner struct {
	d      *differ
	parent *dom.Node

	newKids []*dom.Node
	oldKids []*dom.Node
	ci, oi  int

	// pending holds element inserts and moves whose position is
	// unknown until the next stable sibling (or the end of the list)
	// is reached. They already occupy their slot in the script.
	// pendingFront records whether the group started with nothing
	// placed before it, element or surviving text.
	pending      []edit.Edit
	pendingFront bool

	// anchor is the identity of the last element placed or confirmed
	// at the current position, 0 if none. Text edits hang off it.
	anchor dom.NodeID

	// Text runs are not individually addressable, so a contiguous
	// run of removed text collapses into one instruction. runEdit is
	// that instruction once emitted; runText accumulates the run's
	// surviving content.
	runEdit     edit.Edit
	runText     string
	haveRunText bool
}

func (a *aligner) run() {
	for a.ci < len(a.newKids) && a.oi < len(a.oldKids) {
		a.step()
	}
	a.finalizeTrailing()
	a.drainOld()
	a.drainNew()
}

// step classifies one position by identity membership. The move checks
// come first: a moved element looked at through insert/delete eyes is
// a misclassification.
func (a *aligner) step() {
	nk := a.newKids[a.ci]
	ok := a.oldKids[a.oi]
	if debug.Align() {
		debug.Logf("align under %s: new %s / old %s\n", a.parent, nk, ok)
	}

	// Moved into this parent from elsewhere; emitted from this side
	// only, the old-side occurrence is skipped.
	if nk.Kind == dom.ElementKind {
		if oldSelf := a.d.old.Lookup(nk.ID); oldSelf != nil && parentID(oldSelf) != a.parent.ID {
			a.moveIn(nk, false)
			a.ci++
			return
		}
	}
	// Moved away to another parent in the new tree.
	if ok.Kind == dom.ElementKind {
		if newSelf := a.d.new.Lookup(ok.ID); newSelf != nil && parentID(newSelf) != a.parent.ID {
			a.oi++
			return
		}
	}

	if nk.Kind != ok.Kind {
		a.stepMixed(nk, ok)
		return
	}
	if nk.Kind == dom.ElementKind {
		a.stepElements(nk, ok)
		return
	}
	a.stepText(nk, ok)
}

// stepMixed resolves an Element on one side against Text on the other,
// preferring deletion of an old element confirmed gone over treating
// the text as churn.
func (a *aligner) stepMixed(nk, ok *dom.Node) {
	if nk.Kind == dom.TextKind {
		if a.d.new.Lookup(ok.ID) == nil {
			a.d.out.append(&edit.ElementDelete{TagID: ok.ID})
			a.oi++
			return
		}
		// The old element survives further along; this is a genuine
		// text insertion ahead of it.
		a.insertText(nk, false)
		a.ci++
		return
	}
	if a.d.old.Lookup(nk.ID) == nil {
		a.insertElement(nk, false)
		a.ci++
		return
	}
	// The new element survives from the old side; the old text at
	// this position is extra.
	a.removeText()
	a.oi++
}

func (a *aligner) stepElements(nk, ok *dom.Node) {
	if nk.ID == ok.ID {
		// Stable sibling: everything pending goes right before it.
		a.finalizeBefore(nk.ID)
		a.place(nk.ID)
		a.ci++
		a.oi++
		return
	}
	switch {
	case a.d.old.Lookup(nk.ID) == nil:
		a.insertElement(nk, false)
		a.ci++
	case a.d.new.Lookup(ok.ID) == nil:
		a.d.out.append(&edit.ElementDelete{TagID: ok.ID})
		a.oi++
	default:
		// Both identities persist under this parent yet the
		// positions disagree: reordering with no insert/delete
		// signal. Advance past it and keep going.
		a.d.report(Anomaly{
			Kind:     AnomalyMismatch,
			OldID:    ok.ID,
			NewID:    nk.ID,
			ParentID: a.parent.ID,
		})
		a.ci++
		a.oi++
	}
}

func (a *aligner) stepText(nk, ok *dom.Node) {
	// Pending inserts go before this text either way; the node
	// itself survives, only its content may change.
	a.finalizeBeforeText()
	if nk.TextSig != ok.TextSig {
		a.replaceText(nk.Text)
	} else {
		a.keepText(nk.Text)
	}
	a.ci++
	a.oi++
}

// drainOld deletes leftover old children, skipping those that moved
// away (their move was emitted from the new side).
func (a *aligner) drainOld() {
	for ; a.oi < len(a.oldKids); a.oi++ {
		ok := a.oldKids[a.oi]
		if ok.Kind == dom.TextKind {
			a.removeText()
			continue
		}
		newSelf := a.d.new.Lookup(ok.ID)
		if newSelf == nil {
			a.d.out.append(&edit.ElementDelete{TagID: ok.ID})
			continue
		}
		if parentID(newSelf) != a.parent.ID {
			continue
		}
		// Expected deletable, still referenced here: identity bug
		// upstream. Leave it alone.
		a.d.report(Anomaly{
			Kind:     AnomalyDangling,
			OldID:    ok.ID,
			ParentID: a.parent.ID,
		})
	}
}

// drainNew emits leftover new children as trailing inserts/moves; no
// following sibling identity exists to anchor them.
func (a *aligner) drainNew() {
	for ; a.ci < len(a.newKids); a.ci++ {
		nk := a.newKids[a.ci]
		if nk.Kind == dom.TextKind {
			a.insertText(nk, true)
			continue
		}
		oldSelf := a.d.old.Lookup(nk.ID)
		switch {
		case oldSelf == nil:
			a.insertElement(nk, true)
		case parentID(oldSelf) != a.parent.ID:
			a.moveIn(nk, true)
		default:
			// Same parent on both sides but never matched during
			// the merge: unrepresentable reorder.
			a.d.report(Anomaly{
				Kind:     AnomalyMismatch,
				NewID:    nk.ID,
				ParentID: a.parent.ID,
			})
		}
	}
}

func (a *aligner) insertElement(nk *dom.Node, trailing bool) {
	pid := a.parent.ID
	in := &edit.ElementInsert{
		TagID:    nk.ID,
		Tag:      nk.Tag,
		ParentID: &pid,
		Attrs:    cloneAttrs(nk.Attrs),
	}
	if trailing {
		in.LastChild = true
		a.d.out.append(in)
	} else {
		a.hold(in)
	}
	// The insert cascade: the driver walks the new element's own
	// children as pure inserts. Matched elements are never enqueued
	// here, only by the driver.
	a.d.enqueue(nk)
	a.place(nk.ID)
}

func (a *aligner) moveIn(nk *dom.Node, trailing bool) {
	mv := &edit.ElementMove{
		TagID:    nk.ID,
		ParentID: a.parent.ID,
	}
	if trailing {
		mv.LastChild = true
		a.d.out.append(mv)
	} else {
		a.hold(mv)
	}
	a.d.out.rememberMove(nk.ID)
	// The moved element is matched, so the driver still has to diff
	// its attrs and subtree against the old occurrence.
	a.d.enqueue(nk)
	a.place(nk.ID)
}

func (a *aligner) insertText(nk *dom.Node, trailing bool) {
	ti := &edit.TextInsert{
		Content:  nk.Text,
		ParentID: a.parent.ID,
	}
	if a.anchor != 0 {
		id := a.anchor
		ti.AfterID = &id
	} else {
		ti.FirstChild = true
	}
	if trailing {
		ti.LastChild = true
	}
	a.d.out.append(ti)
}

// replaceText rewrites the current run with new content. Later text in
// the same run folds into the same instruction.
func (a *aligner) replaceText(content string) {
	switch e := a.runEdit.(type) {
	case *edit.TextReplace:
		e.Content += content
	case *edit.TextDelete:
		// The run was already cleared; reintroduce the content.
		ti := &edit.TextInsert{Content: content, ParentID: a.parent.ID}
		if a.anchor != 0 {
			id := a.anchor
			ti.AfterID = &id
		} else {
			ti.FirstChild = true
		}
		a.d.out.append(ti)
	default:
		tr := &edit.TextReplace{Content: content, ParentID: a.parent.ID}
		a.textAnchor(&tr.AfterID, &tr.FirstChild, 1)
		a.d.out.append(tr)
		a.runEdit = tr
	}
	a.runText += content
	a.haveRunText = true
}

// keepText records unchanged text as the surviving content of the run,
// so a later removal in the same run replaces instead of deletes.
func (a *aligner) keepText(content string) {
	if e, isReplace := a.runEdit.(*edit.TextReplace); isReplace {
		// The emitted replace rewrites the whole run; carry the
		// surviving part along.
		e.Content += content
	}
	a.runText += content
	a.haveRunText = true
}

// removeText drops one old text node. At most one textual instruction
// is emitted per contiguous run of removed text: with surviving
// content the run is replaced with it, otherwise deleted outright.
func (a *aligner) removeText() {
	if a.runEdit != nil {
		return
	}
	if a.haveRunText {
		tr := &edit.TextReplace{Content: a.runText, ParentID: a.parent.ID}
		a.textAnchor(&tr.AfterID, &tr.FirstChild, 1)
		a.runEdit = a.d.out.append(tr)
		return
	}
	td := &edit.TextDelete{ParentID: a.parent.ID}
	a.textAnchor(&td.AfterID, &td.FirstChild, 0)
	a.runEdit = a.d.out.append(td)
}

// textAnchor fills the position of a text replace/delete: after the
// last placed element when one exists; bare when the parent ends up
// with soleKids children or fewer (the applier clears the content);
// the leading run otherwise.
func (a *aligner) textAnchor(afterID **dom.NodeID, firstChild *bool, soleKids int) {
	if a.anchor != 0 {
		id := a.anchor
		*afterID = &id
		return
	}
	if len(a.newKids) <= soleKids {
		return
	}
	*firstChild = true
}

// place marks id as the element now occupying the current position.
// It resets the text-run state: an element boundary ends a run.
func (a *aligner) place(id dom.NodeID) {
	a.anchor = id
	a.runEdit = nil
	a.runText = ""
	a.haveRunText = false
}

// hold reserves the edit's slot in the script while its position is
// still unknown.
func (a *aligner) hold(e edit.Edit) {
	if len(a.pending) == 0 {
		a.pendingFront = a.anchor == 0 && !a.haveRunText
	}
	a.d.out.append(e)
	a.pending = append(a.pending, e)
}

// finalizeBefore anchors everything pending right before the stable
// sibling id.
func (a *aligner) finalizeBefore(id dom.NodeID) {
	for _, e := range a.pending {
		anchor := id
		switch x := e.(type) {
		case *edit.ElementInsert:
			x.BeforeID = &anchor
		case *edit.ElementMove:
			x.BeforeID = &anchor
		}
	}
	a.pending = a.pending[:0]
}

// finalizeBeforeText marks pending inserts as landing before the text
// run at the current position. A move carries no before-text position:
// when it leads a group at the very front of the child list it is
// exactly FirstChild, otherwise it stays pending and anchors on the
// next stable sibling instead.
func (a *aligner) finalizeBeforeText() {
	kept := a.pending[:0]
	for i, e := range a.pending {
		switch x := e.(type) {
		case *edit.ElementInsert:
			x.BeforeText = true
		case *edit.ElementMove:
			if i == 0 && a.pendingFront {
				x.FirstChild = true
				continue
			}
			kept = append(kept, e)
		}
	}
	a.pending = kept
	// The text run now precedes anything still pending.
	a.pendingFront = false
}

// finalizeTrailing tags whatever is still pending as append-to-end.
func (a *aligner) finalizeTrailing() {
	for _, e := range a.pending {
		switch x := e.(type) {
		case *edit.ElementInsert:
			x.LastChild = true
		case *edit.ElementMove:
			x.LastChild = true
		}
	}
	a.pending = a.pending[:0]
}

func parentID(n *dom.Node) dom.NodeID {
	if n == nil || n.Parent == nil {
		return 0
	}
	return n.Parent.ID
}
