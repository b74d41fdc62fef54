// Package edit defines the edit script: the ordered sequence of
// instructions a downstream applier replays to bring its copy of a
// document tree in sync with a new snapshot. Order is load-bearing;
// later edits may reference nodes created or relocated by earlier ones.
package edit

import (
	"fmt"

	"github.com/treewire/treewire/dom"
)

type Op int

const (
	OpElementInsert Op = iota
	OpElementDelete
	OpElementMove
	OpTextInsert
	OpTextDelete
	OpTextReplace
	OpAttrAdd
	OpAttrChange
	OpAttrDelete
	OpRememberNodes
)

var opNames = map[Op]string{
	OpElementInsert: "elementInsert",
	OpElementDelete: "elementDelete",
	OpElementMove:   "elementMove",
	OpTextInsert:    "textInsert",
	OpTextDelete:    "textDelete",
	OpTextReplace:   "textReplace",
	OpAttrAdd:       "attrAdd",
	OpAttrChange:    "attrChange",
	OpAttrDelete:    "attrDelete",
	OpRememberNodes: "rememberNodes",
}

func (o Op) String() string {
	s, ok := opNames[o]
	if ok {
		return s
	}
	return "<unknown op>"
}

func (o Op) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Op) UnmarshalText(d []byte) error {
	for op, name := range opNames {
		if name == string(d) {
			*o = op
			return nil
		}
	}
	return fmt.Errorf("unrecognized op %q", d)
}

// Edit is one instruction. Each variant carries only the fields
// meaningful to it; an edit is immutable once its script is handed off.
type Edit interface {
	Op() Op
}

// Script is the sole output artifact of a diff.
type Script []Edit

// ElementInsert creates a new element. A nil ParentID means the tree
// root, which the applier represents implicitly and positions itself.
// Otherwise exactly one of BeforeID, BeforeText, FirstChild, LastChild
// locates the insertion point: before the sibling element BeforeID,
// before the text run at the current position, at the front, or
// appended at the end.
type ElementInsert struct {
	TagID      dom.NodeID
	Tag        string
	ParentID   *dom.NodeID
	Attrs      map[string]string
	BeforeID   *dom.NodeID
	BeforeText bool
	FirstChild bool
	LastChild  bool
}

func (*ElementInsert) Op() Op { return OpElementInsert }

type ElementDelete struct {
	TagID dom.NodeID
}

func (*ElementDelete) Op() Op { return OpElementDelete }

// ElementMove relocates an existing element under ParentID. The applier
// detached it up front on the RememberNodes instruction.
type ElementMove struct {
	TagID      dom.NodeID
	ParentID   dom.NodeID
	BeforeID   *dom.NodeID
	FirstChild bool
	LastChild  bool
}

func (*ElementMove) Op() Op { return OpElementMove }

// TextInsert places a new text run after the sibling element AfterID,
// or at the front of the parent. LastChild marks trailing inserts with
// no following sibling.
type TextInsert struct {
	Content    string
	ParentID   dom.NodeID
	AfterID    *dom.NodeID
	FirstChild bool
	LastChild  bool
}

func (*TextInsert) Op() Op { return OpTextInsert }

// TextDelete removes the text run after AfterID, or the leading run
// when FirstChild is set. With no anchor at all the parent's whole
// content is a single run and the applier clears it.
type TextDelete struct {
	ParentID   dom.NodeID
	AfterID    *dom.NodeID
	FirstChild bool
}

func (*TextDelete) Op() Op { return OpTextDelete }

// TextReplace rewrites a whole text run with Content. Text runs are not
// individually addressable, so one replace stands in for any number of
// adjacent insertions and removals within the run. Anchoring follows
// TextDelete.
type TextReplace struct {
	Content    string
	ParentID   dom.NodeID
	AfterID    *dom.NodeID
	FirstChild bool
}

func (*TextReplace) Op() Op { return OpTextReplace }

type AttrAdd struct {
	TagID dom.NodeID
	Attr  string
	Value string
}

func (*AttrAdd) Op() Op { return OpAttrAdd }

type AttrChange struct {
	TagID dom.NodeID
	Attr  string
	Value string
}

func (*AttrChange) Op() Op { return OpAttrChange }

type AttrDelete struct {
	TagID dom.NodeID
	Attr  string
}

func (*AttrDelete) Op() Op { return OpAttrDelete }

// RememberNodes lists every element a later ElementMove relocates, in
// emission order. When present it is always the first edit of a script,
// so the applier can detach and hold those nodes before any structural
// edit could discard them.
type RememberNodes struct {
	TagIDs []dom.NodeID
}

func (*RememberNodes) Op() Op { return OpRememberNodes }
