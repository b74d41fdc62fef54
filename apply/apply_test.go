package apply

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/treewire/treewire"
	"github.com/treewire/treewire/dom"
	"github.com/treewire/treewire/edit"
)

func el(id dom.NodeID, tag string, attrs map[string]string, kids ...*dom.Node) *dom.Node {
	return dom.FromElement(id, tag, attrs, kids...)
}

func txt(s string) *dom.Node {
	return dom.FromText(s)
}

func idp(id dom.NodeID) *dom.NodeID {
	return &id
}

// shape is a comparable view of a tree: no signatures, no parent
// pointers, adjacent text merged and empty attribute maps dropped, so
// an applied tree and a freshly built one compare equal when a mirror
// could not tell them apart.
type shape struct {
	Tag   string
	ID    dom.NodeID
	Attrs map[string]string
	Text  string
	Kids  []*shape
}

func toShape(n *dom.Node) *shape {
	if n.Kind == dom.TextKind {
		return &shape{Text: n.Text}
	}
	res := &shape{Tag: n.Tag, ID: n.ID}
	if len(n.Attrs) > 0 {
		res.Attrs = map[string]string{}
		for k, v := range n.Attrs {
			res.Attrs[k] = v
		}
	}
	for _, kid := range n.Kids {
		s := toShape(kid)
		if s.Tag == "" && len(res.Kids) > 0 && res.Kids[len(res.Kids)-1].Tag == "" {
			res.Kids[len(res.Kids)-1].Text += s.Text
			continue
		}
		res.Kids = append(res.Kids, s)
	}
	return res
}

func treeShape(t *dom.Tree) *shape {
	if t == nil || t.Root == nil {
		return nil
	}
	return toShape(t.Root)
}

func TestApplyInsertPositions(t *testing.T) {
	tr := dom.Build(
		el(1, "body", nil,
			el(2, "div", nil),
			txt("mid"),
			el(3, "div", nil)))
	script := edit.Script{
		&edit.ElementInsert{TagID: 4, Tag: "a", ParentID: idp(1), FirstChild: true},
		&edit.ElementInsert{TagID: 5, Tag: "b", ParentID: idp(1), BeforeID: idp(3)},
		&edit.ElementInsert{TagID: 6, Tag: "c", ParentID: idp(1), BeforeText: true},
		&edit.ElementInsert{TagID: 7, Tag: "d", ParentID: idp(1), LastChild: true},
	}
	if err := Apply(tr, script); err != nil {
		t.Fatal(err)
	}
	want := treeShape(dom.Build(
		el(1, "body", nil,
			el(4, "a", nil),
			el(2, "div", nil),
			el(6, "c", nil),
			txt("mid"),
			el(5, "b", nil),
			el(3, "div", nil),
			el(7, "d", nil))))
	if d := cmp.Diff(want, treeShape(tr)); d != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", d)
	}
	if tr.Lookup(6) == nil {
		t.Fatal("inserted element not indexed")
	}
}

func TestApplyDeleteUnindexesSubtree(t *testing.T) {
	tr := dom.Build(
		el(1, "body", nil,
			el(2, "div", nil,
				el(3, "span", nil))))
	if err := Apply(tr, edit.Script{&edit.ElementDelete{TagID: 2}}); err != nil {
		t.Fatal(err)
	}
	if tr.Lookup(2) != nil || tr.Lookup(3) != nil {
		t.Fatal("deleted subtree still indexed")
	}
	if len(tr.Root.Kids) != 0 {
		t.Fatalf("body kids %v", tr.Root.Kids)
	}
}

func TestApplyMoveViaRemember(t *testing.T) {
	tr := dom.Build(
		el(1, "body", nil,
			el(2, "div", nil,
				el(7, "span", nil, txt("payload"))),
			el(3, "div", nil)))
	script := edit.Script{
		&edit.RememberNodes{TagIDs: []dom.NodeID{7}},
		// The vacated parent goes away entirely before the move lands.
		&edit.ElementDelete{TagID: 2},
		&edit.ElementMove{TagID: 7, ParentID: 3, LastChild: true},
	}
	if err := Apply(tr, script); err != nil {
		t.Fatal(err)
	}
	want := treeShape(dom.Build(
		el(1, "body", nil,
			el(3, "div", nil,
				el(7, "span", nil, txt("payload"))))))
	if d := cmp.Diff(want, treeShape(tr)); d != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", d)
	}
}

func TestApplyTextOps(t *testing.T) {
	tr := dom.Build(
		el(1, "body", nil,
			el(2, "b", nil),
			txt("old"),
			txt("run")))
	script := edit.Script{
		&edit.TextReplace{Content: "new", ParentID: 1, AfterID: idp(2)},
		&edit.TextInsert{Content: "lead", ParentID: 1, FirstChild: true},
	}
	if err := Apply(tr, script); err != nil {
		t.Fatal(err)
	}
	want := treeShape(dom.Build(
		el(1, "body", nil,
			txt("lead"),
			el(2, "b", nil),
			txt("new"))))
	if d := cmp.Diff(want, treeShape(tr)); d != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", d)
	}
}

func TestApplyBareTextClearsOnlyText(t *testing.T) {
	tr := dom.Build(
		el(1, "body", nil,
			txt("a"),
			el(2, "b", nil),
			txt("c")))
	if err := Apply(tr, edit.Script{&edit.TextDelete{ParentID: 1}}); err != nil {
		t.Fatal(err)
	}
	want := treeShape(dom.Build(el(1, "body", nil, el(2, "b", nil))))
	if d := cmp.Diff(want, treeShape(tr)); d != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", d)
	}
}

// A beforeText anchor carries no run index, so the applier resolves it
// against the parent's leading text run even when later runs exist.
func TestApplyBeforeTextResolvesFirstRun(t *testing.T) {
	tr := dom.Build(
		el(1, "body", nil,
			txt("a"),
			el(2, "b", nil),
			txt("c")))
	script := edit.Script{
		&edit.ElementInsert{TagID: 9, Tag: "i", ParentID: idp(1), BeforeText: true},
	}
	if err := Apply(tr, script); err != nil {
		t.Fatal(err)
	}
	want := treeShape(dom.Build(
		el(1, "body", nil,
			el(9, "i", nil),
			txt("a"),
			el(2, "b", nil),
			txt("c"))))
	if d := cmp.Diff(want, treeShape(tr)); d != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", d)
	}
}

func TestApplyErrors(t *testing.T) {
	cases := []struct {
		name string
		e    edit.Edit
	}{
		{"unknown parent", &edit.ElementInsert{TagID: 9, Tag: "p", ParentID: idp(77)}},
		{"unknown sibling", &edit.ElementInsert{TagID: 9, Tag: "p", ParentID: idp(1), BeforeID: idp(77)}},
		{"unknown delete", &edit.ElementDelete{TagID: 77}},
		{"unknown move", &edit.ElementMove{TagID: 77, ParentID: 1}},
		{"unknown remember", &edit.RememberNodes{TagIDs: []dom.NodeID{77}}},
		{"unknown attr node", &edit.AttrAdd{TagID: 77, Attr: "a", Value: "1"}},
		{"unknown text anchor", &edit.TextReplace{Content: "x", ParentID: 1, AfterID: idp(77)}},
	}
	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			tr := dom.Build(el(1, "body", nil))
			if err := Apply(tr, edit.Script{test.e}); err == nil {
				t.Fatal("no error")
			}
		})
	}
}

type roundTrip struct {
	name     string
	old, new *dom.Node
}

var roundTrips = []roundTrip{
	{
		name: "attrs",
		old:  el(1, "body", map[string]string{"class": "a", "id": "x"}),
		new:  el(1, "body", map[string]string{"class": "b", "title": "t"}),
	},
	{
		name: "insert cascade",
		old: el(1, "body", nil,
			el(2, "div", nil)),
		new: el(1, "body", nil,
			el(3, "section", map[string]string{"class": "s"},
				txt("deep"),
				el(4, "em", nil, txt("er"))),
			el(2, "div", nil)),
	},
	{
		name: "delete mid list",
		old: el(1, "body", nil,
			el(2, "div", nil),
			el(3, "div", nil, txt("x")),
			el(4, "div", nil)),
		new: el(1, "body", nil,
			el(2, "div", nil),
			el(4, "div", nil)),
	},
	{
		name: "move across parents",
		old: el(1, "body", nil,
			el(2, "div", nil,
				el(7, "span", nil, txt("payload"))),
			el(3, "div", nil, el(4, "em", nil))),
		new: el(1, "body", nil,
			el(2, "div", nil),
			el(3, "div", nil,
				el(7, "span", nil, txt("payload")),
				el(4, "em", nil))),
	},
	{
		name: "move out of deleted parent",
		old: el(1, "body", nil,
			el(2, "div", nil,
				el(7, "span", nil, txt("payload"))),
			el(3, "div", nil)),
		new: el(1, "body", nil,
			el(3, "div", nil,
				el(7, "span", nil, txt("payload")))),
	},
	{
		name: "move into inserted parent",
		old: el(1, "body", nil,
			el(2, "div", nil,
				el(7, "span", map[string]string{"class": "a"}, txt("x")))),
		new: el(1, "body", nil,
			el(2, "div", nil),
			el(9, "section", nil,
				el(7, "span", map[string]string{"class": "b"}, txt("y")))),
	},
	{
		name: "move before leading text",
		old: el(1, "body", nil,
			el(2, "div", nil,
				el(7, "span", nil)),
			el(3, "div", nil,
				txt("t"),
				el(4, "em", nil))),
		new: el(1, "body", nil,
			el(2, "div", nil),
			el(3, "div", nil,
				el(7, "span", nil),
				txt("t"),
				el(4, "em", nil))),
	},
	{
		name: "text churn",
		old: el(1, "body", nil,
			txt("a"),
			el(2, "b", nil),
			txt("mid"),
			txt("extra")),
		new: el(1, "body", nil,
			el(2, "b", nil),
			txt("changed")),
	},
	{
		name: "kind flip",
		old: el(1, "body", nil,
			el(2, "b", nil),
			txt("x")),
		new: el(1, "body", nil,
			txt("y"),
			el(3, "i", nil)),
	},
	{
		name: "root replaced",
		old:  el(1, "body", nil, txt("old")),
		new:  el(9, "body", map[string]string{"class": "v2"}, txt("new")),
	},
	{
		name: "everything at once",
		old: el(1, "body", nil,
			el(2, "nav", map[string]string{"class": "top"}),
			el(3, "main", nil,
				txt("intro"),
				el(4, "p", nil, txt("one")),
				el(5, "p", nil, txt("two"))),
			el(6, "footer", nil)),
		new: el(1, "body", nil,
			el(3, "main", map[string]string{"role": "main"},
				el(4, "p", nil, txt("one")),
				txt("outro"),
				el(7, "p", nil, txt("three"))),
			el(6, "footer", nil,
				el(5, "p", nil, txt("two")))),
	},
}

// TestRoundTrip checks the contract between the differ and a faithful
// mirror: applying Diff(old, new) to a copy of old reproduces new.
func TestRoundTrip(t *testing.T) {
	for _, test := range roundTrips {
		t.Run(test.name, func(t *testing.T) {
			oldTree := dom.Build(test.old)
			newTree := dom.Build(test.new)
			res := treewire.Diff(oldTree, newTree)
			if len(res.Anomalies) != 0 {
				t.Fatalf("anomalies: %v", res.Anomalies)
			}
			work := oldTree.Clone()
			if err := Apply(work, res.Script); err != nil {
				t.Fatalf("apply: %v\nscript: %v", err, res.Script)
			}
			if d := cmp.Diff(treeShape(newTree), treeShape(work)); d != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s\nscript: %v",
					d, res.Script)
			}
		})
	}
}

func TestRoundTripFirstRender(t *testing.T) {
	newTree := dom.Build(
		el(1, "body", nil,
			el(2, "div", map[string]string{"class": "x"},
				txt("hello"),
				el(3, "span", nil))))
	res := treewire.Diff(nil, newTree)
	work := dom.Build(nil)
	if err := Apply(work, res.Script); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if d := cmp.Diff(treeShape(newTree), treeShape(work)); d != "" {
		t.Fatalf("first render mismatch (-want +got):\n%s", d)
	}
}
