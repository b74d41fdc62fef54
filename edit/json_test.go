package edit

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/treewire/treewire/dom"
)

func TestScriptRoundTrip(t *testing.T) {
	s := Script{
		&RememberNodes{TagIDs: []dom.NodeID{7, 12}},
		&ElementInsert{
			TagID:    9,
			Tag:      "div",
			ParentID: idp(1),
			Attrs:    map[string]string{"class": "x"},
			BeforeID: idp(4),
		},
		&ElementInsert{TagID: 3, Tag: "body"},
		&ElementMove{TagID: 7, ParentID: 9, LastChild: true},
		&ElementDelete{TagID: 5},
		&TextInsert{Content: "hi", ParentID: 9, AfterID: idp(7), LastChild: true},
		&TextReplace{Content: "", ParentID: 2, FirstChild: true},
		&TextDelete{ParentID: 2},
		&AttrAdd{TagID: 9, Attr: "id", Value: "main"},
		&AttrChange{TagID: 9, Attr: "class", Value: ""},
		&AttrDelete{TagID: 9, Attr: "style"},
	}
	d, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var back Script
	if err := json.Unmarshal(d, &back); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(s, back); diff != "" {
		t.Fatalf("round trip mismatch (-orig +back):\n%s", diff)
	}
}

// Empty strings survive the wire: a textReplace with empty content and
// an attrChange to "" must not decode as absent.
func TestScriptEmptyStrings(t *testing.T) {
	d, err := json.Marshal(Script{
		&TextReplace{Content: "", ParentID: 1},
		&AttrChange{TagID: 1, Attr: "class", Value: ""},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"content":""`, `"value":""`} {
		if !strings.Contains(string(d), key) {
			t.Errorf("encoded script %s lacks %s", d, key)
		}
	}
}

func TestScriptWireNames(t *testing.T) {
	d, err := json.Marshal(Script{
		&ElementInsert{TagID: 2, Tag: "p", ParentID: idp(1), BeforeText: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"op":"elementInsert","tagID":2,"tag":"p","parentID":1,"beforeText":true}]`
	if string(d) != want {
		t.Fatalf("got %s, want %s", d, want)
	}
}

func TestScriptUnknownOp(t *testing.T) {
	var s Script
	err := json.Unmarshal([]byte(`[{"op":"transmogrify"}]`), &s)
	if err == nil {
		t.Fatal("unknown op decoded without error")
	}
}

func TestOpTextRoundTrip(t *testing.T) {
	for op := OpElementInsert; op <= OpRememberNodes; op++ {
		d, err := op.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back Op
		if err := back.UnmarshalText(d); err != nil {
			t.Fatalf("%s: %v", d, err)
		}
		if back != op {
			t.Fatalf("%s decoded as %s", op, back)
		}
	}
}
