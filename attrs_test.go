package treewire

import (
	"encoding/json"
	"testing"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/google/go-cmp/cmp"

	"github.com/treewire/treewire/dom"
	"github.com/treewire/treewire/edit"
)

func diffAttrScript(t *testing.T, oldAttrs, newAttrs map[string]string) edit.Script {
	t.Helper()
	old := dom.Build(el(1, "div", oldAttrs))
	new := dom.Build(el(1, "div", newAttrs))
	return Diff(old, new).Script
}

func TestAttrsOrdering(t *testing.T) {
	got := diffAttrScript(t,
		map[string]string{"href": "/a", "id": "x", "title": "t"},
		map[string]string{"class": "c", "id": "y", "title": "t"})
	want := edit.Script{
		&edit.AttrAdd{TagID: 1, Attr: "class", Value: "c"},
		&edit.AttrChange{TagID: 1, Attr: "id", Value: "y"},
		&edit.AttrDelete{TagID: 1, Attr: "href"},
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Fatalf("script mismatch (-want +got):\n%s", d)
	}
}

func TestAttrsNilMaps(t *testing.T) {
	if got := diffAttrScript(t, nil, nil); len(got) != 0 {
		t.Fatalf("nil attrs produced edits: %v", got)
	}
	got := diffAttrScript(t, nil, map[string]string{"id": "x"})
	want := edit.Script{
		&edit.AttrAdd{TagID: 1, Attr: "id", Value: "x"},
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Fatalf("script mismatch (-want +got):\n%s", d)
	}
}

// TestAttrsMergePatchOracle cross-checks the attribute edits against a
// JSON merge patch of the two attribute maps: the set of touched names
// and their final values must agree.
func TestAttrsMergePatchOracle(t *testing.T) {
	cases := []struct {
		name     string
		old, new map[string]string
	}{
		{
			name: "disjoint",
			old:  map[string]string{"a": "1", "b": "2"},
			new:  map[string]string{"c": "3"},
		},
		{
			name: "overlap",
			old:  map[string]string{"a": "1", "b": "2", "c": "3"},
			new:  map[string]string{"a": "1", "b": "9", "d": "4"},
		},
		{
			name: "empty value kept distinct from absent",
			old:  map[string]string{"a": ""},
			new:  map[string]string{"b": ""},
		},
	}
	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			oldJSON, err := json.Marshal(test.old)
			if err != nil {
				t.Fatal(err)
			}
			newJSON, err := json.Marshal(test.new)
			if err != nil {
				t.Fatal(err)
			}
			patch, err := jsonpatch.CreateMergePatch(oldJSON, newJSON)
			if err != nil {
				t.Fatal(err)
			}
			var want map[string]*string
			if err := json.Unmarshal(patch, &want); err != nil {
				t.Fatal(err)
			}

			got := map[string]*string{}
			for _, e := range diffAttrScript(t, test.old, test.new) {
				switch x := e.(type) {
				case *edit.AttrAdd:
					v := x.Value
					got[x.Attr] = &v
				case *edit.AttrChange:
					v := x.Value
					got[x.Attr] = &v
				case *edit.AttrDelete:
					got[x.Attr] = nil
				default:
					t.Fatalf("non-attribute edit %v", e)
				}
			}
			if d := cmp.Diff(want, got); d != "" {
				t.Fatalf("edits disagree with merge patch (-patch +edits):\n%s", d)
			}
		})
	}
}
