package treewire

import (
	"maps"
	"slices"

	"github.com/treewire/treewire/dom"
	"github.com/treewire/treewire/edit"
)

// diffAttrs emits attribute edits for a matched element pair.
// Attributes have no position in the target, so order only affects
// which edits come first; sorted names keep the output deterministic.
func (d *differ) diffAttrs(oldAttrs, newAttrs map[string]string, tagID dom.NodeID) {
	for _, name := range slices.Sorted(maps.Keys(newAttrs)) {
		v := newAttrs[name]
		ov, ok := oldAttrs[name]
		switch {
		case !ok:
			d.out.append(&edit.AttrAdd{TagID: tagID, Attr: name, Value: v})
		case ov != v:
			d.out.append(&edit.AttrChange{TagID: tagID, Attr: name, Value: v})
		}
	}
	for _, name := range slices.Sorted(maps.Keys(oldAttrs)) {
		if _, ok := newAttrs[name]; !ok {
			d.out.append(&edit.AttrDelete{TagID: tagID, Attr: name})
		}
	}
}
