package edit

import (
	"encoding/json"
	"fmt"

	"github.com/treewire/treewire/dom"
)

// wire is the JSON shape shared by all variants; the op field
// discriminates. Pointer fields distinguish absent from zero.
type wire struct {
	Op         Op                `json:"op"`
	TagID      *dom.NodeID       `json:"tagID,omitempty"`
	Tag        string            `json:"tag,omitempty"`
	ParentID   *dom.NodeID       `json:"parentID,omitempty"`
	Attrs      map[string]string `json:"attrs,omitempty"`
	Attr       string            `json:"attr,omitempty"`
	Value      *string           `json:"value,omitempty"`
	Content    *string           `json:"content,omitempty"`
	BeforeID   *dom.NodeID       `json:"beforeID,omitempty"`
	AfterID    *dom.NodeID       `json:"afterID,omitempty"`
	BeforeText bool              `json:"beforeText,omitempty"`
	FirstChild bool              `json:"firstChild,omitempty"`
	LastChild  bool              `json:"lastChild,omitempty"`
	TagIDs     []dom.NodeID      `json:"tagIDs,omitempty"`
}

func idp(id dom.NodeID) *dom.NodeID { return &id }
func sp(s string) *string           { return &s }

func toWire(e Edit) *wire {
	switch x := e.(type) {
	case *ElementInsert:
		return &wire{
			Op:         x.Op(),
			TagID:      idp(x.TagID),
			Tag:        x.Tag,
			ParentID:   x.ParentID,
			Attrs:      x.Attrs,
			BeforeID:   x.BeforeID,
			BeforeText: x.BeforeText,
			FirstChild: x.FirstChild,
			LastChild:  x.LastChild,
		}
	case *ElementDelete:
		return &wire{Op: x.Op(), TagID: idp(x.TagID)}
	case *ElementMove:
		return &wire{
			Op:         x.Op(),
			TagID:      idp(x.TagID),
			ParentID:   idp(x.ParentID),
			BeforeID:   x.BeforeID,
			FirstChild: x.FirstChild,
			LastChild:  x.LastChild,
		}
	case *TextInsert:
		return &wire{
			Op:         x.Op(),
			Content:    sp(x.Content),
			ParentID:   idp(x.ParentID),
			AfterID:    x.AfterID,
			FirstChild: x.FirstChild,
			LastChild:  x.LastChild,
		}
	case *TextDelete:
		return &wire{
			Op:         x.Op(),
			ParentID:   idp(x.ParentID),
			AfterID:    x.AfterID,
			FirstChild: x.FirstChild,
		}
	case *TextReplace:
		return &wire{
			Op:         x.Op(),
			Content:    sp(x.Content),
			ParentID:   idp(x.ParentID),
			AfterID:    x.AfterID,
			FirstChild: x.FirstChild,
		}
	case *AttrAdd:
		return &wire{Op: x.Op(), TagID: idp(x.TagID), Attr: x.Attr, Value: sp(x.Value)}
	case *AttrChange:
		return &wire{Op: x.Op(), TagID: idp(x.TagID), Attr: x.Attr, Value: sp(x.Value)}
	case *AttrDelete:
		return &wire{Op: x.Op(), TagID: idp(x.TagID), Attr: x.Attr}
	case *RememberNodes:
		return &wire{Op: x.Op(), TagIDs: x.TagIDs}
	}
	return nil
}

func (w *wire) edit() (Edit, error) {
	id := func(p *dom.NodeID) dom.NodeID {
		if p == nil {
			return 0
		}
		return *p
	}
	str := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	switch w.Op {
	case OpElementInsert:
		return &ElementInsert{
			TagID:      id(w.TagID),
			Tag:        w.Tag,
			ParentID:   w.ParentID,
			Attrs:      w.Attrs,
			BeforeID:   w.BeforeID,
			BeforeText: w.BeforeText,
			FirstChild: w.FirstChild,
			LastChild:  w.LastChild,
		}, nil
	case OpElementDelete:
		return &ElementDelete{TagID: id(w.TagID)}, nil
	case OpElementMove:
		return &ElementMove{
			TagID:      id(w.TagID),
			ParentID:   id(w.ParentID),
			BeforeID:   w.BeforeID,
			FirstChild: w.FirstChild,
			LastChild:  w.LastChild,
		}, nil
	case OpTextInsert:
		return &TextInsert{
			Content:    str(w.Content),
			ParentID:   id(w.ParentID),
			AfterID:    w.AfterID,
			FirstChild: w.FirstChild,
			LastChild:  w.LastChild,
		}, nil
	case OpTextDelete:
		return &TextDelete{
			ParentID:   id(w.ParentID),
			AfterID:    w.AfterID,
			FirstChild: w.FirstChild,
		}, nil
	case OpTextReplace:
		return &TextReplace{
			Content:    str(w.Content),
			ParentID:   id(w.ParentID),
			AfterID:    w.AfterID,
			FirstChild: w.FirstChild,
		}, nil
	case OpAttrAdd:
		return &AttrAdd{TagID: id(w.TagID), Attr: w.Attr, Value: str(w.Value)}, nil
	case OpAttrChange:
		return &AttrChange{TagID: id(w.TagID), Attr: w.Attr, Value: str(w.Value)}, nil
	case OpAttrDelete:
		return &AttrDelete{TagID: id(w.TagID), Attr: w.Attr}, nil
	case OpRememberNodes:
		return &RememberNodes{TagIDs: w.TagIDs}, nil
	}
	return nil, fmt.Errorf("unrecognized op %d", w.Op)
}

func (s Script) MarshalJSON() ([]byte, error) {
	ws := make([]*wire, len(s))
	for i, e := range s {
		w := toWire(e)
		if w == nil {
			return nil, fmt.Errorf("unencodable edit %T at %d", e, i)
		}
		ws[i] = w
	}
	return json.Marshal(ws)
}

func (s *Script) UnmarshalJSON(d []byte) error {
	var ws []*wire
	if err := json.Unmarshal(d, &ws); err != nil {
		return err
	}
	res := make(Script, len(ws))
	for i, w := range ws {
		e, err := w.edit()
		if err != nil {
			return fmt.Errorf("edit %d: %w", i, err)
		}
		res[i] = e
	}
	*s = res
	return nil
}
