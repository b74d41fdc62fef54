// Package render prints edit scripts for humans: one line per edit,
// op names colorized, text replacements shown as inline diffs against
// the old snapshot when it is available.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/treewire/treewire/dom"
	"github.com/treewire/treewire/edit"
)

type Colors struct {
	Op     func(string, ...any) string
	ID     func(string, ...any) string
	Attr   func(string, ...any) string
	Ins    func(string, ...any) string
	Del    func(string, ...any) string
	Anchor func(string, ...any) string
}

func NewColors() *Colors {
	return &Colors{
		Op:     color.New(color.FgCyan).SprintfFunc(),
		ID:     color.New(color.FgYellow).SprintfFunc(),
		Attr:   color.New(color.FgMagenta).SprintfFunc(),
		Ins:    color.New(color.FgGreen).SprintfFunc(),
		Del:    color.New(color.FgRed).SprintfFunc(),
		Anchor: color.New(color.Faint).SprintfFunc(),
	}
}

// NoColors renders plain text, for non-tty writers.
func NoColors() *Colors {
	plain := fmt.Sprintf
	return &Colors{
		Op: plain, ID: plain, Attr: plain,
		Ins: plain, Del: plain, Anchor: plain,
	}
}

// Script writes one line per edit. old may be nil; with it,
// TextReplace lines carry an inline old/new diff.
func Script(w io.Writer, s edit.Script, old *dom.Tree, colors *Colors) error {
	if colors == nil {
		colors = NoColors()
	}
	for _, e := range s {
		if _, err := fmt.Fprintln(w, line(e, old, colors)); err != nil {
			return err
		}
	}
	return nil
}

func line(e edit.Edit, old *dom.Tree, c *Colors) string {
	op := c.Op("%-13s", e.Op())
	switch x := e.(type) {
	case *edit.ElementInsert:
		parent := "root"
		if x.ParentID != nil {
			parent = c.ID("#%d", *x.ParentID)
		}
		return fmt.Sprintf("%s %s <%s> in %s %s %s",
			op, c.ID("#%d", x.TagID), x.Tag, parent,
			anchorStr(c, x.BeforeID, nil, x.BeforeText, x.FirstChild, x.LastChild),
			c.Ins("%s", attrStr(x.Attrs)))
	case *edit.ElementDelete:
		return fmt.Sprintf("%s %s", op, c.Del("#%d", x.TagID))
	case *edit.ElementMove:
		return fmt.Sprintf("%s %s to %s %s",
			op, c.ID("#%d", x.TagID), c.ID("#%d", x.ParentID),
			anchorStr(c, x.BeforeID, nil, false, x.FirstChild, x.LastChild))
	case *edit.TextInsert:
		return fmt.Sprintf("%s in %s %s %s",
			op, c.ID("#%d", x.ParentID),
			anchorStr(c, nil, x.AfterID, false, x.FirstChild, x.LastChild),
			c.Ins("%q", x.Content))
	case *edit.TextDelete:
		return fmt.Sprintf("%s in %s %s",
			op, c.ID("#%d", x.ParentID),
			anchorStr(c, nil, x.AfterID, false, x.FirstChild, false))
	case *edit.TextReplace:
		return fmt.Sprintf("%s in %s %s %s",
			op, c.ID("#%d", x.ParentID),
			anchorStr(c, nil, x.AfterID, false, x.FirstChild, false),
			textDiff(x, old, c))
	case *edit.AttrAdd:
		return fmt.Sprintf("%s %s %s", op, c.ID("#%d", x.TagID),
			c.Ins("%s=%q", x.Attr, x.Value))
	case *edit.AttrChange:
		return fmt.Sprintf("%s %s %s", op, c.ID("#%d", x.TagID),
			c.Attr("%s=%q", x.Attr, x.Value))
	case *edit.AttrDelete:
		return fmt.Sprintf("%s %s %s", op, c.ID("#%d", x.TagID),
			c.Del("%s", x.Attr))
	case *edit.RememberNodes:
		ids := make([]string, len(x.TagIDs))
		for i, id := range x.TagIDs {
			ids[i] = c.ID("#%d", id)
		}
		return fmt.Sprintf("%s %s", op, strings.Join(ids, " "))
	}
	return op
}

// textDiff renders the replacement as an inline diff when the replaced
// run can be recovered from the old snapshot.
func textDiff(x *edit.TextReplace, old *dom.Tree, c *Colors) string {
	was, ok := oldRun(x, old)
	if !ok {
		return c.Ins("%q", x.Content)
	}
	dmp := diffpatch.New()
	diffs := dmp.DiffMain(was, x.Content, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffpatch.DiffInsert:
			b.WriteString(c.Ins("%s", d.Text))
		case diffpatch.DiffDelete:
			b.WriteString(c.Del("[-%s-]", d.Text))
		case diffpatch.DiffEqual:
			b.WriteString(d.Text)
		}
	}
	return fmt.Sprintf("%q", b.String())
}

func oldRun(x *edit.TextReplace, old *dom.Tree) (string, bool) {
	parent := old.Lookup(x.ParentID)
	if parent == nil {
		return "", false
	}
	start := 0
	if x.AfterID != nil {
		start = -1
		for i, kid := range parent.Kids {
			if kid.Kind == dom.ElementKind && kid.ID == *x.AfterID {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return "", false
		}
	}
	var b strings.Builder
	found := false
	for _, kid := range parent.Kids[start:] {
		if kid.Kind != dom.TextKind {
			break
		}
		b.WriteString(kid.Text)
		found = true
	}
	return b.String(), found
}

func attrStr(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(attrs))
	for k, v := range attrs {
		parts = append(parts, fmt.Sprintf("%s=%q", k, v))
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

func anchorStr(c *Colors, beforeID, afterID *dom.NodeID, beforeText, first, last bool) string {
	switch {
	case beforeID != nil:
		return c.Anchor("before #%d", *beforeID)
	case afterID != nil:
		s := c.Anchor("after #%d", *afterID)
		if last {
			s += c.Anchor(" (trailing)")
		}
		return s
	case beforeText:
		return c.Anchor("before text")
	case first:
		return c.Anchor("first")
	case last:
		return c.Anchor("last")
	}
	return c.Anchor("whole")
}
