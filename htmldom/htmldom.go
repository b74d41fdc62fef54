// Package htmldom builds diffable tree snapshots from HTML. Element
// identity is read from a data-nid attribute when the producer supplies
// one, and assigned in document order otherwise; identities must be
// stable across the snapshots being diffed for moves to be detected.
package htmldom

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/treewire/treewire/dom"
)

// IDAttr marks an element's stable identity in source HTML. It is
// stripped from the snapshot's attribute maps.
const IDAttr = "data-nid"

// Parse reads an HTML document and returns the snapshot rooted at its
// body element.
func Parse(r io.Reader) (*dom.Tree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	body := findElement(doc, "body")
	if body == nil {
		return nil, fmt.Errorf("no body element")
	}
	root, err := convert(body)
	if err != nil {
		return nil, err
	}
	assignIDs(root)
	return dom.Build(root), nil
}

// ParseString is Parse over a string, for tests and the RPC server.
func ParseString(s string) (*dom.Tree, error) {
	return Parse(strings.NewReader(s))
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if res := findElement(c, tag); res != nil {
			return res
		}
	}
	return nil
}

func convert(n *html.Node) (*dom.Node, error) {
	res := &dom.Node{
		Kind: dom.ElementKind,
		Tag:  n.Data,
	}
	for _, attr := range n.Attr {
		if attr.Key == IDAttr {
			id, err := strconv.ParseInt(attr.Val, 10, 64)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("bad %s %q on <%s>", IDAttr, attr.Val, n.Data)
			}
			res.ID = dom.NodeID(id)
			continue
		}
		if res.Attrs == nil {
			res.Attrs = map[string]string{}
		}
		res.Attrs[attr.Key] = attr.Val
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			kid, err := convert(c)
			if err != nil {
				return nil, err
			}
			kid.Parent = res
			res.Kids = append(res.Kids, kid)
		case html.TextNode:
			if strings.TrimSpace(c.Data) == "" {
				continue
			}
			kid := dom.FromText(c.Data)
			kid.Parent = res
			res.Kids = append(res.Kids, kid)
		}
	}
	return res, nil
}

// assignIDs gives every unlabeled element a document-order identity
// above any explicit one, so mixed labeling cannot collide.
func assignIDs(root *dom.Node) {
	next := dom.NodeID(1)
	root.Visit(func(n *dom.Node, isPost bool) (bool, error) {
		if !isPost && n.Kind == dom.ElementKind && n.ID >= next {
			next = n.ID + 1
		}
		return true, nil
	})
	root.Visit(func(n *dom.Node, isPost bool) (bool, error) {
		if !isPost && n.Kind == dom.ElementKind && n.ID == 0 {
			n.ID = next
			next++
		}
		return true, nil
	})
}

// Render writes the snapshot back as an HTML fragment, including each
// element's identity attribute, so output can be re-parsed and diffed.
func Render(w io.Writer, t *dom.Tree) error {
	if t == nil || t.Root == nil {
		return nil
	}
	return html.Render(w, toHTML(t.Root))
}

func toHTML(n *dom.Node) *html.Node {
	if n.Kind == dom.TextKind {
		return &html.Node{Type: html.TextNode, Data: n.Text}
	}
	res := &html.Node{
		Type: html.ElementNode,
		Data: n.Tag,
	}
	names := make([]string, 0, len(n.Attrs))
	for name := range n.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		res.Attr = append(res.Attr, html.Attribute{Key: name, Val: n.Attrs[name]})
	}
	res.Attr = append(res.Attr, html.Attribute{
		Key: IDAttr,
		Val: strconv.FormatInt(int64(n.ID), 10),
	})
	for _, kid := range n.Kids {
		res.AppendChild(toHTML(kid))
	}
	return res
}
