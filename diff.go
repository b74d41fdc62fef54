// Package treewire computes ordered edit scripts between two snapshots
// of a labeled document tree, so an out-of-process mirror of the tree
// can be updated in place instead of rebuilt. Matching is by element
// identity; change detection is by the precomputed signatures on the
// snapshots, which the engine trusts completely.
package treewire

import (
	"github.com/treewire/treewire/debug"
	"github.com/treewire/treewire/dom"
	"github.com/treewire/treewire/edit"
)

// NodeID aliases the snapshot identity type for callers that only
// deal in diff results.
type NodeID = dom.NodeID

type Config struct {
	// Reporter, if set, sees every anomaly as it is found, in
	// addition to the collected Result.Anomalies.
	Reporter func(Anomaly)
}

type Option func(*Config)

func WithReporter(f func(Anomaly)) Option {
	return func(c *Config) { c.Reporter = f }
}

// Result is a script plus the anomalies found while producing it.
// A diff never fails; a degraded script is still returned.
type Result struct {
	Script    edit.Script
	Anomalies []Anomaly
}

// Diff computes the edit script transforming old into new. old may be
// nil or empty for a first render. Neither tree is mutated, and the
// same pair may be diffed concurrently from multiple goroutines.
func Diff(old, new *dom.Tree, opts ...Option) *Result {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}
	d := &differ{
		old: old,
		new: new,
		cfg: cfg,
		out: &scriptBuilder{},
	}
	if new != nil && new.Root != nil {
		d.queue = append(d.queue, new.Root)
	}
	for len(d.queue) > 0 {
		n := d.queue[len(d.queue)-1]
		d.queue = d.queue[:len(d.queue)-1]
		d.visit(n)
	}
	return &Result{
		Script:    d.out.finish(),
		Anomalies: d.anomalies,
	}
}

type differ struct {
	old, new  *dom.Tree
	cfg       *Config
	out       *scriptBuilder
	queue     []*dom.Node
	anomalies []Anomaly
}

func (d *differ) enqueue(n *dom.Node) {
	d.queue = append(d.queue, n)
}

// visit diffs one new-tree element against its old counterpart, if any.
// Subtrees with an unchanged signature are pruned, not walked.
func (d *differ) visit(n *dom.Node) {
	o := d.old.Lookup(n.ID)
	if debug.Driver() {
		debug.Logf("visit %s matched=%v\n", n, o != nil)
	}
	if o == nil {
		// The applier represents the root implicitly; its insert
		// needs no position. Non-root inserts were emitted by the
		// aligner of the parent.
		if n.Parent == nil {
			d.out.append(&edit.ElementInsert{
				TagID: n.ID,
				Tag:   n.Tag,
				Attrs: cloneAttrs(n.Attrs),
			})
		}
		d.align(n, nil)
		return
	}
	if o.AttrSig != n.AttrSig {
		d.diffAttrs(o.Attrs, n.Attrs, n.ID)
	}
	if o.KidSig != n.KidSig {
		d.align(n, o)
	}
	if o.TreeSig != n.TreeSig {
		// Inserted and moved-in children were already enqueued by the
		// aligner; enqueuing them again would double their subtrees.
		for _, kid := range n.Kids {
			if kid.Kind != dom.ElementKind {
				continue
			}
			ko := d.old.Lookup(kid.ID)
			if ko != nil && parentID(ko) == n.ID {
				d.enqueue(kid)
			}
		}
	}
}

func (d *differ) report(a Anomaly) {
	if debug.Driver() || debug.Align() {
		debug.Logf("%s\n", a)
	}
	d.anomalies = append(d.anomalies, a)
	if d.cfg.Reporter != nil {
		d.cfg.Reporter(a)
	}
}

// scriptBuilder accumulates edits in generation order and prepends the
// single RememberNodes instruction when any element moved.
type scriptBuilder struct {
	edits edit.Script
	moved []dom.NodeID
}

func (b *scriptBuilder) append(e edit.Edit) edit.Edit {
	b.edits = append(b.edits, e)
	return e
}

func (b *scriptBuilder) rememberMove(id dom.NodeID) {
	b.moved = append(b.moved, id)
}

func (b *scriptBuilder) finish() edit.Script {
	if len(b.moved) == 0 {
		return b.edits
	}
	res := make(edit.Script, 0, len(b.edits)+1)
	res = append(res, &edit.RememberNodes{TagIDs: b.moved})
	return append(res, b.edits...)
}

func cloneAttrs(attrs map[string]string) map[string]string {
	if attrs == nil {
		return nil
	}
	res := make(map[string]string, len(attrs))
	for k, v := range attrs {
		res[k] = v
	}
	return res
}
