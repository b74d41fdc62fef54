package dom

import (
	"encoding/binary"
	"hash/maphash"
	"maps"
	"slices"
)

// seed is shared by every signature computed in one process, so the
// signatures of the old and new snapshots of a document are comparable.
var seed = maphash.MakeSeed()

// Fingerprint computes the signature fields of n and everything beneath
// it. The diff engine trusts these completely: equal TreeSig means the
// whole subtree is taken as unchanged with no further inspection.
func Fingerprint(n *Node) {
	if n.Kind == TextKind {
		n.TextSig = hashString(n.Text)
		return
	}
	for _, kid := range n.Kids {
		Fingerprint(kid)
	}
	n.AttrSig = attrSig(n)
	n.KidSig = kidSig(n)
	n.TreeSig = treeSig(n)
}

func hashString(s string) uint64 {
	var h maphash.Hash
	h.SetSeed(seed)
	h.WriteString(s)
	return h.Sum64()
}

func attrSig(n *Node) uint64 {
	var h maphash.Hash
	h.SetSeed(seed)
	h.WriteString(n.Tag)
	for _, name := range slices.Sorted(maps.Keys(n.Attrs)) {
		h.WriteByte(0)
		h.WriteString(name)
		h.WriteByte(1)
		h.WriteString(n.Attrs[name])
	}
	return h.Sum64()
}

// kidSig covers the immediate child list only: identities in order for
// elements, content signatures for text runs.
func kidSig(n *Node) uint64 {
	var h maphash.Hash
	h.SetSeed(seed)
	var b [8]byte
	for _, kid := range n.Kids {
		h.WriteByte(byte(kid.Kind))
		if kid.Kind == ElementKind {
			binary.LittleEndian.PutUint64(b[:], uint64(kid.ID))
		} else {
			binary.LittleEndian.PutUint64(b[:], kid.TextSig)
		}
		h.Write(b[:])
	}
	return h.Sum64()
}

func treeSig(n *Node) uint64 {
	var h maphash.Hash
	h.SetSeed(seed)
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], n.AttrSig)
	h.Write(b[:])
	binary.LittleEndian.PutUint64(b[:], uint64(n.ID))
	h.Write(b[:])
	for _, kid := range n.Kids {
		if kid.Kind == ElementKind {
			binary.LittleEndian.PutUint64(b[:], kid.TreeSig)
		} else {
			binary.LittleEndian.PutUint64(b[:], kid.TextSig)
		}
		h.Write(b[:])
	}
	return h.Sum64()
}
