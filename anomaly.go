package treewire

import "fmt"

type AnomalyKind int

const (
	// AnomalyMismatch: two elements at the same position differ in
	// identity yet neither qualifies as an insert nor a delete. The
	// identity hints upstream are inconsistent, or the reordering is
	// not representable by the move model.
	AnomalyMismatch AnomalyKind = iota
	// AnomalyDangling: a trailing old child should be deletable but
	// the new tree still references it under the same parent.
	AnomalyDangling
)

func (k AnomalyKind) String() string {
	switch k {
	case AnomalyMismatch:
		return "mismatch"
	case AnomalyDangling:
		return "dangling"
	}
	return "<unknown anomaly>"
}

func (k AnomalyKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Anomaly records an upstream contract violation found mid-alignment.
// Anomalies are non-fatal: the diff advances past them and keeps
// producing best-effort edits.
type Anomaly struct {
	Kind     AnomalyKind
	OldID    NodeID
	NewID    NodeID
	ParentID NodeID
}

func (a Anomaly) String() string {
	return fmt.Sprintf("%s anomaly under #%d (old #%d, new #%d)",
		a.Kind, a.ParentID, a.OldID, a.NewID)
}
