// File: internal/snapshot/diff.go
package snapshot

// ChangeKind classifies a difference between two snapshots.
type ChangeKind string

const (
	Added   ChangeKind = "added"
	Removed ChangeKind = "removed"
	Moved   ChangeKind = "moved" // same size, new origin
	Resized ChangeKind = "resized"
)

// Change is one node whose area differs between two snapshots.
type Change struct {
	ID     uint64     `json:"id"`
	Name   string     `json:"name,omitempty"`
	Kind   ChangeKind `json:"kind"`
	Before *Rect      `json:"before,omitempty"`
	After  *Rect      `json:"after,omitempty"`
}

// Diff lists the nodes whose area changed from before to after. Changes come
// in the document order of after, followed by the removed nodes.
func Diff(before, after *Snapshot) []Change {
	old := before.index()
	var changes []Change

	seen := make(map[uint64]bool, len(after.Nodes))
	for _, e := range after.Nodes {
		seen[e.ID] = true
		a := e.Area
		i, ok := old[e.ID]
		if !ok {
			changes = append(changes, Change{ID: e.ID, Name: e.Name, Kind: Added, After: &a})
			continue
		}
		b := before.Nodes[i].Area
		switch {
		case a == b:
		case a.Width == b.Width && a.Height == b.Height:
			changes = append(changes, Change{ID: e.ID, Name: e.Name, Kind: Moved, Before: &b, After: &a})
		default:
			changes = append(changes, Change{ID: e.ID, Name: e.Name, Kind: Resized, Before: &b, After: &a})
		}
	}

	for _, e := range before.Nodes {
		if !seen[e.ID] {
			b := e.Area
			changes = append(changes, Change{ID: e.ID, Name: e.Name, Kind: Removed, Before: &b})
		}
	}
	return changes
}
