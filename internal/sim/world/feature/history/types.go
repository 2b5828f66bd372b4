package history

import (
	"errors"
	"fmt"

	"voxeledit.ai/internal/sim/world/feature/regions"
	"voxeledit.ai/internal/sim/world/kernel/model"
)

// Snapshots is the slice of the region store the history needs.
type Snapshots interface {
	Save(name string, start, end model.Vec3i, owner model.Owner, includeEntities bool) error
	LoadInto(name string, dim model.RegionHandle, anchor model.Vec3i, owner model.Owner, mode regions.LoadMode) error
	Get(name string, owner model.Owner) (regions.Snapshot, bool)
	Delete(name string, owner model.Owner) error
	Has(name string, owner model.Owner) bool
}

// Shape says how an edit's region can be captured.
type Shape int

const (
	// FullCuboid captures the whole box in one snapshot.
	FullCuboid Shape = iota
	// NoSnapshot records that no bulk capture applies; the caller reverses the edit by
	// other means.
	NoSnapshot
)

func (s Shape) String() string {
	switch s {
	case FullCuboid:
		return "full_cuboid"
	case NoSnapshot:
		return "no_snapshot"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

type State int

const (
	Recording State = iota
	Committed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Recording:
		return "recording"
	case Committed:
		return "committed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var ErrHistoryState = errors.New("invalid history state")

// StateError is returned on API misuse: nested Record, Commit without Record and so on.
type StateError struct {
	Op     string
	Reason string
}

func (e *StateError) Error() string { return fmt.Sprintf("history %s: %s", e.Op, e.Reason) }

func (e *StateError) Is(target error) bool { return target == ErrHistoryState }

// slot is one side of an entry. resolved with an empty name is the "no snapshot" sentinel.
type slot struct {
	resolved bool
	name     string
	dim      model.RegionHandle
	at       model.Vec3i
	size     model.Vec3i
}

func (s slot) taken() bool { return s.resolved && s.name != "" }

type Entry struct {
	ID    uint64
	State State
	Label string

	undo slot
	redo slot
}

// EntryInfo is a read-only view of an entry.
type EntryInfo struct {
	ID           uint64      `json:"id"`
	State        string      `json:"state"`
	Label        string      `json:"label,omitempty"`
	Dimension    string      `json:"dimension,omitempty"`
	UndoSnapshot string      `json:"undo_snapshot,omitempty"`
	RedoSnapshot string      `json:"redo_snapshot,omitempty"`
	At           model.Vec3i `json:"at"`
	Size         model.Vec3i `json:"size"`
	Applied      bool        `json:"applied"`
}

func (e *Entry) info(applied bool) EntryInfo {
	in := EntryInfo{
		ID:           e.ID,
		State:        e.State.String(),
		Label:        e.Label,
		UndoSnapshot: e.undo.name,
		RedoSnapshot: e.redo.name,
		Applied:      applied,
	}
	switch {
	case e.redo.taken():
		in.Dimension, in.At, in.Size = string(e.redo.dim), e.redo.at, e.redo.size
	case e.undo.taken():
		in.Dimension, in.At, in.Size = string(e.undo.dim), e.undo.at, e.undo.size
	}
	return in
}
