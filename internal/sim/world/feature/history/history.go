// Package history keeps a builder's linear undo/redo stack. Each committed entry holds a
// snapshot of the edited box before and after the edit; undo and redo restore them.
package history

import (
	"errors"
	"fmt"
	"io"
	"log"

	"voxeledit.ai/internal/sim/world/feature/regions"
	"voxeledit.ai/internal/sim/world/kernel/model"
)

const DefaultLimit = 64

type Options struct {
	// Limit caps committed entries; the oldest is evicted past it. <= 0 uses DefaultLimit.
	Limit           int
	IncludeEntities bool
	Logger          *log.Logger
}

// History is one owner's stack. Not safe for concurrent use.
type History struct {
	owner model.Owner
	snaps Snapshots
	limit int
	ents  bool
	log   *log.Logger

	entries []*Entry
	cursor  int
	cur     *Entry
	nextID  uint64
}

func New(owner model.Owner, snaps Snapshots, opts Options) *History {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &History{
		owner:  owner,
		snaps:  snaps,
		limit:  limit,
		ents:   opts.IncludeEntities,
		log:    logger,
		nextID: 1,
	}
}

func (h *History) Owner() model.Owner { return h.owner }

// Record opens a new entry.
func (h *History) Record() error {
	return h.RecordLabeled("")
}

// RecordLabeled is Record with a label shown in history listings.
func (h *History) RecordLabeled(label string) error {
	if h.cur != nil {
		return &StateError{Op: "record", Reason: "already recording"}
	}
	h.cur = &Entry{ID: h.nextID, State: Recording, Label: label}
	h.nextID++
	return nil
}

func (h *History) IsRecording() bool { return h.cur != nil }

// AddUndoStructure captures the box before the edit is applied.
func (h *History) AddUndoStructure(start, end model.Vec3i, shape Shape) error {
	const op = "add undo structure"
	switch {
	case h.cur == nil:
		return &StateError{Op: op, Reason: "not recording"}
	case h.cur.redo.resolved:
		return &StateError{Op: op, Reason: "redo structure already added"}
	case h.cur.undo.resolved:
		return &StateError{Op: op, Reason: "undo structure already added"}
	}
	return h.capture(&h.cur.undo, "undo", start, end, shape)
}

// AddRedoStructure captures the box after the edit is applied. An undo side that was never
// added becomes the no-snapshot sentinel.
func (h *History) AddRedoStructure(start, end model.Vec3i, shape Shape) error {
	const op = "add redo structure"
	switch {
	case h.cur == nil:
		return &StateError{Op: op, Reason: "not recording"}
	case h.cur.redo.resolved:
		return &StateError{Op: op, Reason: "redo structure already added"}
	}
	if err := h.capture(&h.cur.redo, "redo", start, end, shape); err != nil {
		return err
	}
	if !h.cur.undo.resolved {
		h.cur.undo = slot{resolved: true}
	}
	return nil
}

// Commit appends the recording entry at the cursor, discarding entries that were undone.
func (h *History) Commit() error {
	const op = "commit"
	switch {
	case h.cur == nil:
		return &StateError{Op: op, Reason: "not recording"}
	case !h.cur.undo.resolved || !h.cur.redo.resolved:
		return &StateError{Op: op, Reason: "structures not added"}
	}
	for _, e := range h.entries[h.cursor:] {
		h.logDrop(h.dropSnapshots(e))
	}
	h.entries = h.entries[:h.cursor]

	h.cur.State = Committed
	h.entries = append(h.entries, h.cur)
	h.cur = nil
	for len(h.entries) > h.limit {
		h.logDrop(h.dropSnapshots(h.entries[0]))
		h.entries[0] = nil
		h.entries = h.entries[1:]
	}
	h.cursor = len(h.entries)
	return nil
}

// Cancel discards the recording entry and any snapshot it already took.
func (h *History) Cancel() error {
	if h.cur == nil {
		return &StateError{Op: "cancel", Reason: "not recording"}
	}
	e := h.cur
	h.cur = nil
	e.State = Cancelled
	return h.dropSnapshots(e)
}

// Undo restores the state before the last applied entry. It reports none=true when there
// is nothing left to undo. A failed restore leaves the cursor where it was.
func (h *History) Undo() (none bool, err error) {
	if h.cur != nil {
		return false, &StateError{Op: "undo", Reason: "recording in progress"}
	}
	if h.cursor == 0 {
		return true, nil
	}
	e := h.entries[h.cursor-1]
	if err := h.restore(e.undo); err != nil {
		return false, fmt.Errorf("undo entry %d: %w", e.ID, err)
	}
	h.cursor--
	return false, nil
}

// Redo re-applies the entry after the cursor. none=true when nothing is left to redo.
func (h *History) Redo() (none bool, err error) {
	if h.cur != nil {
		return false, &StateError{Op: "redo", Reason: "recording in progress"}
	}
	if h.cursor >= len(h.entries) {
		return true, nil
	}
	e := h.entries[h.cursor]
	if err := h.restore(e.redo); err != nil {
		return false, fmt.Errorf("redo entry %d: %w", e.ID, err)
	}
	h.cursor++
	return false, nil
}

// Clear cancels any recording and drops every entry with its snapshots.
func (h *History) Clear() error {
	var errs []error
	if h.cur != nil {
		errs = append(errs, h.Cancel())
	}
	for _, e := range h.entries {
		errs = append(errs, h.dropSnapshots(e))
	}
	h.entries = nil
	h.cursor = 0
	return errors.Join(errs...)
}

func (h *History) Len() int    { return len(h.entries) }
func (h *History) Cursor() int { return h.cursor }

// Entries lists committed entries oldest first.
func (h *History) Entries() []EntryInfo {
	out := make([]EntryInfo, 0, len(h.entries))
	for i, e := range h.entries {
		out = append(out, e.info(i < h.cursor))
	}
	return out
}

// Current describes the recording entry, if any.
func (h *History) Current() (EntryInfo, bool) {
	if h.cur == nil {
		return EntryInfo{}, false
	}
	return h.cur.info(false), true
}

func (h *History) capture(sl *slot, kind string, start, end model.Vec3i, shape Shape) error {
	switch shape {
	case NoSnapshot:
		*sl = slot{resolved: true}
		return nil
	case FullCuboid:
	default:
		return &StateError{Op: "add " + kind + " structure", Reason: "unknown shape " + shape.String()}
	}
	name := slotName(h.cur.ID, kind)
	if err := h.snaps.Save(name, start, end, h.owner, h.ents); err != nil {
		return fmt.Errorf("history %s snapshot: %w", kind, err)
	}
	snap, ok := h.snaps.Get(name, h.owner)
	if !ok {
		return fmt.Errorf("history %s snapshot: %w", kind, regions.ErrNotFound)
	}
	*sl = slot{
		resolved: true,
		name:     name,
		dim:      snap.Dimension,
		at:       model.RegionMin(start, end),
		size:     model.RegionSize(start, end),
	}
	return nil
}

func (h *History) restore(sl slot) error {
	if !sl.taken() {
		return nil
	}
	// The capture dimension, not the owner's current one: a builder may have moved.
	return h.snaps.LoadInto(sl.name, sl.dim, sl.at, h.owner, regions.Absolute)
}

func (h *History) dropSnapshots(e *Entry) error {
	var errs []error
	for _, sl := range []slot{e.undo, e.redo} {
		if !sl.taken() || !h.snaps.Has(sl.name, h.owner) {
			continue
		}
		if err := h.snaps.Delete(sl.name, h.owner); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *History) logDrop(err error) {
	if err != nil {
		h.log.Printf("history %s: drop entry snapshots: %v", h.owner, err)
	}
}

func slotName(id uint64, kind string) string {
	return fmt.Sprintf("%shistory_%d_%s", regions.ReservedPrefix, id, kind)
}
