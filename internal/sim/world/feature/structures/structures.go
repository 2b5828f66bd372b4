// Package structures is the in-memory structure primitive the editor captures regions
// into. Like the host command it stands in for, a single capture is capped at MaxSize.
package structures

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"voxeledit.ai/internal/sim/world/kernel/model"
	"voxeledit.ai/internal/sim/world/terrain/store"
)

// MaxSize is the largest box a single Capture accepts.
var MaxSize = model.V(64, 256, 64)

var (
	ErrTooLarge         = errors.New("structure exceeds capture limit")
	ErrNotFound         = errors.New("structure not found")
	ErrOutOfBounds      = errors.New("structure placement out of world bounds")
	ErrUnknownDimension = errors.New("unknown dimension")
	ErrEmptyID          = errors.New("empty structure id")
)

// Dimensions resolves a region handle to the voxels it addresses.
type Dimensions interface {
	Dimension(h model.RegionHandle) (*store.ChunkStore, bool)
}

type structure struct {
	size     model.Vec3i
	blocks   []uint16
	entities []model.Entity // positions relative to the capture corner
	// withEntities marks a capture that took entities, even if the box held none.
	withEntities bool
}

type Memory struct {
	dims  Dimensions
	limit model.Vec3i
	saved map[string]*structure

	newEntityID func() string
}

func NewMemory(dims Dimensions, limit model.Vec3i) *Memory {
	if limit.X <= 0 || limit.Y <= 0 || limit.Z <= 0 {
		limit = MaxSize
	}
	return &Memory{
		dims:        dims,
		limit:       limit,
		saved:       map[string]*structure{},
		newEntityID: func() string { return uuid.NewString() },
	}
}

// Capture stores the inclusive box [a, b] of dimension dim under id, replacing any
// structure already stored there.
func (m *Memory) Capture(dim model.RegionHandle, id string, a, b model.Vec3i, includeEntities bool) error {
	if id == "" {
		return ErrEmptyID
	}
	cs, ok := m.dims.Dimension(dim)
	if !ok {
		return fmt.Errorf("capture %s: %w: %s", id, ErrUnknownDimension, dim)
	}
	lo, hi := model.RegionMin(a, b), model.RegionMax(a, b)
	size := model.RegionSize(lo, hi)
	if size.X > m.limit.X || size.Y > m.limit.Y || size.Z > m.limit.Z {
		return fmt.Errorf("capture %s: %w: size %v limit %v", id, ErrTooLarge, size, m.limit)
	}
	if !cs.BoxInBounds(lo, hi) {
		return fmt.Errorf("capture %s: %w: %v..%v", id, ErrOutOfBounds, lo, hi)
	}

	st := &structure{size: size, blocks: cs.ReadRegion(lo, size), withEntities: includeEntities}
	if includeEntities {
		for _, e := range cs.EntitiesIn(lo, hi) {
			e.Pos = e.Pos.Sub(lo)
			st.entities = append(st.entities, e)
		}
	}
	m.saved[id] = st
	return nil
}

// Restore places structure id with its minimum corner at at. A structure captured with
// entities replaces the entities inside the target box rather than adding to them.
func (m *Memory) Restore(dim model.RegionHandle, id string, at model.Vec3i) error {
	st, ok := m.saved[id]
	if !ok {
		return fmt.Errorf("restore %s: %w", id, ErrNotFound)
	}
	cs, ok := m.dims.Dimension(dim)
	if !ok {
		return fmt.Errorf("restore %s: %w: %s", id, ErrUnknownDimension, dim)
	}
	hi := at.Add(st.size).Sub(model.V(1, 1, 1))
	if !cs.BoxInBounds(at, hi) {
		return fmt.Errorf("restore %s: %w: %v..%v", id, ErrOutOfBounds, at, hi)
	}
	if _, err := cs.WriteRegion(at, st.size, st.blocks); err != nil {
		return fmt.Errorf("restore %s: %w", id, err)
	}
	if st.withEntities {
		for _, e := range cs.EntitiesIn(at, hi) {
			cs.RemoveEntity(e.EntityID)
		}
	}
	for _, e := range st.entities {
		e.EntityID = m.newEntityID()
		e.Pos = e.Pos.Add(at)
		cs.SpawnEntity(e)
	}
	return nil
}

func (m *Memory) Remove(id string) error {
	if _, ok := m.saved[id]; !ok {
		return fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}
	delete(m.saved, id)
	return nil
}

func (m *Memory) Has(id string) bool {
	_, ok := m.saved[id]
	return ok
}

func (m *Memory) Len() int { return len(m.saved) }

// IDs lists stored structure ids in lexical order.
func (m *Memory) IDs() []string {
	out := make([]string, 0, len(m.saved))
	for id := range m.saved {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
