package structures

import (
	"errors"
	"testing"

	"voxeledit.ai/internal/sim/world/kernel/model"
	"voxeledit.ai/internal/sim/world/terrain/store"
)

type dimMap map[model.RegionHandle]*store.ChunkStore

func (d dimMap) Dimension(h model.RegionHandle) (*store.ChunkStore, bool) {
	cs, ok := d[h]
	return cs, ok
}

func newTestMemory(t *testing.T) (*Memory, *store.ChunkStore) {
	t.Helper()
	cs := store.NewChunkStore(store.WorldGen{Seed: 1, MinY: 0, MaxY: 255, SurfaceY: 10, Stone: 2, Dirt: 3, Grass: 4, Bedrock: 1})
	return NewMemory(dimMap{"overworld": cs}, MaxSize), cs
}

func TestCaptureRestoreCopiesBlocksAndEntities(t *testing.T) {
	m, cs := newTestMemory(t)
	cs.Fill(model.V(0, 20, 0), model.V(2, 21, 2), 7)
	cs.SpawnEntity(model.Entity{EntityID: "e1", Type: "armor_stand", Pos: model.V(1, 21, 1)})

	if err := m.Capture("overworld", "wedit:a_AAAA", model.V(2, 21, 2), model.V(0, 20, 0), true); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if err := m.Restore("overworld", "wedit:a_AAAA", model.V(10, 30, 10)); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	for _, p := range []model.Vec3i{model.V(10, 30, 10), model.V(12, 31, 12)} {
		if got := cs.GetBlock(p.X, p.Y, p.Z); got != 7 {
			t.Fatalf("block at %v: got %d want 7", p, got)
		}
	}
	ents := cs.EntitiesIn(model.V(10, 30, 10), model.V(12, 31, 12))
	if len(ents) != 1 || ents[0].Pos != model.V(11, 31, 11) || ents[0].EntityID == "e1" {
		t.Fatalf("unexpected restored entities: %+v", ents)
	}
}

func TestRestoreReplacesEntitiesInBox(t *testing.T) {
	m, cs := newTestMemory(t)
	lo, hi := model.V(0, 20, 0), model.V(2, 21, 2)
	cs.SpawnEntity(model.Entity{EntityID: "e1", Type: "armor_stand", Pos: model.V(1, 21, 1)})
	if err := m.Capture("overworld", "with", lo, hi, true); err != nil {
		t.Fatal(err)
	}
	if err := m.Capture("overworld", "without", lo, hi, false); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := m.Restore("overworld", "with", lo); err != nil {
			t.Fatalf("Restore %d: %v", i, err)
		}
	}
	if n := len(cs.EntitiesIn(lo, hi)); n != 1 {
		t.Fatalf("entities after repeated restore: %d", n)
	}
	if err := m.Restore("overworld", "without", lo); err != nil {
		t.Fatal(err)
	}
	if n := len(cs.EntitiesIn(lo, hi)); n != 1 {
		t.Fatalf("block-only restore touched entities: %d", n)
	}
}

func TestCaptureRejects(t *testing.T) {
	m, _ := newTestMemory(t)
	cases := []struct {
		name string
		dim  model.RegionHandle
		a, b model.Vec3i
		want error
	}{
		{"too wide", "overworld", model.V(0, 0, 0), model.V(64, 0, 0), ErrTooLarge},
		{"unknown dim", "nether", model.V(0, 0, 0), model.V(1, 1, 1), ErrUnknownDimension},
		{"below world", "overworld", model.V(0, -1, 0), model.V(1, 1, 1), ErrOutOfBounds},
	}
	for _, tc := range cases {
		if err := m.Capture(tc.dim, "wedit:x_AAAA", tc.a, tc.b, false); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, err, tc.want)
		}
	}
	if m.Len() != 0 {
		t.Fatalf("rejected captures must not store anything, have %d", m.Len())
	}
	if err := m.Capture("overworld", "wedit:x_AAAA", model.V(0, 0, 0), model.V(63, 255, 63), false); err != nil {
		t.Fatalf("capture at exactly the limit: %v", err)
	}
}

func TestRestoreAndRemoveErrors(t *testing.T) {
	m, _ := newTestMemory(t)
	if err := m.Restore("overworld", "missing", model.V(0, 0, 0)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Restore missing: got %v", err)
	}
	if err := m.Remove("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Remove missing: got %v", err)
	}
	if err := m.Capture("overworld", "s", model.V(0, 250, 0), model.V(0, 255, 0), false); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if err := m.Restore("overworld", "s", model.V(0, 252, 0)); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("Restore past MaxY: got %v", err)
	}
	if err := m.Remove("s"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if m.Has("s") {
		t.Fatalf("structure still present after Remove")
	}
}
