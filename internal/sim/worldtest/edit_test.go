package worldtest

import (
	"testing"

	"voxeledit.ai/internal/protocol"
	world "voxeledit.ai/internal/sim/world"
	"voxeledit.ai/internal/sim/world/kernel/model"
)

// testConfig spawns builders in open air and uses a small capture limit so most edits
// are stored as several chunks.
func testConfig() world.WorldConfig {
	return world.WorldConfig{
		ID:           "test",
		TickRateHz:   20,
		Seed:         42,
		Spawn:        world.Vec3i{X: 0, Y: 100, Z: 0},
		CaptureLimit: world.Vec3i{X: 4, Y: 8, Z: 4},
	}
}

func TestChunkedSetUndoRedo(t *testing.T) {
	h := NewHarness(t, testConfig(), LoadCatalogs(t), "builder")
	lo, hi := world.Vec3i{X: 0, Y: 100, Z: 0}, world.Vec3i{X: 9, Y: 101, Z: 2}

	h.MustRun("pos1 0 100 0")
	h.MustRun("pos2 9 101 2")
	r := h.MustRun("set stone")
	if r.Lines[0] != "Operation completed (60 blocks changed)." {
		t.Fatalf("set: %v", r.Lines)
	}
	if n := h.CountBlock("OVERWORLD", lo, hi, "STONE"); n != 60 {
		t.Fatalf("stone after set: %d", n)
	}

	h.MustRun("undo")
	if n := h.CountBlock("OVERWORLD", lo, hi, "AIR"); n != 60 {
		t.Fatalf("air after undo: %d", n)
	}
	h.MustRun("redo")
	if n := h.CountBlock("OVERWORLD", lo, hi, "STONE"); n != 60 {
		t.Fatalf("stone after redo: %d", n)
	}
}

func TestClipboardSpansTwoChunks(t *testing.T) {
	h := NewHarness(t, testConfig(), LoadCatalogs(t), "builder")
	owner := model.Owner(h.Welcome(h.DefaultSessionID).Owner)

	h.MustRun("pos1 0 100 0")
	h.MustRun("pos2 7 100 0")
	h.MustRun("copy")

	snap, ok := h.W.Snapshots().Get("clipboard", owner)
	if !ok {
		t.Fatalf("clipboard missing")
	}
	if len(snap.ChunkOffsets) != 2 {
		t.Fatalf("chunk offsets: %v", snap.ChunkOffsets)
	}

	if err := h.W.Snapshots().Delete("clipboard", owner); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if h.W.Snapshots().Has("clipboard", owner) {
		t.Fatalf("clipboard survived delete")
	}
	if st := h.W.Snapshots().Stats(); st.Snapshots != 0 || st.Chunks != 0 {
		t.Fatalf("stats after delete: %+v", st)
	}
}

func TestPasteIntoOtherDimension(t *testing.T) {
	h := NewHarness(t, testConfig(), LoadCatalogs(t), "builder")
	h.SetBlock("OVERWORLD", world.Vec3i{X: 0, Y: 100, Z: 0}, "GLASS")
	h.SetBlock("OVERWORLD", world.Vec3i{X: 1, Y: 100, Z: 0}, "BRICK")

	h.MustRun("pos1 0 100 0")
	h.MustRun("pos2 1 100 0")
	h.MustRun("copy")
	h.MustRun("dim flat")
	h.MustRun("tp 10 50 10")
	h.MustRun("paste")

	if got := h.Block("FLAT", world.Vec3i{X: 10, Y: 50, Z: 10}); got != "GLASS" {
		t.Fatalf("flat (10,50,10) = %s", got)
	}
	if got := h.Block("FLAT", world.Vec3i{X: 11, Y: 50, Z: 10}); got != "BRICK" {
		t.Fatalf("flat (11,50,10) = %s", got)
	}
	if got := h.Block("OVERWORLD", world.Vec3i{X: 10, Y: 50, Z: 10}); got == "GLASS" {
		t.Fatalf("paste leaked into the overworld")
	}

	h.MustRun("undo")
	if got := h.Block("FLAT", world.Vec3i{X: 10, Y: 50, Z: 10}); got != "AIR" {
		t.Fatalf("after undo = %s", got)
	}
}

func TestUndoAfterDimensionChange(t *testing.T) {
	h := NewHarness(t, testConfig(), LoadCatalogs(t), "builder")
	p := world.Vec3i{X: 0, Y: 100, Z: 0}
	h.SetBlock("FLAT", p, "BRICK")

	h.MustRun("pos1 0 100 0")
	h.MustRun("pos2 0 100 0")
	h.MustRun("set stone")
	h.MustRun("dim flat")

	r := h.MustRun("undo")
	if r.Lines[0] != "Undid 1 operation(s)." {
		t.Fatalf("undo: %v", r.Lines)
	}
	if got := h.Block("OVERWORLD", p); got != "AIR" {
		t.Fatalf("overworld after undo = %s", got)
	}
	if got := h.Block("FLAT", p); got != "BRICK" {
		t.Fatalf("flat after undo = %s", got)
	}

	h.MustRun("redo")
	if got := h.Block("OVERWORLD", p); got != "STONE" {
		t.Fatalf("overworld after redo = %s", got)
	}
	if got := h.Block("FLAT", p); got != "BRICK" {
		t.Fatalf("flat after redo = %s", got)
	}
}

func TestUndoRedoKeepsEntityCount(t *testing.T) {
	cfg := testConfig()
	cfg.IncludeEntities = true
	h := NewHarness(t, cfg, LoadCatalogs(t), "builder")
	lo, hi := world.Vec3i{X: 0, Y: 100, Z: 0}, world.Vec3i{X: 2, Y: 101, Z: 2}
	if err := h.W.DebugSpawnEntity("OVERWORLD", model.Entity{
		EntityID: "stand-1", Type: "ARMOR_STAND", Pos: model.V(1, 100, 1),
	}); err != nil {
		t.Fatal(err)
	}

	h.MustRun("pos1 0 100 0")
	h.MustRun("pos2 2 101 2")
	h.MustRun("set glass")
	for i := 0; i < 3; i++ {
		h.MustRun("undo")
		h.MustRun("redo")
	}
	if n := h.W.DebugEntities("OVERWORLD", lo, hi, "ARMOR_STAND"); n != 1 {
		t.Fatalf("armor stands after undo/redo cycles: %d", n)
	}
	if n := h.CountBlock("OVERWORLD", lo, hi, "GLASS"); n != 18 {
		t.Fatalf("glass after redo: %d", n)
	}
}

func TestPasteCarriesEntities(t *testing.T) {
	cfg := testConfig()
	cfg.IncludeEntities = true
	h := NewHarness(t, cfg, LoadCatalogs(t), "builder")
	if err := h.W.DebugSpawnEntity("OVERWORLD", model.Entity{
		EntityID: "stand-1", Type: "ARMOR_STAND", Pos: model.V(1, 100, 1),
	}); err != nil {
		t.Fatal(err)
	}

	h.MustRun("pos1 0 100 0")
	h.MustRun("pos2 2 101 2")
	h.MustRun("copy")
	h.MustRun("tp 20 100 20")
	h.MustRun("paste")

	if n := h.W.DebugEntities("OVERWORLD", world.Vec3i{X: 20, Y: 100, Z: 20}, world.Vec3i{X: 22, Y: 101, Z: 22}, "ARMOR_STAND"); n != 1 {
		t.Fatalf("pasted stands: %d", n)
	}
	if n := h.W.DebugEntities("OVERWORLD", world.Vec3i{X: 0, Y: 100, Z: 0}, world.Vec3i{X: 2, Y: 101, Z: 2}, "ARMOR_STAND"); n != 1 {
		t.Fatalf("source stands: %d", n)
	}
}

func TestResultCodes(t *testing.T) {
	h := NewHarness(t, testConfig(), LoadCatalogs(t), "builder")
	cases := []struct {
		line string
		code string
	}{
		{"paste", protocol.ErrNotFound},
		{"set stone", protocol.ErrBadRequest},
		{"fly", protocol.ErrBadRequest},
		{"tp 0 9999 0", protocol.ErrBadRequest},
		{"dim nether", protocol.ErrBadRequest},
	}
	for _, tc := range cases {
		r := h.Run(tc.line)
		if r.OK || r.Code != tc.code {
			t.Errorf("%q: ok=%v code=%q want %q", tc.line, r.OK, r.Code, tc.code)
		}
		if !protocol.IsKnownCode(r.Code) {
			t.Errorf("%q: unknown code %q", tc.line, r.Code)
		}
	}

	// Nothing to undo is not an error.
	r := h.MustRun("undo")
	if r.Lines[0] != "Nothing left to undo." {
		t.Fatalf("undo: %v", r.Lines)
	}
}

func TestLeaveReleasesOwnerState(t *testing.T) {
	h := NewHarness(t, testConfig(), LoadCatalogs(t), "alice")
	bob := h.Join("bob")
	alice := h.DefaultSessionID
	aliceOwner := model.Owner(h.Welcome(alice).Owner)
	bobOwner := model.Owner(h.Welcome(bob).Owner)

	for _, id := range []string{alice, bob} {
		for _, line := range []string{"pos1 0 100 0", "pos2 5 100 0", "set glass", "copy"} {
			if r := h.RunFor(id, line); !r.OK {
				t.Fatalf("%s %q: %s", id, line, r.Message)
			}
		}
	}
	if n := len(h.W.Snapshots().Names(aliceOwner)); n != 3 {
		t.Fatalf("alice snapshots: %d", n)
	}

	h.Leave(alice)
	if n := len(h.W.Snapshots().Names(aliceOwner)); n != 0 {
		t.Fatalf("alice snapshots after leave: %d", n)
	}
	if n := len(h.W.Snapshots().Names(bobOwner)); n != 3 {
		t.Fatalf("bob snapshots after alice left: %d", n)
	}

	// Bob's history still works.
	if r := h.RunFor(bob, "undo"); !r.OK {
		t.Fatalf("bob undo: %s", r.Message)
	}
}

func TestWelcomeDescribesWorld(t *testing.T) {
	cats := LoadCatalogs(t)
	h := NewHarness(t, testConfig(), cats, "builder")
	wel := h.Welcome(h.DefaultSessionID)

	if wel.Type != protocol.TypeWelcome || wel.ProtocolVersion != protocol.Version {
		t.Fatalf("header: %+v", wel)
	}
	if wel.Dimension != "OVERWORLD" || wel.Position != [3]int{0, 100, 0} {
		t.Fatalf("placement: %s %v", wel.Dimension, wel.Position)
	}
	if len(wel.Dimensions) != 2 || wel.Dimensions[0].ID != "FLAT" || wel.Dimensions[1].ID != "OVERWORLD" {
		t.Fatalf("dimensions: %+v", wel.Dimensions)
	}
	if wel.Limits.CaptureLimit != [3]int{4, 8, 4} || wel.Limits.LoadPolicy != "any" {
		t.Fatalf("limits: %+v", wel.Limits)
	}
	if wel.BlockPalette.Count != len(cats.Blocks.Palette) || wel.BlockPalette.Digest != cats.Blocks.PaletteDigest {
		t.Fatalf("palette: %+v", wel.BlockPalette)
	}
	if wel.Owner == "" || wel.Owner == wel.SessionID {
		t.Fatalf("owner: %q", wel.Owner)
	}
}
