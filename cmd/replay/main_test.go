package main

import (
	"path/filepath"
	"strings"
	"testing"

	persistlog "voxeledit.ai/internal/persistence/log"
	"voxeledit.ai/internal/protocol"
	"voxeledit.ai/internal/sim/catalogs"
	"voxeledit.ai/internal/sim/world"
)

func newWorld(t *testing.T) *world.World {
	t.Helper()
	cats, err := catalogs.Load("../../configs")
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	w, err := world.New(world.WorldConfig{ID: "replay_test", Seed: 9, Spawn: world.Vec3i{X: 0, Y: 100, Z: 0}}, cats, nil)
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	return w
}

// record runs a short editing session with idle ticks in between and returns the events dir.
func record(t *testing.T) string {
	t.Helper()
	worldDir := t.TempDir()
	tl := persistlog.NewTickLogger(worldDir)
	w := newWorld(t)
	w.SetTickLogger(tl)

	resp := make(chan world.JoinResponse, 1)
	w.StepOnce([]world.JoinRequest{{Name: "rec", Resp: resp}}, nil, nil)
	sid := (<-resp).Welcome.SessionID

	cmd := func(id, line string) world.CommandEnvelope {
		return world.CommandEnvelope{SessionID: sid, Cmd: protocol.CmdMsg{ID: id, Line: line}}
	}
	w.StepOnce(nil, nil, nil)
	w.StepOnce(nil, nil, []world.CommandEnvelope{cmd("1", "pos1 0 100 0"), cmd("2", "pos2 3 101 3"), cmd("3", "set glass")})
	w.StepOnce(nil, nil, nil)
	w.StepOnce(nil, nil, nil)
	w.StepOnce(nil, nil, []world.CommandEnvelope{cmd("4", "copy"), cmd("5", "tp 20 100 0"), cmd("6", "paste"), cmd("7", "undo")})
	w.StepOnce(nil, []string{sid}, nil)
	if err := tl.Close(); err != nil {
		t.Fatal(err)
	}
	return filepath.Join(worldDir, "events")
}

func TestReplayMatchesRecordedDigests(t *testing.T) {
	dir := record(t)
	res, err := replay(newWorld(t), dir, 0, 0)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if res.Checked != 4 || res.Stepped != 7 || res.LastTick != 6 {
		t.Fatalf("result: %+v", res)
	}

	res, err = replay(newWorld(t), dir, 0, 3)
	if err != nil || res.LastTick != 2 {
		t.Fatalf("to_tick: %+v %v", res, err)
	}
}

func TestReplayDetectsDivergence(t *testing.T) {
	dir := record(t)
	w := newWorld(t)
	// A block changed outside the log makes the digests disagree.
	if err := w.DebugSetBlock("OVERWORLD", world.Vec3i{X: 1, Y: 100, Z: 1}, "STONE"); err != nil {
		t.Fatal(err)
	}
	_, err := replay(w, dir, 0, 0)
	if err == nil || !strings.Contains(err.Error(), "digest mismatch") {
		t.Fatalf("expected digest mismatch, got %v", err)
	}
}
