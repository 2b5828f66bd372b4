package main

import (
	"testing"

	persistlog "voxeledit.ai/internal/persistence/log"
	"voxeledit.ai/internal/sim/world"
)

func TestReadAuditFilters(t *testing.T) {
	worldDir := t.TempDir()
	l := persistlog.NewAuditLogger(worldDir)
	entries := []world.AuditEntry{
		{Tick: 1, Owner: "a", Command: "set", OK: true, Min: [3]int{0, 0, 0}, Max: [3]int{4, 4, 4}},
		{Tick: 2, Owner: "b", Command: "paste", Code: "E_NOT_FOUND"},
		{Tick: 5, Owner: "a", Command: "cut", OK: true, Min: [3]int{100, 0, 100}, Max: [3]int{101, 1, 101}},
	}
	for _, e := range entries {
		if err := l.WriteAudit(e); err != nil {
			t.Fatal(err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := readAudit(worldDir, auditFilter{Owner: "a"}, 0)
	if err != nil || len(got) != 2 {
		t.Fatalf("owner: %v %+v", err, got)
	}
	lo, hi, _ := parseAABB("3,3,3:-1,-1,-1")
	got, _ = readAudit(worldDir, auditFilter{Box: true, Min: lo, Max: hi}, 0)
	if len(got) != 2 || got[0].Command != "set" || got[1].Command != "paste" {
		t.Fatalf("box: %+v", got)
	}
	got, _ = readAudit(worldDir, auditFilter{FailedOnly: true}, 0)
	if len(got) != 1 || got[0].Owner != "b" {
		t.Fatalf("failed: %+v", got)
	}
	got, _ = readAudit(worldDir, auditFilter{SinceTick: 2, ToTick: 4}, 0)
	if len(got) != 1 || got[0].Tick != 2 {
		t.Fatalf("ticks: %+v", got)
	}
	got, _ = readAudit(worldDir, auditFilter{}, 1)
	if len(got) != 1 {
		t.Fatalf("limit: %+v", got)
	}
}
