package tuning

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_ConfigsTuning(t *testing.T) {
	tune, err := Load("../../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("load tuning.yaml: %v", err)
	}
	if tune.Regions.CaptureLimit != [3]int{64, 256, 64} {
		t.Fatalf("capture_limit = %v", tune.Regions.CaptureLimit)
	}
	if tune.History.Limit <= 0 || tune.TickRateHz <= 0 {
		t.Fatalf("unexpected tuning: %+v", tune)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("history:\n  limit: 8\nregions:\n  load_policy: ALL\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tune, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tune.History.Limit != 8 {
		t.Fatalf("history.limit = %d", tune.History.Limit)
	}
	if tune.Regions.LoadPolicy != "all" {
		t.Fatalf("load_policy = %q", tune.Regions.LoadPolicy)
	}
	if tune.Regions.TokenLength != Defaults().Regions.TokenLength {
		t.Fatalf("token_length lost its default: %d", tune.Regions.TokenLength)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(*Tuning){
		"tick rate":     func(t *Tuning) { t.TickRateHz = 0 },
		"capture limit": func(t *Tuning) { t.Regions.CaptureLimit[1] = 0 },
		"load policy":   func(t *Tuning) { t.Regions.LoadPolicy = "most" },
		"token length":  func(t *Tuning) { t.Regions.TokenLength = 0 },
		"attempts":      func(t *Tuning) { t.Regions.TokenMaxAttempts = -1 },
		"history limit": func(t *Tuning) { t.History.Limit = 0 },
		"max volume":    func(t *Tuning) { t.Edits.MaxVolume = 0 },
	}
	for name, mutate := range cases {
		tune := Defaults()
		mutate(&tune)
		if err := tune.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("history: [1, 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(p)
	if err == nil || !strings.Contains(err.Error(), "tuning.yaml") {
		t.Fatalf("expected tuning.yaml error, got %v", err)
	}
}
