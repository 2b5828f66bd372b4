package tuning

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz int    `yaml:"tick_rate_hz"`
	Spawn      [3]int `yaml:"spawn"`

	Regions RegionTuning  `yaml:"regions"`
	History HistoryTuning `yaml:"history"`
	Edits   EditTuning    `yaml:"edits"`
}

type RegionTuning struct {
	// CaptureLimit is the largest box one structure capture may cover.
	CaptureLimit     [3]int `yaml:"capture_limit"`
	LoadPolicy       string `yaml:"load_policy"` // "any" | "all"
	TokenLength      int    `yaml:"token_length"`
	TokenMaxAttempts int    `yaml:"token_max_attempts"`
}

type HistoryTuning struct {
	Limit           int  `yaml:"limit"`
	IncludeEntities bool `yaml:"include_entities"`
}

type EditTuning struct {
	MaxVolume     int `yaml:"max_volume"`
	DumpMaxVolume int `yaml:"dump_max_volume"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		TickRateHz:      20,
		Spawn:           [3]int{0, 64, 0},
		Regions: RegionTuning{
			CaptureLimit:     [3]int{64, 256, 64},
			LoadPolicy:       "any",
			TokenLength:      4,
			TokenMaxAttempts: 64,
		},
		History: HistoryTuning{
			Limit:           64,
			IncludeEntities: true,
		},
		Edits: EditTuning{
			MaxVolume:     1 << 21,
			DumpMaxVolume: 1 << 15,
		},
	}
}

// Load reads path over Defaults. Keys missing from the file keep their default.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.Normalize()
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t *Tuning) Normalize() {
	if t == nil {
		return
	}
	t.Regions.LoadPolicy = strings.ToLower(strings.TrimSpace(t.Regions.LoadPolicy))
	if t.Regions.LoadPolicy == "" {
		t.Regions.LoadPolicy = "any"
	}
	if t.Edits.DumpMaxVolume <= 0 {
		t.Edits.DumpMaxVolume = Defaults().Edits.DumpMaxVolume
	}
}

func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 {
		return fmt.Errorf("tick_rate_hz must be > 0")
	}
	for i, v := range t.Regions.CaptureLimit {
		if v <= 0 {
			return fmt.Errorf("regions.capture_limit[%d] must be > 0", i)
		}
	}
	switch t.Regions.LoadPolicy {
	case "any", "all":
	default:
		return fmt.Errorf("regions.load_policy must be any|all, got %q", t.Regions.LoadPolicy)
	}
	if t.Regions.TokenLength <= 0 {
		return fmt.Errorf("regions.token_length must be > 0")
	}
	if t.Regions.TokenMaxAttempts <= 0 {
		return fmt.Errorf("regions.token_max_attempts must be > 0")
	}
	if t.History.Limit <= 0 {
		return fmt.Errorf("history.limit must be > 0")
	}
	if t.Edits.MaxVolume <= 0 {
		return fmt.Errorf("edits.max_volume must be > 0")
	}
	return nil
}
