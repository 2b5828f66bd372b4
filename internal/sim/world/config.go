package world

import (
	"voxeledit.ai/internal/sim/multiworld"
	"voxeledit.ai/internal/sim/tuning"
	"voxeledit.ai/internal/sim/world/feature/regions"
	"voxeledit.ai/internal/sim/world/kernel/model"
)

type WorldConfig struct {
	ID         string
	TickRateHz int
	Seed       int64

	// Dimensions this world hosts. Builders join DefaultDimension at Spawn.
	DefaultDimension string
	Dimensions       []multiworld.DimensionSpec
	Spawn            model.Vec3i

	// Snapshot store.
	CaptureLimit     model.Vec3i
	LoadPolicy       regions.LoadPolicy
	TokenLength      int
	TokenMaxAttempts int

	// History.
	HistoryLimit    int
	IncludeEntities bool

	// Edit commands.
	MaxVolume     int
	DumpMaxVolume int
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 20
	}
	if len(c.Dimensions) == 0 {
		mw, _ := multiworld.Load("")
		c.Dimensions = mw.Dimensions
		if c.DefaultDimension == "" {
			c.DefaultDimension = mw.DefaultDimension
		}
	}
	if c.DefaultDimension == "" {
		c.DefaultDimension = c.Dimensions[0].ID
	}
	if c.CaptureLimit.X <= 0 || c.CaptureLimit.Y <= 0 || c.CaptureLimit.Z <= 0 {
		c.CaptureLimit = regions.DefaultLimit
	}
	if c.TokenLength <= 0 {
		c.TokenLength = 4
	}
	if c.TokenMaxAttempts <= 0 {
		c.TokenMaxAttempts = 64
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 64
	}
	if c.MaxVolume <= 0 {
		c.MaxVolume = 1 << 21
	}
	if c.DumpMaxVolume <= 0 {
		c.DumpMaxVolume = 1 << 15
	}
}

// ConfigFrom assembles a world config from the loaded tuning and dimension files.
// Replays build the same config from the same files, so both must stay in sync with the server.
func ConfigFrom(id string, seed int64, t tuning.Tuning, mw multiworld.Config) (WorldConfig, error) {
	policy, err := regions.ParseLoadPolicy(t.Regions.LoadPolicy)
	if err != nil {
		return WorldConfig{}, err
	}
	return WorldConfig{
		ID:               id,
		TickRateHz:       t.TickRateHz,
		Seed:             seed,
		DefaultDimension: mw.DefaultDimension,
		Dimensions:       mw.Dimensions,
		Spawn:            model.FromArray(t.Spawn),
		CaptureLimit:     model.FromArray(t.Regions.CaptureLimit),
		LoadPolicy:       policy,
		TokenLength:      t.Regions.TokenLength,
		TokenMaxAttempts: t.Regions.TokenMaxAttempts,
		HistoryLimit:     t.History.Limit,
		IncludeEntities:  t.History.IncludeEntities,
		MaxVolume:        t.Edits.MaxVolume,
		DumpMaxVolume:    t.Edits.DumpMaxVolume,
	}, nil
}
