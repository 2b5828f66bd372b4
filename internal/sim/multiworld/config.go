package multiworld

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"voxeledit.ai/internal/protocol"
)

// Config lists the dimensions one world hosts. Builders move between them with "dim".
type Config struct {
	DefaultDimension string          `yaml:"default_dimension"`
	Dimensions       []DimensionSpec `yaml:"dimensions"`
}

type DimensionSpec struct {
	ID         string `yaml:"id"`
	SeedOffset int64  `yaml:"seed_offset"`
	MinY       int    `yaml:"min_y"`
	MaxY       int    `yaml:"max_y"`
	BoundaryR  int    `yaml:"boundary_r"`

	SurfaceY     int `yaml:"surface_y"`
	SurfaceAmp   int `yaml:"surface_amp"`
	SurfaceCell  int `yaml:"surface_cell"`
	CoalPermille int `yaml:"coal_permille"`
	IronPermille int `yaml:"iron_permille"`
}

func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	cfg = Config{}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("worlds.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("worlds.yaml: %w", err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		DefaultDimension: "OVERWORLD",
		Dimensions: []DimensionSpec{
			{
				ID:           "OVERWORLD",
				MinY:         -64,
				MaxY:         319,
				BoundaryR:    4000,
				SurfaceY:     62,
				SurfaceAmp:   6,
				SurfaceCell:  32,
				CoalPermille: 12,
				IronPermille: 6,
			},
			{
				ID:          "FLAT",
				SeedOffset:  1,
				MinY:        0,
				MaxY:        255,
				BoundaryR:   1000,
				SurfaceY:    4,
				SurfaceCell: 16,
			},
		},
	}
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	for i := range c.Dimensions {
		d := &c.Dimensions[i]
		d.ID = strings.ToUpper(strings.TrimSpace(d.ID))
		if d.SurfaceCell <= 0 {
			d.SurfaceCell = 16
		}
		if d.SurfaceY < d.MinY {
			d.SurfaceY = d.MinY
		}
	}
	c.DefaultDimension = strings.ToUpper(strings.TrimSpace(c.DefaultDimension))
	if c.DefaultDimension == "" && len(c.Dimensions) > 0 {
		c.DefaultDimension = c.Dimensions[0].ID
	}
}

func (c Config) Validate() error {
	c.Normalize()
	if len(c.Dimensions) == 0 {
		return fmt.Errorf("dimensions must not be empty")
	}
	seen := map[string]bool{}
	for _, d := range c.Dimensions {
		if d.ID == "" {
			return fmt.Errorf("dimension id must not be empty")
		}
		if seen[d.ID] {
			return fmt.Errorf("duplicate dimension id: %s", d.ID)
		}
		seen[d.ID] = true
		if d.MaxY < d.MinY {
			return fmt.Errorf("dimension %s max_y must be >= min_y", d.ID)
		}
		if d.BoundaryR < 0 {
			return fmt.Errorf("dimension %s boundary_r must be >= 0", d.ID)
		}
		if d.SurfaceY > d.MaxY {
			return fmt.Errorf("dimension %s surface_y must be <= max_y", d.ID)
		}
		if d.CoalPermille < 0 || d.CoalPermille > 1000 || d.IronPermille < 0 || d.IronPermille > 1000 {
			return fmt.Errorf("dimension %s ore permille must be in [0, 1000]", d.ID)
		}
	}
	if !seen[c.DefaultDimension] {
		return fmt.Errorf("default_dimension %q not found in dimensions", c.DefaultDimension)
	}
	return nil
}

func (c Config) Manifest() []protocol.DimensionRef {
	out := make([]protocol.DimensionRef, 0, len(c.Dimensions))
	for _, d := range c.Dimensions {
		out = append(out, protocol.DimensionRef{
			ID:        d.ID,
			MinY:      d.MinY,
			MaxY:      d.MaxY,
			BoundaryR: d.BoundaryR,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c Config) DimensionByID(id string) (DimensionSpec, bool) {
	id = strings.ToUpper(strings.TrimSpace(id))
	for _, d := range c.Dimensions {
		if d.ID == id {
			return d, true
		}
	}
	return DimensionSpec{}, false
}
