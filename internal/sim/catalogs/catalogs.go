package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Block ids the terrain generator needs from the palette.
const (
	Air     = "AIR"
	Bedrock = "BEDROCK"
	Stone   = "STONE"
	Dirt    = "DIRT"
	Grass   = "GRASS"
	CoalOre = "COAL_ORE"
	IronOre = "IRON_ORE"
)

var required = []string{Air, Bedrock, Stone, Dirt, Grass, CoalOre, IronOre}

type Catalogs struct {
	Blocks BlockCatalog
}

type BlockCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]BlockDef
	PaletteDigest string
	DefsDigest    string
}

type BlockDef struct {
	ID    string `json:"id"`
	Solid bool   `json:"solid"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadBlocks(filepath.Join(configDir, "blocks.json"), &c.Blocks); err != nil {
		return nil, err
	}
	return &c, nil
}

// BlockID resolves a block name, case-insensitively.
func (b BlockCatalog) BlockID(name string) (uint16, bool) {
	id, ok := b.Index[strings.ToUpper(strings.TrimSpace(name))]
	return id, ok
}

func (b BlockCatalog) BlockName(id uint16) string {
	if int(id) < len(b.Palette) {
		return b.Palette[id]
	}
	return fmt.Sprintf("#%d", id)
}

// MustID is for ids Load already checked.
func (b BlockCatalog) MustID(name string) uint16 {
	id, ok := b.Index[name]
	if !ok {
		panic("catalogs: missing block " + name)
	}
	return id
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadBlocks(path string, out *BlockCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return parseBlocks(raw, out)
}

func parseBlocks(raw []byte, out *BlockCatalog) error {
	out.DefsDigest = sha256Hex(raw)

	var defs []BlockDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}
	out.Defs = map[string]BlockDef{}
	for _, d := range defs {
		d.ID = strings.ToUpper(strings.TrimSpace(d.ID))
		if d.ID == "" {
			return fmt.Errorf("blocks.json: empty id")
		}
		if _, dup := out.Defs[d.ID]; dup {
			return fmt.Errorf("blocks.json: duplicate id %s", d.ID)
		}
		out.Defs[d.ID] = d
	}
	for _, id := range required {
		if _, ok := out.Defs[id]; !ok {
			return fmt.Errorf("blocks.json: missing %s", id)
		}
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// AIR is always palette id 0.
	ids = append([]string{Air}, filterOut(ids, Air)...)

	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func filterOut(in []string, remove string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == remove {
			continue
		}
		out = append(out, s)
	}
	return out
}
