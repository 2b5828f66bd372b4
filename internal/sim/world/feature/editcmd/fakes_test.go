package editcmd

import (
	"errors"
	"strings"

	"voxeledit.ai/internal/sim/world/feature/history"
	"voxeledit.ai/internal/sim/world/feature/regions"
	"voxeledit.ai/internal/sim/world/feature/structures"
	"voxeledit.ai/internal/sim/world/kernel/model"
	"voxeledit.ai/internal/sim/world/logic/ids"
	"voxeledit.ai/internal/sim/world/terrain/store"
)

const (
	blkAir   uint16 = 0
	blkStone uint16 = 2
	blkGlass uint16 = 7
)

type fakePalette map[string]uint16

func (p fakePalette) BlockID(name string) (uint16, bool) {
	id, ok := p[strings.ToUpper(name)]
	return id, ok
}

func (p fakePalette) BlockName(id uint16) string {
	for name, v := range p {
		if v == id {
			return name
		}
	}
	return "#?"
}

type dimMap map[model.RegionHandle]*store.ChunkStore

func (d dimMap) Dimension(h model.RegionHandle) (*store.ChunkStore, bool) {
	s, ok := d[h]
	return s, ok
}

// builderResolver places the owner wherever the builder currently stands.
type builderResolver struct{ b **Builder }

func (r builderResolver) CurrentRegion(model.Owner) model.RegionHandle { return (*r.b).Dimension }
func (r builderResolver) BlockPosition(model.Owner) model.Vec3i        { return (*r.b).Pos }

var errClipboard = errors.New("clipboard refused")

// refusingClipboard fails every clipboard save and passes everything else through.
type refusingClipboard struct{ Snapshots }

func (r refusingClipboard) Save(name string, start, end model.Vec3i, owner model.Owner, includeEntities bool) error {
	if name == ClipboardName {
		return errClipboard
	}
	return r.Snapshots.Save(name, start, end, owner, includeEntities)
}

type fixture struct {
	env   *Env
	b     *Builder
	dims  dimMap
	snaps *regions.Store
}

func gen(minY, maxY int) store.WorldGen {
	return store.WorldGen{
		Seed: 11, MinY: minY, MaxY: maxY, BoundaryR: 256,
		SurfaceY: 40, SurfaceAmp: 2, SurfaceCell: 16,
		Air: blkAir, Bedrock: 1, Stone: blkStone, Dirt: 3, Grass: 4, CoalOre: 5, IronOre: 6,
	}
}

// newFixture builds two dimensions behind a real snapshot store. A non-zero limit forces
// chunked captures.
func newFixture(limit model.Vec3i) *fixture {
	dims := dimMap{
		"OVERWORLD": store.NewChunkStore(gen(0, 127)),
		"FLAT":      store.NewChunkStore(gen(0, 63)),
	}
	f := &fixture{dims: dims}
	f.b = &Builder{Owner: "builder-1", Dimension: "OVERWORLD", Pos: model.V(0, 50, 0)}
	mem := structures.NewMemory(dims, structures.MaxSize)
	f.snaps = regions.NewStore(mem, ids.NewAllocator(), builderResolver{b: &f.b}, regions.Options{Limit: limit})
	f.b.History = history.New(f.b.Owner, f.snaps, history.Options{})
	f.env = &Env{
		Dims:      dims,
		Snapshots: f.snaps,
		Palette: fakePalette{
			"AIR": blkAir, "STONE": blkStone, "DIRT": 3, "GLASS": blkGlass,
		},
		Limits: Limits{MaxVolume: 4096, DumpMaxVolume: 512},
	}
	return f
}

func (f *fixture) run(line string) (Result, error) {
	return Execute(f.env, f.b, line)
}

func (f *fixture) block(p model.Vec3i) uint16 {
	return f.dims[f.b.Dimension].GetBlock(p.X, p.Y, p.Z)
}

// countBlock counts cells equal to blk in the inclusive box.
func (f *fixture) countBlock(lo, hi model.Vec3i, blk uint16) int {
	n := 0
	for _, id := range f.dims[f.b.Dimension].ReadRegion(lo, model.RegionSize(lo, hi)) {
		if id == blk {
			n++
		}
	}
	return n
}
