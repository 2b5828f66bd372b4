package history

import (
	"errors"

	"voxeledit.ai/internal/sim/world/feature/regions"
	"voxeledit.ai/internal/sim/world/feature/structures"
	"voxeledit.ai/internal/sim/world/kernel/model"
	"voxeledit.ai/internal/sim/world/logic/ids"
	"voxeledit.ai/internal/sim/world/terrain/store"
)

var errInjected = errors.New("injected failure")

type loadCall struct {
	name   string
	dim    model.RegionHandle
	anchor model.Vec3i
	mode   regions.LoadMode
}

// fakeSnapshots is a name-keyed Snapshots with failure switches. Saves land in dim.
type fakeSnapshots struct {
	dim     model.RegionHandle
	saved   map[string]model.Vec3i
	loads   []loadCall
	deletes []string

	failSave   bool
	failLoad   bool
	failDelete bool
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{dim: "overworld", saved: map[string]model.Vec3i{}}
}

func (f *fakeSnapshots) Save(name string, start, end model.Vec3i, owner model.Owner, includeEntities bool) error {
	if f.failSave {
		return errInjected
	}
	f.saved[name] = model.RegionMin(start, end)
	return nil
}

func (f *fakeSnapshots) Get(name string, owner model.Owner) (regions.Snapshot, bool) {
	at, ok := f.saved[name]
	if !ok {
		return regions.Snapshot{}, false
	}
	return regions.Snapshot{Name: name, Owner: owner, Dimension: f.dim, Position: at}, true
}

func (f *fakeSnapshots) LoadInto(name string, dim model.RegionHandle, anchor model.Vec3i, owner model.Owner, mode regions.LoadMode) error {
	f.loads = append(f.loads, loadCall{name: name, dim: dim, anchor: anchor, mode: mode})
	if f.failLoad {
		return errInjected
	}
	if _, ok := f.saved[name]; !ok {
		return regions.ErrNotFound
	}
	return nil
}

func (f *fakeSnapshots) Delete(name string, owner model.Owner) error {
	f.deletes = append(f.deletes, name)
	if f.failDelete {
		return errInjected
	}
	delete(f.saved, name)
	return nil
}

func (f *fakeSnapshots) Has(name string, owner model.Owner) bool {
	_, ok := f.saved[name]
	return ok
}

type singleDim struct {
	h model.RegionHandle
	s *store.ChunkStore
}

func (d singleDim) Dimension(h model.RegionHandle) (*store.ChunkStore, bool) {
	if h != d.h {
		return nil, false
	}
	return d.s, true
}

type fixedResolver struct{ dim model.RegionHandle }

func (r fixedResolver) CurrentRegion(model.Owner) model.RegionHandle { return r.dim }
func (r fixedResolver) BlockPosition(model.Owner) model.Vec3i        { return model.Vec3i{} }

// world is a real voxel store wired through the snapshot store.
type world struct {
	dim    *store.ChunkStore
	snaps  *regions.Store
	memory *structures.Memory
}

func newWorld() *world {
	dim := store.NewChunkStore(store.WorldGen{
		Seed: 7, MinY: 0, MaxY: 63,
		SurfaceY: 20, SurfaceAmp: 2, SurfaceCell: 16,
		Air: 0, Bedrock: 1, Stone: 2, Dirt: 3, Grass: 4, CoalOre: 5, IronOre: 6,
	})
	mem := structures.NewMemory(singleDim{h: "overworld", s: dim}, structures.MaxSize)
	return &world{
		dim:    dim,
		memory: mem,
		snaps:  regions.NewStore(mem, ids.NewAllocator(), fixedResolver{dim: "overworld"}, regions.Options{}),
	}
}
