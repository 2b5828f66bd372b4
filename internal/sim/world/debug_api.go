package world

import (
	"fmt"

	"voxeledit.ai/internal/sim/world/kernel/model"
)

// Debug helpers for tests and tools. They touch world state directly, so call them only
// while Run is not executing (e.g. between StepOnce calls).

func (w *World) DebugBlock(dim string, pos Vec3i) (string, bool) {
	cs, ok := w.dims[model.RegionHandle(dim)]
	if !ok || !cs.InBounds(pos.X, pos.Y, pos.Z) {
		return "", false
	}
	return w.catalogs.Blocks.BlockName(cs.GetBlock(pos.X, pos.Y, pos.Z)), true
}

func (w *World) DebugSetBlock(dim string, pos Vec3i, blockName string) error {
	cs, ok := w.dims[model.RegionHandle(dim)]
	if !ok {
		return fmt.Errorf("unknown dimension %s", dim)
	}
	id, ok := w.catalogs.Blocks.BlockID(blockName)
	if !ok {
		return fmt.Errorf("unknown block %q", blockName)
	}
	if !cs.InBounds(pos.X, pos.Y, pos.Z) {
		return fmt.Errorf("position %s out of bounds", pos)
	}
	cs.SetBlock(pos.X, pos.Y, pos.Z, id)
	return nil
}

// DebugSpawnEntity places an entity so captures that include entities have something to copy.
func (w *World) DebugSpawnEntity(dim string, e model.Entity) error {
	cs, ok := w.dims[model.RegionHandle(dim)]
	if !ok {
		return fmt.Errorf("unknown dimension %s", dim)
	}
	cs.SpawnEntity(e)
	return nil
}

// DebugEntities counts entities of typ in the inclusive box.
func (w *World) DebugEntities(dim string, lo, hi Vec3i, typ string) int {
	cs, ok := w.dims[model.RegionHandle(dim)]
	if !ok {
		return 0
	}
	n := 0
	for _, e := range cs.EntitiesIn(lo, hi) {
		if e.Type == typ {
			n++
		}
	}
	return n
}
