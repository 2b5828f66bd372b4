package world

import (
	"voxeledit.ai/internal/sim/world/kernel/model"
	"voxeledit.ai/internal/sim/world/terrain/store"
)

// Dimension resolves a region handle for the structure primitive and edit commands.
func (w *World) Dimension(h model.RegionHandle) (*store.ChunkStore, bool) {
	cs, ok := w.dims[h]
	return cs, ok
}

// CurrentRegion is the dimension owner's builder is in. Owners without a session
// resolve to the default dimension.
func (w *World) CurrentRegion(owner model.Owner) model.RegionHandle {
	if s := w.owners[owner]; s != nil {
		return s.Builder.Dimension
	}
	return model.RegionHandle(w.cfg.DefaultDimension)
}

func (w *World) BlockPosition(owner model.Owner) model.Vec3i {
	if s := w.owners[owner]; s != nil {
		return s.Builder.Pos
	}
	return w.cfg.Spawn
}
