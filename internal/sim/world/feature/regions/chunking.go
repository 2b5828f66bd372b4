package regions

import "voxeledit.ai/internal/sim/world/kernel/model"

// ExceedsLimit reports whether size needs more than one capture call.
func ExceedsLimit(size, limit model.Vec3i) bool {
	return size.X > limit.X || size.Y > limit.Y || size.Z > limit.Z
}

// Partition returns the sub-chunk offsets of a region of the given size, relative to its
// minimum corner: z outermost, x innermost, every offset a multiple of limit.
func Partition(size, limit model.Vec3i) []model.Vec3i {
	var out []model.Vec3i
	for z := 0; z < size.Z; z += limit.Z {
		for y := 0; y < size.Y; y += limit.Y {
			for x := 0; x < size.X; x += limit.X {
				out = append(out, model.V(x, y, z))
			}
		}
	}
	return out
}

// ChunkExtent is the size of the sub-chunk at off; boundary chunks are clipped to the region.
func ChunkExtent(size, limit, off model.Vec3i) model.Vec3i {
	return model.V(
		min(limit.X, size.X-off.X),
		min(limit.Y, size.Y-off.Y),
		min(limit.Z, size.Z-off.Z),
	)
}
