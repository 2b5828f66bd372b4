package store

import (
	"fmt"

	"voxeledit.ai/internal/sim/world/kernel/model"
)

// ReadRegion copies the blocks of the box starting at lo with extent size.
// Order is x fastest, then z, then y.
func (s *ChunkStore) ReadRegion(lo, size model.Vec3i) []uint16 {
	out := make([]uint16, 0, size.Volume())
	for y := 0; y < size.Y; y++ {
		for z := 0; z < size.Z; z++ {
			for x := 0; x < size.X; x++ {
				out = append(out, s.GetBlock(lo.X+x, lo.Y+y, lo.Z+z))
			}
		}
	}
	return out
}

// WriteRegion is the inverse of ReadRegion. It returns the number of cells that changed.
func (s *ChunkStore) WriteRegion(lo, size model.Vec3i, blocks []uint16) (int, error) {
	if len(blocks) != size.Volume() {
		return 0, fmt.Errorf("region blocks length mismatch: got %d want %d", len(blocks), size.Volume())
	}
	changed := 0
	i := 0
	for y := 0; y < size.Y; y++ {
		for z := 0; z < size.Z; z++ {
			for x := 0; x < size.X; x++ {
				if s.SetBlock(lo.X+x, lo.Y+y, lo.Z+z, blocks[i]) {
					changed++
				}
				i++
			}
		}
	}
	return changed, nil
}

// Fill sets every cell of the inclusive box spanned by a and b to blk.
func (s *ChunkStore) Fill(a, b model.Vec3i, blk uint16) int {
	lo, hi := model.RegionMin(a, b), model.RegionMax(a, b)
	changed := 0
	for y := lo.Y; y <= hi.Y; y++ {
		for z := lo.Z; z <= hi.Z; z++ {
			for x := lo.X; x <= hi.X; x++ {
				if s.SetBlock(x, y, z, blk) {
					changed++
				}
			}
		}
	}
	return changed
}
