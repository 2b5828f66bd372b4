package store

import genpkg "voxeledit.ai/internal/sim/world/terrain/gen"

// GenerateChunk fills a fresh chunk with layered terrain: bedrock floor, stone with ore
// sprinkles, three layers of dirt and a grass surface.
func (s *ChunkStore) GenerateChunk(ch *Chunk) {
	g := s.Gen
	for ly := 0; ly < ChunkSize; ly++ {
		wy := ch.CY*ChunkSize + ly
		for lz := 0; lz < ChunkSize; lz++ {
			wz := ch.CZ*ChunkSize + lz
			for lx := 0; lx < ChunkSize; lx++ {
				wx := ch.CX*ChunkSize + lx

				b := g.Air
				if s.InBounds(wx, wy, wz) {
					surface := genpkg.SurfaceHeight(g.Seed, wx, wz, g.SurfaceY, g.SurfaceAmp, g.SurfaceCell)
					switch {
					case wy == g.MinY:
						b = g.Bedrock
					case wy > surface:
						b = g.Air
					case wy == surface:
						b = g.Grass
					case wy >= surface-3:
						b = g.Dirt
					case genpkg.OreAt(g.Seed+101, wx, wy, wz, g.IronPermille):
						b = g.IronOre
					case genpkg.OreAt(g.Seed+102, wx, wy, wz, g.CoalPermille):
						b = g.CoalOre
					default:
						b = g.Stone
					}
				}
				ch.Blocks[ch.index(lx, ly, lz)] = b
			}
		}
	}
}
