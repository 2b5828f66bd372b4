package store

import (
	"sort"

	"voxeledit.ai/internal/sim/world/kernel/model"
	genpkg "voxeledit.ai/internal/sim/world/terrain/gen"
)

func (s *ChunkStore) InBounds(x, y, z int) bool {
	if y < s.Gen.MinY || y > s.Gen.MaxY {
		return false
	}
	if s.Gen.BoundaryR > 0 {
		if x < -s.Gen.BoundaryR || x > s.Gen.BoundaryR || z < -s.Gen.BoundaryR || z > s.Gen.BoundaryR {
			return false
		}
	}
	return true
}

// BoxInBounds reports whether every cell of the inclusive box [lo, hi] is inside the dimension.
func (s *ChunkStore) BoxInBounds(lo, hi model.Vec3i) bool {
	return s.InBounds(lo.X, lo.Y, lo.Z) && s.InBounds(hi.X, hi.Y, hi.Z)
}

func (s *ChunkStore) LoadedChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(s.Chunks))
	for k := range s.Chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CY != keys[j].CY {
			return keys[i].CY < keys[j].CY
		}
		if keys[i].CZ != keys[j].CZ {
			return keys[i].CZ < keys[j].CZ
		}
		return keys[i].CX < keys[j].CX
	})
	return keys
}

func (s *ChunkStore) GetBlock(x, y, z int) uint16 {
	if !s.InBounds(x, y, z) {
		return s.Gen.Air
	}
	ch := s.GetOrGenChunk(genpkg.FloorDiv(x, ChunkSize), genpkg.FloorDiv(y, ChunkSize), genpkg.FloorDiv(z, ChunkSize))
	return ch.Get(genpkg.Mod(x, ChunkSize), genpkg.Mod(y, ChunkSize), genpkg.Mod(z, ChunkSize))
}

// SetBlock writes b and reports whether the cell changed.
func (s *ChunkStore) SetBlock(x, y, z int, b uint16) bool {
	if !s.InBounds(x, y, z) {
		return false
	}
	ch := s.GetOrGenChunk(genpkg.FloorDiv(x, ChunkSize), genpkg.FloorDiv(y, ChunkSize), genpkg.FloorDiv(z, ChunkSize))
	return ch.Set(genpkg.Mod(x, ChunkSize), genpkg.Mod(y, ChunkSize), genpkg.Mod(z, ChunkSize), b)
}

func (s *ChunkStore) GetOrGenChunk(cx, cy, cz int) *Chunk {
	k := ChunkKey{CX: cx, CY: cy, CZ: cz}
	if ch, ok := s.Chunks[k]; ok {
		return ch
	}
	ch := &Chunk{
		CX:     cx,
		CY:     cy,
		CZ:     cz,
		Blocks: make([]uint16, ChunkSize*ChunkSize*ChunkSize),
	}
	s.GenerateChunk(ch)
	ch.dirty = true
	_ = ch.Digest()
	s.Chunks[k] = ch
	return ch
}

// EntitiesIn returns copies of the entities inside the inclusive box, ordered by id.
func (s *ChunkStore) EntitiesIn(lo, hi model.Vec3i) []model.Entity {
	var out []model.Entity
	for _, e := range s.Entities {
		if model.Contains(lo, hi, e.Pos) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}

func (s *ChunkStore) SpawnEntity(e model.Entity) {
	cp := e
	s.Entities[e.EntityID] = &cp
}

func (s *ChunkStore) RemoveEntity(id string) bool {
	if _, ok := s.Entities[id]; !ok {
		return false
	}
	delete(s.Entities, id)
	return true
}
