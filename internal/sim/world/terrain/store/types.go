package store

import (
	"crypto/sha256"
	"encoding/binary"

	"voxeledit.ai/internal/sim/world/kernel/model"
)

// ChunkSize is the edge length of a storage chunk (cubic).
const ChunkSize = 16

type ChunkKey struct {
	CX int
	CY int
	CZ int
}

type Chunk struct {
	CX, CY, CZ int
	Blocks     []uint16 // len = ChunkSize^3, x fastest, then z, then y

	dirty bool
	hash  [32]byte
}

func (c *Chunk) index(x, y, z int) int {
	return x + z*ChunkSize + y*ChunkSize*ChunkSize
}

func (c *Chunk) Get(x, y, z int) uint16 {
	return c.Blocks[c.index(x, y, z)]
}

func (c *Chunk) Set(x, y, z int, b uint16) bool {
	i := c.index(x, y, z)
	if c.Blocks[i] == b {
		return false
	}
	c.Blocks[i] = b
	c.dirty = true
	return true
}

func (c *Chunk) Digest() [32]byte {
	if c.dirty || c.hash == ([32]byte{}) {
		h := sha256.New()
		var tmp [2]byte
		for _, v := range c.Blocks {
			binary.LittleEndian.PutUint16(tmp[:], v)
			h.Write(tmp[:])
		}
		copy(c.hash[:], h.Sum(nil))
		c.dirty = false
	}
	return c.hash
}

type WorldGen struct {
	Seed      int64
	MinY      int
	MaxY      int
	BoundaryR int // blocks, 0 = unbounded

	SurfaceY     int
	SurfaceAmp   int
	SurfaceCell  int
	CoalPermille int
	IronPermille int

	Air     uint16
	Bedrock uint16
	Stone   uint16
	Dirt    uint16
	Grass   uint16
	CoalOre uint16
	IronOre uint16
}

// ChunkStore holds the voxels and entities of one dimension.
type ChunkStore struct {
	Gen      WorldGen
	Chunks   map[ChunkKey]*Chunk
	Entities map[string]*model.Entity
}

func NewChunkStore(gen WorldGen) *ChunkStore {
	return &ChunkStore{
		Gen:      gen,
		Chunks:   map[ChunkKey]*Chunk{},
		Entities: map[string]*model.Entity{},
	}
}
