package regions

import (
	"fmt"
	"strings"

	"voxeledit.ai/internal/sim/world/kernel/model"
	"voxeledit.ai/internal/sim/world/logic/ids"
)

// ReservedPrefix marks snapshot names owned by the editor itself (history slots).
// Names typed by builders must not start with it.
const ReservedPrefix = "$"

// DefaultLimit is the per-axis capacity of one capture call.
var DefaultLimit = model.V(64, 256, 64)

// Primitive is the host's bounded structure storage.
type Primitive interface {
	Capture(dim model.RegionHandle, id string, min, max model.Vec3i, includeEntities bool) error
	Restore(dim model.RegionHandle, id string, at model.Vec3i) error
	Remove(id string) error
}

// Resolver locates an owner in the world.
type Resolver interface {
	CurrentRegion(owner model.Owner) model.RegionHandle
	BlockPosition(owner model.Owner) model.Vec3i
}

// Tokens is the owner namespace allocator.
type Tokens interface {
	TokenFor(owner model.Owner) (string, error)
	Lookup(owner model.Owner) (string, bool)
	Release(owner model.Owner)
}

type LoadMode int

const (
	// Absolute places the snapshot's minimum corner at the anchor.
	Absolute LoadMode = iota
	// Relative places it so the capturing position lands on the anchor.
	Relative
)

func (m LoadMode) String() string {
	if m == Relative {
		return "relative"
	}
	return "absolute"
}

// LoadPolicy decides when a chunked load counts as successful.
type LoadPolicy int

const (
	// AnyChunk succeeds when at least one sub-chunk restored.
	AnyChunk LoadPolicy = iota
	// AllChunks fails when any sub-chunk failed. Every chunk is still attempted.
	AllChunks
)

func (p LoadPolicy) String() string {
	if p == AllChunks {
		return "all"
	}
	return "any"
}

func ParseLoadPolicy(s string) (LoadPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return AnyChunk, nil
	case "all":
		return AllChunks, nil
	default:
		return AnyChunk, fmt.Errorf("unknown load policy %q (want any|all)", s)
	}
}

// Snapshot is the metadata needed to reassemble a captured region.
type Snapshot struct {
	Name        string             `json:"name"`
	Owner       model.Owner        `json:"owner"`
	QualifiedID string             `json:"qualified_id"`
	Dimension   model.RegionHandle `json:"dimension"`

	Position model.Vec3i `json:"position"`
	Size     model.Vec3i `json:"size"`
	Origin   model.Vec3i `json:"origin"`

	// ChunkOffsets is empty when the region fit in one capture.
	ChunkOffsets []model.Vec3i `json:"chunk_offsets,omitempty"`
	BlockCount   int           `json:"block_count"`
}

func (s Snapshot) Chunked() bool { return len(s.ChunkOffsets) > 0 }

// StoredIDs lists the primitive ids backing the snapshot.
func (s Snapshot) StoredIDs() []string {
	if !s.Chunked() {
		return []string{s.QualifiedID}
	}
	out := make([]string, 0, len(s.ChunkOffsets))
	for _, off := range s.ChunkOffsets {
		out = append(out, ids.ChunkID(s.QualifiedID, off))
	}
	return out
}

func (s Snapshot) clone() Snapshot {
	cp := s
	if s.ChunkOffsets != nil {
		cp.ChunkOffsets = append([]model.Vec3i(nil), s.ChunkOffsets...)
	}
	return cp
}

type Stats struct {
	Snapshots int `json:"snapshots"`
	Chunks    int `json:"chunks"`
}
