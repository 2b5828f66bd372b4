package editcmd

import (
	"errors"
	"fmt"

	"voxeledit.ai/internal/sim/world/feature/history"
	"voxeledit.ai/internal/sim/world/feature/regions"
	"voxeledit.ai/internal/sim/world/kernel/model"
	"voxeledit.ai/internal/sim/world/terrain/store"
)

// ClipboardName is the snapshot copy, cut and paste share.
const ClipboardName = "clipboard"

// Snapshots is the part of the region store commands use.
type Snapshots interface {
	Save(name string, start, end model.Vec3i, owner model.Owner, includeEntities bool) error
	Load(name string, anchor model.Vec3i, owner model.Owner, mode regions.LoadMode) error
	Has(name string, owner model.Owner) bool
	Origin(name string, owner model.Owner) (model.Vec3i, error)
	Size(name string, owner model.Owner) (model.Vec3i, error)
}

type Dimensions interface {
	Dimension(h model.RegionHandle) (*store.ChunkStore, bool)
}

type Palette interface {
	BlockID(name string) (uint16, bool)
	BlockName(id uint16) string
}

type Limits struct {
	MaxVolume       int
	DumpMaxVolume   int
	IncludeEntities bool
}

// Env is what commands share across builders.
type Env struct {
	Dims      Dimensions
	Snapshots Snapshots
	Palette   Palette
	Limits    Limits
}

type Selection struct {
	Pos1, Pos2 model.Vec3i
	Has1, Has2 bool
}

func (s Selection) Complete() bool { return s.Has1 && s.Has2 }

func (s Selection) Bounds() (lo, hi model.Vec3i) {
	return model.RegionMin(s.Pos1, s.Pos2), model.RegionMax(s.Pos1, s.Pos2)
}

// Builder is one owner's editor state. The world loop owns it.
type Builder struct {
	Owner     model.Owner
	Dimension model.RegionHandle
	Pos       model.Vec3i
	Selection Selection
	History   *history.History
}

// Op describes what a command did to the world, for the audit trail.
type Op struct {
	Action    string
	Dimension model.RegionHandle
	Min, Max  model.Vec3i
	Block     string
	Changed   int
	Count     int
}

type Result struct {
	Lines []string
	Op    *Op
}

var ErrBadRequest = errors.New("bad request")

// RequestError is a malformed or impossible command.
type RequestError struct{ Msg string }

func (e *RequestError) Error() string { return e.Msg }

func (e *RequestError) Is(target error) bool { return target == ErrBadRequest }

func badRequest(format string, args ...any) error {
	return &RequestError{Msg: fmt.Sprintf(format, args...)}
}
