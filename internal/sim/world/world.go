package world

import (
	"fmt"
	"io"
	"log"
	"sort"
	"sync"
	"sync/atomic"

	"voxeledit.ai/internal/protocol"
	"voxeledit.ai/internal/sim/catalogs"
	"voxeledit.ai/internal/sim/multiworld"
	"voxeledit.ai/internal/sim/world/feature/editcmd"
	"voxeledit.ai/internal/sim/world/feature/regions"
	"voxeledit.ai/internal/sim/world/feature/structures"
	"voxeledit.ai/internal/sim/world/kernel/model"
	"voxeledit.ai/internal/sim/world/logic/ids"
	"voxeledit.ai/internal/sim/world/terrain/store"
)

// World is a single-threaded authoritative editor server.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg      WorldConfig
	catalogs *catalogs.Catalogs
	log      *log.Logger

	tick atomic.Uint64

	dims     map[model.RegionHandle]*store.ChunkStore
	manifest []protocol.DimensionRef

	prim   *structures.Memory
	tokens *ids.Allocator
	snaps  *regions.Store
	env    editcmd.Env

	sessions map[string]*session
	owners   map[model.Owner]*session

	inbox      chan CommandEnvelope
	join       chan JoinRequest
	leave      chan string
	stateReq   chan stateReq
	historyReq chan historyReq
	stop       chan struct{}
	done       chan struct{}
	doneOnce   sync.Once

	nextSessionNum atomic.Uint64

	// Optional loggers (may be nil). Implemented in internal/persistence/*.
	tickLogger  TickLogger
	auditLogger AuditLogger

	metrics atomic.Value // WorldMetrics
}

// session is one connected builder.
type session struct {
	ID         string
	Name       string
	Out        chan []byte
	Builder    *editcmd.Builder
	JoinedTick uint64
	Commands   int
}

func New(cfg WorldConfig, cats *catalogs.Catalogs, logger *log.Logger) (*World, error) {
	if cats == nil {
		return nil, fmt.Errorf("world: nil catalogs")
	}
	cfg.applyDefaults()
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	mw := multiworld.Config{DefaultDimension: cfg.DefaultDimension, Dimensions: cfg.Dimensions}
	mw.Normalize()
	if err := mw.Validate(); err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	cfg.DefaultDimension = mw.DefaultDimension
	cfg.Dimensions = mw.Dimensions

	w := &World{
		cfg:        cfg,
		catalogs:   cats,
		log:        logger,
		dims:       map[model.RegionHandle]*store.ChunkStore{},
		manifest:   mw.Manifest(),
		sessions:   map[string]*session{},
		owners:     map[model.Owner]*session{},
		inbox:      make(chan CommandEnvelope, 1024),
		join:       make(chan JoinRequest, 64),
		leave:      make(chan string, 64),
		stateReq:   make(chan stateReq, 16),
		historyReq: make(chan historyReq, 16),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, d := range mw.Dimensions {
		w.dims[model.RegionHandle(d.ID)] = store.NewChunkStore(w.worldGen(d))
	}
	spawnDim := w.dims[model.RegionHandle(cfg.DefaultDimension)]
	if !spawnDim.InBounds(cfg.Spawn.X, cfg.Spawn.Y, cfg.Spawn.Z) {
		return nil, fmt.Errorf("world: spawn %s outside dimension %s", cfg.Spawn, cfg.DefaultDimension)
	}

	w.prim = structures.NewMemory(w, cfg.CaptureLimit)
	w.tokens = ids.NewAllocator(ids.WithLength(cfg.TokenLength), ids.WithMaxAttempts(cfg.TokenMaxAttempts))
	w.snaps = regions.NewStore(w.prim, w.tokens, w, regions.Options{
		Limit:  cfg.CaptureLimit,
		Policy: cfg.LoadPolicy,
		Logger: logger,
	})
	w.env = editcmd.Env{
		Dims:      w,
		Snapshots: w.snaps,
		Palette:   cats.Blocks,
		Limits: editcmd.Limits{
			MaxVolume:       cfg.MaxVolume,
			DumpMaxVolume:   cfg.DumpMaxVolume,
			IncludeEntities: cfg.IncludeEntities,
		},
	}
	w.metrics.Store(WorldMetrics{})
	return w, nil
}

func (w *World) worldGen(d multiworld.DimensionSpec) store.WorldGen {
	b := w.catalogs.Blocks
	return store.WorldGen{
		Seed:         w.cfg.Seed + d.SeedOffset,
		MinY:         d.MinY,
		MaxY:         d.MaxY,
		BoundaryR:    d.BoundaryR,
		SurfaceY:     d.SurfaceY,
		SurfaceAmp:   d.SurfaceAmp,
		SurfaceCell:  d.SurfaceCell,
		CoalPermille: d.CoalPermille,
		IronPermille: d.IronPermille,
		Air:          b.MustID(catalogs.Air),
		Bedrock:      b.MustID(catalogs.Bedrock),
		Stone:        b.MustID(catalogs.Stone),
		Dirt:         b.MustID(catalogs.Dirt),
		Grass:        b.MustID(catalogs.Grass),
		CoalOre:      b.MustID(catalogs.CoalOre),
		IronOre:      b.MustID(catalogs.IronOre),
	}
}

func (w *World) SetTickLogger(l TickLogger)   { w.tickLogger = l }
func (w *World) SetAuditLogger(l AuditLogger) { w.auditLogger = l }

func (w *World) Inbox() chan<- CommandEnvelope { return w.inbox }
func (w *World) Join() chan<- JoinRequest      { return w.join }
func (w *World) Leave() chan<- string          { return w.leave }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) TickRateHz() int {
	if w == nil {
		return 0
	}
	return w.cfg.TickRateHz
}

// Snapshots exposes the region store. Only the world loop goroutine (or a stopped
// world, as in tests) may use it.
func (w *World) Snapshots() *regions.Store { return w.snaps }

func (w *World) sortedSessionIDs() []string {
	out := make([]string, 0, len(w.sessions))
	for id := range w.sessions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (w *World) sortedDimensions() []model.RegionHandle {
	out := make([]model.RegionHandle, 0, len(w.dims))
	for h := range w.dims {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
