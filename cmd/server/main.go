package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	persistlog "voxeledit.ai/internal/persistence/log"
	"voxeledit.ai/internal/sim/catalogs"
	"voxeledit.ai/internal/sim/multiworld"
	"voxeledit.ai/internal/sim/tuning"
	"voxeledit.ai/internal/sim/world"
	"voxeledit.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "world_1", "world id")
		seed       = flag.Int64("seed", 1337, "terrain seed")
		configDir  = flag.String("configs", "./configs", "config directory")
		worldsPath = flag.String("worlds", "", "dimension config path (default: <configs>/worlds.yaml)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite index (tick/audit + catalogs)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}
	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	wp := strings.TrimSpace(*worldsPath)
	if wp == "" {
		wp = filepath.Join(*configDir, "worlds.yaml")
		if _, err := os.Stat(wp); err != nil {
			wp = ""
		}
	}
	dims, err := multiworld.Load(wp)
	if err != nil {
		logger.Fatalf("load worlds config: %v", err)
	}

	cfg, err := world.ConfigFrom(*worldID, *seed, tune, dims)
	if err != nil {
		logger.Fatalf("world config: %v", err)
	}
	w, err := world.New(cfg, cats, log.New(os.Stdout, "[world] ", log.LstdFlags|log.Lmicroseconds))
	if err != nil {
		logger.Fatalf("world: %v", err)
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	if err := os.MkdirAll(worldDir, 0o755); err != nil {
		logger.Fatalf("data dir: %v", err)
	}

	// The index is a read model; it never feeds back into the world.
	idx, err := openRuntimeIndex(worldDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.UpsertCatalogs(*configDir, cats, tune); err != nil {
			logger.Printf("index backend: upsert catalogs: %v", err)
		}
	}

	tickLog := persistlog.NewTickLogger(worldDir)
	defer tickLog.Close()
	auditLog := persistlog.NewAuditLogger(worldDir)
	defer auditLog.Close()
	sinks := persistlog.Fanout{
		Ticks:  []world.TickLogger{tickLog},
		Audits: []world.AuditLogger{auditLog},
	}
	if idx != nil {
		sinks.Ticks = append(sinks.Ticks, idx)
		sinks.Audits = append(sinks.Audits, idx)
	}
	w.SetTickLogger(sinks)
	w.SetAuditLogger(sinks)

	ctx, cancel := signalContext()
	defer cancel()

	worldDone := make(chan struct{})
	go func() {
		defer close(worldDone)
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	enableAdmin := envBool("VC_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP())
	enablePprof := envBool("VC_ENABLE_PPROF_HTTP", false)
	if !enableAdmin {
		logger.Printf("admin endpoints disabled (VC_ENABLE_ADMIN_HTTP=false)")
	}
	mux := newMux(w, ws.NewServer(w, logger).Handler(), muxOptions{
		Admin: enableAdmin,
		Pprof: enablePprof,
		Index: idx,
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("world=%s dimensions=%d capture_limit=%v load_policy=%s listening on %s",
		*worldID, len(cfg.Dimensions), cfg.CaptureLimit, cfg.LoadPolicy, *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
	// Let the world tear sessions down before the logs close.
	<-worldDone
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
