package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"strconv"
	"strings"
	"time"

	"voxeledit.ai/internal/persistence/indexdb"
	"voxeledit.ai/internal/sim/world"
)

type muxOptions struct {
	Admin bool
	Pprof bool
	// Index is optional; /admin/v1/ops answers 503 without it.
	Index *indexdb.SQLiteIndex
}

func newMux(w *world.World, wsHandler http.Handler, opts muxOptions) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		writeMetrics(rw, w, opts.Index)
	})
	if opts.Admin {
		mux.HandleFunc("/admin/v1/state", loopbackOnly(func(rw http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()
			st, err := w.RequestState(ctx)
			if err != nil {
				writeJSONError(rw, http.StatusServiceUnavailable, err)
				return
			}
			writeJSON(rw, http.StatusOK, st)
		}))
		mux.HandleFunc("/admin/v1/history", loopbackOnly(func(rw http.ResponseWriter, r *http.Request) {
			who := strings.TrimSpace(r.URL.Query().Get("who"))
			if who == "" {
				writeJSONError(rw, http.StatusBadRequest, errors.New("missing who (session id or owner)"))
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()
			rep, err := w.RequestHistory(ctx, who)
			switch {
			case errors.Is(err, world.ErrUnknownSession):
				writeJSONError(rw, http.StatusNotFound, err)
			case err != nil:
				writeJSONError(rw, http.StatusServiceUnavailable, err)
			default:
				writeJSON(rw, http.StatusOK, rep)
			}
		}))
		mux.HandleFunc("/admin/v1/ops", loopbackOnly(func(rw http.ResponseWriter, r *http.Request) {
			if opts.Index == nil {
				writeJSONError(rw, http.StatusServiceUnavailable, errors.New("index disabled"))
				return
			}
			f, err := opsFilterFromQuery(r)
			if err != nil {
				writeJSONError(rw, http.StatusBadRequest, err)
				return
			}
			ops, err := indexdb.Ops(r.Context(), opts.Index.DB(), f)
			if err != nil {
				writeJSONError(rw, http.StatusInternalServerError, err)
				return
			}
			writeJSON(rw, http.StatusOK, map[string]any{"ops": ops})
		}))
	}
	if opts.Pprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	if wsHandler != nil {
		mux.Handle("/v1/ws", wsHandler)
	}
	return mux
}

func opsFilterFromQuery(r *http.Request) (indexdb.OpsFilter, error) {
	q := r.URL.Query()
	f := indexdb.OpsFilter{
		Owner:      q.Get("owner"),
		SessionID:  q.Get("session"),
		Dimension:  q.Get("dim"),
		FailedOnly: q.Get("failed") == "1" || q.Get("failed") == "true",
		Limit:      100,
	}
	for key, dst := range map[string]*uint64{"since_tick": &f.SinceTick, "to_tick": &f.ToTick} {
		if v := q.Get(key); v != "" {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return f, fmt.Errorf("bad %s: %w", key, err)
			}
			*dst = n
		}
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return f, fmt.Errorf("bad limit %q", v)
		}
		f.Limit = n
	}
	if v := q.Get("aabb"); v != "" {
		lo, hi, err := parseAABB(v)
		if err != nil {
			return f, err
		}
		f.Box, f.Min, f.Max = true, lo, hi
	}
	return f, nil
}

// parseAABB reads "x1,y1,z1:x2,y2,z2" in either corner order.
func parseAABB(s string) (lo, hi [3]int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return lo, hi, fmt.Errorf("bad aabb %q (want x1,y1,z1:x2,y2,z2)", s)
	}
	a, err := parseVec(parts[0])
	if err != nil {
		return lo, hi, err
	}
	b, err := parseVec(parts[1])
	if err != nil {
		return lo, hi, err
	}
	for i := 0; i < 3; i++ {
		lo[i], hi[i] = min(a[i], b[i]), max(a[i], b[i])
	}
	return lo, hi, nil
}

func parseVec(s string) ([3]int, error) {
	var v [3]int
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("bad vec %q", s)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return v, fmt.Errorf("bad vec %q: %w", s, err)
		}
		v[i] = n
	}
	return v, nil
}

func writeMetrics(rw http.ResponseWriter, w *world.World, idx *indexdb.SQLiteIndex) {
	rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
	m := w.Metrics()
	id := w.ID()

	// Minimal Prometheus exposition format.
	gauge := func(name, help string, v any, labels ...string) {
		fmt.Fprintf(rw, "# HELP %s %s\n", name, help)
		fmt.Fprintf(rw, "# TYPE %s gauge\n", name)
		lbl := fmt.Sprintf("world=%q", id)
		for i := 0; i+1 < len(labels); i += 2 {
			lbl += fmt.Sprintf(",%s=%q", labels[i], labels[i+1])
		}
		fmt.Fprintf(rw, "%s{%s} %v\n", name, lbl, v)
	}
	gauge("voxeledit_world_tick", "Current world tick.", m.Tick)
	gauge("voxeledit_world_sessions", "Connected builder sessions.", m.Sessions)
	gauge("voxeledit_snapshots", "Named snapshots held by all owners.", m.Snapshots)
	gauge("voxeledit_snapshot_chunks", "Captured sub-chunks held by the snapshot store.", m.StoredChunks)
	gauge("voxeledit_structures", "Structures held by the primitive store.", m.Structures)
	gauge("voxeledit_region_tokens", "Owners holding a region token.", m.Tokens)
	gauge("voxeledit_world_loaded_chunks", "Loaded terrain chunks across dimensions.", m.LoadedChunks)
	fmt.Fprintf(rw, "# HELP voxeledit_world_queue_depth Channel backlog depth.\n")
	fmt.Fprintf(rw, "# TYPE voxeledit_world_queue_depth gauge\n")
	fmt.Fprintf(rw, "voxeledit_world_queue_depth{world=%q,queue=%q} %d\n", id, "inbox", m.QueueDepths.Inbox)
	fmt.Fprintf(rw, "voxeledit_world_queue_depth{world=%q,queue=%q} %d\n", id, "join", m.QueueDepths.Join)
	fmt.Fprintf(rw, "voxeledit_world_queue_depth{world=%q,queue=%q} %d\n", id, "leave", m.QueueDepths.Leave)
	gauge("voxeledit_world_step_ms", "Last tick step duration in milliseconds.", fmt.Sprintf("%.3f", m.StepMS))
	if idx != nil {
		st := idx.Stats()
		gauge("voxeledit_index_queue_depth", "Pending index writes.", st.QueueDepth)
		gauge("voxeledit_index_dropped_total", "Index writes dropped on a full queue.", st.DropTickTotal+st.DropAuditTotal)
	}
}

func loopbackOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		h(rw, r)
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func writeJSONError(rw http.ResponseWriter, status int, err error) {
	writeJSON(rw, status, map[string]any{"ok": false, "error": err.Error()})
}
