package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	persistlog "voxeledit.ai/internal/persistence/log"
	"voxeledit.ai/internal/protocol"
	"voxeledit.ai/internal/sim/catalogs"
	"voxeledit.ai/internal/sim/multiworld"
	"voxeledit.ai/internal/sim/tuning"
	"voxeledit.ai/internal/sim/world"
)

func main() {
	var (
		eventsDir  = flag.String("events", "", "events dir containing events-*.jsonl.zst")
		worldID    = flag.String("world", "world_1", "world id the log was written by")
		seed       = flag.Int64("seed", 1337, "terrain seed the server ran with")
		configDir  = flag.String("configs", "./configs", "config directory")
		worldsPath = flag.String("worlds", "", "dimension config path (default: <configs>/worlds.yaml)")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		fromTick   = flag.Uint64("from_tick", 0, "start verifying from tick (inclusive, optional)")
		toTick     = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
	)
	flag.Parse()

	if *eventsDir == "" {
		fmt.Fprintln(os.Stderr, "missing -events")
		os.Exit(2)
	}

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load catalogs:", err)
		os.Exit(1)
	}
	tp := *tuningPath
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load tuning:", err)
		os.Exit(1)
	}
	wp := strings.TrimSpace(*worldsPath)
	if wp == "" {
		if p := filepath.Join(*configDir, "worlds.yaml"); fileExists(p) {
			wp = p
		}
	}
	dims, err := multiworld.Load(wp)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load worlds config:", err)
		os.Exit(1)
	}
	cfg, err := world.ConfigFrom(*worldID, *seed, tune, dims)
	if err != nil {
		fmt.Fprintln(os.Stderr, "world config:", err)
		os.Exit(1)
	}
	w, err := world.New(cfg, cats, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "world:", err)
		os.Exit(1)
	}

	res, err := replay(w, *eventsDir, *fromTick, *toTick)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	fmt.Printf("replay ok: checked=%d ticks, stepped=%d, last tick=%d\n", res.Checked, res.Stepped, res.LastTick)
}

type replayResult struct {
	Checked  uint64
	Stepped  uint64
	LastTick uint64
}

// replay feeds a tick log back through a fresh world. The log holds only ticks
// with activity, so idle ticks in between are stepped empty.
func replay(w *world.World, eventsDir string, verifyFrom, toTick uint64) (replayResult, error) {
	var (
		res     replayResult
		failure error
	)
	files, err := persistlog.Files(eventsDir, "events")
	if err != nil {
		return res, err
	}
	if len(files) == 0 {
		return res, fmt.Errorf("no events files found in %s", eventsDir)
	}

	for _, path := range files {
		err := persistlog.ReadJSONL(path, func(entry world.TickLogEntry) bool {
			if toTick != 0 && entry.Tick > toTick {
				failure = errStop
				return false
			}
			if entry.Tick < w.CurrentTick() {
				failure = fmt.Errorf("tick %d out of order (world at %d, file=%s)", entry.Tick, w.CurrentTick(), filepath.Base(path))
				return false
			}
			for w.CurrentTick() < entry.Tick {
				w.StepOnce(nil, nil, nil)
				res.Stepped++
			}

			joins := make([]world.JoinRequest, 0, len(entry.Joins))
			resps := make([]chan world.JoinResponse, 0, len(entry.Joins))
			for _, j := range entry.Joins {
				ch := make(chan world.JoinResponse, 1)
				joins = append(joins, world.JoinRequest{Name: j.Name, Resp: ch})
				resps = append(resps, ch)
			}
			cmds := make([]world.CommandEnvelope, 0, len(entry.Commands))
			for _, c := range entry.Commands {
				cmds = append(cmds, world.CommandEnvelope{SessionID: c.SessionID, Cmd: protocol.CmdMsg{
					Type:            protocol.TypeCmd,
					ProtocolVersion: protocol.Version,
					ID:              c.ID,
					Line:            c.Line,
				}})
			}

			tick, digest := w.StepOnce(joins, entry.Leaves, cmds)
			res.Stepped++
			res.LastTick = tick
			for i, ch := range resps {
				if got := (<-ch).Welcome.SessionID; got != entry.Joins[i].SessionID {
					failure = fmt.Errorf("tick %d: join %d got session %s, log has %s", tick, i, got, entry.Joins[i].SessionID)
					return false
				}
			}
			if tick >= verifyFrom {
				res.Checked++
				if digest != entry.Digest {
					failure = fmt.Errorf("digest mismatch at tick %d: got=%s want=%s", tick, digest, entry.Digest)
					return false
				}
			}
			return true
		})
		if err != nil {
			return res, err
		}
		if failure == errStop {
			return res, nil
		}
		if failure != nil {
			return res, failure
		}
	}
	return res, nil
}

var errStop = errors.New("stop")

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
