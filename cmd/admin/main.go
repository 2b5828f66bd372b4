package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	persistlog "voxeledit.ai/internal/persistence/log"
	"voxeledit.ai/internal/sim/world"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "audit":
			auditCmd(os.Args[2:])
			return
		case "ops":
			opsCmd(os.Args[2:])
			return
		case "sessions":
			sessionsCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "history":
			historyCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (optional)")
	_ = fs.Parse(args)

	base := filepath.Join(*dataDir, "worlds")
	if *worldID != "" {
		base = filepath.Join(base, *worldID)
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, e := range entries {
		fmt.Println(e.Name())
	}
}

// auditFilter selects audit log entries. It mirrors the index's ops filter so
// the two can be compared when the index has dropped writes.
type auditFilter struct {
	Owner      string
	SinceTick  uint64
	ToTick     uint64
	Box        bool
	Min, Max   [3]int
	FailedOnly bool
}

func (f auditFilter) match(e world.AuditEntry) bool {
	if f.Owner != "" && e.Owner != f.Owner {
		return false
	}
	if e.Tick < f.SinceTick || (f.ToTick > 0 && e.Tick > f.ToTick) {
		return false
	}
	if f.FailedOnly && e.OK {
		return false
	}
	if f.Box {
		for i := 0; i < 3; i++ {
			if e.Min[i] > f.Max[i] || e.Max[i] < f.Min[i] {
				return false
			}
		}
	}
	return true
}

func readAudit(worldDir string, f auditFilter, limit int) ([]world.AuditEntry, error) {
	var out []world.AuditEntry
	err := persistlog.ReadAll(filepath.Join(worldDir, "audit"), "audit", func(e world.AuditEntry) bool {
		if f.ToTick > 0 && e.Tick > f.ToTick {
			return false
		}
		if f.match(e) {
			out = append(out, e)
		}
		return limit <= 0 || len(out) < limit
	})
	return out, err
}

func auditCmd(args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id")
	owner := fs.String("owner", "", "owner filter")
	aabb := fs.String("aabb", "", "AABB filter: x1,y1,z1:x2,y2,z2")
	sinceTick := fs.Uint64("since_tick", 0, "first tick (inclusive)")
	toTick := fs.Uint64("to_tick", 0, "last tick (inclusive, optional)")
	failed := fs.Bool("failed", false, "only failed commands")
	limit := fs.Int("limit", 0, "max entries (0 = all)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*worldID) == "" {
		fmt.Fprintln(os.Stderr, "missing -world")
		os.Exit(2)
	}
	f := auditFilter{Owner: *owner, SinceTick: *sinceTick, ToTick: *toTick, FailedOnly: *failed}
	if strings.TrimSpace(*aabb) != "" {
		lo, hi, err := parseAABB(*aabb)
		if err != nil {
			fmt.Fprintln(os.Stderr, "bad -aabb:", err)
			os.Exit(2)
		}
		f.Box, f.Min, f.Max = true, lo, hi
	}
	recs, err := readAudit(filepath.Join(*dataDir, "worlds", *worldID), f, *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read audit:", err)
		os.Exit(1)
	}
	for _, r := range recs {
		printJSON(r)
	}
}

func printJSON(v any) {
	b, _ := json.Marshal(v)
	fmt.Println(string(b))
}

// parseAABB reads "x1,y1,z1:x2,y2,z2" in either corner order.
func parseAABB(s string) (min, max [3]int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return min, max, fmt.Errorf("expected x1,y1,z1:x2,y2,z2")
	}
	a, err := parseVec3(parts[0])
	if err != nil {
		return min, max, err
	}
	b, err := parseVec3(parts[1])
	if err != nil {
		return min, max, err
	}
	for i := 0; i < 3; i++ {
		if a[i] < b[i] {
			min[i], max[i] = a[i], b[i]
		} else {
			min[i], max[i] = b[i], a[i]
		}
	}
	return min, max, nil
}

func parseVec3(s string) ([3]int, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 3 {
		return [3]int{}, fmt.Errorf("expected x,y,z")
	}
	var out [3]int
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return [3]int{}, err
		}
		out[i] = v
	}
	return out, nil
}
