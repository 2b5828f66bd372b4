package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"voxeledit.ai/internal/persistence/indexdb"
)

func openIndex(dataDir, worldID, dbPath string) *sql.DB {
	path := strings.TrimSpace(dbPath)
	if path == "" {
		if strings.TrimSpace(worldID) == "" {
			fmt.Fprintln(os.Stderr, "missing -world or -db")
			os.Exit(2)
		}
		path = filepath.Join(dataDir, "worlds", worldID, "index", "world.sqlite")
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "index:", err)
		os.Exit(1)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	return db
}

func opsCmd(args []string) {
	fs := flag.NewFlagSet("ops", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (required unless -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	owner := fs.String("owner", "", "owner filter")
	session := fs.String("session", "", "session id filter")
	dim := fs.String("dim", "", "dimension filter")
	aabb := fs.String("aabb", "", "AABB filter: x1,y1,z1:x2,y2,z2")
	sinceTick := fs.Uint64("since_tick", 0, "first tick (inclusive)")
	toTick := fs.Uint64("to_tick", 0, "last tick (inclusive, optional)")
	failed := fs.Bool("failed", false, "only failed commands")
	limit := fs.Int("limit", 100, "result limit")
	_ = fs.Parse(args)

	f := indexdb.OpsFilter{
		Owner:      *owner,
		SessionID:  *session,
		Dimension:  strings.ToUpper(*dim),
		SinceTick:  *sinceTick,
		ToTick:     *toTick,
		FailedOnly: *failed,
		Limit:      *limit,
	}
	if strings.TrimSpace(*aabb) != "" {
		lo, hi, err := parseAABB(*aabb)
		if err != nil {
			fmt.Fprintln(os.Stderr, "bad -aabb:", err)
			os.Exit(2)
		}
		f.Box, f.Min, f.Max = true, lo, hi
	}

	db := openIndex(*dataDir, *worldID, *dbPath)
	defer db.Close()
	ops, err := indexdb.Ops(context.Background(), db, f)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	for _, op := range ops {
		printJSON(op)
	}
}

func sessionsCmd(args []string) {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (required unless -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	active := fs.Bool("active", false, "only sessions that have not left")
	_ = fs.Parse(args)

	db := openIndex(*dataDir, *worldID, *dbPath)
	defer db.Close()
	rows, err := indexdb.Sessions(context.Background(), db, *active)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	for _, r := range rows {
		printJSON(r)
	}
}
