package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"voxeledit.ai/internal/sim/world"
)

// OpsFilter selects audited commands. Zero fields match everything.
type OpsFilter struct {
	Owner     string
	SessionID string
	Dimension string
	// Box, when set, keeps ops whose region intersects [Min, Max].
	Box        bool
	Min, Max   [3]int
	SinceTick  uint64
	ToTick     uint64
	FailedOnly bool
	Limit      int
}

// Ops returns matching audits ordered by tick, oldest first.
func Ops(ctx context.Context, db *sql.DB, f OpsFilter) ([]world.AuditEntry, error) {
	var (
		where []string
		args  []any
	)
	if f.Owner != "" {
		where = append(where, "owner=?")
		args = append(args, f.Owner)
	}
	if f.SessionID != "" {
		where = append(where, "session_id=?")
		args = append(args, f.SessionID)
	}
	if f.Dimension != "" {
		where = append(where, "dimension=?")
		args = append(args, f.Dimension)
	}
	if f.Box {
		where = append(where, "min_x<=? AND max_x>=? AND min_y<=? AND max_y>=? AND min_z<=? AND max_z>=?")
		args = append(args, f.Max[0], f.Min[0], f.Max[1], f.Min[1], f.Max[2], f.Min[2])
	}
	if f.SinceTick > 0 {
		where = append(where, "tick>=?")
		args = append(args, int64(f.SinceTick))
	}
	if f.ToTick > 0 {
		where = append(where, "tick<=?")
		args = append(args, int64(f.ToTick))
	}
	if f.FailedOnly {
		where = append(where, "ok=0")
	}
	q := "SELECT raw_json FROM ops"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY tick, seq"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []world.AuditEntry
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var e world.AuditEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("ops row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type SessionRow struct {
	SessionID  string  `json:"session_id"`
	Owner      string  `json:"owner"`
	Name       string  `json:"name"`
	JoinedTick uint64  `json:"joined_tick"`
	LeftTick   *uint64 `json:"left_tick,omitempty"`
}

// Sessions lists recorded sessions, optionally only those still connected.
func Sessions(ctx context.Context, db *sql.DB, activeOnly bool) ([]SessionRow, error) {
	q := "SELECT session_id,owner,name,joined_tick,left_tick FROM sessions"
	if activeOnly {
		q += " WHERE left_tick IS NULL"
	}
	q += " ORDER BY joined_tick, session_id"
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SessionRow
	for rows.Next() {
		var (
			r      SessionRow
			joined int64
			left   sql.NullInt64
		)
		if err := rows.Scan(&r.SessionID, &r.Owner, &r.Name, &joined, &left); err != nil {
			return nil, err
		}
		r.JoinedTick = uint64(joined)
		if left.Valid {
			v := uint64(left.Int64)
			r.LeftTick = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DB exposes the handle for read queries while the writer is running. Reads wait
// for the writer's open batch, at most about two seconds.
func (s *SQLiteIndex) DB() *sql.DB { return s.db }
