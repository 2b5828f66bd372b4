package world

import (
	"voxeledit.ai/internal/protocol"
	"voxeledit.ai/internal/sim/world/kernel/model"
)

type Vec3i = model.Vec3i

type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
}

// CommandEnvelope is one CMD received from a session, queued for the next tick.
type CommandEnvelope struct {
	SessionID string
	Cmd       protocol.CmdMsg
}

type RecordedJoin struct {
	SessionID string `json:"session_id"`
	Owner     string `json:"owner"`
	Name      string `json:"name"`
}

type RecordedCommand struct {
	SessionID string `json:"session_id"`
	ID        string `json:"id,omitempty"`
	Line      string `json:"line"`
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

type TickLogEntry struct {
	Tick     uint64            `json:"tick"`
	Joins    []RecordedJoin    `json:"joins,omitempty"`
	Leaves   []string          `json:"leaves,omitempty"`
	Commands []RecordedCommand `json:"commands,omitempty"`
	Digest   string            `json:"digest"`
}

// AuditEntry is one executed command. Failed commands are audited too, with OK false.
type AuditEntry struct {
	Tick      uint64 `json:"tick"`
	SessionID string `json:"session_id"`
	Owner     string `json:"owner"`
	Command   string `json:"command"`
	Action    string `json:"action,omitempty"` // e.g. "SET"
	Dimension string `json:"dimension,omitempty"`
	Min       [3]int `json:"min"`
	Max       [3]int `json:"max"`
	Block     string `json:"block,omitempty"`
	Changed   int    `json:"changed,omitempty"`
	Count     int    `json:"count,omitempty"`
	OK        bool   `json:"ok"`
	Code      string `json:"code,omitempty"`
	Reason    string `json:"reason,omitempty"`
}
