package world

import (
	"encoding/json"
	"errors"
	"strings"

	"voxeledit.ai/internal/protocol"
	"voxeledit.ai/internal/sim/world/feature/editcmd"
	"voxeledit.ai/internal/sim/world/feature/history"
	"voxeledit.ai/internal/sim/world/feature/regions"
	"voxeledit.ai/internal/sim/world/logic/ids"
)

// ResultCode maps a command failure to its protocol error code.
func ResultCode(err error) string {
	var capErr *regions.CaptureError
	var restoreErr *regions.RestoreError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, regions.ErrNotFound):
		return protocol.ErrNotFound
	case errors.Is(err, history.ErrHistoryState):
		return protocol.ErrState
	case errors.Is(err, ids.ErrIdentifierExhausted):
		return protocol.ErrExhausted
	case errors.As(err, &capErr):
		return protocol.ErrCapture
	case errors.As(err, &restoreErr):
		return protocol.ErrRestore
	case errors.Is(err, editcmd.ErrBadRequest):
		return protocol.ErrBadRequest
	default:
		return protocol.ErrInternal
	}
}

func (w *World) applyCommand(s *session, cmd protocol.CmdMsg, nowTick uint64) {
	s.Commands++
	res, err := editcmd.Execute(&w.env, s.Builder, cmd.Line)

	msg := protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		CmdID:           cmd.ID,
		Tick:            nowTick,
		OK:              err == nil,
		Lines:           res.Lines,
	}
	if err != nil {
		msg.Code = ResultCode(err)
		msg.Message = err.Error()
		if msg.Code == protocol.ErrInternal {
			w.log.Printf("session %s: %q: %v", s.ID, cmd.Line, err)
		}
	}
	w.sendResult(s, msg)

	if err != nil || res.Op != nil {
		w.audit(s, cmd.Line, res.Op, msg, nowTick)
	}
}

func (w *World) audit(s *session, line string, op *editcmd.Op, msg protocol.ResultMsg, nowTick uint64) {
	if w.auditLogger == nil {
		return
	}
	e := AuditEntry{
		Tick:      nowTick,
		SessionID: s.ID,
		Owner:     string(s.Builder.Owner),
		Command:   commandName(line),
		Dimension: string(s.Builder.Dimension),
		OK:        msg.OK,
		Code:      msg.Code,
		Reason:    msg.Message,
	}
	if op != nil {
		e.Action = op.Action
		e.Dimension = string(op.Dimension)
		e.Min = op.Min.ToArray()
		e.Max = op.Max.ToArray()
		e.Block = op.Block
		e.Changed = op.Changed
		e.Count = op.Count
	}
	if err := w.auditLogger.WriteAudit(e); err != nil {
		w.log.Printf("audit: %v", err)
	}
}

func commandName(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimLeft(fields[0], "/"))
}

// sendResult never blocks the world loop. A client that stops reading loses results.
func (w *World) sendResult(s *session, msg protocol.ResultMsg) {
	if s.Out == nil {
		return
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case s.Out <- b:
	default:
		w.log.Printf("session %s: outbox full, dropped result for %q", s.ID, msg.CmdID)
	}
}
