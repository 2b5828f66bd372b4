package world

import (
	"context"
	"time"
)

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer w.doneOnce.Do(func() { close(w.done) })

	var pendingCommands []CommandEnvelope
	var pendingJoins []JoinRequest
	var pendingLeaves []string

	for {
		select {
		case <-ctx.Done():
			w.shutdown()
			return ctx.Err()
		case <-w.stop:
			w.shutdown()
			return nil
		case req := <-w.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-w.leave:
			pendingLeaves = append(pendingLeaves, id)
		case req := <-w.stateReq:
			w.handleStateReq(req)
		case req := <-w.historyReq:
			w.handleHistoryReq(req)
		case env := <-w.inbox:
			pendingCommands = append(pendingCommands, env)
		case <-ticker.C:
			w.step(pendingJoins, pendingLeaves, pendingCommands)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingCommands = pendingCommands[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// Done is closed once Run has returned. Sends to Join, Leave or Inbox after that are
// never read.
func (w *World) Done() <-chan struct{} { return w.done }

// shutdown tears down every remaining session so no snapshot outlives the server loop.
func (w *World) shutdown() {
	for _, id := range w.sortedSessionIDs() {
		w.handleLeave(id)
	}
}

// StepOnce advances the world by a single tick using the same ordering semantics as the server.
// It is primarily intended for deterministic replays/tests.
func (w *World) StepOnce(joins []JoinRequest, leaves []string, commands []CommandEnvelope) (tick uint64, digest string) {
	tick = w.tick.Load()
	digest = w.step(joins, leaves, commands)
	return tick, digest
}

func (w *World) step(joins []JoinRequest, leaves []string, commands []CommandEnvelope) string {
	stepStart := time.Now()
	nowTick := w.tick.Load()

	// Leaves before joins, both at the tick boundary.
	recordedLeaves := make([]string, 0, len(leaves))
	for _, id := range leaves {
		if w.handleLeave(id) {
			recordedLeaves = append(recordedLeaves, id)
		}
	}
	recordedJoins := make([]RecordedJoin, 0, len(joins))
	for _, req := range joins {
		resp := w.joinSession(req.Name, req.Out)
		if req.Resp != nil {
			req.Resp <- resp
		}
		recordedJoins = append(recordedJoins, RecordedJoin{
			SessionID: resp.Welcome.SessionID,
			Owner:     resp.Welcome.Owner,
			Name:      normalizeBuilderName(req.Name),
		})
	}

	// Commands run in receive order, each to completion.
	recorded := make([]RecordedCommand, 0, len(commands))
	for _, env := range commands {
		s := w.sessions[env.SessionID]
		if s == nil {
			continue
		}
		recorded = append(recorded, RecordedCommand{SessionID: env.SessionID, ID: env.Cmd.ID, Line: env.Cmd.Line})
		w.applyCommand(s, env.Cmd, nowTick)
	}

	digest := w.stateDigest(nowTick)
	if w.tickLogger != nil && (len(recordedJoins) > 0 || len(recordedLeaves) > 0 || len(recorded) > 0) {
		if err := w.tickLogger.WriteTick(TickLogEntry{
			Tick:     nowTick,
			Joins:    recordedJoins,
			Leaves:   recordedLeaves,
			Commands: recorded,
			Digest:   digest,
		}); err != nil {
			w.log.Printf("tick log: %v", err)
		}
	}

	nextTick := w.tick.Add(1)
	w.storeMetrics(nextTick, time.Since(stepStart))
	return digest
}
