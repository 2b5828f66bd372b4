package world

import (
	"context"
	"errors"

	"voxeledit.ai/internal/protocol"
	"voxeledit.ai/internal/sim/world/feature/history"
	"voxeledit.ai/internal/sim/world/feature/regions"
	"voxeledit.ai/internal/sim/world/kernel/model"
)

var (
	ErrQueryUnavailable = errors.New("world query not available")
	ErrUnknownSession   = errors.New("unknown session or owner")
)

type StateReport struct {
	WorldID    string                  `json:"world_id"`
	Tick       uint64                  `json:"tick"`
	Dimensions []protocol.DimensionRef `json:"dimensions"`
	Sessions   []SessionInfo           `json:"sessions"`
	Snapshots  regions.Stats           `json:"snapshots"`
	Structures int                     `json:"structures"`
	// Orphans are primitive structures no snapshot accounts for.
	Orphans    []string `json:"orphans,omitempty"`
	Tokens     int      `json:"tokens"`
	LoadPolicy string   `json:"load_policy"`
}

type SessionInfo struct {
	SessionID  string   `json:"session_id"`
	Owner      string   `json:"owner"`
	Name       string   `json:"name"`
	Token      string   `json:"token,omitempty"`
	Dimension  string   `json:"dimension"`
	Pos        [3]int   `json:"pos"`
	JoinedTick uint64   `json:"joined_tick"`
	Commands   int      `json:"commands"`
	History    int      `json:"history"`
	Cursor     int      `json:"cursor"`
	Recording  bool     `json:"recording"`
	Snapshots  []string `json:"snapshots,omitempty"`
}

type HistoryReport struct {
	SessionID string              `json:"session_id"`
	Owner     string              `json:"owner"`
	Limit     int                 `json:"limit"`
	Cursor    int                 `json:"cursor"`
	Recording *history.EntryInfo  `json:"recording,omitempty"`
	Entries   []history.EntryInfo `json:"entries"`
}

type stateReq struct {
	Resp chan StateReport
}

type historyReq struct {
	Who  string
	Resp chan historyResp
}

type historyResp struct {
	Report HistoryReport
	Err    error
}

// RequestState returns a summary of the world from the world loop goroutine.
func (w *World) RequestState(ctx context.Context) (StateReport, error) {
	if w == nil || w.stateReq == nil {
		return StateReport{}, ErrQueryUnavailable
	}
	req := stateReq{Resp: make(chan StateReport, 1)}
	select {
	case w.stateReq <- req:
	case <-ctx.Done():
		return StateReport{}, ctx.Err()
	}
	select {
	case r := <-req.Resp:
		return r, nil
	case <-ctx.Done():
		return StateReport{}, ctx.Err()
	}
}

// RequestHistory returns one builder's history. who is a session id or an owner.
func (w *World) RequestHistory(ctx context.Context, who string) (HistoryReport, error) {
	if w == nil || w.historyReq == nil {
		return HistoryReport{}, ErrQueryUnavailable
	}
	req := historyReq{Who: who, Resp: make(chan historyResp, 1)}
	select {
	case w.historyReq <- req:
	case <-ctx.Done():
		return HistoryReport{}, ctx.Err()
	}
	select {
	case r := <-req.Resp:
		return r.Report, r.Err
	case <-ctx.Done():
		return HistoryReport{}, ctx.Err()
	}
}

func (w *World) handleStateReq(req stateReq) {
	if req.Resp == nil {
		return
	}
	select {
	case req.Resp <- w.stateReport():
	default:
	}
}

func (w *World) handleHistoryReq(req historyReq) {
	if req.Resp == nil {
		return
	}
	rep, err := w.historyReport(req.Who)
	select {
	case req.Resp <- historyResp{Report: rep, Err: err}:
	default:
	}
}

func (w *World) stateReport() StateReport {
	r := StateReport{
		WorldID:    w.cfg.ID,
		Tick:       w.tick.Load(),
		Dimensions: w.manifest,
		Sessions:   make([]SessionInfo, 0, len(w.sessions)),
		Snapshots:  w.snaps.Stats(),
		Structures: w.prim.Len(),
		Orphans:    w.orphanStructures(),
		Tokens:     w.tokens.Live(),
		LoadPolicy: w.snaps.Policy().String(),
	}
	for _, id := range w.sortedSessionIDs() {
		s := w.sessions[id]
		b := s.Builder
		tok, _ := w.tokens.Lookup(b.Owner)
		r.Sessions = append(r.Sessions, SessionInfo{
			SessionID:  s.ID,
			Owner:      string(b.Owner),
			Name:       s.Name,
			Token:      tok,
			Dimension:  string(b.Dimension),
			Pos:        b.Pos.ToArray(),
			JoinedTick: s.JoinedTick,
			Commands:   s.Commands,
			History:    b.History.Len(),
			Cursor:     b.History.Cursor(),
			Recording:  b.History.IsRecording(),
			Snapshots:  w.snaps.Names(b.Owner),
		})
	}
	return r
}

func (w *World) orphanStructures() []string {
	var out []string
	for _, id := range w.prim.IDs() {
		if !w.snaps.Backs(id) {
			out = append(out, id)
		}
	}
	return out
}

func (w *World) historyReport(who string) (HistoryReport, error) {
	s := w.sessions[who]
	if s == nil {
		s = w.owners[model.Owner(who)]
	}
	if s == nil {
		return HistoryReport{}, ErrUnknownSession
	}
	h := s.Builder.History
	r := HistoryReport{
		SessionID: s.ID,
		Owner:     string(s.Builder.Owner),
		Limit:     w.cfg.HistoryLimit,
		Cursor:    h.Cursor(),
		Entries:   h.Entries(),
	}
	if cur, ok := h.Current(); ok {
		r.Recording = &cur
	}
	return r, nil
}
