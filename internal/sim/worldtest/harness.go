package worldtest

import (
	"encoding/json"
	"fmt"
	"testing"

	"voxeledit.ai/internal/protocol"
	"voxeledit.ai/internal/sim/catalogs"
	world "voxeledit.ai/internal/sim/world"
)

// Harness is a small black-box test helper for driving a world via exported APIs:
// - Join() issues JoinRequest via StepOnce()
// - Run()/RunFor() issue one CMD via StepOnce() and return its RESULT
// - Per-session Out channels carry RESULT JSON
//
// It avoids world internals so tests can live outside the world package.
type Harness struct {
	T    *testing.T
	Cats *catalogs.Catalogs
	W    *world.World

	DefaultSessionID string

	sessions map[string]*session
	nextCmd  int
}

type session struct {
	ID      string
	Welcome protocol.WelcomeMsg
	Out     chan []byte
}

func LoadCatalogs(t *testing.T) *catalogs.Catalogs {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return cats
}

func NewHarness(t *testing.T, cfg world.WorldConfig, cats *catalogs.Catalogs, builderName string) *Harness {
	t.Helper()

	w, err := world.New(cfg, cats, nil)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	h := &Harness{
		T:        t,
		Cats:     cats,
		W:        w,
		sessions: map[string]*session{},
	}
	h.DefaultSessionID = h.Join(builderName)
	return h
}

func (h *Harness) Join(name string) string {
	h.T.Helper()

	out := make(chan []byte, 64)
	resp := make(chan world.JoinResponse, 1)
	_, _ = h.W.StepOnce([]world.JoinRequest{{Name: name, Out: out, Resp: resp}}, nil, nil)
	jr := <-resp
	if jr.Welcome.SessionID == "" {
		h.T.Fatalf("join returned empty session id")
	}
	s := &session{ID: jr.Welcome.SessionID, Welcome: jr.Welcome, Out: out}
	h.sessions[s.ID] = s
	return s.ID
}

func (h *Harness) Leave(id string) {
	h.T.Helper()
	_, _ = h.W.StepOnce(nil, []string{id}, nil)
	delete(h.sessions, id)
}

func (h *Harness) Welcome(id string) protocol.WelcomeMsg {
	h.T.Helper()
	s := h.sessions[id]
	if s == nil {
		h.T.Fatalf("unknown session %q", id)
	}
	return s.Welcome
}

func (h *Harness) Run(line string) protocol.ResultMsg {
	return h.RunFor(h.DefaultSessionID, line)
}

// RunFor executes line for session id in its own tick.
func (h *Harness) RunFor(id, line string) protocol.ResultMsg {
	h.T.Helper()
	h.nextCmd++
	cmdID := fmt.Sprintf("K%d", h.nextCmd)
	_, _ = h.W.StepOnce(nil, nil, []world.CommandEnvelope{{
		SessionID: id,
		Cmd: protocol.CmdMsg{
			Type:            protocol.TypeCmd,
			ProtocolVersion: protocol.Version,
			ID:              cmdID,
			Line:            line,
		},
	}})
	res := h.drainResults(id)
	if len(res) != 1 || res[0].CmdID != cmdID {
		h.T.Fatalf("%q: expected one RESULT for %s, got %+v", line, cmdID, res)
	}
	return res[0]
}

// MustRun is Run that fails the test on a non-OK result.
func (h *Harness) MustRun(line string) protocol.ResultMsg {
	h.T.Helper()
	r := h.Run(line)
	if !r.OK {
		h.T.Fatalf("%q: %s %s", line, r.Code, r.Message)
	}
	return r
}

func (h *Harness) Block(dim string, pos world.Vec3i) string {
	h.T.Helper()
	name, ok := h.W.DebugBlock(dim, pos)
	if !ok {
		h.T.Fatalf("DebugBlock %s %s: out of bounds", dim, pos)
	}
	return name
}

func (h *Harness) SetBlock(dim string, pos world.Vec3i, blockName string) {
	h.T.Helper()
	if err := h.W.DebugSetBlock(dim, pos, blockName); err != nil {
		h.T.Fatalf("DebugSetBlock: %v", err)
	}
}

// CountBlock counts cells named blockName in the inclusive box.
func (h *Harness) CountBlock(dim string, lo, hi world.Vec3i, blockName string) int {
	h.T.Helper()
	n := 0
	for y := lo.Y; y <= hi.Y; y++ {
		for z := lo.Z; z <= hi.Z; z++ {
			for x := lo.X; x <= hi.X; x++ {
				if h.Block(dim, world.Vec3i{X: x, Y: y, Z: z}) == blockName {
					n++
				}
			}
		}
	}
	return n
}

func (h *Harness) drainResults(id string) []protocol.ResultMsg {
	h.T.Helper()
	s := h.sessions[id]
	if s == nil {
		return nil
	}
	var out []protocol.ResultMsg
	for {
		select {
		case b := <-s.Out:
			var r protocol.ResultMsg
			if err := json.Unmarshal(b, &r); err != nil {
				h.T.Fatalf("unmarshal RESULT: %v", err)
			}
			out = append(out, r)
			continue
		default:
		}
		return out
	}
}
