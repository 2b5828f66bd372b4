package worldtest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"voxeledit.ai/internal/protocol"
	world "voxeledit.ai/internal/sim/world"
)

func readResult(t *testing.T, out chan []byte) protocol.ResultMsg {
	t.Helper()
	select {
	case b := <-out:
		var r protocol.ResultMsg
		if err := json.Unmarshal(b, &r); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return r
	case <-time.After(2 * time.Second):
		t.Fatalf("no RESULT within 2s")
	}
	return protocol.ResultMsg{}
}

func TestRunServesCommandsAndQueries(t *testing.T) {
	w, err := world.New(testConfig(), LoadCatalogs(t), nil)
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	out := make(chan []byte, 16)
	resp := make(chan world.JoinResponse, 1)
	w.Join() <- world.JoinRequest{Name: "runner", Out: out, Resp: resp}
	var wel protocol.WelcomeMsg
	select {
	case jr := <-resp:
		wel = jr.Welcome
	case <-time.After(2 * time.Second):
		t.Fatalf("join timed out")
	}

	for i, line := range []string{"pos1 0 100 0", "pos2 2 100 2", "set glass"} {
		w.Inbox() <- world.CommandEnvelope{SessionID: wel.SessionID, Cmd: protocol.CmdMsg{ID: line, Line: line}}
		r := readResult(t, out)
		if !r.OK || r.CmdID != line {
			t.Fatalf("command %d: %+v", i, r)
		}
	}

	callCtx, callCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer callCancel()

	st, err := w.RequestState(callCtx)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if len(st.Sessions) != 1 || st.Sessions[0].SessionID != wel.SessionID || st.Sessions[0].History != 1 {
		t.Fatalf("state sessions: %+v", st.Sessions)
	}
	if st.Sessions[0].Token == "" || st.Snapshots.Snapshots != 2 {
		t.Fatalf("state snapshots: %+v token=%q", st.Snapshots, st.Sessions[0].Token)
	}

	hist, err := w.RequestHistory(callCtx, wel.Owner)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if hist.SessionID != wel.SessionID || hist.Cursor != 1 || len(hist.Entries) != 1 || !hist.Entries[0].Applied {
		t.Fatalf("history: %+v", hist)
	}
	if _, err := w.RequestHistory(callCtx, "nobody"); !errors.Is(err, world.ErrUnknownSession) {
		t.Fatalf("unknown owner: %v", err)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("world.Run did not exit")
	}
	// Shutdown tears every session down.
	if st := w.Snapshots().Stats(); st.Snapshots != 0 {
		t.Fatalf("snapshots after shutdown: %+v", st)
	}
	if m := w.Metrics(); m.Tick == 0 {
		t.Fatalf("metrics never published")
	}
}
