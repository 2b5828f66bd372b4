package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"voxeledit.ai/internal/protocol"
)

// demoScript builds a small hut next to the builder, clones it and walks the history back.
var demoScript = []string{
	"pos1 ~2 ~ ~2",
	"pos2 ~6 ~3 ~6",
	"set stone",
	"pos1 ~3 ~ ~3",
	"pos2 ~5 ~2 ~5",
	"set air",
	"pos1 ~2 ~ ~2",
	"pos2 ~6 ~3 ~6",
	"copy",
	"tp ~10 ~ ~",
	"paste",
	"undo",
	"redo",
	"history",
}

func main() {
	var (
		url    = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name   = flag.String("name", "bot", "builder name")
		script = flag.String("script", "", "file with one command per line ('-' for stdin; default: built-in demo)")
		random = flag.Int("random", 0, "after the script, send this many random set/undo commands")
		pause  = flag.Duration("pause", 100*time.Millisecond, "delay between commands")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)

	lines := demoScript
	if *script != "" {
		var err error
		if lines, err = readScript(*script); err != nil {
			logger.Fatalf("read script: %v", err)
		}
	}

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		BuilderName:     *name,
		Capabilities:    protocol.HelloCapabilities{MaxQueue: 16},
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}
	var welcome protocol.WelcomeMsg
	if err := conn.ReadJSON(&welcome); err != nil || welcome.Type != protocol.TypeWelcome {
		logger.Fatalf("expected WELCOME: %v", err)
	}
	logger.Printf("WELCOME session=%s owner=%s dimension=%s pos=%v capture_limit=%v",
		welcome.SessionID, welcome.Owner, welcome.Dimension, welcome.Position, welcome.Limits.CaptureLimit)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < *random; i++ {
		lines = append(lines, randomLine(r))
	}

	failed := 0
	for i, line := range lines {
		select {
		case <-stop:
			return
		default:
		}
		res, err := roundTrip(conn, fmt.Sprintf("c%d", i+1), line)
		if err != nil {
			logger.Fatalf("%q: %v", line, err)
		}
		if !res.OK {
			failed++
			logger.Printf("%-24s FAIL %s %s", line, res.Code, res.Message)
		} else {
			logger.Printf("%-24s ok %s", line, strings.Join(res.Lines, " | "))
		}
		time.Sleep(*pause)
	}
	logger.Printf("done: %d commands, %d failed", len(lines), failed)
}

// roundTrip sends one CMD and waits for the RESULT carrying its id.
func roundTrip(conn *websocket.Conn, id, line string) (protocol.ResultMsg, error) {
	cmd := protocol.CmdMsg{Type: protocol.TypeCmd, ProtocolVersion: protocol.Version, ID: id, Line: line}
	if err := conn.WriteJSON(cmd); err != nil {
		return protocol.ResultMsg{}, err
	}
	for {
		_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return protocol.ResultMsg{}, err
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil || base.Type != protocol.TypeResult {
			continue
		}
		var res protocol.ResultMsg
		if err := json.Unmarshal(msg, &res); err != nil {
			return res, err
		}
		if res.CmdID == id {
			return res, nil
		}
	}
}

func randomLine(r *rand.Rand) string {
	switch r.Intn(4) {
	case 0:
		return "undo"
	case 1:
		return fmt.Sprintf("pos1 ~%d ~ ~%d", r.Intn(9)-4, r.Intn(9)-4)
	case 2:
		return fmt.Sprintf("pos2 ~%d ~%d ~%d", r.Intn(9)-4, r.Intn(4), r.Intn(9)-4)
	default:
		blocks := []string{"stone", "dirt", "glass", "planks", "air"}
		return "set " + blocks[r.Intn(len(blocks))]
	}
}

func readScript(path string) ([]string, error) {
	var in io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}
	var out []string
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}
