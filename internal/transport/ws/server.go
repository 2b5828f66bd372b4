package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"voxeledit.ai/internal/protocol"
	"voxeledit.ai/internal/sim/world"
)

const joinTimeout = 10 * time.Second

type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sessionID, out := s.handshake(r.Context(), conn)
		if sessionID == "" {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			cmd, reason := decodeCmd(msg)
			if reason != "" {
				reject(out, cmd.ID, reason)
				continue
			}
			select {
			case s.world.Inbox() <- world.CommandEnvelope{SessionID: sessionID, Cmd: cmd}:
			case <-ctx.Done():
			}
		}

		s.leave(sessionID)
	}
}

// leave hands sessionID back to the world. A stopped world has already torn every
// session down, so the send is dropped once Run has returned.
func (s *Server) leave(sessionID string) {
	select {
	case s.world.Leave() <- sessionID:
	case <-s.world.Done():
	}
}

// decodeCmd returns a non-empty reason when msg is not a usable CMD.
func decodeCmd(msg []byte) (protocol.CmdMsg, string) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return protocol.CmdMsg{}, "malformed json"
	}
	if base.Type != protocol.TypeCmd {
		return protocol.CmdMsg{}, "unexpected message type " + base.Type
	}
	var cmd protocol.CmdMsg
	if err := json.Unmarshal(msg, &cmd); err != nil {
		return protocol.CmdMsg{}, "malformed CMD"
	}
	if cmd.ProtocolVersion != protocol.Version {
		return cmd, "bad protocol_version"
	}
	return cmd, ""
}

// reject answers a message the world never saw. The send is best effort like
// every other RESULT.
func reject(out chan []byte, cmdID, reason string) {
	b, _ := json.Marshal(protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		CmdID:           cmdID,
		OK:              false,
		Code:            protocol.ErrProtoBadRequest,
		Message:         reason,
	})
	select {
	case out <- b:
	default:
	}
}

func (s *Server) handshake(ctx context.Context, conn *websocket.Conn) (sessionID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closeWith(conn, "expected HELLO")
		return "", nil
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		closeWith(conn, "malformed HELLO")
		return "", nil
	}
	if hello.ProtocolVersion != protocol.Version {
		closeWith(conn, "bad protocol_version")
		return "", nil
	}

	maxQ := hello.Capabilities.MaxQueue
	if maxQ <= 0 {
		maxQ = 16
	}
	if maxQ > 256 {
		maxQ = 256
	}
	out = make(chan []byte, maxQ)

	ctx, cancel := context.WithTimeout(ctx, joinTimeout)
	defer cancel()
	respCh := make(chan world.JoinResponse, 1)
	select {
	case s.world.Join() <- world.JoinRequest{Name: hello.BuilderName, Out: out, Resp: respCh}:
	case <-ctx.Done():
		closeWith(conn, "world unavailable")
		return "", nil
	}
	var resp world.JoinResponse
	select {
	case resp = <-respCh:
	case <-ctx.Done():
		// The join may still land; the world needs the leave to release it.
		go func() {
			select {
			case r := <-respCh:
				if r.Welcome.SessionID != "" {
					s.leave(r.Welcome.SessionID)
				}
			case <-s.world.Done():
			}
		}()
		closeWith(conn, "world unavailable")
		return "", nil
	}

	if err := writeJSON(conn, resp.Welcome); err != nil {
		s.leave(resp.Welcome.SessionID)
		return "", nil
	}
	s.log.Printf("ws session %s connected from %s", resp.Welcome.SessionID, conn.RemoteAddr())
	return resp.Welcome.SessionID, out
}

func closeWith(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
