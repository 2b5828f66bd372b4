package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"voxeledit.ai/internal/protocol"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	cmdSchema := compile("cmd.schema.json")
	resultSchema := compile("result.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "builder_name":"alice",
	  "capabilities":{"max_queue":8}
	}`), &hello)
	validate(helloSchema, hello)

	var cmd any
	_ = json.Unmarshal([]byte(`{"type":"CMD","protocol_version":"1.0","id":"C1","line":"set stone"}`), &cmd)
	validate(cmdSchema, cmd)

	// Server-built messages go through their Go types so the schemas track the structs.
	toAny := func(v any) any {
		t.Helper()
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var out any
		if err := json.Unmarshal(b, &out); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return out
	}

	validate(welcomeSchema, toAny(protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       "3f1c2b1e-8d0a-4f8e-9a52-0d3c1d2e4f50",
		Owner:           "B1",
		WorldID:         "world_1",
		Dimension:       "OVERWORLD",
		Position:        [3]int{0, 64, 0},
		Dimensions:      []protocol.DimensionRef{{ID: "OVERWORLD", MinY: -64, MaxY: 319, BoundaryR: 4000}},
		Limits: protocol.Limits{
			CaptureLimit: [3]int{64, 256, 64},
			HistoryLimit: 64,
			LoadPolicy:   "any",
			MaxVolume:    1 << 21,
		},
		BlockPalette: protocol.DigestRef{Digest: "deadbeef", Count: 17},
	}))

	validate(resultSchema, toAny(protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		CmdID:           "C1",
		Tick:            12,
		OK:              true,
		Lines:           []string{"Operation completed (8 blocks changed)."},
	}))
	validate(resultSchema, toAny(protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		CmdID:           "C2",
		Tick:            13,
		Code:            protocol.ErrNotFound,
		Message:         "clipboard is empty",
	}))
}

func TestSchemas_RejectUnknownCode(t *testing.T) {
	s, err := jsonschema.Compile(filepath.Join("..", "..", "schemas", "result.schema.json"))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	var bad any
	_ = json.Unmarshal([]byte(`{"type":"RESULT","protocol_version":"1.0","cmd_id":"C1","tick":1,"ok":false,"code":"E_NOPE"}`), &bad)
	if err := s.Validate(bad); err == nil {
		t.Fatalf("expected unknown code to fail validation")
	}
}
