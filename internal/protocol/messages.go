package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	BuilderName     string            `json:"builder_name"`
	Capabilities    HelloCapabilities `json:"capabilities"`
}

type HelloCapabilities struct {
	MaxQueue int `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id"`
	Owner           string         `json:"owner"`
	WorldID         string         `json:"world_id"`
	Dimension       string         `json:"dimension"`
	Position        [3]int         `json:"position"`
	Dimensions      []DimensionRef `json:"dimensions"`
	Limits          Limits         `json:"limits"`
	BlockPalette    DigestRef      `json:"block_palette"`
}

type DimensionRef struct {
	ID        string `json:"id"`
	MinY      int    `json:"min_y"`
	MaxY      int    `json:"max_y"`
	BoundaryR int    `json:"boundary_r,omitempty"`
}

type Limits struct {
	CaptureLimit [3]int `json:"capture_limit"`
	HistoryLimit int    `json:"history_limit"`
	LoadPolicy   string `json:"load_policy"`
	MaxVolume    int    `json:"max_volume"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}

// CMD (client -> server): one editor command line, e.g. "set stone".
type CmdMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	Line            string `json:"line"`
}

// RESULT (server -> client): outcome of one CMD.
type ResultMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	CmdID           string   `json:"cmd_id"`
	Tick            uint64   `json:"tick"`
	OK              bool     `json:"ok"`
	Code            string   `json:"code,omitempty"`
	Message         string   `json:"message,omitempty"`
	Lines           []string `json:"lines,omitempty"`
}
