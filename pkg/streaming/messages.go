package streaming

import (
	"encoding/json"

	"github.com/geohunt/arcoin/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartSession  = "start_session"
	TypeEndSession    = "end_session"
	TypeSetCoin       = "set_coin"
	TypeCoinCollected = "coin_collected"
	TypeTrackPoint    = "track_point"
	TypeModeSwitch    = "mode_switch"
	TypeCoinEvent     = "coin_event"
	TypeEnginePerf    = "engine_perf"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartSessionPayload carries the session record opened on the server.
type StartSessionPayload struct {
	Session *core.HuntSession `json:"session"`
}

// CoinCollectedPayload identifies a collected target.
type CoinCollectedPayload struct {
	TargetID string `json:"targetId"`
}
