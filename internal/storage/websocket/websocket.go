// Package websocket streams hunt session data over WebSocket to the hunt
// web server for live spectating. It implements storage.Backend but not
// storage.Uploadable: a streamed session has nothing left to upload.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/geohunt/arcoin/pkg/core"
	"github.com/geohunt/arcoin/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string
	Secret string
}

// Backend streams session data over WebSocket.
type Backend struct {
	sock *socket
	cfg  Config
}

// New creates a new WebSocket storage backend.
func New(cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		sock: newSocket(logger),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.sock.open(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.sock.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope marshals the payload into an Envelope and pushes it
// to the write loop (fire-and-forget).
func (b *Backend) sendEnvelope(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	b.sock.send(data)
	return nil
}

// sendEnvelopeAndWait marshals the payload and waits for a server ack.
func (b *Backend) sendEnvelopeAndWait(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	return b.sock.sendAwaitAck(data, msgType, ackDeadline)
}

// StartSession sends the session header and waits for server ack.
func (b *Backend) StartSession(session *core.HuntSession) error {
	data, err := marshalEnvelope(streaming.TypeStartSession, streaming.StartSessionPayload{Session: session})
	if err != nil {
		return err
	}

	// Cache for redial replay.
	b.sock.mu.Lock()
	b.sock.greeting = data
	b.sock.mu.Unlock()

	return b.sock.sendAwaitAck(data, streaming.TypeStartSession, ackDeadline)
}

// EndSession sends end_session and waits for server ack.
func (b *Backend) EndSession() error {
	err := b.sendEnvelopeAndWait(streaming.TypeEndSession, nil)

	// Clear the cached greeting regardless of error.
	b.sock.mu.Lock()
	b.sock.greeting = nil
	b.sock.mu.Unlock()

	return err
}

// SetCoin sends the target definition (fire-and-forget).
func (b *Backend) SetCoin(target *core.TargetPoint) error {
	return b.sendEnvelope(streaming.TypeSetCoin, target)
}

// MarkCoinCollected announces a collection (fire-and-forget).
func (b *Backend) MarkCoinCollected(targetID uuid.UUID) error {
	return b.sendEnvelope(streaming.TypeCoinCollected, streaming.CoinCollectedPayload{TargetID: targetID.String()})
}

func (b *Backend) RecordTrackPoint(tp *core.TrackPoint) error {
	return b.sendEnvelope(streaming.TypeTrackPoint, tp)
}

func (b *Backend) RecordModeSwitch(ms *core.ModeSwitch) error {
	return b.sendEnvelope(streaming.TypeModeSwitch, ms)
}

func (b *Backend) RecordCoinEvent(e *core.CoinEventRecord) error {
	return b.sendEnvelope(streaming.TypeCoinEvent, e)
}

func (b *Backend) RecordEnginePerf(p *core.EnginePerf) error {
	return b.sendEnvelope(streaming.TypeEnginePerf, p)
}
