package websocket_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geohunt/arcoin/internal/storage"
	"github.com/geohunt/arcoin/internal/storage/websocket"
	"github.com/geohunt/arcoin/pkg/core"
	"github.com/geohunt/arcoin/pkg/streaming"
)

// Compile-time interface check.
var _ storage.Backend = (*websocket.Backend)(nil)

// testServer creates an httptest server that upgrades to WebSocket,
// records received messages, and sends acks for start_session/end_session.
func testServer(t *testing.T) (*httptest.Server, *messageLog) {
	t.Helper()
	ml := &messageLog{}

	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer c.Close()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}

			var env streaming.Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				continue
			}
			ml.add(env)

			// Ack start_session and end_session.
			if env.Type == streaming.TypeStartSession || env.Type == streaming.TypeEndSession {
				ack := streaming.AckMessage{Type: "ack", For: env.Type}
				data, _ := json.Marshal(ack)
				if err := c.WriteMessage(ws.TextMessage, data); err != nil {
					return
				}
			}
		}
	}))

	return srv, ml
}

type messageLog struct {
	mu       sync.Mutex
	messages []streaming.Envelope
}

func (m *messageLog) add(env streaming.Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, env)
}

func (m *messageLog) all() []streaming.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]streaming.Envelope, len(m.messages))
	copy(cp, m.messages)
	return cp
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStartAndEndSession(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	b := websocket.New(websocket.Config{URL: wsURL(srv), Secret: "test"}, nil)
	require.NoError(t, b.Init())
	defer b.Close()

	session := &core.HuntSession{ID: uuid.New(), PlayerTag: "hunter42", StartTime: time.Now()}
	require.NoError(t, b.StartSession(session))

	require.NoError(t, b.EndSession())

	msgs := ml.all()
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Equal(t, streaming.TypeStartSession, msgs[0].Type)
	assert.Equal(t, streaming.TypeEndSession, msgs[len(msgs)-1].Type)
}

func TestFireAndForgetMessages(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	b := websocket.New(websocket.Config{URL: wsURL(srv), Secret: "s"}, nil)
	require.NoError(t, b.Init())
	defer b.Close()

	session := &core.HuntSession{ID: uuid.New(), PlayerTag: "p"}
	require.NoError(t, b.StartSession(session))

	targetID := uuid.New()
	require.NoError(t, b.SetCoin(&core.TargetPoint{ID: targetID, Name: "Harbor Coin"}))
	require.NoError(t, b.RecordTrackPoint(&core.TrackPoint{Time: time.Now(), DistanceMeters: 62.5}))
	require.NoError(t, b.RecordModeSwitch(&core.ModeSwitch{From: core.PlacementFull, To: core.PlacementHeadingOnly}))
	require.NoError(t, b.RecordCoinEvent(&core.CoinEventRecord{TargetID: targetID, Kind: core.EventMaterialized}))
	require.NoError(t, b.RecordEnginePerf(&core.EnginePerf{TicksPerSecond: 30}))
	require.NoError(t, b.MarkCoinCollected(targetID))

	require.NoError(t, b.EndSession())

	// Give a moment for all messages to arrive at server.
	time.Sleep(50 * time.Millisecond)

	msgs := ml.all()

	types := make(map[string]int)
	for _, m := range msgs {
		types[m.Type]++
	}

	assert.Equal(t, 1, types[streaming.TypeStartSession])
	assert.Equal(t, 1, types[streaming.TypeEndSession])
	assert.Equal(t, 1, types[streaming.TypeSetCoin])
	assert.Equal(t, 1, types[streaming.TypeTrackPoint])
	assert.Equal(t, 1, types[streaming.TypeModeSwitch])
	assert.Equal(t, 1, types[streaming.TypeCoinEvent])
	assert.Equal(t, 1, types[streaming.TypeEnginePerf])
	assert.Equal(t, 1, types[streaming.TypeCoinCollected])
}

func TestCoinCollectedPayload(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	b := websocket.New(websocket.Config{URL: wsURL(srv), Secret: "s"}, nil)
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartSession(&core.HuntSession{ID: uuid.New()}))

	targetID := uuid.New()
	require.NoError(t, b.MarkCoinCollected(targetID))
	require.NoError(t, b.EndSession())

	time.Sleep(50 * time.Millisecond)

	for _, env := range ml.all() {
		if env.Type != streaming.TypeCoinCollected {
			continue
		}
		var payload streaming.CoinCollectedPayload
		require.NoError(t, json.Unmarshal(env.Payload, &payload))
		assert.Equal(t, targetID.String(), payload.TargetID)
		return
	}
	t.Fatal("coin_collected message not received")
}

func TestEnvelopeSerialization(t *testing.T) {
	payload := streaming.CoinCollectedPayload{TargetID: uuid.New().String()}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	env := streaming.Envelope{Type: streaming.TypeCoinCollected, Payload: raw}
	data, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded streaming.Envelope
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, streaming.TypeCoinCollected, decoded.Type)

	var dp streaming.CoinCollectedPayload
	require.NoError(t, json.Unmarshal(decoded.Payload, &dp))
	assert.Equal(t, payload.TargetID, dp.TargetID)
}
