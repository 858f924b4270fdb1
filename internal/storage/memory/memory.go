// Package memory stores a hunt session in memory and exports it to a JSON
// archive when the session ends. It is the default backend for devices that
// record offline and upload later.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/geohunt/arcoin/internal/config"
	"github.com/geohunt/arcoin/pkg/core"
)

// CoinRecord groups a target with its collection outcome.
type CoinRecord struct {
	Target    core.TargetPoint
	Collected bool
}

// Backend stores session data in memory and exports to JSON.
type Backend struct {
	cfg     config.MemoryConfig
	session *core.HuntSession

	coins     map[uuid.UUID]*CoinRecord
	coinOrder []uuid.UUID // insertion order for deterministic export
	collected int

	trackPoints  []core.TrackPoint
	modeSwitches []core.ModeSwitch
	coinEvents   []core.CoinEventRecord
	perfSamples  []core.EnginePerf

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend.
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:   cfg,
		coins: make(map[uuid.UUID]*CoinRecord),
	}
}

// Init initializes the backend.
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources.
func (b *Backend) Close() error {
	return nil
}

// StartSession begins recording a new session, discarding any previous data.
func (b *Backend) StartSession(session *core.HuntSession) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.session = session

	b.coins = make(map[uuid.UUID]*CoinRecord)
	b.coinOrder = nil
	b.collected = 0
	b.trackPoints = nil
	b.modeSwitches = nil
	b.coinEvents = nil
	b.perfSamples = nil

	return nil
}

// EndSession finalizes and exports the session data.
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.exportJSON()
}

// SetCoin registers a target.
func (b *Backend) SetCoin(target *core.TargetPoint) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.coins[target.ID]; !exists {
		b.coinOrder = append(b.coinOrder, target.ID)
	}
	b.coins[target.ID] = &CoinRecord{Target: *target}
	return nil
}

// MarkCoinCollected flags a target as collected.
func (b *Backend) MarkCoinCollected(targetID uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	record, ok := b.coins[targetID]
	if !ok {
		return nil // silently ignore unknown targets
	}
	if !record.Collected {
		record.Collected = true
		b.collected++
	}
	return nil
}

// RecordTrackPoint records an observer sample.
func (b *Backend) RecordTrackPoint(tp *core.TrackPoint) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trackPoints = append(b.trackPoints, *tp)
	return nil
}

// RecordModeSwitch records a mode transition.
func (b *Backend) RecordModeSwitch(ms *core.ModeSwitch) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modeSwitches = append(b.modeSwitches, *ms)
	return nil
}

// RecordCoinEvent records a coin lifecycle event.
func (b *Backend) RecordCoinEvent(e *core.CoinEventRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.coinEvents = append(b.coinEvents, *e)
	return nil
}

// RecordEnginePerf records a performance sample.
func (b *Backend) RecordEnginePerf(p *core.EnginePerf) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.perfSamples = append(b.perfSamples, *p)
	return nil
}

// CoinsCollected reports how many targets were collected so far.
func (b *Backend) CoinsCollected() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.collected
}
