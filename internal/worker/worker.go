// Package worker connects the command dispatcher to the engine and the
// configured storage backend. Handlers parse raw command arguments, update
// the shared observer state and forward domain objects; the host tick loop
// calls Tick to advance the engine and persist what it produced.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/geohunt/arcoin/internal/cache"
	"github.com/geohunt/arcoin/internal/engine"
	"github.com/geohunt/arcoin/internal/influx"
	"github.com/geohunt/arcoin/internal/parser"
	"github.com/geohunt/arcoin/internal/session"
	"github.com/geohunt/arcoin/internal/storage"
	"github.com/geohunt/arcoin/pkg/core"
)

// Dependencies holds all dependencies for the worker manager.
type Dependencies struct {
	Coins   *cache.CoinCache
	Session *session.Context
	Parser  *parser.Parser
	Logger  *slog.Logger

	// Influx receives coin event and tracking points when set. Perf
	// samples go through the monitor instead.
	Influx *influx.Manager
}

// Manager owns the mutable observer state assembled from incremental
// feed commands and drives the engine with it once per host tick.
type Manager struct {
	deps    Dependencies
	engine  *engine.Engine
	backend storage.Backend

	mu    sync.Mutex
	obs   core.ObserverState
	coord core.GeoCoordinate

	prevMode        core.PlacementMode
	prevViewpoint   core.Vec3
	baselineStamped bool

	ticks            uint64
	modeSwitches     int
	lastDisplay      string
	lastTickDuration time.Duration
	windowStart      time.Time
	windowTicks      uint64
	ticksPerSecond   float64
}

// NewManager creates a worker manager bound to an engine and backend.
func NewManager(deps Dependencies, eng *engine.Engine, backend storage.Backend) *Manager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Manager{
		deps:        deps,
		engine:      eng,
		backend:     backend,
		prevMode:    core.PlacementFull,
		windowStart: time.Now(),
	}
}

// Observer returns a snapshot of the current observer state. The
// coordinate is copied so the caller never shares the internal pointer.
func (m *Manager) Observer() core.ObserverState {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.obs
	if m.obs.Coordinate != nil {
		c := m.coord
		snap.Coordinate = &c
	}
	return snap
}

// Tick advances the engine one frame with the latest observer state and
// records the results to the backend.
func (m *Manager) Tick(dt float64) engine.TickResult {
	obs := m.Observer()

	start := time.Now()
	result := m.engine.Tick(dt, obs)
	elapsed := time.Since(start)

	m.stampBaseline()
	m.recordTick(result, obs, start)

	m.mu.Lock()
	m.ticks++
	m.windowTicks++
	m.lastTickDuration = elapsed
	m.lastDisplay = result.Display.String()
	if window := start.Sub(m.windowStart); window >= time.Second {
		m.ticksPerSecond = float64(m.windowTicks) / window.Seconds()
		m.windowStart = start
		m.windowTicks = 0
	}
	m.prevViewpoint = obs.Viewpoint.Position
	m.mu.Unlock()

	return result
}

// stampBaseline copies the engine's captured heading into the session
// record once per session, as soon as the first usable reading fixes it.
func (m *Manager) stampBaseline() {
	m.mu.Lock()
	stamped := m.baselineStamped
	m.mu.Unlock()
	if stamped || !m.deps.Session.Active() {
		return
	}
	deg, ok := m.engine.BaselineHeading()
	if !ok {
		return
	}
	m.deps.Session.SetBaselineHeading(deg)
	m.mu.Lock()
	m.baselineStamped = true
	m.mu.Unlock()
}

// recordTick persists what a tick produced: one track point when a fix
// exists, a mode switch row per mode change, and every lifecycle event.
func (m *Manager) recordTick(result engine.TickResult, obs core.ObserverState, now time.Time) {
	if m.backend == nil || !m.deps.Session.Active() {
		m.noteTickLocally(result)
		return
	}

	if obs.Coordinate != nil {
		distance := -1.0
		if result.DistanceKnown {
			distance = result.DistanceMeters
		}
		tp := core.TrackPoint{
			Time:           now,
			Coordinate:     *obs.Coordinate,
			FixAccuracy:    obs.FixAccuracy,
			Heading:        result.Heading,
			Mode:           result.Mode,
			DistanceMeters: distance,
		}
		if err := m.backend.RecordTrackPoint(&tp); err != nil {
			m.deps.Logger.Error("failed to record track point", "error", err)
		}
	}

	for _, ev := range result.Events {
		rec := core.CoinEventRecord{
			Time:           ev.Time,
			TargetID:       ev.TargetID,
			Kind:           ev.Kind,
			DistanceMeters: ev.DistanceMeters,
			Mode:           ev.Mode,
			HeadingMethod:  ev.Heading.Method,
		}
		if err := m.backend.RecordCoinEvent(&rec); err != nil {
			m.deps.Logger.Error("failed to record coin event", "kind", ev.Kind.String(), "error", err)
		}
		if m.deps.Influx != nil {
			sess := m.deps.Session.Get()
			point := influx.CoinEventPoint(sess.ID.String(), sess.PlayerTag, ev)
			if err := m.deps.Influx.WritePoint(context.Background(), influx.BucketHuntData, point); err != nil {
				m.deps.Logger.Warn("failed to write coin event point", "error", err)
			}
		}

		switch ev.Kind {
		case core.EventTrackingModeChanged:
			m.recordModeSwitch(ev, obs)
		case core.EventCollectionComplete:
			m.completeCollection(ev.TargetID)
		}
	}
}

func (m *Manager) recordModeSwitch(ev core.Event, obs core.ObserverState) {
	m.mu.Lock()
	from := m.prevMode
	m.prevMode = ev.Mode
	m.modeSwitches++
	displacement := obs.Viewpoint.Position.Sub(m.prevViewpoint).Length()
	m.mu.Unlock()

	ms := core.ModeSwitch{
		Time:          ev.Time,
		From:          from,
		To:            ev.Mode,
		TrackingState: obs.TrackingState,
		Displacement:  displacement,
	}
	if err := m.backend.RecordModeSwitch(&ms); err != nil {
		m.deps.Logger.Error("failed to record mode switch", "error", err)
	}
	if m.deps.Influx != nil {
		sess := m.deps.Session.Get()
		point := influx.TrackingPoint(sess.ID.String(), ev.Time, ev.Mode, displacement, obs.TrackingState)
		if err := m.deps.Influx.WritePoint(context.Background(), influx.BucketTracking, point); err != nil {
			m.deps.Logger.Warn("failed to write tracking point", "error", err)
		}
	}
}

func (m *Manager) completeCollection(targetID uuid.UUID) {
	m.deps.Coins.MarkCollected(targetID)
	total := m.deps.Session.CoinCollected()
	if err := m.backend.MarkCoinCollected(targetID); err != nil {
		m.deps.Logger.Error("failed to mark coin collected", "target", targetID, "error", err)
	}
	m.deps.Logger.Info("coin collected", "target", targetID, "sessionTotal", total)
}

// noteTickLocally keeps the mode switch counter honest when no backend
// or session is active, so perf samples stay meaningful.
func (m *Manager) noteTickLocally(result engine.TickResult) {
	for _, ev := range result.Events {
		if ev.Kind == core.EventTrackingModeChanged {
			m.mu.Lock()
			m.prevMode = ev.Mode
			m.modeSwitches++
			m.mu.Unlock()
		}
	}
}

// ModeSwitchCount returns how many placement mode changes this manager
// has observed since creation.
func (m *Manager) ModeSwitchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modeSwitches
}

// TickCount returns the total number of engine ticks driven so far.
func (m *Manager) TickCount() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ticks
}

// LastTickDuration returns how long the most recent engine tick took.
func (m *Manager) LastTickDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastTickDuration
}

// LastDisplayMode returns the coin display mode from the most recent tick.
func (m *Manager) LastDisplayMode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastDisplay == "" {
		return "hidden"
	}
	return m.lastDisplay
}

// TicksPerSecond returns the tick rate measured over the last window.
func (m *Manager) TicksPerSecond() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ticksPerSecond
}

// DBWriteDurationProvider is an optional interface that backends can
// implement to expose their last flush duration for monitoring.
type DBWriteDurationProvider interface {
	LastWriteDuration() time.Duration
}

// LastDBWriteDuration returns the duration of the backend's last write
// cycle, or 0 when the backend does not track it.
func (m *Manager) LastDBWriteDuration() time.Duration {
	if p, ok := m.backend.(DBWriteDurationProvider); ok {
		return p.LastWriteDuration()
	}
	return 0
}
