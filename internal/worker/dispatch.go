package worker

import (
	"fmt"

	"github.com/geohunt/arcoin/internal/dispatcher"
	"github.com/geohunt/arcoin/internal/util"
)

// RegisterHandlers registers all hunt command handlers with the dispatcher.
// Session and target commands run synchronously so the engine and caches
// are consistent before the next tick; high-volume feed updates are
// buffered so a slow backend never stalls the producer.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Session lifecycle - sync (everything after depends on it)
	d.Register("startSession", m.handleStartSession, dispatcher.Logged())
	d.Register("endSession", m.handleEndSession, dispatcher.Logged())

	// Target commands - sync (the engine must see them before the next tick)
	d.Register("setTarget", m.handleSetTarget, dispatcher.Logged())
	d.Register("clearTarget", m.handleClearTarget, dispatcher.Logged())
	d.Register("attemptCollect", m.handleAttemptCollect, dispatcher.Logged())

	// Observer feed updates - buffered
	d.Register("gpsFix", m.handleGPSFix, dispatcher.Buffered(1000), dispatcher.Logged())
	d.Register("poseUpdate", m.handlePose, dispatcher.Buffered(5000))
	d.Register("sensorUpdate", m.handleSensors, dispatcher.Buffered(5000))
	d.Register("trackingUpdate", m.handleTrackingState, dispatcher.Buffered(1000), dispatcher.Logged())
}

func (m *Manager) handleStartSession(c dispatcher.Command) (any, error) {
	parsed, err := m.deps.Parser.ParseStartSession(c.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	sess := m.deps.Session.Begin(parsed.PlayerTag, parsed.AppVersion, parsed.EngineVersion, parsed.DeviceModel)
	m.deps.Coins.Reset()

	// A new session gets a fresh reference frame: drop the previous
	// heading baseline and stamp the next one into this session.
	m.engine.ResetBaseline()
	m.mu.Lock()
	m.baselineStamped = false
	m.mu.Unlock()

	if m.backend != nil {
		if err := m.backend.StartSession(&sess); err != nil {
			return nil, fmt.Errorf("failed to persist session start: %w", err)
		}
	}

	return sess.ID.String(), nil
}

func (m *Manager) handleEndSession(c dispatcher.Command) (any, error) {
	if !m.deps.Session.Active() {
		return nil, fmt.Errorf("no active session")
	}

	m.engine.ClearTarget()
	sess := m.deps.Session.End()

	if m.backend != nil {
		if err := m.backend.EndSession(); err != nil {
			return nil, fmt.Errorf("failed to persist session end: %w", err)
		}
	}

	m.deps.Logger.Info("session ended",
		"session", sess.ID,
		"duration", sess.EndTime.Sub(sess.StartTime),
		"coinsCollected", m.deps.Session.CoinsCollected())
	return "ok", nil
}

func (m *Manager) handleSetTarget(c dispatcher.Command) (any, error) {
	target, err := m.deps.Parser.ParseSetTarget(c.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to set target: %w", err)
	}

	// Always cache so collection and export can resolve the coin later
	m.deps.Coins.Add(target)

	if err := m.engine.SetTarget(target); err != nil {
		return nil, err
	}

	if m.backend != nil {
		if err := m.backend.SetCoin(&target); err != nil {
			return nil, fmt.Errorf("failed to persist target: %w", err)
		}
	}

	return util.FormatTargetText(target.Name, target.ID.String()), nil
}

func (m *Manager) handleClearTarget(c dispatcher.Command) (any, error) {
	m.engine.ClearTarget()
	return "ok", nil
}

func (m *Manager) handleAttemptCollect(c dispatcher.Command) (any, error) {
	if err := m.engine.AttemptCollect(); err != nil {
		return nil, err
	}
	return "ok", nil
}

func (m *Manager) handleGPSFix(c dispatcher.Command) (any, error) {
	coord, fixTime, accuracy, err := m.deps.Parser.ParseGPSFix(c.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to apply gps fix: %w", err)
	}

	m.mu.Lock()
	m.coord = coord
	m.obs.Coordinate = &m.coord
	m.obs.FixTime = fixTime
	m.obs.FixAccuracy = accuracy
	m.mu.Unlock()

	return nil, nil
}

func (m *Manager) handlePose(c dispatcher.Command) (any, error) {
	pose, err := m.deps.Parser.ParsePose(c.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to apply pose update: %w", err)
	}

	m.mu.Lock()
	m.obs.Viewpoint = pose
	m.mu.Unlock()

	return nil, nil
}

func (m *Manager) handleSensors(c dispatcher.Command) (any, error) {
	snap, err := m.deps.Parser.ParseSensors(c.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to apply sensor update: %w", err)
	}

	m.mu.Lock()
	m.obs.Sensors = snap
	m.mu.Unlock()

	return nil, nil
}

func (m *Manager) handleTrackingState(c dispatcher.Command) (any, error) {
	state, deviceActive, err := m.deps.Parser.ParseTrackingState(c.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to apply tracking update: %w", err)
	}

	m.mu.Lock()
	m.obs.TrackingState = state
	m.obs.PositionalDeviceActive = deviceActive
	m.mu.Unlock()

	return nil, nil
}
