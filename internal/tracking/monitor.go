// Package tracking decides, once per tick, whether the 6-DOF viewpoint can
// be trusted for coin placement or whether the engine must degrade to
// heading-only placement.
//
// The switch is asymmetrically hysteretic: degrading is eager (bad tracking
// state, or a stalled positional device), recovering additionally demands
// proof of life in the form of real viewpoint displacement. This keeps the
// mode from toggling every few frames on a marginal device.
package tracking

import (
	"github.com/geohunt/arcoin/pkg/core"
)

// Config holds the monitor thresholds.
type Config struct {
	// StillEpsilonMeters is the per-tick displacement below which the
	// viewpoint counts as stationary.
	StillEpsilonMeters float64
	// StillSeconds is how long the viewpoint must be stationary with no
	// positional device before degrading.
	StillSeconds float64
	// RecoverDisplacementMeters is the per-tick displacement that proves
	// the positional sensor is live again.
	RecoverDisplacementMeters float64
}

// DefaultConfig returns the shipped thresholds.
func DefaultConfig() Config {
	return Config{
		StillEpsilonMeters:        0.005,
		StillSeconds:              3.0,
		RecoverDisplacementMeters: 0.05,
	}
}

// Verdict is the monitor's per-tick output.
type Verdict struct {
	Mode    core.PlacementMode
	Changed bool
	// Displacement is the viewpoint displacement measured this tick.
	Displacement float64
}

// Monitor watches the tracking subsystem state and viewpoint displacement.
type Monitor struct {
	cfg Config

	mode         core.PlacementMode
	lastPosition core.Vec3
	hasLast      bool
	stillFor     float64
}

// NewMonitor creates a monitor starting in full-tracking mode.
func NewMonitor(cfg Config) *Monitor {
	if cfg.StillEpsilonMeters <= 0 {
		cfg.StillEpsilonMeters = DefaultConfig().StillEpsilonMeters
	}
	if cfg.StillSeconds <= 0 {
		cfg.StillSeconds = DefaultConfig().StillSeconds
	}
	if cfg.RecoverDisplacementMeters <= 0 {
		cfg.RecoverDisplacementMeters = DefaultConfig().RecoverDisplacementMeters
	}
	return &Monitor{cfg: cfg, mode: core.PlacementFull}
}

// Mode returns the mode selected on the last tick.
func (m *Monitor) Mode() core.PlacementMode {
	return m.mode
}

// Reset returns the monitor to full tracking with no displacement history.
func (m *Monitor) Reset() {
	m.mode = core.PlacementFull
	m.hasLast = false
	m.stillFor = 0
}

// Tick evaluates one frame. The returned verdict holds for the whole tick;
// callers must not mix it with a previous tick's mode.
func (m *Monitor) Tick(dt float64, state core.TrackingState, deviceActive bool, viewpoint core.Vec3) Verdict {
	displacement := 0.0
	if m.hasLast {
		displacement = viewpoint.Sub(m.lastPosition).Length()
	}
	m.lastPosition = viewpoint
	m.hasLast = true

	if displacement < m.cfg.StillEpsilonMeters {
		m.stillFor += dt
	} else {
		m.stillFor = 0
	}

	prev := m.mode
	switch m.mode {
	case core.PlacementFull:
		if state < core.TrackingNormal {
			m.mode = core.PlacementHeadingOnly
		} else if !deviceActive && m.stillFor >= m.cfg.StillSeconds {
			m.mode = core.PlacementHeadingOnly
		}
	case core.PlacementHeadingOnly:
		if state >= core.TrackingNormal && displacement > m.cfg.RecoverDisplacementMeters {
			m.mode = core.PlacementFull
			m.stillFor = 0
		}
	}

	return Verdict{
		Mode:         m.mode,
		Changed:      m.mode != prev,
		Displacement: displacement,
	}
}
