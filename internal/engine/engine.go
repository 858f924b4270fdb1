// Package engine is the owning context for the AR coin pipeline. It holds
// exactly one display state machine, resolves heading, distance and
// tracking mode in a fixed order each tick, and emits lifecycle events to
// the host.
//
// Everything runs on the host's render tick: no goroutines, no blocking
// calls. Sensor reads arrive as already-resolved snapshots inside
// ObserverState; GPS acquisition and collection confirmation round-trips
// live outside this package.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/geohunt/arcoin/internal/channel"
	"github.com/geohunt/arcoin/internal/geomath"
	"github.com/geohunt/arcoin/internal/heading"
	"github.com/geohunt/arcoin/internal/positioner"
	"github.com/geohunt/arcoin/internal/render"
	"github.com/geohunt/arcoin/internal/tracking"
	"github.com/geohunt/arcoin/pkg/core"
)

// ErrNoTarget is returned when an operation needs an active target.
var ErrNoTarget = errors.New("no active target")

// Config holds engine-level knobs.
type Config struct {
	// GPSStaleAfter is how old a fix may be before distance counts as
	// unknown. Zero disables the staleness check.
	GPSStaleAfter time.Duration
	// EventBuffer is the size of the event channel to the host.
	EventBuffer int

	Tracking tracking.Config
}

// DefaultConfig returns the shipped engine configuration.
func DefaultConfig() Config {
	return Config{
		GPSStaleAfter: 10 * time.Second,
		EventBuffer:   256,
		Tracking:      tracking.DefaultConfig(),
	}
}

// TickResult is the per-tick output the host renders from.
type TickResult struct {
	Mode      core.PlacementMode
	Display   render.DisplayMode
	Visible   bool
	Transform core.RenderTransform
	Heading   core.Heading

	DistanceKnown  bool
	DistanceMeters float64

	// Events are the lifecycle events that fired this tick, in order.
	// They are also delivered on the Events channel.
	Events []core.Event
}

// Engine drives one target's rendering pipeline.
type Engine struct {
	cfg Config
	log *slog.Logger

	headings  *heading.Chain
	converter *positioner.Converter
	monitor   *tracking.Monitor

	target *core.TargetPoint
	coin   *render.Coin

	baselineCaptured bool

	events  channel.Channel[core.Event]
	now     func() time.Time
	dropped int
}

// New creates an engine with no active target.
func New(cfg Config, log *slog.Logger) *Engine {
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = DefaultConfig().EventBuffer
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		cfg:       cfg,
		log:       log,
		headings:  heading.NewChain(),
		converter: positioner.New(),
		monitor:   tracking.NewMonitor(cfg.Tracking),
		events:    channel.New[core.Event](cfg.EventBuffer),
		now:       time.Now,
	}
}

// Events returns the lifecycle event stream. Emission never blocks the
// tick; events are dropped (and counted) when the host falls behind.
func (e *Engine) Events() channel.Receiver[core.Event] {
	return e.events
}

// DroppedEvents returns how many events were discarded because the host
// did not drain the channel.
func (e *Engine) DroppedEvents() int {
	return e.dropped
}

// BaselineHeading returns the heading captured on the first usable
// reading of the session, and whether one has been captured yet.
func (e *Engine) BaselineHeading() (float64, bool) {
	return e.converter.Baseline()
}

// ResetBaseline discards the captured heading so the next usable reading
// establishes a fresh reference frame. Hosts call this when a new
// session begins.
func (e *Engine) ResetBaseline() {
	e.converter.Reset()
	e.baselineCaptured = false
}

// Target returns the active target, if any.
func (e *Engine) Target() (core.TargetPoint, bool) {
	if e.target == nil {
		return core.TargetPoint{}, false
	}
	return *e.target, true
}

// Mode returns the placement mode from the last tick.
func (e *Engine) Mode() core.PlacementMode {
	return e.monitor.Mode()
}

// SetTarget replaces the active target. At most one target exists at a
// time: any previous coin is cancelled before the new one is installed,
// so two coins are never rendered in the same tick.
func (e *Engine) SetTarget(t core.TargetPoint) error {
	if err := t.Settings.Validate(); err != nil {
		return fmt.Errorf("rejecting target %s: %w", t.ID, err)
	}
	if e.target != nil {
		e.detach(core.EventTargetCleared)
	}
	e.target = &t
	e.coin = render.NewCoin(t.Settings)
	e.log.Info("target set",
		"target", t.ID, "name", t.Name,
		"lat", t.Coordinate.Latitude, "lon", t.Coordinate.Longitude)
	e.emit(core.Event{Kind: core.EventTargetSet, Time: e.now(), TargetID: t.ID, DistanceMeters: -1})
	return nil
}

// ClearTarget abandons the hunt: the coin is cancelled mid-animation if
// necessary and the engine goes idle.
func (e *Engine) ClearTarget() {
	if e.target == nil {
		return
	}
	e.detach(core.EventTargetCleared)
}

// AttemptCollect forwards the external collection command. It only
// succeeds while the coin is collectible; distance alone never starts a
// collection.
func (e *Engine) AttemptCollect() error {
	if e.target == nil || e.coin == nil {
		return ErrNoTarget
	}
	if !e.coin.BeginCollect() {
		return fmt.Errorf("target %s not collectible", e.target.ID)
	}
	e.log.Info("collection started", "target", e.target.ID)
	return nil
}

// Tick advances the pipeline one frame. Within the tick, distance and
// heading are recomputed first, the tracking verdict is taken second, the
// state machine evaluates transitions third, and the render transform
// falls out last. The placement mode is fixed for the whole tick.
func (e *Engine) Tick(dt float64, obs core.ObserverState) TickResult {
	now := e.now()

	// 1. Heading for this tick; capture the session baseline on the
	//    first usable reading.
	h := e.headings.Current(obs.Sensors)
	if !e.baselineCaptured && h.Method != core.HeadingNone {
		e.converter.CaptureBaseline(h.Degrees)
		e.baselineCaptured = true
		e.log.Debug("heading baseline captured", "degrees", h.Degrees, "method", h.Method.String())
	}

	// 2. Tracking verdict, atomic for the rest of the tick.
	verdict := e.monitor.Tick(dt, obs.TrackingState, obs.PositionalDeviceActive, obs.Viewpoint.Position)

	result := TickResult{Mode: verdict.Mode, Heading: h}

	if verdict.Changed {
		e.log.Info("placement mode changed",
			"mode", verdict.Mode.String(),
			"trackingState", obs.TrackingState.String(),
			"displacement", verdict.Displacement)
		ev := core.Event{
			Kind:           core.EventTrackingModeChanged,
			Time:           now,
			Mode:           verdict.Mode,
			Heading:        h,
			DistanceMeters: -1,
		}
		if e.target != nil {
			ev.TargetID = e.target.ID
		}
		result.Events = append(result.Events, ev)
		e.emit(ev)
	}

	if e.target == nil {
		return result
	}

	// 3. Distance and candidate offset.
	in := render.TickInput{
		Dt:        dt,
		Mode:      verdict.Mode,
		Viewpoint: obs.Viewpoint,
	}
	if obs.HasFix(now, e.cfg.GPSStaleAfter) {
		in.DistanceKnown = true
		in.Distance = geomath.DistanceMeters(*obs.Coordinate, e.target.Coordinate)

		var x, z float64
		if verdict.Mode == core.PlacementHeadingOnly {
			x, z = e.converter.ConvertCorrected(*obs.Coordinate, e.target.Coordinate, h.Degrees)
		} else {
			x, z = e.converter.Convert(*obs.Coordinate, e.target.Coordinate, h.Degrees)
		}
		in.Offset = core.Vec3{
			X: obs.Viewpoint.Position.X + x,
			Z: obs.Viewpoint.Position.Z + z,
		}
	}
	result.DistanceKnown = in.DistanceKnown
	result.DistanceMeters = in.Distance

	// 4. Transitions, then render transform.
	kinds := e.coin.Tick(in)
	for _, kind := range kinds {
		ev := core.Event{
			Kind:     kind,
			Time:     now,
			TargetID: e.target.ID,
			Mode:     verdict.Mode,
			Heading:  h,
		}
		if in.DistanceKnown {
			ev.DistanceMeters = in.Distance
		} else {
			ev.DistanceMeters = -1
		}
		result.Events = append(result.Events, ev)
		e.emit(ev)

		if kind == core.EventCollectionComplete {
			// The target is consumed; detach without a cleared event,
			// the completion event already tells the host.
			e.log.Info("target collected", "target", e.target.ID)
			e.target = nil
			e.coin = nil
		}
	}

	if e.coin != nil {
		result.Display = e.coin.Mode()
		result.Visible = e.coin.Visible()
		result.Transform = e.coin.Transform()
	}
	return result
}

func (e *Engine) detach(kind core.EventKind) {
	id := e.target.ID
	if e.coin != nil {
		e.coin.Cancel()
	}
	e.target = nil
	e.coin = nil
	e.log.Info("target detached", "target", id)
	e.emit(core.Event{Kind: kind, Time: e.now(), TargetID: id, DistanceMeters: -1})
}

// emit delivers an event without ever blocking the render tick.
func (e *Engine) emit(ev core.Event) {
	if e.events.TrySend(ev) {
		return
	}
	e.dropped++
	e.log.Warn("event dropped, host not draining", "kind", ev.Kind.String(), "dropped", e.dropped)
}
