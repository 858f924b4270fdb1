// Package render owns the coin display state machine: the discrete mode a
// target is in (hidden, materializing, visible, collectible, collecting),
// the materialization and collection animations, and the distance-adaptive
// scale, spin and billboard rules.
//
// The machine is strictly tick-driven and single-threaded. No transition
// throws; every edge is a plain conditional, and the worst failure mode is
// a coin that never appears.
package render

import (
	"math"

	"github.com/geohunt/arcoin/pkg/core"
)

// DisplayMode is the discrete state of the rendered coin.
type DisplayMode int

const (
	ModeHidden DisplayMode = iota
	ModeMaterializing
	ModeVisible
	ModeCollectible
	ModeCollecting
)

func (m DisplayMode) String() string {
	switch m {
	case ModeHidden:
		return "hidden"
	case ModeMaterializing:
		return "materializing"
	case ModeVisible:
		return "visible"
	case ModeCollectible:
		return "collectible"
	case ModeCollecting:
		return "collecting"
	default:
		return "unknown"
	}
}

// TickInput is everything the machine consumes on one tick. Distance and
// offset are recomputed by the caller before transitions are evaluated;
// the placement mode must be this tick's verdict, never a stale one.
type TickInput struct {
	Dt float64

	// DistanceKnown is false when the observer GPS is absent or stale.
	// The machine then holds its current state and position.
	DistanceKnown bool
	Distance      float64

	Mode core.PlacementMode

	// Offset is the candidate coin position in render space for this
	// tick, already computed by the active placement strategy.
	Offset core.Vec3

	Viewpoint core.Pose
}

// Coin runs the display state machine for one target point.
type Coin struct {
	settings core.DisplaySettings

	mode      DisplayMode
	transform core.RenderTransform
	visible   bool

	// Materializing state: position pinned at entry, scale animated up
	// to the distance-appropriate value.
	animElapsed float64
	pinned      core.Vec3
	entryScale  float64

	// Spin and pulse phases.
	spinDegrees  float64
	pulseSeconds float64

	collect *CollectionAnimation
}

// NewCoin creates a machine in the Hidden state.
func NewCoin(settings core.DisplaySettings) *Coin {
	return &Coin{settings: settings}
}

// Mode returns the current display mode.
func (c *Coin) Mode() DisplayMode { return c.mode }

// Visible reports whether the coin should currently be rendered at all.
func (c *Coin) Visible() bool { return c.visible }

// Transform returns the render transform computed on the last tick.
// Meaningless while hidden.
func (c *Coin) Transform() core.RenderTransform { return c.transform }

// Tick advances the machine one frame and returns the lifecycle events
// that fired, in order. Transitions are evaluated before the render
// transform is computed, so a tick never renders with a stale mode.
func (c *Coin) Tick(in TickInput) []core.EventKind {
	var events []core.EventKind

	switch c.mode {
	case ModeHidden:
		// Unknown distance must never materialize a coin.
		if in.DistanceKnown && in.Distance <= c.settings.MaterializationDistance {
			c.beginMaterialize(in)
		}

	case ModeMaterializing:
		c.animElapsed += in.Dt
		t := c.animElapsed / c.settings.MaterializeSeconds
		c.advanceSpin(in.Dt, false)
		c.transform = core.RenderTransform{
			Position:   c.pinned,
			YawDegrees: c.yawFor(in, c.pinned),
			Scale:      c.entryScale * easeOutCubic(t),
		}
		if t >= 1 {
			c.mode = ModeVisible
			events = append(events, core.EventMaterialized)
		}

	case ModeVisible:
		if in.DistanceKnown && in.Distance > c.settings.HideDistance {
			// Hysteresis exit: only past hideDistance, never at the
			// materialization boundary. Resets the entrance animation.
			c.reset()
			break
		}
		if in.DistanceKnown && in.Distance <= c.settings.CollectionDistance {
			c.mode = ModeCollectible
			c.pulseSeconds = 0
			events = append(events, core.EventEnteredCollectionRange)
		}
		c.renderPlaced(in)

	case ModeCollectible:
		if in.DistanceKnown && in.Distance > c.settings.HideDistance {
			c.reset()
			break
		}
		if in.DistanceKnown && in.Distance > c.settings.CollectionDistance {
			c.mode = ModeVisible
			events = append(events, core.EventExitedCollectionRange)
			c.renderPlaced(in)
			break
		}
		c.pulseSeconds += in.Dt
		c.renderPlaced(in)
		c.transform.Scale *= Pulse(c.pulseSeconds)

	case ModeCollecting:
		pos, scale, done := c.collect.Tick(in.Dt, in.Viewpoint.Position)
		c.advanceSpin(in.Dt, true)
		c.transform = core.RenderTransform{
			Position:   pos,
			YawDegrees: c.spinDegrees,
			Scale:      scale,
		}
		if done {
			c.reset()
			events = append(events, core.EventCollectionComplete)
		}
	}

	return events
}

// BeginCollect starts the collection animation. Only an explicit external
// command enters Collecting, and only from the Collectible state; distance
// alone never does. Returns false when the coin is not collectible.
func (c *Coin) BeginCollect() bool {
	if c.mode != ModeCollectible {
		return false
	}
	c.mode = ModeCollecting
	c.collect = NewCollectionAnimation(
		c.transform.Position,
		c.transform.Scale,
		c.settings.CollectSeconds,
	)
	return true
}

// Cancel force-resets the machine to Hidden without completing any visual
// effect and without emitting events. Used when the hunt is abandoned or
// the target is externally destroyed mid-animation.
func (c *Coin) Cancel() {
	if c.collect != nil {
		c.collect.Cancel()
	}
	c.reset()
}

func (c *Coin) reset() {
	c.mode = ModeHidden
	c.visible = false
	c.animElapsed = 0
	c.pulseSeconds = 0
	c.collect = nil
	c.transform = core.RenderTransform{}
}

// beginMaterialize pins the entry position directly ahead of the
// observer's current facing direction. Which "forward" that is depends on
// this tick's placement verdict.
func (c *Coin) beginMaterialize(in TickInput) {
	forward := in.Viewpoint.Forward()
	c.pinned = in.Viewpoint.Position.
		Add(forward.Scale(c.settings.MaterializeForward)).
		Add(core.Vec3{Y: c.settings.MaterializeHeight})
	c.entryScale = SteppedScale(in.Distance, c.settings) * CollectionRamp(in.Distance, c.settings)
	c.animElapsed = 0
	c.visible = true
	c.mode = ModeMaterializing
}

// renderPlaced computes the continuously-repositioned transform used in
// Visible and Collectible. Unknown distance freezes the previous position
// and scale; the coin keeps spinning in place.
func (c *Coin) renderPlaced(in TickInput) {
	c.advanceSpin(in.Dt, false)

	if !in.DistanceKnown {
		c.transform.YawDegrees = c.yawFor(in, c.transform.Position)
		return
	}

	pos := in.Offset
	pos.Y += c.settings.MaterializeHeight
	c.transform = core.RenderTransform{
		Position:   pos,
		YawDegrees: c.yawFor(in, pos),
		Scale:      SteppedScale(in.Distance, c.settings) * CollectionRamp(in.Distance, c.settings),
	}
}

// yawFor combines spin with billboard facing. With full tracking the coin
// additionally yaws to face the observer about the vertical axis only;
// heading-only placement spins in place.
func (c *Coin) yawFor(in TickInput, position core.Vec3) float64 {
	if in.Mode != core.PlacementFull {
		return c.spinDegrees
	}
	toObserver := in.Viewpoint.Position.Sub(position)
	billboard := math.Atan2(toObserver.X, toObserver.Z) * 180 / math.Pi
	return billboard + c.spinDegrees
}

// advanceSpin integrates the spin angle. Collecting accelerates the spin
// toward the collect rate as the animation progresses.
func (c *Coin) advanceSpin(dt float64, collecting bool) {
	rate := c.settings.IdleSpinDegPerSec
	if collecting && c.collect != nil {
		t := c.collect.Progress()
		rate = rate + (c.settings.CollectSpinDegPerSec-rate)*t
	}
	c.spinDegrees = math.Mod(c.spinDegrees+rate*dt, 360)
}
