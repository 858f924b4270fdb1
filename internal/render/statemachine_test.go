package render

import (
	"math"
	"testing"

	"github.com/geohunt/arcoin/pkg/core"
)

const tickDt = 1.0 / 30

func input(distance float64) TickInput {
	return TickInput{
		Dt:            tickDt,
		DistanceKnown: true,
		Distance:      distance,
		Mode:          core.PlacementFull,
		Offset:        core.Vec3{Z: distance},
		Viewpoint:     core.Pose{Position: core.Vec3{Y: 1.6}},
	}
}

func unknownInput() TickInput {
	in := input(0)
	in.DistanceKnown = false
	in.Distance = 0
	return in
}

// tickUntil runs the machine at a fixed distance until the mode matches or
// the tick budget runs out, collecting events.
func tickUntil(t *testing.T, c *Coin, distance float64, mode DisplayMode, maxTicks int) []core.EventKind {
	t.Helper()
	var events []core.EventKind
	for i := 0; i < maxTicks; i++ {
		events = append(events, c.Tick(input(distance))...)
		if c.Mode() == mode {
			return events
		}
	}
	t.Fatalf("mode %s not reached within %d ticks (stuck in %s)", mode, maxTicks, c.Mode())
	return nil
}

func countEvents(events []core.EventKind, kind core.EventKind) int {
	n := 0
	for _, e := range events {
		if e == kind {
			n++
		}
	}
	return n
}

func TestCoin_StartsHidden(t *testing.T) {
	c := NewCoin(settings())
	if c.Mode() != ModeHidden {
		t.Errorf("expected hidden start, got %s", c.Mode())
	}
	if c.Visible() {
		t.Error("expected not visible at start")
	}
}

func TestCoin_UnknownDistanceNeverLeavesHidden(t *testing.T) {
	c := NewCoin(settings())
	for i := 0; i < 300; i++ {
		if events := c.Tick(unknownInput()); len(events) != 0 {
			t.Fatalf("unexpected events with unknown distance: %v", events)
		}
	}
	if c.Mode() != ModeHidden {
		t.Errorf("expected hidden with unknown distance, got %s", c.Mode())
	}
}

func TestCoin_MaterializesInsideThreshold(t *testing.T) {
	c := NewCoin(settings())

	c.Tick(input(150))
	if c.Mode() != ModeHidden {
		t.Fatalf("expected hidden outside threshold, got %s", c.Mode())
	}

	c.Tick(input(80))
	if c.Mode() != ModeMaterializing {
		t.Fatalf("expected materializing inside threshold, got %s", c.Mode())
	}
	if !c.Visible() {
		t.Error("expected visible during materialization")
	}
}

func TestCoin_HiddenOnlyReachesMaterializing(t *testing.T) {
	// Even a coin already inside collection range must pass through the
	// materialization animation; Hidden never jumps to Visible or
	// Collectible directly.
	c := NewCoin(settings())
	c.Tick(input(3))
	if c.Mode() != ModeMaterializing {
		t.Errorf("expected materializing from hidden at close range, got %s", c.Mode())
	}
}

func TestCoin_MaterializationPinsAheadOfObserver(t *testing.T) {
	s := settings()
	c := NewCoin(s)
	in := input(50)
	in.Viewpoint = core.Pose{Position: core.Vec3{X: 10, Y: 1.6, Z: 5}, YawDegrees: 90}

	c.Tick(in)
	c.Tick(in) // first materializing frame computes the transform

	pos := c.Transform().Position
	// Facing east: pinned MaterializeForward meters along +X, raised by
	// MaterializeHeight.
	if math.Abs(pos.X-(10+s.MaterializeForward)) > 1e-9 {
		t.Errorf("expected pinned X %f, got %f", 10+s.MaterializeForward, pos.X)
	}
	if math.Abs(pos.Y-(1.6+s.MaterializeHeight)) > 1e-9 {
		t.Errorf("expected pinned Y %f, got %f", 1.6+s.MaterializeHeight, pos.Y)
	}
}

func TestCoin_MaterializationScaleRampsUp(t *testing.T) {
	c := NewCoin(settings())
	c.Tick(input(50))

	prev := -1.0
	for c.Mode() == ModeMaterializing {
		c.Tick(input(50))
		scale := c.Transform().Scale
		if scale < prev-1e-9 {
			t.Fatalf("materialization scale decreased: %f -> %f", prev, scale)
		}
		prev = scale
	}
	want := SteppedScale(50, settings())
	if math.Abs(prev-want) > 1e-6 {
		t.Errorf("expected final scale %f, got %f", want, prev)
	}
}

func TestCoin_MaterializedEventFiresExactlyOnce(t *testing.T) {
	c := NewCoin(settings())
	events := tickUntil(t, c, 50, ModeVisible, 60)

	if got := countEvents(events, core.EventMaterialized); got != 1 {
		t.Errorf("expected exactly one materialized event, got %d", got)
	}

	// More visible ticks fire nothing further.
	for i := 0; i < 60; i++ {
		if evs := c.Tick(input(50)); len(evs) != 0 {
			t.Fatalf("unexpected events while visible: %v", evs)
		}
	}
}

func TestCoin_MaterializationDuration(t *testing.T) {
	s := settings()
	c := NewCoin(s)
	c.Tick(input(50))

	ticks := 0
	for c.Mode() == ModeMaterializing {
		c.Tick(input(50))
		ticks++
		if ticks > 1000 {
			t.Fatal("materialization never completed")
		}
	}
	// One tick of slack for floating point accumulation of dt.
	want := int(math.Ceil(s.MaterializeSeconds / tickDt))
	if ticks != want && ticks != want+1 {
		t.Errorf("expected ~%d materializing ticks, got %d", want, ticks)
	}
}

func TestCoin_HysteresisNoFlapping(t *testing.T) {
	s := settings() // materialize 100, hide 120
	c := NewCoin(s)
	tickUntil(t, c, 99, ModeVisible, 60)

	// Oscillating around the materialization boundary must not re-hide;
	// only crossing hideDistance does.
	for i := 0; i < 200; i++ {
		d := 99.0
		if i%2 == 0 {
			d = 101.0
		}
		c.Tick(input(d))
		if c.Mode() != ModeVisible {
			t.Fatalf("flapped to %s at the materialization boundary", c.Mode())
		}
	}

	c.Tick(input(121))
	if c.Mode() != ModeHidden {
		t.Errorf("expected hidden past hideDistance, got %s", c.Mode())
	}
}

func TestCoin_ReApproachReplaysEntrance(t *testing.T) {
	c := NewCoin(settings())
	tickUntil(t, c, 50, ModeVisible, 60)

	c.Tick(input(130)) // past hide distance
	if c.Mode() != ModeHidden {
		t.Fatal("expected hidden after retreat")
	}

	events := tickUntil(t, c, 50, ModeVisible, 60)
	if got := countEvents(events, core.EventMaterialized); got != 1 {
		t.Errorf("expected one materialized event per approach cycle, got %d", got)
	}
}

func TestCoin_CollectionRangeEvents(t *testing.T) {
	c := NewCoin(settings())
	tickUntil(t, c, 50, ModeVisible, 60)

	events := c.Tick(input(4))
	if c.Mode() != ModeCollectible {
		t.Fatalf("expected collectible at 4m, got %s", c.Mode())
	}
	if got := countEvents(events, core.EventEnteredCollectionRange); got != 1 {
		t.Errorf("expected one entered event, got %d", got)
	}

	events = c.Tick(input(6))
	if c.Mode() != ModeVisible {
		t.Fatalf("expected visible at 6m, got %s", c.Mode())
	}
	if got := countEvents(events, core.EventExitedCollectionRange); got != 1 {
		t.Errorf("expected one exited event, got %d", got)
	}
}

func TestCoin_CollectiblePulses(t *testing.T) {
	c := NewCoin(settings())
	tickUntil(t, c, 50, ModeVisible, 60)
	c.Tick(input(4))

	base := SteppedScale(4, settings()) * CollectionRamp(4, settings())
	sawDifferent := false
	for i := 0; i < 60; i++ {
		c.Tick(input(4))
		if math.Abs(c.Transform().Scale-base) > 1e-6 {
			sawDifferent = true
		}
	}
	if !sawDifferent {
		t.Error("expected pulsing scale while collectible")
	}
}

func TestCoin_BeginCollectOnlyWhenCollectible(t *testing.T) {
	c := NewCoin(settings())
	if c.BeginCollect() {
		t.Error("collect must not start from hidden")
	}
	tickUntil(t, c, 50, ModeVisible, 60)
	if c.BeginCollect() {
		t.Error("collect must not start from visible")
	}
	c.Tick(input(4))
	if !c.BeginCollect() {
		t.Error("expected collect to start from collectible")
	}
	if c.Mode() != ModeCollecting {
		t.Errorf("expected collecting, got %s", c.Mode())
	}
}

func TestCoin_CollectingIgnoresDistance(t *testing.T) {
	c := NewCoin(settings())
	tickUntil(t, c, 50, ModeVisible, 60)
	c.Tick(input(4))
	c.BeginCollect()

	// Distance spiking past every threshold must not interrupt the
	// animation; only completion resets.
	c.Tick(input(500))
	if c.Mode() != ModeCollecting {
		t.Errorf("expected collecting to be non-interruptible, got %s", c.Mode())
	}
}

func TestCoin_ScenarioApproachMaterializeVisible(t *testing.T) {
	// Walking approach: far fix holds Hidden, the next fix falls inside
	// the threshold, and after the entrance animation the coin is
	// Visible exactly once.
	s := settings()
	s.MaterializationDistance = 85
	c := NewCoin(s)

	c.Tick(input(88.9))
	if c.Mode() != ModeHidden {
		t.Fatalf("expected hidden at 88.9m, got %s", c.Mode())
	}

	c.Tick(input(80))
	if c.Mode() != ModeMaterializing {
		t.Fatalf("expected materializing at 80m, got %s", c.Mode())
	}

	var events []core.EventKind
	elapsed := 0.0
	for elapsed < 1.0 {
		events = append(events, c.Tick(input(80))...)
		elapsed += tickDt
	}
	if c.Mode() != ModeVisible {
		t.Errorf("expected visible after entrance animation, got %s", c.Mode())
	}
	if got := countEvents(events, core.EventMaterialized); got != 1 {
		t.Errorf("expected one materialized event, got %d", got)
	}
}

func TestCoin_ScenarioCollectCycle(t *testing.T) {
	// Visible at 4m with collectionDistance 5 -> Collectible; external
	// collect command -> Collecting -> Hidden with exactly one
	// completion event.
	c := NewCoin(settings())
	tickUntil(t, c, 50, ModeVisible, 60)

	c.Tick(input(4))
	if c.Mode() != ModeCollectible {
		t.Fatalf("expected collectible, got %s", c.Mode())
	}
	if !c.BeginCollect() {
		t.Fatal("expected collect to start")
	}

	var events []core.EventKind
	for i := 0; i < 300 && c.Mode() == ModeCollecting; i++ {
		events = append(events, c.Tick(input(4))...)
	}
	if c.Mode() != ModeHidden {
		t.Fatalf("expected hidden after collection, got %s", c.Mode())
	}
	if got := countEvents(events, core.EventCollectionComplete); got != 1 {
		t.Errorf("expected exactly one collection complete event, got %d", got)
	}
}

func TestCoin_StaleGPSFreezesPlacement(t *testing.T) {
	c := NewCoin(settings())
	tickUntil(t, c, 50, ModeVisible, 60)
	c.Tick(input(50))
	frozen := c.Transform().Position

	for i := 0; i < 30; i++ {
		if evs := c.Tick(unknownInput()); len(evs) != 0 {
			t.Fatalf("unexpected events on stale GPS: %v", evs)
		}
	}
	if c.Mode() != ModeVisible {
		t.Errorf("expected visible to hold on stale GPS, got %s", c.Mode())
	}
	if c.Transform().Position != frozen {
		t.Error("expected frozen position on stale GPS")
	}
}

func TestCoin_SpinContinuesWhileFrozen(t *testing.T) {
	c := NewCoin(settings())
	tickUntil(t, c, 50, ModeVisible, 60)
	c.Tick(input(50))
	yaw := c.Transform().YawDegrees

	c.Tick(unknownInput())
	if c.Transform().YawDegrees == yaw {
		t.Error("expected spin to continue while placement is frozen")
	}
}

func TestCoin_BillboardOnlyWithFullTracking(t *testing.T) {
	makeVisible := func(mode core.PlacementMode) *Coin {
		c := NewCoin(settings())
		for i := 0; i < 60 && c.Mode() != ModeVisible; i++ {
			in := input(50)
			in.Mode = mode
			c.Tick(in)
		}
		return c
	}

	full := makeVisible(core.PlacementFull)
	headingOnly := makeVisible(core.PlacementHeadingOnly)

	// Coin sits off to the side; full tracking turns it to face the
	// observer, heading-only leaves spin as the only rotation.
	in := input(50)
	in.Offset = core.Vec3{X: 30, Z: 40}
	full.Tick(in)

	inHeading := in
	inHeading.Mode = core.PlacementHeadingOnly
	headingOnly.Tick(inHeading)

	if full.Transform().YawDegrees == headingOnly.Transform().YawDegrees {
		t.Error("expected billboard yaw to differ between placement modes")
	}
}

func TestCoin_CancelLeavesNoPartialState(t *testing.T) {
	c := NewCoin(settings())
	tickUntil(t, c, 50, ModeVisible, 60)
	c.Tick(input(4))
	c.BeginCollect()
	c.Tick(input(4))

	c.Cancel()
	if c.Mode() != ModeHidden {
		t.Errorf("expected hidden after cancel, got %s", c.Mode())
	}
	if c.Visible() {
		t.Error("expected not visible after cancel")
	}
	if (c.Transform() != core.RenderTransform{}) {
		t.Error("expected zeroed transform after cancel")
	}

	// And a future approach replays the full cycle.
	events := tickUntil(t, c, 50, ModeVisible, 60)
	if got := countEvents(events, core.EventMaterialized); got != 1 {
		t.Errorf("expected fresh materialization after cancel, got %d events", got)
	}
}
