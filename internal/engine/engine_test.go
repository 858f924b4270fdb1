package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/geohunt/arcoin/internal/geomath"
	"github.com/geohunt/arcoin/internal/render"
	"github.com/geohunt/arcoin/pkg/core"
)

const dt = 1.0 / 30

var base = core.GeoCoordinate{Latitude: 37.0, Longitude: -122.0}

func newTestEngine() *Engine {
	return New(DefaultConfig(), nil)
}

func testTarget(distanceMeters float64) core.TargetPoint {
	return core.TargetPoint{
		ID:         uuid.New(),
		Name:       "test coin",
		Coordinate: geomath.Destination(base, 90, distanceMeters),
		Settings:   core.DefaultDisplaySettings(),
	}
}

// observerAt builds a healthy observer at the given distance west of the
// target line, facing east, with full tracking.
func observerAt(coord core.GeoCoordinate) core.ObserverState {
	return core.ObserverState{
		Coordinate:             &coord,
		FixTime:                time.Now(),
		FixAccuracy:            3,
		Sensors:                core.SensorSnapshot{CompassEnabled: true, CompassDegrees: 90},
		Viewpoint:              core.Pose{Position: core.Vec3{Y: 1.6}, YawDegrees: 90},
		TrackingState:          core.TrackingExcellent,
		PositionalDeviceActive: true,
	}
}

// tickUntilDisplay drives the engine at a fixed observer position until
// the display mode matches, returning all events seen.
func tickUntilDisplay(t *testing.T, e *Engine, obs core.ObserverState, mode render.DisplayMode, maxTicks int) []core.Event {
	t.Helper()
	var events []core.Event
	for i := 0; i < maxTicks; i++ {
		// Wiggle the viewpoint so the tracking monitor sees a live
		// positional device.
		obs.Viewpoint.Position.X += 0.01
		r := e.Tick(dt, obs)
		events = append(events, r.Events...)
		if r.Display == mode {
			return events
		}
	}
	t.Fatalf("display mode %s not reached in %d ticks", mode, maxTicks)
	return nil
}

func countKind(events []core.Event, kind core.EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func TestEngine_BaselineHeadingLifecycle(t *testing.T) {
	e := newTestEngine()

	if _, ok := e.BaselineHeading(); ok {
		t.Fatal("expected no baseline before the first tick")
	}

	e.Tick(dt, observerAt(base))
	deg, ok := e.BaselineHeading()
	if !ok {
		t.Fatal("expected baseline after first usable heading")
	}
	if deg != 90 {
		t.Errorf("expected baseline 90, got %f", deg)
	}

	// The baseline is fixed for the session: a later reading must not
	// move it.
	obs := observerAt(base)
	obs.Sensors.CompassDegrees = 250
	e.Tick(dt, obs)
	if deg, _ := e.BaselineHeading(); deg != 90 {
		t.Errorf("expected baseline to stay at 90, got %f", deg)
	}

	// After a reset the next usable reading establishes a new frame.
	e.ResetBaseline()
	if _, ok := e.BaselineHeading(); ok {
		t.Error("expected no baseline after reset")
	}
	e.Tick(dt, obs)
	if deg, _ := e.BaselineHeading(); deg != 250 {
		t.Errorf("expected new baseline 250, got %f", deg)
	}
}

func TestEngine_SetTargetValidatesSettings(t *testing.T) {
	e := newTestEngine()
	bad := testTarget(50)
	bad.Settings.CollectionDistance = 200 // above materialization

	if err := e.SetTarget(bad); !errors.Is(err, core.ErrSettingsInvalid) {
		t.Errorf("expected settings validation error, got %v", err)
	}
	if _, ok := e.Target(); ok {
		t.Error("expected no target installed after rejection")
	}
}

func TestEngine_SingleActiveTarget(t *testing.T) {
	e := newTestEngine()
	first := testTarget(50)
	second := testTarget(70)

	if err := e.SetTarget(first); err != nil {
		t.Fatal(err)
	}
	// Materialize the first coin.
	tickUntilDisplay(t, e, observerAt(base), render.ModeVisible, 120)

	if err := e.SetTarget(second); err != nil {
		t.Fatal(err)
	}
	got, ok := e.Target()
	if !ok || got.ID != second.ID {
		t.Fatal("expected second target active")
	}

	// The new coin starts from Hidden: nothing is rendered until it
	// materializes on its own, so two coins never coexist.
	obs := observerAt(base)
	r := e.Tick(dt, obs)
	if r.Display == render.ModeVisible {
		t.Error("expected fresh target to restart from hidden, not inherit visibility")
	}

	// The cleared event for the first target was emitted.
	sawCleared := false
	for len(e.Events().Receive()) > 0 {
		ev := <-e.Events().Receive()
		if ev.Kind == core.EventTargetCleared && ev.TargetID == first.ID {
			sawCleared = true
		}
	}
	if !sawCleared {
		t.Error("expected target_cleared event for the replaced target")
	}
}

func TestEngine_ApproachAndCollect(t *testing.T) {
	e := newTestEngine()
	target := testTarget(150)
	if err := e.SetTarget(target); err != nil {
		t.Fatal(err)
	}

	// Beyond materialization range: stays hidden.
	obs := observerAt(base)
	for i := 0; i < 30; i++ {
		obs.Viewpoint.Position.X += 0.01
		if r := e.Tick(dt, obs); r.Display != render.ModeHidden {
			t.Fatalf("expected hidden at 150m, got %s", r.Display)
		}
	}

	// Walk to 80m: materializes, then goes visible.
	obs = observerAt(geomath.Destination(base, 90, 70))
	events := tickUntilDisplay(t, e, obs, render.ModeVisible, 120)
	if countKind(events, core.EventMaterialized) != 1 {
		t.Error("expected exactly one materialized event")
	}

	// Walk to 4m: collectible.
	obs = observerAt(geomath.Destination(base, 90, 146))
	events = tickUntilDisplay(t, e, obs, render.ModeCollectible, 120)
	if countKind(events, core.EventEnteredCollectionRange) != 1 {
		t.Error("expected exactly one entered-range event")
	}

	// External collect command, then the animation runs to completion.
	if err := e.AttemptCollect(); err != nil {
		t.Fatalf("expected collect to start: %v", err)
	}
	var collected []core.Event
	for i := 0; i < 60; i++ {
		obs.Viewpoint.Position.X += 0.01
		r := e.Tick(dt, obs)
		collected = append(collected, r.Events...)
	}
	if countKind(collected, core.EventCollectionComplete) != 1 {
		t.Error("expected exactly one collection-complete event")
	}
	if _, ok := e.Target(); ok {
		t.Error("expected target detached after collection")
	}
}

func TestEngine_AttemptCollectGates(t *testing.T) {
	e := newTestEngine()

	if err := e.AttemptCollect(); !errors.Is(err, ErrNoTarget) {
		t.Errorf("expected ErrNoTarget, got %v", err)
	}

	if err := e.SetTarget(testTarget(50)); err != nil {
		t.Fatal(err)
	}
	tickUntilDisplay(t, e, observerAt(base), render.ModeVisible, 120)

	// Visible but not in collection range: collect refused.
	if err := e.AttemptCollect(); err == nil {
		t.Error("expected collect to be refused outside collection range")
	}
}

func TestEngine_NoFixHoldsHidden(t *testing.T) {
	e := newTestEngine()
	if err := e.SetTarget(testTarget(50)); err != nil {
		t.Fatal(err)
	}

	obs := observerAt(base)
	obs.Coordinate = nil
	for i := 0; i < 120; i++ {
		r := e.Tick(dt, obs)
		if r.Display != render.ModeHidden {
			t.Fatalf("expected hidden without GPS, got %s", r.Display)
		}
		if r.DistanceKnown {
			t.Fatal("expected unknown distance without GPS")
		}
	}
}

func TestEngine_StaleFixTreatedAsUnknown(t *testing.T) {
	e := newTestEngine()
	if err := e.SetTarget(testTarget(50)); err != nil {
		t.Fatal(err)
	}

	obs := observerAt(base)
	obs.FixTime = time.Now().Add(-time.Minute)
	r := e.Tick(dt, obs)
	if r.DistanceKnown {
		t.Error("expected stale fix to count as unknown distance")
	}
}

func TestEngine_TrackingDegradationEmitsEvent(t *testing.T) {
	e := newTestEngine()
	if err := e.SetTarget(testTarget(50)); err != nil {
		t.Fatal(err)
	}

	obs := observerAt(base)
	obs.TrackingState = core.TrackingNone
	r := e.Tick(dt, obs)

	if r.Mode != core.PlacementHeadingOnly {
		t.Fatalf("expected heading-only mode, got %s", r.Mode)
	}
	if countKind(r.Events, core.EventTrackingModeChanged) != 1 {
		t.Error("expected a tracking-mode-changed event")
	}
}

func TestEngine_ClearTargetCancelsMidCollect(t *testing.T) {
	e := newTestEngine()
	if err := e.SetTarget(testTarget(50)); err != nil {
		t.Fatal(err)
	}
	obs := observerAt(geomath.Destination(base, 90, 46))
	tickUntilDisplay(t, e, obs, render.ModeCollectible, 240)
	if err := e.AttemptCollect(); err != nil {
		t.Fatal(err)
	}
	e.Tick(dt, obs)

	e.ClearTarget()
	if _, ok := e.Target(); ok {
		t.Fatal("expected no target after clear")
	}

	// No completion event may surface after cancellation.
	for i := 0; i < 60; i++ {
		r := e.Tick(dt, obs)
		if countKind(r.Events, core.EventCollectionComplete) != 0 {
			t.Fatal("collection must not complete after abandon")
		}
	}
}

func TestEngine_EventsChannelDelivers(t *testing.T) {
	e := newTestEngine()
	target := testTarget(50)
	if err := e.SetTarget(target); err != nil {
		t.Fatal(err)
	}
	tickUntilDisplay(t, e, observerAt(base), render.ModeVisible, 120)

	var kinds []core.EventKind
	for len(e.Events().Receive()) > 0 {
		kinds = append(kinds, (<-e.Events().Receive()).Kind)
	}

	wantFirst := core.EventTargetSet
	if len(kinds) == 0 || kinds[0] != wantFirst {
		t.Fatalf("expected first event %s, got %v", wantFirst, kinds)
	}
	found := false
	for _, k := range kinds {
		if k == core.EventMaterialized {
			found = true
		}
	}
	if !found {
		t.Error("expected materialized event on the channel")
	}
}
