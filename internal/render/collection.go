// internal/render/collection.go
package render

import "github.com/geohunt/arcoin/pkg/core"

// CollectionAnimation is the short non-interactive sequence played when a
// coin is collected: position eases toward the observer viewpoint while
// scale eases to zero. It holds no reference to the coin or viewpoint;
// the live viewpoint is passed in per tick, so destroying the owning
// target mid-animation leaves nothing dangling.
type CollectionAnimation struct {
	start      core.Vec3
	startScale float64
	duration   float64
	elapsed    float64
	cancelled  bool
}

// NewCollectionAnimation begins an animation from the given transform.
func NewCollectionAnimation(start core.Vec3, startScale, durationSeconds float64) *CollectionAnimation {
	return &CollectionAnimation{
		start:      start,
		startScale: startScale,
		duration:   durationSeconds,
	}
}

// Tick advances the animation and returns the transform for this frame.
// done is true once the duration has elapsed or the animation was
// cancelled.
func (a *CollectionAnimation) Tick(dt float64, viewpoint core.Vec3) (pos core.Vec3, scale float64, done bool) {
	if a.cancelled {
		return a.start, 0, true
	}
	a.elapsed += dt
	t := easeOutCubic(a.elapsed / a.duration)

	pos = a.start.Lerp(viewpoint, t)
	scale = a.startScale * (1 - t)
	return pos, scale, a.elapsed >= a.duration
}

// Progress returns the eased progress in [0,1].
func (a *CollectionAnimation) Progress() float64 {
	if a.cancelled {
		return 1
	}
	return easeOutCubic(a.elapsed / a.duration)
}

// Cancel aborts the animation; the next Tick reports done without
// completing the visual effect.
func (a *CollectionAnimation) Cancel() {
	a.cancelled = true
}
