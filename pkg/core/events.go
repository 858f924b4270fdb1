// pkg/core/events.go
package core

import (
	"time"

	"github.com/google/uuid"
)

// EventKind enumerates the lifecycle events the engine emits.
type EventKind int

const (
	EventTargetSet EventKind = iota
	EventTargetCleared
	EventMaterialized
	EventEnteredCollectionRange
	EventExitedCollectionRange
	EventCollectionComplete
	EventTrackingModeChanged
)

func (k EventKind) String() string {
	switch k {
	case EventTargetSet:
		return "target_set"
	case EventTargetCleared:
		return "target_cleared"
	case EventMaterialized:
		return "materialized"
	case EventEnteredCollectionRange:
		return "entered_collection_range"
	case EventExitedCollectionRange:
		return "exited_collection_range"
	case EventCollectionComplete:
		return "collection_complete"
	case EventTrackingModeChanged:
		return "tracking_mode_changed"
	default:
		return "unknown"
	}
}

// Event is a lifecycle notification consumed by host collaborators
// (inventory, mini-map, persistence).
type Event struct {
	Kind     EventKind
	Time     time.Time
	TargetID uuid.UUID

	// DistanceMeters is the GPS distance at emission time, negative when
	// unknown.
	DistanceMeters float64
	// Mode is the placement mode in effect when the event fired.
	Mode PlacementMode
	// Heading is the heading estimate in effect when the event fired.
	Heading Heading
}
