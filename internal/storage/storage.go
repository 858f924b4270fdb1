// internal/storage/storage.go
package storage

import (
	"github.com/google/uuid"

	"github.com/geohunt/arcoin/pkg/core"
)

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management
	StartSession(session *core.HuntSession) error
	EndSession() error

	// Target management
	SetCoin(target *core.TargetPoint) error
	MarkCoinCollected(targetID uuid.UUID) error

	// State recording
	RecordTrackPoint(tp *core.TrackPoint) error
	RecordModeSwitch(ms *core.ModeSwitch) error

	// Event recording
	RecordCoinEvent(e *core.CoinEventRecord) error
	RecordEnginePerf(p *core.EnginePerf) error
}

// Uploadable is an optional interface for storage backends that produce
// files suitable for upload to the hunt web frontend.
type Uploadable interface {
	GetExportedFilePath() string
	GetExportMetadata() core.UploadMetadata
}
