// Package gormstorage implements the storage.Backend interface on any GORM
// dialector with internal queues and a background DB writer goroutine.
// The SQLite and Postgres backends embed it and supply their own connection.
package gormstorage

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/geohunt/arcoin/internal/model"
	"github.com/geohunt/arcoin/internal/model/convert"
	"github.com/geohunt/arcoin/internal/queue"
	"github.com/geohunt/arcoin/pkg/core"
)

// flushInterval is how often the DB writer drains the queues.
const flushInterval = 2 * time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger *slog.Logger
}

// queues holds all the write queues for batch DB insertion.
type queues struct {
	TrackPoints  *queue.Queue[model.TrackPoint]
	ModeSwitches *queue.Queue[model.ModeSwitch]
	CoinEvents   *queue.Queue[model.CoinEvent]
	PerfSamples  *queue.Queue[model.EnginePerf]
}

func newQueues() *queues {
	return &queues{
		TrackPoints:  queue.New[model.TrackPoint](),
		ModeSwitches: queue.New[model.ModeSwitch](),
		CoinEvents:   queue.New[model.CoinEvent](),
		PerfSamples:  queue.New[model.EnginePerf](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps              Dependencies
	queues            *queues
	sessionID         atomic.Uint64
	lastWriteDuration atomic.Int64
	stopChan          chan struct{}
	dbReady           bool
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Backend{
		deps: deps,
	}
}

// Init creates internal queues, runs schema migration, and starts the DB
// writer goroutine. Callers must inject a DB via Dependencies before Init.
func (b *Backend) Init() error {
	b.queues = newQueues()
	b.stopChan = make(chan struct{})

	if b.deps.DB != nil {
		if err := b.setupDB(); err != nil {
			return fmt.Errorf("failed to setup DB: %w", err)
		}
		b.dbReady = true
	}

	b.startDBWriter()
	return nil
}

// setupDB migrates tables and creates default group settings if they don't exist.
func (b *Backend) setupDB() error {
	db := b.deps.DB
	log := b.deps.Logger

	if !db.Migrator().HasTable(&model.HuntInfo{}) {
		if err := db.AutoMigrate(&model.HuntInfo{}); err != nil {
			return fmt.Errorf("failed to auto-migrate HuntInfo: %w", err)
		}
		if err := db.Create(&model.HuntInfo{
			GroupName:        "GeoHunt",
			GroupDescription: "AR treasure hunt sessions",
			GroupWebsite:     "https://geohunt.example.com",
		}).Error; err != nil {
			return fmt.Errorf("failed to create hunt_info entry: %w", err)
		}
	}

	if db.Name() == "postgres" {
		if err := db.Exec(`CREATE Extension IF NOT EXISTS postgis;`).Error; err != nil {
			return fmt.Errorf("failed to create PostGIS Extension: %w", err)
		}
		log.Info("PostGIS Extension created")
	}

	log.Info("Migrating schema")
	if err := db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Info("Database setup complete")
	return nil
}

// Close stops the DB writer goroutine after a final drain.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
	}
	if b.dbReady {
		b.flushAll()
	}
	return nil
}

// StartSession inserts the session row and remembers its DB id for the
// writer goroutine.
func (b *Backend) StartSession(session *core.HuntSession) error {
	if b.deps.DB == nil {
		return nil
	}

	gormSession := convert.SessionToGorm(*session)
	if err := b.deps.DB.Create(&gormSession).Error; err != nil {
		return fmt.Errorf("failed to insert new session: %w", err)
	}

	b.sessionID.Store(uint64(gormSession.ID))
	return nil
}

// SetSessionID sets the current session ID for the DB writer (used by CLI tools).
func (b *Backend) SetSessionID(id uint) {
	b.sessionID.Store(uint64(id))
}

// EndSession drains the queues and stamps the session end time.
func (b *Backend) EndSession() error {
	if b.deps.DB == nil {
		return nil
	}

	b.flushAll()

	sessionID := uint(b.sessionID.Load())
	if sessionID == 0 {
		return nil
	}
	return b.deps.DB.Model(&model.HuntSession{}).
		Where("id = ?", sessionID).
		Update("end_time", time.Now()).Error
}

// SetCoin inserts the target synchronously (not queued) because targets are
// low-volume and coin events reference them right away.
func (b *Backend) SetCoin(target *core.TargetPoint) error {
	if b.deps.DB == nil {
		return nil
	}

	gormCoin := convert.CoinToGorm(uint(b.sessionID.Load()), *target)
	if err := b.deps.DB.Create(&gormCoin).Error; err != nil {
		return fmt.Errorf("failed to insert coin: %w", err)
	}
	return nil
}

// MarkCoinCollected flags the target row and bumps the session tally.
func (b *Backend) MarkCoinCollected(targetID uuid.UUID) error {
	if b.deps.DB == nil {
		return nil
	}

	sessionID := uint(b.sessionID.Load())
	err := b.deps.DB.Model(&model.Coin{}).
		Where("session_id = ? AND target_uid = ?", sessionID, targetID.String()).
		Update("collected", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark coin collected: %w", err)
	}

	return b.deps.DB.Model(&model.HuntSession{}).
		Where("id = ?", sessionID).
		Update("coins_collected", gorm.Expr("coins_collected + 1")).Error
}

// RecordTrackPoint converts and queues an observer sample.
func (b *Backend) RecordTrackPoint(tp *core.TrackPoint) error {
	b.queues.TrackPoints.Push(convert.TrackPointToGorm(0, *tp))
	return nil
}

// RecordModeSwitch converts and queues a mode transition.
func (b *Backend) RecordModeSwitch(ms *core.ModeSwitch) error {
	b.queues.ModeSwitches.Push(convert.ModeSwitchToGorm(0, *ms))
	return nil
}

// RecordCoinEvent converts and queues a coin lifecycle event.
func (b *Backend) RecordCoinEvent(e *core.CoinEventRecord) error {
	b.queues.CoinEvents.Push(convert.CoinEventToGorm(0, *e))
	return nil
}

// RecordEnginePerf converts and queues a performance sample.
func (b *Backend) RecordEnginePerf(p *core.EnginePerf) error {
	b.queues.PerfSamples.Push(convert.EnginePerfToGorm(0, *p))
	return nil
}

// QueueLengths reports current queue depths for perf sampling.
func (b *Backend) QueueLengths() (trackPoints, coinEvents, modeSwitches, perfSamples int) {
	if b.queues == nil {
		return 0, 0, 0, 0
	}
	return b.queues.TrackPoints.Len(),
		b.queues.CoinEvents.Len(),
		b.queues.ModeSwitches.Len(),
		b.queues.PerfSamples.Len()
}

// writeQueue writes all items from a queue to the database in a transaction.
// Failed batches are requeued for the next cycle.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log *slog.Logger, prepare func([]T)) {
	if q.Empty() {
		return
	}

	items := q.Drain()
	if prepare != nil {
		prepare(items)
	}

	tx := db.Begin()
	if err := tx.Create(&items).Error; err != nil {
		log.Error("Error writing batch", "queue", name, "error", err)
		tx.Rollback()
		q.Push(items...)
		return
	}
	tx.Commit()
}

// LastWriteDuration reports how long the most recent queue drain took.
func (b *Backend) LastWriteDuration() time.Duration {
	return time.Duration(b.lastWriteDuration.Load())
}

// flushAll drains every queue into the DB once.
func (b *Backend) flushAll() {
	if b.deps.DB == nil {
		return
	}

	writeStart := time.Now()
	defer func() {
		b.lastWriteDuration.Store(int64(time.Since(writeStart)))
	}()

	sessionID := uint(b.sessionID.Load())
	log := b.deps.Logger

	stampTrackPoints := func(items []model.TrackPoint) {
		for i := range items {
			items[i].SessionID = sessionID
		}
	}
	stampModeSwitches := func(items []model.ModeSwitch) {
		for i := range items {
			items[i].SessionID = sessionID
		}
	}
	stampCoinEvents := func(items []model.CoinEvent) {
		for i := range items {
			items[i].SessionID = sessionID
		}
	}
	stampPerfSamples := func(items []model.EnginePerf) {
		for i := range items {
			items[i].SessionID = sessionID
		}
	}

	writeQueue(b.deps.DB, b.queues.TrackPoints, "track points", log, stampTrackPoints)
	writeQueue(b.deps.DB, b.queues.ModeSwitches, "mode switches", log, stampModeSwitches)
	writeQueue(b.deps.DB, b.queues.CoinEvents, "coin events", log, stampCoinEvents)
	writeQueue(b.deps.DB, b.queues.PerfSamples, "perf samples", log, stampPerfSamples)
}

// startDBWriter starts the background goroutine that periodically drains
// queues into the DB.
func (b *Backend) startDBWriter() {
	go func() {
		ticker := time.NewTicker(flushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-b.stopChan:
				return
			case <-ticker.C:
				if !b.dbReady {
					continue
				}
				b.flushAll()
			}
		}
	}()
}
