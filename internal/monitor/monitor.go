// Package monitor periodically samples the engine tick loop and storage
// queues, writes a status file for operators and records the sample to the
// configured backend and InfluxDB.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/geohunt/arcoin/internal/influx"
	"github.com/geohunt/arcoin/internal/session"
	"github.com/geohunt/arcoin/internal/storage"
	"github.com/geohunt/arcoin/internal/worker"
	"github.com/geohunt/arcoin/pkg/core"
)

// QueueLengthsProvider is an optional interface backends implement to
// expose their pending write queue depths.
type QueueLengthsProvider interface {
	QueueLengths() (trackPoints, coinEvents, modeSwitches, perfSamples int)
}

// Dependencies holds all dependencies for the monitor service.
type Dependencies struct {
	Session *session.Context
	Worker  *worker.Manager
	Backend storage.Backend
	Influx  *influx.Manager
	Logger  *slog.Logger

	// StatusDir is where status.txt is written. Empty disables the file.
	StatusDir string
	// Interval between perf samples. Defaults to one second.
	Interval time.Duration
}

// Service samples engine performance on a fixed interval.
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a new monitor service.
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the monitor goroutine is running.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Snapshot builds one perf sample from the current engine and queue state.
func (s *Service) Snapshot() core.EnginePerf {
	perf := core.EnginePerf{
		Time:              time.Now(),
		TickDurationMs:    float64(s.deps.Worker.LastTickDuration().Microseconds()) / 1000.0,
		TicksPerSecond:    s.deps.Worker.TicksPerSecond(),
		ModeSwitches:      s.deps.Worker.ModeSwitchCount(),
		LastWriteDuration: s.deps.Worker.LastDBWriteDuration(),
		DisplayMode:       s.deps.Worker.LastDisplayMode(),
	}

	if p, ok := s.deps.Backend.(QueueLengthsProvider); ok {
		perf.TrackQueueLen, perf.EventQueueLen, _, perf.PerfQueueLen = p.QueueLengths()
	}

	return perf
}

// Start starts the monitor goroutine. Calling Start on a running service
// is a no-op.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	var statusFile *os.File
	if s.deps.StatusDir != "" {
		var err error
		statusFile, err = os.Create(filepath.Join(s.deps.StatusDir, "status.txt"))
		if err != nil {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
			return fmt.Errorf("error creating status file: %w", err)
		}
	}

	go func() {
		defer func() {
			if statusFile != nil {
				statusFile.Close()
			}
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		s.deps.Logger.Debug("status monitor started", "interval", s.deps.Interval)

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				if !s.deps.Session.Active() {
					continue
				}
				s.sample(statusFile)
			}
		}
	}()

	return nil
}

func (s *Service) sample(statusFile *os.File) {
	perf := s.Snapshot()

	if statusFile != nil {
		if data, err := json.MarshalIndent(perf, "", "  "); err == nil {
			statusFile.Truncate(0)
			statusFile.Seek(0, 0)
			statusFile.Write(data)
			statusFile.WriteString("\n")
		}
	}

	if s.deps.Backend != nil {
		if err := s.deps.Backend.RecordEnginePerf(&perf); err != nil {
			s.deps.Logger.Error("failed to record perf sample", "error", err)
		}
	}

	if s.deps.Influx != nil {
		sessionID := s.deps.Session.Get().ID.String()
		point := influx.PerfPoint(sessionID, perf)
		if err := s.deps.Influx.WritePoint(context.Background(), influx.BucketEnginePerf, point); err != nil {
			s.deps.Logger.Error("failed to write perf point to influx", "error", err)
		}
	}
}

// Stop stops the monitor.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}
