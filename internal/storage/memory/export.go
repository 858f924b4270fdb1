package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/geohunt/arcoin/pkg/core"
)

// HuntExport is the root JSON structure of an exported session archive.
// The hunt web service consumes it as-is, so field names are part of the
// upload contract.
type HuntExport struct {
	SessionID              string       `json:"sessionId"`
	PlayerTag              string       `json:"playerTag"`
	StartTime              time.Time    `json:"startTime"`
	EndTime                time.Time    `json:"endTime"`
	BaselineHeadingDegrees float64      `json:"baselineHeadingDegrees"`
	AppVersion             string       `json:"appVersion"`
	EngineVersion          string       `json:"engineVersion"`
	DeviceModel            string       `json:"deviceModel"`
	CoinsCollected         int          `json:"coinsCollected"`
	Coins                  []CoinJSON   `json:"coins"`
	Track                  []TrackJSON  `json:"track"`
	ModeSwitches           []SwitchJSON `json:"modeSwitches"`
	Events                 []EventJSON  `json:"events"`
	Performance            []PerfJSON   `json:"performance"`
}

// CoinJSON represents a target and its outcome.
type CoinJSON struct {
	ID        string  `json:"id"`
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Collected bool    `json:"collected"`
}

// TrackJSON is one observer sample.
type TrackJSON struct {
	Time           time.Time `json:"time"`
	Latitude       float64   `json:"lat"`
	Longitude      float64   `json:"lon"`
	FixAccuracy    float64   `json:"fixAccuracy"`
	HeadingDegrees float64   `json:"heading"`
	HeadingMethod  string    `json:"headingMethod"`
	Mode           string    `json:"mode"`
	DistanceMeters float64   `json:"distance"`
}

// SwitchJSON is one placement-mode transition.
type SwitchJSON struct {
	Time          time.Time `json:"time"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	TrackingState string    `json:"trackingState"`
	Displacement  float64   `json:"displacement"`
}

// EventJSON is one coin lifecycle event.
type EventJSON struct {
	Time           time.Time `json:"time"`
	TargetID       string    `json:"targetId,omitempty"`
	Kind           string    `json:"kind"`
	DistanceMeters float64   `json:"distance"`
	Mode           string    `json:"mode"`
}

// PerfJSON is one engine performance sample.
type PerfJSON struct {
	Time           time.Time `json:"time"`
	TickDurationMs float64   `json:"tickDurationMs"`
	TicksPerSecond float64   `json:"ticksPerSecond"`
	DisplayMode    string    `json:"displayMode"`
}

// exportJSON writes the session data to a JSON file, gzipped when configured.
// Callers must hold the write lock.
func (b *Backend) exportJSON() error {
	if b.session == nil {
		return fmt.Errorf("no active session to export")
	}

	export := b.buildExport()

	playerTag := strings.ReplaceAll(b.session.PlayerTag, " ", "_")
	playerTag = strings.ReplaceAll(playerTag, ":", "_")
	if playerTag == "" {
		playerTag = "session"
	}
	timestamp := b.session.StartTime.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", playerTag, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", playerTag, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		if err := b.writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := b.writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() HuntExport {
	endTime := b.session.EndTime
	if endTime.IsZero() {
		endTime = time.Now()
	}

	export := HuntExport{
		SessionID:              b.session.ID.String(),
		PlayerTag:              b.session.PlayerTag,
		StartTime:              b.session.StartTime,
		EndTime:                endTime,
		BaselineHeadingDegrees: b.session.BaselineHeadingDegrees,
		AppVersion:             b.session.AppVersion,
		EngineVersion:          b.session.EngineVersion,
		DeviceModel:            b.session.DeviceModel,
		CoinsCollected:         b.collected,
		Coins:                  make([]CoinJSON, 0, len(b.coinOrder)),
		Track:                  make([]TrackJSON, 0, len(b.trackPoints)),
		ModeSwitches:           make([]SwitchJSON, 0, len(b.modeSwitches)),
		Events:                 make([]EventJSON, 0, len(b.coinEvents)),
		Performance:            make([]PerfJSON, 0, len(b.perfSamples)),
	}

	for _, id := range b.coinOrder {
		record := b.coins[id]
		export.Coins = append(export.Coins, CoinJSON{
			ID:        record.Target.ID.String(),
			Name:      record.Target.Name,
			Latitude:  record.Target.Coordinate.Latitude,
			Longitude: record.Target.Coordinate.Longitude,
			Collected: record.Collected,
		})
	}

	for _, tp := range b.trackPoints {
		export.Track = append(export.Track, TrackJSON{
			Time:           tp.Time,
			Latitude:       tp.Coordinate.Latitude,
			Longitude:      tp.Coordinate.Longitude,
			FixAccuracy:    tp.FixAccuracy,
			HeadingDegrees: tp.Heading.Degrees,
			HeadingMethod:  tp.Heading.Method.String(),
			Mode:           tp.Mode.String(),
			DistanceMeters: tp.DistanceMeters,
		})
	}

	for _, ms := range b.modeSwitches {
		export.ModeSwitches = append(export.ModeSwitches, SwitchJSON{
			Time:          ms.Time,
			From:          ms.From.String(),
			To:            ms.To.String(),
			TrackingState: ms.TrackingState.String(),
			Displacement:  ms.Displacement,
		})
	}

	for _, ev := range b.coinEvents {
		e := EventJSON{
			Time:           ev.Time,
			Kind:           ev.Kind.String(),
			DistanceMeters: ev.DistanceMeters,
			Mode:           ev.Mode.String(),
		}
		if ev.TargetID != uuid.Nil {
			e.TargetID = ev.TargetID.String()
		}
		export.Events = append(export.Events, e)
	}

	for _, p := range b.perfSamples {
		export.Performance = append(export.Performance, PerfJSON{
			Time:           p.Time,
			TickDurationMs: p.TickDurationMs,
			TicksPerSecond: p.TicksPerSecond,
			DisplayMode:    p.DisplayMode,
		})
	}

	return export
}

func (b *Backend) writeJSON(path string, data HuntExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func (b *Backend) writeGzipJSON(path string, data HuntExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}

// GetExportedFilePath returns the path of the most recent export.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// GetExportMetadata describes the most recent export for upload.
func (b *Backend) GetExportMetadata() core.UploadMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.session == nil {
		return core.UploadMetadata{}
	}

	endTime := b.session.EndTime
	if endTime.IsZero() {
		endTime = time.Now()
	}

	return core.UploadMetadata{
		SessionID:       b.session.ID.String(),
		PlayerTag:       b.session.PlayerTag,
		DurationSeconds: endTime.Sub(b.session.StartTime).Seconds(),
		CoinsCollected:  b.collected,
	}
}
