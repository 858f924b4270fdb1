package feed

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"

	"github.com/geohunt/arcoin/internal/dispatcher"
)

// NMEAConfig configures NMEA track replay.
type NMEAConfig struct {
	// Path to a file of NMEA sentences, one per line. Only RMC sentences
	// are replayed; everything else is skipped.
	Path string
	// Speedup divides the recorded inter-fix delays. 1 replays in real
	// time; 0 or negative defaults to 1.
	Speedup float64
	// FixAccuracy is stamped on every replayed fix, since RMC carries no
	// accuracy estimate. Defaults to 5 meters.
	FixAccuracy float64
}

// NMEAFeed replays a recorded NMEA track as gpsFix commands, pacing them
// by the recorded fix timestamps. The RMC course over ground doubles as a
// compass reading so heading-only placement works during replay.
type NMEAFeed struct {
	cfg  NMEAConfig
	sink Sink
	log  *slog.Logger
}

// NewNMEA creates an NMEA replay feed.
func NewNMEA(cfg NMEAConfig, sink Sink, log *slog.Logger) *NMEAFeed {
	if cfg.Speedup <= 0 {
		cfg.Speedup = 1
	}
	if cfg.FixAccuracy <= 0 {
		cfg.FixAccuracy = 5
	}
	if log == nil {
		log = slog.Default()
	}
	return &NMEAFeed{cfg: cfg, sink: sink, log: log}
}

// Run replays the track until the file ends or the context is cancelled.
func (f *NMEAFeed) Run(ctx context.Context) error {
	file, err := os.Open(f.cfg.Path)
	if err != nil {
		return fmt.Errorf("opening nmea track: %w", err)
	}
	defer file.Close()

	f.log.Info("replaying nmea track", "path", f.cfg.Path, "speedup", f.cfg.Speedup)

	scanner := bufio.NewScanner(file)
	var prev time.Duration
	first := true
	fixes := 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			f.log.Debug("skipping unparseable sentence", "error", err)
			continue
		}
		if sentence.DataType() != nmea.TypeRMC {
			continue
		}
		rmc := sentence.(nmea.RMC)
		if rmc.Validity != nmea.ValidRMC {
			continue
		}

		ts := sinceMidnight(rmc.Time)
		if !first {
			wait := ts - prev
			if wait < 0 {
				// midnight rollover in the recording
				wait = 0
			}
			wait = time.Duration(float64(wait) / f.cfg.Speedup)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		first = false
		prev = ts

		if err := f.emitFix(rmc); err != nil {
			f.log.Error("failed to emit replayed fix", "error", err)
		}
		fixes++
	}

	f.log.Info("nmea track finished", "fixes", fixes)
	return scanner.Err()
}

func (f *NMEAFeed) emitFix(rmc nmea.RMC) error {
	now := time.Now()

	if _, err := f.sink.Dispatch(dispatcher.Command{
		Name: "gpsFix",
		Args: []string{
			formatFloat(rmc.Latitude),
			formatFloat(rmc.Longitude),
			formatFloat(f.cfg.FixAccuracy),
			"0",
		},
		Timestamp: now,
	}); err != nil {
		return err
	}

	// Course over ground stands in for the compass during replay.
	_, err := f.sink.Dispatch(dispatcher.Command{
		Name: "sensorUpdate",
		Args: []string{
			"1", formatFloat(rmc.Course),
			"0", "0", "0",
			"0", "0", "0", "0", "0",
			"0",
		},
		Timestamp: now,
	})
	return err
}

func sinceMidnight(t nmea.Time) time.Duration {
	return time.Duration(t.Hour)*time.Hour +
		time.Duration(t.Minute)*time.Minute +
		time.Duration(t.Second)*time.Second +
		time.Duration(t.Millisecond)*time.Millisecond
}
