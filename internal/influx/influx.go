// Package influx ships hunt telemetry to InfluxDB. When the server is
// unreachable the points are appended to a gzipped line protocol file
// instead, so a session recorded offline is not lost.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Bucket names for hunt telemetry.
const (
	BucketHuntData    = "hunt_data"
	BucketEnginePerf  = "engine_performance"
	BucketTracking    = "tracking_quality"
	bucketRetention   = 60 * 60 * 24 * 90 // seconds, 90 days
	writerBatchSize   = 2500
	writerFlushMillis = 1000
)

// Manager owns the InfluxDB client and one async writer per bucket.
type Manager struct {
	client     influxdb2.Client
	writers    map[string]influxdb2_api.WriteAPI
	backup     *gzip.Writer
	online     bool
	buckets    []string
	log        zerolog.Logger
	backupPath string
}

// NewManager creates a manager that will write backups to backupPath
// when InfluxDB is unreachable.
func NewManager(log zerolog.Logger, backupPath string) *Manager {
	return &Manager{
		writers:    make(map[string]influxdb2_api.WriteAPI),
		buckets:    []string{BucketHuntData, BucketEnginePerf, BucketTracking},
		log:        log,
		backupPath: backupPath,
	}
}

// Connect dials InfluxDB using the influx.* viper settings. A failed
// ping is not an error: the manager degrades to the backup file.
func (m *Manager) Connect() error {
	if !viper.GetBool("influx.enabled") {
		return errors.New("influx.enabled is false")
	}

	url := fmt.Sprintf("%s://%s:%s",
		viper.GetString("influx.protocol"),
		viper.GetString("influx.host"),
		viper.GetString("influx.port"),
	)
	m.client = influxdb2.NewClientWithOptions(url, viper.GetString("influx.token"),
		influxdb2.DefaultOptions().
			SetBatchSize(writerBatchSize).
			SetFlushInterval(writerFlushMillis),
	)

	running, err := m.client.Ping(context.Background())
	if err != nil || !running {
		m.online = false
		m.log.Warn().Str("url", url).Msg("InfluxDB unreachable, using backup writer")
		return m.openBackup()
	}

	if err := m.ensureOrgAndBuckets(); err != nil {
		return err
	}
	m.startWriters()
	m.online = true
	m.log.Info().Msg("InfluxDB client initialized")
	return nil
}

func (m *Manager) openBackup() error {
	if m.backup != nil {
		return nil
	}

	m.log.Info().Str("backupPath", m.backupPath).Msg("Opening InfluxDB backup file")
	file, err := os.OpenFile(m.backupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %v", err)
	}
	m.backup = gzip.NewWriter(file)
	return nil
}

func (m *Manager) ensureOrgAndBuckets() error {
	ctx := context.Background()
	orgName := viper.GetString("influx.org")
	orgsAPI := m.client.OrganizationsAPI()

	org, err := orgsAPI.FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.log.Info().Str("org", orgName).Msg("Organization not found, creating")
		if org, err = orgsAPI.CreateOrganizationWithName(ctx, orgName); err != nil {
			return fmt.Errorf("creating organization %s: %w", orgName, err)
		}
	}

	bucketsAPI := m.client.BucketsAPI()
	for _, bucket := range m.buckets {
		if _, err := bucketsAPI.FindBucketByName(ctx, bucket); err == nil {
			continue
		}

		m.log.Info().Str("bucket", bucket).Msg("Bucket not found, creating")
		rule := domain.RetentionRuleTypeExpire
		_, err := bucketsAPI.CreateBucketWithName(ctx, org, bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: bucketRetention,
		})
		if err != nil {
			return fmt.Errorf("creating bucket %s: %w", bucket, err)
		}
	}

	return nil
}

// startWriters creates one async write API per bucket and drains each
// writer's error channel into the log.
func (m *Manager) startWriters() {
	orgName := viper.GetString("influx.org")
	for _, bucket := range m.buckets {
		writer := m.client.WriteAPI(orgName, bucket)
		m.writers[bucket] = writer

		go func(bucket string, errs <-chan error) {
			for writeErr := range errs {
				m.log.Error().Err(writeErr).Str("bucket", bucket).
					Msg("Error sending data to InfluxDB")
			}
		}(bucket, writer.Errors())
	}

	m.log.Debug().Msg("InfluxDB writers initialized")
}

// WritePoint queues a point for the given bucket, or appends it to the
// backup file when InfluxDB is offline.
func (m *Manager) WritePoint(_ context.Context, bucket string, point *influxdb2_write.Point) error {
	if m.online {
		writer, ok := m.writers[bucket]
		if !ok {
			return fmt.Errorf("influxDB bucket '%s' not registered", bucket)
		}
		writer.WritePoint(point)
		return nil
	}

	if m.backup == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}
	line := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if _, err := m.backup.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %s", err)
	}
	return nil
}
