package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// StorageConfig selects and configures the session storage backend.
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	Sqlite SqliteConfig `json:"sqlite" mapstructure:"sqlite"`
	Stream StreamConfig `json:"stream" mapstructure:"stream"`
}

// MemoryConfig holds in-memory/JSON storage backend settings.
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SqliteConfig holds SQLite storage backend settings.
type SqliteConfig struct {
	DumpPath            string `json:"dumpPath" mapstructure:"dumpPath"`
	DumpIntervalSeconds int    `json:"dumpIntervalSeconds" mapstructure:"dumpIntervalSeconds"`
}

// StreamConfig holds WebSocket streaming backend settings.
type StreamConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// Load reads configuration from the JSON config file and sets default
// values. configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName("arcoin.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./arcoinlogs")
	viper.SetDefault("playerTag", "hunter")

	// Engine knobs.
	viper.SetDefault("engine.tickRateHz", 30)
	viper.SetDefault("engine.gpsStaleSeconds", 10)
	viper.SetDefault("engine.eventBuffer", 256)

	// Coin display tuning. These defaults are the shipped game feel.
	viper.SetDefault("display.materializationDistance", 100.0)
	viper.SetDefault("display.hideDistance", 120.0)
	viper.SetDefault("display.collectionDistance", 5.0)
	viper.SetDefault("display.metersPerStep", 10.0)
	viper.SetDefault("display.scaleAtFar", 0.3)
	viper.SetDefault("display.scaleAtNear", 1.0)
	viper.SetDefault("display.finalMetersForScaleRamp", 8.0)
	viper.SetDefault("display.scaleAtCollectionMultiplier", 1.5)
	viper.SetDefault("display.materializeForward", 3.0)
	viper.SetDefault("display.materializeHeight", 0.5)
	viper.SetDefault("display.materializeSeconds", 0.8)
	viper.SetDefault("display.collectSeconds", 0.8)
	viper.SetDefault("display.idleSpinDegPerSec", 15.0)
	viper.SetDefault("display.collectSpinDegPerSec", 720.0)

	// Tracking monitor thresholds.
	viper.SetDefault("tracking.stillEpsilonMeters", 0.005)
	viper.SetDefault("tracking.stillSeconds", 3.0)
	viper.SetDefault("tracking.recoverDisplacementMeters", 0.05)

	// Session storage.
	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./sessions")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.dumpPath", "")
	viper.SetDefault("storage.sqlite.dumpIntervalSeconds", 30)
	viper.SetDefault("storage.stream.url", "ws://localhost:5001/stream")
	viper.SetDefault("storage.stream.secret", "")

	// Hunt web service uploads.
	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")

	// Postgres session store.
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "arcoin")

	// Telemetry.
	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "arcoin-metrics")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	// Sensor feeds for the simulator host.
	viper.SetDefault("feed.type", "scenario")
	viper.SetDefault("scenario.startLat", 47.6062)
	viper.SetDefault("scenario.startLon", -122.3321)
	viper.SetDefault("scenario.targetBearingDegrees", 45.0)
	viper.SetDefault("scenario.targetDistanceMeters", 150.0)
	viper.SetDefault("scenario.walkSpeedMps", 1.4)
	viper.SetDefault("scenario.fixAccuracyMeters", 5.0)
	viper.SetDefault("scenario.fixIntervalMs", 250)
	viper.SetDefault("feed.nmea.path", "")
	viper.SetDefault("feed.nmea.speedup", 1.0)
	viper.SetDefault("feed.mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("feed.mqtt.clientId", "arcoin-sim")
	viper.SetDefault("feed.mqtt.gpsTopic", "arcoin/gps")
	viper.SetDefault("feed.mqtt.imuTopic", "arcoin/imu")
}

// GetStorage returns the unmarshalled storage configuration.
func GetStorage() (StorageConfig, error) {
	var cfg StorageConfig
	if err := viper.UnmarshalKey("storage", &cfg); err != nil {
		return StorageConfig{}, fmt.Errorf("unmarshal storage config: %w", err)
	}
	return cfg, nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetFloat returns a float64 config value.
func GetFloat(key string) float64 {
	return viper.GetFloat64(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
