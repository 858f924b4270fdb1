package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"logLevel": "debug",
		"playerTag": "nightowl",
		"display": { "materializationDistance": 85.0 },
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "arcoin.cfg.json"), []byte(cfg), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "nightowl", viper.GetString("playerTag"))
	assert.Equal(t, 85.0, viper.GetFloat64("display.materializationDistance"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "arcoin.cfg.json"), []byte(`{}`), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./arcoinlogs", viper.GetString("logsDir"))
	assert.Equal(t, 30, viper.GetInt("engine.tickRateHz"))
	assert.Equal(t, 100.0, viper.GetFloat64("display.materializationDistance"))
	assert.Equal(t, 120.0, viper.GetFloat64("display.hideDistance"))
	assert.Equal(t, 5.0, viper.GetFloat64("display.collectionDistance"))
	assert.Equal(t, 3.0, viper.GetFloat64("tracking.stillSeconds"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
	assert.Equal(t, "./sessions", viper.GetString("storage.memory.outputDir"))
	assert.Equal(t, true, viper.GetBool("storage.memory.compressOutput"))
	assert.Equal(t, "http://localhost:5000", viper.GetString("api.serverUrl"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "scenario", viper.GetString("feed.type"))
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestGetStorage(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"storage": {
			"type": "sqlite",
			"sqlite": { "dumpPath": "/tmp/hunt.db", "dumpIntervalSeconds": 15 }
		}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "arcoin.cfg.json"), []byte(cfg), 0644))
	require.NoError(t, Load(dir))

	storage, err := GetStorage()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", storage.Type)
	assert.Equal(t, "/tmp/hunt.db", storage.Sqlite.DumpPath)
	assert.Equal(t, 15, storage.Sqlite.DumpIntervalSeconds)
}

func TestDisplay_ValidatesAgainstDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "arcoin.cfg.json"), []byte(`{}`), 0644))
	require.NoError(t, Load(dir))

	settings := Display()
	require.NoError(t, settings.Validate())
	assert.Equal(t, 100.0, settings.MaterializationDistance)
	assert.Equal(t, 0.8, settings.MaterializeSeconds)
}
