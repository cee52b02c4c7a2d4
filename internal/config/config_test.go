package config_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"codeberg.org/mutker/powerhald/internal/config"
	"codeberg.org/mutker/powerhald/internal/errors"
	"codeberg.org/mutker/powerhald/internal/logger"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "powerhald.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))

	return fs
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"
sysfs_root = "/tmp/bench"
socket = "/tmp/powerhald.sock"
input_scan_count = 8
touchkey_name = "gpio_keys"
tap_to_wake_node = "/sys/android_touch/doubletap2wake"

[metrics]
enabled = true
db_path = "/tmp/journal.db"
batch_size = 4
batch_timeout = "250ms"
`)

	cfg, err := config.Load(nil, config.WithConfigFile(path))
	require.NoError(t, err)

	assert.Equal(t, config.LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, "/tmp/bench", cfg.SysfsRoot)
	assert.Equal(t, "/tmp/powerhald.sock", cfg.Socket)
	assert.Equal(t, 8, cfg.InputScanCount)
	assert.Equal(t, "gpio_keys", cfg.TouchKeyName)
	assert.Equal(t, config.DefaultTouchscreen, cfg.TouchscreenName)
	assert.Equal(t, "/sys/android_touch/doubletap2wake", cfg.TapToWakeNode)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/tmp/journal.db", cfg.Metrics.DBPath)
	assert.Equal(t, 4, cfg.Metrics.BatchSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Metrics.BatchTimeout)
	assert.Equal(t, path, cfg.File())
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POWERHALD_CONFIG", "")

	cfg, err := config.Load(nil, config.WithConfigFile(writeConfig(t, "")))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.Debug)
	assert.Equal(t, config.DefaultSysfsRoot, cfg.SysfsRoot)
	assert.Equal(t, config.DefaultSocket, cfg.Socket)
	assert.Equal(t, config.DefaultPIDFile, cfg.PIDFile)
	assert.Equal(t, config.DefaultInputRoot, cfg.InputRoot)
	assert.Equal(t, config.DefaultInputScanCount, cfg.InputScanCount)
	assert.Equal(t, config.DefaultTouchKey, cfg.TouchKeyName)
	assert.Empty(t, cfg.TapToWakeNode)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, config.DefaultBatchSize, cfg.Metrics.BatchSize)
	assert.Equal(t, config.DefaultBatchTimeout, cfg.Metrics.BatchTimeout)
	assert.Equal(t, logger.InfoLevel, cfg.Level())
}

func TestLoadConfigFileFromEnv(t *testing.T) {
	path := writeConfig(t, `socket = "/tmp/env.sock"`)
	t.Setenv("POWERHALD_CONFIG", path)

	cfg, err := config.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.sock", cfg.Socket)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := config.Load(nil, config.WithConfigFile(filepath.Join(t.TempDir(), "absent.toml")))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	path := writeConfig(t, "This is not a valid TOML file\n")

	_, err := config.Load(nil, config.WithConfigFile(path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestInvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `log_level = "invalid"`)

	_, err := config.Load(nil, config.WithConfigFile(path))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidLogLevel))
}

func TestInvalidScanCount(t *testing.T) {
	path := writeConfig(t, `input_scan_count = 0`)

	_, err := config.Load(nil, config.WithConfigFile(path))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidConfig))
}

func TestPrecedence(t *testing.T) {
	path := writeConfig(t, `
socket = "/tmp/file.sock"
pid_file = "/tmp/file.pid"
sysfs_root = "/tmp/file"
`)
	t.Setenv("POWERHALD_PID_FILE", "/tmp/env.pid")
	t.Setenv("POWERHALD_SYSFS_ROOT", "/tmp/env")
	t.Setenv("POWERHALD_METRICS_ENABLED", "true")

	flags := newFlags(t, "--sysfs-root", "/tmp/flag", "--log-level", "warning")

	cfg, err := config.Load(flags, config.WithConfigFile(path))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/file.sock", cfg.Socket)
	assert.Equal(t, "/tmp/env.pid", cfg.PIDFile)
	assert.Equal(t, "/tmp/flag", cfg.SysfsRoot)
	assert.Equal(t, config.LogLevelWarning, cfg.LogLevel)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, logger.WarnLevel, cfg.Level())
}

func TestConfigFlag(t *testing.T) {
	path := writeConfig(t, `socket = "/tmp/flagfile.sock"`)
	flags := newFlags(t, "--config", path)

	cfg, err := config.Load(flags)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/flagfile.sock", cfg.Socket)
}

func TestDebugOverridesLogLevel(t *testing.T) {
	path := writeConfig(t, `log_level = "error"`)
	flags := newFlags(t, "--debug")

	cfg, err := config.Load(flags, config.WithConfigFile(path))
	require.NoError(t, err)
	assert.Equal(t, logger.DebugLevel, cfg.Level())

	flags = newFlags(t, "--verbose")
	cfg, err = config.Load(flags, config.WithConfigFile(path))
	require.NoError(t, err)
	assert.Equal(t, logger.InfoLevel, cfg.Level())
}

func TestWatchReloads(t *testing.T) {
	path := writeConfig(t, `log_level = "info"`)

	cfg, err := config.Load(nil, config.WithConfigFile(path))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var reloaded *config.Config
	require.NoError(t, cfg.Watch(ctx, func(next *config.Config) {
		mu.Lock()
		defer mu.Unlock()
		reloaded = next
	}))

	require.NoError(t, os.WriteFile(path, []byte(`log_level = "debug"`), 0o600))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return reloaded != nil && reloaded.LogLevel == config.LogLevelDebug
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatchWithoutFile(t *testing.T) {
	cfg, err := config.Load(nil, config.WithConfigFile(writeConfig(t, "")))
	require.NoError(t, err)

	other := &config.Config{}
	err = other.Watch(context.Background(), func(*config.Config) {})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrWatchConfig))
	assert.NotEmpty(t, cfg.File())
}
