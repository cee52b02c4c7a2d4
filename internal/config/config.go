package config

import (
	"os"
	"strings"
	"time"

	"codeberg.org/mutker/powerhald/internal/errors"
	"codeberg.org/mutker/powerhald/internal/logger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel       = LogLevelInfo
	DefaultConfigFile     = "/etc/powerhald.toml"
	DefaultEnvPrefix      = "POWERHALD"
	DefaultSysfsRoot      = "/"
	DefaultSocket         = "/run/powerhald.sock"
	DefaultPIDFile        = "/run/powerhald.pid"
	DefaultInputRoot      = "/sys/class/input"
	DefaultInputScanCount = 20
	DefaultTouchKey       = "sec_touchkey"
	DefaultTouchscreen    = "sec_touchscreen"
	DefaultMetricsDB      = "/var/lib/powerhald/journal.db"
	DefaultBatchSize      = 32
	DefaultBatchTimeout   = 5 * time.Second
)

// Flag names, mapped onto config keys by flagKeys.
const (
	FlagConfig        = "config"
	FlagLogLevel      = "log-level"
	FlagDebug         = "debug"
	FlagVerbose       = "verbose"
	FlagSysfsRoot     = "sysfs-root"
	FlagSocket        = "socket"
	FlagPIDFile       = "pid-file"
	FlagTapToWakeNode = "tap-to-wake-node"
	FlagMetrics       = "metrics"
)

var flagKeys = map[string]string{
	FlagLogLevel:      "log_level",
	FlagDebug:         "debug",
	FlagVerbose:       "verbose",
	FlagSysfsRoot:     "sysfs_root",
	FlagSocket:        "socket",
	FlagPIDFile:       "pid_file",
	FlagTapToWakeNode: "tap_to_wake_node",
	FlagMetrics:       "metrics.enabled",
}

type MetricsConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	DBPath       string        `mapstructure:"db_path"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

type Config struct {
	LogLevel        LogLevel      `mapstructure:"log_level"`
	Debug           bool          `mapstructure:"debug"`
	Verbose         bool          `mapstructure:"verbose"`
	SysfsRoot       string        `mapstructure:"sysfs_root"`
	Socket          string        `mapstructure:"socket"`
	PIDFile         string        `mapstructure:"pid_file"`
	InputRoot       string        `mapstructure:"input_root"`
	InputScanCount  int           `mapstructure:"input_scan_count"`
	TouchKeyName    string        `mapstructure:"touchkey_name"`
	TouchscreenName string        `mapstructure:"touchscreen_name"`
	TapToWakeNode   string        `mapstructure:"tap_to_wake_node"`
	Metrics         MetricsConfig `mapstructure:"metrics"`

	// file is the configuration file actually read, empty if none.
	file  string
	flags *pflag.FlagSet
	opts  []Option
}

var _ Watcher = (*Config)(nil)

// RegisterFlags adds the daemon's flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagConfig, "", "Configuration file (default "+DefaultConfigFile+")")
	fs.String(FlagLogLevel, string(DefaultLogLevel), "Log level (debug, info, warning, error)")
	fs.Bool(FlagDebug, false, "Enable debugging mode")
	fs.Bool(FlagVerbose, false, "Enable verbose logging")
	fs.String(FlagSysfsRoot, DefaultSysfsRoot, "Prefix for every kernel node path")
	fs.String(FlagSocket, DefaultSocket, "Control socket path")
	fs.String(FlagPIDFile, DefaultPIDFile, "PID file path")
	fs.String(FlagTapToWakeNode, "", "Double-tap-to-wake node, empty to disable")
	fs.Bool(FlagMetrics, false, "Record transitions in the journal database")
}

// Load reads defaults, the configuration file, POWERHALD_* environment
// variables and any flags registered on flags, in increasing order of
// precedence. flags may be nil.
func Load(flags *pflag.FlagSet, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := options{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	path, explicit := configFile(flags, o)

	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	file := ""
	if _, err := os.Stat(path); err == nil || explicit {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
		file = path
	}

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, errFactory.Wrap(errors.ErrBindFlags, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}
	cfg.LogLevel = LogLevel(strings.ToLower(string(cfg.LogLevel)))
	if cfg.LogLevel == "warn" {
		cfg.LogLevel = LogLevelWarning
	}
	cfg.file = file
	cfg.flags = flags
	cfg.opts = opts

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// configFile picks the file to read and whether it was asked for
// explicitly. Only an explicit file must exist.
func configFile(flags *pflag.FlagSet, o options) (string, bool) {
	if o.configPath != "" {
		return o.configPath, true
	}
	if flags != nil {
		if path, err := flags.GetString(FlagConfig); err == nil && path != "" {
			return path, true
		}
	}
	if path := os.Getenv(o.envPrefix + "_CONFIG"); path != "" {
		return path, true
	}

	return DefaultConfigFile, false
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", string(DefaultLogLevel))
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
	v.SetDefault("sysfs_root", DefaultSysfsRoot)
	v.SetDefault("socket", DefaultSocket)
	v.SetDefault("pid_file", DefaultPIDFile)
	v.SetDefault("input_root", DefaultInputRoot)
	v.SetDefault("input_scan_count", DefaultInputScanCount)
	v.SetDefault("touchkey_name", DefaultTouchKey)
	v.SetDefault("touchscreen_name", DefaultTouchscreen)
	v.SetDefault("tap_to_wake_node", "")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.db_path", DefaultMetricsDB)
	v.SetDefault("metrics.batch_size", DefaultBatchSize)
	v.SetDefault("metrics.batch_timeout", DefaultBatchTimeout)
}

// Validate checks value ranges and required paths.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if !c.LogLevel.IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if c.InputScanCount <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "input_scan_count must be positive")
	}
	if c.SysfsRoot == "" {
		return errFactory.WithData(errors.ErrInvalidConfig, "sysfs_root must not be empty")
	}
	if c.Socket == "" {
		return errFactory.WithData(errors.ErrInvalidConfig, "socket must not be empty")
	}
	if c.TouchscreenName == "" {
		return errFactory.WithData(errors.ErrInvalidConfig, "touchscreen_name must not be empty")
	}
	if c.Metrics.Enabled && c.Metrics.DBPath == "" {
		return errFactory.WithData(errors.ErrInvalidConfig, "metrics.db_path must be set when metrics are enabled")
	}

	return nil
}

// Level resolves the effective log level. The debug and verbose
// switches win over log_level.
func (c *Config) Level() logger.LogLevel {
	switch {
	case c.Debug:
		return logger.DebugLevel
	case c.Verbose:
		return logger.InfoLevel
	}

	level, err := logger.ParseLevel(string(c.LogLevel))
	if err != nil {
		return logger.InfoLevel
	}

	return level
}

// File returns the configuration file that was read, or "" when only
// defaults, environment and flags were used.
func (c *Config) File() string {
	return c.file
}
