package config

import (
	"os"
	"strings"

	"codeberg.org/mutker/waterforcectl/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	defaultInterval = 5
)

// Config holds the daemon configuration. Speed targets of zero and a CPU
// temperature of -1 mean "do not touch the device setting".
type Config struct {
	Interval    int    `mapstructure:"interval"`
	FanSpeed    int    `mapstructure:"fanspeed"`
	PumpSpeed   int    `mapstructure:"pumpspeed"`
	CPUTemp     int    `mapstructure:"cputemp"`
	Monitor     bool   `mapstructure:"monitor"`
	LogLevel    string `mapstructure:"log_level"`
	Telemetry   bool   `mapstructure:"telemetry"`
	TelemetryDB string `mapstructure:"database"`
}

// Load reads configuration from the config file, environment and command
// line flags. Flags override file values. The config file is looked up in
// /etc and the working directory unless WATERFORCECTL_CONFIG points at an
// explicit path.
func Load() (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	v.SetDefault("interval", defaultInterval)
	v.SetDefault("fanspeed", 0)
	v.SetDefault("pumpspeed", 0)
	v.SetDefault("cputemp", -1)
	v.SetDefault("monitor", false)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("telemetry", false)
	v.SetDefault("database", "")

	fs := pflag.NewFlagSet("waterforcectl", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Int("interval", defaultInterval, "Interval between status polls in seconds")
	fs.Int("fanspeed", 0, "Target fan speed in RPM (0 leaves the device setting)")
	fs.Int("pumpspeed", 0, "Target pump speed in RPM (0 leaves the device setting)")
	fs.Int("cputemp", -1, "CPU temperature to report to the cooler display (-1 disables)")
	fs.Bool("monitor", false, "Only monitor coolant temperature and speeds")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.Bool("telemetry", false, "Enable telemetry collection")
	fs.String("database", "", "Path to the telemetry database")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	if path := os.Getenv("WATERFORCECTL_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("waterforcectl")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	// Command line flags override file values
	fs.Visit(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		v.Set(key, f.Value.String())
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks value ranges that do not depend on the attached device.
// Device-dependent limits (speed ceilings) are enforced by the engine.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}

	switch c.LogLevel {
	case "debug", "info", "warning", "warn", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if c.Telemetry && c.TelemetryDB == "" {
		return errFactory.WithMessage(errors.ErrMissingConfig, "telemetry enabled without database path")
	}

	return nil
}
