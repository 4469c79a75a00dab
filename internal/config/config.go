package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gonum.org/v1/plot/vg"
)

// EnvPrefix is prepended to every key when read from the environment,
// so data_dir is FARS_DATA_DIR.
const EnvPrefix = "FARS"

// Keys understood by Load. Command-line flags are bound to these.
const (
	KeyDataDir         = "data_dir"
	KeyHTTPAddr        = "http_addr"
	KeyLogLevel        = "log_level"
	KeyLogFormat       = "log_format"
	KeyShutdownTimeout = "shutdown_timeout"
	KeyCacheSize       = "cache_size"
	KeyPlotWidth       = "plot_width"
	KeyPlotHeight      = "plot_height"
	KeyKafkaBrokers    = "kafka_brokers"
	KeyKafkaTopic      = "kafka_topic"
	KeyKafkaEnabled    = "kafka_enabled"
)

// Config holds all service settings.
type Config struct {
	DataDir         string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// CacheSize bounds the number of parsed year files kept in memory by
	// the HTTP server. Zero disables the cache.
	CacheSize int

	PlotWidth  vg.Length
	PlotHeight vg.Length

	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDataDir, ".")
	v.SetDefault(KeyHTTPAddr, ":8080")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyShutdownTimeout, "10s")
	v.SetDefault(KeyCacheSize, 16)
	v.SetDefault(KeyPlotWidth, "6in")
	v.SetDefault(KeyPlotHeight, "6in")
	v.SetDefault(KeyKafkaBrokers, "localhost:9092")
	v.SetDefault(KeyKafkaTopic, "fars-accidents")
	v.SetDefault(KeyKafkaEnabled, false)
}

// Load reads configuration from v, which may carry bound flags and a config
// file, falling back to FARS_* environment variables and then defaults.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	shutdownTimeout, err := parsePositiveDuration(v, KeyShutdownTimeout)
	if err != nil {
		return nil, err
	}

	width, err := parseLength(v, KeyPlotWidth)
	if err != nil {
		return nil, err
	}
	height, err := parseLength(v, KeyPlotHeight)
	if err != nil {
		return nil, err
	}

	cacheSize := v.GetInt(KeyCacheSize)
	if cacheSize < 0 {
		return nil, fmt.Errorf("invalid %s: %d", envName(KeyCacheSize), cacheSize)
	}

	cfg := &Config{
		DataDir:         v.GetString(KeyDataDir),
		HTTPAddr:        v.GetString(KeyHTTPAddr),
		LogLevel:        v.GetString(KeyLogLevel),
		LogFormat:       v.GetString(KeyLogFormat),
		ShutdownTimeout: shutdownTimeout,
		CacheSize:       cacheSize,
		PlotWidth:       width,
		PlotHeight:      height,
		KafkaBrokers:    parseBrokers(v.GetString(KeyKafkaBrokers)),
		KafkaTopic:      v.GetString(KeyKafkaTopic),
		KafkaEnabled:    v.GetBool(KeyKafkaEnabled),
	}

	if cfg.DataDir == "" {
		return nil, errors.New("FARS_DATA_DIR is required")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("FARS_KAFKA_BROKERS is required when kafka is enabled")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("FARS_KAFKA_TOPIC is required when kafka is enabled")
		}
	}

	return cfg, nil
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}

func parsePositiveDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", envName(key), raw)
	}
	return d, nil
}

func parseLength(v *viper.Viper, key string) (vg.Length, error) {
	raw := v.GetString(key)
	l, err := vg.ParseLength(raw)
	if err != nil || l <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", envName(key), raw)
	}
	return l, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
