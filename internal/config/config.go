package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sink names accepted in REPORT_SINKS.
const (
	SinkText  = "text"
	SinkLog   = "log"
	SinkNATS  = "nats"
	SinkRedis = "redis"
)

// Config holds all runtime configuration for the matching engine.
type Config struct {
	ListenNetwork     string
	ListenAddr        string
	WireFormat        string
	HTTPPort          int
	LogLevel          string
	ReportSinks       []string
	NATSURL           string
	NATSSubjectPrefix string
	RedisAddr         string
	RedisChannel      string
	RecentEvents      int
	SampleInterval    time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

var defaults = map[string]any{
	"LISTEN_NETWORK":      "unix",
	"LISTEN_ADDR":         "/tmp/matchingengine.sock",
	"WIRE_FORMAT":         "binary",
	"HTTP_PORT":           "8080",
	"LOG_LEVEL":           "info",
	"REPORT_SINKS":        SinkText,
	"NATS_URL":            "nats://127.0.0.1:4222",
	"NATS_SUBJECT_PREFIX": "engine.events",
	"REDIS_ADDR":          "127.0.0.1:6379",
	"REDIS_CHANNEL":       "engine:events",
	"RECENT_EVENTS":       "1024",
	"SAMPLE_INTERVAL":     "1s",
	"READ_TIMEOUT":        "5s",
	"WRITE_TIMEOUT":       "10s",
	"IDLE_TIMEOUT":        "60s",
	"SHUTDOWN_TIMEOUT":    "10s",
}

// Load reads configuration from environment variables, and from the file
// named by CONFIG_FILE when set, applies defaults, and validates values.
// Environment variables take precedence over the file. It returns an
// error for any invalid value.
func Load() (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("invalid CONFIG_FILE: %w", err)
		}
	}

	network := v.GetString("LISTEN_NETWORK")
	if network != "unix" && network != "tcp" {
		return nil, fmt.Errorf("invalid LISTEN_NETWORK: %q, must be one of: unix, tcp", network)
	}

	addr := v.GetString("LISTEN_ADDR")
	if addr == "" {
		return nil, fmt.Errorf("invalid LISTEN_ADDR: must not be empty")
	}

	format := strings.ToLower(v.GetString("WIRE_FORMAT"))
	if format != "binary" && format != "text" {
		return nil, fmt.Errorf("invalid WIRE_FORMAT: %q, must be one of: binary, text", format)
	}

	httpPort, err := getInt(v, "HTTP_PORT")
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_PORT: %w", err)
	}
	if httpPort < 0 || httpPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP_PORT: %d out of range", httpPort)
	}

	logLevel := v.GetString("LOG_LEVEL")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	sinks, err := parseSinks(v.GetString("REPORT_SINKS"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_SINKS: %w", err)
	}

	recentEvents, err := getInt(v, "RECENT_EVENTS")
	if err != nil {
		return nil, fmt.Errorf("invalid RECENT_EVENTS: %w", err)
	}
	if recentEvents <= 0 {
		return nil, fmt.Errorf("invalid RECENT_EVENTS: %d, must be > 0", recentEvents)
	}

	sampleInterval, err := getDuration(v, "SAMPLE_INTERVAL")
	if err != nil {
		return nil, fmt.Errorf("invalid SAMPLE_INTERVAL: %w", err)
	}
	if sampleInterval == 0 {
		return nil, fmt.Errorf("invalid SAMPLE_INTERVAL: must be > 0")
	}

	readTimeout, err := getDuration(v, "READ_TIMEOUT")
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration(v, "WRITE_TIMEOUT")
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration(v, "IDLE_TIMEOUT")
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration(v, "SHUTDOWN_TIMEOUT")
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		ListenNetwork:     network,
		ListenAddr:        addr,
		WireFormat:        format,
		HTTPPort:          httpPort,
		LogLevel:          logLevel,
		ReportSinks:       sinks,
		NATSURL:           v.GetString("NATS_URL"),
		NATSSubjectPrefix: v.GetString("NATS_SUBJECT_PREFIX"),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		RedisChannel:      v.GetString("REDIS_CHANNEL"),
		RecentEvents:      recentEvents,
		SampleInterval:    sampleInterval,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ShutdownTimeout:   shutdownTimeout,
	}, nil
}

// HasSink reports whether the named sink is enabled.
func (c *Config) HasSink(name string) bool {
	for _, s := range c.ReportSinks {
		if s == name {
			return true
		}
	}
	return false
}

func getInt(v *viper.Viper, key string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(v.GetString(key)))
}

func getDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", d)
	}
	return d, nil
}

func parseSinks(raw string) ([]string, error) {
	var sinks []string
	seen := make(map[string]bool)
	for _, s := range strings.Split(raw, ",") {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		switch s {
		case SinkText, SinkLog, SinkNATS, SinkRedis:
		default:
			return nil, fmt.Errorf("unknown sink %q, must be one of: text, log, nats, redis", s)
		}
		seen[s] = true
		sinks = append(sinks, s)
	}
	return sinks, nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
