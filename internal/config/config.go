package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config holds the daemon's runtime settings, loaded from the environment.
type Config struct {
	AppEnv   string
	LogLevel slog.Level

	// MQTTBroker is a paho broker URL. Empty disables the MQTT sink.
	MQTTBroker      string
	MQTTClientID    string
	MQTTTopicPrefix string

	// SQLitePath is the readings database location. Empty disables the
	// recorder sink.
	SQLitePath string

	// StatsInterval is how often aggregate scan statistics are logged.
	StatsInterval time.Duration
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	clientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if clientID == "" {
		clientID = "gotherm"
	}

	topicPrefix := strings.TrimSpace(os.Getenv("MQTT_TOPIC_PREFIX"))
	if topicPrefix == "" {
		topicPrefix = "gotherm"
	}

	statsIntervalStr := strings.TrimSpace(os.Getenv("STATS_INTERVAL"))
	if statsIntervalStr == "" {
		statsIntervalStr = "60s"
	}
	statsInterval, err := time.ParseDuration(statsIntervalStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid STATS_INTERVAL %q: %w", statsIntervalStr, err)
	}
	if statsInterval <= 0 {
		return Config{}, fmt.Errorf("STATS_INTERVAL must be positive, got %q", statsIntervalStr)
	}

	return Config{
		AppEnv:          appEnv,
		LogLevel:        level,
		MQTTBroker:      strings.TrimSpace(os.Getenv("MQTT_BROKER")),
		MQTTClientID:    clientID,
		MQTTTopicPrefix: topicPrefix,
		SQLitePath:      strings.TrimSpace(os.Getenv("SQLITE_PATH")),
		StatsInterval:   statsInterval,
	}, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
