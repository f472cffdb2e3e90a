package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "LOG_LEVEL", "MQTT_BROKER", "MQTT_CLIENT_ID", "MQTT_TOPIC_PREFIX", "SQLITE_PATH", "STATS_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.AppEnv != "dev" {
		t.Errorf("AppEnv = %q; want dev", cfg.AppEnv)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v; want info", cfg.LogLevel)
	}
	if cfg.MQTTBroker != "" || cfg.SQLitePath != "" {
		t.Errorf("sinks enabled by default: broker=%q sqlite=%q", cfg.MQTTBroker, cfg.SQLitePath)
	}
	if cfg.MQTTClientID != "gotherm" || cfg.MQTTTopicPrefix != "gotherm" {
		t.Errorf("mqtt defaults = (%q, %q); want (gotherm, gotherm)", cfg.MQTTClientID, cfg.MQTTTopicPrefix)
	}
	if cfg.StatsInterval != time.Minute {
		t.Errorf("StatsInterval = %v; want 1m", cfg.StatsInterval)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("SQLITE_PATH", "/var/lib/gotherm/readings.db")
	t.Setenv("STATS_INTERVAL", "15s")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.AppEnv != "prod" {
		t.Errorf("AppEnv = %q; want prod", cfg.AppEnv)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v; want debug", cfg.LogLevel)
	}
	if cfg.MQTTBroker != "tcp://broker:1883" {
		t.Errorf("MQTTBroker = %q", cfg.MQTTBroker)
	}
	if cfg.StatsInterval != 15*time.Second {
		t.Errorf("StatsInterval = %v; want 15s", cfg.StatsInterval)
	}
}

func TestLoadFromEnvRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad app env", "APP_ENV", "staging"},
		{"bad log level", "LOG_LEVEL", "loud"},
		{"bad stats interval", "STATS_INTERVAL", "soon"},
		{"negative stats interval", "STATS_INTERVAL", "-5s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("LoadFromEnv() with %s=%q succeeded; want error", tt.key, tt.value)
			}
		})
	}
}
