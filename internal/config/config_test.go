package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		SavedImagesDirEnv, SavedBackgroundImagesDirEnv,
		"SENSOR_URL", "LOG_LEVEL", "DASHBOARD_PORT",
	} {
		t.Setenv(name, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kiosk.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault_Valid(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("Expected default config to validate, got %v", err)
	}
	if cfg.Distance.Default != 2.0 {
		t.Errorf("Expected default distance 2.0, got %v", cfg.Distance.Default)
	}
	if cfg.Distance.Variation != 0.5 {
		t.Errorf("Expected variation 0.5, got %v", cfg.Distance.Variation)
	}
	if cfg.Phases.SnapshotDelay != 750*time.Millisecond {
		t.Errorf("Expected 750ms snapshot delay, got %v", cfg.Phases.SnapshotDelay)
	}
	if cfg.Phases.CountdownFrom != 3 {
		t.Errorf("Expected untouched countdown 3, got %d", cfg.Phases.CountdownFrom)
	}
	if cfg.Painting.Algorithm != "hand_tip_right_line" {
		t.Errorf("Expected hand_tip_right_line, got %s", cfg.Painting.Algorithm)
	}
	if cfg.Events.Backend != "mqtt" || cfg.Events.Topic != "kiosk/events" {
		t.Errorf("Expected mqtt backend with default topic, got %+v", cfg.Events)
	}
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	tests := map[string]string{
		"inverted area":     "detection:\n  left: 0.8\n  right: 0.2\n",
		"unknown algorithm": "painting:\n  algorithm: spray\n",
		"mqtt without url":  "events:\n  backend: mqtt\n",
		"s3 without bucket": "upload:\n  backend: s3\n",
		"gallery no addr":   "gallery:\n  enabled: true\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, body))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeFile(t, "frame: [\n"))
	if err == nil {
		t.Fatal("Expected a parse error")
	}
	if errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected a parse error, got a validation error: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv(SavedImagesDirEnv, dir)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SENSOR_URL", "ws://sensor:9000/bodies")

	cfg, err := Load(writeFile(t, "output:\n  images_dir: /elsewhere\nlog:\n  level: warn\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Output.ImagesDir != dir {
		t.Errorf("Expected images dir %s, got %s", dir, cfg.Output.ImagesDir)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected env log level debug, got %s", cfg.Log.Level)
	}
	if cfg.Sensor.URL != "ws://sensor:9000/bodies" {
		t.Errorf("Expected env sensor url, got %s", cfg.Sensor.URL)
	}
}

func TestEnvHelpers(t *testing.T) {
	clearEnv(t)
	if got := SensorURL("ws://x"); got != "ws://x" {
		t.Errorf("Expected fallback url, got %s", got)
	}
	if got := DashboardPort(); got != DefaultDashboardPort {
		t.Errorf("Expected default port, got %s", got)
	}
	if got := LogLevel(); got != "info" {
		t.Errorf("Expected info, got %s", got)
	}
	wd, _ := os.Getwd()
	if got := SavedImagesDir(); got != wd {
		t.Errorf("Expected working directory %s, got %s", wd, got)
	}
}
