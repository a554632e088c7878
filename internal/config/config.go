// Package config loads kiosk configuration from YAML, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete kiosk configuration. It is passed by value into
// constructors; nothing reads it from package state.
type Config struct {
	Frame     FrameConfig     `yaml:"frame"`
	Detection DetectionConfig `yaml:"detection"`
	Distance  DistanceConfig  `yaml:"distance"`
	Phases    PhaseConfig     `yaml:"phases"`
	Painting  PaintingConfig  `yaml:"painting"`
	Output    OutputConfig    `yaml:"output"`
	Sensor    SensorConfig    `yaml:"sensor"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Events    EventsConfig    `yaml:"events"`
	Gallery   GalleryConfig   `yaml:"gallery"`
	Upload    UploadConfig    `yaml:"upload"`
	Log       LogConfig       `yaml:"log"`
}

// FrameConfig is the projected (color) frame size the detection area is computed from.
type FrameConfig struct {
	Width  int `yaml:"width" validate:"gt=0"`
	Height int `yaml:"height" validate:"gt=0"`
}

// DetectionConfig holds the detection area as fractions of the frame size.
type DetectionConfig struct {
	Left   float64 `yaml:"left" validate:"gte=0,lte=1"`
	Top    float64 `yaml:"top" validate:"gte=0,lte=1"`
	Right  float64 `yaml:"right" validate:"gte=0,lte=1,gtfield=Left"`
	Bottom float64 `yaml:"bottom" validate:"gte=0,lte=1,gtfield=Top"`
}

// DistanceConfig holds the distance ceilings in meters.
type DistanceConfig struct {
	Default   float64 `yaml:"default" validate:"gt=0"`
	Variation float64 `yaml:"variation" validate:"gte=0"`
}

// PhaseConfig holds session phase durations.
type PhaseConfig struct {
	ConfirmPresence   time.Duration `yaml:"confirm_presence" validate:"gt=0"`
	CountdownFrom     int           `yaml:"countdown_from" validate:"gt=0"`
	CountdownInterval time.Duration `yaml:"countdown_interval" validate:"gt=0"`
	SnapshotDelay     time.Duration `yaml:"snapshot_delay" validate:"gt=0"`
	Painting          time.Duration `yaml:"painting" validate:"gt=0"`
	SavingDisplay     time.Duration `yaml:"saving_display" validate:"gt=0"`
}

// PaintingConfig selects the painting algorithm and session flavor.
type PaintingConfig struct {
	Algorithm string  `yaml:"algorithm" validate:"oneof=hand_right_line hand_right_polyline hand_tip_right_line"`
	TestMode  bool    `yaml:"test_mode"`
	DebugView bool    `yaml:"debug_view"`
	Thickness float64 `yaml:"thickness" validate:"gt=0"`
}

// OutputConfig holds saved image directories.
type OutputConfig struct {
	ImagesDir     string `yaml:"images_dir"`
	BackgroundDir string `yaml:"background_dir"`
}

// SensorConfig points at the skeletal sensor bridge.
type SensorConfig struct {
	URL       string        `yaml:"url"`
	Codec     string        `yaml:"codec" validate:"oneof=json msgpack"`
	Reconnect time.Duration `yaml:"reconnect" validate:"gt=0"`
}

// DashboardConfig controls the web dashboard.
type DashboardConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Port       string  `yaml:"port"`
	StatusRate float64 `yaml:"status_rate" validate:"gt=0"`
	StaticDir  string  `yaml:"static_dir"`
}

// EventsConfig selects the event publisher backend.
type EventsConfig struct {
	Backend  string `yaml:"backend" validate:"oneof=none mqtt amqp"`
	URL      string `yaml:"url" validate:"required_unless=Backend none"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

// GalleryConfig controls the Redis gallery index.
type GalleryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr" validate:"required_if=Enabled true"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
	Keep     int64  `yaml:"keep" validate:"gte=0"`
}

// UploadConfig selects a remote copy target for saved paintings.
type UploadConfig struct {
	Backend         string `yaml:"backend" validate:"oneof=none s3 drive"`
	Bucket          string `yaml:"bucket" validate:"required_if=Backend s3"`
	Region          string `yaml:"region"`
	Prefix          string `yaml:"prefix"`
	DriveFolderID   string `yaml:"drive_folder_id" validate:"required_if=Backend drive"`
	CredentialsFile string `yaml:"credentials_file" validate:"required_if=Backend drive"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	File  string `yaml:"file"`
}

// Default returns the configuration the kiosk ships with.
func Default() Config {
	return Config{
		Frame: FrameConfig{Width: 1920, Height: 1080},
		Detection: DetectionConfig{
			Left:   0.28,
			Top:    0.20,
			Right:  0.70,
			Bottom: 0.97,
		},
		Distance: DistanceConfig{
			Default:   DefaultDistanceThreshold,
			Variation: DefaultDistanceVariation,
		},
		Phases: PhaseConfig{
			ConfirmPresence:   1 * time.Second,
			CountdownFrom:     3,
			CountdownInterval: 1 * time.Second,
			SnapshotDelay:     750 * time.Millisecond,
			Painting:          10 * time.Second,
			SavingDisplay:     4 * time.Second,
		},
		Painting: PaintingConfig{
			Algorithm: "hand_right_line",
			Thickness: 20,
		},
		Output: OutputConfig{
			ImagesDir:     SavedImagesDir(),
			BackgroundDir: SavedBackgroundImagesDir(),
		},
		Sensor: SensorConfig{
			URL:       SensorURL(DefaultSensorURL),
			Codec:     "json",
			Reconnect: 2 * time.Second,
		},
		Dashboard: DashboardConfig{
			Enabled:    true,
			Port:       DashboardPort(),
			StatusRate: 10,
		},
		Events:  EventsConfig{Backend: "none", Topic: "kiosk/events", ClientID: "virtual-painting"},
		Gallery: GalleryConfig{Key: "kiosk:gallery", Keep: 200},
		Upload:  UploadConfig{Backend: "none"},
		Log:     LogConfig{Level: LogLevel()},
	}
}

// Load reads a YAML file over the defaults. A missing file is not an error;
// the defaults are returned. A .env next to the working directory is loaded
// first so environment fallbacks see it.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv lets the environment override file settings.
func applyEnv(cfg *Config) {
	if dir := os.Getenv(SavedImagesDirEnv); dir != "" {
		cfg.Output.ImagesDir = dir
	}
	if dir := os.Getenv(SavedBackgroundImagesDirEnv); dir != "" {
		cfg.Output.BackgroundDir = dir
	}
	if cfg.Output.ImagesDir == "" {
		cfg.Output.ImagesDir = SavedImagesDir()
	}
	if cfg.Output.BackgroundDir == "" {
		cfg.Output.BackgroundDir = SavedBackgroundImagesDir()
	}
	if url := os.Getenv("SENSOR_URL"); url != "" {
		cfg.Sensor.URL = url
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if port := os.Getenv("DASHBOARD_PORT"); port != "" {
		cfg.Dashboard.Port = port
	}
}

var validate = validator.New()

// Validate checks field constraints.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
