package config

import "os"

// Defaults shared with the rest of the kiosk.
const (
	DefaultDistanceThreshold = 2.0 // meters
	DefaultDistanceVariation = 0.5 // meters
	DefaultSensorURL         = "ws://127.0.0.1:8181/bodies"
	DefaultDashboardPort     = "8080"
)

// Environment variable names for the saved image directories.
const (
	SavedImagesDirEnv           = "VirtualPainting_SavedImagesDirectoryPath"
	SavedBackgroundImagesDirEnv = "VirtualPainting_SavedBackgroundImagesDirectoryPath"
)

// SavedImagesDir returns the composite output directory from the environment.
// Falls back to the current working directory if not set.
func SavedImagesDir() string {
	return envOrCwd(SavedImagesDirEnv)
}

// SavedBackgroundImagesDir returns the background output directory from the environment.
// Falls back to the current working directory if not set.
func SavedBackgroundImagesDir() string {
	return envOrCwd(SavedBackgroundImagesDirEnv)
}

func envOrCwd(name string) string {
	if dir := os.Getenv(name); dir != "" {
		return dir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// SensorURL returns the sensor bridge URL from SENSOR_URL.
// Falls back to the provided default if not set.
func SensorURL(defaultURL string) string {
	if url := os.Getenv("SENSOR_URL"); url != "" {
		return url
	}
	return defaultURL
}

// DashboardPort returns the dashboard port from DASHBOARD_PORT or default.
func DashboardPort() string {
	if port := os.Getenv("DASHBOARD_PORT"); port != "" {
		return port
	}
	return DefaultDashboardPort
}

// LogLevel returns the log level from LOG_LEVEL or "info".
func LogLevel() string {
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return "info"
}
