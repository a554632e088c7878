package tracking

import (
	"github.com/teslashibe/go-virtualpainting/pkg/calibration"
	"github.com/teslashibe/go-virtualpainting/pkg/skeleton"
)

// Config holds the presence parameters the tracker evaluates against
type Config struct {
	// Area is the detection area in projected color-space pixels
	Area skeleton.Rect

	// DefaultDistance is the presence ceiling (meters) before calibration
	DefaultDistance float64

	// VariationMargin is added to a person's calibrated distance to form
	// their personal ceiling
	VariationMargin float64
}

// Detection area ratios of a 1920x1080 color frame
const (
	DefaultLeftRatio   = 0.28
	DefaultTopRatio    = 0.20
	DefaultRightRatio  = 0.70
	DefaultBottomRatio = 0.97
)

// DefaultConfig returns the kiosk defaults for a 1920x1080 color frame
func DefaultConfig() Config {
	return Config{
		Area: skeleton.RectFromRatios(1920, 1080,
			DefaultLeftRatio, DefaultTopRatio, DefaultRightRatio, DefaultBottomRatio),
		DefaultDistance: calibration.DefaultDistance,
		VariationMargin: 0.5,
	}
}
