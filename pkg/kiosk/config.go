package kiosk

import (
	"github.com/teslashibe/go-virtualpainting/internal/config"
	"github.com/teslashibe/go-virtualpainting/pkg/painting"
	"github.com/teslashibe/go-virtualpainting/pkg/session"
	"github.com/teslashibe/go-virtualpainting/pkg/skeleton"
	"github.com/teslashibe/go-virtualpainting/pkg/tracking"
)

// DetectionArea computes the detection rectangle in projected pixels
func DetectionArea(cfg config.Config) skeleton.Rect {
	d := cfg.Detection
	return skeleton.RectFromRatios(cfg.Frame.Width, cfg.Frame.Height, d.Left, d.Top, d.Right, d.Bottom)
}

// TrackingConfig maps the kiosk configuration onto the tracker
func TrackingConfig(cfg config.Config) tracking.Config {
	return tracking.Config{
		Area:            DetectionArea(cfg),
		DefaultDistance: cfg.Distance.Default,
		VariationMargin: cfg.Distance.Variation,
	}
}

// SessionConfig maps the kiosk configuration onto the state machine
func SessionConfig(cfg config.Config) session.Config {
	p := cfg.Phases
	return session.Config{
		ConfirmPresence:   p.ConfirmPresence,
		CountdownFrom:     p.CountdownFrom,
		CountdownInterval: p.CountdownInterval,
		SnapshotDelay:     p.SnapshotDelay,
		Painting:          p.Painting,
		SavingDisplay:     p.SavingDisplay,
		DefaultDistance:   cfg.Distance.Default,
		ImagesDir:         cfg.Output.ImagesDir,
		BackgroundDir:     cfg.Output.BackgroundDir,
		TestMode:          cfg.Painting.TestMode,
	}
}

// PaintingOptions maps the kiosk configuration onto painting sessions
func PaintingOptions(cfg config.Config) (painting.Options, error) {
	alg, err := painting.ParseAlgorithm(cfg.Painting.Algorithm)
	if err != nil {
		return painting.Options{}, err
	}
	return painting.Options{
		Algorithm: alg,
		TestMode:  cfg.Painting.TestMode,
		Thickness: cfg.Painting.Thickness,
		Width:     cfg.Frame.Width,
		Height:    cfg.Frame.Height,
	}, nil
}
