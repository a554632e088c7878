// Kiosk - virtual painting kiosk driven by a skeletal sensor
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-virtualpainting/internal/config"
	"github.com/teslashibe/go-virtualpainting/internal/log"
	"github.com/teslashibe/go-virtualpainting/pkg/kiosk"
)

func main() {
	configPath := flag.String("config", "kiosk.yaml", "Path to the YAML config (missing file uses defaults)")
	demo := flag.Bool("demo", false, "Run with a scripted visitor instead of a sensor")
	debug := flag.Bool("debug", false, "Enable debug logging")
	testMode := flag.Bool("test-mode", false, "Record sensor data with every painting")
	debugView := flag.Bool("debug-view", false, "Publish per-body detection rows to the dashboard")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Init("info")
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}
	if *debug {
		cfg.Log.Level = "debug"
	}
	cfg.Painting.TestMode = cfg.Painting.TestMode || *testMode
	cfg.Painting.DebugView = cfg.Painting.DebugView || *debugView
	log.InitWithOptions(log.Options{Level: cfg.Log.Level, File: cfg.Log.File})

	var opts []kiosk.Option
	if *demo {
		opts = append(opts, kiosk.WithDemo())
	}

	app, err := kiosk.New(cfg, opts...)
	if err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Init(ctx); err != nil {
		log.Error("initialization failed", "error", err)
		os.Exit(1)
	}
	defer app.Shutdown()

	if err := app.Run(ctx); err != nil {
		log.Error("runtime error", "error", err)
		app.Shutdown()
		os.Exit(1)
	}
}
