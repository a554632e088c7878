// Replay - drive the kiosk core with recorded sensor data, offline
//
// Each recording (sensor_data.json from a test mode session, or a .msgpack
// capture) is played through a fresh kiosk. Paintings are written to the
// configured output directories.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cheggaaa/pb/v3"

	"github.com/teslashibe/go-virtualpainting/internal/config"
	"github.com/teslashibe/go-virtualpainting/internal/log"
	"github.com/teslashibe/go-virtualpainting/pkg/kiosk"
	"github.com/teslashibe/go-virtualpainting/pkg/sensor"
)

const barTemplate = `{{ string . "prefix" }} {{counters . }} {{bar . }} {{percent . }} {{etime . "%s elapsed"}}`

func main() {
	configPath := flag.String("config", "kiosk.yaml", "Path to the YAML config (missing file uses defaults)")
	speed := flag.Float64("speed", 1, "Playback speed multiplier")
	out := flag.String("out", "", "Write paintings and backgrounds under this directory")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: replay [flags] recording...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Init("info")
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}
	if *out != "" {
		cfg.Output.ImagesDir = *out
		cfg.Output.BackgroundDir = *out
	}
	cfg.Dashboard.Enabled = false
	log.InitWithOptions(log.Options{Level: cfg.Log.Level, File: cfg.Log.File})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	failed := 0
	for _, path := range flag.Args() {
		if err := replay(ctx, cfg, path, *speed); err != nil {
			log.Error("replay failed", "recording", path, "error", err)
			failed++
		}
		if ctx.Err() != nil {
			break
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func replay(ctx context.Context, cfg config.Config, path string, speed float64) error {
	rec, err := sensor.OpenRecording(path)
	if err != nil {
		return err
	}
	player := sensor.NewPlayer(rec, speed)

	bar := pb.ProgressBarTemplate(barTemplate).Start(player.Len())
	bar.Set("prefix", path)
	player.OnFrame = func(i, _ int) { bar.SetCurrent(int64(i)) }

	app, err := kiosk.New(cfg, kiosk.WithSource(player))
	if err != nil {
		bar.Finish()
		return err
	}
	if err := app.Init(ctx); err != nil {
		bar.Finish()
		return err
	}

	runErr := app.Run(ctx)
	bar.Finish()
	app.Shutdown()

	stats := app.Stats()
	log.Info("replay finished", "recording", path, "frames", player.Len(),
		"saved", stats.Saved, "failed", stats.Failed)
	return runErr
}
