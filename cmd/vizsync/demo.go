package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/hupe1980/vizsync"
	"github.com/hupe1980/vizsync/codec"
	"github.com/hupe1980/vizsync/internal/demo"
	"github.com/hupe1980/vizsync/store/sqlite"
	"golang.org/x/time/rate"
)

func runDemo(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	out := fs.String("out", "", "recording path (default: recording.path)")
	live := fs.Bool("live", false, "draw in the terminal instead of recording")
	steps := fs.Int("steps", 0, "number of frames (default: demo.steps)")

	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	if *out != "" {
		cfg.Recording.Path = *out
	}
	if *steps > 0 {
		cfg.Demo.Steps = *steps
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	scene := demo.Scene{
		Steps:    cfg.Demo.Steps,
		Rings:    cfg.Demo.Rings,
		Segments: cfg.Demo.Segments,
		Seed:     cfg.Demo.Seed,
	}

	if *live {
		b, ctx, cancel, err := newTerminal(ctx, "vizsync demo")
		if err != nil {
			return err
		}
		defer cancel()

		f, err := vizsync.Open(ctx, vizsync.WithBackend(b), vizsync.WithLogger(vizsync.NoopLogger()))
		if err != nil {
			b.Close()
			return err
		}
		defer f.Close()

		limiter := rate.NewLimiter(rate.Limit(cfg.Playback.FPS), 1)
		_, err = demo.Run(ctx, f, scene, func(ctx context.Context, _ int) error {
			return limiter.Wait(ctx)
		})
		return err
	}

	compression, err := codec.ParseCompression(cfg.Recording.Compression)
	if err != nil {
		return err
	}
	c, _ := codec.ByName(cfg.Recording.Codec)

	optFns := []vizsync.Option{
		vizsync.WithMode(vizsync.ModeRecord),
		vizsync.WithLogger(logger),
		vizsync.WithRecording(cfg.Recording.Path, func(o *sqlite.Options) {
			o.Compression = compression
			o.Codec = c
		}),
	}
	if cfg.Upload.Backend != "" {
		bs, err := newBlobStore(ctx, cfg)
		if err != nil {
			return err
		}
		optFns = append(optFns, vizsync.WithUpload(bs, cfg.Upload.Name))
	}

	metrics := &vizsync.BasicMetricsCollector{}
	optFns = append(optFns, vizsync.WithMetricsCollector(metrics))

	f, err := vizsync.Open(ctx, optFns...)
	if err != nil {
		return err
	}
	frames, runErr := demo.Run(ctx, f, scene, nil)
	if err := f.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return runErr
	}

	stats := metrics.GetStats()
	fmt.Printf("recorded %d frames to %s (%d adds, %d updates, avg update %dns)\n",
		frames, cfg.Recording.Path, stats.AddCount, stats.UpdateCount, stats.UpdateAvgNanos)
	return nil
}
