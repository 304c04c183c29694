package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hupe1980/vizsync/blobstore"
	"github.com/hupe1980/vizsync/replay"
	"github.com/hupe1980/vizsync/store/sqlite"
)

func runReplay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fps := fs.Float64("fps", 0, "playback rate (default: playback.fps)")
	follow := fs.Bool("follow", false, "wait for frames of a recording in progress")
	fetch := fs.String("fetch", "", "download this uploaded recording first")

	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() > 0 {
		cfg.Recording.Path = fs.Arg(0)
	}
	if *fps != 0 {
		cfg.Playback.FPS = *fps
	}
	if *follow {
		cfg.Playback.Follow = true
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	if *fetch != "" {
		bs, err := newBlobStore(ctx, cfg)
		if err != nil {
			return err
		}
		if err := blobstore.DownloadFile(ctx, bs, *fetch, cfg.Recording.Path); err != nil {
			return err
		}
		logger.InfoContext(ctx, "recording downloaded", "name", *fetch, "path", cfg.Recording.Path)
	}
	if _, err := os.Stat(cfg.Recording.Path); err != nil {
		return fmt.Errorf("recording: %w", err)
	}

	st, err := sqlite.New(cfg.Recording.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	b, ctx, cancel, err := newTerminal(ctx, "vizsync replay")
	if err != nil {
		return err
	}
	defer cancel()
	defer b.Close()

	p := replay.New(st, b, func(o *replay.Options) {
		o.FPS = cfg.Playback.FPS
		o.Follow = cfg.Playback.Follow
		o.IdleTimeout = time.Duration(cfg.Playback.IdleTimeout)
		o.MaxFrames = cfg.Playback.MaxFrames
	})
	_, err = p.Play(ctx)
	return err
}
