// Command vizsync records and replays visual object scenes.
//
// Usage:
//
//	vizsync demo   [-config file] [-out scene.db] [-live] [-steps n]
//	vizsync replay [-config file] [-fps n] [-follow] [-fetch name] [scene.db]
//	vizsync ls     [-config file] [prefix]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/hupe1980/vizsync"
	"github.com/hupe1980/vizsync/internal/config"
	"github.com/hupe1980/vizsync/render/term"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "demo":
		err = runDemo(ctx, os.Args[2:])
	case "replay":
		err = runReplay(ctx, os.Args[2:])
	case "ls":
		err = runList(ctx, os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		usage()
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "vizsync: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: vizsync <command> [flags]

commands:
  demo    record (or show live with -live) the demo scene
  replay  play a recording in the terminal
  ls      list uploaded recordings`)
}

// loadConfig parses the shared -config flag along with the command flags.
func loadConfig(fs *flag.FlagSet, args []string) (*config.Config, error) {
	path := fs.String("config", "", "config file (default: search "+config.ConfigFileName+")")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg, _, err := config.Load(*path)
	return cfg, err
}

func newLogger(cfg *config.Config) (*vizsync.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	if cfg.Log.Format == "json" {
		return vizsync.NewJSONLogger(level), nil
	}
	return vizsync.NewTextLogger(level), nil
}

// newTerminal opens the terminal backend and cancels ctx on q, Esc or
// Ctrl-C. The terminal runs in raw mode, so Ctrl-C is a key event.
func newTerminal(ctx context.Context, title string) (*term.Backend, context.Context, context.CancelFunc, error) {
	b, err := term.New(func(o *term.Options) { o.Title = title })
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		for {
			switch ev := b.Screen().PollEvent().(type) {
			case nil:
				return
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					cancel()
					return
				}
			case *tcell.EventResize:
				b.Screen().Sync()
			}
		}
	}()
	return b, ctx, cancel, nil
}
