//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"memclock/app"
	"memclock/hal"
	"memclock/internal/buildinfo"
	"memclock/internal/config"
)

func main() {
	var (
		configPath  string
		showVersion bool
		over        config.Config
	)
	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/memclock/config.yml)")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.BoolVar(&over.Headless, "headless", false, "Run without a window.")
	flag.IntVar(&over.Hz, "hz", config.DefaultHz, "Foreground loop rate in headless mode.")
	flag.Uint64Var(&over.Steps, "steps", 0, "Stop after N foreground steps in headless mode (0 = run forever).")
	flag.BoolVar(&over.Dump, "dump", false, "Print the last frame as text when headless mode exits.")
	flag.IntVar(&over.Scale, "scale", config.DefaultScale, "Window scale factor.")
	flag.StringVar(&over.Start, "start", config.DefaultStart, "Start time as HH:MM:SS.")
	flag.StringVar(&over.Title, "title", config.DefaultTitle, "Title line (empty for none).")
	flag.Parse()

	if showVersion {
		fmt.Println(buildinfo.Long())
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "headless":
			cfg.Headless = over.Headless
		case "hz":
			cfg.Hz = over.Hz
		case "steps":
			cfg.Steps = over.Steps
		case "dump":
			cfg.Dump = over.Dump
		case "scale":
			cfg.Scale = over.Scale
		case "start":
			cfg.Start = over.Start
		case "title":
			cfg.Title = over.Title
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	start, err := cfg.StartTime()
	if err != nil {
		return err
	}
	appCfg := app.DefaultConfig()
	appCfg.Start = start
	appCfg.Title = cfg.Title

	newApp := func(h hal.HAL) (func() error, error) {
		return app.NewStep(h, appCfg)
	}

	if cfg.Headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err := hal.RunHeadless(ctx, newApp, hal.HeadlessConfig{
			Enabled: true,
			Hz:      cfg.Hz,
			Steps:   cfg.Steps,
			Dump:    cfg.Dump,
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	return hal.RunWindow(newApp, cfg.Scale)
}
