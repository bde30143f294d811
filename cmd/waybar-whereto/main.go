// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

//go:build linux

// Package main implements the waybar-whereto service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/vorlif/spreak"

	"github.com/wneessen/waybar-whereto/internal/config"
	"github.com/wneessen/waybar-whereto/internal/geobus"
	"github.com/wneessen/waybar-whereto/internal/i18n"
	"github.com/wneessen/waybar-whereto/internal/links"
	"github.com/wneessen/waybar-whereto/internal/logger"
	"github.com/wneessen/waybar-whereto/internal/presenter"
	"github.com/wneessen/waybar-whereto/internal/search"
	"github.com/wneessen/waybar-whereto/internal/service"
	"github.com/wneessen/waybar-whereto/internal/store"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGABRT, os.Interrupt)
	defer cancel()

	// Initialize Logger
	log := logger.New(slog.LevelError)

	confRead := false
	confPath := flag.String("config", "", "path to the config file")
	once := flag.Bool("once", false, "search once, print the recommendations and exit")
	mode := flag.String("mode", "", "search mode (food or cafe)")
	nearMe := flag.Bool("near", false, "search around the current location instead of a random destination")
	lat := flag.Float64("lat", 0, "latitude of the search origin (requires -lon)")
	lon := flag.Float64("lon", 0, "longitude of the search origin (requires -lat)")
	address := flag.String("address", "", "address or place name of the search origin")
	history := flag.Int("history", 0, "print the given number of past recommendations and exit")
	flag.Parse()

	// Read default config
	conf, err := config.New()
	if err != nil {
		log.Error("failed to load config", logger.Err(err))
		os.Exit(1)
	}

	// If config file was specified, read it
	if *confPath != "" {
		file := filepath.Base(*confPath)
		path := filepath.Dir(*confPath)
		conf, err = config.NewFromFile(path, file)
		if err != nil {
			log.Error("failed to load config from file", logger.Err(err))
			os.Exit(1)
		}
		confRead = true
	}

	// Check if we have a config file in the default location
	if path, file := findConfigFile(); !confRead && (path != "" && file != "") {
		conf, err = config.NewFromFile(path, file)
		if err != nil {
			log.Error("failed to load config from file", logger.Err(err))
			os.Exit(1)
		}
	}

	log = logger.New(conf.LogLevel)

	if *history > 0 {
		if err = printHistory(ctx, os.Stdout, conf.History.Path, *history); err != nil {
			log.Error("failed to read recommendation history", logger.Err(err))
			os.Exit(1)
		}
		return
	}

	t, err := i18n.New(conf.Locale)
	if err != nil {
		log.Error("failed to initialize localizer", logger.Err(err))
		os.Exit(1)
	}

	// Initialize the service
	serv, err := service.New(conf, log, t)
	if err != nil {
		log.Error("failed to initialize waybar-whereto service", logger.Err(err))
		os.Exit(1)
	}
	if *mode != "" {
		searchMode, err := search.ParseMode(*mode)
		if err != nil {
			log.Error("invalid search mode", logger.Err(err))
			os.Exit(1)
		}
		serv.SetMode(searchMode)
	}
	if *nearMe {
		serv.SetNearMe(true)
	}

	if *once {
		var origin *geobus.Coordinate
		flag.Visit(func(f *flag.Flag) {
			if f.Name == "lat" || f.Name == "lon" {
				origin = &geobus.Coordinate{Lat: *lat, Lon: *lon}
			}
		})
		if err = runOnce(ctx, os.Stdout, conf, t, serv, origin, *address); err != nil {
			log.Error("failed to search for recommendations", logger.Err(err))
			os.Exit(1)
		}
		return
	}

	// Only one daemon may write to the history and the bar at a time
	lock, err := store.AcquireLock(conf.History.Path + ".lock")
	if err != nil {
		log.Error("failed to start waybar-whereto service", logger.Err(err))
		os.Exit(1)
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.Error("failed to release lock", logger.Err(err))
		}
	}()

	// Start the service loop
	log.Info(t.Get("starting waybar-whereto service"), slog.String("version", version),
		slog.String("commit", commit), slog.String("date", date))
	if err = serv.Run(ctx); err != nil {
		log.Error(t.Get("failed to start waybar-whereto service"), logger.Err(err))
	}
	log.Info(t.Get("shutting down waybar-whereto service"))
}

// runOnce prints the tooltip rendering of a single search and a QR code of the route to the
// first pick.
func runOnce(ctx context.Context, w io.Writer, conf *config.Config, t *spreak.Localizer, serv *service.Service,
	origin *geobus.Coordinate, address string,
) error {
	tplCtx, err := serv.Once(ctx, origin, address)
	if err != nil {
		return err
	}
	pres, err := presenter.New(conf, t)
	if err != nil {
		return err
	}
	out, err := pres.Render(tplCtx)
	if err != nil {
		return err
	}
	if _, err = fmt.Fprintln(w, out["tooltip"]); err != nil {
		return err
	}
	if len(tplCtx.Picks) == 0 {
		return nil
	}

	qr, err := links.QR(tplCtx.Picks[0].Links.Route)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "\n%s\n%s\n", tplCtx.Picks[0].Links.Route, qr)
	return err
}

func printHistory(ctx context.Context, w io.Writer, path string, limit int) error {
	history, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = history.Close() }()

	entries, err := history.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return errors.New("no recommendations stored yet")
	}
	for _, entry := range entries {
		status := "found"
		if !entry.Found {
			status = "exhausted"
		}
		if _, err = fmt.Fprintf(w, "%s  %s  %s after %d attempts (%.1fkm from %s)\n",
			entry.CreatedAt.Format("2006-01-02 15:04"), entry.Mode, status, entry.Attempts, entry.DistanceKm,
			entry.Origin); err != nil {
			return err
		}
		for i, pick := range entry.Picks {
			if _, err = fmt.Fprintf(w, "  %d. %s  %s\n", i+1, pick.Name, pick.URL); err != nil {
				return err
			}
		}
	}
	return nil
}

func findConfigFile() (string, string) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	exts := []string{"toml", "yaml", "yml", "json"}
	for _, ext := range exts {
		path := filepath.Join(homedir, ".config", "waybar-whereto", "config."+ext)
		if _, err = os.Stat(path); err == nil {
			return filepath.Dir(path), filepath.Base(path)
		}
	}
	return "", ""
}
