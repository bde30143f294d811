// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/vorlif/spreak"

	"github.com/wneessen/waybar-whereto/internal/config"
	"github.com/wneessen/waybar-whereto/internal/filter"
	"github.com/wneessen/waybar-whereto/internal/geobus"
	"github.com/wneessen/waybar-whereto/internal/geocode"
	"github.com/wneessen/waybar-whereto/internal/http"
	"github.com/wneessen/waybar-whereto/internal/jitter"
	"github.com/wneessen/waybar-whereto/internal/logger"
	"github.com/wneessen/waybar-whereto/internal/places"
	"github.com/wneessen/waybar-whereto/internal/presenter"
	"github.com/wneessen/waybar-whereto/internal/preview"
	"github.com/wneessen/waybar-whereto/internal/search"
	"github.com/wneessen/waybar-whereto/internal/store"
)

const (
	OutputClass = "waybar-whereto"
	DesktopID   = "waybar-whereto"

	FoundClass     = "found"
	ExhaustedClass = "exhausted"
)

type outputData struct {
	Text    string   `json:"text"`
	Tooltip string   `json:"tooltip"`
	Alt     string   `json:"alt"`
	Classes []string `json:"class"`
}

type sweeper interface {
	Sweep() int
}

type Service struct {
	config    *config.Config
	geobus    *geobus.GeoBus
	logger    *logger.Logger
	output    io.Writer
	presenter *presenter.Presenter
	scheduler gocron.Scheduler
	jobs      []gocron.Job
	t         *spreak.Localizer
	rnd       jitter.Rand
	blocklist *filter.Blocklist
	SignalSrc signalSource

	resumeMonitor func(context.Context)

	// set up by init
	httpClient *http.Client
	geocoder   geocode.Geocoder
	places     places.Provider
	searcher   *search.Searcher
	preview    *preview.Fetcher
	history    *store.Store
	caches     []sweeper

	searchLock sync.Mutex

	locationLock sync.RWMutex
	location     geobus.Coordinate
	address      geocode.Address
	geostate     geobus.GeolocationState

	modeLock sync.RWMutex
	mode     search.Mode
	nearMe   bool

	outcomeLock sync.RWMutex
	outcome     *search.Outcome
	destAddress geocode.Address
	images      map[string]string
	updated     time.Time

	recentLock sync.RWMutex
	recent     filter.Func

	displayAltLock sync.RWMutex
	displayAltText bool
}

func New(conf *config.Config, log *logger.Logger, t *spreak.Localizer) (*Service, error) {
	bus, err := geobus.New(log)
	if err != nil {
		return nil, fmt.Errorf("failed to create geobus: %w", err)
	}

	pres, err := presenter.New(conf, t)
	if err != nil {
		return nil, fmt.Errorf("failed to create presenter: %w", err)
	}

	mode, err := search.ParseMode(conf.Mode)
	if err != nil {
		return nil, err
	}

	blocklist := filter.NewBlocklist(conf.Filter.Blocklist...)
	if conf.Filter.BlocklistFile != "" {
		fileList, err := filter.LoadBlocklist(conf.Filter.BlocklistFile)
		if err != nil {
			return nil, err
		}
		blocklist.Merge(fileList)
	}

	serv := &Service{
		config:    conf,
		geobus:    bus,
		logger:    log,
		output:    os.Stdout,
		presenter: pres,
		t:         t,
		rnd:       jitter.NewRand(conf.Search.Seed),
		blocklist: blocklist,
		SignalSrc: stdLibSignalSource{},
		mode:      mode,
		nearMe:    conf.NearMe,
	}
	serv.resumeMonitor = serv.monitorSleepResume
	return serv, nil
}

// init creates the API clients, the searcher and the history store. Providers that are
// already set are kept.
func (s *Service) init(ctx context.Context) error {
	if s.httpClient == nil {
		s.httpClient = http.New(s.logger)
		s.httpClient.SetRateLimit(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst)
	}

	if s.geocoder == nil {
		coder, err := s.selectGeocodeProvider(s.config, s.httpClient)
		if err != nil {
			return fmt.Errorf("failed to create geocode provider: %w", err)
		}
		s.geocoder = coder
		s.caches = append(s.caches, coder)
	}
	if s.places == nil {
		provider, err := s.selectPlacesProvider(s.config, s.httpClient)
		if err != nil {
			return fmt.Errorf("failed to create places provider: %w", err)
		}
		s.places = provider
		s.caches = append(s.caches, provider)
	}

	if err := s.newSearcher(); err != nil {
		return err
	}

	var err error
	if s.config.Preview.Enable && s.preview == nil {
		if s.preview, err = preview.NewFetcher(s.httpClient); err != nil {
			return fmt.Errorf("failed to create preview fetcher: %w", err)
		}
	}
	if !s.config.History.Disable && s.history == nil {
		if s.history, err = store.Open(ctx, s.config.History.Path); err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
	}
	return nil
}

func (s *Service) newSearcher() error {
	conf := search.Config{
		MaxAttempts:  s.config.Search.MaxAttempts,
		NearAttempts: s.config.Search.NearAttempts,
		Picks:        s.config.Search.Picks,
		PoolSize:     s.config.Search.PoolSize,
		Teleport:     !s.config.NearMe,
		Modes:        modeConfigs(s.config),
	}
	validate := search.Validator(s.blocklist.Filter(), s.notRecent)
	searcher, err := search.New(conf, s.selectLookup(s.config, s.geocoder, s.places), validate, s.rnd, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}
	s.searcher = searcher
	return nil
}

func (s *Service) Run(ctx context.Context) error {
	if err := s.init(ctx); err != nil {
		return err
	}
	defer s.closeHistory()

	// Create the orchestrator
	geoProviders, err := s.selectGeobusProviders()
	if err != nil {
		return fmt.Errorf("failed to create geobus orchestrator: %w", err)
	}
	orchestrator := s.geobus.NewOrchestrator(geoProviders)

	// gocron starts the scheduler goroutine on creation, every return below must shut it down
	s.scheduler, err = gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err = s.scheduleJobs(ctx); err != nil {
		if shutdownErr := s.scheduler.Shutdown(); shutdownErr != nil {
			s.logger.Error("failed to shut down scheduler", logger.Err(shutdownErr))
		}
		return err
	}
	s.scheduler.Start()

	// Subscribe to geolocation updates from the geobus
	sub, unsub := s.geobus.Subscribe(DesktopID, 32)
	go s.processLocationUpdates(ctx, sub)
	go orchestrator.Track(ctx, DesktopID)

	// Reroll on sleep resume and on user signals
	if s.resumeMonitor != nil {
		go s.resumeMonitor(ctx)
	}
	sigChan := make(chan os.Signal, 1)
	s.SignalSrc.Notify(sigChan, syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGHUP)
	go func() {
		defer s.SignalSrc.Stop(sigChan)
		s.HandleSignals(ctx, sigChan)
	}()

	// Wait for the context to cancel
	<-ctx.Done()
	if unsub != nil {
		unsub()
	}
	return s.scheduler.Shutdown()
}

// Once resolves the origin, runs a single search and returns the template context of the
// outcome. A nil origin is looked up through address, or through the geolocation providers
// when address is empty.
func (s *Service) Once(ctx context.Context, origin *geobus.Coordinate, address string) (presenter.TemplateContext, error) {
	if err := s.init(ctx); err != nil {
		return presenter.TemplateContext{}, err
	}
	defer s.closeHistory()

	coord, err := s.resolveOrigin(ctx, origin, address)
	if err != nil {
		return presenter.TemplateContext{}, err
	}
	addr, err := s.geocoder.Reverse(ctx, coord)
	if err != nil {
		s.logger.Debug("failed to resolve origin address", logger.Err(err))
	}
	s.setLocation(coord, addr)

	if err = s.search(ctx); err != nil {
		return presenter.TemplateContext{}, err
	}
	tplCtx, ok := s.templateContext()
	if !ok {
		return presenter.TemplateContext{}, errors.New("search returned no outcome")
	}
	return tplCtx, nil
}

func (s *Service) resolveOrigin(ctx context.Context, origin *geobus.Coordinate, address string) (geobus.Coordinate, error) {
	switch {
	case origin != nil:
		if !origin.Valid() {
			return geobus.Coordinate{}, fmt.Errorf("%w: origin %s", search.ErrInvalidInput, origin)
		}
		return *origin, nil
	case address != "":
		coord, err := s.geocoder.Search(ctx, address)
		if err != nil {
			return geobus.Coordinate{}, fmt.Errorf("failed to look up address %q: %w", address, err)
		}
		if !coord.Found {
			return geobus.Coordinate{}, fmt.Errorf("no location found for address %q", address)
		}
		return coord, nil
	}

	geoProviders, err := s.selectGeobusProviders()
	if err != nil {
		return geobus.Coordinate{}, fmt.Errorf("failed to create geobus orchestrator: %w", err)
	}
	ctxLocate, cancel := context.WithTimeout(ctx, LocateTimeout)
	defer cancel()
	go s.geobus.NewOrchestrator(geoProviders).Track(ctxLocate, DesktopID)
	result, err := s.geobus.WaitFirst(ctxLocate, DesktopID)
	if err != nil {
		return geobus.Coordinate{}, fmt.Errorf("failed to determine current location: %w", err)
	}
	return result.Coordinate(), nil
}

func (s *Service) scheduleJobs(ctx context.Context) error {
	if err := s.createScheduledJob(ctx, s.config.Intervals.Output, s.printOutput,
		"recommendation_output_job"); err != nil {
		return err
	}
	if err := s.createScheduledJob(ctx, s.config.Intervals.Reroll, s.reroll,
		"recommendation_reroll_job"); err != nil {
		return err
	}
	return s.createScheduledJob(ctx, s.config.Intervals.CacheSweep, s.sweepCaches, "cache_sweep_job")
}

func (s *Service) createScheduledJob(ctx context.Context, interval time.Duration, task func(context.Context),
	jobName string,
) error {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(jobName),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	s.jobs = append(s.jobs, job)
	return nil
}

// printOutput renders the latest recommendations as waybar JSON.
func (s *Service) printOutput(context.Context) {
	tplCtx, ok := s.templateContext()
	if !ok {
		return
	}

	outMap, err := s.presenter.Render(tplCtx)
	if err != nil {
		s.logger.Error("failed to render recommendation templates", logger.Err(err))
		return
	}

	output := outputData{
		Text:    outMap["text"],
		Tooltip: outMap["tooltip"],
		Alt:     tplCtx.Mode.String(),
		Classes: []string{OutputClass, tplCtx.Mode.String(), ExhaustedClass},
	}
	if tplCtx.Found {
		output.Classes[2] = FoundClass
	}
	s.displayAltLock.RLock()
	if s.displayAltText {
		output.Text = outMap["alt_text"]
		output.Tooltip = outMap["alt_tooltip"]
	}
	s.displayAltLock.RUnlock()

	if err = json.NewEncoder(s.output).Encode(output); err != nil {
		s.logger.Error("failed to encode recommendation output", logger.Err(err))
	}
}

func (s *Service) templateContext() (presenter.TemplateContext, bool) {
	s.outcomeLock.RLock()
	defer s.outcomeLock.RUnlock()
	if s.outcome == nil {
		return presenter.TemplateContext{}, false
	}
	return s.presenter.BuildContext(*s.outcome, s.destAddress, s.images, s.updated), true
}

func (s *Service) sweepCaches(context.Context) {
	for _, cache := range s.caches {
		if removed := cache.Sweep(); removed > 0 {
			s.logger.Debug("swept expired cache entries", slog.Int("removed", removed))
		}
	}
}

func (s *Service) closeHistory() {
	if err := s.history.Close(); err != nil {
		s.logger.Error("failed to close history", logger.Err(err))
	}
}

func (s *Service) setLocation(coord geobus.Coordinate, addr geocode.Address) {
	s.locationLock.Lock()
	defer s.locationLock.Unlock()
	s.location = coord
	s.address = addr
	s.geostate.Update(coord)
}

func (s *Service) currentLocation() (geobus.Coordinate, geocode.Address, bool) {
	s.locationLock.RLock()
	defer s.locationLock.RUnlock()
	_, ok := s.geostate.Last()
	return s.location, s.address, ok
}

// updateLocation resolves the address of a new location and rerolls the recommendations when
// the location moved significantly.
func (s *Service) updateLocation(ctx context.Context, coord geobus.Coordinate) error {
	if !coord.Valid() {
		s.logger.Debug("coordinates invalid, skipping service geo location update")
		return nil
	}

	s.locationLock.RLock()
	changed := s.geostate.HasChanged(coord)
	s.locationLock.RUnlock()
	if !changed {
		return nil
	}

	address, err := s.geocoder.Reverse(ctx, coord)
	if err != nil {
		return fmt.Errorf("failed reverse geocode coordinates: %w", err)
	}
	s.setLocation(coord, address)
	s.logger.Debug("address successfully resolved", slog.String("address", address.DisplayName),
		slog.String("location", coord.String()))

	s.reroll(ctx)
	return nil
}

// processLocationUpdates subscribes to geolocation updates, processes location data, and updates the
// service state accordingly.
func (s *Service) processLocationUpdates(ctx context.Context, sub <-chan geobus.Result) {
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-sub:
			if !ok {
				return
			}
			s.logger.Debug("received geolocation update",
				slog.Float64("lat", r.Lat), slog.Float64("lon", r.Lon), slog.String("source", r.Source))
			if err := s.updateLocation(ctx, r.Coordinate()); err != nil {
				s.logger.Error("failed to apply geo update", logger.Err(err), slog.String("source", r.Source))
			}
		}
	}
}
