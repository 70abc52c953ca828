package supervisor

/*
Responsibilities

- Tick on checkInterval, read the scheduler's mode, run the matching engine
- Derive each engine call's deadline from the next mode switch
- Refresh the dashboard stats row between ticks
- Fold newly discovered hosts back into the seed table
- Sweep sessions orphaned by a crash at startup

Engine failures are logged and absorbed: the supervisor never exits over a
recoverable error. Mode switches are observed, not commanded — a late tick
delays a transition but cannot corrupt anything.
*/

import (
	"context"
	"net/url"
	"time"

	"github.com/TheBoringRats/ratcrowler/internal/backlink"
	"github.com/TheBoringRats/ratcrowler/internal/catalog"
	"github.com/TheBoringRats/ratcrowler/internal/config"
	"github.com/TheBoringRats/ratcrowler/internal/crawler"
	"github.com/TheBoringRats/ratcrowler/internal/metadata"
	"github.com/TheBoringRats/ratcrowler/internal/schedule"
	"github.com/TheBoringRats/ratcrowler/pkg/failure"
	"github.com/TheBoringRats/ratcrowler/pkg/fileutil"
	"github.com/TheBoringRats/ratcrowler/pkg/timeutil"
)

const (
	// seedBatchSize caps how many seeds one crawling tick loads.
	seedBatchSize = 50
	// idleSleep is the pause taken when the schedule says nothing to do.
	idleSleep = 60 * time.Second
	// discoveredSeedPriority is the rank given to hosts found during
	// backlink discovery when they re-enter the seed table.
	discoveredSeedPriority = 1
)

type Supervisor struct {
	metadataSink   metadata.MetadataSink
	cat            *catalog.Catalog
	crawlEngine    *crawler.Engine
	backlinkEngine *backlink.Engine
	scheduler      *schedule.Scheduler
	sleeper        timeutil.Sleeper
	cfg            config.Config

	startTime time.Time
	lastMode  schedule.Mode
}

func New(
	metadataSink metadata.MetadataSink,
	cat *catalog.Catalog,
	crawlEngine *crawler.Engine,
	backlinkEngine *backlink.Engine,
	scheduler *schedule.Scheduler,
	sleeper timeutil.Sleeper,
	cfg config.Config,
) *Supervisor {
	return &Supervisor{
		metadataSink:   metadataSink,
		cat:            cat,
		crawlEngine:    crawlEngine,
		backlinkEngine: backlinkEngine,
		scheduler:      scheduler,
		sleeper:        sleeper,
		cfg:            cfg,
		startTime:      time.Now(),
		lastMode:       schedule.ModeIdle,
	}
}

// Run is the daemon loop. It returns only when ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) {
	s.startup()

	for {
		if ctx.Err() != nil {
			return
		}

		s.Tick(ctx)

		s.sleeper.SleepCtx(ctx, s.cfg.CheckInterval())
	}
}

// startup performs the one-time recovery and bootstrap work.
func (s *Supervisor) startup() {
	// A session still 'running' from a previous process crashed mid-flight.
	if _, err := s.cat.RecoverAbortedSessions(2 * s.cfg.SessionDuration()); err != nil {
		s.recordError("Supervisor.startup", metadata.CauseStorageFailure, err)
	}

	s.bootstrapSeeds()
}

// bootstrapSeeds imports the JSON seed file once, when the table is empty.
func (s *Supervisor) bootstrapSeeds() {
	count, err := s.cat.CountSeeds()
	if err != nil {
		s.recordError("Supervisor.bootstrapSeeds", metadata.CauseStorageFailure, err)
		return
	}
	if count > 0 {
		return
	}

	urls, ferr := fileutil.ReadURLList(s.cfg.SeedFilePath())
	if ferr != nil {
		// A missing bootstrap file just means an empty start.
		return
	}
	if len(urls) == 0 {
		return
	}
	if err := s.cat.AddSeeds(urls, discoveredSeedPriority); err != nil {
		s.recordError("Supervisor.bootstrapSeeds", metadata.CauseStorageFailure, err)
	}
}

// Tick performs one scheduling round: mode read, engine dispatch, stats
// refresh. Exported so single rounds are drivable from tests.
func (s *Supervisor) Tick(ctx context.Context) {
	mode := s.scheduler.CurrentMode()
	if mode != s.lastMode {
		s.metadataSink.RecordModeSwitch(s.lastMode.String(), mode.String(), time.Now())
		s.lastMode = mode
	}

	switch mode {
	case schedule.ModeCrawling:
		s.runCrawling(ctx)
	case schedule.ModeBacklinkProcessing:
		s.runBacklinkProcessing(ctx)
	default:
		s.sleeper.SleepCtx(ctx, idleSleep)
	}

	s.refreshStats()
}

func (s *Supervisor) runCrawling(ctx context.Context) {
	seeds, err := s.cat.GetSeeds(seedBatchSize)
	if err != nil {
		s.recordError("Supervisor.runCrawling", metadata.CauseStorageFailure, err)
		return
	}
	if len(seeds) == 0 {
		return
	}

	var seedURLs []url.URL
	for _, seed := range seeds {
		u, perr := url.Parse(seed.URL)
		if perr != nil {
			continue
		}
		seedURLs = append(seedURLs, *u)
	}

	// The engine must stop taking new work when the mode flips.
	deadline := s.scheduler.NextModeSwitch()
	crawlCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	if _, cerr := s.crawlEngine.Crawl(crawlCtx, seedURLs); cerr != nil {
		s.recordError("Supervisor.runCrawling", metadata.CauseUnknown, cerr)
		return
	}

	for _, seed := range seeds {
		if merr := s.cat.MarkSeedCrawled(seed.URL); merr != nil {
			s.recordError("Supervisor.runCrawling", metadata.CauseStorageFailure, merr)
		}
	}
}

func (s *Supervisor) runBacklinkProcessing(ctx context.Context) {
	seeds, err := s.cat.GetSeeds(seedBatchSize)
	if err != nil {
		s.recordError("Supervisor.runBacklinkProcessing", metadata.CauseStorageFailure, err)
		return
	}

	// One wall-clock budget covers the whole batch.
	budget := s.cfg.SessionDuration()
	if until := s.scheduler.TimeUntilSwitch(); until < budget {
		budget = until
	}
	sessionCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	for _, seed := range seeds {
		if sessionCtx.Err() != nil {
			break
		}
		target, perr := url.Parse(seed.URL)
		if perr != nil {
			continue
		}
		if _, aerr := s.backlinkEngine.Analyze(sessionCtx, *target); aerr != nil {
			s.recordError("Supervisor.runBacklinkProcessing", metadata.CauseUnknown, aerr)
		}
	}

	s.reseedDiscoveredHosts()
}

// reseedDiscoveredHosts turns every distinct backlink source host into a
// low-priority seed so future crawls broaden coverage.
func (s *Supervisor) reseedDiscoveredHosts() {
	sources, err := s.cat.DistinctSourceURLs()
	if err != nil {
		s.recordError("Supervisor.reseedDiscoveredHosts", metadata.CauseStorageFailure, err)
		return
	}

	hosts := make(map[string]struct{})
	var seedURLs []string
	for _, raw := range sources {
		u, perr := url.Parse(raw)
		if perr != nil || u.Hostname() == "" {
			continue
		}
		root := url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}
		key := root.String()
		if _, dup := hosts[key]; dup {
			continue
		}
		hosts[key] = struct{}{}
		seedURLs = append(seedURLs, key)
	}

	if len(seedURLs) == 0 {
		return
	}
	if err := s.cat.AddSeeds(seedURLs, discoveredSeedPriority); err != nil {
		s.recordError("Supervisor.reseedDiscoveredHosts", metadata.CauseStorageFailure, err)
	}
}

// refreshStats recomputes the dashboard row from catalog counts.
func (s *Supervisor) refreshStats() {
	now := time.Now().UTC()
	hourAgo := now.Add(-time.Hour)

	totalPages, err := s.cat.CountPages("")
	if err != nil {
		s.recordError("Supervisor.refreshStats", metadata.CauseStorageFailure, err)
		return
	}
	totalBacklinks, _ := s.cat.CountBacklinks()
	uniqueDomains, _ := s.cat.CountUniqueDomains()
	pagesLastHour, _ := s.cat.CountPagesSince(hourAgo)
	backlinksLastHour, _ := s.cat.CountBacklinksSince(hourAgo)

	stats := catalog.DashboardStats{
		TotalURLsCrawled:    totalPages,
		TotalBacklinksFound: totalBacklinks,
		UniqueDomains:       uniqueDomains,
		CrawlRatePerHour:    float64(pagesLastHour),
		BacklinkRatePerHour: float64(backlinksLastHour),
		DatabaseSizeMB:      s.cat.FileSizeMB(),
		CurrentMode:         s.scheduler.CurrentMode().String(),
		NextModeSwitch:      s.scheduler.NextModeSwitch(),
		UptimeSeconds:       int64(time.Since(s.startTime).Seconds()),
		LastUpdated:         now,
	}
	if err := s.cat.UpdateStats(stats); err != nil {
		s.recordError("Supervisor.refreshStats", metadata.CauseStorageFailure, err)
	}
}

func (s *Supervisor) recordError(method string, cause metadata.ErrorCause, err failure.ClassifiedError) {
	s.metadataSink.RecordError(
		time.Now(),
		"supervisor",
		method,
		cause,
		err.Error(),
		nil,
	)
}
