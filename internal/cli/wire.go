package cli

import (
	"fmt"
	"os"

	"github.com/TheBoringRats/ratcrowler/internal/backlink"
	"github.com/TheBoringRats/ratcrowler/internal/catalog"
	"github.com/TheBoringRats/ratcrowler/internal/config"
	"github.com/TheBoringRats/ratcrowler/internal/crawler"
	"github.com/TheBoringRats/ratcrowler/internal/dashboard"
	"github.com/TheBoringRats/ratcrowler/internal/extractor"
	"github.com/TheBoringRats/ratcrowler/internal/fetcher"
	"github.com/TheBoringRats/ratcrowler/internal/metadata"
	"github.com/TheBoringRats/ratcrowler/internal/robots"
	"github.com/TheBoringRats/ratcrowler/internal/schedule"
	"github.com/TheBoringRats/ratcrowler/internal/supervisor"
	"github.com/TheBoringRats/ratcrowler/pkg/limiter"
	"github.com/TheBoringRats/ratcrowler/pkg/retry"
	"github.com/TheBoringRats/ratcrowler/pkg/timeutil"
)

// app holds the wired component graph. Everything shares one catalog, one
// fetcher (and so one politeness budget), and one metadata recorder.
type app struct {
	recorder       metadata.Recorder
	cat            *catalog.Catalog
	crawlEngine    *crawler.Engine
	backlinkEngine *backlink.Engine
	scheduler      *schedule.Scheduler
	supervisor     *supervisor.Supervisor
	dashboard      *dashboard.Server
}

// newApp builds the process. A catalog that cannot be opened is fatal;
// every other failure mode is recoverable at engine level.
func newApp(cfg config.Config) *app {
	recorder := metadata.NewRecorder("ratcrowler", os.Stderr)

	cat, err := catalog.Open(cfg.DatabasePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open catalog: %s\n", err)
		os.Exit(1)
	}

	rateLimiter := limiter.NewConcurrentRateLimiter()
	rateLimiter.SetBaseDelay(cfg.DelayBetweenRequests())
	rateLimiter.SetJitter(cfg.Jitter())
	rateLimiter.SetRandomSeed(cfg.RandomSeed())

	sleeper := timeutil.NewRealSleeper()

	htmlFetcher := fetcher.NewHtmlFetcher(&recorder, rateLimiter, sleeper, fetcher.Options{
		Timeout:               cfg.Timeout(),
		MaxRedirects:          cfg.MaxRedirects(),
		MaxConcurrentRequests: cfg.MaxConcurrentRequests(),
	})
	agents := fetcher.NewAgentPool(cfg.UserAgents(), cfg.RandomSeed())

	retryParam := retry.NewRetryParam(
		cfg.DelayBetweenRequests(),
		cfg.Jitter(),
		cfg.RandomSeed(),
		cfg.MaxAttempt(),
		timeutil.NewBackoffParam(
			cfg.BackoffInitialDuration(),
			cfg.BackoffMultiplier(),
			cfg.BackoffMaxDuration(),
		),
	)
	gate := robots.NewGate(&recorder, htmlFetcher, retryParam)

	domExtractor := extractor.NewDomExtractor(&recorder)

	crawlEngine := crawler.NewEngine(&recorder, cat, htmlFetcher, gate, &domExtractor, agents, sleeper, cfg)
	backlinkEngine := backlink.NewEngine(&recorder, cat, htmlFetcher, agents, cfg)
	scheduler := schedule.NewScheduler(cfg, nil)

	return &app{
		recorder:       recorder,
		cat:            cat,
		crawlEngine:    crawlEngine,
		backlinkEngine: backlinkEngine,
		scheduler:      scheduler,
		supervisor: supervisor.New(
			&recorder, cat, crawlEngine, backlinkEngine, scheduler, sleeper, cfg,
		),
		dashboard: dashboard.NewServer(&recorder, cat, cfg.DashboardPort()),
	}
}

func (a *app) close() {
	a.cat.Close()
}
