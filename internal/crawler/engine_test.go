package crawler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheBoringRats/ratcrowler/internal/catalog"
	"github.com/TheBoringRats/ratcrowler/internal/config"
	"github.com/TheBoringRats/ratcrowler/internal/crawler"
	"github.com/TheBoringRats/ratcrowler/internal/extractor"
	"github.com/TheBoringRats/ratcrowler/internal/fetcher"
	"github.com/TheBoringRats/ratcrowler/internal/metadata"
	"github.com/TheBoringRats/ratcrowler/internal/robots"
	"github.com/TheBoringRats/ratcrowler/pkg/limiter"
	"github.com/TheBoringRats/ratcrowler/pkg/retry"
	"github.com/TheBoringRats/ratcrowler/pkg/timeutil"
)

type harness struct {
	cat    *catalog.Catalog
	engine *crawler.Engine
}

func newHarness(t *testing.T, cfg config.Config) *harness {
	t.Helper()

	cat, err := catalog.Open(filepath.Join(t.TempDir(), "crawl.db"))
	require.Nil(t, err)
	t.Cleanup(func() { cat.Close() })

	rl := limiter.NewConcurrentRateLimiter()
	sleeper := &timeutil.FakeSleeper{}

	htmlFetcher := fetcher.NewHtmlFetcher(metadata.NopSink{}, rl, sleeper, fetcher.Options{
		Timeout:               5 * time.Second,
		MaxRedirects:          5,
		MaxConcurrentRequests: cfg.MaxConcurrentRequests(),
	})
	agents := fetcher.NewAgentPool(cfg.UserAgents(), 1)

	retryParam := retry.NewRetryParam(0, 0, 1, 1,
		timeutil.NewBackoffParam(time.Millisecond, 2.0, time.Millisecond))
	gate := robots.NewGate(metadata.NopSink{}, htmlFetcher, retryParam)

	domExtractor := extractor.NewDomExtractor(metadata.NopSink{})

	// RealSleeper here: worker idle-polling must actually wait, or busy
	// workers spin.
	engine := crawler.NewEngine(
		metadata.NopSink{}, cat, htmlFetcher, gate, &domExtractor, agents,
		timeutil.NewRealSleeper(), cfg,
	)
	return &harness{cat: cat, engine: engine}
}

func testConfig(t *testing.T, maxDepth, maxPages, workers int, respectRobots bool) config.Config {
	t.Helper()
	cfg, err := config.WithDefault().
		WithMaxDepth(maxDepth).
		WithMaxPages(maxPages).
		WithMaxConcurrentRequests(workers).
		WithDelayBetweenRequests(0).
		WithJitter(0).
		WithRandomSeed(1).
		WithRespectRobotsTxt(respectRobots).
		WithUserAgents([]string{"crawler-test/1.0"}).
		Build()
	require.NoError(t, err)
	return cfg
}

func mustURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func TestCrawl_StaysOnHostAndCountsLinks(t *testing.T) {
	// GIVEN a site whose root links internally to /about and externally
	// to b.test
	mux := http.NewServeMux()
	var crossDomainHits atomic.Int32
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/about">About</a>
			<a href="http://b.test/x">Elsewhere</a>
		</body></html>`)
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/">Home</a></body></html>`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Anything else (would include b.test if it were ever routed here)
		crossDomainHits.Add(1)
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := testConfig(t, 1, 10, 1, false)
	h := newHarness(t, cfg)

	result, cerr := h.engine.Crawl(context.Background(), []url.URL{mustURL(t, server.URL+"/")})
	require.Nil(t, cerr)

	// THEN exactly the two same-host pages were crawled and the
	// cross-host link was never followed
	assert.Equal(t, 2, result.PagesCrawled)
	assert.Equal(t, 0, result.Errors)
	assert.Equal(t, int32(0), crossDomainHits.Load())

	root, gerr := h.cat.GetPage(result.SessionID, server.URL+"/")
	require.Nil(t, gerr)
	assert.Equal(t, 1, root.InternalLinksCount)
	assert.Equal(t, 1, root.ExternalLinksCount)

	_, gerr = h.cat.GetPage(result.SessionID, server.URL+"/about")
	require.Nil(t, gerr)
}

func TestCrawl_RobotsDisallowedIsSilentlySkipped(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
	})
	var privateFetched atomic.Bool
	mux.HandleFunc("/private/page", func(w http.ResponseWriter, r *http.Request) {
		privateFetched.Store(true)
		fmt.Fprint(w, "<html><body>secret</body></html>")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := testConfig(t, 1, 10, 1, true)
	h := newHarness(t, cfg)

	result, cerr := h.engine.Crawl(context.Background(), []url.URL{mustURL(t, server.URL+"/private/page")})
	require.Nil(t, cerr)

	// No fetch, no page, no error — just a skip.
	assert.False(t, privateFetched.Load())
	assert.Equal(t, 0, result.PagesCrawled)
	assert.Equal(t, 0, result.Errors)
	assert.Equal(t, 1, result.Skipped)

	errCount, eerr := h.cat.CountErrors(result.SessionID)
	require.Nil(t, eerr)
	assert.Equal(t, int64(0), errCount)
}

func TestCrawl_FetchErrorsAreRecordedAndCrawlContinues(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/missing">Gone</a><a href="/ok">OK</a></body></html>`)
	})
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>fine</body></html>")
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := testConfig(t, 2, 10, 1, false)
	h := newHarness(t, cfg)

	result, cerr := h.engine.Crawl(context.Background(), []url.URL{mustURL(t, server.URL+"/")})
	require.Nil(t, cerr)

	assert.Equal(t, 2, result.PagesCrawled)
	assert.Equal(t, 1, result.Errors)

	errCount, eerr := h.cat.CountErrors(result.SessionID)
	require.Nil(t, eerr)
	assert.Equal(t, int64(1), errCount)
}

func TestCrawl_MaxPagesBoundsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Every page links to three more, forever.
		p := r.URL.Path
		fmt.Fprintf(w, `<html><body>
			<a href="%sa">a</a><a href="%sb">b</a><a href="%sc">c</a>
		</body></html>`, p, p, p)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := testConfig(t, 10, 5, 2, false)
	h := newHarness(t, cfg)

	result, cerr := h.engine.Crawl(context.Background(), []url.URL{mustURL(t, server.URL+"/")})
	require.Nil(t, cerr)

	assert.LessOrEqual(t, result.PagesCrawled, 5)
	assert.Greater(t, result.PagesCrawled, 0)
}

func TestCrawl_ConcurrentWorkersWriteEachPageOnce(t *testing.T) {
	// GIVEN a 100-page site fully linked from the root
	const totalPages = 100
	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>")
		for i := 1; i < totalPages; i++ {
			fmt.Fprintf(w, `<a href="/p%d">p%d</a>`, i, i)
		}
		fmt.Fprint(w, "</body></html>")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "<html><body>page %s</body></html>", r.URL.Path)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := testConfig(t, 2, totalPages, 8, false)
	h := newHarness(t, cfg)

	result, cerr := h.engine.Crawl(context.Background(), []url.URL{mustURL(t, server.URL+"/")})
	require.Nil(t, cerr)

	// THEN exactly 100 rows, no duplicates (unique constraint would have
	// silently dropped dupes, so the count is the invariant)
	assert.Equal(t, totalPages, result.PagesCrawled)

	count, cntErr := h.cat.CountPages(result.SessionID)
	require.Nil(t, cntErr)
	assert.Equal(t, int64(totalPages), count)
}

func TestCrawl_SessionIsClosedCompleted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>leaf</body></html>")
	}))
	defer server.Close()

	cfg := testConfig(t, 1, 10, 1, false)
	h := newHarness(t, cfg)

	result, cerr := h.engine.Crawl(context.Background(), []url.URL{mustURL(t, server.URL+"/")})
	require.Nil(t, cerr)

	session, serr := h.cat.GetSession(result.SessionID)
	require.Nil(t, serr)
	assert.Equal(t, catalog.SessionCompleted, session.Status)
	require.NotNil(t, session.EndTime)
}
