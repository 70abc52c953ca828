package crawler

/*
 Engine is the control-plane authority of one crawl session.

 Admission guarantees:
 - The engine is the ONLY component that pushes URLs into the frontier;
   of discovered links it offers only crawlable, same-host ones.
 - The frontier itself rejects already-visited URLs and enforces the depth
   and page limits.
 - Robots checks run after a URL is popped and before it is fetched.
 - Pipeline stages (fetch, extract, store) detect and classify failure but
   never decide retry, continuation, or abortion.

 Worker model: up to maxConcurrentRequests goroutines cooperate over the
 shared frontier. The frontier's mutex covers only enqueue/dequeue;
 fetching, parsing and persisting happen outside the lock. A worker that
 finds the queue empty lingers while any sibling is still processing,
 because that sibling may push new links.

 Metadata emission is observational only and MUST NOT influence
 scheduling, retries, or crawl termination.
*/

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TheBoringRats/ratcrowler/internal/catalog"
	"github.com/TheBoringRats/ratcrowler/internal/config"
	"github.com/TheBoringRats/ratcrowler/internal/extractor"
	"github.com/TheBoringRats/ratcrowler/internal/fetcher"
	"github.com/TheBoringRats/ratcrowler/internal/frontier"
	"github.com/TheBoringRats/ratcrowler/internal/metadata"
	"github.com/TheBoringRats/ratcrowler/internal/robots"
	"github.com/TheBoringRats/ratcrowler/pkg/failure"
	"github.com/TheBoringRats/ratcrowler/pkg/timeutil"
)

// idlePollInterval is how long an out-of-work worker waits before
// re-checking the frontier while siblings are still busy.
const idlePollInterval = 50 * time.Millisecond

type Engine struct {
	metadataSink metadata.MetadataSink
	cat          *catalog.Catalog
	htmlFetcher  fetcher.Fetcher
	gate         *robots.Gate
	domExtractor extractor.Extractor
	agents       *fetcher.AgentPool
	sleeper      timeutil.Sleeper
	cfg          config.Config
}

func NewEngine(
	metadataSink metadata.MetadataSink,
	cat *catalog.Catalog,
	htmlFetcher fetcher.Fetcher,
	gate *robots.Gate,
	domExtractor extractor.Extractor,
	agents *fetcher.AgentPool,
	sleeper timeutil.Sleeper,
	cfg config.Config,
) *Engine {
	return &Engine{
		metadataSink: metadataSink,
		cat:          cat,
		htmlFetcher:  htmlFetcher,
		gate:         gate,
		domExtractor: domExtractor,
		agents:       agents,
		sleeper:      sleeper,
		cfg:          cfg,
	}
}

// Crawl runs one full session over the given seeds. The context carries the
// supervisor's deadline: when it expires, workers finish their in-flight
// page and stop taking new ones. Per-URL failures are recorded and counted;
// only a catalog failure at session creation is fatal.
func (e *Engine) Crawl(ctx context.Context, seeds []url.URL) (CrawlResult, failure.ClassifiedError) {
	startTime := time.Now()

	seedStrings := make([]string, 0, len(seeds))
	for _, s := range seeds {
		seedStrings = append(seedStrings, s.String())
	}

	sessionID, cerr := e.cat.CreateSession(seedStrings, e.cfg.Snapshot())
	if cerr != nil {
		return CrawlResult{}, cerr
	}
	e.metadataSink.RecordSessionStart(sessionID, len(seeds))

	front := frontier.NewFrontier(e.cfg.MaxDepth(), e.cfg.MaxPages())
	for _, s := range seeds {
		front.PushSeed(s)
	}

	var pages, errs, skipped atomic.Int64
	var busy atomic.Int64

	workers := e.cfg.MaxConcurrentRequests()
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.workLoop(ctx, sessionID, front, &pages, &errs, &skipped, &busy)
		}()
	}
	wg.Wait()

	duration := time.Since(startTime)
	// A deadline hit still closes the session cleanly; the remaining
	// frontier is simply abandoned.
	if cerr := e.cat.FinishSession(sessionID, catalog.SessionCompleted); cerr != nil {
		e.recordCatalogError(sessionID, "", cerr)
	}

	result := CrawlResult{
		SessionID:    sessionID,
		PagesCrawled: int(pages.Load()),
		Errors:       int(errs.Load()),
		Skipped:      int(skipped.Load()),
		Duration:     duration,
	}
	e.metadataSink.RecordSessionEnd(sessionID, result.PagesCrawled, result.Errors, duration)
	return result, nil
}

func (e *Engine) workLoop(
	ctx context.Context,
	sessionID string,
	front *frontier.Frontier,
	pages, errs, skipped *atomic.Int64,
	busy *atomic.Int64,
) {
	for {
		if ctx.Err() != nil {
			return
		}

		token, ok := front.Pop()
		if !ok {
			if busy.Load() == 0 {
				return
			}
			// A sibling may still discover links; linger briefly.
			e.sleeper.SleepCtx(ctx, idlePollInterval)
			continue
		}

		busy.Add(1)
		e.processToken(ctx, sessionID, front, token, pages, errs, skipped)
		busy.Add(-1)
	}
}

func (e *Engine) processToken(
	ctx context.Context,
	sessionID string,
	front *frontier.Frontier,
	token frontier.CrawlToken,
	pages, errs, skipped *atomic.Int64,
) {
	pageURL := token.URL()

	// One agent pick per page: the robots decision and the request that
	// follows it must carry the same identity.
	userAgent := e.agents.Pick()

	if e.cfg.RespectRobotsTxt() {
		decision := e.gate.MayFetch(ctx, userAgent, pageURL)
		if !decision.Allowed {
			// Not an error: the URL stays visited and nothing is recorded.
			skipped.Add(1)
			return
		}
	}

	result, ferr := e.htmlFetcher.Fetch(ctx, token.Depth(), fetcher.NewFetchParam(pageURL, userAgent))
	if ferr != nil {
		e.logCrawlError(sessionID, pageURL.String(), ferr)
		errs.Add(1)
		return
	}

	doc, xerr := e.domExtractor.Extract(result.FinalURL(), result.Body(), result.Header("Content-Type"))
	if xerr != nil {
		e.logCrawlError(sessionID, pageURL.String(), xerr)
		errs.Add(1)
		return
	}

	page := buildPage(sessionID, token, result, doc)
	if cerr := e.cat.StorePage(page); cerr != nil {
		e.recordCatalogError(sessionID, pageURL.String(), cerr)
		errs.Add(1)
		return
	}
	pages.Add(1)

	if token.Depth() < e.cfg.MaxDepth() {
		finalURL := result.FinalURL()
		for _, link := range doc.Links {
			// Cross-host traversal belongs to backlink discovery, not the
			// crawl: only same-host links are admitted.
			if !link.Crawlable || !link.Internal {
				continue
			}
			front.Push(link.URL, token.Depth()+1, frontier.ComputePriority(link.URL, finalURL))
		}
	}
}

func buildPage(
	sessionID string,
	token frontier.CrawlToken,
	result fetcher.FetchResult,
	doc extractor.PageDocument,
) catalog.CrawledPage {
	finalURL := result.FinalURL()
	originalURL := result.OriginalURL()
	return catalog.CrawledPage{
		SessionID:          sessionID,
		URL:                finalURL.String(),
		OriginalURL:        originalURL.String(),
		RedirectChain:      result.RedirectChain(),
		Title:              doc.Title,
		MetaDescription:    doc.MetaDescription,
		MetaKeywords:       doc.MetaKeywords,
		CanonicalURL:       doc.CanonicalURL,
		RobotsMeta:         doc.RobotsMeta,
		H1Tags:             doc.H1Tags,
		H2Tags:             doc.H2Tags,
		Language:           doc.Language,
		Charset:            doc.Charset,
		ContentText:        doc.ContentText,
		ContentHTML:        string(result.Body()),
		ContentHash:        doc.ContentHash,
		WordCount:          doc.WordCount,
		PageSizeBytes:      result.SizeBytes(),
		HTTPStatus:         result.Code(),
		ResponseTimeMs:     result.ResponseTime().Milliseconds(),
		InternalLinksCount: doc.InternalLinksCount(),
		ExternalLinksCount: doc.ExternalLinksCount(),
		ImagesCount:        doc.ImagesCount,
		CrawlTime:          result.FetchedAt(),
	}
}

// logCrawlError persists a per-URL failure against the session.
func (e *Engine) logCrawlError(sessionID, pageURL string, err failure.ClassifiedError) {
	kind := "error"
	var status *int
	if fe, ok := err.(*fetcher.FetchError); ok {
		kind = fe.Kind()
		if fe.HTTPStatus != 0 {
			s := fe.HTTPStatus
			status = &s
		}
	}
	if _, ok := err.(*extractor.ExtractError); ok {
		kind = "parse_error"
	}

	cerr := e.cat.LogError(catalog.CrawlError{
		SessionID:    sessionID,
		URL:          pageURL,
		ErrorKind:    kind,
		ErrorMessage: err.Error(),
		HTTPStatus:   status,
		Timestamp:    time.Now(),
	})
	if cerr != nil {
		e.recordCatalogError(sessionID, pageURL, cerr)
	}
}

func (e *Engine) recordCatalogError(sessionID, pageURL string, err failure.ClassifiedError) {
	e.metadataSink.RecordError(
		time.Now(),
		"crawler",
		"Engine.Crawl",
		metadata.CauseStorageFailure,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrSession, sessionID),
			metadata.NewAttr(metadata.AttrURL, pageURL),
		},
	)
}
