package backlink

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/TheBoringRats/ratcrowler/internal/fetcher"
	"github.com/TheBoringRats/ratcrowler/internal/metadata"
	"github.com/TheBoringRats/ratcrowler/pkg/failure"
	"github.com/TheBoringRats/ratcrowler/pkg/retry"
	"github.com/TheBoringRats/ratcrowler/pkg/timeutil"
)

// Search-engine seeding is best-effort and sits behind a config flag:
// result-page scraping is brittle and terms-of-service-sensitive. Either
// engine failing is logged and ignored.

type searchEngine struct {
	name     string
	host     string
	queryURL func(target url.URL) string
}

var searchEngines = []searchEngine{
	{
		name: "google",
		host: "google.com",
		queryURL: func(target url.URL) string {
			q := url.QueryEscape("link:" + target.String())
			return "https://www.google.com/search?q=" + q + "&num=100"
		},
	},
	{
		name: "bing",
		host: "bing.com",
		queryURL: func(target url.URL) string {
			q := url.QueryEscape("linkfromdomain:" + target.Hostname())
			return "https://www.bing.com/search?q=" + q + "&count=50"
		},
	},
}

// searchEngineSources queries each engine for pages referencing the target
// and returns every outbound result link that is not the engine's own.
func (e *Engine) searchEngineSources(ctx context.Context, target url.URL) []url.URL {
	var sources []url.URL
	for _, engine := range searchEngines {
		links, err := e.querySearchEngine(ctx, engine, target)
		if err != nil {
			e.metadataSink.RecordError(
				time.Now(),
				"backlink",
				"Engine.searchEngineSources",
				metadata.CauseNetworkFailure,
				err.Error(),
				[]metadata.Attribute{
					metadata.NewAttr(metadata.AttrHost, engine.host),
					metadata.NewAttr(metadata.AttrURL, target.String()),
				},
			)
			continue
		}
		sources = append(sources, links...)
	}
	return sources
}

func (e *Engine) querySearchEngine(ctx context.Context, engine searchEngine, target url.URL) ([]url.URL, failure.ClassifiedError) {
	queryURL, err := url.Parse(engine.queryURL(target))
	if err != nil {
		return nil, &fetcher.FetchError{
			Message: err.Error(),
			Cause:   fetcher.ErrCauseNetworkFailure,
		}
	}

	retryParam := retry.NewRetryParam(
		e.cfg.DelayBetweenRequests(),
		e.cfg.Jitter(),
		e.cfg.RandomSeed(),
		e.cfg.MaxAttempt(),
		timeutil.NewBackoffParam(
			e.cfg.BackoffInitialDuration(),
			e.cfg.BackoffMultiplier(),
			e.cfg.BackoffMaxDuration(),
		),
	)

	userAgent := e.agents.Pick()
	result, ferr := retry.Retry(retryParam, func() (fetcher.FetchResult, failure.ClassifiedError) {
		return e.htmlFetcher.Fetch(ctx, 0, fetcher.NewFetchParam(*queryURL, userAgent))
	})
	if ferr != nil {
		return nil, ferr
	}

	doc, derr := goquery.NewDocumentFromReader(bytes.NewReader(result.Body()))
	if derr != nil {
		return nil, &fetcher.FetchError{
			Message: derr.Error(),
			Cause:   fetcher.ErrCauseReadResponseBodyError,
		}
	}

	var links []url.URL
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || !strings.HasPrefix(href, "http") {
			return
		}
		parsed, err := url.Parse(href)
		if err != nil {
			return
		}
		if strings.Contains(parsed.Hostname(), engine.host) {
			return
		}
		links = append(links, *parsed)
	})
	return links, nil
}
