package robots

/*
Responsibilities

- Fetch robots.txt once per origin
- Cache parsed rules for the process lifetime
- Answer "may this user-agent fetch this path?" before any page fetch

The caller passes the user agent that will actually perform the fetch, so
group matching always reflects the identity on the wire. A robots.txt that
cannot be fetched or parsed allows everything: the gate degrades open,
never closed. Concurrent first lookups for the same origin collapse into
one fetch.
*/

import (
	"context"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/sync/singleflight"

	"github.com/TheBoringRats/ratcrowler/internal/fetcher"
	"github.com/TheBoringRats/ratcrowler/internal/metadata"
	"github.com/TheBoringRats/ratcrowler/internal/robots/cache"
	"github.com/TheBoringRats/ratcrowler/pkg/failure"
	"github.com/TheBoringRats/ratcrowler/pkg/retry"
	"github.com/TheBoringRats/ratcrowler/pkg/urlutil"
)

type Gate struct {
	metadataSink metadata.MetadataSink
	htmlFetcher  fetcher.Fetcher
	rules        cache.Cache
	group        singleflight.Group
	retryParam   retry.RetryParam
}

func NewGate(
	metadataSink metadata.MetadataSink,
	htmlFetcher fetcher.Fetcher,
	retryParam retry.RetryParam,
) *Gate {
	return &Gate{
		metadataSink: metadataSink,
		htmlFetcher:  htmlFetcher,
		rules:        cache.NewMemoryCache(),
		retryParam:   retryParam,
	}
}

// MayFetch decides whether the given user-agent may fetch the URL. The
// first query for an origin fetches and parses its robots.txt; later
// queries hit the cache. Rules are cached per origin, the group match runs
// per call against the agent that will fetch.
func (g *Gate) MayFetch(ctx context.Context, userAgent string, u url.URL) Decision {
	origin := urlutil.Origin(u)

	data, resolved := g.rules.Get(origin)
	if !resolved {
		data = g.resolveOrigin(ctx, origin, userAgent)
	}

	if data == nil {
		return Decision{Url: u, Allowed: true, Reason: AllowedFetchFailed}
	}

	group := data.FindGroup(userAgent)
	if group == nil {
		return Decision{Url: u, Allowed: true, Reason: AllowedNoRules}
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if group.Test(path) {
		return Decision{Url: u, Allowed: true, Reason: AllowedByRobots}
	}
	return Decision{Url: u, Allowed: false, Reason: DisallowedByRobots}
}

// resolveOrigin fetches and parses robots.txt for an origin, collapsing
// concurrent callers into one in-flight fetch.
func (g *Gate) resolveOrigin(ctx context.Context, origin string, userAgent string) *robotstxt.RobotsData {
	v, _, _ := g.group.Do(origin, func() (interface{}, error) {
		data := g.fetchAndParse(ctx, origin, userAgent)
		g.rules.Put(origin, data)
		return data, nil
	})
	if data, ok := v.(*robotstxt.RobotsData); ok {
		return data
	}
	return nil
}

// fetchAndParse returns nil (allow all) on any failure.
func (g *Gate) fetchAndParse(ctx context.Context, origin string, userAgent string) *robotstxt.RobotsData {
	robotsURL, err := url.Parse(origin + "/robots.txt")
	if err != nil {
		return nil
	}

	result, ferr := retry.Retry(g.retryParam, func() (fetcher.FetchResult, failure.ClassifiedError) {
		return g.htmlFetcher.Fetch(ctx, 0, fetcher.NewFetchParam(*robotsURL, userAgent))
	})
	if ferr != nil {
		g.metadataSink.RecordError(
			time.Now(),
			"robots",
			"Gate.fetchAndParse",
			metadata.CauseNetworkFailure,
			ferr.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, robotsURL.String()),
			},
		)
		return nil
	}

	data, perr := robotstxt.FromBytes(result.Body())
	if perr != nil {
		return nil
	}
	return data
}
