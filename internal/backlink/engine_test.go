package backlink_test

import (
	"context"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheBoringRats/ratcrowler/internal/backlink"
	"github.com/TheBoringRats/ratcrowler/internal/catalog"
	"github.com/TheBoringRats/ratcrowler/internal/config"
	"github.com/TheBoringRats/ratcrowler/internal/fetcher"
	"github.com/TheBoringRats/ratcrowler/internal/metadata"
	"github.com/TheBoringRats/ratcrowler/pkg/failure"
)

// stubFetcher serves canned bodies by URL, standing in for the network.
type stubFetcher struct {
	bodies  map[string]string
	fetched []string
}

func (s *stubFetcher) Fetch(_ context.Context, _ int, param fetcher.FetchParam) (fetcher.FetchResult, failure.ClassifiedError) {
	u := param.URL()
	s.fetched = append(s.fetched, u.String())
	body, ok := s.bodies[u.String()]
	if !ok {
		return fetcher.FetchResult{}, &fetcher.FetchError{
			Message:    "not in fixture",
			HTTPStatus: 404,
			Cause:      fetcher.ErrCauseHTTPStatus,
		}
	}
	return fetcher.NewFetchResultForTest(
		u,
		[]byte(body),
		200,
		map[string]string{"Content-Type": "text/html"},
		time.Now(),
	), nil
}

func mustURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func testEngine(t *testing.T, bodies map[string]string) (*backlink.Engine, *catalog.Catalog, *stubFetcher) {
	t.Helper()

	cat, err := catalog.Open(filepath.Join(t.TempDir(), "backlinks.db"))
	require.Nil(t, err)
	t.Cleanup(func() { cat.Close() })

	cfg, cfgErr := config.WithDefault().
		WithBacklinkMaxDepth(3).
		WithUserAgents([]string{"backlink-test/1.0"}).
		Build()
	require.NoError(t, cfgErr)

	stub := &stubFetcher{bodies: bodies}
	agents := fetcher.NewAgentPool(cfg.UserAgents(), 1)
	return backlink.NewEngine(metadata.NopSink{}, cat, stub, agents, cfg), cat, stub
}

func TestAnalyze_RecordsCrossHostEdges(t *testing.T) {
	// GIVEN target.test linking out to ref1.test, which links back twice
	bodies := map[string]string{
		"http://target.test/": `<html><body>
			<a href="http://ref1.test/a">a reference</a>
			<a href="http://target.test/self">self link</a>
		</body></html>`,
		"http://ref1.test/a": `<html><head><title>Ref Page</title></head><body>
			<p>Context here <a href="http://target.test/x" rel="nofollow">X</a>
			more text <a href="http://target.test/y">Y</a></p>
		</body></html>`,
	}
	engine, cat, _ := testEngine(t, bodies)

	analysis, aerr := engine.Analyze(context.Background(), mustURL(t, "http://target.test/"))
	require.Nil(t, aerr)

	// THEN both edges from ref1.test exist, the self link does not
	assert.Equal(t, 2, analysis.TotalBacklinks)
	assert.Equal(t, 1, analysis.UniqueDomains)
	assert.Equal(t, 0, analysis.SpamBacklinks)

	links, lerr := cat.BacklinksForTarget("http://target.test/", 10)
	require.Nil(t, lerr)
	require.Len(t, links, 2)

	byTarget := map[string]catalog.Backlink{}
	for _, l := range links {
		byTarget[l.TargetURL] = l
		assert.Equal(t, "http://ref1.test/a", l.SourceURL)
		assert.Equal(t, "Ref Page", l.PageTitle)
		assert.Contains(t, l.Context, "Context here")
	}
	assert.True(t, byTarget["http://target.test/x"].IsNofollow)
	assert.False(t, byTarget["http://target.test/y"].IsNofollow)

	// Sole referrer normalizes to authority 100.
	score, serr := cat.GetDomainScore("ref1.test")
	require.Nil(t, serr)
	assert.Equal(t, float64(100), score.AuthorityScore)
	assert.Equal(t, 2, score.TotalBacklinks)
}

func TestAnalyze_EqualSharesGetEqualPageRank(t *testing.T) {
	bodies := map[string]string{
		"http://target.test/": `<html><body><a href="http://ref1.test/a">r</a></body></html>`,
		"http://ref1.test/a": `<html><body>
			<a href="http://target.test/x">X</a>
			<a href="http://target.test/y">Y</a>
		</body></html>`,
	}
	engine, _, _ := testEngine(t, bodies)

	links := engine.Discover(context.Background(), mustURL(t, "http://target.test/"))
	require.Len(t, links, 2)

	ranks := backlink.PageRank(links)
	// Both targets got 1/2 before normalization, so both sit at 100.
	assert.Equal(t, float64(100), ranks["http://target.test/x"])
	assert.Equal(t, float64(100), ranks["http://target.test/y"])
}

func TestDiscover_DeduplicatesByAnchorTuple(t *testing.T) {
	bodies := map[string]string{
		"http://target.test/": `<html><body><a href="http://ref1.test/a">r</a></body></html>`,
		"http://ref1.test/a": `<html><body>
			<a href="http://target.test/x">Same</a>
			<a href="http://target.test/x">Same</a>
			<a href="http://target.test/x">Different</a>
		</body></html>`,
	}
	engine, _, _ := testEngine(t, bodies)

	links := engine.Discover(context.Background(), mustURL(t, "http://target.test/"))
	// Identical (source, target, anchor) collapses; a new anchor text does not.
	assert.Len(t, links, 2)
}

func TestDiscover_FanOutCapped(t *testing.T) {
	rootBody := "<html><body>"
	for i := 0; i < 20; i++ {
		rootBody += `<a href="http://ref` + string(rune('a'+i)) + `.test/">out</a>`
	}
	rootBody += "</body></html>"

	bodies := map[string]string{
		"http://target.test/": rootBody,
	}
	engine, _, stub := testEngine(t, bodies)

	engine.Discover(context.Background(), mustURL(t, "http://target.test/"))

	// Target page itself plus at most 5 pushed neighbours.
	assert.LessOrEqual(t, len(stub.fetched), 6)
}

func TestDiscover_CancelledContextStops(t *testing.T) {
	bodies := map[string]string{
		"http://target.test/": `<html><body><a href="http://ref1.test/a">r</a></body></html>`,
	}
	engine, _, stub := testEngine(t, bodies)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	links := engine.Discover(ctx, mustURL(t, "http://target.test/"))
	assert.Empty(t, links)
	assert.Empty(t, stub.fetched)
}
