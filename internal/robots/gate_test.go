package robots_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheBoringRats/ratcrowler/internal/fetcher"
	"github.com/TheBoringRats/ratcrowler/internal/metadata"
	"github.com/TheBoringRats/ratcrowler/internal/robots"
	"github.com/TheBoringRats/ratcrowler/pkg/limiter"
	"github.com/TheBoringRats/ratcrowler/pkg/retry"
	"github.com/TheBoringRats/ratcrowler/pkg/timeutil"
)

const testAgent = "ratcrowler-test/1.0"

func newGate(t *testing.T) *robots.Gate {
	t.Helper()
	f := fetcher.NewHtmlFetcher(
		metadata.NopSink{},
		limiter.NewConcurrentRateLimiter(),
		&timeutil.FakeSleeper{},
		fetcher.Options{
			Timeout:               5 * time.Second,
			MaxRedirects:          5,
			MaxConcurrentRequests: 4,
		},
	)
	retryParam := retry.NewRetryParam(
		0, 0, 1, 1,
		timeutil.NewBackoffParam(time.Millisecond, 2.0, time.Millisecond),
	)
	return robots.NewGate(metadata.NopSink{}, f, retryParam)
}

func mustURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func TestMayFetch_DisallowedPrefix(t *testing.T) {
	var robotsFetches atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		robotsFetches.Add(1)
		w.Write([]byte("User-agent: *\nDisallow: /private\n"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	g := newGate(t)
	ctx := context.Background()

	blocked := g.MayFetch(ctx, testAgent, mustURL(t, server.URL+"/private/page"))
	assert.False(t, blocked.Allowed)
	assert.Equal(t, robots.DisallowedByRobots, blocked.Reason)

	open := g.MayFetch(ctx, testAgent, mustURL(t, server.URL+"/public"))
	assert.True(t, open.Allowed)

	// One origin, one robots.txt fetch.
	assert.Equal(t, int32(1), robotsFetches.Load())
}

func TestMayFetch_SpecificAgentRules(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: " + testAgent + "\nDisallow: /only-for-us\n\nUser-agent: *\nDisallow: /for-everyone\n"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	g := newGate(t)
	ctx := context.Background()

	assert.False(t, g.MayFetch(ctx, testAgent, mustURL(t, server.URL+"/only-for-us/x")).Allowed)
	assert.True(t, g.MayFetch(ctx, testAgent, mustURL(t, server.URL+"/anything-else")).Allowed)
}

func TestMayFetch_MatchesTheAgentThatWillFetch(t *testing.T) {
	// GIVEN robots rules that treat two named agents differently
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: blocked-bot\nDisallow: /\n\nUser-agent: *\nDisallow:\n"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	g := newGate(t)
	ctx := context.Background()
	page := mustURL(t, server.URL+"/page")

	// THEN the decision follows the agent passed per call, not whichever
	// agent resolved the origin first
	assert.True(t, g.MayFetch(ctx, "friendly-bot", page).Allowed)
	assert.False(t, g.MayFetch(ctx, "blocked-bot", page).Allowed)
}

func TestMayFetch_MissingRobotsAllowsAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	g := newGate(t)
	decision := g.MayFetch(context.Background(), testAgent, mustURL(t, server.URL+"/whatever"))
	assert.True(t, decision.Allowed)
	assert.Equal(t, robots.AllowedFetchFailed, decision.Reason)
}

func TestMayFetch_UnreachableOriginAllowsAll(t *testing.T) {
	g := newGate(t)
	decision := g.MayFetch(context.Background(), testAgent, mustURL(t, "http://127.0.0.1:1/page"))
	assert.True(t, decision.Allowed)
	assert.Equal(t, robots.AllowedFetchFailed, decision.Reason)
}

func TestMayFetch_CommentsAndBlankLinesIgnored(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# A comment line\n\nUser-agent: *\n# another comment\nDisallow: /hidden\n\nUnknown-directive: whatever\n"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	g := newGate(t)
	ctx := context.Background()

	assert.False(t, g.MayFetch(ctx, testAgent, mustURL(t, server.URL+"/hidden/page")).Allowed)
	assert.True(t, g.MayFetch(ctx, testAgent, mustURL(t, server.URL+"/visible")).Allowed)
}
