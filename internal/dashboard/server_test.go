package dashboard_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheBoringRats/ratcrowler/internal/catalog"
	"github.com/TheBoringRats/ratcrowler/internal/dashboard"
	"github.com/TheBoringRats/ratcrowler/internal/metadata"
)

func newTestServer(t *testing.T) (*httptest.Server, *catalog.Catalog) {
	t.Helper()

	cat, err := catalog.Open(filepath.Join(t.TempDir(), "dash.db"))
	require.Nil(t, err)
	t.Cleanup(func() { cat.Close() })

	s := dashboard.NewServer(metadata.NopSink{}, cat, 0)
	server := httptest.NewServer(s.Handler())
	t.Cleanup(server.Close)
	return server, cat
}

func TestStatsEndpoint(t *testing.T) {
	server, cat := newTestServer(t)

	require.Nil(t, cat.UpdateStats(catalog.DashboardStats{
		TotalURLsCrawled:    7,
		TotalBacklinksFound: 3,
		UniqueDomains:       2,
		CurrentMode:         "crawling",
		NextModeSwitch:      time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC),
		LastUpdated:         time.Now().UTC(),
	}))

	resp, err := http.Get(server.URL + "/api/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, float64(7), got["totalUrlsCrawled"])
	assert.Equal(t, "crawling", got["currentMode"])
}

func TestRecentPagesEndpoint(t *testing.T) {
	server, cat := newTestServer(t)

	id, err := cat.CreateSession([]string{"http://a.test/"}, "{}")
	require.Nil(t, err)
	require.Nil(t, cat.StorePage(catalog.CrawledPage{
		SessionID:  id,
		URL:        "http://a.test/page",
		Title:      "A Page",
		HTTPStatus: 200,
		WordCount:  12,
		CrawlTime:  time.Now().UTC(),
	}))

	resp, rerr := http.Get(server.URL + "/api/recent-pages?limit=5")
	require.NoError(t, rerr)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pages []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pages))
	require.Len(t, pages, 1)
	assert.Equal(t, "http://a.test/page", pages[0]["url"])
	assert.Equal(t, "A Page", pages[0]["title"])

	// The feed is a summary: full page bodies never leave the catalog.
	_, hasBody := pages[0]["contentHtml"]
	assert.False(t, hasBody)
}

func TestRecentPagesEndpoint_EmptyCatalog(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/recent-pages")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pages []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pages))
	assert.Empty(t, pages)
}
