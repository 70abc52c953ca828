package urlutil_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheBoringRats/ratcrowler/pkg/urlutil"
)

func mustURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err, "invalid url %q", raw)
	return *u
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases scheme and host", "HTTP://Example.COM/path", "http://example.com/path"},
		{"strips default http port", "http://example.com:80/a", "http://example.com/a"},
		{"strips default https port", "https://example.com:443/a", "https://example.com/a"},
		{"keeps custom port", "http://example.com:8080/a", "http://example.com:8080/a"},
		{"strips trailing slash", "http://example.com/a/", "http://example.com/a"},
		{"keeps root slash", "http://example.com/", "http://example.com/"},
		{"drops fragment", "http://example.com/a#section", "http://example.com/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := urlutil.Canonicalize(mustURL(t, tt.in))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	u := mustURL(t, "HTTP://Example.COM:80/path/#frag")
	once := urlutil.Canonicalize(u)
	twice := urlutil.Canonicalize(once)
	assert.Equal(t, once, twice)
}

func TestResolve(t *testing.T) {
	base := mustURL(t, "http://example.com/dir/page.html")

	abs, ok := urlutil.Resolve(base, "/about")
	require.True(t, ok)
	assert.Equal(t, "http://example.com/about", abs.String())

	rel, ok := urlutil.Resolve(base, "other.html")
	require.True(t, ok)
	assert.Equal(t, "http://example.com/dir/other.html", rel.String())

	full, ok := urlutil.Resolve(base, "https://other.test/x")
	require.True(t, ok)
	assert.Equal(t, "https://other.test/x", full.String())

	_, ok = urlutil.Resolve(base, "http://bad url with spaces")
	assert.False(t, ok)
}

func TestSameHost(t *testing.T) {
	// Full-hostname comparison: subdomains are distinct sites.
	assert.True(t, urlutil.SameHost(
		mustURL(t, "http://example.com/a"),
		mustURL(t, "https://EXAMPLE.com/b"),
	))
	assert.False(t, urlutil.SameHost(
		mustURL(t, "http://a.example.com/"),
		mustURL(t, "http://b.example.com/"),
	))
}

func TestOrigin(t *testing.T) {
	assert.Equal(t, "http://example.com:8080", urlutil.Origin(mustURL(t, "HTTP://Example.com:8080/deep/path?x=1")))
}

func TestIsCrawlableScheme(t *testing.T) {
	assert.True(t, urlutil.IsCrawlableScheme(mustURL(t, "http://a.test/")))
	assert.True(t, urlutil.IsCrawlableScheme(mustURL(t, "https://a.test/")))
	assert.False(t, urlutil.IsCrawlableScheme(mustURL(t, "mailto:someone@a.test")))
	assert.False(t, urlutil.IsCrawlableScheme(mustURL(t, "ftp://a.test/file")))
}

func TestHasSkippedExtension(t *testing.T) {
	tests := []struct {
		in   string
		skip bool
	}{
		{"http://a.test/report.pdf", true},
		{"http://a.test/theme.CSS", true},
		{"http://a.test/img/logo.png", true},
		{"http://a.test/archive.tar.gz", true},
		{"http://a.test/about", false},
		{"http://a.test/index.html", false},
		{"http://a.test/", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.skip, urlutil.HasSkippedExtension(mustURL(t, tt.in)), tt.in)
	}
}
