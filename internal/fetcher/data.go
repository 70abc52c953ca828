package fetcher

import (
	"net/url"
	"time"
)

// HTTP boundary

type FetchParam struct {
	fetchUrl url.URL
	// userAgent is the agent string this request will send. The caller
	// picks it (one per page, from the shared pool) so the robots gate
	// can evaluate the same identity that performs the fetch.
	userAgent string
}

func NewFetchParam(fetchUrl url.URL, userAgent string) FetchParam {
	return FetchParam{
		fetchUrl:  fetchUrl,
		userAgent: userAgent,
	}
}

func (p FetchParam) URL() url.URL {
	return p.fetchUrl
}

func (p FetchParam) UserAgent() string {
	return p.userAgent
}

type FetchResult struct {
	// finalUrl is where the response actually came from, after redirects.
	finalUrl url.URL
	// originalUrl is the URL the caller asked for.
	originalUrl url.URL
	// redirectChain lists every hop in order, excluding the final URL.
	redirectChain []string
	body          []byte
	meta          ResponseMeta
	fetchedAt     time.Time
	responseTime  time.Duration
}

func (f *FetchResult) FinalURL() url.URL {
	return f.finalUrl
}

func (f *FetchResult) OriginalURL() url.URL {
	return f.originalUrl
}

func (f *FetchResult) RedirectChain() []string {
	return f.redirectChain
}

func (f *FetchResult) Body() []byte {
	return f.body
}

func (f *FetchResult) Code() int {
	return f.meta.statusCode
}

func (f *FetchResult) SizeBytes() int {
	return len(f.body)
}

func (f *FetchResult) Header(key string) string {
	return f.meta.responseHeaders[key]
}

func (f *FetchResult) FetchedAt() time.Time {
	return f.fetchedAt
}

func (f *FetchResult) ResponseTime() time.Duration {
	return f.responseTime
}

type ResponseMeta struct {
	statusCode      int
	responseHeaders map[string]string
}

// NewFetchResultForTest creates a FetchResult for testing purposes.
// This allows test packages to construct FetchResult values without
// accessing unexported fields directly.
func NewFetchResultForTest(
	finalUrl url.URL,
	body []byte,
	statusCode int,
	responseHeaders map[string]string,
	fetchedAt time.Time,
) FetchResult {
	return FetchResult{
		finalUrl:    finalUrl,
		originalUrl: finalUrl,
		body:        body,
		fetchedAt:   fetchedAt,
		meta: ResponseMeta{
			statusCode:      statusCode,
			responseHeaders: responseHeaders,
		},
	}
}
