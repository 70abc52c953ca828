package fetcher

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/sync/semaphore"

	"github.com/TheBoringRats/ratcrowler/internal/metadata"
	"github.com/TheBoringRats/ratcrowler/pkg/failure"
	"github.com/TheBoringRats/ratcrowler/pkg/limiter"
	"github.com/TheBoringRats/ratcrowler/pkg/timeutil"
)

/*
Responsibilities

- Perform HTTP requests with the caller-chosen user agent
- Apply headers, timeouts, and the redirect bound
- Decode gzip and brotli response bodies
- Enforce the global in-flight cap (counting semaphore) and the fixed
  inter-request delay (rate limiter), in that order

Fetch Semantics

- Any 2xx body is returned as bytes plus metadata
- Non-2xx responses become an HTTP-status error, never a body
- The redirect chain is captured in hop order
- The user agent arrives on FetchParam so the robots decision made for a
  page and the request that fetches it carry the same identity

The fetcher never parses content; it only returns bytes and metadata.
*/

type HtmlFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	rateLimiter  limiter.RateLimiter
	sleeper      timeutil.Sleeper
	inflight     *semaphore.Weighted
	timeout      time.Duration
}

type Options struct {
	Timeout               time.Duration
	MaxRedirects          int
	MaxConcurrentRequests int
}

func NewHtmlFetcher(
	metadataSink metadata.MetadataSink,
	rateLimiter limiter.RateLimiter,
	sleeper timeutil.Sleeper,
	opts Options,
) *HtmlFetcher {
	maxRedirects := opts.MaxRedirects
	client := &http.Client{
		Timeout: opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errRedirectLimit
			}
			return nil
		},
	}

	concurrency := opts.MaxConcurrentRequests
	if concurrency < 1 {
		concurrency = 1
	}

	return &HtmlFetcher{
		metadataSink: metadataSink,
		httpClient:   client,
		rateLimiter:  rateLimiter,
		sleeper:      sleeper,
		inflight:     semaphore.NewWeighted(int64(concurrency)),
		timeout:      opts.Timeout,
	}
}

var errRedirectLimit = errors.New("redirect limit reached")

func (h *HtmlFetcher) Fetch(
	ctx context.Context,
	crawlDepth int,
	fetchParam FetchParam,
) (FetchResult, failure.ClassifiedError) {
	callerMethod := "HtmlFetcher.Fetch"

	if err := h.inflight.Acquire(ctx, 1); err != nil {
		return FetchResult{}, &FetchError{
			Message: fmt.Sprintf("cancelled while waiting for a slot: %v", err),
			Cause:   ErrCauseTimeout,
		}
	}
	defer h.inflight.Release(1)

	host := fetchParam.fetchUrl.Hostname()
	startTime := time.Now()

	result, err := h.performFetch(ctx, fetchParam.fetchUrl, fetchParam.userAgent)

	duration := time.Since(startTime)
	h.rateLimiter.MarkLastFetchAsNow(host)

	var statusCode int
	var contentType string
	if err == nil {
		statusCode = result.Code()
		contentType = result.Header("Content-Type")
	}
	h.metadataSink.RecordFetch(
		fetchParam.fetchUrl.String(),
		statusCode,
		duration,
		contentType,
		crawlDepth,
	)

	// The fixed inter-request sleep happens before the caller gets the
	// result back; that pause is the per-worker rate limit.
	h.sleeper.SleepCtx(ctx, h.rateLimiter.ResolveDelay(host))

	if err != nil {
		h.recordFetchError(callerMethod, fetchParam.fetchUrl, err)
		return FetchResult{}, err
	}

	return result, nil
}

func (h *HtmlFetcher) recordFetchError(callerMethod string, fetchUrl url.URL, err failure.ClassifiedError) {
	var fetchError *FetchError
	if errors.As(err, &fetchError) {
		h.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			mapFetchErrorToMetadataCause(fetchError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
			},
		)
	}
}

func (h *HtmlFetcher) performFetch(ctx context.Context, fetchUrl url.URL, userAgent string) (FetchResult, failure.ClassifiedError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message: fmt.Sprintf("failed to create request: %v", err),
			Cause:   ErrCauseNetworkFailure,
		}
	}

	for key, value := range requestHeaders(userAgent) {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := h.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, errRedirectLimit) {
			return FetchResult{}, &FetchError{
				Message: err.Error(),
				Cause:   ErrCauseRedirectLimitExceeded,
			}
		}
		return FetchResult{}, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("non-success status: %d", resp.StatusCode),
			HTTPStatus: resp.StatusCode,
			Cause:      ErrCauseHTTPStatus,
		}
	}

	body, cerr := decodeBody(resp)
	if cerr != nil {
		return FetchResult{}, cerr
	}
	responseTime := time.Since(start)

	responseHeaders := make(map[string]string)
	for key, values := range resp.Header {
		if len(values) > 0 {
			responseHeaders[key] = values[0]
		}
	}

	finalURL := fetchUrl
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = *resp.Request.URL
	}

	return FetchResult{
		finalUrl:      finalURL,
		originalUrl:   fetchUrl,
		redirectChain: redirectChain(resp),
		body:          body,
		fetchedAt:     time.Now(),
		responseTime:  responseTime,
		meta: ResponseMeta{
			statusCode:      resp.StatusCode,
			responseHeaders: responseHeaders,
		},
	}, nil
}

// redirectChain walks the request/response pairs backwards to reconstruct
// the hop order. The final URL is not part of the chain.
func redirectChain(resp *http.Response) []string {
	var reversed []string
	for r := resp.Request; r != nil && r.Response != nil; r = r.Response.Request {
		reversed = append(reversed, r.Response.Request.URL.String())
	}
	if len(reversed) == 0 {
		return nil
	}
	chain := make([]string, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		chain = append(chain, reversed[i])
	}
	return chain
}

// decodeBody reads the response body, reversing gzip or brotli encoding.
// Accept-Encoding is set manually on every request, which turns off the
// transport's automatic gunzip.
func decodeBody(resp *http.Response) ([]byte, failure.ClassifiedError) {
	var reader io.Reader = resp.Body

	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, &FetchError{
				Message: fmt.Sprintf("gzip: %v", err),
				Cause:   ErrCauseDecodeError,
			}
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &FetchError{
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Cause:   ErrCauseReadResponseBodyError,
		}
	}
	return body, nil
}

func classifyTransportError(err error) *FetchError {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &FetchError{
			Message: err.Error(),
			Cause:   ErrCauseTimeout,
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{
			Message: err.Error(),
			Cause:   ErrCauseTimeout,
		}
	}
	return &FetchError{
		Message: err.Error(),
		Cause:   ErrCauseNetworkFailure,
	}
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":                userAgent,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.5",
		"Accept-Encoding":           "gzip, deflate, br",
		"DNT":                       "1",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
	}
}
