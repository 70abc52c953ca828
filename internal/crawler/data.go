package crawler

import "time"

// CrawlResult summarizes one engine invocation.
type CrawlResult struct {
	SessionID    string
	PagesCrawled int
	Errors       int
	Skipped      int
	Duration     time.Duration
}
