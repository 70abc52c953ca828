package catalog

import "time"

// Session status values. Sessions are append-only; only end_time/status are
// ever updated after creation.
const (
	SessionRunning   = "running"
	SessionCompleted = "completed"
	SessionAborted   = "aborted"
)

// CrawlSession groups every page and error produced by one engine invocation.
type CrawlSession struct {
	ID             string
	StartTime      time.Time
	EndTime        *time.Time
	SeedURLs       []string
	ConfigSnapshot string
	Status         string
}

// CrawledPage is the durable record of one fetched page.
type CrawledPage struct {
	SessionID          string
	URL                string
	OriginalURL        string
	RedirectChain      []string
	Title              string
	MetaDescription    string
	MetaKeywords       []string
	CanonicalURL       string
	RobotsMeta         string
	H1Tags             []string
	H2Tags             []string
	Language           string
	Charset            string
	ContentText        string
	ContentHTML        string
	ContentHash        string
	WordCount          int
	PageSizeBytes      int
	HTTPStatus         int
	ResponseTimeMs     int64
	InternalLinksCount int
	ExternalLinksCount int
	ImagesCount        int
	CrawlTime          time.Time
}

// CrawlError is a per-URL failure recorded against a session.
type CrawlError struct {
	SessionID    string
	URL          string
	ErrorKind    string
	ErrorMessage string
	HTTPStatus   *int
	Timestamp    time.Time
}

// Backlink is a hyperlink crossing a site boundary.
// Unique by (source_url, target_url, anchor_text).
type Backlink struct {
	SourceURL       string
	TargetURL       string
	AnchorText      string
	Context         string
	PageTitle       string
	DomainAuthority float64
	IsNofollow      bool
	DiscoveredAt    time.Time
}

// SeedURL is an operator- or discovery-provided crawl entry point.
type SeedURL struct {
	URL         string
	AddedAt     time.Time
	Priority    int
	LastCrawled *time.Time
	CrawlCount  int
}

// DomainScore is the normalized authority of one referring domain.
type DomainScore struct {
	Domain                 string
	AuthorityScore         float64
	TotalBacklinks         int
	UniqueReferringDomains int
	LastUpdated            time.Time
}

// PageRankScore is the normalized one-pass rank of one URL.
type PageRankScore struct {
	URL            string
	Score          float64
	LastCalculated time.Time
}

// DashboardStats is the singleton aggregate row read by the dashboard.
type DashboardStats struct {
	TotalURLsCrawled    int64
	TotalBacklinksFound int64
	UniqueDomains       int64
	CrawlRatePerHour    float64
	BacklinkRatePerHour float64
	DatabaseSizeMB      float64
	CurrentMode         string
	NextModeSwitch      time.Time
	UptimeSeconds       int64
	LastUpdated         time.Time
}
