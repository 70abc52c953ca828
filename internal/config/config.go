package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type Config struct {
	//===============
	// Crawl limits
	//===============
	// Maximum number of hyperlink hops from a seed URL
	maxDepth int
	// Maximum number of total pages fetched per session
	maxPages int

	//===============
	// Politeness
	//===============
	// Maximum number of requests in flight at once (counting semaphore size)
	maxConcurrentRequests int
	// Fixed waiting time enforced after every HTTP request
	delayBetweenRequests time.Duration
	// Randomized variation added on top of the fixed delay
	jitter time.Duration
	// Controls the random number generator (user-agent pick, jitter)
	randomSeed int64
	// Whether robots.txt rules are consulted before fetching
	respectRobotsTxt bool
	// Maximum attempts for infrastructure fetches (robots.txt, search pages)
	maxAttempt int
	// Backoff shape for those retries
	backoffInitialDuration time.Duration
	backoffMultiplier      float64
	backoffMaxDuration     time.Duration

	//===============
	// Fetch
	//===============
	// Maximum duration of a single fetch request
	timeout time.Duration
	// Redirect hops before a fetch is abandoned
	maxRedirects int
	// Pool of user agents; each request picks one at random
	userAgents []string

	//===============
	// Backlink discovery
	//===============
	// BFS depth bound for backlink discovery
	backlinkMaxDepth int
	// Whether search-engine result pages seed the discovery BFS
	searchEngineSeeding bool

	//===============
	// Schedule
	//===============
	// Hours of day (0-23) reserved for backlink discovery
	backlinkHours []int
	// Hours of day (0-23) reserved for crawling
	crawlingHours []int
	// Wall-clock budget of one backlink-discovery session
	sessionDuration time.Duration
	// How often the supervisor re-reads the mode
	checkInterval time.Duration

	//===============
	// Storage & surfaces
	//===============
	// Path of the catalog file
	databasePath string
	// Path of the JSON seed bootstrap file
	seedFilePath string
	// Port the read-only dashboard listens on
	dashboardPort int
}

type configDTO struct {
	MaxDepth               int      `json:"maxDepth,omitempty"`
	MaxPages               int      `json:"maxPages,omitempty"`
	MaxConcurrentRequests  int      `json:"maxConcurrentRequests,omitempty"`
	DelayBetweenRequestsMs int64    `json:"delayBetweenRequestsMs,omitempty"`
	JitterMs               int64    `json:"jitterMs,omitempty"`
	RandomSeed             int64    `json:"randomSeed,omitempty"`
	RespectRobotsTxt       *bool    `json:"respectRobotsTxt,omitempty"`
	MaxAttempt             int      `json:"maxAttempt,omitempty"`
	BackoffInitialMs       int64    `json:"backoffInitialMs,omitempty"`
	BackoffMultiplier      float64  `json:"backoffMultiplier,omitempty"`
	BackoffMaxMs           int64    `json:"backoffMaxMs,omitempty"`
	TimeoutSecs            int64    `json:"timeoutSecs,omitempty"`
	MaxRedirects           int      `json:"maxRedirects,omitempty"`
	UserAgents             []string `json:"userAgents,omitempty"`
	BacklinkMaxDepth       int      `json:"backlinkMaxDepth,omitempty"`
	SearchEngineSeeding    bool     `json:"searchEngineSeeding,omitempty"`
	BacklinkHours          []int    `json:"backlinkHours,omitempty"`
	CrawlingHours          []int    `json:"crawlingHours,omitempty"`
	SessionDurationHours   int      `json:"sessionDurationHours,omitempty"`
	CheckIntervalMinutes   int      `json:"checkIntervalMinutes,omitempty"`
	DatabasePath           string   `json:"databasePath,omitempty"`
	SeedFilePath           string   `json:"seedFilePath,omitempty"`
	DashboardPort          int      `json:"dashboardPort,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	cfg, err := WithDefault().Build()
	if err != nil {
		return Config{}, err
	}

	if dto.MaxDepth != 0 {
		cfg.maxDepth = dto.MaxDepth
	}
	if dto.MaxPages != 0 {
		cfg.maxPages = dto.MaxPages
	}
	if dto.MaxConcurrentRequests != 0 {
		cfg.maxConcurrentRequests = dto.MaxConcurrentRequests
	}
	if dto.DelayBetweenRequestsMs != 0 {
		cfg.delayBetweenRequests = time.Duration(dto.DelayBetweenRequestsMs) * time.Millisecond
	}
	if dto.JitterMs != 0 {
		cfg.jitter = time.Duration(dto.JitterMs) * time.Millisecond
	}
	if dto.RandomSeed != 0 {
		cfg.randomSeed = dto.RandomSeed
	}
	if dto.RespectRobotsTxt != nil {
		cfg.respectRobotsTxt = *dto.RespectRobotsTxt
	}
	if dto.MaxAttempt != 0 {
		cfg.maxAttempt = dto.MaxAttempt
	}
	if dto.BackoffInitialMs != 0 {
		cfg.backoffInitialDuration = time.Duration(dto.BackoffInitialMs) * time.Millisecond
	}
	if dto.BackoffMultiplier != 0 {
		cfg.backoffMultiplier = dto.BackoffMultiplier
	}
	if dto.BackoffMaxMs != 0 {
		cfg.backoffMaxDuration = time.Duration(dto.BackoffMaxMs) * time.Millisecond
	}
	if dto.TimeoutSecs != 0 {
		cfg.timeout = time.Duration(dto.TimeoutSecs) * time.Second
	}
	if dto.MaxRedirects != 0 {
		cfg.maxRedirects = dto.MaxRedirects
	}
	if len(dto.UserAgents) > 0 {
		cfg.userAgents = dto.UserAgents
	}
	if dto.BacklinkMaxDepth != 0 {
		cfg.backlinkMaxDepth = dto.BacklinkMaxDepth
	}
	cfg.searchEngineSeeding = dto.SearchEngineSeeding
	if len(dto.BacklinkHours) > 0 {
		cfg.backlinkHours = dto.BacklinkHours
	}
	if len(dto.CrawlingHours) > 0 {
		cfg.crawlingHours = dto.CrawlingHours
	}
	if dto.SessionDurationHours != 0 {
		cfg.sessionDuration = time.Duration(dto.SessionDurationHours) * time.Hour
	}
	if dto.CheckIntervalMinutes != 0 {
		cfg.checkInterval = time.Duration(dto.CheckIntervalMinutes) * time.Minute
	}
	if dto.DatabasePath != "" {
		cfg.databasePath = dto.DatabasePath
	}
	if dto.SeedFilePath != "" {
		cfg.seedFilePath = dto.SeedFilePath
	}
	if dto.DashboardPort != 0 {
		cfg.dashboardPort = dto.DashboardPort
	}

	return cfg.validate()
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}

	cfgDTO := configDTO{}
	if err := json.Unmarshal(configContent, &cfgDTO); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(cfgDTO)
}

// WithDefault creates a new Config with default values for every field.
// The defaults mirror the daemon's shipped schedule: backlink processing in
// hours 0, 6, 12 and 18, idle in hours 1, 7, 13 and 19, and crawling in the
// remaining sixteen hours.
func WithDefault() *Config {
	defaultConfig := Config{
		maxDepth:               3,
		maxPages:               100,
		maxConcurrentRequests:  10,
		delayBetweenRequests:   time.Second,
		jitter:                 500 * time.Millisecond,
		randomSeed:             time.Now().UnixNano(),
		respectRobotsTxt:       true,
		maxAttempt:             3,
		backoffInitialDuration: 100 * time.Millisecond,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     10 * time.Second,
		timeout:                30 * time.Second,
		maxRedirects:           10,
		userAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
		},
		backlinkMaxDepth:    3,
		searchEngineSeeding: false,
		backlinkHours:       []int{0, 6, 12, 18},
		crawlingHours:       []int{2, 3, 4, 5, 8, 9, 10, 11, 14, 15, 16, 17, 20, 21, 22, 23},
		sessionDuration:     2 * time.Hour,
		checkInterval:       10 * time.Minute,
		databasePath:        "ratcrowler.db",
		seedFilePath:        "seed_urls.json",
		dashboardPort:       8080,
	}
	return &defaultConfig
}

func (c *Config) WithMaxDepth(depth int) *Config {
	c.maxDepth = depth
	return c
}

func (c *Config) WithMaxPages(pages int) *Config {
	c.maxPages = pages
	return c
}

func (c *Config) WithMaxConcurrentRequests(n int) *Config {
	c.maxConcurrentRequests = n
	return c
}

func (c *Config) WithDelayBetweenRequests(d time.Duration) *Config {
	c.delayBetweenRequests = d
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithRespectRobotsTxt(respect bool) *Config {
	c.respectRobotsTxt = respect
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithMaxRedirects(n int) *Config {
	c.maxRedirects = n
	return c
}

func (c *Config) WithUserAgents(agents []string) *Config {
	c.userAgents = agents
	return c
}

func (c *Config) WithBacklinkMaxDepth(depth int) *Config {
	c.backlinkMaxDepth = depth
	return c
}

func (c *Config) WithSearchEngineSeeding(enabled bool) *Config {
	c.searchEngineSeeding = enabled
	return c
}

func (c *Config) WithBacklinkHours(hours []int) *Config {
	c.backlinkHours = hours
	return c
}

func (c *Config) WithCrawlingHours(hours []int) *Config {
	c.crawlingHours = hours
	return c
}

func (c *Config) WithSessionDuration(d time.Duration) *Config {
	c.sessionDuration = d
	return c
}

func (c *Config) WithCheckInterval(d time.Duration) *Config {
	c.checkInterval = d
	return c
}

func (c *Config) WithDatabasePath(path string) *Config {
	c.databasePath = path
	return c
}

func (c *Config) WithSeedFilePath(path string) *Config {
	c.seedFilePath = path
	return c
}

func (c *Config) WithDashboardPort(port int) *Config {
	c.dashboardPort = port
	return c
}

func (c *Config) Build() (Config, error) {
	return c.validate()
}

func (c *Config) validate() (Config, error) {
	if len(c.userAgents) == 0 {
		return Config{}, fmt.Errorf("%w: userAgents cannot be empty", ErrInvalidConfig)
	}
	if c.databasePath == "" {
		return Config{}, fmt.Errorf("%w: databasePath cannot be empty", ErrInvalidConfig)
	}
	seen := map[int]struct{}{}
	for _, h := range c.backlinkHours {
		if h < 0 || h > 23 {
			return Config{}, fmt.Errorf("%w: backlink hour %d out of range", ErrInvalidConfig, h)
		}
		seen[h] = struct{}{}
	}
	for _, h := range c.crawlingHours {
		if h < 0 || h > 23 {
			return Config{}, fmt.Errorf("%w: crawling hour %d out of range", ErrInvalidConfig, h)
		}
		if _, overlap := seen[h]; overlap {
			return Config{}, fmt.Errorf("%w: hour %d in both backlink and crawling sets", ErrInvalidConfig, h)
		}
	}
	return *c, nil
}

func (c *Config) MaxDepth() int                          { return c.maxDepth }
func (c *Config) MaxPages() int                          { return c.maxPages }
func (c *Config) MaxConcurrentRequests() int             { return c.maxConcurrentRequests }
func (c *Config) DelayBetweenRequests() time.Duration    { return c.delayBetweenRequests }
func (c *Config) Jitter() time.Duration                  { return c.jitter }
func (c *Config) RandomSeed() int64                      { return c.randomSeed }
func (c *Config) RespectRobotsTxt() bool                 { return c.respectRobotsTxt }
func (c *Config) MaxAttempt() int                        { return c.maxAttempt }
func (c *Config) BackoffInitialDuration() time.Duration  { return c.backoffInitialDuration }
func (c *Config) BackoffMultiplier() float64             { return c.backoffMultiplier }
func (c *Config) BackoffMaxDuration() time.Duration      { return c.backoffMaxDuration }
func (c *Config) Timeout() time.Duration                 { return c.timeout }
func (c *Config) MaxRedirects() int                      { return c.maxRedirects }
func (c *Config) UserAgents() []string                   { return c.userAgents }
func (c *Config) BacklinkMaxDepth() int                  { return c.backlinkMaxDepth }
func (c *Config) SearchEngineSeeding() bool              { return c.searchEngineSeeding }
func (c *Config) BacklinkHours() []int                   { return c.backlinkHours }
func (c *Config) CrawlingHours() []int                   { return c.crawlingHours }
func (c *Config) SessionDuration() time.Duration         { return c.sessionDuration }
func (c *Config) CheckInterval() time.Duration           { return c.checkInterval }
func (c *Config) DatabasePath() string                   { return c.databasePath }
func (c *Config) SeedFilePath() string                   { return c.seedFilePath }
func (c *Config) DashboardPort() int                     { return c.dashboardPort }

// Snapshot renders the config as the JSON blob stored on each crawl session.
func (c *Config) Snapshot() string {
	dto := configDTO{
		MaxDepth:               c.maxDepth,
		MaxPages:               c.maxPages,
		MaxConcurrentRequests:  c.maxConcurrentRequests,
		DelayBetweenRequestsMs: c.delayBetweenRequests.Milliseconds(),
		JitterMs:               c.jitter.Milliseconds(),
		RespectRobotsTxt:       &c.respectRobotsTxt,
		MaxAttempt:             c.maxAttempt,
		TimeoutSecs:            int64(c.timeout / time.Second),
		MaxRedirects:           c.maxRedirects,
		UserAgents:             c.userAgents,
		BacklinkMaxDepth:       c.backlinkMaxDepth,
		SearchEngineSeeding:    c.searchEngineSeeding,
		BacklinkHours:          c.backlinkHours,
		CrawlingHours:          c.crawlingHours,
		SessionDurationHours:   int(c.sessionDuration / time.Hour),
		CheckIntervalMinutes:   int(c.checkInterval / time.Minute),
		DatabasePath:           c.databasePath,
		SeedFilePath:           c.seedFilePath,
		DashboardPort:          c.dashboardPort,
	}
	raw, err := json.Marshal(dto)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
