package catalog

// The unified catalog schema. One file holds sessions, pages, errors,
// backlinks, seeds, scores, and the stats singleton; indices match the
// dashboard's and the engines' read paths.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS crawl_sessions (
		id TEXT PRIMARY KEY,
		start_time TEXT NOT NULL,
		end_time TEXT,
		seed_urls TEXT NOT NULL,
		config TEXT NOT NULL,
		status TEXT DEFAULT 'running'
	)`,

	`CREATE TABLE IF NOT EXISTS crawled_pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		url TEXT NOT NULL,
		original_url TEXT,
		redirect_chain TEXT,
		title TEXT,
		meta_description TEXT,
		meta_keywords TEXT,
		canonical_url TEXT,
		robots_meta TEXT,
		h1_tags TEXT,
		h2_tags TEXT,
		language TEXT,
		charset TEXT,
		content_text TEXT,
		content_html TEXT,
		content_hash TEXT,
		word_count INTEGER,
		page_size INTEGER,
		http_status_code INTEGER,
		response_time_ms INTEGER,
		internal_links_count INTEGER,
		external_links_count INTEGER,
		images_count INTEGER,
		crawl_time TEXT NOT NULL,
		UNIQUE(session_id, url),
		FOREIGN KEY(session_id) REFERENCES crawl_sessions(id)
	)`,

	`CREATE TABLE IF NOT EXISTS crawl_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		url TEXT NOT NULL,
		error_type TEXT,
		error_msg TEXT,
		status_code INTEGER,
		timestamp TEXT NOT NULL,
		FOREIGN KEY(session_id) REFERENCES crawl_sessions(id)
	)`,

	`CREATE TABLE IF NOT EXISTS backlinks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_url TEXT NOT NULL,
		target_url TEXT NOT NULL,
		anchor_text TEXT,
		context TEXT,
		page_title TEXT,
		domain_authority REAL DEFAULT 0.0,
		is_nofollow BOOLEAN DEFAULT 0,
		discovered_at TEXT NOT NULL,
		UNIQUE(source_url, target_url, anchor_text)
	)`,

	`CREATE TABLE IF NOT EXISTS seed_urls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		added_at TEXT NOT NULL,
		priority INTEGER DEFAULT 1,
		last_crawled TEXT,
		crawl_count INTEGER DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS domain_scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		domain TEXT UNIQUE NOT NULL,
		authority_score REAL DEFAULT 0.0,
		total_backlinks INTEGER DEFAULT 0,
		unique_referring_domains INTEGER DEFAULT 0,
		last_updated TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS pagerank_scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT UNIQUE NOT NULL,
		pagerank_score REAL DEFAULT 0.0,
		last_calculated TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS stats (
		id INTEGER PRIMARY KEY,
		total_urls_crawled INTEGER DEFAULT 0,
		total_backlinks_found INTEGER DEFAULT 0,
		unique_domains INTEGER DEFAULT 0,
		crawl_rate_per_hour REAL DEFAULT 0.0,
		backlink_rate_per_hour REAL DEFAULT 0.0,
		database_size_mb REAL DEFAULT 0.0,
		current_mode TEXT DEFAULT 'idle',
		next_mode_switch TEXT,
		uptime_seconds INTEGER DEFAULT 0,
		last_updated TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_backlinks_source ON backlinks(source_url)`,
	`CREATE INDEX IF NOT EXISTS idx_backlinks_target ON backlinks(target_url)`,
	`CREATE INDEX IF NOT EXISTS idx_crawled_pages_url ON crawled_pages(url)`,
	`CREATE INDEX IF NOT EXISTS idx_crawled_pages_crawl_time ON crawled_pages(crawl_time)`,
	`CREATE INDEX IF NOT EXISTS idx_seed_urls_priority ON seed_urls(priority DESC)`,
}
