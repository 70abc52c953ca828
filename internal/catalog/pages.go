package catalog

import (
	"time"

	"github.com/TheBoringRats/ratcrowler/pkg/failure"
)

// StorePage persists one crawled page. The UNIQUE(session_id, url)
// constraint makes a duplicate insert within a session a silent no-op, so
// racing workers cannot violate the one-row-per-URL-per-session rule.
func (c *Catalog) StorePage(page CrawledPage) failure.ClassifiedError {
	c.mu.Lock()
	defer c.mu.Unlock()

	redirects, cerr := marshalList(page.RedirectChain)
	if cerr != nil {
		return cerr
	}
	keywords, cerr := marshalList(page.MetaKeywords)
	if cerr != nil {
		return cerr
	}
	h1s, cerr := marshalList(page.H1Tags)
	if cerr != nil {
		return cerr
	}
	h2s, cerr := marshalList(page.H2Tags)
	if cerr != nil {
		return cerr
	}

	_, err := c.db.Exec(
		`INSERT OR IGNORE INTO crawled_pages
		 (session_id, url, original_url, redirect_chain, title, meta_description,
		  meta_keywords, canonical_url, robots_meta, h1_tags, h2_tags, language,
		  charset, content_text, content_html, content_hash, word_count, page_size,
		  http_status_code, response_time_ms, internal_links_count,
		  external_links_count, images_count, crawl_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		page.SessionID, page.URL, page.OriginalURL, redirects, page.Title,
		page.MetaDescription, keywords, page.CanonicalURL, page.RobotsMeta,
		h1s, h2s, page.Language, page.Charset, page.ContentText,
		page.ContentHTML, page.ContentHash, page.WordCount, page.PageSizeBytes,
		page.HTTPStatus, page.ResponseTimeMs, page.InternalLinksCount,
		page.ExternalLinksCount, page.ImagesCount, formatTime(page.CrawlTime),
	)
	if err != nil {
		return writeError(err)
	}
	return nil
}

// GetPage reads a page back by (session, url).
func (c *Catalog) GetPage(sessionID, url string) (CrawledPage, failure.ClassifiedError) {
	row := c.db.QueryRow(
		`SELECT session_id, url, original_url, redirect_chain, title,
		        meta_description, meta_keywords, canonical_url, robots_meta,
		        h1_tags, h2_tags, language, charset, content_text, content_html,
		        content_hash, word_count, page_size, http_status_code,
		        response_time_ms, internal_links_count, external_links_count,
		        images_count, crawl_time
		 FROM crawled_pages WHERE session_id = ? AND url = ?`, sessionID, url,
	)
	return scanPage(row)
}

// RecentPages returns the N most recently crawled pages, newest first.
// This is the dashboard's page feed.
func (c *Catalog) RecentPages(limit int) ([]CrawledPage, failure.ClassifiedError) {
	rows, err := c.db.Query(
		`SELECT session_id, url, original_url, redirect_chain, title,
		        meta_description, meta_keywords, canonical_url, robots_meta,
		        h1_tags, h2_tags, language, charset, content_text, content_html,
		        content_hash, word_count, page_size, http_status_code,
		        response_time_ms, internal_links_count, external_links_count,
		        images_count, crawl_time
		 FROM crawled_pages ORDER BY crawl_time DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, readError(err)
	}
	defer rows.Close()

	var pages []CrawledPage
	for rows.Next() {
		p, cerr := scanPage(rows)
		if cerr != nil {
			return nil, cerr
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, readError(err)
	}
	return pages, nil
}

// PageContentChanged reports whether the most recent stored hash for url
// differs from hash. An unseen URL counts as changed.
func (c *Catalog) PageContentChanged(url, hash string) (bool, failure.ClassifiedError) {
	row := c.db.QueryRow(
		`SELECT content_hash FROM crawled_pages
		 WHERE url = ? ORDER BY crawl_time DESC LIMIT 1`, url,
	)
	var stored string
	if err := row.Scan(&stored); err != nil {
		if isNoRows(err) {
			return true, nil
		}
		return false, readError(err)
	}
	return stored != hash, nil
}

// CountPages counts the rows in crawled_pages, optionally per session
// (empty sessionID counts everything).
func (c *Catalog) CountPages(sessionID string) (int64, failure.ClassifiedError) {
	var row rowScanner
	if sessionID == "" {
		row = c.db.QueryRow(`SELECT COUNT(*) FROM crawled_pages`)
	} else {
		row = c.db.QueryRow(`SELECT COUNT(*) FROM crawled_pages WHERE session_id = ?`, sessionID)
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, readError(err)
	}
	return n, nil
}

// CountPagesSince counts pages crawled after the given instant; feeds the
// last-hour crawl rate.
func (c *Catalog) CountPagesSince(since time.Time) (int64, failure.ClassifiedError) {
	row := c.db.QueryRow(
		`SELECT COUNT(*) FROM crawled_pages WHERE crawl_time >= ?`,
		formatTime(since),
	)
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, readError(err)
	}
	return n, nil
}

// LogError appends a crawl error row.
func (c *Catalog) LogError(e CrawlError) failure.ClassifiedError {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(
		`INSERT INTO crawl_errors (session_id, url, error_type, error_msg, status_code, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.URL, e.ErrorKind, e.ErrorMessage, e.HTTPStatus, formatTime(e.Timestamp),
	)
	if err != nil {
		return writeError(err)
	}
	return nil
}

// CountErrors counts the errors recorded against a session.
func (c *Catalog) CountErrors(sessionID string) (int64, failure.ClassifiedError) {
	row := c.db.QueryRow(`SELECT COUNT(*) FROM crawl_errors WHERE session_id = ?`, sessionID)
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, readError(err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(row rowScanner) (CrawledPage, failure.ClassifiedError) {
	var p CrawledPage
	var redirects, keywords, h1s, h2s, crawlTime string
	err := row.Scan(
		&p.SessionID, &p.URL, &p.OriginalURL, &redirects, &p.Title,
		&p.MetaDescription, &keywords, &p.CanonicalURL, &p.RobotsMeta,
		&h1s, &h2s, &p.Language, &p.Charset, &p.ContentText, &p.ContentHTML,
		&p.ContentHash, &p.WordCount, &p.PageSizeBytes, &p.HTTPStatus,
		&p.ResponseTimeMs, &p.InternalLinksCount, &p.ExternalLinksCount,
		&p.ImagesCount, &crawlTime,
	)
	if err != nil {
		return CrawledPage{}, readError(err)
	}
	p.RedirectChain = unmarshalList(redirects)
	p.MetaKeywords = unmarshalList(keywords)
	p.H1Tags = unmarshalList(h1s)
	p.H2Tags = unmarshalList(h2s)
	p.CrawlTime = parseTime(crawlTime)
	return p, nil
}
