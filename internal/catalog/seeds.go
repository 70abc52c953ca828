package catalog

import (
	"time"

	"github.com/TheBoringRats/ratcrowler/pkg/failure"
)

// AddSeeds inserts seed URLs at the given priority. A URL already present
// keeps its row; if the new priority is higher the row is promoted — a
// rediscovered domain moves up the queue instead of duplicating.
func (c *Catalog) AddSeeds(urls []string, priority int) failure.ClassifiedError {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return writeError(err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO seed_urls (url, added_at, priority)
		 VALUES (?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
		   priority = MAX(priority, excluded.priority)`,
	)
	if err != nil {
		tx.Rollback()
		return writeError(err)
	}
	defer stmt.Close()

	now := formatTime(time.Now())
	for _, u := range urls {
		if _, err := stmt.Exec(u, now, priority); err != nil {
			tx.Rollback()
			return writeError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return writeError(err)
	}
	return nil
}

// GetSeeds returns up to limit seeds, highest priority first, least
// recently crawled first within a priority (never-crawled sorts first).
func (c *Catalog) GetSeeds(limit int) ([]SeedURL, failure.ClassifiedError) {
	rows, err := c.db.Query(
		`SELECT url, added_at, priority, last_crawled, crawl_count
		 FROM seed_urls
		 ORDER BY priority DESC, last_crawled ASC NULLS FIRST
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, readError(err)
	}
	defer rows.Close()

	var seeds []SeedURL
	for rows.Next() {
		var s SeedURL
		var added string
		var lastCrawled *string
		if err := rows.Scan(&s.URL, &added, &s.Priority, &lastCrawled, &s.CrawlCount); err != nil {
			return nil, readError(err)
		}
		s.AddedAt = parseTime(added)
		if lastCrawled != nil {
			t := parseTime(*lastCrawled)
			s.LastCrawled = &t
		}
		seeds = append(seeds, s)
	}
	if err := rows.Err(); err != nil {
		return nil, readError(err)
	}
	return seeds, nil
}

// MarkSeedCrawled stamps last_crawled and bumps crawl_count.
func (c *Catalog) MarkSeedCrawled(url string) failure.ClassifiedError {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(
		`UPDATE seed_urls SET last_crawled = ?, crawl_count = crawl_count + 1
		 WHERE url = ?`,
		formatTime(time.Now()), url,
	)
	if err != nil {
		return writeError(err)
	}
	return nil
}

// CountSeeds reports the seed table size; an empty table triggers the
// bootstrap-file import at startup.
func (c *Catalog) CountSeeds() (int64, failure.ClassifiedError) {
	row := c.db.QueryRow(`SELECT COUNT(*) FROM seed_urls`)
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, readError(err)
	}
	return n, nil
}
