package catalog

import (
	"github.com/TheBoringRats/ratcrowler/pkg/failure"
)

// UpdateStats overwrites the singleton stats row.
func (c *Catalog) UpdateStats(s DashboardStats) failure.ClassifiedError {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(
		`UPDATE stats SET
		   total_urls_crawled = ?,
		   total_backlinks_found = ?,
		   unique_domains = ?,
		   crawl_rate_per_hour = ?,
		   backlink_rate_per_hour = ?,
		   database_size_mb = ?,
		   current_mode = ?,
		   next_mode_switch = ?,
		   uptime_seconds = ?,
		   last_updated = ?
		 WHERE id = 1`,
		s.TotalURLsCrawled, s.TotalBacklinksFound, s.UniqueDomains,
		s.CrawlRatePerHour, s.BacklinkRatePerHour, s.DatabaseSizeMB,
		s.CurrentMode, formatTime(s.NextModeSwitch), s.UptimeSeconds,
		formatTime(s.LastUpdated),
	)
	if err != nil {
		return writeError(err)
	}
	return nil
}

// GetStats reads the singleton stats row. The dashboard consumes this
// without touching any engine.
func (c *Catalog) GetStats() (DashboardStats, failure.ClassifiedError) {
	row := c.db.QueryRow(
		`SELECT total_urls_crawled, total_backlinks_found, unique_domains,
		        crawl_rate_per_hour, backlink_rate_per_hour, database_size_mb,
		        current_mode, COALESCE(next_mode_switch, ''), uptime_seconds,
		        last_updated
		 FROM stats WHERE id = 1`,
	)

	var s DashboardStats
	var nextSwitch, updated string
	err := row.Scan(
		&s.TotalURLsCrawled, &s.TotalBacklinksFound, &s.UniqueDomains,
		&s.CrawlRatePerHour, &s.BacklinkRatePerHour, &s.DatabaseSizeMB,
		&s.CurrentMode, &nextSwitch, &s.UptimeSeconds, &updated,
	)
	if err != nil {
		return DashboardStats{}, readError(err)
	}
	if nextSwitch != "" {
		s.NextModeSwitch = parseTime(nextSwitch)
	}
	s.LastUpdated = parseTime(updated)
	return s, nil
}
