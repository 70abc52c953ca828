package catalog

import (
	"time"

	"github.com/TheBoringRats/ratcrowler/pkg/failure"
)

// StoreBacklinks persists a batch of discovered edges in one transaction.
// The UNIQUE(source_url, target_url, anchor_text) constraint deduplicates
// across discovery sessions.
func (c *Catalog) StoreBacklinks(backlinks []Backlink) failure.ClassifiedError {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return writeError(err)
	}

	stmt, err := tx.Prepare(
		`INSERT OR REPLACE INTO backlinks
		 (source_url, target_url, anchor_text, context, page_title,
		  domain_authority, is_nofollow, discovered_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		tx.Rollback()
		return writeError(err)
	}
	defer stmt.Close()

	for _, b := range backlinks {
		_, err := stmt.Exec(
			b.SourceURL, b.TargetURL, b.AnchorText, b.Context, b.PageTitle,
			b.DomainAuthority, b.IsNofollow, formatTime(b.DiscoveredAt),
		)
		if err != nil {
			tx.Rollback()
			return writeError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return writeError(err)
	}
	return nil
}

// BacklinksForTarget returns up to limit stored edges whose target URL
// starts with targetURL, newest first.
func (c *Catalog) BacklinksForTarget(targetURL string, limit int) ([]Backlink, failure.ClassifiedError) {
	rows, err := c.db.Query(
		`SELECT source_url, target_url, anchor_text, context, page_title,
		        domain_authority, is_nofollow, discovered_at
		 FROM backlinks WHERE target_url LIKE ? || '%'
		 ORDER BY discovered_at DESC LIMIT ?`, targetURL, limit,
	)
	if err != nil {
		return nil, readError(err)
	}
	defer rows.Close()

	var links []Backlink
	for rows.Next() {
		var b Backlink
		var discovered string
		if err := rows.Scan(
			&b.SourceURL, &b.TargetURL, &b.AnchorText, &b.Context,
			&b.PageTitle, &b.DomainAuthority, &b.IsNofollow, &discovered,
		); err != nil {
			return nil, readError(err)
		}
		b.DiscoveredAt = parseTime(discovered)
		links = append(links, b)
	}
	if err := rows.Err(); err != nil {
		return nil, readError(err)
	}
	return links, nil
}

// CountBacklinks counts all stored edges.
func (c *Catalog) CountBacklinks() (int64, failure.ClassifiedError) {
	row := c.db.QueryRow(`SELECT COUNT(*) FROM backlinks`)
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, readError(err)
	}
	return n, nil
}

// CountBacklinksSince counts edges discovered after the given instant.
func (c *Catalog) CountBacklinksSince(since time.Time) (int64, failure.ClassifiedError) {
	row := c.db.QueryRow(
		`SELECT COUNT(*) FROM backlinks WHERE discovered_at >= ?`,
		formatTime(since),
	)
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, readError(err)
	}
	return n, nil
}

// DistinctSourceURLs lists every distinct source URL in the backlink set.
// The supervisor turns these into new seeds after a discovery batch.
func (c *Catalog) DistinctSourceURLs() ([]string, failure.ClassifiedError) {
	rows, err := c.db.Query(`SELECT DISTINCT source_url FROM backlinks`)
	if err != nil {
		return nil, readError(err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, readError(err)
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		return nil, readError(err)
	}
	return urls, nil
}
