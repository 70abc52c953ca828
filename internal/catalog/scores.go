package catalog

import (
	"github.com/TheBoringRats/ratcrowler/pkg/failure"
)

// StoreDomainScores overwrites the per-domain authority rows. Scores are
// recomputed wholesale after each discovery session, so REPLACE is the
// intended lifecycle, not an accident.
func (c *Catalog) StoreDomainScores(scores []DomainScore) failure.ClassifiedError {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return writeError(err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO domain_scores
		 (domain, authority_score, total_backlinks, unique_referring_domains, last_updated)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(domain) DO UPDATE SET
		   authority_score = excluded.authority_score,
		   total_backlinks = excluded.total_backlinks,
		   unique_referring_domains = excluded.unique_referring_domains,
		   last_updated = excluded.last_updated`,
	)
	if err != nil {
		tx.Rollback()
		return writeError(err)
	}
	defer stmt.Close()

	for _, s := range scores {
		if _, err := stmt.Exec(
			s.Domain, s.AuthorityScore, s.TotalBacklinks,
			s.UniqueReferringDomains, formatTime(s.LastUpdated),
		); err != nil {
			tx.Rollback()
			return writeError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return writeError(err)
	}
	return nil
}

// StorePageRankScores overwrites the per-URL rank rows.
func (c *Catalog) StorePageRankScores(scores []PageRankScore) failure.ClassifiedError {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return writeError(err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO pagerank_scores (url, pagerank_score, last_calculated)
		 VALUES (?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
		   pagerank_score = excluded.pagerank_score,
		   last_calculated = excluded.last_calculated`,
	)
	if err != nil {
		tx.Rollback()
		return writeError(err)
	}
	defer stmt.Close()

	for _, s := range scores {
		if _, err := stmt.Exec(s.URL, s.Score, formatTime(s.LastCalculated)); err != nil {
			tx.Rollback()
			return writeError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return writeError(err)
	}
	return nil
}

// GetDomainScore reads one domain's authority row.
func (c *Catalog) GetDomainScore(domain string) (DomainScore, failure.ClassifiedError) {
	row := c.db.QueryRow(
		`SELECT domain, authority_score, total_backlinks, unique_referring_domains, last_updated
		 FROM domain_scores WHERE domain = ?`, domain,
	)
	var s DomainScore
	var updated string
	if err := row.Scan(&s.Domain, &s.AuthorityScore, &s.TotalBacklinks, &s.UniqueReferringDomains, &updated); err != nil {
		return DomainScore{}, readError(err)
	}
	s.LastUpdated = parseTime(updated)
	return s, nil
}

// TopDomainScores returns the highest-authority domains, for CLI summaries.
func (c *Catalog) TopDomainScores(limit int) ([]DomainScore, failure.ClassifiedError) {
	rows, err := c.db.Query(
		`SELECT domain, authority_score, total_backlinks, unique_referring_domains, last_updated
		 FROM domain_scores ORDER BY authority_score DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, readError(err)
	}
	defer rows.Close()

	var scores []DomainScore
	for rows.Next() {
		var s DomainScore
		var updated string
		if err := rows.Scan(&s.Domain, &s.AuthorityScore, &s.TotalBacklinks, &s.UniqueReferringDomains, &updated); err != nil {
			return nil, readError(err)
		}
		s.LastUpdated = parseTime(updated)
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, readError(err)
	}
	return scores, nil
}

// CountUniqueDomains counts distinct scored domains for the stats row.
func (c *Catalog) CountUniqueDomains() (int64, failure.ClassifiedError) {
	row := c.db.QueryRow(`SELECT COUNT(*) FROM domain_scores`)
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, readError(err)
	}
	return n, nil
}
