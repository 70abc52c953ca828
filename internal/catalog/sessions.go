package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/TheBoringRats/ratcrowler/pkg/failure"
)

// CreateSession opens a new crawl session and returns its id.
func (c *Catalog) CreateSession(seedURLs []string, configSnapshot string) (string, failure.ClassifiedError) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := uuid.NewString()
	seeds, cerr := marshalList(seedURLs)
	if cerr != nil {
		return "", cerr
	}

	_, err := c.db.Exec(
		`INSERT INTO crawl_sessions (id, start_time, seed_urls, config, status)
		 VALUES (?, ?, ?, ?, ?)`,
		id, formatTime(time.Now()), seeds, configSnapshot, SessionRunning,
	)
	if err != nil {
		return "", writeError(err)
	}
	return id, nil
}

// FinishSession stamps end_time and the terminal status.
func (c *Catalog) FinishSession(sessionID string, status string) failure.ClassifiedError {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(
		`UPDATE crawl_sessions SET end_time = ?, status = ? WHERE id = ?`,
		formatTime(time.Now()), status, sessionID,
	)
	if err != nil {
		return writeError(err)
	}
	return nil
}

// GetSession reads one session back, mainly for CLI summaries and tests.
func (c *Catalog) GetSession(sessionID string) (CrawlSession, failure.ClassifiedError) {
	row := c.db.QueryRow(
		`SELECT id, start_time, end_time, seed_urls, config, status
		 FROM crawl_sessions WHERE id = ?`, sessionID,
	)

	var s CrawlSession
	var startRaw, seedsRaw string
	var endRaw *string
	if err := row.Scan(&s.ID, &startRaw, &endRaw, &seedsRaw, &s.ConfigSnapshot, &s.Status); err != nil {
		return CrawlSession{}, readError(err)
	}
	s.StartTime = parseTime(startRaw)
	if endRaw != nil {
		t := parseTime(*endRaw)
		s.EndTime = &t
	}
	s.SeedURLs = unmarshalList(seedsRaw)
	return s, nil
}

// RecoverAbortedSessions marks every session still 'running' whose start
// predates the threshold as aborted. Called once at daemon startup so a
// crash never leaves a session open forever.
func (c *Catalog) RecoverAbortedSessions(olderThan time.Duration) (int, failure.ClassifiedError) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := formatTime(time.Now().Add(-olderThan))
	res, err := c.db.Exec(
		`UPDATE crawl_sessions SET status = ?, end_time = ?
		 WHERE status = ? AND end_time IS NULL AND start_time < ?`,
		SessionAborted, formatTime(time.Now()), SessionRunning, cutoff,
	)
	if err != nil {
		return 0, writeError(err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
