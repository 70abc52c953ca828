package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/TheBoringRats/ratcrowler/pkg/failure"
	"github.com/TheBoringRats/ratcrowler/pkg/fileutil"
)

/*
Responsibilities

- Own the single embedded SQLite file
- Serialize every write through one mutex
- Expose transactional operations only; no caller ever sees the connection

The catalog is the only durable state in the process. Everything else is
reconstructed on restart.
*/

type Catalog struct {
	// mu guards writes. Reads share the connection; modernc's driver
	// serializes statements internally, the mutex keeps logical operations
	// (insert page + bump counters) atomic from the engines' point of view.
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the catalog file and applies the schema.
// Failure here is fatal to the process.
func Open(path string) (*Catalog, failure.ClassifiedError) {
	if err := fileutil.EnsureParentDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &CatalogError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseOpenFailed,
		}
	}

	// One connection: the writer mutex above is the real serialization
	// point, a pool would only hide write conflicts.
	db.SetMaxOpenConns(1)

	c := &Catalog{db: db, path: path}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Catalog) migrate() failure.ClassifiedError {
	for _, stmt := range schemaStatements {
		if _, err := c.db.Exec(stmt); err != nil {
			return &CatalogError{
				Message:   fmt.Sprintf("%s: %v", stmt[:40], err),
				Retryable: false,
				Cause:     ErrCauseMigrateFailed,
			}
		}
	}
	// Stats singleton must exist before the first dashboard read.
	_, err := c.db.Exec(
		`INSERT OR IGNORE INTO stats (id, last_updated) VALUES (1, ?)`,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return &CatalogError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseMigrateFailed,
		}
	}
	return nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

// FileSizeMB reports the catalog file size for the stats row.
func (c *Catalog) FileSizeMB() float64 {
	info, err := os.Stat(c.path)
	if err != nil {
		return 0
	}
	return float64(info.Size()) / (1024 * 1024)
}

// marshalList encodes list columns (redirect chains, heading tags) the way
// the schema stores them: a JSON array in a TEXT column.
func marshalList(items []string) (string, failure.ClassifiedError) {
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", &CatalogError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseEncodeFailed,
		}
	}
	return string(raw), nil
}

func unmarshalList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []string{}
	}
	return items
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// Times are stored as whole-second RFC3339 in UTC: fixed width, so the
// string ordering SQLite applies to crawl_time matches chronology.
func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
