package cache

import "github.com/temoto/robotstxt"

// Cache defines the port interface for parsed robots.txt rule caching,
// keyed by origin (scheme://host[:port]). Implementations must be safe for
// concurrent use; the gate performs one lookup per admission check.
type Cache interface {
	// Get retrieves cached rules by origin.
	Get(origin string) (*robotstxt.RobotsData, bool)

	// Put stores parsed rules for an origin. A nil value is legal and means
	// "allow everything" (fetch failed or file missing).
	Put(origin string, data *robotstxt.RobotsData)
}
