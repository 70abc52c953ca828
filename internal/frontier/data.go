package frontier

/*
 Frontier - manages crawl state & ordering
*/

import (
	"net/url"
	"strings"
)

// CrawlToken
// Frontier-issued, per-URL crawl token.
// It represents: "This URL, at this depth, with this priority, is next."
// It contains ordering + depth metadata only, no policy decisions.
type CrawlToken struct {
	url      url.URL
	depth    int
	priority int
	// seq breaks priority/depth ties deterministically in arrival order.
	seq int
}

// NewCrawlToken creates a new CrawlToken with the given URL, depth and
// priority. This constructor is provided for testing and internal use.
func NewCrawlToken(u url.URL, depth int, priority int) CrawlToken {
	return CrawlToken{url: u, depth: depth, priority: priority}
}

func (c *CrawlToken) URL() url.URL {
	return c.url
}

func (c *CrawlToken) Depth() int {
	return c.depth
}

func (c *CrawlToken) Priority() int {
	return c.priority
}

// Priority tiers.
const (
	// SeedPriority is assigned to session seed URLs.
	SeedPriority = 10
	// BasePriority is the starting priority of a discovered link.
	BasePriority = 5
	// sameHostBonus rewards links that stay on the referrer's host.
	sameHostBonus = 3
	// hintPathBonus rewards paths that usually carry site metadata.
	hintPathBonus = 2
)

var hintPaths = []string{"/about", "/contact", "/services"}

// ComputePriority scores a discovered link relative to its referrer.
func ComputePriority(link url.URL, referrer url.URL) int {
	priority := BasePriority

	if link.Hostname() != "" && link.Hostname() == referrer.Hostname() {
		priority += sameHostBonus
	}

	lowerPath := strings.ToLower(link.Path)
	for _, hint := range hintPaths {
		if strings.Contains(lowerPath, hint) {
			priority += hintPathBonus
			break
		}
	}

	return priority
}
