package extractor

import "net/url"

// Link is one resolved <a href> from a page.
type Link struct {
	// URL is the href resolved against the page's final URL.
	URL url.URL
	// Internal is true when the link stays on the page's host.
	Internal bool
	// Crawlable is true when the scheme is http/https and the path does not
	// end in a binary/asset extension.
	Crawlable bool
}

// PageDocument is the structured record extracted from one HTML response.
type PageDocument struct {
	Title           string
	MetaDescription string
	MetaKeywords    []string
	CanonicalURL    string
	RobotsMeta      string
	H1Tags          []string
	H2Tags          []string
	Language        string
	Charset         string
	ContentText     string
	ContentHash     string
	WordCount       int
	ImagesCount     int
	Links           []Link
}

// InternalLinksCount counts links staying on the page's host.
func (p *PageDocument) InternalLinksCount() int {
	n := 0
	for _, l := range p.Links {
		if l.Internal {
			n++
		}
	}
	return n
}

// ExternalLinksCount counts links leaving the page's host.
func (p *PageDocument) ExternalLinksCount() int {
	return len(p.Links) - p.InternalLinksCount()
}
