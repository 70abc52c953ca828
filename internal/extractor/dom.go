package extractor

/*
Responsibilities

- Parse a fetched HTML body into a structured page record
- Resolve and classify every outbound link
- Hash the raw body for change detection

The extractor is pure: same bytes in, same record out. It never fetches
and never touches storage.
*/

import (
	"bytes"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/TheBoringRats/ratcrowler/internal/metadata"
	"github.com/TheBoringRats/ratcrowler/pkg/failure"
	"github.com/TheBoringRats/ratcrowler/pkg/hashutil"
	"github.com/TheBoringRats/ratcrowler/pkg/urlutil"
)

type Extractor interface {
	Extract(finalURL url.URL, body []byte, contentTypeHeader string) (PageDocument, failure.ClassifiedError)
}

type DomExtractor struct {
	metadataSink metadata.MetadataSink
}

func NewDomExtractor(metadataSink metadata.MetadataSink) DomExtractor {
	return DomExtractor{metadataSink: metadataSink}
}

func (d *DomExtractor) Extract(finalURL url.URL, body []byte, contentTypeHeader string) (PageDocument, failure.ClassifiedError) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		d.metadataSink.RecordError(
			time.Now(),
			"extractor",
			"DomExtractor.Extract",
			metadata.CauseContentInvalid,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, finalURL.String()),
			},
		)
		return PageDocument{}, &ExtractError{
			Message: err.Error(),
			Cause:   ErrCauseParseFailed,
		}
	}

	contentText := extractContentText(doc)

	page := PageDocument{
		Title:           strings.TrimSpace(doc.Find(selTitle).First().Text()),
		MetaDescription: attrOf(doc, selMetaDesc, "content"),
		MetaKeywords:    splitKeywords(attrOf(doc, selMetaKeyword, "content")),
		CanonicalURL:    attrOf(doc, selCanonical, "href"),
		RobotsMeta:      attrOf(doc, selMetaRobots, "content"),
		H1Tags:          headingTexts(doc, selH1),
		H2Tags:          headingTexts(doc, selH2),
		Language:        language(doc),
		Charset:         charsetFromContentType(contentTypeHeader),
		ContentText:     contentText,
		ContentHash:     hashutil.ContentHash(body),
		WordCount:       len(strings.Fields(contentText)),
		ImagesCount:     doc.Find(selImage).Length(),
		Links:           extractLinks(doc, finalURL),
	}

	return page, nil
}

func attrOf(doc *goquery.Document, selector, attr string) string {
	value, _ := doc.Find(selector).First().Attr(attr)
	return strings.TrimSpace(value)
}

// splitKeywords splits a keywords meta value on commas, trimming each entry
// and dropping empties.
func splitKeywords(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	return keywords
}

func headingTexts(doc *goquery.Document, selector string) []string {
	texts := []string{}
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		if t := strings.TrimSpace(sel.Text()); t != "" {
			texts = append(texts, t)
		}
	})
	return texts
}

func language(doc *goquery.Document) string {
	if lang, ok := doc.Find(selHTML).First().Attr("lang"); ok && lang != "" {
		return lang
	}
	return "en"
}

// charsetFromContentType pulls `charset=...` out of a Content-Type header.
func charsetFromContentType(header string) string {
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(strings.ToLower(part), "charset=") {
			if cs := strings.TrimSpace(part[len("charset="):]); cs != "" {
				return strings.Trim(cs, `"`)
			}
		}
	}
	return "utf-8"
}

// extractContentText collects the visible body text with whitespace
// collapsed. Script, style and noscript subtrees are dropped first so the
// stored text never contains JavaScript or CSS source.
func extractContentText(doc *goquery.Document) string {
	body := doc.Find(selBody).First()
	if body.Length() == 0 {
		return ""
	}
	cleaned := body.Clone()
	cleaned.Find(selNonContent).Remove()
	return strings.Join(strings.Fields(cleaned.Text()), " ")
}

func extractLinks(doc *goquery.Document, finalURL url.URL) []Link {
	links := []Link{}
	doc.Find(selAnchor).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		resolved, ok := urlutil.Resolve(finalURL, href)
		if !ok {
			return
		}
		links = append(links, Link{
			URL:      resolved,
			Internal: urlutil.SameHost(resolved, finalURL),
			Crawlable: urlutil.IsCrawlableScheme(resolved) &&
				!urlutil.HasSkippedExtension(resolved),
		})
	})
	return links
}
