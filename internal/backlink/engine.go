package backlink

/*
Responsibilities

- Breadth-first discovery of pages linking into a target site
- Cross-host edge recording with anchor, context, and nofollow capture
- Aggregate scoring (domain authority, spam flags, simplified PageRank)

Only links that cross a host boundary into the target become backlinks;
a site linking to itself is never an edge. Every fetch goes through the
shared fetcher, so discovery obeys the same delay and concurrency budget
as crawling.
*/

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/TheBoringRats/ratcrowler/internal/catalog"
	"github.com/TheBoringRats/ratcrowler/internal/config"
	"github.com/TheBoringRats/ratcrowler/internal/fetcher"
	"github.com/TheBoringRats/ratcrowler/internal/frontier"
	"github.com/TheBoringRats/ratcrowler/internal/metadata"
	"github.com/TheBoringRats/ratcrowler/pkg/failure"
	"github.com/TheBoringRats/ratcrowler/pkg/hashutil"
	"github.com/TheBoringRats/ratcrowler/pkg/urlutil"
)

type Engine struct {
	metadataSink metadata.MetadataSink
	cat          *catalog.Catalog
	htmlFetcher  fetcher.Fetcher
	agents       *fetcher.AgentPool
	cfg          config.Config
}

func NewEngine(
	metadataSink metadata.MetadataSink,
	cat *catalog.Catalog,
	htmlFetcher fetcher.Fetcher,
	agents *fetcher.AgentPool,
	cfg config.Config,
) *Engine {
	return &Engine{
		metadataSink: metadataSink,
		cat:          cat,
		htmlFetcher:  htmlFetcher,
		agents:       agents,
		cfg:          cfg,
	}
}

// Analyze discovers backlinks for the target, scores the edge set, writes
// everything to the catalog, and returns the aggregate.
func (e *Engine) Analyze(ctx context.Context, target url.URL) (BacklinkAnalysis, failure.ClassifiedError) {
	backlinks := e.Discover(ctx, target)

	authority := DomainAuthority(backlinks)
	for i := range backlinks {
		backlinks[i].DomainAuthority = authority[hostOf(backlinks[i].SourceURL)]
	}
	pagerank := PageRank(backlinks)

	if cerr := e.cat.StoreBacklinks(backlinks); cerr != nil {
		return BacklinkAnalysis{}, cerr
	}
	if cerr := e.cat.StoreDomainScores(domainScoreRows(backlinks, authority)); cerr != nil {
		return BacklinkAnalysis{}, cerr
	}
	if cerr := e.cat.StorePageRankScores(pageRankRows(pagerank)); cerr != nil {
		return BacklinkAnalysis{}, cerr
	}

	spam := 0
	for _, b := range backlinks {
		if IsSpam(b) {
			spam++
		}
	}

	return BacklinkAnalysis{
		TotalBacklinks:  len(backlinks),
		UniqueDomains:   len(authority),
		SpamBacklinks:   spam,
		DomainAuthority: authority[target.Hostname()],
		PageRankScore:   pagerank[target.String()],
	}, nil
}

// Discover walks outward from the target and returns every cross-host edge
// pointing back into the target's site. Failures along the way are logged
// and skipped; discovery itself never fails.
func (e *Engine) Discover(ctx context.Context, target url.URL) []catalog.Backlink {
	var backlinks []catalog.Backlink
	seenEdges := frontier.NewSet[string]()
	visited := frontier.NewSet[string]()
	queue := frontier.NewFIFOQueue[bfsItem]()

	queue.Enqueue(bfsItem{pageURL: target, depth: 0})

	if e.cfg.SearchEngineSeeding() {
		for _, seed := range e.searchEngineSources(ctx, target) {
			queue.Enqueue(bfsItem{pageURL: seed, depth: 1})
		}
	}

	maxDepth := e.cfg.BacklinkMaxDepth()

	for {
		if ctx.Err() != nil {
			break
		}
		item, ok := queue.Dequeue()
		if !ok {
			break
		}
		if item.depth > maxDepth || visited.Size() >= maxVisitedPages {
			continue
		}

		canonicalPage := urlutil.Canonicalize(item.pageURL)
		key := canonicalPage.String()
		if visited.Contains(key) {
			continue
		}
		visited.Add(key)

		result, ferr := e.htmlFetcher.Fetch(ctx, item.depth, fetcher.NewFetchParam(item.pageURL, e.agents.Pick()))
		if ferr != nil {
			// Unreachable pages are expected out here; skip and move on.
			continue
		}

		pageLinks, pageEdges := e.scanPage(result, target)
		for _, edge := range pageEdges {
			edgeKey := hashutil.Key(edge.SourceURL, edge.TargetURL, edge.AnchorText)
			if seenEdges.Contains(edgeKey) {
				continue
			}
			seenEdges.Add(edgeKey)
			backlinks = append(backlinks, edge)
		}

		pushed := 0
		for _, next := range pageLinks {
			if pushed >= maxLinksPerPage {
				break
			}
			canonicalNext := urlutil.Canonicalize(next)
			nextKey := canonicalNext.String()
			if visited.Contains(nextKey) {
				continue
			}
			queue.Enqueue(bfsItem{pageURL: next, depth: item.depth + 1})
			pushed++
		}
	}

	return backlinks
}

// scanPage parses one fetched page, returning the links to walk next and
// the edges into the target found on it.
func (e *Engine) scanPage(result fetcher.FetchResult, target url.URL) ([]url.URL, []catalog.Backlink) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(result.Body()))
	if err != nil {
		finalURL := result.FinalURL()
		e.metadataSink.RecordError(
			time.Now(),
			"backlink",
			"Engine.scanPage",
			metadata.CauseContentInvalid,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, finalURL.String()),
			},
		)
		return nil, nil
	}

	pageURL := result.FinalURL()
	pageTitle := strings.TrimSpace(doc.Find("title").First().Text())
	crossHost := !urlutil.SameHost(pageURL, target)

	var nextLinks []url.URL
	var edges []catalog.Backlink

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		resolved, ok := urlutil.Resolve(pageURL, href)
		if !ok || !urlutil.IsCrawlableScheme(resolved) {
			return
		}

		if urlutil.SameHost(resolved, target) {
			// An edge only counts when it crosses a host boundary.
			if crossHost {
				rel, _ := sel.Attr("rel")
				edges = append(edges, catalog.Backlink{
					SourceURL:    pageURL.String(),
					TargetURL:    resolved.String(),
					AnchorText:   strings.TrimSpace(sel.Text()),
					Context:      anchorContext(sel),
					PageTitle:    pageTitle,
					IsNofollow:   strings.Contains(rel, "nofollow"),
					DiscoveredAt: time.Now().UTC(),
				})
			}
			return
		}

		if !urlutil.HasSkippedExtension(resolved) {
			nextLinks = append(nextLinks, resolved)
		}
	})

	return nextLinks, edges
}

// anchorContext joins the text nodes around the anchor (its parent's
// direct text children), trimmed and truncated.
func anchorContext(sel *goquery.Selection) string {
	var parts []string
	sel.Parent().Contents().Each(func(_ int, child *goquery.Selection) {
		node := child.Get(0)
		if node != nil && node.Type == html.TextNode {
			if t := strings.TrimSpace(node.Data); t != "" {
				parts = append(parts, t)
			}
		}
	})

	context := strings.TrimSpace(strings.Join(parts, " "))
	if len(context) > contextMaxChars {
		context = context[:contextMaxChars]
	}
	return context
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
