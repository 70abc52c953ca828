package backlink

import (
	"strings"
	"time"

	"github.com/TheBoringRats/ratcrowler/internal/catalog"
)

// spamIndicators: a backlink whose source URL, anchor text, or context
// contains any of these (lowercased) is flagged.
var spamIndicators = []string{
	"casino", "poker", "viagra", "pharmacy", "loan", "insurance",
	"free-money", "make-money-fast", "weight-loss", "dating",
}

// IsSpam applies the keyword heuristic to one edge.
func IsSpam(b catalog.Backlink) bool {
	haystacks := []string{
		strings.ToLower(b.SourceURL),
		strings.ToLower(b.AnchorText),
		strings.ToLower(b.Context),
	}
	for _, indicator := range spamIndicators {
		for _, h := range haystacks {
			if strings.Contains(h, indicator) {
				return true
			}
		}
	}
	return false
}

// DomainAuthority scores each source domain by its share of the edge set:
// raw inbound count normalized so the best domain lands at 100. An empty
// edge set yields an empty map (scores of 0 everywhere).
func DomainAuthority(backlinks []catalog.Backlink) map[string]float64 {
	scores := make(map[string]float64)
	for _, b := range backlinks {
		if host := hostOf(b.SourceURL); host != "" {
			scores[host]++
		}
	}

	var max float64
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	if max > 0 {
		for d := range scores {
			scores[d] = scores[d] / max * 100
		}
	}
	return scores
}

// PageRank is the one-pass simplified rank: every edge (d -> t) contributes
// 1/out(d) to t, where out(d) is the number of edges originating from
// source domain d. Scores normalize so the best target lands at 100.
// This is intentionally not an iterative power-method PageRank.
func PageRank(backlinks []catalog.Backlink) map[string]float64 {
	outgoing := make(map[string]int)
	for _, b := range backlinks {
		if host := hostOf(b.SourceURL); host != "" {
			outgoing[host]++
		}
	}

	scores := make(map[string]float64)
	for _, b := range backlinks {
		host := hostOf(b.SourceURL)
		if host == "" {
			continue
		}
		out := outgoing[host]
		if out == 0 {
			out = 1
		}
		scores[b.TargetURL] += 1.0 / float64(out)
	}

	var max float64
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	if max > 0 {
		for u := range scores {
			scores[u] = scores[u] / max * 100
		}
	}
	return scores
}

// domainScoreRows shapes the authority map into catalog rows.
func domainScoreRows(backlinks []catalog.Backlink, authority map[string]float64) []catalog.DomainScore {
	counts := make(map[string]int)
	targets := make(map[string]map[string]struct{})
	for _, b := range backlinks {
		host := hostOf(b.SourceURL)
		if host == "" {
			continue
		}
		counts[host]++
		if targets[host] == nil {
			targets[host] = make(map[string]struct{})
		}
		targets[host][hostOf(b.TargetURL)] = struct{}{}
	}

	now := time.Now().UTC()
	rows := make([]catalog.DomainScore, 0, len(authority))
	for domain, score := range authority {
		rows = append(rows, catalog.DomainScore{
			Domain:                 domain,
			AuthorityScore:         score,
			TotalBacklinks:         counts[domain],
			UniqueReferringDomains: len(targets[domain]),
			LastUpdated:            now,
		})
	}
	return rows
}

func pageRankRows(scores map[string]float64) []catalog.PageRankScore {
	now := time.Now().UTC()
	rows := make([]catalog.PageRankScore, 0, len(scores))
	for u, s := range scores {
		rows = append(rows, catalog.PageRankScore{
			URL:            u,
			Score:          s,
			LastCalculated: now,
		})
	}
	return rows
}
