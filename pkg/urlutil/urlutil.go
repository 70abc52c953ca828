package urlutil

import (
	"net/url"
	"path"
	"strings"
)

// Canonicalize applies a deterministic normalization to a URL, producing a
// canonical form. It maps equivalent URL spellings to a single canonical
// representation.
//
// The normalization follows these rules:
//   - Scheme and host are lowercased
//   - Trailing slashes are removed from the path (except for root "/")
//   - Fragments are removed
//   - Default ports are omitted (e.g., :80 for http, :443 for https)
//
// Properties:
//   - Pure: no state, no memory
//   - Deterministic: same input always produces same output
//   - Idempotent: Canonicalize(Canonicalize(url)) == Canonicalize(url)
func Canonicalize(sourceUrl url.URL) url.URL {
	canonical := sourceUrl

	canonical.Scheme = lowerASCII(canonical.Scheme)
	canonical.Host = lowerASCII(canonical.Host)

	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	if len(canonical.Path) > 1 {
		canonical.Path = stripTrailingSlash(canonical.Path)
	}

	canonical.Fragment = ""
	canonical.RawFragment = ""

	return canonical
}

// Resolve interprets href relative to base and returns the absolute result.
// The second return value is false when href cannot be parsed.
func Resolve(base url.URL, href string) (url.URL, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return url.URL{}, false
	}
	return *base.ResolveReference(ref), true
}

// SameHost reports whether two URLs live on the same site. Comparison is on
// the full hostname: a.example.com and b.example.com are different sites.
func SameHost(a, b url.URL) bool {
	return lowerASCII(a.Hostname()) == lowerASCII(b.Hostname())
}

// Origin returns the cache key for per-site state: scheme://host[:port].
func Origin(u url.URL) string {
	return lowerASCII(u.Scheme) + "://" + lowerASCII(u.Host)
}

// IsCrawlableScheme reports whether the URL uses a fetchable scheme.
func IsCrawlableScheme(u url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}

// skippedExtensions lists binary and asset suffixes that are never worth a
// fetch. Matched against the last path segment, case-insensitive.
var skippedExtensions = map[string]struct{}{
	"pdf": {}, "doc": {}, "docx": {}, "xls": {}, "xlsx": {}, "ppt": {}, "pptx": {},
	"zip": {}, "rar": {}, "7z": {}, "tar": {}, "gz": {}, "bz2": {},
	"mp3": {}, "mp4": {}, "avi": {}, "mov": {}, "wmv": {}, "flv": {},
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "bmp": {}, "svg": {}, "ico": {},
	"css": {}, "js": {}, "xml": {}, "json": {}, "csv": {},
}

// HasSkippedExtension reports whether the URL's final path segment carries a
// file extension the crawler never fetches.
func HasSkippedExtension(u url.URL) bool {
	ext := strings.TrimPrefix(path.Ext(u.Path), ".")
	if ext == "" {
		return false
	}
	_, skip := skippedExtensions[lowerASCII(ext)]
	return skip
}

// lowerASCII converts ASCII characters to lowercase without allocating when
// the input is already lowercase.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// stripTrailingSlash removes trailing slashes from a path.
func stripTrailingSlash(path string) string {
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
