package extractor

// CSS selectors for the structured page fields.
const (
	selTitle       = "title"
	selMetaDesc    = `meta[name="description"]`
	selMetaKeyword = `meta[name="keywords"]`
	selMetaRobots  = `meta[name="robots"]`
	selCanonical   = `link[rel="canonical"]`
	selH1          = "h1"
	selH2          = "h2"
	selImage       = "img"
	selAnchor      = "a[href]"
	selBody        = "body"
	selHTML        = "html"
	selNonContent  = "script, style, noscript"
)
