// Package extract retrieves abstracts and keywords for paper records. Page
// strategies are tried in priority order against the record's URL; the
// CrossRef works API is the DOI-keyed fallback when the page yields nothing.
package extract

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/reva-ai/extract-cli/internal/normalize"
)

// Locator identifies one record's retrievable sources.
type Locator struct {
	URL string
	DOI string
}

// Content is extracted material from a single source, already normalized.
type Content struct {
	Abstract string
	Keywords []string
}

// Strategy is one heuristic for pulling an abstract out of a fetched page.
// Strategies are tried in order; the first to yield non-empty normalized
// text wins. Reordering or adding strategies is a data change, not a
// control-flow change.
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document) (string, bool)
}

// selectorStrategy extracts the text of the first node matching a CSS
// selector.
type selectorStrategy struct {
	name     string
	selector string
}

func (s selectorStrategy) Name() string { return s.name }

func (s selectorStrategy) Extract(doc *goquery.Document) (string, bool) {
	text := normalize.Text(doc.Find(s.selector).First().Text())
	return text, text != ""
}

// metaStrategy extracts the content attribute of a named meta tag.
type metaStrategy struct {
	name     string
	metaName string
}

func (s metaStrategy) Name() string { return s.name }

func (s metaStrategy) Extract(doc *goquery.Document) (string, bool) {
	content, _ := doc.Find(`meta[name="` + s.metaName + `"]`).First().Attr("content")
	text := normalize.Text(content)
	return text, text != ""
}

// DefaultStrategies returns the page strategies in priority order: the
// dedicated abstract section, any abstract-classed div, then the page's
// meta description as a last resort.
func DefaultStrategies() []Strategy {
	return []Strategy{
		selectorStrategy{name: "abstract_section", selector: "section#abstractSection div.abstract"},
		selectorStrategy{name: "abstract_div", selector: "div.abstract"},
		metaStrategy{name: "meta_description", metaName: "description"},
	}
}

// pageKeywords collects keyword terms from a fetched page. Keywords are
// optional; an empty result is not a failure.
func pageKeywords(doc *goquery.Document) []string {
	var raw []string
	doc.Find("span.keyword").Each(func(_ int, sel *goquery.Selection) {
		if text := normalize.Text(sel.Text()); text != "" {
			raw = append(raw, text)
		}
	})
	if content, ok := doc.Find(`meta[name="keywords"]`).First().Attr("content"); ok {
		raw = append(raw, normalize.Keywords(content)...)
	}
	return normalize.Dedupe(raw)
}
