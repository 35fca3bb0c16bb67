package extract

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/reva-ai/extract-cli/internal/model"
)

// Extractor runs the ordered fallback chain for a single record: page
// strategies first, CrossRef by DOI only when the page yields nothing.
// It holds no mutable state between calls.
type Extractor struct {
	pages    *PageSource
	fallback *CrossrefClient
}

// New creates an Extractor over the given sources.
func New(pages *PageSource, fallback *CrossrefClient) *Extractor {
	return &Extractor{pages: pages, fallback: fallback}
}

// Extract attempts the fallback chain for one locator. It always returns a
// result; failures are classified in the result's Error field and never
// propagate. A record with no locator at all fails immediately with zero
// network calls.
func (e *Extractor) Extract(ctx context.Context, loc Locator) model.ExtractionResult {
	res := model.ExtractionResult{
		Status: model.StatusFailed,
		Source: model.SourceNone,
		Error:  model.ErrorNoContentFound,
	}

	if loc.URL != "" {
		content, kind := e.pages.Extract(ctx, loc.URL)
		if content != nil {
			res.Status = model.StatusSuccess
			res.Source = model.SourceScopus
			res.Abstract = content.Abstract
			res.Keywords = content.Keywords
			res.Error = model.ErrorNone
			return res
		}
		res.Error = kind
	}

	if loc.DOI == "" {
		return res
	}

	content, err := e.fallback.Work(ctx, loc.DOI)
	if err != nil {
		zap.L().Debug("extract: crossref fallback failed",
			zap.String("doi", loc.DOI),
			zap.Error(err),
		)
		// The fallback was the last stage attempted, so its classification
		// wins over the primary's.
		if errors.Is(err, ErrMalformed) {
			res.Error = model.ErrorMalformedResponse
		} else {
			res.Error = model.ErrorFallbackUnavailable
		}
		return res
	}

	res.Status = model.StatusSuccess
	res.Source = model.SourceCrossref
	res.Abstract = content.Abstract
	res.Keywords = content.Keywords
	res.Error = model.ErrorNone
	return res
}
